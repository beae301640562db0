package telemetry

import (
	"cmp"
	"slices"
)

type ruleKey struct {
	actor uint64
	page  int
	rule  int
}

type ruleCount struct {
	sensor   string
	actuator string
	ticks    int
	fired    int
	actedOn  int
}

// Collector accumulates trace rows into per-rule counts.
type Collector struct {
	rules map[ruleKey]*ruleCount
	ticks int
}

// NewCollector creates an empty collector.
func NewCollector() *Collector {
	return &Collector{rules: make(map[ruleKey]*ruleCount)}
}

// Record adds one tick's rows.
func (c *Collector) Record(rows []ReflexTrace) {
	if len(rows) > 0 {
		c.ticks++
	}
	for _, row := range rows {
		k := ruleKey{actor: row.Actor, page: row.Page, rule: row.Rule}
		rc := c.rules[k]
		if rc == nil {
			rc = &ruleCount{sensor: row.Sensor, actuator: row.Actuator}
			c.rules[k] = rc
		}
		rc.ticks++
		if row.Fired {
			rc.fired++
		}
		if row.ActedOn {
			rc.actedOn++
		}
	}
}

// Ticks returns how many non-empty ticks were recorded.
func (c *Collector) Ticks() int { return c.ticks }

// RuleStats is one rule's totals over a run.
type RuleStats struct {
	Actor    uint64  `csv:"actor"`
	Page     int     `csv:"page"`
	Rule     int     `csv:"rule"`
	Sensor   string  `csv:"sensor"`
	Actuator string  `csv:"actuator"`
	Ticks    int     `csv:"ticks"`
	Fired    int     `csv:"fired"`
	ActedOn  int     `csv:"acted_on"`
	FireRate float64 `csv:"fire_rate"`
	ActRate  float64 `csv:"act_rate"`
}

// Rules returns per-rule totals ordered by actor, page and rule.
func (c *Collector) Rules() []RuleStats {
	out := make([]RuleStats, 0, len(c.rules))
	for k, rc := range c.rules {
		s := RuleStats{
			Actor:    k.actor,
			Page:     k.page,
			Rule:     k.rule,
			Sensor:   rc.sensor,
			Actuator: rc.actuator,
			Ticks:    rc.ticks,
			Fired:    rc.fired,
			ActedOn:  rc.actedOn,
		}
		if rc.ticks > 0 {
			s.FireRate = float64(rc.fired) / float64(rc.ticks)
			s.ActRate = float64(rc.actedOn) / float64(rc.ticks)
		}
		out = append(out, s)
	}
	slices.SortFunc(out, func(a, b RuleStats) int {
		return cmp.Or(
			cmp.Compare(a.Actor, b.Actor),
			cmp.Compare(a.Page, b.Page),
			cmp.Compare(a.Rule, b.Rule),
		)
	})
	return out
}
