// Package telemetry records what brains did: per-rule trace rows, fire-rate
// summaries and step timing, written as CSV.
package telemetry

import (
	"github.com/pthm-cable/whendo/brain"
)

// ReflexTrace is one rule's outcome for one tick.
type ReflexTrace struct {
	Tick      uint64 `csv:"tick"`
	Actor     uint64 `csv:"actor"`
	Page      int    `csv:"page"`
	Rule      int    `csv:"rule"`
	Indent    int    `csv:"indent"`
	Sensor    string `csv:"sensor"`
	Actuator  string `csv:"actuator"`
	Evaluated bool   `csv:"evaluated"`
	Condition bool   `csv:"condition"`
	Fired     bool   `csv:"fired"`
	Steering  bool   `csv:"steering"`
	ActedOn   bool   `csv:"acted_on"`
	Once      int    `csv:"once_count"`
	Targets   int    `csv:"targets"`
	Actions   int    `csv:"actions"`
}

// Trace appends a row for every rule on the brain's active page. It reads
// the rules' snapshots, so it belongs between two updates.
func Trace(dst []ReflexTrace, tick, actor uint64, b *brain.Brain) []ReflexTrace {
	task := b.Active()
	if task == nil {
		return dst
	}
	page := b.ActivePage()
	for _, r := range task.Reflexes() {
		st := r.Snapshot()
		row := ReflexTrace{
			Tick:      tick,
			Actor:     actor,
			Page:      page,
			Rule:      st.Index,
			Indent:    st.Indent,
			Evaluated: st.Evaluated,
			Condition: st.Condition,
			Fired:     st.Fired,
			Steering:  st.Steering,
			ActedOn:   st.ActedOn,
			Once:      st.OnceCount,
			Targets:   st.Targets,
			Actions:   st.Actions,
		}
		if r.Sensor != nil {
			row.Sensor = r.Sensor.Proto().ID
		}
		if r.Actuator != nil {
			row.Actuator = r.Actuator.Proto().ID
		}
		dst = append(dst, row)
	}
	return dst
}
