package telemetry

import (
	"log/slog"
	"math"
	"slices"

	"gonum.org/v1/gonum/stat"
)

// Summary describes how often the rules of a run fired and took effect.
type Summary struct {
	Ticks   int `csv:"ticks"`
	Rules   int `csv:"rules"`
	Dormant int `csv:"dormant"` // rules that never fired

	FireMean float64 `csv:"fire_mean"`
	FireStd  float64 `csv:"fire_std"`
	FireP10  float64 `csv:"fire_p10"`
	FireP50  float64 `csv:"fire_p50"`
	FireP90  float64 `csv:"fire_p90"`

	ActMean float64 `csv:"act_mean"`
	ActStd  float64 `csv:"act_std"`

	// Fired but never acted on: usually a rule shadowed by one above it.
	Shadowed int `csv:"shadowed"`
}

// Summarize aggregates per-rule totals.
func Summarize(ticks int, rules []RuleStats) Summary {
	s := Summary{Ticks: ticks, Rules: len(rules)}
	if len(rules) == 0 {
		return s
	}

	fire := make([]float64, len(rules))
	act := make([]float64, len(rules))
	for i, r := range rules {
		fire[i] = r.FireRate
		act[i] = r.ActRate
		if r.Fired == 0 {
			s.Dormant++
		} else if r.ActedOn == 0 {
			s.Shadowed++
		}
	}

	s.FireMean, s.FireStd = meanStd(fire)
	s.ActMean, s.ActStd = meanStd(act)

	slices.Sort(fire)
	s.FireP10 = stat.Quantile(0.10, stat.Empirical, fire, nil)
	s.FireP50 = stat.Quantile(0.50, stat.Empirical, fire, nil)
	s.FireP90 = stat.Quantile(0.90, stat.Empirical, fire, nil)
	return s
}

// meanStd returns the mean and population standard deviation.
func meanStd(x []float64) (float64, float64) {
	mean, variance := stat.PopMeanVariance(x, nil)
	return mean, math.Sqrt(variance)
}

// LogValue implements slog.LogValuer for structured logging.
func (s Summary) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("ticks", s.Ticks),
		slog.Int("rules", s.Rules),
		slog.Int("dormant", s.Dormant),
		slog.Int("shadowed", s.Shadowed),
		slog.Float64("fire_mean", s.FireMean),
		slog.Float64("fire_std", s.FireStd),
		slog.Float64("fire_p10", s.FireP10),
		slog.Float64("fire_p50", s.FireP50),
		slog.Float64("fire_p90", s.FireP90),
		slog.Float64("act_mean", s.ActMean),
		slog.Float64("act_std", s.ActStd),
	)
}

// LogStats logs the summary using slog.
func (s Summary) LogStats() {
	slog.Info("rules", "summary", s)
}
