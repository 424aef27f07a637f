package risk

import "math"

type Level string

const (
	LevelLow      Level = "low"
	LevelMedium   Level = "medium"
	LevelElevated Level = "elevated"
	LevelHigh     Level = "high"
)

var suggestions = map[Level]string{
	LevelLow:      "Risk is well contained; keep current position sizing.",
	LevelMedium:   "Risk is moderate; review stop levels before adding exposure.",
	LevelElevated: "Risk is elevated; reduce position sizes and tighten stops.",
	LevelHigh:     "Risk is high; cut exposure and reassess the strategy before trading it further.",
}

// Suggestion returns the fixed guidance text for a level.
func (l Level) Suggestion() string { return suggestions[l] }

// Scoring thresholds.
const (
	BaseScore = 100.0

	DrawdownFloor   = 0.10 // |max drawdown| beyond this is penalized
	DrawdownSlope   = 200.0
	DrawdownPenalty = 40.0

	VolatilityFloor   = 0.20 // annualized volatility beyond this is penalized
	VolatilitySlope   = 150.0
	VolatilityPenalty = 30.0
)

// Score is the breakdown of the overall risk score.
type Score struct {
	DrawdownPenalty   float64
	VolatilityPenalty float64
	SharpeAdjustment  float64
	Value             float64 // clamped to [0,100]
	Level             Level
}

// ScoreRisk applies the penalty rule. haveSharpe=false (too little data to
// compute it) leaves the Sharpe adjustment at 0. A zero-volatility Sharpe
// is 0 and scores in the < 0.5 bucket.
func ScoreRisk(maxDrawdown, volatility, sharpe float64, haveSharpe bool) Score {
	var s Score

	if dd := math.Abs(maxDrawdown); dd > DrawdownFloor {
		s.DrawdownPenalty = math.Min(DrawdownPenalty, (dd-DrawdownFloor)*DrawdownSlope)
	}
	if volatility > VolatilityFloor {
		s.VolatilityPenalty = math.Min(VolatilityPenalty, (volatility-VolatilityFloor)*VolatilitySlope)
	}
	if haveSharpe {
		switch {
		case sharpe > 2:
			s.SharpeAdjustment = 10
		case sharpe < 0:
			s.SharpeAdjustment = -20
		case sharpe < 0.5:
			s.SharpeAdjustment = -10
		}
	}

	s.Value = clamp(BaseScore-s.DrawdownPenalty-s.VolatilityPenalty+s.SharpeAdjustment, 0, 100)
	s.Level = Classify(s.Value)
	return s
}

// Classify maps a score to a level: >=80 low, >=60 medium, >=40 elevated,
// otherwise high.
func Classify(score float64) Level {
	switch {
	case score >= 80:
		return LevelLow
	case score >= 60:
		return LevelMedium
	case score >= 40:
		return LevelElevated
	default:
		return LevelHigh
	}
}
