package services

import (
	"fmt"

	"github.com/soaringjerry/findrisc/internal/utils"
)

// Tier is one of the five ordered FINDRISC risk categories.
type Tier int

const (
	TierLow Tier = iota
	TierSlightlyElevated
	TierModerate
	TierHigh
	TierVeryHigh
)

var tierNames = [...]string{"low", "slightly_elevated", "moderate", "high", "very_high"}

func (t Tier) String() string {
	if t < TierLow || t > TierVeryHigh {
		return fmt.Sprintf("tier(%d)", int(t))
	}
	return tierNames[t]
}

func (t Tier) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

func (t *Tier) UnmarshalText(b []byte) error {
	for i, n := range tierNames {
		if n == string(b) {
			*t = Tier(i)
			return nil
		}
	}
	return NewInvalidError(fmt.Sprintf("unknown tier %q", b))
}

// Label is the localized tier name, e.g. "Riesgo moderado" for es.
func (t Tier) Label(locale string) string { return utils.T(locale, "tier."+t.String()+".label") }

// Estimate is the localized ten-year incidence sentence.
func (t Tier) Estimate(locale string) string {
	return utils.T(locale, "tier."+t.String()+".estimate")
}

// RiskResult is the interpreted outcome of a score.
type RiskResult struct {
	Score           int    `json:"score"`
	Tier            Tier   `json:"tier"`
	TenYearEstimate string `json:"ten_year_estimate"`
}

// TierForScore maps any integer onto a tier. Scores below zero fall into Low.
func TierForScore(score int) Tier {
	switch {
	case score < 7:
		return TierLow
	case score <= 11:
		return TierSlightlyElevated
	case score <= 14:
		return TierModerate
	case score <= 20:
		return TierHigh
	}
	return TierVeryHigh
}

// Interpret returns the tier and English estimate for score.
func Interpret(score int) RiskResult {
	tier := TierForScore(score)
	return RiskResult{Score: score, Tier: tier, TenYearEstimate: tier.Estimate("en")}
}

// TierBand describes the score range of a tier for gauge rendering.
type TierBand struct {
	Tier  Tier   `json:"tier"`
	Min   int    `json:"min"`
	Max   int    `json:"max"`
	Color string `json:"color"`
	Label string `json:"label"`
}

// GaugeMax is the upper end of the gauge axis.
const GaugeMax = 26

// TierBands lists the tiers in order with their inclusive score ranges.
func TierBands(locale string) []TierBand {
	bands := []TierBand{
		{Tier: TierLow, Min: 0, Max: 6, Color: "#28a745"},
		{Tier: TierSlightlyElevated, Min: 7, Max: 11, Color: "#a3d900"},
		{Tier: TierModerate, Min: 12, Max: 14, Color: "#ffc107"},
		{Tier: TierHigh, Min: 15, Max: 20, Color: "#fd7e14"},
		{Tier: TierVeryHigh, Min: 21, Max: GaugeMax, Color: "#dc3545"},
	}
	for i := range bands {
		bands[i].Label = bands[i].Tier.Label(locale)
	}
	return bands
}
