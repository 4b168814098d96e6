package services

import (
	"fmt"
	"strings"
)

// Sex selects the waist-circumference thresholds.
type Sex string

const (
	SexMale   Sex = "male"
	SexFemale Sex = "female"
)

// FruitVegIntake records whether vegetables, fruit or berries are eaten daily.
type FruitVegIntake string

const (
	FruitVegEveryDay    FruitVegIntake = "every_day"
	FruitVegNotEveryDay FruitVegIntake = "not_every_day"
)

// FamilyHistory is the closest relative ever diagnosed with diabetes.
type FamilyHistory string

const (
	FamilyNone            FamilyHistory = "none"
	FamilyDistantRelative FamilyHistory = "distant_relative" // grandparent, aunt, uncle, cousin
	FamilyCloseRelative   FamilyHistory = "close_relative"   // parent, sibling, child
)

func normalizeLabel(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// ParseSex accepts the canonical values and the form labels used by the
// Spanish questionnaire.
func ParseSex(s string) (Sex, error) {
	switch normalizeLabel(s) {
	case "male", "m", "masculino", "hombre":
		return SexMale, nil
	case "female", "f", "femenino", "mujer":
		return SexFemale, nil
	}
	return "", NewInvalidError(fmt.Sprintf("unknown sex %q", s))
}

func ParseFruitVegIntake(s string) (FruitVegIntake, error) {
	switch normalizeLabel(s) {
	case "every_day", "everyday", "yes", "todos los días", "todos los dias", "sí", "si":
		return FruitVegEveryDay, nil
	case "not_every_day", "no", "no todos los días", "no todos los dias":
		return FruitVegNotEveryDay, nil
	}
	return "", NewInvalidError(fmt.Sprintf("unknown fruit/vegetable intake %q", s))
}

func ParseFamilyHistory(s string) (FamilyHistory, error) {
	switch normalizeLabel(s) {
	case "none", "no":
		return FamilyNone, nil
	case "distant_relative", "distant",
		"sí: abuelos, tíos o primos", "sí: abuelos, tíos o primos hermanos",
		"si: abuelos, tios o primos", "si: abuelos, tios o primos hermanos":
		return FamilyDistantRelative, nil
	case "close_relative", "close",
		"sí: padres, hermanos o hijos", "si: padres, hermanos o hijos":
		return FamilyCloseRelative, nil
	}
	return "", NewInvalidError(fmt.Sprintf("unknown family history %q", s))
}

// Answers is one completed FINDRISC questionnaire. Numeric fields are taken as
// given; only the categorical fields are checked.
type Answers struct {
	Age              int            `json:"age"`
	BMI              float64        `json:"bmi"`
	WaistCM          int            `json:"waist_cm"`
	Sex              Sex            `json:"sex"`
	PhysicallyActive bool           `json:"physically_active"`
	FruitVeg         FruitVegIntake `json:"fruit_veg"`
	HypertensionMeds bool           `json:"hypertension_meds"`
	HighGlucose      bool           `json:"high_glucose"`
	FamilyHistory    FamilyHistory  `json:"family_history"`
}

// NewAnswers returns a after checking every categorical field.
func NewAnswers(a Answers) (Answers, error) {
	if err := a.validate(SexAwareWaist); err != nil {
		return Answers{}, err
	}
	return a, nil
}

func (a Answers) validate(policy WaistPolicy) error {
	if policy == SexAwareWaist && a.Sex != SexMale && a.Sex != SexFemale {
		return NewInvalidError(fmt.Sprintf("unknown sex %q", a.Sex))
	}
	if a.FruitVeg != FruitVegEveryDay && a.FruitVeg != FruitVegNotEveryDay {
		return NewInvalidError(fmt.Sprintf("unknown fruit/vegetable intake %q", a.FruitVeg))
	}
	switch a.FamilyHistory {
	case FamilyNone, FamilyDistantRelative, FamilyCloseRelative:
	default:
		return NewInvalidError(fmt.Sprintf("unknown family history %q", a.FamilyHistory))
	}
	return nil
}

// WaistPolicy selects how waist circumference is banded.
type WaistPolicy int

const (
	// SexAwareWaist uses the male or female thresholds; Sex is required.
	SexAwareWaist WaistPolicy = iota
	// LegacyMaleWaist applies the male thresholds whatever the sex, as the
	// questionnaires without a sex field did.
	//
	// Deprecated: it overestimates risk for women between 80 and 94 cm and
	// exists only to re-score records captured without sex.
	LegacyMaleWaist
)

// Score sums the FINDRISC points for a using sex-aware waist thresholds.
func Score(a Answers) (int, error) {
	return ScoreWithPolicy(a, SexAwareWaist)
}

func ScoreWithPolicy(a Answers, policy WaistPolicy) (int, error) {
	if err := a.validate(policy); err != nil {
		return 0, err
	}
	score := agePoints(a.Age) + bmiPoints(a.BMI)
	if policy == LegacyMaleWaist {
		score += waistPoints(SexMale, a.WaistCM)
	} else {
		score += waistPoints(a.Sex, a.WaistCM)
	}
	if !a.PhysicallyActive {
		score += 2
	}
	if a.FruitVeg == FruitVegNotEveryDay {
		score++
	}
	if a.HypertensionMeds {
		score += 2
	}
	if a.HighGlucose {
		score += 5
	}
	switch a.FamilyHistory {
	case FamilyCloseRelative:
		score += 5
	case FamilyDistantRelative:
		score += 3
	}
	return score, nil
}

func agePoints(age int) int {
	switch {
	case age >= 45 && age <= 54:
		return 2
	case age >= 55 && age <= 64:
		return 3
	case age > 64:
		return 4
	}
	return 0
}

func bmiPoints(bmi float64) int {
	switch {
	case bmi >= 25 && bmi < 30:
		return 1
	case bmi >= 30:
		return 3
	}
	return 0
}

func waistPoints(sex Sex, waist int) int {
	low, high := 94, 102
	if sex == SexFemale {
		low, high = 80, 88
	}
	switch {
	case waist >= low && waist <= high:
		return 3
	case waist > high:
		return 4
	}
	return 0
}

// Assess scores a and interprets the result.
func Assess(a Answers) (RiskResult, error) {
	score, err := Score(a)
	if err != nil {
		return RiskResult{}, err
	}
	return Interpret(score), nil
}
