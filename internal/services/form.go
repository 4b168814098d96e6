package services

import (
	"fmt"
	"math"
)

// ComputeBMI returns weight / height² with height given in centimetres.
func ComputeBMI(weightKG, heightCM float64) (float64, error) {
	if heightCM <= 0 || math.IsNaN(heightCM) || math.IsInf(heightCM, 0) {
		return 0, NewInvalidError(fmt.Sprintf("height must be positive, got %v", heightCM))
	}
	if weightKG <= 0 || math.IsNaN(weightKG) || math.IsInf(weightKG, 0) {
		return 0, NewInvalidError(fmt.Sprintf("weight must be positive, got %v", weightKG))
	}
	m := heightCM / 100
	bmi := weightKG / (m * m)
	if math.IsInf(bmi, 0) || math.IsNaN(bmi) {
		return 0, NewInvalidError(fmt.Sprintf("bmi out of range for weight %v and height %v", weightKG, heightCM))
	}
	return bmi, nil
}

// FormInput mirrors the questionnaire form: raw measurements and the
// category answers as submitted labels.
type FormInput struct {
	Age              int     `json:"age"`
	Sex              string  `json:"sex"`
	WeightKG         float64 `json:"weight_kg"`
	HeightCM         float64 `json:"height_cm"`
	WaistCM          int     `json:"waist_cm"`
	PhysicallyActive bool    `json:"physically_active"`
	FruitVeg         string  `json:"fruit_veg"`
	HypertensionMeds bool    `json:"hypertension_meds"`
	HighGlucose      bool    `json:"high_glucose"`
	FamilyHistory    string  `json:"family_history"`
}

// Answers derives BMI and parses the category labels.
func (f FormInput) Answers() (Answers, error) {
	bmi, err := ComputeBMI(f.WeightKG, f.HeightCM)
	if err != nil {
		return Answers{}, err
	}
	sex, err := ParseSex(f.Sex)
	if err != nil {
		return Answers{}, err
	}
	fv, err := ParseFruitVegIntake(f.FruitVeg)
	if err != nil {
		return Answers{}, err
	}
	fam, err := ParseFamilyHistory(f.FamilyHistory)
	if err != nil {
		return Answers{}, err
	}
	return NewAnswers(Answers{
		Age:              f.Age,
		BMI:              bmi,
		WaistCM:          f.WaistCM,
		Sex:              sex,
		PhysicallyActive: f.PhysicallyActive,
		FruitVeg:         fv,
		HypertensionMeds: f.HypertensionMeds,
		HighGlucose:      f.HighGlucose,
		FamilyHistory:    fam,
	})
}
