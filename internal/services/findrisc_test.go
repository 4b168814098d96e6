package services

import (
	"errors"
	"testing"
)

func baseAnswers() Answers {
	return Answers{
		Age:              40,
		BMI:              22,
		WaistCM:          70,
		Sex:              SexFemale,
		PhysicallyActive: true,
		FruitVeg:         FruitVegEveryDay,
		FamilyHistory:    FamilyNone,
	}
}

func mustScore(t *testing.T, a Answers) int {
	t.Helper()
	got, err := Score(a)
	if err != nil {
		t.Fatalf("Score(%+v): %v", a, err)
	}
	return got
}

func TestScoreScenarios(t *testing.T) {
	cases := []struct {
		name string
		in   Answers
		want int
		tier Tier
	}{
		{
			// 85 cm falls in the female 80-88 band, so the waist alone adds 3.
			name: "healthy female",
			in: Answers{Age: 40, BMI: 22, WaistCM: 85, Sex: SexFemale, PhysicallyActive: true,
				FruitVeg: FruitVegEveryDay, FamilyHistory: FamilyNone},
			want: 3, tier: TierLow,
		},
		{
			name: "no risk factors",
			in:   baseAnswers(),
			want: 0, tier: TierLow,
		},
		{
			name: "every factor male",
			in: Answers{Age: 60, BMI: 31, WaistCM: 105, Sex: SexMale, PhysicallyActive: false,
				FruitVeg: FruitVegNotEveryDay, HypertensionMeds: true, HighGlucose: true, FamilyHistory: FamilyCloseRelative},
			want: 25, tier: TierVeryHigh,
		},
		{
			name: "middle-aged male distant relative",
			in: Answers{Age: 50, BMI: 27, WaistCM: 95, Sex: SexMale, PhysicallyActive: true,
				FruitVeg: FruitVegEveryDay, FamilyHistory: FamilyDistantRelative},
			want: 9, tier: TierSlightlyElevated,
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := mustScore(t, c.in); got != c.want {
				t.Fatalf("score = %d, want %d", got, c.want)
			}
			res, err := Assess(c.in)
			if err != nil {
				t.Fatalf("Assess: %v", err)
			}
			if res.Score != c.want || res.Tier != c.tier {
				t.Fatalf("result = %+v, want score %d tier %s", res, c.want, c.tier)
			}
			if res.TenYearEstimate != c.tier.Estimate("en") {
				t.Fatalf("estimate = %q", res.TenYearEstimate)
			}
		})
	}
}

func TestAgeBoundaries(t *testing.T) {
	for age, want := range map[int]int{18: 0, 44: 0, 45: 2, 54: 2, 55: 3, 64: 3, 65: 4, 120: 4} {
		a := baseAnswers()
		a.Age = age
		if got := mustScore(t, a); got != want {
			t.Fatalf("age %d: score = %d, want %d", age, got, want)
		}
	}
}

func TestBMIBoundaries(t *testing.T) {
	for bmi, want := range map[float64]int{12: 0, 24.99: 0, 25: 1, 29.99: 1, 30: 3, 300: 3} {
		a := baseAnswers()
		a.BMI = bmi
		if got := mustScore(t, a); got != want {
			t.Fatalf("bmi %v: score = %d, want %d", bmi, got, want)
		}
	}
}

func TestWaistBoundaries(t *testing.T) {
	cases := []struct {
		sex   Sex
		waist int
		want  int
	}{
		{SexMale, 93, 0}, {SexMale, 94, 3}, {SexMale, 102, 3}, {SexMale, 103, 4},
		{SexFemale, 79, 0}, {SexFemale, 80, 3}, {SexFemale, 88, 3}, {SexFemale, 89, 4},
	}
	for _, c := range cases {
		a := baseAnswers()
		a.Sex = c.sex
		a.WaistCM = c.waist
		if got := mustScore(t, a); got != c.want {
			t.Fatalf("%s waist %d: score = %d, want %d", c.sex, c.waist, got, c.want)
		}
	}
}

func TestSingleFactorPoints(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Answers)
		want   int
	}{
		{"inactive", func(a *Answers) { a.PhysicallyActive = false }, 2},
		{"fruit not daily", func(a *Answers) { a.FruitVeg = FruitVegNotEveryDay }, 1},
		{"hypertension", func(a *Answers) { a.HypertensionMeds = true }, 2},
		{"glucose", func(a *Answers) { a.HighGlucose = true }, 5},
		{"close relative", func(a *Answers) { a.FamilyHistory = FamilyCloseRelative }, 5},
		{"distant relative", func(a *Answers) { a.FamilyHistory = FamilyDistantRelative }, 3},
	}
	for _, c := range cases {
		a := baseAnswers()
		c.mutate(&a)
		if got := mustScore(t, a); got != c.want {
			t.Fatalf("%s: score = %d, want %d", c.name, got, c.want)
		}
	}
}

func TestScoreNeverExceedsMaximum(t *testing.T) {
	highest := 0
	for _, age := range []int{30, 50, 60, 70} {
		for _, bmi := range []float64{20, 27, 35} {
			for _, sex := range []Sex{SexMale, SexFemale} {
				for _, waist := range []int{60, 85, 98, 110} {
					for _, fam := range []FamilyHistory{FamilyNone, FamilyDistantRelative, FamilyCloseRelative} {
						for mask := 0; mask < 16; mask++ {
							a := Answers{
								Age: age, BMI: bmi, WaistCM: waist, Sex: sex,
								PhysicallyActive: mask&1 == 0,
								FruitVeg:         FruitVegEveryDay,
								HypertensionMeds: mask&2 != 0,
								HighGlucose:      mask&4 != 0,
								FamilyHistory:    fam,
							}
							if mask&8 != 0 {
								a.FruitVeg = FruitVegNotEveryDay
							}
							got := mustScore(t, a)
							if got < 0 || got > 26 {
								t.Fatalf("score %d out of [0,26] for %+v", got, a)
							}
							if got > highest {
								highest = got
							}
						}
					}
				}
			}
		}
	}
	if highest != 26 {
		t.Fatalf("max score = %d, want 26", highest)
	}
}

func TestScoreIsIdempotent(t *testing.T) {
	a := Answers{Age: 58, BMI: 28.4, WaistCM: 99, Sex: SexMale, FruitVeg: FruitVegNotEveryDay,
		HypertensionMeds: true, FamilyHistory: FamilyDistantRelative}
	first, err := Assess(a)
	if err != nil {
		t.Fatalf("Assess: %v", err)
	}
	second, err := Assess(a)
	if err != nil {
		t.Fatalf("Assess: %v", err)
	}
	if first != second {
		t.Fatalf("results differ: %+v vs %+v", first, second)
	}
}

func TestUnknownCategoriesAreRejected(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Answers)
	}{
		{"family history", func(a *Answers) { a.FamilyHistory = "cousin twice removed" }},
		{"empty family history", func(a *Answers) { a.FamilyHistory = "" }},
		{"fruit veg", func(a *Answers) { a.FruitVeg = "sometimes" }},
		{"missing sex", func(a *Answers) { a.Sex = "" }},
		{"unknown sex", func(a *Answers) { a.Sex = "x" }},
	}
	for _, c := range cases {
		a := baseAnswers()
		c.mutate(&a)
		if _, err := Score(a); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("%s: Score expected invalid input, got %v", c.name, err)
		}
		if _, err := NewAnswers(a); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("%s: NewAnswers expected invalid input, got %v", c.name, err)
		}
	}
}

func TestLegacyMaleWaistPolicy(t *testing.T) {
	a := baseAnswers()
	a.Sex = ""
	a.WaistCM = 90

	got, err := ScoreWithPolicy(a, LegacyMaleWaist)
	if err != nil || got != 0 {
		t.Fatalf("legacy 90 cm = %d, %v; want 0", got, err)
	}

	a.WaistCM = 95
	got, err = ScoreWithPolicy(a, LegacyMaleWaist)
	if err != nil || got != 3 {
		t.Fatalf("legacy 95 cm = %d, %v; want 3", got, err)
	}

	// Female thresholds would give 4 for 95 cm.
	a.Sex = SexFemale
	if got := mustScore(t, a); got != 4 {
		t.Fatalf("female 95 cm = %d, want 4", got)
	}
}

func TestParseCategoryLabels(t *testing.T) {
	if sex, err := ParseSex(" Masculino "); err != nil || sex != SexMale {
		t.Fatalf("ParseSex(Masculino) = %q, %v", sex, err)
	}
	if sex, err := ParseSex("female"); err != nil || sex != SexFemale {
		t.Fatalf("ParseSex(female) = %q, %v", sex, err)
	}
	if fv, err := ParseFruitVegIntake("No todos los días"); err != nil || fv != FruitVegNotEveryDay {
		t.Fatalf("ParseFruitVegIntake(No todos los días) = %q, %v", fv, err)
	}
	if fv, err := ParseFruitVegIntake("every_day"); err != nil || fv != FruitVegEveryDay {
		t.Fatalf("ParseFruitVegIntake(every_day) = %q, %v", fv, err)
	}

	for label, want := range map[string]FamilyHistory{
		"No":                                  FamilyNone,
		"Sí: abuelos, tíos o primos":          FamilyDistantRelative,
		"Sí: abuelos, tíos o primos hermanos": FamilyDistantRelative,
		"Sí: padres, hermanos o hijos":        FamilyCloseRelative,
		"close_relative":                      FamilyCloseRelative,
	} {
		if got, err := ParseFamilyHistory(label); err != nil || got != want {
			t.Fatalf("ParseFamilyHistory(%q) = %q, %v; want %q", label, got, err, want)
		}
	}

	if _, err := ParseFamilyHistory("neighbour"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("ParseFamilyHistory(neighbour): expected invalid input, got %v", err)
	}
	if _, err := ParseSex(""); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("ParseSex(\"\"): expected invalid input, got %v", err)
	}
	if _, err := ParseFruitVegIntake("weekly"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("ParseFruitVegIntake(weekly): expected invalid input, got %v", err)
	}
}
