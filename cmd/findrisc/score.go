package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/soaringjerry/findrisc/internal/services"
)

var (
	scoreForm   services.FormInput
	scoreLocale string
	scoreJSON   bool
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score one questionnaire from flags",
	Example: `  findrisc score --age 50 --sex male --weight 81 --height 174 --waist 95 \
    --active --fruit-veg every_day --family distant_relative`,
	RunE: func(cmd *cobra.Command, args []string) error {
		answers, err := scoreForm.Answers()
		if err != nil {
			return err
		}
		result, err := services.Assess(answers)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if scoreJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(map[string]any{
				"bmi":      answers.BMI,
				"score":    result.Score,
				"tier":     result.Tier,
				"label":    result.Tier.Label(scoreLocale),
				"estimate": result.Tier.Estimate(scoreLocale),
			})
		}
		fmt.Fprintf(out, "BMI:      %.2f\n", answers.BMI)
		fmt.Fprintf(out, "Score:    %d / %d\n", result.Score, services.GaugeMax)
		fmt.Fprintf(out, "Tier:     %s\n", result.Tier.Label(scoreLocale))
		fmt.Fprintf(out, "Estimate: %s\n", result.Tier.Estimate(scoreLocale))
		return nil
	},
}

func init() {
	f := scoreCmd.Flags()
	f.IntVar(&scoreForm.Age, "age", 0, "age in years")
	f.StringVar(&scoreForm.Sex, "sex", "", "male or female")
	f.Float64Var(&scoreForm.WeightKG, "weight", 0, "weight in kg")
	f.Float64Var(&scoreForm.HeightCM, "height", 0, "height in cm")
	f.IntVar(&scoreForm.WaistCM, "waist", 0, "waist circumference in cm")
	f.BoolVar(&scoreForm.PhysicallyActive, "active", false, "at least 30 minutes of activity daily")
	f.StringVar(&scoreForm.FruitVeg, "fruit-veg", "every_day", "every_day or not_every_day")
	f.BoolVar(&scoreForm.HypertensionMeds, "bp-meds", false, "takes blood pressure medication")
	f.BoolVar(&scoreForm.HighGlucose, "high-glucose", false, "ever had high blood glucose")
	f.StringVar(&scoreForm.FamilyHistory, "family", "none", "none, distant_relative or close_relative")
	f.StringVar(&scoreLocale, "lang", "en", "output language (en, es)")
	f.BoolVar(&scoreJSON, "json", false, "print JSON")
	for _, name := range []string{"age", "sex", "weight", "height", "waist"} {
		_ = scoreCmd.MarkFlagRequired(name)
	}
}
