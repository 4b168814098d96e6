package services

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/soaringjerry/findrisc/internal/utils"
)

var exportHeader = []string{
	"assessment_id", "user_id", "submitted_at", "age", "sex", "weight_kg", "height_cm",
	"bmi", "waist_cm", "physically_active", "fruit_veg", "hypertension_meds",
	"high_glucose", "family_history", "score", "tier", "ten_year_estimate", "narrative_model",
}

// ExportAssessmentsCSV renders one row per assessment in the given order.
func ExportAssessmentsCSV(list []*Assessment) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	_ = w.Write(exportHeader)
	for _, a := range list {
		rec := []string{
			a.ID,
			a.UserID,
			a.SubmittedAt.UTC().Format(time.RFC3339),
			strconv.Itoa(a.Answers.Age),
			string(a.Answers.Sex),
			formatFloat(a.WeightKG),
			formatFloat(a.HeightCM),
			strconv.FormatFloat(a.Answers.BMI, 'f', 2, 64),
			strconv.Itoa(a.Answers.WaistCM),
			strconv.FormatBool(a.Answers.PhysicallyActive),
			string(a.Answers.FruitVeg),
			strconv.FormatBool(a.Answers.HypertensionMeds),
			strconv.FormatBool(a.Answers.HighGlucose),
			string(a.Answers.FamilyHistory),
			strconv.Itoa(a.Result.Score),
			a.Result.Tier.String(),
			a.Result.TenYearEstimate,
			a.NarrativeModel,
		}
		if err := w.Write(rec); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

func formatFloat(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

// RenderReport lays out the patient data, results and commentary of one
// assessment as plain text in the given locale.
func RenderReport(a *Assessment, locale string) string {
	var b strings.Builder
	title := utils.T(locale, "report.title")
	b.WriteString(title + "\n")
	b.WriteString(strings.Repeat("=", len([]rune(title))) + "\n\n")

	b.WriteString(utils.T(locale, "report.patient") + "\n")
	fmt.Fprintf(&b, "  Date: %s\n", a.SubmittedAt.UTC().Format("02/01/2006"))
	fmt.Fprintf(&b, "  Age: %d\n", a.Answers.Age)
	fmt.Fprintf(&b, "  Sex: %s\n", a.Answers.Sex)
	fmt.Fprintf(&b, "  BMI: %.2f\n", a.Answers.BMI)
	fmt.Fprintf(&b, "  Waist: %d cm\n\n", a.Answers.WaistCM)

	b.WriteString(utils.T(locale, "report.results") + "\n")
	fmt.Fprintf(&b, "  Score: %d\n", a.Result.Score)
	fmt.Fprintf(&b, "  Risk: %s\n", a.Result.Tier.Label(locale))
	fmt.Fprintf(&b, "  10-year estimate: %s\n\n", a.Result.Tier.Estimate(locale))

	b.WriteString(utils.T(locale, "report.analysis") + "\n")
	if strings.TrimSpace(a.Narrative) == "" {
		b.WriteString(utils.T(locale, "report.analysis.unavailable") + "\n")
	} else {
		b.WriteString(strings.TrimSpace(a.Narrative) + "\n")
		if a.NarrativeModel != "" {
			fmt.Fprintf(&b, "\n(%s)\n", a.NarrativeModel)
		}
	}
	return b.String()
}
