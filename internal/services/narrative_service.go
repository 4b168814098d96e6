package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// TextGenerator sends a prompt to one generative model.
type TextGenerator interface {
	Generate(ctx context.Context, model, prompt string) (string, error)
}

// Narrative is free-text commentary on an assessment.
type Narrative struct {
	Text  string
	Model string
}

// Narrator produces commentary for a scored questionnaire.
type Narrator interface {
	Narrate(ctx context.Context, a Answers, r RiskResult, locale string) (*Narrative, error)
}

// ErrNoModels is returned when NarrativeService has no model to try.
var ErrNoModels = errors.New("no narrative models configured")

// NarrativeService asks each configured model in turn until one returns
// non-blank text.
type NarrativeService struct {
	gen    TextGenerator
	models []string
	logger *zap.Logger
}

func NewNarrativeService(gen TextGenerator, models []string, logger *zap.Logger) *NarrativeService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NarrativeService{gen: gen, models: append([]string(nil), models...), logger: logger}
}

func (s *NarrativeService) Narrate(ctx context.Context, a Answers, r RiskResult, locale string) (*Narrative, error) {
	if s.gen == nil || len(s.models) == 0 {
		return nil, ErrNoModels
	}
	prompt := BuildNarrativePrompt(a, r, locale)
	var errs []error
	for _, model := range s.models {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		text, err := s.gen.Generate(ctx, model, prompt)
		if err != nil {
			s.logger.Warn("narrative model failed", zap.String("model", model), zap.Error(err))
			errs = append(errs, fmt.Errorf("%s: %w", model, err))
			continue
		}
		if strings.TrimSpace(text) == "" {
			s.logger.Warn("narrative model returned empty text", zap.String("model", model))
			errs = append(errs, fmt.Errorf("%s: empty response", model))
			continue
		}
		s.logger.Info("narrative generated", zap.String("model", model))
		return &Narrative{Text: text, Model: model}, nil
	}
	return nil, NewBadGatewayError("all narrative models failed: " + errors.Join(errs...).Error())
}

// BuildNarrativePrompt renders answers and result as a plain-text request
// for a risk explanation, three recommendations and next steps.
func BuildNarrativePrompt(a Answers, r RiskResult, locale string) string {
	var b strings.Builder
	b.WriteString("As a health and diabetes-prevention expert, analyse this FINDRISC questionnaire.\n\n")
	fmt.Fprintf(&b, "Age: %d years\n", a.Age)
	fmt.Fprintf(&b, "Sex: %s\n", a.Sex)
	fmt.Fprintf(&b, "BMI: %.2f\n", a.BMI)
	fmt.Fprintf(&b, "Waist circumference: %d cm\n", a.WaistCM)
	fmt.Fprintf(&b, "Physically active 30 min daily: %s\n", yesNo(a.PhysicallyActive))
	fmt.Fprintf(&b, "Fruit and vegetables: %s\n", strings.ReplaceAll(string(a.FruitVeg), "_", " "))
	fmt.Fprintf(&b, "Hypertension medication: %s\n", yesNo(a.HypertensionMeds))
	fmt.Fprintf(&b, "Ever high blood glucose: %s\n", yesNo(a.HighGlucose))
	fmt.Fprintf(&b, "Family history of diabetes: %s\n", strings.ReplaceAll(string(a.FamilyHistory), "_", " "))
	fmt.Fprintf(&b, "Score: %d (%s)\n", r.Score, r.Tier.Label("en"))
	fmt.Fprintf(&b, "Ten-year estimate: %s\n\n", r.TenYearEstimate)
	b.WriteString("Provide: 1) a plain-language explanation of the score and risk level; ")
	b.WriteString("2) three specific, actionable recommendations; 3) suggested next steps.\n")
	b.WriteString("Keep the tone professional, empathetic and easy to follow for a non-specialist.\n")
	if locale == "es" {
		b.WriteString("Answer in Spanish.\n")
	}
	return b.String()
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}
