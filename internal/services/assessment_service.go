package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AssessmentStore abstracts persistence of completed questionnaires.
// Lookups return (nil, nil) when nothing matches.
type AssessmentStore interface {
	AddAssessment(ctx context.Context, a *Assessment) error
	GetAssessment(ctx context.Context, id string) (*Assessment, error)
	// ListAssessmentsByUser returns the user's records, newest first.
	ListAssessmentsByUser(ctx context.Context, userID string) ([]*Assessment, error)
	ListAssessments(ctx context.Context) ([]*Assessment, error)
}

// Observer is notified of stored assessments and narrative failures.
type Observer interface {
	AssessmentRecorded(r RiskResult)
	NarrativeFailed()
}

// Assessment is one stored questionnaire with its interpretation.
type Assessment struct {
	ID             string     `json:"id"`
	UserID         string     `json:"user_id"`
	SubmittedAt    time.Time  `json:"submitted_at"`
	Locale         string     `json:"locale"`
	WeightKG       float64    `json:"weight_kg"`
	HeightCM       float64    `json:"height_cm"`
	Answers        Answers    `json:"answers"`
	Result         RiskResult `json:"result"`
	Narrative      string     `json:"narrative,omitempty"`
	NarrativeModel string     `json:"narrative_model,omitempty"`
	NarrativeError string     `json:"narrative_error,omitempty"`
}

// SubmitRequest carries one form submission into the service layer.
type SubmitRequest struct {
	UserID        string
	Locale        string
	Form          FormInput
	SkipNarrative bool
}

// AssessmentService scores submissions, gathers commentary and stores them.
type AssessmentService struct {
	store            AssessmentStore
	narrator         Narrator
	observer         Observer
	logger           *zap.Logger
	now              func() time.Time
	idGenerator      func() string
	narrativeTimeout time.Duration
}

// NewAssessmentService binds the service to its store. narrator may be nil,
// in which case assessments are stored without commentary.
func NewAssessmentService(store AssessmentStore, narrator Narrator, logger *zap.Logger) *AssessmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AssessmentService{
		store:            store,
		narrator:         narrator,
		logger:           logger,
		now:              func() time.Time { return time.Now().UTC() },
		idGenerator:      uuid.NewString,
		narrativeTimeout: 60 * time.Second,
	}
}

func (s *AssessmentService) SetObserver(o Observer) { s.observer = o }

func (s *AssessmentService) SetNarrativeTimeout(d time.Duration) {
	if d > 0 {
		s.narrativeTimeout = d
	}
}

// Submit validates and scores the form, requests commentary and persists the
// record. A failed narrative does not fail the submission.
func (s *AssessmentService) Submit(ctx context.Context, req SubmitRequest) (*Assessment, error) {
	if s.store == nil {
		return nil, NewUnavailableError("assessment store not configured")
	}
	answers, err := req.Form.Answers()
	if err != nil {
		return nil, err
	}
	result, err := Assess(answers)
	if err != nil {
		return nil, err
	}

	userID := strings.TrimSpace(req.UserID)
	if userID == "" {
		userID = s.idGenerator()
	}
	locale := req.Locale
	if locale == "" {
		locale = "en"
	}
	a := &Assessment{
		ID:          s.idGenerator(),
		UserID:      userID,
		SubmittedAt: s.now(),
		Locale:      locale,
		WeightKG:    req.Form.WeightKG,
		HeightCM:    req.Form.HeightCM,
		Answers:     answers,
		Result:      result,
	}

	if s.narrator != nil && !req.SkipNarrative {
		nctx, cancel := context.WithTimeout(ctx, s.narrativeTimeout)
		n, err := s.narrator.Narrate(nctx, answers, result, locale)
		cancel()
		if err != nil {
			s.logger.Warn("narrative unavailable", zap.String("assessment_id", a.ID), zap.Error(err))
			a.NarrativeError = err.Error()
			if s.observer != nil {
				s.observer.NarrativeFailed()
			}
		} else {
			a.Narrative = n.Text
			a.NarrativeModel = n.Model
		}
	}

	if err := s.store.AddAssessment(ctx, a); err != nil {
		return nil, err
	}
	if s.observer != nil {
		s.observer.AssessmentRecorded(result)
	}
	s.logger.Info("assessment stored",
		zap.String("assessment_id", a.ID),
		zap.Int("score", result.Score),
		zap.Stringer("tier", result.Tier))
	return a, nil
}

// History lists a user's assessments, newest first.
func (s *AssessmentService) History(ctx context.Context, userID string) ([]*Assessment, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, NewInvalidError("user_id required")
	}
	if s.store == nil {
		return nil, NewUnavailableError("assessment store not configured")
	}
	return s.store.ListAssessmentsByUser(ctx, userID)
}

// Get returns one assessment owned by userID.
func (s *AssessmentService) Get(ctx context.Context, userID, id string) (*Assessment, error) {
	if strings.TrimSpace(userID) == "" || strings.TrimSpace(id) == "" {
		return nil, NewInvalidError("user_id and id required")
	}
	if s.store == nil {
		return nil, NewUnavailableError("assessment store not configured")
	}
	a, err := s.store.GetAssessment(ctx, id)
	if err != nil {
		return nil, err
	}
	if a == nil || a.UserID != userID {
		return nil, NewNotFoundError("assessment not found")
	}
	return a, nil
}
