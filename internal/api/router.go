package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/soaringjerry/findrisc/internal/middleware"
	"github.com/soaringjerry/findrisc/internal/services"
)

const maxBodyBytes = 64 << 10

type Router struct {
	svc    *services.AssessmentService
	logger *zap.Logger
}

func NewRouter(svc *services.AssessmentService, logger *zap.Logger) *Router {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Router{svc: svc, logger: logger}
}

func (rt *Router) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/score", rt.handleScore)
	mux.HandleFunc("/api/tiers", rt.handleTiers)
	mux.HandleFunc("/api/summary", rt.handleSummary)
	mux.HandleFunc("/api/assessments", rt.handleAssessments)
	mux.HandleFunc("/api/assessments/export", rt.handleExport)
	mux.HandleFunc("/api/assessments/", rt.handleAssessmentScoped)
}

// resultView is a RiskResult with its labels resolved for the request locale.
type resultView struct {
	services.RiskResult
	Label    string `json:"label"`
	Estimate string `json:"estimate"`
}

func viewResult(r services.RiskResult, locale string) resultView {
	return resultView{RiskResult: r, Label: r.Tier.Label(locale), Estimate: r.Tier.Estimate(locale)}
}

type assessmentView struct {
	*services.Assessment
	Result resultView `json:"result"`
}

func viewAssessment(a *services.Assessment, locale string) assessmentView {
	return assessmentView{Assessment: a, Result: viewResult(a.Result, locale)}
}

// POST /api/score: score a form without storing it
func (rt *Router) handleScore(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var form services.FormInput
	if !rt.decode(w, r, &form) {
		return
	}
	answers, err := form.Answers()
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	result, err := services.Assess(answers)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	locale := middleware.LocaleFromContext(r.Context())
	rt.writeJSON(w, http.StatusOK, map[string]any{
		"answers": answers,
		"bmi":     answers.BMI,
		"result":  viewResult(result, locale),
	})
}

// GET /api/tiers: gauge bands with localized labels
func (rt *Router) handleTiers(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	locale := middleware.LocaleFromContext(r.Context())
	rt.writeJSON(w, http.StatusOK, map[string]any{"max": services.GaugeMax, "bands": services.TierBands(locale)})
}

// GET /api/summary
func (rt *Router) handleSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	sum, err := rt.svc.Summary(r.Context(), middleware.LocaleFromContext(r.Context()))
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	rt.writeJSON(w, http.StatusOK, sum)
}

// POST /api/assessments { user_id?, skip_narrative?, ...form }
// GET  /api/assessments?user_id=...
func (rt *Router) handleAssessments(w http.ResponseWriter, r *http.Request) {
	locale := middleware.LocaleFromContext(r.Context())
	switch r.Method {
	case http.MethodPost:
		var req struct {
			UserID        string `json:"user_id"`
			SkipNarrative bool   `json:"skip_narrative"`
			services.FormInput
		}
		if !rt.decode(w, r, &req) {
			return
		}
		a, err := rt.svc.Submit(r.Context(), services.SubmitRequest{
			UserID:        req.UserID,
			Locale:        locale,
			Form:          req.FormInput,
			SkipNarrative: req.SkipNarrative,
		})
		if err != nil {
			rt.writeError(w, r, err)
			return
		}
		rt.writeJSON(w, http.StatusCreated, viewAssessment(a, locale))
	case http.MethodGet:
		list, err := rt.svc.History(r.Context(), r.URL.Query().Get("user_id"))
		if err != nil {
			rt.writeError(w, r, err)
			return
		}
		out := make([]assessmentView, 0, len(list))
		for _, a := range list {
			out = append(out, viewAssessment(a, locale))
		}
		rt.writeJSON(w, http.StatusOK, map[string]any{"user_id": r.URL.Query().Get("user_id"), "assessments": out})
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// GET /api/assessments/export?user_id=...
func (rt *Router) handleExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	list, err := rt.svc.History(r.Context(), r.URL.Query().Get("user_id"))
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	b, err := services.ExportAssessmentsCSV(list)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", "attachment; filename=findrisc_"+time.Now().UTC().Format("20060102")+".csv")
	_, _ = w.Write(b)
}

// GET /api/assessments/{id}?user_id=...
// GET /api/assessments/{id}/report?user_id=...
func (rt *Router) handleAssessmentScoped(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/assessments/"), "/")
	parts := strings.Split(rest, "/")
	if parts[0] == "" || len(parts) > 2 || (len(parts) == 2 && parts[1] != "report") {
		http.NotFound(w, r)
		return
	}
	a, err := rt.svc.Get(r.Context(), r.URL.Query().Get("user_id"), parts[0])
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	locale := middleware.LocaleFromContext(r.Context())
	if len(parts) == 2 {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Header().Set("Content-Disposition", "attachment; filename=findrisc_report_"+a.ID+".txt")
		_, _ = w.Write([]byte(services.RenderReport(a, locale)))
		return
	}
	rt.writeJSON(w, http.StatusOK, viewAssessment(a, locale))
}

func (rt *Router) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}

func (rt *Router) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	if se, ok := services.AsServiceError(err); ok {
		switch se.Code {
		case services.ErrorInvalid:
			status = http.StatusBadRequest
		case services.ErrorNotFound:
			status = http.StatusNotFound
		case services.ErrorBadGateway:
			status = http.StatusBadGateway
		case services.ErrorUnavailable:
			status = http.StatusServiceUnavailable
		}
	}
	msg := err.Error()
	if status == http.StatusInternalServerError {
		rt.logger.Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
		msg = "internal error"
	}
	rt.writeJSON(w, status, map[string]any{"error": msg})
}

// writeJSON encodes v before committing status; an encoding failure becomes a 500.
func (rt *Router) writeJSON(w http.ResponseWriter, status int, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		rt.logger.Error("encode response", zap.Error(err))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal error"}` + "\n"))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}
