package api

import (
	"bytes"
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soaringjerry/findrisc/internal/middleware"
	"github.com/soaringjerry/findrisc/internal/services"
)

func newTestHandler(t *testing.T) http.Handler {
	t.Helper()
	svc := services.NewAssessmentService(newMemoryStore(), nil, nil)
	mux := http.NewServeMux()
	NewRouter(svc, nil).Register(mux)
	return middleware.Locale("en")(mux)
}

func do(h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	var r *http.Request
	if body != "" {
		r = httptest.NewRequest(method, target, strings.NewReader(body))
	} else {
		r = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r)
	return rec
}

const formJSON = `"age":50,"sex":"male","weight_kg":81,"height_cm":174,"waist_cm":95,` +
	`"physically_active":true,"fruit_veg":"every_day","family_history":"distant_relative"`

func TestScoreEndpoint(t *testing.T) {
	h := newTestHandler(t)
	rec := do(h, http.MethodPost, "/api/score?lang=es", "{"+formJSON+"}")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Result struct {
			Score    int    `json:"score"`
			Tier     string `json:"tier"`
			Label    string `json:"label"`
			Estimate string `json:"estimate"`
		} `json:"result"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 9, resp.Result.Score)
	assert.Equal(t, "slightly_elevated", resp.Result.Tier)
	assert.Equal(t, "Riesgo ligeramente elevado", resp.Result.Label)
	assert.Equal(t, "1 de cada 25 personas desarrollará diabetes", resp.Result.Estimate)
}

func TestScoreEndpointRejectsBadInput(t *testing.T) {
	h := newTestHandler(t)
	cases := map[string]string{
		"unknown field":  `{"age":50,"colour":"blue"}`,
		"malformed":      `{"age":`,
		"invalid family": `{` + strings.Replace(formJSON, "distant_relative", "neighbour", 1) + `}`,
		"zero height":    `{` + strings.Replace(formJSON, `"height_cm":174`, `"height_cm":0`, 1) + `}`,
		"overflowing bmi": `{` + strings.Replace(strings.Replace(formJSON, `"height_cm":174`, `"height_cm":1`, 1),
			`"weight_kg":81`, `"weight_kg":1e308`, 1) + `}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			rec := do(h, http.MethodPost, "/api/score", body)
			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
		})
	}
	assert.Equal(t, http.StatusMethodNotAllowed, do(h, http.MethodGet, "/api/score", "").Code)
}

func TestSubmitOverflowingBMIIsRejectedAndNotStored(t *testing.T) {
	h := newTestHandler(t)
	body := `{"user_id":"u9",` + strings.Replace(strings.Replace(formJSON, `"height_cm":174`, `"height_cm":1`, 1),
		`"weight_kg":81`, `"weight_kg":1e308`, 1) + `}`
	rec := do(h, http.MethodPost, "/api/assessments", body)
	assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "bmi out of range")

	rec = do(h, http.MethodGet, "/api/assessments?user_id=u9", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"user_id":"u9","assessments":[]}`, rec.Body.String())
}

func TestWriteJSONEncodingFailure(t *testing.T) {
	rt := NewRouter(nil, nil)
	rec := httptest.NewRecorder()
	rt.writeJSON(rec, http.StatusCreated, map[string]any{"bmi": math.Inf(1)})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"internal error"}`, rec.Body.String())
}

func TestTiersEndpoint(t *testing.T) {
	rec := do(newTestHandler(t), http.MethodGet, "/api/tiers", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Max   int `json:"max"`
		Bands []struct {
			Min int `json:"min"`
			Max int `json:"max"`
		} `json:"bands"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, services.GaugeMax, resp.Max)
	require.Len(t, resp.Bands, 5)
	assert.Equal(t, 0, resp.Bands[0].Min)
}

func TestAssessmentLifecycle(t *testing.T) {
	h := newTestHandler(t)

	rec := do(h, http.MethodPost, "/api/assessments", `{"user_id":"u1",`+formJSON+`}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created struct {
		ID     string `json:"id"`
		UserID string `json:"user_id"`
		Result struct {
			Label string `json:"label"`
		} `json:"result"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, "u1", created.UserID)
	assert.Equal(t, "Slightly elevated risk", created.Result.Label)

	rec = do(h, http.MethodGet, "/api/assessments?user_id=u1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), created.ID)

	rec = do(h, http.MethodGet, "/api/assessments/"+created.ID+"?user_id=u1", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(h, http.MethodGet, "/api/assessments/"+created.ID+"?user_id=u2", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(h, http.MethodGet, "/api/assessments/"+created.ID+"/report?user_id=u1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Score: 9")

	rec = do(h, http.MethodGet, "/api/assessments/"+created.ID+"/other?user_id=u1", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(h, http.MethodGet, "/api/assessments/export?user_id=u1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Equal(t, 2, bytes.Count(rec.Body.Bytes(), []byte("\n")))

	rec = do(h, http.MethodGet, "/api/summary", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"total_assessments":1`)

	assert.Equal(t, http.StatusBadRequest, do(h, http.MethodGet, "/api/assessments", "").Code)
}

func TestMemoryStoreOrderingAndCopies(t *testing.T) {
	s := newMemoryStore()
	ctx := context.Background()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"a", "b", "c"} {
		require.NoError(t, s.AddAssessment(ctx, &services.Assessment{ID: id, UserID: "u", SubmittedAt: base.Add(time.Duration(i) * time.Hour)}))
	}
	assert.Error(t, s.AddAssessment(ctx, &services.Assessment{ID: "a", UserID: "u"}))

	list, err := s.ListAssessmentsByUser(ctx, "u")
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "c", list[0].ID)

	list[0].UserID = "mutated"
	got, err := s.GetAssessment(ctx, "c")
	require.NoError(t, err)
	assert.Equal(t, "u", got.UserID)

	// equal timestamps order by id descending in both listings
	at := base.Add(24 * time.Hour)
	require.NoError(t, s.AddAssessment(ctx, &services.Assessment{ID: "t1", UserID: "v", SubmittedAt: at}))
	require.NoError(t, s.AddAssessment(ctx, &services.Assessment{ID: "t2", UserID: "v", SubmittedAt: at}))
	byUser, err := s.ListAssessmentsByUser(ctx, "v")
	require.NoError(t, err)
	require.Len(t, byUser, 2)
	assert.Equal(t, []string{"t2", "t1"}, []string{byUser[0].ID, byUser[1].ID})
	all, err := s.ListAssessments(ctx)
	require.NoError(t, err)
	assert.Equal(t, "t2", all[0].ID)
	assert.Equal(t, "t1", all[1].ID)

	missing, err := s.GetAssessment(ctx, "zzz")
	require.NoError(t, err)
	assert.Nil(t, missing)
}
