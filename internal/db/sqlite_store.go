package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/soaringjerry/findrisc/internal/services"
)

// Fixed-width UTC layout so submitted_at sorts lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// Open opens (creating if needed) the SQLite database at path.
func Open(path string) (*sql.DB, error) {
	if path == "" {
		return nil, errors.New("sqlite path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create sqlite dir: %w", err)
	}
	dsn := fmt.Sprintf("file:%s?cache=shared&_busy_timeout=5000", filepath.ToSlash(path))
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	return db, nil
}

type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(db *sql.DB) (*SQLiteStore, error) {
	if db == nil {
		return nil, errors.New("nil db")
	}
	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
	}
	for _, stmt := range pragmas {
		if _, err := db.Exec(stmt); err != nil {
			return nil, fmt.Errorf("apply sqlite pragma %q: %w", stmt, err)
		}
	}
	return &SQLiteStore{db: db}, nil
}

func boolToInt64(v bool) int64 {
	if v {
		return 1
	}
	return 0
}

func toNullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

const assessmentColumns = `id, user_id, submitted_at, locale, weight_kg, height_cm, age, bmi, waist_cm, sex,
	physically_active, fruit_veg, hypertension_meds, high_glucose, family_history,
	score, tier, ten_year_estimate, narrative, narrative_model, narrative_error`

func (s *SQLiteStore) AddAssessment(ctx context.Context, a *services.Assessment) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO assessments (`+assessmentColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.UserID, a.SubmittedAt.UTC().Format(timeLayout), a.Locale, a.WeightKG, a.HeightCM,
		a.Answers.Age, a.Answers.BMI, a.Answers.WaistCM, string(a.Answers.Sex),
		boolToInt64(a.Answers.PhysicallyActive), string(a.Answers.FruitVeg),
		boolToInt64(a.Answers.HypertensionMeds), boolToInt64(a.Answers.HighGlucose),
		string(a.Answers.FamilyHistory), a.Result.Score, a.Result.Tier.String(), a.Result.TenYearEstimate,
		toNullString(a.Narrative), toNullString(a.NarrativeModel), toNullString(a.NarrativeError),
	)
	if err != nil {
		return fmt.Errorf("insert assessment %s: %w", a.ID, err)
	}
	return nil
}

func (s *SQLiteStore) GetAssessment(ctx context.Context, id string) (*services.Assessment, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+assessmentColumns+` FROM assessments WHERE id = ?`, id)
	a, err := scanAssessment(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get assessment %s: %w", id, err)
	}
	return a, nil
}

func (s *SQLiteStore) ListAssessmentsByUser(ctx context.Context, userID string) ([]*services.Assessment, error) {
	return s.list(ctx, `SELECT `+assessmentColumns+` FROM assessments WHERE user_id = ?
		ORDER BY submitted_at DESC, id DESC`, userID)
}

func (s *SQLiteStore) ListAssessments(ctx context.Context) ([]*services.Assessment, error) {
	return s.list(ctx, `SELECT `+assessmentColumns+` FROM assessments ORDER BY submitted_at DESC, id DESC`)
}

func (s *SQLiteStore) list(ctx context.Context, query string, args ...any) ([]*services.Assessment, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list assessments: %w", err)
	}
	defer rows.Close()
	out := []*services.Assessment{}
	for rows.Next() {
		a, err := scanAssessment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan assessment: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAssessment(r rowScanner) (*services.Assessment, error) {
	var (
		a                                  services.Assessment
		submitted, sex, fruitVeg, family   string
		tier                               string
		active, htn, glucose               int64
		narrative, narrativeModel, narrErr sql.NullString
	)
	if err := r.Scan(
		&a.ID, &a.UserID, &submitted, &a.Locale, &a.WeightKG, &a.HeightCM,
		&a.Answers.Age, &a.Answers.BMI, &a.Answers.WaistCM, &sex,
		&active, &fruitVeg, &htn, &glucose, &family,
		&a.Result.Score, &tier, &a.Result.TenYearEstimate,
		&narrative, &narrativeModel, &narrErr,
	); err != nil {
		return nil, err
	}
	ts, err := time.Parse(timeLayout, submitted)
	if err != nil {
		return nil, fmt.Errorf("parse submitted_at %q: %w", submitted, err)
	}
	if err := a.Result.Tier.UnmarshalText([]byte(tier)); err != nil {
		return nil, err
	}
	a.SubmittedAt = ts
	a.Answers.Sex = services.Sex(sex)
	a.Answers.FruitVeg = services.FruitVegIntake(fruitVeg)
	a.Answers.FamilyHistory = services.FamilyHistory(family)
	a.Answers.PhysicallyActive = active != 0
	a.Answers.HypertensionMeds = htn != 0
	a.Answers.HighGlucose = glucose != 0
	a.Narrative = narrative.String
	a.NarrativeModel = narrativeModel.String
	a.NarrativeError = narrErr.String
	return &a, nil
}

var _ services.AssessmentStore = (*SQLiteStore)(nil)
