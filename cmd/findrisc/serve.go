package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/soaringjerry/findrisc/internal/ai"
	"github.com/soaringjerry/findrisc/internal/api"
	"github.com/soaringjerry/findrisc/internal/config"
	"github.com/soaringjerry/findrisc/internal/db"
	"github.com/soaringjerry/findrisc/internal/metrics"
	"github.com/soaringjerry/findrisc/internal/middleware"
	"github.com/soaringjerry/findrisc/internal/services"
	"github.com/soaringjerry/findrisc/internal/utils"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Serves the questionnaire API, /health, /version and /metrics.

Assessments are kept in SQLite when sqlite_path is configured, otherwise in
memory. Narrative commentary is requested from Gemini when GEMINI_API_KEY is set.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if serveAddr != "" {
		cfg.Addr = serveAddr
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	var narrator services.Narrator
	if cfg.Gemini.Enabled() {
		client, err := ai.NewGeminiClient(ctx, cfg.Gemini.APIKey, cfg.Gemini.Generation())
		if err != nil {
			return err
		}
		narrator = services.NewNarrativeService(client, cfg.Gemini.Models, logger)
		logger.Info("narrative commentary enabled", zap.Strings("models", cfg.Gemini.Models))
	} else {
		logger.Info("narrative commentary disabled: GEMINI_API_KEY not set")
	}

	m := metrics.New()
	svc := services.NewAssessmentService(store, narrator, logger)
	svc.SetObserver(m)
	svc.SetNarrativeTimeout(cfg.Gemini.Timeout)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           newHandler(cfg, svc, m),
		ReadHeaderTimeout: 10 * time.Second,
		// Narrative generation can take up to the configured timeout.
		WriteTimeout: cfg.Gemini.Timeout + 30*time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("findrisc server listening", zap.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// openStore returns the SQLite store when configured, otherwise an in-memory one.
func openStore(cfg config.Config) (services.AssessmentStore, func(), error) {
	if cfg.SQLitePath == "" {
		logger.Warn("sqlite_path not set: assessments are kept in memory only")
		return api.NewMemoryStore(), func() {}, nil
	}
	conn, err := db.Open(cfg.SQLitePath)
	if err != nil {
		return nil, nil, err
	}
	applied, err := db.RunMigrations(conn, cfg.MigrationsDir)
	if err != nil {
		_ = conn.Close()
		return nil, nil, err
	}
	if len(applied) > 0 {
		logger.Info("applied migrations", zap.Strings("files", applied))
	}
	store, err := db.NewSQLiteStore(conn)
	if err != nil {
		_ = conn.Close()
		return nil, nil, err
	}
	logger.Info("using sqlite store", zap.String("path", cfg.SQLitePath))
	return store, func() { _ = conn.Close() }, nil
}

func newHandler(cfg config.Config, svc *services.AssessmentService, m *metrics.Metrics) http.Handler {
	mux := http.NewServeMux()
	api.NewRouter(svc, logger).Register(mux)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		locale := middleware.LocaleFromContext(r.Context())
		_ = json.NewEncoder(w).Encode(map[string]any{
			"ok":         true,
			"name":       "FINDRISC API",
			"locale":     locale,
			"msg":        utils.T(locale, "health.ok"),
			"commit":     cfg.Commit,
			"build_time": cfg.BuildTime,
		})
	})
	mux.HandleFunc("/version", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"commit":     cfg.Commit,
			"build_time": cfg.BuildTime,
		})
	})
	mux.Handle("/metrics", m.Handler())
	if cfg.StaticDir != "" {
		mux.Handle("/", http.FileServer(http.Dir(cfg.StaticDir)))
	}

	var h http.Handler = mux
	h = middleware.Locale(cfg.DefaultLocale)(h)
	h = middleware.SecureHeaders(h)
	h = middleware.CORS(cfg.CORSOrigin)(h)
	h = middleware.RequestLogger(logger)(h)
	return h
}
