package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/soaringjerry/findrisc/internal/ai"
	"github.com/soaringjerry/findrisc/internal/utils"
)

// Config is the runtime configuration of the server and CLI.
// Precedence: defaults < YAML file < environment < command-line flags.
type Config struct {
	Addr          string `yaml:"addr"`
	SQLitePath    string `yaml:"sqlite_path"`
	MigrationsDir string `yaml:"migrations_dir"`
	StaticDir     string `yaml:"static_dir"`
	DefaultLocale string `yaml:"default_locale"`
	CORSOrigin    string `yaml:"cors_origin"`
	Gemini        Gemini `yaml:"gemini"`

	Commit    string `yaml:"-"`
	BuildTime string `yaml:"-"`
}

type Gemini struct {
	APIKey          string        `yaml:"api_key"`
	Models          []string      `yaml:"models"`
	Temperature     float32       `yaml:"temperature"`
	TopP            float32       `yaml:"top_p"`
	TopK            float32       `yaml:"top_k"`
	MaxOutputTokens int32         `yaml:"max_output_tokens"`
	Timeout         time.Duration `yaml:"timeout"`
}

// Enabled reports whether narrative commentary can be requested.
func (g Gemini) Enabled() bool { return g.APIKey != "" && len(g.Models) > 0 }

func (g Gemini) Generation() ai.GenerationConfig {
	return ai.GenerationConfig{
		Temperature:     g.Temperature,
		TopP:            g.TopP,
		TopK:            g.TopK,
		MaxOutputTokens: g.MaxOutputTokens,
	}
}

func Default() Config {
	gen := ai.DefaultGenerationConfig()
	return Config{
		Addr:          ":8080",
		DefaultLocale: "en",
		CORSOrigin:    "*",
		Gemini: Gemini{
			Models:          append([]string(nil), ai.DefaultModels...),
			Temperature:     gen.Temperature,
			TopP:            gen.TopP,
			TopK:            gen.TopK,
			MaxOutputTokens: gen.MaxOutputTokens,
			Timeout:         60 * time.Second,
		},
	}
}

// Load builds a Config from defaults, the optional YAML file at path and the
// FINDRISC_* / GEMINI_API_KEY environment variables.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	applyEnv(&cfg)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	cfg.Addr = utils.SafeEnv("FINDRISC_ADDR", cfg.Addr)
	cfg.SQLitePath = utils.SafeEnv("FINDRISC_SQLITE_PATH", cfg.SQLitePath)
	cfg.MigrationsDir = utils.SafeEnv("FINDRISC_MIGRATIONS_DIR", cfg.MigrationsDir)
	cfg.StaticDir = utils.SafeEnv("FINDRISC_STATIC_DIR", cfg.StaticDir)
	cfg.DefaultLocale = utils.SafeEnv("FINDRISC_DEFAULT_LOCALE", cfg.DefaultLocale)
	cfg.CORSOrigin = utils.SafeEnv("FINDRISC_CORS_ORIGIN", cfg.CORSOrigin)
	cfg.Commit = utils.SafeEnv("FINDRISC_COMMIT", cfg.Commit)
	cfg.BuildTime = utils.SafeEnv("FINDRISC_BUILD_TIME", cfg.BuildTime)

	cfg.Gemini.APIKey = utils.SafeEnv("GEMINI_API_KEY", cfg.Gemini.APIKey)
	cfg.Gemini.Models = utils.EnvList("FINDRISC_GEMINI_MODELS", cfg.Gemini.Models)
	cfg.Gemini.Temperature = float32(utils.EnvFloat("FINDRISC_GEMINI_TEMPERATURE", float64(cfg.Gemini.Temperature)))
	cfg.Gemini.Timeout = utils.EnvDuration("FINDRISC_NARRATIVE_TIMEOUT", cfg.Gemini.Timeout)
}

// Validate rejects settings the server cannot start with.
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Addr) == "" {
		errs = append(errs, errors.New("addr must not be empty"))
	}
	if c.DefaultLocale != "" && !supportedLocale(c.DefaultLocale) {
		errs = append(errs, fmt.Errorf("default_locale %q not in %v", c.DefaultLocale, utils.SupportedLocales))
	}
	if c.Gemini.Temperature < 0 || c.Gemini.Temperature > 2 {
		errs = append(errs, fmt.Errorf("gemini.temperature %v out of range [0,2]", c.Gemini.Temperature))
	}
	if c.Gemini.Timeout <= 0 {
		errs = append(errs, errors.New("gemini.timeout must be positive"))
	}
	return errors.Join(errs...)
}

func supportedLocale(l string) bool {
	for _, s := range utils.SupportedLocales {
		if s == l {
			return true
		}
	}
	return false
}
