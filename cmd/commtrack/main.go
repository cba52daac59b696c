package main

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/gartstein/commtrack/internal/crm/controller"
	"github.com/gartstein/commtrack/internal/crm/events"
	"github.com/gartstein/commtrack/internal/crm/idgen"
	"github.com/gartstein/commtrack/internal/crm/report"
	"github.com/gartstein/commtrack/internal/crm/snapshot"
	"github.com/gartstein/commtrack/internal/crm/store"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Config struct for YAML configuration
type Config struct {
	DBPath       string `yaml:"DB_PATH"`
	ReportPath   string `yaml:"REPORT_PATH"`
	TopCompanies int    `yaml:"TOP_COMPANIES"`
}

func main() {
	logger := initLogger()
	defer func(logger *zap.Logger) {
		err := logger.Sync()
		if err != nil {
			logger.Error("failed to sync logger", zap.Error(err))
		}
	}(logger)

	cfg, err := loadConfig()
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}

	repo, err := snapshot.Open(cfg.DBPath)
	if err != nil {
		logger.Fatal("failed to open snapshot database", zap.Error(err))
	}
	defer func() {
		if err := repo.Close(); err != nil {
			logger.Error("failed to close snapshot database", zap.Error(err))
		}
	}()

	ctx := context.Background()
	st := store.New(repo, idgen.NewClock(), logger)
	if err := st.Load(ctx); err != nil {
		logger.Fatal("failed to load store", zap.Error(err))
	}

	notifier := events.NewNotifier(logger)
	defer notifier.Close()

	svc := controller.NewService(st, notifier, logger)

	summary := svc.DueSummary(time.Now())
	logger.Info("due summary",
		zap.Int("overdue", len(summary.Overdue)),
		zap.Int("due_today", len(summary.DueToday)),
		zap.Int("total", summary.Total()),
	)

	if cfg.ReportPath != "" {
		data, err := report.WriteXLSX(svc.Report(cfg.TopCompanies))
		if err != nil {
			logger.Fatal("failed to build report", zap.Error(err))
		}
		if err := os.WriteFile(cfg.ReportPath, data, 0o644); err != nil {
			logger.Fatal("failed to write report", zap.Error(err))
		}
		logger.Info("report written", zap.String("path", cfg.ReportPath))
	}
}

// initLogger initializes a Zap production logger.
func initLogger() *zap.Logger {
	logger, _ := zap.NewProduction()
	return logger
}

// loadConfig loads configuration. Use real config tooling (e.g. Viper) in
// production.
func loadConfig() (*Config, error) {
	configPath := filepath.Join("internal", "crm", "config", "config.yaml")
	file, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}
	var cfg Config
	err = yaml.Unmarshal(file, &cfg)
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}
