package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/xxxsen/common/logger"
	"github.com/xxxsen/common/logutil"
	"github.com/xxxsen/common/webapi"
	"go.uber.org/zap"

	"github.com/xxxsen/textlens/internal/ai"
	"github.com/xxxsen/textlens/internal/config"
	"github.com/xxxsen/textlens/internal/db"
	"github.com/xxxsen/textlens/internal/handler"
	"github.com/xxxsen/textlens/internal/job"
	"github.com/xxxsen/textlens/internal/middleware"
	"github.com/xxxsen/textlens/internal/pkg/jwt"
	"github.com/xxxsen/textlens/internal/repo"
	"github.com/xxxsen/textlens/internal/schedule"
	"github.com/xxxsen/textlens/internal/service"
)

var version = "dev"

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "textlens",
		Short: "textlens text analysis server",
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run textlens server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, conn, err := bootstrap(cmd.Context(), configPath)
			if err != nil {
				return err
			}
			defer conn.Close()
			return runServer(cfg, conn)
		},
	}

	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "apply database migrations and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, conn, err := bootstrap(cmd.Context(), configPath)
			if err != nil {
				return err
			}
			defer conn.Close()
			logutil.GetLogger(context.Background()).Info("migrations applied")
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config.json, environment only when empty")
	rootCmd.AddCommand(runCmd, migrateCmd)

	if err := rootCmd.Execute(); err != nil {
		logutil.GetLogger(context.Background()).Fatal("startup error", zap.Error(err))
	}
}

// bootstrap loads config, initialises logging and returns a migrated database.
func bootstrap(ctx context.Context, configPath string) (*config.Config, *sql.DB, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	logger.Init(
		cfg.LogConfig.File,
		cfg.LogConfig.Level,
		int(cfg.LogConfig.FileCount),
		int(cfg.LogConfig.FileSize),
		int(cfg.LogConfig.KeepDays),
		cfg.LogConfig.Console,
	)
	logutil.GetLogger(ctx).Info("config loaded",
		zap.String("config", configPath),
		zap.String("db_driver", cfg.Database.Driver),
		zap.Bool("mock_mode", cfg.Analyze.MockMode))

	conn, err := db.Open(cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("open db: %w", err)
	}
	if err := db.ApplyMigrations(ctx, conn, cfg.Database.Driver); err != nil {
		_ = conn.Close()
		return nil, nil, fmt.Errorf("migrations: %w", err)
	}
	return cfg, conn, nil
}

func buildSummarizerGenerator(cfg *config.Config) (ai.IGenerator, error) {
	entries := make([]ai.GeneratorEntry, 0, len(cfg.Summarizer.Providers))
	for _, item := range cfg.Summarizer.Providers {
		provider, err := ai.NewProvider(item.Provider, item.Data)
		if err != nil {
			return nil, fmt.Errorf("init summarizer provider %s: %w", item.Provider, err)
		}
		entries = append(entries, ai.GeneratorEntry{
			Name:      provider.Name() + "/" + item.Model,
			Generator: ai.NewGenerator(provider, item.Model),
		})
	}
	return ai.NewGroupGenerator(entries), nil
}

func buildPipeline(cfg *config.Config) (ai.Classifier, ai.Summarizer, error) {
	if cfg.Analyze.MockMode {
		src := ai.NewMockSource(cfg.Mock.Seed)
		simulate := cfg.Mock.ShouldSimulateLatency()
		return ai.NewMockClassifier(src, cfg.Analyze.CandidateLabels, simulate), ai.NewMockSummarizer(src, simulate), nil
	}
	classifier := ai.NewHFClassifier(ai.HFClassifierConfig{
		Endpoint:      cfg.Classifier.Endpoint,
		Token:         cfg.Classifier.Token,
		Timeout:       time.Duration(cfg.Classifier.TimeoutSeconds) * time.Second,
		MaxAttempts:   cfg.Classifier.MaxAttempts,
		RetryDelay:    time.Duration(cfg.Classifier.RetryDelayMs) * time.Millisecond,
		DefaultLabels: cfg.Analyze.CandidateLabels,
	})
	gen, err := buildSummarizerGenerator(cfg)
	if err != nil {
		return nil, nil, err
	}
	summarizer := ai.NewGenerativeSummarizer(gen, ai.GenerativeSummarizerConfig{
		Timeout:         time.Duration(cfg.Summarizer.TimeoutSeconds) * time.Second,
		MaxAttempts:     cfg.Summarizer.MaxAttempts,
		MaxSummaryChars: cfg.Summarizer.MaxSummaryChars,
	})
	return classifier, summarizer, nil
}

// warmupTimeout covers every classifier attempt plus the delay between them.
func warmupTimeout(c config.ClassifierConfig) time.Duration {
	attempts := c.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	perAttempt := time.Duration(c.TimeoutSeconds)*time.Second + time.Duration(c.RetryDelayMs)*time.Millisecond
	return time.Duration(attempts) * perAttempt
}

func runServer(cfg *config.Config, conn *sql.DB) error {
	logutil.GetLogger(context.Background()).Info("starting textlens", zap.String("version", version))

	signer, err := jwt.NewSigner([]byte(cfg.JWT.Secret), cfg.JWT.Algorithm, time.Duration(cfg.JWT.TTLMinutes)*time.Minute)
	if err != nil {
		return fmt.Errorf("init jwt: %w", err)
	}
	userRepo := repo.NewUserRepo(conn, cfg.Database.Driver)
	authService := service.NewAuthService(userRepo, signer)

	classifier, summarizer, err := buildPipeline(cfg)
	if err != nil {
		return err
	}
	analyzeService := service.NewAnalyzeService(classifier, summarizer, service.AnalyzeOptions{
		MinTextLength:   cfg.Analyze.MinTextLength,
		MaxTextLength:   cfg.Analyze.MaxTextLength,
		CandidateLabels: cfg.Analyze.CandidateLabels,
	})

	deps := handler.RouterDeps{
		Auth:            handler.NewAuthHandler(authService),
		Analyze:         handler.NewAnalyzeHandler(analyzeService, cfg.Analyze.MockMode),
		System:          handler.NewSystemHandler(userRepo, version),
		Signer:          signer,
		UserLookup:      authService.CurrentUser,
		AnalyzeInterval: time.Duration(cfg.Analyze.RateLimitMs) * time.Millisecond,
	}

	addr := fmt.Sprintf("0.0.0.0:%d", cfg.Port)
	engine, err := webapi.NewEngine(
		"/",
		addr,
		webapi.WithRegister(func(group *gin.RouterGroup) {
			handler.RegisterRoutes(group, deps)
		}),
		webapi.WithExtraMiddlewares(
			middleware.RequestID(),
			middleware.CORS(cfg.CORSAllowlist),
			gzip.Gzip(gzip.DefaultCompression),
		),
	)
	if err != nil {
		return fmt.Errorf("init web engine: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if !cfg.Analyze.MockMode && cfg.Classifier.WarmupCron != "" {
		scheduler := schedule.NewCronScheduler(warmupTimeout(cfg.Classifier))
		if err := scheduler.AddJob(job.NewClassifierWarmupJob(classifier, cfg.Analyze.CandidateLabels), cfg.Classifier.WarmupCron); err != nil {
			return fmt.Errorf("schedule classifier warmup: %w", err)
		}
		scheduler.Start(ctx)
		defer scheduler.Stop()
	}

	logutil.GetLogger(context.Background()).Info("http server listening", zap.String("addr", addr))
	go func() {
		if err := engine.Run(); err != nil && err != http.ErrServerClosed {
			logutil.GetLogger(context.Background()).Error("server error", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	logutil.GetLogger(context.Background()).Info("server stopping...")
	return nil
}
