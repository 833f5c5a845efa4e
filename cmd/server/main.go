package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/cv-jobmatch/backend/internal/api"
	"github.com/cv-jobmatch/backend/internal/config"
	"github.com/cv-jobmatch/backend/internal/extract"
	"github.com/cv-jobmatch/backend/internal/history"
	"github.com/cv-jobmatch/backend/internal/jobsearch"
	"github.com/cv-jobmatch/backend/internal/matcher"
	"github.com/cv-jobmatch/backend/internal/nlp"
	"github.com/cv-jobmatch/backend/internal/skills"
	"github.com/cv-jobmatch/backend/internal/storage"
	"github.com/cv-jobmatch/backend/internal/web"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// Version info (set during build)
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the YAML configuration file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.Logging)
	slog.SetDefault(logger)

	// Ensure all data directories exist
	if err := cfg.EnsureDirectories(); err != nil {
		logger.Error("failed to create directories", "error", err)
		os.Exit(1)
	}

	fileStore, err := storage.NewLocalStore(cfg.GetUploadDir())
	if err != nil {
		logger.Error("failed to initialize storage", "error", err)
		os.Exit(1)
	}

	// The analyzer is built once and shared read-only across requests
	skillExtractor := skills.NewExtractor(nlp.NewProseAnalyzer(), skills.Options{
		Vocabulary:        cfg.Skills.Vocabulary,
		MaxSkills:         cfg.Skills.MaxSkills,
		FallbackThreshold: cfg.Skills.FallbackThreshold,
		DisableFallback:   cfg.Skills.FallbackThreshold == 0,
		Logger:            logger,
	})

	client := jobsearch.NewClient(jobsearch.Config{
		APIURL:           cfg.JobSearch.APIURL,
		AffID:            cfg.JobSearch.AffID,
		Locale:           cfg.JobSearch.Locale,
		DefaultLocation:  cfg.JobSearch.DefaultLocation,
		DefaultUserAgent: cfg.JobSearch.DefaultUserAgent,
		Timeout:          cfg.JobSearchTimeout(),
	}, nil, logger)

	var searcher jobsearch.Searcher = client
	cacheEnabled := false
	if cfg.Cache.Enabled {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		kv, err := jobsearch.NewValkeyKV(ctx, cfg.Cache.Address, cfg.Cache.Password)
		cancel()
		if err != nil {
			logger.Warn("job cache disabled", "address", cfg.Cache.Address, "error", err)
		} else {
			defer kv.Close()
			searcher = jobsearch.NewCachedSearcher(client, kv, cfg.CacheTTL(), logger)
			cacheEnabled = true
			logger.Info("job cache enabled", "address", cfg.Cache.Address, "ttl", cfg.CacheTTL())
		}
	}

	var recorder matcher.HistoryRecorder
	var historyReader api.HistoryReader
	if cfg.History.Enabled {
		store, err := history.Open(cfg.History.DBPath, logger)
		if err != nil {
			logger.Warn("search history disabled", "error", err)
		} else {
			defer store.Close()
			recorder = store
			historyReader = store
		}
	}

	m := matcher.New(extract.NewRegistry(logger), skillExtractor, searcher, recorder, logger)

	handlers := api.NewHandlers(&api.Dependencies{
		Store:           fileStore,
		Matcher:         m,
		History:         historyReader,
		Vocabulary:      skillExtractor.Vocabulary(),
		DefaultLocation: cfg.JobSearch.DefaultLocation,
		UpstreamFailure: api.UpstreamFailureMode(cfg.JobSearch.UpstreamFailure),
		Version:         Version,
		Features: map[string]bool{
			"cache":   cacheEnabled,
			"history": historyReader != nil,
		},
		Logger: logger,
	})

	e := echo.New()
	e.HideBanner = true
	// The service is exposed directly; forwarding headers are client-controlled.
	e.IPExtractor = echo.ExtractIPDirect()
	e.HTTPErrorHandler = api.NewErrorHandler(logger, Version == "dev")

	// Configure middleware
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		Skipper: func(c echo.Context) bool {
			return !cfg.Server.EnableRequestLogging || c.Request().URL.Path == "/api/health"
		},
		LogStatus:    true,
		LogURI:       true,
		LogMethod:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogError:     true,
		LogRequestID: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []any{
				"method", v.Method, "uri", v.URI, "status", v.Status,
				"latency", v.Latency, "remote_ip", v.RemoteIP,
			}
			if v.RequestID != "" {
				attrs = append(attrs, "request_id", v.RequestID)
			}
			if v.Error != nil {
				attrs = append(attrs, "error", v.Error)
			}
			logger.Info("request", attrs...)
			return nil
		},
	}))

	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		StackSize:         1024 * 4,
		DisablePrintStack: false,
	}))
	e.Use(middleware.RequestID())

	// Body limit middleware
	e.Use(middleware.BodyLimit(cfg.Server.BodyLimit))

	// CORS configuration
	if cfg.Server.EnableCORS {
		origins := strings.Split(cfg.Server.AllowOrigins, ",")
		for i := range origins {
			origins[i] = strings.TrimSpace(origins[i])
		}
		if len(origins) == 0 || (len(origins) == 1 && origins[0] == "") {
			origins = []string{"*"}
		}
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins:  origins,
			AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowHeaders:  []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
			ExposeHeaders: []string{api.HeaderExtractedSkills},
		}))
	}

	api.RegisterRoutes(e, handlers)

	// Register embedded frontend
	if web.HasEmbeddedFiles() {
		if err := web.RegisterStaticRoutes(e); err != nil {
			logger.Warn("failed to register static routes", "error", err)
		}
	}

	s := &http.Server{
		Addr:         cfg.GetServerAddr(),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	fmt.Printf("\n")
	fmt.Printf("╔═══════════════════════════════════════════════════════════╗\n")
	fmt.Printf("║           CV Job Matcher                                  ║\n")
	fmt.Printf("╠═══════════════════════════════════════════════════════════╣\n")
	fmt.Printf("║  Version:    %-45s║\n", Version)
	fmt.Printf("║  Build Time: %-45s║\n", BuildTime)
	fmt.Printf("╠═══════════════════════════════════════════════════════════╣\n")
	fmt.Printf("║  Config:    %-46s║\n", *configPath)
	fmt.Printf("║  Listen:    http://%-38s║\n", cfg.GetServerAddr())
	fmt.Printf("║  Uploads:   %-46s║\n", cfg.GetUploadDir())
	fmt.Printf("╚═══════════════════════════════════════════════════════════╝\n")
	fmt.Printf("\n")

	if err := e.StartServer(s); err != nil && err != http.ErrServerClosed {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func newLogger(cfg config.LoggingConfig) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}

	if strings.EqualFold(cfg.Format, "json") {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}
