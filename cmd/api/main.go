package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"sketchrender/internal/gate"
	"sketchrender/internal/generate"
	"sketchrender/internal/history"
	"sketchrender/internal/http/handlers"
	"sketchrender/internal/http/httpapi"
	"sketchrender/internal/infra"
	"sketchrender/internal/infra/geoip"
	"sketchrender/internal/pipeline"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx := context.Background()

	// Optional request-history log.
	dbpool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect database")
	}
	var recorder *history.Recorder
	if dbpool != nil {
		defer dbpool.Close()
		recorder = history.NewRecorder(infra.NewSQLRunner(dbpool, logger))
	}

	// Cooldown ledger: in-memory unless Redis is configured.
	var ledger gate.Ledger = gate.NewMemoryLedger()
	if cfg.RedisAddr != "" {
		redisLedger, err := gate.NewRedisLedger(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect redis")
		}
		defer redisLedger.Close()
		ledger = redisLedger
	}

	creds := gate.LoadCredentials(cfg.CredentialsPath, logger)
	logger.Info().Int("credentials", len(creds)).Msg("allow-list loaded")
	accessGate := gate.New(creds, ledger, cfg.CooldownWindow)

	var resolver geoip.ContinentResolver
	if geoResolver, err := geoip.NewResolver(cfg.GeoIPDBPath); err != nil {
		logger.Warn().Err(err).Msg("geoip disabled")
	} else if geoResolver != nil {
		defer geoResolver.Close()
		resolver = geoResolver
	}

	workflow, err := pipeline.LoadWorkflow(cfg.WorkflowPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load workflow graph")
	}

	client, err := pipeline.NewClient(pipeline.Options{
		BaseURL:      cfg.PipelineBaseURL,
		Logger:       logger,
		AwaitTimeout: cfg.PipelineAwaitTimeout,
		PollInterval: cfg.PipelinePollInterval,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build pipeline client")
	}

	svc, err := generate.NewService(generate.Options{
		Gate:     accessGate,
		Client:   client,
		Workflow: workflow,
		Nodes: generate.NodeTitles{
			Prompt:     cfg.PromptNode,
			Dimensions: cfg.DimensionsNode,
			Sketch:     cfg.SketchNode,
			Output:     cfg.OutputNode,
		},
		Recorder:   recorder,
		Logger:     logger,
		StagingDir: cfg.StagingDir,
		Resolution: cfg.DefaultResolution,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build generation service")
	}

	app := handlers.NewApp(svc, resolver, logger)
	router := httpapi.NewRouter(app)
	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}
