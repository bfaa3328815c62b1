package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/careloop/care-assistant/internal/api"
	"github.com/careloop/care-assistant/internal/appointment"
	"github.com/careloop/care-assistant/internal/config"
	"github.com/careloop/care-assistant/internal/db"
	"github.com/careloop/care-assistant/internal/llm"
	"github.com/careloop/care-assistant/internal/logger"
	"github.com/careloop/care-assistant/internal/profile"
	redisclient "github.com/careloop/care-assistant/internal/redis"
	"github.com/careloop/care-assistant/internal/retrieval"
)

const version = "0.3.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	zl, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("logger init error: %v", err)
	}
	defer zl.Sync()

	zl.Info("chat-server starting up",
		zap.String("env", cfg.Env),
		zap.String("http_port", cfg.HTTPPort))

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Connect Postgres
	pgCtx, cancelPg := context.WithTimeout(rootCtx, 10*time.Second)
	pgPool, err := db.ConnectPostgres(pgCtx, cfg.PostgresDSN)
	cancelPg()
	if err != nil {
		zl.Fatal("postgres connection error", zap.Error(err))
	}
	defer pgPool.Close()
	zl.Info("connected to Postgres")

	// Connect Redis
	rdb, err := redisclient.NewRedisClient(cfg.RedisAddr, cfg.RedisUsername, cfg.RedisPassword)
	if err != nil {
		zl.Fatal("redis connection error", zap.Error(err))
	}
	defer func() {
		if err := rdb.Close(); err != nil {
			zl.Warn("error closing redis", zap.Error(err))
		}
	}()
	zl.Info("connected to Redis")

	// Connect Elasticsearch. The chat server starts even if the index host
	// is down, symptom answers just lose their reference context.
	es, err := retrieval.NewElasticClient(cfg.ElasticAddrs)
	if err != nil {
		zl.Fatal("elasticsearch client error", zap.Error(err))
	}
	if err := retrieval.Ping(rootCtx, es); err != nil {
		zl.Warn("elasticsearch not reachable", zap.Error(err))
	} else {
		zl.Info("connected to Elasticsearch")
	}

	chatModel := llm.NewOpenAI(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.ChatModel)
	completionModel := llm.NewOpenAI(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.CompletionModel)

	router := api.NewRouter(api.RouterConfig{
		Chat: api.ChatConfig{
			LLM:              chatModel,
			CompletionLLM:    completionModel,
			Retriever:        retrieval.NewElasticRetriever(es, cfg.ConditionsIndex),
			Appointments:     appointment.NewPgRepository(pgPool),
			Profiles:         profile.NewPgRepository(pgPool),
			Channels:         redisclient.NewRedisChannelLayer(rdb),
			Logger:           zl,
			ReadLimit:        cfg.WSReadLimit,
			LLMTimeout:       cfg.LLMTimeout,
			RetrievalTimeout: cfg.RetrievalTimeout,
			DatastoreTimeout: cfg.DatastoreTimeout,
		},
		Appointments: appointment.NewPgRepository(pgPool),
		PgPool:       pgPool,
		Redis:        rdb,
		Elastic:      es,
		Logger:       zl,
		Env:          cfg.Env,
		Version:      version,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: router,
	}

	go func() {
		zl.Info("listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Fatal("http server error", zap.Error(err))
		}
	}()

	<-rootCtx.Done()
	zl.Info("shutting down chat-server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zl.Warn("http shutdown error", zap.Error(err))
	}
}
