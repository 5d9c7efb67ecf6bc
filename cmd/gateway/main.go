package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/pathlight-io/pathlight/internal/analysis"
	api "github.com/pathlight-io/pathlight/internal/api/http"
	"github.com/pathlight-io/pathlight/internal/assessment"
	"github.com/pathlight-io/pathlight/internal/auth"
	"github.com/pathlight-io/pathlight/internal/catalog"
	"github.com/pathlight-io/pathlight/internal/config"
	"github.com/pathlight-io/pathlight/internal/db"
	"github.com/pathlight-io/pathlight/internal/intake"
	"github.com/pathlight-io/pathlight/internal/logging"
	"github.com/pathlight-io/pathlight/internal/rbac"
)

func main() {
	cfg := config.FromEnv()

	logger, err := logging.New(string(cfg.Mode))
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	// --- DB ---
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		logger.Fatal("db open failed", zap.Error(err))
	}
	defer dbh.Close()

	// --- Services ---
	provider := catalog.DefaultProvider()
	sessions := assessment.NewService(assessment.NewSQLStore(dbh), provider, cfg.AutosaveDebounce, logger)
	defer sessions.Close()

	intakes := intake.NewService(intake.NewSQLStore(dbh), logger)

	producer, err := analysis.NewOpenAIProducer(analysis.ProducerConfig{
		Endpoint:    cfg.LLMEndpoint,
		Model:       cfg.LLMModel,
		APIKey:      cfg.LLMAPIKey,
		Temperature: cfg.LLMTemperature,
	}, logger)
	if err != nil {
		logger.Fatal("producer init failed", zap.Error(err))
	}

	var cache analysis.Cache
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		cache = analysis.NewRedisCache(rdb, cfg.CacheTTL)
	} else {
		cache = analysis.NewMemoryCache(cfg.CacheTTL)
	}

	loader := &analysis.ServiceLoader{Sessions: sessions, Intakes: intakes}
	analyses := analysis.NewService(analysis.NewSQLStore(dbh), producer, cache, loader, cfg.HistoryLimit, logger)

	authSvc := auth.NewAuthService(cfg.AuthHMACSecret)

	// --- Router ---
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Post("/auth/login", auth.LoginHandler(authSvc, dbh, cfg.AdminUser, cfg.AdminPassHash))

	// Protected API (JWT -> subject+role in context -> RBAC)
	r.Group(func(pr chi.Router) {
		pr.Use(auth.JWTMiddleware(authSvc))

		pr.Route("/assessments", func(ar chi.Router) {
			ar.With(rbac.Require("assessment:start")).
				Post("/start", api.StartAssessmentHandler(sessions))
			ar.With(rbac.Require("assessment:resume")).
				Get("/resume", api.ResumeAssessmentHandler(sessions))
			ar.With(rbac.Require("assessment:answer")).
				Post("/{sessionID}/answers", api.AnswerHandler(sessions))
			ar.With(rbac.Require("assessment:save")).
				Post("/{sessionID}/save", api.SaveAssessmentHandler(sessions))
			ar.With(rbac.Require("assessment:submit")).
				Post("/{sessionID}/submit", api.SubmitAssessmentHandler(sessions))
			ar.With(rbac.Require("assessment:view-own")).
				Get("/{sessionID}", api.GetAssessmentHandler(sessions))
		})

		pr.Route("/intake", func(ir chi.Router) {
			ir.With(rbac.Require("intake:write")).
				Put("/", api.PutIntakeHandler(intakes))
			ir.With(rbac.Require("intake:view-own")).
				Get("/", api.GetIntakeHandler(intakes))
			ir.With(rbac.Require("intake:validate")).
				Post("/validate", api.ValidateIntakeHandler())
			ir.With(rbac.Require("intake:validate")).
				Get("/schema", api.IntakeSchemaHandler())
		})

		pr.Route("/analyses", func(nr chi.Router) {
			nr.With(rbac.Require("analysis:generate")).
				Post("/generate", api.GenerateAnalysisHandler(analyses, loader))
			nr.With(rbac.Require("analysis:regenerate")).
				Post("/{artifactID}/regenerate", api.RegenerateAnalysisHandler(analyses))
			nr.With(rbac.Require("analysis:view-own")).
				Get("/{artifactID}", api.GetAnalysisHandler(analyses))
			nr.With(rbac.Require("analysis:view-own")).
				Get("/", api.ListAnalysesHandler(analyses))
			nr.With(rbac.Require("analysis:delete-own")).
				Delete("/{artifactID}", api.DeleteAnalysisHandler(analyses))
		})
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: r}

	go func() {
		logger.Info("listening",
			zap.String("addr", cfg.HTTPAddr),
			zap.String("mode", string(cfg.Mode)),
			zap.String("db", cfg.DBDriver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	// pending debounced saves are best-effort; flushing is the client's job
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("shutdown", zap.Error(err))
	}
}
