package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aradsms/phonebook_web/internal/phonebook/adapters/graphql"
	"github.com/aradsms/phonebook_web/internal/phonebook/app"
	"github.com/aradsms/phonebook_web/internal/phonebook/favorites"
	"github.com/aradsms/phonebook_web/internal/platform/config"
	"github.com/aradsms/phonebook_web/internal/platform/logger"
	httptransport "github.com/aradsms/phonebook_web/internal/webui_service/transport/http"
)

const serviceName = "phonebook_web"

func main() {
	cfg, err := config.Load(serviceName)
	if err != nil {
		slog.Error("Failed to load configuration", "service", serviceName, "error", err)
		os.Exit(1)
	}

	appLogger := logger.New(cfg.LogLevel)
	appLogger.Info("Phonebook web service starting...", "port", cfg.WebUIServicePort)

	// The contact repository is an external GraphQL service; this process
	// holds no database of its own.
	gqlClient := graphql.NewClient(
		cfg.GraphQLEndpoint,
		cfg.GraphQLAdminSecret,
		time.Duration(cfg.HTTPClientTimeoutSeconds)*time.Second,
	)
	contactRepo := graphql.NewContactRepository(gqlClient, appLogger)
	appLogger.Info("Contact repository client initialized.", "endpoint", cfg.GraphQLEndpoint)

	favoritesStore, err := favorites.NewStore(cfg.FavoritesPath, appLogger)
	if err != nil {
		appLogger.Error("Failed to load favorites store", "error", err, "path", cfg.FavoritesPath)
		os.Exit(1)
	}
	appLogger.Info("Favorites store loaded.", "path", cfg.FavoritesPath)

	application := app.NewApplication(contactRepo, favoritesStore, appLogger, cfg.PageSize)

	validate := validator.New()
	contactHandler := httptransport.NewContactHandler(application, appLogger, validate)
	pageHandler, err := httptransport.NewPageHandler(application, appLogger)
	if err != nil {
		appLogger.Error("Failed to initialize page handler", "error", err)
		os.Exit(1)
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(60 * time.Second))
	r.Use(httptransport.PrometheusMetricsMiddleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "Phonebook web service is healthy"})
	})
	r.Handle("/metrics", promhttp.Handler())

	// JSON API used by the table's live refresh.
	r.Route("/api/v1", func(apiRouter chi.Router) {
		contactHandler.RegisterRoutes(apiRouter)
	})

	// Server-rendered pages.
	pageHandler.RegisterRoutes(r)

	httpServer := &http.Server{Addr: fmt.Sprintf(":%d", cfg.WebUIServicePort), Handler: r}
	appLogger.Info(fmt.Sprintf("Phonebook web server listening on port %d", cfg.WebUIServicePort))
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Error("HTTP server failed to serve", "error", err)
		}
	}()

	quitChan := make(chan os.Signal, 1)
	signal.Notify(quitChan, syscall.SIGINT, syscall.SIGTERM)
	<-quitChan
	appLogger.Info("Shutdown signal received, shutting down HTTP server...")
	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelShutdown()
	if err := httpServer.Shutdown(ctxShutdown); err != nil {
		appLogger.Error("HTTP server shutdown failed", "error", err)
	} else {
		appLogger.Info("HTTP server shut down gracefully.")
	}
	appLogger.Info("Phonebook web service shut down.")
}
