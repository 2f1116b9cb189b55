package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mkleiva/uttak/api/internal/config"
	"github.com/mkleiva/uttak/api/internal/database"
	"github.com/mkleiva/uttak/api/internal/handlers"
	"github.com/mkleiva/uttak/api/internal/logger"
	"github.com/mkleiva/uttak/api/internal/middleware"
	"github.com/mkleiva/uttak/api/internal/rates"
	"github.com/mkleiva/uttak/api/internal/repository"
	"github.com/mkleiva/uttak/api/internal/services"
)

const shutdownTimeout = 30 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Server.Env)
	log.Info("Starting uttak API", map[string]interface{}{
		"version":     handlers.APIVersion,
		"environment": cfg.Server.Env,
		"port":        cfg.Server.Port,
		"tax_year":    cfg.Tax.Year,
	})

	// The rate table is process-wide read-only state; a gap in it is
	// a deployment error and the server must not come up.
	table, err := rates.ForYear(cfg.Tax.Year)
	if err != nil {
		log.Fatal("Failed to load rate table", err, map[string]interface{}{
			"tax_year": cfg.Tax.Year,
		})
	}
	log.Info("Rate table loaded", map[string]interface{}{
		"tax_year": table.Year,
		"zones":    table.ZoneIDs(),
	})

	ctx := context.Background()
	db, err := database.NewPostgresPool(ctx, cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", err, map[string]interface{}{
			"host": cfg.Database.Host,
			"port": cfg.Database.Port,
			"name": cfg.Database.Name,
		})
	}
	defer db.Close()

	log.Info("Database connection established", map[string]interface{}{
		"host":     cfg.Database.Host,
		"database": cfg.Database.Name,
	})

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(log))
	router.Use(middleware.Recovery(log))
	router.Use(middleware.CORS(cfg.CORS.Origins))

	healthHandler := handlers.NewHealthHandler(db, cfg.Server.Env, table.Year)
	router.GET("/health", healthHandler.Health)
	router.GET("/health/ready", healthHandler.Ready)
	router.GET("/api/v1/info", healthHandler.Info)

	historyRepo := repository.NewHistoryRepository(db)
	scenarioService := services.NewScenarioService(table, historyRepo, log)
	scenarioHandler := handlers.NewScenarioHandler(scenarioService)

	v1 := router.Group("/api/v1")
	{
		scenarios := v1.Group("/scenarios")
		{
			scenarios.POST("/salary", scenarioHandler.Salary)
			scenarios.POST("/dividend", scenarioHandler.Dividend)
			scenarios.POST("/combination", scenarioHandler.Combination)
			scenarios.POST("/optimize", scenarioHandler.Optimize)
			scenarios.POST("/compare", scenarioHandler.Compare)
		}
		v1.GET("/breakpoints", scenarioHandler.Breakpoints)
		v1.GET("/history", scenarioHandler.History)
		v1.GET("/rates", scenarioHandler.Rates)
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		log.Info("Server listening", map[string]interface{}{
			"addr": srv.Addr,
		})
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start", err, nil)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...", nil)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", err, map[string]interface{}{
			"timeout": shutdownTimeout.String(),
		})
	}

	log.Info("Server exited", nil)
}
