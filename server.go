package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"bitbucket.org/mmdatafocus/imis_backend/config"
	"bitbucket.org/mmdatafocus/imis_backend/middlewares"
	"bitbucket.org/mmdatafocus/imis_backend/models"
)

const defaultPort = "8080"

func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func setupRouter() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.Use(func(c *gin.Context) {
		// Always allow the startup probe.
		if c.Request.URL.Path == "/healthz" {
			c.Status(http.StatusNoContent)
			c.Abort()
			return
		}
		// Gate app endpoints on database readiness.
		if config.GetDB() == nil {
			c.AbortWithStatus(http.StatusServiceUnavailable)
			return
		}
		c.Next()
	})

	corsConfig := cors.DefaultConfig()
	allowedOrigins := strings.TrimSpace(os.Getenv("CORS_ALLOWED_ORIGINS"))
	if strings.EqualFold(strings.TrimSpace(os.Getenv("GO_ENV")), "production") {
		if allowedOrigins == "" {
			corsConfig.AllowOrigins = []string{}
		} else {
			corsConfig.AllowOrigins = splitAndTrim(allowedOrigins)
		}
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AddAllowMethods("GET", "POST", "OPTIONS")
	corsConfig.AddAllowHeaders("Origin", "Content-Type", "Authorization", "X-Correlation-Id")
	corsConfig.AddExposeHeaders("Content-Length", "Content-Disposition")
	r.Use(cors.New(corsConfig))

	r.POST("/api/auth/login", loginHandler)

	api := r.Group("/api/tools", middlewares.AuthMiddleware())

	registersGroup := api.Group("/registers")
	registersGroup.GET("/diagnoses", requireRights(config.RegistersDiagnosesRights), downloadDiagnosesHandler)
	registersGroup.POST("/diagnoses", requireRights(config.RegistersDiagnosesRights), uploadDiagnosesHandler)
	registersGroup.GET("/locations", requireRights(config.RegistersLocationsRights), downloadLocationsHandler)
	registersGroup.POST("/locations", requireRights(config.RegistersLocationsRights), uploadLocationsHandler)
	registersGroup.GET("/health_facilities", requireRights(config.RegistersHealthFacilitiesRights), downloadHealthFacilitiesHandler)
	registersGroup.POST("/health_facilities", requireRights(config.RegistersHealthFacilitiesRights), uploadHealthFacilitiesHandler)
	registersGroup.GET("/items", requireRights(config.RegistersItemsRights), downloadItemsHandler)
	registersGroup.POST("/items", requireRights(config.RegistersItemsRights), uploadItemsHandler)
	registersGroup.GET("/services", requireRights(config.RegistersServicesRights), downloadServicesHandler)
	registersGroup.POST("/services", requireRights(config.RegistersServicesRights), uploadServicesHandler)

	registersGroup.GET("/items/export", requireRights(config.RegistersItemsRights), exportItemsHandler)
	registersGroup.POST("/items/import", requireRights(config.RegistersItemsRights), importItemsHandler)
	registersGroup.GET("/services/export", requireRights(config.RegistersServicesRights), exportServicesHandler)
	registersGroup.POST("/services/import", requireRights(config.RegistersServicesRights), importServicesHandler)

	extractsGroup := api.Group("/extracts", requireAdmin())
	extractsGroup.GET("/master_data", downloadMasterDataHandler)
	extractsGroup.GET("/feedbacks", downloadOfficerFeedbacksHandler)
	extractsGroup.GET("/renewals", downloadOfficerRenewalsHandler)
	extractsGroup.POST("/enrollments", uploadEnrollmentsHandler)
	extractsGroup.POST("/renewals", uploadRenewalsHandler)
	extractsGroup.POST("/feedbacks", uploadFeedbacksHandler)

	return r
}

func main() {
	port := os.Getenv("PORT")
	if port == "" {
		port = defaultPort
	}

	logger := config.GetLogger()

	// Cloud Run sends SIGTERM on revision shutdown; handle it for graceful drain.
	sigCtx, stopSignals := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	r := setupRouter()

	// Start listening immediately; the readiness gate returns 503 until the
	// database is connected.
	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}
	serverErrCh := make(chan error, 1)
	go func() {
		serverErrCh <- srv.ListenAndServe()
	}()

	// Connect dependencies after the port is open.
	config.ConnectDatabaseWithRetry()

	db := config.GetDB()
	sqlDB, _ := db.DB()
	defer func() {
		if sqlDB != nil {
			_ = sqlDB.Close()
		}
	}()
	if !strings.EqualFold(strings.TrimSpace(os.Getenv("SKIP_MIGRATIONS")), "true") {
		models.MigrateTable()
	} else {
		logger.WithFields(logrus.Fields{"field": "migrations"}).Warn("SKIP_MIGRATIONS=true; skipping AutoMigrate on startup")
	}

	logger.WithFields(logrus.Fields{"port": port}).Info("server started successfully")

	select {
	case <-sigCtx.Done():
		// graceful shutdown below
	case err := <-serverErrCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithFields(logrus.Fields{"field": "http"}).Error("server stopped unexpectedly: " + err.Error())
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithFields(logrus.Fields{"field": "http"}).Error("graceful shutdown failed: " + err.Error())
	}
	logger.Info("server exited")
}
