package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"safecommute/internal/api"
	"safecommute/internal/api/handler"
	"safecommute/internal/app/notify"
	"safecommute/internal/app/service"
	"safecommute/internal/domain/repository"
	"safecommute/internal/logging"
	"safecommute/internal/observability/metrics"
	"safecommute/internal/platform/config"
	"safecommute/internal/platform/docstore"
	"safecommute/internal/platform/mail"
)

func main() {
	// 1. Configuration and metrics
	config.Load()
	cfg := config.AppConfig
	metrics.MustRegister()

	// 2. Document store. Redis is the default; the notification queue and
	// worker run only on the redis driver, the other drivers send directly.
	var store docstore.Store
	var rdb *redis.Client
	switch cfg.StoreDriver {
	case "postgres":
		db := docstore.ConnectPostgres()
		defer db.Close()
		store = docstore.NewPostgresStore(db)
	case "memory":
		log.Println("WARN: memory store selected, all data is process-local")
		store = docstore.NewMemoryStore()
	default:
		rdb = docstore.ConnectRedis()
		defer rdb.Close()
		store = docstore.NewRedisStore(rdb)
	}

	// 3. Mail sink
	var mailer mail.Mailer
	if cfg.SendGridAPIKey != "" {
		mailer = mail.NewSendGridMailer(cfg.SendGridAPIKey, cfg.MailFrom)
	} else {
		mailer = mail.NewLogMailer(logging.New("mail"))
	}
	dispatcher := notify.NewQueueDispatcher(rdb, cfg.NotifyQueueName, mailer, logging.New("notify"))

	// 4. Repositories
	userRepo := repository.NewDocUserRepository(store)
	emailRepo := repository.NewDocEmailIndexRepository(store)
	verificationRepo := repository.NewDocVerificationRepository(store)
	incidentRepo := repository.NewDocIncidentRepository(store)
	activityRepo := repository.NewDocActivityLogRepository(store)

	// 5. Services
	authService := service.NewAuthService(userRepo, dispatcher, cfg.VerifyBaseURL, logging.New("auth"))
	registrationService := service.NewRegistrationService(
		userRepo, emailRepo, verificationRepo, dispatcher, cfg.VerifyBaseURL, logging.New("registration"))
	incidentService := service.NewIncidentService(
		incidentRepo, activityRepo, authService, dispatcher, cfg.OpsAlertEmail, logging.New("incidents"))

	// 6. Notification worker (as a goroutine)
	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()
	if rdb != nil {
		worker := notify.NewWorker(rdb, mailer, cfg.NotifyQueueName, cfg.NotifyDeadLetterName, logging.New("notify-worker"))
		go worker.Start(workerCtx)
	}

	// 7. Router & HTTP server
	router := api.NewRouter(
		handler.NewAuthHandler(authService, registrationService),
		handler.NewIncidentHandler(incidentService, logging.New("http")),
	)

	server := &http.Server{
		Addr:         ":" + cfg.APIPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// 8. Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("Server starting on port %s", cfg.APIPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Could not listen on %s: %v\n", cfg.APIPort, err)
		}
	}()

	<-stop

	log.Println("Shutting down server...")
	workerCancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server shutdown failed: %v", err)
	}

	log.Println("Server and worker stopped gracefully.")
}
