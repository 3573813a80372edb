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

	"dsa_arena/internal/api"
	"dsa_arena/internal/app/service"
	"dsa_arena/internal/app/worker"
	"dsa_arena/internal/common/security"
	"dsa_arena/internal/domain/repository"
	"dsa_arena/internal/platform/config"
	"dsa_arena/internal/platform/database"
	"dsa_arena/internal/platform/leetcode"
	"dsa_arena/internal/platform/llm"
	"dsa_arena/internal/platform/logger"
	"dsa_arena/internal/platform/mailer"
	"dsa_arena/internal/platform/observability"
	"dsa_arena/internal/platform/queue"
	"dsa_arena/internal/platform/storage"
)

func main() {
	// 1. Load Configuration
	config.Load()
	cfg := config.AppConfig

	appLog, err := logger.New(cfg.LogMode)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer appLog.Sync()
	appLog.Info("configuration loaded", "port", cfg.APIPort, "mode", cfg.LogMode)

	ctx := context.Background()
	shutdownOtel := observability.InitOTel(ctx, appLog, observability.OtelConfig{
		Enabled:     cfg.OtelEnabled,
		ServiceName: cfg.ServiceName,
		Exporter:    cfg.OtelExporter,
	})

	// 2. Initialize JWT
	security.InitJWT()

	// 3. Initialize Database
	if err := database.Connect(ctx, appLog); err != nil {
		appLog.Fatal("database connection failed", "error", err)
	}
	defer database.Close(appLog)
	if err := database.Migrate(ctx, database.DB, appLog); err != nil {
		appLog.Fatal("migrations failed", "error", err)
	}

	// 4. Initialize Redis
	if err := queue.ConnectRedis(ctx, appLog); err != nil {
		appLog.Fatal("redis connection failed", "error", err)
	}
	defer queue.CloseRedis(appLog)
	notificationQueue := queue.NewNotificationQueue(queue.RDB, cfg.NotificationQueueName)

	// 5. Initialize Repositories
	txRunner := repository.NewPgTxRunner(database.DB)
	userRepo := repository.NewPgUserRepository(database.DB)
	sheetRepo := repository.NewPgSheetRepository(database.DB)
	questionRepo := repository.NewPgQuestionRepository(database.DB)
	statusRepo := repository.NewPgStatusRepository(database.DB)
	progressRepo := repository.NewPgProgressRepository(database.DB)
	noteRepo := repository.NewPgNoteRepository(database.DB)

	// 6. Initialize Services
	media := storage.NewLocalStorage(cfg.MediaRoot, cfg.MediaURL)
	notifications := service.NewNotificationService(notificationQueue, cfg.AdminEmail, appLog)
	problems := leetcode.NewClient(cfg.LeetCodeGraphQLURL, &http.Client{Timeout: 15 * time.Second})
	chat := llm.NewClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModel, nil)

	services := api.Services{
		Auth:        service.NewAuthService(txRunner, userRepo, progressRepo, notifications, cfg.EagerProgressPriming, appLog),
		Profile:     service.NewProfileService(userRepo, media, appLog),
		Sheet:       service.NewSheetService(sheetRepo, questionRepo, statusRepo, progressRepo, userRepo, cfg.MaxScore),
		Status:      service.NewStatusService(txRunner, userRepo, questionRepo, statusRepo, progressRepo, cfg.MaxScore, appLog),
		Note:        service.NewNoteService(noteRepo, questionRepo, sheetRepo),
		Explain:     service.NewExplainService(problems, chat, appLog),
		Leaderboard: service.NewLeaderboardService(userRepo),
	}

	// 7. Initialize Notification Worker (as a goroutine)
	mail := mailer.New(mailer.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.FromEmail,
	}, appLog)
	notificationWorker := worker.NewNotificationWorker(notificationQueue, mail, cfg.NotificationDedupeTTL, appLog)
	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()
	workerDone := make(chan struct{})
	go func() {
		defer close(workerDone)
		notificationWorker.Start(workerCtx)
	}()

	// 8. Initialize Router & HTTP Server
	router := api.NewRouter(services, api.Options{
		CORSOrigins:    cfg.CORSOrigins,
		MediaRoot:      cfg.MediaRoot,
		MediaURL:       cfg.MediaURL,
		MaxUploadMB:    cfg.MaxUploadMB,
		RequestTimeout: 60 * time.Second,
	}, appLog)

	server := &http.Server{
		Addr:         ":" + cfg.APIPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 65 * time.Second, // the explanation stream clears its own deadline
		IdleTimeout:  120 * time.Second,
	}

	// 9. Graceful Shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		appLog.Info("server starting", "port", cfg.APIPort)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLog.Fatal("could not listen", "port", cfg.APIPort, "error", err)
		}
	}()

	<-stop // Wait for interrupt signal

	appLog.Info("shutting down server")
	workerCancel() // Signal worker to stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		appLog.Error("server shutdown failed", "error", err)
	}
	<-workerDone
	if err := shutdownOtel(shutdownCtx); err != nil {
		appLog.Warn("otel shutdown failed", "error", err)
	}
	appLog.Info("server and worker stopped gracefully")
}
