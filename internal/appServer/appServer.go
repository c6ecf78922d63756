package appServer

import (
	"context"
	"crypto/tls"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"queueline-app/config"
	repository "queueline-app/internal/database/postgres"
	redisCache "queueline-app/internal/database/redis"
	"queueline-app/internal/entity"
	"queueline-app/internal/service"
	"queueline-app/internal/transport"
	"queueline-app/internal/worker"

	"queueline-app/pkg/notifier"
	"queueline-app/pkg/postgres"
	"queueline-app/pkg/queue"
	"queueline-app/pkg/redis"
	"queueline-app/pkg/scheduler"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type Server struct {
	httpServer *http.Server
}

func (s *Server) Run(cfg *config.Config, handler http.Handler) error {
	s.httpServer = &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           handler,
		MaxHeaderBytes:    1 << 20,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       cfg.Server.Idle_timeout,
		ReadHeaderTimeout: 3 * time.Second,
		TLSConfig:         &tls.Config{MinVersion: tls.VersionTLS12},
		ErrorLog:          log.New(os.Stderr, "SERVER ERROR: ", log.LstdFlags),
	}
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func NewServer(cfg *config.Config) {

	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetOutput(os.Stdout)
	logrus.SetLevel(logrus.InfoLevel)

	// Initialize database
	db, err := postgres.NewPostgresDB(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	// Run database migrations
	if err := postgres.RunMigrations(db); err != nil {
		logrus.Fatalf("Failed to run migrations: %v", err)
	}

	// Initialize repositories
	queueRepo := repository.NewQueueRepository(db)
	ticketRepo := repository.NewTicketRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	// Initialize redis cache
	redisClient := redis.NewRedisClient(&cfg.Redis)
	defer redisClient.Close()
	cache := redisCache.NewCacheRepository(redisClient, cfg.Queue.CacheTTL)

	// Initialize delivery senders
	senders := make(map[entity.AlertChannel]queue.Sender)
	if cfg.Email.Enabled {
		senders[entity.ChannelEmail] = notifier.NewEmailSender(notifier.EmailConfig{
			Host:     cfg.Email.Host,
			Port:     fmt.Sprintf("%d", cfg.Email.Port),
			Username: cfg.Email.Username,
			Password: cfg.Email.Password,
			From:     cfg.Email.From,
		})
		logrus.Info("Email sender initialized")
	}
	if cfg.Telegram.Enabled && cfg.Telegram.BotToken != "" {
		senders[entity.ChannelTelegram] = notifier.NewTelegramSender(cfg.Telegram.BotToken)
		logrus.Info("Telegram sender initialized")
	}

	// Initialize delivery queue
	var redisQueue queue.Queue
	var taskPublisher service.TaskPublisher

	queueConfig := queue.DefaultRedisQueueConfig()
	queueConfig.Addr = fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port)
	queueConfig.Password = cfg.Redis.Password
	queueConfig.DB = cfg.Redis.DB

	retryManager := queue.NewRetryManager(3, 5*time.Second)
	dlqHandler := queue.NewDefaultDLQHandler(redisClient, queueConfig.DLQ)

	redisQueue, err = queue.NewRedisQueue(queueConfig, retryManager, dlqHandler)
	if err != nil {
		logrus.Errorf("Failed to initialize Redis queue: %v. Continuing without queue...", err)
		redisQueue = nil
	} else {
		logrus.Info("Redis queue initialized")
		taskPublisher = service.NewQueueAdapter(redisQueue)
	}

	// Initialize services
	queueService := service.NewQueueService(queueRepo, ticketRepo, cache, cfg.Queue.DefaultAvgServiceTime)
	ticketService := service.NewTicketService(ticketRepo, queueRepo, cache, cfg.Alerts.DefaultThreshold)
	alertService := service.NewAlertService(ticketRepo, taskPublisher)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Start queue consumer if available
	if redisQueue != nil {
		taskHandler := queue.NewTaskHandler(senders, notificationRepo, ticketRepo)

		go func() {
			if err := redisQueue.Subscribe(ctx, taskHandler.HandleTask); err != nil {
				logrus.Errorf("Queue subscriber error: %v", err)
			}
		}()
		logrus.Info("Queue subscriber started")

		// Schedule daily history purges through the delayed queue.
		go scheduleHistoryPurges(ctx, redisQueue, cfg.Queue.HistoryRetentionDays)
	}

	// Start alert sweep if the queue accepts tasks
	if taskPublisher != nil {
		alertWorker := worker.NewAlertWorker(alertService)
		sweepScheduler := scheduler.NewScheduler(alertWorker, cfg.Alerts.SweepInterval)
		go sweepScheduler.Start(ctx)
		logrus.Info("Alert sweep scheduler started")
	} else {
		logrus.Warn("Delivery queue unavailable, alerts disabled")
	}

	// Initialize handlers
	queueHandler := transport.NewQueueHandler(queueService)
	ticketHandler := transport.NewTicketHandler(ticketService)
	notificationHandler := transport.NewNotificationHandler(notificationRepo)

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	srv := new(Server)
	go func() {
		if err := srv.Run(cfg, transport.InitRoutes(queueHandler, ticketHandler, notificationHandler)); err != nil {
			logrus.Fatalf("error occured while running http server: %s", err.Error())
		}
	}()

	logrus.Print("App Started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)
	<-quit

	logrus.Print("App Shutting Down")

	if err := srv.Shutdown(context.Background()); err != nil {
		logrus.Errorf("error occured on server shutting down: %s", err.Error())
	}
}

// scheduleHistoryPurges publishes one delayed purge task per day.
func scheduleHistoryPurges(ctx context.Context, q queue.Queue, retentionDays int) {
	if retentionDays <= 0 {
		retentionDays = 30
	}

	publish := func() {
		task := &queue.Task{
			Type:      queue.TaskTypePurgeHistory,
			ExecuteAt: time.Now().Add(time.Minute),
			Data: map[string]interface{}{
				"before": time.Now().AddDate(0, 0, -retentionDays).Format(time.RFC3339),
			},
		}
		if err := q.Publish(ctx, task); err != nil {
			logrus.Errorf("Failed to schedule history purge: %v", err)
		}
	}

	publish()

	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			publish()
		}
	}
}
