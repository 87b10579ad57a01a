package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"todolist/internal/agenda"
	"todolist/internal/auth"
	"todolist/internal/config"
	"todolist/internal/database"
	"todolist/internal/handler"
	"todolist/internal/jobs"
	"todolist/internal/middleware"
	"todolist/internal/notification"
	"todolist/internal/prefs"
	"todolist/internal/repository"
	"todolist/internal/schema"
	"todolist/internal/scheduler"
	"todolist/internal/store"
)

type Server struct {
	Engine *gin.Engine
	DB     *gorm.DB
	Config *config.Config
	// Token is the session token the local UI reads from the preference file.
	Token string

	logger        log.FieldLogger
	runner        *jobs.Runner
	todoStore     *store.TodoStore
	reminderStore *store.ReminderStore
	closeNotifier func() error
}

func Init(cfg *config.Config, logger log.FieldLogger) (*Server, error) {
	ctx := context.Background()

	db, err := database.Open(cfg.Database, logger)
	if err != nil {
		return nil, err
	}
	s := &Server{DB: db, Config: cfg, logger: logger}

	if err := s.setup(ctx); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

func (s *Server) setup(ctx context.Context) error {
	cfg, logger := s.Config, s.logger

	migrator, err := schema.NewManager(s.DB, logger)
	if err != nil {
		return err
	}
	if err := migrator.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	p, err := prefs.Open(cfg.Prefs.Path)
	if err != nil {
		return err
	}
	deviceID, err := p.GetUUID()
	if err != nil {
		return err
	}
	s.Token, err = auth.EnsureToken(p, []byte(cfg.Auth.JWTSecret), deviceID, cfg.Auth.JWTExpiry, logger)
	if err != nil {
		return fmt.Errorf("failed to issue session token: %w", err)
	}

	// Initialize stores and repositories
	s.todoStore = store.NewTodoStore(s.DB)
	s.reminderStore = store.NewReminderStore(s.DB)
	todoRepo := repository.NewTodoRepository(s.todoStore)
	reminderRepo := repository.NewReminderRepository(s.reminderStore)

	// Deferred actions
	queue, err := jobs.NewQueue(s.DB)
	if err != nil {
		return err
	}
	notifier, closeNotifier, err := notification.NewFromConfig(cfg.Notifier, logger)
	if err != nil {
		return err
	}
	s.closeNotifier = closeNotifier
	s.runner = jobs.NewRunner(queue, jobs.Config{
		PollInterval: cfg.Jobs.PollInterval,
		Workers:      cfg.Jobs.Workers,
		BatchSize:    cfg.Jobs.BatchSize,
		MaxAttempts:  cfg.Jobs.MaxAttempts,
		RetryInitial: cfg.Jobs.RetryInitial,
		RetryMax:     cfg.Jobs.RetryMax,
	}, logger)
	s.runner.Register(scheduler.KindReminderNotification, notification.NewDispatcher(reminderRepo, notifier, logger))
	sched := scheduler.New(queue, logger)

	// Initialize handlers
	sqlDB, err := s.DB.DB()
	if err != nil {
		return err
	}
	healthHandler := handler.NewHealthHandler(sqlDB, logger)
	todoHandler := handler.NewTodoHandler(todoRepo, logger)
	reminderHandler := handler.NewReminderHandler(reminderRepo, sched, logger)
	agendaHandler := handler.NewAgendaHandler(agenda.NewService(todoRepo, reminderRepo, time.Local), logger)

	// Setup Gin
	if cfg.Env == config.EnvProd {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery(), middleware.Logger(logger))

	// Public routes
	r.GET("/health", healthHandler.Health)
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Protected routes - require authentication
	authorized := r.Group("/")
	authorized.Use(middleware.JWTAuthMiddleware(cfg.Auth.JWTSecret))
	{
		// Todo routes
		authorized.GET("/todos", todoHandler.GetAll)
		authorized.PUT("/todos", todoHandler.ReplaceAll)
		authorized.POST("/todos", todoHandler.Create)
		authorized.GET("/todos/stream", todoHandler.Stream)
		authorized.GET("/todos/:id", todoHandler.GetByID)
		authorized.DELETE("/todos/:id", todoHandler.Delete)
		authorized.GET("/todos/:id/reminders", reminderHandler.GetByTaskID)
		authorized.DELETE("/todos/:id/reminders", reminderHandler.DeleteByTaskID)

		// Reminder routes
		authorized.GET("/reminders", reminderHandler.GetAll)
		authorized.POST("/reminders", reminderHandler.Create)
		authorized.GET("/reminders/:id", reminderHandler.GetByID)
		authorized.PUT("/reminders/:id", reminderHandler.Update)
		authorized.DELETE("/reminders/:id", reminderHandler.Delete)

		// Agenda routes
		authorized.GET("/schedule", agendaHandler.Schedule)
		authorized.GET("/calendar", agendaHandler.Calendar)
	}
	s.Engine = r
	return nil
}

func (s *Server) Run() {
	srv := &http.Server{
		Addr:    ":" + s.Config.ServerPort,
		Handler: s.Engine,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := s.runner.Start(ctx); err != nil {
		s.logger.WithError(err).Fatal("failed to start deferred action runner")
	}

	go func() {
		s.logger.WithField("port", s.Config.ServerPort).Info("server running")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.WithError(err).Fatal("failed to listen")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	s.logger.Info("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	// live views end first so open event streams let Shutdown finish
	s.todoStore.Close()
	s.reminderStore.Close()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		s.logger.WithError(err).Error("server forced to shutdown")
	}
	s.Close()

	s.logger.Info("server exited properly")
}

// Close stops the runner and releases the database and notifier.
func (s *Server) Close() {
	if s.runner != nil {
		s.runner.Stop()
	}
	if s.todoStore != nil {
		s.todoStore.Close()
	}
	if s.reminderStore != nil {
		s.reminderStore.Close()
	}
	if s.closeNotifier != nil {
		if err := s.closeNotifier(); err != nil {
			s.logger.WithError(err).Warn("close notifier")
		}
	}
	if err := database.Close(s.DB); err != nil {
		s.logger.WithError(err).Warn("close database")
	}
}
