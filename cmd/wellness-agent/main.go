package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"Mansoor88-6/wellness-agent/internal/advisor"
	"Mansoor88-6/wellness-agent/internal/config"
	"Mansoor88-6/wellness-agent/internal/coordinator"
	"Mansoor88-6/wellness-agent/internal/database"
	"Mansoor88-6/wellness-agent/internal/handler"
	"Mansoor88-6/wellness-agent/internal/journal"
	"Mansoor88-6/wellness-agent/internal/logger"
	"Mansoor88-6/wellness-agent/internal/models"
	"Mansoor88-6/wellness-agent/internal/notify"
	"Mansoor88-6/wellness-agent/internal/platform"
	"Mansoor88-6/wellness-agent/internal/reminder"
	"Mansoor88-6/wellness-agent/internal/repository"
	"Mansoor88-6/wellness-agent/internal/router"
	"Mansoor88-6/wellness-agent/internal/sampler"
	"Mansoor88-6/wellness-agent/internal/segmenter"
	"Mansoor88-6/wellness-agent/internal/service"
	"Mansoor88-6/wellness-agent/internal/tray"

	"go.uber.org/zap"
)

func main() {
	// Parse command line flags
	configPath := flag.String("config", "config/local.yaml", "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	log.Info("Starting wellness agent",
		zap.String("env", cfg.Env),
		zap.String("config_path", *configPath),
	)

	// Refuse to start twice
	pidPath, err := writePIDFile()
	if err != nil {
		log.Fatal("Failed to acquire pid file", zap.Error(err))
	}
	defer os.Remove(pidPath)

	// Initialize database
	db, err := database.New(cfg.StoragePath, log.Logger)
	if err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Failed to close database", zap.Error(err))
		}
	}()

	// Initialize platform
	platformInstance, err := platform.NewPlatform()
	if err != nil {
		log.Fatal("Failed to initialize platform", zap.Error(err))
	}

	// Repositories and health journal
	sessionRepo := repository.NewSessionRepository(db.DB)
	reminderRepo := repository.NewReminderRepository(db.DB)
	taskRepo := repository.NewTaskRepository(db.DB)
	healthJournal := journal.New(db.DB, log.Logger)
	taskService := service.NewTaskService(taskRepo)

	// Engine components
	tickInterval := time.Duration(cfg.Engine.TickInterval) * time.Second
	idleThreshold := time.Duration(cfg.Engine.IdleThreshold) * time.Second

	activitySampler := sampler.New(platformInstance, tickInterval, log.Logger)
	sessionSegmenter := segmenter.New(idleThreshold, tickInterval, log.Logger)
	reminderScheduler := reminder.New(map[models.ReminderKind]int64{
		models.ReminderBreak:     int64(cfg.Reminders.BreakInterval),
		models.ReminderPosture:   int64(cfg.Reminders.PostureInterval),
		models.ReminderEyeCare:   int64(cfg.Reminders.EyeCareInterval),
		models.ReminderHydration: int64(cfg.Reminders.HydrationInterval),
	}, tickInterval, log.Logger)

	policy, err := advisor.PolicyFromConfig(cfg)
	if err != nil {
		log.Fatal("Failed to build advisor policy", zap.Error(err))
	}

	coord := coordinator.New(
		activitySampler,
		sessionSegmenter,
		reminderScheduler,
		policy,
		sessionRepo,
		reminderRepo,
		healthJournal,
		taskService,
		tickInterval,
		log.Logger,
	)

	// Desktop notifications for fired reminders and rest recommendations
	if cfg.Notifications.Enabled {
		notifier := notify.NewDesktopNotifier(log.Logger)
		coord.OnReminderFired(notifier.NotifyReminder)
		coord.OnRecommendation(notifier.NotifyRecommendation)
		log.Info("Desktop notifications enabled",
			zap.Bool("available", notifier.Available()),
		)
	}

	// Localhost API for the CLI
	var apiServer *http.Server
	if cfg.Server.Enabled {
		engineHandler := handler.NewEngineHandler(coord, healthJournal, log.Logger)
		taskHandler := handler.NewTaskHandler(taskService, log.Logger)
		addr := fmt.Sprintf("localhost:%d", cfg.Server.Port)
		apiServer = &http.Server{
			Addr:         addr,
			Handler:      router.New(engineHandler, taskHandler, log.Logger),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		}

		go func() {
			log.Info("Starting control API", zap.String("address", addr))
			if err := apiServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Error("Control API error", zap.Error(err))
			}
		}()
	} else {
		log.Info("Control API disabled in configuration")
	}

	// Start the engine
	if err := coord.Start(); err != nil {
		log.Fatal("Failed to start coordinator", zap.Error(err))
	}

	log.Info("Wellness agent started successfully",
		zap.Int("tick_interval_seconds", cfg.Engine.TickInterval),
		zap.Int("idle_threshold_seconds", cfg.Engine.IdleThreshold),
	)

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	if cfg.Tray.Enabled {
		// systray owns the main thread; a signal or the tray Quit item
		// unblocks it.
		trayUI := tray.New(coord, nil, log.Logger)
		go func() {
			<-quit
			trayUI.Quit()
		}()
		trayUI.Run()
		log.Info("Tray closed, shutting down")
	} else {
		sig := <-quit
		log.Info("Received shutdown signal", zap.String("signal", sig.String()))
	}

	log.Info("Shutting down wellness agent...")

	// Stop control API first so queries fail fast during shutdown
	if apiServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := apiServer.Shutdown(ctx); err != nil {
			log.Warn("Control API shutdown error", zap.Error(err))
		} else {
			log.Info("Control API stopped")
		}
	}

	// Stop coordinator (closes open spans, flushes state) with a timeout
	done := make(chan struct{})
	go func() {
		coord.Stop()
		close(done)
	}()

	select {
	case <-done:
		log.Info("Coordinator stopped successfully")
	case <-time.After(5 * time.Second):
		log.Warn("Shutdown timeout reached, forcing immediate exit")
		os.Exit(1)
	}

	// Trim the health journal; anything older than 90 days is noise
	if err := healthJournal.CleanupOldEvents(90 * 24 * time.Hour); err != nil {
		log.Error("Failed to cleanup old health events", zap.Error(err))
	}

	log.Info("Wellness agent stopped")
}

// writePIDFile refuses to start when another agent instance already holds
// the pid file and its process is still alive.
func writePIDFile() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}

	dir := filepath.Join(home, ".wellness-agent")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create state directory: %w", err)
	}

	path := filepath.Join(dir, "agent.pid")
	if data, err := os.ReadFile(path); err == nil {
		if pid, err := strconv.Atoi(string(data)); err == nil && processAlive(pid) {
			return "", fmt.Errorf("agent already running with pid %d (%s)", pid, path)
		}
	}

	if err := os.WriteFile(path, []byte(strconv.Itoa(os.Getpid())), 0644); err != nil {
		return "", fmt.Errorf("failed to write pid file: %w", err)
	}
	return path, nil
}

func processAlive(pid int) bool {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	return proc.Signal(syscall.Signal(0)) == nil
}
