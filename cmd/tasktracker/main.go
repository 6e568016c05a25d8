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

	"tasktracker/internal/config"
	"tasktracker/internal/notify"
	"tasktracker/internal/repository"
	"tasktracker/internal/service"
	"tasktracker/internal/web"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	db, err := repository.NewDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	sqlDB, err := db.DB()
	if err == nil {
		defer sqlDB.Close()
	}

	taskRepo := repository.NewTaskRepository(db)
	historyRepo := repository.NewHistoryRepository(db)
	noteRepo := repository.NewNoteRepository(db)
	settingsRepo := repository.NewSettingsRepository(db)

	var notifier service.Notifier = notify.Discard{}
	if cfg.TelegramToken != "" {
		telegram, err := notify.NewTelegram(cfg.TelegramToken, cfg.TelegramChatID)
		if err != nil {
			log.Fatalf("notifier: %v", err)
		}
		notifier = telegram
	} else {
		log.Println("[warn] TELEGRAM_TOKEN not set, notifications disabled")
	}

	taskSvc := service.NewTaskService(taskRepo, historyRepo)
	noteSvc := service.NewNoteService(noteRepo)
	settingsSvc := service.NewSettingsService(settingsRepo)
	reminderSvc := service.NewReminderService(taskRepo, noteRepo, settingsRepo, notifier)

	if err := settingsSvc.Bootstrap(ctx, cfg.DefaultAccessCode); err != nil {
		log.Fatalf("settings: %v", err)
	}

	clock := service.SystemClock

	scheduler := service.NewSchedulerService(time.Local)
	if _, err := scheduler.ScheduleEveryMinute(func() {
		jobCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := reminderSvc.Sweep(jobCtx, clock.Now()); err != nil {
			log.Printf("[warn] reminder sweep: %v", err)
		}
	}); err != nil {
		log.Fatalf("schedule sweep: %v", err)
	}
	if _, err := scheduler.ScheduleHourly(func() {
		jobCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := reminderSvc.HourlyReport(jobCtx, clock.Now()); err != nil {
			log.Printf("[warn] hourly report: %v", err)
		}
	}); err != nil {
		log.Fatalf("schedule report: %v", err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	router := web.SetupRouter(
		&web.AuthController{Settings: settingsSvc, Secret: []byte(cfg.JWTSecret), Clock: clock},
		&web.TaskController{Tasks: taskSvc, Notifier: notifier, Clock: clock},
		&web.NoteController{Notes: noteSvc, Notifier: notifier, Clock: clock},
		&web.SettingsController{Settings: settingsSvc, Notifier: notifier},
	)

	server := &http.Server{Addr: cfg.ListenAddr, Handler: router}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("[warn] shutdown: %v", err)
		}
	}()

	log.Printf("Task tracker listening on %s.", cfg.ListenAddr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("server stopped with error: %v", err)
	}
	log.Println("Shutdown complete.")
}
