package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sebas/callview/internal/api"
	"github.com/sebas/callview/internal/banner"
	"github.com/sebas/callview/internal/calllog"
	"github.com/sebas/callview/internal/config"
	"github.com/sebas/callview/internal/directory"
	"github.com/sebas/callview/internal/events"
	"github.com/sebas/callview/internal/history"
	"github.com/sebas/callview/internal/logger"
	"github.com/sebas/callview/internal/redact"
	"github.com/sebas/callview/internal/session"
	"github.com/sebas/callview/internal/telecom"
	"github.com/sebas/callview/internal/uploader"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger.InitLogger(os.Stdout)
	logger.SetLevel(cfg.LogLevel)

	if err := run(cfg); err != nil {
		slog.Error("Fatal", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	// Stores
	logStore, err := calllog.OpenSQLite(cfg.LogDBPath)
	if err != nil {
		return err
	}
	defer logStore.Close()

	workDir, err := directory.OpenSQLiteWork(cfg.WorkDirDBPath)
	if err != nil {
		return err
	}
	defer workDir.Close()

	// The personal directory and system history are platform-owned; the
	// in-memory implementations stand in for their device bindings.
	personal := directory.NewMemoryPersonal()
	hist := history.NewMemory()

	// Upload pipeline
	scheduler := uploader.NewChannelScheduler(cfg.UploadBuffer)
	defer scheduler.Close()
	worker := uploader.NewWorker(logStore, uploader.NoopSink{}, scheduler)

	// Orchestrator with its collaborators injected
	callLogger := calllog.NewLogger(workDir, logStore, scheduler, calllog.Policy{
		LogOnLookupFailure: cfg.LogOnLookupFailure,
	})
	redactor := redact.NewRedactor(hist, cfg.Role, redact.Config{
		WatchTimeout:       cfg.RedactTimeout,
		MissedRewritePause: cfg.MissedRewritePause,
	})
	orch := session.NewOrchestrator(session.Options{
		Personal:        personal,
		Work:            workDir,
		IdentityWorkers: cfg.IdentityWorkers,
		Logger:          callLogger,
		Redactor:        redactor,
		Publisher:       events.LoggingPublisher{},
	})
	defer orch.Close()

	platform := telecom.NewFakePlatform()
	platform.SetListener(orch)

	dispatcher := session.NewDispatcher(platform, orch)
	apiServer := api.NewServer(cfg.APIAddr, orch, dispatcher, logStore)

	banner.Print("Callview Daemon", []banner.ConfigLine{
		{Label: "API", Value: cfg.APIAddr},
		{Label: "Log DB", Value: cfg.LogDBPath},
		{Label: "Work directory", Value: cfg.WorkDirDBPath},
		{Label: "Role", Value: roleLabel(cfg.Role)},
		{Label: "Log level", Value: cfg.LogLevel},
	})

	worker.Start()
	defer worker.Stop()

	if err := apiServer.Start(); err != nil {
		return err
	}
	defer apiServer.Stop()

	if cfg.Demo {
		go runDemo(platform, personal, workDir, hist)
	}

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	slog.Info("Shutting down", "signal", sig.String())
	return nil
}

func roleLabel(role string) string {
	if role == "" {
		return "(unset)"
	}
	return role
}

// runDemo scripts a call-waiting flow against the fake platform so the API
// has something to show without a device attached.
func runDemo(platform *telecom.FakePlatform, personal *directory.MemoryPersonal, workDir *directory.SQLiteWork, hist *history.Memory) {
	personal.Add(directory.Contact{Name: "Dana Whitfield", Number: "555-0100"})
	if err := workDir.Put(context.Background(), directory.WorkContact{
		Name:                "Morgan Reyes",
		Number:              "555-0200",
		FamilyHead:          "Reyes Household",
		RelationshipManager: "Priya N",
	}); err != nil {
		slog.Warn("[Demo] Failed to seed work directory", "error", err)
	}

	slog.Info("[Demo] Starting scripted call flow")

	first := platform.AddCall("555-0100", telecom.DirectionIncoming)
	time.Sleep(2 * time.Second)
	platform.SetCallState(first.ID, telecom.StateActive)
	time.Sleep(2 * time.Second)

	second := platform.AddCall("555-0200", telecom.DirectionIncoming)
	time.Sleep(2 * time.Second)
	if err := platform.Answer(second.ID); err != nil {
		slog.Warn("[Demo] Answer failed", "error", err)
	}
	time.Sleep(3 * time.Second)

	platform.RemoveCall(second.ID)
	hist.Insert("555-0200", history.TypeIncoming)
	time.Sleep(2 * time.Second)
	platform.RemoveCall(first.ID)

	slog.Info("[Demo] Scripted flow complete")
}
