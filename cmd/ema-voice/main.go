// Ema-voice is a terminal voice assistant for questions about a detected crop
// disease. It records a spoken question, transcribes it, asks the dialogue
// service and speaks the answer.
//
// Usage:
//
//	ema-voice [flags]
//	ema-voice --subject "Tomato Late Blight" --lang TE
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	orchestration "github.com/koscakluka/ema-voice/core"
	"github.com/koscakluka/ema-voice/core/events"
	"github.com/koscakluka/ema-voice/core/language"
	"github.com/koscakluka/ema-voice/internal/config"
)

// version is set at build time via ldflags.
var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "ema-voice:", err)
		os.Exit(1)
	}
}

func run() error {
	showVersion := flag.Bool("version", false, "print version and exit")
	configFile := flag.String("config", "", "path to config file (e.g. configs/ema-voice.yaml)")
	subject := flag.String("subject", "", "subject of the conversation, e.g. the detected disease")
	lang := flag.String("lang", "", "conversation language: EN, HI or TE")
	flag.Parse()

	if *showVersion {
		fmt.Printf("ema-voice %s\n", version)
		return nil
	}

	cfg, err := config.Load(*configFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if *subject != "" {
		cfg.Session.Subject = *subject
	}
	if *lang != "" {
		cfg.Session.Language = *lang
	}

	logCloser, err := config.SetupLogging(cfg.Logging)
	if err != nil {
		return err
	}
	defer logCloser.Close()
	slog.Info("ema-voice starting", "version", version)

	tag, err := language.Parse(cfg.Session.Language)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var program atomic.Pointer[tea.Program]
	forward := func(event events.Event) {
		if p := program.Load(); p != nil {
			p.Send(controllerEventMsg{event: event})
		}
	}

	controller, shutdown, err := newController(cfg, forward)
	if err != nil {
		return err
	}
	defer shutdown()

	p := tea.NewProgram(newModel(controller), tea.WithAltScreen(), tea.WithContext(ctx))
	program.Store(p)

	if err := controller.Open(ctx, orchestration.SessionConfig{
		Subject:       cfg.Session.Subject,
		Language:      tag,
		InitialAnswer: cfg.Session.InitialAnswer,
	}); err != nil {
		return fmt.Errorf("failed to open session: %w", err)
	}
	defer controller.Close()

	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("terminal client failed: %w", err)
	}
	slog.Info("ema-voice stopped")
	return nil
}
