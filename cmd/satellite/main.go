package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	audioimpl "github.com/foxseedlab/voicesatellite/external/audio"
	configloader "github.com/foxseedlab/voicesatellite/external/config"
	"github.com/foxseedlab/voicesatellite/external/discord"
	pipelineimpl "github.com/foxseedlab/voicesatellite/external/pipeline"
	repositoryimpl "github.com/foxseedlab/voicesatellite/external/repository"
	transportimpl "github.com/foxseedlab/voicesatellite/external/transport"
	webhookimpl "github.com/foxseedlab/voicesatellite/external/webhook"
	"github.com/foxseedlab/voicesatellite/internal/bot"
	"github.com/foxseedlab/voicesatellite/internal/config"
	discordpkg "github.com/foxseedlab/voicesatellite/internal/discord"
	"github.com/foxseedlab/voicesatellite/internal/journal"
	"github.com/foxseedlab/voicesatellite/internal/notify"
	"github.com/foxseedlab/voicesatellite/internal/pipeline"
	"github.com/foxseedlab/voicesatellite/internal/session"
	"github.com/foxseedlab/voicesatellite/internal/webhook"
	"github.com/samber/do/v2"
)

const (
	discordConnectTimeout = 20 * time.Second
	stopTimeout           = 5 * time.Second
)

func main() {
	slog.Info("startup: loading configuration")
	cfg := mustLoadConfig()
	initLogger(cfg)
	slog.Info("startup: configuration loaded", "env", cfg.Env, "capture_source", cfg.CaptureSource)

	slog.Info("startup: building dependency graph")
	injector := setupDI(cfg)

	slog.Info("startup: launching voice satellite")
	run(cfg, injector)

	report := injector.Shutdown()
	if report != nil && !report.Succeed {
		slog.Error("shutdown finished with errors", "errors", report.Errors)
		os.Exit(1)
	}
	slog.Info("shutdown complete")
}

func mustLoadConfig() *config.Config {
	cfg, err := configloader.Load()
	if err != nil {
		slog.Error("config validation failed", "error", err)
		os.Exit(1)
	}
	return cfg
}

func initLogger(cfg *config.Config) {
	logLevel := slog.LevelInfo
	if cfg.IsDevelopment() {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})))
}

func setupDI(cfg *config.Config) do.Injector {
	injector := do.New()

	do.ProvideValue(injector, cfg)
	repositoryimpl.RegisterDI(injector)
	audioimpl.RegisterDI(injector)
	discord.RegisterDI(injector)
	pipelineimpl.RegisterDI(injector)
	transportimpl.RegisterDI(injector)
	webhookimpl.RegisterDI(injector)
	journal.RegisterDI(injector)
	bot.RegisterDI(injector)
	do.Provide(injector, provideTriggers)
	session.RegisterDI(injector)

	return injector
}

// provideTriggers fans session notifications out to discord, the run journal
// and the webhook.
func provideTriggers(i do.Injector) (notify.Triggers, error) {
	return notify.Merge(
		do.MustInvoke[*bot.Announcer](i).Triggers(),
		do.MustInvoke[*journal.Recorder](i).Triggers(),
		do.MustInvoke[*webhook.Notifier](i).Triggers(),
	), nil
}

func run(cfg *config.Config, injector do.Injector) {
	dc := mustInvoke[discordpkg.Client](injector, "discord client")
	connectCtx, cancel := context.WithTimeout(context.Background(), discordConnectTimeout)
	defer cancel()
	slog.Info("startup: connecting to discord gateway")
	if err := dc.Connect(connectCtx); err != nil {
		slog.Error("discord connect failed", "error", err)
		os.Exit(1)
	}
	slog.Info("startup: discord connected")
	defer func() {
		if err := dc.Close(); err != nil {
			slog.Error("discord close failed", "error", err)
		}
	}()

	controller := mustInvoke[*session.Controller](injector, "session controller")
	commands := mustInvoke[*bot.CommandHandler](injector, "command handler")
	if err := dc.UpsertGuildSlashCommands(cfg.DiscordGuildID, bot.SlashCommandDefinitions()); err != nil {
		slog.Error("failed to upsert slash commands", "error", err, "guild_id", cfg.DiscordGuildID)
		os.Exit(1)
	}
	dc.RegisterSlashCommandHandler(commands.HandleSlashCommand)
	slog.Info("discord handlers registered", "guild_id", cfg.DiscordGuildID)

	runCtx, cancelRun := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	startWorker(runCtx, &wg, mustInvoke[*bot.Announcer](injector, "announcer").Run)
	startWorker(runCtx, &wg, mustInvoke[*journal.Recorder](injector, "run journal").Run)
	startWorker(runCtx, &wg, mustInvoke[*webhook.Notifier](injector, "webhook notifier").Run)

	pc := mustInvoke[pipeline.Client](injector, "pipeline client")
	startWorker(runCtx, &wg, func(ctx context.Context) {
		pipeline.Run(ctx, pc, controller, func() {
			controller.SignalStop(context.Background())
		})
	})

	sigCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-sigCtx.Done()
	slog.Info("shutting down")

	stopCtx, cancelStop := context.WithTimeout(context.Background(), stopTimeout)
	controller.SignalStop(stopCtx)
	cancelStop()
	if err := pc.Close(); err != nil {
		slog.Warn("pipeline close failed", "error", err)
	}
	cancelRun()
	wg.Wait()
}

func startWorker(ctx context.Context, wg *sync.WaitGroup, fn func(context.Context)) {
	wg.Add(1)
	go func() {
		defer wg.Done()
		fn(ctx)
	}()
}

func mustInvoke[T any](injector do.Injector, name string) T {
	v, err := do.Invoke[T](injector)
	if err != nil {
		slog.Error("failed to resolve dependency", "dependency", name, "error", err)
		os.Exit(1)
	}
	return v
}
