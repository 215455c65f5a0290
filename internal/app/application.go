package app

import (
	"context"
	"flag"
	"os/signal"
	"syscall"
	"time"

	"github.com/muratoffalex/gachicord/internal/app/di"
	"github.com/muratoffalex/gachicord/internal/commands/chat"
	"github.com/muratoffalex/gachicord/internal/commands/edit"
	"github.com/muratoffalex/gachicord/internal/commands/help"
	"github.com/muratoffalex/gachicord/internal/commands/image"
	"github.com/muratoffalex/gachicord/internal/commands/reset"
	"github.com/muratoffalex/gachicord/internal/commands/search"
	"github.com/muratoffalex/gachicord/internal/commands/system"
	"github.com/muratoffalex/gachicord/internal/commands/video"
	"github.com/muratoffalex/gachicord/internal/config"
	"github.com/muratoffalex/gachicord/internal/core"
	"github.com/muratoffalex/gachicord/internal/logger"
	"golang.org/x/sync/errgroup"
)

const cleanupInterval = 1 * time.Hour

type Application struct {
	Logger logger.Logger
	cfg    *config.Config
	bot    *core.Bot
	di     *di.Container
	ctx    context.Context
	cancel context.CancelFunc
}

func New() (*Application, error) {
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	cfg, err := config.Load()
	if err != nil {
		cancel()
		return nil, err
	}

	di, err := di.NewContainer(cfg)
	if err != nil {
		cancel()
		return nil, err
	}
	di.Logger.Info("DI Container created")

	botInstance, err := core.NewBot(
		di.Discord,
		di.Guard,
		di.Logger,
		di.DB,
		cfg,
		di.Localizer,
		di.Resolver,
	)
	if err != nil {
		di.Logger.Fatal(err)
	}
	di.Logger.Info("Bot instance created")

	app := &Application{
		cfg:    cfg,
		bot:    botInstance,
		di:     di,
		Logger: di.Logger,
		ctx:    ctx,
		cancel: cancel,
	}

	app.registerCommands()

	return app, nil
}

// Run blocks until the process is signalled or the gateway fails.
func (a *Application) Run() error {
	a.Logger.WithField("commands", len(a.bot.GetCommands())).Info("Starting application")
	defer a.shutdown()

	g, ctx := errgroup.WithContext(a.ctx)
	g.Go(func() error {
		if err := a.di.Gateway.Start(ctx, a.bot.HandleMessage); err != nil {
			return err
		}
		<-ctx.Done()
		return nil
	})
	g.Go(func() error {
		a.runCleaner(ctx)
		return nil
	})
	return g.Wait()
}

func (a *Application) registerCommands() {
	a.bot.RegisterCommand(chat.New(a.di))
	a.bot.RegisterCommand(reset.New(a.di, a.bot))
	a.bot.RegisterCommand(system.New(a.di))
	a.bot.RegisterCommand(help.New(a.di))
	for _, variant := range image.Variants {
		a.bot.RegisterCommand(image.New(a.di, variant))
	}
	a.bot.RegisterCommand(edit.New(a.di))
	a.bot.RegisterCommand(video.New(a.di))
	a.bot.RegisterCommand(search.New(a.di))
}

func (a *Application) runCleaner(ctx context.Context) {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			a.cleanup()
		}
	}
}

func (a *Application) cleanup() {
	days := a.cfg.Global().GenerationRetentionDays
	if n, err := a.di.DB.PurgeOldGenerations(days); err != nil {
		a.Logger.WithError(err).Error("Failed to purge old generations")
	} else if n > 0 {
		a.Logger.WithField("rows", n).Info("Purged old generations")
	}
	if _, err := a.di.DB.PurgeExpiredCache(); err != nil {
		a.Logger.WithError(err).Error("Failed to purge expired cache")
	}
	a.di.MemoryCache.Prune()
}

func (a *Application) shutdown() {
	a.cancel()
	a.di.Store.Teardown()
	if err := a.di.Gateway.Close(); err != nil {
		a.Logger.WithError(err).Warn("Failed to close Discord session")
	}
	if err := a.di.DB.Close(); err != nil {
		a.Logger.WithError(err).Warn("Failed to close database")
	}
	a.Logger.Info("Application stopped")
}
