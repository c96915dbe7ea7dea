package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"

	"github.com/pyropark/storefront/internal/api"
	"github.com/pyropark/storefront/internal/auth"
	"github.com/pyropark/storefront/internal/busy"
	"github.com/pyropark/storefront/internal/cart"
	"github.com/pyropark/storefront/internal/config"
	"github.com/pyropark/storefront/internal/logger"
	"github.com/pyropark/storefront/internal/notify"
	"github.com/pyropark/storefront/internal/session"
	"github.com/pyropark/storefront/internal/shop"
	"github.com/pyropark/storefront/internal/telemetry"
	"github.com/pyropark/storefront/internal/tui"
)

var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running program: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		apiURL   = flag.String("api", "", "storefront API base URL (overrides config)")
		debug    = flag.Bool("debug", false, "log at debug level and open the API call panel")
		initCfg  = flag.Bool("init", false, "write the default config to ~/.storefront/config.yaml and exit")
		showVers = flag.Bool("version", false, "print the version and exit")
	)
	flag.Parse()

	if *showVers {
		fmt.Println(version)
		return nil
	}
	if *initCfg {
		if err := config.SaveToGlobal(config.DefaultConfig()); err != nil {
			return fmt.Errorf("write config: %w", err)
		}
		return nil
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if *apiURL != "" {
		cfg.APIURL = *apiURL
	}

	level := logger.ParseLevel(cfg.LogLevel)
	if *debug {
		level = slog.LevelDebug
	}
	log, logFile, err := logger.OpenFile(cfg.LogDir(), level)
	if err != nil {
		return err
	}
	defer closeQuietly(logFile)
	slog.SetDefault(log)
	log.Info("starting storefront", "version", version, "api", cfg.APIURL, "config", cfg.Source)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM)
	defer stop()

	tracing, err := telemetry.Setup(ctx, telemetry.Config{
		ServiceName:    cfg.Telemetry.ServiceName,
		ServiceVersion: version,
		Endpoint:       cfg.Telemetry.OTLPEndpoint,
		Insecure:       cfg.Telemetry.Insecure,
	})
	if err != nil {
		return fmt.Errorf("setup tracing: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracing.Shutdown(shutdownCtx); err != nil {
			log.Warn("tracing shutdown", "error", err)
		}
	}()

	store, err := session.NewFileStore(cfg.StateDir, session.WithLogger(log))
	if err != nil {
		return fmt.Errorf("open session store: %w", err)
	}

	sig := busy.New()
	funnel := notify.New(cfg.ToastTimeout)
	bridge := tui.NewBridge()

	client, err := api.NewClient(cfg.APIURL, store,
		api.WithTimeout(cfg.HTTPTimeout),
		api.WithBusy(sig),
		api.WithNotifier(funnel),
		api.WithNavigator(bridge),
		api.WithTracer(tracing.Tracer()),
		api.WithLogger(log),
		api.WithObserver(bridge.Observe),
	)
	if err != nil {
		return fmt.Errorf("create api client: %w", err)
	}

	storefront := shop.New(client)
	summary := cart.New(store, storefront.Cart, log)
	authService := auth.NewService(client, store, funnel, bridge,
		auth.WithTTL(cfg.SessionTTL),
		auth.WithLogger(log),
	)
	guard := auth.NewGuard(client, store, log)

	model := tui.NewRootModel(tui.Deps{
		Shop:     storefront,
		Auth:     authService,
		Sessions: store,
		Cart:     summary,
		Busy:     sig,
		Funnel:   funnel,
		Config:   cfg,
		Logger:   log,
	})
	if *debug {
		model = model.WithDebugPanel()
	}

	p := tea.NewProgram(model,
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)

	unwatch := bridge.Watch(sig, funnel, summary, store)
	defer unwatch()
	bridge.Attach(p)
	defer bridge.Close()

	bg, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(bg)
	g.Go(func() error { return ignoreCanceled(store.Watch(gctx)) })
	g.Go(func() error { return ignoreCanceled(summary.Run(gctx, cfg.CartPoll)) })
	g.Go(func() error { return ignoreCanceled(guard.Run(gctx, cfg.GuardInterval)) })

	_, runErr := p.Run()
	cancel()
	bridge.Close()
	if err := g.Wait(); err != nil {
		log.Warn("background task failed", "error", err)
	}

	if runErr != nil && !errors.Is(runErr, tea.ErrProgramKilled) {
		return runErr
	}
	log.Info("storefront stopped")
	return nil
}

func ignoreCanceled(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func closeQuietly(c io.Closer) {
	_ = c.Close()
}
