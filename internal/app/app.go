package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/five82/prefsync/internal/api"
	"github.com/five82/prefsync/internal/config"
	"github.com/five82/prefsync/internal/logging"
	"github.com/five82/prefsync/internal/metrics"
	"github.com/five82/prefsync/internal/notify"
	"github.com/five82/prefsync/internal/preferences"
	"github.com/five82/prefsync/internal/prefs"
	"github.com/five82/prefsync/internal/ui"
)

// Options configure the prefsync application.
type Options struct {
	ConfigPath string
	PrefsPath  string // empty uses default ~/.config/prefsync/prefs.toml
	// PollEvery overrides poll_interval when positive.
	PollEvery time.Duration
	// Address overrides the remembered selected address when set.
	Address string
}

// Run boots the prefsync TUI until the context is cancelled or the user quits.
func Run(ctx context.Context, opts Options) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if opts.PollEvery > 0 {
		cfg.PollInterval = opts.PollEvery
	}

	logger, closer, err := logging.New(logging.Options{Level: cfg.LogLevel, Path: cfg.LogPath()})
	if err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	defer func() { _ = closer.Close() }()
	log := logging.Component(logger, "app")

	ctrl, err := newController(cfg, opts, logger)
	if err != nil {
		return err
	}
	defer func() {
		ctrl.Close()
		if err := prefs.Save(opts.PrefsPath, prefs.FromState(ctrl.State())); err != nil {
			log.WithError(err).Warn("save prefs failed")
		}
	}()

	if cfg.MetricsAddr != "" {
		stop := serveMetrics(cfg.MetricsAddr, log)
		defer stop()
	}

	bootstrap(ctx, ctrl, cfg.AuthToken, log)
	go watchFailures(ctx, ctrl, defaultRetryInterval)

	log.WithFields(logrus.Fields{
		"api_url":       cfg.APIURL,
		"poll_interval": cfg.PollInterval,
		"token":         cfg.AuthToken != "",
	}).Info("prefsync started")

	return ui.Run(ui.Options{
		Context:    ctx,
		Controller: ctrl,
		LogPath:    cfg.LogPath(),
		APIURL:     cfg.APIURL,
	})
}

func newController(cfg config.Config, opts Options, logger *logrus.Logger) (*preferences.Controller, error) {
	client, err := api.NewClient(api.Options{
		BaseURL:   cfg.APIURL,
		OrdersURL: cfg.OrdersURL,
		RateLimit: cfg.RateLimit,
		RateBurst: cfg.RateBurst,
	})
	if err != nil {
		return nil, fmt.Errorf("init api client: %w", err)
	}

	userPrefs, _ := prefs.Load(opts.PrefsPath)
	initState := userPrefs.InitState()
	if opts.Address != "" {
		initState.SelectedAddress = opts.Address
	}

	ctrl, err := preferences.New(preferences.Options{
		Backend:   client,
		InitState: initState,
		Notifier: notify.NewNotifier(notify.Options{
			ErrorTime:   cfg.ErrorTime,
			SuccessTime: cfg.SuccessTime,
			Logger:      logger,
		}),
		Logger:         logger,
		PollInterval:   cfg.PollInterval,
		PageOrigin:     cfg.Origin,
		EmbedderOrigin: cfg.EmbedderOrigin,
		Verifier:       cfg.Verifier,
		VerifierID:     cfg.VerifierID,
	})
	if err != nil {
		return nil, fmt.Errorf("init preferences: %w", err)
	}
	return ctrl, nil
}

// bootstrap installs the token and runs the first sync so the UI starts
// populated. Failures are logged; the UI shows the sync status.
func bootstrap(ctx context.Context, ctrl *preferences.Controller, token string, log *logrus.Entry) {
	if token == "" {
		log.Warn("no auth token set; running offline")
		return
	}
	if err := ctrl.SetAuthToken(ctx, token); err != nil {
		log.WithError(err).Warn("initial billboard fetch failed")
	}
	if addr := ctrl.State().SelectedAddress; addr != "" {
		ctrl.SetSelectedAddress(ctx, addr)
		return
	}
	ctrl.Sync(ctx, nil, nil)
}

func serveMetrics(addr string, log *logrus.Entry) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Error("metrics server stopped")
		}
	}()
	log.WithField("addr", addr).Info("metrics server listening")

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
}
