package daemon

import (
	"context"
	"sync/atomic"

	"github.com/diamondburned/gotk4-adwaita/pkg/adw"
	"github.com/diamondburned/gotk4/pkg/core/glib"

	"github.com/jmylchreest/levelosd/internal/config"
	"github.com/jmylchreest/levelosd/internal/display"
	"github.com/jmylchreest/levelosd/internal/layout"
	"github.com/jmylchreest/levelosd/internal/model"
	"github.com/jmylchreest/levelosd/internal/theme"
)

// appID returns the GApplication ID for a quantity.
func appID(q model.Quantity) string {
	if q == model.QuantityVolume {
		return "io.github.jmylchreest.levelosd.volumed"
	}
	return "io.github.jmylchreest.levelosd.brightd"
}

// idlePost runs fn on the GTK main thread.
func idlePost(fn func()) {
	glib.IdleAdd(fn)
}

// loadLayout resolves the configured layout, falling back to the default.
func (d *Daemon) loadLayout(cfg *config.DaemonConfig) *layout.LayoutConfig {
	lay, err := layout.NewLoader(layout.LayoutsDir()).Load(cfg.Overlay.Layout)
	if err != nil {
		d.logger.Warn("layout template not found, using default", "layout", cfg.Overlay.Layout, "error", err)
		return layout.DefaultLayout()
	}
	return lay
}

// runGUI runs the daemon inside a libadwaita application.
func (d *Daemon) runGUI(ctx context.Context, cancel context.CancelFunc) int {
	app := adw.NewApplication(appID(d.quantity), 0)

	var (
		overlay     *display.Overlay
		themeLoader *theme.Loader
		running     atomic.Bool
		failed      atomic.Bool
	)

	notifySignals(ctx, d.logger, func() {
		cancel()
		glib.IdleAdd(func() {
			app.Quit()
		})
	})

	fail := func(err error) {
		d.logger.Error("startup failed", "error", err)
		failed.Store(true)
		app.Quit()
	}

	app.ConnectActivate(func() {
		if running.Load() {
			d.logger.Warn("application already running")
			return
		}
		running.Store(true)

		cfg := d.Config()
		display.ApplyColorScheme(config.ColorScheme(cfg.Theme.ColorScheme))

		themeLoader = theme.NewLoader(theme.ThemesDir(), d.logger)
		themeLoader.LoadTheme(cfg.Theme.Name)
		themeLoader.Apply(nil)

		var err error
		overlay, err = display.NewOverlay(&app.Application, d.quantity, cfg, d.loadLayout(cfg), d.logger)
		if err != nil {
			fail(&InitializationError{Component: "display", Cause: err})
			return
		}

		if err := d.build(overlay, display.NewMainLoop()); err != nil {
			fail(err)
			return
		}
		if err := d.start(ctx); err != nil {
			fail(err)
			return
		}

		d.watchConfig(idlePost, func(newCfg *config.DaemonConfig) {
			display.ApplyColorScheme(config.ColorScheme(newCfg.Theme.ColorScheme))
			if newCfg.Theme.Name != themeLoader.CurrentTheme() {
				themeLoader.LoadTheme(newCfg.Theme.Name)
			}
			overlay.ApplyConfig(newCfg, d.loadLayout(newCfg))
		})

		// keep running while the overlay is unmapped
		app.Hold()

		d.logger.Info(d.name+" ready", "app_id", appID(d.quantity))
	})

	app.ConnectShutdown(func() {
		d.logger.Info("application shutting down")
		if themeLoader != nil {
			themeLoader.Stop()
		}
		d.stop()
		if overlay != nil {
			overlay.Close()
		}
		running.Store(false)
	})

	status := app.Run([]string{d.name})
	cancel()

	if failed.Load() {
		return 1
	}
	if status != 0 {
		d.logger.Error("application exited with error", "status", status)
		return status
	}
	d.logger.Info(d.name + " stopped")
	return 0
}
