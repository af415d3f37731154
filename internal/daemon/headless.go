package daemon

import (
	"context"

	"github.com/jmylchreest/levelosd/internal/coordinator"
	"github.com/jmylchreest/levelosd/internal/dbus"
	"github.com/jmylchreest/levelosd/internal/display"
)

// runHeadless runs the daemon without GTK. The overlay is replaced by a
// logging surface and the UI context by a goroutine loop.
func (d *Daemon) runHeadless(ctx context.Context, cancel context.CancelFunc) int {
	loop := coordinator.NewGoLoop(d.logger.With("component", "loop"))
	if err := loop.Start(); err != nil {
		d.logger.Error("failed to start loop", "error", err)
		return 1
	}
	defer loop.Stop()

	if err := d.build(display.NewLogSurface(d.logger), loop); err != nil {
		d.logger.Error("startup failed", "error", err)
		return 1
	}
	if err := d.start(ctx); err != nil {
		d.logger.Error("startup failed", "error", err)
		return 1
	}
	defer d.stop()

	d.watchConfig(loop.Post, nil)
	notifySignals(ctx, d.logger, cancel)

	d.logger.Info(d.name+" ready", "bus_name", dbus.ProfileFor(d.quantity).BusName, "headless", true)
	<-ctx.Done()

	d.logger.Info(d.name + " stopped")
	return 0
}
