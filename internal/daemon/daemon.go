package daemon

import (
	"context"
	"log/slog"
	"sync"

	"github.com/jmylchreest/levelosd/internal/audio"
	"github.com/jmylchreest/levelosd/internal/config"
	"github.com/jmylchreest/levelosd/internal/control"
	"github.com/jmylchreest/levelosd/internal/coordinator"
	"github.com/jmylchreest/levelosd/internal/dbus"
	"github.com/jmylchreest/levelosd/internal/model"
)

// Daemon holds the components shared by the GUI and headless modes.
type Daemon struct {
	quantity   model.Quantity
	name       string
	version    string
	configPath string
	logger     *slog.Logger
	runner     control.Runner // nil uses the exec runner

	mu  sync.Mutex
	cfg *config.DaemonConfig

	executor coordinator.Executor
	coord    *coordinator.Coordinator
	server   *dbus.Server
	feedback *audio.Feedback
	notifier *Notifier
	watcher  *ConfigWatcher
}

// New creates a daemon for q with an initial configuration.
func New(q model.Quantity, cfg *config.DaemonConfig, configPath, version string, logger *slog.Logger) *Daemon {
	if logger == nil {
		logger = slog.Default()
	}
	return &Daemon{
		quantity:   q,
		name:       config.DaemonName(q),
		version:    version,
		configPath: configPath,
		logger:     logger,
		cfg:        cfg,
		notifier:   NewNotifier(nil, logger),
	}
}

// Config returns the active configuration.
func (d *Daemon) Config() *config.DaemonConfig {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.cfg
}

// build creates the executor, coordinator, server and observers for a
// surface and loop. Nothing is started.
func (d *Daemon) build(surface coordinator.Surface, loop coordinator.Loop) error {
	cfg := d.Config()

	exec, err := control.New(d.quantity, control.Options{
		Backend:  cfg.Backend.Name,
		Device:   cfg.Backend.Device,
		MaxLevel: cfg.Backend.MaxLevel,
		Runner:   d.runner,
		Logger:   d.logger,
	})
	if err != nil {
		return &InitializationError{Component: "backend", Cause: err}
	}
	d.executor = exec

	d.coord = coordinator.New(exec, surface, loop, coordinator.Options{
		HideDelay:   cfg.Overlay.HideDelay.Duration(),
		ExecTimeout: cfg.Backend.Timeout.Duration(),
		Logger:      d.logger.With("component", "coordinator"),
	})

	d.server = dbus.NewServer(dbus.ProfileFor(d.quantity), cfg.IPC.QueueSize, d.logger.With("component", "dbus"))
	d.server.SetServerInfo(d.name, d.version)
	d.server.SetStateHandler(d.state)
	d.coord.AddObserver(d.server)

	if d.quantity == model.QuantityVolume {
		d.feedback = audio.NewFeedback(cfg, audio.NewPlayer(d.logger), d.logger)
		d.coord.AddObserver(d.feedback)
	}

	d.logger.Debug("components built",
		"backend", cfg.Backend.Name,
		"hide_delay", cfg.Overlay.HideDelay.Duration(),
		"queue_size", cfg.IPC.QueueSize,
	)
	return nil
}

// start claims the bus name and starts feeding commands to the coordinator.
func (d *Daemon) start(ctx context.Context) error {
	if err := d.server.Start(); err != nil {
		return &InitializationError{Component: "dbus", Cause: err}
	}
	d.notifier = NewNotifier(DesktopNotify(d.server.Connection(), d.name, iconFor(d.quantity)), d.logger)

	go d.coord.Run(ctx, d.server.Commands())
	if d.feedback != nil {
		d.feedback.Start(ctx)
	}
	return nil
}

// watchConfig starts hot reload. post must run its argument on the UI
// context; apply is called there after the shared components are updated.
func (d *Daemon) watchConfig(post func(func()), apply func(*config.DaemonConfig)) {
	d.watcher = NewConfigWatcher(d.quantity, d.configPath, d.logger)
	d.watcher.SetReloadCallback(func(cfg *config.DaemonConfig) {
		post(func() {
			d.applyConfig(cfg)
			if apply != nil {
				apply(cfg)
			}
		})
	})
	d.watcher.SetErrorCallback(func(err error) {
		d.notifier.NotifyConfigError(d.name, err)
	})
	if err := d.watcher.Start(d.Config()); err != nil {
		d.logger.Warn("failed to start config watcher", "error", err)
	}
}

// applyConfig updates the shared components. UI context only.
func (d *Daemon) applyConfig(cfg *config.DaemonConfig) {
	d.mu.Lock()
	old := d.cfg
	d.cfg = cfg
	d.mu.Unlock()

	d.coord.SetHideDelay(cfg.Overlay.HideDelay.Duration())
	if d.feedback != nil {
		d.feedback.UpdateConfig(cfg)
	}
	if old.Backend != cfg.Backend || old.IPC != cfg.IPC {
		d.logger.Warn("backend and ipc settings apply after restart",
			"backend", cfg.Backend.Name, "queue_size", cfg.IPC.QueueSize)
		d.notifier.NotifyBackendChanged(d.name, cfg.Backend.Name)
	}
}

// state answers GetState with a fresh reading and the overlay visibility.
// If the backend cannot be read, the last displayed state is returned.
func (d *Daemon) state(ctx context.Context) (dbus.State, error) {
	status := d.coord.Status()
	reading, err := d.executor.Read(ctx)
	if err != nil {
		if status.HasLast {
			d.logger.Debug("read failed, reporting last state", "error", err)
			return dbus.StateFromDisplay(status.Last, status.Visible), nil
		}
		return dbus.State{}, err
	}
	return dbus.StateFromDisplay(d.executor.Describe(reading), status.Visible), nil
}

// stop releases everything start and watchConfig acquired.
func (d *Daemon) stop() {
	if d.watcher != nil {
		d.watcher.Stop()
	}
	if d.server != nil {
		if err := d.server.Stop(); err != nil {
			d.logger.Warn("error stopping D-Bus server", "error", err)
		}
	}
	if d.coord != nil {
		st := d.coord.Status()
		d.logger.Info("coordinator stats",
			"handled", st.Handled,
			"failures", st.Failures,
			"shows", st.Shows,
			"hides", st.Hides,
		)
	}
}

func iconFor(q model.Quantity) string {
	if q == model.QuantityVolume {
		return model.IconVolumeHigh
	}
	return model.IconBrightnessHigh
}
