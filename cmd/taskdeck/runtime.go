package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/mark3labs/taskdeck/internal/api"
	"github.com/mark3labs/taskdeck/internal/config"
	"github.com/mark3labs/taskdeck/internal/hooks"
	"github.com/mark3labs/taskdeck/internal/journal"
	"github.com/mark3labs/taskdeck/internal/logger"
	"github.com/mark3labs/taskdeck/internal/mutation"
	"github.com/mark3labs/taskdeck/internal/nats"
	"github.com/mark3labs/taskdeck/internal/session"
	"github.com/mark3labs/taskdeck/internal/state"
	"github.com/mark3labs/taskdeck/internal/taskcache"
)

var errNotLoggedIn = errors.New("not logged in (run `taskdeck login` first)")

// loadConfig resolves the effective config and applies logging settings.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if rootFlags.apiURL != "" {
		cfg.APIURL = rootFlags.apiURL
	}
	if rootFlags.dataDir != "" {
		cfg.DataDir = rootFlags.dataDir
	}
	if rootFlags.logLevel != "" {
		cfg.LogLevel = rootFlags.logLevel
	}
	if rootFlags.logFile != "" {
		cfg.LogFile = rootFlags.logFile
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := logger.Default.Configure(cfg.LogLevel, cfg.LogFile); err != nil {
		return nil, fmt.Errorf("configuring logger: %w", err)
	}
	return cfg, nil
}

type runtimeOptions struct {
	notifier mutation.Notifier
	journal  bool
}

// runtime is the sync layer shared by every command.
type runtime struct {
	cfg      *config.Config
	client   *api.Client
	session  *session.Cache
	cache    *taskcache.Collection
	pipeline *mutation.Pipeline

	bus      *nats.Bus
	journal  *journal.Store
	recorder *journal.Recorder
	hooks    *hooks.Runner

	unsubscribe func()
}

func openRuntime(ctx context.Context, opts runtimeOptions) (*runtime, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	timeout, err := cfg.Timeout()
	if err != nil {
		return nil, err
	}
	client, err := api.NewClient(cfg.APIURL, api.WithTimeout(timeout))
	if err != nil {
		return nil, err
	}
	client.SetCookies(state.LoadCookies(cfg.DataDir, client.Host()))

	rt := &runtime{cfg: cfg, client: client}
	rt.cache = taskcache.NewCollection(client)
	rt.session = session.New(client, rt.cache)

	var pipelineOpts []mutation.Option
	if opts.notifier != nil {
		pipelineOpts = append(pipelineOpts, mutation.WithNotifier(opts.notifier))
	}
	var recorders mutation.Recorders
	if opts.journal && cfg.Journal {
		if err := rt.openJournal(ctx); err != nil {
			logger.Warn("Journal disabled: %v", err)
		} else {
			recorders = append(recorders, rt.recorder)
		}
	}
	hookCfg, err := hooks.LoadConfig(".")
	if err != nil {
		rt.Close()
		return nil, err
	}
	if hookCfg != nil {
		rt.hooks = hooks.NewRunner(hookCfg, ".")
		recorders = append(recorders, rt.hooks)
	}
	if len(recorders) > 0 {
		pipelineOpts = append(pipelineOpts, mutation.WithRecorder(recorders))
	}
	rt.pipeline = mutation.New(client, rt.cache, pipelineOpts...)
	rt.unsubscribe = rt.session.Subscribe(rt.userChanged)
	return rt, nil
}

func (rt *runtime) openJournal(ctx context.Context) error {
	bus, err := nats.Open(ctx, filepath.Join(rt.cfg.DataDir, "nats"))
	if err != nil {
		return err
	}
	rt.bus = bus
	rt.journal = journal.NewStore(bus.JS, bus.Stream)
	rt.recorder = journal.NewRecorder(rt.journal, rt.client.Host())
	return nil
}

// userChanged persists the session cookie and moves the journal scope.
func (rt *runtime) userChanged(u *api.User) {
	if u == nil {
		// Logged out or expired; the stored cookie is no longer valid.
		rt.client.ClearCookies()
	}
	if err := state.SaveCookies(rt.cfg.DataDir, rt.client.Host(), rt.client.Cookies()); err != nil {
		logger.Warn("Failed to save cookies: %v", err)
	}
	if rt.recorder != nil {
		rt.recorder.SetUser(u)
	}
}

// requireUser runs the initial session refresh and returns the user.
func (rt *runtime) requireUser(ctx context.Context) (*api.User, error) {
	rt.session.Start(ctx)
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-rt.session.Ready():
	}
	if u, ok := rt.session.CurrentUser(); ok {
		return u, nil
	}
	if err := rt.session.Pending(session.OpRefresh).Err; err != nil {
		return nil, err
	}
	return nil, errNotLoggedIn
}

func (rt *runtime) Close() {
	if rt.unsubscribe != nil {
		rt.unsubscribe()
	}
	if rt.hooks != nil {
		rt.hooks.Wait(10 * time.Second)
	}
	if rt.bus != nil {
		if err := rt.bus.Close(); err != nil {
			logger.Warn("Journal shutdown: %v", err)
		}
	}
}
