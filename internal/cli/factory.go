package cli

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/aretw0/towerbench"
	"github.com/aretw0/towerbench/pkg/adapters/file"
	"github.com/aretw0/towerbench/pkg/adapters/memory"
	"github.com/aretw0/towerbench/pkg/adapters/process"
	"github.com/aretw0/towerbench/pkg/adapters/redis"
	"github.com/aretw0/towerbench/pkg/agent"
	"github.com/aretw0/towerbench/pkg/config"
	"github.com/aretw0/towerbench/pkg/domain"
	"github.com/aretw0/towerbench/pkg/ports"
	"github.com/aretw0/towerbench/pkg/prompt"
	"github.com/aretw0/towerbench/pkg/session"
)

// ReferenceModel selects the built-in optimal solver instead of an external agent.
const ReferenceModel = "optimal"

// createEngine initializes an engine with standard CLI conventions.
func createEngine(ctx context.Context, cfg config.Config, logger *slog.Logger, debug bool, hooks domain.LifecycleHooks) (*towerbench.Engine, error) {
	if debug {
		hooks = hooks.Merge(createDebugHooks(logger))
	}
	opts := []towerbench.Option{
		towerbench.WithPuzzle(cfg.Puzzle),
		towerbench.WithLimits(cfg.Limits()),
		towerbench.WithLogger(logger),
		towerbench.WithLifecycleHooks(hooks),
	}

	if cfg.PromptTemplateDir != "" {
		templates, err := prompt.LoadDir(ctx, cfg.PromptTemplateDir)
		if err != nil {
			return nil, fmt.Errorf("error loading prompt templates: %w", err)
		}
		opts = append(opts, towerbench.WithTemplates(templates))
	}

	engine, err := towerbench.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("error initializing engine: %w", err)
	}
	return engine, nil
}

// storage bundles the configured session store and its optional lock service.
type storage struct {
	Store  ports.SessionStore
	Locker ports.DistributedLocker
	Close  func() error
}

// createStore opens the configured session store.
func createStore(cfg config.Store) (*storage, error) {
	nop := func() error { return nil }
	switch cfg.Backend {
	case "", config.BackendMemory:
		return &storage{Store: memory.NewStore(), Close: nop}, nil
	case config.BackendFile:
		return &storage{Store: file.New(cfg.Path), Close: nop}, nil
	case config.BackendRedis:
		opts := []redis.Option{redis.WithTTL(cfg.TTL)}
		if cfg.Prefix != "" {
			opts = append(opts, redis.WithPrefix(cfg.Prefix))
		}
		store, err := redis.NewFromURL(cfg.RedisURL, opts...)
		if err != nil {
			return nil, fmt.Errorf("error connecting to redis: %w", err)
		}
		return &storage{
			Store:  store,
			Locker: redis.NewLocker(store.Client(), store.Prefix()),
			Close:  store.Close,
		}, nil
	default:
		return nil, fmt.Errorf("%w: unknown store backend %q", domain.ErrInvalidConfiguration, cfg.Backend)
	}
}

// createSessionManager wires the store and, for shared backends, the distributed lock.
func createSessionManager(st *storage, logger *slog.Logger) *session.Manager {
	opts := []session.Option{session.WithLogger(logger)}
	if st.Locker != nil {
		opts = append(opts, session.WithLocker(st.Locker))
	}
	return session.NewManager(st.Store, opts...)
}

// createAgentFactory returns the per-episode agent constructor.
// The reference model needs no command; any other model runs cfg.Agent.
func createAgentFactory(cfg config.Config, logger *slog.Logger) (func(size int) (ports.Agent, error), error) {
	if cfg.Model == ReferenceModel && cfg.Agent.Command == "" {
		solver := agent.NewOptimal(0)
		return func(int) (ports.Agent, error) { return solver, nil }, nil
	}

	agentCfg := cfg.Agent
	env := make(map[string]string, len(agentCfg.Env)+3)
	env[process.EnvPrefix+"MODEL"] = cfg.Model
	env[process.EnvPrefix+"TEMPERATURE"] = strconv.FormatFloat(cfg.Temperature, 'f', -1, 64)
	env[process.EnvPrefix+"SEED"] = strconv.FormatInt(cfg.Seed, 10)
	for k, v := range agentCfg.Env {
		env[k] = v
	}
	agentCfg.Env = env

	if err := agentCfg.Validate(); err != nil {
		return nil, err
	}
	a, err := process.New(agentCfg, process.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	return func(int) (ports.Agent, error) { return a, nil }, nil
}
