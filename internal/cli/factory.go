package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/fieldform/internal/adapters/file"
	"github.com/aretw0/fieldform/internal/adapters/sqlite"
	"github.com/aretw0/fieldform/internal/config"
	loamadapter "github.com/aretw0/fieldform/pkg/adapters/loam"
	"github.com/aretw0/fieldform/pkg/adapters/memory"
	redisadapter "github.com/aretw0/fieldform/pkg/adapters/redis"
	"github.com/aretw0/fieldform/pkg/domain"
	"github.com/aretw0/fieldform/pkg/observability"
	"github.com/aretw0/fieldform/pkg/persistence/middleware"
	"github.com/aretw0/fieldform/pkg/ports"
	"github.com/aretw0/fieldform/pkg/schema"
	"github.com/aretw0/fieldform/pkg/session"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	redisPrefix    = "fieldform:"
	sqliteFileName = "sessions.db"
)

// LoadSchema reads the metamodel at path. A directory is read as a loam
// repository of definition documents, a file as one YAML or JSON document.
func LoadSchema(ctx context.Context, path string) (*schema.Model, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("schema: %w", err)
	}
	if info.IsDir() {
		loader, err := loamadapter.Open(path)
		if err != nil {
			return nil, err
		}
		return loader.LoadModel(ctx)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml", ".json":
		return schema.LoadFile(path)
	default:
		return nil, fmt.Errorf("schema %s: unsupported file type (want a directory, .yaml, .yml or .json)", path)
	}
}

// Runtime holds everything a host needs to serve form sessions.
type Runtime struct {
	Config   *config.Config
	Logger   *slog.Logger
	Schema   *schema.Model
	Store    ports.SnapshotStore
	Manager  *session.Manager
	Registry *prometheus.Registry

	closers []func() error
}

// NewRuntime loads the schema and wires the configured store, its middlewares,
// the optional distributed locker and the observability hooks into a session
// manager. Extra hooks are combined with the logging and metrics hooks.
func NewRuntime(ctx context.Context, cfg *config.Config, logger *slog.Logger, extra ...domain.Hooks) (*Runtime, error) {
	model, err := LoadSchema(ctx, cfg.Schema)
	if err != nil {
		return nil, err
	}

	rt := &Runtime{Config: cfg, Logger: logger, Schema: model}

	base, locker, err := rt.openStore(cfg)
	if err != nil {
		return nil, err
	}
	store, err := wrapStore(base, model, cfg)
	if err != nil {
		_ = rt.Close()
		return nil, err
	}
	rt.Store = store

	hooks := observability.LogHooks(logger)
	if cfg.Metrics {
		rt.Registry = prometheus.NewRegistry()
		metrics, err := observability.NewMetrics(rt.Registry)
		if err != nil {
			_ = rt.Close()
			return nil, err
		}
		hooks = observability.Combine(hooks, metrics.Hooks())
	}
	if len(extra) > 0 {
		hooks = observability.Combine(append([]domain.Hooks{hooks}, extra...)...)
	}

	opts := []session.Option{
		session.WithLogger(logger),
		session.WithHooks(hooks),
		session.WithLockTTL(cfg.LockTTL),
	}
	if locker != nil {
		opts = append(opts, session.WithLocker(locker))
	}
	rt.Manager = session.NewManager(store, model, opts...)

	logger.Debug("runtime ready", "schema", cfg.Schema, "store", cfg.Store, "definitions", model.Len())
	return rt, nil
}

func (rt *Runtime) openStore(cfg *config.Config) (ports.SnapshotStore, ports.DistributedLocker, error) {
	switch cfg.Store {
	case config.StoreMemory:
		return memory.NewStore(), nil, nil
	case config.StoreFile:
		return file.New(cfg.StorePath), nil, nil
	case config.StoreSQLite:
		path := cfg.StorePath
		if filepath.Ext(path) == "" {
			path = filepath.Join(path, sqliteFileName)
		}
		store, err := sqlite.Open(path)
		if err != nil {
			return nil, nil, err
		}
		rt.closers = append(rt.closers, store.Close)
		return store, nil, nil
	case config.StoreRedis:
		store := redisadapter.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB,
			redisadapter.WithTTL(cfg.Redis.TTL),
			redisadapter.WithPrefix(redisPrefix+"session:"))
		rt.closers = append(rt.closers, store.Close)
		return store, redisadapter.NewLocker(store.Client(), redisPrefix), nil
	default:
		return nil, nil, fmt.Errorf("unknown store %q", cfg.Store)
	}
}

// wrapStore applies redaction before encryption so masked values are what
// gets sealed.
func wrapStore(store ports.SnapshotStore, model ports.Metamodel, cfg *config.Config) (ports.SnapshotStore, error) {
	var mws []middleware.Middleware
	if len(cfg.RedactFields) > 0 {
		pii, err := middleware.NewPIIMiddleware(model, cfg.RedactFields)
		if err != nil {
			return nil, err
		}
		mws = append(mws, pii)
	}
	if cfg.EncryptionKey != "" {
		active, fallback, err := cfg.Keys()
		if err != nil {
			return nil, err
		}
		enc, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
			ActiveKey:    active,
			FallbackKeys: fallback,
		})
		if err != nil {
			return nil, err
		}
		mws = append(mws, enc)
	}
	return middleware.Chain(store, mws...), nil
}

// Close releases store connections.
func (rt *Runtime) Close() error {
	var errs []error
	for i := len(rt.closers) - 1; i >= 0; i-- {
		errs = append(errs, rt.closers[i]())
	}
	rt.closers = nil
	return errors.Join(errs...)
}

// DumpRecord returns the contents of a record that supports inspection.
func DumpRecord(rec ports.Record) (map[string]any, bool) {
	d, ok := rec.(interface{ Dump() map[string]any })
	if !ok {
		return nil, false
	}
	return d.Dump(), true
}
