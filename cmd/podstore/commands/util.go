package commands

import (
	"fmt"
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/marmos91/podstore/internal/logger"
	"github.com/marmos91/podstore/pkg/accessor"
	"github.com/marmos91/podstore/pkg/accessor/badgerdb"
	"github.com/marmos91/podstore/pkg/accessor/file"
	"github.com/marmos91/podstore/pkg/accessor/memory"
	"github.com/marmos91/podstore/pkg/config"
	"github.com/marmos91/podstore/pkg/metrics"
	"github.com/marmos91/podstore/pkg/resource"
	"github.com/marmos91/podstore/pkg/store"
)

// environment bundles everything a store-backed command needs.
type environment struct {
	cfg   *config.Config
	store store.ResourceStore
	close func() error
}

// setup loads configuration, initializes logging, and assembles the store
// over the configured backend.
func setup() (*environment, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	if err := logger.Init(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	}); err != nil {
		return nil, err
	}

	acc, closeFn, err := buildAccessor(cfg)
	if err != nil {
		return nil, err
	}

	var storeMetrics *metrics.StoreMetrics
	if cfg.Metrics.Enabled {
		storeMetrics = metrics.NewStoreMetrics(prometheus.DefaultRegisterer)
	}

	st, err := store.New(store.Config{
		Accessor: acc,
		Base:     cfg.BaseURL,
		Metrics:  storeMetrics,
	})
	if err != nil {
		if closeFn != nil {
			closeFn()
		}
		return nil, err
	}

	return &environment{cfg: cfg, store: st, close: closeFn}, nil
}

// buildAccessor constructs the configured storage backend. The returned close
// function may be nil.
func buildAccessor(cfg *config.Config) (accessor.DataAccessor, func() error, error) {
	switch cfg.Store.Backend {
	case "memory":
		return memory.New(cfg.BaseURL), nil, nil
	case "filesystem":
		mapper := file.NewExtensionMapper(cfg.BaseURL, cfg.Store.Filesystem.Root)
		fsCfg := file.DefaultConfig(mapper, cfg.Store.Filesystem.Root)
		fsCfg.MetadataSuffix = cfg.Store.Filesystem.MetadataSuffix
		acc, err := file.New(fsCfg)
		if err != nil {
			return nil, nil, err
		}
		return acc, nil, nil
	case "badger":
		acc, err := badgerdb.New(badgerdb.Config{
			Base:     cfg.BaseURL,
			Path:     cfg.Store.Badger.Path,
			InMemory: cfg.Store.Badger.InMemory,
		})
		if err != nil {
			return nil, nil, err
		}
		return acc, acc.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown store backend: %q", cfg.Store.Backend)
	}
}

// teardown releases backend resources, logging instead of failing.
func (e *environment) teardown() {
	if e.close == nil {
		return
	}
	if err := e.close(); err != nil {
		logger.Warn("failed to close store backend", "error", err)
	}
}

// resolveIdentifier turns a command-line path argument into a full identifier
// under the configured base.
func (e *environment) resolveIdentifier(arg string) resource.Identifier {
	if strings.HasPrefix(arg, e.cfg.BaseURL) {
		return resource.ID(arg)
	}
	base := e.cfg.BaseURL
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	return resource.ID(base + strings.TrimPrefix(arg, "/"))
}
