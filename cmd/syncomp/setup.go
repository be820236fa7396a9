package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/redis/go-redis/v9"
	"github.com/urfave/cli/v2"

	"github.com/revelaction/syncomp/config"
	"github.com/revelaction/syncomp/logger"
	sent "github.com/revelaction/syncomp/sentence"
	"github.com/revelaction/syncomp/storage"
	"github.com/revelaction/syncomp/storage/filesystem"
	"github.com/revelaction/syncomp/storage/sqlite/zombiezen"
)

// env holds what every command needs.
type env struct {
	cfg   *config.Config
	log   *logger.Logger
	store storage.Store
}

func (e *env) Close() error {
	if e.store == nil {
		return nil
	}
	return e.store.Close()
}

// setup loads the configuration, applies the command line overrides and
// opens the store.
func setup(c *cli.Context, ui UI) (*env, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, err
	}

	log := logger.New(cfg.Log.Level, ui.Err)

	store, err := NewStore(cfg.Storage.Path)
	if err != nil {
		return nil, err
	}
	log.Debug("store %s", cfg.Storage.Path)

	return &env{cfg: cfg, log: log, store: store}, nil
}

func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, err
	}

	if c.IsSet("store") {
		cfg.Storage.Path = c.String("store")
	}
	if c.IsSet("log-level") {
		cfg.Log.Level = c.String("log-level")
	}
	applyCorpusFlags(c, cfg)
	applyAnnotateFlags(c, cfg)
	applyModelFlags(c, cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// NewStore opens a SQLite store for .db and .sqlite paths and a directory
// store otherwise.
func NewStore(path string) (storage.Store, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".db", ".sqlite", ".sqlite3":
		return zombiezen.Open(path)
	}

	store, err := filesystem.NewStore(path)
	if err != nil {
		return nil, fmt.Errorf("repository not usable: %s: %w", path, err)
	}
	return store, nil
}

func newRedisClient(cfg config.CacheConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
}

// conllPath is the CoNLL-U file of a subset.
func conllPath(cfg *config.Config, docType sent.DocType) string {
	return filepath.Join(cfg.Annotate.ConllDir, cfg.Stems()[docType]+".conllu")
}
