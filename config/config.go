package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/revelaction/syncomp/infer"
	sent "github.com/revelaction/syncomp/sentence"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid configuration")

const envPrefix = "SYNCOMP_"

type CorpusConfig struct {
	// Dir holds the <stem>.dat and <stem>.tok files of each subset.
	Dir         string `yaml:"dir"`
	Native      string `yaml:"native"`
	NonNative   string `yaml:"non_native"`
	Translation string `yaml:"translation"`

	// SampleSize limits the lines per subset, 0 keeps all.
	SampleSize int `yaml:"sample_size"`
}

type AnnotateConfig struct {
	// Command is the external parser, reading documents on stdin and
	// writing CoNLL-U on stdout.
	Command   []string      `yaml:"command"`
	ConllDir  string        `yaml:"conll_dir"`
	BatchSize int           `yaml:"batch_size"`
	Timeout   time.Duration `yaml:"timeout"`
}

type ModelConfig struct {
	BalanceClasses        bool    `yaml:"balance_classes"`
	ComplexityFormula     string  `yaml:"complexity_formula"`
	PermutationIterations int     `yaml:"permutation_iterations"`
	BootstrapIterations   int     `yaml:"bootstrap_iterations"`
	ConfidenceLevel       float64 `yaml:"confidence_level"`
	RandomSeed            *uint64 `yaml:"random_seed"`
	ReferenceLevel        string  `yaml:"reference_level"`
	TreatmentLevel        string  `yaml:"treatment_level"`
	Workers               int     `yaml:"workers"`
}

type StorageConfig struct {
	// Path is a directory (CSV/JSON tables) or a .db/.sqlite file.
	Path string `yaml:"path"`
}

type CacheConfig struct {
	RedisAddr     string        `yaml:"redis_addr"`
	RedisPassword string        `yaml:"redis_password"`
	RedisDB       int           `yaml:"redis_db"`
	TTL           time.Duration `yaml:"ttl"`
}

type ServerConfig struct {
	Addr           string   `yaml:"addr"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

type Config struct {
	Corpus   CorpusConfig   `yaml:"corpus"`
	Annotate AnnotateConfig `yaml:"annotate"`
	Model    ModelConfig    `yaml:"model"`
	Storage  StorageConfig  `yaml:"storage"`
	Cache    CacheConfig    `yaml:"cache"`
	Server   ServerConfig   `yaml:"server"`
	Log      LogConfig      `yaml:"log"`
}

func Default() *Config {
	return &Config{
		Corpus: CorpusConfig{
			Dir:         "./corpus",
			Native:      "native",
			NonNative:   "nonnative",
			Translation: "translations",
		},
		Annotate: AnnotateConfig{
			ConllDir:  "./corpus/conll",
			BatchSize: 500,
			Timeout:   10 * time.Minute,
		},
		Model: ModelConfig{
			ComplexityFormula:     string(infer.Ratio),
			PermutationIterations: 1000,
			BootstrapIterations:   1000,
			ConfidenceLevel:       0.95,
			ReferenceLevel:        string(sent.Native),
			TreatmentLevel:        string(sent.Translation),
			Workers:               runtime.NumCPU(),
		},
		Storage: StorageConfig{
			Path: "./data",
		},
		Cache: CacheConfig{
			TTL: 30 * 24 * time.Hour,
		},
		Server: ServerConfig{
			Addr:           "127.0.0.1:8080",
			AllowedOrigins: []string{"*"},
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load overlays, on the defaults, the YAML file at path (if not empty), a
// .env file in the working directory (if present) and SYNCOMP_* variables.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) applyEnv() error {
	var e envReader
	c.Corpus.Dir = e.str("CORPUS_DIR", c.Corpus.Dir)
	c.Corpus.SampleSize = e.int("CORPUS_SAMPLE_SIZE", c.Corpus.SampleSize)

	if cmd := e.str("ANNOTATE_COMMAND", ""); cmd != "" {
		c.Annotate.Command = strings.Fields(cmd)
	}
	c.Annotate.ConllDir = e.str("ANNOTATE_CONLL_DIR", c.Annotate.ConllDir)

	c.Model.BalanceClasses = e.bool("BALANCE_CLASSES", c.Model.BalanceClasses)
	c.Model.ComplexityFormula = e.str("COMPLEXITY_FORMULA", c.Model.ComplexityFormula)
	c.Model.PermutationIterations = e.int("PERMUTATION_ITERATIONS", c.Model.PermutationIterations)
	c.Model.BootstrapIterations = e.int("BOOTSTRAP_ITERATIONS", c.Model.BootstrapIterations)
	c.Model.ConfidenceLevel = e.float("CONFIDENCE_LEVEL", c.Model.ConfidenceLevel)
	c.Model.Workers = e.int("WORKERS", c.Model.Workers)
	c.Model.RandomSeed = e.uint("RANDOM_SEED", c.Model.RandomSeed)

	c.Storage.Path = e.str("STORAGE_PATH", c.Storage.Path)

	c.Cache.RedisAddr = e.str("REDIS_ADDR", c.Cache.RedisAddr)
	c.Cache.RedisPassword = e.str("REDIS_PASSWORD", c.Cache.RedisPassword)
	c.Cache.RedisDB = e.int("REDIS_DB", c.Cache.RedisDB)

	c.Server.Addr = e.str("SERVER_ADDR", c.Server.Addr)
	c.Log.Level = e.str("LOG_LEVEL", c.Log.Level)
	return e.err
}

func (c *Config) Validate() error {
	m := c.Model
	if _, err := infer.ParseFormula(m.ComplexityFormula); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if m.PermutationIterations < 1 || m.BootstrapIterations < 1 {
		return fmt.Errorf("%w: iterations must be positive", ErrInvalid)
	}
	if m.ConfidenceLevel <= 0 || m.ConfidenceLevel >= 1 {
		return fmt.Errorf("%w: confidence_level %g not in (0,1)", ErrInvalid, m.ConfidenceLevel)
	}
	if m.Workers < 1 {
		return fmt.Errorf("%w: workers must be positive", ErrInvalid)
	}

	ref, err := sent.ParseDocType(m.ReferenceLevel)
	if err != nil {
		return fmt.Errorf("%w: reference_level: %v", ErrInvalid, err)
	}
	trt, err := sent.ParseDocType(m.TreatmentLevel)
	if err != nil {
		return fmt.Errorf("%w: treatment_level: %v", ErrInvalid, err)
	}
	if ref == trt {
		return fmt.Errorf("%w: reference and treatment level are both %s", ErrInvalid, ref)
	}

	if c.Corpus.SampleSize < 0 {
		return fmt.Errorf("%w: sample_size must not be negative", ErrInvalid)
	}
	if c.Annotate.BatchSize < 1 {
		return fmt.Errorf("%w: batch_size must be positive", ErrInvalid)
	}
	return nil
}

// ModelOptions converts the model section into inference options.
func (c *Config) ModelOptions() (infer.Options, error) {
	if err := c.Validate(); err != nil {
		return infer.Options{}, err
	}

	m := c.Model
	f, _ := infer.ParseFormula(m.ComplexityFormula)
	ref, _ := sent.ParseDocType(m.ReferenceLevel)
	trt, _ := sent.ParseDocType(m.TreatmentLevel)

	return infer.Options{
		BalanceClasses:        m.BalanceClasses,
		Formula:               f,
		PermutationIterations: m.PermutationIterations,
		BootstrapIterations:   m.BootstrapIterations,
		ConfidenceLevel:       m.ConfidenceLevel,
		Seed:                  m.RandomSeed,
		Reference:             ref,
		Treatment:             trt,
		Workers:               m.Workers,
	}, nil
}

// Stems maps each document type to its corpus file stem.
func (c *Config) Stems() map[sent.DocType]string {
	return map[sent.DocType]string{
		sent.Native:      c.Corpus.Native,
		sent.NonNative:   c.Corpus.NonNative,
		sent.Translation: c.Corpus.Translation,
	}
}

// envReader reads SYNCOMP_* variables. A set variable that does not parse
// keeps the default and records the first failure in err.
type envReader struct {
	err error
}

func (e *envReader) lookup(key string) (string, bool) {
	value := os.Getenv(envPrefix + key)
	return value, value != ""
}

func (e *envReader) fail(key, value string, err error) {
	if e.err == nil {
		e.err = fmt.Errorf("%w: %s%s=%q: %v", ErrInvalid, envPrefix, key, value, err)
	}
}

func (e *envReader) str(key, defaultValue string) string {
	if value, ok := e.lookup(key); ok {
		return value
	}
	return defaultValue
}

func (e *envReader) int(key string, defaultValue int) int {
	value, ok := e.lookup(key)
	if !ok {
		return defaultValue
	}
	v, err := strconv.Atoi(value)
	if err != nil {
		e.fail(key, value, err)
		return defaultValue
	}
	return v
}

func (e *envReader) uint(key string, defaultValue *uint64) *uint64 {
	value, ok := e.lookup(key)
	if !ok {
		return defaultValue
	}
	v, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		e.fail(key, value, err)
		return defaultValue
	}
	return &v
}

func (e *envReader) bool(key string, defaultValue bool) bool {
	value, ok := e.lookup(key)
	if !ok {
		return defaultValue
	}
	v, err := strconv.ParseBool(value)
	if err != nil {
		e.fail(key, value, err)
		return defaultValue
	}
	return v
}

func (e *envReader) float(key string, defaultValue float64) float64 {
	value, ok := e.lookup(key)
	if !ok {
		return defaultValue
	}
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		e.fail(key, value, err)
		return defaultValue
	}
	return v
}
