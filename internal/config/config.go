// Package config resolves settings from defaults, a YAML file, a .env file and
// the environment, in that order of increasing precedence. Command-line flags
// are applied on top by the caller.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// FileName is the configuration file looked up by Find.
const FileName = "notebench.yaml"

// Config holds every setting of the service and the harness.
type Config struct {
	Port        int    `yaml:"port"`
	Flavor      string `yaml:"flavor"`
	Store       string `yaml:"store"`
	DataDir     string `yaml:"data_dir"`
	StoreFormat string `yaml:"store_format"`
	SystemDir   string `yaml:"system_dir"`
	Watch       bool   `yaml:"watch"`
	DBURI       string `yaml:"db_uri"`
	DBName      string `yaml:"db_name"`
	StaticDir   string `yaml:"static_dir"`
	BenchFirst  string `yaml:"bench_first"`
	BenchSecond string `yaml:"bench_second"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Port:        9000,
		Flavor:      "go",
		Store:       "memory",
		DataDir:     "./data",
		StoreFormat: ".json",
		SystemDir:   ".notebench",
		DBName:      "notes",
		BenchFirst:  "http://localhost:9001/api",
		BenchSecond: "http://localhost:9000/api",
	}
}

// Load resolves the configuration. path names a YAML file; when empty, Find
// is used from the working directory and a missing file is not an error.
// envFile names a dotenv file; a missing one is ignored.
func Load(path, envFile string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		if wd, err := os.Getwd(); err == nil {
			path, _ = Find(wd)
		}
	}
	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			if explicit || !errors.Is(err, os.ErrNotExist) {
				return Config{}, err
			}
		}
	}

	if envFile != "" {
		// Existing environment variables win over the dotenv file.
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("failed to read %s: %w", envFile, err)
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	strs := map[string]*string{
		"FLAVOR":       &c.Flavor,
		"STORE":        &c.Store,
		"DATA_DIR":     &c.DataDir,
		"STORE_FORMAT": &c.StoreFormat,
		"SYSTEM_DIR":   &c.SystemDir,
		"DB_URI":       &c.DBURI,
		"DB_NAME":      &c.DBName,
		"STATIC_DIR":   &c.StaticDir,
		"BENCH_FIRST":  &c.BenchFirst,
		"BENCH_SECOND": &c.BenchSecond,
	}
	for key, dst := range strs {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}

	if v, ok := lookup("PORT"); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid PORT %q: %w", v, err)
		}
		c.Port = port
	}
	if v, ok := lookup("WATCH"); ok && v != "" {
		watch, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid WATCH %q: %w", v, err)
		}
		c.Watch = watch
	}
	return nil
}

// Validate checks values that would otherwise fail late.
func (c Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	switch c.Store {
	case "memory", "fs", "mongo":
	default:
		return fmt.Errorf("unknown store: %s", c.Store)
	}
	if c.Store == "mongo" && c.DBURI == "" {
		return fmt.Errorf("store mongo requires DB_URI")
	}
	return nil
}

// Addr is the listen address for Port.
func (c Config) Addr() string {
	return ":" + strconv.Itoa(c.Port)
}

// Find looks upwards from startDir for FileName and returns its absolute path.
func Find(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for {
		candidate := filepath.Join(dir, FileName)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", fmt.Errorf("%s not found: %w", FileName, os.ErrNotExist)
}
