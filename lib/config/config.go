// Copyright 2026 The Camunda Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/camunda/camunda-sub024/lib/checksum"
	"github.com/camunda/camunda-sub024/lib/keygen"
	"github.com/camunda/camunda-sub024/lib/statestore"
	"github.com/camunda/camunda-sub024/lib/versioning"
)

// EnvVar names the environment variable Load reads the config path
// from.
const EnvVar = "DEPLOYCTL_CONFIG"

// Environment represents the deployment environment.
type Environment string

const (
	Development Environment = "development"
	Staging     Environment = "staging"
	Production  Environment = "production"
)

// Config is the configuration of a deployctl node.
type Config struct {
	Environment Environment `yaml:"environment"`

	// PartitionID is embedded in every key this node mints.
	PartitionID int32 `yaml:"partition_id"`

	// TenantID is used for submissions that name no tenant. Empty
	// means the default tenant.
	TenantID string `yaml:"tenant_id"`

	// Checksum names the digest algorithm: blake3, sha256 or md5.
	Checksum string `yaml:"checksum"`

	Versioning   VersioningConfig   `yaml:"versioning"`
	Store        StoreConfig        `yaml:"store"`
	ContentStore ContentStoreConfig `yaml:"content_store"`
	Logging      LoggingConfig      `yaml:"logging"`

	// Per-environment overrides, applied after the base config.
	Development *Overrides `yaml:"development,omitempty"`
	Staging     *Overrides `yaml:"staging,omitempty"`
	Production  *Overrides `yaml:"production,omitempty"`
}

// Overrides contains the fields an environment section may replace.
type Overrides struct {
	Store        *StoreConfig        `yaml:"store,omitempty"`
	ContentStore *ContentStoreConfig `yaml:"content_store,omitempty"`
	Logging      *LoggingConfig      `yaml:"logging,omitempty"`
}

type VersioningConfig struct {
	// DuplicateScope is "latest" (compare with the latest version
	// only) or "any" (compare with the whole history).
	DuplicateScope string `yaml:"duplicate_scope"`
}

// StoreConfig configures the node-local SQLite state.
type StoreConfig struct {
	Path     string `yaml:"path"`
	PoolSize int    `yaml:"pool_size"`

	// Compression is auto, none, lz4 or zstd.
	Compression string `yaml:"compression"`
}

// ContentStoreConfig selects where content records go.
type ContentStoreConfig struct {
	// Backend is "sqlite" (the state database) or "s3".
	Backend string   `yaml:"backend"`
	S3      S3Config `yaml:"s3"`
}

type S3Config struct {
	Endpoint  string `yaml:"endpoint"`
	Bucket    string `yaml:"bucket"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Region    string `yaml:"region"`
	UseSSL    bool   `yaml:"use_ssl"`
	Prefix    string `yaml:"prefix"`
}

type LoggingConfig struct {
	// Level is debug, info, warn or error.
	Level string `yaml:"level"`

	// Format is auto (text on a terminal, JSON otherwise), text or
	// json.
	Format string `yaml:"format"`
}

// Default returns the configuration every file is merged onto.
func Default() *Config {
	homeDir, _ := os.UserHomeDir()
	return &Config{
		Environment: Development,
		PartitionID: 1,
		Checksum:    checksum.BLAKE3.String(),
		Versioning:  VersioningConfig{DuplicateScope: versioning.LatestOnly.String()},
		Store: StoreConfig{
			Path:        filepath.Join(homeDir, ".cache", "deployctl", "state.db"),
			PoolSize:    4,
			Compression: "auto",
		},
		ContentStore: ContentStoreConfig{
			Backend: "sqlite",
			S3:      S3Config{Region: "us-east-1"},
		},
		Logging: LoggingConfig{Level: "info", Format: "auto"},
	}
}

// Load loads the file named by DEPLOYCTL_CONFIG. There is no discovery
// fallback: an unset variable is an error.
func Load() (*Config, error) {
	configPath := os.Getenv(EnvVar)
	if configPath == "" {
		return nil, fmt.Errorf("%s environment variable not set; "+
			"set it to the path of your deployctl.yaml config file, or use --config flag", EnvVar)
	}
	return LoadFile(configPath)
}

// LoadFile loads configuration from path. Files ending in .jsonc or
// .json are read as JSON with comments; anything else as YAML.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.parse(path, data); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	cfg.applyEnvironmentOverrides()
	cfg.expandVariables()
	return cfg, nil
}

func (c *Config) parse(path string, data []byte) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jsonc", ".json":
		// JSON is a subset of YAML, so the yaml tags serve both. Raw
		// tabs in valid JSON are only ever whitespace, and YAML
		// rejects them as indentation.
		data = bytes.ReplaceAll(jsonc.ToJSON(data), []byte("\t"), []byte(" "))
	}
	return yaml.Unmarshal(data, c)
}

func (c *Config) applyEnvironmentOverrides() {
	var overrides *Overrides
	switch c.Environment {
	case Development:
		overrides = c.Development
	case Staging:
		overrides = c.Staging
	case Production:
		overrides = c.Production
		// Production logs are machine-read.
		if overrides == nil {
			overrides = &Overrides{Logging: &LoggingConfig{Format: "json"}}
		}
	}
	if overrides == nil {
		return
	}

	if overrides.Store != nil {
		if overrides.Store.Path != "" {
			c.Store.Path = overrides.Store.Path
		}
		if overrides.Store.PoolSize != 0 {
			c.Store.PoolSize = overrides.Store.PoolSize
		}
		if overrides.Store.Compression != "" {
			c.Store.Compression = overrides.Store.Compression
		}
	}

	if overrides.ContentStore != nil {
		if overrides.ContentStore.Backend != "" {
			c.ContentStore.Backend = overrides.ContentStore.Backend
		}
		s3 := overrides.ContentStore.S3
		if s3.Endpoint != "" {
			c.ContentStore.S3.Endpoint = s3.Endpoint
		}
		if s3.Bucket != "" {
			c.ContentStore.S3.Bucket = s3.Bucket
		}
		if s3.AccessKey != "" {
			c.ContentStore.S3.AccessKey = s3.AccessKey
		}
		if s3.SecretKey != "" {
			c.ContentStore.S3.SecretKey = s3.SecretKey
		}
		if s3.Region != "" {
			c.ContentStore.S3.Region = s3.Region
		}
		if s3.Prefix != "" {
			c.ContentStore.S3.Prefix = s3.Prefix
		}
		// UseSSL is a bool, so the override always applies.
		c.ContentStore.S3.UseSSL = s3.UseSSL
	}

	if overrides.Logging != nil {
		if overrides.Logging.Level != "" {
			c.Logging.Level = overrides.Logging.Level
		}
		if overrides.Logging.Format != "" {
			c.Logging.Format = overrides.Logging.Format
		}
	}
}

// expandVariables expands ${VAR} and ${VAR:-default} in paths and
// credentials.
func (c *Config) expandVariables() {
	vars := map[string]string{"HOME": os.Getenv("HOME")}
	c.Store.Path = expandVars(c.Store.Path, vars)
	c.ContentStore.S3.Endpoint = expandVars(c.ContentStore.S3.Endpoint, vars)
	c.ContentStore.S3.AccessKey = expandVars(c.ContentStore.S3.AccessKey, vars)
	c.ContentStore.S3.SecretKey = expandVars(c.ContentStore.S3.SecretKey, vars)
}

var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

func expandVars(s string, vars map[string]string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		name, defaultValue := parts[1], parts[2]
		if value, ok := vars[name]; ok && value != "" {
			return value
		}
		if value := os.Getenv(name); value != "" {
			return value
		}
		return defaultValue
	})
}

// Validate reports every problem with the configuration at once.
func (c *Config) Validate() error {
	var errs []error

	switch c.Environment {
	case Development, Staging, Production:
	default:
		errs = append(errs, fmt.Errorf("invalid environment: %s", c.Environment))
	}
	if c.PartitionID < 1 || c.PartitionID > keygen.MaxPartitionID {
		errs = append(errs, fmt.Errorf("partition_id must be in [1, %d]", keygen.MaxPartitionID))
	}
	if _, err := checksum.ParseAlgorithm(c.Checksum); err != nil {
		errs = append(errs, fmt.Errorf("checksum: %w", err))
	}
	if _, err := versioning.ParsePolicy(c.Versioning.DuplicateScope); err != nil {
		errs = append(errs, fmt.Errorf("versioning.duplicate_scope: %w", err))
	}
	if c.Store.Path == "" {
		errs = append(errs, errors.New("store.path is required"))
	}
	if _, err := statestore.ParseCompression(c.Store.Compression); err != nil {
		errs = append(errs, fmt.Errorf("store.compression: %w", err))
	}

	switch c.ContentStore.Backend {
	case "sqlite":
	case "s3":
		s3 := c.ContentStore.S3
		if s3.Endpoint == "" {
			errs = append(errs, errors.New("content_store.s3.endpoint is required"))
		}
		if s3.Bucket == "" {
			errs = append(errs, errors.New("content_store.s3.bucket is required"))
		}
		if s3.AccessKey == "" || s3.SecretKey == "" {
			errs = append(errs, errors.New("content_store.s3 credentials are required"))
		}
	default:
		errs = append(errs, fmt.Errorf("content_store.backend must be sqlite or s3, got %q", c.ContentStore.Backend))
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("logging.level must be one of debug, info, warn, error"))
	}
	switch c.Logging.Format {
	case "auto", "text", "json":
	default:
		errs = append(errs, fmt.Errorf("logging.format must be one of auto, text, json"))
	}

	return errors.Join(errs...)
}

// ChecksumAlgorithm returns the parsed checksum setting. Call Validate
// first.
func (c *Config) ChecksumAlgorithm() checksum.Algorithm {
	algorithm, _ := checksum.ParseAlgorithm(c.Checksum)
	return algorithm
}

// DuplicatePolicy returns the parsed duplicate scope. Call Validate
// first.
func (c *Config) DuplicatePolicy() versioning.Policy {
	policy, _ := versioning.ParsePolicy(c.Versioning.DuplicateScope)
	return policy
}

// EnsureStoreDir creates the directory holding the state database.
func (c *Config) EnsureStoreDir() error {
	dir := filepath.Dir(c.Store.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}
	return nil
}
