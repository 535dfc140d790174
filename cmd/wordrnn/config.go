package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

// Config represents the wordrnn configuration file (~/.config/wordrnn/config.yaml).
// All fields are pointers so we can distinguish "not set" from zero values.
type Config struct {
	// Corpus
	Database     *string `yaml:"database"`
	Query        *string `yaml:"query"`
	CorpusDir    *string `yaml:"corpus_dir"`
	Tokenizer    *string `yaml:"tokenizer"`
	Preprocess   *string `yaml:"preprocess"`
	DropPunct    *bool   `yaml:"drop_punct"`
	MinFrequency *int64  `yaml:"min_frequency"`

	// Training
	WindowLength *int64   `yaml:"window_length"`
	BatchSize    *int64   `yaml:"batch_size"`
	Epochs       *int64   `yaml:"epochs"`
	Seed         *int64   `yaml:"seed"`
	Hidden       *int64   `yaml:"hidden"`
	LearningRate *float64 `yaml:"learning_rate"`
	Decay        *float64 `yaml:"decay"`

	// Sampling
	SampleEvery  *int64   `yaml:"sample_every"`
	Samples      *int64   `yaml:"samples"`
	SampleLength *int64   `yaml:"sample_length"`
	Joiner       *string  `yaml:"joiner"`
	Temperature  *float64 `yaml:"temperature"`

	// Output
	LogLevel  *string `yaml:"log_level"`
	LogFormat *string `yaml:"log_format"`

	// Server
	ServerAddress *string `yaml:"server_address"`
}

func configPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "wordrnn", "config.yaml")
}

// LoadConfig reads the config file. A missing file yields a zero Config.
func LoadConfig(path string) (Config, error) {
	if path == "" {
		return Config{}, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Config{}, nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

func setString(c *cli.Command, flag string, dst *string, v *string) {
	if v != nil && !c.IsSet(flag) {
		*dst = *v
	}
}

func setInt(c *cli.Command, flag string, dst *int64, v *int64) {
	if v != nil && !c.IsSet(flag) {
		*dst = *v
	}
}

func setFloat(c *cli.Command, flag string, dst *float64, v *float64) {
	if v != nil && !c.IsSet(flag) {
		*dst = *v
	}
}

// applyLoggingConfig applies config file defaults to the logging flags.
func applyLoggingConfig(c *cli.Command, cfg Config) {
	setString(c, "log-level", &logLevel, cfg.LogLevel)
	setString(c, "log-format", &logFormat, cfg.LogFormat)
}

// applyConfig applies config file defaults to the corpus, training and
// sampling variables when the corresponding CLI flag was not explicitly set.
func applyConfig(c *cli.Command, cfg Config) {
	setString(c, "db", &database, cfg.Database)
	setString(c, "query", &query, cfg.Query)
	setString(c, "corpus-dir", &corpusDir, cfg.CorpusDir)
	setString(c, "tokenizer", &tokenizerArg, cfg.Tokenizer)
	setString(c, "preprocess", &preprocess, cfg.Preprocess)
	if cfg.DropPunct != nil && !c.IsSet("drop-punct") {
		dropPunct = *cfg.DropPunct
	}
	setInt(c, "min-frequency", &minFrequency, cfg.MinFrequency)

	setInt(c, "window-length", &windowLength, cfg.WindowLength)
	setInt(c, "batch-size", &batchSize, cfg.BatchSize)
	setInt(c, "epochs", &epochs, cfg.Epochs)
	setInt(c, "seed", &seed, cfg.Seed)
	setInt(c, "hidden", &hidden, cfg.Hidden)
	setFloat(c, "learning-rate", &learningRate, cfg.LearningRate)
	setFloat(c, "decay", &decay, cfg.Decay)

	setInt(c, "sample-every", &sampleEvery, cfg.SampleEvery)
	setInt(c, "samples", &samples, cfg.Samples)
	setInt(c, "sample-length", &sampleLength, cfg.SampleLength)
	setString(c, "joiner", &joiner, cfg.Joiner)
	setFloat(c, "temperature", &temperature, cfg.Temperature)
}

// applyServeConfig applies config file defaults to serve command variables.
func applyServeConfig(c *cli.Command, cfg Config, addr *string) {
	applyConfig(c, cfg)
	setString(c, "addr", addr, cfg.ServerAddress)
}
