package main

import (
	"github.com/urfave/cli/v3"

	"github.com/samcharles93/wordrnn/internal/corpus"
)

const envDatabase = "WORDRNN_DB"

var (
	configFile string
	logLevel   string
	logFormat  string
	debug      bool

	database     string
	query        string
	corpusDir    string
	tokenizerArg string
	preprocess   string
	dropPunct    bool
	minFrequency int64

	windowLength int64
	batchSize    int64
	seed         int64

	hidden       int64
	learningRate float64
	decay        float64

	epochs       int64
	sampleEvery  int64
	samples      int64
	sampleLength int64
	joiner       string
	temperature  float64
	prime        string
)

func loggingFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Usage:       "path to config.yaml",
			Value:       configPath(),
			Destination: &configFile,
		},
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "log level (debug, info, warn, error)",
			Value:       "info",
			Destination: &logLevel,
		},
		&cli.StringFlag{
			Name:        "log-format",
			Usage:       "log format (pretty, json, text)",
			Value:       "pretty",
			Destination: &logFormat,
		},
		&cli.BoolFlag{
			Name:        "debug",
			Usage:       "enable debug logging (shorthand for --log-level=debug)",
			Destination: &debug,
		},
	}
}

func corpusFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "db",
			Usage:       "path to the SQLite document database",
			Sources:     cli.EnvVars(envDatabase),
			Destination: &database,
		},
		&cli.StringFlag{
			Name:        "query",
			Usage:       "SQL query returning (id, text) rows",
			Value:       corpus.DefaultQuery,
			Destination: &query,
		},
		&cli.StringFlag{
			Name:        "corpus-dir",
			Usage:       "directory of .txt documents, or - for stdin (overrides --db)",
			Destination: &corpusDir,
		},
		&cli.StringFlag{
			Name:        "tokenizer",
			Usage:       "tokenizer (ja, word, char)",
			Value:       "ja",
			Destination: &tokenizerArg,
		},
		&cli.StringFlag{
			Name:        "preprocess",
			Usage:       "comma separated token pre-processors (nfkc, lower, collapse-space)",
			Value:       "collapse-space",
			Destination: &preprocess,
		},
		&cli.BoolFlag{
			Name:        "drop-punct",
			Usage:       "drop punctuation tokens",
			Destination: &dropPunct,
		},
		&cli.Int64Flag{
			Name:        "min-frequency",
			Usage:       "keep tokens seen more than this many times",
			Value:       10,
			Destination: &minFrequency,
		},
		&cli.Int64Flag{
			Name:        "window-length",
			Aliases:     []string{"L"},
			Usage:       "tokens per training window",
			Value:       200,
			Destination: &windowLength,
		},
	}
}

func trainingFlags() []cli.Flag {
	return []cli.Flag{
		&cli.Int64Flag{
			Name:        "batch-size",
			Aliases:     []string{"b"},
			Usage:       "windows per minibatch",
			Value:       8,
			Destination: &batchSize,
		},
		&cli.Int64Flag{
			Name:        "seed",
			Usage:       "random seed for shuffling, initialisation and sampling",
			Value:       12345,
			Destination: &seed,
		},
		&cli.Int64Flag{
			Name:        "hidden",
			Usage:       "hidden state size",
			Value:       200,
			Destination: &hidden,
		},
		&cli.Float64Flag{
			Name:        "learning-rate",
			Aliases:     []string{"lr"},
			Usage:       "SGD learning rate",
			Value:       0.1,
			Destination: &learningRate,
		},
		&cli.Float64Flag{
			Name:        "decay",
			Usage:       "hidden state decay in [0,1)",
			Value:       0.5,
			Destination: &decay,
		},
		&cli.Int64Flag{
			Name:        "epochs",
			Aliases:     []string{"e"},
			Usage:       "training epochs",
			Value:       3,
			Destination: &epochs,
		},
	}
}

func samplingFlags() []cli.Flag {
	return []cli.Flag{
		&cli.Int64Flag{
			Name:        "samples",
			Aliases:     []string{"n"},
			Usage:       "samples to generate",
			Value:       4,
			Destination: &samples,
		},
		&cli.Int64Flag{
			Name:        "sample-length",
			Usage:       "tokens per sample",
			Value:       200,
			Destination: &sampleLength,
		},
		&cli.StringFlag{
			Name:        "joiner",
			Usage:       "string written between sampled tokens",
			Destination: &joiner,
		},
		&cli.Float64Flag{
			Name:        "temperature",
			Aliases:     []string{"temp", "t"},
			Usage:       "sampling temperature",
			Value:       1,
			Destination: &temperature,
		},
	}
}
