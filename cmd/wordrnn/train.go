package main

import (
	"context"
	"os"
	"slices"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/wordrnn/internal/generate"
	"github.com/samcharles93/wordrnn/internal/logger"
	"github.com/samcharles93/wordrnn/internal/model"
	"github.com/samcharles93/wordrnn/internal/trainer"
)

func trainCmd() *cli.Command {
	return &cli.Command{
		Name:  "train",
		Usage: "Train on a corpus, printing samples as training progresses",
		Flags: slices.Concat(corpusFlags(), trainingFlags(), samplingFlags(), []cli.Flag{
			&cli.Int64Flag{
				Name:        "sample-every",
				Usage:       "write samples every N minibatches (0 disables)",
				Value:       4,
				Destination: &sampleEvery,
			},
		}),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			applyConfig(cmd, fileConfig)
			log := logger.FromContext(ctx)
			_, _, err := train(ctx, log, cmd, int(sampleEvery))
			return err
		},
	}
}

func sampleCmd() *cli.Command {
	return &cli.Command{
		Name:  "sample",
		Usage: "Train on a corpus, then print samples from the trained model",
		Flags: slices.Concat(corpusFlags(), trainingFlags(), samplingFlags(), []cli.Flag{
			&cli.StringFlag{
				Name:        "prime",
				Usage:       "seed token (random when empty)",
				Destination: &prime,
			},
		}),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			applyConfig(cmd, fileConfig)
			log := logger.FromContext(ctx)
			m, tr, err := train(ctx, log, cmd, 0)
			if err != nil {
				return err
			}
			gen := generate.New(m, tr.Iterator.Vocabulary(), tr.Config.Rand)
			gen.Joiner = joiner
			out, err := gen.Generate(ctx, generate.Options{
				Samples:     int(samples),
				Steps:       int(sampleLength),
				Prime:       prime,
				Temperature: temperature,
			})
			if err != nil {
				return err
			}
			return trainer.WriteSamples(cmd.Root().Writer, out)
		},
	}
}

func train(ctx context.Context, log logger.Logger, cmd *cli.Command, every int) (model.Recurrent, *trainer.Trainer, error) {
	c, err := loadCorpus(ctx, log, cmd.Root().Reader)
	if err != nil {
		return nil, nil, err
	}
	it, m, err := newPipeline(c)
	if err != nil {
		return nil, nil, err
	}
	w := cmd.Root().Writer
	if w == nil {
		w = os.Stdout
	}
	tr, err := trainer.New(m, it, trainer.Config{
		Epochs:       int(epochs),
		SampleEvery:  every,
		Samples:      int(samples),
		SampleLength: int(sampleLength),
		Joiner:       joiner,
		Temperature:  temperature,
		Out:          w,
		Log:          log,
		Rand:         sampleRand(),
	})
	if err != nil {
		return nil, nil, err
	}
	if _, err := tr.Run(ctx); err != nil {
		return nil, nil, err
	}
	return m, tr, nil
}
