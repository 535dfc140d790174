package main

import (
	"context"
	"fmt"
	"os"
	"slices"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/wordrnn/internal/logger"
)

func vocabCmd() *cli.Command {
	var out string
	return &cli.Command{
		Name:  "vocab",
		Usage: "Build the vocabulary and write it as JSON",
		Flags: slices.Concat(corpusFlags(), []cli.Flag{
			&cli.StringFlag{
				Name:        "out",
				Aliases:     []string{"o"},
				Usage:       "output path (stdout when empty)",
				Destination: &out,
			},
		}),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			applyConfig(cmd, fileConfig)
			log := logger.FromContext(ctx)
			c, err := loadCorpus(ctx, log, cmd.Root().Reader)
			if err != nil {
				return err
			}
			if out == "" {
				return c.Vocabulary.WriteSnapshot(cmd.Root().Writer)
			}
			f, err := os.Create(out)
			if err != nil {
				return fmt.Errorf("create %s: %w", out, err)
			}
			if err := c.Vocabulary.WriteSnapshot(f); err != nil {
				_ = f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			log.Info("wrote vocabulary", "path", out, "size", c.Vocabulary.Size())
			return nil
		},
	}
}
