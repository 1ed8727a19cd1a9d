// Command strata merges and validates service configuration files ahead
// of deployment, so broken config fails in CI instead of at service
// start.
package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"

	"github.com/strataconf/strata"
	"github.com/strataconf/strata/layer"
	"github.com/strataconf/strata/loader"
	"github.com/strataconf/strata/schema"
	"github.com/strataconf/strata/value"
)

func main() {
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	app := &cli.App{
		Name:  "strata",
		Usage: "merge and validate hierarchical service configuration",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "log each source as it is loaded",
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "merge",
				Usage:     "merge config files in argument order and print the result as JSON",
				ArgsUsage: "FILE...",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "env-prefix",
						Usage: "also apply environment variables with this prefix as the highest-ranked source",
					},
				},
				Action: func(ctx *cli.Context) error {
					return runMerge(ctx, log)
				},
			},
			{
				Name:      "validate",
				Usage:     "merge config files, then validate against a schema document",
				ArgsUsage: "FILE...",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "schema",
						Usage:    "path to the JSON schema document",
						Required: true,
					},
					&cli.BoolFlag{
						Name:  "effective",
						Usage: "print the effective tree with optional defaults applied",
					},
					&cli.StringFlag{
						Name:  "env-prefix",
						Usage: "also apply environment variables with this prefix as the highest-ranked source",
					},
				},
				Action: func(ctx *cli.Context) error {
					return runValidate(ctx, log)
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Error().Err(err).Msg("strata failed")
		os.Exit(1)
	}
}

func runMerge(ctx *cli.Context, log zerolog.Logger) error {
	cfg, err := buildConfig(ctx, log)
	if err != nil {
		return err
	}
	return printTree(cfg.Tree())
}

func runValidate(ctx *cli.Context, log zerolog.Logger) error {
	cfg, err := buildConfig(ctx, log)
	if err != nil {
		return err
	}

	schemaPath := ctx.String("schema")
	data, err := os.ReadFile(schemaPath)
	if err != nil {
		return fmt.Errorf("reading schema %s: %w", schemaPath, err)
	}
	root, err := schema.ParseDocument(data)
	if err != nil {
		return err
	}

	validator := schema.NewValidator(root)
	effective, err := validator.Effective(cfg.Tree())
	if err != nil {
		var verrs *schema.ValidationErrors
		if errors.As(err, &verrs) {
			for _, verr := range verrs.Errors {
				log.Error().
					Str("path", verr.Path).
					Str("kind", verr.Kind.String()).
					Msg(verr.Message)
			}
			return fmt.Errorf("%d validation errors", verrs.Len())
		}
		return err
	}

	log.Info().Int("sources", ctx.Args().Len()).Msg("configuration is valid")
	if ctx.Bool("effective") {
		return printTree(effective)
	}
	return nil
}

// buildConfig loads every file argument as a ranked source, earlier
// arguments ranking lower, and optionally the environment on top.
func buildConfig(ctx *cli.Context, log zerolog.Logger) (*strata.Config, error) {
	if ctx.Args().Len() == 0 {
		return nil, fmt.Errorf("no configuration files given")
	}

	verbose := ctx.Bool("verbose")
	sources := make([]layer.Source, 0, ctx.Args().Len()+1)
	for i, path := range ctx.Args().Slice() {
		l, err := loaderFor(path)
		if err != nil {
			return nil, err
		}
		src, err := loader.Source(l, path, layer.RankFile+i)
		if err != nil {
			return nil, err
		}
		if src.Tree == nil {
			return nil, fmt.Errorf("config file %s does not exist", path)
		}
		if verbose {
			log.Info().Str("source", path).Int("rank", src.Rank).Msg("loaded")
		}
		sources = append(sources, src)
	}

	if prefix := ctx.String("env-prefix"); prefix != "" {
		src, err := loader.Source(loader.NewEnvLoader(prefix), "environment", layer.RankEnv)
		if err != nil {
			return nil, err
		}
		if src.Tree != nil {
			if verbose {
				log.Info().Str("source", "environment").Int("rank", src.Rank).Msg("loaded")
			}
			sources = append(sources, src)
		}
	}

	return strata.Build(sources...), nil
}

func loaderFor(path string) (loader.Loader, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return loader.NewTOMLLoader(path), nil
	case ".json":
		return loader.NewJSONLoader(path), nil
	case ".yaml", ".yml":
		return loader.NewYAMLLoader(path), nil
	default:
		return nil, fmt.Errorf("unsupported config format %q", filepath.Ext(path))
	}
}

func printTree(tree *value.Value) error {
	compact, err := tree.MarshalJSON()
	if err != nil {
		return err
	}
	var out bytes.Buffer
	if err := json.Indent(&out, compact, "", "  "); err != nil {
		return err
	}
	fmt.Println(out.String())
	return nil
}
