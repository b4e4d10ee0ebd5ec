package main

import (
	"flag"

	"github.com/danmuck/cpitransfer/internal/config"
	"github.com/danmuck/cpitransfer/internal/observability"
)

func defaultPath(kind string) (string, bool) {
	switch kind {
	case "cli":
		return "cmd/cpictl/config.toml", true
	case "ledger":
		return "cmd/cpictl/ledger.toml", true
	default:
		return "", false
	}
}

func main() {
	logger := observability.InitLogger("configgen")

	kind := flag.String("kind", "cli", "config kind: cli|ledger")
	output := flag.String("output", "", "output path for config template")
	validate := flag.Bool("validate", false, "validate an existing config file")
	input := flag.String("input", "", "config path for validation (defaults to per-kind cmd path)")
	force := flag.Bool("force", false, "overwrite existing config file")
	flag.Parse()

	if *validate {
		path := *input
		if path == "" {
			var ok bool
			if path, ok = defaultPath(*kind); !ok {
				logger.Fatal().Msgf("unknown kind: %s", *kind)
			}
		}

		switch *kind {
		case "cli":
			if _, err := config.LoadCLIConfig(path); err != nil {
				logger.Fatal().Err(err).Msg("validation failed")
			}
		case "ledger":
			if _, err := config.LoadLedger(path); err != nil {
				logger.Fatal().Err(err).Msg("validation failed")
			}
		default:
			logger.Fatal().Msgf("unknown kind: %s", *kind)
		}
		logger.Info().Msgf("Validated %s config at %s", *kind, path)
		return
	}

	target := *output
	if target == "" {
		var ok bool
		if target, ok = defaultPath(*kind); !ok {
			logger.Fatal().Msgf("unknown kind: %s", *kind)
		}
	}

	if err := config.WriteTemplate(target, *kind, *force); err != nil {
		logger.Fatal().Err(err).Msg("write template failed")
	}
	logger.Info().Msgf("Wrote %s config template to %s", *kind, target)
}
