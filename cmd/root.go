package cmd

import (
	"context"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/dealmungchi/fuaas/config"
	"github.com/dealmungchi/fuaas/internal"
	"github.com/dealmungchi/fuaas/internal/quotes"
	"github.com/dealmungchi/fuaas/logger"
	"github.com/dealmungchi/fuaas/pkg/errors"
	"github.com/dealmungchi/fuaas/services/blob"
	"github.com/dealmungchi/fuaas/services/store"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:           "fuaas",
	Short:         "fuaas builds the quote dataset and serves it over HTTP.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Load environment variables
		godotenv.Load()

		logger.Init()
		logger.LogInfo("cli", "Running %s", cmd.Name())

		cfg = config.LoadConfig()
		if err := cfg.Validate(); err != nil {
			return errors.NewConfiguration("invalid configuration", err)
		}
		return nil
	},
}

// ExecuteContext runs the command line and exits non-zero on failure
func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		logger.Fatal("Command failed: %v", err)
	}
}

// sources converts the configured raw files to parser sources
func sources(files []config.RawFile) ([]quotes.Source, error) {
	out := make([]quotes.Source, 0, len(files))
	for _, f := range files {
		format, err := quotes.ParseFormat(f.Format)
		if err != nil {
			return nil, errors.NewConfiguration(f.Name, err)
		}
		out = append(out, quotes.Source{Name: f.Name, Format: format})
	}
	return out, nil
}

// openStore opens and migrates the relational store
func openStore(ctx context.Context) (*store.Store, error) {
	s, err := store.Open(cfg.StoreDriver, cfg.StoreDSN)
	if err != nil {
		return nil, err
	}
	if err := s.Migrate(ctx); err != nil {
		s.Close()
		return nil, err
	}
	logger.ForStore().Info().Str("driver", cfg.StoreDriver).Str("dsn", cfg.StoreDSN).Msg("Opened relational store")
	return s, nil
}

// openBlobs opens the configured blob store
func openBlobs() (blob.Store, error) {
	b, err := blob.Open(cfg.BlobDriver, cfg.RedisAddr, cfg.RedisDB, cfg.RedisKeyPrefix, cfg.MemcacheAddr)
	if err != nil {
		return nil, err
	}
	logger.ForBlob().Info().Str("driver", cfg.BlobDriver).Msg("Opened blob store")
	return b, nil
}

// initializeDependencies opens both stores for the lookup service
func initializeDependencies(ctx context.Context) (*internal.Dependencies, error) {
	deps := &internal.Dependencies{}

	s, err := openStore(ctx)
	if err != nil {
		return nil, err
	}
	deps.Store = s

	b, err := openBlobs()
	if err != nil {
		deps.Cleanup()
		return nil, err
	}
	deps.Blobs = b

	return deps, nil
}
