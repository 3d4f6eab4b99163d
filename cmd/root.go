package cmd

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/obarros/lojinha/internal/config"
	"github.com/obarros/lojinha/internal/constants"
	"github.com/obarros/lojinha/internal/log"
)

func Start() {
	c, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.Get(c, constants.APP_STOREFRONT)
	logger := log.Get(filepath.Join("/var/log/", constants.APP_STOREFRONT+".log"), cfg.Application).
		With().
		Str(constants.KEY_APP_NAME, constants.APP_STOREFRONT).
		Str(constants.KEY_TAG, "main Start").
		Logger()

	logger.Info().Msg("added listener for SIGINT and SIGTERM")
	c = logger.WithContext(c)

	rootCmd := &cobra.Command{Use: constants.APP_STOREFRONT}
	rootCmd.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Run the storefront service",
		Run: func(cmd *cobra.Command, args []string) {
			RunStorefront(cmd.Context(), cfg)
		},
	})
	if err := rootCmd.ExecuteContext(c); err != nil {
		logger.Fatal().Err(err).Msgf("error when executing command=%s", err.Error())
	}
}
