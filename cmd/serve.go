package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	_ "go.uber.org/automaxprocs"
	"go.uber.org/zap"

	"github.com/MJE43/stake-mines-go/internal/account"
	"github.com/MJE43/stake-mines-go/internal/api"
	"github.com/MJE43/stake-mines-go/internal/engine"
	"github.com/MJE43/stake-mines-go/internal/table"
)

var (
	serveAddr string
	serveSeed uint64
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the table over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if serveAddr != "" {
			cfg.Server.Addr = serveAddr
		}
		logger, err := newLogger(cfg)
		if err != nil {
			return err
		}
		defer logger.Sync()

		tbl := table.New(table.OptionsFromConfig(cfg), account.New(cfg.Credit()), engine.NewSource(serveSeed), nil, logger)
		defer tbl.Close()

		server := api.NewServer(tbl, logger)
		if err := server.Start(cfg.Server.Addr); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		<-ctx.Done()

		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown failed", zap.Error(err))
			return err
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (overrides server.addr)")
	serveCmd.Flags().Uint64Var(&serveSeed, "seed", 0, "Seed for mine placement; 0 picks a random seed")
	rootCmd.AddCommand(serveCmd)
}
