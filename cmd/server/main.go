package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/calvinwijaya/hearts-be/internal/config"
	"github.com/calvinwijaya/hearts-be/internal/log"
	"github.com/spf13/cobra"
)

var (
	configFile string
	port       string
)

var rootCmd = &cobra.Command{
	Use:   "hearts-server",
	Short: "Real-time Hearts card game server",
	Long: `hearts-server seats players at four-player Hearts tables over websockets,
fills idle seats with bots and records finished rounds in the user store.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configFile)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("port") {
			cfg.Server.Port = port
		}
		log.InitLog("hearts", cfg.Log.Level)
		log.Debug("config: %+v", cfg.Redacted())
		return run(cmd.Context(), cfg)
	},
}

func init() {
	rootCmd.Flags().StringVar(&configFile, "config", "", "config file (yaml, json or toml)")
	rootCmd.Flags().StringVar(&port, "port", "", "listen port, overrides server.port")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		log.Fatal("hearts-server: %v", err)
	}
}
