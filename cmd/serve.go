package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/jsphweid/chordtext/config"
	"github.com/jsphweid/chordtext/logger"
	"github.com/jsphweid/chordtext/server"
	"github.com/spf13/cobra"
)

var addr string

func init() {
	serveCmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from server.addr)")
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serves the HTTP API",
	Long:  `Serves parsing and playback sessions over HTTP, with Prometheus metrics on /metrics.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := config.SessionOptions()
		if err != nil {
			return err
		}
		if addr == "" {
			addr = config.GetString("server.addr")
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		srv := server.New(opts, config.GetStringSlice("server.cors_origins"), config.GetDuration("session.frame"), logger.Log)
		return srv.ListenAndServe(ctx, addr)
	},
}
