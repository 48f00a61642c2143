package main

import (
	"net/http"

	"github.com/spf13/cobra"

	"english_analyzer/analyzer"
	"english_analyzer/config"
	"english_analyzer/server"
)

var (
	serveAddr string
	serveMock bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web server",
	Long: `Start the HTTP server.

Endpoints:
  POST /api/analyze   - analyze a word or sentence
  GET  /api/config    - current generation settings (API key hidden)
  POST /api/config    - update generation settings
  GET  /healthz       - liveness check
  GET  /metrics       - Prometheus metrics

The config file is watched; edits apply to the next request.

Examples:
  english-analyzer serve
  english-analyzer serve --addr :3000
  english-analyzer serve --mock      # no upstream calls`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		m, logger, err := loadConfig()
		if err != nil {
			return err
		}
		m.OnChange(func(c *config.Config) {
			logger.Info("config reloaded", "config", c.Generation())
		})
		if err := m.WatchConfig(); err != nil {
			logger.Warn("config hot reload disabled", "error", err)
		}
		defer m.Close()

		agent, err := analyzer.NewAgent(buildGenerator(serveMock), m.Generation, logger)
		if err != nil {
			return err
		}
		srv, err := server.New(agent, m, logger)
		if err != nil {
			return err
		}

		addr := m.Get().Server.Addr
		if serveAddr != "" {
			addr = serveAddr
		}
		if addr == "" {
			addr = ":8080"
		}
		return srv.Run(ctx, addr)
	},
}

func buildGenerator(mock bool) analyzer.Generator {
	if mock {
		return analyzer.MockGenerator{}
	}
	return analyzer.NewOpenAIGenerator(&http.Client{})
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides server.addr)")
	serveCmd.Flags().BoolVar(&serveMock, "mock", false, "use the offline mock generator")

	rootCmd.AddCommand(serveCmd)
}
