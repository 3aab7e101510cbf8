// Command server runs the HTTP circuit solver (pkg/api) behind
// github.com/spf13/cobra flags, in the same cobra-root-command shape the
// retrieval pack's Aleutian CLI uses for its entrypoint.
package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/DarsenOP/tapece/internal/logging"
	"github.com/DarsenOP/tapece/pkg/api"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		addr     string
		cors     bool
		logLevel string
	)

	cmd := &cobra.Command{
		Use:   "server",
		Short: "Serve the DC circuit solver over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logging.New("server", logLevel)
			r := api.NewRouter(log, cors)
			log.Info("listening", "addr", addr, "cors", cors)
			return r.Run(addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "address to listen on")
	cmd.Flags().BoolVar(&cors, "cors", false, "allow cross-origin requests from any host")
	cmd.Flags().StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")
	return cmd
}
