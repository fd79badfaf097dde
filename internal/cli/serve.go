package cli

import (
	"fmt"

	"keymerger/api"
	"keymerger/internal/integrator"

	"github.com/spf13/cobra"
)

func newServeCmd(root *rootOptions) *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the merge API over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Requests name documents, so they never reach outside the working directory.
			env, err := setup(cmd.Context(), root, cmd.ErrOrStderr(), ".")
			if err != nil {
				return err
			}
			defer env.Close(cmd.Context())

			if port != 0 {
				env.cfg.Server.Port = port
			}

			svc := env.service(integrator.Options{
				Suffix: env.cfg.Output.Suffix,
				Indent: env.cfg.Output.Indent,
			})

			apiInstance := api.NewAPI()
			api.NewMergeHandlers(apiInstance.Huma, svc)

			addr := fmt.Sprintf(":%d", env.cfg.Server.Port)
			env.logger.Info("Server listening", "addr", addr, "storage", env.cfg.Storage.Type)
			return apiInstance.Start(cmd.Context(), addr)
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "Port to listen on (default from config: 8080)")

	return cmd
}
