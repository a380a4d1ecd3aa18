package cli

import (
	"errors"
	"net/http"

	"github.com/spf13/cobra"
)

func newHealthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check server health",
		Long:  "Reports whether the server and its storage are reachable. Exits non-zero when they are not.",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := NewOutput(cfg.Output)

			var result HealthResult
			err := client.Get("/api/v1/health", &result)

			var apiErr *APIError
			if errors.As(err, &apiErr) && apiErr.Status == http.StatusServiceUnavailable {
				out.Print(HealthResult{Status: "unavailable"})
				return err
			}
			if err != nil {
				return err
			}

			out.Print(result)
			return nil
		},
	}
}
