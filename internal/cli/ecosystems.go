package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"purl2src/internal/handlers"
)

func newEcosystemsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "ecosystems",
		Short: "List supported PURL ecosystems",
		RunE: func(cmd *cobra.Command, _ []string) error {
			registry := handlers.NewRegistry(nil, handlers.Options{})
			for _, eco := range registry.Ecosystems() {
				handler, _ := registry.Handler(eco)
				managers := strings.Join(handler.PackageManagers(), ", ")
				fmt.Fprintf(cmd.OutOrStdout(), "%-8s (fallback: %s)\n", eco, managers)
			}
			return nil
		},
	}
}
