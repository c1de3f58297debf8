package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sgc-hq/sgc/pkg/configuration"
)

func main() {
	root := &cobra.Command{
		Use:   "sgc",
		Short: "Competency mapping workflow service",
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			configuration.Use().Unload()
		},
	}
	root.AddCommand(serveCmd(), relayCmd(), migrateCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
