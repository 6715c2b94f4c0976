// Package main is pinctl, a tool to manage stored panorama pins.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Faultbox/panoview/internal/overlay/pinstore"
)

var (
	storeKind string
	storePath string
)

var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "pinctl",
		Short: "Manage pins shown over panoramas",
		Long: `pinctl imports, lists and exports the pins panoview overlays on a
panorama. Pins are stored per model, either as YAML files in a directory or
in a SQLite database.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&storeKind, "store", pinstore.KindYAML, "Store kind: yaml or sqlite")
	root.PersistentFlags().StringVar(&storePath, "path", "pins", "Pin directory (yaml) or database file (sqlite)")

	root.AddCommand(newImportCmd(), newListCmd(), newExportCmd())
	return root
}

func openStore() (pinstore.Store, error) {
	return pinstore.Open(storeKind, storePath)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
