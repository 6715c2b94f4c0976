package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Faultbox/panoview/internal/overlay"
	"github.com/Faultbox/panoview/internal/overlay/pinstore"
)

func newImportCmd() *cobra.Command {
	var model string

	cmd := &cobra.Command{
		Use:   "import [file.yaml]",
		Short: "Import a YAML pin document into the store",
		Long:  "Replace the stored pins of a model with the pins of a YAML document. The model defaults to the document's model field.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := pinstore.ReadFile(args[0])
			if err != nil {
				return err
			}
			if model == "" {
				model = doc.Model
			}
			if model == "" {
				return fmt.Errorf("%s has no model field; pass --model", args[0])
			}

			store, err := openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.Save(cmd.Context(), model, doc.Pins); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d pins into %s\n", len(doc.Pins), model)
			return nil
		},
	}
	cmd.Flags().StringVar(&model, "model", "", "Model id (overrides the document)")
	return cmd
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list [model]",
		Short: "List models, or the pins of one model",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			out := cmd.OutOrStdout()
			if len(args) == 0 {
				models, err := store.Models(cmd.Context())
				if err != nil {
					return err
				}
				for _, m := range models {
					fmt.Fprintln(out, m)
				}
				return nil
			}

			pins, err := store.Pins(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printPins(cmd, pins)
			return nil
		},
	}
}

func printPins(cmd *cobra.Command, pins []overlay.Pin) {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tANCHOR\tCOLOR\tICON\tOPACITY")
	for _, p := range pins {
		color := p.Color
		if color == "" {
			color = overlay.DefaultColor
		}
		icon := p.IconID
		if icon == "" {
			icon = "-"
		}
		fmt.Fprintf(w, "%s\t(%.1f, %.1f, %.1f)\t%s\t%s\t%.2f\n",
			p.ID, p.Anchor.X, p.Anchor.Y, p.Anchor.Z, color, icon, p.Opacity)
	}
	w.Flush()
}

func newExportCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export [model]",
		Short: "Export the pins of a model as a YAML document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			pins, err := store.Pins(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if output == "" {
				output = args[0] + ".yaml"
			}
			if err := pinstore.WriteFile(output, pinstore.FileDocument{Model: args[0], Pins: pins}); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d pins to %s\n", len(pins), output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default <model>.yaml)")
	return cmd
}
