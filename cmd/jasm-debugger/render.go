package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/frantoso/jasm-debugger/diagram"
	"github.com/frantoso/jasm-debugger/model"
	"github.com/frantoso/jasm-debugger/svg"
)

var renderCmd = &cobra.Command{
	Use:   "render <machine.json>",
	Short: "Render a machine description to SVG",
	Long: `Reads a machine description file, as sent by a debugged process with
the setMachine command, and writes the laid out diagram as SVG.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		outPath, _ := cmd.Flags().GetString("out")
		highlight, _ := cmd.Flags().GetString("highlight")

		payload, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		fsm, err := model.ParseMachine(payload)
		if err != nil {
			return fmt.Errorf("parsing %s: %w", args[0], err)
		}
		d, err := diagram.New(fsm)
		if err != nil {
			return fmt.Errorf("laying out %s: %w", fsm.Name, err)
		}

		if highlight != "" {
			_, node := d.FindNode(highlight)
			if node == nil {
				return fmt.Errorf("no state with id %q", highlight)
			}
			node.Highlight()
		}

		out := os.Stdout
		if outPath != "" {
			f, err := os.Create(outPath)
			if err != nil {
				return err
			}
			defer f.Close()
			out = f
		}
		return svg.WriteDocument(out, d.TotalWidth(), d.TotalHeight(), d.Render())
	},
}

func init() {
	rootCmd.AddCommand(renderCmd)
	renderCmd.Flags().StringP("out", "o", "", "Output file (default stdout)")
	renderCmd.Flags().String("highlight", "", "State id to render highlighted")
}
