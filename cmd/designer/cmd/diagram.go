package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/RealZimboGuy/gopherflow-designer/pkg/designer/diagram"
)

var (
	diagramRoles  []string
	diagramHidden []string
)

var diagramCmd = &cobra.Command{
	Use:   "diagram FILE",
	Short: "Print the Mermaid flowchart for a workflow file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		w, err := loadWorkflow(args[0])
		if err != nil {
			return err
		}
		out, err := diagram.GenerateWorkflow(w, diagramRoles, diagramHidden)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), out)
		return nil
	},
}

func init() {
	diagramCmd.Flags().StringSliceVar(&diagramRoles, "roles", nil, "only color edges for these roles (default: all)")
	diagramCmd.Flags().StringSliceVar(&diagramHidden, "hide", nil, "states to leave out")
	rootCmd.AddCommand(diagramCmd)
}
