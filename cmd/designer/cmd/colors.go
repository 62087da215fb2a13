package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/RealZimboGuy/gopherflow-designer/pkg/designer/diagram"
)

var colorsCmd = &cobra.Command{
	Use:   "colors FILE",
	Short: "List the diagram color of every role in a workflow file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		w, err := loadWorkflow(args[0])
		if err != nil {
			return err
		}
		if len(w.Roles) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No roles defined")
			return nil
		}
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "ROLE\tLABEL\tCOLOR")
		for _, r := range w.Roles {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", r.ID, r.Label, diagram.RoleColor(r.ID))
		}
		return tw.Flush()
	},
}

func init() {
	rootCmd.AddCommand(colorsCmd)
}
