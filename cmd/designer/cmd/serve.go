package cmd

import (
	"github.com/spf13/cobra"

	"github.com/RealZimboGuy/gopherflow-designer/pkg/designer"
	"github.com/RealZimboGuy/gopherflow-designer/pkg/designer/domain"
)

var serveFile string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the designer API and diagram page",
	Long: `Serve the JSON API and the diagram page.

Storage, port and API key come from the GFLOW_* environment settings. The
optional --file seeds the session when nothing is stored yet, or always when
GFLOW_RESET_ON_START=true.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var initial domain.Workflow
		if serveFile != "" {
			w, err := loadWorkflow(serveFile)
			if err != nil {
				return err
			}
			initial = w
		}
		return designer.Start(nil, initial)
	},
}

func init() {
	serveCmd.Flags().StringVarP(&serveFile, "file", "f", "", "workflow file to start from")
	rootCmd.AddCommand(serveCmd)
}
