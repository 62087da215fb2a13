package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/RealZimboGuy/gopherflow-designer/pkg/designer/domain"
	"github.com/RealZimboGuy/gopherflow-designer/pkg/designer/share"
)

var decodeFormat string

var decodeCmd = &cobra.Command{
	Use:   "decode TOKEN|URL",
	Short: "Print the workflow carried by a share token or URL",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		w, err := decodeArg(args[0])
		if err != nil {
			return err
		}
		return writeWorkflow(cmd.OutOrStdout(), *w, decodeFormat)
	},
}

func decodeArg(arg string) (*domain.Workflow, error) {
	if !strings.Contains(arg, "://") {
		return share.Decode(arg)
	}
	w, err := share.ExtractFromURL(arg)
	if err != nil {
		return nil, err
	}
	if w == nil {
		return nil, domain.NewNotFoundError("url parameter", share.QueryParam)
	}
	return w, nil
}

func init() {
	decodeCmd.Flags().StringVar(&decodeFormat, "format", "yaml", "output format (yaml or json)")
	rootCmd.AddCommand(decodeCmd)
}
