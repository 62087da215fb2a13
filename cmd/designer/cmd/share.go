package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/RealZimboGuy/gopherflow-designer/internal/config"
	"github.com/RealZimboGuy/gopherflow-designer/pkg/designer/share"
)

// writerClipboard hands share links to a writer in place of a system
// clipboard.
type writerClipboard struct {
	w io.Writer
}

func (c writerClipboard) WriteText(_ context.Context, text string) error {
	_, err := fmt.Fprintln(c.w, text)
	return err
}

var shareBase string

var shareCmd = &cobra.Command{
	Use:   "share FILE",
	Short: "Print a share URL for a workflow file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		w, err := loadWorkflow(args[0])
		if err != nil {
			return err
		}
		status, _ := share.Copy(cmd.Context(), writerClipboard{w: cmd.OutOrStdout()}, w, shareBase)
		switch status {
		case share.StatusEmpty:
			return fmt.Errorf("%s: nothing to share", args[0])
		case share.StatusFailed:
			return fmt.Errorf("could not build a share URL on %q", shareBase)
		}
		return nil
	},
}

func init() {
	base := config.GetSystemSettingString(config.SHARE_BASE_URL)
	if base == "" {
		base = "http://localhost:" + config.GetSystemSettingString(config.SERVER_WEB_PORT) + "/"
	}
	shareCmd.Flags().StringVar(&shareBase, "base", base, "base URL the share link points at")
	rootCmd.AddCommand(shareCmd)
}
