package cmd

import (
	"github.com/spf13/cobra"

	"github.com/RealZimboGuy/gopherflow-designer/internal/config"
	"github.com/RealZimboGuy/gopherflow-designer/pkg/designer"
)

var (
	// Version is set at build time via ldflags
	Version = "dev"

	logLevel string
)

var rootCmd = &cobra.Command{
	Use:   "designer",
	Short: "Design role-aware workflows and render them as Mermaid flowcharts",
	Long: `designer edits a workflow of states, transitions and roles.

Run 'designer serve' for the HTTP API and diagram page, or use the file
commands to render, share and decode workflows from the shell.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		designer.SetupLogger(designer.ParseLevel(logLevel))
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", config.GetSystemSettingString(config.LOG_LEVEL), "log level (debug, info, warn, error)")

	rootCmd.Version = Version
	rootCmd.SetVersionTemplate("designer {{.Version}}\n")
}
