package cli

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/johnquangdev/capture-stitcher/internal/version"
	"github.com/johnquangdev/capture-stitcher/pkg/config"
)

// Dependencies are shared by every command
type Dependencies struct {
	Config *config.Config
	Logger *zap.Logger
}

// NewRootCmd builds the stitcher command tree
func NewRootCmd(deps *Dependencies) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "stitcher",
		Short:         "Rebuild meeting recordings from capture event logs",
		Long:          "Reconstructs the timeline of a captured meeting from its event log and media chunks, synthesizes speaker subtitles and stitches the final video.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.Version = version.Version
	rootCmd.SetVersionTemplate(version.Full() + "\n")

	rootCmd.AddCommand(NewServeCmd(deps))
	rootCmd.AddCommand(NewProcessCmd(deps))
	rootCmd.AddCommand(NewMigrateCmd(deps))
	rootCmd.AddCommand(NewTokenCmd(deps))
	rootCmd.AddCommand(NewSubmitCmd(deps))
	rootCmd.AddCommand(NewSeedAttendeesCmd(deps))

	return rootCmd
}
