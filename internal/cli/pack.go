package cli

import (
	"github.com/glorpus-work/digipathos/internal/logger"
	"github.com/glorpus-work/digipathos/pkg/archive"
	"github.com/spf13/cobra"
)

// Number of arguments expected by the pack command.
const packCommandArgs = 2

// NewPackCmd creates the pack command.
func NewPackCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pack SRC OUT.zip",
		Short: "Build a ZIP archive from a directory",
		Long:  "Create a ZIP archive from the contents of SRC, e.g. to publish a local test repository",
		Args:  cobra.ExactArgs(packCommandArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := loadConfig(); err != nil {
				return err
			}
			if err := archive.NewManager().Create(cmd.Context(), args[0], args[1]); err != nil {
				return err
			}
			logger.Success("Archive created", logger.Fields{"source": args[0], "archive": args[1]})
			return nil
		},
	}

	return cmd
}
