package cli

import (
	"fmt"
	"strings"

	"github.com/glorpus-work/digipathos/pkg/hooks"
	"github.com/spf13/cobra"
)

// NewHookCmd creates the hook command with subcommands.
func NewHookCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hook",
		Short: "Work with hook scripts",
		Long:  "Hook scripts are Tengo programs run after each extraction and at the end of a run",
	}

	cmd.AddCommand(newHookTemplateCmd())

	return cmd
}

func newHookTemplateCmd() *cobra.Command {
	names := make([]string, 0, len(hooks.Types))
	for _, t := range hooks.Types {
		names = append(names, string(t))
	}

	cmd := &cobra.Command{
		Use:       "template TYPE",
		Short:     "Print a starter script for a hook type",
		Long:      "Print a starter script for one of: " + strings.Join(names, ", "),
		Args:      cobra.ExactArgs(1),
		ValidArgs: names,
		RunE: func(cmd *cobra.Command, args []string) error {
			hookType := hooks.HookType(args[0])
			if !hookType.Valid() {
				return hooks.ErrUnsupportedHookType(hookType)
			}
			_, err := fmt.Fprint(cmd.OutOrStdout(), hooks.HookTemplate(hookType))
			return err
		},
	}

	return cmd
}
