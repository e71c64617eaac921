package cmd

import (
	"github.com/spf13/cobra"

	"todo-manager.com/todo-manager/internal/tui"
)

func newTUICmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Manage tasks in an interactive terminal UI",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd, opts)
			if err != nil {
				return err
			}
			defer a.close()

			return tui.Run(cmd.Context(), a.store)
		},
	}
}
