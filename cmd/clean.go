package cmd

import (
	"fmt"
	"os"

	"github.com/maktabdl/maktabdl/internal/output"
	"github.com/maktabdl/maktabdl/internal/utils"
	"github.com/spf13/cobra"
)

func newCleanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clean [DIR]",
		Short: "Remove leftover .part files from interrupted downloads",
		Args:  cobra.MaximumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			removed, err := utils.CleanPartials(dir)
			if err != nil {
				output.PrintError("Error cleaning up partial files")
				os.Exit(utils.ExitFailure)
			}
			output.PrintSuccess(fmt.Sprintf("Removed %d partial file(s)", removed))
		},
	}
	return cmd
}
