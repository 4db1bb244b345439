package cmd

import (
	"fmt"
	"os"

	"github.com/maktabdl/maktabdl/internal/output"
	"github.com/maktabdl/maktabdl/internal/utils"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

type BatchFile struct {
	Courses []utils.CourseEntry `yaml:"courses"`
}

func newBatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch [YAML_FILE]",
		Short: "Download multiple courses listed in a YAML file",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			data, err := os.ReadFile(args[0])
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error reading YAML file: %v\n", err)
				os.Exit(utils.ExitFailure)
			}
			var batchFile BatchFile
			if err := yaml.Unmarshal(data, &batchFile); err != nil {
				fmt.Fprintf(os.Stderr, "Error parsing YAML file: %v\n", err)
				os.Exit(utils.ExitFailure)
			}
			var entries []utils.CourseEntry
			for _, entry := range batchFile.Courses {
				if entry.Link == "" {
					fmt.Fprintf(os.Stderr, "Warning: Empty link in courses section, skipping...\n")
					continue
				}
				entries = append(entries, entry)
			}
			if len(entries) == 0 {
				fmt.Fprintf(os.Stderr, "No valid courses found in the batch file\n")
				os.Exit(utils.ExitFailure)
			}
			client, session := acquireSession()
			output.PrintInfo(fmt.Sprintf("%s Session ready (%s)", output.StyleSymbols["info"], session.Source))
			failures := 0
			for _, entry := range entries {
				if err := downloadCourse(client, entry.Link, entry.OutputDir, false); err != nil {
					failures++
				}
			}
			if failures > 0 {
				output.PrintError(fmt.Sprintf("%d course(s) finished with failures", failures))
				os.Exit(utils.ExitFailure)
			}
		},
	}
	return cmd
}
