package cmd

import (
	"net/url"
	"os"
	"strings"

	"github.com/maktabdl/maktabdl/internal/output"
	"github.com/maktabdl/maktabdl/internal/scheduler"
	"github.com/maktabdl/maktabdl/internal/utils"
	"github.com/spf13/cobra"
)

func newFetchCmd() *cobra.Command {
	var outputPath string
	var referer string

	cmd := &cobra.Command{
		Use:   "fetch [URL]",
		Short: "Download a single file with the authenticated session",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			link := args[0]
			parsed, err := url.Parse(link)
			if err != nil || parsed.Scheme == "" {
				output.PrintError("Invalid URL format")
				os.Exit(utils.ExitFailure)
			}
			if outputPath == "" {
				parts := strings.Split(parsed.Path, "/")
				outputPath = parts[len(parts)-1]
				if outputPath == "" {
					outputPath = "download"
				}
			}
			client, _ := acquireSession()
			task := utils.DownloadTask{
				URL:         link,
				OutputPath:  outputPath,
				Referer:     referer,
				Label:       outputPath,
				MaxAttempts: utils.DefaultMaxAttempts,
				SampleLimit: sampleLimit,
			}
			summary := scheduler.Run([]utils.DownloadTask{task}, client, 1)
			if summary.Failed > 0 {
				os.Exit(utils.ExitFailure)
			}
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output file path (inferred from the URL if not provided)")
	cmd.Flags().StringVar(&referer, "referer", "", "Referer header to send with the download")
	return cmd
}
