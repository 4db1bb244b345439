package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/maktabdl/maktabdl/internal/maktab"
	"github.com/maktabdl/maktabdl/internal/output"
	"github.com/maktabdl/maktabdl/internal/scheduler"
	"github.com/maktabdl/maktabdl/internal/utils"
	"github.com/spf13/cobra"
)

var errNoChapters = errors.New("no chapters found")
var errNoLinks = errors.New("no links found")

func newCourseCmd() *cobra.Command {
	var outputDir string
	var manifestOnly bool

	cmd := &cobra.Command{
		Use:   "course [COURSE_URL]",
		Short: "Download all lectures, subtitles and attachments of a course",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			client, session := acquireSession()
			output.PrintInfo(fmt.Sprintf("%s Session ready (%s)", output.StyleSymbols["info"], session.Source))
			switch err := downloadCourse(client, args[0], outputDir, manifestOnly); {
			case errors.Is(err, errNoChapters):
				os.Exit(utils.ExitNoChapters)
			case errors.Is(err, errNoLinks):
				os.Exit(utils.ExitNoLinks)
			case err != nil:
				os.Exit(utils.ExitFailure)
			}
		},
	}

	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "Output directory (defaults to the course slug)")
	cmd.Flags().BoolVar(&manifestOnly, "manifest-only", false, "Only collect links and write links.txt, download nothing")
	return cmd
}

func downloadCourse(client *utils.MaktabHTTPClient, link, outputDir string, manifestOnly bool) error {
	log := utils.GetLogger("course")
	slug, err := maktab.ParseCourseSlug(link)
	if err != nil {
		output.PrintError(err.Error())
		return err
	}
	mc := maktab.NewClient(client, baseURL)

	output.PrintPending(fmt.Sprintf("Fetching chapters for %s", slug))
	course, err := mc.GetChapters(slug)
	if err != nil {
		output.PrintError("Failed to fetch course chapters")
		log.Error().Err(err).Str("course", slug).Msg("Chapters API failed")
		return err
	}
	if len(course.Chapters) == 0 {
		output.PrintError("No chapters found for this course")
		return errNoChapters
	}
	output.PrintHeader(fmt.Sprintf("%s (%d chapters)", course.Title, len(course.Chapters)))

	if outputDir == "" {
		outputDir = slug
	}
	tasks, err := mc.BuildTasks(course, outputDir, sampleLimit)
	if err != nil {
		output.PrintError("Failed to collect lecture links")
		return err
	}
	if len(tasks) == 0 {
		output.PrintError("No downloadable links found in any lecture page")
		return errNoLinks
	}

	manifestPath := filepath.Join(outputDir, "links.txt")
	if err := maktab.WriteManifest(manifestPath, tasks); err != nil {
		log.Warn().Err(err).Msg("Could not write manifest")
	} else {
		output.PrintDetail(fmt.Sprintf("Wrote %d links to %s", len(tasks), manifestPath))
	}
	if manifestOnly {
		return nil
	}

	summary := scheduler.Run(tasks, client, workers)
	output.PrintInfo(fmt.Sprintf("Done: %d downloaded, %d already present, %d failed",
		summary.Downloaded, summary.Existing, summary.Failed))
	if summary.Failed > 0 {
		return fmt.Errorf("%d downloads failed", summary.Failed)
	}
	return nil
}
