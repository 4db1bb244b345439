package maktab

import (
	"fmt"
	"html"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/maktabdl/maktabdl/internal/utils"
)

// Media is one downloadable artifact found on a lecture page.
type Media struct {
	URL  string
	Kind string // video | subtitle | attachment
}

// CollectUnitLinks fetches a lecture page and extracts its media URLs.
// Extraction heuristics live in extract.go; this only does the I/O.
func (c *Client) CollectUnitLinks(unitURL string) ([]Media, error) {
	req, err := http.NewRequest("GET", unitURL, nil)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error fetching lecture page: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("lecture page request failed with status code: %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading lecture page: %w", err)
	}
	return ExtractMedia(string(body)), nil
}

// BuildTasks turns a course outline plus per-unit media into ordered
// download tasks under outputDir. Order follows the outline, so the
// download engine processes lectures the way the course lists them.
func (c *Client) BuildTasks(course *Course, outputDir string, sampleLimit int64) ([]utils.DownloadTask, error) {
	log := utils.GetLogger("maktab")
	var tasks []utils.DownloadTask
	// Destination paths must be unique; a unit with several artifacts of the
	// same extension gets numeric suffixes so no two tasks share a path.
	used := make(map[string]bool)
	for chapterIdx, chapter := range course.Chapters {
		chapterDir := filepath.Join(outputDir,
			fmt.Sprintf("%02d-%s", chapterIdx+1, utils.SanitizeFilename(chapter.Title)))
		for _, unit := range chapter.Units {
			unitURL := c.UnitURL(course.Slug, unit)
			media, err := c.CollectUnitLinks(unitURL)
			if err != nil {
				log.Warn().Err(err).Str("unit", unit.Slug).Msg("Skipping unit, page fetch failed")
				continue
			}
			if len(media) == 0 {
				log.Debug().Str("unit", unit.Slug).Msg("No media on lecture page")
				continue
			}
			base := fmt.Sprintf("%03d-%s", unit.Position, utils.SanitizeFilename(unit.Title))
			for _, m := range media {
				ext := mediaExt(m)
				outputPath := filepath.Join(chapterDir, base+ext)
				for n := 2; used[outputPath]; n++ {
					outputPath = filepath.Join(chapterDir, fmt.Sprintf("%s-%d%s", base, n, ext))
				}
				used[outputPath] = true
				tasks = append(tasks, utils.DownloadTask{
					URL:         m.URL,
					OutputPath:  outputPath,
					Referer:     unitURL,
					Label:       base,
					MaxAttempts: utils.DefaultMaxAttempts,
					SampleLimit: sampleLimit,
				})
			}
		}
	}
	return tasks, nil
}

func mediaExt(m Media) string {
	clean := html.UnescapeString(m.URL)
	if idx := strings.IndexAny(clean, "?#"); idx >= 0 {
		clean = clean[:idx]
	}
	if ext := path.Ext(clean); ext != "" {
		return ext
	}
	switch m.Kind {
	case "video":
		return ".mp4"
	case "subtitle":
		return ".vtt"
	}
	return ""
}

// WriteManifest dumps every collected URL, one per line, for external
// download managers. Written once per run.
func WriteManifest(manifestPath string, tasks []utils.DownloadTask) error {
	var sb strings.Builder
	for _, task := range tasks {
		sb.WriteString(task.URL)
		sb.WriteByte('\n')
	}
	if err := os.MkdirAll(filepath.Dir(manifestPath), 0755); err != nil {
		return err
	}
	return os.WriteFile(manifestPath, []byte(sb.String()), 0644)
}
