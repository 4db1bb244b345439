// Package maktabhttp is the resumable download engine: partial-content
// negotiation, resume from on-disk .part files, byte-limit sampling, and
// retry with linear backoff.
package maktabhttp

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/maktabdl/maktabdl/internal/utils"
)

type Outcome int

const (
	OutcomeExists Outcome = iota
	OutcomeDownloaded
)

// ErrRangeNotHonored marks a resume request the server silently answered
// with a full body. The partial file is discarded and the attempt fails so
// the next one restarts cleanly; mismatched data is never appended.
var ErrRangeNotHonored = errors.New("server ignored range request")

// progressStep throttles rendering: first byte, then roughly every 64KiB.
const progressStep int64 = 64 * 1024

// Download transfers task.URL to task.OutputPath. A partial file at
// OutputPath+".part" holds bytes already durably written; its length is the
// resume offset. It is only ever removed by success (rename) or by a
// detected range violation.
func Download(task utils.DownloadTask, client utils.HTTPDoer) (Outcome, error) {
	log := utils.GetLogger("download")
	if task.MaxAttempts <= 0 {
		task.MaxAttempts = utils.DefaultMaxAttempts
	}
	partialPath := task.OutputPath + utils.PartSuffix
	if err := os.MkdirAll(filepath.Dir(task.OutputPath), 0755); err != nil {
		return 0, fmt.Errorf("error creating output directory: %w", err)
	}

	var remote *RemoteInfo
	probe := func() RemoteInfo {
		if remote == nil {
			info, err := ProbeRemote(task.URL, task.Referer, client)
			if err != nil {
				log.Debug().Err(err).Str("url", task.URL).Msg("Probe failed")
			}
			remote = &info
		}
		return *remote
	}

	// A completed file is terminal for sampling, and for full downloads
	// once it meets the remote size.
	if info, err := os.Stat(task.OutputPath); err == nil && info.Size() > 0 {
		if task.SampleLimit > 0 {
			return OutcomeExists, nil
		}
		if r := probe(); r.Size > 0 && info.Size() >= r.Size {
			return OutcomeExists, nil
		}
	}

	var lastErr error
	for attempt := 1; attempt <= task.MaxAttempts; attempt++ {
		if attempt > 1 {
			log.Warn().Str("output", task.OutputPath).Msgf("Retrying download (attempt %d/%d)", attempt, task.MaxAttempts)
			time.Sleep(time.Duration(attempt-1) * time.Second)
		}
		if err := downloadAttempt(task, partialPath, client, probe); err != nil {
			lastErr = err
			log.Error().Err(err).Str("output", task.OutputPath).Msgf("Download attempt %d failed", attempt)
			continue
		}
		if err := finalize(partialPath, task.OutputPath); err != nil {
			return 0, fmt.Errorf("error finalizing output file: %w", err)
		}
		log.Debug().Str("output", task.OutputPath).Msg("Download completed")
		return OutcomeDownloaded, nil
	}
	return 0, fmt.Errorf("download failed after %d attempts: %w", task.MaxAttempts, lastErr)
}

func downloadAttempt(task utils.DownloadTask, partialPath string, client utils.HTTPDoer, probe func() RemoteInfo) error {
	var resumeOffset int64
	fileMode := os.O_CREATE | os.O_WRONLY
	switch {
	case task.SampleLimit > 0:
		// Sampling never resumes; overwrite any partial leftovers.
		fileMode |= os.O_TRUNC
	default:
		if info, err := os.Stat(partialPath); err == nil {
			resumeOffset = info.Size()
			fileMode |= os.O_APPEND
		} else if info, err := os.Stat(task.OutputPath); err == nil && info.Size() > 0 {
			// A completed file that failed the size pre-flight means a prior
			// run renamed too early or the remote grew. Pull it back into the
			// partial slot when the server can resume it.
			if probe().SupportsRanges {
				if err := os.Rename(task.OutputPath, partialPath); err != nil {
					return fmt.Errorf("error reclaiming completed file: %w", err)
				}
				resumeOffset = info.Size()
				fileMode |= os.O_APPEND
			} else {
				os.Remove(task.OutputPath)
				fileMode |= os.O_TRUNC
			}
		} else {
			fileMode |= os.O_TRUNC
		}
	}

	outFile, err := os.OpenFile(partialPath, fileMode, 0644)
	if err != nil {
		return fmt.Errorf("error creating output file: %w", err)
	}
	defer outFile.Close()

	req, err := http.NewRequest("GET", task.URL, nil)
	if err != nil {
		return fmt.Errorf("error creating GET request: %w", err)
	}
	if task.Referer != "" {
		req.Header.Set("Referer", task.Referer)
	}
	req.Header.Set("Connection", "keep-alive")
	if task.SampleLimit > 0 {
		req.Header.Set("Range", fmt.Sprintf("bytes=0-%d", task.SampleLimit-1))
	} else if resumeOffset > 0 {
		req.Header.Set("Range", fmt.Sprintf("bytes=%d-", resumeOffset))
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("error executing GET request: %w", err)
	}
	defer resp.Body.Close()

	if resumeOffset > 0 && resp.StatusCode != http.StatusPartialContent {
		outFile.Close()
		os.Remove(partialPath)
		return ErrRangeNotHonored
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	expectedTotal := expectedTotal(task, resp, resumeOffset)
	written := resumeOffset
	var lastRendered int64 = -1
	render := func() {
		if task.ProgressFunc != nil {
			task.ProgressFunc(written, expectedTotal)
		}
		lastRendered = written
	}

	buffer := make([]byte, utils.DefaultBufferSize)
	for {
		bytesRead, readErr := resp.Body.Read(buffer)
		if bytesRead > 0 {
			chunk := buffer[:bytesRead]
			limitReached := false
			if task.SampleLimit > 0 && written+int64(bytesRead) >= task.SampleLimit {
				// Hard truncation across the whole file, independent of how
				// the transport chunks the body.
				chunk = chunk[:task.SampleLimit-written]
				limitReached = true
			}
			if _, writeErr := outFile.Write(chunk); writeErr != nil {
				return fmt.Errorf("error writing to output file: %w", writeErr)
			}
			written += int64(len(chunk))
			if lastRendered < 0 || written-lastRendered >= progressStep {
				render()
			}
			if limitReached {
				// Deliberate early stop, not a failure.
				break
			}
		}
		if readErr != nil {
			if readErr == io.EOF {
				break
			}
			return fmt.Errorf("error reading response body: %w", readErr)
		}
	}
	if err := outFile.Sync(); err != nil {
		return fmt.Errorf("error syncing output file: %w", err)
	}
	if task.ProgressFunc != nil {
		task.ProgressFunc(written, written)
	}
	return nil
}

// expectedTotal picks the best known total for percentage rendering:
// sample limit, then Content-Range total, then offset-adjusted
// Content-Length, else unknown (-1).
func expectedTotal(task utils.DownloadTask, resp *http.Response, resumeOffset int64) int64 {
	if task.SampleLimit > 0 {
		return task.SampleLimit
	}
	if resp.StatusCode == http.StatusPartialContent {
		if total := parseContentRangeTotal(resp.Header.Get("Content-Range")); total > 0 {
			return total
		}
	}
	if length := parseContentLength(resp.Header.Get("Content-Length")); length > 0 {
		return resumeOffset + length
	}
	return -1
}

// finalize moves the partial file into place, copying when rename is not
// possible (cross-device destinations).
func finalize(partialPath, outputPath string) error {
	if err := os.Rename(partialPath, outputPath); err == nil {
		return nil
	}
	src, err := os.Open(partialPath)
	if err != nil {
		return err
	}
	defer src.Close()
	dst, err := os.OpenFile(outputPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return err
	}
	if err := dst.Close(); err != nil {
		return err
	}
	src.Close()
	return os.Remove(partialPath)
}
