// Package scheduler runs download tasks through a worker pool. One worker
// (the default) gives the strictly sequential reference behavior; more
// workers parallelize across tasks, each task's resume/retry state staying
// self-contained. Destination paths are unique by construction upstream.
package scheduler

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
	maktabhttp "github.com/maktabdl/maktabdl/internal/downloaders/http"
	"github.com/maktabdl/maktabdl/internal/output"
	"github.com/maktabdl/maktabdl/internal/utils"
)

type Summary struct {
	Downloaded int
	Existing   int
	Failed     int
}

// Run processes tasks in the order supplied, numWorkers at a time.
func Run(tasks []utils.DownloadTask, client utils.HTTPDoer, numWorkers int) Summary {
	log := utils.GetLogger("scheduler")
	if numWorkers < 1 {
		numWorkers = 1
	}
	log.Info().Int("totalFiles", len(tasks)).Int("workers", numWorkers).Msg("Initiating download")

	taskCh := make(chan utils.DownloadTask, len(tasks))
	for _, task := range tasks {
		task.ID = uuid.NewString()
		taskCh <- task
	}
	close(taskCh)

	resultCh := make(chan error, len(tasks))
	existsCh := make(chan bool, len(tasks))
	var wg sync.WaitGroup
	for i := range numWorkers {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			logger := log.With().Int("workerID", workerID).Logger()
			for task := range taskCh {
				logger.Debug().Str("id", task.ID).Str("output", task.OutputPath).Msg("Worker starting download")
				if task.ProgressFunc == nil && numWorkers == 1 {
					line := output.NewProgressLine(task.Label)
					task.ProgressFunc = line.Update
				}
				outcome, err := maktabhttp.Download(task, client)
				if err != nil {
					fmt.Println()
					output.PrintError(fmt.Sprintf("%s %s", output.StyleSymbols["fail"], task.Label))
					logger.Error().Err(err).Str("output", task.OutputPath).Msg("Download failed")
					resultCh <- err
					continue
				}
				if outcome == maktabhttp.OutcomeExists {
					output.PrintDetail(fmt.Sprintf("%s %s (already downloaded)", output.StyleSymbols["dot"], task.Label))
					existsCh <- true
					continue
				}
				fmt.Println()
				output.PrintSuccess(fmt.Sprintf("%s %s", output.StyleSymbols["pass"], task.Label))
				resultCh <- nil
			}
		}(i + 1)
	}
	wg.Wait()
	close(resultCh)
	close(existsCh)

	var summary Summary
	for err := range resultCh {
		if err != nil {
			summary.Failed++
		} else {
			summary.Downloaded++
		}
	}
	for range existsCh {
		summary.Existing++
	}
	return summary
}
