package output

import (
	"fmt"
	"time"

	"github.com/maktabdl/maktabdl/internal/utils"
)

// OverflowTolerance absorbs small header/length discrepancies: anything up
// to this many bytes over the expected total still displays as 100%.
const OverflowTolerance int64 = 64 * 1024

func FormatPercent(written, total int64) string {
	if total <= 0 {
		return "--%"
	}
	if written >= total {
		if written-total <= OverflowTolerance {
			return "100.0%"
		}
	}
	return fmt.Sprintf("%.1f%%", float64(written)/float64(total)*100)
}

// ProgressLine renders a single in-place transfer line on stdout.
type ProgressLine struct {
	label string
	start time.Time
}

func NewProgressLine(label string) *ProgressLine {
	maxLabel := GetTerminalWidth() / 3
	if len(label) > maxLabel && maxLabel > 3 {
		label = label[:maxLabel-3] + "..."
	}
	return &ProgressLine{label: label, start: time.Now()}
}

func (p *ProgressLine) Update(written, total int64) {
	elapsed := time.Since(p.start).Seconds()
	line := fmt.Sprintf("\r%s %s %s %s %s",
		detailStyle.Render(p.label),
		PrintProgressBar(written, total, 25),
		FormatPercent(written, total),
		StyleSymbols["dot"],
		utils.FormatSpeed(written, elapsed))
	fmt.Print(line + "   ")
}
