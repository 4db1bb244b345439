package output

import (
	"os"
	"strings"

	"golang.org/x/term"
)

// PrintProgressBar creates a progress bar string. An unknown total renders
// an empty bar; the caller shows the indeterminate percentage next to it.
func PrintProgressBar(current, total int64, width int) string {
	if width <= 0 {
		width = 30
	}
	filled := 0
	if total > 0 {
		if current < 0 {
			current = 0
		}
		if current > total {
			current = total
		}
		filled = max(0, min(int(float64(current)/float64(total)*float64(width)), width))
	}
	bar := StyleSymbols["bullet"]
	bar += strings.Repeat(StyleSymbols["hline"], filled)
	if filled < width {
		bar += strings.Repeat(" ", width-filled)
	}
	bar += StyleSymbols["bullet"]
	return debugStyle.Render(bar)
}

func GetTerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return 80 // Default fallback width
	}
	return width
}
