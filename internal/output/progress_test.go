package output

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatPercent(t *testing.T) {
	assert.Equal(t, "--%", FormatPercent(500, 0))
	assert.Equal(t, "--%", FormatPercent(500, -1))
	assert.Equal(t, "0.0%", FormatPercent(0, 1000))
	assert.Equal(t, "50.0%", FormatPercent(500, 1000))
	assert.Equal(t, "100.0%", FormatPercent(1000, 1000))
}

func TestFormatPercentOverflowClamp(t *testing.T) {
	// Small overruns from header rounding stay pinned at 100%
	assert.Equal(t, "100.0%", FormatPercent(1000+OverflowTolerance, 1000))
	// Beyond the tolerance the raw ratio shows through
	raw := FormatPercent(1000+OverflowTolerance+1, 1000)
	assert.NotEqual(t, "100.0%", raw)
	assert.Contains(t, raw, "%")
}
