package capture

import (
	"errors"
	"math"

	"github.com/promptcam/promptcam/internal/conf"
)

// ErrNoFormatFound is returned when no candidate format satisfies the
// frame rate and encoding constraints. It is recoverable: the caller
// falls back to the device's current format.
var ErrNoFormatFound = errors.New("no suitable camera format found")

// candidates whose ratio differs from the target by less than this are
// considered equivalent; the one with more horizontal detail wins.
const ratioEpsilon = 0.01

func targetRatio(mode conf.AspectRatioMode) float64 {
	// vertical and horizontal modes are both derived from a 16:9
	// sensor crop; only the square mode prefers a square sensor format.
	if mode == conf.AspectRatioModeSquare {
		return 1
	}
	return 16.0 / 9.0
}

// SelectFormat picks the best native sensor format for the given aspect
// ratio mode and target frame rate. Pure: it never touches device state.
func SelectFormat(
	candidates []Format,
	mode conf.AspectRatioMode,
	targetFPS float64,
	encoding PixelEncoding,
) (Format, error) {
	target := targetRatio(mode)

	best := Format{}
	bestDiff := math.MaxFloat64
	found := false

	for _, c := range candidates {
		if c.MaxFrameRate < targetFPS {
			continue
		}
		if c.Encoding != encoding {
			continue
		}

		diff := math.Abs(c.Ratio() - target)

		switch {
		case !found, diff < bestDiff-ratioEpsilon:
			best = c
			bestDiff = diff
			found = true

		case math.Abs(diff-bestDiff) <= ratioEpsilon && c.Width > best.Width:
			best = c
			bestDiff = math.Min(diff, bestDiff)
		}
	}

	if !found {
		return Format{}, ErrNoFormatFound
	}

	return best, nil
}
