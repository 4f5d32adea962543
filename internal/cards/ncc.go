package cards

import (
	"fmt"
	"math"

	"github.com/tablesight/tablesight/internal/utils"
)

// nccEpsilon guards the correlation denominator against near-constant planes.
const nccEpsilon = 1e-9

// MatchScore computes the Pearson normalized cross-correlation between two
// planes of identical dimensions. The result lies in [-1, 1]; a constant
// plane on either side scores 0 because correlation is undefined there.
func MatchScore(probe, tpl *utils.Gray32) (float64, error) {
	if probe == nil || tpl == nil {
		return 0, fmt.Errorf("ncc: nil plane")
	}
	if probe.Width != tpl.Width || probe.Height != tpl.Height {
		return 0, fmt.Errorf("ncc: size mismatch %dx%d vs %dx%d",
			probe.Width, probe.Height, tpl.Width, tpl.Height)
	}
	n := len(probe.Pix)
	if n == 0 {
		return 0, fmt.Errorf("ncc: empty plane")
	}

	var sumX, sumY, sumXY, sumXX, sumYY float64
	for i := range n {
		x := float64(probe.Pix[i])
		y := float64(tpl.Pix[i])
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
		sumYY += y * y
	}

	fn := float64(n)
	meanX := sumX / fn
	meanY := sumY / fn
	cov := sumXY/fn - meanX*meanY
	varX := sumXX/fn - meanX*meanX
	varY := sumYY/fn - meanY*meanY
	if varX < 0 {
		varX = 0
	}
	if varY < 0 {
		varY = 0
	}

	denom := math.Sqrt(varX * varY)
	if denom < nccEpsilon {
		return 0, nil
	}
	r := cov / denom
	if r > 1 {
		r = 1
	} else if r < -1 {
		r = -1
	}
	return r, nil
}
