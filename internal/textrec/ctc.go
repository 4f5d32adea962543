package textrec

import "math"

// ctcSequence is the result of greedy CTC decoding: the blank- and
// repeat-collapsed class indices with one probability per kept step.
type ctcSequence struct {
	collapsed []int
	probs     []float64
}

func argmaxClass(v []float32) (int, float32) {
	if len(v) == 0 {
		return -1, 0
	}
	idx := 0
	maxVal := v[0]
	for i := 1; i < len(v); i++ {
		if v[i] > maxVal {
			maxVal = v[i]
			idx = i
		}
	}
	return idx, maxVal
}

// classProb returns the softmax probability of v[idx]. Rows that already
// look like probabilities (sum near 1, values in [0,1]) pass through.
func classProb(v []float32, idx int) float64 {
	if len(v) == 0 || idx < 0 || idx >= len(v) {
		return 0
	}
	var sum float64
	minV, maxV := v[0], v[0]
	for _, x := range v {
		sum += float64(x)
		if x < minV {
			minV = x
		}
		if x > maxV {
			maxV = x
		}
	}
	if sum > 0.99 && sum < 1.01 && minV >= 0 && maxV <= 1 {
		return float64(v[idx])
	}

	var denom float64
	for _, x := range v {
		denom += math.Exp(float64(x - maxV))
	}
	if denom == 0 {
		return 0
	}
	return math.Exp(float64(v[idx]-maxV)) / denom
}

// collapseCTC drops blanks and merges consecutive repeats.
func collapseCTC(indices []int, probs []float64, blank int) ([]int, []float64) {
	outIdx := make([]int, 0, len(indices))
	outProb := make([]float64, 0, len(probs))
	prev := -1
	for i, idx := range indices {
		if idx == blank {
			prev = idx
			continue
		}
		if idx == prev {
			continue
		}
		outIdx = append(outIdx, idx)
		if i < len(probs) {
			outProb = append(outProb, probs[i])
		} else {
			outProb = append(outProb, 0)
		}
		prev = idx
	}
	return outIdx, outProb
}

// decodeCTCGreedy decodes a single text line's logits, laid out
// [1, T, C] or, with classesFirst, [1, C, T]. Trailing size-1 dims are
// tolerated.
func decodeCTCGreedy(logits []float32, shape []int64, blank int, classesFirst bool) ctcSequence {
	if len(shape) < 3 {
		return ctcSequence{}
	}
	dims := append([]int64(nil), shape...)
	for len(dims) > 3 && dims[len(dims)-1] == 1 {
		dims = dims[:len(dims)-1]
	}
	var tDim, cDim int
	if classesFirst {
		cDim = int(dims[1])
		tDim = int(dims[2])
	} else {
		tDim = int(dims[1])
		cDim = int(dims[2])
	}
	if tDim <= 0 || cDim <= 0 || len(logits) < tDim*cDim {
		return ctcSequence{}
	}

	indices := make([]int, tDim)
	probs := make([]float64, tDim)
	cls := make([]float32, cDim)
	for t := range tDim {
		var row []float32
		if classesFirst {
			for k := range cDim {
				cls[k] = logits[k*tDim+t]
			}
			row = cls
		} else {
			row = logits[t*cDim : (t+1)*cDim]
		}
		idx, _ := argmaxClass(row)
		indices[t] = idx
		probs[t] = classProb(row, idx)
	}

	collapsed, kept := collapseCTC(indices, probs, blank)
	return ctcSequence{collapsed: collapsed, probs: kept}
}

// meanConfidence averages per-character probabilities; 0 when empty.
func meanConfidence(probs []float64) float64 {
	if len(probs) == 0 {
		return 0
	}
	var s float64
	for _, p := range probs {
		s += p
	}
	return s / float64(len(probs))
}

// classesFirstLayout infers whether the classes dimension precedes time
// in the model output shape, given the expected class count.
func classesFirstLayout(shape []int64, classes int) bool {
	if len(shape) < 3 {
		return false
	}
	dims := append([]int64(nil), shape...)
	for len(dims) > 3 && dims[len(dims)-1] == 1 {
		dims = dims[:len(dims)-1]
	}
	if len(dims) < 3 {
		return false
	}
	if int(dims[2]) == classes {
		return false
	}
	return int(dims[1]) == classes
}
