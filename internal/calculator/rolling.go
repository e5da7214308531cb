package calculator

import "math"

// rollingWindow is a fixed-size trailing window over a stream of values,
// maintaining running sums so mean and standard deviation are O(1) per bar.
type rollingWindow struct {
	size  int
	buf   []float64
	head  int
	count int
	sum   float64
	sumSq float64
}

func newRollingWindow(size int) *rollingWindow {
	return &rollingWindow{size: size, buf: make([]float64, size)}
}

func (w *rollingWindow) push(v float64) {
	if w.count == w.size {
		old := w.buf[w.head]
		w.sum -= old
		w.sumSq -= old * old
	} else {
		w.count++
	}
	w.buf[w.head] = v
	w.sum += v
	w.sumSq += v * v
	w.head = (w.head + 1) % w.size
}

func (w *rollingWindow) full() bool { return w.count == w.size }

func (w *rollingWindow) mean() float64 {
	if w.count == 0 {
		return 0
	}
	return w.sum / float64(w.count)
}

// stddev returns the sample standard deviation (n-1 denominator) of the
// window contents. Requires at least 2 values.
func (w *rollingWindow) stddev() float64 {
	if w.count < 2 {
		return 0
	}
	n := float64(w.count)
	variance := (w.sumSq - w.sum*w.sum/n) / (n - 1)
	if variance < 0 {
		// running-sum cancellation can leave a tiny negative residue
		variance = 0
	}
	return math.Sqrt(variance)
}

// ema is an exponentially weighted mean with smoothing k = 2/(span+1),
// seeded from the first value pushed.
type ema struct {
	k      float64
	value  float64
	primed bool
}

func newEMA(span int) *ema {
	return &ema{k: 2.0 / (float64(span) + 1.0)}
}

func (e *ema) push(v float64) float64 {
	if !e.primed {
		e.value = v
		e.primed = true
	} else {
		e.value = v*e.k + e.value*(1-e.k)
	}
	return e.value
}
