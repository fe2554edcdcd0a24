package biphase

import "sort"

// clusterSlop is the +/-2 sample tolerance spec.md gives around the
// observed min/max interval cluster when classifying a zero-crossing
// gap as a short (logical 1, half-bit) or long (logical 0, full-bit)
// interval.
const clusterSlop = 2

// medianWindow bounds how many chunks' raw dmin/dmax feed the rolling
// median: the current chunk plus the previous two, per spec.md §9's
// "rolling median over the previous two chunks" resolution to dmin
// instability at low sample rates or near the first sync.
const medianWindow = 3

const syncOnesRun = 12

// DataBlockFunc receives one recovered 80-bit data block (LSB-first,
// bit 0 first) whenever the decoder locates a full sync-word-terminated
// block in the incoming sample stream.
type DataBlockFunc func(bits [bitsPerBlock]bool)

// Decoder is a streaming, stateful biphase-mark decoder: feed it PCM
// chunks via Decode, and it emits recovered data blocks via its
// callback as the sync word is located. A Decoder must not be used
// concurrently from multiple goroutines.
type Decoder struct {
	OnDataBlock DataBlockFunc

	lastSample     float64
	haveLastSample bool

	buffer         []bool
	consecOnes     int
	index          int
	syncwordIndex  int
	haveSyncwordIx bool

	dminHistory []int
	dmaxHistory []int
}

// NewDecoder returns a Decoder that invokes cb for each recovered data
// block.
func NewDecoder(cb DataBlockFunc) *Decoder {
	return &Decoder{OnDataBlock: cb}
}

// Decode feeds one chunk of normalized PCM samples into the decoder.
// Malformed or ambiguous chunks (e.g. too few zero-crossings to
// classify an interval cluster) are silently skipped; no error is
// returned, matching the component's failure contract.
func (d *Decoder) Decode(samples []float64) {
	transitions := d.detectZeroCrossings(samples)
	if len(transitions) < 2 {
		return
	}

	diffs := make([]int, len(transitions)-1)
	for i := 1; i < len(transitions); i++ {
		diffs[i-1] = transitions[i] - transitions[i-1]
	}
	if len(diffs) < 2 {
		return
	}

	rawDmin := diffs[1]
	rawDmax := diffs[0]
	for _, v := range diffs[1:] {
		if v < rawDmin {
			rawDmin = v
		}
	}
	for _, v := range diffs {
		if v > rawDmax {
			rawDmax = v
		}
	}

	dmin := d.rollingMedian(&d.dminHistory, rawDmin)
	dmax := d.rollingMedian(&d.dmaxHistory, rawDmax)

	i := 0
	for i < len(diffs) {
		v := diffs[i]
		var (
			bit, classified bool
		)
		switch {
		case v >= dmin-clusterSlop && v <= dmin+clusterSlop:
			bit, classified = true, true
			i++ // a logical 1 consumes two short intervals
		case v >= dmax-clusterSlop && v <= dmax+clusterSlop:
			bit, classified = false, true
		}
		i++
		if !classified {
			continue
		}
		d.emitBit(bit)
	}
}

// rollingMedian folds raw into history (keeping at most the previous
// two chunks' values), then returns the median of history plus raw.
func (d *Decoder) rollingMedian(history *[]int, raw int) int {
	window := make([]int, 0, medianWindow)
	window = append(window, *history...)
	window = append(window, raw)
	sort.Ints(window)
	median := window[len(window)/2]

	*history = append(*history, raw)
	if len(*history) > medianWindow-1 {
		*history = (*history)[len(*history)-(medianWindow-1):]
	}

	return median
}

func (d *Decoder) emitBit(bit bool) {
	if bit {
		d.consecOnes++
	} else {
		d.consecOnes = 0
	}
	d.buffer = append(d.buffer, bit)

	if d.consecOnes == syncOnesRun && !d.haveSyncwordIx {
		d.syncwordIndex = d.index + clusterSlop
		d.haveSyncwordIx = true
	}

	if d.haveSyncwordIx && d.index == d.syncwordIndex {
		if len(d.buffer) >= bitsPerBlock {
			var out [bitsPerBlock]bool
			copy(out[:], d.buffer[len(d.buffer)-bitsPerBlock:])
			if d.OnDataBlock != nil {
				d.OnDataBlock(out)
			}
			d.index = 0
			d.buffer = nil
		}
		d.haveSyncwordIx = false
	}

	d.index++
}

// detectZeroCrossings prepends the previous chunk's last sample and
// returns the sample indices where sign(samples) changes, treating 0
// as negative.
func (d *Decoder) detectZeroCrossings(samples []float64) []int {
	full := samples
	if d.haveLastSample {
		full = make([]float64, 0, len(samples)+1)
		full = append(full, d.lastSample)
		full = append(full, samples...)
	}
	if len(full) == 0 {
		return nil
	}
	d.lastSample = full[len(full)-1]
	d.haveLastSample = true

	signs := make([]int, len(full))
	for i, s := range full {
		if s > 0 {
			signs[i] = 1
		} else {
			signs[i] = -1
		}
	}

	var transitions []int
	for i := 1; i < len(signs); i++ {
		if signs[i] != signs[i-1] {
			transitions = append(transitions, i)
		}
	}
	return transitions
}
