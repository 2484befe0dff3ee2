package engine

// partitioner runs phase 3 across W long-lived worker goroutines, each
// owning a vertical column strip, synchronized by two barriers per sub-pass
// (spec.md §4.5). The cross-border deferred queue is a per-worker local
// slice merged by the driver after the end barrier — the spec's own
// recommended re-architecture over a lock-free growable vector ("a
// per-worker local vector merged at the end_point barrier", spec.md §9).
type partitioner struct {
	e       *Engine
	workers []*worker
	start   chan struct{}
	done    chan workerResult
}

type worker struct {
	id     int
	strip  strip
	start  chan struct{}
	result chan workerResult
	quit   chan struct{}
}

type workerResult struct {
	progress bool
	deferred []Point
	err      error
}

// newPartitioner divides cols into numWorkers buckets of size floor(cols/W)
// (the last bucket absorbs the remainder), each strip trimmed by 2 columns
// to leave a one-column buffer between strips (spec.md §4.5).
func newPartitioner(e *Engine, numWorkers int) *partitioner {
	if numWorkers < 1 {
		numWorkers = 1
	}
	bucket := e.cols / numWorkers
	if bucket < 1 {
		bucket = 1
	}
	p := &partitioner{e: e}
	for i := 0; i < numWorkers; i++ {
		lo := i * bucket
		hi := lo + bucket - 2
		if i == numWorkers-1 {
			hi = e.cols - 1 - 2
		}
		if hi < lo {
			hi = lo
		}
		if hi > e.cols-1 {
			hi = e.cols - 1
		}
		w := &worker{
			id:     i,
			strip:  strip{Lo: lo, Hi: hi},
			start:  make(chan struct{}),
			result: make(chan workerResult, 1),
			quit:   make(chan struct{}),
		}
		p.workers = append(p.workers, w)
		go p.runWorker(w)
	}
	return p
}

// runWorker is the long-lived worker loop: block on start, sweep the strip,
// report, repeat — until quit is closed.
func (p *partitioner) runWorker(w *worker) {
	for {
		select {
		case <-w.start:
			w.strip.Deferred = w.strip.Deferred[:0]
			progress, err := p.sweepStrip(w)
			w.result <- workerResult{progress: progress, deferred: w.strip.Deferred, err: err}
		case <-w.quit:
			return
		}
	}
}

func (p *partitioner) sweepStrip(w *worker) (bool, error) {
	e := p.e
	progress := false
	for x := 0; x < e.rows; x++ {
		for y := w.strip.Lo; y <= w.strip.Hi; y++ {
			if y < 0 || y >= e.cols {
				continue
			}
			if e.field.At(x, y) == Wall {
				continue
			}
			if e.lastUse.At(x, y) >= e.offset(true, 0) {
				continue
			}
			pushed, _, _, err := e.propagateFlow(x, y, e.types.V.FromInt(1), true, &w.strip)
			if err != nil {
				return false, err
			}
			if pushed.Sign() > 0 {
				progress = true
			}
		}
	}
	return progress, nil
}

// runSubPass releases the start barrier, waits for every worker at the end
// barrier, then serially drains the merged deferred queue with the
// unbounded (edges=true) call.
func (p *partitioner) runSubPass() (bool, error) {
	for _, w := range p.workers {
		w.start <- struct{}{}
	}
	progress := false
	var deferred []Point
	for _, w := range p.workers {
		res := <-w.result
		if res.err != nil {
			return false, res.err
		}
		if res.progress {
			progress = true
		}
		deferred = append(deferred, res.deferred...)
	}

	e := p.e
	for _, pt := range deferred {
		if e.lastUse.At(pt.X, pt.Y) >= e.offset(false, 0) {
			continue
		}
		pushed, _, _, err := e.propagateFlow(pt.X, pt.Y, e.types.V.FromInt(1), false, nil)
		if err != nil {
			return false, err
		}
		if pushed.Sign() > 0 {
			progress = true
		}
	}
	return progress, nil
}

// stop signals every worker goroutine to exit by closing its quit channel;
// it does not wait for them to return.
func (p *partitioner) stop() {
	for _, w := range p.workers {
		close(w.quit)
	}
}
