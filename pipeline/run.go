package pipeline

// Run ticks the pipeline until it halts.
func (p *Pipeline) Run() {
	for !p.halted {
		p.Tick()
	}
}

// RunCycles ticks the pipeline for up to n cycles, stopping early if it
// halts. It reports whether the pipeline is still running afterward.
func (p *Pipeline) RunCycles(n uint64) (stillRunning bool) {
	for i := uint64(0); i < n && !p.halted; i++ {
		p.Tick()
	}
	return !p.halted
}
