package gpt

func SetResetSpins(h *HW, n int) {
	h.resetSpins = n
}

func SetStepTrace(d *Driver, trace func(step int)) {
	d.trace = trace
}
