package pathretention

type Plan struct {
	// Global Flags
	Simulate bool
	Metrics  bool
}
