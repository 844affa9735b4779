package preflight

type Plan struct {
	TargetAccessible bool
	TargetWritable   bool
	// RequireMount rejects targets that resolve to the system disk.
	RequireMount bool

	// Global Flags
	Simulate bool
}
