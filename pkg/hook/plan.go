package hook

type Plan struct {
	PreHookCommands  []string
	PostHookCommands []string

	// Global Flags
	Simulate bool
	FailFast bool
}
