// Package restoreplan collects the commands needed to restore a backup.
//
// Backends that transformed an artifact add the commands that reverse their
// step. The plan is only ever printed, it is never executed.
package restoreplan

// Command is a shell command with a human readable explanation.
type Command struct {
	Cmd     string
	Comment string
}

// Plan accumulates decryption, decompression and restore commands.
type Plan struct {
	decryption    []Command
	decompression []Command
	restore       []Command

	cryptUnsupported  bool
	sourceUnsupported bool
}

// New creates an empty plan where crypt and source are assumed to be restorable.
func New() *Plan {
	return &Plan{}
}

// AddDecryptionCommand adds a command that decrypts the artifact. It is
// ignored once crypt was marked unsupported.
func (p *Plan) AddDecryptionCommand(cmd, comment string) {
	if p.cryptUnsupported {
		return
	}
	p.decryption = append(p.decryption, Command{Cmd: cmd, Comment: comment})
}

// AddDecompressionCommand adds a command that decompresses the artifact.
func (p *Plan) AddDecompressionCommand(cmd, comment string) {
	p.decompression = append(p.decompression, Command{Cmd: cmd, Comment: comment})
}

// AddRestoreCommand adds a command that feeds the plain artifact back into its
// source. It is ignored once the source was marked unsupported.
func (p *Plan) AddRestoreCommand(cmd, comment string) {
	if p.sourceUnsupported {
		return
	}
	p.restore = append(p.restore, Command{Cmd: cmd, Comment: comment})
}

// DecryptionCommands returns the decryption commands in insertion order.
func (p *Plan) DecryptionCommands() []Command { return p.decryption }

// DecompressionCommands returns the decompression commands in insertion order.
func (p *Plan) DecompressionCommands() []Command { return p.decompression }

// RestoreCommands returns the restore commands in insertion order.
func (p *Plan) RestoreCommands() []Command { return p.restore }

// MarkCryptAsUnsupported records that the encryption cannot be reversed
// automatically and drops any decryption commands.
func (p *Plan) MarkCryptAsUnsupported() {
	p.cryptUnsupported = true
	p.decryption = nil
}

// MarkSourceAsUnsupported records that the source cannot be restored
// automatically and drops any restore commands.
func (p *Plan) MarkSourceAsUnsupported() {
	p.sourceUnsupported = true
	p.restore = nil
}

// IsCryptSupported reports whether decryption is covered by the plan.
func (p *Plan) IsCryptSupported() bool { return !p.cryptUnsupported }

// IsSourceSupported reports whether restoring the source is covered by the plan.
func (p *Plan) IsSourceSupported() bool { return !p.sourceUnsupported }

// IsComplete reports whether every step can be reversed with the plan.
func (p *Plan) IsComplete() bool {
	return p.IsCryptSupported() && p.IsSourceSupported()
}
