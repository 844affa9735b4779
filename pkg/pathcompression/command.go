package pathcompression

import (
	"context"

	"github.com/paulschiretz/pgl-shipper/pkg/pipeline"
)

// CommandCompressor compresses files with an external binary such as gzip.
type CommandCompressor struct {
	algo   algorithm
	binary string
	level  Level
}

var _ Compressor = (*CommandCompressor)(nil)

func (c *CommandCompressor) Name() string   { return c.algo.name }
func (c *CommandCompressor) Suffix() string { return c.algo.suffix }

// Compress runs the binary against path, which replaces it with path.<suffix>.
func (c *CommandCompressor) Compress(ctx context.Context, e *pipeline.Executor, path string) (pipeline.Result, error) {
	cmd := newCmd(c.binary, c.algo.compressArgs, c.level.commandFlag()).AddArgument(path)
	return e.Run(ctx, pipeline.New(cmd))
}

// DecompressCmd restores the plain file from path.
func (c *CommandCompressor) DecompressCmd(path string) *pipeline.Cmd {
	return decompressCmd(c.algo, path)
}
