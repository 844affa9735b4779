package pathcompression

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/klauspost/pgzip"
	"github.com/paulschiretz/pgl-shipper/pkg/pathcompressionmetrics"
	"github.com/paulschiretz/pgl-shipper/pkg/pipeline"
	"github.com/paulschiretz/pgl-shipper/pkg/plog"
	"github.com/paulschiretz/pgl-shipper/pkg/util"
)

const ioBufferSize = 256 * 1024

// progressInterval is a var to allow modification during testing.
var progressInterval = 30 * time.Second

// NativeCompressor compresses files in process without an external binary.
// The output is compatible with the gzip and zstd command line tools.
type NativeCompressor struct {
	name    string
	algo    algorithm
	level   Level
	metrics bool
}

var _ Compressor = (*NativeCompressor)(nil)

func newNativeCompressor(name string, algo algorithm, level Level) *NativeCompressor {
	return &NativeCompressor{name: name, algo: algo, level: level}
}

// SetMetrics enables logging of byte counters and periodic progress.
func (c *NativeCompressor) SetMetrics(enabled bool) { c.metrics = enabled }

func (c *NativeCompressor) Name() string   { return c.name }
func (c *NativeCompressor) Suffix() string { return c.algo.suffix }

// Compress writes path.<suffix> through a temporary file and removes path on
// success. Failures are reported as an unsuccessful Result like a failed binary.
func (c *NativeCompressor) Compress(ctx context.Context, _ *pipeline.Executor, path string) (pipeline.Result, error) {
	res := pipeline.Result{Cmd: fmt.Sprintf("%s %s", c.name, pipeline.Escape(path))}
	plog.Debug("Compressing in process", "compressor", c.name, "path", path)

	var m pathcompressionmetrics.Metrics
	if c.metrics {
		m = &pathcompressionmetrics.CompressionMetrics{}
	} else {
		m = &pathcompressionmetrics.NoopMetrics{}
	}
	m.StartProgress("Compressing", progressInterval, "compressor", c.name, "path", path)
	err := c.compressFile(ctx, path, path+"."+c.algo.suffix, m)
	m.StopProgress()
	if err != nil {
		m.AddFilesFailed(1)
	} else {
		m.AddFilesCompressed(1)
	}
	m.LogSummary("Compression finished", "compressor", c.name, "path", path)

	if err != nil {
		if ctx.Err() != nil {
			res.Code = -1
			return res, ctx.Err()
		}
		res.Code = 1
		res.Stderr = err.Error()
		return res, nil
	}
	if err := os.Remove(path); err != nil {
		res.Code = 1
		res.Stderr = fmt.Sprintf("failed to remove uncompressed file: %v", err)
	}
	return res, nil
}

func (c *NativeCompressor) compressFile(ctx context.Context, src, dst string, m pathcompressionmetrics.Metrics) (retErr error) {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", src, err)
	}
	defer in.Close()

	// 1. Write to a temp file in the same directory so the rename is atomic.
	tmp, err := os.CreateTemp(filepath.Dir(dst), ".pgl-shipper-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		if retErr != nil {
			tmp.Close()
			os.Remove(tmpPath)
		}
	}()

	bufWriter := bufio.NewWriterSize(tmp, ioBufferSize)
	compressedWriter, err := c.newWriter(bufWriter)
	if err != nil {
		return err
	}

	// 2. Stream the file, checking for cancellation between chunks.
	if _, err := io.Copy(compressedWriter, &ctxReader{ctx: ctx, r: in, count: m.AddOriginalBytes}); err != nil {
		compressedWriter.Close()
		return fmt.Errorf("failed to compress %s: %w", src, err)
	}
	if err := compressedWriter.Close(); err != nil {
		return fmt.Errorf("compressed writer close failed: %w", err)
	}
	if err := bufWriter.Flush(); err != nil {
		return fmt.Errorf("buffer flush failed: %w", err)
	}
	if err := tmp.Chmod(util.UserWritableFilePerms); err != nil {
		return fmt.Errorf("failed to set permissions: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	// 3. Atomic Rename
	if err := os.Rename(tmpPath, dst); err != nil {
		return fmt.Errorf("failed to rename temp file to %s: %w", dst, err)
	}
	if info, err := os.Stat(dst); err == nil {
		m.AddCompressedBytes(info.Size())
	}
	return nil
}

func (c *NativeCompressor) newWriter(w io.Writer) (io.WriteCloser, error) {
	switch c.algo.name {
	case "zstd":
		zw, err := zstd.NewWriter(w, zstd.WithEncoderLevel(c.level.zstdLevel()))
		if err != nil {
			return nil, fmt.Errorf("failed to create zstd writer: %w", err)
		}
		return zw, nil
	default:
		gw, err := pgzip.NewWriterLevel(w, c.level.gzipLevel())
		if err != nil {
			return nil, fmt.Errorf("failed to create gzip writer: %w", err)
		}
		return gw, nil
	}
}

// DecompressCmd returns the command line tool invocation that reverses the compression.
func (c *NativeCompressor) DecompressCmd(path string) *pipeline.Cmd {
	return decompressCmd(c.algo, path)
}

// ctxReader stops reading once ctx is done and reports the bytes read to count.
type ctxReader struct {
	ctx   context.Context
	r     io.Reader
	count func(n int64)
}

func (r *ctxReader) Read(p []byte) (int, error) {
	if err := r.ctx.Err(); err != nil {
		return 0, err
	}
	n, err := r.r.Read(p)
	r.count(int64(n))
	return n, err
}
