package backend

import (
	"context"

	"github.com/paulschiretz/pgl-shipper/pkg/faults"
	"github.com/paulschiretz/pgl-shipper/pkg/pathtemplate"
	"github.com/paulschiretz/pgl-shipper/pkg/pipeline"
	"github.com/paulschiretz/pgl-shipper/pkg/plog"
)

// Capture runs p into t.PathPlain() and, when a compressor is bound, compresses
// the file afterwards so that t.PathUncrypted() holds the artifact. The
// compressor only runs after the capture exited successfully.
func Capture(ctx context.Context, env Env, p *pipeline.Pipeline, t *pathtemplate.Target) error {
	if err := t.EnsureDir(); err != nil {
		return err
	}

	// A nil pathcompression.Compressor converts to a nil pipeline.Compressor.
	res, err := env.Executor.RunCompressed(ctx, p, t.PathPlain(), env.Compressor)
	if err != nil {
		return err
	}
	if err := faults.CheckResult(res); err != nil {
		return err
	}
	plog.Debug("Capture finished", "path", t.PathUncrypted())
	return nil
}

// SimulateCapture logs the pipeline Capture would run.
func SimulateCapture(env Env, p *pipeline.Pipeline, t *pathtemplate.Target) {
	p.RedirectTo(t.PathPlain())
	plog.Info("[SIMULATE] Executing command", "command", p.String())
	if env.Compressor != nil {
		plog.Info("[SIMULATE] Compressing", "compressor", env.Compressor.Name(), "path", t.PathPlain())
	}
}
