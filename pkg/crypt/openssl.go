package crypt

import (
	"context"
	"errors"
	"os"

	"github.com/paulschiretz/pgl-shipper/pkg/backend"
	"github.com/paulschiretz/pgl-shipper/pkg/faults"
	"github.com/paulschiretz/pgl-shipper/pkg/pathtemplate"
	"github.com/paulschiretz/pgl-shipper/pkg/pipeline"
	"github.com/paulschiretz/pgl-shipper/pkg/plog"
	"github.com/paulschiretz/pgl-shipper/pkg/restoreplan"
)

const (
	opensslSuffix    = "enc"
	defaultAlgorithm = "aes-256-cbc"
	maskedPassword   = "********"
)

// OpenSSL encrypts artifacts either symmetrically with a password using
// "openssl enc" or for a certificate holder using "openssl smime".
type OpenSSL struct {
	env       backend.Env
	binary    string
	password  string
	certFile  string
	algorithm string
	// keepUncrypted leaves the unencrypted artifact next to the encrypted one.
	keepUncrypted bool
}

var (
	_ backend.Crypter    = (*OpenSSL)(nil)
	_ backend.Simulator  = (*OpenSSL)(nil)
	_ backend.Restorable = (*OpenSSL)(nil)
)

// Setup reads "password" or "certFile" (exactly one is required), "algorithm",
// "keepUncrypted" and "pathToOpenSSL".
func (c *OpenSSL) Setup(env backend.Env, opts backend.Options) error {
	const component = "crypt openssl"
	c.password = opts.String("password", "")
	c.certFile = opts.String("certFile", "")
	switch {
	case c.password == "" && c.certFile == "":
		return faults.NewConfigurationError(component, "password", "either password or certFile is required")
	case c.password != "" && c.certFile != "":
		return faults.NewConfigurationError(component, "certFile", "password and certFile are mutually exclusive")
	}
	if c.certFile != "" {
		if _, err := os.Stat(c.certFile); err != nil {
			return &faults.ConfigurationError{Component: component, Option: "certFile", Err: err}
		}
	}
	keep, err := opts.Bool(component, "keepUncrypted", false)
	if err != nil {
		return err
	}
	bin, err := env.Locator.WithDir(opts.String("pathToOpenSSL", "")).Lookup("openssl")
	if err != nil {
		return &faults.ConfigurationError{Component: component, Option: "pathToOpenSSL", Err: err}
	}

	c.env = env
	c.binary = bin
	c.algorithm = opts.String("algorithm", defaultAlgorithm)
	c.keepUncrypted = keep
	return nil
}

func (c *OpenSSL) Suffix() string { return opensslSuffix }

func (c *OpenSSL) encryptCmd(in, out string) *pipeline.Cmd {
	if c.certFile != "" {
		return pipeline.NewCmd(c.binary).
			AddArgument("smime").
			AddOption("-encrypt").
			AddOption("-binary").
			AddOption("-"+c.algorithm).
			AddOption("-in", in).
			AddOption("-out", out).
			AddOption("-outform", "DER").
			AddArgument(c.certFile)
	}
	return c.encCmd("-e", c.password, in, out)
}

func (c *OpenSSL) encCmd(mode, password, in, out string) *pipeline.Cmd {
	return pipeline.NewCmd(c.binary).
		AddArgument("enc").
		AddOption(mode).
		AddOption("-"+c.algorithm).
		AddOption("-pbkdf2").
		AddOption("-pass", "pass:"+password).
		AddOption("-in", in).
		AddOption("-out", out)
}

func (c *OpenSSL) Crypt(ctx context.Context, t *pathtemplate.Target) error {
	in, out := t.PathUncrypted(), t.Path()
	res, err := c.env.Executor.Run(ctx, pipeline.New(c.encryptCmd(in, out)))
	if err == nil {
		err = faults.CheckResult(res)
	}
	if err != nil {
		if rmErr := os.Remove(out); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			plog.Warn("Failed to remove partial encrypted file", "path", out, "error", rmErr)
		}
		return err
	}
	if !c.keepUncrypted {
		if err := os.Remove(in); err != nil {
			return &faults.FileSystemError{Op: "remove", Path: in, Err: err}
		}
	}
	plog.Debug("Encrypted artifact", "path", out)
	return nil
}

func (c *OpenSSL) Simulate(_ context.Context, t *pathtemplate.Target) error {
	cmd := c.encryptCmd(t.PathUncrypted(), t.Path())
	if c.password != "" {
		cmd = c.encCmd("-e", maskedPassword, t.PathUncrypted(), t.Path())
	}
	plog.Info("[SIMULATE] Encrypting", "command", cmd.String())
	if !c.keepUncrypted {
		plog.Info("[SIMULATE] Removing unencrypted file", "path", t.PathUncrypted())
	}
	return nil
}

// Restore adds the decryption command for password mode. Certificate mode
// needs the private key, which is unknown here, so the plan is marked as
// unable to decrypt.
func (c *OpenSSL) Restore(t *pathtemplate.Target, plan *restoreplan.Plan) error {
	if c.certFile != "" {
		plan.MarkCryptAsUnsupported()
		return nil
	}
	cmd := c.encCmd("-d", maskedPassword, t.Path(), t.PathUncrypted())
	plan.AddDecryptionCommand(cmd.String(), "Decrypt the artifact, replace "+maskedPassword+" with the password")
	return nil
}
