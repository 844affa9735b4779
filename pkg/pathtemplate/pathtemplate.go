// Package pathtemplate resolves the dated location of a backup artifact.
//
// A Target combines a directory template and a file name template, each of
// which may contain strftime-style placeholders such as %Y or %d, with the
// reference time of the run. Resolution is pure: the same templates and
// reference time always yield the same path. Compression and encryption
// append their suffixes to the resolved file name as the run progresses.
package pathtemplate

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/paulschiretz/pgl-shipper/pkg/faults"
	"github.com/paulschiretz/pgl-shipper/pkg/util"
)

// Target is the destination of a single backup run.
type Target struct {
	dirTemplate   string
	fileTemplate  string
	referenceTime time.Time

	dir      string
	filename string

	compressionSuffix string
	cryptSuffix       string
}

// New creates a Target and resolves both templates against referenceTime.
func New(dirTemplate, fileTemplate string, referenceTime time.Time) (*Target, error) {
	if strings.TrimSpace(fileTemplate) == "" {
		return nil, faults.NewConfigurationError("target", "filename", "file name must not be empty")
	}
	if strings.ContainsAny(fileTemplate, `/\`) {
		return nil, faults.NewConfigurationError("target", "filename", "file name %q must not contain a path separator", fileTemplate)
	}
	if strings.TrimSpace(dirTemplate) == "" {
		return nil, faults.NewConfigurationError("target", "dirname", "directory must not be empty")
	}
	expanded, err := util.ExpandPath(dirTemplate)
	if err != nil {
		return nil, &faults.ConfigurationError{Component: "target", Option: "dirname", Err: err}
	}

	t := &Target{
		dirTemplate:   filepath.ToSlash(expanded),
		fileTemplate:  fileTemplate,
		referenceTime: referenceTime,
	}
	t.dir, t.filename = t.Resolve(referenceTime)
	return t, nil
}

// Resolve substitutes the placeholders of both templates with values from at.
// It does not change the Target.
func (t *Target) Resolve(at time.Time) (dir, filename string) {
	return filepath.FromSlash(Format(t.dirTemplate, at)), Format(t.fileTemplate, at)
}

// ReferenceTime is the time the Target was resolved against.
func (t *Target) ReferenceTime() time.Time { return t.referenceTime }

// DirTemplate returns the unresolved directory template in slash form.
func (t *Target) DirTemplate() string { return t.dirTemplate }

// FileTemplate returns the unresolved file name template.
func (t *Target) FileTemplate() string { return t.fileTemplate }

// Dir returns the resolved directory.
func (t *Target) Dir() string { return t.dir }

// SetCompressionSuffix binds a compression suffix ("gz", "zst") to the Target.
func (t *Target) SetCompressionSuffix(suffix string) {
	t.compressionSuffix = strings.TrimPrefix(suffix, ".")
}

// CompressionSuffix returns the bound compression suffix or "".
func (t *Target) CompressionSuffix() string { return t.compressionSuffix }

// ShouldBeCompressed reports whether a compression suffix is bound.
func (t *Target) ShouldBeCompressed() bool { return t.compressionSuffix != "" }

// SetCryptSuffix binds an encryption suffix ("enc") to the Target.
func (t *Target) SetCryptSuffix(suffix string) {
	t.cryptSuffix = strings.TrimPrefix(suffix, ".")
}

// CryptSuffix returns the bound encryption suffix or "".
func (t *Target) CryptSuffix() string { return t.cryptSuffix }

// ShouldBeEncrypted reports whether an encryption suffix is bound.
func (t *Target) ShouldBeEncrypted() bool { return t.cryptSuffix != "" }

// FileNamePlain returns the resolved file name without any suffix.
func (t *Target) FileNamePlain() string { return t.filename }

// FileName returns the resolved file name including compression and crypt suffixes.
func (t *Target) FileName() string {
	return withSuffixes(t.filename, t.compressionSuffix, t.cryptSuffix)
}

// PathPlain is where the capture command writes its uncompressed output.
func (t *Target) PathPlain() string {
	return filepath.Join(t.dir, t.filename)
}

// PathUncrypted is the path after compression and before encryption.
func (t *Target) PathUncrypted() string {
	return filepath.Join(t.dir, withSuffixes(t.filename, t.compressionSuffix, ""))
}

// Path is the final artifact path of this run.
func (t *Target) Path() string {
	return filepath.Join(t.dir, t.FileName())
}

// At returns a copy of the Target that points at an existing artifact. The
// bound suffixes are stripped from its file name so that PathPlain and
// PathUncrypted refer to the artifact's intermediate files.
func (t *Target) At(artifactPath string) *Target {
	c := *t
	c.dir = filepath.Dir(artifactPath)
	name := filepath.Base(artifactPath)
	for _, s := range []string{t.cryptSuffix, t.compressionSuffix} {
		if s != "" {
			name = strings.TrimSuffix(name, "."+s)
		}
	}
	c.filename = name
	return &c
}

// FileNameTemplate returns the file template with the bound suffixes appended.
// Collectors match historical artifacts against it.
func (t *Target) FileNameTemplate() string {
	return withSuffixes(t.fileTemplate, t.compressionSuffix, t.cryptSuffix)
}

// CountChangingPathElements returns how many directory levels contain placeholders.
func (t *Target) CountChangingPathElements() int {
	return CountChangingPathElements(t.dirTemplate)
}

// DirLayout returns the walk layout of the directory template.
func (t *Target) DirLayout() (Layout, error) {
	return SplitLayout(t.dirTemplate)
}

// FileRegex returns the matcher for artifact file names of this Target.
func (t *Target) FileRegex() (*regexp.Regexp, error) {
	re, err := regexp.Compile(ToRegex(t.FileNameTemplate()))
	if err != nil {
		return nil, fmt.Errorf("invalid file name template %q: %w", t.fileTemplate, err)
	}
	return re, nil
}

// EnsureDir creates the resolved directory if it does not exist yet.
func (t *Target) EnsureDir() error {
	info, err := os.Stat(t.dir)
	if err == nil {
		if !info.IsDir() {
			return &faults.FileSystemError{Op: "create directory", Path: t.dir, Err: fmt.Errorf("path exists and is not a directory")}
		}
		return nil
	}
	if err := os.MkdirAll(t.dir, util.UserWritableDirPerms); err != nil {
		return &faults.FileSystemError{Op: "create directory", Path: t.dir, Err: err}
	}
	return nil
}

// Size returns the size of the final artifact. ok is false if it does not exist.
func (t *Target) Size() (size int64, ok bool) {
	info, err := os.Stat(t.Path())
	if err != nil || info.IsDir() {
		return 0, false
	}
	return info.Size(), true
}

func withSuffixes(name string, suffixes ...string) string {
	for _, s := range suffixes {
		if s != "" {
			name += "." + s
		}
	}
	return name
}
