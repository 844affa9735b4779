// Package pathcompression compresses captured backup files, either by running
// a compression binary through the command pipeline or in process.
package pathcompression

import (
	"fmt"
	"sort"
	"strings"

	"github.com/paulschiretz/pgl-shipper/pkg/pipeline"
)

// Compressor is a pipeline.Compressor that also knows how to be reversed.
type Compressor interface {
	pipeline.Compressor
	// DecompressCmd returns the command that restores the plain file from path.
	DecompressCmd(path string) *pipeline.Cmd
}

// algorithm describes a compression tool and its file format.
type algorithm struct {
	name   string
	binary string
	suffix string
	// compressArgs replace the input file with its compressed version.
	compressArgs []string
	// decompressArgs replace the compressed file with the plain one.
	decompressArgs []string
}

var algorithms = map[string]algorithm{
	"gzip": {
		name: "gzip", binary: "gzip", suffix: "gz",
		compressArgs: []string{"-f"}, decompressArgs: []string{"-d"},
	},
	"bzip2": {
		name: "bzip2", binary: "bzip2", suffix: "bz2",
		compressArgs: []string{"-f"}, decompressArgs: []string{"-d"},
	},
	"xz": {
		name: "xz", binary: "xz", suffix: "xz",
		compressArgs: []string{"-f"}, decompressArgs: []string{"-d"},
	},
	"zstd": {
		name: "zstd", binary: "zstd", suffix: "zst",
		compressArgs: []string{"-q", "-f", "--rm"}, decompressArgs: []string{"-d", "-q", "--rm"},
	},
}

// nativeFormats maps the in-process compressors onto the algorithm used for restoring.
var nativeFormats = map[string]string{
	"gzip-native": "gzip",
	"zstd-native": "zstd",
}

// Names returns all supported compressor names, sorted.
func Names() []string {
	var names []string
	for n := range algorithms {
		names = append(names, n)
	}
	for n := range nativeFormats {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// New returns the named compressor. Binary compressors are located with locator.
func New(name string, level Level, locator pipeline.Locator) (Compressor, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if format, ok := nativeFormats[name]; ok {
		return newNativeCompressor(name, algorithms[format], level), nil
	}
	algo, ok := algorithms[name]
	if !ok {
		return nil, fmt.Errorf("unknown compression %q, valid values are %s", name, strings.Join(Names(), ", "))
	}
	bin, err := locator.Lookup(algo.binary)
	if err != nil {
		return nil, fmt.Errorf("compression %s: %w", name, err)
	}
	return &CommandCompressor{algo: algo, binary: bin, level: level}, nil
}

// SuffixOf returns the file suffix of the named compressor without locating a binary.
func SuffixOf(name string) (string, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	if format, ok := nativeFormats[name]; ok {
		name = format
	}
	algo, ok := algorithms[name]
	return algo.suffix, ok
}

// newCmd builds "binary args... [levelFlag]".
func newCmd(binary string, args []string, levelFlag string) *pipeline.Cmd {
	cmd := pipeline.NewCmd(binary)
	for _, a := range args {
		cmd.AddOption(a)
	}
	if levelFlag != "" {
		cmd.AddOption(levelFlag)
	}
	return cmd
}

func decompressCmd(algo algorithm, path string) *pipeline.Cmd {
	return newCmd(algo.binary, algo.decompressArgs, "").AddArgument(path)
}
