package util

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Permission constants for file and directory modes.
const (
	// PermUserRead is the user-read permission bit (0400).
	PermUserRead os.FileMode = 0400
	// PermUserWrite is the user-write permission bit (0200).
	PermUserWrite os.FileMode = 0200
	// PermUserExecute is the user-execute permission bit (0100).
	PermUserExecute os.FileMode = 0100

	// UserWritableDirPerms represents the standard permissions for newly created target directories (rwxr-xr-x).
	UserWritableDirPerms os.FileMode = 0755
	// UserWritableFilePerms represents the standard permissions for newly created files (rw-r--r--).
	UserWritableFilePerms os.FileMode = 0644
	// UserOnlyFilePerms is used for files that may contain secrets, such as generated configs (rw-------).
	UserOnlyFilePerms os.FileMode = 0600
)

// WithUserWritePermission ensures that any directory/file permission has the owner-write
// bit (0200) set. This prevents the backup user from being locked out on subsequent runs.
func WithUserWritePermission(basePerm os.FileMode) os.FileMode {
	return basePerm | PermUserWrite
}

// WithUserExecutePermission ensures that any directory permission has the owner-execute
// bit (0100) set, which is required to traverse it.
func WithUserExecutePermission(basePerm os.FileMode) os.FileMode {
	return basePerm | PermUserExecute
}

// ExpandPath expands the tilde (~) prefix in a path to the user's home directory.
func ExpandPath(path string) (string, error) {
	if !strings.HasPrefix(path, "~") {
		return path, nil // No tilde, return as-is.
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not get user home directory: %w", err)
	}

	// Replace the tilde with the home directory.
	return filepath.Join(home, path[1:]), nil
}

// InvertMap takes a map[K]V and returns a map[V]K.
// It's a generic helper for creating reverse lookup maps for enums.
func InvertMap[K comparable, V comparable](m map[K]V) map[V]K {
	inv := make(map[V]K, len(m))
	for k, v := range m {
		inv[v] = k
	}
	return inv
}

// MergeAndDeduplicate combines multiple string slices into a single slice,
// removing duplicates while keeping the first occurrence order.
func MergeAndDeduplicate(slices ...[]string) []string {
	seen := make(map[string]struct{})
	var result []string
	for _, s := range slices {
		for _, item := range s {
			if _, ok := seen[item]; ok {
				continue
			}
			seen[item] = struct{}{}
			result = append(result, item)
		}
	}
	return result
}

var sizeUnits = map[byte]int64{
	'B': 1,
	'K': 1 << 10,
	'M': 1 << 20,
	'G': 1 << 30,
	'T': 1 << 40,
	'P': 1 << 50,
}

// ParseSize converts a human readable size like "500", "10K", "1.5G" or "2TB"
// into a number of bytes. Units are binary (1K = 1024).
func ParseSize(s string) (int64, error) {
	raw := strings.ToUpper(strings.TrimSpace(s))
	if raw == "" {
		return 0, fmt.Errorf("invalid size %q: empty", s)
	}
	raw = strings.TrimSuffix(raw, "IB")
	if raw == "" {
		return 0, fmt.Errorf("invalid size %q", s)
	}
	if len(raw) > 1 && raw[len(raw)-1] == 'B' {
		if _, ok := sizeUnits[raw[len(raw)-2]]; ok {
			raw = raw[:len(raw)-1]
		}
	}

	multiplier := int64(1)
	if unit, ok := sizeUnits[raw[len(raw)-1]]; ok {
		multiplier = unit
		raw = raw[:len(raw)-1]
	}

	value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || value < 0 {
		return 0, fmt.Errorf("invalid size %q", s)
	}
	return int64(value * float64(multiplier)), nil
}

// ParseAge converts an age like "3d", "2w", "6m", "1y" or any time.ParseDuration
// string into a duration. Days are 24h, weeks 7 days, months 30 days and years 365 days.
func ParseAge(s string) (time.Duration, error) {
	raw := strings.TrimSpace(s)
	if raw == "" {
		return 0, fmt.Errorf("invalid age %q: empty", s)
	}

	const day = 24 * time.Hour
	units := map[byte]time.Duration{
		'd': day,
		'D': day,
		'w': 7 * day,
		'W': 7 * day,
		'M': 30 * day,
		'y': 365 * day,
		'Y': 365 * day,
	}
	// A trailing lowercase "m" is ambiguous with minutes; "6m" alone means months,
	// Go durations such as "90m" or "1h30m" must carry another unit or use "min".
	last := raw[len(raw)-1]
	if last == 'm' {
		if n, err := strconv.Atoi(raw[:len(raw)-1]); err == nil {
			if n < 0 {
				return 0, fmt.Errorf("invalid age %q: negative", s)
			}
			return time.Duration(n) * 30 * day, nil
		}
	}
	if unit, ok := units[last]; ok {
		n, err := strconv.Atoi(raw[:len(raw)-1])
		if err != nil || n < 0 {
			return 0, fmt.Errorf("invalid age %q", s)
		}
		return time.Duration(n) * unit, nil
	}

	d, err := time.ParseDuration(strings.ReplaceAll(raw, "min", "m"))
	if err != nil {
		return 0, fmt.Errorf("invalid age %q: %w", s, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("invalid age %q: negative", s)
	}
	return d, nil
}
