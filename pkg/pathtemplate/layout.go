package pathtemplate

import (
	"fmt"
	"regexp"
	"strings"
)

// Layout describes how to walk a directory template: list Root, then descend
// one directory level per entry in Levels.
type Layout struct {
	// Root is the longest fixed prefix of the template, in slash form.
	Root string
	// Levels holds one matcher per directory level below Root.
	Levels []*regexp.Regexp
}

// splitSegments splits a template in slash or OS form into its segments.
// A leading separator yields an empty first segment.
func splitSegments(template string) []string {
	template = strings.ReplaceAll(template, `\`, "/")
	template = strings.TrimRight(template, "/")
	if template == "" {
		return nil
	}
	return strings.Split(template, "/")
}

// CountChangingPathElements returns the number of directory segments in
// template that contain a placeholder.
func CountChangingPathElements(template string) int {
	n := 0
	for _, seg := range splitSegments(template) {
		if HasPlaceholder(seg) {
			n++
		}
	}
	return n
}

// SplitLayout builds the walk layout for a directory template.
func SplitLayout(template string) (Layout, error) {
	segments := splitSegments(template)
	first := len(segments)
	for i, seg := range segments {
		if HasPlaceholder(seg) {
			first = i
			break
		}
	}

	root := strings.Join(segments[:first], "/")
	switch {
	case root == "" && first > 0:
		// Template starts with a separator.
		root = "/"
	case root == "":
		root = "."
	}

	layout := Layout{Root: root}
	for _, seg := range segments[first:] {
		re, err := regexp.Compile(ToRegex(seg))
		if err != nil {
			return Layout{}, fmt.Errorf("invalid directory segment %q: %w", seg, err)
		}
		layout.Levels = append(layout.Levels, re)
	}
	return layout, nil
}
