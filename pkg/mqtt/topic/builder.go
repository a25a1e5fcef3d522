package topic

import (
	"strings"
)

// Builder constructs topic strings under a fixed namespace
// (e.g. "PTIN2023"), so that every publisher and subscriber of the fleet
// agrees on the same topology.
type Builder struct {
	root string
}

// NewBuilder creates a Builder for the given namespace. Leading and trailing
// separators are trimmed.
func NewBuilder(root string) *Builder {
	return &Builder{root: strings.Trim(root, Separator)}
}

// Root returns the namespace.
func (b *Builder) Root() string {
	return b.root
}

// Build joins the namespace with a topic segment.
// Pattern: {root}/{segment}
func (b *Builder) Build(segment string) string {
	segment = strings.Trim(segment, Separator)
	if b.root == "" {
		return segment
	}
	return b.root + Separator + segment
}

// All returns the filter matching every topic under the namespace.
// Result: {root}/#
func (b *Builder) All() string {
	return b.Build(MultiWildcard)
}

// Segment strips the namespace from a full topic. ok is false when the topic
// lies outside the namespace.
func (b *Builder) Segment(topic string) (segment string, ok bool) {
	if b.root == "" {
		return topic, true
	}
	return strings.CutPrefix(topic, b.root+Separator)
}
