package store

import (
	"strings"
)

// Path addresses a node in the tree as an ordered sequence of segments.
// The zero value is the root path.
type Path struct {
	segs []string
}

// Root is the path of the tree root.
var Root = Path{}

// reservedSegmentChars are forbidden inside a single segment, matching the
// character restrictions of the wire format canopy's paths are encoded in.
const reservedSegmentChars = ".#$[]"

// ParsePath parses a slash-delimited path. Leading, trailing, and repeated
// slashes are tolerated; "users//42/" parses the same as "users/42".
func ParsePath(raw string) (Path, error) {
	parts := strings.Split(raw, "/")
	segs := make([]string, 0, len(parts))
	for _, part := range parts {
		if part == "" {
			continue
		}
		if err := validateSegment(part); err != nil {
			return Path{}, err
		}
		segs = append(segs, part)
	}
	return Path{segs: segs}, nil
}

// MustParsePath is ParsePath for compile-time-constant paths; it panics on
// invalid input.
func MustParsePath(raw string) Path {
	p, err := ParsePath(raw)
	if err != nil {
		panic(err)
	}
	return p
}

func validateSegment(seg string) error {
	if seg == "" {
		return ErrInvalidPath
	}
	if strings.ContainsAny(seg, reservedSegmentChars) {
		return ErrInvalidPath
	}
	return nil
}

// Child returns the path extended by one segment.
func (p Path) Child(seg string) (Path, error) {
	if err := validateSegment(seg); err != nil {
		return Path{}, err
	}
	segs := make([]string, len(p.segs)+1)
	copy(segs, p.segs)
	segs[len(p.segs)] = seg
	return Path{segs: segs}, nil
}

// Parent returns the path with the last segment removed. The parent of the
// root is the root.
func (p Path) Parent() Path {
	if len(p.segs) == 0 {
		return Path{}
	}
	return Path{segs: p.segs[:len(p.segs)-1]}
}

// Key returns the last segment, or "" for the root.
func (p Path) Key() string {
	if len(p.segs) == 0 {
		return ""
	}
	return p.segs[len(p.segs)-1]
}

// Depth returns the number of segments.
func (p Path) Depth() int {
	return len(p.segs)
}

// IsRoot reports whether the path has no segments.
func (p Path) IsRoot() bool {
	return len(p.segs) == 0
}

// Equal reports segment-sequence equality.
func (p Path) Equal(q Path) bool {
	if len(p.segs) != len(q.segs) {
		return false
	}
	for i := range p.segs {
		if p.segs[i] != q.segs[i] {
			return false
		}
	}
	return true
}

// IsAncestorOf reports whether p is a strict ancestor of q.
func (p Path) IsAncestorOf(q Path) bool {
	if len(p.segs) >= len(q.segs) {
		return false
	}
	for i := range p.segs {
		if p.segs[i] != q.segs[i] {
			return false
		}
	}
	return true
}

// Contains reports whether p is q or an ancestor of q.
func (p Path) Contains(q Path) bool {
	return p.Equal(q) || p.IsAncestorOf(q)
}

// String joins the segments with "/". The root renders as "/".
func (p Path) String() string {
	if len(p.segs) == 0 {
		return "/"
	}
	return strings.Join(p.segs, "/")
}

func (p Path) segments() []string {
	return p.segs
}
