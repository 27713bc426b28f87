package diagram

import (
	"fmt"
	"strings"

	"github.com/matzehuels/canvaskit/pkg/errors"
)

// Kind partitions shapes into the two collections a canvas keeps.
type Kind int

const (
	// KindCustom shapes carry labels, layers and ports and can be connected.
	KindCustom Kind = iota
	// KindRegular shapes are containers (rectangles, panels) and cannot be
	// connected.
	KindRegular
)

func (k Kind) String() string {
	switch k {
	case KindCustom:
		return "custom"
	case KindRegular:
		return "regular"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ParseKind parses "custom" or "regular".
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(s) {
	case "custom", "":
		return KindCustom, nil
	case "regular":
		return KindRegular, nil
	}
	return 0, errors.New(errors.ErrCodeInvalidInput, "unknown shape kind %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	if k != KindCustom && k != KindRegular {
		return nil, errors.New(errors.ErrCodeInvalidInput, "invalid shape kind %d", int(k))
	}
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(b []byte) error {
	v, err := ParseKind(string(b))
	if err != nil {
		return err
	}
	*k = v
	return nil
}

// DragBehavior is the interaction a pointer-down on a shape starts.
type DragBehavior int

const (
	// DragCancel means the pointer is outside the shape.
	DragCancel DragBehavior = iota
	// DragMove moves the shape.
	DragMove
	// DragConnect starts a new connection from the shape's border band.
	DragConnect
)

func (d DragBehavior) String() string {
	switch d {
	case DragCancel:
		return "cancel"
	case DragMove:
		return "drag"
	case DragConnect:
		return "connect"
	}
	return fmt.Sprintf("DragBehavior(%d)", int(d))
}

// SegmentStyle is the line style of a connection.
type SegmentStyle string

const (
	StyleRegular   SegmentStyle = "regular"
	StyleDotted    SegmentStyle = "dotted"
	StyleSegmented SegmentStyle = "segmented"
)

// Valid reports whether s is a known style.
func (s SegmentStyle) Valid() bool {
	switch s {
	case StyleRegular, StyleDotted, StyleSegmented:
		return true
	}
	return false
}

// ParseSegmentStyle parses a style name. "solid" is accepted as an alias
// for regular and the empty string yields the default.
func ParseSegmentStyle(s string) (SegmentStyle, error) {
	switch v := SegmentStyle(strings.ToLower(s)); v {
	case "", "solid":
		return StyleRegular, nil
	case StyleRegular, StyleDotted, StyleSegmented:
		return v, nil
	}
	return "", errors.New(errors.ErrCodeInvalidInput, "unknown segment style %q", s)
}

// Algorithm selects how a connection computes its route.
type Algorithm string

const (
	// AlgorithmManhattan delegates to the canvas router.
	AlgorithmManhattan Algorithm = "manhattan"
	// AlgorithmUser uses explicit waypoints.
	AlgorithmUser Algorithm = "user"
)
