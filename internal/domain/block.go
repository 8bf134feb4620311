package domain

import "maps"

// BlockKind identifies the visual element a block renders as.
type BlockKind string

const (
	BlockKindBody      BlockKind = "body"
	BlockKindContainer BlockKind = "container"
	BlockKindText      BlockKind = "text"
	BlockKindImage     BlockKind = "image"
	BlockKindButton    BlockKind = "button"
	BlockKindLink      BlockKind = "link"
	BlockKindVideo     BlockKind = "video"
	BlockKindHTML      BlockKind = "html"
)

// Breakpoint is a device class selecting which style layer is active.
type Breakpoint string

const (
	BreakpointDesktop Breakpoint = "desktop"
	BreakpointTablet  Breakpoint = "tablet"
	BreakpointMobile  Breakpoint = "mobile"
)

// Breakpoints lists the known device classes, widest first.
var Breakpoints = []Breakpoint{BreakpointDesktop, BreakpointTablet, BreakpointMobile}

// Valid reports whether bp is one of the known device classes.
func (bp Breakpoint) Valid() bool {
	for _, b := range Breakpoints {
		if b == bp {
			return true
		}
	}
	return false
}

// StyleMap holds CSS property → value pairs for one breakpoint.
type StyleMap map[string]string

// Styles holds per-breakpoint style overrides. The core never interprets them.
type Styles map[Breakpoint]StyleMap

// BlockSpec is the wire shape of a block exchanged with persistence and the UI.
// BlockID is empty for specs that have not been instanced yet.
type BlockSpec struct {
	BlockID               string            `json:"blockId,omitempty"`
	Kind                  BlockKind         `json:"kind"`
	Attributes            map[string]string `json:"attributes,omitempty"`
	Styles                Styles            `json:"styles,omitempty"`
	Children              []BlockSpec       `json:"children,omitempty"`
	IsComponent           bool              `json:"isComponent,omitempty"`
	ReferencedComponentID string            `json:"referencedComponentId,omitempty"`
	Overrides             map[string]string `json:"overrides,omitempty"`
}

// IsRoot reports whether the spec describes a page root.
func (s BlockSpec) IsRoot() bool {
	return s.Kind == BlockKindBody
}

// Clone returns a deep copy of the spec. With retainID false every id in the
// copy, descendants included, is cleared.
func (s BlockSpec) Clone(retainID bool) BlockSpec {
	c := BlockSpec{
		BlockID:               s.BlockID,
		Kind:                  s.Kind,
		Attributes:            maps.Clone(s.Attributes),
		Styles:                s.Styles.Clone(),
		IsComponent:           s.IsComponent,
		ReferencedComponentID: s.ReferencedComponentID,
		Overrides:             maps.Clone(s.Overrides),
	}
	if !retainID {
		c.BlockID = ""
	}
	if s.Children != nil {
		c.Children = make([]BlockSpec, len(s.Children))
		for i, child := range s.Children {
			c.Children[i] = child.Clone(retainID)
		}
	}
	return c
}

// Clone returns a deep copy of the style layers.
func (s Styles) Clone() Styles {
	if s == nil {
		return nil
	}
	out := make(Styles, len(s))
	for bp, m := range s {
		out[bp] = maps.Clone(m)
	}
	return out
}
