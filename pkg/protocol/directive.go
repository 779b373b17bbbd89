package protocol

import "strings"

// DirectiveKind classifies an inbound line from the renderer.
type DirectiveKind int

const (
	DirectiveUnknown DirectiveKind = iota
	DirectiveImage
	DirectivePick
	DirectiveHeader
	DirectiveUpdateDisplay
	DirectiveClose
)

func (k DirectiveKind) String() string {
	switch k {
	case DirectiveImage:
		return "image"
	case DirectivePick:
		return "pick"
	case DirectiveHeader:
		return "header"
	case DirectiveUpdateDisplay:
		return "updateDisplay"
	case DirectiveClose:
		return "close"
	default:
		return "unknown"
	}
}

// Header modes.
const (
	HeaderGray  = "gray"
	HeaderColor = "color"
)

// Directive is one parsed inbound line. Arg is the first argument (image
// URL or header mode), if any.
type Directive struct {
	Kind DirectiveKind
	Verb string
	Arg  string
	Raw  string
}

// ParseDirective splits line on whitespace and classifies the first token.
// Unrecognised verbs yield DirectiveUnknown; it never fails.
func ParseDirective(line string) Directive {
	d := Directive{Raw: line}
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return d
	}
	d.Verb = fields[0]
	if len(fields) > 1 {
		d.Arg = fields[1]
	}

	switch d.Verb {
	case "image":
		d.Kind = DirectiveImage
	case "pick":
		d.Kind = DirectivePick
	case "header":
		d.Kind = DirectiveHeader
	case "updateDisplay":
		d.Kind = DirectiveUpdateDisplay
	case "close":
		d.Kind = DirectiveClose
	}
	return d
}
