// Package protocol encodes the command lines sent to the renderer and
// parses the directives it sends back.
package protocol

import (
	"strconv"
	"strings"

	"github.com/grovetools/mviewer/errors"
)

// Verbs understood by the renderer.
const (
	VerbResize       = "resize"
	VerbZoom         = "zoom"
	VerbPick         = "pick"
	VerbZoomReset    = "zoomReset"
	VerbZoomIn       = "zoomIn"
	VerbZoomOut      = "zoomOut"
	VerbCenter       = "center"
	VerbUpdate       = "update"
	VerbHeader       = "header"
	VerbSubmit       = "submitUpdateRequest"
	VerbPanUp        = "panUp"
	VerbPanDown      = "panDown"
	VerbPanLeft      = "panLeft"
	VerbPanRight     = "panRight"
	VerbPanUpLeft    = "panUpLeft"
	VerbPanUpRight   = "panUpRight"
	VerbPanDownLeft  = "panDownLeft"
	VerbPanDownRight = "panDownRight"
)

// PanDirection names one of the eight pan buttons.
type PanDirection string

const (
	PanUp        PanDirection = "Up"
	PanDown      PanDirection = "Down"
	PanLeft      PanDirection = "Left"
	PanRight     PanDirection = "Right"
	PanUpLeft    PanDirection = "UpLeft"
	PanUpRight   PanDirection = "UpRight"
	PanDownLeft  PanDirection = "DownLeft"
	PanDownRight PanDirection = "DownRight"
)

// arity is the number of arguments each verb takes; -1 means exactly one
// quoted payload.
var arity = map[string]int{
	VerbResize:       2,
	VerbZoom:         4,
	VerbPick:         2,
	VerbZoomReset:    0,
	VerbZoomIn:       0,
	VerbZoomOut:      0,
	VerbCenter:       0,
	VerbUpdate:       0,
	VerbHeader:       0,
	VerbSubmit:       -1,
	VerbPanUp:        0,
	VerbPanDown:      0,
	VerbPanLeft:      0,
	VerbPanRight:     0,
	VerbPanUpLeft:    0,
	VerbPanUpRight:   0,
	VerbPanDownLeft:  0,
	VerbPanDownRight: 0,
}

// Command is one outbound line.
type Command struct {
	Verb string
	Args []string
}

// String renders the command as sent on the wire.
func (c Command) String() string {
	if c.Verb == VerbSubmit && len(c.Args) == 1 {
		return c.Verb + " '" + c.Args[0] + "'"
	}
	if len(c.Args) == 0 {
		return c.Verb
	}
	return c.Verb + " " + strings.Join(c.Args, " ")
}

// FormatNumber writes v as plain decimal text with the fewest digits that
// round-trip.
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func numbers(vs ...float64) []string {
	out := make([]string, len(vs))
	for i, v := range vs {
		out[i] = FormatNumber(v)
	}
	return out
}

func Resize(width, height int) Command {
	return Command{Verb: VerbResize, Args: []string{strconv.Itoa(width), strconv.Itoa(height)}}
}

func Zoom(xmin, xmax, ymin, ymax float64) Command {
	return Command{Verb: VerbZoom, Args: numbers(xmin, xmax, ymin, ymax)}
}

func Pick(x, y float64) Command {
	return Command{Verb: VerbPick, Args: numbers(x, y)}
}

func ZoomReset() Command { return Command{Verb: VerbZoomReset} }
func ZoomIn() Command    { return Command{Verb: VerbZoomIn} }
func ZoomOut() Command   { return Command{Verb: VerbZoomOut} }
func Center() Command    { return Command{Verb: VerbCenter} }
func Update() Command    { return Command{Verb: VerbUpdate} }
func Header() Command    { return Command{Verb: VerbHeader} }

// Pan returns the pan command for a direction, e.g. PanUpLeft -> "panUpLeft".
func Pan(dir PanDirection) Command {
	return Command{Verb: "pan" + string(dir)}
}

// SubmitUpdateRequest wraps a serialised ViewState. A single quote can only
// occur inside a JSON string, so it is rewritten as \u0027 to keep the
// quoted payload intact.
func SubmitUpdateRequest(viewJSON []byte) Command {
	payload := strings.ReplaceAll(string(viewJSON), "'", `\u0027`)
	return Command{Verb: VerbSubmit, Args: []string{payload}}
}

// ParseCommand parses an outbound command line and checks its arity.
func ParseCommand(line string) (Command, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return Command{}, errors.InvalidCommand(line, "empty command")
	}

	verb, rest, _ := strings.Cut(line, " ")
	want, ok := arity[verb]
	if !ok {
		return Command{}, errors.InvalidCommand(line, "unknown verb '"+verb+"'")
	}

	if want == -1 {
		payload := strings.TrimSpace(rest)
		if len(payload) < 2 || payload[0] != '\'' || payload[len(payload)-1] != '\'' {
			return Command{}, errors.InvalidCommand(line, verb+" takes one quoted payload")
		}
		return Command{Verb: verb, Args: []string{payload[1 : len(payload)-1]}}, nil
	}

	args := strings.Fields(rest)
	if len(args) != want {
		return Command{}, errors.InvalidCommand(line,
			verb+" takes "+strconv.Itoa(want)+" arguments, got "+strconv.Itoa(len(args)))
	}
	for _, a := range args {
		if _, err := strconv.ParseFloat(a, 64); err != nil {
			return Command{}, errors.InvalidCommand(line, "argument '"+a+"' is not a number")
		}
	}
	if len(args) == 0 {
		args = nil
	}
	return Command{Verb: verb, Args: args}, nil
}

// Verbs returns every outbound verb.
func Verbs() []string {
	out := make([]string, 0, len(arity))
	for v := range arity {
		out = append(out, v)
	}
	return out
}
