package models

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/grovetools/mviewer/errors"
)

// DisplayMode selects between a single gray plane and three color planes.
type DisplayMode string

const (
	DisplayColor     DisplayMode = "color"
	DisplayGrayscale DisplayMode = "grayscale"
)

// Plane is a color channel of the displayed image.
type Plane string

const (
	PlaneBlue  Plane = "blue"
	PlaneGreen Plane = "green"
	PlaneRed   Plane = "red"
	PlaneGray  Plane = "gray"
)

// Index returns the position of the plane in a PickResult and in the
// header<N>.html fragments. Gray shares index 0 with blue.
func (p Plane) Index() int {
	switch p {
	case PlaneGreen:
		return 1
	case PlaneRed:
		return 2
	default:
		return 0
	}
}

// ColorPlanes lists the planes of a color image in index order.
func ColorPlanes() []Plane {
	return []Plane{PlaneBlue, PlaneGreen, PlaneRed}
}

// FileInfo describes one FITS image plane. Keys other than fits_file
// (color_table, stretch_min, ...) are carried in Extra.
type FileInfo struct {
	FITSFile string                 `mapstructure:"fits_file"`
	Extra    map[string]interface{} `mapstructure:",remain"`
}

func (f *FileInfo) wire() map[string]interface{} {
	out := copyMap(f.Extra)
	if out == nil {
		out = map[string]interface{}{}
	}
	out["fits_file"] = f.FITSFile
	return out
}

// ViewState is the full view configuration document (view.json).
// Top-level keys the client does not model are kept in Extra and sent back
// unchanged on submit.
type ViewState struct {
	DisplayMode DisplayMode            `mapstructure:"display_mode"`
	GrayFile    *FileInfo              `mapstructure:"gray_file"`
	BlueFile    *FileInfo              `mapstructure:"blue_file"`
	GreenFile   *FileInfo              `mapstructure:"green_file"`
	RedFile     *FileInfo              `mapstructure:"red_file"`
	XMin        float64                `mapstructure:"xmin"`
	YMin        float64                `mapstructure:"ymin"`
	Factor      float64                `mapstructure:"factor"`
	Overlay     []Overlay              `mapstructure:"-"`
	Extra       map[string]interface{} `mapstructure:",remain"`
}

// DecodeViewState reads a view.json document.
func DecodeViewState(r io.Reader) (*ViewState, error) {
	var raw map[string]interface{}
	if err := readObject(r, &raw); err != nil {
		return nil, err
	}
	return ViewStateFromMap(raw)
}

// ViewStateFromMap builds a ViewState from a generic JSON object.
func ViewStateFromMap(raw map[string]interface{}) (*ViewState, error) {
	fields := copyMap(raw)
	rawOverlays, _ := fields["overlay"].([]interface{})
	delete(fields, "overlay")

	vs := &ViewState{}
	if err := weakDecode(fields, vs); err != nil {
		return nil, err
	}

	for i, item := range rawOverlays {
		obj, ok := item.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("overlay %d is not an object", i)
		}
		o, err := DecodeOverlay(obj)
		if err != nil {
			return nil, fmt.Errorf("overlay %d: %w", i, err)
		}
		vs.Overlay = append(vs.Overlay, o)
	}
	return vs, nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (v *ViewState) UnmarshalJSON(data []byte) error {
	var raw map[string]interface{}
	if err := readBytes(data, &raw); err != nil {
		return err
	}
	decoded, err := ViewStateFromMap(raw)
	if err != nil {
		return err
	}
	*v = *decoded
	return nil
}

// MarshalJSON renders the canonical form: object keys sorted, overlays in
// order, visible as 0/1.
func (v ViewState) MarshalJSON() ([]byte, error) {
	out := copyMap(v.Extra)
	if out == nil {
		out = map[string]interface{}{}
	}
	out["display_mode"] = string(v.DisplayMode)
	for key, file := range map[string]*FileInfo{
		"gray_file":  v.GrayFile,
		"blue_file":  v.BlueFile,
		"green_file": v.GreenFile,
		"red_file":   v.RedFile,
	} {
		if file != nil {
			out[key] = file.wire()
		}
	}
	out["xmin"] = v.XMin
	out["ymin"] = v.YMin
	out["factor"] = v.Factor

	overlays := make([]map[string]interface{}, 0, len(v.Overlay))
	for _, o := range v.Overlay {
		overlays = append(overlays, o.Wire())
	}
	out["overlay"] = overlays

	return json.Marshal(out)
}

// Validate checks that the populated image files match display_mode.
func (v *ViewState) Validate() error {
	switch v.DisplayMode {
	case DisplayGrayscale:
		if v.GrayFile == nil {
			return invalidView("grayscale view has no gray_file")
		}
	case DisplayColor:
		if v.BlueFile == nil || v.GreenFile == nil || v.RedFile == nil {
			return invalidView("color view needs blue_file, green_file and red_file")
		}
	default:
		return invalidView(fmt.Sprintf("unknown display_mode %q", v.DisplayMode))
	}
	return nil
}

func invalidView(reason string) error {
	return errors.New(errors.ErrCodeInvalidViewState, reason)
}

// PlaneFile returns the image file shown for a plane. Grayscale views return
// gray_file for every plane.
func (v *ViewState) PlaneFile(p Plane) *FileInfo {
	if v.DisplayMode == DisplayGrayscale {
		return v.GrayFile
	}
	switch p {
	case PlaneGreen:
		return v.GreenFile
	case PlaneRed:
		return v.RedFile
	default:
		return v.BlueFile
	}
}

// Planes returns the planes a viewer can select for this view.
func (v *ViewState) Planes() []Plane {
	if v.DisplayMode == DisplayGrayscale {
		return []Plane{PlaneGray}
	}
	return ColorPlanes()
}

// Clone returns a copy of v that can be changed without affecting v. The
// overlay records themselves are shared; they are replaced, never edited.
func (v *ViewState) Clone() *ViewState {
	out := *v
	out.GrayFile = v.GrayFile.clone()
	out.BlueFile = v.BlueFile.clone()
	out.GreenFile = v.GreenFile.clone()
	out.RedFile = v.RedFile.clone()
	out.Overlay = append([]Overlay(nil), v.Overlay...)
	out.Extra = copyMap(v.Extra)
	return &out
}

func (f *FileInfo) clone() *FileInfo {
	if f == nil {
		return nil
	}
	return &FileInfo{FITSFile: f.FITSFile, Extra: copyMap(f.Extra)}
}
