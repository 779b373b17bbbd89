package models

import (
	"encoding/json"
	"fmt"
)

// OverlayType is the "type" tag of an overlay record.
type OverlayType string

const (
	OverlayGrid      OverlayType = "grid"
	OverlayCatalog   OverlayType = "catalog"
	OverlayImageInfo OverlayType = "imginfo"
	OverlayMark      OverlayType = "mark"
	OverlayLabel     OverlayType = "label"
)

// Known reports whether t is one of the five overlay kinds the client edits.
func (t OverlayType) Known() bool {
	switch t {
	case OverlayGrid, OverlayCatalog, OverlayImageInfo, OverlayMark, OverlayLabel:
		return true
	}
	return false
}

// Style holds the fields every overlay carries.
type Style struct {
	Color   string `mapstructure:"color"`
	Visible bool   `mapstructure:"visible"`
}

// Overlay is one annotation layer drawn over the image. The concrete type is
// one of Grid, Catalog, ImageInfo, Mark, Label or Unknown.
type Overlay interface {
	Type() OverlayType
	Styling() Style
	// Wire returns the record as it is sent to the backend.
	Wire() map[string]interface{}
}

// Grid draws a coordinate grid.
type Grid struct {
	Style    `mapstructure:",squash"`
	CoordSys CoordSys               `mapstructure:"coord_sys"`
	Extra    map[string]interface{} `mapstructure:",remain"`
}

// Catalog plots symbols from a source table.
type Catalog struct {
	Style    `mapstructure:",squash"`
	DataFile string                 `mapstructure:"data_file"`
	DataCol  string                 `mapstructure:"data_col"`
	DataRef  string                 `mapstructure:"data_ref"`
	DataType DataType               `mapstructure:"data_type"`
	SymType  SymbolType             `mapstructure:"sym_type"`
	SymSize  string                 `mapstructure:"sym_size"`
	Extra    map[string]interface{} `mapstructure:",remain"`
}

// ImageInfo outlines the images listed in a metadata table.
type ImageInfo struct {
	Style    `mapstructure:",squash"`
	DataFile string                 `mapstructure:"data_file"`
	Extra    map[string]interface{} `mapstructure:",remain"`
}

// Mark places a single symbol at a sky position.
type Mark struct {
	Style    `mapstructure:",squash"`
	CoordSys CoordSys               `mapstructure:"coord_sys"`
	Lat      float64                `mapstructure:"lat"`
	Lon      float64                `mapstructure:"lon"`
	SymType  SymbolType             `mapstructure:"sym_type"`
	SymSize  string                 `mapstructure:"sym_size"`
	Extra    map[string]interface{} `mapstructure:",remain"`
}

// Label places text at a sky position.
type Label struct {
	Style    `mapstructure:",squash"`
	CoordSys CoordSys               `mapstructure:"coord_sys"`
	Lat      float64                `mapstructure:"lat"`
	Lon      float64                `mapstructure:"lon"`
	Text     string                 `mapstructure:"text"`
	Extra    map[string]interface{} `mapstructure:",remain"`
}

// Unknown carries a record whose type this client does not model.
// Fields holds every key except "type".
type Unknown struct {
	TypeName string
	Fields   map[string]interface{}
}

func (g *Grid) Type() OverlayType      { return OverlayGrid }
func (c *Catalog) Type() OverlayType   { return OverlayCatalog }
func (i *ImageInfo) Type() OverlayType { return OverlayImageInfo }
func (m *Mark) Type() OverlayType      { return OverlayMark }
func (l *Label) Type() OverlayType     { return OverlayLabel }
func (u *Unknown) Type() OverlayType   { return OverlayType(u.TypeName) }

func (g *Grid) Styling() Style      { return g.Style }
func (c *Catalog) Styling() Style   { return c.Style }
func (i *ImageInfo) Styling() Style { return i.Style }
func (m *Mark) Styling() Style      { return m.Style }
func (l *Label) Styling() Style     { return l.Style }

func (u *Unknown) Styling() Style {
	var s Style
	_ = weakDecode(map[string]interface{}{
		"color":   u.Fields["color"],
		"visible": u.Fields["visible"],
	}, &s)
	return s
}

func (g *Grid) Wire() map[string]interface{} {
	out := base(g, g.Extra)
	out["coord_sys"] = string(g.CoordSys)
	return out
}

func (c *Catalog) Wire() map[string]interface{} {
	out := base(c, c.Extra)
	out["data_file"] = c.DataFile
	out["data_col"] = c.DataCol
	out["data_ref"] = wireText(c.DataRef)
	out["data_type"] = string(c.DataType)
	out["sym_type"] = string(c.SymType)
	out["sym_size"] = wireText(c.SymSize)
	return out
}

func (i *ImageInfo) Wire() map[string]interface{} {
	out := base(i, i.Extra)
	out["data_file"] = i.DataFile
	return out
}

func (m *Mark) Wire() map[string]interface{} {
	out := base(m, m.Extra)
	out["coord_sys"] = string(m.CoordSys)
	out["lat"] = m.Lat
	out["lon"] = m.Lon
	out["sym_type"] = string(m.SymType)
	out["sym_size"] = wireText(m.SymSize)
	return out
}

func (l *Label) Wire() map[string]interface{} {
	out := base(l, l.Extra)
	out["coord_sys"] = string(l.CoordSys)
	out["lat"] = l.Lat
	out["lon"] = l.Lon
	out["text"] = l.Text
	return out
}

func (u *Unknown) Wire() map[string]interface{} {
	out := copyMap(u.Fields)
	if out == nil {
		out = map[string]interface{}{}
	}
	out["type"] = u.TypeName
	return out
}

// base starts a wire record from the backend-only keys, then the common fields.
// visible is always written as 0/1.
func base(o Overlay, extra map[string]interface{}) map[string]interface{} {
	out := copyMap(extra)
	if out == nil {
		out = map[string]interface{}{}
	}
	style := o.Styling()
	out["type"] = string(o.Type())
	out["color"] = style.Color
	out["visible"] = VisibleFlag(style.Visible)
	return out
}

// VisibleFlag converts a visibility checkbox to the integer the backend expects.
func VisibleFlag(v bool) int {
	if v {
		return 1
	}
	return 0
}

// DecodeOverlay builds the typed record for one raw overlay object.
func DecodeOverlay(raw map[string]interface{}) (Overlay, error) {
	fields := copyMap(raw)
	typeName, _ := fields["type"].(string)
	delete(fields, "type")

	var target Overlay
	switch OverlayType(typeName) {
	case OverlayGrid:
		target = &Grid{}
	case OverlayCatalog:
		target = &Catalog{}
	case OverlayImageInfo:
		target = &ImageInfo{}
	case OverlayMark:
		target = &Mark{}
	case OverlayLabel:
		target = &Label{}
	default:
		return &Unknown{TypeName: typeName, Fields: fields}, nil
	}

	if err := weakDecode(fields, target); err != nil {
		return nil, fmt.Errorf("failed to decode %s overlay: %w", typeName, err)
	}
	return target, nil
}

// MarshalOverlays renders overlays in order as a JSON array.
func MarshalOverlays(overlays []Overlay) ([]byte, error) {
	out := make([]map[string]interface{}, 0, len(overlays))
	for _, o := range overlays {
		out = append(out, o.Wire())
	}
	return json.Marshal(out)
}
