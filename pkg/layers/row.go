// Package layers maps the overlay list of a view state to an editable,
// reorderable table of rows and back.
package layers

import (
	"fmt"

	"github.com/grovetools/mviewer/pkg/coords"
	"github.com/grovetools/mviewer/pkg/models"
)

// Field names a per-row editable control. The values match the overlay
// record keys.
type Field string

const (
	FieldCoordSys Field = "coord_sys"
	FieldSymType  Field = "sym_type"
	FieldDataType Field = "data_type"
	FieldDataFile Field = "data_file"
	FieldDataCol  Field = "data_col"
	FieldDataRef  Field = "data_ref"
	FieldSymSize  Field = "sym_size"
	FieldText     Field = "text"
)

// selectFields are dropdowns; textFields are free text.
var (
	selectFields = map[models.OverlayType][]Field{
		models.OverlayGrid:    {FieldCoordSys},
		models.OverlayCatalog: {FieldSymType, FieldDataType},
		models.OverlayMark:    {FieldSymType},
	}
	textFields = map[models.OverlayType][]Field{
		models.OverlayCatalog:   {FieldDataFile, FieldDataCol, FieldDataRef, FieldSymSize},
		models.OverlayImageInfo: {FieldDataFile},
		models.OverlayMark:      {FieldSymSize},
		models.OverlayLabel:     {FieldText},
	}
)

// typeLabels are the names shown in the TYPE column.
var typeLabels = map[models.OverlayType]string{
	models.OverlayGrid:      "GRID",
	models.OverlayCatalog:   "SOURCE TABLE",
	models.OverlayImageInfo: "IMAGE OUTLINES",
	models.OverlayMark:      "MARK",
	models.OverlayLabel:     "LABEL",
}

// Row is the in-memory model of one overlay in the layer table. Only the
// fields that apply to Type are meaningful.
type Row struct {
	Type    models.OverlayType
	Visible bool
	Color   string

	CoordSys models.CoordSys
	SymType  models.SymbolType
	DataType models.DataType

	DataFile string
	DataCol  string
	DataRef  string
	SymSize  string
	Text     string

	// Lat and Lon are not editable; Location renders them.
	Lat float64
	Lon float64

	// Locked rows carry a record of unknown type through unchanged.
	Locked bool

	source models.Overlay
}

// Location is the read-only position shown for mark and label rows.
func (r *Row) Location() string {
	switch r.Type {
	case models.OverlayMark, models.OverlayLabel:
		return coords.Location(string(r.CoordSys), r.Lat, r.Lon)
	}
	return ""
}

// TypeLabel returns the TYPE column text.
func (r *Row) TypeLabel() string {
	if l, ok := typeLabels[r.Type]; ok {
		return l
	}
	return string(r.Type)
}

// SelectFields lists the dropdowns available on this row.
func (r *Row) SelectFields() []Field {
	if r.Locked {
		return nil
	}
	return selectFields[r.Type]
}

// TextFields lists the free-text inputs available on this row.
func (r *Row) TextFields() []Field {
	if r.Locked {
		return nil
	}
	return textFields[r.Type]
}

// Options returns the allowed values for a dropdown field.
func Options(f Field) []string {
	var out []string
	switch f {
	case FieldCoordSys:
		for _, v := range models.CoordSystems() {
			out = append(out, string(v))
		}
	case FieldSymType:
		for _, v := range models.SymbolTypes() {
			out = append(out, string(v))
		}
	case FieldDataType:
		for _, v := range models.DataTypes() {
			out = append(out, string(v))
		}
	}
	return out
}

// OptionLabel returns the display label of a dropdown value.
func OptionLabel(f Field, value string) string {
	switch f {
	case FieldCoordSys:
		return models.CoordSys(value).Label()
	case FieldSymType:
		return models.SymbolType(value).Label()
	case FieldDataType:
		return models.DataType(value).Label()
	}
	return value
}

// rowFromOverlay builds the row for one record. ok is false for records of
// unknown type.
func rowFromOverlay(o models.Overlay) (Row, bool) {
	style := o.Styling()
	row := Row{
		Type:    o.Type(),
		Visible: style.Visible,
		Color:   style.Color,
		source:  o,
	}

	switch rec := o.(type) {
	case *models.Grid:
		row.CoordSys = rec.CoordSys
	case *models.Catalog:
		row.DataFile = rec.DataFile
		row.DataCol = rec.DataCol
		row.DataRef = rec.DataRef
		row.DataType = rec.DataType
		row.SymType = rec.SymType
		row.SymSize = rec.SymSize
	case *models.ImageInfo:
		row.DataFile = rec.DataFile
	case *models.Mark:
		row.CoordSys = rec.CoordSys
		row.Lat = rec.Lat
		row.Lon = rec.Lon
		row.SymType = rec.SymType
		row.SymSize = rec.SymSize
	case *models.Label:
		row.CoordSys = rec.CoordSys
		row.Lat = rec.Lat
		row.Lon = rec.Lon
		row.Text = rec.Text
	default:
		row.Locked = true
		return row, false
	}
	return row, true
}

// overlay builds a fresh record from the row's current values. Keys the row
// does not model are copied from the record it was loaded from.
func (r *Row) overlay() models.Overlay {
	style := models.Style{Color: r.Color, Visible: r.Visible}

	switch r.Type {
	case models.OverlayGrid:
		return &models.Grid{Style: style, CoordSys: r.CoordSys, Extra: r.extra()}
	case models.OverlayCatalog:
		return &models.Catalog{
			Style:    style,
			DataFile: r.DataFile,
			DataCol:  r.DataCol,
			DataRef:  r.DataRef,
			DataType: r.DataType,
			SymType:  r.SymType,
			SymSize:  r.SymSize,
			Extra:    r.extra(),
		}
	case models.OverlayImageInfo:
		return &models.ImageInfo{Style: style, DataFile: r.DataFile, Extra: r.extra()}
	case models.OverlayMark:
		return &models.Mark{
			Style:    style,
			CoordSys: r.CoordSys,
			Lat:      r.Lat,
			Lon:      r.Lon,
			SymType:  r.SymType,
			SymSize:  r.SymSize,
			Extra:    r.extra(),
		}
	case models.OverlayLabel:
		return &models.Label{
			Style:    style,
			CoordSys: r.CoordSys,
			Lat:      r.Lat,
			Lon:      r.Lon,
			Text:     r.Text,
			Extra:    r.extra(),
		}
	}
	return r.source
}

func (r *Row) extra() map[string]interface{} {
	var src map[string]interface{}
	switch rec := r.source.(type) {
	case *models.Grid:
		src = rec.Extra
	case *models.Catalog:
		src = rec.Extra
	case *models.ImageInfo:
		src = rec.Extra
	case *models.Mark:
		src = rec.Extra
	case *models.Label:
		src = rec.Extra
	}
	if src == nil {
		return nil
	}
	out := make(map[string]interface{}, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}

// Cells renders the row for the six-column layer table:
// show, type, source, symbol, scale, color.
func (r *Row) Cells() [6]string {
	show := "[ ]"
	if r.Visible {
		show = "[x]"
	}
	cells := [6]string{show, r.TypeLabel(), "", "", "", r.Color}

	switch r.Type {
	case models.OverlayGrid:
		cells[2] = r.CoordSys.Label()
	case models.OverlayCatalog:
		cells[2] = fmt.Sprintf("File: %s  Column: %s", r.DataFile, r.DataCol)
		cells[3] = fmt.Sprintf("Symbol: %s  Size: %s", r.SymType.Label(), r.SymSize)
		cells[4] = fmt.Sprintf("Type: %s  Ref val: %s", r.DataType.Label(), r.DataRef)
	case models.OverlayImageInfo:
		cells[2] = fmt.Sprintf("File: %s", r.DataFile)
	case models.OverlayMark:
		cells[2] = r.Location()
		cells[3] = r.SymType.Label()
		cells[4] = r.SymSize
	case models.OverlayLabel:
		cells[2] = r.Location()
		cells[3] = r.Text
	default:
		cells[2] = "(not editable)"
	}
	return cells
}
