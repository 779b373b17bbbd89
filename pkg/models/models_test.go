package models

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/grovetools/mviewer/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const colorView = `{
  "display_mode": "color",
  "image_file": "m101.png",
  "canvas_width": 1024,
  "blue_file":  {"fits_file": "b.fits", "color_table": 0, "stretch_min": "-1s"},
  "green_file": {"fits_file": "g.fits"},
  "red_file":   {"fits_file": "r.fits"},
  "xmin": 100, "ymin": 50, "factor": 2,
  "overlay": [
    {"type": "grid", "coord_sys": "gal", "color": "#ff0000", "visible": 1},
    {"type": "catalog", "data_file": "2mass.tbl", "data_col": "j_m", "data_ref": 16,
     "data_type": "mag", "sym_type": "circle", "sym_size": 1.5, "sym_sides": 0,
     "sym_rotation": 0, "coord_sys": "Equ J2000", "color": "#00ff00", "visible": true},
    {"type": "contour", "levels": [1, 2, 3], "color": "#ffffff", "visible": 1},
    {"type": "imginfo", "data_file": "images.tbl", "color": "#0000ff", "visible": 0},
    {"type": "mark", "coord_sys": "eqj2000", "lat": -1.5, "lon": "210.8", "sym_type": "box",
     "sym_size": "3", "color": "#ffff00", "visible": false},
    {"type": "label", "coord_sys": "eqj2000", "lat": 54.3, "lon": 210.8, "text": "M101",
     "color": "#ffffff", "visible": "1"}
  ]
}`

func TestDecodeViewState(t *testing.T) {
	vs, err := DecodeViewState(strings.NewReader(colorView))
	require.NoError(t, err)
	require.NoError(t, vs.Validate())

	assert.Equal(t, DisplayColor, vs.DisplayMode)
	assert.Equal(t, "g.fits", vs.PlaneFile(PlaneGreen).FITSFile)
	assert.Equal(t, 100.0, vs.XMin)
	assert.Equal(t, 2.0, vs.Factor)
	assert.Equal(t, json.Number("1024"), vs.Extra["canvas_width"])
	assert.Equal(t, "-1s", vs.BlueFile.Extra["stretch_min"])
	require.Len(t, vs.Overlay, 6)

	grid := vs.Overlay[0].(*Grid)
	assert.Equal(t, CoordGalactic, grid.CoordSys)
	assert.True(t, grid.Visible)

	cat := vs.Overlay[1].(*Catalog)
	assert.Equal(t, "16", cat.DataRef)
	assert.Equal(t, "1.5", cat.SymSize)
	assert.Equal(t, SymbolCircle, cat.SymType)
	assert.Equal(t, json.Number("0"), cat.Extra["sym_sides"])
	assert.True(t, cat.Visible)

	unknown := vs.Overlay[2].(*Unknown)
	assert.Equal(t, OverlayType("contour"), unknown.Type())
	assert.Equal(t, "#ffffff", unknown.Styling().Color)
	assert.True(t, unknown.Styling().Visible)

	assert.False(t, vs.Overlay[3].Styling().Visible)

	mark := vs.Overlay[4].(*Mark)
	assert.Equal(t, -1.5, mark.Lat)
	assert.Equal(t, 210.8, mark.Lon)
	assert.False(t, mark.Visible)

	assert.True(t, vs.Overlay[5].(*Label).Visible)
}

func TestCloneIsIndependent(t *testing.T) {
	vs, err := DecodeViewState(strings.NewReader(colorView))
	require.NoError(t, err)
	before, err := json.Marshal(vs)
	require.NoError(t, err)

	c := vs.Clone()
	c.Overlay = c.Overlay[:1]
	c.BlueFile.FITSFile = "other.fits"
	c.BlueFile.Extra["stretch_min"] = "2s"
	c.Extra["canvas_width"] = 1

	after, err := json.Marshal(vs)
	require.NoError(t, err)
	assert.JSONEq(t, string(before), string(after))
	assert.Same(t, vs.Overlay[0], c.Overlay[0])
}

func TestViewStateRoundTrip(t *testing.T) {
	vs, err := DecodeViewState(strings.NewReader(colorView))
	require.NoError(t, err)

	data, err := json.Marshal(vs)
	require.NoError(t, err)

	var back map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &back))
	var orig map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(colorView), &orig))

	// Visibility is normalised to 0/1 and numeric text to numbers; everything
	// else survives unchanged.
	overlays := orig["overlay"].([]interface{})
	overlays[1].(map[string]interface{})["visible"] = 1.0
	overlays[4].(map[string]interface{})["visible"] = 0.0
	overlays[4].(map[string]interface{})["lon"] = 210.8
	overlays[4].(map[string]interface{})["sym_size"] = 3.0
	overlays[5].(map[string]interface{})["visible"] = 1.0

	if diff := cmp.Diff(orig, back); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestMarshalIsCanonical(t *testing.T) {
	vs, err := DecodeViewState(strings.NewReader(colorView))
	require.NoError(t, err)

	first, err := json.Marshal(vs)
	require.NoError(t, err)
	second, err := json.Marshal(vs)
	require.NoError(t, err)
	assert.Equal(t, string(first), string(second))
	assert.True(t, strings.HasPrefix(string(first), `{"blue_file":`))
}

func TestViewStateValidate(t *testing.T) {
	tests := []struct {
		name    string
		view    ViewState
		wantErr bool
	}{
		{
			name: "grayscale with gray file",
			view: ViewState{DisplayMode: DisplayGrayscale, GrayFile: &FileInfo{FITSFile: "a.fits"}},
		},
		{
			name:    "grayscale without gray file",
			view:    ViewState{DisplayMode: DisplayGrayscale, BlueFile: &FileInfo{}},
			wantErr: true,
		},
		{
			name:    "color missing red",
			view:    ViewState{DisplayMode: DisplayColor, BlueFile: &FileInfo{}, GreenFile: &FileInfo{}},
			wantErr: true,
		},
		{
			name:    "unknown mode",
			view:    ViewState{DisplayMode: "sepia"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.view.Validate()
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.ErrCodeInvalidViewState))
		})
	}
}

func TestGrayscalePlaneFile(t *testing.T) {
	vs := &ViewState{DisplayMode: DisplayGrayscale, GrayFile: &FileInfo{FITSFile: "gray.fits"}}
	assert.Equal(t, "gray.fits", vs.PlaneFile(PlaneRed).FITSFile)
	assert.Equal(t, []Plane{PlaneGray}, vs.Planes())
}

func TestPlaneIndex(t *testing.T) {
	assert.Equal(t, 0, PlaneBlue.Index())
	assert.Equal(t, 1, PlaneGreen.Index())
	assert.Equal(t, 2, PlaneRed.Index())
	assert.Equal(t, 0, PlaneGray.Index())
}

func TestWireNumericText(t *testing.T) {
	c := &Catalog{DataRef: "16", SymSize: "big", Style: Style{Visible: true}}
	w := c.Wire()
	assert.Equal(t, json.Number("16"), w["data_ref"])
	assert.Equal(t, "big", w["sym_size"])
	assert.Equal(t, 1, w["visible"])
	assert.Equal(t, "catalog", w["type"])

	// "Inf" parses as a float but is not a JSON number.
	m := &Mark{SymSize: "Inf"}
	assert.Equal(t, "Inf", m.Wire()["sym_size"])
}

func TestDecodePickResult(t *testing.T) {
	t.Run("pads short arrays", func(t *testing.T) {
		r, err := DecodePickResult(strings.NewReader(`[{"fluxref": "12.5", "xref": 5, "npixel": 1234567}]`))
		require.NoError(t, err)
		assert.Equal(t, 12.5, r[0].FluxRef)
		assert.Equal(t, 5.0, r.ForPlane(PlaneBlue).XRef)
		assert.Equal(t, 1234567.0, r[0].NPixel)
		assert.Equal(t, PlaneStats{}, r.ForPlane(PlaneRed))
	})

	t.Run("rejects more than three planes", func(t *testing.T) {
		_, err := DecodePickResult(strings.NewReader(`[{},{},{},{}]`))
		assert.Error(t, err)
	})

	t.Run("rejects non-array", func(t *testing.T) {
		_, err := DecodePickResult(strings.NewReader(`{"fluxref": 1}`))
		assert.Error(t, err)
	})
}

func TestEnumLabels(t *testing.T) {
	assert.Equal(t, "Equ J2000", CoordEquJ2000.Label())
	assert.Equal(t, "Equ J2000", CoordSys("Equ J2000").Label())
	assert.False(t, CoordSys("Equ J2000").Valid())
	assert.Equal(t, "Septagon", SymbolSeptagon.Label())
	assert.Equal(t, "Log*log", DataLogLog.Label())
	assert.Len(t, SymbolTypes(), 9)
	assert.Len(t, CoordSystems(), 5)
	assert.Len(t, DataTypes(), 4)
}
