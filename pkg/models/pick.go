package models

import (
	"fmt"
	"io"
)

// PlaneStats holds the statistics of one plane around the picked point.
// x/y values are plane-local pixels; see coords.Canvas.
type PlaneStats struct {
	FluxRef  float64 `mapstructure:"fluxref" json:"fluxref"`
	SigmaRef float64 `mapstructure:"sigmaref" json:"sigmaref"`
	XRef     float64 `mapstructure:"xref" json:"xref"`
	YRef     float64 `mapstructure:"yref" json:"yref"`
	RARef    float64 `mapstructure:"raref" json:"raref"`
	DecRef   float64 `mapstructure:"decref" json:"decref"`

	FluxMin  float64 `mapstructure:"fluxmin" json:"fluxmin"`
	SigmaMin float64 `mapstructure:"sigmamin" json:"sigmamin"`
	XMin     float64 `mapstructure:"xmin" json:"xmin"`
	YMin     float64 `mapstructure:"ymin" json:"ymin"`
	RAMin    float64 `mapstructure:"ramin" json:"ramin"`
	DecMin   float64 `mapstructure:"decmin" json:"decmin"`

	FluxMax  float64 `mapstructure:"fluxmax" json:"fluxmax"`
	SigmaMax float64 `mapstructure:"sigmamax" json:"sigmamax"`
	XMax     float64 `mapstructure:"xmax" json:"xmax"`
	YMax     float64 `mapstructure:"ymax" json:"ymax"`
	RAMax    float64 `mapstructure:"ramax" json:"ramax"`
	DecMax   float64 `mapstructure:"decmax" json:"decmax"`

	AveFlux float64 `mapstructure:"aveflux" json:"aveflux"`
	RMSFlux float64 `mapstructure:"rmsflux" json:"rmsflux"`
	Radius  float64 `mapstructure:"radius" json:"radius"`
	RadPix  float64 `mapstructure:"radpix" json:"radpix"`
	NPixel  float64 `mapstructure:"npixel" json:"npixel"`
	NNull   float64 `mapstructure:"nnull" json:"nnull"`
}

// PickResult is pick.json: one PlaneStats per plane, indexed by Plane.Index.
type PickResult [3]PlaneStats

// ForPlane returns the statistics for p.
func (r *PickResult) ForPlane(p Plane) PlaneStats {
	return r[p.Index()]
}

// DecodePickResult reads a pick.json document. Shorter arrays are padded with
// zero entries; more than three entries is an error.
func DecodePickResult(r io.Reader) (*PickResult, error) {
	var raw []interface{}
	if err := readObject(r, &raw); err != nil {
		return nil, err
	}
	if len(raw) > 3 {
		return nil, fmt.Errorf("pick result has %d planes, want at most 3", len(raw))
	}

	var result PickResult
	for i, item := range raw {
		if err := weakDecode(item, &result[i]); err != nil {
			return nil, fmt.Errorf("pick plane %d: %w", i, err)
		}
	}
	return &result, nil
}
