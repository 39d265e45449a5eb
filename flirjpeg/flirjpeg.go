// Copyright 2023 The go-thermal Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package flirjpeg loads radiometric JPEGs produced by FLIR thermal
// cameras.
//
// A radiometric JPEG carries, next to the visible picture, a raw 16 bits
// sensor count block plus the calibration constants of the camera/lens
// combination. Loading yields the raw count grid and the calibration; the
// temperature grid is computed on demand through package radiometry.
package flirjpeg

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"math"
	"strings"

	"golang.org/x/image/tiff"

	"github.com/go-thermal/flir/exiftool"
	"github.com/go-thermal/flir/radiometry"
	"github.com/go-thermal/flir/thermogram"
)

// Options overrides ambient parameters recorded in the file. NaN means
// keeping the file's value; see DefaultOptions().
type Options struct {
	Emissivity       float64
	ObjectDistance   float64 // Meters.
	RelativeHumidity float64 // Fraction in [0, 1].
}

// DefaultOptions returns Options taking every parameter from the file.
func DefaultOptions() Options {
	n := math.NaN()
	return Options{Emissivity: n, ObjectDistance: n, RelativeHumidity: n}
}

// Image is one loaded radiometric JPEG.
type Image struct {
	Path      string
	Meta      exiftool.Metadata
	Params    radiometry.Params
	RawFormat string        // Encoding of the embedded raw block, "tiff" or "png".
	Raw       *image.Gray16 // Raw sensor counts, immutable once loaded.

	temps *thermogram.Grid
}

// Load extracts the calibration metadata and the raw thermal block of the
// radiometric JPEG at path. Not goroutine safe while loading; the returned
// Image is immutable except for the lazily computed temperature grid.
func Load(ctx context.Context, tool *exiftool.Tool, path string, opts Options) (*Image, error) {
	md, err := tool.Metadata(ctx, path)
	if err != nil {
		return nil, err
	}
	params, err := paramsFromMetadata(md)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if !math.IsNaN(opts.Emissivity) {
		params.Emissivity = opts.Emissivity
	}
	if !math.IsNaN(opts.ObjectDistance) {
		params.ObjectDistance = opts.ObjectDistance
	}
	if !math.IsNaN(opts.RelativeHumidity) {
		params.RelativeHumidity = opts.RelativeHumidity
	}
	if err := params.Valid(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	format, ok := md.String("RawThermalImageType")
	if !ok {
		return nil, fmt.Errorf("%s: no RawThermalImageType tag: %w", path, radiometry.ErrMissingCalibration)
	}
	format = strings.ToLower(format)
	blob, err := tool.Binary(ctx, path, "RawThermalImage")
	if err != nil {
		return nil, err
	}
	raw, err := decodeRaw(blob, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if w, wok := md.Int("RawThermalImageWidth"); wok {
		if h, hok := md.Int("RawThermalImageHeight"); hok {
			if b := raw.Bounds(); b.Dx() != w || b.Dy() != h {
				return nil, fmt.Errorf("%s: raw block is %dx%d, metadata says %dx%d", path, b.Dx(), b.Dy(), w, h)
			}
		}
	}
	return &Image{Path: path, Meta: md, Params: params, RawFormat: format, Raw: raw}, nil
}

// paramsFromMetadata assembles radiometry.Params from the FLIR tag set.
// The five Planck constants are mandatory; ambient parameters and
// attenuation coefficients fall back to defaults when absent. exiftool -n
// reports apparent temperatures in °C and humidity as a fraction.
func paramsFromMetadata(md exiftool.Metadata) (radiometry.Params, error) {
	pl := radiometry.Planck{}
	for _, c := range []struct {
		key string
		dst *float64
	}{
		{"PlanckR1", &pl.R1},
		{"PlanckR2", &pl.R2},
		{"PlanckB", &pl.B},
		{"PlanckF", &pl.F},
		{"PlanckO", &pl.O},
	} {
		v, ok := md.Float(c.key)
		if !ok {
			return radiometry.Params{}, fmt.Errorf("no %s tag: %w", c.key, radiometry.ErrMissingCalibration)
		}
		*c.dst = v
	}
	p := radiometry.DefaultParams(pl)
	if v, ok := md.Float("Emissivity"); ok {
		p.Emissivity = v
	}
	if v, ok := md.Float("ObjectDistance"); ok {
		p.ObjectDistance = v
	}
	if v, ok := md.Float("RelativeHumidity"); ok {
		// exiftool -n emits the tag as a fraction. A few cameras store a
		// percentage instead; exiftool normalizes those the same way.
		if v > 2 {
			v /= 100
		}
		p.RelativeHumidity = v
	}
	if v, ok := md.Float("ReflectedApparentTemperature"); ok {
		p.ReflectedTemp = radiometry.CToK(v)
	}
	if v, ok := md.Float("AtmosphericTemperature"); ok {
		p.AtmosphericTemp = radiometry.CToK(v)
	}
	if v, ok := md.Float("AtmosphericTransX"); ok {
		p.AtmX = v
	}
	if v, ok := md.Float("AtmosphericTransAlpha1"); ok {
		p.AtmAlpha1 = v
	}
	if v, ok := md.Float("AtmosphericTransAlpha2"); ok {
		p.AtmAlpha2 = v
	}
	if v, ok := md.Float("AtmosphericTransBeta1"); ok {
		p.AtmBeta1 = v
	}
	if v, ok := md.Float("AtmosphericTransBeta2"); ok {
		p.AtmBeta2 = v
	}
	return p, nil
}

// decodeRaw decodes the embedded raw block into 16 bits counts.
func decodeRaw(blob []byte, format string) (*image.Gray16, error) {
	switch format {
	case "tiff":
		img, err := tiff.Decode(bytes.NewReader(blob))
		if err != nil {
			return nil, fmt.Errorf("decoding raw tiff block: %w", err)
		}
		return toGray16(img), nil
	case "png":
		img, err := png.Decode(bytes.NewReader(blob))
		if err != nil {
			return nil, fmt.Errorf("decoding raw png block: %w", err)
		}
		g := toGray16(img)
		// FLIR stores the counts little-endian inside the big-endian PNG
		// stream, so every 16 bits sample arrives byte-swapped.
		swapPix(g)
		return g, nil
	default:
		return nil, fmt.Errorf("unsupported raw thermal format %q", format)
	}
}

func toGray16(img image.Image) *image.Gray16 {
	if g, ok := img.(*image.Gray16); ok {
		return g
	}
	g := image.NewGray16(img.Bounds())
	draw.Draw(g, g.Bounds(), img, img.Bounds().Min, draw.Src)
	return g
}

func swapPix(g *image.Gray16) {
	for i := 0; i < len(g.Pix)-1; i += 2 {
		g.Pix[i], g.Pix[i+1] = g.Pix[i+1], g.Pix[i]
	}
}

// Temps converts the raw counts to temperatures. The conversion runs once;
// the grid is cached and immutable.
func (i *Image) Temps() (*thermogram.Grid, error) {
	if i.temps == nil {
		g, err := radiometry.Convert(i.Raw, i.Params)
		if err != nil {
			return nil, err
		}
		i.temps = g
	}
	return i.temps, nil
}

// Stats returns the temperature distribution summary of the image.
func (i *Image) Stats() (thermogram.Stats, error) {
	g, err := i.Temps()
	if err != nil {
		return thermogram.Stats{}, err
	}
	return g.Stats(), nil
}

// Camera describes the source camera, when recorded.
func (i *Image) Camera() string {
	model, _ := i.Meta.String("CameraModel")
	if model == "" {
		model, _ = i.Meta.String("Model")
	}
	if lens, ok := i.Meta.String("CameraPartNumber"); ok {
		return model + " (" + lens + ")"
	}
	return model
}
