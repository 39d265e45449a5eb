// Copyright 2023 The go-thermal Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package flirtest implements a fake exiftool so the rest of the module
// can be exercised without the tool or a real radiometric JPEG.
package flirtest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/color"

	"golang.org/x/image/tiff"

	"github.com/go-thermal/flir/exiftool"
	"github.com/go-thermal/flir/radiometry"
)

// Calibration of the synthetic camera. The constants are in the typical
// range of a real FLIR camera/lens combination.
var Planck = radiometry.Planck{R1: 14906.4, R2: 0.0424, B: 1428.6, F: 1.0, O: -7340.0}

// Runner is a fake exiftool.Runner. Whatever file path it is asked about,
// it answers with its synthetic metadata and raw thermal block.
type Runner struct {
	Meta     exiftool.Metadata
	RawBlock []byte

	// CopiedTags records CopyTags invocations as [src, dst] pairs.
	CopiedTags [][2]string
}

// New returns a Runner describing a w x h synthetic scene: a smooth
// left-to-right count ramp from 7600 to 9400, roughly -10°C to 60°C with
// the default calibration.
func New(w, h int) *Runner {
	raw := image.NewGray16(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			count := 7600 + 1800*x/max(w-1, 1)
			raw.SetGray16(x, y, color.Gray16{Y: uint16(count)})
		}
	}
	return FromRaw(raw)
}

// FromRaw returns a Runner serving the given raw counts with the default
// calibration, encoded the way FLIR cameras most commonly do: as an
// embedded little-endian TIFF.
func FromRaw(raw *image.Gray16) *Runner {
	b := raw.Bounds()
	blob := bytes.Buffer{}
	if err := tiff.Encode(&blob, raw, nil); err != nil {
		panic(err) // Encoding Gray16 to TIFF cannot fail.
	}
	return &Runner{
		Meta: exiftool.Metadata{
			"Model":                        "FLIR T540 (fake)",
			"RawThermalImageType":          "TIFF",
			"RawThermalImageWidth":         float64(b.Dx()),
			"RawThermalImageHeight":        float64(b.Dy()),
			"PlanckR1":                     Planck.R1,
			"PlanckR2":                     Planck.R2,
			"PlanckB":                      Planck.B,
			"PlanckF":                      Planck.F,
			"PlanckO":                      Planck.O,
			"Emissivity":                   0.95,
			"ObjectDistance":               5.0,
			"RelativeHumidity":             0.5,
			"ReflectedApparentTemperature": 20.0,
			"AtmosphericTemperature":       20.0,
		},
		RawBlock: blob.Bytes(),
	}
}

// Run implements exiftool.Runner.
func (r *Runner) Run(ctx context.Context, args ...string) ([]byte, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("flirtest: no arguments")
	}
	switch args[0] {
	case "-j":
		out, err := json.Marshal([]exiftool.Metadata{r.Meta})
		if err != nil {
			return nil, err
		}
		return out, nil
	case "-b":
		if len(args) < 2 || args[1] != "-RawThermalImage" {
			return nil, fmt.Errorf("flirtest: unknown binary tag %v", args[1:])
		}
		return r.RawBlock, nil
	case "-tagsfromfile":
		r.CopiedTags = append(r.CopiedTags, [2]string{args[1], args[len(args)-1]})
		return nil, nil
	}
	return nil, fmt.Errorf("flirtest: unexpected invocation %v", args)
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
