// Copyright 2023 The go-thermal Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package thermogram holds per-pixel temperature grids and their
// renderings.
package thermogram

import (
	"image"
	"image/color"
	"math"
	"sort"
)

// Grid is a two-dimensional grid of temperatures in Kelvin, one per pixel.
// It implements image.Image by scaling its dynamic range over 16 bits gray,
// so it can be handed directly to the png and tiff encoders.
//
// A Grid is filled once by its producer, which calls UpdateStats(), and is
// immutable afterwards.
type Grid struct {
	Rect  image.Rectangle
	Temps []float64 // Row-major.
	Min   float64
	Max   float64
}

// NewGrid returns an all-zero grid covering r.
func NewGrid(r image.Rectangle) *Grid {
	return &Grid{Rect: r, Temps: make([]float64, r.Dx()*r.Dy())}
}

func (g *Grid) ColorModel() color.Model {
	return color.Gray16Model
}

func (g *Grid) Bounds() image.Rectangle {
	return g.Rect
}

// At renders the pixel over the grid dynamic range, coldest mapping to
// black and hottest to white.
func (g *Grid) At(x, y int) color.Color {
	return color.Gray16{g.Gray16At(x, y)}
}

func (g *Grid) Gray16At(x, y int) uint16 {
	delta := g.Max - g.Min
	if delta == 0 {
		return 0
	}
	return uint16((g.TempAt(x, y) - g.Min) * 65535 / delta)
}

// TempAt returns the temperature in Kelvin at (x, y).
func (g *Grid) TempAt(x, y int) float64 {
	return g.Temps[(y-g.Rect.Min.Y)*g.Rect.Dx()+(x-g.Rect.Min.X)]
}

// SetTempAt is for use by the grid producer only.
func (g *Grid) SetTempAt(x, y int, kelvin float64) {
	g.Temps[(y-g.Rect.Min.Y)*g.Rect.Dx()+(x-g.Rect.Min.X)] = kelvin
}

// UpdateStats recomputes Min and Max after the grid was filled.
func (g *Grid) UpdateStats() {
	g.Min = math.Inf(1)
	g.Max = math.Inf(-1)
	for _, t := range g.Temps {
		if t > g.Max {
			g.Max = t
		}
		if t < g.Min {
			g.Min = t
		}
	}
}

// Render reduces the dynamic range down to 8 bits very naively without
// gamma. dst must have the same bounds as g.
func (g *Grid) Render(dst *image.Gray) {
	delta := g.Max - g.Min
	for y := g.Rect.Min.Y; y < g.Rect.Max.Y; y++ {
		for x := g.Rect.Min.X; x < g.Rect.Max.X; x++ {
			v := uint8(0)
			if delta != 0 {
				v = uint8((g.TempAt(x, y) - g.Min) * 255 / delta)
			}
			dst.Pix[(y-dst.Rect.Min.Y)*dst.Stride+(x-dst.Rect.Min.X)] = v
		}
	}
}

// ToGray16 renders the grid over the full 16 bits range.
func (g *Grid) ToGray16() *image.Gray16 {
	dst := image.NewGray16(g.Rect)
	for y := g.Rect.Min.Y; y < g.Rect.Max.Y; y++ {
		for x := g.Rect.Min.X; x < g.Rect.Max.X; x++ {
			dst.SetGray16(x, y, color.Gray16{g.Gray16At(x, y)})
		}
	}
	return dst
}

// ToCentiK encodes the absolute temperatures as centikelvin counts, the
// format used for temperature file output. Values outside the CentiK range
// are clamped.
func (g *Grid) ToCentiK() *image.Gray16 {
	dst := image.NewGray16(g.Rect)
	for y := g.Rect.Min.Y; y < g.Rect.Max.Y; y++ {
		for x := g.Rect.Min.X; x < g.Rect.Max.X; x++ {
			dst.SetGray16(x, y, color.Gray16{uint16(CentiKFromKelvin(g.TempAt(x, y)))})
		}
	}
	return dst
}

// ToCelsius returns a copy of the grid shifted to Celsius values. The
// result is for export only; the rest of the package expects Kelvin.
func (g *Grid) ToCelsius() *Grid {
	out := NewGrid(g.Rect)
	for i, t := range g.Temps {
		out.Temps[i] = t - 273.15
	}
	out.UpdateStats()
	return out
}

// Equal returns true if both grids hold bit-identical temperatures.
func (g *Grid) Equal(r *Grid) bool {
	if g.Rect != r.Rect {
		return false
	}
	for i, t := range g.Temps {
		if t != r.Temps[i] {
			return false
		}
	}
	return true
}

// Stats summarizes the temperature distribution of a grid, in Kelvin.
type Stats struct {
	Min    float64
	Max    float64
	Mean   float64
	StdDev float64
	Median float64
}

// Stats computes the distribution summary.
func (g *Grid) Stats() Stats {
	s := Stats{Min: g.Min, Max: g.Max}
	n := float64(len(g.Temps))
	if n == 0 {
		return s
	}
	sum := 0.
	for _, t := range g.Temps {
		sum += t
	}
	s.Mean = sum / n
	v := 0.
	for _, t := range g.Temps {
		d := t - s.Mean
		v += d * d
	}
	s.StdDev = math.Sqrt(v / n)
	sorted := make([]float64, len(g.Temps))
	copy(sorted, g.Temps)
	sort.Float64s(sorted)
	if len(sorted)%2 == 1 {
		s.Median = sorted[len(sorted)/2]
	} else {
		s.Median = (sorted[len(sorted)/2-1] + sorted[len(sorted)/2]) / 2
	}
	return s
}
