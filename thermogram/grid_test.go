// Copyright 2023 The go-thermal Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package thermogram

import (
	"image"
	"math"
	"testing"
)

func makeGrid(r image.Rectangle, temps []float64) *Grid {
	g := NewGrid(r)
	copy(g.Temps, temps)
	g.UpdateStats()
	return g
}

func TestGridStats(t *testing.T) {
	g := makeGrid(image.Rect(0, 0, 2, 2), []float64{290, 300, 310, 320})
	s := g.Stats()
	if s.Min != 290 || s.Max != 320 {
		t.Fatal(s)
	}
	if s.Mean != 305 {
		t.Fatal(s.Mean)
	}
	if s.Median != 305 {
		t.Fatal(s.Median)
	}
	want := math.Sqrt((15*15 + 5*5 + 5*5 + 15*15) / 4.)
	if math.Abs(s.StdDev-want) > 1e-12 {
		t.Fatal(s.StdDev)
	}
}

func TestGridMedianOdd(t *testing.T) {
	g := makeGrid(image.Rect(0, 0, 3, 1), []float64{310, 290, 300})
	if m := g.Stats().Median; m != 300 {
		t.Fatal(m)
	}
}

func TestGridRender(t *testing.T) {
	g := makeGrid(image.Rect(0, 0, 2, 1), []float64{290, 310})
	dst := image.NewGray(g.Bounds())
	g.Render(dst)
	if dst.Pix[0] != 0 || dst.Pix[1] != 255 {
		t.Fatal(dst.Pix)
	}
}

func TestGridRenderFlat(t *testing.T) {
	// A uniform grid has no dynamic range to scale over.
	g := makeGrid(image.Rect(0, 0, 2, 1), []float64{300, 300})
	dst := image.NewGray(g.Bounds())
	g.Render(dst)
	if dst.Pix[0] != 0 || dst.Pix[1] != 0 {
		t.Fatal(dst.Pix)
	}
}

func TestGridImage(t *testing.T) {
	g := makeGrid(image.Rect(0, 0, 2, 1), []float64{290, 310})
	if g.Gray16At(0, 0) != 0 || g.Gray16At(1, 0) != 65535 {
		t.Fatal(g.Gray16At(0, 0), g.Gray16At(1, 0))
	}
	if b := g.ToGray16().Bounds(); b != g.Bounds() {
		t.Fatal(b)
	}
}

func TestGridToCentiK(t *testing.T) {
	g := makeGrid(image.Rect(0, 0, 2, 1), []float64{293.15, 310.004})
	img := g.ToCentiK()
	if v := img.Gray16At(0, 0).Y; v != 29315 {
		t.Fatal(v)
	}
	if v := img.Gray16At(1, 0).Y; v != 31000 {
		t.Fatal(v)
	}
}

func TestGridToCelsius(t *testing.T) {
	g := makeGrid(image.Rect(0, 0, 2, 1), []float64{273.15, 293.15})
	c := g.ToCelsius()
	if c.TempAt(0, 0) != 0 || math.Abs(c.TempAt(1, 0)-20) > 1e-12 {
		t.Fatal(c.Temps)
	}
	if c.Min != 0 {
		t.Fatal(c.Min)
	}
}

func TestGridEqual(t *testing.T) {
	a := makeGrid(image.Rect(0, 0, 2, 1), []float64{290, 310})
	b := makeGrid(image.Rect(0, 0, 2, 1), []float64{290, 310})
	if !a.Equal(b) {
		t.Fatal("expected equal")
	}
	b.Temps[1] = 311
	if a.Equal(b) {
		t.Fatal("expected different")
	}
}

func TestCentiK(t *testing.T) {
	if s := CentiK(29315).String(); s != "293.15°K" {
		t.Fatal(s)
	}
	if s := CentiK(29315).ToC().String(); s != "20.00°C" {
		t.Fatal(s)
	}
	if k := CentiC(29315).ToK(); k != CentiK(29315) {
		t.Fatal(k)
	}
	if k := CentiK(29315).Kelvin(); k != 293.15 {
		t.Fatal(k)
	}
	if c := CentiKFromKelvin(293.15); c != 29315 {
		t.Fatal(c)
	}
	if c := CentiKFromKelvin(-5); c != 0 {
		t.Fatal(c)
	}
	if c := CentiKFromKelvin(1e6); c != 65535 {
		t.Fatal(c)
	}
}
