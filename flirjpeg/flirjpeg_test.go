// Copyright 2023 The go-thermal Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package flirjpeg

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/image/tiff"

	"github.com/go-thermal/flir/exiftool"
	"github.com/go-thermal/flir/flirtest"
	"github.com/go-thermal/flir/radiometry"
)

func TestLoad(t *testing.T) {
	fake := flirtest.New(32, 24)
	img, err := Load(context.Background(), exiftool.New(fake), "backyard.jpg", DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Raw.Bounds(); b.Dx() != 32 || b.Dy() != 24 {
		t.Fatal(b)
	}
	if img.RawFormat != "tiff" {
		t.Fatal(img.RawFormat)
	}
	p := img.Params
	if p.Planck != flirtest.Planck {
		t.Fatal(p.Planck)
	}
	if p.Emissivity != 0.95 || p.ObjectDistance != 5 || p.RelativeHumidity != 0.5 {
		t.Fatal(p)
	}
	if p.ReflectedTemp != radiometry.CToK(20) || p.AtmosphericTemp != radiometry.CToK(20) {
		t.Fatal(p)
	}
	// The synthetic scene ramps left to right.
	if img.Raw.Gray16At(0, 0).Y != 7600 || img.Raw.Gray16At(31, 0).Y != 9400 {
		t.Fatal(img.Raw.Gray16At(0, 0), img.Raw.Gray16At(31, 0))
	}
}

func TestLoadOverrides(t *testing.T) {
	fake := flirtest.New(8, 8)
	opts := DefaultOptions()
	opts.Emissivity = 0.80
	opts.ObjectDistance = 12
	opts.RelativeHumidity = 0.25
	img, err := Load(context.Background(), exiftool.New(fake), "a.jpg", opts)
	if err != nil {
		t.Fatal(err)
	}
	p := img.Params
	if p.Emissivity != 0.80 || p.ObjectDistance != 12 || p.RelativeHumidity != 0.25 {
		t.Fatal(p)
	}
}

func TestLoadHumidityForms(t *testing.T) {
	// exiftool -n emits RelativeHumidity as a fraction; some cameras store
	// a percentage, which must be normalized, not taken at face value.
	data := []struct {
		tag  float64
		want float64
	}{
		{0.5, 0.5},
		{0.37, 0.37},
		{50, 0.5},
		{80, 0.8},
	}
	for _, line := range data {
		fake := flirtest.New(8, 8)
		fake.Meta["RelativeHumidity"] = line.tag
		img, err := Load(context.Background(), exiftool.New(fake), "a.jpg", DefaultOptions())
		if err != nil {
			t.Fatalf("tag=%g: %s", line.tag, err)
		}
		if got := img.Params.RelativeHumidity; got != line.want {
			t.Fatalf("tag=%g: got %g, want %g", line.tag, got, line.want)
		}
	}
}

func TestLoadMissingHeightTag(t *testing.T) {
	// A width tag without a height one is no reason to reject the raw
	// block.
	fake := flirtest.New(8, 8)
	delete(fake.Meta, "RawThermalImageHeight")
	img, err := Load(context.Background(), exiftool.New(fake), "a.jpg", DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Raw.Bounds(); b.Dx() != 8 || b.Dy() != 8 {
		t.Fatal(b)
	}
}

func TestLoadMissingCalibration(t *testing.T) {
	fake := flirtest.New(8, 8)
	delete(fake.Meta, "PlanckB")
	_, err := Load(context.Background(), exiftool.New(fake), "a.jpg", DefaultOptions())
	if !errors.Is(err, radiometry.ErrMissingCalibration) {
		t.Fatal(err)
	}
}

func TestLoadDimensionMismatch(t *testing.T) {
	fake := flirtest.New(8, 8)
	fake.Meta["RawThermalImageWidth"] = 16.
	if _, err := Load(context.Background(), exiftool.New(fake), "a.jpg", DefaultOptions()); err == nil {
		t.Fatal("expected dimension mismatch")
	}
}

func TestLoadPNGBlock(t *testing.T) {
	// FLIR PNG raw blocks hold byte-swapped 16 bits samples.
	raw := image.NewGray16(image.Rect(0, 0, 4, 2))
	swapped := image.NewGray16(raw.Bounds())
	for i := 0; i < 8; i++ {
		v := uint16(7600 + 17*i)
		raw.Pix[2*i] = uint8(v >> 8)
		raw.Pix[2*i+1] = uint8(v)
		swapped.Pix[2*i] = uint8(v)
		swapped.Pix[2*i+1] = uint8(v >> 8)
	}
	blob := bytes.Buffer{}
	if err := png.Encode(&blob, swapped); err != nil {
		t.Fatal(err)
	}
	fake := flirtest.FromRaw(raw)
	fake.Meta["RawThermalImageType"] = "PNG"
	fake.Meta["RawThermalImageWidth"] = 4.
	fake.Meta["RawThermalImageHeight"] = 2.
	fake.RawBlock = blob.Bytes()

	img, err := Load(context.Background(), exiftool.New(fake), "a.jpg", DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 8; i++ {
		want := uint16(7600 + 17*i)
		if got := img.Raw.Gray16At(i%4, i/4).Y; got != want {
			t.Fatalf("pixel %d: got %d, want %d", i, got, want)
		}
	}
}

func TestTempsCached(t *testing.T) {
	fake := flirtest.New(8, 8)
	img, err := Load(context.Background(), exiftool.New(fake), "a.jpg", DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	a, err := img.Temps()
	if err != nil {
		t.Fatal(err)
	}
	b, err := img.Temps()
	if err != nil {
		t.Fatal(err)
	}
	if a != b {
		t.Fatal("conversion ran twice")
	}
	s, err := img.Stats()
	if err != nil {
		t.Fatal(err)
	}
	if s.Min >= s.Max || s.Mean <= s.Min || s.Mean >= s.Max {
		t.Fatal(s)
	}
}

func TestSaveRawTIFF(t *testing.T) {
	fake := flirtest.New(8, 4)
	img, err := Load(context.Background(), exiftool.New(fake), "a.jpg", DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	p := filepath.Join(t.TempDir(), "out.tiff")
	if err := img.Save(p, FormatTIFF, ContentsRaw); err != nil {
		t.Fatal(err)
	}
	f, err := os.Open(p)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	back, err := tiff.Decode(f)
	if err != nil {
		t.Fatal(err)
	}
	for y := 0; y < 4; y++ {
		for x := 0; x < 8; x++ {
			want := img.Raw.Gray16At(x, y)
			if got := color.Gray16Model.Convert(back.At(x, y)).(color.Gray16); got != want {
				t.Fatalf("(%d, %d): got %d, want %d", x, y, got.Y, want.Y)
			}
		}
	}
}

func TestSaveTempPNG(t *testing.T) {
	fake := flirtest.New(8, 4)
	img, err := Load(context.Background(), exiftool.New(fake), "a.jpg", DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	p := filepath.Join(t.TempDir(), "out.png")
	if err := img.Save(p, FormatPNG, ContentsTemp); err != nil {
		t.Fatal(err)
	}
	f, err := os.Open(p)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	back, err := png.Decode(f)
	if err != nil {
		t.Fatal(err)
	}
	g, err := img.Temps()
	if err != nil {
		t.Fatal(err)
	}
	want := g.ToCentiK()
	for y := 0; y < 4; y++ {
		for x := 0; x < 8; x++ {
			got := color.Gray16Model.Convert(back.At(x, y)).(color.Gray16)
			if got != want.Gray16At(x, y) {
				t.Fatalf("(%d, %d): got %d, want %d", x, y, got.Y, want.Gray16At(x, y).Y)
			}
		}
	}
}

func TestDefaultPath(t *testing.T) {
	img := &Image{Path: filepath.Join("shots", "backyard.jpg")}
	data := []struct {
		format   Format
		contents Contents
		want     string
	}{
		{FormatTIFF, ContentsRaw, filepath.Join("shots", "backyard.tiff")},
		{FormatTIFF, ContentsTemp, filepath.Join("shots", "backyard_T.tiff")},
		{FormatPNG, ContentsTemp, filepath.Join("shots", "backyard_T.png")},
	}
	for _, line := range data {
		if got := img.DefaultPath(line.format, line.contents); got != line.want {
			t.Fatalf("got %q, want %q", got, line.want)
		}
	}
}

func TestParseFlags(t *testing.T) {
	if f, err := ParseFormat("TIF"); err != nil || f != FormatTIFF {
		t.Fatal(f, err)
	}
	if f, err := ParseFormat("png"); err != nil || f != FormatPNG {
		t.Fatal(f, err)
	}
	if _, err := ParseFormat("bmp"); err == nil {
		t.Fatal("expected failure")
	}
	if c, err := ParseContents("temperature"); err != nil || c != ContentsTemp {
		t.Fatal(c, err)
	}
	if _, err := ParseContents("kelvin"); err == nil {
		t.Fatal("expected failure")
	}
}
