// Copyright 2023 The go-thermal Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package flirjpeg

import (
	"fmt"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/tiff"
)

// Contents selects what pixel values the output file holds.
type Contents int

const (
	// ContentsRaw writes the sensor counts untouched.
	ContentsRaw Contents = iota
	// ContentsTemp writes the converted temperatures encoded as
	// centikelvin, so a 16 bits sample spans 0°K to 655.35°K at 0.01°K
	// resolution.
	ContentsTemp
)

func (c Contents) String() string {
	if c == ContentsRaw {
		return "raw"
	}
	return "temp"
}

// Format selects the output file encoding.
type Format int

const (
	FormatTIFF Format = iota
	FormatPNG
)

func (f Format) String() string {
	if f == FormatPNG {
		return "png"
	}
	return "tiff"
}

// Ext returns the filename extension.
func (f Format) Ext() string {
	return "." + f.String()
}

// ParseFormat parses a -format flag value.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "tiff", "tif":
		return FormatTIFF, nil
	case "png":
		return FormatPNG, nil
	}
	return FormatTIFF, fmt.Errorf("unknown format %q", s)
}

// ParseContents parses a -contents flag value.
func ParseContents(s string) (Contents, error) {
	switch strings.ToLower(s) {
	case "raw":
		return ContentsRaw, nil
	case "temp", "temperature":
		return ContentsTemp, nil
	}
	return ContentsRaw, fmt.Errorf("unknown contents %q", s)
}

// DefaultPath derives the output filename from the input one: the
// extension is replaced by the format's and temperature contents get a
// "_T" suffix, e.g. backyard.jpg becomes backyard_T.tiff.
func (i *Image) DefaultPath(format Format, contents Contents) string {
	base := strings.TrimSuffix(i.Path, filepath.Ext(i.Path))
	if contents == ContentsTemp {
		base += "_T"
	}
	return base + format.Ext()
}

// Save serializes the raw counts or the converted temperatures to path.
// File I/O failures surface with the underlying system error.
func (i *Image) Save(path string, format Format, contents Contents) error {
	src := i.Raw
	if contents == ContentsTemp {
		g, err := i.Temps()
		if err != nil {
			return err
		}
		src = g.ToCentiK()
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	switch format {
	case FormatPNG:
		err = png.Encode(f, src)
	default:
		err = tiff.Encode(f, src, &tiff.Options{Compression: tiff.Deflate})
	}
	if err != nil {
		f.Close()
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	return f.Close()
}
