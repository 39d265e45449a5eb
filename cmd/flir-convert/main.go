// Copyright 2023 The go-thermal Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// flir-convert extracts the thermal data of one radiometric JPEG and saves
// it as an image file.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/ioutil"
	"log"
	"os"

	"github.com/go-thermal/flir/exiftool"
	"github.com/go-thermal/flir/flirjpeg"
	"github.com/go-thermal/flir/radiometry"
)

func mainImpl() error {
	formatStr := flag.String("format", "tiff", "output format: tiff or png")
	contentsStr := flag.String("contents", "temp", "output contents: temp (centikelvin) or raw (sensor counts)")
	out := flag.String("o", "", "output path; derived from the input name by default")
	e := flag.Float64("e", -1, "emissivity override in (0, 1]")
	distance := flag.Float64("distance", -1, "object distance override in meters")
	humidity := flag.Float64("humidity", -1, "relative humidity override in %")
	celsius := flag.Bool("celsius", false, "print statistics in °C instead of °K")
	copytags := flag.Bool("copytags", false, "copy the source exif tags onto the output file")
	verbose := flag.Bool("v", false, "verbose mode")
	flag.Parse()
	if !*verbose {
		log.SetOutput(ioutil.Discard)
	}
	log.SetFlags(log.Lmicroseconds)

	if flag.NArg() != 1 {
		return errors.New("supply path to a radiometric JPEG")
	}
	format, err := flirjpeg.ParseFormat(*formatStr)
	if err != nil {
		return err
	}
	contents, err := flirjpeg.ParseContents(*contentsStr)
	if err != nil {
		return err
	}
	opts := flirjpeg.DefaultOptions()
	if *e > 0 {
		opts.Emissivity = *e
	}
	if *distance >= 0 {
		opts.ObjectDistance = *distance
	}
	if *humidity >= 0 {
		opts.RelativeHumidity = *humidity / 100
	}

	runner, err := exiftool.NewExecRunner()
	if err != nil {
		return err
	}
	tool := exiftool.New(runner)
	ctx := context.Background()
	img, err := flirjpeg.Load(ctx, tool, flag.Args()[0], opts)
	if err != nil {
		return err
	}
	log.Printf("loaded %s: %dx%d raw %s block", img.Path, img.Raw.Bounds().Dx(), img.Raw.Bounds().Dy(), img.RawFormat)

	dst := *out
	if dst == "" {
		dst = img.DefaultPath(format, contents)
	}
	if err := img.Save(dst, format, contents); err != nil {
		return err
	}
	if *copytags {
		if err := tool.CopyTags(ctx, img.Path, dst); err != nil {
			return err
		}
	}

	stats, err := img.Stats()
	if err != nil {
		return err
	}
	unit, min, max := "°K", stats.Min, stats.Max
	if *celsius {
		unit, min, max = "°C", radiometry.KToC(stats.Min), radiometry.KToC(stats.Max)
	}
	fmt.Printf("%s: %.2f%s to %.2f%s\n", dst, min, unit, max, unit)
	return nil
}

func main() {
	if err := mainImpl(); err != nil {
		fmt.Fprintf(os.Stderr, "\nflir-convert: %s.\n", err)
		os.Exit(1)
	}
}
