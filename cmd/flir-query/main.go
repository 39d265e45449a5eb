// Copyright 2023 The go-thermal Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// flir-query prints the radiometric calibration embedded in a FLIR JPEG.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/go-thermal/flir/exiftool"
	"github.com/go-thermal/flir/flirjpeg"
	"github.com/go-thermal/flir/radiometry"
)

func mainImpl() error {
	stats := flag.Bool("stats", false, "also convert and print temperature statistics")
	celsius := flag.Bool("celsius", false, "print temperatures in °C instead of °K")
	flag.Parse()

	if flag.NArg() != 1 {
		return errors.New("supply path to a radiometric JPEG")
	}

	runner, err := exiftool.NewExecRunner()
	if err != nil {
		return err
	}
	tool := exiftool.New(runner)
	img, err := flirjpeg.Load(context.Background(), tool, flag.Args()[0], flirjpeg.DefaultOptions())
	if err != nil {
		return err
	}

	p := img.Params
	fmt.Printf("Camera:           %s\n", img.Camera())
	fmt.Printf("Raw block:        %dx%d %s\n", img.Raw.Bounds().Dx(), img.Raw.Bounds().Dy(), img.RawFormat)
	fmt.Printf("Planck R1:        %g\n", p.R1)
	fmt.Printf("Planck R2:        %g\n", p.R2)
	fmt.Printf("Planck B:         %g\n", p.B)
	fmt.Printf("Planck F:         %g\n", p.F)
	fmt.Printf("Planck O:         %g\n", p.O)
	fmt.Printf("Emissivity:       %g\n", p.Emissivity)
	fmt.Printf("Distance:         %gm\n", p.ObjectDistance)
	fmt.Printf("Humidity:         %g%%\n", p.RelativeHumidity*100)
	fmt.Printf("Reflected:        %s\n", temp(p.ReflectedTemp, *celsius))
	fmt.Printf("Atmospheric:      %s\n", temp(p.AtmosphericTemp, *celsius))
	fmt.Printf("Transmission:     %.4f\n", radiometry.Transmission(p))

	if *stats {
		s, err := img.Stats()
		if err != nil {
			return err
		}
		fmt.Printf("Min:              %s\n", temp(s.Min, *celsius))
		fmt.Printf("Max:              %s\n", temp(s.Max, *celsius))
		fmt.Printf("Mean:             %s\n", temp(s.Mean, *celsius))
		fmt.Printf("Median:           %s\n", temp(s.Median, *celsius))
		fmt.Printf("StdDev:           %.3f\n", s.StdDev)
	}
	return nil
}

func temp(kelvin float64, celsius bool) string {
	if celsius {
		return fmt.Sprintf("%.2f°C", radiometry.KToC(kelvin))
	}
	return fmt.Sprintf("%.2f°K", kelvin)
}

func main() {
	if err := mainImpl(); err != nil {
		fmt.Fprintf(os.Stderr, "\nflir-query: %s.\n", err)
		os.Exit(1)
	}
}
