// Copyright 2023 The go-thermal Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package radiometry converts raw FLIR sensor counts into temperatures.
//
// FLIR cameras store a raw 16 bits count per pixel plus five per-camera
// calibration constants, named R1, R2, B, F and O. The count maps to a
// temperature through the inverse Planck form
//
//	S(T) = R1 / (R2 * (exp(B/T) - F)) - O
//
// so that T = B / ln(R1/(R2*(S+O)) + F). Counts are in the same unit as
// radiance throughout this package.
//
// References:
//   https://exiftool.org/forum/index.php?topic=4898.60
//   FLIR Tools atmospheric transmission model (Minkina & Dudzik,
//   "Infrared Thermography: Errors and Uncertainties", Wiley 2009).
package radiometry

import (
	"errors"
	"fmt"
	"image"
	"math"

	"github.com/go-thermal/flir/thermogram"
)

var (
	// ErrMissingCalibration means one of the five Planck constants is absent
	// or zero where the equations divide by it.
	ErrMissingCalibration = errors.New("missing calibration")
	// ErrInvalidParams means the calibration constants and the input count
	// drive the logarithm argument non-positive. It is reported instead of
	// silently producing NaN.
	ErrInvalidParams = errors.New("invalid radiometric parameters")
	// ErrEmptyInput means the raw count grid has no pixels.
	ErrEmptyInput = errors.New("empty input")
)

// Planck is the five per-camera calibration constants of the inverse Planck
// radiance form. Typical ranges are B in [1300, 1600], F in [0.5, 2] and
// O negative.
type Planck struct {
	R1 float64
	R2 float64
	B  float64
	F  float64
	O  float64
}

// Valid returns ErrMissingCalibration if a constant that the equations
// divide by is zero.
func (pl Planck) Valid() error {
	if pl.R1 == 0 {
		return fmt.Errorf("planck R1 is zero: %w", ErrMissingCalibration)
	}
	if pl.R2 == 0 {
		return fmt.Errorf("planck R2 is zero: %w", ErrMissingCalibration)
	}
	if pl.B <= 0 {
		return fmt.Errorf("planck B is %g: %w", pl.B, ErrMissingCalibration)
	}
	return nil
}

// Params is the full set of scalars fixed per image: the Planck constants
// plus the ambient parameters entering the emissivity and atmosphere
// compensation. All temperatures are in Kelvin, ObjectDistance in meters,
// RelativeHumidity a fraction in [0, 1].
type Params struct {
	Planck
	Emissivity       float64 // Fraction of radiance emitted by the object, in (0, 1].
	ObjectDistance   float64
	RelativeHumidity float64
	ReflectedTemp    float64 // Apparent temperature reflected by the object surface.
	AtmosphericTemp  float64

	// Attenuation coefficients of the atmospheric transmission model.
	// Cameras may carry their own values in metadata; the defaults are the
	// published FLIR ones.
	AtmX      float64
	AtmAlpha1 float64
	AtmAlpha2 float64
	AtmBeta1  float64
	AtmBeta2  float64
}

// Published FLIR attenuation coefficients.
const (
	DefaultAtmX      = 1.9
	DefaultAtmAlpha1 = 0.006569
	DefaultAtmAlpha2 = 0.01262
	DefaultAtmBeta1  = -0.002276
	DefaultAtmBeta2  = -0.00667
)

// DefaultParams returns Params for pl with a perfect emitter at 1m in a
// 20°C atmosphere at 50% humidity.
func DefaultParams(pl Planck) Params {
	return Params{
		Planck:           pl,
		Emissivity:       1.0,
		ObjectDistance:   1.0,
		RelativeHumidity: 0.5,
		ReflectedTemp:    293.15,
		AtmosphericTemp:  293.15,
		AtmX:             DefaultAtmX,
		AtmAlpha1:        DefaultAtmAlpha1,
		AtmAlpha2:        DefaultAtmAlpha2,
		AtmBeta1:         DefaultAtmBeta1,
		AtmBeta2:         DefaultAtmBeta2,
	}
}

// Valid checks the Planck constants and the ambient parameter ranges.
func (p Params) Valid() error {
	if err := p.Planck.Valid(); err != nil {
		return err
	}
	if p.Emissivity <= 0 || p.Emissivity > 1 {
		return fmt.Errorf("emissivity %g not in (0, 1]: %w", p.Emissivity, ErrInvalidParams)
	}
	if p.ObjectDistance < 0 {
		return fmt.Errorf("object distance %g is negative: %w", p.ObjectDistance, ErrInvalidParams)
	}
	if p.RelativeHumidity < 0 || p.RelativeHumidity > 1 {
		return fmt.Errorf("relative humidity %g not in [0, 1]: %w", p.RelativeHumidity, ErrInvalidParams)
	}
	if p.ReflectedTemp <= 0 || p.AtmosphericTemp <= 0 {
		return fmt.Errorf("ambient temperature must be positive Kelvin: %w", ErrInvalidParams)
	}
	return nil
}

// KToC converts Kelvin to Celsius.
func KToC(k float64) float64 {
	return k - 273.15
}

// CToK converts Celsius to Kelvin.
func CToK(c float64) float64 {
	return c + 273.15
}

// waterVapor returns the water vapour content of the atmosphere in mmHg,
// from the relative humidity fraction and the air temperature in Kelvin.
func waterVapor(relHumidity, airTempK float64) float64 {
	tc := KToC(airTempK)
	return relHumidity * math.Exp(1.5587+0.06939*tc-0.00027816*tc*tc+0.00000068455*tc*tc*tc)
}

// Transmission returns the atmospheric transmission τ in (0, 1]: the
// fraction of object-emitted radiance reaching the sensor after attenuation
// over ObjectDistance at RelativeHumidity. Zero distance means τ = 1.
func Transmission(p Params) float64 {
	h2o := math.Sqrt(waterVapor(p.RelativeHumidity, p.AtmosphericTemp))
	sd := math.Sqrt(p.ObjectDistance)
	return p.AtmX*math.Exp(-sd*(p.AtmAlpha1+p.AtmBeta1*h2o)) +
		(1-p.AtmX)*math.Exp(-sd*(p.AtmAlpha2+p.AtmBeta2*h2o))
}

// Radiance returns the raw count equivalent of a black body at tempK, via
// the forward inverse-Planck form R1/(R2*(exp(B/T)-F)) - O.
func Radiance(tempK float64, pl Planck) float64 {
	return pl.R1/(pl.R2*(math.Exp(pl.B/tempK)-pl.F)) - pl.O
}

// TempFromRadiance inverts Radiance. It fails with ErrInvalidParams when
// the logarithm argument is non-positive or the result would not be finite.
func TempFromRadiance(rad float64, pl Planck) (float64, error) {
	d := pl.R2 * (rad + pl.O)
	if d == 0 {
		return 0, fmt.Errorf("radiance %g cancels offset: %w", rad, ErrInvalidParams)
	}
	arg := pl.R1/d + pl.F
	if arg <= 0 {
		return 0, fmt.Errorf("log argument %g is not positive: %w", arg, ErrInvalidParams)
	}
	l := math.Log(arg)
	if l == 0 {
		return 0, fmt.Errorf("log argument is 1: %w", ErrInvalidParams)
	}
	return pl.B / l, nil
}

// objectRadiance compensates a measured count for emissivity, the radiance
// reflected off the object and the emission of the atmosphere itself.
// reflRad and atmRad are precomputed Radiance() of the respective apparent
// temperatures, tau a precomputed Transmission().
func objectRadiance(count, reflRad, atmRad, tau float64, p Params) float64 {
	return (count - (1-p.Emissivity)*reflRad - (1-tau)*atmRad) / (p.Emissivity * tau)
}

// RawToTemp converts a single sensor count to a temperature in Kelvin.
func RawToTemp(raw uint16, p Params) (float64, error) {
	if err := p.Valid(); err != nil {
		return 0, err
	}
	tau := Transmission(p)
	reflRad := Radiance(p.ReflectedTemp, p.Planck)
	atmRad := Radiance(p.AtmosphericTemp, p.Planck)
	return TempFromRadiance(objectRadiance(float64(raw), reflRad, atmRad, tau, p), p.Planck)
}

// TempToRaw is the exact inverse of RawToTemp, rounded and clamped to the
// 16 bits sensor range.
func TempToRaw(tempK float64, p Params) uint16 {
	tau := Transmission(p)
	reflRad := Radiance(p.ReflectedTemp, p.Planck)
	atmRad := Radiance(p.AtmosphericTemp, p.Planck)
	obj := Radiance(tempK, p.Planck)
	count := obj*p.Emissivity*tau + (1-p.Emissivity)*reflRad + (1-tau)*atmRad
	if count < 0 {
		return 0
	}
	if count > 65535 {
		return 65535
	}
	return uint16(math.Round(count))
}

// Convert applies RawToTemp element-wise over raw. The returned grid has
// the same bounds as raw and every cell is a pure function of the matching
// raw count and p; Convert is deterministic. A count of 0 is a valid (very
// cold) measurement, not missing data.
func Convert(raw *image.Gray16, p Params) (*thermogram.Grid, error) {
	if raw == nil || raw.Bounds().Empty() {
		return nil, ErrEmptyInput
	}
	if err := p.Valid(); err != nil {
		return nil, err
	}
	tau := Transmission(p)
	reflRad := Radiance(p.ReflectedTemp, p.Planck)
	atmRad := Radiance(p.AtmosphericTemp, p.Planck)
	b := raw.Bounds()
	g := thermogram.NewGrid(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			count := float64(raw.Gray16At(x, y).Y)
			t, err := TempFromRadiance(objectRadiance(count, reflRad, atmRad, tau, p), p.Planck)
			if err != nil {
				return nil, fmt.Errorf("pixel (%d, %d) count %.0f: %w", x, y, count, err)
			}
			g.SetTempAt(x, y, t)
		}
	}
	g.UpdateStats()
	return g, nil
}
