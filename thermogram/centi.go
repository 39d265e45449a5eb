// Copyright 2023 The go-thermal Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package thermogram

import (
	"fmt"
	"math"
)

// CentiK is temperature in 0.01°K.
type CentiK uint16

func (c CentiK) String() string {
	return fmt.Sprintf("%01d.%02d°K", c/100, c%100)
}

func (c CentiK) ToC() CentiC {
	return CentiC(c)
}

// Kelvin returns the temperature as a float64 Kelvin value.
func (c CentiK) Kelvin() float64 {
	return float64(c) / 100
}

// CentiKFromKelvin rounds k to centikelvin, clamping to the representable
// range [0°K, 655.35°K].
func CentiKFromKelvin(k float64) CentiK {
	v := math.Round(k * 100)
	if v < 0 {
		return 0
	}
	if v > 65535 {
		return 65535
	}
	return CentiK(v)
}

// CentiC is temperature in 0.01°K but printed as °C.
type CentiC uint16

func (c CentiC) String() string {
	v := int(c) - 27315
	d := v % 100
	if d < 0 {
		d = -d
	}
	return fmt.Sprintf("%01d.%02d°C", v/100, d)
}

func (c CentiC) ToK() CentiK {
	return CentiK(c)
}
