// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package easing provides the named easing curves used for pressure
// response and stroke tapers.
//
// Every curve maps [0, 1] onto [0, 1] with f(0) = 0 and f(1) = 1. Inputs
// outside [0, 1] are clamped before evaluation, so callers may pass raw
// progress values without checking them first.
package easing

import (
	"fmt"
	"math"
	"strings"
)

// Func is an easing function over [0, 1].
type Func func(t float64) float64

// Curve names one of the built-in easing functions.
// The zero value is Linear.
type Curve uint8

const (
	Linear Curve = iota
	InQuad
	OutQuad
	InOutQuad
	InCubic
	OutCubic
	InOutCubic
	InQuart
	OutQuart
	InOutQuart
	InQuint
	OutQuint
	InOutQuint
	InSine
	OutSine
	InOutSine
	InExpo
	OutExpo

	curveCount
)

var curveNames = [curveCount]string{
	Linear:     "linear",
	InQuad:     "ease-in-quad",
	OutQuad:    "ease-out-quad",
	InOutQuad:  "ease-in-out-quad",
	InCubic:    "ease-in-cubic",
	OutCubic:   "ease-out-cubic",
	InOutCubic: "ease-in-out-cubic",
	InQuart:    "ease-in-quart",
	OutQuart:   "ease-out-quart",
	InOutQuart: "ease-in-out-quart",
	InQuint:    "ease-in-quint",
	OutQuint:   "ease-out-quint",
	InOutQuint: "ease-in-out-quint",
	InSine:     "ease-in-sine",
	OutSine:    "ease-out-sine",
	InOutSine:  "ease-in-out-sine",
	InExpo:     "ease-in-expo",
	OutExpo:    "ease-out-expo",
}

var curveFuncs = [curveCount]Func{
	Linear:     linear,
	InQuad:     inPow(2),
	OutQuad:    outPow(2),
	InOutQuad:  inOutPow(2),
	InCubic:    inPow(3),
	OutCubic:   outPow(3),
	InOutCubic: inOutPow(3),
	InQuart:    inPow(4),
	OutQuart:   outPow(4),
	InOutQuart: inOutPow(4),
	InQuint:    inPow(5),
	OutQuint:   outPow(5),
	InOutQuint: inOutPow(5),
	InSine:     inSine,
	OutSine:    outSine,
	InOutSine:  inOutSine,
	InExpo:     inExpo,
	OutExpo:    outExpo,
}

// Curves returns every built-in curve in declaration order.
func Curves() []Curve {
	out := make([]Curve, curveCount)
	for i := range out {
		out[i] = Curve(i)
	}
	return out
}

// Valid reports whether c names a built-in curve.
func (c Curve) Valid() bool {
	return c < curveCount
}

// Func returns the easing function for c.
// Unknown curves fall back to Linear.
func (c Curve) Func() Func {
	if !c.Valid() {
		return linear
	}
	f := curveFuncs[c]
	return func(t float64) float64 { return f(clamp01(t)) }
}

// Apply evaluates the curve at t. t is clamped to [0, 1].
func (c Curve) Apply(t float64) float64 {
	if !c.Valid() {
		return clamp01(t)
	}
	return curveFuncs[c](clamp01(t))
}

// String returns the curve name, e.g. "ease-in-out-cubic".
func (c Curve) String() string {
	if !c.Valid() {
		return fmt.Sprintf("Curve(%d)", uint8(c))
	}
	return curveNames[c]
}

// Parse returns the curve with the given name.
// Matching ignores case and accepts both "ease-in-quad" and "inQuad" forms.
func Parse(name string) (Curve, error) {
	key := normalize(name)
	for i, n := range curveNames {
		if normalize(n) == key {
			return Curve(i), nil
		}
	}
	return Linear, fmt.Errorf("easing: unknown curve %q", name)
}

// MarshalText implements encoding.TextMarshaler.
func (c Curve) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("easing: invalid curve %d", uint8(c))
	}
	return []byte(curveNames[c]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Curve) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

func normalize(name string) string {
	s := strings.ToLower(name)
	s = strings.TrimPrefix(s, "ease")
	return strings.NewReplacer("-", "", "_", "", " ", "").Replace(s)
}

func clamp01(t float64) float64 {
	switch {
	case math.IsNaN(t), t <= 0:
		return 0
	case t >= 1:
		return 1
	}
	return t
}

func linear(t float64) float64 { return t }

func inPow(n float64) Func {
	return func(t float64) float64 { return math.Pow(t, n) }
}

func outPow(n float64) Func {
	return func(t float64) float64 { return 1 - math.Pow(1-t, n) }
}

func inOutPow(n float64) Func {
	return func(t float64) float64 {
		if t < 0.5 {
			return math.Pow(2, n-1) * math.Pow(t, n)
		}
		return 1 - math.Pow(-2*t+2, n)/2
	}
}

func inSine(t float64) float64 { return 1 - math.Cos(t*math.Pi/2) }

func outSine(t float64) float64 { return math.Sin(t * math.Pi / 2) }

func inOutSine(t float64) float64 { return -(math.Cos(math.Pi*t) - 1) / 2 }

func inExpo(t float64) float64 {
	if t == 0 {
		return 0
	}
	return math.Pow(2, 10*t-10)
}

func outExpo(t float64) float64 {
	if t == 1 {
		return 1
	}
	return 1 - math.Pow(2, -10*t)
}
