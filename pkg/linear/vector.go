// Package linear implements the small amount of 3D math needed to
// project scene objects onto a render surface.
package linear

import (
	"math"
)

// V3 is a 3-component vector of float64.
type V3 [3]float64

// V4 is a 4-component vector of float64.
type V4 [4]float64

// AddV3 returns v + w.
func AddV3(v, w V3) (u V3) {
	for i := range u {
		u[i] = v[i] + w[i]
	}
	return
}

// SubV3 returns v - w.
func SubV3(v, w V3) (u V3) {
	for i := range u {
		u[i] = v[i] - w[i]
	}
	return
}

// ScaleV3 returns s ⋅ v.
func ScaleV3(s float64, v V3) (u V3) {
	for i := range u {
		u[i] = s * v[i]
	}
	return
}

// DotV3 returns v ⋅ w.
func DotV3(v, w V3) (d float64) {
	for i := range v {
		d += v[i] * w[i]
	}
	return
}

// LenV3 returns the length of v.
func LenV3(v V3) float64 {
	return math.Sqrt(DotV3(v, v))
}
