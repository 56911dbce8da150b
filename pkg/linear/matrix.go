package linear

import (
	"math"
)

// M4 is a column-major 4x4 matrix of float64.
type M4 [4]V4

// I makes m an identity matrix.
func (m *M4) I() { *m = M4{{1}, {0, 1}, {0, 0, 1}, {0, 0, 0, 1}} }

// Mul sets m to contain l ⋅ r.
func (m *M4) Mul(l, r *M4) {
	*m = M4{}
	for i := range m {
		for j := range m {
			for k := range m {
				m[i][j] += l[k][j] * r[i][k]
			}
		}
	}
}

// Translate sets m to contain a translation.
func (m *M4) Translate(x, y, z float64) {
	m.I()
	m[3][0] = x
	m[3][1] = y
	m[3][2] = z
}

// RotateX sets m to contain a rotation of angle radians about the x axis.
func (m *M4) RotateX(angle float64) {
	s, c := math.Sincos(angle)
	m.I()
	m[1][1] = c
	m[1][2] = s
	m[2][1] = -s
	m[2][2] = c
}

// RotateY sets m to contain a rotation of angle radians about the y axis.
func (m *M4) RotateY(angle float64) {
	s, c := math.Sincos(angle)
	m.I()
	m[0][0] = c
	m[0][2] = -s
	m[2][0] = s
	m[2][2] = c
}

// RotateZ sets m to contain a rotation of angle radians about the z axis.
func (m *M4) RotateZ(angle float64) {
	s, c := math.Sincos(angle)
	m.I()
	m[0][0] = c
	m[0][1] = s
	m[1][0] = -s
	m[1][1] = c
}

// RotateEuler sets m to contain the rotation described by the
// Euler angles in e, applied in XYZ order (Rx ⋅ Ry ⋅ Rz).
func (m *M4) RotateEuler(e V3) {
	var x, y, z, xy M4
	x.RotateX(e[0])
	y.RotateY(e[1])
	z.RotateZ(e[2])
	xy.Mul(&x, &y)
	m.Mul(&xy, &z)
}

// Model sets m to contain the world transform of an object placed at
// position p with Euler rotation e.
func (m *M4) Model(p, e V3) {
	var t, r M4
	t.Translate(p[0], p[1], p[2])
	r.RotateEuler(e)
	m.Mul(&t, &r)
}

// Perspective sets m to contain a perspective projection.
// fovy is the vertical field of view in radians.
func (m *M4) Perspective(fovy, aspect, near, far float64) {
	f := 1 / math.Tan(fovy/2)
	*m = M4{}
	m[0][0] = f / aspect
	m[1][1] = f
	m[2][2] = (far + near) / (near - far)
	m[2][3] = -1
	m[3][2] = 2 * far * near / (near - far)
}

// Transform returns m ⋅ (p, 1).
func (m *M4) Transform(p V3) (u V4) {
	v := V4{p[0], p[1], p[2], 1}
	for j := range u {
		for i := range m {
			u[j] += m[i][j] * v[i]
		}
	}
	return
}
