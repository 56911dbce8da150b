package linear

import (
	"math"
	"testing"
)

const eps = 1e-9

func near(a, b float64) bool { return math.Abs(a-b) < eps }

func TestIdentityMul(t *testing.T) {
	var i, m, r M4
	i.I()
	m.Translate(1, 2, 3)
	r.Mul(&i, &m)
	if r != m {
		t.Fatalf("I ⋅ m\nhave %v\nwant %v", r, m)
	}
	r.Mul(&m, &i)
	if r != m {
		t.Fatalf("m ⋅ I\nhave %v\nwant %v", r, m)
	}
}

func TestTranslateTransform(t *testing.T) {
	var m M4
	m.Translate(1, -2, 3)
	u := m.Transform(V3{1, 1, 1})
	want := V4{2, -1, 4, 1}
	if u != want {
		t.Fatalf("Transform\nhave %v\nwant %v", u, want)
	}
}

func TestRotate(t *testing.T) {
	cases := []struct {
		name string
		rot  func(*M4, float64)
		in   V3
		want V3
	}{
		{"X", (*M4).RotateX, V3{0, 1, 0}, V3{0, 0, 1}},
		{"Y", (*M4).RotateY, V3{0, 0, 1}, V3{1, 0, 0}},
		{"Z", (*M4).RotateZ, V3{1, 0, 0}, V3{0, 1, 0}},
	}
	for _, c := range cases {
		var m M4
		c.rot(&m, math.Pi/2)
		u := m.Transform(c.in)
		for i := 0; i < 3; i++ {
			if !near(u[i], c.want[i]) {
				t.Fatalf("Rotate%s(π/2) ⋅ %v\nhave %v\nwant %v", c.name, c.in, u, c.want)
			}
		}
	}
}

func TestRotateEulerZero(t *testing.T) {
	var m, i M4
	m.RotateEuler(V3{})
	i.I()
	if m != i {
		t.Fatalf("RotateEuler(0)\nhave %v\nwant identity", m)
	}
}

func TestModel(t *testing.T) {
	var m M4
	m.Model(V3{0, 0, -5}, V3{0, 0, math.Pi / 2})
	u := m.Transform(V3{1, 0, 0})
	want := V3{0, 1, -5}
	for i := 0; i < 3; i++ {
		if !near(u[i], want[i]) {
			t.Fatalf("Model ⋅ %v\nhave %v\nwant %v", V3{1, 0, 0}, u, want)
		}
	}
}

func TestPerspective(t *testing.T) {
	var m M4
	m.Perspective(math.Pi/2, 1, 0.1, 1000)
	// A point on the view axis maps to the center of NDC.
	u := m.Transform(V3{0, 0, -5})
	if !near(u[0], 0) || !near(u[1], 0) {
		t.Fatalf("center point: have %v", u)
	}
	if !near(u[3], 5) {
		t.Fatalf("w: have %v, want 5", u[3])
	}
	// With a 90° fov, y == -z lands on the top edge.
	u = m.Transform(V3{0, 5, -5})
	if !near(u[1]/u[3], 1) {
		t.Fatalf("top edge: have %v", u[1]/u[3])
	}
	// Points between near and far map into [-1, 1] depth.
	z := u[2] / u[3]
	if z < -1 || z > 1 {
		t.Fatalf("depth out of range: %v", z)
	}
}

func TestVectorOps(t *testing.T) {
	v, w := V3{1, 2, 3}, V3{4, 5, 6}
	if AddV3(v, w) != (V3{5, 7, 9}) {
		t.Fatal("AddV3")
	}
	if SubV3(w, v) != (V3{3, 3, 3}) {
		t.Fatal("SubV3")
	}
	if ScaleV3(2, v) != (V3{2, 4, 6}) {
		t.Fatal("ScaleV3")
	}
	if DotV3(v, w) != 32 {
		t.Fatal("DotV3")
	}
	if !near(LenV3(V3{3, 4, 0}), 5) {
		t.Fatal("LenV3")
	}
}
