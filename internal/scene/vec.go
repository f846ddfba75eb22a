package scene

import "math"

// Vec3 is a point or direction in scene space
type Vec3 struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
	Z float64 `json:"z" yaml:"z"`
}

func (a Vec3) Add(b Vec3) Vec3      { return Vec3{a.X + b.X, a.Y + b.Y, a.Z + b.Z} }
func (a Vec3) Sub(b Vec3) Vec3      { return Vec3{a.X - b.X, a.Y - b.Y, a.Z - b.Z} }
func (a Vec3) Scale(s float64) Vec3 { return Vec3{a.X * s, a.Y * s, a.Z * s} }
func (a Vec3) Dot(b Vec3) float64   { return a.X*b.X + a.Y*b.Y + a.Z*b.Z }
func (a Vec3) Len() float64         { return math.Sqrt(a.Dot(a)) }

func (a Vec3) Cross(b Vec3) Vec3 {
	return Vec3{
		a.Y*b.Z - a.Z*b.Y,
		a.Z*b.X - a.X*b.Z,
		a.X*b.Y - a.Y*b.X,
	}
}

// Norm returns the unit vector, or the zero vector unchanged
func (a Vec3) Norm() Vec3 {
	l := a.Len()
	if l == 0 {
		return a
	}
	return a.Scale(1 / l)
}

// Mat3 is a row-major 3x3 rotation matrix
type Mat3 [3][3]float64

// Identity is the unit rotation
var Identity = Mat3{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}

// Apply rotates v
func (m Mat3) Apply(v Vec3) Vec3 {
	return Vec3{
		m[0][0]*v.X + m[0][1]*v.Y + m[0][2]*v.Z,
		m[1][0]*v.X + m[1][1]*v.Y + m[1][2]*v.Z,
		m[2][0]*v.X + m[2][1]*v.Y + m[2][2]*v.Z,
	}
}

// Mul returns m*n
func (m Mat3) Mul(n Mat3) Mat3 {
	var out Mat3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			for k := 0; k < 3; k++ {
				out[i][j] += m[i][k] * n[k][j]
			}
		}
	}
	return out
}

// EulerXYZ builds Rx(x) * Ry(y) * Rz(z)
func EulerXYZ(x, y, z float64) Mat3 {
	cx, sx := math.Cos(x), math.Sin(x)
	cy, sy := math.Cos(y), math.Sin(y)
	cz, sz := math.Cos(z), math.Sin(z)

	rx := Mat3{{1, 0, 0}, {0, cx, -sx}, {0, sx, cx}}
	ry := Mat3{{cy, 0, sy}, {0, 1, 0}, {-sy, 0, cy}}
	rz := Mat3{{cz, -sz, 0}, {sz, cz, 0}, {0, 0, 1}}

	return rx.Mul(ry).Mul(rz)
}

// Basis is an orthonormal frame. Z is the facing direction.
type Basis struct {
	X, Y, Z Vec3
}

var worldUp = Vec3{0, 1, 0}

// LookBasis returns a frame whose Z points along forward. When forward is
// parallel to the world up axis, X falls back to +X.
func LookBasis(forward Vec3) Basis {
	z := forward.Norm()
	x := worldUp.Cross(z)
	if x.Len() < 1e-9 {
		x = Vec3{1, 0, 0}
	}
	x = x.Norm()
	return Basis{X: x, Y: z.Cross(x), Z: z}
}

// RotateZ spins the frame about its own Z axis
func (b Basis) RotateZ(theta float64) Basis {
	c, s := math.Cos(theta), math.Sin(theta)
	return Basis{
		X: b.X.Scale(c).Add(b.Y.Scale(s)),
		Y: b.Y.Scale(c).Sub(b.X.Scale(s)),
		Z: b.Z,
	}
}

// Rotate applies m to every axis
func (b Basis) Rotate(m Mat3) Basis {
	return Basis{X: m.Apply(b.X), Y: m.Apply(b.Y), Z: m.Apply(b.Z)}
}
