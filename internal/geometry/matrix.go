package geometry

import (
	"fmt"
	"math"
)

// Matrix is a 6-coefficient affine transform [a b c d e f] mapping
// (x, y) to (a*x + c*y + e, b*x + d*y + f). This is the same coefficient
// order vector canvas engines use for their viewport transform.
type Matrix [6]float64

// Identity returns the identity transform.
func Identity() Matrix {
	return Matrix{1, 0, 0, 1, 0, 0}
}

// Translation returns the transform moving points by (dx, dy).
func Translation(dx, dy float64) Matrix {
	return Matrix{1, 0, 0, 1, dx, dy}
}

// Scaling returns the uniform scale transform about the origin.
func Scaling(s float64) Matrix {
	return Matrix{s, 0, 0, s, 0, 0}
}

// Rotation returns the transform rotating points by theta radians about
// the origin, y-down.
func Rotation(theta float64) Matrix {
	sin, cos := math.Sincos(theta)
	return Matrix{cos, sin, -sin, cos, 0, 0}
}

// Apply transforms p by m.
func (m Matrix) Apply(p Point) Point {
	return Point{
		X: m[0]*p.X + m[2]*p.Y + m[4],
		Y: m[1]*p.X + m[3]*p.Y + m[5],
	}
}

// Mul returns the transform equivalent to applying n first, then m.
func (m Matrix) Mul(n Matrix) Matrix {
	return Matrix{
		m[0]*n[0] + m[2]*n[1],
		m[1]*n[0] + m[3]*n[1],
		m[0]*n[2] + m[2]*n[3],
		m[1]*n[2] + m[3]*n[3],
		m[0]*n[4] + m[2]*n[5] + m[4],
		m[1]*n[4] + m[3]*n[5] + m[5],
	}
}

// Invert returns the inverse transform. Singular matrices are reported as an
// error rather than producing NaN coefficients.
func (m Matrix) Invert() (Matrix, error) {
	det := m[0]*m[3] - m[1]*m[2]
	if det == 0 {
		return Matrix{}, fmt.Errorf("singular transform %v", m)
	}
	inv := 1 / det
	return Matrix{
		m[3] * inv,
		-m[1] * inv,
		-m[2] * inv,
		m[0] * inv,
		(m[2]*m[5] - m[3]*m[4]) * inv,
		(m[1]*m[4] - m[0]*m[5]) * inv,
	}, nil
}

// Scale returns the scale component of a uniform scale+rotation transform.
func (m Matrix) Scale() float64 {
	return Dist(Point{}, Point{X: m[0], Y: m[1]})
}
