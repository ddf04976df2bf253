// Package miniball computes the exact smallest enclosing sphere of a point set
// using Welzl's algorithm with the move-to-front heuristic.
package miniball

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Sphere is a center and radius. An empty point set yields the zero Sphere:
// center at the origin, radius 0.
type Sphere struct {
	Center mgl64.Vec3
	Radius float64
}

// tolerance is the relative slack allowed when testing containment.
const tolerance = 1e-10

// Contains reports whether p lies inside s, allowing eps of slack.
func (s Sphere) Contains(p mgl64.Vec3, eps float64) bool {
	return p.Sub(s.Center).Len() <= s.Radius+eps
}

func (s Sphere) holds(p mgl64.Vec3) bool {
	if s.Radius < 0 {
		return false
	}
	return s.Contains(p, tolerance*(1+s.Radius))
}

// Compute returns the smallest sphere enclosing points. The input slice is
// not modified.
func Compute(points []mgl64.Vec3) Sphere {
	if len(points) == 0 {
		return Sphere{}
	}
	pts := make([]mgl64.Vec3, len(points))
	copy(pts, points)
	return moveToFront(pts, len(pts), nil)
}

// moveToFront returns the smallest sphere enclosing pts[:n] with every point
// of support on its boundary. Points found outside the current sphere are
// moved to the front of pts so later passes see them early.
func moveToFront(pts []mgl64.Vec3, n int, support []mgl64.Vec3) Sphere {
	var s Sphere
	if len(support) == 4 {
		var ok bool
		if s, ok = circumsphere(support[0], support[1], support[2], support[3]); ok {
			return s
		}
		// Four cocircular points: any sphere through the first three
		// already passes through the fourth.
		support = support[:3]
	}
	s = fromSupport(support)

	for i := 0; i < n; i++ {
		p := pts[i]
		if s.holds(p) {
			continue
		}
		next := make([]mgl64.Vec3, len(support), len(support)+1)
		copy(next, support)
		s = moveToFront(pts, i, append(next, p))

		copy(pts[1:i+1], pts[:i])
		pts[0] = p
	}
	return s
}

// fromSupport returns the smallest sphere with up to three support points on
// its boundary. An empty support yields a sphere that contains nothing.
func fromSupport(support []mgl64.Vec3) Sphere {
	switch len(support) {
	case 0:
		return Sphere{Radius: -1}
	case 1:
		return Sphere{Center: support[0]}
	case 2:
		return diametral(support[0], support[1])
	default:
		return circumcircle(support[0], support[1], support[2])
	}
}

func diametral(a, b mgl64.Vec3) Sphere {
	return Sphere{Center: a.Add(b).Mul(0.5), Radius: b.Sub(a).Len() * 0.5}
}

// circumcircle returns the sphere whose great circle passes through a, b and
// c. Collinear input falls back to the sphere spanning the farthest pair.
func circumcircle(a, b, c mgl64.Vec3) Sphere {
	ab := b.Sub(a)
	ac := c.Sub(a)
	n := ab.Cross(ac)
	denom := 2 * n.Dot(n)

	scale := math.Max(ab.Dot(ab), ac.Dot(ac))
	if denom == 0 || denom <= 1e-24*scale*scale {
		return widestPair(a, b, c)
	}

	offset := n.Cross(ab).Mul(ac.Dot(ac)).Add(ac.Cross(n).Mul(ab.Dot(ab))).Mul(1 / denom)
	return Sphere{Center: a.Add(offset), Radius: offset.Len()}
}

// circumsphere returns the sphere through four points. It reports false for
// coplanar input.
func circumsphere(a, b, c, d mgl64.Vec3) (Sphere, bool) {
	d1 := b.Sub(a)
	d2 := c.Sub(a)
	d3 := d.Sub(a)
	det := d1.Dot(d2.Cross(d3))

	scale := math.Max(d1.Len(), math.Max(d2.Len(), d3.Len()))
	if det == 0 || math.Abs(det) <= 1e-12*scale*scale*scale {
		return Sphere{}, false
	}

	offset := d2.Cross(d3).Mul(d1.Dot(d1)).
		Add(d3.Cross(d1).Mul(d2.Dot(d2))).
		Add(d1.Cross(d2).Mul(d3.Dot(d3))).
		Mul(1 / (2 * det))
	return Sphere{Center: a.Add(offset), Radius: offset.Len()}, true
}

func widestPair(pts ...mgl64.Vec3) Sphere {
	best := Sphere{Center: pts[0]}
	for i := 0; i < len(pts); i++ {
		for j := i + 1; j < len(pts); j++ {
			if s := diametral(pts[i], pts[j]); s.Radius > best.Radius {
				best = s
			}
		}
	}
	return best
}
