package miniball

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

const epsilon = 1e-6

func checkEncloses(t *testing.T, s Sphere, points []mgl64.Vec3) {
	t.Helper()
	for i, p := range points {
		if !s.Contains(p, epsilon) {
			t.Errorf("point %d %v outside sphere %v r=%f (distance %f)",
				i, p, s.Center, s.Radius, p.Sub(s.Center).Len())
		}
	}
}

func TestCompute_Empty(t *testing.T) {
	s := Compute(nil)
	if s.Center != (mgl64.Vec3{}) || s.Radius != 0 {
		t.Errorf("expected zero sphere, got %+v", s)
	}
}

func TestCompute_SinglePoint(t *testing.T) {
	p := mgl64.Vec3{1.5, -2, 3}
	s := Compute([]mgl64.Vec3{p})
	if s.Center != p {
		t.Errorf("center: got %v, want %v", s.Center, p)
	}
	if s.Radius != 0 {
		t.Errorf("radius: got %f, want 0", s.Radius)
	}
}

func TestCompute_Known(t *testing.T) {
	tests := []struct {
		name       string
		points     []mgl64.Vec3
		wantCenter mgl64.Vec3
		wantRadius float64
	}{
		{
			name:       "two points",
			points:     []mgl64.Vec3{{-1, 0, 0}, {3, 0, 0}},
			wantCenter: mgl64.Vec3{1, 0, 0},
			wantRadius: 2,
		},
		{
			name:       "duplicates",
			points:     []mgl64.Vec3{{2, 2, 2}, {2, 2, 2}, {2, 2, 2}},
			wantCenter: mgl64.Vec3{2, 2, 2},
			wantRadius: 0,
		},
		{
			name:       "collinear",
			points:     []mgl64.Vec3{{0, 0, 0}, {1, 0, 0}, {4, 0, 0}, {2, 0, 0}},
			wantCenter: mgl64.Vec3{2, 0, 0},
			wantRadius: 2,
		},
		{
			name:       "right triangle",
			points:     []mgl64.Vec3{{0, 0, 0}, {2, 0, 0}, {0, 2, 0}},
			wantCenter: mgl64.Vec3{1, 1, 0},
			wantRadius: math.Sqrt2,
		},
		{
			name: "cube corners",
			points: []mgl64.Vec3{
				{-1, -1, -1}, {1, -1, -1}, {-1, 1, -1}, {1, 1, -1},
				{-1, -1, 1}, {1, -1, 1}, {-1, 1, 1}, {1, 1, 1},
			},
			wantCenter: mgl64.Vec3{0, 0, 0},
			wantRadius: math.Sqrt(3),
		},
		{
			name: "square with interior points",
			points: []mgl64.Vec3{
				{0, 0, 0}, {0.5, 0.5, 0}, {1, 0, 0}, {0.2, 0.7, 0}, {1, 1, 0}, {0, 1, 0},
			},
			wantCenter: mgl64.Vec3{0.5, 0.5, 0},
			wantRadius: math.Sqrt2 / 2,
		},
		{
			name: "octahedron",
			points: []mgl64.Vec3{
				{1, 0, 0}, {-1, 0, 0}, {0, 1, 0}, {0, -1, 0}, {0, 0, 1}, {0, 0, -1},
			},
			wantCenter: mgl64.Vec3{0, 0, 0},
			wantRadius: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Compute(tt.points)
			if !s.Center.ApproxEqualThreshold(tt.wantCenter, epsilon) {
				t.Errorf("center: got %v, want %v", s.Center, tt.wantCenter)
			}
			if math.Abs(s.Radius-tt.wantRadius) > epsilon {
				t.Errorf("radius: got %f, want %f", s.Radius, tt.wantRadius)
			}
			checkEncloses(t, s, tt.points)
		})
	}
}

func TestCompute_EnclosesPointCloud(t *testing.T) {
	// Deterministic pseudo-random cloud.
	var points []mgl64.Vec3
	seed := uint32(12345)
	next := func() float64 {
		seed = seed*1664525 + 1013904223
		return float64(seed)/float64(math.MaxUint32)*20 - 10
	}
	for i := 0; i < 500; i++ {
		points = append(points, mgl64.Vec3{next(), next(), next()})
	}

	s := Compute(points)
	checkEncloses(t, s, points)

	// The sphere is minimal: some point lies on its boundary.
	onBoundary := false
	for _, p := range points {
		if math.Abs(p.Sub(s.Center).Len()-s.Radius) < epsilon {
			onBoundary = true
			break
		}
	}
	if !onBoundary {
		t.Error("no point lies on the sphere boundary")
	}
}

func TestCompute_DoesNotModifyInput(t *testing.T) {
	points := []mgl64.Vec3{{0, 0, 0}, {5, 0, 0}, {0, 5, 0}, {1, 1, 1}}
	orig := make([]mgl64.Vec3, len(points))
	copy(orig, points)

	Compute(points)
	for i := range points {
		if points[i] != orig[i] {
			t.Fatalf("input reordered at %d", i)
		}
	}
}
