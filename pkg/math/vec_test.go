package math

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func TestVec3Length(t *testing.T) {
	v := Vec3{3, 4, 12}
	got := v.Length()
	want := float32(13)
	if got != want {
		t.Errorf("Vec3.Length() = %v, want %v", got, want)
	}
}

func TestVec3FlipZ(t *testing.T) {
	got := Vec3{1, 2, 3}.FlipZ()
	want := Vec3{1, 2, -3}
	if got != want {
		t.Errorf("Vec3.FlipZ() = %v, want %v", got, want)
	}
}

func TestVec3From64(t *testing.T) {
	got := Vec3From64(mgl64.Vec3{1.5, -2.25, 1e-3})
	want := Vec3{1.5, -2.25, float32(1e-3)}
	if got != want {
		t.Errorf("Vec3From64() = %v, want %v", got, want)
	}
	if back := got.To64(); back[0] != 1.5 || back[1] != -2.25 {
		t.Errorf("To64() = %v", back)
	}
}

func TestVec3Compare(t *testing.T) {
	tests := []struct {
		name string
		a, b Vec3
		want int
	}{
		{"equal", Vec3{1, 2, 3}, Vec3{1, 2, 3}, 0},
		{"x decides", Vec3{0, 9, 9}, Vec3{1, 0, 0}, -1},
		{"y decides", Vec3{1, 3, 0}, Vec3{1, 2, 9}, 1},
		{"z decides", Vec3{1, 2, 3}, Vec3{1, 2, 4}, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Compare(tt.b); got != tt.want {
				t.Errorf("Compare() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestVec3BitsDistinguishesSignedZero(t *testing.T) {
	pos := Vec3{0, 0, 0}
	neg := Vec3{0, 0, float32(math.Copysign(0, -1))}

	if pos.Compare(neg) != 0 {
		t.Fatal("signed zeros should compare equal")
	}
	if pos.Bits() == neg.Bits() {
		t.Error("signed zeros should have distinct bit patterns")
	}
}

func TestVec2FlipV(t *testing.T) {
	got := Vec2{0.25, 0.75}.FlipV()
	want := Vec2{0.25, 0.25}
	if got != want {
		t.Errorf("Vec2.FlipV() = %v, want %v", got, want)
	}
}

func TestVec2Compare(t *testing.T) {
	if (Vec2{1, 2}).Compare(Vec2{1, 3}) != -1 {
		t.Error("expected (1,2) < (1,3)")
	}
	if (Vec2{2, 0}).Compare(Vec2{1, 3}) != 1 {
		t.Error("expected (2,0) > (1,3)")
	}
}
