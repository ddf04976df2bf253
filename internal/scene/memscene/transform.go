package memscene

import (
	"fmt"
	"sort"

	"github.com/go-gl/mathgl/mgl64"
)

// Channel names one animatable scalar attribute of a transform.
type Channel string

const (
	TranslateX Channel = "tx"
	TranslateY Channel = "ty"
	TranslateZ Channel = "tz"
	RotateX    Channel = "rx"
	RotateY    Channel = "ry"
	RotateZ    Channel = "rz"
	ScaleX     Channel = "sx"
	ScaleY     Channel = "sy"
	ScaleZ     Channel = "sz"
)

// channels in evaluation order: translate, rotate, scale; x, y, z.
var channels = [9]Channel{
	TranslateX, TranslateY, TranslateZ,
	RotateX, RotateY, RotateZ,
	ScaleX, ScaleY, ScaleZ,
}

// ParseChannel validates a channel name.
func ParseChannel(name string) (Channel, error) {
	for _, c := range channels {
		if string(c) == name {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown channel %q", name)
}

// Key is one linear animation key.
type Key struct {
	Time  float64
	Value float64
}

// Transform is a transform node. Rotation is Euler XYZ in degrees. Keyed
// channels override the static values and interpolate linearly, holding
// the first and last key outside their range.
type Transform struct {
	node
	scene *Scene

	Translate mgl64.Vec3
	Rotate    mgl64.Vec3
	Scale     mgl64.Vec3
	Keys      map[Channel][]Key
}

// SetKeys replaces the keys of a channel.
func (t *Transform) SetKeys(c Channel, keys ...Key) {
	sorted := make([]Key, len(keys))
	copy(sorted, keys)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Time < sorted[j].Time })
	t.Keys[c] = sorted
}

// KeyTimes returns the times of every key on every channel.
func (t *Transform) KeyTimes() ([]float64, error) {
	var times []float64
	for _, c := range channels {
		for _, k := range t.Keys[c] {
			times = append(times, k.Time)
		}
	}
	return times, nil
}

func (t *Transform) static(c Channel) float64 {
	switch c {
	case TranslateX, TranslateY, TranslateZ:
		return t.Translate[axis(c)]
	case RotateX, RotateY, RotateZ:
		return t.Rotate[axis(c)]
	default:
		return t.Scale[axis(c)]
	}
}

func axis(c Channel) int {
	switch c[1] {
	case 'x':
		return 0
	case 'y':
		return 1
	default:
		return 2
	}
}

// value evaluates one channel at time.
func (t *Transform) value(c Channel, time float64) float64 {
	keys := t.Keys[c]
	if len(keys) == 0 {
		return t.static(c)
	}
	if time <= keys[0].Time {
		return keys[0].Value
	}
	last := keys[len(keys)-1]
	if time >= last.Time {
		return last.Value
	}
	i := sort.Search(len(keys), func(i int) bool { return keys[i].Time > time })
	a, b := keys[i-1], keys[i]
	f := (time - a.Time) / (b.Time - a.Time)
	return a.Value + (b.Value-a.Value)*f
}

// LocalMatrix evaluates the local transformation at time.
func (t *Transform) LocalMatrix(time float64) mgl64.Mat4 {
	var v [9]float64
	for i, c := range channels {
		v[i] = t.value(c, time)
	}
	translate := mgl64.Translate3D(v[0], v[1], v[2])
	rotate := mgl64.HomogRotate3DZ(mgl64.DegToRad(v[5])).
		Mul4(mgl64.HomogRotate3DY(mgl64.DegToRad(v[4]))).
		Mul4(mgl64.HomogRotate3DX(mgl64.DegToRad(v[3])))
	scale := mgl64.Scale3D(v[6], v[7], v[8])
	return translate.Mul4(rotate).Mul4(scale)
}

// WorldMatrix evaluates the world matrix at the scene clock's time.
func (t *Transform) WorldMatrix() (mgl64.Mat4, error) {
	return t.worldAt(t.scene.clock.now), nil
}

func (t *Transform) worldAt(time float64) mgl64.Mat4 {
	m := t.LocalMatrix(time)
	for p := t.parent; p != nil; p = p.parent {
		m = p.LocalMatrix(time).Mul4(m)
	}
	return m
}
