package anim

import (
	"errors"
	"fmt"
	"sort"

	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"

	"github.com/Faultbox/redux-exporter/internal/scene"
)

// KeyFrame is a world matrix sampled at a time in seconds.
type KeyFrame struct {
	Time   float64
	Matrix mgl64.Mat4
}

// Animation holds the sampled tracks of one export, keyed by the
// pipe-stripped full path name of each transform.
type Animation struct {
	Start  float64
	End    float64
	tracks map[string][]KeyFrame
}

// Track returns the keyframes of a transform, or nil.
func (a *Animation) Track(name string) []KeyFrame {
	return a.tracks[name]
}

// IsAnimated reports whether a transform has more than one keyframe.
func (a *Animation) IsAnimated(name string) bool {
	return len(a.tracks[name]) > 1
}

// Names returns the track names in sorted order.
func (a *Animation) Names() []string {
	names := make([]string, 0, len(a.tracks))
	for name := range a.tracks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of tracks.
func (a *Animation) Len() int {
	return len(a.tracks)
}

// Builder samples every transform of a scene.
type Builder struct {
	log *zap.Logger
}

// NewBuilder creates a builder. A nil logger discards output.
func NewBuilder(log *zap.Logger) *Builder {
	if log == nil {
		log = zap.NewNop()
	}
	return &Builder{log: log}
}

// sample is one entry of the time-ordered resampling schedule.
type sample struct {
	time      float64
	transform int
}

// Build samples every transform onto the shared time base. Each distinct
// time is visited once, in order, and the clock is moved only when the
// time changes. The clock is restored to its initial time on return.
//
// A transform whose queries fail is logged and left out; clock failures
// abort the build.
func (b *Builder) Build(s scene.Scene) (a *Animation, err error) {
	transforms := s.Transforms()
	names := make([]string, len(transforms))
	skipped := make([]bool, len(transforms))

	a = &Animation{tracks: make(map[string][]KeyFrame)}
	var schedule []sample

	for i, tr := range transforms {
		names[i] = scene.StripPipes(tr.FullPathName())
		keyTimes, err := tr.KeyTimes()
		if err != nil {
			b.skip(scene.Query("key times", tr.FullPathName(), err))
			skipped[i] = true
			continue
		}

		times := SampleTimes(keyTimes)
		for _, t := range times {
			schedule = append(schedule, sample{time: t, transform: i})
		}
		b.log.Debug("Sampling transform",
			zap.String("transform", names[i]),
			zap.Int("keys", len(keyTimes)),
			zap.Int("samples", len(times)))
	}

	sort.SliceStable(schedule, func(i, j int) bool {
		return schedule[i].time < schedule[j].time
	})

	clock := s.Clock()
	initial := clock.Now()
	defer func() {
		if rerr := clock.Set(initial); rerr != nil {
			err = errors.Join(err, fmt.Errorf("restoring clock: %w", rerr))
			a = nil
		}
	}()

	current := initial
	positioned := false
	for _, smp := range schedule {
		if skipped[smp.transform] {
			continue
		}
		if !positioned || smp.time != current {
			if err := clock.Set(smp.time); err != nil {
				return nil, fmt.Errorf("setting clock to %v: %w", smp.time, err)
			}
			current, positioned = smp.time, true
		}

		tr := transforms[smp.transform]
		m, err := tr.WorldMatrix()
		if err != nil {
			b.skip(scene.Query("world matrix", tr.FullPathName(), err))
			skipped[smp.transform] = true
			delete(a.tracks, names[smp.transform])
			continue
		}
		name := names[smp.transform]
		a.tracks[name] = append(a.tracks[name], KeyFrame{Time: smp.time, Matrix: m})
	}

	a.Start, a.End = sampleRange(schedule, skipped)

	b.log.Info("Sampled animation",
		zap.Int("tracks", len(a.tracks)),
		zap.Float64("start", a.Start),
		zap.Float64("end", a.End))
	return a, nil
}

// sampleRange returns the first and last time of the retained samples of a
// sorted schedule, or zeros when nothing was retained.
func sampleRange(schedule []sample, skipped []bool) (start, end float64) {
	found := false
	for _, smp := range schedule {
		if skipped[smp.transform] {
			continue
		}
		if !found {
			start, found = smp.time, true
		}
		end = smp.time
	}
	return start, end
}

func (b *Builder) skip(err error) {
	b.log.Warn("Skipping transform", zap.Error(err))
}
