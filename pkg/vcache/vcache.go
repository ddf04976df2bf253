// Package vcache reorders triangle index lists for post-transform vertex
// cache efficiency.
//
// The optimizer is a greedy forward pass in the style of Forsyth's linear-speed
// algorithm: vertices are scored by their position in a simulated FIFO cache
// and by how many unprocessed triangles still use them, and the highest scoring
// triangle adjacent to the cache is emitted next. The result is not globally
// optimal but runs in roughly linear time.
package vcache

import (
	"errors"
	"fmt"
	"math"
)

// DefaultCacheSize is the FIFO depth assumed for target hardware.
const DefaultCacheSize = 16

// Scoring constants.
const (
	cacheDecayPower   = 1.5
	lastTriScore      = 0.75
	valenceBoostScale = 2.0
	valenceBoostPower = 0.5
)

var (
	ErrInvalidIndexBuffer = errors.New("invalid index buffer")
	ErrInvalidCacheSize   = errors.New("invalid cache size")
)

// Optimize reorders the triangles of indices in place using DefaultCacheSize.
// vertexCount bounds the valid index range.
func Optimize(indices []uint32, vertexCount int) error {
	return OptimizeCache(indices, vertexCount, DefaultCacheSize)
}

type vertex struct {
	tris     []int // unprocessed triangles using the vertex
	cachePos int   // -1 when not cached
	score    float64
}

// OptimizeCache reorders triangles in place for a FIFO cache of cacheSize
// entries. Triangles keep their three indices and their winding; only the
// order of triangles changes. On error indices is left untouched.
func OptimizeCache(indices []uint32, vertexCount, cacheSize int) error {
	if cacheSize <= 3 {
		return fmt.Errorf("%w: %d", ErrInvalidCacheSize, cacheSize)
	}
	if len(indices)%3 != 0 {
		return fmt.Errorf("%w: %d indices is not a whole number of triangles", ErrInvalidIndexBuffer, len(indices))
	}
	for i, idx := range indices {
		if int(idx) >= vertexCount {
			return fmt.Errorf("%w: index %d at %d out of range [0,%d)", ErrInvalidIndexBuffer, idx, i, vertexCount)
		}
	}

	triCount := len(indices) / 3
	if triCount == 0 {
		return nil
	}

	verts := make([]vertex, vertexCount)
	for i := range verts {
		verts[i].cachePos = -1
	}
	for t := 0; t < triCount; t++ {
		for k := 0; k < 3; k++ {
			v := &verts[indices[t*3+k]]
			v.tris = append(v.tris, t)
		}
	}
	for i := range verts {
		verts[i].score = vertexScore(&verts[i], cacheSize)
	}

	triScore := make([]float64, triCount)
	added := make([]bool, triCount)
	scoreTri := func(t int) {
		triScore[t] = verts[indices[t*3]].score + verts[indices[t*3+1]].score + verts[indices[t*3+2]].score
	}
	for t := range triScore {
		scoreTri(t)
	}

	out := make([]uint32, 0, len(indices))
	cache := make([]uint32, 0, cacheSize+3)
	next := make([]uint32, 0, cacheSize+3)
	touched := make([]uint32, 0, cacheSize+3)

	best := -1
	for emitted := 0; emitted < triCount; emitted++ {
		if best < 0 {
			best = bestUnadded(triScore, added)
		}

		added[best] = true
		tri := indices[best*3 : best*3+3]
		out = append(out, tri...)
		for _, idx := range tri {
			removeTri(&verts[idx], best)
		}

		// FIFO update: misses enter at the front, hits keep their slot.
		next = next[:0]
		for _, idx := range tri {
			if verts[idx].cachePos < 0 && !contains(next, idx) {
				next = append(next, idx)
			}
		}
		next = append(next, cache...)

		touched = touched[:0]
		for i, idx := range next {
			if i < cacheSize {
				verts[idx].cachePos = i
			} else {
				verts[idx].cachePos = -1
			}
			touched = append(touched, idx)
		}
		if len(next) > cacheSize {
			next = next[:cacheSize]
		}
		cache, next = next, cache

		for _, idx := range touched {
			verts[idx].score = vertexScore(&verts[idx], cacheSize)
		}

		best = -1
		bestScore := math.Inf(-1)
		for _, idx := range touched {
			for _, t := range verts[idx].tris {
				scoreTri(t)
				if verts[idx].cachePos >= 0 && triScore[t] > bestScore {
					best, bestScore = t, triScore[t]
				}
			}
		}
	}

	copy(indices, out)
	return nil
}

func vertexScore(v *vertex, cacheSize int) float64 {
	remaining := len(v.tris)
	if remaining == 0 {
		return -1
	}

	var score float64
	switch {
	case v.cachePos < 0:
	case v.cachePos < 3:
		score = lastTriScore
	default:
		scaler := 1.0 / float64(cacheSize-3)
		score = math.Pow(1.0-float64(v.cachePos-3)*scaler, cacheDecayPower)
	}
	return score + valenceBoostScale*math.Pow(float64(remaining), -valenceBoostPower)
}

func bestUnadded(scores []float64, added []bool) int {
	best := -1
	bestScore := math.Inf(-1)
	for t, s := range scores {
		if !added[t] && s > bestScore {
			best, bestScore = t, s
		}
	}
	return best
}

func removeTri(v *vertex, t int) {
	for i, other := range v.tris {
		if other == t {
			last := len(v.tris) - 1
			v.tris[i] = v.tris[last]
			v.tris = v.tris[:last]
			return
		}
	}
}

func contains(s []uint32, v uint32) bool {
	for _, x := range s {
		if x == v {
			return true
		}
	}
	return false
}

// MissCount simulates a FIFO cache of cacheSize entries over indices in
// their current order and returns the number of misses.
func MissCount(indices []uint32, cacheSize int) int {
	if cacheSize <= 0 {
		return len(indices)
	}
	fifo := make([]uint32, cacheSize)
	filled, head, misses := 0, 0, 0
	for _, idx := range indices {
		if contains(fifo[:filled], idx) {
			continue
		}
		misses++
		fifo[head] = idx
		head = (head + 1) % cacheSize
		if filled < cacheSize {
			filled++
		}
	}
	return misses
}
