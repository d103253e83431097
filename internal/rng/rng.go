// SPDX-License-Identifier: MIT
// Package rng centralizes deterministic random generation for the unmixing engine.
//
// Goals:
//   - Determinism: same seed ⇒ identical results across platforms.
//   - Encapsulation: a single RNG factory; no time-based sources hidden anywhere.
//   - Independence: restarts, bags and K-trials draw from derived sub-streams
//     instead of sharing one mutable generator.
//
// Concurrency:
//   - math/rand.Rand is NOT goroutine-safe. Do not share a *rand.Rand across goroutines.
//   - Use Derive or DeriveSeed to create independent streams for parallel work.
package rng

import "math/rand"

// DefaultSeed is the fixed “zero” seed used when callers pass seed==0.
const DefaultSeed int64 = 1

// New returns a deterministic *rand.Rand.
// Policy: seed==0 ⇒ use DefaultSeed; otherwise use the provided seed verbatim.
//
// Complexity: O(1).
func New(seed int64) *rand.Rand {
	s := seed
	if s == 0 {
		s = DefaultSeed
	}

	return rand.New(rand.NewSource(s))
}

// DeriveSeed mixes a parent seed and a stream identifier into a new 64-bit seed.
// The mix is a SplitMix64 finalizer, so neighbouring streams are decorrelated.
//
// Complexity: O(1).
func DeriveSeed(parent int64, stream uint64) int64 {
	var x uint64
	x = uint64(parent) ^ (stream + 0x9e3779b97f4a7c15)
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	x ^= x >> 31

	return int64(x)
}

// Derive creates an independent RNG stream from a base RNG and a stream identifier.
// If base==nil, DefaultSeed is used as the parent. Otherwise base.Int63() is consumed
// once, so two derivations with the same stream id still differ.
//
// Complexity: O(1).
func Derive(base *rand.Rand, stream uint64) *rand.Rand {
	var parent int64
	if base == nil {
		parent = DefaultSeed
	} else {
		parent = base.Int63()
	}

	return rand.New(rand.NewSource(DeriveSeed(parent, stream)))
}

// SampleWithoutReplacement returns m distinct indices from [0,n) in draw order,
// using a partial Fisher–Yates shuffle. m is clamped to [0,n].
//
// Complexity: O(n) time and space.
func SampleWithoutReplacement(n, m int, r *rand.Rand) []int {
	if m > n {
		m = n
	}
	if m <= 0 {
		return []int{}
	}
	if r == nil {
		r = New(0)
	}

	perm := make([]int, n)
	var i, j int
	for i = 0; i < n; i++ {
		perm[i] = i
	}
	for i = 0; i < m; i++ {
		j = i + r.Intn(n-i)
		perm[i], perm[j] = perm[j], perm[i]
	}

	return perm[:m]
}
