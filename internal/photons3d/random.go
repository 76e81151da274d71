package photons3d

import (
	"math/rand/v2"
)

const golden = 0x9e3779b97f4a7c15

// StreamManager derives one independent random stream per photon index from a
// single run seed. It holds no mutable state and can be shared freely.
type StreamManager struct {
	seed uint64
}

func NewStreamManager(seed uint64) StreamManager { return StreamManager{seed: seed} }

// Seed returns the run seed.
func (m StreamManager) Seed() uint64 { return m.seed }

// Stream is a photon's private uniform generator. It must only be used by the
// lane that owns the photon.
type Stream struct {
	pcg rand.PCG
}

// Init (re)seeds s for photon index; the same (seed, index) always yields the same sequence.
func (m StreamManager) Init(s *Stream, index int) {
	s.pcg.Seed(splitmix64(m.seed), splitmix64(m.seed^(uint64(index)+1)*golden))
}

// Stream returns a freshly seeded stream for photon index.
func (m StreamManager) Stream(index int) *Stream {
	s := &Stream{}
	m.Init(s, index)
	return s
}

// Streams arena-allocates and seeds the streams for photons first..first+n-1.
func (m StreamManager) Streams(first, n int) []Stream {
	out := make([]Stream, n)
	for i := range out {
		m.Init(&out[i], first+i)
	}
	return out
}

// Float64 returns a uniform sample in [0,1).
func (s *Stream) Float64() Real { return Real(s.pcg.Uint64()>>11) * 0x1p-53 }

// OpenFloat64 returns a uniform sample in (0,1], safe for -ln(u).
func (s *Stream) OpenFloat64() Real { return Real((s.pcg.Uint64()>>11)+1) * 0x1p-53 }

func splitmix64(x uint64) uint64 {
	x += golden
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	return x ^ (x >> 31)
}
