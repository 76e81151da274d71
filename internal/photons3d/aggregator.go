package photons3d

import (
	"sort"
)

// HitAggregator collects detections per channel. Append is safe from many lanes;
// readers see hits in a canonical order independent of lane scheduling.
type HitAggregator struct {
	locks  shardLocks
	shards [NumShards]map[int][]ChannelHit
}

func NewHitAggregator() *HitAggregator {
	a := &HitAggregator{}
	for i := range a.shards {
		a.shards[i] = make(map[int][]ChannelHit)
	}
	return a
}

// Append records one hit.
func (a *HitAggregator) Append(h ChannelHit) {
	a.locks.lock(h.Channel)
	s := a.shards[shardOf(h.Channel)]
	s[h.Channel] = append(s[h.Channel], h)
	a.locks.unlock(h.Channel)
}

func hitLess(a, b ChannelHit) bool {
	if a.Time != b.Time {
		return a.Time < b.Time
	}
	return a.PhotonID < b.PhotonID
}

// Channel returns a copy of the channel's hits sorted by (time, photon id).
func (a *HitAggregator) Channel(id int) []ChannelHit {
	a.locks.lock(id)
	out := append([]ChannelHit(nil), a.shards[shardOf(id)][id]...)
	a.locks.unlock(id)
	sort.Slice(out, func(i, j int) bool { return hitLess(out[i], out[j]) })
	return out
}

// Channels returns the ids of channels with at least one hit, ascending.
func (a *HitAggregator) Channels() []int {
	var ids []int
	for i := range a.shards {
		a.locks.mu[i].Lock()
		for ch := range a.shards[i] {
			ids = append(ids, ch)
		}
		a.locks.mu[i].Unlock()
	}
	sort.Ints(ids)
	return ids
}

// All returns every hit sorted by (channel, time, photon id).
func (a *HitAggregator) All() []ChannelHit {
	var out []ChannelHit
	for _, ch := range a.Channels() {
		out = append(out, a.Channel(ch)...)
	}
	return out
}

// Len is the total number of hits.
func (a *HitAggregator) Len() int {
	n := 0
	for i := range a.shards {
		a.locks.mu[i].Lock()
		for _, hs := range a.shards[i] {
			n += len(hs)
		}
		a.locks.mu[i].Unlock()
	}
	return n
}
