package photons3d

import (
	"sort"
	"sync"
	"testing"
)

func TestAggregatorConcurrentAppend(t *testing.T) {
	a := NewHitAggregator()
	const workers, per = 8, 1000
	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for i := 0; i < per; i++ {
				id := w*per + i
				a.Append(ChannelHit{Channel: id % 70, Time: Real((id * 7919) % 1000), PhotonID: id})
			}
		}()
	}
	wg.Wait()

	if a.Len() != workers*per {
		t.Fatalf("Len = %d", a.Len())
	}
	chs := a.Channels()
	if len(chs) != 70 || !sort.IntsAreSorted(chs) {
		t.Fatalf("channels: %v", chs)
	}
	seen := make(map[int]bool)
	for _, ch := range chs {
		hits := a.Channel(ch)
		for i, h := range hits {
			if h.Channel != ch {
				t.Fatalf("hit %+v filed under %d", h, ch)
			}
			if i > 0 && hitLess(h, hits[i-1]) {
				t.Fatalf("channel %d not sorted at %d", ch, i)
			}
			if seen[h.PhotonID] {
				t.Fatalf("photon %d duplicated", h.PhotonID)
			}
			seen[h.PhotonID] = true
		}
	}
	all := a.All()
	if len(all) != workers*per {
		t.Fatalf("All returned %d", len(all))
	}
	for i := 1; i < len(all); i++ {
		if all[i-1].Channel > all[i].Channel {
			t.Fatalf("All not grouped by channel at %d", i)
		}
	}
}

func TestAggregatorTieOnTime(t *testing.T) {
	a := NewHitAggregator()
	a.Append(ChannelHit{Channel: 2, Time: 5, PhotonID: 9})
	a.Append(ChannelHit{Channel: 2, Time: 5, PhotonID: 3})
	a.Append(ChannelHit{Channel: 2, Time: 1, PhotonID: 20})
	hits := a.Channel(2)
	if hits[0].PhotonID != 20 || hits[1].PhotonID != 3 || hits[2].PhotonID != 9 {
		t.Fatalf("order: %+v", hits)
	}
	if len(a.Channel(99)) != 0 {
		t.Fatalf("unknown channel should be empty")
	}
	// channels sharing a shard stay apart
	a.Append(ChannelHit{Channel: 2 + NumShards, Time: 0, PhotonID: 1})
	if len(a.Channel(2)) != 3 || len(a.Channel(2+NumShards)) != 1 {
		t.Fatalf("shard collision mixed channels")
	}
}
