package photons3d

import (
	"context"
	"path/filepath"
	"testing"
)

func TestRunWritesHits(t *testing.T) {
	cfgPath := writeFile(t, "cavity.json", cavityJSON)
	out := filepath.Join(t.TempDir(), "run", "hits.jsonl.zst")
	seed := uint64(99)
	res, err := Run(context.Background(), cfgPath, RunOptions{Output: out, Seed: &seed, Lanes: 3, BatchSize: 64})
	if err != nil {
		t.Fatal(err)
	}
	if res.Batches != 5 || res.Tally.Launched != 300 {
		t.Fatalf("batches %d launched %d", res.Batches, res.Tally.Launched)
	}
	hits, err := ReadHits(out)
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != len(res.Hits) {
		t.Fatalf("file has %d hits, result %d", len(hits), len(res.Hits))
	}
	for i := range hits {
		if hits[i] != res.Hits[i] {
			t.Fatalf("hit %d differs: %+v vs %+v", i, hits[i], res.Hits[i])
		}
	}

	// Same seed, different lanes and batch size: identical output.
	again, err := Run(context.Background(), cfgPath, RunOptions{Output: filepath.Join(t.TempDir(), "b.jsonl"), Seed: &seed, Lanes: 1})
	if err != nil {
		t.Fatal(err)
	}
	if len(again.Hits) != len(res.Hits) {
		t.Fatalf("rerun produced %d hits, want %d", len(again.Hits), len(res.Hits))
	}
	for i := range again.Hits {
		if again.Hits[i] != res.Hits[i] {
			t.Fatalf("rerun hit %d differs", i)
		}
	}
}

func TestRunCancelledKeepsPartialHits(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	out := filepath.Join(t.TempDir(), "hits.jsonl")
	res, err := Run(ctx, writeFile(t, "cavity.json", cavityJSON), RunOptions{Output: out})
	if err == nil {
		t.Fatal("cancelled run returned no error")
	}
	if res == nil || res.Unfinished == 0 {
		t.Fatalf("expected unfinished photons, got %+v", res)
	}
}

func TestRunBadConfig(t *testing.T) {
	if _, err := Run(context.Background(), writeFile(t, "bad.yaml", "materials: []\n"), RunOptions{}); err == nil {
		t.Fatal("empty config accepted")
	}
}
