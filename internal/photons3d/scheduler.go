package photons3d

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// RunConfig tunes one transport run. Zero fields take the package defaults.
type RunConfig struct {
	Seed          uint64
	MaxSteps      int   // per-photon step cap
	MaxBatchSize  int   // photons resident at once
	Lanes         int   // concurrent workers, runtime.NumCPU() by default
	StepsPerRound int   // steps per photon between compaction barriers
	StepBudget    int64 // total steps for the run, 0 for unlimited
	MaxDistance   Real  // bound for boundary queries
}

func (c RunConfig) withDefaults() RunConfig {
	if c.MaxSteps <= 0 {
		c.MaxSteps = MaxSteps
	}
	if c.MaxBatchSize <= 0 {
		c.MaxBatchSize = MaxBatchSize
	}
	if c.Lanes <= 0 {
		c.Lanes = runtime.NumCPU()
	}
	if c.Lanes < 1 {
		c.Lanes = 1
	}
	if c.StepsPerRound <= 0 {
		c.StepsPerRound = StepsPerRound
	}
	if c.MaxDistance <= 0 {
		c.MaxDistance = MaxDistance
	}
	return c
}

// RunResult is everything a run produced. On error it holds whatever was
// finished before the failure or cancellation.
type RunResult struct {
	RunID      uuid.UUID
	Hits       []ChannelHit
	Tally      Tally
	Batches    int
	Unfinished int // photons never launched or still alive when the run stopped
	Clamped    int64
	Elapsed    time.Duration
}

// Run propagates every source to a terminal state.
func (t *Transport) Run(ctx context.Context, sources []PhotonSource, cfg RunConfig) (*RunResult, error) {
	cfg = cfg.withDefaults()
	for i := range sources {
		if err := checkSource(i, &sources[i]); err != nil {
			return nil, err
		}
	}

	res := &RunResult{RunID: uuid.New()}
	log := t.log().With("run", res.RunID.String())
	log.Info("transport started", "photons", len(sources), "seed", cfg.Seed, "lanes", cfg.Lanes, "batch", cfg.MaxBatchSize, "maxSteps", cfg.MaxSteps)

	start := time.Now()
	clamped0 := t.props.Clamped()
	hits := NewHitAggregator()
	streams := NewStreamManager(cfg.Seed)
	var err error
	for first := 0; first < len(sources); first += cfg.MaxBatchSize {
		if err = ctx.Err(); err != nil {
			break
		}
		last := min(first+cfg.MaxBatchSize, len(sources))
		b := &batch{
			t:       t,
			cfg:     cfg,
			hits:    hits,
			streams: streams,
			first:   first,
			budget:  cfg.StepBudget - res.Tally.Steps,
		}
		tally, alive, berr := b.run(ctx, sources[first:last])
		res.Tally.merge(tally)
		res.Batches++
		log.Debug("batch done", "batch", res.Batches, "first", first, "photons", last-first, "steps", tally.Steps, "detected", tally.Detected)
		if berr != nil {
			res.Unfinished += alive + len(sources) - last
			err = berr
			break
		}
	}
	if err != nil && res.Unfinished == 0 {
		res.Unfinished = len(sources) - int(res.Tally.Launched)
	}

	res.Hits = hits.All()
	res.Clamped = t.props.Clamped() - clamped0
	res.Elapsed = time.Since(start)

	if res.Tally.KilledStepLimit > 0 {
		log.Warn("photons killed by step limit", "killed", res.Tally.KilledStepLimit, "budget", res.Tally.StepBudgetKills, "degenerate", res.Tally.Degenerate)
	}
	if err != nil {
		log.Error("transport stopped", "err", err, "unfinished", res.Unfinished, "hits", len(res.Hits))
		return res, err
	}
	log.Info("transport finished", "hits", len(res.Hits), "steps", res.Tally.Steps, "elapsed", res.Elapsed, "tally", res.Tally.String())
	return res, nil
}

func checkSource(i int, s *PhotonSource) error {
	if !s.Position.isFinite() || !s.Direction.isFinite() || !s.Polarization.isFinite() {
		return invalidConfig("source %d has a non-finite vector", i)
	}
	if !(s.Wavelength > 0) || !isFinite(s.Wavelength) {
		return invalidConfig("source %d has wavelength %v", i, s.Wavelength)
	}
	if !isFinite(s.Time) {
		return invalidConfig("source %d has time %v", i, s.Time)
	}
	return nil
}

// batch holds the photons of one MaxBatchSize slice of the sources.
type batch struct {
	t       *Transport
	cfg     RunConfig
	hits    *HitAggregator
	streams StreamManager
	first   int   // global index of the batch's first photon
	budget  int64 // steps left in the run budget when the batch started
}

// launch turns source i of the batch into an alive photon.
func (b *batch) launch(p *Photon, i int, src *PhotonSource, rng *Stream, tally *Tally) {
	*p = Photon{
		ID:           b.first + i,
		Pos:          src.Position,
		Wavelength:   src.Wavelength,
		Time:         src.Time,
		Weight:       1,
		LastTriangle: -1,
		rng:          rng,
	}
	tally.Launched++
	dir, ok := unit(src.Direction)
	if !ok {
		tally.Degenerate++
		p.State = KilledStepLimit
		tally.record(p.State)
		return
	}
	pol := src.Polarization
	if np := pol.Sub(dir.Mul(pol.Dot(dir))); np.Len() < 1e-6 {
		pol = randomPerpendicular(dir, rng)
	}
	if err := p.setDirection(dir, pol); err != nil {
		tally.Degenerate++
		p.State = KilledStepLimit
		tally.record(p.State)
		return
	}
	p.Material = b.t.geo.MaterialAt(b.t.bvh, p.Pos, p.Dir, b.cfg.MaxDistance)
}

// run returns the batch tally and, on error, how many photons were left alive.
func (b *batch) run(ctx context.Context, sources []PhotonSource) (Tally, int, error) {
	n := len(sources)
	photons := make([]Photon, n)
	rngs := b.streams.Streams(b.first, n)

	var tally Tally
	work := make([]int32, 0, n)
	for i := range photons {
		b.launch(&photons[i], i, &sources[i], &rngs[i], &tally)
		if photons[i].State == Alive {
			work = append(work, int32(i))
		}
	}

	lanes := min(b.cfg.Lanes, max(len(work), 1))
	laneTallies := make([]Tally, lanes)
	var used int64
	for round := 0; len(work) > 0; round++ {
		if b.cfg.StepBudget > 0 && used >= b.budget {
			b.t.log().Debug("step budget exhausted", "round", round, "alive", len(work))
			for _, idx := range work {
				p := &photons[idx]
				p.State = KilledStepLimit
				tally.StepBudgetKills++
				tally.record(p.State)
				if Debug {
					logProcess(StepLimit, p)
				}
			}
			break
		}

		g, gctx := errgroup.WithContext(ctx)
		// Spread the working set evenly, remainder to the first lanes.
		base, rem := len(work)/lanes, len(work)%lanes
		lo := 0
		for li := 0; li < lanes; li++ {
			size := base
			if li < rem {
				size++
			}
			if size == 0 {
				break
			}
			part := work[lo : lo+size]
			lo += size
			l := &lane{
				t:        b.t,
				hits:     b.hits,
				tally:    &laneTallies[li],
				maxSteps: b.cfg.MaxSteps,
				maxDist:  b.cfg.MaxDistance,
			}
			g.Go(func() error {
				for k, idx := range part {
					if k&255 == 255 && gctx.Err() != nil {
						return gctx.Err()
					}
					p := &photons[idx]
					for s := 0; s < b.cfg.StepsPerRound && p.State == Alive; s++ {
						if err := l.step(p); err != nil {
							return fmt.Errorf("photon %d: %w", p.ID, err)
						}
					}
				}
				return nil
			})
		}
		err := g.Wait()

		// Barrier: drop terminal photons, keeping the order of the rest.
		kept := work[:0]
		for _, idx := range work {
			if photons[idx].State == Alive {
				kept = append(kept, idx)
			}
		}
		work = kept
		if err != nil {
			return b.merge(tally, laneTallies), len(work), err
		}

		used = 0
		for i := range laneTallies {
			used += laneTallies[i].Steps
		}
		if err := ctx.Err(); err != nil {
			return b.merge(tally, laneTallies), len(work), err
		}
	}
	return b.merge(tally, laneTallies), 0, nil
}

func (b *batch) merge(t Tally, lanes []Tally) Tally {
	for i := range lanes {
		t.merge(lanes[i])
	}
	return t
}
