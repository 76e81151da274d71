package photons3d

import (
	"context"
	"os"
)

// RunOptions override config values from the command line. Zero fields keep the config's.
type RunOptions struct {
	Output    string
	Seed      *uint64
	Lanes     int
	BatchSize int
	MaxSteps  int
}

// Run loads cfgPath, transports every photon and writes the hits.
func Run(ctx context.Context, cfgPath string, opts RunOptions) (*RunResult, error) {
	cfg, err := LoadConfig(cfgPath)
	if err != nil {
		return nil, err
	}
	if opts.Output != "" {
		cfg.Output = opts.Output
	}
	if opts.Seed != nil {
		cfg.Seed = *opts.Seed
	}
	if opts.Lanes > 0 {
		cfg.Lanes = opts.Lanes
	}
	if opts.BatchSize > 0 {
		cfg.MaxBatchSize = opts.BatchSize
	}
	if opts.MaxSteps > 0 {
		cfg.MaxSteps = opts.MaxSteps
	}

	scene, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	st := scene.BVH.Stats()
	slogger().Info("scene built", "config", cfgPath, "triangles", scene.Geometry.NumTriangles(), "bvhNodes", st.Nodes, "bvhDepth", st.MaxDepth, "photons", len(scene.Sources))

	t, err := scene.Transport()
	if err != nil {
		return nil, err
	}
	res, err := t.Run(ctx, scene.Sources, cfg.RunConfig())
	if res != nil && len(res.Hits) > 0 || err == nil {
		// partial results are still worth keeping after a cancellation
		if werr := WriteHits(cfg.Output, res.Hits); werr != nil {
			if err == nil {
				err = werr
			}
		} else {
			slogger().Info("hits written", "path", cfg.Output, "hits", len(res.Hits), "run", res.RunID.String())
		}
	}
	if res != nil && res.Clamped > 0 {
		slogger().Warn("property lookups clamped to table range", "count", res.Clamped)
	}
	if Debug {
		ProcessStats(os.Stdout)
	}
	return res, err
}
