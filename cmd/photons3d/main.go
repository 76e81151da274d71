package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime/pprof"

	"github.com/alecthomas/kong"

	"github.com/lukaszgryglicki/photons3d/internal/photons3d"
)

var CLI struct {
	Debug    bool        `help:"record per-photon process events and log at debug level" env:"DEBUG"`
	Run      RunCmd      `cmd:"" default:"withargs" help:"transport the photons of a scene"`
	BVH      BVHCmd      `cmd:"" name:"bvh" help:"print acceleration structure statistics"`
	Validate ValidateCmd `cmd:"" help:"build a scene and check its geometry and BVH"`
}

type RunCmd struct {
	Config   string  `arg:"" optional:"" name:"config" default:"scenes/config.json" help:"scene config (.json, .yaml)"`
	Out      string  `short:"o" help:"hit file; .zst and .sz are compressed"`
	Seed     *uint64 `help:"run seed, overrides the config"`
	Lanes    int     `help:"concurrent lanes (default: number of CPUs)"`
	Batch    int     `help:"photons per batch"`
	MaxSteps int     `name:"max-steps" help:"per-photon step cap"`
}

func (c RunCmd) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	res, err := photons3d.Run(ctx, c.Config, photons3d.RunOptions{
		Output:    c.Out,
		Seed:      c.Seed,
		Lanes:     c.Lanes,
		BatchSize: c.Batch,
		MaxSteps:  c.MaxSteps,
	})
	if res != nil {
		fmt.Printf("run %s: %d hits in %s\n%s\n", res.RunID, len(res.Hits), res.Elapsed, res.Tally)
	}
	return err
}

type BVHCmd struct {
	Config string `arg:"" name:"config" help:"scene config"`
	Dump   bool   `help:"print every node"`
}

func (c BVHCmd) Run() error {
	scene, err := build(c.Config)
	if err != nil {
		return err
	}
	st := scene.BVH.Stats()
	fmt.Printf("triangles=%d nodes=%d leaves=%d depth=%d avgLeaf=%.2f\n", st.Triangles, st.Nodes, st.Leaves, st.MaxDepth, st.AvgLeaf)
	if c.Dump {
		photons3d.DumpBVH(os.Stdout, scene.BVH)
	}
	return nil
}

type ValidateCmd struct {
	Config string `arg:"" name:"config" help:"scene config"`
}

func (c ValidateCmd) Run() error {
	scene, err := build(c.Config)
	if err != nil {
		return err
	}
	if err := scene.BVH.Validate(); err != nil {
		return err
	}
	if _, err := scene.Transport(); err != nil {
		return err
	}
	fmt.Printf("%s: ok (%d triangles, %d materials, %d surfaces, %d photons)\n",
		c.Config, scene.Geometry.NumTriangles(), len(scene.Materials), len(scene.Surfaces), len(scene.Sources))
	return nil
}

func build(path string) (*photons3d.Scene, error) {
	cfg, err := photons3d.LoadConfig(path)
	if err != nil {
		return nil, err
	}
	return cfg.Build()
}

func main() {
	ctx := kong.Parse(&CLI)

	photons3d.Debug = CLI.Debug
	level := slog.LevelInfo
	if CLI.Debug {
		level = slog.LevelDebug
	}
	photons3d.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	if os.Getenv("PROFILE") != "" {
		f, err := os.Create("cpu.out")
		if err != nil {
			panic(err)
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			panic(err)
		}
		defer func() {
			pprof.StopCPUProfile()
			_ = f.Close()
		}()
	}

	if err := ctx.Run(); err != nil {
		fmt.Printf("Error: %v\n", err)
		pprof.StopCPUProfile()
		os.Exit(1)
	}
}
