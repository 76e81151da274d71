package photons3d

import (
	"context"
	"fmt"
	"log/slog"
)

// Transport bundles the read-only inputs shared by every lane of a run.
type Transport struct {
	geo      *Geometry
	bvh      *BVH
	props    *PropertyTables
	response *DetectorResponse
	logger   *slog.Logger
}

type TransportOption func(*Transport)

// WithResponse applies r to every detection. Without it hits carry the raw
// arrival time and unit charge.
func WithResponse(r *DetectorResponse) TransportOption {
	return func(t *Transport) { t.response = r }
}

// WithLogger overrides the package logger for this transport.
func WithLogger(l *slog.Logger) TransportOption {
	return func(t *Transport) { t.logger = l }
}

// NewTransport checks that geo, bvh and props belong together.
func NewTransport(geo *Geometry, bvh *BVH, props *PropertyTables, opts ...TransportOption) (*Transport, error) {
	if geo == nil || bvh == nil || props == nil {
		return nil, fmt.Errorf("transport needs geometry, bvh and properties")
	}
	if bvh.Geometry() != geo {
		return nil, fmt.Errorf("bvh was built for a different geometry")
	}
	if geo.NumMaterials > len(props.Materials) {
		return nil, invalidProperty("geometry uses %d materials, tables define %d", geo.NumMaterials, len(props.Materials))
	}
	if geo.NumSurfaces > len(props.Surfaces) {
		return nil, invalidProperty("geometry uses %d surfaces, tables define %d", geo.NumSurfaces, len(props.Surfaces))
	}
	t := &Transport{geo: geo, bvh: bvh, props: props}
	for _, o := range opts {
		o(t)
	}
	return t, nil
}

func (t *Transport) log() *slog.Logger {
	if t.logger != nil {
		return t.logger
	}
	return slogger()
}

// Geometry returns the transport's geometry.
func (t *Transport) Geometry() *Geometry { return t.geo }

// Properties returns the transport's property tables.
func (t *Transport) Properties() *PropertyTables { return t.props }

// RunTransport propagates every source to a terminal state and returns the
// detections sorted by (channel, time, photon id). Zero maxSteps or
// maxBatchSize select the defaults.
func RunTransport(ctx context.Context, t *Transport, sources []PhotonSource, seed uint64, maxSteps, maxBatchSize int) ([]ChannelHit, error) {
	res, err := t.Run(ctx, sources, RunConfig{Seed: seed, MaxSteps: maxSteps, MaxBatchSize: maxBatchSize})
	if err != nil {
		return nil, err
	}
	return res.Hits, nil
}
