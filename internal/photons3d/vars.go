package photons3d

var (
	Debug = false // set to true to record per-photon process events (see ray_log.go)
	// Compile time checks that both boundary kinds satisfy the boundary interface
	_ boundary = dielectricBoundary{}
	_ boundary = surfaceBoundary{}
)
