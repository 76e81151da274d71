package photons3d

import (
	"fmt"
	"io"
	"sort"
	"sync"
)

type Category uint8

const (
	BulkAbsorb    Category = iota // absorbed in the bulk
	Scatter                       // Rayleigh scattered
	Reflect                       // Fresnel reflection at a dielectric boundary
	Refract                       // refracted into the far medium
	TIR                           // total internal reflection
	Specular                      // specular reflection off a surface
	Diffuse                       // diffuse reflection off a surface
	SurfaceAbsorb                 // absorbed by a surface
	Detect                        // detected by a channel
	Escape                        // left the geometry
	StepLimit                     // hit the step cap or the run's step budget
	Degenerate                    // direction or polarization could not be renormalized
)

var categoryNames = [...]string{"bulk_absorb", "scatter", "reflect", "refract", "tir", "specular", "diffuse", "surface_absorb", "detect", "escape", "step_limit", "degenerate"}

func (c Category) String() string {
	if int(c) < len(categoryNames) {
		return categoryNames[c]
	}
	return fmt.Sprintf("Category(%d)", uint8(c))
}

type ProcessLog struct {
	Category Category
	PhotonID int
	Position Vector3
	Step     int
	Distance Real // path length so far
	Time     Real
}

type ProcessLogCache struct {
	mu     sync.Mutex
	events map[Category][]ProcessLog
}

var cache = &ProcessLogCache{
	events: make(map[Category][]ProcessLog),
}

func logProcess(category Category, p *Photon) {
	if !Debug {
		return
	}
	cache.mu.Lock()
	defer cache.mu.Unlock()
	cache.events[category] = append(cache.events[category], ProcessLog{
		Category: category,
		PhotonID: p.ID,
		Position: p.Pos,
		Step:     p.Steps,
		Distance: p.Distance,
		Time:     p.Time,
	})
}

// ProcessEvents returns a copy of the events recorded for category.
func ProcessEvents(category Category) []ProcessLog {
	cache.mu.Lock()
	defer cache.mu.Unlock()
	return append([]ProcessLog(nil), cache.events[category]...)
}

// ResetProcessLog drops every recorded event.
func ResetProcessLog() {
	cache.mu.Lock()
	defer cache.mu.Unlock()
	cache.events = make(map[Category][]ProcessLog)
}

// ProcessStats prints the number of recorded events per category.
func ProcessStats(w io.Writer) {
	cache.mu.Lock()
	defer cache.mu.Unlock()
	keys := make([]int, 0, len(cache.events))
	for k := range cache.events {
		keys = append(keys, int(k))
	}
	sort.Ints(keys)
	for _, k := range keys {
		fmt.Fprintf(w, "Process %s: %d events\n", Category(k), len(cache.events[Category(k)]))
	}
}
