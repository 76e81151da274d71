package photons3d

import (
	"fmt"
	"strings"
)

// Tally counts terminal states and processes. Each lane owns one; they are
// merged at the compaction barrier.
type Tally struct {
	Launched        int64
	Absorbed        int64
	Detected        int64
	Escaped         int64
	KilledStepLimit int64

	BulkAbsorbed     int64
	SurfaceAbsorbed  int64
	Degenerate       int64 // subset of KilledStepLimit
	StepBudgetKills  int64 // subset of KilledStepLimit
	Scatters         int64
	Reflections      int64
	Refractions      int64
	TIRs             int64
	Speculars        int64
	Diffuses         int64
	MediumMismatches int64
	Steps            int64
}

func (t *Tally) merge(o Tally) {
	t.Launched += o.Launched
	t.Absorbed += o.Absorbed
	t.Detected += o.Detected
	t.Escaped += o.Escaped
	t.KilledStepLimit += o.KilledStepLimit
	t.BulkAbsorbed += o.BulkAbsorbed
	t.SurfaceAbsorbed += o.SurfaceAbsorbed
	t.Degenerate += o.Degenerate
	t.StepBudgetKills += o.StepBudgetKills
	t.Scatters += o.Scatters
	t.Reflections += o.Reflections
	t.Refractions += o.Refractions
	t.TIRs += o.TIRs
	t.Speculars += o.Speculars
	t.Diffuses += o.Diffuses
	t.MediumMismatches += o.MediumMismatches
	t.Steps += o.Steps
}

// Terminated is the number of photons in a terminal state.
func (t Tally) Terminated() int64 {
	return t.Absorbed + t.Detected + t.Escaped + t.KilledStepLimit
}

// record counts a terminal transition.
func (t *Tally) record(s State) {
	switch s {
	case Absorbed:
		t.Absorbed++
	case Detected:
		t.Detected++
	case Escaped:
		t.Escaped++
	case KilledStepLimit:
		t.KilledStepLimit++
	}
}

func (t Tally) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "launched=%d absorbed=%d (bulk=%d surface=%d) detected=%d escaped=%d killed=%d (budget=%d degenerate=%d)",
		t.Launched, t.Absorbed, t.BulkAbsorbed, t.SurfaceAbsorbed, t.Detected, t.Escaped, t.KilledStepLimit, t.StepBudgetKills, t.Degenerate)
	fmt.Fprintf(&sb, " steps=%d scatters=%d reflections=%d refractions=%d tir=%d specular=%d diffuse=%d",
		t.Steps, t.Scatters, t.Reflections, t.Refractions, t.TIRs, t.Speculars, t.Diffuses)
	return sb.String()
}
