package photons3d

import "fmt"

// State is a photon's lifecycle tag. Every state but Alive is terminal.
type State uint8

const (
	Alive State = iota
	Absorbed
	Detected
	Escaped
	KilledStepLimit
)

func (s State) String() string {
	switch s {
	case Alive:
		return "ALIVE"
	case Absorbed:
		return "ABSORBED"
	case Detected:
		return "DETECTED"
	case Escaped:
		return "ESCAPED"
	case KilledStepLimit:
		return "KILLED_STEP_LIMIT"
	}
	return fmt.Sprintf("State(%d)", uint8(s))
}

// Terminal reports whether the photon is finished.
func (s State) Terminal() bool { return s != Alive }

// PhotonSource is the initial condition of one photon.
type PhotonSource struct {
	Position     Vector3
	Direction    Vector3
	Polarization Vector3 // zero or parallel to Direction means "pick one"
	Wavelength   Real    // nm
	Time         Real    // ns
}

// Photon is owned by exactly one lane from launch to its terminal state.
type Photon struct {
	ID           int
	Pos          Vector3
	Dir          Vector3
	Pol          Vector3
	Wavelength   Real
	Time         Real
	Weight       Real
	Material     int
	State        State
	Steps        int
	Distance     Real    // accumulated path length
	LastTriangle int     // triangle crossed or reflected from on the previous step, -1 if none
	Arrival      Vector3 // direction of the last move of non-zero length
	rng          *Stream
}

// ChannelHit is one detected photon.
type ChannelHit struct {
	Channel    int  `json:"channel"`
	Time       Real `json:"time"`
	PhotonID   int  `json:"photon"`
	Wavelength Real `json:"wavelength"`
	Charge     Real `json:"charge"`
}

// setDirection normalizes d and re-orthogonalizes the polarization against it.
func (p *Photon) setDirection(d, pol Vector3) error {
	dir, ok := unit(d)
	if !ok {
		return fmt.Errorf("%w: photon %d direction %+v", ErrNumericalDegeneracy, p.ID, d)
	}
	pol = pol.Sub(dir.Mul(pol.Dot(dir)))
	np, ok := unit(pol)
	if !ok {
		return fmt.Errorf("%w: photon %d polarization %+v", ErrNumericalDegeneracy, p.ID, pol)
	}
	p.Dir, p.Pol = dir, np
	return nil
}
