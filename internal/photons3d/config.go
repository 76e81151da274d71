package photons3d

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// CurveCfg is a property curve in a config file: either a single number or a
// list of [wavelength, value] pairs. "inf" is accepted for lengths.
type CurveCfg struct {
	Wavelengths []Real
	Values      []Real
}

func (c CurveCfg) set() bool { return len(c.Values) > 0 }

func parseInf(s string) (Real, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "inf", "+inf", ".inf", "infinity":
		return math.Inf(1), nil
	}
	return 0, fmt.Errorf("curve: unexpected string %q", s)
}

func (c *CurveCfg) setPairs(pts [][2]Real) {
	c.Wavelengths, c.Values = make([]Real, len(pts)), make([]Real, len(pts))
	for i, p := range pts {
		c.Wavelengths[i], c.Values[i] = p[0], p[1]
	}
}

func (c *CurveCfg) UnmarshalJSON(data []byte) error {
	var v Real
	if err := json.Unmarshal(data, &v); err == nil {
		*c = CurveCfg{Wavelengths: []Real{DefaultWavelength}, Values: []Real{v}}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		v, err := parseInf(s)
		if err != nil {
			return err
		}
		*c = CurveCfg{Wavelengths: []Real{DefaultWavelength}, Values: []Real{v}}
		return nil
	}
	var pts [][2]Real
	if err := json.Unmarshal(data, &pts); err != nil {
		return fmt.Errorf("curve: want a number or [[wavelength, value], ...]: %w", err)
	}
	c.setPairs(pts)
	return nil
}

func (c *CurveCfg) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind == yaml.ScalarNode {
		var v Real
		if err := n.Decode(&v); err != nil {
			if v, err = parseInf(n.Value); err != nil {
				return err
			}
		}
		*c = CurveCfg{Wavelengths: []Real{DefaultWavelength}, Values: []Real{v}}
		return nil
	}
	var pts [][2]Real
	if err := n.Decode(&pts); err != nil {
		return fmt.Errorf("curve: want a number or [[wavelength, value], ...]: %w", err)
	}
	c.setPairs(pts)
	return nil
}

// curve converts the config form, using def when the key was omitted.
func (c CurveCfg) curve(def Real) (Curve, error) {
	if !c.set() {
		return ConstantCurve(def), nil
	}
	if len(c.Values) == 1 {
		return ConstantCurve(c.Values[0]), nil
	}
	return NewCurve(c.Wavelengths, c.Values)
}

type MaterialCfg struct {
	Name             string   `json:"name" yaml:"name"`
	RefractiveIndex  CurveCfg `json:"refractiveIndex" yaml:"refractiveIndex"`
	AbsorptionLength CurveCfg `json:"absorptionLength,omitempty" yaml:"absorptionLength,omitempty"` // mm, default inf
	ScatteringLength CurveCfg `json:"scatteringLength,omitempty" yaml:"scatteringLength,omitempty"` // mm, default inf
}

type SurfaceCfg struct {
	Name             string   `json:"name" yaml:"name"`
	Specular         CurveCfg `json:"specular,omitempty" yaml:"specular,omitempty"`
	Diffuse          CurveCfg `json:"diffuse,omitempty" yaml:"diffuse,omitempty"`
	DetectEfficiency CurveCfg `json:"detectEfficiency,omitempty" yaml:"detectEfficiency,omitempty"`
	Channel          *int     `json:"channel,omitempty" yaml:"channel,omitempty"`
}

// SolidCfg is one closed or open mesh. Which geometry fields matter depends on Kind.
type SolidCfg struct {
	Name    string `json:"name,omitempty" yaml:"name,omitempty"`
	Kind    string `json:"kind" yaml:"kind"` // box, quad, disc, mesh
	Inside  string `json:"inside" yaml:"inside"`
	Outside string `json:"outside,omitempty" yaml:"outside,omitempty"` // defaults to the world material
	Surface string `json:"surface,omitempty" yaml:"surface,omitempty"`

	Min Vector3 `json:"min,omitempty" yaml:"min,omitempty"`
	Max Vector3 `json:"max,omitempty" yaml:"max,omitempty"`

	Corner Vector3 `json:"corner,omitempty" yaml:"corner,omitempty"`
	U      Vector3 `json:"u,omitempty" yaml:"u,omitempty"`
	V      Vector3 `json:"v,omitempty" yaml:"v,omitempty"`

	Center   Vector3 `json:"center,omitempty" yaml:"center,omitempty"`
	Normal   Vector3 `json:"normal,omitempty" yaml:"normal,omitempty"`
	Radius   Real    `json:"radius,omitempty" yaml:"radius,omitempty"`
	Segments int     `json:"segments,omitempty" yaml:"segments,omitempty"`

	Vertices []Vector3 `json:"vertices,omitempty" yaml:"vertices,omitempty"`
	Faces    [][3]int  `json:"faces,omitempty" yaml:"faces,omitempty"`
}

// ResponseCfg describes Gaussian time and charge smearing.
type ResponseCfg struct {
	TimeRMS    Real `json:"timeRms" yaml:"timeRms"`
	ChargeMean Real `json:"chargeMean" yaml:"chargeMean"`
	ChargeRMS  Real `json:"chargeRms" yaml:"chargeRms"`
	Bins       int  `json:"bins,omitempty" yaml:"bins,omitempty"`
}

// SourceCfg expands to Count photons. A point source with no direction is isotropic;
// a beam starts uniformly on a disc of Radius perpendicular to Direction.
type SourceCfg struct {
	Kind         string  `json:"kind" yaml:"kind"` // point, beam
	Position     Vector3 `json:"position" yaml:"position"`
	Direction    Vector3 `json:"direction,omitempty" yaml:"direction,omitempty"`
	Polarization Vector3 `json:"polarization,omitempty" yaml:"polarization,omitempty"`
	Radius       Real    `json:"radius,omitempty" yaml:"radius,omitempty"`
	Wavelength   Real    `json:"wavelength,omitempty" yaml:"wavelength,omitempty"` // nm
	Time         Real    `json:"time,omitempty" yaml:"time,omitempty"`             // ns
	Count        int     `json:"count" yaml:"count"`
}

type Config struct {
	Seed          uint64 `json:"seed,omitempty" yaml:"seed,omitempty"`
	MaxSteps      int    `json:"maxSteps,omitempty" yaml:"maxSteps,omitempty"`
	MaxBatchSize  int    `json:"maxBatchSize,omitempty" yaml:"maxBatchSize,omitempty"`
	Lanes         int    `json:"lanes,omitempty" yaml:"lanes,omitempty"`
	StepsPerRound int    `json:"stepsPerRound,omitempty" yaml:"stepsPerRound,omitempty"`
	StepBudget    int64  `json:"stepBudget,omitempty" yaml:"stepBudget,omitempty"`
	MaxDistance   Real   `json:"maxDistance,omitempty" yaml:"maxDistance,omitempty"`
	RangePolicy   string `json:"rangePolicy,omitempty" yaml:"rangePolicy,omitempty"` // fail or clamp
	World         string `json:"world,omitempty" yaml:"world,omitempty"`             // defaults to the first material
	Output        string `json:"output,omitempty" yaml:"output,omitempty"`

	Materials []MaterialCfg `json:"materials" yaml:"materials"`
	Surfaces  []SurfaceCfg  `json:"surfaces,omitempty" yaml:"surfaces,omitempty"`
	Solids    []SolidCfg    `json:"solids" yaml:"solids"`
	Response  *ResponseCfg  `json:"response,omitempty" yaml:"response,omitempty"`
	Sources   []SourceCfg   `json:"sources" yaml:"sources"`
}

// LoadConfig reads a JSON config, or YAML when the extension is .yaml or .yml,
// and fills in defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &cfg)
	default:
		err = json.Unmarshal(data, &cfg)
	}
	if err != nil {
		return nil, invalidConfig("%s: %v", path, err)
	}
	// Defaults / validation
	if cfg.MaxSteps <= 0 {
		cfg.MaxSteps = MaxSteps
	}
	if cfg.MaxBatchSize <= 0 {
		cfg.MaxBatchSize = MaxBatchSize
	}
	if cfg.StepsPerRound <= 0 {
		cfg.StepsPerRound = StepsPerRound
	}
	if cfg.MaxDistance <= 0 {
		cfg.MaxDistance = MaxDistance
	}
	if cfg.Output == "" {
		cfg.Output = "hits.jsonl.zst"
	}
	if len(cfg.Materials) == 0 {
		return nil, invalidConfig("config has no materials")
	}
	if cfg.World == "" {
		cfg.World = cfg.Materials[0].Name
	}
	if len(cfg.Sources) == 0 {
		return nil, invalidConfig("config has no sources")
	}
	for i := range cfg.Sources {
		if cfg.Sources[i].Wavelength <= 0 {
			cfg.Sources[i].Wavelength = DefaultWavelength
		}
		if cfg.Sources[i].Kind == "" {
			cfg.Sources[i].Kind = "point"
		}
	}
	if cfg.Response != nil && cfg.Response.Bins <= 0 {
		cfg.Response.Bins = 100
	}
	DebugLog("Loaded config from %s: %d materials, %d surfaces, %d solids, %d sources, seed=%d", path, len(cfg.Materials), len(cfg.Surfaces), len(cfg.Solids), len(cfg.Sources), cfg.Seed)
	return &cfg, nil
}

// RunConfig returns the run parameters of the config.
func (c *Config) RunConfig() RunConfig {
	return RunConfig{
		Seed:          c.Seed,
		MaxSteps:      c.MaxSteps,
		MaxBatchSize:  c.MaxBatchSize,
		Lanes:         c.Lanes,
		StepsPerRound: c.StepsPerRound,
		StepBudget:    c.StepBudget,
		MaxDistance:   c.MaxDistance,
	}
}

// Scene is a config turned into runtime objects.
type Scene struct {
	Geometry   *Geometry
	BVH        *BVH
	Properties *PropertyTables
	Response   *DetectorResponse
	Sources    []PhotonSource
	Materials  map[string]int
	Surfaces   map[string]int
}

// Transport wires the scene into a Transport.
func (s *Scene) Transport(opts ...TransportOption) (*Transport, error) {
	if s.Response != nil {
		opts = append([]TransportOption{WithResponse(s.Response)}, opts...)
	}
	return NewTransport(s.Geometry, s.BVH, s.Properties, opts...)
}

// Build validates the config and constructs geometry, acceleration structure,
// property tables, response and sources.
func (c *Config) Build() (*Scene, error) {
	s := &Scene{Materials: map[string]int{}, Surfaces: map[string]int{}}

	policy, err := ParseRangePolicy(c.RangePolicy)
	if err != nil {
		return nil, invalidConfig("%v", err)
	}
	mats := make([]MaterialTable, len(c.Materials))
	for i, m := range c.Materials {
		if m.Name == "" {
			return nil, invalidConfig("material %d has no name", i)
		}
		if _, dup := s.Materials[m.Name]; dup {
			return nil, invalidConfig("material %q defined twice", m.Name)
		}
		s.Materials[m.Name] = i
		mt := MaterialTable{Name: m.Name}
		if !m.RefractiveIndex.set() {
			return nil, invalidConfig("material %q has no refractive index", m.Name)
		}
		if mt.RefractiveIndex, err = m.RefractiveIndex.curve(1); err != nil {
			return nil, invalidConfig("material %q refractive index: %v", m.Name, err)
		}
		if mt.AbsorptionLength, err = m.AbsorptionLength.curve(math.Inf(1)); err != nil {
			return nil, invalidConfig("material %q absorption length: %v", m.Name, err)
		}
		if mt.ScatteringLength, err = m.ScatteringLength.curve(math.Inf(1)); err != nil {
			return nil, invalidConfig("material %q scattering length: %v", m.Name, err)
		}
		mats[i] = mt
	}

	surfs := make([]SurfaceTable, len(c.Surfaces))
	for i, sc := range c.Surfaces {
		if sc.Name == "" {
			return nil, invalidConfig("surface %d has no name", i)
		}
		if _, dup := s.Surfaces[sc.Name]; dup {
			return nil, invalidConfig("surface %q defined twice", sc.Name)
		}
		s.Surfaces[sc.Name] = i
		st := SurfaceTable{Name: sc.Name, Channel: -1}
		if sc.Channel != nil {
			st.Channel = *sc.Channel
		}
		if st.Specular, err = sc.Specular.curve(0); err != nil {
			return nil, invalidConfig("surface %q specular: %v", sc.Name, err)
		}
		if st.Diffuse, err = sc.Diffuse.curve(0); err != nil {
			return nil, invalidConfig("surface %q diffuse: %v", sc.Name, err)
		}
		if st.DetectEfficiency, err = sc.DetectEfficiency.curve(0); err != nil {
			return nil, invalidConfig("surface %q detect efficiency: %v", sc.Name, err)
		}
		surfs[i] = st
	}
	if s.Properties, err = LoadProperties(mats, surfs, policy); err != nil {
		return nil, err
	}

	world, ok := s.Materials[c.World]
	if !ok {
		return nil, invalidConfig("world material %q is not defined", c.World)
	}
	gb := NewGeometryBuilder()
	for i, sc := range c.Solids {
		m, err := sc.mesh()
		if err != nil {
			return nil, invalidConfig("solid %d (%s): %v", i, sc.Name, err)
		}
		inside, ok := s.Materials[sc.Inside]
		if !ok {
			return nil, invalidConfig("solid %d (%s): inside material %q is not defined", i, sc.Name, sc.Inside)
		}
		outside := world
		if sc.Outside != "" {
			if outside, ok = s.Materials[sc.Outside]; !ok {
				return nil, invalidConfig("solid %d (%s): outside material %q is not defined", i, sc.Name, sc.Outside)
			}
		}
		surface := NoSurface
		if sc.Surface != "" {
			if surface, ok = s.Surfaces[sc.Surface]; !ok {
				return nil, invalidConfig("solid %d (%s): surface %q is not defined", i, sc.Name, sc.Surface)
			}
		}
		gb.AddSolid(m, inside, outside, surface)
	}
	s.Geometry, err = gb.Build(GeometryOptions{NumMaterials: len(mats), NumSurfaces: len(surfs), WorldMaterial: world})
	if err != nil {
		return nil, err
	}
	s.BVH = BuildBVH(s.Geometry)

	if r := c.Response; r != nil {
		tr, err := GaussianTimeResponse(r.TimeRMS, -5*r.TimeRMS, 5*r.TimeRMS, r.Bins)
		if err != nil {
			return nil, invalidConfig("%v", err)
		}
		lo := math.Max(0, r.ChargeMean-5*r.ChargeRMS)
		cr, err := GaussianChargeResponse(r.ChargeMean, r.ChargeRMS, lo, r.ChargeMean+5*r.ChargeRMS, r.Bins)
		if err != nil {
			return nil, invalidConfig("%v", err)
		}
		s.Response = &DetectorResponse{Time: tr, Charge: cr}
	}

	if s.Sources, err = c.expandSources(); err != nil {
		return nil, err
	}
	DebugLog("Built scene: %d triangles, %d photons", s.Geometry.NumTriangles(), len(s.Sources))
	return s, nil
}

func (sc SolidCfg) mesh() (Mesh, error) {
	switch sc.Kind {
	case "box":
		return BoxMesh(sc.Min, sc.Max), nil
	case "quad":
		return QuadMesh(sc.Corner, sc.U, sc.V), nil
	case "disc":
		seg := sc.Segments
		if seg <= 0 {
			seg = 32
		}
		return DiscMesh(sc.Center, sc.Normal, sc.Radius, seg)
	case "mesh":
		return Mesh{Vertices: sc.Vertices, Faces: sc.Faces}, nil
	}
	return Mesh{}, fmt.Errorf("unknown solid kind %q", sc.Kind)
}

// sourceSalt separates source sampling from the per-photon transport streams.
const sourceSalt = 0x50c3_a11e_d00d_f00d

// expandSources turns every SourceCfg into Count photon initial conditions.
// Random positions and directions are reproducible from the config seed.
func (c *Config) expandSources() ([]PhotonSource, error) {
	sm := NewStreamManager(c.Seed ^ sourceSalt)
	var out []PhotonSource
	for i, sc := range c.Sources {
		if sc.Count <= 0 {
			return nil, invalidConfig("source %d has count %d", i, sc.Count)
		}
		rng := sm.Stream(i)
		dir, directed := unit(sc.Direction)
		switch sc.Kind {
		case "point":
		case "beam":
			if !directed {
				return nil, invalidConfig("beam source %d needs a direction", i)
			}
			if sc.Radius < 0 {
				return nil, invalidConfig("beam source %d has radius %v", i, sc.Radius)
			}
		default:
			return nil, invalidConfig("source %d has unknown kind %q", i, sc.Kind)
		}
		for k := 0; k < sc.Count; k++ {
			ps := PhotonSource{
				Position:     sc.Position,
				Direction:    dir,
				Polarization: sc.Polarization,
				Wavelength:   sc.Wavelength,
				Time:         sc.Time,
			}
			if !directed {
				ps.Direction = sampleUnitSphere(rng)
			}
			if sc.Kind == "beam" && sc.Radius > 0 {
				t, b := orthonormalBasis(dir)
				r := sc.Radius * math.Sqrt(rng.Float64())
				phi := 2 * math.Pi * rng.Float64()
				ps.Position = ps.Position.Add(t.Mul(r * math.Cos(phi))).Add(b.Mul(r * math.Sin(phi)))
			}
			out = append(out, ps)
		}
	}
	return out, nil
}
