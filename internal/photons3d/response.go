package photons3d

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/distuv"
)

// CDF is a binned distribution sampled by inverting its cumulative sum.
type CDF struct {
	Edges []Real // len(Cum)
	Cum   []Real // Cum[0] = 0, Cum[len-1] = 1
}

// NewCDF builds a CDF from bin edges (n+1, increasing) and bin contents (n, non-negative).
func NewCDF(edges, contents []Real) (CDF, error) {
	if len(contents) == 0 || len(edges) != len(contents)+1 {
		return CDF{}, invalidProperty("cdf needs n+1 edges for n bins, got %d edges and %d bins", len(edges), len(contents))
	}
	for i := 1; i < len(edges); i++ {
		if !(edges[i] > edges[i-1]) {
			return CDF{}, invalidProperty("cdf edges not increasing at %d", i)
		}
	}
	for i, c := range contents {
		if c < 0 || !isFinite(c) {
			return CDF{}, invalidProperty("cdf bin %d has content %v", i, c)
		}
	}
	cum := make([]Real, len(edges))
	floats.CumSum(cum[1:], contents)
	total := cum[len(cum)-1]
	if total <= 0 {
		return CDF{}, invalidProperty("cdf has zero total weight")
	}
	floats.Scale(1/total, cum)
	cum[len(cum)-1] = 1
	return CDF{Edges: append([]Real(nil), edges...), Cum: cum}, nil
}

// Quantile maps u in [0,1) to a value, interpolating linearly inside the bin.
func (c CDF) Quantile(u Real) Real {
	// first i with Cum[i] > u; u lies in bin i-1
	i := sort.Search(len(c.Cum), func(k int) bool { return c.Cum[k] > u })
	if i == 0 {
		return c.Edges[0]
	}
	if i >= len(c.Cum) {
		return c.Edges[len(c.Edges)-1]
	}
	lo, hi := c.Cum[i-1], c.Cum[i]
	t := (u - lo) / (hi - lo)
	return c.Edges[i-1] + t*(c.Edges[i]-c.Edges[i-1])
}

// DetectorResponse smears detection time and assigns a charge.
type DetectorResponse struct {
	Time   CDF // ns offset added to the arrival time
	Charge CDF
}

func gaussianBins(mu, sigma, lo, hi Real, n int) (edges, contents []Real, err error) {
	if n <= 0 || !(hi > lo) || !(sigma > 0) {
		return nil, nil, invalidProperty("gaussian response needs sigma > 0, hi > lo, n > 0 (sigma=%v lo=%v hi=%v n=%d)", sigma, lo, hi, n)
	}
	g := distuv.Normal{Mu: mu, Sigma: sigma}
	edges = make([]Real, n+1)
	floats.Span(edges, lo, hi)
	contents = make([]Real, n)
	for i := range contents {
		contents[i] = g.CDF(edges[i+1]) - g.CDF(edges[i])
	}
	return edges, contents, nil
}

// GaussianTimeResponse returns a zero-mean Gaussian time spread truncated to [lo, hi].
func GaussianTimeResponse(rms, lo, hi Real, n int) (CDF, error) {
	e, c, err := gaussianBins(0, rms, lo, hi, n)
	if err != nil {
		return CDF{}, fmt.Errorf("time response: %w", err)
	}
	return NewCDF(e, c)
}

// GaussianChargeResponse returns a Gaussian charge distribution truncated to [lo, hi].
func GaussianChargeResponse(mean, rms, lo, hi Real, n int) (CDF, error) {
	e, c, err := gaussianBins(mean, rms, lo, hi, n)
	if err != nil {
		return CDF{}, fmt.Errorf("charge response: %w", err)
	}
	return NewCDF(e, c)
}

// Sample draws a time offset and a charge from the photon's own stream.
func (r *DetectorResponse) Sample(rng *Stream) (dt, charge Real) {
	dt = r.Time.Quantile(rng.Float64())
	charge = r.Charge.Quantile(rng.Float64())
	return dt, charge
}
