package photons3d

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/stat/distuv"
)

func TestSampleRayleighCosInvertsCDF(t *testing.T) {
	for _, u := range []Real{0, 1e-9, 0.1, 0.25, 0.5, 0.75, 0.9, 1 - 1e-12} {
		mu := sampleRayleighCos(u)
		if mu < -1 || mu > 1 {
			t.Fatalf("mu=%v out of range for u=%v", mu, u)
		}
		if got := rayleighCDF(mu); !approxEqual(got, u, 1e-9) {
			t.Fatalf("CDF(sample(%v)) = %v", u, got)
		}
	}
	if mu := sampleRayleighCos(0.5); !approxEqual(mu, 0, 1e-12) {
		t.Fatalf("median should be 0, got %v", mu)
	}
}

func TestRayleighChiSquared(t *testing.T) {
	const (
		n    = 200000
		bins = 20
	)
	s := NewStreamManager(2024).Stream(0)
	var counts [bins]int
	dir, pol := v3(0, 0, 1), v3(1, 0, 0)
	for i := 0; i < n; i++ {
		nd, _ := scatterRayleigh(dir, pol, s)
		mu := nd.Dot(dir)
		k := int((mu + 1) / 2 * bins)
		if k == bins {
			k--
		}
		counts[k]++
	}
	chi2 := 0.0
	for k := 0; k < bins; k++ {
		lo := -1 + 2*Real(k)/bins
		hi := -1 + 2*Real(k+1)/bins
		exp := n * (rayleighCDF(hi) - rayleighCDF(lo))
		d := Real(counts[k]) - exp
		chi2 += d * d / exp
	}
	limit := distuv.ChiSquared{K: bins - 1}.Quantile(0.999)
	if chi2 > limit {
		t.Fatalf("chi2=%.2f exceeds the 99.9%% quantile %.2f; counts=%v", chi2, limit, counts)
	}
}

func TestScatterRayleighKeepsTransverse(t *testing.T) {
	s := NewStreamManager(1).Stream(0)
	dir := v3(0.3, -0.4, 0.866).Norm()
	pol, _ := orthonormalBasis(dir)
	for i := 0; i < 5000; i++ {
		nd, np := scatterRayleigh(dir, pol, s)
		if !approxEqual(nd.Len(), 1, 1e-9) || !approxEqual(np.Len(), 1, 1e-9) {
			t.Fatalf("not unit: %+v %+v", nd, np)
		}
		if math.Abs(nd.Dot(np)) > 1e-9 {
			t.Fatalf("polarization not transverse: %v", nd.Dot(np))
		}
		dir, pol = nd, np
	}
}
