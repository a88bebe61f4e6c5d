package foxSphere_test

import (
	"errors"
	"math"
	"math/cmplx"
	"testing"

	"github.com/Foxenfurter/foxSpectralSphere/foxLegendre"
	"github.com/Foxenfurter/foxSpectralSphere/foxSphere"
)

func cabs(z complex128) float64 {
	return cmplx.Abs(z)
}

// TestScenarioConstantField is the constant-field scenario: a uniform grid
// projects onto a single spectral coefficient, the global mean mode.
func TestScenarioConstantField(t *testing.T) {
	nlon, nlat, ntrunc := 8, 5, 3
	sphere, err := foxSphere.New(nlon, nlat, ntrunc, 1.0)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	grid := make([][]float64, nlat)
	for j := range grid {
		grid[j] = make([]float64, nlon)
		for i := range grid[j] {
			grid[j][i] = 1
		}
	}

	X, err := sphere.ScalarAnalyze(grid)
	if err != nil {
		t.Fatalf("ScalarAnalyze: %v", err)
	}

	k00 := foxLegendre.Index(0, 0, ntrunc)
	want := math.Sqrt2
	if math.Abs(real(X[k00])-want) > 1e-10 || math.Abs(imag(X[k00])) > 1e-10 {
		t.Errorf("X[0,0] = %v, want (%v,0)", X[k00], want)
	}
	for k := range X {
		if k == k00 {
			continue
		}
		if cabs(X[k]) > 1e-10 {
			t.Errorf("X[%d] = %v, want 0", k, X[k])
		}
	}
}

// TestScenarioColatitudeField mirrors the constant-field scenario with
// G[i,j]=mu_j, which is proportional to the degree-1 zonal harmonic and so
// must land entirely in the single k(1,0) coefficient.
func TestScenarioColatitudeField(t *testing.T) {
	nlon, nlat, ntrunc := 8, 5, 3
	sphere, err := foxSphere.New(nlon, nlat, ntrunc, 1.0)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	mu := sphere.GaussianLatitudes()

	grid := make([][]float64, nlat)
	for j := range grid {
		grid[j] = make([]float64, nlon)
		for i := range grid[j] {
			grid[j][i] = mu[j]
		}
	}

	X, err := sphere.ScalarAnalyze(grid)
	if err != nil {
		t.Fatalf("ScalarAnalyze: %v", err)
	}

	k10 := foxLegendre.Index(1, 0, ntrunc)
	want := math.Sqrt(2.0 / 3.0)
	if math.Abs(real(X[k10])-want) > 1e-10 || math.Abs(imag(X[k10])) > 1e-10 {
		t.Errorf("X[1,0] = %v, want (%v,0)", X[k10], want)
	}
	for k := range X {
		if k == k10 {
			continue
		}
		if cabs(X[k]) > 1e-10 {
			t.Errorf("X[%d] = %v, want 0", k, X[k])
		}
	}
}

// TestScenarioSolidBodyRotation is the S3 scenario at production scale: a
// rigid zonal rotation u=U*cosphi, v=0 projects onto the single vorticity
// coefficient zeta[k(1,0)] with zero divergence everywhere, and the round
// trip back through the velocity synthesizer reproduces the original
// cos(phi)-scaled velocity field.
func TestScenarioSolidBodyRotation(t *testing.T) {
	nlon, nlat, ntrunc := 128, 65, 42
	a, U := 6.37122e6, 40.0
	sphere, err := foxSphere.New(nlon, nlat, ntrunc, a)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	mu := sphere.GaussianLatitudes()

	ucos := make([][]float64, nlat)
	vcos := make([][]float64, nlat)
	for j := range ucos {
		cosPhi2 := 1 - mu[j]*mu[j]
		ucos[j] = make([]float64, nlon)
		vcos[j] = make([]float64, nlon)
		for i := range ucos[j] {
			ucos[j][i] = U * cosPhi2
		}
	}

	zeta, div, err := sphere.VorticityDivergenceFromVelocities(ucos, vcos)
	if err != nil {
		t.Fatalf("VorticityDivergenceFromVelocities: %v", err)
	}

	k10 := foxLegendre.Index(1, 0, ntrunc)
	want := complex((2*U/a)*math.Sqrt(2.0/3.0), 0)
	if cabs(zeta[k10]-want) > 1e-9 {
		t.Errorf("zeta[1,0] = %v, want %v", zeta[k10], want)
	}
	for k := range div {
		if cabs(div[k]) > 1e-9 {
			t.Errorf("div[%d] = %v, want 0", k, div[k])
		}
	}

	ucosBack, vcosBack, err := sphere.VelocitiesFromVorticityDivergence(zeta, div)
	if err != nil {
		t.Fatalf("VelocitiesFromVorticityDivergence: %v", err)
	}
	var maxAbs, maxErr float64
	for j := range ucos {
		for i := range ucos[j] {
			maxAbs = math.Max(maxAbs, math.Abs(ucos[j][i]))
			maxErr = math.Max(maxErr, math.Abs(ucosBack[j][i]-ucos[j][i]))
			maxErr = math.Max(maxErr, math.Abs(vcosBack[j][i]-vcos[j][i]))
		}
	}
	if maxErr > 1e-8*maxAbs {
		t.Errorf("solid body round trip: max abs residual %.3e exceeds tolerance against scale %.3e", maxErr, maxAbs)
	}
}

// TestScenarioZonalWave is the S5 scenario: the real FFT of a pure zonal
// wave of wavenumber m yields a single Fourier mode of amplitude 0.5 (1 for
// the constant m=0 wave).
func TestScenarioZonalWave(t *testing.T) {
	nlon, nlat, ntrunc := 16, 10, 7
	sphere, err := foxSphere.New(nlon, nlat, ntrunc, 1.0)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	for _, mWave := range []int{0, 1, 3, 7} {
		grid := make([][]float64, nlat)
		for j := range grid {
			grid[j] = make([]float64, nlon)
			for i := range grid[j] {
				grid[j][i] = math.Cos(2 * math.Pi * float64(mWave) * float64(i) / float64(nlon))
			}
		}

		F, err := sphere.RealFFTForward(grid)
		if err != nil {
			t.Fatalf("RealFFTForward mWave=%d: %v", mWave, err)
		}
		for m := range F {
			for j := range F[m] {
				want := complex(0.0, 0.0)
				if m == mWave {
					want = complex(0.5, 0)
					if mWave == 0 {
						want = complex(1.0, 0)
					}
				}
				if cabs(F[m][j]-want) > 1e-12 {
					t.Errorf("mWave=%d m=%d j=%d: F=%v, want %v", mWave, m, j, F[m][j], want)
				}
			}
		}
	}
}

// TestInvariantScalarRoundTrip checks forward(inverse(X)) = X for a random
// band-limited spectral vector X, the regime where the round trip is exact
// up to floating point. The m=0 coefficients of a real grid are real, so X
// carries no imaginary part there.
func TestInvariantScalarRoundTrip(t *testing.T) {
	nlon, nlat, ntrunc := 32, 20, 10
	sphere, err := foxSphere.New(nlon, nlat, ntrunc, 1.0)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	nmdim := sphere.NMDim()

	X := make([]complex128, nmdim)
	seed := 1
	for k := range X {
		seed = (seed*1103515245 + 12345) & 0x7fffffff
		re := float64(seed%1000)/1000 - 0.5
		seed = (seed*1103515245 + 12345) & 0x7fffffff
		im := float64(seed%1000)/1000 - 0.5
		if k <= ntrunc {
			// k(n,0) = n: the zonal-mean (m=0) coefficients.
			im = 0
		}
		X[k] = complex(re, im)
	}

	grid, err := sphere.ScalarSynthesize(X)
	if err != nil {
		t.Fatalf("ScalarSynthesize: %v", err)
	}
	Xback, err := sphere.ScalarAnalyze(grid)
	if err != nil {
		t.Fatalf("ScalarAnalyze: %v", err)
	}

	for k := range X {
		if cabs(Xback[k]-X[k]) > 1e-9 {
			t.Errorf("k=%d: round trip gave %v, want %v", k, Xback[k], X[k])
		}
	}
}

// TestInvariantLaplacianEigenvalue checks that the exposed Laplacian matches
// -n(n+1)/a^2 for every coefficient, the eigenvalue invariant consumed by
// the shallow-water tendency equations.
func TestInvariantLaplacianEigenvalue(t *testing.T) {
	nlat, ntrunc := 12, 6
	a := 3.5
	sphere, err := foxSphere.New(nlat, nlat, ntrunc, a)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	lap := sphere.Laplacian()
	for k := range lap {
		n := (func() int {
			// recover n by scanning for the (n,m) that foxLegendre.Index maps to k
			for m := 0; m <= ntrunc; m++ {
				for nn := m; nn <= ntrunc; nn++ {
					if foxLegendre.Index(nn, m, ntrunc) == k {
						return nn
					}
				}
			}
			return -1
		})()
		want := -float64(n*(n+1)) / (a * a)
		if lap[k] != want {
			t.Errorf("k=%d n=%d: laplacian=%v want %v", k, n, lap[k], want)
		}
	}
}

// TestInvariantLinearity checks ScalarSynthesize is linear in its spectral
// input. The output grid is real, so the map is linear over the reals: a
// complex factor alpha acts as real(alpha)*G(a) + imag(alpha)*G(i*a).
func TestInvariantLinearity(t *testing.T) {
	nlon, nlat, ntrunc := 16, 10, 5
	sphere, err := foxSphere.New(nlon, nlat, ntrunc, 1.0)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	nmdim := sphere.NMDim()

	a := make([]complex128, nmdim)
	b := make([]complex128, nmdim)
	for k := range a {
		a[k] = complex(float64(k)*0.3, float64(k)*-0.1)
		b[k] = complex(float64(nmdim-k)*0.2, 0.4)
	}
	alpha, beta := complex(2.0, -1.0), complex(0.5, 0.5)
	combined := make([]complex128, nmdim)
	for k := range combined {
		combined[k] = alpha*a[k] + beta*b[k]
	}

	Ga, err := sphere.ScalarSynthesize(a)
	if err != nil {
		t.Fatalf("ScalarSynthesize: %v", err)
	}
	Gb, err := sphere.ScalarSynthesize(b)
	if err != nil {
		t.Fatalf("ScalarSynthesize: %v", err)
	}
	Gc, err := sphere.ScalarSynthesize(combined)
	if err != nil {
		t.Fatalf("ScalarSynthesize: %v", err)
	}
	ia := make([]complex128, nmdim)
	ib := make([]complex128, nmdim)
	for k := range a {
		ia[k] = 1i * a[k]
		ib[k] = 1i * b[k]
	}
	Gia, err := sphere.ScalarSynthesize(ia)
	if err != nil {
		t.Fatalf("ScalarSynthesize: %v", err)
	}
	Gib, err := sphere.ScalarSynthesize(ib)
	if err != nil {
		t.Fatalf("ScalarSynthesize: %v", err)
	}
	for j := range Gc {
		for i := range Gc[j] {
			want := real(alpha)*Ga[j][i] + imag(alpha)*Gia[j][i] + real(beta)*Gb[j][i] + imag(beta)*Gib[j][i]
			if math.Abs(Gc[j][i]-want) > 1e-8 {
				t.Errorf("j=%d i=%d: got %v want %v", j, i, Gc[j][i], want)
			}
		}
	}
}

func TestNewRejectsInvalidGeometry(t *testing.T) {
	cases := []struct {
		name               string
		nlon, nlat, ntrunc int
		a                  float64
	}{
		{"odd nlon", 7, 10, 3, 1.0},
		{"nlon too small", 2, 10, 0, 1.0},
		{"nlat too small for ntrunc", 8, 3, 5, 1.0},
		{"ntrunc exceeds nlon/2", 8, 10, 5, 1.0},
		{"nonpositive radius", 8, 10, 3, 0.0},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := foxSphere.New(c.nlon, c.nlat, c.ntrunc, c.a)
			if !errors.Is(err, foxSphere.ErrInvalidGeometry) {
				t.Fatalf("got %v, want ErrInvalidGeometry", err)
			}
		})
	}
}

func TestOperationsRejectShapeMismatch(t *testing.T) {
	sphere, err := foxSphere.New(8, 5, 3, 1.0)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	badGrid := make([][]float64, 4)
	if _, err := sphere.ScalarAnalyze(badGrid); !errors.Is(err, foxSphere.ErrShapeMismatch) {
		t.Fatalf("got %v, want ErrShapeMismatch", err)
	}
	badX := make([]complex128, sphere.NMDim()-1)
	if _, err := sphere.ScalarSynthesize(badX); !errors.Is(err, foxSphere.ErrShapeMismatch) {
		t.Fatalf("got %v, want ErrShapeMismatch", err)
	}
}

func TestReleaseBlocksFurtherOperations(t *testing.T) {
	sphere, err := foxSphere.New(8, 5, 3, 1.0)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	sphere.Release()
	sphere.Release() // idempotent

	grid := make([][]float64, 5)
	for j := range grid {
		grid[j] = make([]float64, 8)
	}
	if _, err := sphere.ScalarAnalyze(grid); !errors.Is(err, foxSphere.ErrReleased) {
		t.Fatalf("got %v, want ErrReleased", err)
	}
}

func TestInstanceIDsAreDistinct(t *testing.T) {
	s1, err := foxSphere.New(8, 5, 3, 1.0)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	s2, err := foxSphere.New(8, 5, 3, 1.0)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if s1.InstanceID() == "" || s2.InstanceID() == "" {
		t.Fatalf("expected non-empty instance ids")
	}
	if s1.InstanceID() == s2.InstanceID() {
		t.Fatalf("expected distinct instance ids, both %s", s1.InstanceID())
	}
}
