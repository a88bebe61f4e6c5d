// Package: github.com/Foxenfurter/foxSpectralSphere/foxGaussQuad
// filename foxGaussQuad.go
// Package computes the Gaussian latitudes (roots of the Legendre polynomial
// of degree nlat) and their quadrature weights, to machine precision, via
// Newton-Raphson iteration on the three-term Legendre recurrence.
package foxGaussQuad

import (
	"fmt"
	"math"
)

const packageName = "foxGaussQuad"

// MaxIterations bounds the Newton-Raphson root search for a single latitude.
// Convergence in well under 10 iterations is typical for nlat <= 1e4; this
// budget is generous headroom, not a tuned constant.
const MaxIterations = 100

// eps is the machine epsilon for float64, derived the way the source's
// nearest(1,1)-nearest(1,-1) idiom would: the smallest step between 1 and
// its successor.
var eps = math.Nextafter(1, 2) - 1

// Result holds the Gaussian latitudes (sines, descending) and their
// quadrature weights.
type Result struct {
	Mu      []float64 // sin(latitude), mu[0] > mu[1] > ... > mu[nlat-1]
	Weights []float64 // quadrature weights, sum to 2
}

// Build computes the nlat Gaussian latitudes and weights.
// Returns an error wrapping ErrNotConverged if any root fails to converge
// within MaxIterations, or ErrWeightSum if the resulting weights do not sum
// to 2 within tolerance.
func Build(nlat int) (*Result, error) {
	const functionName = "Build"
	if nlat < 1 {
		return nil, fmt.Errorf("%s:%s: nlat must be >= 1, got %d", packageName, functionName, nlat)
	}

	mu := make([]float64, nlat)
	w := make([]float64, nlat)

	for j := 0; j < nlat; j++ {
		// Asymptotic seed (Tricomi), indexed 1-based to match the classical formula.
		seed := math.Cos(math.Pi * (float64(j+1) - 0.25) / (float64(nlat) + 0.5))

		root, deriv, err := newtonRoot(nlat, seed)
		if err != nil {
			return nil, fmt.Errorf("%s:%s: latitude %d: %w", packageName, functionName, j, err)
		}

		mu[j] = root
		w[j] = 2.0 / ((1.0 - root*root) * deriv * deriv)
	}

	// The asymptotic seed for j=0 starts near the north pole (mu near +1) and
	// j=nlat-1 near the south pole (mu near -1), so mu[] already comes out
	// descending per the data-model contract; no reordering needed.

	sum := 0.0
	for _, wj := range w {
		sum += wj
	}
	if math.Abs(sum-2.0) > 1e-12 {
		return nil, fmt.Errorf("%s:%s: %w (got %.3e, want 2)", packageName, functionName, ErrWeightSum, sum)
	}

	return &Result{Mu: mu, Weights: w}, nil
}

// ErrNotConverged is returned when Newton-Raphson fails to converge for a root.
var ErrNotConverged = fmt.Errorf("gaussian root failed to converge")

// ErrWeightSum is returned when the resulting quadrature weights do not sum to 2.
var ErrWeightSum = fmt.Errorf("gaussian weights do not sum to 2")

// newtonRoot refines seed to a root of P_n via Newton-Raphson, returning the
// root and the derivative P'_n evaluated there (needed for the weight).
func newtonRoot(n int, seed float64) (root, deriv float64, err error) {
	x := seed
	for iter := 0; iter < MaxIterations; iter++ {
		p, pPrev := legendreP(n, x)
		// P'_n(x) = n (x P_n(x) - P_{n-1}(x)) / (x^2 - 1)
		dp := float64(n) * (x*p - pPrev) / (x*x - 1.0)

		dx := p / dp
		x -= dx

		if math.Abs(dx) < 10*eps {
			finalP, finalPPrev := legendreP(n, x)
			finalDP := float64(n) * (x*finalP - finalPPrev) / (x*x - 1.0)
			return x, finalDP, nil
		}
	}
	return 0, 0, ErrNotConverged
}

// legendreP evaluates P_n(x) and P_{n-1}(x) via the stable three-term
// recurrence P_{k+1} = ((2k+1) x P_k - k P_{k-1}) / (k+1), seeded at P_0=1,
// P_1=x.
func legendreP(n int, x float64) (pn, pnMinus1 float64) {
	if n == 0 {
		return 1, 0
	}
	p0, p1 := 1.0, x
	for k := 1; k < n; k++ {
		p2 := ((2*float64(k)+1)*x*p1 - float64(k)*p0) / (float64(k) + 1)
		p0, p1 = p1, p2
	}
	return p1, p0
}
