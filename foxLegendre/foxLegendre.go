// Package: github.com/Foxenfurter/foxSpectralSphere/foxLegendre
// filename foxLegendre.go
// Package builds the table of normalized associated Legendre functions
// P~_{n,m}(mu) (the 4pi-normalized form scaled by 1/sqrt(2), so that the
// Gaussian-quadrature inner product of each with itself is 1) and their
// latitudinal derivative at every Gaussian latitude,
// under the canonical spectral-coefficient ordering that every downstream
// operator in this library depends on.
package foxLegendre

import (
	"fmt"
	"math"
)

const packageName = "foxLegendre"

// Table holds the Legendre function values and derivatives for every
// (n, m) pair up to ntrunc, at every supplied latitude.
//
// P[k][j]  = P~_{n,m}(mu_j)           where k = Index(n, m, ntrunc)
// DP[k][j] = (1 - mu_j^2) dP~_{n,m}/dmu at mu_j
type Table struct {
	P      [][]float64
	DP     [][]float64
	IndexN []int
	IndexM []int
	Nlat   int
	Ntrunc int
}

// NMDim returns the number of spectral coefficients for a triangular
// truncation of degree ntrunc.
func NMDim(ntrunc int) int {
	return (ntrunc + 1) * (ntrunc + 2) / 2
}

// Index returns the canonical spectral position for (n, m): outer loop over
// m = 0..ntrunc, inner loop over n = m..ntrunc.
func Index(n, m, ntrunc int) int {
	return m*(ntrunc+1) - m*(m-1)/2 + (n - m)
}

// Build computes the Legendre table for the given Gaussian latitudes mu
// (length nlat) and triangular truncation ntrunc.
func Build(nlat, ntrunc int, mu []float64) (*Table, error) {
	const functionName = "Build"
	if nlat <= 0 {
		return nil, fmt.Errorf("%s:%s: nlat must be positive, got %d", packageName, functionName, nlat)
	}
	if ntrunc < 0 {
		return nil, fmt.Errorf("%s:%s: ntrunc must be non-negative, got %d", packageName, functionName, ntrunc)
	}
	if len(mu) != nlat {
		return nil, fmt.Errorf("%s:%s: len(mu)=%d does not match nlat=%d", packageName, functionName, len(mu), nlat)
	}

	nmdim := NMDim(ntrunc)
	P := make([][]float64, nmdim)
	DP := make([][]float64, nmdim)
	indexN := make([]int, nmdim)
	indexM := make([]int, nmdim)
	for i := range P {
		P[i] = make([]float64, nlat)
		DP[i] = make([]float64, nlat)
	}

	buildValues(nlat, ntrunc, mu, P, indexN, indexM)
	buildDerivatives(nlat, ntrunc, mu, P, DP)

	return &Table{P: P, DP: DP, IndexN: indexN, IndexM: indexM, Nlat: nlat, Ntrunc: ntrunc}, nil
}

// buildValues fills P (and the index maps) by seeding each zonal wavenumber
// m with P~_{m,m} in log-space (so the seed never overflows for large m)
// and climbing to n = ntrunc with the three-term recurrence
// P~_{n,m} = a_{n,m} (mu P~_{n-1,m} - b_{n,m} P~_{n-2,m}).
func buildValues(nlat, ntrunc int, mu []float64, P [][]float64, indexN, indexM []int) {
	logRatio := 0.0 // running log((2m+1)!! / (2m)!!)

	for m := 0; m <= ntrunc; m++ {
		if m > 0 {
			logRatio += math.Log(float64(2*m+1) / float64(2*m))
		}
		// The (2n+1)(n-m)!/(n+m)! factor alone integrates to 2 over mu in
		// [-1,1] for every (n,m), matching the quadrature weights' own sum
		// of 2 rather than the unit inner product the rest of the library
		// assumes; the 1/sqrt(2) here is the one global correction applied
		// at the seed, propagating unchanged through the linear recurrence
		// below so that the quadrature-weighted inner product is exactly 1.
		seedCoeff := math.Exp(0.5*logRatio) / math.Sqrt2

		kmm := Index(m, m, ntrunc)
		indexN[kmm], indexM[kmm] = m, m
		for j, muj := range mu {
			P[kmm][j] = seedCoeff * math.Pow(1-muj*muj, float64(m)/2)
		}

		pPrev2 := make([]float64, nlat) // P~_{m-2,m}, conventionally 0
		pPrev1 := P[kmm]                // P~_{m,m}

		for n := m + 1; n <= ntrunc; n++ {
			k := Index(n, m, ntrunc)
			indexN[k], indexM[k] = n, m

			a := math.Sqrt(float64((2*n+1)*(2*n-1)) / float64((n-m)*(n+m)))
			b := 0.0
			if n-2 >= m {
				b = math.Sqrt(float64((n-1-m)*(n-1+m)) / float64((2*n-3)*(2*n-1)))
			}

			row := P[k]
			for j, muj := range mu {
				row[j] = a * (muj*pPrev1[j] - b*pPrev2[j])
			}

			pPrev2 = pPrev1
			pPrev1 = row
		}
	}
}

// buildDerivatives fills DP from the already-built P using
// (1-mu^2) dP~_{n,m}/dmu = -n mu P~_{n,m} + c_{n,m} P~_{n-1,m}, with the
// P~_{m-1,m} term taken as 0 at n = m (it is not a valid spectral index).
func buildDerivatives(nlat, ntrunc int, mu []float64, P, DP [][]float64) {
	for m := 0; m <= ntrunc; m++ {
		for n := m; n <= ntrunc; n++ {
			k := Index(n, m, ntrunc)
			var c float64
			var prevRow []float64
			if n > m {
				c = math.Sqrt(float64(n*n-m*m) * float64(2*n+1) / float64(2*n-1))
				prevRow = P[Index(n-1, m, ntrunc)]
			}
			for j, muj := range mu {
				term2 := 0.0
				if n > m {
					term2 = c * prevRow[j]
				}
				DP[k][j] = -float64(n)*muj*P[k][j] + term2
			}
		}
	}
}
