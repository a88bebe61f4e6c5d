// Package: github.com/Foxenfurter/foxSpectralSphere/foxLegendreTransform
// filename foxLegendreTransform.go
// Package implements the dense Legendre analysis and synthesis matmuls that
// project between per-latitude Fourier coefficients and spectral
// coefficients, under the canonical ordering foxLegendre.Index defines.
package foxLegendreTransform

import (
	"fmt"

	"github.com/Foxenfurter/foxSpectralSphere/foxLegendre"
)

const packageName = "foxLegendreTransform"

// Analyze projects per-latitude Fourier coefficients F[m][j] onto spectral
// coefficients X[k(n,m)] = Sum_j w_j P~_{n,m}(mu_j) F[m,j].
func Analyze(table *foxLegendre.Table, weights []float64, F [][]complex128) ([]complex128, error) {
	const functionName = "Analyze"
	if err := checkShape(functionName, table, weights, F); err != nil {
		return nil, err
	}

	nmdim := len(table.P)
	X := make([]complex128, nmdim)
	for k := 0; k < nmdim; k++ {
		row := F[table.IndexM[k]]
		p := table.P[k]
		var sum complex128
		for j, wj := range weights {
			sum += complex(wj*p[j], 0) * row[j]
		}
		X[k] = sum
	}
	return X, nil
}

// Synthesize reconstructs per-latitude Fourier coefficients
// F[m,j] = Sum_{n=m}^{ntrunc} P~_{n,m}(mu_j) X[k(n,m)], the dual of Analyze.
func Synthesize(table *foxLegendre.Table, X []complex128) ([][]complex128, error) {
	const functionName = "Synthesize"
	if table == nil {
		return nil, fmt.Errorf("%s:%s: nil table", packageName, functionName)
	}
	nmdim := len(table.P)
	if len(X) != nmdim {
		return nil, fmt.Errorf("%s:%s: len(X)=%d, want %d", packageName, functionName, len(X), nmdim)
	}

	F := make([][]complex128, table.Ntrunc+1)
	for m := range F {
		F[m] = make([]complex128, table.Nlat)
	}

	for k := 0; k < nmdim; k++ {
		row := F[table.IndexM[k]]
		p := table.P[k]
		xk := X[k]
		for j, pj := range p {
			row[j] += complex(pj, 0) * xk
		}
	}
	return F, nil
}

func checkShape(functionName string, table *foxLegendre.Table, weights []float64, F [][]complex128) error {
	if table == nil {
		return fmt.Errorf("%s:%s: nil table", packageName, functionName)
	}
	if len(weights) != table.Nlat {
		return fmt.Errorf("%s:%s: len(weights)=%d, want %d", packageName, functionName, len(weights), table.Nlat)
	}
	if len(F) != table.Ntrunc+1 {
		return fmt.Errorf("%s:%s: len(F)=%d, want %d", packageName, functionName, len(F), table.Ntrunc+1)
	}
	for m, row := range F {
		if len(row) != table.Nlat {
			return fmt.Errorf("%s:%s: len(F[%d])=%d, want %d", packageName, functionName, m, len(row), table.Nlat)
		}
	}
	return nil
}
