// Package: github.com/Foxenfurter/foxSpectralSphere/foxSpecOps
// filename foxSpecOps.go
// Package assembles the spectral vector operators: Laplacian eigenvalues,
// the combine-Fourier-to-spectral tendency kernel, and the vorticity/
// divergence <-> velocity conversions built directly on the Legendre value
// and derivative tables, with no intermediate grid of streamfunction or
// velocity potential ever materialized.
package foxSpecOps

import (
	"fmt"

	"github.com/Foxenfurter/foxSpectralSphere/foxLegendre"
	"github.com/Foxenfurter/foxSpectralSphere/foxSphereFFT"
)

const packageName = "foxSpecOps"

// Eigenvalues returns the horizontal Laplacian eigenvalues -n(n+1)/a^2 for
// every spectral coefficient, and their reciprocals with the n=0 entry of
// the reciprocal forced to 0 (the mean mode has no streamfunction).
func Eigenvalues(table *foxLegendre.Table, a float64) (laplacian, invLaplacian []float64) {
	nmdim := len(table.P)
	laplacian = make([]float64, nmdim)
	invLaplacian = make([]float64, nmdim)
	for k := 0; k < nmdim; k++ {
		n := table.IndexN[k]
		laplacian[k] = -float64(n*(n+1)) / (a * a)
		if n == 0 {
			continue
		}
		invLaplacian[k] = 1 / laplacian[k]
	}
	return laplacian, invLaplacian
}

// CombineFourierToSpectral is the shared tendency-evaluation kernel:
//
//	X[k(n,m)] = Sum_j w_j * (signA*DP[k,j]*A[m,j] + signB*i*m*P[k,j]*B[m,j]) / (a*(1-mu_j^2))
func CombineFourierToSpectral(table *foxLegendre.Table, weights, mu []float64, a float64, A, B [][]complex128, signA, signB float64) ([]complex128, error) {
	const functionName = "CombineFourierToSpectral"
	if err := checkVectorShape(functionName, table, weights, mu, A, B); err != nil {
		return nil, err
	}

	nmdim := len(table.P)
	X := make([]complex128, nmdim)
	sa := complex(signA, 0)
	sb := complex(signB, 0)

	for k := 0; k < nmdim; k++ {
		m := table.IndexM[k]
		p := table.P[k]
		dp := table.DP[k]
		rowA := A[m]
		rowB := B[m]
		im := complex(0, float64(m))

		var sum complex128
		for j, wj := range weights {
			denom := complex(a*(1-mu[j]*mu[j]), 0)
			term := sa*complex(dp[j], 0)*rowA[j] + sb*im*complex(p[j], 0)*rowB[j]
			sum += complex(wj, 0) * term / denom
		}
		X[k] = sum
	}
	return X, nil
}

// synthVector synthesizes X into per-latitude Fourier coefficients via both
// the value table P and the derivative table DP in one pass, the building
// block of VelocitiesFromVorticityDivergence.
func synthVector(table *foxLegendre.Table, X []complex128) (synthP, synthDP [][]complex128) {
	ntrunc, nlat := table.Ntrunc, table.Nlat
	synthP = make([][]complex128, ntrunc+1)
	synthDP = make([][]complex128, ntrunc+1)
	for m := range synthP {
		synthP[m] = make([]complex128, nlat)
		synthDP[m] = make([]complex128, nlat)
	}
	for k := range table.P {
		m := table.IndexM[k]
		p := table.P[k]
		dp := table.DP[k]
		xk := X[k]
		rowP := synthP[m]
		rowDP := synthDP[m]
		for j := 0; j < nlat; j++ {
			rowP[j] += complex(p[j], 0) * xk
			rowDP[j] += complex(dp[j], 0) * xk
		}
	}
	return synthP, synthDP
}

// VelocitiesFromVorticityDivergence computes u*cos(phi) and v*cos(phi) grid
// rows (one per Gaussian latitude, length nlon) from spectral vorticity and
// divergence, via the streamfunction/velocity-potential identity
// psi = invLaplacian*zeta, chi = -invLaplacian*D and the direct synthesis
//
//	u*cosphi = (1/a) * (d(chi)/dlambda - cosphi * d(psi)/dphi)
//	v*cosphi = (1/a) * (d(psi)/dlambda + cosphi * d(chi)/dphi)
//
// The leading 1/a and the opposite signs on psi and chi are what make this
// the exact inverse of VorticityDivergenceFromVelocities; see that
// function's doc comment and DESIGN.md's Open Question entry for the
// derivation.
func VelocitiesFromVorticityDivergence(table *foxLegendre.Table, a float64, zeta, divergence []complex128, nlon int) (ucos, vcos [][]float64, err error) {
	const functionName = "VelocitiesFromVorticityDivergence"
	nmdim := len(table.P)
	if len(zeta) != nmdim || len(divergence) != nmdim {
		return nil, nil, fmt.Errorf("%s:%s: spectral inputs must have length %d, got zeta=%d divergence=%d", packageName, functionName, nmdim, len(zeta), len(divergence))
	}

	_, invLap := Eigenvalues(table, a)
	psi := make([]complex128, nmdim)
	chi := make([]complex128, nmdim)
	for k := 0; k < nmdim; k++ {
		psi[k] = complex(invLap[k], 0) * zeta[k]
		chi[k] = complex(-invLap[k], 0) * divergence[k]
	}

	synthPPsi, synthDPPsi := synthVector(table, psi)
	synthPChi, synthDPChi := synthVector(table, chi)

	ntrunc, nlat := table.Ntrunc, table.Nlat
	ucos = make([][]float64, nlat)
	vcos = make([][]float64, nlat)
	inva := complex(1/a, 0)

	for j := 0; j < nlat; j++ {
		uCoeffs := make([]complex128, ntrunc+1)
		vCoeffs := make([]complex128, ntrunc+1)
		for m := 0; m <= ntrunc; m++ {
			im := complex(0, float64(m))
			uCoeffs[m] = inva * (im*synthPChi[m][j] - synthDPPsi[m][j])
			vCoeffs[m] = inva * (im*synthPPsi[m][j] + synthDPChi[m][j])
		}
		uRow, errU := foxSphereFFT.Inverse(uCoeffs, ntrunc, nlon)
		if errU != nil {
			return nil, nil, fmt.Errorf("%s:%s: latitude %d: %w", packageName, functionName, j, errU)
		}
		vRow, errV := foxSphereFFT.Inverse(vCoeffs, ntrunc, nlon)
		if errV != nil {
			return nil, nil, fmt.Errorf("%s:%s: latitude %d: %w", packageName, functionName, j, errV)
		}
		ucos[j], vcos[j] = uRow, vRow
	}
	return ucos, vcos, nil
}

// VorticityDivergenceFromVelocities is the exact inverse of
// VelocitiesFromVorticityDivergence for every mode with n >= 1 (the n=0
// vorticity and divergence modes do not reach the velocities, so they come
// back as 0): it forward-FFTs both cos(phi)-scaled
// velocity grids and projects directly onto spectral vorticity and
// divergence, without ever forming an intermediate streamfunction, via
//
//	zeta = CombineFourierToSpectral(Ucos, Vcos, signA=+1, signB=+1)
//	D    = CombineFourierToSpectral(Vcos, Ucos, signA=+1, signB=-1)
//
// Note the asymmetric signB: zeta's kernel call keeps signB=+1, but D's
// flips to -1. The zeta sign is pinned by matching the classical
// solid-body-rotation identity (u=U*cosphi, v=0 gives zeta=(2U/a)*mu, a
// single n=1,m=0 coefficient). D's signB then follows from requiring exact
// recovery through VelocitiesFromVorticityDivergence for an isolated
// divergence mode: expanding a single coefficient D=Dc at (n,m) gives
// chi = -invLaplacian*Dc, uCoeffs = (1/a)*i*m*P*chi, vCoeffs = (1/a)*DP*chi,
// and feeding those back through this kernel's D branch,
//
//	D_recovered = (chi/a^2) * sum_j w_j/(1-mu_j^2) * [DP(mu_j)^2 + signB*(i*m)^2*P(mu_j)^2]
//	            = (chi/a^2) * sum_j w_j/(1-mu_j^2) * [DP(mu_j)^2 - signB*m^2*P(mu_j)^2]
//
// which reduces to the constant n(n+1) - independent of nlat, by the same
// Sturm-Liouville eigenfunction identity that also makes zeta's round trip
// exact - only when signB=-1; signB=+1 leaves a non-constant DP^2-m^2*P^2
// combination that does not collapse to n(n+1) for m>0. With signB=-1,
// chi=-invLaplacian*Dc makes D_recovered=Dc exactly. zeta's analogous
// identity (psi=invLaplacian*Z, signB=+1) is what pins its own sign; see
// DESIGN.md's Open Question entry for the full n=1,m=0 and n=m=1
// verification of both branches.
func VorticityDivergenceFromVelocities(table *foxLegendre.Table, weights, mu []float64, a float64, ucos, vcos [][]float64) (zeta, divergence []complex128, err error) {
	const functionName = "VorticityDivergenceFromVelocities"
	nlat, ntrunc := table.Nlat, table.Ntrunc
	if len(ucos) != nlat || len(vcos) != nlat {
		return nil, nil, fmt.Errorf("%s:%s: grid must have %d latitude rows, got ucos=%d vcos=%d", packageName, functionName, nlat, len(ucos), len(vcos))
	}

	UcosF := make([][]complex128, ntrunc+1)
	VcosF := make([][]complex128, ntrunc+1)
	for m := range UcosF {
		UcosF[m] = make([]complex128, nlat)
		VcosF[m] = make([]complex128, nlat)
	}

	for j := 0; j < nlat; j++ {
		uCoeffs, errU := foxSphereFFT.Forward(ucos[j], ntrunc)
		if errU != nil {
			return nil, nil, fmt.Errorf("%s:%s: latitude %d: %w", packageName, functionName, j, errU)
		}
		vCoeffs, errV := foxSphereFFT.Forward(vcos[j], ntrunc)
		if errV != nil {
			return nil, nil, fmt.Errorf("%s:%s: latitude %d: %w", packageName, functionName, j, errV)
		}
		for m := 0; m <= ntrunc; m++ {
			UcosF[m][j] = uCoeffs[m]
			VcosF[m][j] = vCoeffs[m]
		}
	}

	zeta, err = CombineFourierToSpectral(table, weights, mu, a, UcosF, VcosF, 1, 1)
	if err != nil {
		return nil, nil, fmt.Errorf("%s:%s: %w", packageName, functionName, err)
	}
	divergence, err = CombineFourierToSpectral(table, weights, mu, a, VcosF, UcosF, 1, -1)
	if err != nil {
		return nil, nil, fmt.Errorf("%s:%s: %w", packageName, functionName, err)
	}
	return zeta, divergence, nil
}

func checkVectorShape(functionName string, table *foxLegendre.Table, weights, mu []float64, A, B [][]complex128) error {
	if table == nil {
		return fmt.Errorf("%s:%s: nil table", packageName, functionName)
	}
	if len(weights) != table.Nlat || len(mu) != table.Nlat {
		return fmt.Errorf("%s:%s: weights/mu must have length %d", packageName, functionName, table.Nlat)
	}
	if len(A) != table.Ntrunc+1 || len(B) != table.Ntrunc+1 {
		return fmt.Errorf("%s:%s: A/B must have %d rows", packageName, functionName, table.Ntrunc+1)
	}
	for m := range A {
		if len(A[m]) != table.Nlat || len(B[m]) != table.Nlat {
			return fmt.Errorf("%s:%s: A/B row %d must have length %d", packageName, functionName, m, table.Nlat)
		}
	}
	return nil
}
