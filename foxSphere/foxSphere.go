// Package: github.com/Foxenfurter/foxSpectralSphere/foxSphere
// filename foxSphere.go
// Package provides SpectralSphere, the public facade wiring the Gaussian
// quadrature, Legendre table, real FFT, Legendre transform and spectral
// vector operators into the four user-level operations a shallow-water
// solver's numerical core needs: the real FFT along longitude, the full
// scalar transform, and the two vector operators tying vorticity and
// divergence to velocity.
package foxSphere

import (
	"errors"
	"fmt"

	"github.com/Foxenfurter/foxSpectralSphere/foxGaussQuad"
	"github.com/Foxenfurter/foxSpectralSphere/foxLegendre"
	"github.com/Foxenfurter/foxSpectralSphere/foxLegendreTransform"
	"github.com/Foxenfurter/foxSpectralSphere/foxSpecOps"
	"github.com/Foxenfurter/foxSpectralSphere/foxSphereFFT"
	"github.com/Foxenfurter/foxSpectralSphere/foxSphereLog"
	"github.com/google/uuid"
)

const packageName = "foxSphere"

// ErrInvalidGeometry is returned at construction time when nlon, nlat,
// ntrunc, or the radius a are out of range.
var ErrInvalidGeometry = errors.New("invalid geometry")

// ErrShapeMismatch is returned when a caller-supplied buffer does not
// match the SpectralSphere's declared dimensions.
var ErrShapeMismatch = errors.New("shape mismatch")

// ErrConvergenceFailure is returned when Gaussian root-finding fails to
// converge, or the resulting weights fail the sum-to-2 check.
var ErrConvergenceFailure = errors.New("convergence failure")

// ErrReleased is returned by every operation on a SpectralSphere after
// Release has been called.
var ErrReleased = errors.New("spectral sphere released")

// Geometry describes the grid and truncation a SpectralSphere is built
// for: nlon longitudes, nlat Gaussian latitudes, triangular truncation
// ntrunc, and planetary radius a.
type Geometry struct {
	Nlon   int
	Nlat   int
	Ntrunc int
	A      float64
}

func (g Geometry) validate() error {
	const functionName = "Geometry.validate"
	if g.Nlon%2 != 0 || g.Nlon < 4 {
		return fmt.Errorf("%s:%s: %w: nlon must be even and >= 4, got %d", packageName, functionName, ErrInvalidGeometry, g.Nlon)
	}
	if g.Ntrunc < 0 {
		return fmt.Errorf("%s:%s: %w: ntrunc must be non-negative, got %d", packageName, functionName, ErrInvalidGeometry, g.Ntrunc)
	}
	if g.Nlat < g.Ntrunc+1 {
		return fmt.Errorf("%s:%s: %w: nlat=%d must be >= ntrunc+1=%d", packageName, functionName, ErrInvalidGeometry, g.Nlat, g.Ntrunc+1)
	}
	if g.Ntrunc > g.Nlon/2 {
		return fmt.Errorf("%s:%s: %w: ntrunc=%d exceeds nlon/2=%d", packageName, functionName, ErrInvalidGeometry, g.Ntrunc, g.Nlon/2)
	}
	if g.A <= 0 {
		return fmt.Errorf("%s:%s: %w: a must be positive, got %g", packageName, functionName, ErrInvalidGeometry, g.A)
	}
	return nil
}

// SpectralSphere is built once for a Geometry and shared read-only
// thereafter. It is safe for concurrent use by multiple goroutines as
// long as each call supplies its own input/output buffers.
type SpectralSphere struct {
	geometry Geometry

	mu            []float64
	weights       []float64
	table         *foxLegendre.Table
	laplacian     []float64
	invLaplacian  []float64
	nmdim         int
	instanceID    string
	logger        *foxSphereLog.Logger
	released      bool
}

// New builds a SpectralSphere for the given geometry with no logger
// attached.
func New(nlon, nlat, ntrunc int, a float64) (*SpectralSphere, error) {
	return NewWithLogger(nlon, nlat, ntrunc, a, nil)
}

// NewWithLogger builds a SpectralSphere, routing construction-time
// diagnostics through logger if non-nil.
func NewWithLogger(nlon, nlat, ntrunc int, a float64, logger *foxSphereLog.Logger) (*SpectralSphere, error) {
	const functionName = "NewWithLogger"
	geometry := Geometry{Nlon: nlon, Nlat: nlat, Ntrunc: ntrunc, A: a}
	if err := geometry.validate(); err != nil {
		return nil, err
	}

	quad, err := foxGaussQuad.Build(nlat)
	if err != nil {
		return nil, fmt.Errorf("%s:%s: %w: %v", packageName, functionName, ErrConvergenceFailure, err)
	}

	table, err := foxLegendre.Build(nlat, ntrunc, quad.Mu)
	if err != nil {
		return nil, fmt.Errorf("%s:%s: %w", packageName, functionName, err)
	}

	laplacian, invLaplacian := foxSpecOps.Eigenvalues(table, a)
	instanceID := uuid.NewString()

	sphere := &SpectralSphere{
		geometry:     geometry,
		mu:           quad.Mu,
		weights:      quad.Weights,
		table:        table,
		laplacian:    laplacian,
		invLaplacian: invLaplacian,
		nmdim:        foxLegendre.NMDim(ntrunc),
		instanceID:   instanceID,
		logger:       logger,
	}

	if logger != nil {
		logger.DebugFields("built geometry", foxSphereLog.Fields{
			"nlon": nlon, "nlat": nlat, "ntrunc": ntrunc, "a": a,
			"nmdim": sphere.nmdim, "instance": instanceID,
		})
	}
	return sphere, nil
}

// Release marks the SpectralSphere unusable; every subsequent operation
// returns ErrReleased. Idempotent, safe to call more than once.
func (s *SpectralSphere) Release() {
	if !s.released && s.logger != nil {
		s.logger.InfoFields("released", foxSphereLog.Fields{"instance": s.instanceID})
	}
	s.released = true
}

// logWarn emits a Warn-level entry tagged with the operation and instance
// id, if a logger is attached. Used for caller errors (shape mismatch,
// use-after-release) that are recoverable but worth surfacing.
func (s *SpectralSphere) logWarn(functionName string, fields foxSphereLog.Fields) {
	if s.logger == nil {
		return
	}
	fields["instance"] = s.instanceID
	fields["op"] = functionName
	s.logger.WarnFields("rejected call", fields)
}

// logError emits an Error-level entry for a failure surfaced by a lower
// layer (FFT, transform, spectral operator), if a logger is attached.
func (s *SpectralSphere) logError(functionName string, err error) {
	if s.logger == nil {
		return
	}
	s.logger.ErrorFields("operation failed", foxSphereLog.Fields{
		"instance": s.instanceID, "op": functionName, "err": err,
	})
}

// InstanceID returns the correlation id generated at construction, for
// disambiguating log lines across concurrently-built spheres.
func (s *SpectralSphere) InstanceID() string {
	return s.instanceID
}

// GaussianLatitudes returns a copy of mu_j, descending from the north
// pole, the sines of the nlat Gaussian latitudes.
func (s *SpectralSphere) GaussianLatitudes() []float64 {
	out := make([]float64, len(s.mu))
	copy(out, s.mu)
	return out
}

// GaussianWeights returns a copy of the quadrature weights, summing to 2.
func (s *SpectralSphere) GaussianWeights() []float64 {
	out := make([]float64, len(s.weights))
	copy(out, s.weights)
	return out
}

// Laplacian returns a copy of the horizontal Laplacian eigenvalues
// -n(n+1)/a^2, one per spectral coefficient under the canonical ordering.
func (s *SpectralSphere) Laplacian() []float64 {
	out := make([]float64, len(s.laplacian))
	copy(out, s.laplacian)
	return out
}

// NMDim returns the number of spectral coefficients for this truncation.
func (s *SpectralSphere) NMDim() int {
	return s.nmdim
}

// Geometry returns the geometry this SpectralSphere was built for.
func (s *SpectralSphere) Geometry() Geometry {
	return s.geometry
}

func (s *SpectralSphere) checkReleased(functionName string) error {
	if s.released {
		s.logWarn(functionName, foxSphereLog.Fields{"reason": "released"})
		return fmt.Errorf("%s:%s: %w", packageName, functionName, ErrReleased)
	}
	return nil
}

func (s *SpectralSphere) checkGrid(functionName string, grid [][]float64) error {
	if len(grid) != s.geometry.Nlat {
		s.logWarn(functionName, foxSphereLog.Fields{"reason": "grid rows", "got": len(grid), "want": s.geometry.Nlat})
		return fmt.Errorf("%s:%s: %w: grid has %d rows, want %d", packageName, functionName, ErrShapeMismatch, len(grid), s.geometry.Nlat)
	}
	for j, row := range grid {
		if len(row) != s.geometry.Nlon {
			s.logWarn(functionName, foxSphereLog.Fields{"reason": "grid row length", "row": j, "got": len(row), "want": s.geometry.Nlon})
			return fmt.Errorf("%s:%s: %w: row %d has length %d, want %d", packageName, functionName, ErrShapeMismatch, j, len(row), s.geometry.Nlon)
		}
	}
	return nil
}

func (s *SpectralSphere) checkFourier(functionName string, F [][]complex128) error {
	if len(F) != s.geometry.Ntrunc+1 {
		s.logWarn(functionName, foxSphereLog.Fields{"reason": "fourier rows", "got": len(F), "want": s.geometry.Ntrunc + 1})
		return fmt.Errorf("%s:%s: %w: F has %d rows, want %d", packageName, functionName, ErrShapeMismatch, len(F), s.geometry.Ntrunc+1)
	}
	for m, row := range F {
		if len(row) != s.geometry.Nlat {
			s.logWarn(functionName, foxSphereLog.Fields{"reason": "fourier row length", "row": m, "got": len(row), "want": s.geometry.Nlat})
			return fmt.Errorf("%s:%s: %w: row %d has length %d, want %d", packageName, functionName, ErrShapeMismatch, m, len(row), s.geometry.Nlat)
		}
	}
	return nil
}

func (s *SpectralSphere) checkSpectral(functionName string, X []complex128) error {
	if len(X) != s.nmdim {
		s.logWarn(functionName, foxSphereLog.Fields{"reason": "spectral length", "got": len(X), "want": s.nmdim})
		return fmt.Errorf("%s:%s: %w: X has length %d, want %d", packageName, functionName, ErrShapeMismatch, len(X), s.nmdim)
	}
	return nil
}

// RealFFTForward runs the real FFT along longitude on every row of grid
// (nlat rows of length nlon), returning the per-latitude Fourier matrix
// F[m][j] truncated to m=0..ntrunc.
func (s *SpectralSphere) RealFFTForward(grid [][]float64) ([][]complex128, error) {
	const functionName = "RealFFTForward"
	if err := s.checkReleased(functionName); err != nil {
		return nil, err
	}
	if err := s.checkGrid(functionName, grid); err != nil {
		return nil, err
	}

	ntrunc := s.geometry.Ntrunc
	F := make([][]complex128, ntrunc+1)
	for m := range F {
		F[m] = make([]complex128, s.geometry.Nlat)
	}
	for j, row := range grid {
		coeffs, err := foxSphereFFT.Forward(row, ntrunc)
		if err != nil {
			wrapped := fmt.Errorf("%s:%s: latitude %d: %w", packageName, functionName, j, err)
			s.logError(functionName, wrapped)
			return nil, wrapped
		}
		for m, c := range coeffs {
			F[m][j] = c
		}
	}
	return F, nil
}

// RealFFTInverse is the dual of RealFFTForward: given the per-latitude
// Fourier matrix, it reconstructs the nlat x nlon real grid.
func (s *SpectralSphere) RealFFTInverse(F [][]complex128) ([][]float64, error) {
	const functionName = "RealFFTInverse"
	if err := s.checkReleased(functionName); err != nil {
		return nil, err
	}
	if err := s.checkFourier(functionName, F); err != nil {
		return nil, err
	}

	nlat, nlon, ntrunc := s.geometry.Nlat, s.geometry.Nlon, s.geometry.Ntrunc
	grid := make([][]float64, nlat)
	for j := 0; j < nlat; j++ {
		coeffs := make([]complex128, ntrunc+1)
		for m := range coeffs {
			coeffs[m] = F[m][j]
		}
		row, err := foxSphereFFT.Inverse(coeffs, ntrunc, nlon)
		if err != nil {
			wrapped := fmt.Errorf("%s:%s: latitude %d: %w", packageName, functionName, j, err)
			s.logError(functionName, wrapped)
			return nil, wrapped
		}
		grid[j] = row
	}
	return grid, nil
}

// ScalarAnalyze is the full forward scalar transform: real FFT along
// longitude followed by Legendre analysis, producing the spectral
// coefficient vector X under the canonical foxLegendre.Index ordering.
func (s *SpectralSphere) ScalarAnalyze(grid [][]float64) ([]complex128, error) {
	const functionName = "ScalarAnalyze"
	if err := s.checkReleased(functionName); err != nil {
		return nil, err
	}
	F, err := s.RealFFTForward(grid)
	if err != nil {
		return nil, err
	}
	X, err := foxLegendreTransform.Analyze(s.table, s.weights, F)
	if err != nil {
		wrapped := fmt.Errorf("%s:%s: %w", packageName, functionName, err)
		s.logError(functionName, wrapped)
		return nil, wrapped
	}
	return X, nil
}

// ScalarSynthesize is the dual of ScalarAnalyze: Legendre synthesis
// followed by the inverse real FFT, producing the nlat x nlon grid.
func (s *SpectralSphere) ScalarSynthesize(X []complex128) ([][]float64, error) {
	const functionName = "ScalarSynthesize"
	if err := s.checkReleased(functionName); err != nil {
		return nil, err
	}
	if err := s.checkSpectral(functionName, X); err != nil {
		return nil, err
	}
	F, err := foxLegendreTransform.Synthesize(s.table, X)
	if err != nil {
		wrapped := fmt.Errorf("%s:%s: %w", packageName, functionName, err)
		s.logError(functionName, wrapped)
		return nil, wrapped
	}
	grid, err := s.RealFFTInverse(F)
	if err != nil {
		return nil, err
	}
	return grid, nil
}

// VelocitiesFromVorticityDivergence converts spectral vorticity and
// divergence into cos(phi)-scaled grid velocities, as in foxSpecOps. The
// n=0 modes of zeta and divergence do not contribute. See
// VorticityDivergenceFromVelocities's doc comment for the derivation.
func (s *SpectralSphere) VelocitiesFromVorticityDivergence(zeta, divergence []complex128) (ucos, vcos [][]float64, err error) {
	const functionName = "VelocitiesFromVorticityDivergence"
	if err := s.checkReleased(functionName); err != nil {
		return nil, nil, err
	}
	if err := s.checkSpectral(functionName, zeta); err != nil {
		return nil, nil, err
	}
	if err := s.checkSpectral(functionName, divergence); err != nil {
		return nil, nil, err
	}
	ucos, vcos, err = foxSpecOps.VelocitiesFromVorticityDivergence(s.table, s.geometry.A, zeta, divergence, s.geometry.Nlon)
	if err != nil {
		wrapped := fmt.Errorf("%s:%s: %w", packageName, functionName, err)
		s.logError(functionName, wrapped)
		return nil, nil, wrapped
	}
	return ucos, vcos, nil
}

// VorticityDivergenceFromVelocities is the exact inverse of
// VelocitiesFromVorticityDivergence for every mode with n >= 1 (verified against the classical
// solid-body-rotation closed form at n=1,m=0 and against an isolated
// n=m=1 mode for both the vorticity and divergence branches) - see the
// derivation on foxSpecOps.VorticityDivergenceFromVelocities and
// DESIGN.md's Open Question entry.
func (s *SpectralSphere) VorticityDivergenceFromVelocities(ucos, vcos [][]float64) (zeta, divergence []complex128, err error) {
	const functionName = "VorticityDivergenceFromVelocities"
	if err := s.checkReleased(functionName); err != nil {
		return nil, nil, err
	}
	if err := s.checkGrid(functionName, ucos); err != nil {
		return nil, nil, err
	}
	if err := s.checkGrid(functionName, vcos); err != nil {
		return nil, nil, err
	}
	zeta, divergence, err = foxSpecOps.VorticityDivergenceFromVelocities(s.table, s.weights, s.mu, s.geometry.A, ucos, vcos)
	if err != nil {
		wrapped := fmt.Errorf("%s:%s: %w", packageName, functionName, err)
		s.logError(functionName, wrapped)
		return nil, nil, wrapped
	}
	return zeta, divergence, nil
}

// CombineFourierToSpectral is the shared tendency-evaluation kernel; see
// foxSpecOps.CombineFourierToSpectral for the formula.
func (s *SpectralSphere) CombineFourierToSpectral(A, B [][]complex128, signA, signB float64) ([]complex128, error) {
	const functionName = "CombineFourierToSpectral"
	if err := s.checkReleased(functionName); err != nil {
		return nil, err
	}
	if err := s.checkFourier(functionName, A); err != nil {
		return nil, err
	}
	if err := s.checkFourier(functionName, B); err != nil {
		return nil, err
	}
	X, err := foxSpecOps.CombineFourierToSpectral(s.table, s.weights, s.mu, s.geometry.A, A, B, signA, signB)
	if err != nil {
		wrapped := fmt.Errorf("%s:%s: %w", packageName, functionName, err)
		s.logError(functionName, wrapped)
		return nil, wrapped
	}
	return X, nil
}
