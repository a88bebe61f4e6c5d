// Package: github.com/Foxenfurter/foxSpectralSphere/foxSphereFFT
// filename foxSphereFFT.go
// Package implements the real-to-complex FFT along a longitude ring via a
// complex FFT of half the length, following the same packing idiom the
// pack's real-FFT repackers use: treat adjacent real samples as one
// complex sample, transform at half length, then solve a small per-mode
// linear system (pairing mode k with mode M-k under conjugate symmetry)
// to recover the true half-spectrum.
package foxSphereFFT

import (
	"fmt"
	"math"
	"math/bits"
	"math/cmplx"
	"sync"
)

const packageName = "foxSphereFFT"

// twiddleCache memoizes the roots of unity for a given transform length,
// same structure as the teacher's getTwiddles cache.
var (
	twiddleCache     = make(map[int][]complex128)
	twiddleCacheLock sync.RWMutex
)

func twiddles(n int) []complex128 {
	twiddleCacheLock.RLock()
	if t, ok := twiddleCache[n]; ok {
		twiddleCacheLock.RUnlock()
		return t
	}
	twiddleCacheLock.RUnlock()

	twiddleCacheLock.Lock()
	defer twiddleCacheLock.Unlock()
	if t, ok := twiddleCache[n]; ok {
		return t
	}

	t := make([]complex128, n)
	for k := 0; k < n; k++ {
		angle := -2 * math.Pi * float64(k) / float64(n)
		sin, cos := math.Sincos(angle)
		t[k] = complex(cos, sin)
	}
	twiddleCache[n] = t
	return t
}

func isPow2(n int) bool {
	if n <= 0 {
		return false
	}
	return n&(n-1) == 0
}

// permute applies the bit-reversal permutation in place.
func permute(x []complex128) {
	n := len(x)
	switch n {
	case 1, 2:
		return
	case 4:
		x[1], x[2] = x[2], x[1]
		return
	case 8:
		x[1], x[4] = x[4], x[1]
		x[3], x[6] = x[6], x[3]
		return
	}
	shift := 64 - uint64(bits.Len64(uint64(n-1)))
	n2 := n >> 1
	for i := 0; i < n; i += 2 {
		ind := int(bits.Reverse64(uint64(i)) >> shift)
		if ind > i {
			x[i], x[ind] = x[ind], x[i]
		}
		ind |= n2
		if ind > i+1 {
			x[i+1], x[ind] = x[ind], x[i+1]
		}
	}
}

// radix2Forward computes the unnormalized forward DFT of x in place.
// x must have power-of-two length >= 2.
func radix2Forward(x []complex128) {
	n := len(x)
	if n == 1 {
		return
	}
	if n == 2 {
		x[0], x[1] = x[0]+x[1], x[0]-x[1]
		return
	}

	permute(x)

	for i := 0; i < n; i += 4 {
		f := complex(imag(x[i+2])-imag(x[i+3]), real(x[i+3])-real(x[i+2]))
		x[i], x[i+1], x[i+2], x[i+3] = x[i]+x[i+1]+x[i+2]+x[i+3], x[i]-x[i+1]+f, x[i]-x[i+2]+x[i+1]-x[i+3], x[i]-x[i+1]-f
	}

	tw := twiddles(n)
	for stageLen := 4; stageLen < n; stageLen <<= 1 {
		doubled := stageLen << 1
		stride := n / doubled
		for o := 0; o < n; o += doubled {
			for k := 0; k < stageLen; k++ {
				i := k + o
				f := tw[k*stride] * x[i+stageLen]
				x[i], x[i+stageLen] = x[i]+f, x[i]-f
			}
		}
	}
}

// radix2Inverse computes the normalized inverse DFT of x in place.
func radix2Inverse(x []complex128) {
	n := len(x)
	if n == 1 {
		return
	}
	for i, j := 1, n-1; i < j; i, j = i+1, j-1 {
		x[i], x[j] = x[j], x[i]
	}
	radix2Forward(x)

	invN := 1.0 / float64(n)
	for i := range x {
		x[i] = complex(real(x[i])*invN, imag(x[i])*invN)
	}
}

// naiveDFT is the O(n^2) fallback for lengths that are not powers of two.
// Gaussian-grid longitude counts are only required to be even, not
// power-of-two, so this keeps the contract correct for every valid
// geometry even though the fast path above covers every scenario in
// practice.
func naiveDFT(x []complex128, inverse bool) []complex128 {
	n := len(x)
	out := make([]complex128, n)
	sign := -1.0
	if inverse {
		sign = 1.0
	}
	for k := 0; k < n; k++ {
		var sum complex128
		for j := 0; j < n; j++ {
			angle := sign * 2 * math.Pi * float64(k*j) / float64(n)
			s, c := math.Sincos(angle)
			sum += x[j] * complex(c, s)
		}
		out[k] = sum
	}
	if inverse {
		invN := complex(1.0/float64(n), 0)
		for i := range out {
			out[i] *= invN
		}
	}
	return out
}

func complexFFT(x []complex128, inverse bool) []complex128 {
	n := len(x)
	if isPow2(n) {
		out := make([]complex128, n)
		copy(out, x)
		if inverse {
			radix2Inverse(out)
		} else {
			radix2Forward(out)
		}
		return out
	}
	return naiveDFT(x, inverse)
}

func pack(row []float64) []complex128 {
	m := len(row) / 2
	z := make([]complex128, m)
	for k := 0; k < m; k++ {
		z[k] = complex(row[2*k], row[2*k+1])
	}
	return z
}

func unpack(z []complex128, nlon int) []float64 {
	row := make([]float64, nlon)
	for k, v := range z {
		row[2*k] = real(v)
		row[2*k+1] = imag(v)
	}
	return row
}

func checkGeometry(functionName string, nlon, ntrunc int) (m int, err error) {
	if nlon%2 != 0 || nlon < 4 {
		return 0, fmt.Errorf("%s:%s: nlon must be even and >= 4, got %d", packageName, functionName, nlon)
	}
	m = nlon / 2
	if ntrunc < 0 || ntrunc > m {
		return 0, fmt.Errorf("%s:%s: ntrunc=%d out of range [0,%d]", packageName, functionName, ntrunc, m)
	}
	return m, nil
}

// Forward returns the first ntrunc+1 real-FFT coefficients of row (length
// nlon), normalized by 1/nlon.
func Forward(row []float64, ntrunc int) ([]complex128, error) {
	const functionName = "Forward"
	m, err := checkGeometry(functionName, len(row), ntrunc)
	if err != nil {
		return nil, err
	}

	z := pack(row)
	Z := complexFFT(z, false)
	tw := twiddles(len(row))

	out := make([]complex128, ntrunc+1)
	invN := complex(1.0/float64(len(row)), 0)
	for mode := 0; mode <= ntrunc; mode++ {
		k := mode % m
		pair := (m - k) % m

		ge := 0.5 * (Z[k] + cmplx.Conj(Z[pair]))
		godiff := complex(0, -0.5) * (Z[k] - cmplx.Conj(Z[pair]))
		g := ge + tw[mode]*godiff
		out[mode] = g * invN
	}
	return out, nil
}

// Inverse reconstructs a real row of length nlon from ntrunc+1 Fourier
// coefficients, treating modes above ntrunc (up to the Nyquist mode
// nlon/2) as zero.
func Inverse(coeffs []complex128, ntrunc, nlon int) ([]float64, error) {
	const functionName = "Inverse"
	m, err := checkGeometry(functionName, nlon, ntrunc)
	if err != nil {
		return nil, err
	}
	if len(coeffs) != ntrunc+1 {
		return nil, fmt.Errorf("%s:%s: len(coeffs)=%d, want %d", packageName, functionName, len(coeffs), ntrunc+1)
	}

	// Undo the forward 1/nlon normalization before solving for the
	// half-length complex spectrum; zero-pad beyond ntrunc up to the
	// Nyquist mode m.
	G := make([]complex128, m+1)
	scale := complex(float64(nlon), 0)
	for i := 0; i <= ntrunc; i++ {
		G[i] = coeffs[i] * scale
	}

	tw := twiddles(nlon)
	Z := make([]complex128, m)
	for k := 0; k < m; k++ {
		pair := m - k
		wk := tw[k]
		ge := 0.5 * (G[k] + cmplx.Conj(G[pair]))
		godiff := (G[k] - cmplx.Conj(G[pair])) / (2 * wk)
		Z[k] = ge + complex(0, 1)*godiff
	}

	z := complexFFT(Z, true)
	return unpack(z, nlon), nil
}
