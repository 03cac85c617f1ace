package kernel

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCubicSpline_ZeroOutsideSupport(t *testing.T) {
	k := NewCubicSpline(1.0)
	assert.Zero(t, k.Eval(1.0))
	assert.Zero(t, k.Eval(1.5))
	assert.Zero(t, k.Eval(-0.1))
}

func TestCubicSpline_PositiveInsideSupport(t *testing.T) {
	k := NewCubicSpline(2.0)
	assert.Greater(t, k.Eval(0), 0.0)
	assert.Greater(t, k.Eval(0.5), 0.0)
	assert.Greater(t, k.Eval(1.9), 0.0)
}

func TestCubicSpline_MonotonicDecay(t *testing.T) {
	k := NewCubicSpline(2.0)
	prev := k.Eval(0)
	for d := 0.1; d < 2.0; d += 0.1 {
		v := k.Eval(d)
		require.LessOrEqual(t, v, prev+1e-9)
		prev = v
	}
}

func TestCubicSpline_IntegratesToOne(t *testing.T) {
	// Numerically integrate 4*pi*r^2*W(r) dr over [0, q] via Riemann sum;
	// should approximate 1 within a coarse tolerance.
	k := NewCubicSpline(1.0)
	const n = 200000
	q := k.CompactSupport
	dr := q / n
	sum := 0.0
	for i := 0; i < n; i++ {
		r := (float64(i) + 0.5) * dr
		sum += 4 * math.Pi * r * r * k.Eval(r) * dr
	}
	assert.InDelta(t, 1.0, sum, 0.01)
}

func TestCubicSpline_GradientSignMatchesDecay(t *testing.T) {
	k := NewCubicSpline(2.0)
	// The kernel is non-increasing in [0, q), so its gradient must be <= 0
	// away from the origin.
	assert.LessOrEqual(t, k.GradMagnitude(1.0), 0.0)
	assert.Zero(t, k.GradMagnitude(2.5))
}
