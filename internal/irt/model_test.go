package irt

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProbability_BoundedByGuessingAndOne(t *testing.T) {
	m := NewResponseModel(0.25)

	thetas := []float64{-10, -3, -1, 0, 0.5, 1, 3, 10}
	for _, theta := range thetas {
		p := m.Probability(theta, 0, 1)
		assert.GreaterOrEqual(t, p, m.Guessing)
		assert.LessOrEqual(t, p, 1.0)
	}
}

func TestProbability_MonotoneInTheta(t *testing.T) {
	m := NewResponseModel(0.25)
	prev := m.Probability(-5, 0, 1)
	for theta := -4.0; theta <= 5.0; theta++ {
		p := m.Probability(theta, 0, 1)
		assert.GreaterOrEqual(t, p, prev)
		prev = p
	}
}

func TestProbability_ExtremeZDoesNotOverflow(t *testing.T) {
	m := NewResponseModel(0.25)
	assert.InDelta(t, 1.0, m.Probability(1000, -1000, 1), 1e-9)
	assert.InDelta(t, m.Guessing, m.Probability(-1000, 1000, 1), 1e-9)
}

func TestInformation_NonNegative(t *testing.T) {
	m := NewResponseModel(0.25)
	for _, theta := range []float64{-3, -1, 0, 1, 3} {
		info := m.Information(theta, 0, 1)
		assert.GreaterOrEqual(t, info, 0.0)
	}
}

func TestInformation_VanishesFarFromDifficulty(t *testing.T) {
	m := NewResponseModel(0.25)
	near := m.Information(0, 0, 1)
	far := m.Information(20, 0, 1)
	assert.Greater(t, near, far)
	// At theta=20, 1-p = 0.75*e^-20 ~ 1.546e-9, still above the 1e-9 cutoff
	// at which p counts as pinned to 1, so I ~ 0.75*e^-20 ~ 1.546e-9.
	assert.InDelta(t, 1.5459e-9, far, 1e-12)
}

func TestProbability_AtDifficultyIsAboveGuessingHalfway(t *testing.T) {
	m := NewResponseModel(0.25)
	p := m.Probability(0, 0, 1)
	// c + (1-c)*0.5
	expected := 0.25 + 0.75*0.5
	assert.True(t, math.Abs(p-expected) < 1e-9)
}
