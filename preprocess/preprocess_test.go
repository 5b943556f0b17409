package preprocess

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCompilePermutationIdentity(t *testing.T) {
	assert := require.New(t)

	mI, sMax := 4, 4
	s0, s1, err := CompilePermutation(PermutationSpec{Mapping: map[Cell]Cell{}}, mI, sMax)
	assert.NoError(err)

	wxPows := domainPowers(mI)
	wyPows := domainPowers(sMax)
	s0Evals := s0.ToROUEvals()
	s1Evals := s1.ToROUEvals()
	for y := 0; y < sMax; y++ {
		for x := 0; x < mI; x++ {
			idx := y*mI + x
			assert.True(s0Evals[idx].Equal(wxPows[x]))
			assert.True(s1Evals[idx].Equal(wyPows[y]))
		}
	}
}

func TestCompilePermutationSwap(t *testing.T) {
	assert := require.New(t)

	mI, sMax := 4, 4
	a := Cell{Row: 0, Col: 0}
	b := Cell{Row: 2, Col: 1}
	spec := PermutationSpec{Mapping: map[Cell]Cell{a: b, b: a}}

	s0, s1, err := CompilePermutation(spec, mI, sMax)
	assert.NoError(err)

	wxPows := domainPowers(mI)
	wyPows := domainPowers(sMax)
	s0Evals := s0.ToROUEvals()
	s1Evals := s1.ToROUEvals()

	idxA := a.Col*mI + a.Row
	idxB := b.Col*mI + b.Row
	assert.True(s0Evals[idxA].Equal(wxPows[b.Row]))
	assert.True(s1Evals[idxA].Equal(wyPows[b.Col]))
	assert.True(s0Evals[idxB].Equal(wxPows[a.Row]))
	assert.True(s1Evals[idxB].Equal(wyPows[a.Col]))
}

func TestCompilePermutationOutOfBounds(t *testing.T) {
	assert := require.New(t)

	spec := PermutationSpec{Mapping: map[Cell]Cell{
		{Row: 0, Col: 0}: {Row: 9, Col: 0},
	}}
	_, _, err := CompilePermutation(spec, 4, 4)
	assert.Error(err)
}
