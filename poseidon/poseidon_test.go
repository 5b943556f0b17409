package poseidon

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tokamak-network/bls12-381-groth16-ceremony/field"
)

// testParams is a toy Poseidon instantiation -- not a real circuit's
// constants, just enough rounds and a non-trivial MDS to exercise the
// permutation schedule end to end.
type testParams struct {
	rc  [][]field.Element
	mds [][]field.Element
}

func (p testParams) RoundConstants() [][]field.Element { return p.rc }
func (p testParams) MDS() [][]field.Element            { return p.mds }
func (p testParams) FullRounds() int                   { return 8 }
func (p testParams) PartialRounds() int                { return 4 }

func newTestParams() testParams {
	total := 12
	rc := make([][]field.Element, total)
	for r := 0; r < total; r++ {
		row := make([]field.Element, width)
		for i := 0; i < width; i++ {
			row[i] = field.FromUint64(uint64(r*width + i + 1))
		}
		rc[r] = row
	}
	mds := make([][]field.Element, width)
	for i := 0; i < width; i++ {
		row := make([]field.Element, width)
		for j := 0; j < width; j++ {
			if i == j {
				row[j] = field.FromUint64(2)
			} else {
				row[j] = field.One()
			}
		}
		mds[i] = row
	}
	return testParams{rc: rc, mds: mds}
}

func TestHash4Deterministic(t *testing.T) {
	assert := require.New(t)
	p := newTestParams()

	in := [4]field.Element{field.FromUint64(1), field.FromUint64(2), field.FromUint64(3), field.FromUint64(4)}
	h1, err := Hash4(p, in)
	assert.NoError(err)
	h2, err := Hash4(p, in)
	assert.NoError(err)
	assert.True(h1.Equal(h2))
}

func TestHash4DiffersOnInput(t *testing.T) {
	assert := require.New(t)
	p := newTestParams()

	in1 := [4]field.Element{field.FromUint64(1), field.FromUint64(2), field.FromUint64(3), field.FromUint64(4)}
	in2 := [4]field.Element{field.FromUint64(1), field.FromUint64(2), field.FromUint64(3), field.FromUint64(5)}

	h1, err := Hash4(p, in1)
	assert.NoError(err)
	h2, err := Hash4(p, in2)
	assert.NoError(err)
	assert.False(h1.Equal(h2))
}

func TestHash4RejectsMismatchedParams(t *testing.T) {
	assert := require.New(t)
	p := newTestParams()
	p.rc = p.rc[:len(p.rc)-1]

	_, err := Hash4(p, [4]field.Element{})
	assert.Error(err)
}

// TestMerkleTreeQuaternary builds the 3-level, 50-leaf, 8-active tree
// described by the storage-proof witness scenario.
func TestMerkleTreeQuaternary(t *testing.T) {
	assert := require.New(t)
	p := newTestParams()

	leaves := make([]field.Element, 50)
	for i := range leaves {
		leaves[i] = field.FromUint64(uint64(i))
	}
	tree := &MerkleTree{Leaves: leaves, Active: 8}

	root1, err := tree.Root(p)
	assert.NoError(err)

	tree2 := &MerkleTree{Leaves: leaves, Active: 8}
	root2, err := tree2.Root(p)
	assert.NoError(err)

	assert.True(root1.Equal(root2))
}

func TestMerkleTreeRejectsBadActiveCount(t *testing.T) {
	assert := require.New(t)
	p := newTestParams()

	tree := &MerkleTree{Leaves: make([]field.Element, 4), Active: 99}
	_, err := tree.Root(p)
	assert.Error(err)
}
