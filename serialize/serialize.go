// Package serialize implements the on-disk/wire formats every
// persisted artifact in the ceremony uses: the Powers-of-Tau binary
// format, cbor/JSON forms for the Groth16 key pair, self-describing
// JSON for the running accumulator and proof, and a YAML form for
// human-auditable contribution metadata.
package serialize

import (
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/fxamacker/cbor/v2"
	"gopkg.in/yaml.v3"

	"github.com/tokamak-network/bls12-381-groth16-ceremony/ceremony"
	"github.com/tokamak-network/bls12-381-groth16-ceremony/circuitsetup"
	"github.com/tokamak-network/bls12-381-groth16-ceremony/curve"
	"github.com/tokamak-network/bls12-381-groth16-ceremony/field"
	"github.com/tokamak-network/bls12-381-groth16-ceremony/groth16"
	"github.com/tokamak-network/bls12-381-groth16-ceremony/srs"
)

var potMagic = [4]byte{'p', 'o', 't', '1'}

const potVersion = 1

// WritePowersOfTau writes pot to w in the wire format: 4-byte magic
// "pot1", 4-byte version, 8-byte d, a 1-byte compression flag, then the
// five length-prefixed vectors (TauG1, TauG2, AlphaTauG1, BetaTauG1,
// and the singleton BetaG2) in that order, little-endian throughout.
func WritePowersOfTau(w io.Writer, pot *srs.PowersOfTau, compress bool) error {
	if err := binary.Write(w, binary.LittleEndian, potMagic); err != nil {
		return fmt.Errorf("serialize: writing magic: %w", err)
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(potVersion)); err != nil {
		return fmt.Errorf("serialize: writing version: %w", err)
	}
	if err := binary.Write(w, binary.LittleEndian, pot.D); err != nil {
		return fmt.Errorf("serialize: writing d: %w", err)
	}
	if err := binary.Write(w, binary.LittleEndian, compress); err != nil {
		return fmt.Errorf("serialize: writing compression flag: %w", err)
	}

	if err := writeG1Vector(w, pot.TauG1, compress); err != nil {
		return fmt.Errorf("serialize: writing tau_g1: %w", err)
	}
	if err := writeG2Vector(w, pot.TauG2, compress); err != nil {
		return fmt.Errorf("serialize: writing tau_g2: %w", err)
	}
	if err := writeG1Vector(w, pot.AlphaTauG1, compress); err != nil {
		return fmt.Errorf("serialize: writing alpha_tau_g1: %w", err)
	}
	if err := writeG1Vector(w, pot.BetaTauG1, compress); err != nil {
		return fmt.Errorf("serialize: writing beta_tau_g1: %w", err)
	}
	if err := writeG2Vector(w, []curve.G2Affine{pot.BetaG2}, compress); err != nil {
		return fmt.Errorf("serialize: writing beta_g2: %w", err)
	}
	return nil
}

// ReadPowersOfTau reads the format WritePowersOfTau produces.
func ReadPowersOfTau(r io.Reader) (*srs.PowersOfTau, error) {
	var magic [4]byte
	if err := binary.Read(r, binary.LittleEndian, &magic); err != nil {
		return nil, fmt.Errorf("serialize: reading magic: %w", err)
	}
	if magic != potMagic {
		return nil, fmt.Errorf("serialize: bad magic %q, want %q", magic, potMagic)
	}
	var version uint32
	if err := binary.Read(r, binary.LittleEndian, &version); err != nil {
		return nil, fmt.Errorf("serialize: reading version: %w", err)
	}
	if version != potVersion {
		return nil, fmt.Errorf("serialize: unsupported version %d", version)
	}

	var d uint64
	if err := binary.Read(r, binary.LittleEndian, &d); err != nil {
		return nil, fmt.Errorf("serialize: reading d: %w", err)
	}
	var compress bool
	if err := binary.Read(r, binary.LittleEndian, &compress); err != nil {
		return nil, fmt.Errorf("serialize: reading compression flag: %w", err)
	}

	tauG1, err := readG1Vector(r, compress)
	if err != nil {
		return nil, fmt.Errorf("serialize: reading tau_g1: %w", err)
	}
	tauG2, err := readG2Vector(r, compress)
	if err != nil {
		return nil, fmt.Errorf("serialize: reading tau_g2: %w", err)
	}
	alphaTauG1, err := readG1Vector(r, compress)
	if err != nil {
		return nil, fmt.Errorf("serialize: reading alpha_tau_g1: %w", err)
	}
	betaTauG1, err := readG1Vector(r, compress)
	if err != nil {
		return nil, fmt.Errorf("serialize: reading beta_tau_g1: %w", err)
	}
	betaG2Vec, err := readG2Vector(r, compress)
	if err != nil {
		return nil, fmt.Errorf("serialize: reading beta_g2: %w", err)
	}
	if len(betaG2Vec) != 1 {
		return nil, fmt.Errorf("serialize: expected exactly one beta_g2 point, got %d", len(betaG2Vec))
	}

	return &srs.PowersOfTau{
		D:          d,
		TauG1:      tauG1,
		TauG2:      tauG2,
		AlphaTauG1: alphaTauG1,
		BetaTauG1:  betaTauG1,
		BetaG2:     betaG2Vec[0],
	}, nil
}

func writeG1Vector(w io.Writer, pts []curve.G1Affine, compress bool) error {
	if err := binary.Write(w, binary.LittleEndian, uint64(len(pts))); err != nil {
		return err
	}
	for _, p := range pts {
		if compress {
			b := p.Bytes()
			if _, err := w.Write(b[:]); err != nil {
				return err
			}
		} else {
			b := p.RawBytes()
			if _, err := w.Write(b[:]); err != nil {
				return err
			}
		}
	}
	return nil
}

func writeG2Vector(w io.Writer, pts []curve.G2Affine, compress bool) error {
	if err := binary.Write(w, binary.LittleEndian, uint64(len(pts))); err != nil {
		return err
	}
	for _, p := range pts {
		if compress {
			b := p.Bytes()
			if _, err := w.Write(b[:]); err != nil {
				return err
			}
		} else {
			b := p.RawBytes()
			if _, err := w.Write(b[:]); err != nil {
				return err
			}
		}
	}
	return nil
}

func readG1Vector(r io.Reader, compress bool) ([]curve.G1Affine, error) {
	var n uint64
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return nil, err
	}
	out := make([]curve.G1Affine, n)
	size := g1Size(compress)
	buf := make([]byte, size)
	for i := range out {
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, err
		}
		if _, err := out[i].SetBytes(buf); err != nil {
			return nil, fmt.Errorf("point %d: %w", i, err)
		}
	}
	return out, nil
}

func readG2Vector(r io.Reader, compress bool) ([]curve.G2Affine, error) {
	var n uint64
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return nil, err
	}
	out := make([]curve.G2Affine, n)
	size := g2Size(compress)
	buf := make([]byte, size)
	for i := range out {
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, err
		}
		if _, err := out[i].SetBytes(buf); err != nil {
			return nil, fmt.Errorf("point %d: %w", i, err)
		}
	}
	return out, nil
}

func g1Size(compress bool) int {
	if compress {
		return 48
	}
	return 96
}

func g2Size(compress bool) int {
	if compress {
		return 96
	}
	return 192
}

// provingKeyCBOR and verificationKeyCBOR are the tagged-sum wire shape
// for the cbor form: flat structs cbor can round-trip directly, each
// field's point encoded via the shared compressed/uncompressed flag.
type provingKeyCBOR struct {
	Compress   bool
	Domain     uint64
	A          [][]byte
	B1         [][]byte
	B2         [][]byte
	KPrivate   [][]byte
	HQuery     [][]byte
	Delta1     []byte
	Delta2     []byte
	AlphaTauG1 []byte
	BetaTauG1  []byte
	BetaG2     []byte
}

// WriteProvingKeyCBOR encodes pk as cbor, parameterized by compress.
func WriteProvingKeyCBOR(w io.Writer, pk *groth16.ProvingKey, compress bool) error {
	enc := provingKeyCBOR{
		Compress:   compress,
		Domain:     pk.Domain,
		A:          encodeG1Vector(pk.A, compress),
		B1:         encodeG1Vector(pk.B1, compress),
		B2:         encodeG2Vector(pk.B2, compress),
		KPrivate:   encodeG1Vector(pk.KPrivate, compress),
		HQuery:     encodeG1Vector(pk.HQuery, compress),
		Delta1:     encodeG1Point(pk.Delta1, compress),
		Delta2:     encodeG2Point(pk.Delta2, compress),
		AlphaTauG1: encodeG1Point(pk.AlphaTauG1, compress),
		BetaTauG1:  encodeG1Point(pk.BetaTauG1, compress),
		BetaG2:     encodeG2Point(pk.BetaG2, compress),
	}
	data, err := cbor.Marshal(enc)
	if err != nil {
		return fmt.Errorf("serialize: cbor-encoding proving key: %w", err)
	}
	_, err = w.Write(data)
	return err
}

// ReadProvingKeyCBOR decodes a proving key written by WriteProvingKeyCBOR.
func ReadProvingKeyCBOR(r io.Reader) (*groth16.ProvingKey, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	var enc provingKeyCBOR
	if err := cbor.Unmarshal(data, &enc); err != nil {
		return nil, fmt.Errorf("serialize: cbor-decoding proving key: %w", err)
	}

	a, err := decodeG1Vector(enc.A, enc.Compress)
	if err != nil {
		return nil, err
	}
	b1, err := decodeG1Vector(enc.B1, enc.Compress)
	if err != nil {
		return nil, err
	}
	b2, err := decodeG2Vector(enc.B2, enc.Compress)
	if err != nil {
		return nil, err
	}
	kPrivate, err := decodeG1Vector(enc.KPrivate, enc.Compress)
	if err != nil {
		return nil, err
	}
	hQuery, err := decodeG1Vector(enc.HQuery, enc.Compress)
	if err != nil {
		return nil, err
	}
	delta1, err := decodeG1Point(enc.Delta1, enc.Compress)
	if err != nil {
		return nil, err
	}
	delta2, err := decodeG2Point(enc.Delta2, enc.Compress)
	if err != nil {
		return nil, err
	}
	alphaTauG1, err := decodeG1Point(enc.AlphaTauG1, enc.Compress)
	if err != nil {
		return nil, err
	}
	betaTauG1, err := decodeG1Point(enc.BetaTauG1, enc.Compress)
	if err != nil {
		return nil, err
	}
	betaG2, err := decodeG2Point(enc.BetaG2, enc.Compress)
	if err != nil {
		return nil, err
	}

	return &groth16.ProvingKey{
		Domain:     enc.Domain,
		A:          a,
		B1:         b1,
		B2:         b2,
		KPrivate:   kPrivate,
		HQuery:     hQuery,
		Delta1:     delta1,
		Delta2:     delta2,
		AlphaTauG1: alphaTauG1,
		BetaTauG1:  betaTauG1,
		BetaG2:     betaG2,
	}, nil
}

// verificationKeyJSON is the JSON form: {x,y} / {x:[c0,c1],y:[c0,c1]}
// encodings with each coordinate written as a decimal string (not hex),
// rather than the cbor form's flat byte strings, matching the
// human-inspectable verification-key export tooling usually provides.
type verificationKeyJSON struct {
	Alpha1    g1JSON   `json:"alpha1"`
	Beta2     g2JSON   `json:"beta2"`
	Gamma2    g2JSON   `json:"gamma2"`
	Delta2    g2JSON   `json:"delta2"`
	KPublic   []g1JSON `json:"kPublic"`
	NumPublic int      `json:"numPublic"`
}

type g1JSON struct {
	X string `json:"x"`
	Y string `json:"y"`
}

type g2JSON struct {
	X [2]string `json:"x"`
	Y [2]string `json:"y"`
}

// WriteVerificationKeyJSON encodes vk as the decimal-coordinate JSON form.
func WriteVerificationKeyJSON(w io.Writer, vk *groth16.VerificationKey) error {
	enc := verificationKeyJSON{
		Alpha1:    toG1JSON(vk.Alpha1),
		Beta2:     toG2JSON(vk.Beta2),
		Gamma2:    toG2JSON(vk.Gamma2),
		Delta2:    toG2JSON(vk.Delta2),
		KPublic:   make([]g1JSON, len(vk.KPublic)),
		NumPublic: vk.NumPublic,
	}
	for i, p := range vk.KPublic {
		enc.KPublic[i] = toG1JSON(p)
	}
	data, err := json.MarshalIndent(enc, "", "  ")
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// ReadVerificationKeyJSON decodes the form WriteVerificationKeyJSON produces.
func ReadVerificationKeyJSON(r io.Reader) (*groth16.VerificationKey, error) {
	var enc verificationKeyJSON
	if err := json.NewDecoder(r).Decode(&enc); err != nil {
		return nil, err
	}
	alpha1, err := fromG1JSON(enc.Alpha1)
	if err != nil {
		return nil, err
	}
	beta2, err := fromG2JSON(enc.Beta2)
	if err != nil {
		return nil, err
	}
	gamma2, err := fromG2JSON(enc.Gamma2)
	if err != nil {
		return nil, err
	}
	delta2, err := fromG2JSON(enc.Delta2)
	if err != nil {
		return nil, err
	}
	kPublic := make([]curve.G1Affine, len(enc.KPublic))
	for i, p := range enc.KPublic {
		kPublic[i], err = fromG1JSON(p)
		if err != nil {
			return nil, err
		}
	}
	return &groth16.VerificationKey{
		Alpha1:    alpha1,
		Beta2:     beta2,
		Gamma2:    gamma2,
		Delta2:    delta2,
		KPublic:   kPublic,
		NumPublic: enc.NumPublic,
	}, nil
}

func toG1JSON(p curve.G1Affine) g1JSON {
	return g1JSON{X: p.X.String(), Y: p.Y.String()}
}

func fromG1JSON(g g1JSON) (curve.G1Affine, error) {
	var p curve.G1Affine
	if _, ok := p.X.SetString(g.X); !ok {
		return p, fmt.Errorf("serialize: bad G1.x %q", g.X)
	}
	if _, ok := p.Y.SetString(g.Y); !ok {
		return p, fmt.Errorf("serialize: bad G1.y %q", g.Y)
	}
	return p, nil
}

func toG2JSON(p curve.G2Affine) g2JSON {
	return g2JSON{
		X: [2]string{p.X.A0.String(), p.X.A1.String()},
		Y: [2]string{p.Y.A0.String(), p.Y.A1.String()},
	}
}

func fromG2JSON(g g2JSON) (curve.G2Affine, error) {
	var p curve.G2Affine
	if _, ok := p.X.A0.SetString(g.X[0]); !ok {
		return p, fmt.Errorf("serialize: bad G2.x.a0 %q", g.X[0])
	}
	if _, ok := p.X.A1.SetString(g.X[1]); !ok {
		return p, fmt.Errorf("serialize: bad G2.x.a1 %q", g.X[1])
	}
	if _, ok := p.Y.A0.SetString(g.Y[0]); !ok {
		return p, fmt.Errorf("serialize: bad G2.y.a0 %q", g.Y[0])
	}
	if _, ok := p.Y.A1.SetString(g.Y[1]); !ok {
		return p, fmt.Errorf("serialize: bad G2.y.a1 %q", g.Y[1])
	}
	return p, nil
}

func encodeG1Point(p curve.G1Affine, compress bool) []byte {
	if compress {
		b := p.Bytes()
		return b[:]
	}
	b := p.RawBytes()
	return b[:]
}

func encodeG2Point(p curve.G2Affine, compress bool) []byte {
	if compress {
		b := p.Bytes()
		return b[:]
	}
	b := p.RawBytes()
	return b[:]
}

func decodeG1Point(b []byte, compress bool) (curve.G1Affine, error) {
	var p curve.G1Affine
	_, err := p.SetBytes(b)
	return p, err
}

func decodeG2Point(b []byte, compress bool) (curve.G2Affine, error) {
	var p curve.G2Affine
	_, err := p.SetBytes(b)
	return p, err
}

func encodeG1Vector(pts []curve.G1Affine, compress bool) [][]byte {
	out := make([][]byte, len(pts))
	for i, p := range pts {
		out[i] = encodeG1Point(p, compress)
	}
	return out
}

func encodeG2Vector(pts []curve.G2Affine, compress bool) [][]byte {
	out := make([][]byte, len(pts))
	for i, p := range pts {
		out[i] = encodeG2Point(p, compress)
	}
	return out
}

func decodeG1Vector(raw [][]byte, compress bool) ([]curve.G1Affine, error) {
	out := make([]curve.G1Affine, len(raw))
	for i, b := range raw {
		p, err := decodeG1Point(b, compress)
		if err != nil {
			return nil, fmt.Errorf("point %d: %w", i, err)
		}
		out[i] = p
	}
	return out, nil
}

func decodeG2Vector(raw [][]byte, compress bool) ([]curve.G2Affine, error) {
	out := make([]curve.G2Affine, len(raw))
	for i, b := range raw {
		p, err := decodeG2Point(b, compress)
		if err != nil {
			return nil, fmt.Errorf("point %d: %w", i, err)
		}
		out[i] = p
	}
	return out, nil
}

// AccumulatorJSON is the self-describing JSON form of a running
// Powers-of-Tau accumulator: a `compress` flag that governs how every
// point in the document is hex-encoded.
type AccumulatorJSON struct {
	Compress         bool     `json:"compress"`
	ContributorIndex int      `json:"contributorIndex"`
	D                uint64   `json:"d"`
	TauG1            []string `json:"tauG1"`
	TauG2            []string `json:"tauG2"`
	AlphaTauG1       []string `json:"alphaTauG1"`
	BetaTauG1        []string `json:"betaTauG1"`
	BetaG2           string   `json:"betaG2"`
	BivariateGrid    []string `json:"bivariateGrid"`
	GridXSize        int      `json:"gridXSize"`
	GridYSize        int      `json:"gridYSize"`
}

func hexOf(b []byte) string { return hex.EncodeToString(b) }

func hexVectorG1(pts []curve.G1Affine, compress bool) []string {
	out := make([]string, len(pts))
	for i, p := range pts {
		out[i] = hexOf(encodeG1Point(p, compress))
	}
	return out
}

func hexVectorG2(pts []curve.G2Affine, compress bool) []string {
	out := make([]string, len(pts))
	for i, p := range pts {
		out[i] = hexOf(encodeG2Point(p, compress))
	}
	return out
}

func unhexVectorG1(hexes []string, compress bool) ([]curve.G1Affine, error) {
	out := make([]curve.G1Affine, len(hexes))
	for i, h := range hexes {
		b, err := hex.DecodeString(h)
		if err != nil {
			return nil, fmt.Errorf("point %d: %w", i, err)
		}
		out[i], err = decodeG1Point(b, compress)
		if err != nil {
			return nil, fmt.Errorf("point %d: %w", i, err)
		}
	}
	return out, nil
}

func unhexVectorG2(hexes []string, compress bool) ([]curve.G2Affine, error) {
	out := make([]curve.G2Affine, len(hexes))
	for i, h := range hexes {
		b, err := hex.DecodeString(h)
		if err != nil {
			return nil, fmt.Errorf("point %d: %w", i, err)
		}
		out[i], err = decodeG2Point(b, compress)
		if err != nil {
			return nil, fmt.Errorf("point %d: %w", i, err)
		}
	}
	return out, nil
}

// WriteAccumulatorJSON encodes acc as self-describing JSON: every point
// is hex-encoded under the compress flag carried in the document itself,
// so a reader never has to be told out of band which form to expect.
func WriteAccumulatorJSON(w io.Writer, acc *ceremony.Accumulator, compress bool) error {
	enc := AccumulatorJSON{
		Compress:         compress,
		ContributorIndex: acc.ContributorIndex,
		D:                acc.PowersOfTau.D,
		TauG1:            hexVectorG1(acc.PowersOfTau.TauG1, compress),
		TauG2:            hexVectorG2(acc.PowersOfTau.TauG2, compress),
		AlphaTauG1:       hexVectorG1(acc.PowersOfTau.AlphaTauG1, compress),
		BetaTauG1:        hexVectorG1(acc.PowersOfTau.BetaTauG1, compress),
		BetaG2:           hexOf(encodeG2Point(acc.PowersOfTau.BetaG2, compress)),
		BivariateGrid:    hexVectorG1(acc.BivariateGrid, compress),
		GridXSize:        acc.GridXSize,
		GridYSize:        acc.GridYSize,
	}
	data, err := json.MarshalIndent(enc, "", "  ")
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// ReadAccumulatorJSON decodes the form WriteAccumulatorJSON produces.
func ReadAccumulatorJSON(r io.Reader) (*ceremony.Accumulator, error) {
	var enc AccumulatorJSON
	if err := json.NewDecoder(r).Decode(&enc); err != nil {
		return nil, err
	}

	tauG1, err := unhexVectorG1(enc.TauG1, enc.Compress)
	if err != nil {
		return nil, fmt.Errorf("serialize: decoding tauG1: %w", err)
	}
	tauG2, err := unhexVectorG2(enc.TauG2, enc.Compress)
	if err != nil {
		return nil, fmt.Errorf("serialize: decoding tauG2: %w", err)
	}
	alphaTauG1, err := unhexVectorG1(enc.AlphaTauG1, enc.Compress)
	if err != nil {
		return nil, fmt.Errorf("serialize: decoding alphaTauG1: %w", err)
	}
	betaTauG1, err := unhexVectorG1(enc.BetaTauG1, enc.Compress)
	if err != nil {
		return nil, fmt.Errorf("serialize: decoding betaTauG1: %w", err)
	}
	betaG2Bytes, err := hex.DecodeString(enc.BetaG2)
	if err != nil {
		return nil, fmt.Errorf("serialize: decoding betaG2: %w", err)
	}
	betaG2, err := decodeG2Point(betaG2Bytes, enc.Compress)
	if err != nil {
		return nil, fmt.Errorf("serialize: decoding betaG2: %w", err)
	}
	bivariateGrid, err := unhexVectorG1(enc.BivariateGrid, enc.Compress)
	if err != nil {
		return nil, fmt.Errorf("serialize: decoding bivariateGrid: %w", err)
	}

	return &ceremony.Accumulator{
		ContributorIndex: enc.ContributorIndex,
		PowersOfTau: srs.PowersOfTau{
			D:          enc.D,
			TauG1:      tauG1,
			TauG2:      tauG2,
			AlphaTauG1: alphaTauG1,
			BetaTauG1:  betaTauG1,
			BetaG2:     betaG2,
		},
		BivariateGrid: bivariateGrid,
		GridXSize:     enc.GridXSize,
		GridYSize:     enc.GridYSize,
	}, nil
}

// groth16ProofJSON is the exact wire shape for a proof:
// {a:{x,y}, b:{x:[c0,c1],y:[c0,c1]}, c:{x,y}}.
type groth16ProofJSON struct {
	A g1JSON `json:"a"`
	B g2JSON `json:"b"`
	C g1JSON `json:"c"`
}

// WriteGroth16ProofJSON encodes proof in the exact {a,b,c} wire shape.
func WriteGroth16ProofJSON(w io.Writer, proof *groth16.Proof) error {
	enc := groth16ProofJSON{A: toG1JSON(proof.A), B: toG2JSON(proof.B), C: toG1JSON(proof.C)}
	data, err := json.MarshalIndent(enc, "", "  ")
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// ReadGroth16ProofJSON decodes the form WriteGroth16ProofJSON produces.
func ReadGroth16ProofJSON(r io.Reader) (*groth16.Proof, error) {
	var enc groth16ProofJSON
	if err := json.NewDecoder(r).Decode(&enc); err != nil {
		return nil, err
	}
	a, err := fromG1JSON(enc.A)
	if err != nil {
		return nil, err
	}
	b, err := fromG2JSON(enc.B)
	if err != nil {
		return nil, err
	}
	c, err := fromG1JSON(enc.C)
	if err != nil {
		return nil, err
	}
	return &groth16.Proof{A: a, B: b, C: c}, nil
}

// contributionProofJSON is the wire shape for one Schnorr-style proof
// of knowledge: a G2 commitment in the decimal-coordinate g2JSON form
// plus two field-element scalars, each hex-encoded via fieldToHex.
type contributionProofJSON struct {
	Label      string `json:"label"`
	CommitG2   g2JSON `json:"commitG2"`
	ResponseS  string `json:"responseS"`
	ChallengeE string `json:"challengeE"`
}

func fieldToHex(e field.Element) string {
	b := e.Bytes()
	return hex.EncodeToString(b[:])
}

func fieldFromHex(s string) (field.Element, error) {
	var e field.Element
	b, err := hex.DecodeString(s)
	if err != nil {
		return e, err
	}
	if err := e.SetBytes(b); err != nil {
		return e, err
	}
	return e, nil
}

// WriteContributionProofsJSON encodes the per-parameter proofs of
// knowledge a single contribution produces (one per scaled parameter:
// tau, alpha, beta, and upsilon when a bivariate grid is present).
func WriteContributionProofsJSON(w io.Writer, proofs []*ceremony.ContributionProof) error {
	enc := make([]contributionProofJSON, len(proofs))
	for i, p := range proofs {
		enc[i] = contributionProofJSON{
			Label:      p.Label,
			CommitG2:   toG2JSON(p.CommitG2),
			ResponseS:  fieldToHex(p.ResponseS),
			ChallengeE: fieldToHex(p.ChallengeE),
		}
	}
	data, err := json.MarshalIndent(enc, "", "  ")
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// ReadContributionProofsJSON decodes the form WriteContributionProofsJSON
// produces.
func ReadContributionProofsJSON(r io.Reader) ([]*ceremony.ContributionProof, error) {
	var enc []contributionProofJSON
	if err := json.NewDecoder(r).Decode(&enc); err != nil {
		return nil, err
	}
	out := make([]*ceremony.ContributionProof, len(enc))
	for i, p := range enc {
		commitG2, err := fromG2JSON(p.CommitG2)
		if err != nil {
			return nil, fmt.Errorf("proof %d: %w", i, err)
		}
		responseS, err := fieldFromHex(p.ResponseS)
		if err != nil {
			return nil, fmt.Errorf("proof %d: %w", i, err)
		}
		challengeE, err := fieldFromHex(p.ChallengeE)
		if err != nil {
			return nil, fmt.Errorf("proof %d: %w", i, err)
		}
		out[i] = &ceremony.ContributionProof{
			Label:      p.Label,
			CommitG2:   commitG2,
			ResponseS:  responseS,
			ChallengeE: challengeE,
		}
	}
	return out, nil
}

// deltaProofJSON is the wire shape for a phase-2 ("circuit-specific")
// delta contribution's proof of knowledge -- the same hex-encoded
// commit/response/challenge triple as contributionProofJSON, minus the
// label since phase 2 only ever touches one parameter.
type deltaProofJSON struct {
	CommitG2   g2JSON `json:"commitG2"`
	ResponseS  string `json:"responseS"`
	ChallengeE string `json:"challengeE"`
}

// WriteDeltaProofJSON encodes a circuitsetup.DeltaProof, the proof a
// phase-2 contribution attaches to its rescaled delta.
func WriteDeltaProofJSON(w io.Writer, proof *circuitsetup.DeltaProof) error {
	enc := deltaProofJSON{
		CommitG2:   toG2JSON(proof.CommitG2),
		ResponseS:  fieldToHex(proof.ResponseS),
		ChallengeE: fieldToHex(proof.ChallengeE),
	}
	data, err := json.MarshalIndent(enc, "", "  ")
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// ReadDeltaProofJSON decodes the form WriteDeltaProofJSON produces.
func ReadDeltaProofJSON(r io.Reader) (*circuitsetup.DeltaProof, error) {
	var enc deltaProofJSON
	if err := json.NewDecoder(r).Decode(&enc); err != nil {
		return nil, err
	}
	commitG2, err := fromG2JSON(enc.CommitG2)
	if err != nil {
		return nil, err
	}
	responseS, err := fieldFromHex(enc.ResponseS)
	if err != nil {
		return nil, err
	}
	challengeE, err := fieldFromHex(enc.ChallengeE)
	if err != nil {
		return nil, err
	}
	return &circuitsetup.DeltaProof{
		CommitG2:   commitG2,
		ResponseS:  responseS,
		ChallengeE: challengeE,
	}, nil
}

// WriteWitnessJSON encodes a full witness assignment (w[0]=1, then
// public inputs, then private wires) as a hex-string-per-element JSON
// array, the same scalar encoding fieldToHex uses elsewhere in this
// package.
func WriteWitnessJSON(w io.Writer, witness []field.Element) error {
	enc := make([]string, len(witness))
	for i, e := range witness {
		enc[i] = fieldToHex(e)
	}
	data, err := json.MarshalIndent(enc, "", "  ")
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// ReadWitnessJSON decodes the form WriteWitnessJSON produces.
func ReadWitnessJSON(r io.Reader) ([]field.Element, error) {
	var enc []string
	if err := json.NewDecoder(r).Decode(&enc); err != nil {
		return nil, err
	}
	out := make([]field.Element, len(enc))
	for i, s := range enc {
		e, err := fieldFromHex(s)
		if err != nil {
			return nil, fmt.Errorf("witness element %d: %w", i, err)
		}
		out[i] = e
	}
	return out, nil
}

// ContributionInfo is the plaintext, human-auditable record of a single
// ceremony contribution, written as YAML rather than a binary form.
type ContributionInfo struct {
	Index        int       `yaml:"index"`
	Date         time.Time `yaml:"date"`
	Name         string    `yaml:"name"`
	Location     string    `yaml:"location"`
	Device       string    `yaml:"device"`
	PreviousHash string    `yaml:"previousHash"`
	CurrentHash  string    `yaml:"currentHash"`
	DurationSecs float64   `yaml:"durationSeconds"`
}

// WriteContributionInfoYAML encodes info as YAML.
func WriteContributionInfoYAML(w io.Writer, info *ContributionInfo) error {
	data, err := yaml.Marshal(info)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// ReadContributionInfoYAML decodes the form WriteContributionInfoYAML produces.
func ReadContributionInfoYAML(r io.Reader) (*ContributionInfo, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	var info ContributionInfo
	if err := yaml.Unmarshal(data, &info); err != nil {
		return nil, err
	}
	return &info, nil
}
