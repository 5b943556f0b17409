// Package r1cs implements the Rank-1 Constraint System data model this
// module's Groth16 engine proves against, and a binary reader/writer
// for it in a flat layout that borrows Circom's "r1cs" magic and
// version but has no Circom sections or field-prime header, so it does
// not read or write Circom .r1cs files. The R1CS front-end compiler -- turning
// a circuit DSL into these matrices -- is out of scope; this package
// only consumes and produces already-compiled constraint systems.
package r1cs

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/tokamak-network/bls12-381-groth16-ceremony/field"
)

// Term is one sparse entry of a constraint row: Coefficient at
// variable index Column.
type Term struct {
	Column      int
	Coefficient field.Element
}

// R1CS is a constraint system A*w ⊙ B*w = C*w over witness vector w,
// where w[0] is the constant 1 and w[1:NumPublicInputs+1] are the
// public inputs.
type R1CS struct {
	A, B, C         [][]Term
	NumVariables    int
	NumPublicInputs int
}

// ErrValidation wraps every structural defect Validate can find.
type ErrValidation struct {
	Reason string
}

func (e *ErrValidation) Error() string { return fmt.Sprintf("r1cs: invalid: %s", e.Reason) }

// ErrConstraintUnsatisfied is returned by CheckWitness when some row
// fails (A·w)_i * (B·w)_i = (C·w)_i.
type ErrConstraintUnsatisfied struct {
	Row int
}

func (e *ErrConstraintUnsatisfied) Error() string {
	return fmt.Sprintf("r1cs: constraint %d unsatisfied", e.Row)
}

// Validate checks structural invariants: A, B, C have equal length,
// every term's Column is within [0, NumVariables), and
// NumPublicInputs < NumVariables (the constant wire plus at least the
// public inputs must fit). Empty rows are permitted -- a row with no
// terms evaluates to the zero linear combination, which is legal.
func (r *R1CS) Validate() error {
	if len(r.A) != len(r.B) || len(r.B) != len(r.C) {
		return &ErrValidation{Reason: fmt.Sprintf("row count mismatch: |A|=%d |B|=%d |C|=%d", len(r.A), len(r.B), len(r.C))}
	}
	if r.NumPublicInputs+1 > r.NumVariables {
		return &ErrValidation{Reason: fmt.Sprintf("NumPublicInputs=%d leaves no room in NumVariables=%d for the constant wire", r.NumPublicInputs, r.NumVariables)}
	}
	check := func(rows [][]Term, name string) error {
		for i, row := range rows {
			for _, t := range row {
				if t.Column < 0 || t.Column >= r.NumVariables {
					return &ErrValidation{Reason: fmt.Sprintf("%s[%d]: column %d out of range [0,%d)", name, i, t.Column, r.NumVariables)}
				}
			}
		}
		return nil
	}
	if err := check(r.A, "A"); err != nil {
		return err
	}
	if err := check(r.B, "B"); err != nil {
		return err
	}
	if err := check(r.C, "C"); err != nil {
		return err
	}
	return nil
}

// dot evaluates a sparse row against witness w.
func dot(row []Term, w []field.Element) field.Element {
	acc := field.Zero()
	for _, t := range row {
		acc = field.Add(acc, field.Mul(t.Coefficient, w[t.Column]))
	}
	return acc
}

// CheckWitness verifies (A·w)⊙(B·w) = C·w row by row, returning
// ErrConstraintUnsatisfied at the first failing row.
func (r *R1CS) CheckWitness(w []field.Element) error {
	if len(w) != r.NumVariables {
		return &ErrValidation{Reason: fmt.Sprintf("witness length %d != NumVariables %d", len(w), r.NumVariables)}
	}
	for i := range r.A {
		a := dot(r.A[i], w)
		b := dot(r.B[i], w)
		c := dot(r.C[i], w)
		if !field.Mul(a, b).Equal(c) {
			return &ErrConstraintUnsatisfied{Row: i}
		}
	}
	return nil
}

// circomMagic is the 4-byte magic header of the binary format,
// matching Circom's own r1cs file convention.
var circomMagic = [4]byte{'r', '1', 'c', 's'}

const circomVersion = uint32(1)

// WriteCircom serializes r as magic, version, a flat header
// (NumVariables, NumPublicInputs, constraint count), then each
// constraint's A, B and C rows as a term count followed by (column,
// 32-byte little-endian coefficient) pairs, all integers little-endian.
// It writes no section count, section tags or sizes and no field-size
// or prime header, so the output is not a sectioned Circom .r1cs file.
func WriteCircom(w io.Writer, r *R1CS) error {
	if err := binary.Write(w, binary.LittleEndian, circomMagic); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, circomVersion); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(r.NumVariables)); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(r.NumPublicInputs)); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(len(r.A))); err != nil {
		return err
	}
	for i := range r.A {
		for _, rows := range [][]Term{r.A[i], r.B[i], r.C[i]} {
			if err := binary.Write(w, binary.LittleEndian, uint32(len(rows))); err != nil {
				return err
			}
			for _, t := range rows {
				if err := binary.Write(w, binary.LittleEndian, uint32(t.Column)); err != nil {
					return err
				}
				b := t.Coefficient.Bytes()
				if _, err := w.Write(b[:]); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// ReadCircom deserializes the format WriteCircom produces.
func ReadCircom(r io.Reader) (*R1CS, error) {
	var magic [4]byte
	if err := binary.Read(r, binary.LittleEndian, &magic); err != nil {
		return nil, fmt.Errorf("r1cs: reading magic: %w", err)
	}
	if magic != circomMagic {
		return nil, fmt.Errorf("r1cs: bad magic %q, expected %q", magic, circomMagic)
	}
	var version uint32
	if err := binary.Read(r, binary.LittleEndian, &version); err != nil {
		return nil, fmt.Errorf("r1cs: reading version: %w", err)
	}
	if version != circomVersion {
		return nil, fmt.Errorf("r1cs: unsupported version %d", version)
	}

	var numVars, numPub, numConstraints uint32
	if err := binary.Read(r, binary.LittleEndian, &numVars); err != nil {
		return nil, err
	}
	if err := binary.Read(r, binary.LittleEndian, &numPub); err != nil {
		return nil, err
	}
	if err := binary.Read(r, binary.LittleEndian, &numConstraints); err != nil {
		return nil, err
	}

	cs := &R1CS{
		A:               make([][]Term, numConstraints),
		B:               make([][]Term, numConstraints),
		C:               make([][]Term, numConstraints),
		NumVariables:    int(numVars),
		NumPublicInputs: int(numPub),
	}

	for i := uint32(0); i < numConstraints; i++ {
		dst := [3]*[]Term{&cs.A[i], &cs.B[i], &cs.C[i]}
		for _, rowPtr := range dst {
			var n uint32
			if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
				return nil, err
			}
			row := make([]Term, n)
			for j := uint32(0); j < n; j++ {
				var col uint32
				if err := binary.Read(r, binary.LittleEndian, &col); err != nil {
					return nil, err
				}
				var buf [32]byte
				if _, err := io.ReadFull(r, buf[:]); err != nil {
					return nil, err
				}
				var coeff field.Element
				if err := coeff.SetBytes(buf[:]); err != nil {
					return nil, err
				}
				row[j] = Term{Column: int(col), Coefficient: coeff}
			}
			*rowPtr = row
		}
	}

	if err := cs.Validate(); err != nil {
		return nil, err
	}
	return cs, nil
}
