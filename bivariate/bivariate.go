package bivariate

import (
	"fmt"
	"math/big"

	"github.com/tokamak-network/bls12-381-groth16-ceremony/bipoly"
	"github.com/tokamak-network/bls12-381-groth16-ceremony/curve"
	"github.com/tokamak-network/bls12-381-groth16-ceremony/field"
	"github.com/tokamak-network/bls12-381-groth16-ceremony/poly"
	"github.com/tokamak-network/bls12-381-groth16-ceremony/transcript"
)

// Params fixes the three grid moduli the bivariate engine divides and
// vanishes against: N (arithmetic-constraint rows), SMax (the number of
// wire copies / columns), and MI (the intermediate-wire count the
// permutation argument runs over).
type Params struct {
	N, SMax, MI int
}

// Witness carries the prover's instance/witness polynomials before
// blinding.
type Witness struct {
	U, V, W, B *bipoly.BivariatePoly
}

// Permutation carries the preprocessed row/column-shift polynomials
// produced once per circuit by the preprocess package. It is public
// data: the verifier evaluates it locally, the same way it evaluates
// APub.
type Permutation struct {
	S0, S1 *bipoly.BivariatePoly
}

// Blinding holds the eight random scalars used to zero-knowledge-blind
// U, V, W (by t_n(X), t_smax(Y)) and B (by t_mI(X), t_smax(Y)).
type Blinding struct {
	RUX, RUY field.Element
	RVX, RVY field.Element
	RWX, RWY field.Element
	RBX, RBY field.Element
}

// ProverState accumulates everything computed across the five rounds.
type ProverState struct {
	Params  Params
	Witness Witness
	APub    *bipoly.BivariatePoly
	Perm    Permutation
	Blind   Blinding
	SRS     *SRS

	q0, q1                    *bipoly.BivariatePoly
	uBlind, vBlind, wBlind    *bipoly.BivariatePoly
	qAX, qAY, bBlind          *bipoly.BivariatePoly
	r                         *bipoly.BivariatePoly
	theta0, theta1, theta2    field.Element
	kappa0                    field.Element
	qCX, qCY                  *bipoly.BivariatePoly
	chi, zeta                 field.Element
	vEval, rEval              field.Element
	rEvalShiftX, rEvalShiftXY field.Element
	kappa1                    field.Element
}

// Proof is the bivariate engine's proof object: the six round-0
// commitments, the round-1 permutation commitment, the round-2 quotient
// commitments, the evaluations needed to check the arithmetic and
// copy-permutation identities at the sampled point, and the opening
// proofs for every one of them.
type Proof struct {
	CommU, CommV, CommW     curve.G1Affine
	CommQAX, CommQAY, CommB curve.G1Affine
	CommR                   curve.G1Affine
	CommQCX, CommQCY        curve.G1Affine

	UEval, VEval, WEval       field.Element
	QAXEval, QAYEval          field.Element
	QCXEval, QCYEval          field.Element
	REval                     field.Element
	REvalShiftX, REvalShiftXY field.Element

	PiUX, PiUY     curve.G1Affine
	PiX, PiY       curve.G1Affine
	PiWX, PiWY     curve.G1Affine
	PiQAXX, PiQAXY curve.G1Affine
	PiQAYX, PiQAYY curve.G1Affine
	MX, MY         curve.G1Affine
	NX, NY         curve.G1Affine
	PiQCXX, PiQCXY curve.G1Affine
	PiQCYX, PiQCYY curve.G1Affine
}

// VerificationKey carries the public data the verifier needs: the
// public-input polynomial, the preprocessed permutation images, the
// engine's grid moduli, and the SRS's G2 half.
type VerificationKey struct {
	APub   *bipoly.BivariatePoly
	Perm   Permutation
	Params Params
	Sigma2 Sigma2
}

func vanishingX(n, xSize, ySize int) *bipoly.BivariatePoly {
	grid := make([]field.Element, xSize*ySize)
	grid[0] = field.Neg(field.One())
	if n < xSize {
		grid[n] = field.One()
	}
	return bipoly.FromCoeffs(grid, xSize, ySize)
}

func vanishingY(s, xSize, ySize int) *bipoly.BivariatePoly {
	grid := make([]field.Element, xSize*ySize)
	grid[0] = field.Neg(field.One())
	if s < ySize {
		grid[s*xSize] = field.One()
	}
	return bipoly.FromCoeffs(grid, xSize, ySize)
}

func constPoly(c field.Element, xSize, ySize int) *bipoly.BivariatePoly {
	grid := make([]field.Element, xSize*ySize)
	grid[0] = c
	return bipoly.FromCoeffs(grid, xSize, ySize)
}

// vanishAt returns the closed-form evaluation of the univariate
// vanishing polynomial X^n-1 at z, the quantity t_n(X)/t_s(Y) reduce to
// once a grid polynomial is opened at a single point.
func vanishAt(z field.Element, n int) field.Element {
	return field.Sub(field.Pow(z, new(big.Int).SetUint64(uint64(n))), field.One())
}

// Prove0 commits to blinded U, V, W and the arithmetic-constraint
// quotient Q_AX, Q_AY, plus the blinded low-degree polynomial B, and
// squeezes the three permutation-argument challenges theta0/1/2.
//
// p0 := U*V-W is assumed to vanish on the (n, s_max) grid; Q_AX, Q_AY
// are its div_by_vanishing split. Blinding folds t_n(X) and t_smax(Y)
// into U, V, W, and the cross terms that blinding introduces into
// U*V-W are folded directly into Q_AX/Q_AY rather than re-deriving them
// from a second division.
func Prove0(ps *ProverState, tr *transcript.Transcript) (*Proof, error) {
	p0 := bipoly.Sub(ps.Witness.U.Mul(ps.Witness.V), ps.Witness.W)
	q0, q1, err := p0.DivByVanishing(ps.Params.N, ps.Params.SMax)
	if err != nil {
		return nil, fmt.Errorf("bivariate: round0 quotient: %w", err)
	}
	ps.q0, ps.q1 = q0, q1

	xSize := maxInt(ps.Witness.U.XSize, 2*ps.Params.N)
	ySize := maxInt(ps.Witness.U.YSize, 2*ps.Params.SMax)
	tN := vanishingX(ps.Params.N, xSize, ySize)
	tS := vanishingY(ps.Params.SMax, xSize, ySize)
	tMI := vanishingX(ps.Params.MI, xSize, ySize)

	ps.uBlind = bipoly.Add(ps.Witness.U, bipoly.Add(bipoly.ScalarMul(ps.Blind.RUX, tN), bipoly.ScalarMul(ps.Blind.RUY, tS)))
	ps.vBlind = bipoly.Add(ps.Witness.V, bipoly.Add(bipoly.ScalarMul(ps.Blind.RVX, tN), bipoly.ScalarMul(ps.Blind.RVY, tS)))
	ps.wBlind = bipoly.Add(ps.Witness.W, bipoly.Add(bipoly.ScalarMul(ps.Blind.RWX, tN), bipoly.ScalarMul(ps.Blind.RWY, tS)))
	ps.bBlind = bipoly.Add(ps.Witness.B, bipoly.Add(bipoly.ScalarMul(ps.Blind.RBX, tMI), bipoly.ScalarMul(ps.Blind.RBY, tS)))

	rUXrVX := field.Mul(ps.Blind.RUX, ps.Blind.RVX)
	rUYrVX := field.Mul(ps.Blind.RUY, ps.Blind.RVX)
	ps.qAX = bipoly.Add(q0,
		bipoly.Add(
			bipoly.Add(bipoly.ScalarMul(ps.Blind.RUX, ps.Witness.V), bipoly.ScalarMul(ps.Blind.RVX, ps.Witness.U)),
			bipoly.Add(
				bipoly.ScalarMul(field.Neg(field.One()), constPoly(ps.Blind.RWX, xSize, ySize)),
				bipoly.Add(bipoly.ScalarMul(rUXrVX, tN), bipoly.ScalarMul(rUYrVX, tS)),
			),
		),
	)

	rUXrVY := field.Mul(ps.Blind.RUX, ps.Blind.RVY)
	rUYrVY := field.Mul(ps.Blind.RUY, ps.Blind.RVY)
	ps.qAY = bipoly.Add(q1,
		bipoly.Add(
			bipoly.Add(bipoly.ScalarMul(ps.Blind.RUY, ps.Witness.V), bipoly.ScalarMul(ps.Blind.RVY, ps.Witness.U)),
			bipoly.Add(
				bipoly.ScalarMul(field.Neg(field.One()), constPoly(ps.Blind.RWY, xSize, ySize)),
				bipoly.Add(bipoly.ScalarMul(rUXrVY, tN), bipoly.ScalarMul(rUYrVY, tS)),
			),
		),
	)

	var proof Proof
	var err2 error
	if proof.CommU, err2 = Commit(ps.SRS, ps.uBlind); err2 != nil {
		return nil, err2
	}
	if proof.CommV, err2 = Commit(ps.SRS, ps.vBlind); err2 != nil {
		return nil, err2
	}
	if proof.CommW, err2 = Commit(ps.SRS, ps.wBlind); err2 != nil {
		return nil, err2
	}
	if proof.CommQAX, err2 = Commit(ps.SRS, ps.qAX); err2 != nil {
		return nil, err2
	}
	if proof.CommQAY, err2 = Commit(ps.SRS, ps.qAY); err2 != nil {
		return nil, err2
	}
	if proof.CommB, err2 = Commit(ps.SRS, ps.bBlind); err2 != nil {
		return nil, err2
	}

	tr.AbsorbG1("comm_u", proof.CommU)
	tr.AbsorbG1("comm_v", proof.CommV)
	tr.AbsorbG1("comm_w", proof.CommW)
	tr.AbsorbG1("comm_qax", proof.CommQAX)
	tr.AbsorbG1("comm_qay", proof.CommQAY)
	tr.AbsorbG1("comm_b", proof.CommB)

	ps.theta0 = tr.SqueezeScalar("theta0")
	ps.theta1 = tr.SqueezeScalar("theta1")
	ps.theta2 = tr.SqueezeScalar("theta2")

	return &proof, nil
}

// permWeights folds theta0/theta1 into per-column multipliers: column 0
// (U) uses theta0, column 1 (V) uses theta0*theta1, column 2 (W) uses
// theta0*theta1^2, so the three wires occupy independent "columns"
// inside a single grand-product term.
func permWeights(theta0, theta1 field.Element) (col0, col1, col2 field.Element) {
	theta1Sq := field.Mul(theta1, theta1)
	return theta0, field.Mul(theta0, theta1), field.Mul(theta0, theta1Sq)
}

// buildGrandProduct runs the row-wise (along X, per Y row) permutation
// grand-product recurrence: r[0,y]=1, and
// r[x+1,y] = r[x,y] * f(x,y)/g(x,y). U and V are checked against their
// row position (the X-domain element itself, so the continuous
// evaluation of the row-position polynomial at a challenge chi is
// simply chi); W is checked against its column position (the Y-domain
// element, extending to zeta the same way) since s1 carries column
// targets. f compares each wire's own position, g compares it against
// the preprocessed permutation images s0, s1 -- both theta0/theta1-
// weighted so the three wires land on independent "columns" and theta2
// plays gamma's role.
func buildGrandProduct(u, v, w, s0, s1 *bipoly.BivariatePoly, mI, sMax int, theta0, theta1, theta2 field.Element) *bipoly.BivariatePoly {
	uE := u.ToROUEvals()
	vE := v.ToROUEvals()
	wE := w.ToROUEvals()
	s0E := s0.ToROUEvals()
	s1E := s1.ToROUEvals()

	col0, col1, col2 := permWeights(theta0, theta1)
	wx := poly.NewDomain(uint64(mI)).Generator()
	wy := poly.NewDomain(uint64(sMax)).Generator()

	r := make([]field.Element, mI*sMax)
	posCol := field.One()
	for y := 0; y < sMax; y++ {
		r[y*mI] = field.One()
		posRow := field.One()
		for x := 0; x < mI-1; x++ {
			idx := y*mI + x

			f0 := field.Add(field.Add(uE[idx], field.Mul(col0, posRow)), theta2)
			f1 := field.Add(field.Add(vE[idx], field.Mul(col1, posRow)), theta2)
			f2 := field.Add(field.Add(wE[idx], field.Mul(col2, posCol)), theta2)
			fAll := field.Mul(field.Mul(f0, f1), f2)

			g0 := field.Add(field.Add(uE[idx], field.Mul(col0, s0E[idx])), theta2)
			g1 := field.Add(field.Add(vE[idx], field.Mul(col1, s0E[idx])), theta2)
			g2 := field.Add(field.Add(wE[idx], field.Mul(col2, s1E[idx])), theta2)
			gAll := field.Mul(field.Mul(g0, g1), g2)

			r[idx+1] = field.Mul(r[idx], field.Mul(fAll, field.Inverse(gAll)))
			posRow = field.Mul(posRow, wx)
		}
		posCol = field.Mul(posCol, wy)
	}
	return bipoly.FromROUEvals(r, mI, sMax)
}

// Prove1 commits to the blinded permutation accumulator R and squeezes
// the evaluation-binding challenge kappa0.
func Prove1(ps *ProverState, proof *Proof, tr *transcript.Transcript) error {
	r := buildGrandProduct(ps.Witness.U, ps.Witness.V, ps.Witness.W, ps.Perm.S0, ps.Perm.S1, ps.Params.MI, ps.Params.SMax, ps.theta0, ps.theta1, ps.theta2)

	tMI := vanishingX(ps.Params.MI, 2*ps.Params.MI, 2*ps.Params.SMax)
	tS := vanishingY(ps.Params.SMax, 2*ps.Params.MI, 2*ps.Params.SMax)
	ps.r = bipoly.Add(r, bipoly.Add(bipoly.ScalarMul(ps.Blind.RBX, tMI), bipoly.ScalarMul(ps.Blind.RBY, tS)))

	var err error
	if proof.CommR, err = Commit(ps.SRS, ps.r); err != nil {
		return err
	}
	tr.AbsorbG1("comm_r", proof.CommR)
	ps.kappa0 = tr.SqueezeScalar("kappa0")
	return nil
}

// Prove2 builds the copy-permutation quotient from R's grand-product
// recurrence checked at every grid point, plus a Lagrange-weighted
// boundary term pinning R(1,1)=1 at the row-start position (x=0), splits
// it via div_by_vanishing(mI, sMax), commits Q_CX/Q_CY, and squeezes the
// evaluation challenges chi, zeta.
func Prove2(ps *ProverState, proof *Proof, tr *transcript.Transcript) error {
	mI, sMax := ps.Params.MI, ps.Params.SMax
	uE := ps.Witness.U.ToROUEvals()
	vE := ps.Witness.V.ToROUEvals()
	wE := ps.Witness.W.ToROUEvals()
	s0E := ps.Perm.S0.ToROUEvals()
	s1E := ps.Perm.S1.ToROUEvals()
	rE := ps.r.ToROUEvals()

	col0, col1, col2 := permWeights(ps.theta0, ps.theta1)
	wx := poly.NewDomain(uint64(mI)).Generator()
	wy := poly.NewDomain(uint64(sMax)).Generator()

	idEvals := make([]field.Element, mI*sMax)
	posCol := field.One()
	for y := 0; y < sMax; y++ {
		posRow := field.One()
		for x := 0; x < mI; x++ {
			idx := y*mI + x
			shiftIdx := y*mI + (x+1)%mI

			f0 := field.Add(field.Add(uE[idx], field.Mul(col0, posRow)), ps.theta2)
			f1 := field.Add(field.Add(vE[idx], field.Mul(col1, posRow)), ps.theta2)
			f2 := field.Add(field.Add(wE[idx], field.Mul(col2, posCol)), ps.theta2)
			fAll := field.Mul(field.Mul(f0, f1), f2)

			g0 := field.Add(field.Add(uE[idx], field.Mul(col0, s0E[idx])), ps.theta2)
			g1 := field.Add(field.Add(vE[idx], field.Mul(col1, s0E[idx])), ps.theta2)
			g2 := field.Add(field.Add(wE[idx], field.Mul(col2, s1E[idx])), ps.theta2)
			gAll := field.Mul(field.Mul(g0, g1), g2)

			idEvals[idx] = field.Sub(field.Mul(rE[shiftIdx], gAll), field.Mul(rE[idx], fAll))
			if x == 0 {
				idEvals[idx] = field.Add(idEvals[idx], field.Sub(rE[idx], field.One()))
			}
			posRow = field.Mul(posRow, wx)
		}
		posCol = field.Mul(posCol, wy)
	}

	idPoly := bipoly.FromROUEvals(idEvals, mI, sMax)
	qCX, qCY, err := idPoly.DivByVanishing(mI, sMax)
	if err != nil {
		return fmt.Errorf("bivariate: round2 quotient: %w", err)
	}
	ps.qCX, ps.qCY = qCX, qCY

	if proof.CommQCX, err = Commit(ps.SRS, qCX); err != nil {
		return err
	}
	if proof.CommQCY, err = Commit(ps.SRS, qCY); err != nil {
		return err
	}
	tr.AbsorbG1("comm_qcx", proof.CommQCX)
	tr.AbsorbG1("comm_qcy", proof.CommQCY)

	ps.chi = tr.SqueezeScalar("chi")
	ps.zeta = tr.SqueezeScalar("zeta")
	return nil
}

// Prove3 opens U(chi,zeta), V(chi,zeta), W(chi,zeta), Q_AX(chi,zeta),
// Q_AY(chi,zeta), Q_CX(chi,zeta), Q_CY(chi,zeta), R(chi,zeta),
// R(omega_x*chi,zeta), and R(omega_x*chi, omega_y*zeta), then squeezes
// kappa1. Every evaluation needed to recompute the arithmetic and
// copy-permutation identities is absorbed before kappa1 is drawn, so a
// prover cannot pick an evaluation after seeing the last challenge.
func Prove3(ps *ProverState, proof *Proof, tr *transcript.Transcript) error {
	proof.UEval = ps.uBlind.Eval(ps.chi, ps.zeta)
	proof.VEval = ps.vBlind.Eval(ps.chi, ps.zeta)
	proof.WEval = ps.wBlind.Eval(ps.chi, ps.zeta)
	proof.QAXEval = ps.qAX.Eval(ps.chi, ps.zeta)
	proof.QAYEval = ps.qAY.Eval(ps.chi, ps.zeta)
	proof.QCXEval = ps.qCX.Eval(ps.chi, ps.zeta)
	proof.QCYEval = ps.qCY.Eval(ps.chi, ps.zeta)

	ps.vEval = proof.VEval
	ps.rEval = ps.r.Eval(ps.chi, ps.zeta)

	wx := poly.NewDomain(uint64(ps.Params.MI)).Generator()
	wy := poly.NewDomain(uint64(ps.Params.SMax)).Generator()
	shiftedChi := field.Mul(wx, ps.chi)
	ps.rEvalShiftX = ps.r.Eval(shiftedChi, ps.zeta)
	ps.rEvalShiftXY = ps.r.Eval(shiftedChi, field.Mul(wy, ps.zeta))

	proof.REval = ps.rEval
	proof.REvalShiftX = ps.rEvalShiftX
	proof.REvalShiftXY = ps.rEvalShiftXY

	tr.AbsorbElement("u_eval", proof.UEval)
	tr.AbsorbElement("v_eval", proof.VEval)
	tr.AbsorbElement("w_eval", proof.WEval)
	tr.AbsorbElement("qax_eval", proof.QAXEval)
	tr.AbsorbElement("qay_eval", proof.QAYEval)
	tr.AbsorbElement("qcx_eval", proof.QCXEval)
	tr.AbsorbElement("qcy_eval", proof.QCYEval)
	tr.AbsorbElement("r_eval", proof.REval)
	tr.AbsorbElement("r_eval_shift_x", proof.REvalShiftX)
	tr.AbsorbElement("r_eval_shift_xy", proof.REvalShiftXY)

	ps.kappa1 = tr.SqueezeScalar("kappa1")
	return nil
}

// partialEvalY fixes Y=y and returns the resulting polynomial in X,
// the transpose of bipoly's own EvalPartialX.
func partialEvalY(p *bipoly.BivariatePoly, y field.Element) poly.Polynomial {
	out := make([]field.Element, p.XSize)
	col := make([]field.Element, p.YSize)
	for x := 0; x < p.XSize; x++ {
		for yy := 0; yy < p.YSize; yy++ {
			col[yy] = p.Coeffs[yy*p.XSize+x]
		}
		out[x] = poly.Polynomial{Coeffs: col}.Eval(y)
	}
	return poly.Polynomial{Coeffs: out}
}

func liftX(p poly.Polynomial) *bipoly.BivariatePoly {
	return bipoly.FromCoeffs(p.Coeffs, len(p.Coeffs), 1)
}

func liftY(p poly.Polynomial) *bipoly.BivariatePoly {
	return bipoly.FromCoeffs(p.Coeffs, 1, len(p.Coeffs))
}

// openAxisX commits the quotient (p(X,yFix)-p(xPoint,yFix))/(X-xPoint),
// the KZG opening proof that p(xPoint,yFix) is the claimed evaluation.
func openAxisX(srs *SRS, p *bipoly.BivariatePoly, yFix, xPoint field.Element) (curve.G1Affine, error) {
	inX := partialEvalY(p, yFix)
	qX := poly.DivideLinear(inX, xPoint)
	return Commit(srs, liftX(qX))
}

// openAxisY commits the quotient (p(xFix,Y)-p(xFix,yPoint))/(Y-yPoint),
// the transpose of openAxisX.
func openAxisY(srs *SRS, p *bipoly.BivariatePoly, xFix, yPoint field.Element) (curve.G1Affine, error) {
	inY := p.EvalPartialX(xFix)
	qY := poly.DivideLinear(inY, yPoint)
	return Commit(srs, liftY(qY))
}

// Prove4 produces the opening-proof commitments for every evaluation
// Prove3 recorded: Pi_UX/Pi_UY open U, Pi_X/Pi_Y open V, Pi_WX/Pi_WY
// open W, Pi_QAXX/Pi_QAXY open Q_AX, Pi_QAYX/Pi_QAYY open Q_AY, M_X/M_Y
// open R at (chi,zeta), N_X/N_Y open R at (omega_x*chi,zeta) and
// (omega_x*chi,omega_y*zeta), and Pi_QCXX/Pi_QCXY, Pi_QCYX/Pi_QCYY open
// Q_CX, Q_CY.
func Prove4(ps *ProverState, proof *Proof) error {
	wx := poly.NewDomain(uint64(ps.Params.MI)).Generator()
	wy := poly.NewDomain(uint64(ps.Params.SMax)).Generator()
	shiftedChi := field.Mul(wx, ps.chi)
	shiftedZeta := field.Mul(wy, ps.zeta)

	type axisOpen struct {
		poly      *bipoly.BivariatePoly
		yFix, xPt field.Element
		xFix, yPt field.Element
		outX      *curve.G1Affine
		outY      *curve.G1Affine
	}

	opens := []axisOpen{
		{ps.uBlind, ps.zeta, ps.chi, ps.chi, ps.zeta, &proof.PiUX, &proof.PiUY},
		{ps.vBlind, ps.zeta, ps.chi, ps.chi, ps.zeta, &proof.PiX, &proof.PiY},
		{ps.wBlind, ps.zeta, ps.chi, ps.chi, ps.zeta, &proof.PiWX, &proof.PiWY},
		{ps.qAX, ps.zeta, ps.chi, ps.chi, ps.zeta, &proof.PiQAXX, &proof.PiQAXY},
		{ps.qAY, ps.zeta, ps.chi, ps.chi, ps.zeta, &proof.PiQAYX, &proof.PiQAYY},
		{ps.r, ps.zeta, ps.chi, ps.chi, ps.zeta, &proof.MX, &proof.MY},
		{ps.qCX, ps.zeta, ps.chi, ps.chi, ps.zeta, &proof.PiQCXX, &proof.PiQCXY},
		{ps.qCY, ps.zeta, ps.chi, ps.chi, ps.zeta, &proof.PiQCYX, &proof.PiQCYY},
	}

	for _, o := range opens {
		pX, err := openAxisX(ps.SRS, o.poly, o.yFix, o.xPt)
		if err != nil {
			return err
		}
		pY, err := openAxisY(ps.SRS, o.poly, o.xFix, o.yPt)
		if err != nil {
			return err
		}
		*o.outX, *o.outY = pX, pY
	}

	// N_X opens R(omega_x*chi, zeta): divide R's Y=zeta slice by
	// (X-shiftedChi). N_Y opens R(omega_x*chi, omega_y*zeta): divide
	// R's X=shiftedChi slice by (Y-shiftedZeta).
	nx, err := openAxisX(ps.SRS, ps.r, ps.zeta, shiftedChi)
	if err != nil {
		return err
	}
	ny, err := openAxisY(ps.SRS, ps.r, shiftedChi, shiftedZeta)
	if err != nil {
		return err
	}
	proof.NX, proof.NY = nx, ny
	return nil
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// lagrangeZero returns L_0(z) = (z^n-1)/(n*(z-1)), the standard
// closed-form evaluation of the zeroth Lagrange basis polynomial of an
// order-n evaluation domain at z.
func lagrangeZero(z field.Element, n int) field.Element {
	num := field.Sub(field.Pow(z, new(big.Int).SetUint64(uint64(n))), field.One())
	den := field.Mul(field.FromUint64(uint64(n)), field.Sub(z, field.One()))
	return field.Mul(num, field.Inverse(den))
}

// openingPair builds a single KZG evaluation-proof pairing pair: folded
// into the overall multi-pairing product, e(Comm-eval*G1, G2gen) *
// e(Pi, point*G2gen-trapdoorG2) must equal 1.
func openingPair(comm curve.G1Affine, eval field.Element, pi curve.G1Affine, point field.Element, trapdoorG2 curve.G2Affine) (a1 curve.G1Affine, b1 curve.G2Affine, a2 curve.G1Affine, b2 curve.G2Affine) {
	g1 := curve.Generator1()
	g2 := curve.Generator2()

	evalG1Jac := curve.ScalarMulG1(g1, eval)
	var commMinusEvalJac curve.G1Jac
	commMinusEvalJac.FromAffine(&comm)
	evalG1Jac.Neg(&evalG1Jac)
	commMinusEvalJac.AddAssign(&evalG1Jac)
	var commMinusEval curve.G1Affine
	commMinusEval.FromJacobian(&commMinusEvalJac)

	pointG2Jac := curve.ScalarMulG2(g2, point)
	var trapJac curve.G2Jac
	trapJac.FromAffine(&trapdoorG2)
	trapJac.Neg(&trapJac)
	pointG2Jac.AddAssign(&trapJac)
	var pointMinusTrap curve.G2Affine
	pointMinusTrap.FromJacobian(&pointG2Jac)

	return commMinusEval, g2, pi, pointMinusTrap
}

// checkPublicInputs binds the caller-supplied public-input values to
// vk.APub: APub is fixed once per circuit at setup time and is expected
// to equal the public inputs at the first len(publicInputs) grid points
// of the X domain (Y held at its own zero point), the bivariate analogue
// of Groth16's IC vector. A verification key built for different public
// inputs is rejected here before any pairing work happens.
func checkPublicInputs(vk *VerificationKey, publicInputs []field.Element) error {
	if len(publicInputs) > vk.Params.N {
		return fmt.Errorf("bivariate: %d public inputs exceed the circuit's grid size %d", len(publicInputs), vk.Params.N)
	}
	wxN := poly.NewDomain(uint64(maxInt(2, vk.Params.N))).Generator()
	xPt := field.One()
	for i, want := range publicInputs {
		got := vk.APub.Eval(xPt, field.One())
		if !got.Equal(want) {
			return fmt.Errorf("bivariate: public input %d does not match verification key", i)
		}
		xPt = field.Mul(xPt, wxN)
	}
	return nil
}

// Verify replays the same five-round Fiat-Shamir transcript the prover
// used to rederive theta0/1/2, kappa0, chi, zeta, and kappa1 from the
// proof's own commitments and opened evaluations, binds the supplied
// public inputs to the verification key's a_pub polynomial, checks the
// arithmetic identity U*V-W = Q_AX*t_n + Q_AY*t_s and the
// copy-permutation identity (including the Lagrange boundary term
// pinning R(1,1)=1) at the sampled point, and finally checks every
// opening proof as a single multi-pairing product.
func Verify(vk *VerificationKey, publicInputs []field.Element, proof *Proof) error {
	if err := checkPublicInputs(vk, publicInputs); err != nil {
		return err
	}

	tr := transcript.New("bivariate-proof")
	tr.AbsorbG1("comm_u", proof.CommU)
	tr.AbsorbG1("comm_v", proof.CommV)
	tr.AbsorbG1("comm_w", proof.CommW)
	tr.AbsorbG1("comm_qax", proof.CommQAX)
	tr.AbsorbG1("comm_qay", proof.CommQAY)
	tr.AbsorbG1("comm_b", proof.CommB)
	theta0 := tr.SqueezeScalar("theta0")
	theta1 := tr.SqueezeScalar("theta1")
	theta2 := tr.SqueezeScalar("theta2")

	tr.AbsorbG1("comm_r", proof.CommR)
	tr.SqueezeScalar("kappa0")

	tr.AbsorbG1("comm_qcx", proof.CommQCX)
	tr.AbsorbG1("comm_qcy", proof.CommQCY)
	chi := tr.SqueezeScalar("chi")
	zeta := tr.SqueezeScalar("zeta")

	tr.AbsorbElement("u_eval", proof.UEval)
	tr.AbsorbElement("v_eval", proof.VEval)
	tr.AbsorbElement("w_eval", proof.WEval)
	tr.AbsorbElement("qax_eval", proof.QAXEval)
	tr.AbsorbElement("qay_eval", proof.QAYEval)
	tr.AbsorbElement("qcx_eval", proof.QCXEval)
	tr.AbsorbElement("qcy_eval", proof.QCYEval)
	tr.AbsorbElement("r_eval", proof.REval)
	tr.AbsorbElement("r_eval_shift_x", proof.REvalShiftX)
	tr.AbsorbElement("r_eval_shift_xy", proof.REvalShiftXY)
	tr.SqueezeScalar("kappa1")

	wx := poly.NewDomain(uint64(maxInt(2, vk.Params.MI))).Generator()
	wy := poly.NewDomain(uint64(maxInt(2, vk.Params.SMax))).Generator()
	shiftedChi := field.Mul(wx, chi)
	shiftedZeta := field.Mul(wy, zeta)

	// Arithmetic identity: U*V-W = Q_AX*t_n(X) + Q_AY*t_s(Y), evaluated
	// at (chi,zeta). a_pub is bound against vk.APub directly above
	// (checkPublicInputs), before the honest prover ever folds it into
	// U; UEval below is U's full (public+private) evaluation.
	lhsArith := field.Sub(field.Mul(proof.UEval, proof.VEval), proof.WEval)
	rhsArith := field.Add(
		field.Mul(proof.QAXEval, vanishAt(chi, vk.Params.N)),
		field.Mul(proof.QAYEval, vanishAt(zeta, vk.Params.SMax)),
	)
	if !lhsArith.Equal(rhsArith) {
		return fmt.Errorf("bivariate: arithmetic identity check failed")
	}

	// Copy-permutation identity: R(omega_x*chi,zeta)*g(chi,zeta) -
	// R(chi,zeta)*f(chi,zeta) + L_0(chi)*(R(chi,zeta)-1) =
	// Q_CX*t_mI(X) + Q_CY*t_s(Y), evaluated at (chi,zeta). U and V fold
	// in their row-position identity (chi itself, since the row-position
	// polynomial is simply X); W folds in its column-position identity
	// (zeta, the analogous trick on the Y axis), matching s1's column
	// targets. g folds in the preprocessed permutation images
	// s0(chi,zeta), s1(chi,zeta).
	col0, col1, col2 := permWeights(theta0, theta1)
	f0 := field.Add(field.Add(proof.UEval, field.Mul(col0, chi)), theta2)
	f1 := field.Add(field.Add(proof.VEval, field.Mul(col1, chi)), theta2)
	f2 := field.Add(field.Add(proof.WEval, field.Mul(col2, zeta)), theta2)
	fAll := field.Mul(field.Mul(f0, f1), f2)

	s0Eval := vk.Perm.S0.Eval(chi, zeta)
	s1Eval := vk.Perm.S1.Eval(chi, zeta)
	g0 := field.Add(field.Add(proof.UEval, field.Mul(col0, s0Eval)), theta2)
	g1 := field.Add(field.Add(proof.VEval, field.Mul(col1, s0Eval)), theta2)
	g2 := field.Add(field.Add(proof.WEval, field.Mul(col2, s1Eval)), theta2)
	gAll := field.Mul(field.Mul(g0, g1), g2)

	lhsPerm := field.Sub(field.Mul(proof.REvalShiftX, gAll), field.Mul(proof.REval, fAll))
	lhsPerm = field.Add(lhsPerm, field.Mul(lagrangeZero(chi, vk.Params.MI), field.Sub(proof.REval, field.One())))
	rhsPerm := field.Add(
		field.Mul(proof.QCXEval, vanishAt(chi, vk.Params.MI)),
		field.Mul(proof.QCYEval, vanishAt(zeta, vk.Params.SMax)),
	)
	if !lhsPerm.Equal(rhsPerm) {
		return fmt.Errorf("bivariate: copy-permutation identity check failed")
	}

	g1s := make([]curve.G1Affine, 0, 28)
	g2s := make([]curve.G2Affine, 0, 28)
	add := func(a1 curve.G1Affine, b1 curve.G2Affine, a2 curve.G1Affine, b2 curve.G2Affine) {
		g1s = append(g1s, a1, a2)
		g2s = append(g2s, b1, b2)
	}

	add(openingPair(proof.CommU, proof.UEval, proof.PiUX, chi, vk.Sigma2.X))
	add(openingPair(proof.CommU, proof.UEval, proof.PiUY, zeta, vk.Sigma2.Y))
	add(openingPair(proof.CommV, proof.VEval, proof.PiX, chi, vk.Sigma2.X))
	add(openingPair(proof.CommV, proof.VEval, proof.PiY, zeta, vk.Sigma2.Y))
	add(openingPair(proof.CommW, proof.WEval, proof.PiWX, chi, vk.Sigma2.X))
	add(openingPair(proof.CommW, proof.WEval, proof.PiWY, zeta, vk.Sigma2.Y))
	add(openingPair(proof.CommQAX, proof.QAXEval, proof.PiQAXX, chi, vk.Sigma2.X))
	add(openingPair(proof.CommQAX, proof.QAXEval, proof.PiQAXY, zeta, vk.Sigma2.Y))
	add(openingPair(proof.CommQAY, proof.QAYEval, proof.PiQAYX, chi, vk.Sigma2.X))
	add(openingPair(proof.CommQAY, proof.QAYEval, proof.PiQAYY, zeta, vk.Sigma2.Y))
	add(openingPair(proof.CommR, proof.REval, proof.MX, chi, vk.Sigma2.X))
	add(openingPair(proof.CommR, proof.REval, proof.MY, zeta, vk.Sigma2.Y))
	add(openingPair(proof.CommR, proof.REvalShiftX, proof.NX, shiftedChi, vk.Sigma2.X))
	add(openingPair(proof.CommR, proof.REvalShiftXY, proof.NY, shiftedZeta, vk.Sigma2.Y))
	add(openingPair(proof.CommQCX, proof.QCXEval, proof.PiQCXX, chi, vk.Sigma2.X))
	add(openingPair(proof.CommQCX, proof.QCXEval, proof.PiQCXY, zeta, vk.Sigma2.Y))
	add(openingPair(proof.CommQCY, proof.QCYEval, proof.PiQCYX, chi, vk.Sigma2.X))
	add(openingPair(proof.CommQCY, proof.QCYEval, proof.PiQCYY, zeta, vk.Sigma2.Y))

	ok, err := curve.MultiPairingCheck(g1s, g2s)
	if err != nil {
		return fmt.Errorf("bivariate: verification pairing: %w", err)
	}
	if !ok {
		return fmt.Errorf("bivariate: proof rejected")
	}
	return nil
}
