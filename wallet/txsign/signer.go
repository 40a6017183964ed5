// Package txsign orchestrates per-input ring signing for the transaction
// builder: tweaking the wallet's base spend secret by the subaddress offset
// and the per-output scalar before handing the result to the kernel's
// CLSAG/TCLSAG primitives.
package txsign

import (
	goerrors "github.com/go-errors/errors"

	"github.com/salvium/walletcore/kernel"
)

// ErrViewOnly is returned when a sign request requires a spend secret the
// wallet does not have.
var ErrViewOnly = goerrors.Errorf("txsign: wallet is view-only, cannot sign")

// CNInputDescriptor carries everything needed to produce a single legacy CN
// CLSAG signature for one transaction input.
type CNInputDescriptor struct {
	Ring             kernel.CLSAGRing
	RealIndex        int
	SpendSecret      *kernel.Scalar // nil on a view-only wallet
	SubaddressScalar *kernel.Scalar // nil when the input belongs to the primary address
	SharedSecretD    *kernel.Point  // D = 8*(viewSecret*R) for this input's origin tx
	OutputIndex      int            // this output's index within its origin tx
	MaskReal         *kernel.Scalar
	MaskPseudo       *kernel.Scalar
	PseudoOut        *kernel.Point
	Message          [32]byte
	Nonce            *kernel.Scalar
	DecoyResponses   []*kernel.Scalar
}

// tweakCNSpendSecret composes x = spendSecret (+ subaddressScalar) +
// scalar_i, mirroring the scanner's key-image formula so the same secret
// that proved ownership is the one that signs.
func tweakCNSpendSecret(d *CNInputDescriptor) (*kernel.Scalar, error) {
	if d.SpendSecret == nil {
		return nil, ErrViewOnly
	}
	base := d.SpendSecret
	if d.SubaddressScalar != nil {
		base = kernel.ScAdd(base, d.SubaddressScalar)
	}
	scalarI := cnPerOutputScalar(d.SharedSecretD, d.OutputIndex)
	return kernel.ScAdd(base, scalarI), nil
}

// SignCLSAG produces the CLSAG ring signature for one CN input.
func SignCLSAG(d *CNInputDescriptor) (*kernel.CLSAGSignature, error) {
	x, err := tweakCNSpendSecret(d)
	if err != nil {
		return nil, err
	}
	z := kernel.ScSub(d.MaskReal, d.MaskPseudo)
	return kernel.CLSAGSign(d.Message, d.Ring, d.RealIndex, x, z, d.PseudoOut, d.Nonce, d.DecoyResponses)
}

// CarrotInputDescriptor carries everything needed to produce a single
// CARROT TCLSAG signature for one transaction input.
type CarrotInputDescriptor struct {
	Ring             kernel.CLSAGRing
	RealIndex        int
	KGenerateImage   *kernel.Scalar // nil on a view-only wallet
	KProveSpend      *kernel.Scalar // nil on a view-only wallet
	SubaddressScalar *kernel.Scalar // nil when the input belongs to the primary address
	SharedSecret     [32]byte
	EphemeralPubkey  [32]byte
	OutputIndex      int
	MaskReal         *kernel.Scalar
	MaskPseudo       *kernel.Scalar
	PseudoOut        *kernel.Point
	Message          [32]byte
	NonceX           *kernel.Scalar
	NonceY           *kernel.Scalar
	DecoyX           []*kernel.Scalar
	DecoyY           []*kernel.Scalar
}

// tweakCarrotSpendSecrets composes x = k_gi·subScal + ext_G and
// y = k_ps·subScal + ext_T.
func tweakCarrotSpendSecrets(d *CarrotInputDescriptor) (x, y *kernel.Scalar, err error) {
	if d.KGenerateImage == nil || d.KProveSpend == nil {
		return nil, nil, ErrViewOnly
	}

	extG, err := carrotOnetimeExtensionG(d.SharedSecret, d.OutputIndex, d.EphemeralPubkey)
	if err != nil {
		return nil, nil, err
	}
	extT, err := carrotOnetimeExtensionT(d.SharedSecret, d.OutputIndex, d.EphemeralPubkey)
	if err != nil {
		return nil, nil, err
	}

	xBase := d.KGenerateImage
	yBase := d.KProveSpend
	if d.SubaddressScalar != nil {
		xBase = kernel.ScMul(d.KGenerateImage, d.SubaddressScalar)
		yBase = kernel.ScMul(d.KProveSpend, d.SubaddressScalar)
	}
	return kernel.ScAdd(xBase, extG), kernel.ScAdd(yBase, extT), nil
}

// SignTCLSAG produces the TCLSAG ring signature for one CARROT input.
func SignTCLSAG(d *CarrotInputDescriptor) (*kernel.TCLSAGSignature, error) {
	x, y, err := tweakCarrotSpendSecrets(d)
	if err != nil {
		return nil, err
	}
	z := kernel.ScSub(d.MaskReal, d.MaskPseudo)
	return kernel.TCLSAGSign(d.Message, d.Ring, d.RealIndex, x, y, z, d.PseudoOut, d.NonceX, d.NonceY, d.DecoyX, d.DecoyY)
}
