package keychain

import (
	"encoding/binary"

	"github.com/salvium/walletcore/kernel"
)

const (
	carrotLabelViewBalance     = "Carrot s_view_balance"
	carrotLabelViewIncoming    = "Carrot k_view_incoming"
	carrotLabelGenerateImage   = "Carrot k_generate_image"
	carrotLabelProveSpend      = "Carrot k_prove_spend"
	carrotLabelGenerateAddress = "Carrot s_generate_address"
	carrotLabelIndexGenerator  = "Carrot address index generator"
	carrotLabelSubaddressScal  = "Carrot subaddress scalar"
)

func carrotChild(sMaster [32]byte, label string) ([32]byte, error) {
	out, err := kernel.Blake2b(32, sMaster[:], []byte(label))
	if err != nil {
		return [32]byte{}, err
	}
	var b [32]byte
	copy(b[:], out)
	return b, nil
}

func carrotChildScalar(sMaster [32]byte, label string) (*kernel.Scalar, error) {
	b, err := carrotChild(sMaster, label)
	if err != nil {
		return nil, err
	}
	return kernel.ScReduce32(b[:])
}

// DeriveCarrotKeys derives the full nine-component CARROT key bundle from
// s_master via a Blake2b-keyed tree, one child per domain separator.
func DeriveCarrotKeys(sMaster [32]byte) (*CARROTKeys, error) {
	sViewBalance, err := carrotChild(sMaster, carrotLabelViewBalance)
	if err != nil {
		return nil, err
	}
	kViewIncoming, err := carrotChildScalar(sMaster, carrotLabelViewIncoming)
	if err != nil {
		return nil, err
	}
	kGenerateImage, err := carrotChildScalar(sMaster, carrotLabelGenerateImage)
	if err != nil {
		return nil, err
	}
	kProveSpend, err := carrotChildScalar(sMaster, carrotLabelProveSpend)
	if err != nil {
		return nil, err
	}
	sGenerateAddress, err := carrotChild(sMaster, carrotLabelGenerateAddress)
	if err != nil {
		return nil, err
	}

	kSpend := kernel.PointAdd(
		kernel.ScalarMultBase(kGenerateImage),
		kernel.ScalarMultPoint(kProveSpend, kernel.GeneratorT()),
	)
	primaryViewPub := kernel.ScalarMultBase(kViewIncoming)
	accountViewPub := kernel.ScalarMultPoint(kViewIncoming, kSpend)

	sMasterCopy := sMaster
	return &CARROTKeys{
		SMaster:          &sMasterCopy,
		SViewBalance:     &sViewBalance,
		KViewIncoming:    kViewIncoming,
		KGenerateImage:   kGenerateImage,
		KProveSpend:      kProveSpend,
		SGenerateAddress: &sGenerateAddress,
		KSpend:           kSpend,
		PrimaryViewPub:   primaryViewPub,
		AccountViewPub:   accountViewPub,
	}, nil
}

// NewViewOnlyCarrotKeys builds the seven-component view-only subset of a
// CARROT key bundle, omitting k_prove_spend and s_master.
func NewViewOnlyCarrotKeys(sViewBalance [32]byte, kViewIncoming, kGenerateImage *kernel.Scalar,
	sGenerateAddress [32]byte, kSpend *kernel.Point) *CARROTKeys {

	return &CARROTKeys{
		SViewBalance:     &sViewBalance,
		KViewIncoming:    kViewIncoming,
		KGenerateImage:   kGenerateImage,
		SGenerateAddress: &sGenerateAddress,
		KSpend:           kSpend,
		PrimaryViewPub:   kernel.ScalarMultBase(kViewIncoming),
		AccountViewPub:   kernel.ScalarMultPoint(kViewIncoming, kSpend),
	}
}

func carrotTranscript(label string, major, minor uint32, extra ...[]byte) [][]byte {
	var majorLE, minorLE [4]byte
	binary.LittleEndian.PutUint32(majorLE[:], major)
	binary.LittleEndian.PutUint32(minorLE[:], minor)

	parts := make([][]byte, 0, len(extra)+3)
	parts = append(parts, []byte(label))
	parts = append(parts, extra...)
	parts = append(parts, majorLE[:], minorLE[:])
	return parts
}

// CarrotIndexGenerator derives s^j_gen = Blake2b[s_ga](transcript(...), 32),
// the first step of CARROT subaddress scalar derivation.
func CarrotIndexGenerator(sGenerateAddress [32]byte, major, minor uint32) ([32]byte, error) {
	transcript := carrotTranscript(carrotLabelIndexGenerator, major, minor)
	out, err := kernel.Blake2b(32, sGenerateAddress[:], transcript...)
	if err != nil {
		return [32]byte{}, err
	}
	var b [32]byte
	copy(b[:], out)
	return b, nil
}

// CarrotSubaddressScalar derives k^j_subscal =
// reduce(Blake2b[s^j_gen](transcript("Carrot subaddress scalar", K_s, major,
// minor), 64)), the second step of CARROT subaddress scalar derivation.
func CarrotSubaddressScalar(sGenerateAddress [32]byte, kSpend *kernel.Point, major, minor uint32) (*kernel.Scalar, error) {
	sGen, err := CarrotIndexGenerator(sGenerateAddress, major, minor)
	if err != nil {
		return nil, err
	}
	transcript := carrotTranscript(carrotLabelSubaddressScal, major, minor, kSpend.Bytes())
	wide, err := kernel.Blake2b(64, sGen[:], transcript...)
	if err != nil {
		return nil, err
	}
	return kernel.ScReduce64(wide)
}

// CarrotSubaddressKeys computes K^j_s = k·K_s and K^j_v = k·K_v for a
// derived subaddress scalar k.
func CarrotSubaddressKeys(k *kernel.Scalar, kSpend, kView *kernel.Point) (spendPub, viewPub *kernel.Point) {
	return kernel.ScalarMultPoint(k, kSpend), kernel.ScalarMultPoint(k, kView)
}

// BuildSubaddressMapCarrot populates a SubaddressMap for the CARROT protocol
// over the lookahead window. As with the legacy protocol, (0,0) always maps
// directly to the account's K_spend rather than through the subaddress
// scalar formula: the primary address is the zeroth subaddress, not a
// special case.
func BuildSubaddressMapCarrot(keys *CARROTKeys, lookaheadMajor, lookaheadMinor uint32) (*SubaddressMap, error) {
	m := NewSubaddressMap()
	m.Insert(keys.KSpend, SubaddressIndex{Major: 0, Minor: 0})

	for major := uint32(0); major <= lookaheadMajor; major++ {
		for minor := uint32(0); minor <= lookaheadMinor; minor++ {
			if major == 0 && minor == 0 {
				continue
			}
			k, err := CarrotSubaddressScalar(*keys.SGenerateAddress, keys.KSpend, major, minor)
			if err != nil {
				return nil, err
			}
			spendPub, _ := CarrotSubaddressKeys(k, keys.KSpend, keys.AccountViewPub)
			m.Insert(spendPub, SubaddressIndex{Major: major, Minor: minor})
		}
	}
	kcLog.Debugf("built CARROT subaddress map: %d entries", m.Len())
	return m, nil
}
