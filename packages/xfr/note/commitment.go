package note

import (
	"io"

	"github.com/cockroachdb/errors"
	"go.dedis.ch/kyber/v3"
	"go.dedis.ch/kyber/v3/group/edwards25519"
	"go.dedis.ch/kyber/v3/util/random"

	"github.com/iotaledger/xfrwallet/packages/xfr"
)

// suite is the prime order group that all commitments of the reference engine live in.
var suite = edwards25519.NewBlakeSHA256Ed25519()

const assetGeneratorDomain = "xfr/asset-generator"

// assetGenerator returns the nothing-up-my-sleeve generator that amounts of the given asset type are committed to.
func assetGenerator(assetType xfr.AssetType) kyber.Point {
	return suite.Point().Pick(suite.XOF(append([]byte(assetGeneratorDomain), assetType.Bytes()...)))
}

// randomScalar draws a uniformly distributed scalar from the given CSPRNG.
func randomScalar(rng io.Reader) kyber.Scalar {
	return suite.Scalar().Pick(random.New(rng))
}

// scalarFromUint64 maps an amount into the scalar field. SetInt64 only covers the positive int64 range so the value is
// assembled from two 32 bit halves.
func scalarFromUint64(value uint64) kyber.Scalar {
	result := suite.Scalar().SetInt64(int64(value >> 32))
	result.Mul(result, suite.Scalar().SetInt64(1<<32))

	return result.Add(result, suite.Scalar().SetInt64(int64(value&0xffffffff)))
}

// blindedAssetGenerator returns H_asset + a·G, the generator that hides the asset type of a record.
func blindedAssetGenerator(assetType xfr.AssetType, assetBlinding kyber.Scalar) kyber.Point {
	generator := assetGenerator(assetType)

	return generator.Add(generator, suite.Point().Mul(assetBlinding, nil))
}

// amountCommitment returns v·generator + r·G.
func amountCommitment(value uint64, generator kyber.Point, amountBlinding kyber.Scalar) kyber.Point {
	commitment := suite.Point().Mul(scalarFromUint64(value), generator)

	return commitment.Add(commitment, suite.Point().Mul(amountBlinding, nil))
}

func pointToCommitment(point kyber.Point) (commitment xfr.Commitment, err error) {
	pointBytes, err := point.MarshalBinary()
	if err != nil {
		return commitment, errors.Wrap(err, "failed to marshal point")
	}
	copy(commitment[:], pointBytes)

	return commitment, nil
}

func commitmentToPoint(commitment xfr.Commitment) (kyber.Point, error) {
	point := suite.Point()
	if err := point.UnmarshalBinary(commitment.Bytes()); err != nil {
		return nil, errors.Wrapf(xfr.ErrInvalidRecord, "commitment is not a valid curve point: %s", err.Error())
	}

	return point, nil
}

func scalarToBytes(scalar kyber.Scalar) (scalarBytes [32]byte) {
	encoded, err := scalar.MarshalBinary()
	if err != nil {
		// edwards25519 scalars always marshal to 32 bytes
		panic(err)
	}
	copy(scalarBytes[:], encoded)

	return scalarBytes
}

func scalarFromBytes(scalarBytes [32]byte) (kyber.Scalar, error) {
	scalar := suite.Scalar()
	if err := scalar.UnmarshalBinary(scalarBytes[:]); err != nil {
		return nil, errors.Wrapf(xfr.ErrInvalidRecord, "invalid blinding factor: %s", err.Error())
	}

	return scalar, nil
}

// recordGenerator returns the generator the amount of the record is committed to, as seen by a verifier.
func recordGenerator(record xfr.BlindRecord) (kyber.Point, error) {
	if record.AssetType.Confidential {
		return commitmentToPoint(record.AssetType.Commitment)
	}

	return assetGenerator(record.AssetType.AssetType), nil
}

// balancePoint returns the point that represents the value of the record in the excess equation.
func balancePoint(record xfr.BlindRecord) (kyber.Point, error) {
	if record.Amount.Confidential {
		return commitmentToPoint(record.Amount.Commitment)
	}

	generator, err := recordGenerator(record)
	if err != nil {
		return nil, err
	}

	return suite.Point().Mul(scalarFromUint64(record.Amount.Value), generator), nil
}

// blindingExcess returns v·a + r for the record, the G component of its balance point.
func blindingExcess(record *xfr.OpenRecord) (kyber.Scalar, error) {
	amountBlinding, err := scalarFromBytes(record.AmountBlinding)
	if err != nil {
		return nil, err
	}
	assetBlinding, err := scalarFromBytes(record.AssetBlinding)
	if err != nil {
		return nil, err
	}

	excess := suite.Scalar().Mul(scalarFromUint64(record.Amount), assetBlinding)

	return excess.Add(excess, amountBlinding), nil
}
