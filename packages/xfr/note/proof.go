package note

import (
	"io"

	"github.com/cockroachdb/errors"
	"github.com/iotaledger/hive.go/byteutils"
	"github.com/iotaledger/hive.go/marshalutil"
	"go.dedis.ch/kyber/v3"

	"github.com/iotaledger/xfrwallet/packages/xfr"
)

// ExcessProofLength represents the length of a marshaled ExcessProof (amount of bytes).
const ExcessProofLength = 2 * xfr.CommitmentLength

// ExcessProof is a Schnorr proof of knowledge of x with E = x·G, where E is the difference between the balance points of
// the inputs and the outputs of a note. It can only be produced if every asset type is balanced.
type ExcessProof struct {
	Nonce    xfr.Commitment
	Response [32]byte
}

func proveExcess(rng io.Reader, excess kyber.Scalar, excessPoint kyber.Point, message []byte) (proof ExcessProof, err error) {
	nonce := randomScalar(rng)
	if proof.Nonce, err = pointToCommitment(suite.Point().Mul(nonce, nil)); err != nil {
		return proof, err
	}

	challenge, err := excessChallenge(proof.Nonce, excessPoint, message)
	if err != nil {
		return proof, err
	}
	response := suite.Scalar().Mul(challenge, excess)
	proof.Response = scalarToBytes(response.Add(response, nonce))

	return proof, nil
}

func (e ExcessProof) verify(excessPoint kyber.Point, message []byte) error {
	noncePoint, err := commitmentToPoint(e.Nonce)
	if err != nil {
		return errors.Wrap(ErrInvalidProof, err.Error())
	}
	response, err := scalarFromBytes(e.Response)
	if err != nil {
		return errors.Wrap(ErrInvalidProof, err.Error())
	}
	challenge, err := excessChallenge(e.Nonce, excessPoint, message)
	if err != nil {
		return err
	}

	expected := suite.Point().Mul(challenge, excessPoint)
	if !suite.Point().Mul(response, nil).Equal(expected.Add(expected, noncePoint)) {
		return ErrInvalidProof
	}

	return nil
}

// Bytes returns a marshaled version of the ExcessProof.
func (e ExcessProof) Bytes() []byte {
	return marshalutil.New(ExcessProofLength).
		WriteBytes(e.Nonce.Bytes()).
		WriteBytes(e.Response[:]).
		Bytes()
}

func excessChallenge(nonce xfr.Commitment, excessPoint kyber.Point, message []byte) (kyber.Scalar, error) {
	excessBytes, err := excessPoint.MarshalBinary()
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidProof, "failed to marshal excess: %s", err.Error())
	}

	return suite.Scalar().Pick(suite.XOF(byteutils.ConcatBytes(nonce.Bytes(), excessBytes, message))), nil
}
