package txbuilder

import (
	"testing"

	"github.com/iotaledger/hive.go/crypto/ed25519"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iotaledger/xfrwallet/packages/xfr"
	"github.com/iotaledger/xfrwallet/packages/xfr/note"
	"github.com/iotaledger/xfrwallet/packages/xfr/prng"
)

func TestIndexedSignature_BodyBinding(t *testing.T) {
	engine := note.NewReference()
	alice := ed25519.GenerateKeyPair()
	bob := ed25519.GenerateKeyPair()

	builder := newBuilder(t, engine, 20)
	require.NoError(t, builder.AddInput(xfr.NewAbsoluteTxoRef(7), openRecord(t, engine, 40, assetA, xfr.ConfidentialAmountNonConfidentialAssetType, alice.PublicKey), nil, nil, 25))
	require.NoError(t, builder.AddOutput(xfr.NewTemplate(25, assetA, xfr.NonConfidentialAmountNonConfidentialAssetType, bob.PublicKey), nil, nil, nil))
	require.NoError(t, builder.Create(StandardTransferType))

	operation, err := builder.Transaction()
	require.NoError(t, err)
	body := operation.Body()

	signature := ComputeSignature(body, alice, WholeBody)
	assert.True(t, signature.Verify(body))
	assert.True(t, signature.Verify(body.Clone()))

	tampered := body.Clone()
	tampered.outputs[0].Record.Amount.Value++
	assert.False(t, signature.Verify(tampered))
	assert.True(t, signature.Verify(body), "mutating a clone must not change the original")

	bodyBytes := body.Bytes()
	body.Note().Outputs[0].Amount.Value++
	body.Note().OwnerMemos[1].Ciphertext[0]++
	assert.Equal(t, bodyBytes, body.Bytes(), "the returned note must be a copy")

	renoted := body.Clone()
	renoted.note.Outputs[0].Amount.Value++
	renoted.note.OwnerMemos[1].Ciphertext[0]++
	assert.False(t, signature.Verify(renoted))
	assert.Equal(t, bodyBytes, body.Bytes(), "mutating the note of a clone must not change the original")
	assert.True(t, signature.Verify(body))

	retyped := body.Clone()
	retyped.transferType = DebtSwapTransferType
	assert.False(t, signature.Verify(retyped))

	forged := *signature
	forged.Address = bob.PublicKey
	assert.False(t, forged.Verify(body))

	assert.ErrorIs(t, operation.AttachSignature(&forged), ErrSignatureVerificationFailed)
	assert.ErrorIs(t, operation.AttachSignature(nil), ErrSignatureVerificationFailed)
	assert.Empty(t, operation.Signatures())

	require.NoError(t, operation.AttachSignature(signature))
	assert.Len(t, operation.Signatures(), 1)
}

func TestIndexedSignature_CoSignature(t *testing.T) {
	engine := note.NewReference()
	owners := []ed25519.KeyPair{
		ed25519.GenerateKeyPair(),
		ed25519.GenerateKeyPair(),
		ed25519.GenerateKeyPair(),
		ed25519.GenerateKeyPair(),
	}

	builder := newBuilder(t, engine, 21)
	for i, owner := range owners {
		require.NoError(t, builder.AddInput(xfr.NewAbsoluteTxoRef(xfr.TxoSID(i)), openRecord(t, engine, 10, assetA, xfr.NonConfidentialAmountNonConfidentialAssetType, owner.PublicKey), nil, nil, 10))
	}
	require.NoError(t, builder.AddOutput(xfr.NewTemplate(40, assetA, xfr.NonConfidentialAmountNonConfidentialAssetType, owners[0].PublicKey), nil, nil, nil))
	require.NoError(t, builder.Create(StandardTransferType))

	operation, err := builder.Transaction()
	require.NoError(t, err)
	body := operation.Body()

	coSignature := ComputeSignature(body, owners[2], 2)
	assert.True(t, coSignature.Verify(body))
	assert.True(t, coSignature.Covers(2, owners[2].PublicKey))
	assert.False(t, coSignature.Covers(3, owners[2].PublicKey))
	assert.False(t, coSignature.Covers(2, owners[1].PublicKey))

	moved := *coSignature
	moved.InputIndex = 3
	assert.False(t, moved.Verify(body))

	widened := *coSignature
	widened.InputIndex = WholeBody
	assert.False(t, widened.Verify(body))

	invalid := *coSignature
	invalid.InputIndex = -2
	assert.False(t, invalid.Verify(body))

	assert.ErrorIs(t, builder.AttachSignature(&moved), ErrSignatureVerificationFailed)
	assert.ErrorIs(t, builder.SignInput(owners[3], 4), ErrInvalidInputIndex)
	assert.ErrorIs(t, builder.SignInput(owners[3], -1), ErrInvalidInputIndex)
	assert.Equal(t, FinalizedPhase, builder.Phase())

	require.NoError(t, builder.AttachSignature(coSignature))
	assert.Equal(t, SignedPhase, builder.Phase())
	assert.False(t, operation.Covered(builder.InputOwners()))

	require.NoError(t, builder.Sign(owners[0]))
	require.NoError(t, builder.SignInput(owners[1], 1))
	assert.False(t, operation.Covered(builder.InputOwners()))

	require.NoError(t, builder.SignInput(owners[3], 3))
	assert.True(t, operation.Covered(builder.InputOwners()))
	assert.False(t, operation.Covered(builder.InputOwners()[:3]))
}

func TestNewTransferBody(t *testing.T) {
	engine := note.NewReference()
	alice := ed25519.GenerateKeyPair()
	rng := prng.New([prng.SeedSize]byte{30})

	input, err := engine.RecordFromOpenRecord(rng, openRecord(t, engine, 10, assetB, xfr.ConfidentialAmountConfidentialAssetType, alice.PublicKey), nil)
	require.NoError(t, err)
	output, err := engine.RecordFromTemplate(rng, xfr.NewTemplate(10, assetB, xfr.ConfidentialAmountConfidentialAssetType, alice.PublicKey))
	require.NoError(t, err)
	refs := []xfr.TxoRef{xfr.NewRelativeTxoRef(0)}
	inputs := []*note.AssetRecord{input}
	outputs := []*note.AssetRecord{output}

	t.Run("nil policies", func(t *testing.T) {
		body, bodyErr := NewTransferBody(rng, engine, refs, inputs, outputs, nil, StandardTransferType)
		require.NoError(t, bodyErr)
		assert.Len(t, body.Policies().InputsTracing, 1)
		assert.Len(t, body.Policies().OutputsTracing, 1)
		assert.Equal(t, body.ID(), body.Clone().ID())
		assert.NoError(t, engine.VerifyNote(body.Note()))
	})

	t.Run("no inputs", func(t *testing.T) {
		_, bodyErr := NewTransferBody(rng, engine, nil, nil, outputs, nil, StandardTransferType)
		assert.ErrorIs(t, bodyErr, ErrNoInputs)
	})

	t.Run("policy arity", func(t *testing.T) {
		_, bodyErr := NewTransferBody(rng, engine, refs, inputs, outputs, EmptyNotePolicies(1, 2), StandardTransferType)
		assert.ErrorIs(t, bodyErr, ErrPolicyArityMismatch)

		_, bodyErr = NewTransferBody(rng, engine, refs, inputs, outputs, EmptyNotePolicies(2, 1), StandardTransferType)
		assert.ErrorIs(t, bodyErr, ErrPolicyArityMismatch)

		_, bodyErr = NewTransferBody(rng, engine, append(refs, xfr.NewAbsoluteTxoRef(1)), inputs, outputs, nil, StandardTransferType)
		assert.ErrorIs(t, bodyErr, ErrPolicyArityMismatch)
	})

	t.Run("undefined reference", func(t *testing.T) {
		_, bodyErr := NewTransferBody(rng, engine, []xfr.TxoRef{{}}, inputs, outputs, nil, StandardTransferType)
		assert.ErrorIs(t, bodyErr, ErrInvalidTxoRef)
	})

	t.Run("note engine", func(t *testing.T) {
		_, bodyErr := NewTransferBody(rng, engine, refs, inputs, nil, nil, StandardTransferType)
		assert.ErrorIs(t, bodyErr, ErrNoteEngine)
	})
}
