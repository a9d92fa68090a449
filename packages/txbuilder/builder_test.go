package txbuilder

import (
	"math/rand"
	"testing"

	"github.com/iotaledger/hive.go/crypto/ed25519"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iotaledger/xfrwallet/packages/xfr"
	"github.com/iotaledger/xfrwallet/packages/xfr/note"
	"github.com/iotaledger/xfrwallet/packages/xfr/prng"
)

var (
	assetA = xfr.AssetType{0xA}
	assetB = xfr.AssetType{0xB}
	assetC = xfr.AssetType{0xC}
)

func TestBuilder_BalanceCreatesChange(t *testing.T) {
	engine := note.NewReference()
	alice := ed25519.GenerateKeyPair()
	bob := ed25519.GenerateKeyPair()

	builder := newBuilder(t, engine, 1)
	require.NoError(t, builder.AddInput(xfr.NewAbsoluteTxoRef(1), openRecord(t, engine, 100, assetA, xfr.ConfidentialAmountNonConfidentialAssetType, alice.PublicKey), nil, nil, 100))
	require.NoError(t, builder.AddInput(xfr.NewAbsoluteTxoRef(2), openRecord(t, engine, 50, assetA, xfr.ConfidentialAmountConfidentialAssetType, alice.PublicKey), nil, nil, 20))
	require.NoError(t, builder.AddOutput(xfr.NewTemplate(120, assetA, xfr.ConfidentialAmountNonConfidentialAssetType, bob.PublicKey), nil, nil, nil))

	require.NoError(t, builder.Balance())
	assert.Equal(t, BalancedPhase, builder.Phase())

	outputs := builder.Outputs()
	require.Len(t, outputs, 2)
	assert.False(t, outputs[0].Change)
	assert.True(t, outputs[1].Change)
	assert.EqualValues(t, 30, outputs[1].Record.Amount())
	assert.Equal(t, assetA, outputs[1].Record.AssetType())
	assert.Equal(t, alice.PublicKey, outputs[1].Record.PublicKey())
	assert.Equal(t, xfr.ConfidentialAmountConfidentialAssetType, outputs[1].Record.RecordType())
	for _, input := range builder.Inputs() {
		assert.Equal(t, input.Record.Amount(), input.SpendAmount)
	}

	// balancing again does not add more change
	require.NoError(t, builder.Balance())
	assert.Len(t, builder.Outputs(), 2)

	require.NoError(t, builder.Create(StandardTransferType))
	require.NoError(t, builder.Sign(alice))
	assert.Equal(t, SignedPhase, builder.Phase())

	operation, err := builder.Transaction()
	require.NoError(t, err)
	assert.Len(t, operation.Body().Outputs(), 2)
	assert.Equal(t, []xfr.TxoRef{xfr.NewAbsoluteTxoRef(1), xfr.NewAbsoluteTxoRef(2)}, operation.Body().Inputs())
	assert.True(t, operation.Covered(builder.InputOwners()))
	assert.NoError(t, engine.VerifyNote(operation.Body().Note()))

	change, err := engine.OpenRecord(operation.Body().Outputs()[1].Record, operation.Body().Note().OwnerMemos[1], alice)
	require.NoError(t, err)
	assert.EqualValues(t, 30, change.Amount)
}

func TestBuilder_Conservation(t *testing.T) {
	engine := note.NewReference()
	random := rand.New(rand.NewSource(42))
	assetTypes := []xfr.AssetType{assetA, assetB, assetC}
	recordTypes := []xfr.RecordType{
		xfr.NonConfidentialAmountNonConfidentialAssetType,
		xfr.ConfidentialAmountNonConfidentialAssetType,
		xfr.NonConfidentialAmountConfidentialAssetType,
		xfr.ConfidentialAmountConfidentialAssetType,
	}
	keyPairs := make(map[ed25519.PublicKey]ed25519.KeyPair)
	for i := 0; i < 4; i++ {
		keyPair := ed25519.GenerateKeyPair()
		keyPairs[keyPair.PublicKey] = keyPair
	}
	publicKeys := make([]ed25519.PublicKey, 0, len(keyPairs))
	for publicKey := range keyPairs {
		publicKeys = append(publicKeys, publicKey)
	}

	for round := 0; round < 20; round++ {
		builder := newBuilder(t, engine, byte(round))
		spent := make(map[xfr.AssetType]uint64)

		inputCount := 1 + random.Intn(4)
		for i := 0; i < inputCount; i++ {
			amount := uint64(1 + random.Intn(1000))
			spend := uint64(random.Int63n(int64(amount) + 1))
			assetType := assetTypes[random.Intn(len(assetTypes))]
			owner := publicKeys[random.Intn(len(publicKeys))]
			record := openRecord(t, engine, amount, assetType, recordTypes[random.Intn(len(recordTypes))], owner)

			require.NoError(t, builder.AddInput(xfr.NewAbsoluteTxoRef(xfr.TxoSID(i)), record, nil, nil, spend))
			spent[assetType] += spend
		}

		// split the spent amount of every asset type over random recipients
		for _, assetType := range assetTypes {
			remaining := spent[assetType]
			for remaining > 0 {
				amount := 1 + uint64(random.Int63n(int64(remaining)))
				template := xfr.NewTemplate(amount, assetType, recordTypes[random.Intn(len(recordTypes))], publicKeys[random.Intn(len(publicKeys))])
				require.NoError(t, builder.AddOutput(template, nil, nil, nil))
				remaining -= amount
			}
		}

		require.NoError(t, builder.Create(StandardTransferType))
		operation, err := builder.Transaction()
		require.NoError(t, err)
		body := operation.Body()

		inputTotals := make(map[xfr.AssetType]uint64)
		for _, input := range builder.Inputs() {
			inputTotals[input.Record.AssetType()] += input.SpendAmount
		}
		outputTotals := make(map[xfr.AssetType]uint64)
		for i, output := range body.Outputs() {
			opened, openErr := engine.OpenRecord(output.Record, body.Note().OwnerMemos[i], keyPairs[output.Record.PublicKey])
			require.NoError(t, openErr)
			outputTotals[opened.AssetType] += opened.Amount
		}

		assert.Equal(t, inputTotals, outputTotals, "round %d", round)
		assert.NoError(t, engine.VerifyNote(body.Note()), "round %d", round)
	}
}

func TestBuilder_FinalizeOnce(t *testing.T) {
	engine := note.NewReference()
	alice := ed25519.GenerateKeyPair()
	record := openRecord(t, engine, 10, assetA, xfr.NonConfidentialAmountNonConfidentialAssetType, alice.PublicKey)

	builder := newBuilder(t, engine, 2)
	require.NoError(t, builder.AddInput(xfr.NewAbsoluteTxoRef(1), record, nil, nil, 10))
	require.NoError(t, builder.AddOutput(xfr.NewTemplate(10, assetA, xfr.NonConfidentialAmountNonConfidentialAssetType, alice.PublicKey), nil, nil, nil))
	require.NoError(t, builder.Create(StandardTransferType))
	assert.Equal(t, FinalizedPhase, builder.Phase())

	operation, err := builder.Transaction()
	require.NoError(t, err)
	bodyBytes := operation.Body().Bytes()

	assert.ErrorIs(t, builder.AddInput(xfr.NewAbsoluteTxoRef(2), record, nil, nil, 10), ErrAlreadyFinalized)
	assert.ErrorIs(t, builder.AddOutput(xfr.NewTemplate(10, assetA, xfr.NonConfidentialAmountNonConfidentialAssetType, alice.PublicKey), nil, nil, nil), ErrAlreadyFinalized)
	assert.ErrorIs(t, builder.Balance(), ErrAlreadyFinalized)
	assert.ErrorIs(t, builder.Create(DebtSwapTransferType), ErrAlreadyFinalized)

	require.NoError(t, builder.Sign(alice))
	assert.ErrorIs(t, builder.Balance(), ErrAlreadyFinalized)

	operation, err = builder.Transaction()
	require.NoError(t, err)
	assert.Equal(t, bodyBytes, operation.Body().Bytes())
	assert.Len(t, builder.Inputs(), 1)
	assert.Len(t, builder.Outputs(), 1)
}

func TestBuilder_Errors(t *testing.T) {
	engine := note.NewReference()
	alice := ed25519.GenerateKeyPair()
	record := openRecord(t, engine, 100, assetA, xfr.ConfidentialAmountNonConfidentialAssetType, alice.PublicKey)

	t.Run("not finalized", func(t *testing.T) {
		builder := newBuilder(t, engine, 3)
		assert.ErrorIs(t, builder.Sign(alice), ErrNotFinalized)
		assert.ErrorIs(t, builder.SignInput(alice, 0), ErrNotFinalized)
		assert.ErrorIs(t, builder.AttachSignature(&IndexedSignature{}), ErrNotFinalized)
		_, err := builder.Transaction()
		assert.ErrorIs(t, err, ErrNotFinalized)
	})

	t.Run("no inputs", func(t *testing.T) {
		builder := newBuilder(t, engine, 4)
		require.NoError(t, builder.AddOutput(xfr.NewTemplate(10, assetA, xfr.NonConfidentialAmountNonConfidentialAssetType, alice.PublicKey), nil, nil, nil))
		assert.ErrorIs(t, builder.Create(StandardTransferType), ErrNoInputs)
		assert.Equal(t, OpenPhase, builder.Phase())
	})

	t.Run("unbalanced", func(t *testing.T) {
		builder := newBuilder(t, engine, 5)
		require.NoError(t, builder.AddInput(xfr.NewAbsoluteTxoRef(1), record, nil, nil, 60))
		require.NoError(t, builder.AddOutput(xfr.NewTemplate(61, assetA, xfr.NonConfidentialAmountNonConfidentialAssetType, alice.PublicKey), nil, nil, nil))

		assert.ErrorIs(t, builder.Balance(), ErrUnbalancedTransfer)
		assert.Len(t, builder.Outputs(), 1)
		assert.EqualValues(t, 60, builder.Inputs()[0].SpendAmount)
		assert.ErrorIs(t, builder.Create(StandardTransferType), ErrUnbalancedTransfer)
		assert.Equal(t, OpenPhase, builder.Phase())
	})

	t.Run("wrong asset type", func(t *testing.T) {
		builder := newBuilder(t, engine, 6)
		require.NoError(t, builder.AddInput(xfr.NewAbsoluteTxoRef(1), record, nil, nil, 100))
		require.NoError(t, builder.AddOutput(xfr.NewTemplate(100, assetB, xfr.NonConfidentialAmountNonConfidentialAssetType, alice.PublicKey), nil, nil, nil))
		assert.ErrorIs(t, builder.Create(StandardTransferType), ErrUnbalancedTransfer)
	})

	t.Run("overspend", func(t *testing.T) {
		builder := newBuilder(t, engine, 7)
		require.NoError(t, builder.AddInput(xfr.NewAbsoluteTxoRef(1), record, nil, nil, 101))
		require.NoError(t, builder.AddOutput(xfr.NewTemplate(101, assetA, xfr.NonConfidentialAmountNonConfidentialAssetType, alice.PublicKey), nil, nil, nil))
		assert.ErrorIs(t, builder.Balance(), ErrUnbalancedTransfer)
	})

	t.Run("partial spend without auto balance", func(t *testing.T) {
		builder := newBuilder(t, engine, 8, WithAutoBalance(false))
		require.NoError(t, builder.AddInput(xfr.NewAbsoluteTxoRef(1), record, nil, nil, 40))
		require.NoError(t, builder.AddOutput(xfr.NewTemplate(40, assetA, xfr.NonConfidentialAmountNonConfidentialAssetType, alice.PublicKey), nil, nil, nil))
		assert.ErrorIs(t, builder.Create(StandardTransferType), ErrUnbalancedTransfer)
		assert.Len(t, builder.Outputs(), 1)
	})

	t.Run("manual change without auto balance", func(t *testing.T) {
		bob := ed25519.GenerateKeyPair()
		builder := newBuilder(t, engine, 12, WithAutoBalance(false))
		require.NoError(t, builder.AddInput(xfr.NewAbsoluteTxoRef(1), record, nil, nil, 40))
		require.NoError(t, builder.AddOutput(xfr.NewTemplate(40, assetA, xfr.NonConfidentialAmountNonConfidentialAssetType, bob.PublicKey), nil, nil, nil))
		require.NoError(t, builder.AddOutput(xfr.NewTemplate(60, assetA, xfr.ConfidentialAmountNonConfidentialAssetType, alice.PublicKey), nil, nil, nil))
		require.NoError(t, builder.Create(StandardTransferType))
		assert.Len(t, builder.Outputs(), 2)

		operation, err := builder.Transaction()
		require.NoError(t, err)
		assert.Len(t, operation.Body().Outputs(), 2)
		assert.NoError(t, engine.VerifyNote(operation.Body().Note()))
	})

	t.Run("overspend without auto balance", func(t *testing.T) {
		builder := newBuilder(t, engine, 13, WithAutoBalance(false))
		require.NoError(t, builder.AddInput(xfr.NewAbsoluteTxoRef(1), record, nil, nil, 140))
		require.NoError(t, builder.AddOutput(xfr.NewTemplate(100, assetA, xfr.NonConfidentialAmountNonConfidentialAssetType, alice.PublicKey), nil, nil, nil))
		assert.ErrorIs(t, builder.Create(StandardTransferType), ErrUnbalancedTransfer)
		assert.Equal(t, OpenPhase, builder.Phase())
	})

	t.Run("balanced without auto balance", func(t *testing.T) {
		builder := newBuilder(t, engine, 9, WithAutoBalance(false))
		require.NoError(t, builder.AddInput(xfr.NewAbsoluteTxoRef(1), record, nil, nil, 100))
		require.NoError(t, builder.AddOutput(xfr.NewTemplate(100, assetA, xfr.NonConfidentialAmountNonConfidentialAssetType, alice.PublicKey), nil, nil, nil))
		assert.NoError(t, builder.Create(DebtSwapTransferType))

		operation, err := builder.Transaction()
		require.NoError(t, err)
		assert.Equal(t, DebtSwapTransferType, operation.Body().TransferType())
	})

	t.Run("undefined reference", func(t *testing.T) {
		builder := newBuilder(t, engine, 14)
		assert.ErrorIs(t, builder.AddInput(xfr.TxoRef{}, record, nil, nil, 100), ErrInvalidTxoRef)
		assert.Empty(t, builder.Inputs())
	})

	t.Run("note engine", func(t *testing.T) {
		builder := newBuilder(t, engine, 10)
		err := builder.AddOutput(xfr.NewTemplate(10, assetA, xfr.RecordType(42), alice.PublicKey), nil, nil, nil)
		assert.ErrorIs(t, err, ErrNoteEngine)
		assert.Empty(t, builder.Outputs())

		err = builder.AddOutput(xfr.NewTemplate(10, assetA, xfr.NonConfidentialAmountNonConfidentialAssetType, alice.PublicKey), nil, nil, &xfr.IdentityCredential{})
		assert.ErrorIs(t, err, ErrNoteEngine)

		assert.ErrorIs(t, builder.AddInput(xfr.NewAbsoluteTxoRef(1), nil, nil, nil, 0), ErrNoteEngine)
	})

	t.Run("constructor", func(t *testing.T) {
		_, err := New(nil, prng.New([prng.SeedSize]byte{}))
		assert.Error(t, err)
		_, err = New(engine, nil)
		assert.Error(t, err)
	})
}

func TestBuilder_Tracing(t *testing.T) {
	engine := note.NewReference()
	alice := ed25519.GenerateKeyPair()
	bob := ed25519.GenerateKeyPair()
	auditor := ed25519.GenerateKeyPair()
	policies := xfr.TracingPolicies{xfr.NewTracingPolicy(auditor.PublicKey, true)}
	identity := &xfr.IdentityCommitment{1, 2, 3}

	builder := newBuilder(t, engine, 11)
	require.NoError(t, builder.AddInput(xfr.NewAbsoluteTxoRef(1), openRecord(t, engine, 500, assetA, xfr.ConfidentialAmountConfidentialAssetType, alice.PublicKey), policies, identity, 300))
	require.NoError(t, builder.AddOutput(xfr.NewTemplate(300, assetA, xfr.ConfidentialAmountConfidentialAssetType, bob.PublicKey).WithTracing(policies), policies, nil, &xfr.IdentityCredential{
		UserSecretKey: []byte{1},
		Credential:    []byte{2},
		CommitmentKey: []byte{3},
	}))
	require.NoError(t, builder.Create(StandardTransferType))

	operation, err := builder.Transaction()
	require.NoError(t, err)
	body := operation.Body()

	bodyPolicies := body.Policies()
	require.Len(t, bodyPolicies.InputsTracing, 1)
	require.Len(t, bodyPolicies.OutputsTracing, 2)
	assert.Equal(t, policies, bodyPolicies.InputsTracing[0])
	assert.Equal(t, identity, bodyPolicies.InputsIdentity[0])
	assert.Equal(t, policies, bodyPolicies.OutputsTracing[1])
	assert.Nil(t, bodyPolicies.OutputsIdentity[1])

	// the change output inherits the tracing policies of its input
	changeMemos := body.Note().OutputTracerMemos[1]
	require.Len(t, changeMemos, 1)
	traced, err := engine.TraceRecord(changeMemos[0], auditor)
	require.NoError(t, err)
	assert.EqualValues(t, 200, traced.Amount)
	assert.Equal(t, assetA, traced.AssetType)

	traced, err = engine.TraceRecord(body.Note().OutputTracerMemos[0][0], auditor)
	require.NoError(t, err)
	assert.EqualValues(t, 300, traced.Amount)
	assert.NotNil(t, traced.IdentityCommitment)
}

func newBuilder(t *testing.T, engine note.Engine, seed byte, options ...Option) *Builder {
	builder, err := New(engine, prng.New([prng.SeedSize]byte{seed}), options...)
	require.NoError(t, err)

	return builder
}

func openRecord(t *testing.T, engine note.Engine, amount uint64, assetType xfr.AssetType, recordType xfr.RecordType, owner ed25519.PublicKey) *xfr.OpenRecord {
	record, err := engine.RecordFromTemplate(prng.New([prng.SeedSize]byte{0xFF, byte(amount), byte(amount >> 8), assetType[0]}), xfr.NewTemplate(amount, assetType, recordType, owner))
	require.NoError(t, err)

	return record.OpenRecord
}
