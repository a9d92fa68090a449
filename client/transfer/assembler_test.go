package transfer

import (
	"context"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/iotaledger/hive.go/crypto/ed25519"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iotaledger/xfrwallet/packages/coinselection"
	"github.com/iotaledger/xfrwallet/packages/txbuilder"
	"github.com/iotaledger/xfrwallet/packages/xfr"
	"github.com/iotaledger/xfrwallet/packages/xfr/note"
	"github.com/iotaledger/xfrwallet/packages/xfr/prng"
)

var assetX = xfr.AssetType{0x58}

type mockSource struct {
	records []*coinselection.OwnedRecord
	err     error
}

func (m *mockSource) OwnedRecords(_ context.Context, _ ed25519.KeyPair) ([]*coinselection.OwnedRecord, error) {
	return m.records, m.err
}

func ownedRecord(t *testing.T, engine note.Engine, sid xfr.TxoSID, amount uint64, assetType xfr.AssetType, recordType xfr.RecordType, owner ed25519.PublicKey) *coinselection.OwnedRecord {
	record, err := engine.RecordFromTemplate(fixtureRNG(sid), xfr.NewTemplate(amount, assetType, recordType, owner))
	require.NoError(t, err)

	return &coinselection.OwnedRecord{SID: sid, Record: record.OpenRecord}
}

// fixtureRNG seeds the owned record fixtures. The leading 0xFF keeps them apart from the seeds of buildRNG.
func fixtureRNG(sid xfr.TxoSID) *prng.PRNG {
	return prng.New([prng.SeedSize]byte{0xFF, byte(sid), byte(sid >> 8)})
}

// buildRNG seeds the assembled transfers.
func buildRNG(seed byte) *prng.PRNG {
	if seed == 0xFF {
		panic("seed 0xFF is reserved for fixtures")
	}

	return prng.New([prng.SeedSize]byte{seed})
}

// openOutputs opens every output of the operation with the matching key pair.
func openOutputs(t *testing.T, engine note.Engine, operation *txbuilder.TransferOperation, keyPairs ...ed25519.KeyPair) []*xfr.OpenRecord {
	body := operation.Body()
	opened := make([]*xfr.OpenRecord, len(body.Outputs()))
	for i, output := range body.Outputs() {
		for _, keyPair := range keyPairs {
			if keyPair.PublicKey != output.Record.PublicKey {
				continue
			}

			record, err := engine.OpenRecord(output.Record, body.Note().OwnerMemos[i], keyPair)
			require.NoError(t, err)
			opened[i] = record
		}
		require.NotNil(t, opened[i], "output %d has an unknown owner", i)
	}

	return opened
}

func TestAssembler_FeeInSeparateAsset(t *testing.T) {
	engine := note.NewReference()
	owner := ed25519.GenerateKeyPair()
	recipient := ed25519.GenerateKeyPair()
	burn := ed25519.GenerateKeyPair()

	source := &mockSource{records: []*coinselection.OwnedRecord{
		ownedRecord(t, engine, 1, 1000, assetX, xfr.ConfidentialAmountConfidentialAssetType, owner.PublicKey),
		ownedRecord(t, engine, 2, 20000, xfr.NativeAssetType, xfr.ConfidentialAmountNonConfidentialAssetType, owner.PublicKey),
	}}
	registry := prometheus.NewRegistry()
	metrics, err := NewMetrics(registry)
	require.NoError(t, err)

	assembler, err := New(engine, source, WithMinFee(10000), WithBurnPublicKey(burn.PublicKey), WithMetrics(metrics))
	require.NoError(t, err)

	operation, err := assembler.GenTransferOp(context.Background(), owner, []Target{{Recipient: recipient.PublicKey, Amount: 1000}}, &assetX, xfr.ConfidentialAmountNonConfidentialAssetType, buildRNG(1))
	require.NoError(t, err)

	outputs := openOutputs(t, engine, operation, owner, recipient, burn)
	require.Len(t, outputs, 3)

	assert.Equal(t, burn.PublicKey, outputs[0].PublicKey)
	assert.EqualValues(t, 10000, outputs[0].Amount)
	assert.Equal(t, xfr.NativeAssetType, outputs[0].AssetType)
	assert.Equal(t, xfr.NonConfidentialAmountNonConfidentialAssetType, outputs[0].RecordType())

	assert.Equal(t, recipient.PublicKey, outputs[1].PublicKey)
	assert.EqualValues(t, 1000, outputs[1].Amount)
	assert.Equal(t, assetX, outputs[1].AssetType)
	assert.Equal(t, xfr.ConfidentialAmountNonConfidentialAssetType, outputs[1].RecordType())

	assert.Equal(t, owner.PublicKey, outputs[2].PublicKey)
	assert.EqualValues(t, 10000, outputs[2].Amount)
	assert.Equal(t, xfr.NativeAssetType, outputs[2].AssetType)

	for _, output := range outputs {
		if output.PublicKey == owner.PublicKey {
			assert.NotEqual(t, assetX, output.AssetType, "no change of the transferred asset")
		}
	}

	assert.Equal(t, []xfr.TxoRef{xfr.NewAbsoluteTxoRef(1), xfr.NewAbsoluteTxoRef(2)}, operation.Body().Inputs())
	assert.True(t, operation.Covered([]ed25519.PublicKey{owner.PublicKey, owner.PublicKey}))
	assert.NoError(t, engine.VerifyNote(operation.Body().Note()))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.assembled.WithLabelValues(xfr.ConfidentialAmountNonConfidentialAssetType.String())))
}

func TestAssembler_FeeInTransferredAsset(t *testing.T) {
	engine := note.NewReference()
	owner := ed25519.GenerateKeyPair()
	alice := ed25519.GenerateKeyPair()
	bob := ed25519.GenerateKeyPair()

	records := []*coinselection.OwnedRecord{
		ownedRecord(t, engine, 4, 15000, xfr.NativeAssetType, xfr.NonConfidentialAmountNonConfidentialAssetType, owner.PublicKey),
		ownedRecord(t, engine, 7, 10000, xfr.NativeAssetType, xfr.ConfidentialAmountConfidentialAssetType, owner.PublicKey),
		ownedRecord(t, engine, 9, 50000, xfr.NativeAssetType, xfr.NonConfidentialAmountNonConfidentialAssetType, owner.PublicKey),
	}

	assembler, err := New(engine, nil)
	require.NoError(t, err)

	targets := []Target{{Recipient: alice.PublicKey, Amount: 8000}, {Recipient: bob.PublicKey, Amount: 2000}}
	operation, err := assembler.GenTransferOpFromRecords(owner, records, targets, nil, xfr.NonConfidentialAmountNonConfidentialAssetType, buildRNG(2))
	require.NoError(t, err)

	// 20000 are needed: 15000 from the first record and 5000 from the second one
	assert.Equal(t, []xfr.TxoRef{xfr.NewAbsoluteTxoRef(4), xfr.NewAbsoluteTxoRef(7)}, operation.Body().Inputs())

	outputs := openOutputs(t, engine, operation, owner, alice, bob, ed25519.KeyPair{PublicKey: xfr.DefaultBurnPublicKey})
	require.Len(t, outputs, 4)
	assert.Equal(t, xfr.DefaultBurnPublicKey, outputs[0].PublicKey)
	assert.EqualValues(t, DefaultMinFee, outputs[0].Amount)
	assert.EqualValues(t, 8000, outputs[1].Amount)
	assert.EqualValues(t, 2000, outputs[2].Amount)
	assert.Equal(t, owner.PublicKey, outputs[3].PublicKey)
	assert.EqualValues(t, 5000, outputs[3].Amount)
	assert.Equal(t, xfr.ConfidentialAmountConfidentialAssetType, outputs[3].RecordType())
}

func TestAssembler_Errors(t *testing.T) {
	engine := note.NewReference()
	owner := ed25519.GenerateKeyPair()
	recipient := ed25519.GenerateKeyPair()

	t.Run("insufficient balance", func(t *testing.T) {
		registry := prometheus.NewRegistry()
		metrics, err := NewMetrics(registry)
		require.NoError(t, err)

		source := &mockSource{records: []*coinselection.OwnedRecord{
			ownedRecord(t, engine, 1, 90, assetX, xfr.NonConfidentialAmountNonConfidentialAssetType, owner.PublicKey),
			ownedRecord(t, engine, 2, 50000, xfr.NativeAssetType, xfr.NonConfidentialAmountNonConfidentialAssetType, owner.PublicKey),
		}}
		assembler, err := New(engine, source, WithMetrics(metrics))
		require.NoError(t, err)

		for i := 0; i < 2; i++ {
			_, err = assembler.GenTransferOp(context.Background(), owner, []Target{{Recipient: recipient.PublicKey, Amount: 100}}, &assetX, xfr.NonConfidentialAmountNonConfidentialAssetType, buildRNG(3))
			assert.ErrorIs(t, err, coinselection.ErrInsufficientBalance)
		}
		assert.Equal(t, 2.0, testutil.ToFloat64(metrics.failed.WithLabelValues("selection")))
	})

	t.Run("insufficient fee", func(t *testing.T) {
		source := &mockSource{records: []*coinselection.OwnedRecord{
			ownedRecord(t, engine, 1, 1000, assetX, xfr.NonConfidentialAmountNonConfidentialAssetType, owner.PublicKey),
			ownedRecord(t, engine, 2, 9999, xfr.NativeAssetType, xfr.NonConfidentialAmountNonConfidentialAssetType, owner.PublicKey),
		}}
		assembler, err := New(engine, source)
		require.NoError(t, err)

		_, err = assembler.GenTransferOp(context.Background(), owner, []Target{{Recipient: recipient.PublicKey, Amount: 1000}}, &assetX, xfr.NonConfidentialAmountNonConfidentialAssetType, buildRNG(4))
		assert.ErrorIs(t, err, coinselection.ErrInsufficientBalance)
	})

	t.Run("source failure", func(t *testing.T) {
		sourceErr := errors.New("ledger unreachable")
		assembler, err := New(engine, &mockSource{err: sourceErr})
		require.NoError(t, err)

		_, err = assembler.GenTransferOp(context.Background(), owner, []Target{{Recipient: recipient.PublicKey, Amount: 1}}, nil, xfr.NonConfidentialAmountNonConfidentialAssetType, buildRNG(5))
		assert.ErrorIs(t, err, sourceErr)
	})

	t.Run("invalid record type", func(t *testing.T) {
		source := &mockSource{records: []*coinselection.OwnedRecord{
			ownedRecord(t, engine, 1, 50000, xfr.NativeAssetType, xfr.NonConfidentialAmountNonConfidentialAssetType, owner.PublicKey),
		}}
		assembler, err := New(engine, source)
		require.NoError(t, err)

		_, err = assembler.GenTransferOp(context.Background(), owner, []Target{{Recipient: recipient.PublicKey, Amount: 1}}, nil, xfr.RecordType(9), buildRNG(6))
		assert.ErrorIs(t, err, txbuilder.ErrNoteEngine)
	})

	t.Run("no source", func(t *testing.T) {
		assembler, err := New(engine, nil)
		require.NoError(t, err)

		_, err = assembler.GenTransferOp(context.Background(), owner, nil, nil, xfr.NonConfidentialAmountNonConfidentialAssetType, buildRNG(7))
		assert.Error(t, err)
	})

	t.Run("invalid options", func(t *testing.T) {
		_, err := New(engine, nil, WithMinFee(0))
		assert.Error(t, err)
		_, err = New(nil, nil)
		assert.Error(t, err)
	})
}

func TestSeedSpaces(t *testing.T) {
	fixtureStreams := make(map[[64]byte]xfr.TxoSID)
	for sid := xfr.TxoSID(0); sid < 16; sid++ {
		var stream [64]byte
		_, err := fixtureRNG(sid).Read(stream[:])
		require.NoError(t, err)
		fixtureStreams[stream] = sid
	}

	for seed := 0; seed < 0xFF; seed++ {
		var stream [64]byte
		_, err := buildRNG(byte(seed)).Read(stream[:])
		require.NoError(t, err)

		_, reused := fixtureStreams[stream]
		assert.False(t, reused, "build seed %d reuses the randomness of a fixture", seed)
	}
	assert.Panics(t, func() { buildRNG(0xFF) })
}
