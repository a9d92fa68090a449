package note

import (
	"io"

	"github.com/cockroachdb/errors"
	"github.com/iotaledger/hive.go/byteutils"
	"github.com/iotaledger/hive.go/crypto/ed25519"
	"go.dedis.ch/kyber/v3"
	"golang.org/x/crypto/blake2b"

	"github.com/iotaledger/xfrwallet/packages/xfr"
)

// region Reference ////////////////////////////////////////////////////////////////////////////////////////////////////

// Reference is the reference implementation of the Engine.
//
// Amounts are hidden in Pedersen commitments v·H' + r·G on edwards25519 where H' = H_asset + a·G is the (optionally
// blinded) generator of the asset type. Value conservation is shown with a Schnorr proof over the excess of a note.
// There are no range proofs, so the engine is meant for wallets and tests that trust their own inputs. It is not a zero
// knowledge proof system.
type Reference struct{}

// NewReference creates a new reference engine.
func NewReference() *Reference {
	return &Reference{}
}

// RecordFromTemplate materializes a new output record.
func (r *Reference) RecordFromTemplate(rng io.Reader, template *xfr.Template) (*AssetRecord, error) {
	return r.recordFromTemplate(rng, template, nil)
}

// RecordFromTemplateWithIdentity materializes a new output record that carries an identity commitment.
func (r *Reference) RecordFromTemplateWithIdentity(rng io.Reader, template *xfr.Template, credential *xfr.IdentityCredential) (*AssetRecord, error) {
	if credential == nil {
		return nil, errors.Wrap(ErrInvalidTemplate, "identity credential must not be nil")
	}
	if err := credential.Validate(); err != nil {
		return nil, errors.Wrap(ErrInvalidTemplate, err.Error())
	}
	if template == nil {
		return nil, errors.Wrap(ErrInvalidTemplate, "template must not be nil")
	}

	identityCommitment := xfr.IdentityCommitment(blake2b.Sum256(byteutils.ConcatBytes(
		credential.CommitmentKey,
		credential.Credential,
		template.PublicKey.Bytes(),
	)))

	return r.recordFromTemplate(rng, template, &identityCommitment)
}

// RecordFromOpenRecord wraps an already existing record so that it can be spent as an input.
func (r *Reference) RecordFromOpenRecord(rng io.Reader, record *xfr.OpenRecord, policies xfr.TracingPolicies) (assetRecord *AssetRecord, err error) {
	if record == nil {
		return nil, errors.Wrap(ErrInvalidTemplate, "open record must not be nil")
	}

	assetRecord = &AssetRecord{OpenRecord: record}
	if assetRecord.TracerMemos, err = tracerMemos(rng, policies, record, nil); err != nil {
		return nil, err
	}

	return assetRecord, nil
}

// BuildNote assembles the note that moves the value of the inputs into the outputs.
func (r *Reference) BuildNote(rng io.Reader, inputs []*AssetRecord, outputs []*AssetRecord) (note *Note, err error) {
	if len(inputs) == 0 || len(outputs) == 0 {
		return nil, errors.Wrapf(ErrEmptyNote, "got %d inputs and %d outputs", len(inputs), len(outputs))
	}
	if err = checkConservation(inputs, outputs); err != nil {
		return nil, err
	}

	note = &Note{
		Inputs:            make([]xfr.BlindRecord, len(inputs)),
		Outputs:           make([]xfr.BlindRecord, len(outputs)),
		OwnerMemos:        make([]*xfr.OwnerMemo, len(outputs)),
		InputTracerMemos:  make([][]*TracerMemo, len(inputs)),
		OutputTracerMemos: make([][]*TracerMemo, len(outputs)),
	}

	excess := suite.Scalar().Zero()
	for i, input := range inputs {
		inputExcess, excessErr := blindingExcess(input.OpenRecord)
		if excessErr != nil {
			return nil, excessErr
		}
		excess.Add(excess, inputExcess)

		note.Inputs[i] = input.OpenRecord.BlindRecord
		note.InputTracerMemos[i] = input.TracerMemos
	}
	for i, output := range outputs {
		outputExcess, excessErr := blindingExcess(output.OpenRecord)
		if excessErr != nil {
			return nil, excessErr
		}
		excess.Sub(excess, outputExcess)

		note.Outputs[i] = output.OpenRecord.BlindRecord
		note.OwnerMemos[i] = output.OwnerMemo
		note.OutputTracerMemos[i] = output.TracerMemos
	}

	excessPoint, err := noteExcess(note)
	if err != nil {
		return nil, err
	}
	if note.ExcessProof, err = proveExcess(rng, excess, excessPoint, noteMessage(note)); err != nil {
		return nil, err
	}

	return note, nil
}

// VerifyNote checks that the note conserves value.
func (r *Reference) VerifyNote(note *Note) error {
	if note == nil || len(note.Inputs) == 0 || len(note.Outputs) == 0 {
		return ErrEmptyNote
	}

	excessPoint, err := noteExcess(note)
	if err != nil {
		return err
	}

	return note.ExcessProof.verify(excessPoint, noteMessage(note))
}

// OpenRecord reveals the confidential fields of a record that is owned by the given key pair.
func (r *Reference) OpenRecord(record xfr.BlindRecord, memo *xfr.OwnerMemo, keyPair ed25519.KeyPair) (openRecord *xfr.OpenRecord, err error) {
	if record.PublicKey != keyPair.PublicKey {
		return nil, errors.Wrapf(ErrOpenRecordFailed, "record is owned by %s", record.PublicKey)
	}

	openRecord = &xfr.OpenRecord{
		BlindRecord: record,
		Amount:      record.Amount.Value,
		AssetType:   record.AssetType.AssetType,
		PublicKey:   record.PublicKey,
	}
	if !record.Amount.Confidential && !record.AssetType.Confidential {
		return openRecord, nil
	}

	if memo == nil {
		return nil, errors.Wrap(ErrOpenRecordFailed, "confidential record without owner memo")
	}
	payload, err := unseal(keyPair, memo.EphemeralKey, memo.Ciphertext)
	if err != nil {
		return nil, errors.Wrap(ErrOpenRecordFailed, err.Error())
	}
	if err = parseOwnerMemoPayload(payload, openRecord); err != nil {
		return nil, errors.Wrap(ErrOpenRecordFailed, err.Error())
	}
	if err = verifyOpening(openRecord); err != nil {
		return nil, err
	}

	return openRecord, nil
}

// TraceRecord decrypts a tracer memo with the key pair of the auditor.
func (r *Reference) TraceRecord(memo *TracerMemo, auditor ed25519.KeyPair) (*TracedRecord, error) {
	if memo == nil {
		return nil, errors.Wrap(ErrMemo, "tracer memo must not be nil")
	}

	return memo.Open(auditor)
}

func (r *Reference) recordFromTemplate(rng io.Reader, template *xfr.Template, identityCommitment *xfr.IdentityCommitment) (assetRecord *AssetRecord, err error) {
	if template == nil {
		return nil, errors.Wrap(ErrInvalidTemplate, "template must not be nil")
	}
	if !template.RecordType.Valid() {
		return nil, errors.Wrapf(ErrInvalidTemplate, "unknown record type %d", template.RecordType)
	}

	openRecord := &xfr.OpenRecord{
		Amount:    template.Amount,
		AssetType: template.AssetType,
		PublicKey: template.PublicKey,
	}
	openRecord.BlindRecord.PublicKey = template.PublicKey

	var generator kyber.Point
	if template.RecordType.AssetHidden() {
		assetBlinding := randomScalar(rng)
		openRecord.AssetBlinding = scalarToBytes(assetBlinding)

		generator = blindedAssetGenerator(template.AssetType, assetBlinding)
		assetCommitment, commitErr := pointToCommitment(generator)
		if commitErr != nil {
			return nil, errors.Wrap(ErrInvalidTemplate, commitErr.Error())
		}
		openRecord.BlindRecord.AssetType = xfr.NewConfidentialXfrAssetType(assetCommitment)
	} else {
		generator = assetGenerator(template.AssetType)
		openRecord.BlindRecord.AssetType = xfr.NewXfrAssetType(template.AssetType)
	}

	if template.RecordType.AmountHidden() {
		amountBlinding := randomScalar(rng)
		openRecord.AmountBlinding = scalarToBytes(amountBlinding)

		committedAmount, commitErr := pointToCommitment(amountCommitment(template.Amount, generator, amountBlinding))
		if commitErr != nil {
			return nil, errors.Wrap(ErrInvalidTemplate, commitErr.Error())
		}
		openRecord.BlindRecord.Amount = xfr.NewConfidentialXfrAmount(committedAmount)
	} else {
		openRecord.BlindRecord.Amount = xfr.NewXfrAmount(template.Amount)
	}

	assetRecord = &AssetRecord{
		OpenRecord:         openRecord,
		IdentityCommitment: identityCommitment,
	}
	if template.RecordType != xfr.NonConfidentialAmountNonConfidentialAssetType {
		ephemeralKey, ciphertext, sealErr := seal(rng, template.PublicKey, ownerMemoPayload(openRecord))
		if sealErr != nil {
			return nil, sealErr
		}
		assetRecord.OwnerMemo = &xfr.OwnerMemo{EphemeralKey: ephemeralKey, Ciphertext: ciphertext}
	}
	if assetRecord.TracerMemos, err = tracerMemos(rng, template.Policies, openRecord, identityCommitment); err != nil {
		return nil, err
	}

	return assetRecord, nil
}

// code contract (make sure the type implements all required methods)
var _ Engine = &Reference{}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////

func tracerMemos(rng io.Reader, policies xfr.TracingPolicies, record *xfr.OpenRecord, identityCommitment *xfr.IdentityCommitment) (memos []*TracerMemo, err error) {
	for _, policy := range policies {
		memo, memoErr := newTracerMemo(rng, policy, record, identityCommitment)
		if memoErr != nil {
			return nil, memoErr
		}
		memos = append(memos, memo)
	}

	return memos, nil
}

// checkConservation compares the plain per asset totals of inputs and outputs.
func checkConservation(inputs []*AssetRecord, outputs []*AssetRecord) error {
	inputTotals, err := assetTotals(inputs)
	if err != nil {
		return err
	}
	outputTotals, err := assetTotals(outputs)
	if err != nil {
		return err
	}

	for assetType, inputTotal := range inputTotals {
		if outputTotals[assetType] != inputTotal {
			return errors.Wrapf(ErrUnbalancedNote, "asset %s: inputs carry %d, outputs carry %d", assetType, inputTotal, outputTotals[assetType])
		}
	}
	for assetType, outputTotal := range outputTotals {
		if _, exists := inputTotals[assetType]; !exists {
			return errors.Wrapf(ErrUnbalancedNote, "asset %s: inputs carry 0, outputs carry %d", assetType, outputTotal)
		}
	}

	return nil
}

func assetTotals(records []*AssetRecord) (totals map[xfr.AssetType]uint64, err error) {
	totals = make(map[xfr.AssetType]uint64)
	for _, record := range records {
		if record == nil || record.OpenRecord == nil {
			return nil, errors.Wrap(xfr.ErrInvalidRecord, "nil record in note")
		}

		total := totals[record.AssetType()] + record.Amount()
		if total < record.Amount() {
			return nil, errors.Wrapf(ErrUnbalancedNote, "total of asset %s overflows", record.AssetType())
		}
		totals[record.AssetType()] = total
	}

	return totals, nil
}

// noteExcess returns the sum of the input balance points minus the sum of the output balance points.
func noteExcess(note *Note) (kyber.Point, error) {
	excess := suite.Point().Null()
	for _, input := range note.Inputs {
		point, err := balancePoint(input)
		if err != nil {
			return nil, err
		}
		excess.Add(excess, point)
	}
	for _, output := range note.Outputs {
		point, err := balancePoint(output)
		if err != nil {
			return nil, err
		}
		excess.Sub(excess, point)
	}

	return excess, nil
}

func noteMessage(note *Note) []byte {
	return byteutils.ConcatBytes(blindRecords(note.Inputs).Bytes(), blindRecords(note.Outputs).Bytes())
}

// verifyOpening checks that the plain values that were revealed by an owner memo match the commitments of the record.
func verifyOpening(openRecord *xfr.OpenRecord) error {
	blindRecord := openRecord.BlindRecord

	var generator kyber.Point
	if blindRecord.AssetType.Confidential {
		assetBlinding, err := scalarFromBytes(openRecord.AssetBlinding)
		if err != nil {
			return errors.Wrap(ErrOpenRecordFailed, err.Error())
		}
		generator = blindedAssetGenerator(openRecord.AssetType, assetBlinding)
		if commitment, err := pointToCommitment(generator); err != nil || commitment != blindRecord.AssetType.Commitment {
			return errors.Wrap(ErrOpenRecordFailed, "asset type does not match its commitment")
		}
	} else {
		if openRecord.AssetType != blindRecord.AssetType.AssetType {
			return errors.Wrap(ErrOpenRecordFailed, "owner memo reveals a different asset type")
		}
		generator = assetGenerator(openRecord.AssetType)
	}

	if blindRecord.Amount.Confidential {
		amountBlinding, err := scalarFromBytes(openRecord.AmountBlinding)
		if err != nil {
			return errors.Wrap(ErrOpenRecordFailed, err.Error())
		}
		if commitment, err := pointToCommitment(amountCommitment(openRecord.Amount, generator, amountBlinding)); err != nil || commitment != blindRecord.Amount.Commitment {
			return errors.Wrap(ErrOpenRecordFailed, "amount does not match its commitment")
		}
	} else if openRecord.Amount != blindRecord.Amount.Value {
		return errors.Wrap(ErrOpenRecordFailed, "owner memo reveals a different amount")
	}

	return nil
}
