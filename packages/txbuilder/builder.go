// Package txbuilder contains the state machine that plans, balances, finalizes and signs a confidential transfer.
package txbuilder

import (
	"io"

	"github.com/cockroachdb/errors"
	"github.com/iotaledger/hive.go/crypto/ed25519"
	"github.com/iotaledger/hive.go/logger"
	"github.com/iotaledger/hive.go/stringify"

	"github.com/iotaledger/xfrwallet/packages/xfr"
	"github.com/iotaledger/xfrwallet/packages/xfr/note"
)

// region Phase ////////////////////////////////////////////////////////////////////////////////////////////////////////

const (
	// OpenPhase accepts inputs and outputs.
	OpenPhase Phase = iota

	// BalancedPhase is reached after a successful Balance.
	BalancedPhase

	// FinalizedPhase is reached after a successful Create. The body can not be modified anymore.
	FinalizedPhase

	// SignedPhase is reached once the first signature was attached.
	SignedPhase
)

// Phase is the state of a Builder.
type Phase uint8

// String returns a human readable representation of the Phase.
func (p Phase) String() string {
	return [...]string{
		"Open",
		"Balanced",
		"Finalized",
		"Signed",
	}[p]
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////

// region PlannedInput /////////////////////////////////////////////////////////////////////////////////////////////////

// PlannedInput is an input slot of the Builder.
type PlannedInput struct {
	Ref                xfr.TxoRef
	Record             *note.AssetRecord
	Policies           xfr.TracingPolicies
	IdentityCommitment *xfr.IdentityCommitment
	SpendAmount        uint64
}

// Change returns the part of the record that is not spent. It is zero for overspent inputs.
func (p *PlannedInput) Change() uint64 {
	if p.SpendAmount >= p.Record.Amount() {
		return 0
	}

	return p.Record.Amount() - p.SpendAmount
}

// String returns a human readable version of the PlannedInput.
func (p *PlannedInput) String() string {
	return stringify.Struct("PlannedInput",
		stringify.StructField("ref", p.Ref.String()),
		stringify.StructField("record", p.Record),
		stringify.StructField("spendAmount", p.SpendAmount),
	)
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////

// region PlannedOutput ////////////////////////////////////////////////////////////////////////////////////////////////

// PlannedOutput is an output slot of the Builder.
type PlannedOutput struct {
	Record             *note.AssetRecord
	Policies           xfr.TracingPolicies
	IdentityCommitment *xfr.IdentityCommitment
	Change             bool
}

// String returns a human readable version of the PlannedOutput.
func (p *PlannedOutput) String() string {
	return stringify.Struct("PlannedOutput",
		stringify.StructField("record", p.Record),
		stringify.StructField("change", p.Change),
	)
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////

// region Builder //////////////////////////////////////////////////////////////////////////////////////////////////////

// Builder plans the inputs and outputs of a transfer, balances them, finalizes them into a TransferBody and collects
// the signatures. A Builder is meant to be used by a single goroutine for a single transfer.
type Builder struct {
	rng         io.Reader
	engine      note.Engine
	factory     *RecordFactory
	autoBalance bool
	log         *logger.Logger

	phase     Phase
	inputs    []*PlannedInput
	outputs   []*PlannedOutput
	operation *TransferOperation
}

// New creates a Builder. All randomness of the build is drawn from rng which must not be shared with other builds.
func New(engine note.Engine, rng io.Reader, options ...Option) (builder *Builder, err error) {
	if engine == nil {
		return nil, errors.New("note engine must not be nil")
	}
	if rng == nil {
		return nil, errors.New("CSPRNG must not be nil")
	}

	opts, err := buildOptions(options...)
	if err != nil {
		return nil, err
	}

	return &Builder{
		rng:         rng,
		engine:      engine,
		factory:     NewRecordFactory(engine),
		autoBalance: opts.AutoBalance,
		log:         opts.Logger,
	}, nil
}

// Phase returns the current Phase of the Builder.
func (b *Builder) Phase() Phase {
	return b.phase
}

// Inputs returns the planned inputs.
func (b *Builder) Inputs() []*PlannedInput {
	return append(make([]*PlannedInput, 0, len(b.inputs)), b.inputs...)
}

// Outputs returns the planned outputs (including synthesized change).
func (b *Builder) Outputs() []*PlannedOutput {
	return append(make([]*PlannedOutput, 0, len(b.outputs)), b.outputs...)
}

// InputOwners returns the owners of the planned inputs, aligned with the inputs.
func (b *Builder) InputOwners() []ed25519.PublicKey {
	owners := make([]ed25519.PublicKey, len(b.inputs))
	for i, input := range b.inputs {
		owners[i] = input.Record.PublicKey()
	}

	return owners
}

// AddInput plans to spend spendAmount of the given record. Spending more than the record holds is only detected by
// Balance and Create.
func (b *Builder) AddInput(ref xfr.TxoRef, record *xfr.OpenRecord, policies xfr.TracingPolicies, identityCommitment *xfr.IdentityCommitment, spendAmount uint64) error {
	if err := b.checkNotFinalized(); err != nil {
		return err
	}
	if !ref.Valid() {
		return errors.Wrapf(ErrInvalidTxoRef, "input %d", len(b.inputs))
	}

	assetRecord, err := b.factory.Input(b.rng, record, policies)
	if err != nil {
		return err
	}

	b.inputs = append(b.inputs, &PlannedInput{
		Ref:                ref,
		Record:             assetRecord,
		Policies:           policies.Clone(),
		IdentityCommitment: identityCommitment,
		SpendAmount:        spendAmount,
	})

	return nil
}

// AddOutput materializes the template and plans it as an output. The credential is optional and enables identity
// tracing.
func (b *Builder) AddOutput(template *xfr.Template, policies xfr.TracingPolicies, identityCommitment *xfr.IdentityCommitment, credential *xfr.IdentityCredential) error {
	if err := b.checkNotFinalized(); err != nil {
		return err
	}

	assetRecord, err := b.factory.Output(b.rng, template, credential)
	if err != nil {
		return err
	}

	b.outputs = append(b.outputs, &PlannedOutput{
		Record:             assetRecord,
		Policies:           policies.Clone(),
		IdentityCommitment: identityCommitment,
	})

	return nil
}

// Balance pays the unspent remainder of every partially spent input back to its owner and verifies that every asset
// type is conserved. Nothing is changed if the transfer does not balance.
func (b *Builder) Balance() (err error) {
	if err = b.checkNotFinalized(); err != nil {
		return err
	}

	if err = b.checkConservation(b.spendTotals, b.outputTotals); err != nil {
		return err
	}

	var changeOutputs []*PlannedOutput
	for _, input := range b.inputs {
		if input.Change() == 0 {
			continue
		}

		changeRecord, changeErr := b.factory.Change(b.rng, input)
		if changeErr != nil {
			return changeErr
		}
		changeOutputs = append(changeOutputs, &PlannedOutput{
			Record:   changeRecord,
			Policies: input.Policies.Clone(),
			Change:   true,
		})
	}

	for _, input := range b.inputs {
		input.SpendAmount = input.Record.Amount()
	}
	b.outputs = append(b.outputs, changeOutputs...)
	b.phase = BalancedPhase

	b.log.Debugw("balanced transfer", "inputs", len(b.inputs), "outputs", len(b.outputs), "change", len(changeOutputs))

	return nil
}

// Create finalizes the planned inputs and outputs into a TransferBody. With auto balancing enabled (default) it calls
// Balance first, otherwise it only verifies that the transfer is balanced.
func (b *Builder) Create(transferType TransferType) (err error) {
	if err = b.checkNotFinalized(); err != nil {
		return err
	}
	if len(b.inputs) == 0 {
		return ErrNoInputs
	}

	if b.autoBalance {
		err = b.Balance()
	} else {
		err = b.checkBalance()
	}
	if err != nil {
		return err
	}

	refs := make([]xfr.TxoRef, len(b.inputs))
	inputRecords := make([]*note.AssetRecord, len(b.inputs))
	outputRecords := make([]*note.AssetRecord, len(b.outputs))
	policies := &NotePolicies{
		InputsTracing:   make([]xfr.TracingPolicies, len(b.inputs)),
		InputsIdentity:  make([]*xfr.IdentityCommitment, len(b.inputs)),
		OutputsTracing:  make([]xfr.TracingPolicies, len(b.outputs)),
		OutputsIdentity: make([]*xfr.IdentityCommitment, len(b.outputs)),
	}
	for i, input := range b.inputs {
		refs[i] = input.Ref
		inputRecords[i] = input.Record
		policies.InputsTracing[i] = input.Policies
		policies.InputsIdentity[i] = input.IdentityCommitment
	}
	for i, output := range b.outputs {
		outputRecords[i] = output.Record
		policies.OutputsTracing[i] = output.Policies
		policies.OutputsIdentity[i] = output.IdentityCommitment
	}

	body, err := NewTransferBody(b.rng, b.engine, refs, inputRecords, outputRecords, policies, transferType)
	if err != nil {
		return err
	}

	b.operation = NewTransferOperation(body)
	b.phase = FinalizedPhase

	b.log.Debugw("created transfer body", "id", body.ID(), "transferType", transferType.String())

	return nil
}

// Sign attaches a signature of the key pair over the whole body.
func (b *Builder) Sign(keyPair ed25519.KeyPair) error {
	if b.operation == nil {
		return ErrNotFinalized
	}

	return b.signed(b.operation.Sign(keyPair))
}

// SignInput attaches a co-signature of the key pair for the input with the given index.
func (b *Builder) SignInput(keyPair ed25519.KeyPair, index int) error {
	if b.operation == nil {
		return ErrNotFinalized
	}

	return b.signed(b.operation.SignInput(keyPair, index))
}

// AttachSignature verifies and attaches a signature that was produced elsewhere.
func (b *Builder) AttachSignature(signature *IndexedSignature) error {
	if b.operation == nil {
		return ErrNotFinalized
	}

	return b.signed(b.operation.AttachSignature(signature))
}

// Transaction returns the operation with the finalized body and all signatures that were attached so far.
func (b *Builder) Transaction() (*TransferOperation, error) {
	if b.operation == nil {
		return nil, ErrNotFinalized
	}

	return b.operation, nil
}

func (b *Builder) signed(err error) error {
	if err != nil {
		return err
	}
	b.phase = SignedPhase

	return nil
}

func (b *Builder) checkNotFinalized() error {
	if b.phase >= FinalizedPhase {
		return ErrAlreadyFinalized
	}

	return nil
}

// checkBalance verifies conservation without synthesizing change. Records are consumed whole, so the full amounts of
// the inputs have to reappear in the outputs, including any change the caller added.
func (b *Builder) checkBalance() error {
	return b.checkConservation(b.recordTotals, b.outputTotals)
}

// checkConservation compares the per asset totals of the inputs with those of the outputs.
func (b *Builder) checkConservation(inputTotals, outputTotals func() (map[xfr.AssetType]uint64, error)) error {
	spent, err := inputTotals()
	if err != nil {
		return err
	}
	created, err := outputTotals()
	if err != nil {
		return err
	}

	for assetType, amount := range spent {
		if created[assetType] != amount {
			return errors.Wrapf(ErrUnbalancedTransfer, "asset %s: inputs spend %d, outputs create %d", assetType, amount, created[assetType])
		}
	}
	for assetType, amount := range created {
		if _, exists := spent[assetType]; !exists {
			return errors.Wrapf(ErrUnbalancedTransfer, "asset %s: inputs spend 0, outputs create %d", assetType, amount)
		}
	}

	return nil
}

func (b *Builder) spendTotals() (totals map[xfr.AssetType]uint64, err error) {
	totals = make(map[xfr.AssetType]uint64)
	for i, input := range b.inputs {
		if input.SpendAmount > input.Record.Amount() {
			return nil, errors.Wrapf(ErrUnbalancedTransfer, "input %d spends %d but only holds %d", i, input.SpendAmount, input.Record.Amount())
		}
		if err = addTotal(totals, input.Record.AssetType(), input.SpendAmount); err != nil {
			return nil, err
		}
	}

	return totals, nil
}

func (b *Builder) recordTotals() (totals map[xfr.AssetType]uint64, err error) {
	if _, err = b.spendTotals(); err != nil {
		return nil, err
	}

	totals = make(map[xfr.AssetType]uint64)
	for _, input := range b.inputs {
		if err = addTotal(totals, input.Record.AssetType(), input.Record.Amount()); err != nil {
			return nil, err
		}
	}

	return totals, nil
}

func (b *Builder) outputTotals() (totals map[xfr.AssetType]uint64, err error) {
	totals = make(map[xfr.AssetType]uint64)
	for _, output := range b.outputs {
		if err = addTotal(totals, output.Record.AssetType(), output.Record.Amount()); err != nil {
			return nil, err
		}
	}

	return totals, nil
}

func addTotal(totals map[xfr.AssetType]uint64, assetType xfr.AssetType, amount uint64) error {
	if totals[assetType]+amount < totals[assetType] {
		return errors.Wrapf(ErrUnbalancedTransfer, "total of asset %s overflows", assetType)
	}
	totals[assetType] += amount

	return nil
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////
