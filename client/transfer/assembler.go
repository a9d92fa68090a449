// Package transfer assembles complete, signed transfer operations from the records owned by a key.
package transfer

import (
	"context"
	"io"

	"github.com/cockroachdb/errors"
	"github.com/iotaledger/hive.go/crypto/ed25519"
	"github.com/iotaledger/hive.go/logger"

	"github.com/iotaledger/xfrwallet/packages/coinselection"
	"github.com/iotaledger/xfrwallet/packages/txbuilder"
	"github.com/iotaledger/xfrwallet/packages/xfr"
	"github.com/iotaledger/xfrwallet/packages/xfr/note"
)

// OwnedRecordSource provides the opened records owned by a key pair.
type OwnedRecordSource interface {
	OwnedRecords(ctx context.Context, keyPair ed25519.KeyPair) ([]*coinselection.OwnedRecord, error)
}

// Target is a single payment of a transfer.
type Target struct {
	Recipient ed25519.PublicKey
	Amount    uint64
}

// Assembler selects the records of an owner, pays the targets and the fee, balances the transfer and signs it.
type Assembler struct {
	engine   note.Engine
	source   OwnedRecordSource
	selector *coinselection.Selector
	options  *Options
	log      *logger.Logger
}

// New creates an Assembler that fetches the owned records from source. The source may be nil if only
// GenTransferOpFromRecords is used.
func New(engine note.Engine, source OwnedRecordSource, options ...Option) (*Assembler, error) {
	if engine == nil {
		return nil, errors.New("note engine must not be nil")
	}

	opts, err := buildOptions(options...)
	if err != nil {
		return nil, err
	}

	selector, err := coinselection.New(coinselection.WithArrangement(opts.Arrangement), coinselection.WithLogger(opts.Logger))
	if err != nil {
		return nil, err
	}

	return &Assembler{
		engine:   engine,
		source:   source,
		selector: selector,
		options:  opts,
		log:      opts.Logger,
	}, nil
}

// GenTransferOp pays the targets from the records owned by owner. The asset type defaults to the fee asset type if nil.
// Every target output uses the given record type, the fee is always paid in clear to the burn key.
func (a *Assembler) GenTransferOp(ctx context.Context, owner ed25519.KeyPair, targets []Target, assetType *xfr.AssetType, recordType xfr.RecordType, rng io.Reader) (*txbuilder.TransferOperation, error) {
	if a.source == nil {
		return nil, errors.New("assembler has no owned record source")
	}

	ownedRecords, err := a.source.OwnedRecords(ctx, owner)
	if err != nil {
		a.options.Metrics.onFailed("source")
		return nil, err
	}

	return a.GenTransferOpFromRecords(owner, ownedRecords, targets, assetType, recordType, rng)
}

// GenTransferOpFromRecords works like GenTransferOp but uses the given records instead of asking the source.
func (a *Assembler) GenTransferOpFromRecords(owner ed25519.KeyPair, ownedRecords []*coinselection.OwnedRecord, targets []Target, assetType *xfr.AssetType, recordType xfr.RecordType, rng io.Reader) (operation *txbuilder.TransferOperation, err error) {
	transferAsset := a.options.FeeAssetType
	if assetType != nil {
		transferAsset = *assetType
	}

	needs, err := a.needs(transferAsset, targets)
	if err != nil {
		a.options.Metrics.onFailed("amount")
		return nil, err
	}

	selection, err := a.selector.Select(ownedRecords, needs)
	if err != nil {
		a.options.Metrics.onFailed("selection")
		return nil, err
	}

	if operation, err = a.build(owner, selection, targets, transferAsset, recordType, rng); err != nil {
		a.options.Metrics.onFailed("build")
		return nil, err
	}
	a.options.Metrics.onAssembled(recordType.String(), len(selection.Spends))

	a.log.Infow("assembled transfer",
		"body", operation.Body().ID(),
		"assetType", transferAsset.String(),
		"targets", len(targets),
		"inputs", len(selection.Spends),
		"outputs", len(operation.Body().Outputs()),
	)

	return operation, nil
}

func (a *Assembler) needs(transferAsset xfr.AssetType, targets []Target) (coinselection.Needs, error) {
	var total uint64
	for _, target := range targets {
		if total+target.Amount < total {
			return nil, errors.Errorf("total amount of %d targets overflows", len(targets))
		}
		total += target.Amount
	}

	return coinselection.NewNeeds(transferAsset, total, a.options.FeeAssetType, a.options.MinFee)
}

func (a *Assembler) build(owner ed25519.KeyPair, selection *coinselection.Selection, targets []Target, transferAsset xfr.AssetType, recordType xfr.RecordType, rng io.Reader) (*txbuilder.TransferOperation, error) {
	builder, err := txbuilder.New(a.engine, rng, txbuilder.WithLogger(a.log))
	if err != nil {
		return nil, err
	}

	for _, spend := range selection.Spends {
		if err = builder.AddInput(xfr.NewAbsoluteTxoRef(spend.SID), spend.Record, nil, nil, spend.Amount); err != nil {
			return nil, err
		}
	}

	feeTemplate := xfr.NewTemplate(a.options.MinFee, a.options.FeeAssetType, xfr.NonConfidentialAmountNonConfidentialAssetType, a.options.BurnPublicKey)
	if err = builder.AddOutput(feeTemplate, nil, nil, nil); err != nil {
		return nil, err
	}
	for _, target := range targets {
		if err = builder.AddOutput(xfr.NewTemplate(target.Amount, transferAsset, recordType, target.Recipient), nil, nil, nil); err != nil {
			return nil, err
		}
	}

	if err = builder.Balance(); err != nil {
		return nil, err
	}
	if err = builder.Create(txbuilder.StandardTransferType); err != nil {
		return nil, err
	}
	if err = builder.Sign(owner); err != nil {
		return nil, err
	}

	return builder.Transaction()
}
