// Package coinselection picks the owned records that fund a transfer.
package coinselection

import (
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/iotaledger/hive.go/logger"
	"github.com/iotaledger/hive.go/stringify"
	"go.uber.org/zap"

	"github.com/iotaledger/xfrwallet/packages/xfr"
)

// ErrInsufficientBalance is returned if the owned records can not cover the needs.
var ErrInsufficientBalance = errors.New("insufficient balance")

// region OwnedRecord //////////////////////////////////////////////////////////////////////////////////////////////////

// OwnedRecord is an unspent, opened record of the wallet together with its ledger sequence number.
type OwnedRecord struct {
	SID    xfr.TxoSID
	Record *xfr.OpenRecord
}

// String returns a human readable version of the OwnedRecord.
func (o *OwnedRecord) String() string {
	return stringify.Struct("OwnedRecord",
		stringify.StructField("sid", uint64(o.SID)),
		stringify.StructField("record", o.Record),
	)
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////

// region Spend ////////////////////////////////////////////////////////////////////////////////////////////////////////

// Spend is a selected record and the part of its amount that is consumed by the transfer.
type Spend struct {
	SID    xfr.TxoSID
	Record *xfr.OpenRecord
	Amount uint64
}

// Change returns the part of the record that is not consumed and has to be paid back to the owner.
func (s *Spend) Change() uint64 {
	return s.Record.Amount - s.Amount
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////

// region Selection ////////////////////////////////////////////////////////////////////////////////////////////////////

// Selection is the ordered list of records that cover the needs of a transfer.
type Selection struct {
	Spends []*Spend
}

// Totals returns the consumed amount per asset type.
func (s *Selection) Totals() map[xfr.AssetType]uint64 {
	totals := make(map[xfr.AssetType]uint64)
	for _, spend := range s.Spends {
		totals[spend.Record.AssetType] += spend.Amount
	}

	return totals
}

// Change returns the implicit change per asset type.
func (s *Selection) Change() map[xfr.AssetType]uint64 {
	change := make(map[xfr.AssetType]uint64)
	for _, spend := range s.Spends {
		if spend.Change() != 0 {
			change[spend.Record.AssetType] += spend.Change()
		}
	}

	return change
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////

// region Selector /////////////////////////////////////////////////////////////////////////////////////////////////////

// Selector greedily collects records until every need is covered.
type Selector struct {
	arrangement Arrangement
	log         *logger.Logger
}

// New creates a new Selector.
func New(options ...Option) (selector *Selector, err error) {
	opts, err := buildOptions(options...)
	if err != nil {
		return nil, err
	}

	return &Selector{
		arrangement: opts.Arrangement,
		log:         opts.Logger,
	}, nil
}

// Select walks the records in the order of the configured Arrangement. Every record of an asset type that still has an
// open need is consumed up to the remaining need and the walk stops as soon as all needs are covered. A record is never
// split into more than one change.
func (s *Selector) Select(records []*OwnedRecord, needs Needs) (selection *Selection, err error) {
	remaining := make(map[xfr.AssetType]uint64, len(needs))
	openNeeds := 0
	for _, need := range needs {
		if need.Amount == 0 {
			continue
		}
		if _, exists := remaining[need.AssetType]; !exists {
			openNeeds++
		}
		remaining[need.AssetType] += need.Amount
	}

	selection = &Selection{}
	for _, record := range s.arrangement.arrange(records) {
		if openNeeds == 0 {
			break
		}

		need := remaining[record.Record.AssetType]
		if need == 0 || record.Record.Amount == 0 {
			continue
		}

		spend := &Spend{SID: record.SID, Record: record.Record, Amount: record.Record.Amount}
		if spend.Amount > need {
			spend.Amount = need
		}
		selection.Spends = append(selection.Spends, spend)

		remaining[record.Record.AssetType] -= spend.Amount
		if remaining[record.Record.AssetType] == 0 {
			openNeeds--
		}
	}

	if openNeeds != 0 {
		return nil, insufficientBalanceError(records, needs)
	}

	s.log.Debugw("selected records", "needs", needs.String(), "spends", len(selection.Spends), "arrangement", s.arrangement.String())

	return selection, nil
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////

// region Options //////////////////////////////////////////////////////////////////////////////////////////////////////

// Option is a function that provides an option for the Selector.
type Option func(options *Options) error

// WithArrangement sets the order in which the records are visited.
func WithArrangement(arrangement Arrangement) Option {
	return func(options *Options) error {
		if arrangement > LargestFirstArrangement {
			return errors.Errorf("unknown selection arrangement %d", arrangement)
		}
		options.Arrangement = arrangement
		return nil
	}
}

// WithLogger sets the logger that is used for debug output.
func WithLogger(log *logger.Logger) Option {
	return func(options *Options) error {
		if log != nil {
			options.Logger = log
		}
		return nil
	}
}

// Options is a struct that is used to aggregate the optional parameters of the Selector.
type Options struct {
	Arrangement Arrangement
	Logger      *logger.Logger
}

func buildOptions(options ...Option) (result *Options, err error) {
	result = &Options{
		Arrangement: StableArrangement,
		Logger:      zap.NewNop().Sugar(),
	}

	for _, option := range options {
		if err = option(result); err != nil {
			return nil, err
		}
	}

	return result, nil
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////

func insufficientBalanceError(records []*OwnedRecord, needs Needs) error {
	available := make(map[xfr.AssetType]uint64)
	for _, record := range records {
		available[record.Record.AssetType] += record.Record.Amount
	}

	var shortfalls []string
	for _, need := range needs {
		if available[need.AssetType] < need.Amount {
			shortfalls = append(shortfalls, "asset "+need.AssetType.String()+" needs "+strconv.FormatUint(need.Amount, 10)+
				" but only "+strconv.FormatUint(available[need.AssetType], 10)+" is available")
		}
	}

	return errors.Wrapf(ErrInsufficientBalance, "%s", strings.Join(shortfalls, ", "))
}
