package transfer

import (
	"github.com/cockroachdb/errors"
	"github.com/iotaledger/hive.go/crypto/ed25519"
	"github.com/iotaledger/hive.go/logger"
	"go.uber.org/zap"

	"github.com/iotaledger/xfrwallet/packages/coinselection"
	"github.com/iotaledger/xfrwallet/packages/xfr"
)

// DefaultMinFee is the minimum network fee (in the smallest unit of the native asset) that is burned by every transfer.
const DefaultMinFee uint64 = 10000

// Option is a function that provides an option for the Assembler.
type Option func(options *Options) error

// WithMinFee sets the fee that is burned by every transfer.
func WithMinFee(minFee uint64) Option {
	return func(options *Options) error {
		if minFee == 0 {
			return errors.New("minimum fee must be positive")
		}
		options.MinFee = minFee
		return nil
	}
}

// WithBurnPublicKey sets the unspendable key the fee is paid to.
func WithBurnPublicKey(publicKey ed25519.PublicKey) Option {
	return func(options *Options) error {
		options.BurnPublicKey = publicKey
		return nil
	}
}

// WithFeeAssetType sets the asset type the fee is paid in.
func WithFeeAssetType(assetType xfr.AssetType) Option {
	return func(options *Options) error {
		options.FeeAssetType = assetType
		return nil
	}
}

// WithArrangement sets the order in which owned records are considered for selection.
func WithArrangement(arrangement coinselection.Arrangement) Option {
	return func(options *Options) error {
		options.Arrangement = arrangement
		return nil
	}
}

// WithMetrics sets the metrics that count assembled transfers.
func WithMetrics(metrics *Metrics) Option {
	return func(options *Options) error {
		options.Metrics = metrics
		return nil
	}
}

// WithLogger sets the logger.
func WithLogger(log *logger.Logger) Option {
	return func(options *Options) error {
		if log != nil {
			options.Logger = log
		}
		return nil
	}
}

// Options is a struct that is used to aggregate the optional parameters of the Assembler.
type Options struct {
	MinFee        uint64
	BurnPublicKey ed25519.PublicKey
	FeeAssetType  xfr.AssetType
	Arrangement   coinselection.Arrangement
	Metrics       *Metrics
	Logger        *logger.Logger
}

func buildOptions(options ...Option) (result *Options, err error) {
	// create options with the defaults
	result = &Options{
		MinFee:        DefaultMinFee,
		BurnPublicKey: xfr.DefaultBurnPublicKey,
		FeeAssetType:  xfr.NativeAssetType,
		Arrangement:   coinselection.StableArrangement,
		Logger:        zap.NewNop().Sugar(),
	}

	// apply arguments to our options
	for _, option := range options {
		if err = option(result); err != nil {
			return nil, err
		}
	}

	if result.Metrics == nil {
		if result.Metrics, err = NewMetrics(nil); err != nil {
			return nil, err
		}
	}

	return result, nil
}
