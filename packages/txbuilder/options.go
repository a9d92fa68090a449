package txbuilder

import (
	"github.com/iotaledger/hive.go/logger"
	"go.uber.org/zap"
)

// Option is a function that provides an option for the Builder.
type Option func(options *Options) error

// WithAutoBalance defines if Create synthesizes change outputs (default) or only verifies that the transfer balances.
func WithAutoBalance(autoBalance bool) Option {
	return func(options *Options) error {
		options.AutoBalance = autoBalance
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

// Options is a struct that is used to aggregate the optional parameters of the Builder.
type Options struct {
	AutoBalance bool
	Logger      *logger.Logger
}

func buildOptions(options ...Option) (result *Options, err error) {
	// create options with the defaults
	result = &Options{
		AutoBalance: true,
		Logger:      zap.NewNop().Sugar(),
	}

	// apply arguments to our options
	for _, option := range options {
		if err = option(result); err != nil {
			return nil, err
		}
	}

	return result, nil
}
