package ledger

import (
	"time"

	"github.com/cockroachdb/errors"
	"github.com/iotaledger/hive.go/logger"
	"go.uber.org/zap"
)

const (
	// DefaultTimeout is the default timeout of a single request to the ledger.
	DefaultTimeout = 30 * time.Second

	// DefaultCacheTTL is the default time an opened record stays cached.
	DefaultCacheTTL = 5 * time.Minute

	// DefaultOpenWorkers is the default number of workers that open owned records in parallel.
	DefaultOpenWorkers = 8

	// DefaultMaxConsecutiveFailures is the default number of failed requests after which the circuit breaker opens.
	DefaultMaxConsecutiveFailures = 5

	// DefaultBreakerTimeout is the default time the circuit breaker stays open.
	DefaultBreakerTimeout = 30 * time.Second
)

// Option is a function that provides an option for the Client and the RecordSource.
type Option func(options *Options) error

// WithTimeout sets the timeout of a single request.
func WithTimeout(timeout time.Duration) Option {
	return func(options *Options) error {
		if timeout <= 0 {
			return errors.Errorf("timeout must be positive, got %s", timeout)
		}
		options.Timeout = timeout
		return nil
	}
}

// WithCacheTTL sets the time an opened record stays cached.
func WithCacheTTL(ttl time.Duration) Option {
	return func(options *Options) error {
		if ttl <= 0 {
			return errors.Errorf("cache TTL must be positive, got %s", ttl)
		}
		options.CacheTTL = ttl
		return nil
	}
}

// WithOpenWorkers sets the number of workers that open owned records in parallel.
func WithOpenWorkers(workers int) Option {
	return func(options *Options) error {
		if workers <= 0 {
			return errors.Errorf("number of workers must be positive, got %d", workers)
		}
		options.OpenWorkers = workers
		return nil
	}
}

// WithCircuitBreaker configures after how many consecutive failures the ledger is considered unavailable and for how
// long.
func WithCircuitBreaker(maxConsecutiveFailures uint32, timeout time.Duration) Option {
	return func(options *Options) error {
		if maxConsecutiveFailures == 0 {
			return errors.New("maxConsecutiveFailures must be positive")
		}
		options.MaxConsecutiveFailures = maxConsecutiveFailures
		options.BreakerTimeout = timeout
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

// Options is a struct that is used to aggregate the optional parameters of the Client and the RecordSource.
type Options struct {
	Timeout                time.Duration
	CacheTTL               time.Duration
	OpenWorkers            int
	MaxConsecutiveFailures uint32
	BreakerTimeout         time.Duration
	Logger                 *logger.Logger
}

func buildOptions(options ...Option) (result *Options, err error) {
	// create options with the defaults
	result = &Options{
		Timeout:                DefaultTimeout,
		CacheTTL:               DefaultCacheTTL,
		OpenWorkers:            DefaultOpenWorkers,
		MaxConsecutiveFailures: DefaultMaxConsecutiveFailures,
		BreakerTimeout:         DefaultBreakerTimeout,
		Logger:                 zap.NewNop().Sugar(),
	}

	// apply arguments to our options
	for _, option := range options {
		if err = option(result); err != nil {
			return nil, err
		}
	}

	return result, nil
}
