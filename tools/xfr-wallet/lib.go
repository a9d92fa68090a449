package main

import (
	"os"

	"github.com/cockroachdb/errors"
	"github.com/iotaledger/hive.go/configuration"
	"github.com/iotaledger/hive.go/crypto/ed25519"
	"github.com/iotaledger/hive.go/logger"
	"github.com/mr-tron/base58"
	"github.com/prometheus/client_golang/prometheus"
	flag "github.com/spf13/pflag"
	"go.uber.org/dig"

	"github.com/iotaledger/xfrwallet/client/ledger"
	"github.com/iotaledger/xfrwallet/client/transfer"
	"github.com/iotaledger/xfrwallet/packages/config"
	"github.com/iotaledger/xfrwallet/packages/xfr"
	"github.com/iotaledger/xfrwallet/packages/xfr/note"
)

// seedEnv is the environment variable that holds the base58 encoded seed of the wallet key.
const seedEnv = "XFR_WALLET_SEED"

var (
	// flags
	configName     = flag.StringP("config", "c", "config", "Filename of the config file without the file extension")
	configDirPath  = flag.StringP("config-dir", "d", ".", "Path to the directory containing the config file")
	configRequired = flag.Bool("require-config", false, "Fail if the config file is missing")
	seedString     = flag.String("seed", "", "base58 encoded seed of the wallet key (defaults to $"+seedEnv+")")
)

var errSeedMissing = errors.New("no seed given: use --seed or $" + seedEnv)

// code contract (make sure the type implements all required methods)
var _ transfer.OwnedRecordSource = &ledger.RecordSource{}

type dependencies struct {
	dig.In

	Settings  *config.Settings
	KeyPair   ed25519.KeyPair
	Source    *ledger.RecordSource
	Assembler *transfer.Assembler
	Logger    *logger.Logger
}

// parseCommand parses the arguments of the sub command.
func parseCommand(command *flag.FlagSet) {
	if err := command.Parse(os.Args[2:]); err != nil {
		printUsage(command, err.Error())
	}
}

// buildContainer wires the wallet components of a parsed sub command.
func buildContainer(command *flag.FlagSet) *dig.Container {
	container := dig.New()
	mustProvide(container, func() (*config.Settings, error) {
		v, err := config.Load(command, *configDirPath, *configName, *configRequired)
		if err != nil {
			return nil, err
		}

		return config.SettingsFromViper(v)
	})
	mustProvide(container, func() (*logger.Logger, error) {
		if err := logger.InitGlobalLogger(configuration.New()); err != nil {
			return nil, err
		}

		return logger.NewLogger("XfrWallet"), nil
	})
	mustProvide(container, loadKeyPair)
	mustProvide(container, func() note.Engine {
		return note.NewReference()
	})
	mustProvide(container, func(settings *config.Settings, log *logger.Logger) (*ledger.Client, error) {
		return ledger.NewClient(settings.ChainNet.QueryURL(), settings.ChainNet.SubmitURL(),
			ledger.WithTimeout(settings.LedgerTimeout),
			ledger.WithLogger(log),
		)
	})
	mustProvide(container, func(client *ledger.Client, engine note.Engine, settings *config.Settings, log *logger.Logger) (*ledger.RecordSource, error) {
		return ledger.NewRecordSource(client, engine,
			ledger.WithCacheTTL(settings.CacheTTL),
			ledger.WithOpenWorkers(settings.OpenWorkers),
			ledger.WithLogger(log),
		)
	})
	mustProvide(container, func() (*transfer.Metrics, error) {
		return transfer.NewMetrics(prometheus.DefaultRegisterer)
	})
	mustProvide(container, func(engine note.Engine, source *ledger.RecordSource, metrics *transfer.Metrics, settings *config.Settings, log *logger.Logger) (*transfer.Assembler, error) {
		return transfer.New(engine, source,
			transfer.WithMinFee(settings.MinFee),
			transfer.WithBurnPublicKey(settings.BurnPublicKey),
			transfer.WithArrangement(settings.Selection),
			transfer.WithMetrics(metrics),
			transfer.WithLogger(log),
		)
	})

	return container
}

// withDependencies resolves the wallet components and passes them to fn.
func withDependencies(command *flag.FlagSet, fn func(deps dependencies)) {
	if err := buildContainer(command).Invoke(fn); err != nil {
		printUsage(command, dig.RootCause(err).Error())
	}
}

func loadKeyPair() (ed25519.KeyPair, error) {
	encodedSeed := *seedString
	if encodedSeed == "" {
		encodedSeed = os.Getenv(seedEnv)
	}
	if encodedSeed == "" {
		return ed25519.KeyPair{}, errSeedMissing
	}

	seed, err := base58.Decode(encodedSeed)
	if err != nil {
		return ed25519.KeyPair{}, err
	}

	return xfr.KeyPairFromSeed(seed)
}

func mustProvide(container *dig.Container, constructor interface{}) {
	if err := container.Provide(constructor); err != nil {
		panic(err)
	}
}

func closeSource(deps dependencies) {
	if err := deps.Source.Close(); err != nil {
		deps.Logger.Warnf("failed to close record source: %s", err)
	}
}
