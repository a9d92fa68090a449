// Package config loads the settings of the wallet from flags, an optional config file and the environment.
package config

import (
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/iotaledger/hive.go/crypto/ed25519"
	"github.com/iotaledger/hive.go/stringify"
	flag "github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/iotaledger/xfrwallet/packages/coinselection"
	"github.com/iotaledger/xfrwallet/packages/xfr"
)

// Load binds the flag set to a new viper instance. Environment variables override the config file, with dots replaced
// by underscores (e.g. CHAINNET_NAME). A missing config file is only an error if it was requested explicitly.
func Load(flagSet *flag.FlagSet, configDirPath, configName string, configRequired bool) (*viper.Viper, error) {
	v := viper.New()

	// replace dots with underscores in env
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	// read in ENV variables
	v.AutomaticEnv()

	if err := v.BindPFlags(flagSet); err != nil {
		return nil, errors.Wrap(err, "failed to bind flags")
	}

	v.SetConfigName(configName)
	v.AddConfigPath(configDirPath)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) || configRequired {
			return nil, errors.Wrapf(err, "failed to read config file %s in %s", configName, configDirPath)
		}
	}

	return v, nil
}

// Settings are the resolved settings of the wallet.
type Settings struct {
	ChainNet      ChainNet
	MinFee        uint64
	BurnPublicKey ed25519.PublicKey
	Selection     coinselection.Arrangement
	LedgerTimeout time.Duration
	CacheTTL      time.Duration
	OpenWorkers   int
}

// SettingsFromViper resolves the chain net preset, applies the overrides and parses the transfer settings.
func SettingsFromViper(v *viper.Viper) (settings *Settings, err error) {
	settings = &Settings{
		MinFee:        v.GetUint64(CfgTransferMinFee),
		BurnPublicKey: xfr.DefaultBurnPublicKey,
		LedgerTimeout: v.GetDuration(CfgLedgerTimeout),
		CacheTTL:      v.GetDuration(CfgLedgerCacheTTL),
		OpenWorkers:   v.GetInt(CfgLedgerOpenWorkers),
	}

	if settings.ChainNet, err = ChainNetFromName(v.GetString(CfgChainNetName)); err != nil {
		return nil, err
	}
	if address := v.GetString(CfgChainNetAddress); address != "" {
		settings.ChainNet.Address = strings.TrimSuffix(address, "/")
	}
	if port := v.GetUint32(CfgChainNetQueryPort); port != 0 {
		settings.ChainNet.QueryPort = port
	}
	if port := v.GetUint32(CfgChainNetSubmitTransactionPort); port != 0 {
		settings.ChainNet.SubmitTransactionPort = port
	}

	if burnPublicKey := v.GetString(CfgTransferBurnPublicKey); burnPublicKey != "" {
		if settings.BurnPublicKey, err = xfr.PublicKeyFromString(burnPublicKey); err != nil {
			return nil, errors.Wrapf(err, "invalid %s", CfgTransferBurnPublicKey)
		}
	}
	if settings.Selection, err = coinselection.ArrangementFromString(v.GetString(CfgTransferSelection)); err != nil {
		return nil, errors.Wrapf(err, "invalid %s", CfgTransferSelection)
	}

	return settings, nil
}

// String returns a human readable version of the Settings.
func (s *Settings) String() string {
	return stringify.Struct("Settings",
		stringify.StructField("chainNet", s.ChainNet),
		stringify.StructField("minFee", s.MinFee),
		stringify.StructField("burnPublicKey", s.BurnPublicKey.String()),
		stringify.StructField("selection", s.Selection.String()),
		stringify.StructField("ledgerTimeout", s.LedgerTimeout),
		stringify.StructField("cacheTTL", s.CacheTTL),
		stringify.StructField("openWorkers", s.OpenWorkers),
	)
}
