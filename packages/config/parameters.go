package config

import (
	"time"

	flag "github.com/spf13/pflag"
)

const (
	// CfgChainNetName defines the config flag of the chain net preset.
	CfgChainNetName = "chainnet.name"
	// CfgChainNetAddress defines the config flag that overrides the address of the chain net.
	CfgChainNetAddress = "chainnet.address"
	// CfgChainNetQueryPort defines the config flag that overrides the query port of the chain net.
	CfgChainNetQueryPort = "chainnet.queryPort"
	// CfgChainNetSubmitTransactionPort defines the config flag that overrides the submission port of the chain net.
	CfgChainNetSubmitTransactionPort = "chainnet.submitTransactionPort"

	// CfgTransferMinFee defines the config flag of the fee that is burned by every transfer.
	CfgTransferMinFee = "transfer.minFee"
	// CfgTransferBurnPublicKey defines the config flag of the key the fee is paid to.
	CfgTransferBurnPublicKey = "transfer.burnPublicKey"
	// CfgTransferSelection defines the config flag of the order in which owned records are selected.
	CfgTransferSelection = "transfer.selection"

	// CfgLedgerTimeout defines the config flag of the timeout of a ledger request.
	CfgLedgerTimeout = "ledger.timeout"
	// CfgLedgerCacheTTL defines the config flag of the time an opened record stays cached.
	CfgLedgerCacheTTL = "ledger.cacheTTL"
	// CfgLedgerOpenWorkers defines the config flag of the number of workers that open owned records.
	CfgLedgerOpenWorkers = "ledger.openWorkers"
)

func init() {
	RegisterFlags(flag.CommandLine)
}

// RegisterFlags adds the wallet parameters to the given flag set.
func RegisterFlags(flagSet *flag.FlagSet) {
	flagSet.String(CfgChainNetName, "local", "the chain net preset (local, mainnet, testnet, forge, qa01, qa02, qa03)")
	flagSet.String(CfgChainNetAddress, "", "overrides the address of the chain net preset")
	flagSet.Uint32(CfgChainNetQueryPort, 0, "overrides the query port of the chain net preset")
	flagSet.Uint32(CfgChainNetSubmitTransactionPort, 0, "overrides the transaction submission port of the chain net preset")

	flagSet.Uint64(CfgTransferMinFee, 10000, "the fee that is burned by every transfer")
	flagSet.String(CfgTransferBurnPublicKey, "", "the key the fee is paid to (defaults to the all-zero key)")
	flagSet.String(CfgTransferSelection, "stable", "the order in which owned records are selected (stable, largest-first)")

	flagSet.Duration(CfgLedgerTimeout, 30*time.Second, "the timeout of a ledger request")
	flagSet.Duration(CfgLedgerCacheTTL, 5*time.Minute, "the time an opened record stays cached")
	flagSet.Int(CfgLedgerOpenWorkers, 8, "the number of workers that open owned records in parallel")
}
