package config

import (
	"sort"
	"strconv"

	"github.com/cockroachdb/errors"
	"github.com/iotaledger/hive.go/stringify"
)

const (
	// DefaultQueryPort is the port of the query API of a ledger node.
	DefaultQueryPort = 8668

	// DefaultSubmitTransactionPort is the port of the transaction submission API of a ledger node.
	DefaultSubmitTransactionPort = 8669

	// DefaultTendermintPort is the port of the consensus RPC of a ledger node.
	DefaultTendermintPort = 26657

	// DefaultWeb3RPCPort is the port of the web3 RPC of a ledger node.
	DefaultWeb3RPCPort = 8545
)

// ErrUnknownChainNet is returned if a chain net name has no preset.
var ErrUnknownChainNet = errors.New("unknown chain net")

// ChainNet describes the network a wallet talks to.
type ChainNet struct {
	Name                  string `json:"chain_net_name" mapstructure:"name"`
	Address               string `json:"chain_net_address" mapstructure:"address"`
	QueryPort             uint32 `json:"query_port" mapstructure:"queryPort"`
	SubmitTransactionPort uint32 `json:"submit_transaction_port" mapstructure:"submitTransactionPort"`
	TendermintPort        uint32 `json:"tendermint_port" mapstructure:"tendermintPort"`
	Web3RPCPort           uint32 `json:"web3_rpc_port" mapstructure:"web3RPCPort"`
}

// QueryURL returns the base URL of the query API.
func (c ChainNet) QueryURL() string {
	return c.Address + ":" + strconv.FormatUint(uint64(c.QueryPort), 10)
}

// SubmitURL returns the base URL of the transaction submission API.
func (c ChainNet) SubmitURL() string {
	return c.Address + ":" + strconv.FormatUint(uint64(c.SubmitTransactionPort), 10)
}

// String returns a human readable version of the ChainNet.
func (c ChainNet) String() string {
	return stringify.Struct("ChainNet",
		stringify.StructField("name", c.Name),
		stringify.StructField("address", c.Address),
		stringify.StructField("queryPort", c.QueryPort),
		stringify.StructField("submitTransactionPort", c.SubmitTransactionPort),
		stringify.StructField("tendermintPort", c.TendermintPort),
		stringify.StructField("web3RPCPort", c.Web3RPCPort),
	)
}

var chainNets = map[string]ChainNet{
	"local":   newChainNet("local", "http://127.0.0.1"),
	"mainnet": newChainNet("mainnet", "https://prod-mainnet.prod.findora.org"),
	"testnet": newChainNet("testnet", "https://prod-testnet.prod.findora.org"),
	"forge":   newChainNet("forge", "https://prod-forge.prod.findora.org"),
	"qa01":    newChainNet("qa01", "https://dev-qa01.dev.findora.org"),
	"qa02":    newChainNet("qa02", "https://dev-qa02.dev.findora.org"),
	"qa03":    newChainNet("qa03", "https://dev-qa03.dev.findora.org"),
}

// ChainNetFromName returns the preset with the given name.
func ChainNetFromName(name string) (ChainNet, error) {
	chainNet, exists := chainNets[name]
	if !exists {
		return ChainNet{}, errors.Wrapf(ErrUnknownChainNet, "%q", name)
	}

	return chainNet, nil
}

// ChainNets returns all presets ordered by name.
func ChainNets() []ChainNet {
	result := make([]ChainNet, 0, len(chainNets))
	for _, chainNet := range chainNets {
		result = append(result, chainNet)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})

	return result
}

func newChainNet(name, address string) ChainNet {
	return ChainNet{
		Name:                  name,
		Address:               address,
		QueryPort:             DefaultQueryPort,
		SubmitTransactionPort: DefaultSubmitTransactionPort,
		TendermintPort:        DefaultTendermintPort,
		Web3RPCPort:           DefaultWeb3RPCPort,
	}
}
