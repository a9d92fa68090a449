package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	flag "github.com/spf13/pflag"

	"github.com/iotaledger/xfrwallet/packages/config"
)

func execChainNetCommand(command *flag.FlagSet) {
	helpPtr := command.Bool("help", false, "show this help screen")

	parseCommand(command)

	if *helpPtr {
		printUsage(command)
	}

	v, err := config.Load(command, *configDirPath, *configName, *configRequired)
	if err != nil {
		printUsage(nil, err.Error())
	}
	settings, err := config.SettingsFromViper(v)
	if err != nil {
		printUsage(nil, err.Error())
	}

	w := new(tabwriter.Writer)
	w.Init(os.Stdout, 0, 8, 2, '\t', 0)
	fmt.Println()
	_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n", "ACTIVE", "NAME", "ADDRESS", "QUERY", "SUBMIT", "TENDERMINT")
	for _, chainNet := range config.ChainNets() {
		active := ""
		if chainNet.Name == settings.ChainNet.Name {
			chainNet, active = settings.ChainNet, "*"
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%d\n", active, chainNet.Name, chainNet.Address, chainNet.QueryPort, chainNet.SubmitTransactionPort, chainNet.TendermintPort)
	}
	_ = w.Flush()

	fmt.Println()
	fmt.Println(settings)
}
