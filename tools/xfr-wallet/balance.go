package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	flag "github.com/spf13/pflag"

	"github.com/iotaledger/xfrwallet/packages/xfr"
)

func execBalanceCommand(command *flag.FlagSet) {
	helpPtr := command.Bool("help", false, "show this help screen")
	recordsPtr := command.Bool("records", false, "list every owned record")

	parseCommand(command)

	if *helpPtr {
		printUsage(command)
	}

	withDependencies(command, func(deps dependencies) {
		defer closeSource(deps)

		fmt.Println("Fetching balance...")

		balance, err := deps.Source.OwnedBalance(context.Background(), deps.KeyPair)
		if err != nil {
			printUsage(nil, err.Error())
		}

		assetTypes := make([]xfr.AssetType, 0, len(balance))
		for assetType := range balance {
			assetTypes = append(assetTypes, assetType)
		}
		sort.Slice(assetTypes, func(i, j int) bool {
			return assetTypes[i].IsNative() || (!assetTypes[j].IsNative() && assetTypes[i].Hex() < assetTypes[j].Hex())
		})

		// initialize tab writer
		w := new(tabwriter.Writer)
		w.Init(os.Stdout, 0, 8, 2, '\t', 0)
		// print header
		fmt.Println()
		fmt.Println("Available Balances of " + deps.KeyPair.PublicKey.String())
		fmt.Println()
		_, _ = fmt.Fprintf(w, "%s\t%s\n", "BALANCE", "ASSET TYPE")
		_, _ = fmt.Fprintf(w, "%s\t%s\n", "---------------", "------------------------------------------------------------------")

		// print empty if no balances founds
		if len(assetTypes) == 0 {
			_, _ = fmt.Fprintf(w, "%s\t%s\n", "<EMPTY>", "<EMPTY>")
		}
		for _, assetType := range assetTypes {
			_, _ = fmt.Fprintf(w, "%s\t%s\n", formatBalance(balance[assetType], assetType), assetType)
		}
		_ = w.Flush()

		if !*recordsPtr {
			return
		}

		// opened records are cached by the source
		ownedRecords, err := deps.Source.OwnedRecords(context.Background(), deps.KeyPair)
		if err != nil {
			printUsage(nil, err.Error())
		}

		fmt.Println()
		fmt.Println("Owned Records")
		fmt.Println()
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", "SID", "AMOUNT", "ASSET TYPE", "CONFIDENTIALITY")
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", "-----", "---------------", "------------------------------------------------------------------", "---------------")
		for _, ownedRecord := range ownedRecords {
			_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%s\n",
				ownedRecord.SID,
				formatBalance(ownedRecord.Record.Amount, ownedRecord.Record.AssetType),
				ownedRecord.Record.AssetType,
				ownedRecord.Record.RecordType(),
			)
		}
		_ = w.Flush()
	})
}

// formatBalance renders native amounts with their decimal places and all other amounts in their smallest unit.
func formatBalance(amount uint64, assetType xfr.AssetType) string {
	if assetType.IsNative() {
		return xfr.FormatAmount(amount, xfr.NativeDecimals)
	}

	return xfr.FormatAmount(amount, 0)
}
