package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/cockroachdb/errors"
	flag "github.com/spf13/pflag"

	"github.com/iotaledger/xfrwallet/client/transfer"
	"github.com/iotaledger/xfrwallet/packages/xfr"
	"github.com/iotaledger/xfrwallet/packages/xfr/prng"
)

func execTransferCommand(command *flag.FlagSet) {
	helpPtr := command.Bool("help", false, "show this help screen")
	targetsPtr := command.StringArray("to", nil, "recipient and amount in the form <public key>:<amount> (repeatable)")
	assetPtr := command.String("asset", "FRA", "the asset type to transfer (FRA, 0x hex or base58)")
	decimalsPtr := command.Int32("decimals", xfr.NativeDecimals, "the number of decimal places of the amounts")
	confidentialityPtr := command.String("confidentiality", "none", "what to hide in the recipient records (none, amount, asset, amount-asset)")
	yesPtr := command.BoolP("yes", "y", false, "submit without asking for confirmation")

	parseCommand(command)

	if *helpPtr {
		printUsage(command)
	}
	if len(*targetsPtr) == 0 {
		printUsage(command, "at least one --to has to be set")
	}

	targets, err := parseTargets(*targetsPtr, *decimalsPtr)
	if err != nil {
		printUsage(command, err.Error())
	}
	assetType, err := xfr.AssetTypeFromString(*assetPtr)
	if err != nil {
		printUsage(command, err.Error())
	}
	recordType, err := xfr.RecordTypeFromString(*confidentialityPtr)
	if err != nil {
		printUsage(command, err.Error())
	}

	withDependencies(command, func(deps dependencies) {
		defer closeSource(deps)

		rng, err := prng.FromEntropy()
		if err != nil {
			printUsage(nil, err.Error())
		}

		operation, err := deps.Assembler.GenTransferOp(context.Background(), deps.KeyPair, targets, &assetType, recordType, rng)
		if err != nil {
			printUsage(nil, err.Error())
		}

		fmt.Println()
		fmt.Println("Transfer from " + deps.KeyPair.PublicKey.String() + " on " + deps.Settings.ChainNet.Name)
		for _, target := range targets {
			fmt.Printf("  %s %s -> %s\n", xfr.FormatAmount(target.Amount, *decimalsPtr), assetType, target.Recipient)
		}
		fmt.Printf("  %s %s fee\n", xfr.FormatAmount(deps.Settings.MinFee, xfr.NativeDecimals), xfr.NativeAssetType)
		fmt.Println()

		if !*yesPtr {
			confirmed := false
			if err = survey.AskOne(&survey.Confirm{Message: "Submit the transfer?"}, &confirmed); err != nil {
				printUsage(nil, err.Error())
			}
			if !confirmed {
				fmt.Println("Transfer aborted.")
				return
			}
		}

		handle, err := deps.Source.SubmitTransaction(context.Background(), operation)
		if err != nil {
			printUsage(nil, err.Error())
		}

		fmt.Println("Transfer submitted: " + handle)
	})
}

// parseTargets parses the <public key>:<amount> form of the --to flag.
func parseTargets(encodedTargets []string, decimals int32) (targets []transfer.Target, err error) {
	targets = make([]transfer.Target, len(encodedTargets))
	for i, encodedTarget := range encodedTargets {
		separator := strings.LastIndex(encodedTarget, ":")
		if separator == -1 {
			return nil, errors.Errorf("target %q is not of the form <public key>:<amount>", encodedTarget)
		}

		if targets[i].Recipient, err = xfr.PublicKeyFromString(encodedTarget[:separator]); err != nil {
			return nil, errors.Wrapf(err, "invalid recipient in %q", encodedTarget)
		}
		if targets[i].Amount, err = xfr.ParseAmount(encodedTarget[separator+1:], decimals); err != nil {
			return nil, err
		}
	}

	return targets, nil
}
