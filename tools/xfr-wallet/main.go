package main

import (
	"fmt"
	"os"
	"path/filepath"

	flag "github.com/spf13/pflag"
)

// Exit should be used inside panic instead of os.Exit(). This will allow to call deferred statements.
type Exit struct{ Code int }

func main() {
	defer handleExit()

	printBanner()

	// check if parameter counts is large enough
	if len(os.Args) < 2 {
		printUsage(nil)
	}

	// define sub commands
	transferCommand := newCommand("transfer")
	balanceCommand := newCommand("balance")
	chainNetCommand := newCommand("chainnet")

	// switch logic according to provided sub command
	switch os.Args[1] {
	case "transfer":
		execTransferCommand(transferCommand)
	case "balance":
		execBalanceCommand(balanceCommand)
	case "chainnet":
		execChainNetCommand(chainNetCommand)
	case "help":
		printUsage(nil)
	default:
		printUsage(nil, "unknown [COMMAND]: "+os.Args[1])
	}
}

func printBanner() {
	fmt.Println("XFR Wallet 0.1")
}

// newCommand creates the flag set of a sub command that also carries the global wallet parameters.
func newCommand(name string) *flag.FlagSet {
	command := flag.NewFlagSet(name, flag.ExitOnError)
	command.AddFlagSet(flag.CommandLine)

	return command
}

func handleExit() {
	if r := recover(); r != nil {
		if exit, ok := r.(Exit); ok {
			os.Exit(exit.Code)
		}
		panic(r)
	}
}

func printUsage(command *flag.FlagSet, optionalErrorMessage ...string) {
	if len(optionalErrorMessage) >= 1 {
		_, _ = fmt.Fprintf(os.Stderr, "\n")
		_, _ = fmt.Fprintf(os.Stderr, "ERROR:\n  "+optionalErrorMessage[0]+"\n")
	}

	if command == nil {
		fmt.Println()
		fmt.Println("USAGE:")
		fmt.Println("  " + filepath.Base(os.Args[0]) + " [COMMAND]")
		fmt.Println()
		fmt.Println("COMMANDS:")
		fmt.Println("  transfer")
		fmt.Println("        pay one or more recipients from the records owned by the wallet key")
		fmt.Println("  balance")
		fmt.Println("        show the balances owned by the wallet key")
		fmt.Println("  chainnet")
		fmt.Println("        show the available chain nets and the active one")
		fmt.Println("  help")
		fmt.Println("        display this help screen")

		flag.PrintDefaults()

		if len(optionalErrorMessage) >= 1 {
			panic(Exit{1})
		}
		panic(Exit{0})
	}

	fmt.Println()
	fmt.Println("USAGE:")
	// sub commands are only dispatched from os.Args[1]
	fmt.Println("  " + filepath.Base(os.Args[0]) + " " + os.Args[1] + " [OPTIONS]")
	fmt.Println()
	fmt.Println("OPTIONS:")
	command.PrintDefaults()

	if len(optionalErrorMessage) >= 1 {
		panic(Exit{1})
	}
	panic(Exit{0})
}
