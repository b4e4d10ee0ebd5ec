package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/danmuck/cpitransfer/internal/config"
	"github.com/danmuck/cpitransfer/internal/logging"
	"github.com/gagliardetto/solana-go"
	"github.com/rs/zerolog/log"
)

const usage = `usage: cpictl [flags] <command> [args]

commands:
  transfer [-commit] <RECIPIENT> <AMOUNT>   build a CPI transfer, simulate it against the ledger
  balance <ADDRESS>                         print a ledger balance
  programs                                  list programs known to the simulator

flags:
`

func main() {
	logging.ConfigureRuntime()
	if err := run(os.Args[1:], os.Stdout); err != nil {
		log.Error().Err(err).Msg("cpictl failed")
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("cpictl", flag.ContinueOnError)
	fs.SetOutput(out)
	configPath := fs.String("config", "", "path to cli config (toml)")
	owner := fs.String("owner", "", "sender address; overrides config owner")
	feePayer := fs.String("fee-payer", "", "fee payer address; defaults to the owner")
	programID := fs.String("program-id", "", "transfer program address; overrides config program_id")
	ledger := fs.String("ledger", "", "ledger file used for simulation")
	blockhash := fs.String("blockhash", "", "recent blockhash placed in the message")
	fs.Usage = func() {
		fmt.Fprint(out, usage)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg := config.DefaultCLIConfig()
	if *configPath != "" {
		loaded, err := config.LoadCLIConfig(*configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if err := applyOverrides(&cfg, *owner, *feePayer, *programID, *ledger, *blockhash); err != nil {
		return err
	}
	if err := config.ValidateCLIConfig(cfg); err != nil {
		return err
	}

	rest := fs.Args()
	if len(rest) == 0 {
		fs.Usage()
		return fmt.Errorf("missing command")
	}
	switch rest[0] {
	case "transfer":
		return runTransfer(cfg, rest[1:], out)
	case "balance":
		return runBalance(cfg, rest[1:], out)
	case "programs":
		return runPrograms(cfg, out)
	default:
		fs.Usage()
		return fmt.Errorf("unknown command: %s", rest[0])
	}
}

func applyOverrides(cfg *config.CLIConfig, owner, feePayer, programID, ledger, blockhash string) error {
	var err error
	if owner != "" {
		if cfg.Owner, err = config.ParsePubkey("owner", owner); err != nil {
			return err
		}
	}
	if feePayer != "" {
		if cfg.FeePayer, err = config.ParsePubkey("fee-payer", feePayer); err != nil {
			return err
		}
	}
	if programID != "" {
		if cfg.ProgramID, err = config.ParsePubkey("program-id", programID); err != nil {
			return err
		}
	}
	if ledger != "" {
		cfg.Ledger = ledger
	}
	if blockhash != "" {
		hash, err := solana.HashFromBase58(strings.TrimSpace(blockhash))
		if err != nil {
			return fmt.Errorf("parse blockhash: %w", err)
		}
		cfg.RecentBlockhash = hash
	}
	return nil
}

func runTransfer(cfg config.CLIConfig, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("transfer", flag.ContinueOnError)
	fs.SetOutput(out)
	commit := fs.Bool("commit", false, "write the simulated balances back to the ledger")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 2 {
		return fmt.Errorf("usage: cpictl transfer [-commit] <RECIPIENT> <AMOUNT>")
	}
	recipient, err := config.ParsePubkey("recipient", fs.Arg(0))
	if err != nil {
		return err
	}
	lamports, err := parseSOL(fs.Arg(1))
	if err != nil {
		return err
	}
	if cfg.Owner.IsZero() {
		return fmt.Errorf("owner is required (config owner or -owner)")
	}

	plan, err := buildTransfer(cfg, recipient, lamports)
	if err != nil {
		return err
	}
	if err := plan.print(out); err != nil {
		return err
	}
	if cfg.Ledger == "" {
		return nil
	}
	return simulate(cfg, plan, *commit, out)
}

func runBalance(cfg config.CLIConfig, args []string, out io.Writer) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: cpictl balance <ADDRESS>")
	}
	key, err := config.ParsePubkey("address", args[0])
	if err != nil {
		return err
	}
	if cfg.Ledger == "" {
		return fmt.Errorf("ledger is required (config ledger or -ledger)")
	}
	ledger, err := config.LoadLedger(cfg.Ledger)
	if err != nil {
		return err
	}
	bank, err := bankFromLedger(ledger)
	if err != nil {
		return err
	}
	lamports := bank.Balance(key)
	fmt.Fprintf(out, "%s: %s SOL (%d lamports)\n", key, formatSOL(lamports), lamports)
	return nil
}

func runPrograms(cfg config.CLIConfig, out io.Writer) error {
	bank, err := newBank(cfg, config.LedgerFile{})
	if err != nil {
		return err
	}
	for _, entry := range bank.Programs() {
		fmt.Fprintf(out, "%-14s %s\n", entry.Name, entry.ID)
	}
	return nil
}
