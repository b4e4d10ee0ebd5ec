package main

import (
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"io"

	"github.com/danmuck/cpitransfer/internal/config"
	"github.com/danmuck/cpitransfer/internal/program"
	"github.com/danmuck/cpitransfer/internal/program/instruction"
	"github.com/danmuck/cpitransfer/internal/program/programerr"
	"github.com/danmuck/cpitransfer/internal/runtime"
	"github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"
	"github.com/rs/zerolog/log"
)

// transferPlan is a built, unsigned CPI transfer.
type transferPlan struct {
	owner     solana.PublicKey
	feePayer  solana.PublicKey
	recipient solana.PublicKey
	lamports  uint64
	ix        *solana.GenericInstruction
	data      []byte
	tx        *solana.Transaction
	message   []byte
}

func buildTransfer(cfg config.CLIConfig, recipient solana.PublicKey, lamports uint64) (*transferPlan, error) {
	ix := instruction.NewInvokedTransferInstruction(cfg.ProgramID, cfg.Owner, recipient, lamports)
	data, err := ix.Data()
	if err != nil {
		return nil, fmt.Errorf("instruction data: %w", err)
	}
	feePayer := cfg.EffectiveFeePayer()
	tx, err := solana.NewTransaction(
		[]solana.Instruction{ix},
		cfg.RecentBlockhash,
		solana.TransactionPayer(feePayer),
	)
	if err != nil {
		return nil, fmt.Errorf("build transaction: %w", err)
	}
	message, err := tx.Message.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("encode message: %w", err)
	}
	return &transferPlan{
		owner:     cfg.Owner,
		feePayer:  feePayer,
		recipient: recipient,
		lamports:  lamports,
		ix:        ix,
		data:      data,
		tx:        tx,
		message:   message,
	}, nil
}

// signers returns the distinct addresses that must sign the transaction.
func (p *transferPlan) signers() []solana.PublicKey {
	n := int(p.tx.Message.Header.NumRequiredSignatures)
	if n > len(p.tx.Message.AccountKeys) {
		n = len(p.tx.Message.AccountKeys)
	}
	out := make([]solana.PublicKey, n)
	copy(out, p.tx.Message.AccountKeys[:n])
	return out
}

func (p *transferPlan) print(out io.Writer) error {
	_, err := fmt.Fprintf(out,
		"Transfer %s SOL\n  Sender:    %s\n  Recipient: %s\n  Fee payer: %s\n  Lamports:  %d\n  Data:      %s\n  Data(b58): %s\n  Signers:   %d\n  Message:   %s\n",
		formatSOL(p.lamports),
		p.owner,
		p.recipient,
		p.feePayer,
		p.lamports,
		hex.EncodeToString(p.data),
		base58.Encode(p.data),
		len(p.signers()),
		base64.StdEncoding.EncodeToString(p.message),
	)
	return err
}

// newBank loads ledger into a simulator that also serves cfg.ProgramID.
func newBank(cfg config.CLIConfig, ledger config.LedgerFile) (*runtime.Bank, error) {
	bank, err := bankFromLedger(ledger)
	if err != nil {
		return nil, err
	}
	if !cfg.ProgramID.Equals(program.ProgramID) {
		if err := bank.RegisterProgram(cfg.ProgramID, "cpi-transfer-custom", runtime.TransferProgram()); err != nil {
			return nil, err
		}
	}
	return bank, nil
}

func simulate(cfg config.CLIConfig, plan *transferPlan, commit bool, out io.Writer) error {
	ledger, err := config.LoadLedger(cfg.Ledger)
	if err != nil {
		return err
	}
	bank, err := newBank(cfg, ledger)
	if err != nil {
		return err
	}

	signers := plan.signers()
	fee := cfg.LamportsPerSignature * uint64(len(signers))
	if balance := bank.Balance(plan.feePayer); balance < fee {
		return fmt.Errorf("fee payer %s has insufficient funds for fee: have %d lamports, need %d",
			plan.feePayer, balance, fee)
	}

	if err := bank.ExecuteInstruction(plan.ix, signers...); err != nil {
		return fmt.Errorf("simulation failed (%s): %w", programerr.Name(err), err)
	}
	log.Debug().
		Str("sender", plan.owner.String()).
		Str("recipient", plan.recipient.String()).
		Uint64("lamports", plan.lamports).
		Msg("transfer simulated")

	fmt.Fprintf(out, "Simulation: success (fee %d lamports)\n", fee)
	fmt.Fprintf(out, "  %s: %s SOL\n", plan.owner, formatSOL(bank.Balance(plan.owner)))
	fmt.Fprintf(out, "  %s: %s SOL\n", plan.recipient, formatSOL(bank.Balance(plan.recipient)))

	if !commit {
		return nil
	}
	if err := config.SaveLedger(cfg.Ledger, ledgerFromBank(bank)); err != nil {
		return err
	}
	fmt.Fprintf(out, "Committed ledger to %s\n", cfg.Ledger)
	return nil
}
