package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/danmuck/cpitransfer/internal/config"
	"github.com/danmuck/cpitransfer/internal/testutil/testlog"
	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/require"
)

const (
	ownerAddr     = "9xQeWvG816bUx9EPjHmaT23yvVM2ZWbrrpZb9PusVFin"
	recipientAddr = "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"
)

func writeWorkspace(t *testing.T) (cliPath, ledgerPath string) {
	t.Helper()
	dir := t.TempDir()
	cliPath = filepath.Join(dir, "config.toml")
	ledgerPath = filepath.Join(dir, "ledger.toml")
	require.NoError(t, config.WriteTemplate(cliPath, "cli", false))
	require.NoError(t, config.WriteTemplate(ledgerPath, "ledger", false))
	return cliPath, ledgerPath
}

func ledgerBalance(t *testing.T, path, addr string) uint64 {
	t.Helper()
	ledger, err := config.LoadLedger(path)
	require.NoError(t, err)
	for _, acc := range ledger.Accounts {
		if acc.Pubkey == addr {
			return acc.Lamports
		}
	}
	return 0
}

func TestTransferPrintsInstruction(t *testing.T) {
	testlog.Start(t)
	var out bytes.Buffer
	err := run([]string{"-owner", ownerAddr, "transfer", recipientAddr, "1.5"}, &out)
	require.NoError(t, err)

	text := out.String()
	require.Contains(t, text, "Transfer 1.5 SOL")
	require.Contains(t, text, "Sender:    "+ownerAddr)
	require.Contains(t, text, "Recipient: "+recipientAddr)
	require.Contains(t, text, "Lamports:  1500000000")
	require.Contains(t, text, "Data:      00002f685900000000")
	require.Contains(t, text, "Signers:   1")
	require.NotContains(t, text, "Simulation")
}

func TestTransferSimulateAndCommit(t *testing.T) {
	testlog.Start(t)
	cliPath, ledgerPath := writeWorkspace(t)

	var out bytes.Buffer
	err := run([]string{"-config", cliPath, "transfer", "-commit", recipientAddr, "1.5"}, &out)
	require.NoError(t, err)
	require.Contains(t, out.String(), "Simulation: success (fee 5000 lamports)")
	require.Contains(t, out.String(), "Committed ledger")

	require.Equal(t, uint64(8_500_000_000), ledgerBalance(t, ledgerPath, ownerAddr))
	require.Equal(t, uint64(1_500_000_000), ledgerBalance(t, ledgerPath, recipientAddr))
}

func TestTransferSimulateWithoutCommitLeavesLedger(t *testing.T) {
	testlog.Start(t)
	cliPath, ledgerPath := writeWorkspace(t)

	var out bytes.Buffer
	err := run([]string{"-config", cliPath, "transfer", recipientAddr, "1"}, &out)
	require.NoError(t, err)
	require.Contains(t, out.String(), "Simulation: success")
	require.Equal(t, uint64(10_000_000_000), ledgerBalance(t, ledgerPath, ownerAddr))
	require.Equal(t, uint64(0), ledgerBalance(t, ledgerPath, recipientAddr))
}

func TestTransferInsufficientFunds(t *testing.T) {
	testlog.Start(t)
	cliPath, ledgerPath := writeWorkspace(t)

	var out bytes.Buffer
	err := run([]string{"-config", cliPath, "transfer", "-commit", recipientAddr, "20"}, &out)
	require.Error(t, err)
	require.Contains(t, err.Error(), "Custom(1)")
	require.Equal(t, uint64(10_000_000_000), ledgerBalance(t, ledgerPath, ownerAddr))
}

func TestTransferFeePayerWithoutFunds(t *testing.T) {
	testlog.Start(t)
	cliPath, _ := writeWorkspace(t)
	payer := solana.NewWallet().PublicKey().String()

	var out bytes.Buffer
	err := run([]string{"-config", cliPath, "-fee-payer", payer, "transfer", recipientAddr, "1"}, &out)
	require.Error(t, err)
	require.Contains(t, err.Error(), "insufficient funds for fee")
	require.Contains(t, out.String(), "Signers:   2")
}

func TestTransferCustomProgramID(t *testing.T) {
	testlog.Start(t)
	cliPath, ledgerPath := writeWorkspace(t)
	programID := solana.NewWallet().PublicKey().String()

	var out bytes.Buffer
	err := run([]string{"-config", cliPath, "-program-id", programID, "transfer", "-commit", recipientAddr, "2"}, &out)
	require.NoError(t, err)
	require.Equal(t, uint64(2_000_000_000), ledgerBalance(t, ledgerPath, recipientAddr))
}

func TestTransferArgumentErrors(t *testing.T) {
	testlog.Start(t)
	cases := [][]string{
		{"transfer", recipientAddr, "1"},
		{"-owner", ownerAddr, "transfer", recipientAddr},
		{"-owner", ownerAddr, "transfer", "not-an-address", "1"},
		{"-owner", ownerAddr, "transfer", recipientAddr, "-1"},
		{"-owner", ownerAddr, "-program-id", "11111111111111111111111111111111", "transfer", recipientAddr, "1"},
		{"-owner", ownerAddr},
		{"-owner", ownerAddr, "bogus"},
	}
	for _, args := range cases {
		var out bytes.Buffer
		require.Error(t, run(args, &out), "%v", args)
	}
}

func TestBalanceAndPrograms(t *testing.T) {
	testlog.Start(t)
	cliPath, _ := writeWorkspace(t)

	var out bytes.Buffer
	require.NoError(t, run([]string{"-config", cliPath, "balance", ownerAddr}, &out))
	require.Contains(t, out.String(), ownerAddr+": 10 SOL (10000000000 lamports)")

	out.Reset()
	require.NoError(t, run([]string{"programs"}, &out))
	require.Contains(t, out.String(), "cpi-transfer")
	require.Contains(t, out.String(), solana.SystemProgramID.String())
}
