package main

import (
	"fmt"

	"github.com/danmuck/cpitransfer/internal/config"
	"github.com/danmuck/cpitransfer/internal/runtime"
)

func bankFromLedger(ledger config.LedgerFile, opts ...runtime.BankOption) (*runtime.Bank, error) {
	bank := runtime.NewBank(opts...)
	for i, entry := range ledger.Accounts {
		key, err := entry.Key()
		if err != nil {
			return nil, fmt.Errorf("ledger account[%d]: %w", i, err)
		}
		owner, err := entry.OwnerKey()
		if err != nil {
			return nil, fmt.Errorf("ledger account[%d]: %w", i, err)
		}
		bank.SetAccount(key, runtime.Account{Lamports: entry.Lamports, Owner: owner})
	}
	return bank, nil
}

func ledgerFromBank(bank *runtime.Bank) config.LedgerFile {
	entries := bank.Accounts()
	ledger := config.LedgerFile{Accounts: make([]config.LedgerAccount, 0, len(entries))}
	for _, entry := range entries {
		ledger.Accounts = append(ledger.Accounts, config.LedgerAccount{
			Pubkey:   entry.Key.String(),
			Lamports: entry.Account.Lamports,
			Owner:    entry.Account.Owner.String(),
		})
	}
	return ledger
}
