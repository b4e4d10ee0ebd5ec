package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/gagliardetto/solana-go"
)

// LedgerFile is the on-disk account set used for local simulation.
type LedgerFile struct {
	Accounts []LedgerAccount `toml:"accounts"`
}

// LedgerAccount is one account entry of a ledger file.
type LedgerAccount struct {
	Pubkey   string `toml:"pubkey"`
	Lamports uint64 `toml:"lamports"`
	Owner    string `toml:"owner,omitempty"`
}

// Key returns the parsed account address.
func (a LedgerAccount) Key() (solana.PublicKey, error) {
	return ParsePubkey("pubkey", a.Pubkey)
}

// OwnerKey returns the parsed owner, defaulting to the system program.
func (a LedgerAccount) OwnerKey() (solana.PublicKey, error) {
	owner, err := parsePubkey("owner", a.Owner)
	if err != nil {
		return solana.PublicKey{}, err
	}
	if owner.IsZero() {
		return solana.SystemProgramID, nil
	}
	return owner, nil
}

func LoadLedger(path string) (LedgerFile, error) {
	var ledger LedgerFile
	if err := loadToml(path, &ledger); err != nil {
		return LedgerFile{}, err
	}
	if err := ValidateLedger(ledger); err != nil {
		return LedgerFile{}, fmt.Errorf("ledger %s: %w", path, err)
	}
	return ledger, nil
}

func ValidateLedger(ledger LedgerFile) error {
	seen := make(map[solana.PublicKey]struct{}, len(ledger.Accounts))
	for i, acc := range ledger.Accounts {
		key, err := acc.Key()
		if err != nil {
			return fmt.Errorf("account[%d] invalid: %w", i, err)
		}
		if _, err := acc.OwnerKey(); err != nil {
			return fmt.Errorf("account[%d] invalid: %w", i, err)
		}
		if _, ok := seen[key]; ok {
			return fmt.Errorf("account[%d] duplicate pubkey %s", i, key)
		}
		seen[key] = struct{}{}
	}
	return nil
}

// SaveLedger writes ledger to path, replacing the file atomically.
func SaveLedger(path string, ledger LedgerFile) error {
	if err := ValidateLedger(ledger); err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(ledger); err != nil {
		return fmt.Errorf("ledger encode failed: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".ledger-*.toml")
	if err != nil {
		return fmt.Errorf("ledger save failed (%s): %w", path, err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return fmt.Errorf("ledger save failed (%s): %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("ledger save failed (%s): %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("ledger save failed (%s): %w", path, err)
	}
	return nil
}
