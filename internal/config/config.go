package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/danmuck/cpitransfer/internal/program"
	"github.com/gagliardetto/solana-go"
)

const DefaultLamportsPerSignature uint64 = 5000

// CLIConfig is the resolved configuration of the command builder.
type CLIConfig struct {
	Owner                solana.PublicKey
	FeePayer             solana.PublicKey
	ProgramID            solana.PublicKey
	LamportsPerSignature uint64
	RecentBlockhash      solana.Hash
	Ledger               string
}

type fileCLIConfig struct {
	Owner                string `toml:"owner"`
	FeePayer             string `toml:"fee_payer"`
	ProgramID            string `toml:"program_id"`
	LamportsPerSignature int64  `toml:"lamports_per_signature"`
	RecentBlockhash      string `toml:"recent_blockhash"`
	Ledger               string `toml:"ledger"`
}

func DefaultCLIConfig() CLIConfig {
	return CLIConfig{
		ProgramID:            program.ProgramID,
		LamportsPerSignature: DefaultLamportsPerSignature,
	}
}

// EffectiveFeePayer returns the fee payer, defaulting to the owner.
func (c CLIConfig) EffectiveFeePayer() solana.PublicKey {
	if c.FeePayer.IsZero() {
		return c.Owner
	}
	return c.FeePayer
}

// LoadCLIConfig reads path over DefaultCLIConfig. Keys absent from the file
// keep their defaults. Relative ledger paths resolve against the file's directory.
func LoadCLIConfig(path string) (CLIConfig, error) {
	cfg := DefaultCLIConfig()

	var raw fileCLIConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return CLIConfig{}, fmt.Errorf("config load failed (%s): %w", path, err)
	}

	if meta.IsDefined("owner") {
		if cfg.Owner, err = parsePubkey("owner", raw.Owner); err != nil {
			return CLIConfig{}, err
		}
	}
	if meta.IsDefined("fee_payer") {
		if cfg.FeePayer, err = parsePubkey("fee_payer", raw.FeePayer); err != nil {
			return CLIConfig{}, err
		}
	}
	if meta.IsDefined("program_id") {
		if cfg.ProgramID, err = parsePubkey("program_id", raw.ProgramID); err != nil {
			return CLIConfig{}, err
		}
	}
	if meta.IsDefined("lamports_per_signature") {
		if raw.LamportsPerSignature < 0 {
			return CLIConfig{}, fmt.Errorf("lamports_per_signature must not be negative")
		}
		cfg.LamportsPerSignature = uint64(raw.LamportsPerSignature)
	}
	if meta.IsDefined("recent_blockhash") {
		hash, err := solana.HashFromBase58(strings.TrimSpace(raw.RecentBlockhash))
		if err != nil {
			return CLIConfig{}, fmt.Errorf("parse recent_blockhash: %w", err)
		}
		cfg.RecentBlockhash = hash
	}
	if meta.IsDefined("ledger") {
		ledger := strings.TrimSpace(raw.Ledger)
		if ledger != "" && !filepath.IsAbs(ledger) {
			ledger = filepath.Join(filepath.Dir(path), ledger)
		}
		cfg.Ledger = ledger
	}

	if err := ValidateCLIConfig(cfg); err != nil {
		return CLIConfig{}, err
	}
	return cfg, nil
}

func ValidateCLIConfig(cfg CLIConfig) error {
	if cfg.ProgramID.IsZero() {
		return fmt.Errorf("cli config missing program_id")
	}
	if cfg.ProgramID.Equals(solana.SystemProgramID) {
		return fmt.Errorf("cli config program_id must not be the system program")
	}
	return nil
}

func parsePubkey(field, raw string) (solana.PublicKey, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return solana.PublicKey{}, nil
	}
	key, err := solana.PublicKeyFromBase58(raw)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("parse %s: %w", field, err)
	}
	return key, nil
}

// ParsePubkey parses a base58 address named field.
func ParsePubkey(field, raw string) (solana.PublicKey, error) {
	key, err := parsePubkey(field, raw)
	if err != nil {
		return solana.PublicKey{}, err
	}
	if key.IsZero() {
		return solana.PublicKey{}, fmt.Errorf("%s is required", field)
	}
	return key, nil
}

func loadToml(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config load failed (%s): %w", path, err)
	}
	if err := toml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("config parse failed (%s): %w", path, err)
	}
	return nil
}
