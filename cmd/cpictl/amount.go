package main

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/gagliardetto/solana-go"
)

var lamportsPerSOL = new(big.Rat).SetUint64(solana.LAMPORTS_PER_SOL)

// parseSOL converts a decimal SOL amount to lamports without rounding.
func parseSOL(raw string) (uint64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.Contains(raw, "/") {
		return 0, fmt.Errorf("invalid amount %q", raw)
	}
	sol, ok := new(big.Rat).SetString(raw)
	if !ok {
		return 0, fmt.Errorf("invalid amount %q", raw)
	}
	if sol.Sign() < 0 {
		return 0, fmt.Errorf("amount must not be negative: %s", raw)
	}
	lamports := new(big.Rat).Mul(sol, lamportsPerSOL)
	if !lamports.IsInt() {
		return 0, fmt.Errorf("amount %s is finer than one lamport", raw)
	}
	if !lamports.Num().IsUint64() {
		return 0, fmt.Errorf("amount %s overflows lamports", raw)
	}
	return lamports.Num().Uint64(), nil
}

// formatSOL renders lamports as a decimal SOL amount.
func formatSOL(lamports uint64) string {
	sol := new(big.Rat).SetFrac(new(big.Int).SetUint64(lamports), lamportsPerSOL.Num())
	s := sol.FloatString(9)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}
