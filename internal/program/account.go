package program

import (
	"fmt"

	"github.com/danmuck/cpitransfer/internal/program/programerr"
	"github.com/gagliardetto/solana-go"
)

// ErrMissingAccount is returned when a call supplies fewer account handles
// than the instruction requires.
var ErrMissingAccount = programerr.ErrMissingAccount

// AccountInfo is an account handle lent to a program for one call.
// Lamports is shared with the host so balance changes made by a callee are
// visible to the caller.
type AccountInfo struct {
	Key        solana.PublicKey
	IsSigner   bool
	IsWritable bool
	Lamports   *uint64
	Owner      solana.PublicKey
	Executable bool
}

// Balance returns the current lamport balance.
func (a *AccountInfo) Balance() uint64 {
	if a == nil || a.Lamports == nil {
		return 0
	}
	return *a.Lamports
}

// Meta returns the account meta describing this handle's privileges.
func (a *AccountInfo) Meta() *solana.AccountMeta {
	return solana.NewAccountMeta(a.Key, a.IsWritable, a.IsSigner)
}

func (a *AccountInfo) String() string {
	return fmt.Sprintf("AccountInfo{key:%s,signer:%t,writable:%t,lamports:%d}",
		a.Key, a.IsSigner, a.IsWritable, a.Balance())
}

// AccountIter hands out account handles in positional order.
type AccountIter struct {
	accounts []*AccountInfo
	next     int
}

// NewAccountIter iterates accounts from the first position.
func NewAccountIter(accounts []*AccountInfo) *AccountIter {
	return &AccountIter{accounts: accounts}
}

// NextAccountInfo returns the next handle or ErrMissingAccount.
func (it *AccountIter) NextAccountInfo() (*AccountInfo, error) {
	if it.next >= len(it.accounts) {
		return nil, ErrMissingAccount
	}
	acc := it.accounts[it.next]
	it.next++
	if acc == nil {
		return nil, ErrMissingAccount
	}
	return acc, nil
}
