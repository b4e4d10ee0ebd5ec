package runtime

import (
	"bytes"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/danmuck/cpitransfer/internal/observability"
	"github.com/danmuck/cpitransfer/internal/program"
	"github.com/danmuck/cpitransfer/internal/program/programerr"
	"github.com/gagliardetto/solana-go"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// MaxInvokeDepth bounds nested cross-program invocations.
const MaxInvokeDepth = 4

var (
	ErrUnknownProgram        = programerr.New(programerr.IncorrectProgramID, "runtime: unknown program")
	ErrProgramNotExecutable  = programerr.New(programerr.IncorrectProgramID, "runtime: program account is not executable")
	ErrProgramNotPassed      = programerr.New(programerr.NotEnoughAccountKeys, "runtime: program account not passed to invoke")
	ErrAccountNotPassed      = programerr.New(programerr.NotEnoughAccountKeys, "runtime: account required by callee not passed to invoke")
	ErrSignerEscalation      = programerr.New(programerr.MissingRequiredSignature, "runtime: signer privilege escalated")
	ErrWritableEscalation    = programerr.New(programerr.InvalidArgument, "runtime: writable privilege escalated")
	ErrMissingSignature      = programerr.New(programerr.MissingRequiredSignature, "runtime: missing transaction signature")
	ErrCallDepth             = programerr.New(programerr.InvalidArgument, "runtime: cross-program invocation too deep")
	ErrUnbalancedInstruction = programerr.New(programerr.InvalidArgument, "runtime: instruction changed total lamports")
	ErrReadonlyModified      = programerr.New(programerr.InvalidArgument, "runtime: readonly account balance modified")
)

// Account is the stored state of one address.
type Account struct {
	Lamports   uint64
	Owner      solana.PublicKey
	Executable bool
}

// AccountEntry pairs an address with its state.
type AccountEntry struct {
	Key     solana.PublicKey
	Account Account
}

// Bank holds account state and runs instructions against it. Instructions are
// serialized; each either commits all of its balance changes or none.
type Bank struct {
	mu       sync.Mutex
	accounts map[solana.PublicKey]Account
	programs *Registry
	logger   zerolog.Logger
}

// BankOption configures a Bank.
type BankOption func(*Bank)

// WithBankLogger overrides the global logger.
func WithBankLogger(logger zerolog.Logger) BankOption {
	return func(b *Bank) {
		b.logger = logger
	}
}

// NewBank creates a bank with the system program and the CPI transfer program
// registered at their well-known ids.
func NewBank(opts ...BankOption) *Bank {
	b := &Bank{
		accounts: make(map[solana.PublicKey]Account),
		programs: NewRegistry(),
		logger:   log.Logger,
	}
	for _, opt := range opts {
		opt(b)
	}
	mustRegister(b.RegisterProgram(solana.SystemProgramID, "system", SystemProgram{}))
	mustRegister(b.RegisterProgram(program.ProgramID, "cpi-transfer", TransferProgram(program.WithLogger(b.logger))))
	return b
}

func mustRegister(err error) {
	if err != nil {
		panic(err)
	}
}

// RegisterProgram adds prog under id and marks its account executable.
func (b *Bank) RegisterProgram(id solana.PublicKey, name string, prog Program) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.programs.Register(id, name, prog); err != nil {
		return err
	}
	acc := b.accounts[id]
	acc.Executable = true
	if acc.Owner.IsZero() {
		acc.Owner = solana.BPFLoaderUpgradeableProgramID
	}
	b.accounts[id] = acc
	return nil
}

// Programs lists registered programs.
func (b *Bank) Programs() []ProgramEntry {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.programs.List()
}

// SetAccount stores acc under key, replacing any previous state.
func (b *Bank) SetAccount(key solana.PublicKey, acc Account) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.accounts[key] = acc
}

// Account returns the stored state for key.
func (b *Bank) Account(key solana.PublicKey) (Account, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	acc, ok := b.accounts[key]
	return acc, ok
}

// Balance returns the lamports held by key; unknown accounts hold zero.
func (b *Bank) Balance(key solana.PublicKey) uint64 {
	acc, _ := b.Account(key)
	return acc.Lamports
}

// Accounts returns all non-executable accounts ordered by address.
func (b *Bank) Accounts() []AccountEntry {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]AccountEntry, 0, len(b.accounts))
	for key, acc := range b.accounts {
		if acc.Executable {
			continue
		}
		out = append(out, AccountEntry{Key: key, Account: acc})
	}
	sort.Slice(out, func(i, j int) bool {
		return bytes.Compare(out[i].Key[:], out[j].Key[:]) < 0
	})
	return out
}

// ExecuteInstruction runs ix as a top-level instruction. signers are the
// addresses that signed the surrounding transaction. On any failure no
// balance change is kept.
func (b *Bank) ExecuteInstruction(ix solana.Instruction, signers ...solana.PublicKey) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	start := time.Now()
	programID := ix.ProgramID()
	err := b.execute(ix, signers)
	status := programerr.StatusOf(err)
	observability.RecordInstruction(b.programs.Name(programID), status.String(), time.Since(start))

	evt := b.logger.Debug()
	if err != nil {
		evt = b.logger.Info().Err(err)
	}
	evt.Str("program", b.programs.Name(programID)).
		Str("status", status.String()).
		Msg("instruction executed")
	return err
}

func (b *Bank) execute(ix solana.Instruction, signers []solana.PublicKey) error {
	programID := ix.ProgramID()
	entry, ok := b.programs.Resolve(programID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownProgram, programID)
	}
	data, err := ix.Data()
	if err != nil {
		return fmt.Errorf("runtime: instruction data: %w", err)
	}

	signed := make(map[solana.PublicKey]bool, len(signers))
	for _, key := range signers {
		signed[key] = true
	}

	frame := newFrame()
	infos := make([]*program.AccountInfo, 0, len(ix.Accounts()))
	for _, meta := range ix.Accounts() {
		if meta.IsSigner && !signed[meta.PublicKey] {
			return fmt.Errorf("%w: %s", ErrMissingSignature, meta.PublicKey)
		}
		infos = append(infos, frame.info(b.accounts, meta.PublicKey, meta.IsSigner, meta.IsWritable))
	}

	ctx := &invokeContext{bank: b, caller: programID}
	if err := entry.Program.Process(ctx, programID, infos, data); err != nil {
		return err
	}
	if err := frame.verify(b.accounts); err != nil {
		return err
	}
	frame.commit(b.accounts)
	return nil
}

// frame holds the working lamport cells of one top-level instruction. Every
// handle for the same address shares one cell; cells are written back only on
// commit.
type frame struct {
	cells    map[solana.PublicKey]*uint64
	writable map[solana.PublicKey]bool
}

func newFrame() *frame {
	return &frame{
		cells:    make(map[solana.PublicKey]*uint64),
		writable: make(map[solana.PublicKey]bool),
	}
}

func (f *frame) info(accounts map[solana.PublicKey]Account, key solana.PublicKey, signer, writable bool) *program.AccountInfo {
	stored := accounts[key]
	cell, ok := f.cells[key]
	if !ok {
		v := stored.Lamports
		cell = &v
		f.cells[key] = cell
	}
	if writable {
		f.writable[key] = true
	}
	owner := stored.Owner
	if owner.IsZero() {
		owner = solana.SystemProgramID
	}
	return &program.AccountInfo{
		Key:        key,
		IsSigner:   signer,
		IsWritable: writable,
		Lamports:   cell,
		Owner:      owner,
		Executable: stored.Executable,
	}
}

func (f *frame) verify(accounts map[solana.PublicKey]Account) error {
	var before, after uint64
	for key, cell := range f.cells {
		old := accounts[key].Lamports
		if *cell != old && !f.writable[key] {
			return fmt.Errorf("%w: %s", ErrReadonlyModified, key)
		}
		before += old
		after += *cell
	}
	if before != after {
		return ErrUnbalancedInstruction
	}
	return nil
}

func (f *frame) commit(accounts map[solana.PublicKey]Account) {
	for key, cell := range f.cells {
		acc, ok := accounts[key]
		if !ok && *cell == 0 {
			continue
		}
		if acc.Owner.IsZero() {
			acc.Owner = solana.SystemProgramID
		}
		acc.Lamports = *cell
		accounts[key] = acc
	}
}

// invokeContext services cross-program invocations for one running program.
type invokeContext struct {
	bank   *Bank
	caller solana.PublicKey
	depth  int
}

var _ program.Invoker = (*invokeContext)(nil)

func (c *invokeContext) Invoke(ix solana.Instruction, accounts []*program.AccountInfo) error {
	calleeID := ix.ProgramID()
	err := c.invoke(ix, accounts)
	observability.RecordInvocation(
		c.bank.programs.Name(c.caller),
		c.bank.programs.Name(calleeID),
		programerr.StatusOf(err).String(),
	)
	return err
}

func (c *invokeContext) invoke(ix solana.Instruction, accounts []*program.AccountInfo) error {
	if c.depth+1 > MaxInvokeDepth {
		return ErrCallDepth
	}
	calleeID := ix.ProgramID()

	byKey := make(map[solana.PublicKey]*program.AccountInfo, len(accounts))
	for _, acc := range accounts {
		if acc == nil {
			continue
		}
		if _, ok := byKey[acc.Key]; !ok {
			byKey[acc.Key] = acc
		}
	}

	programAccount, ok := byKey[calleeID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrProgramNotPassed, calleeID)
	}
	if !programAccount.Executable {
		return fmt.Errorf("%w: %s", ErrProgramNotExecutable, calleeID)
	}
	entry, ok := c.bank.programs.Resolve(calleeID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownProgram, calleeID)
	}

	metas := ix.Accounts()
	calleeAccounts := make([]*program.AccountInfo, 0, len(metas))
	for _, meta := range metas {
		acc, ok := byKey[meta.PublicKey]
		if !ok {
			return fmt.Errorf("%w: %s", ErrAccountNotPassed, meta.PublicKey)
		}
		if meta.IsSigner && !acc.IsSigner {
			return fmt.Errorf("%w: %s", ErrSignerEscalation, meta.PublicKey)
		}
		if meta.IsWritable && !acc.IsWritable {
			return fmt.Errorf("%w: %s", ErrWritableEscalation, meta.PublicKey)
		}
		calleeAccounts = append(calleeAccounts, &program.AccountInfo{
			Key:        acc.Key,
			IsSigner:   meta.IsSigner,
			IsWritable: meta.IsWritable,
			Lamports:   acc.Lamports,
			Owner:      acc.Owner,
			Executable: acc.Executable,
		})
	}

	data, err := ix.Data()
	if err != nil {
		return fmt.Errorf("runtime: invoke data: %w", err)
	}
	callee := &invokeContext{bank: c.bank, caller: calleeID, depth: c.depth + 1}
	return entry.Program.Process(callee, calleeID, calleeAccounts, data)
}
