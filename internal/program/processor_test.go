package program

import (
	"errors"
	"testing"

	"github.com/danmuck/cpitransfer/internal/program/instruction"
	"github.com/danmuck/cpitransfer/internal/program/programerr"
	"github.com/danmuck/cpitransfer/internal/testutil/testlog"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
)

type recordedInvoke struct {
	ix       solana.Instruction
	accounts []*AccountInfo
}

// fakeInvoker records every delegated call and returns err.
type fakeInvoker struct {
	calls []recordedInvoke
	err   error
}

func (f *fakeInvoker) Invoke(ix solana.Instruction, accounts []*AccountInfo) error {
	f.calls = append(f.calls, recordedInvoke{ix: ix, accounts: accounts})
	return f.err
}

func newAccount(lamports uint64, signer, writable bool) *AccountInfo {
	v := lamports
	return &AccountInfo{
		Key:        solana.NewWallet().PublicKey(),
		IsSigner:   signer,
		IsWritable: writable,
		Lamports:   &v,
		Owner:      solana.SystemProgramID,
	}
}

func transferAccounts() []*AccountInfo {
	var zero uint64
	return []*AccountInfo{
		newAccount(100, true, true),
		newAccount(0, false, true),
		{Key: solana.SystemProgramID, Lamports: &zero, Executable: true},
	}
}

func TestProcessInvokedTransferDelegatesOnce(t *testing.T) {
	testlog.Start(t)
	invoker := &fakeInvoker{}
	p := NewProcessor(invoker)
	accounts := transferAccounts()

	input := instruction.Encode(instruction.InvokedTransfer{Amount: 1_000_000})
	if err := p.Process(ProgramID, accounts, input); err != nil {
		t.Fatalf("process: %v", err)
	}
	if len(invoker.calls) != 1 {
		t.Fatalf("expected 1 delegated call, got %d", len(invoker.calls))
	}

	call := invoker.calls[0]
	if !call.ix.ProgramID().Equals(solana.SystemProgramID) {
		t.Fatalf("unexpected callee: %s", call.ix.ProgramID())
	}
	data, err := call.ix.Data()
	if err != nil {
		t.Fatalf("callee data: %v", err)
	}
	decoded, err := system.DecodeInstruction(call.ix.Accounts(), data)
	if err != nil {
		t.Fatalf("decode system instruction: %v", err)
	}
	transfer, ok := decoded.Impl.(*system.Transfer)
	if !ok {
		t.Fatalf("expected system transfer, got %T", decoded.Impl)
	}
	if transfer.Lamports == nil || *transfer.Lamports != 1_000_000 {
		t.Fatalf("unexpected lamports: %v", transfer.Lamports)
	}
	if !transfer.GetFundingAccount().PublicKey.Equals(accounts[0].Key) {
		t.Fatalf("unexpected source: %s", transfer.GetFundingAccount().PublicKey)
	}
	if !transfer.GetRecipientAccount().PublicKey.Equals(accounts[1].Key) {
		t.Fatalf("unexpected destination: %s", transfer.GetRecipientAccount().PublicKey)
	}

	if len(call.accounts) != 3 {
		t.Fatalf("expected 3 handles passed along, got %d", len(call.accounts))
	}
	for i := range call.accounts {
		if call.accounts[i] != accounts[i] {
			t.Fatalf("handle %d not passed through", i)
		}
	}
}

func TestProcessIgnoresExtraAccounts(t *testing.T) {
	testlog.Start(t)
	invoker := &fakeInvoker{}
	p := NewProcessor(invoker)
	accounts := append(transferAccounts(), newAccount(5, false, false))

	input := instruction.Encode(instruction.InvokedTransfer{Amount: 1})
	if err := p.Process(ProgramID, accounts, input); err != nil {
		t.Fatalf("process: %v", err)
	}
	if len(invoker.calls) != 1 || len(invoker.calls[0].accounts) != 3 {
		t.Fatalf("unexpected calls: %+v", invoker.calls)
	}
}

func TestProcessMissingAccount(t *testing.T) {
	testlog.Start(t)
	input := instruction.Encode(instruction.InvokedTransfer{Amount: 1})
	for n := 0; n < 3; n++ {
		invoker := &fakeInvoker{}
		p := NewProcessor(invoker)
		err := p.Process(ProgramID, transferAccounts()[:n], input)
		if !errors.Is(err, ErrMissingAccount) {
			t.Fatalf("%d accounts: expected ErrMissingAccount, got %v", n, err)
		}
		if errors.Is(err, instruction.ErrInvalidInstruction) {
			t.Fatalf("missing account must be distinct from decode errors")
		}
		if len(invoker.calls) != 0 {
			t.Fatalf("%d accounts: expected no delegated call, got %d", n, len(invoker.calls))
		}
	}
}

func TestProcessNilAccountHandle(t *testing.T) {
	testlog.Start(t)
	invoker := &fakeInvoker{}
	p := NewProcessor(invoker)
	accounts := transferAccounts()
	accounts[1] = nil

	err := p.Process(ProgramID, accounts, instruction.Encode(instruction.InvokedTransfer{Amount: 1}))
	if !errors.Is(err, ErrMissingAccount) {
		t.Fatalf("expected ErrMissingAccount, got %v", err)
	}
	if len(invoker.calls) != 0 {
		t.Fatalf("expected no delegated call")
	}
}

func TestProcessInvalidInstruction(t *testing.T) {
	testlog.Start(t)
	inputs := [][]byte{
		nil,
		{0x01, 0, 0, 0, 0, 0, 0, 0, 0},
		{0x00, 0x01, 0x02},
	}
	for _, input := range inputs {
		invoker := &fakeInvoker{}
		p := NewProcessor(invoker)
		err := p.Process(ProgramID, transferAccounts(), input)
		if !errors.Is(err, instruction.ErrInvalidInstruction) {
			t.Fatalf("input % x: expected ErrInvalidInstruction, got %v", input, err)
		}
		if len(invoker.calls) != 0 {
			t.Fatalf("input % x: expected no delegated call", input)
		}
	}
}

func TestProcessPropagatesDelegatedFailure(t *testing.T) {
	testlog.Start(t)
	delegated := programerr.New(programerr.Custom(1), "system: insufficient lamports")
	invoker := &fakeInvoker{err: delegated}
	p := NewProcessor(invoker)

	err := p.Process(ProgramID, transferAccounts(), instruction.Encode(instruction.InvokedTransfer{Amount: 500}))
	if err != delegated {
		t.Fatalf("expected delegated error verbatim, got %v", err)
	}
	if len(invoker.calls) != 1 {
		t.Fatalf("expected exactly one delegated call, got %d", len(invoker.calls))
	}
}

func TestEntrypointStatus(t *testing.T) {
	testlog.Start(t)
	opaque := errors.New("host: aborted")
	cases := []struct {
		name     string
		accounts []*AccountInfo
		input    []byte
		err      error
		want     programerr.Status
	}{
		{"success", transferAccounts(), instruction.Encode(instruction.InvokedTransfer{Amount: 1}), nil, programerr.Success},
		{"invalid", transferAccounts(), nil, nil, programerr.CustomZero},
		{"missing", transferAccounts()[:2], instruction.Encode(instruction.InvokedTransfer{Amount: 1}), nil, programerr.NotEnoughAccountKeys},
		{"delegated", transferAccounts(), instruction.Encode(instruction.InvokedTransfer{Amount: 1}), programerr.New(programerr.MissingRequiredSignature, "unsigned"), programerr.MissingRequiredSignature},
		{"opaque", transferAccounts(), instruction.Encode(instruction.InvokedTransfer{Amount: 1}), opaque, programerr.InvalidArgument},
	}
	for _, tc := range cases {
		p := NewProcessor(&fakeInvoker{err: tc.err})
		got := p.Entrypoint(ProgramID, tc.accounts, tc.input)
		if programerr.Status(got) != tc.want {
			t.Fatalf("%s: status %v, want %v", tc.name, programerr.Status(got), tc.want)
		}
	}
}

func TestInvokerFunc(t *testing.T) {
	testlog.Start(t)
	called := 0
	p := NewProcessor(InvokerFunc(func(ix solana.Instruction, accounts []*AccountInfo) error {
		called++
		return nil
	}))
	if err := p.Dispatch(ProgramID, transferAccounts(), instruction.InvokedTransfer{Amount: 3}); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if called != 1 {
		t.Fatalf("expected 1 call, got %d", called)
	}
}

func TestAccountIter(t *testing.T) {
	testlog.Start(t)
	accounts := transferAccounts()
	it := NewAccountIter(accounts)
	for i := range accounts {
		got, err := it.NextAccountInfo()
		if err != nil || got != accounts[i] {
			t.Fatalf("position %d: got %v err %v", i, got, err)
		}
	}
	if _, err := it.NextAccountInfo(); !errors.Is(err, ErrMissingAccount) {
		t.Fatalf("expected ErrMissingAccount, got %v", err)
	}
}
