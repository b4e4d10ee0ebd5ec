package runtime

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/danmuck/cpitransfer/internal/program"
	"github.com/gagliardetto/solana-go"
)

var (
	ErrProgramExists = errors.New("runtime: program already registered")
	ErrProgramNil    = errors.New("runtime: program is nil")
	ErrInvalidName   = errors.New("runtime: invalid program name")
)

// Program is the execution boundary for one on-chain program. invoker services
// any cross-program invocation the program issues during this call.
type Program interface {
	Process(invoker program.Invoker, programID solana.PublicKey, accounts []*program.AccountInfo, input []byte) error
}

// ProgramFunc adapts a function to Program.
type ProgramFunc func(invoker program.Invoker, programID solana.PublicKey, accounts []*program.AccountInfo, input []byte) error

func (f ProgramFunc) Process(invoker program.Invoker, programID solana.PublicKey, accounts []*program.AccountInfo, input []byte) error {
	return f(invoker, programID, accounts, input)
}

// ProgramEntry is a registered program and its display name.
type ProgramEntry struct {
	ID      solana.PublicKey
	Name    string
	Program Program
}

// Registry stores programs by id.
type Registry struct {
	items map[solana.PublicKey]ProgramEntry
}

// NewRegistry creates an empty program registry.
func NewRegistry() *Registry {
	return &Registry{items: make(map[solana.PublicKey]ProgramEntry)}
}

// Register adds a program under id.
func (r *Registry) Register(id solana.PublicKey, name string, prog Program) error {
	if prog == nil {
		return ErrProgramNil
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("%w: name is required for %s", ErrInvalidName, id)
	}
	if _, ok := r.items[id]; ok {
		return fmt.Errorf("%w: %s", ErrProgramExists, id)
	}
	r.items[id] = ProgramEntry{ID: id, Name: name, Program: prog}
	return nil
}

// Resolve returns the program registered under id.
func (r *Registry) Resolve(id solana.PublicKey) (ProgramEntry, bool) {
	entry, ok := r.items[id]
	return entry, ok
}

// Name returns the display name for id, or its base58 form if unregistered.
func (r *Registry) Name(id solana.PublicKey) string {
	if entry, ok := r.items[id]; ok {
		return entry.Name
	}
	return id.String()
}

// List returns entries in deterministic order by name.
func (r *Registry) List() []ProgramEntry {
	list := make([]ProgramEntry, 0, len(r.items))
	for _, entry := range r.items {
		list = append(list, entry)
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].Name < list[j].Name
	})
	return list
}

// TransferProgram runs the CPI transfer processor with the host's invoker.
func TransferProgram(opts ...program.Option) Program {
	return ProgramFunc(func(invoker program.Invoker, programID solana.PublicKey, accounts []*program.AccountInfo, input []byte) error {
		return program.NewProcessor(invoker, opts...).Process(programID, accounts, input)
	})
}
