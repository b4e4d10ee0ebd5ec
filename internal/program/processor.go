package program

import (
	"github.com/danmuck/cpitransfer/internal/program/instruction"
	"github.com/danmuck/cpitransfer/internal/program/programerr"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Invoker performs a cross-program invocation on behalf of the running
// program. Implementations validate the callee's account requirements against
// the handles passed in and apply its effects; their errors are returned to the
// caller unchanged.
type Invoker interface {
	Invoke(ix solana.Instruction, accounts []*AccountInfo) error
}

// InvokerFunc adapts a function to Invoker.
type InvokerFunc func(ix solana.Instruction, accounts []*AccountInfo) error

func (f InvokerFunc) Invoke(ix solana.Instruction, accounts []*AccountInfo) error {
	return f(ix, accounts)
}

// Processor dispatches decoded commands. It holds no state between calls.
type Processor struct {
	invoker Invoker
	logger  zerolog.Logger
}

// Option configures a Processor.
type Option func(*Processor)

// WithLogger overrides the global logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(p *Processor) {
		p.logger = logger
	}
}

// NewProcessor creates a processor that delegates through invoker.
func NewProcessor(invoker Invoker, opts ...Option) *Processor {
	p := &Processor{invoker: invoker, logger: log.Logger}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Process decodes input and runs the matching handler.
func (p *Processor) Process(programID solana.PublicKey, accounts []*AccountInfo, input []byte) error {
	cmd, err := instruction.Decode(input)
	if err != nil {
		return err
	}
	return p.Dispatch(programID, accounts, cmd)
}

// Dispatch runs the handler for an already decoded command.
func (p *Processor) Dispatch(programID solana.PublicKey, accounts []*AccountInfo, cmd instruction.Command) error {
	switch c := cmd.(type) {
	case instruction.InvokedTransfer:
		p.logger.Info().Str("program", programID.String()).Msg("Instruction: InvokedTransfer")
		return p.processInvokedTransfer(accounts, c.Amount)
	default:
		return instruction.ErrInvalidInstruction
	}
}

func (p *Processor) processInvokedTransfer(accounts []*AccountInfo, amount uint64) error {
	it := NewAccountIter(accounts)
	source, err := it.NextAccountInfo()
	if err != nil {
		return err
	}
	destination, err := it.NextAccountInfo()
	if err != nil {
		return err
	}
	systemProgram, err := it.NextAccountInfo()
	if err != nil {
		return err
	}

	transfer := system.NewTransferInstruction(amount, source.Key, destination.Key).Build()
	err = p.invoker.Invoke(transfer, []*AccountInfo{source, destination, systemProgram})
	if err != nil {
		p.logger.Debug().
			Err(err).
			Str("status", programerr.Name(err)).
			Uint64("amount", amount).
			Msg("invoked transfer failed")
	}
	return err
}
