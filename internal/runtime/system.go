package runtime

import (
	"math"

	"github.com/danmuck/cpitransfer/internal/program"
	"github.com/danmuck/cpitransfer/internal/program/programerr"
	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
)

// System program custom codes. Append only.
const (
	CodeAccountAlreadyInUse        uint32 = 0
	CodeResultWithNegativeLamports uint32 = 1
)

var (
	ErrResultWithNegativeLamports = programerr.New(
		programerr.Custom(CodeResultWithNegativeLamports),
		"system: account does not have enough lamports for the transfer",
	)
	ErrUnsupportedInstruction = programerr.New(programerr.InvalidInstructionData, "system: unsupported instruction")
	ErrFundingNotSigner       = programerr.New(programerr.MissingRequiredSignature, "system: funding account must sign")
	ErrReadonlyLamportChange  = programerr.New(programerr.InvalidArgument, "system: lamport change on readonly account")
	ErrLamportOverflow        = programerr.New(programerr.InvalidArgument, "system: recipient lamports overflow")
)

// SystemProgram is the builtin system program. Only Transfer is supported.
type SystemProgram struct{}

var _ Program = SystemProgram{}

func (SystemProgram) Process(_ program.Invoker, _ solana.PublicKey, accounts []*program.AccountInfo, input []byte) error {
	inst := new(system.Instruction)
	if err := bin.NewBinDecoder(input).Decode(inst); err != nil {
		return ErrUnsupportedInstruction
	}
	switch ix := inst.Impl.(type) {
	case *system.Transfer:
		if ix.Lamports == nil {
			return ErrUnsupportedInstruction
		}
		return processTransfer(accounts, *ix.Lamports)
	default:
		return ErrUnsupportedInstruction
	}
}

func processTransfer(accounts []*program.AccountInfo, lamports uint64) error {
	it := program.NewAccountIter(accounts)
	from, err := it.NextAccountInfo()
	if err != nil {
		return err
	}
	to, err := it.NextAccountInfo()
	if err != nil {
		return err
	}
	if !from.IsSigner {
		return ErrFundingNotSigner
	}
	if lamports == 0 {
		return nil
	}
	if !from.IsWritable || !to.IsWritable {
		return ErrReadonlyLamportChange
	}
	if from.Balance() < lamports {
		return ErrResultWithNegativeLamports
	}
	*from.Lamports -= lamports
	if *to.Lamports > math.MaxUint64-lamports {
		*from.Lamports += lamports
		return ErrLamportOverflow
	}
	*to.Lamports += lamports
	return nil
}
