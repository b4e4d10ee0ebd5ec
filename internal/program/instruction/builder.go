package instruction

import "github.com/gagliardetto/solana-go"

// NewInvokedTransferInstruction builds an InvokedTransfer instruction for
// programID. The account list is positional: source (writable, signer),
// destination (writable), system program (readonly).
func NewInvokedTransferInstruction(
	programID solana.PublicKey,
	source solana.PublicKey,
	destination solana.PublicKey,
	amount uint64,
) *solana.GenericInstruction {
	accounts := solana.AccountMetaSlice{
		solana.NewAccountMeta(source, true, true),
		solana.NewAccountMeta(destination, true, false),
		solana.NewAccountMeta(solana.SystemProgramID, false, false),
	}
	return solana.NewInstruction(programID, accounts, Encode(InvokedTransfer{Amount: amount}))
}
