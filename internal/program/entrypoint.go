package program

import (
	"github.com/danmuck/cpitransfer/internal/program/programerr"
	"github.com/gagliardetto/solana-go"
)

// ProgramID is the address the transfer program is deployed at.
var ProgramID = solana.MustPublicKeyFromBase58("memobrpr6QZ6Xg59ForypkU3BsFhWEC7wHeNpBYtamC")

// Entrypoint runs one program call and returns the status reported to the host.
func (p *Processor) Entrypoint(programID solana.PublicKey, accounts []*AccountInfo, input []byte) uint64 {
	err := p.Process(programID, accounts, input)
	if err != nil {
		p.logger.Info().Msgf("Error: %s", err)
	}
	return uint64(programerr.StatusOf(err))
}
