package instruction

import (
	"encoding/binary"

	"github.com/danmuck/cpitransfer/internal/program/programerr"
)

// ErrInvalidInstruction is returned for every rejected instruction buffer.
var ErrInvalidInstruction = programerr.ErrInvalidInstruction

// Decode unpacks an instruction buffer. Bytes past the fixed payload of the
// decoded variant are ignored, matching the deployed program.
func Decode(input []byte) (Command, error) {
	cmd, _, err := decode(input)
	return cmd, err
}

// DecodeStrict is Decode that also rejects trailing bytes.
func DecodeStrict(input []byte) (Command, error) {
	cmd, n, err := decode(input)
	if err != nil {
		return nil, err
	}
	if n != len(input) {
		return nil, ErrInvalidInstruction
	}
	return cmd, nil
}

// decode returns the command and the number of bytes it consumed.
func decode(input []byte) (Command, int, error) {
	if len(input) < tagSize {
		return nil, 0, ErrInvalidInstruction
	}
	tag, rest := Tag(input[0]), input[tagSize:]
	switch tag {
	case TagInvokedTransfer:
		amount, err := readU64(rest)
		if err != nil {
			return nil, 0, err
		}
		return InvokedTransfer{Amount: amount}, InvokedTransferLen, nil
	default:
		return nil, 0, ErrInvalidInstruction
	}
}

func readU64(buf []byte) (uint64, error) {
	if len(buf) < u64Size {
		return 0, ErrInvalidInstruction
	}
	return binary.LittleEndian.Uint64(buf[:u64Size]), nil
}
