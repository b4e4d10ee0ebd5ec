package instruction

import "encoding/binary"

// Encode packs cmd into its wire form: one tag byte followed by the
// little-endian encoding of each field in declaration order.
func Encode(cmd Command) []byte {
	switch c := cmd.(type) {
	case InvokedTransfer:
		buf := make([]byte, InvokedTransferLen)
		buf[0] = byte(TagInvokedTransfer)
		binary.LittleEndian.PutUint64(buf[tagSize:], c.Amount)
		return buf
	default:
		return nil
	}
}
