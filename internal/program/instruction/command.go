package instruction

// Tag identifies a command variant on the wire.
type Tag uint8

const (
	TagInvokedTransfer Tag = 0
)

const (
	tagSize = 1
	u64Size = 8

	// InvokedTransferLen is the encoded size of an InvokedTransfer command.
	InvokedTransferLen = tagSize + u64Size
)

// Command is a decoded program instruction. The set of variants is closed:
// only this package can add one.
type Command interface {
	Tag() Tag
	command()
}

// InvokedTransfer moves Amount lamports from the source account to the
// destination account through a system program invocation.
type InvokedTransfer struct {
	Amount uint64
}

func (InvokedTransfer) Tag() Tag { return TagInvokedTransfer }
func (InvokedTransfer) command() {}

func (t Tag) String() string {
	switch t {
	case TagInvokedTransfer:
		return "InvokedTransfer"
	default:
		return "Unknown"
	}
}
