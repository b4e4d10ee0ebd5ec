// Package programerr owns the error taxonomy of the transfer program and its
// numeric identity as reported to the host runtime.
//
// Status values are part of the program ABI. Tables in this package are
// append-only: existing entries never change value.
package programerr

import (
	"errors"
	"fmt"
)

// Status is the numeric result a program reports to the host.
type Status uint64

const builtinShift = 32

// Builtin host statuses, stored in the upper 32 bits.
const (
	Success                   Status = 0
	CustomZero                Status = 1 << builtinShift
	InvalidArgument           Status = 2 << builtinShift
	InvalidInstructionData    Status = 3 << builtinShift
	InvalidAccountData        Status = 4 << builtinShift
	AccountDataTooSmall       Status = 5 << builtinShift
	InsufficientFunds         Status = 6 << builtinShift
	IncorrectProgramID        Status = 7 << builtinShift
	MissingRequiredSignature  Status = 8 << builtinShift
	AccountAlreadyInitialized Status = 9 << builtinShift
	UninitializedAccount      Status = 10 << builtinShift
	NotEnoughAccountKeys      Status = 11 << builtinShift
	AccountBorrowFailed       Status = 12 << builtinShift
)

var builtinNames = map[Status]string{
	Success:                   "Success",
	CustomZero:                "Custom(0)",
	InvalidArgument:           "InvalidArgument",
	InvalidInstructionData:    "InvalidInstructionData",
	InvalidAccountData:        "InvalidAccountData",
	AccountDataTooSmall:       "AccountDataTooSmall",
	InsufficientFunds:         "InsufficientFunds",
	IncorrectProgramID:        "IncorrectProgramId",
	MissingRequiredSignature:  "MissingRequiredSignature",
	AccountAlreadyInitialized: "AccountAlreadyInitialized",
	UninitializedAccount:      "UninitializedAccount",
	NotEnoughAccountKeys:      "NotEnoughAccountKeys",
	AccountBorrowFailed:       "AccountBorrowFailed",
}

// Custom returns the status for a program-defined error code.
// Code zero collides with Success, so the host reserves CustomZero for it.
func Custom(code uint32) Status {
	if code == 0 {
		return CustomZero
	}
	return Status(code)
}

// IsCustom reports whether s carries a program-defined code.
func (s Status) IsCustom() bool {
	return s == CustomZero || (s != Success && s>>builtinShift == 0)
}

// CustomCode returns the program-defined code carried by s.
func (s Status) CustomCode() (uint32, bool) {
	switch {
	case s == CustomZero:
		return 0, true
	case s.IsCustom():
		return uint32(s), true
	default:
		return 0, false
	}
}

func (s Status) String() string {
	if name, ok := builtinNames[s]; ok {
		return name
	}
	if code, ok := s.CustomCode(); ok {
		return fmt.Sprintf("Custom(%d)", code)
	}
	return fmt.Sprintf("Status(%#x)", uint64(s))
}

// Error is an error with a fixed host status.
type Error struct {
	Status Status
	Msg    string
}

// New creates an error reported to the host as status.
func New(status Status, msg string) *Error {
	return &Error{Status: status, Msg: msg}
}

func (e *Error) Error() string {
	return e.Msg
}

// Transfer program custom codes. Append only.
const (
	CodeInvalidInstruction uint32 = 0
)

var (
	// ErrInvalidInstruction reports an empty, unknown, or truncated instruction buffer.
	ErrInvalidInstruction = New(Custom(CodeInvalidInstruction), "program: invalid instruction")
	// ErrMissingAccount reports fewer account handles than the instruction requires.
	ErrMissingAccount = New(NotEnoughAccountKeys, "program: not enough account keys")
)

// StatusOf resolves err to the status the host observes.
// Errors without an attached status are reported as InvalidArgument.
func StatusOf(err error) Status {
	if err == nil {
		return Success
	}
	var perr *Error
	if errors.As(err, &perr) {
		return perr.Status
	}
	return InvalidArgument
}

// Name returns a printable name for the status of err, e.g. "Custom(0)".
func Name(err error) string {
	return StatusOf(err).String()
}
