// Package program implements the transfer program: it decodes an instruction
// buffer and re-invokes the system program's transfer on behalf of the caller.
//
// Ownership boundary:
// - account handles passed to a program call
// - instruction dispatch
// - the delegated invocation seam (Invoker)
package program
