// Package instruction owns the transfer program's instruction wire contract.
//
// Ownership boundary:
// - command variants and their tags
// - encode/decode of the instruction buffer
// - client-side instruction builders
package instruction
