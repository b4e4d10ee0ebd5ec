// Package runtime is an in-process host for programs: it owns account
// balances, resolves program ids, executes instructions atomically, and
// services cross-program invocations.
//
// Ownership boundary:
// - account store and commit/rollback of one instruction
// - program registry
// - privilege checks for cross-program invocation
// - the builtin system program (transfer only)
package runtime
