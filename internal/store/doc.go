// Package store provides the SQLite artifact ledger.
//
// The ledger records every translation run and the MiniZinc files it wrote:
//   - runs: one row per invocation, keyed by a UUIDv7 run id
//   - artifacts: one row per check-point, with the SHA-256 of the file
//
// Ordering uses the seq column (insertion order), never timestamps, and every
// query ends in ORDER BY seq or check_point so results are stable.
//
// Nothing from the ledger is written into the artifacts themselves, so the
// emitted files stay byte-identical across runs.
//
// # Opening a ledger
//
// Open stamps new files with ApplicationID and refuses SQLite files that
// carry another application id or unrelated tables, so pointing --ledger at
// the wrong database never adds tables to it. Schema upgrades are listed in
// migrations and tracked with user_version.
//
// File ledgers use WAL with synchronous=NORMAL; every connection sets a
// 5-second busy timeout and enforces foreign keys, so an artifact can only
// be recorded for a run that exists.
package store
