// Package testutil holds deterministic helpers shared by tests and the
// conformance harness.
package testutil
