// Package smtlib parses the SMT-LIB subset used by OMT scripts into typed
// ir.Command values.
//
// Supported commands: declare-fun (nullary), declare-const, assert,
// assert-soft (:weight, :id), push, pop, check-sat, set-option, maximize and
// minimize. Informational commands such as set-logic, get-model and exit are
// accepted and dropped. Anything else is a PARSE_ERROR carrying the line.
package smtlib
