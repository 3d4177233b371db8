// Package syntax declares the concrete syntax surface the elaboration
// engine consumes. The nodes are produced by an external parser; this
// package only fixes their shape so that scopes can defer them, the
// binder can walk them, and tests can build them directly.
package syntax
