// Package diag defines the diagnostic model shared by every phase of the
// front-end: lexing, preprocessing, elaboration and binding.
//
// Diagnostic is the central record: a Code, a Severity, a primary
// source.Span, a rendered message and optional notes pointing at related
// locations. Phases never format or print; they emit through a Reporter
// (usually a BagReporter aggregating into a Bag) and the CLI renders the
// bag once, in emission order, via internal/diagfmt.
//
// Errors are recorded, not thrown: a phase that reports an error keeps
// going and produces an error-marker entity so that one compile surfaces
// as many findings as possible. The bag therefore preserves emission
// order, which is part of the deterministic-output contract.
package diag
