// Package orchestrator wires the loader → format adapter → builder pipeline
// that turns schema documents into field trees, and the reverse serializer →
// exporter path, behind a single dependency injection friendly entry point.
package orchestrator
