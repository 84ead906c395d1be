// Package classify turns live observations and explicit session events into
// bounded corrective actions. The DecisionEngine evaluates a fixed priority
// ladder over one Observation snapshot; the Orchestrator routes explicit
// events to one of six specialist classifiers, each with a closed output
// vocabulary. Nothing in this package mutates trip state.
package classify
