// Package contract defines the versioned Instrument Controller capability
// contract: the command, reply, and event shapes a controller must satisfy,
// the canonical envelope the platform consumes, and the dead-letter envelope
// used when normalization fails.
//
// The package is pure data plus schema validation. All behavior (state
// machines, normalization, routing) lives in the controller and bridge
// services; anything crossing a service boundary is shaped by the types and
// JSON Schemas defined here.
package contract
