// Package types defines the requirement graph entities, the Engine
// interface consumed by user-facing collaborators, configuration, and the
// standard error types for the SatReq requirements engine.
package types
