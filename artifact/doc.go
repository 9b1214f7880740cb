// Package artifact contains concrete implementations of core.ArtifactStore,
// used to keep the cropped avatar images produced during persona assembly.
//
// The interface lives in the core package so the avatar pipeline and the
// engine depend on the contract rather than on a concrete backend.
package artifact
