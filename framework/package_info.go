// Package framework contains the low-level types shared by every part of the testing engine:
// the Logger interface, backend Capabilities, and the typed errors that engine operations
// return.
//
// The general model is:
//
// 1. A caller drives a web application through an engine.TestingEngine, which is implemented
// by more than one backend (see the backends directory).
//
// 2. Every backend reports failures with the same error types, defined here, so that callers
// can react to "element not found" or "unexpected dialog" without knowing which backend
// produced them.
//
// 3. Optional operations are advertised through Capabilities instead of being discovered by
// trial and error.
package framework
