// Package framework contains the low-level pieces of the UI test harness that do not know
// anything about the application being tested. The base package holds shared types such as
// Logger; the subpackages provide the rest:
//
// 1. harness waits for the application under test to come up and resolves its page URLs.
//
// 2. browser wraps third-party browser automation clients behind a small Driver interface.
//
// 3. uitest is a test runner similar to Go's testing package, except that it runs as regular
// application code, never aborts a batch because of one bad test, and reports every outcome
// as passed, failed, or errored.
//
// The domain-specific code that knows which pages to visit and which messages to expect lives
// outside of this package tree.
package framework
