// Package uitest contains a test runner that is similar to Go's testing package, but is run as
// regular application code rather than Go tests. Every test in a batch runs exactly once, in
// order, and its outcome is classified as passed, failed (an assertion did not hold), or
// errored (something unexpected went wrong, such as a missing page element); no outcome stops
// the tests that come after it. Results are streamed to pluggable TestLoggers and can be
// rendered as a table at the end of the run.
package uitest
