// Package internal contains test helpers for uitest.
package internal

// RunAction is used only in unit tests, but exported because it has to be in a separate package
// so that stacktraces show a frame outside of uitest.
func RunAction(action func()) {
	action()
}
