// Package mapping expands a profile's mapping rules against a probed input
// into a plan of output media.
//
// Each mapping dispatches by its "on" selector: the whole input (single), one
// output per chapter (chapters), or one output per matching stream (many).
// The builder produces outputs with template parameters still embedded
// (chapter outputs excepted, which it resolves per chapter); the
// post-resolve pass substitutes them once the full output context is known.
package mapping
