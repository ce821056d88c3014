// Package worker turns a resolved plan into one ffmpeg invocation and
// surfaces its lifecycle to a fixed, ordered list of observers.
//
// A worker is single-use. Its default observers handle transcode logging,
// progress reporting, and the post-success/post-failure filesystem side
// effects (exclude list, ownership, cleanup).
package worker
