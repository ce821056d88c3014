// Package media models the files flowing through bobbin: probed inputs with
// their streams and chapters, and the planned outputs derived from them.
//
// Probe metadata stays close to its wire shape (string-keyed trees) so
// snippet expressions can navigate any field ffprobe reports, with typed
// accessors for the handful of fields the engine itself reads.
package media
