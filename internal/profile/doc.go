// Package profile defines the declarative transform profile: what to do with
// a media file that appears in the input directory. A profile is loaded once
// at startup, validated, and never mutated afterwards.
package profile
