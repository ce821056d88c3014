// Package config loads and validates bobbin's daemon settings.
//
// Settings tune the runtime (stabilization window, inter-task delay, logging,
// external binaries); they are distinct from the transform profile, which
// lives in internal/profile. Settings come from an optional TOML file merged
// over repository defaults.
package config
