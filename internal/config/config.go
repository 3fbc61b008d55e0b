// Package config loads analysis options from a TOML file.
package config

import (
	"fmt"
	"runtime"

	"github.com/BurntSushi/toml"
)

// Options controls one data layout analysis run.
type Options struct {
	// Workers bounds parallel link collection. Graph mutation is always
	// sequential.
	Workers int `toml:"workers"`
	// VerifyBetweenPhases runs the verification suite after every pipeline
	// phase instead of only before emission.
	VerifyBetweenPhases bool `toml:"verify_between_phases"`
	// SnapshotDir, when set, receives a msgpack snapshot of the graph after
	// each phase.
	SnapshotDir string `toml:"snapshot_dir"`
	// DumpDot writes a DOT dump of the final graph next to the snapshots.
	DumpDot bool `toml:"dump_dot"`
}

// Default returns the options used when no config file is present.
func Default() Options {
	return Options{
		Workers:             runtime.NumCPU(),
		VerifyBetweenPhases: true,
	}
}

// Load reads options from a TOML file, starting from Default. Unknown keys
// are rejected; the worker count is clamped to at least one.
func Load(path string) (Options, error) {
	opts := Default()
	meta, err := toml.DecodeFile(path, &opts)
	if err != nil {
		return Options{}, fmt.Errorf("config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Options{}, fmt.Errorf("config: unknown key %q", undecoded[0].String())
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	return opts, nil
}
