package app

import (
	cliflag "k8s.io/component-base/cli/flag"
)

// CliOptions abstracts configuration options for reading parameters from the
// command line.
type CliOptions interface {
	// Flags returns the flag sets grouped by concern.
	Flags() cliflag.NamedFlagSets
}

// NamedFlagSetOptions is implemented by the option struct of every binary.
// Complete fills derived values after flags, config file and environment have
// been merged; Validate reports every invalid value at once.
type NamedFlagSetOptions interface {
	CliOptions

	Complete() error
	Validate() error
}
