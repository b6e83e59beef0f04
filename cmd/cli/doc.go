// Package cli wires the repogov root command: persistent configuration and
// logging flags, the scan, sync, and tier subcommands, and logger lifecycle
// management.
package cli
