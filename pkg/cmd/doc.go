// Package cmd wires up the trackeraudit command tree. Commands resolve
// their connection settings from the config file, environment variables,
// and flags, in increasing order of precedence.
package cmd
