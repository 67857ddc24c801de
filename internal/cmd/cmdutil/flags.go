// Package cmdutil provides flag helpers shared by the kodepos commands.
package cmdutil

import (
	"time"

	"github.com/spf13/cobra"
)

// MustGetString retrieves a string flag value or panics if the flag
// doesn't exist. Only use it for flags the command itself defines.
func MustGetString(cmd *cobra.Command, name string) string {
	val, err := cmd.Flags().GetString(name)
	if err != nil {
		panic("programming error: failed to get flag " + name + ": " + err.Error())
	}
	return val
}

// MustGetBool retrieves a boolean flag value or panics if the flag doesn't exist.
func MustGetBool(cmd *cobra.Command, name string) bool {
	val, err := cmd.Flags().GetBool(name)
	if err != nil {
		panic("programming error: failed to get flag " + name + ": " + err.Error())
	}
	return val
}

// MustGetInt retrieves an int flag value or panics if the flag doesn't exist.
func MustGetInt(cmd *cobra.Command, name string) int {
	val, err := cmd.Flags().GetInt(name)
	if err != nil {
		panic("programming error: failed to get flag " + name + ": " + err.Error())
	}
	return val
}

// MustGetDuration retrieves a duration flag value or panics if the flag doesn't exist.
func MustGetDuration(cmd *cobra.Command, name string) time.Duration {
	val, err := cmd.Flags().GetDuration(name)
	if err != nil {
		panic("programming error: failed to get flag " + name + ": " + err.Error())
	}
	return val
}

// MustGetStringSlice retrieves a string slice flag value or panics if the flag doesn't exist.
func MustGetStringSlice(cmd *cobra.Command, name string) []string {
	val, err := cmd.Flags().GetStringSlice(name)
	if err != nil {
		panic("programming error: failed to get flag " + name + ": " + err.Error())
	}
	return val
}

// MarkRequired marks flags as required and panics if one doesn't exist.
func MarkRequired(cmd *cobra.Command, names ...string) {
	for _, name := range names {
		if err := cmd.MarkFlagRequired(name); err != nil {
			panic("programming error: failed to mark flag " + name + " required: " + err.Error())
		}
	}
}
