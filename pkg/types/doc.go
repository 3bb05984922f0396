// Package types defines the Item record and its lifecycle rules, the clock
// and calendar the rules depend on, the ItemRepository and Pantry storage
// interfaces, configuration, and the error types shared by the pantry
// backend and CLI.
package types
