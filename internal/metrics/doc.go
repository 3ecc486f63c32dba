// Package metrics derives daily changes, days-since-threshold alignment and
// mortality rates from the reshaped case tables. Every function returns a
// new table and leaves its inputs untouched.
package metrics
