// Package reshape converts wide JHU case tables into Date-by-Country time
// series and derives the active case table.
package reshape
