// Package viz reads the processed tables back and turns them into area
// case series, country rankings, regressions and charts. Charts are drawn
// by gnuplot; listings are plain text tables.
package viz
