// Package aggregate builds the latest-snapshot country stats and the combined
// socioeconomic dataset from the World Bank indicators.
//
// Joins follow relational semantics: unmatched rows are dropped at inner
// joins and duplicate keys multiply rows. Nothing here raises on lost rows;
// callers log the counts.
package aggregate
