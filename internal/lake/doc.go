// Package lake mirrors the processed tables into a DuckDB file for ad-hoc
// SQL. Time series are stored in tidy long form (date, country, value) with
// missing cells left out; record tables keep their columns.
//
// Tables are replaced wholesale on every run by loading a temporary CSV
// with COPY inside a transaction.
package lake
