// Package ingest reads the raw inputs (JHU case files, the datahub code
// table, World Bank indicators) and the processed tables into domain types.
//
// Readers locate columns by header name, tolerate a UTF-8 byte order mark
// and fail with a schema error when a required column is absent. Empty
// numeric cells are returned as missing values.
package ingest
