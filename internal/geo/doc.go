// Package geo builds the country reference tables: continents from the
// datahub code table, mean coordinates from the JHU regions, and the
// country-to-continent join. Names are reconciled with config.Reference
// aliases before any join.
package geo
