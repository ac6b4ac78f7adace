// Package domain models regional mesh statistics as they move through the ETL
// pipeline.
//
// # Data Source
//
// Statistics come from the e-Stat regional mesh tables (for example the 2020
// census population tables, tblT001227). The ingest command parses the
// distributed text files and publishes one JSON message per row to the source
// topic:
//
//	{"KEY_CODE": "53394611341", "values": {"人口（総数）": 100, ...}}
//
// KEY_CODE may arrive as a string or a JSON number. Numeric codes are
// formatted back to their decimal digits before decoding.
//
// # Cell Events
//
// Each message becomes a [CellEvent]: the mesh code decoded into its level,
// center point, bounding box and closed polygon ring (lon/lat order, five
// points, first = last), plus the original statistic values. When a target
// level is configured, the code of the enclosing cell at that level is
// attached as Parent so consumers can group without decoding.
//
// Malformed codes (non-digits, out-of-range digits, lengths outside 4–11) are
// rejected by [ParseRawEvent]; the pipeline logs and skips them.
//
// # ID Generation
//
// Event IDs are deterministic SHA-256 hashes of the mesh code, prefixed with
// the level ("L3-1f2e..."). Reprocessing the same row yields the same ID, so
// downstream stores can upsert idempotently. See [generateID].
package domain
