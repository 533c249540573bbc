// Package export provides point backup and restore functionality.
//
// # Overview
//
// The export package enables users to dump stored data points to JSON, CSV
// or Parquet files and restore JSON backups later. This is useful for:
//   - Data backup and disaster recovery
//   - Migrating points between instances
//   - Exporting data for analysis in external tools
//   - Archiving historical data
//
// # Supported Formats
//
// JSON Format:
//   - Preserves every point field (id, ts, value, meta)
//   - Includes export metadata (timestamp, time range, point count)
//   - Can be re-imported (ids are reassigned by the receiving store)
//   - Human-readable with pretty-printing
//
// CSV Format:
//   - Flattened id,ts,value,meta rows suitable for spreadsheets
//   - Metadata column holds the raw JSON string, empty when absent
//   - Export-only
//
// Parquet Format:
//   - Columnar file with snappy compression, schema inferred from struct tags
//   - Timestamps keep their full precision
//   - Good for analysis with DuckDB, pandas or Spark
//   - Export-only
//
// # HTTP API
//
// Export endpoint: GET /api/export
// Query parameters:
//   - format: "json", "csv" or "parquet" (default: json)
//   - since, until: optional range bounds, normalized exactly like the
//     /api/data parameters (epoch seconds or ISO timestamps)
//
// Example:
//
//	curl "http://localhost:8080/api/export?format=parquet&since=1700000000" \
//	  -o backup.parquet
//
// Import endpoint: POST /api/import
// Content-Type: application/json
//
// Example:
//
//	curl -X POST "http://localhost:8080/api/import" \
//	  -H "Content-Type: application/json" \
//	  -d @backup.json
//
// # Data Format
//
// The JSON export envelope includes metadata and points:
//
//	{
//	  "metadata": {
//	    "exported_at": "2025-11-19T03:00:00Z",
//	    "since": null,
//	    "until": "2025-11-19T03:00:00+00:00",
//	    "point_count": 1000,
//	    "format": "json",
//	    "version": "1.0"
//	  },
//	  "points": [
//	    {
//	      "id": 1,
//	      "ts": "2025-11-19T02:30:00+00:00",
//	      "value": 42.5,
//	      "meta": {"host": "web-1"}
//	    }
//	  ]
//	}
//
// # Error Handling
//
// Import operations validate each point and skip invalid ones rather than
// failing the entire import. Validation errors are reported in the
// ImportResult:
//
//	result, err := importer.ImportFromJSON(ctx, file)
//	if err != nil {
//	    // Fatal error - import could not proceed
//	    log.Fatal(err)
//	}
//
//	if len(result.Errors) > 0 {
//	    // Some points were invalid and skipped
//	    for _, errMsg := range result.Errors {
//	        log.Printf("Validation error: %s", errMsg)
//	    }
//	}
package export
