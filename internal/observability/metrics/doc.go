// Package metrics holds the Prometheus collectors of the site and the
// ingestion worker, registered with the default registry and served on
// /metrics.
//
// Collectors are grouped by subsystem: http, content, ingest and db. Callers
// use the Record helpers rather than touching collectors directly:
//
//	start := time.Now()
//	articles, err := repo.List(ctx, filter)
//	metrics.RecordDBQuery("list_latest", time.Since(start))
package metrics
