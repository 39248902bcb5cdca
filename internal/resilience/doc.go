// Package resilience groups the failure-handling helpers used by the ingestion
// adapters: circuit breakers around remote calls and retries with exponential
// backoff. Reads and writes of the content repository never go through them.
package resilience
