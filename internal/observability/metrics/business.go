package metrics

import (
	"time"

	"amazetimes/internal/query"
)

// RecordArticleMutation records an article write. Operation is one of
// "create", "update" or "delete"; source may be empty when unknown.
func RecordArticleMutation(operation, source string) {
	if source == "" {
		source = "unknown"
	}
	ArticleMutationsTotal.WithLabelValues(operation, source).Inc()
}

// RecordEditorSubmission records the outcome of an admin editor submit.
func RecordEditorSubmission(mode, result string) {
	EditorSubmissionsTotal.WithLabelValues(mode, result).Inc()
}

// RecordEditorValidationFailure records the first field that failed validation.
func RecordEditorValidationFailure(field string) {
	EditorValidationFailuresTotal.WithLabelValues(field).Inc()
}

// RecordLanguageSwitch records a display language change.
func RecordLanguageSwitch(language string) {
	LanguageSwitchesTotal.WithLabelValues(language).Inc()
}

// RecordAdPlacementFailure records an ad slot that failed to fill.
func RecordAdPlacementFailure(page string) {
	if page == "" {
		page = "unknown"
	}
	AdPlacementFailuresTotal.WithLabelValues(page).Inc()
}

// RecordIngestedItems records feed items processed for one source.
func RecordIngestedItems(source string, inserted, duplicated, failed int) {
	ArticlesIngestedTotal.WithLabelValues(source, "inserted").Add(float64(inserted))
	ArticlesIngestedTotal.WithLabelValues(source, "duplicate").Add(float64(duplicated))
	ArticlesIngestedTotal.WithLabelValues(source, "failed").Add(float64(failed))
}

// RecordFeedCrawl records how long crawling one source took.
func RecordFeedCrawl(source string, duration time.Duration) {
	FeedCrawlDuration.WithLabelValues(source).Observe(duration.Seconds())
}

// RecordFeedCrawlError records an error during feed crawling.
func RecordFeedCrawlError(source, errorType string) {
	FeedCrawlErrors.WithLabelValues(source, errorType).Inc()
}

// RecordTranslation records a translation call and its duration.
func RecordTranslation(provider string, success bool, duration time.Duration) {
	status := "success"
	if !success {
		status = "failure"
	}
	TranslationsTotal.WithLabelValues(provider, status).Inc()
	TranslationDuration.Observe(duration.Seconds())
}

// RecordContentFetchSuccess records a successful content fetch operation.
func RecordContentFetchSuccess(duration time.Duration) {
	ContentFetchAttemptsTotal.WithLabelValues("success").Inc()
	ContentFetchDuration.Observe(duration.Seconds())
}

// RecordContentFetchFailed records a failed content fetch operation.
func RecordContentFetchFailed(duration time.Duration) {
	ContentFetchAttemptsTotal.WithLabelValues("failure").Inc()
	ContentFetchDuration.Observe(duration.Seconds())
}

// RecordContentFetchSkipped records a fetch skipped because the feed text was long enough.
func RecordContentFetchSkipped() {
	ContentFetchAttemptsTotal.WithLabelValues("skipped").Inc()
}

// RecordDBQuery records the duration of a database query operation.
// Operation should describe the query type (e.g., "list_latest", "get_by_slug").
func RecordDBQuery(operation string, duration time.Duration) {
	DBQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// UpdateDBConnectionStats updates database connection pool statistics.
func UpdateDBConnectionStats(active, idle int) {
	DBConnectionsActive.Set(float64(active))
	DBConnectionsIdle.Set(float64(idle))
}

// QueryObserver reports query cache events to Prometheus.
type QueryObserver struct{}

var _ query.Observer = QueryObserver{}

func (QueryObserver) Hit(op query.Op) {
	QueryCacheEventsTotal.WithLabelValues(string(op), "hit").Inc()
}

func (QueryObserver) Miss(op query.Op) {
	QueryCacheEventsTotal.WithLabelValues(string(op), "miss").Inc()
}

func (QueryObserver) Invalidated(op query.Op, n int) {
	QueryCacheEventsTotal.WithLabelValues(string(op), "invalidated").Add(float64(n))
}
