package metrics

// Metric names
const (
	MetricNameHTTPRequestsTotal   = "droppy_http_requests_total"
	MetricNameHTTPRequestDuration = "droppy_http_request_duration_seconds"
	MetricNameWikiFetchesTotal    = "droppy_wiki_fetches_total"
	MetricNameWikiFetchDuration   = "droppy_wiki_fetch_duration_seconds"
	MetricNameSourcesScrapedTotal = "droppy_sources_scraped_total"
	MetricNameDropsExtractedTotal = "droppy_drops_extracted_total"
	MetricNameFallbackPagesTotal  = "droppy_fallback_pages_total"
	MetricNameScrapeRunsTotal     = "droppy_scrape_runs_total"
	MetricNameScrapeRunDuration   = "droppy_scrape_run_duration_seconds"
	MetricNameDryResponsesInStore = "droppy_dry_responses"
)

// Metric help text
const (
	HelpTextHTTPRequestsTotal   = "Total number of HTTP requests"
	HelpTextHTTPRequestDuration = "HTTP request latency in seconds"
	HelpTextWikiFetchesTotal    = "Total number of wiki page fetches by result"
	HelpTextWikiFetchDuration   = "Wiki page fetch latency in seconds"
	HelpTextSourcesScrapedTotal = "Total number of sources scraped by result"
	HelpTextDropsExtractedTotal = "Total number of drop records extracted"
	HelpTextFallbackPagesTotal  = "Total number of pages resolved through a fallback suffix"
	HelpTextScrapeRunsTotal     = "Total number of full scrape runs by result"
	HelpTextScrapeRunDuration   = "Full scrape run duration in seconds"
	HelpTextDryResponsesInStore = "Current number of stored dry responses"
)

// Label names
const (
	LabelMethod = "method"
	LabelPath   = "path"
	LabelStatus = "status"
	LabelResult = "result"
)

// Label values for LabelResult
const (
	ResultOK       = "ok"
	ResultNotFound = "not_found"
	ResultError    = "error"
	ResultEmpty    = "empty"
)

var HTTPLatencyBuckets = []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}

var WikiLatencyBuckets = []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30}
