package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP Metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameHTTPRequestsTotal,
			Help: HelpTextHTTPRequestsTotal,
		},
		[]string{LabelMethod, LabelPath, LabelStatus},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    MetricNameHTTPRequestDuration,
			Help:    HelpTextHTTPRequestDuration,
			Buckets: HTTPLatencyBuckets,
		},
		[]string{LabelMethod, LabelPath},
	)
)

// Wiki Metrics
var (
	WikiFetchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameWikiFetchesTotal,
			Help: HelpTextWikiFetchesTotal,
		},
		[]string{LabelResult},
	)

	WikiFetchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    MetricNameWikiFetchDuration,
			Help:    HelpTextWikiFetchDuration,
			Buckets: WikiLatencyBuckets,
		},
	)
)

// Scrape Metrics
var (
	SourcesScrapedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameSourcesScrapedTotal,
			Help: HelpTextSourcesScrapedTotal,
		},
		[]string{LabelResult},
	)

	DropsExtractedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameDropsExtractedTotal,
			Help: HelpTextDropsExtractedTotal,
		},
	)

	FallbackPagesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameFallbackPagesTotal,
			Help: HelpTextFallbackPagesTotal,
		},
	)

	ScrapeRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameScrapeRunsTotal,
			Help: HelpTextScrapeRunsTotal,
		},
		[]string{LabelResult},
	)

	ScrapeRunDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    MetricNameScrapeRunDuration,
			Help:    HelpTextScrapeRunDuration,
			Buckets: prometheus.ExponentialBuckets(1, 2, 12),
		},
	)
)

// Dry store
var DryResponsesInStore = promauto.NewGauge(
	prometheus.GaugeOpts{
		Name: MetricNameDryResponsesInStore,
		Help: HelpTextDryResponsesInStore,
	},
)
