package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder bundles the process metrics behind a private registry so
// tests can construct isolated instances without collision panics.
type Recorder struct {
	registry *prometheus.Registry

	effectsApplied   *prometheus.CounterVec
	pipelineDuration prometheus.Histogram
	previewDuration  *prometheus.HistogramVec
	cacheHits        prometheus.Counter
	cacheMisses      prometheus.Counter
	sessionLoads     *prometheus.CounterVec
	imagesLoaded     *prometheus.CounterVec
}

func NewRecorder() *Recorder {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Recorder{
		registry: registry,
		effectsApplied: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "effects_studio",
			Name:      "effects_applied_total",
			Help:      "Effect applications by effect name.",
		}, []string{"effect"}),
		pipelineDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "effects_studio",
			Name:      "pipeline_duration_seconds",
			Help:      "Wall time of full-resolution pipeline runs.",
			Buckets:   prometheus.DefBuckets,
		}),
		previewDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "effects_studio",
			Name:      "preview_duration_seconds",
			Help:      "Wall time of preview renders by quality mode.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"quality"}),
		cacheHits: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "effects_studio",
			Name:      "preview_cache_hits_total",
			Help:      "Preview renders served from the fingerprint cache.",
		}),
		cacheMisses: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "effects_studio",
			Name:      "preview_cache_misses_total",
			Help:      "Preview renders that required a pipeline run.",
		}),
		sessionLoads: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "effects_studio",
			Name:      "model_session_loads_total",
			Help:      "Model session load attempts by model and result.",
		}, []string{"model", "result"}),
		imagesLoaded: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "effects_studio",
			Name:      "images_loaded_total",
			Help:      "Source images loaded by origin.",
		}, []string{"origin"}),
	}
}

func (r *Recorder) EffectApplied(effect string) {
	r.effectsApplied.WithLabelValues(effect).Inc()
}

func (r *Recorder) PipelineObserved(seconds float64) {
	r.pipelineDuration.Observe(seconds)
}

func (r *Recorder) PreviewObserved(quality string, seconds float64) {
	r.previewDuration.WithLabelValues(quality).Observe(seconds)
}

func (r *Recorder) CacheHit() {
	r.cacheHits.Inc()
}

func (r *Recorder) CacheMiss() {
	r.cacheMisses.Inc()
}

func (r *Recorder) SessionLoad(model, result string) {
	r.sessionLoads.WithLabelValues(model, result).Inc()
}

func (r *Recorder) ImageLoaded(origin string) {
	r.imagesLoaded.WithLabelValues(origin).Inc()
}

// Handler serves the registry in the Prometheus text format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
