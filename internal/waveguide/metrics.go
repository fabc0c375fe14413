package waveguide

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var stepSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
	Name:    "acoustic3d_waveguide_step_seconds",
	Help:    "Duration of one waveguide step in seconds",
	Buckets: prometheus.ExponentialBuckets(0.00001, 2, 18),
})
