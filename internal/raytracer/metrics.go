package raytracer

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	raysTraced = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "acoustic3d_raytracer_rays_total",
		Help: "Rays traced per step by result",
	}, []string{"category"})

	stepSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "acoustic3d_raytracer_step_seconds",
		Help:    "Duration of one reflection step in seconds",
		Buckets: prometheus.ExponentialBuckets(0.0001, 2, 16),
	})
)
