package imagesource

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	pathsChecked = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "acoustic3d_image_source_paths_total",
		Help: "Candidate image-source paths by validation outcome",
	}, []string{"outcome"})

	searchSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "acoustic3d_image_source_search_seconds",
		Help:    "Image-source tree search duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.0001, 2, 16),
	})
)
