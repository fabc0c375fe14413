package mesh

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	meshNodes = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "acoustic3d_mesh_nodes",
		Help: "Lattice nodes of the last built mesh by classification",
	}, []string{"classification"})

	meshBuildSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "acoustic3d_mesh_build_seconds",
		Help:    "Mesh build duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 14),
	})
)
