package boundary

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	filtersDesigned = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "acoustic3d_boundary_filters_total",
		Help: "Designed surface filters by stability result",
	}, []string{"result"})

	boundarySlots = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "acoustic3d_boundary_data_entries",
		Help: "Boundary-data table rows of the last assignment by directions per node",
	}, []string{"directions"})
)
