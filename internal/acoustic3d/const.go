package acoustic3d

const (
	SpeedOfSound     = 340.0 // m/s
	Spacing          = 0.1   // metres between waveguide nodes
	Rays             = 1 << 12
	ReflectionDepth  = 16
	ImageSourceDepth = 3
	Output           = "results.json"
	MetricsPath      = "/metrics"
)
