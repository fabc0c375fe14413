package raytracer

var (
	Debug = false // record every traced ray in the ray log
)
