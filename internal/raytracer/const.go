package raytracer

import "math"

// golden angle for the Fibonacci sphere
const goldenAngle = math.Pi * (3 - 2.23606797749979)
