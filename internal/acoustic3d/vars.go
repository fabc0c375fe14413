package acoustic3d

var (
	Debug   = false // set to true for verbose debug output
	Workers = 0     // ray and image-source workers, 0 means one per CPU
)
