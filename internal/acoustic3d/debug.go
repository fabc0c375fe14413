package acoustic3d

import (
	"fmt"
	"log/slog"
	"os"
	"sync"
)

func DebugLog(format string, args ...interface{}) {
	if !Debug {
		return
	}
	fmt.Printf("[DEBUG] "+format+"\n", args...)
}

var once sync.Once

func DebugLogOnce(format string, args ...interface{}) {
	if !Debug {
		return
	}
	once.Do(func() {
		fmt.Printf("[DEBUG] "+format+"\n", args...)
	})
}

// newLogger tags every record with the run id.
func newLogger(runID string) *slog.Logger {
	level := slog.LevelInfo
	if Debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})).With("run_id", runID)
}

func progressPrinter(stage string) func(step, total int) {
	next := 0
	return func(step, total int) {
		if !Debug || total == 0 {
			return
		}
		pct := step * 100 / total
		if pct < next && step != total {
			return
		}
		next = pct + 1
		fmt.Printf("[PROGRESS] %s %.2f%%\n", stage, float64(step)*100/float64(total))
	}
}
