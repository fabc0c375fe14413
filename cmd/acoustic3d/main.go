package main

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime/pprof"
	"strconv"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lukaszgryglicki/acoustic3d/internal/acoustic3d"
	"github.com/lukaszgryglicki/acoustic3d/internal/raytracer"
)

func main() {
	acoustic3d.Debug = os.Getenv("DEBUG") != ""
	raytracer.Debug = os.Getenv("RAY_LOG") != ""
	if w, err := strconv.Atoi(os.Getenv("WORKERS")); err == nil {
		acoustic3d.Workers = w
	}
	profile := os.Getenv("PROFILE") != ""
	if profile {
		f, err := os.Create("cpu.out")
		if err != nil {
			panic(err)
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			panic(err)
		}
		defer func() {
			pprof.StopCPUProfile()
			_ = f.Close()
		}()
	}
	if addr := os.Getenv("METRICS_ADDR"); addr != "" {
		mux := http.NewServeMux()
		mux.Handle(acoustic3d.MetricsPath, promhttp.Handler())
		go func() {
			if err := http.ListenAndServe(addr, mux); err != nil {
				fmt.Printf("Metrics server: %v\n", err)
			}
		}()
	}

	var keepGoing atomic.Bool
	keepGoing.Store(true)
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)
	go func() {
		<-interrupt
		keepGoing.Store(false)
	}()

	cfg := "scenes/config.json"
	if len(os.Args) > 1 {
		cfg = os.Args[1]
	}
	if err := acoustic3d.Run(cfg, &keepGoing); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}
