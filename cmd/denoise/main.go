// Command denoise reads a stream of change-detection events as JSON lines
// from stdin, classifies them through one configurable filter, and writes
// the retained events as JSON lines to stdout. It also serves Prometheus
// metrics over HTTP so a long-running pipeline can be scraped.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/asgard/denoise/pkg/denoise"
)

type wireEvent struct {
	X int64 `json:"x"`
	Y int64 `json:"y"`
	P uint8 `json:"p"`
	T int64 `json:"t"`
}

func main() {
	addr := flag.String("addr", ":8090", "metrics server address")
	width := flag.Int("width", 1280, "sensor width")
	height := flag.Int("height", 720, "sensor height")
	name := flag.String("filter", "dwf", "filter to run: dwf, ynf, kd, tsd, red, eff")
	flag.Parse()

	log := denoise.NewLogger("info", "stdout")
	instance := uuid.New()
	entry := log.WithField("instance", instance).WithField("filter", *name)

	geometry, err := denoise.NewGeometry(uint16(*width), uint16(*height))
	if err != nil {
		entry.Fatalf("invalid geometry: %v", err)
	}

	f, err := buildFilter(*name, geometry)
	if err != nil {
		entry.Fatalf("failed to construct filter: %v", err)
	}
	instrumented := denoise.WithMetrics(f, *name)

	router := chi.NewRouter()
	router.Handle("/metrics", promhttp.Handler())
	server := &http.Server{Addr: *addr, Handler: router}

	go func() {
		entry.Infof("metrics server listening on %s", *addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			entry.Errorf("metrics server stopped: %v", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	done := make(chan struct{})
	go func() {
		defer close(done)
		runPipeline(entry, instrumented)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		entry.Info("shutting down on signal")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = server.Shutdown(shutdownCtx)
}

func buildFilter(name string, geometry denoise.Geometry) (denoise.Filter, error) {
	switch name {
	case "dwf":
		return denoise.NewDoubleWindowFilterDefault()
	case "ynf":
		return denoise.NewYangNoiseFilterDefault(geometry)
	case "kd":
		return denoise.NewKhodamoradiDenoiserDefault(geometry)
	case "tsd":
		return denoise.NewTimeSurfaceDenoisorDefault(geometry)
	case "red":
		return denoise.NewReclusiveEventDenoisor(geometry, 10000, 1)
	case "eff":
		return denoise.NewEventFlowFilterDefault()
	default:
		return nil, fmt.Errorf("unknown filter %q", name)
	}
}

func runPipeline(entry interface {
	Infof(string, ...interface{})
	Errorf(string, ...interface{})
}, f denoise.Filter) {
	scanner := bufio.NewScanner(os.Stdin)
	writer := bufio.NewWriter(os.Stdout)
	defer writer.Flush()

	var total, retained int
	for scanner.Scan() {
		var we wireEvent
		if err := json.Unmarshal(scanner.Bytes(), &we); err != nil {
			entry.Errorf("skipping malformed event: %v", err)
			continue
		}
		e := denoise.Event{X: uint16(we.X), Y: uint16(we.Y), Polarity: we.P, T: we.T}
		total++
		if f.Evaluate(e) {
			retained++
			out, _ := json.Marshal(wireEvent{X: int64(e.X), Y: int64(e.Y), P: e.Polarity, T: e.T})
			writer.Write(out)
			writer.WriteByte('\n')
		}
	}
	entry.Infof("processed %d events, retained %d", total, retained)
}
