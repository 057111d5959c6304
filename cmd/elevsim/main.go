package main

import (
	"context"
	"flag"
	"math/rand"
	"os"
	"os/signal"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/karsonchau/Elevator-System/internal/elevconfig"
	"github.com/karsonchau/Elevator-System/internal/elevctrl"
	"github.com/karsonchau/Elevator-System/internal/elevevent"
	"github.com/karsonchau/Elevator-System/internal/logger"
)

var Logger = logger.GetLoggerConfigured(zerolog.InfoLevel)

// Load generator: submits random valid requests at a fixed period and
// reports dispatch statistics once everything has settled.
func main() {
	configPath := flag.String("config", "", "Path to a YAML configuration file. Defaults to built-in configuration")
	requestCount := flag.Int("requests", 50, "Number of requests to submit")
	periodMs := flag.Int("period-ms", 500, "Delay between submissions in milliseconds")
	flag.Parse()

	config, err := elevconfig.Load(*configPath)
	if err != nil {
		Logger.Fatal().Msgf("Error loading configuration: %v", err)
	}

	bus := elevevent.NewBus()
	controller, err := elevctrl.NewController(config, bus)
	if err != nil {
		Logger.Fatal().Msgf("Error building controller: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	runCtx, cancel := context.WithCancel(ctx)
	wg := &sync.WaitGroup{}

	controller.Start(runCtx, wg)
	for id := 1; id <= config.ElevatorCount; id++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			if err := controller.RunElevator(runCtx, id); err != nil {
				Logger.Error().Msgf("Elevator %d stopped: %v", id, err)
			}
		}(id)
	}

	Logger.Info().Msgf("Submitting %d requests every %dms across floors %d to %d",
		*requestCount, *periodMs, config.MinFloor, config.MaxFloor)

	submissions := &sync.WaitGroup{}
	period := time.Duration(*periodMs) * time.Millisecond
	for i := 0; i < *requestCount && ctx.Err() == nil; i++ {
		from := config.MinFloor + rand.Intn(config.FloorCount())
		to := from
		for to == from {
			to = config.MinFloor + rand.Intn(config.FloorCount())
		}
		submissions.Add(1)
		go func(from, to int) {
			defer submissions.Done()
			if _, err := controller.SubmitRequest(runCtx, from, to); err != nil {
				Logger.Error().Msgf("Error submitting request (%d to %d): %v", from, to, err)
			}
		}(from, to)

		select {
		case <-ctx.Done():
		case <-time.After(period):
		}
	}
	submissions.Wait()

	waitUntilSettled(ctx, controller, config.RequestTimeout)
	report(controller)

	cancel()
	wg.Wait()
}

// waitUntilSettled polls the tracker until no request is still in flight.
// The timeout sweep guarantees this terminates within the request timeout.
func waitUntilSettled(ctx context.Context, controller *elevctrl.Controller, timeout time.Duration) {
	deadline := time.Now().Add(timeout + 5*time.Second)
	for time.Now().Before(deadline) && ctx.Err() == nil {
		if controller.TrackerStats().Active == 0 {
			return
		}
		time.Sleep(100 * time.Millisecond)
	}
}

func report(controller *elevctrl.Controller) {
	stats := controller.TrackerStats()
	Logger.Info().Msgf("Requests: %d tracked, %d timed out, avg completion %v",
		stats.TotalTracked, stats.TimedOut, stats.AvgCompletionTime)
	for status, count := range stats.ByStatus {
		Logger.Info().Msgf("  %v: %d", status, count)
	}

	retry := controller.RetryStats()
	Logger.Info().Msgf("Operations: %d successes, %d failures, %d retries, success rate %.2f",
		retry.TotalSuccesses, retry.TotalFailures, retry.TotalRetries, retry.SuccessRate)

	verdict, issues := controller.Health()
	Logger.Info().Msgf("Health: %v, issues: %v", verdict, issues)
}
