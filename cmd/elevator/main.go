package main

import (
	"context"
	"math/rand"
	"sync"

	"github.com/eiannone/keyboard"
	"github.com/rs/zerolog"
	"github.com/xyproto/randomstring"

	"github.com/karsonchau/Elevator-System/internal/elevconfig"
	"github.com/karsonchau/Elevator-System/internal/elevctrl"
	"github.com/karsonchau/Elevator-System/internal/elevevent"
	"github.com/karsonchau/Elevator-System/internal/elevutils"
	"github.com/karsonchau/Elevator-System/internal/logger"
)

var Logger = logger.GetLoggerConfigured(zerolog.InfoLevel)

const IDENTIFIER_DEFAULT_LEN = 8

func main() {
	identifier, configPath := elevutils.ProcessCmdArgs()
	if identifier == "" {
		identifier = randomstring.EnglishFrequencyString(IDENTIFIER_DEFAULT_LEN) //this should be random enough
	}

	// Starting Programme
	Logger.Info().Msgf("Starting Elevator Dispatch System, session %v", identifier)

	config, err := elevconfig.Load(configPath)
	if err != nil {
		Logger.Fatal().Msgf("Error loading configuration: %v", err)
	}

	bus := elevevent.NewBus()
	controller, err := elevctrl.NewController(config, bus)
	if err != nil {
		Logger.Fatal().Msgf("Error building controller: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	wg := &sync.WaitGroup{}

	events := bus.Subscribe()
	wg.Add(1)
	go func() {
		defer wg.Done()
		logEvents(ctx, events)
	}()

	controller.Start(ctx, wg)
	for id := 1; id <= config.ElevatorCount; id++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			if err := controller.RunElevator(ctx, id); err != nil {
				Logger.Error().Msgf("Elevator %d stopped: %v", id, err)
			}
		}(id)
	}

	runInput(ctx, controller, config)

	Logger.Info().Msg("Stopping Elevator Dispatch System")
	cancel()
	wg.Wait()
	Logger.Info().Msg("Elevator Dispatch System stopped")
}

func logEvents(ctx context.Context, events <-chan elevevent.ElevatorEvent) {
	for {
		select {
		case <-ctx.Done():
			return
		case event := <-events:
			Logger.Debug().Msgf("Event %v: %+v", event.EventType(), event.Value)
		}
	}
}

func runInput(ctx context.Context, controller *elevctrl.Controller, config elevconfig.Config) {
	Logger.Info().Msg("Keys: s submit random request, p print status, h print health, q/esc/ctrl-c quit")
	for {
		if ctx.Err() != nil {
			return
		}
		char, key, err := keyboard.GetSingleKey()
		if err != nil {
			Logger.Error().Msgf("Error reading keyboard: %v", err)
			<-ctx.Done()
			return
		}
		if key == keyboard.KeyCtrlC || key == keyboard.KeyEsc || char == 'q' {
			return
		}
		switch char {
		case 's':
			submitRandom(ctx, controller, config)
		case 'p':
			printStatus(controller)
		case 'h':
			printHealth(controller)
		}
	}
}

// submitRandom fires the submission from its own goroutine so a full
// admission queue never blocks the keyboard loop.
func submitRandom(ctx context.Context, controller *elevctrl.Controller, config elevconfig.Config) {
	from := config.MinFloor + rand.Intn(config.FloorCount())
	to := from
	for to == from {
		to = config.MinFloor + rand.Intn(config.FloorCount())
	}
	go func() {
		id, err := controller.SubmitRequest(ctx, from, to)
		if err != nil {
			Logger.Error().Msgf("Error submitting request (%d to %d): %v", from, to, err)
			return
		}
		Logger.Info().Msgf("Submitted request %v (%d to %d)", id, from, to)
	}()
}

func printStatus(controller *elevctrl.Controller) {
	for _, snapshot := range controller.GetElevatorStatus() {
		Logger.Info().Msgf("Elevator: %v", snapshot.String())
	}
	stats := controller.TrackerStats()
	Logger.Info().Msgf("Requests: %d tracked, %d active, %d timed out, avg completion %v",
		stats.TotalTracked, stats.Active, stats.TimedOut, stats.AvgCompletionTime)
}

func printHealth(controller *elevctrl.Controller) {
	verdict, issues := controller.Health()
	Logger.Info().Msgf("Health: %v, issues: %v", verdict, issues)
	retry := controller.RetryStats()
	Logger.Info().Msgf("Operations: %d successes, %d failures, %d retries, success rate %.2f",
		retry.TotalSuccesses, retry.TotalFailures, retry.TotalRetries, retry.SuccessRate)
}
