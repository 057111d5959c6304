package elevconfig

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/karsonchau/Elevator-System/internal/logger"
)

var Log = logger.GetLogger()

const (
	SCORER_DISTANCE = "distance"
	SCORER_SCANCOST = "scancost"

	QUEUE_CAPACITY_MIN = 10
)

type Config struct {
	MinFloor      int
	MaxFloor      int
	ElevatorCount int

	FloorMovementTime time.Duration
	LoadingTime       time.Duration
	RequestTimeout    time.Duration

	MaxRetryAttempts int
	RetryBaseDelay   time.Duration
	RetryMaxDelay    time.Duration

	BreakerFailureThreshold int
	BreakerFailureWindow    time.Duration
	BreakerOpenDuration     time.Duration

	HealthCheckInterval  time.Duration
	TimeoutCheckInterval time.Duration

	AssignmentScorer string
}

func Default() Config {
	return Config{
		MinFloor:                1,
		MaxFloor:                10,
		ElevatorCount:           2,
		FloorMovementTime:       1000 * time.Millisecond,
		LoadingTime:             2000 * time.Millisecond,
		RequestTimeout:          60 * time.Second,
		MaxRetryAttempts:        3,
		RetryBaseDelay:          500 * time.Millisecond,
		RetryMaxDelay:           10 * time.Second,
		BreakerFailureThreshold: 5,
		BreakerFailureWindow:    30 * time.Second,
		BreakerOpenDuration:     15 * time.Second,
		HealthCheckInterval:     5 * time.Second,
		TimeoutCheckInterval:    1 * time.Second,
		AssignmentScorer:        SCORER_DISTANCE,
	}
}

// fileConfig is the YAML surface. Durations are milliseconds so the file
// stays plain integers.
type fileConfig struct {
	MinFloor      *int `yaml:"min_floor"`
	MaxFloor      *int `yaml:"max_floor"`
	ElevatorCount *int `yaml:"elevator_count"`

	FloorMovementMs  *int `yaml:"floor_movement_ms"`
	LoadingMs        *int `yaml:"loading_ms"`
	RequestTimeoutMs *int `yaml:"request_timeout_ms"`

	MaxRetryAttempts *int `yaml:"max_retry_attempts"`
	RetryBaseDelayMs *int `yaml:"retry_base_delay_ms"`
	RetryMaxDelayMs  *int `yaml:"retry_max_delay_ms"`

	BreakerFailureThreshold *int `yaml:"breaker_failure_threshold"`
	BreakerFailureWindowMs  *int `yaml:"breaker_failure_window_ms"`
	BreakerOpenDurationMs   *int `yaml:"breaker_open_duration_ms"`

	HealthCheckIntervalMs  *int `yaml:"health_check_interval_ms"`
	TimeoutCheckIntervalMs *int `yaml:"timeout_check_interval_ms"`

	AssignmentScorer *string `yaml:"assignment_scorer"`
}

// Load builds the configuration: defaults, then the optional YAML file,
// then environment overrides (an optional .env file is merged first).
func Load(path string) (Config, error) {
	config := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return config, fmt.Errorf("error reading config file: %w", err)
		}
		var fc fileConfig
		if err := yaml.Unmarshal(data, &fc); err != nil {
			return config, fmt.Errorf("error parsing config file: %w", err)
		}
		fc.apply(&config)
	}

	env, err := godotenv.Read(".env")
	if err != nil {
		env = map[string]string{} //.env is optional
	}
	lookup := func(key string) (string, bool) {
		if value, ok := os.LookupEnv(key); ok {
			return value, true
		}
		value, ok := env[key]
		return value, ok
	}
	applyEnv(&config, lookup)

	if err := config.Validate(); err != nil {
		return config, err
	}
	return config, nil
}

func (fc *fileConfig) apply(config *Config) {
	setInt := func(dst *int, src *int) {
		if src != nil {
			*dst = *src
		}
	}
	setMs := func(dst *time.Duration, src *int) {
		if src != nil {
			*dst = time.Duration(*src) * time.Millisecond
		}
	}

	setInt(&config.MinFloor, fc.MinFloor)
	setInt(&config.MaxFloor, fc.MaxFloor)
	setInt(&config.ElevatorCount, fc.ElevatorCount)
	setMs(&config.FloorMovementTime, fc.FloorMovementMs)
	setMs(&config.LoadingTime, fc.LoadingMs)
	setMs(&config.RequestTimeout, fc.RequestTimeoutMs)
	setInt(&config.MaxRetryAttempts, fc.MaxRetryAttempts)
	setMs(&config.RetryBaseDelay, fc.RetryBaseDelayMs)
	setMs(&config.RetryMaxDelay, fc.RetryMaxDelayMs)
	setInt(&config.BreakerFailureThreshold, fc.BreakerFailureThreshold)
	setMs(&config.BreakerFailureWindow, fc.BreakerFailureWindowMs)
	setMs(&config.BreakerOpenDuration, fc.BreakerOpenDurationMs)
	setMs(&config.HealthCheckInterval, fc.HealthCheckIntervalMs)
	setMs(&config.TimeoutCheckInterval, fc.TimeoutCheckIntervalMs)
	if fc.AssignmentScorer != nil {
		config.AssignmentScorer = *fc.AssignmentScorer
	}
}

func applyEnv(config *Config, lookup func(string) (string, bool)) {
	setInt := func(dst *int, key string) {
		if raw, ok := lookup(key); ok {
			value, err := strconv.Atoi(raw)
			if err != nil {
				Log.Warn().Msgf("Ignoring %v=%v: not an integer", key, raw)
				return
			}
			*dst = value
		}
	}
	setMs := func(dst *time.Duration, key string) {
		if raw, ok := lookup(key); ok {
			value, err := strconv.Atoi(raw)
			if err != nil {
				Log.Warn().Msgf("Ignoring %v=%v: not an integer", key, raw)
				return
			}
			*dst = time.Duration(value) * time.Millisecond
		}
	}

	setInt(&config.MinFloor, "ELEV_MIN_FLOOR")
	setInt(&config.MaxFloor, "ELEV_MAX_FLOOR")
	setInt(&config.ElevatorCount, "ELEV_COUNT")
	setMs(&config.FloorMovementTime, "ELEV_FLOOR_MOVEMENT_MS")
	setMs(&config.LoadingTime, "ELEV_LOADING_MS")
	setMs(&config.RequestTimeout, "ELEV_REQUEST_TIMEOUT_MS")
	setInt(&config.MaxRetryAttempts, "ELEV_MAX_RETRY_ATTEMPTS")
	setMs(&config.RetryBaseDelay, "ELEV_RETRY_BASE_DELAY_MS")
	setMs(&config.RetryMaxDelay, "ELEV_RETRY_MAX_DELAY_MS")
	setInt(&config.BreakerFailureThreshold, "ELEV_BREAKER_FAILURE_THRESHOLD")
	setMs(&config.BreakerFailureWindow, "ELEV_BREAKER_FAILURE_WINDOW_MS")
	setMs(&config.BreakerOpenDuration, "ELEV_BREAKER_OPEN_DURATION_MS")
	setMs(&config.HealthCheckInterval, "ELEV_HEALTH_CHECK_INTERVAL_MS")
	setMs(&config.TimeoutCheckInterval, "ELEV_TIMEOUT_CHECK_INTERVAL_MS")
	if raw, ok := lookup("ELEV_ASSIGNMENT_SCORER"); ok {
		config.AssignmentScorer = raw
	}
}

func (c Config) Validate() error {
	if c.MinFloor >= c.MaxFloor {
		return fmt.Errorf("min_floor %d must be below max_floor %d", c.MinFloor, c.MaxFloor)
	}
	if c.ElevatorCount < 1 {
		return fmt.Errorf("elevator_count must be at least 1, got %d", c.ElevatorCount)
	}
	if c.FloorMovementTime <= 0 {
		return fmt.Errorf("floor_movement_ms must be positive, got %v", c.FloorMovementTime)
	}
	if c.LoadingTime < 0 {
		return fmt.Errorf("loading_ms must not be negative, got %v", c.LoadingTime)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request_timeout_ms must be positive, got %v", c.RequestTimeout)
	}
	if c.MaxRetryAttempts < 0 {
		return fmt.Errorf("max_retry_attempts must not be negative, got %d", c.MaxRetryAttempts)
	}
	if c.RetryBaseDelay <= 0 {
		return fmt.Errorf("retry_base_delay_ms must be positive, got %v", c.RetryBaseDelay)
	}
	if c.RetryMaxDelay < c.RetryBaseDelay {
		return fmt.Errorf("retry_max_delay_ms %v must not be below retry_base_delay_ms %v", c.RetryMaxDelay, c.RetryBaseDelay)
	}
	if c.BreakerFailureThreshold < 1 {
		return fmt.Errorf("breaker_failure_threshold must be at least 1, got %d", c.BreakerFailureThreshold)
	}
	if c.BreakerFailureWindow <= 0 {
		return fmt.Errorf("breaker_failure_window_ms must be positive, got %v", c.BreakerFailureWindow)
	}
	if c.BreakerOpenDuration <= 0 {
		return fmt.Errorf("breaker_open_duration_ms must be positive, got %v", c.BreakerOpenDuration)
	}
	// Zero intervals would panic the tickers driving the background sweeps.
	if c.HealthCheckInterval <= 0 {
		return fmt.Errorf("health_check_interval_ms must be positive, got %v", c.HealthCheckInterval)
	}
	if c.TimeoutCheckInterval <= 0 {
		return fmt.Errorf("timeout_check_interval_ms must be positive, got %v", c.TimeoutCheckInterval)
	}
	if c.AssignmentScorer != SCORER_DISTANCE && c.AssignmentScorer != SCORER_SCANCOST {
		return fmt.Errorf("assignment_scorer must be %q or %q, got %q", SCORER_DISTANCE, SCORER_SCANCOST, c.AssignmentScorer)
	}
	return nil
}

func (c Config) FloorCount() int {
	return c.MaxFloor - c.MinFloor + 1
}

// QueueCapacity sizes the admission queue to the building: twice the floor
// count, never below the minimum.
func (c Config) QueueCapacity() int {
	capacity := 2 * c.FloorCount()
	if capacity < QUEUE_CAPACITY_MIN {
		return QUEUE_CAPACITY_MIN
	}
	return capacity
}
