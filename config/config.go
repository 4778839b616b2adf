package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"volGuardBot/internal/adapters/logger"
)

// Config holds all application configuration. It is loaded and validated
// once at startup and treated as immutable for the duration of the run;
// components receive the pieces they need through their constructors,
// never through ambient access.
type Config struct {
	// Binance API
	APIKey    string
	SecretKey string
	IsTestnet bool

	// Instruments
	Symbols     []string // Symbols to manage, comma-separated in env
	BarInterval string   // Kline interval for volatility bars (e.g., "1h")
	TickSize    decimal.Decimal

	// Volatility measurement
	VolatilityPeriod int           // ATR smoothing period
	Staleness        time.Duration // Max age of the newest bar at evaluation time

	// Stop calculation
	StopMultiplier  decimal.Decimal // ATR multiple for the volatility stop
	RecalcThreshold decimal.Decimal // Fractional volatility change that triggers stop recalculation
	MinStopDistance decimal.Decimal // Lower bound of the stop-distance envelope, as a fraction
	MaxStopDistance decimal.Decimal // Upper bound of the stop-distance envelope, as a fraction
	NoiseFloorPct   decimal.Decimal // Exact-match distance allowed outside the envelope (breakeven stops)
	FallbackStopPct decimal.Decimal // Fixed-percentage stop used when volatility calculation fails
	StructuralBars  int             // Lookback window for the structural-low stop candidate

	// Trade management rules
	BreakevenMultiple    decimal.Decimal // Favorable ATR multiple that arms the breakeven move
	ScaleInMultiple      decimal.Decimal // Favorable ATR multiple that allows an add-on
	ScaleInFraction      decimal.Decimal // Add-on size as a fraction of current quantity
	MaxScaleIns          int             // Hard cap on add-ons per position
	CatastrophicMultiple decimal.Decimal // Adverse ATR multiple that forces a full close

	// Account risk
	RiskFraction         decimal.Decimal // Fraction of balance risked per trade
	TargetRewardRatio    decimal.Decimal // Requested reward:risk for the profit target
	PortfolioRiskCeiling decimal.Decimal // Max aggregate capital-at-risk as a fraction of balance

	// Control loop
	PollInterval time.Duration

	// Storage
	DBPath   string // SQLite audit database
	StateDir string // Directory for position-state snapshots

	// Logging
	LogLevel  logger.LogLevel
	LogFormat string // "std" or "json" (zerolog)

	// Metrics
	MetricsAddr string // Empty disables the metrics endpoint
}

// LoadConfig loads configuration from environment variables (.env file).
// Every validation problem is collected and reported together; an invalid
// configuration is a startup-time hard failure, never a runtime one.
func LoadConfig() (*Config, error) {
	// Load .env file, but don't fail if it doesn't exist (allow pure env vars)
	_ = godotenv.Load()

	cfg := &Config{}
	var err error
	var errs []string

	// Binance API
	cfg.APIKey = getEnv("BINANCE_API_KEY", "")
	cfg.SecretKey = getEnv("BINANCE_API_SECRET", "")
	cfg.IsTestnet = getEnvAsBool("IS_TESTNET", true) // Default to testnet for safety

	if cfg.APIKey == "" {
		errs = append(errs, "BINANCE_API_KEY must be set")
	}
	if cfg.SecretKey == "" {
		errs = append(errs, "BINANCE_API_SECRET must be set")
	}

	// Instruments
	symbolsStr := getEnv("SYMBOLS", "ETHUSDT")
	for _, s := range strings.Split(symbolsStr, ",") {
		if s = strings.TrimSpace(s); s != "" {
			cfg.Symbols = append(cfg.Symbols, s)
		}
	}
	if len(cfg.Symbols) == 0 {
		errs = append(errs, "SYMBOLS must name at least one symbol")
	}

	cfg.BarInterval = getEnv("BAR_INTERVAL", "1h")

	cfg.TickSize, err = getEnvAsDecimal("TICK_SIZE", "0.01")
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid TICK_SIZE: %v", err))
	} else if !cfg.TickSize.IsPositive() {
		errs = append(errs, "TICK_SIZE must be positive")
	}

	// Volatility measurement
	cfg.VolatilityPeriod, err = getEnvAsIntRequired("VOLATILITY_PERIOD", 14)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid VOLATILITY_PERIOD: %v", err))
	} else if cfg.VolatilityPeriod <= 0 {
		errs = append(errs, "VOLATILITY_PERIOD must be positive")
	}

	stalenessSeconds := getEnvAsInt("STALENESS_SECONDS", 5400)
	if stalenessSeconds <= 0 {
		errs = append(errs, "STALENESS_SECONDS must be positive")
	}
	cfg.Staleness = time.Duration(stalenessSeconds) * time.Second

	// Stop calculation
	cfg.StopMultiplier, err = getEnvAsDecimal("STOP_MULTIPLIER", "2.0")
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid STOP_MULTIPLIER: %v", err))
	} else if !cfg.StopMultiplier.IsPositive() {
		errs = append(errs, "STOP_MULTIPLIER must be positive")
	}

	cfg.RecalcThreshold, err = getEnvAsDecimal("RECALC_THRESHOLD", "0.15")
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid RECALC_THRESHOLD: %v", err))
	} else if cfg.RecalcThreshold.IsNegative() {
		errs = append(errs, "RECALC_THRESHOLD cannot be negative")
	}

	cfg.MinStopDistance, err = getEnvAsDecimal("MIN_STOP_DISTANCE_PCT", "0.007")
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid MIN_STOP_DISTANCE_PCT: %v", err))
	}
	cfg.MaxStopDistance, err = getEnvAsDecimal("MAX_STOP_DISTANCE_PCT", "0.10")
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid MAX_STOP_DISTANCE_PCT: %v", err))
	}
	if !cfg.MinStopDistance.IsPositive() || cfg.MaxStopDistance.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		errs = append(errs, "stop distance bounds must be between 0.0 and 1.0 (exclusive)")
	}
	if cfg.MinStopDistance.GreaterThanOrEqual(cfg.MaxStopDistance) {
		errs = append(errs, "MIN_STOP_DISTANCE_PCT must be less than MAX_STOP_DISTANCE_PCT")
	}

	cfg.NoiseFloorPct, err = getEnvAsDecimal("NOISE_FLOOR_PCT", "0")
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid NOISE_FLOOR_PCT: %v", err))
	} else if cfg.NoiseFloorPct.IsNegative() || cfg.NoiseFloorPct.GreaterThanOrEqual(cfg.MinStopDistance) {
		errs = append(errs, "NOISE_FLOOR_PCT must be non-negative and below MIN_STOP_DISTANCE_PCT")
	}

	cfg.FallbackStopPct, err = getEnvAsDecimal("FALLBACK_STOP_PCT", "0.02")
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid FALLBACK_STOP_PCT: %v", err))
	} else if cfg.FallbackStopPct.LessThan(cfg.MinStopDistance) || cfg.FallbackStopPct.GreaterThan(cfg.MaxStopDistance) {
		// The fallback stop must itself survive bounds validation, otherwise
		// the last link of the fail-safe chain could leave a position unprotected.
		errs = append(errs, "FALLBACK_STOP_PCT must lie within the stop distance bounds")
	}

	cfg.StructuralBars = getEnvAsInt("STRUCTURAL_LOOKBACK", 20)
	if cfg.StructuralBars <= 0 {
		errs = append(errs, "STRUCTURAL_LOOKBACK must be positive")
	}

	// Trade management rules
	cfg.BreakevenMultiple, err = getEnvAsDecimal("BREAKEVEN_MULTIPLE", "2.0")
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid BREAKEVEN_MULTIPLE: %v", err))
	} else if !cfg.BreakevenMultiple.IsPositive() {
		errs = append(errs, "BREAKEVEN_MULTIPLE must be positive")
	}

	cfg.ScaleInMultiple, err = getEnvAsDecimal("SCALE_IN_MULTIPLE", "1.5")
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid SCALE_IN_MULTIPLE: %v", err))
	} else if !cfg.ScaleInMultiple.IsPositive() {
		errs = append(errs, "SCALE_IN_MULTIPLE must be positive")
	}

	cfg.ScaleInFraction, err = getEnvAsDecimal("SCALE_IN_FRACTION", "0.5")
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid SCALE_IN_FRACTION: %v", err))
	} else if !cfg.ScaleInFraction.IsPositive() || cfg.ScaleInFraction.GreaterThan(decimal.NewFromInt(1)) {
		errs = append(errs, "SCALE_IN_FRACTION must be between 0.0 (exclusive) and 1.0 (inclusive)")
	}

	cfg.MaxScaleIns = getEnvAsInt("MAX_SCALE_INS", 2)
	if cfg.MaxScaleIns < 0 {
		errs = append(errs, "MAX_SCALE_INS cannot be negative")
	}

	cfg.CatastrophicMultiple, err = getEnvAsDecimal("CATASTROPHIC_MULTIPLE", "3.0")
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid CATASTROPHIC_MULTIPLE: %v", err))
	} else if cfg.CatastrophicMultiple.LessThanOrEqual(cfg.BreakevenMultiple) {
		errs = append(errs, "CATASTROPHIC_MULTIPLE must exceed BREAKEVEN_MULTIPLE")
	}

	// Account risk
	cfg.RiskFraction, err = getEnvAsDecimal("RISK_FRACTION", "0.01")
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid RISK_FRACTION: %v", err))
	} else if !cfg.RiskFraction.IsPositive() || cfg.RiskFraction.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		errs = append(errs, "RISK_FRACTION must be between 0.0 and 1.0 (exclusive)")
	}

	cfg.TargetRewardRatio, err = getEnvAsDecimal("TARGET_REWARD_RATIO", "2.0")
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid TARGET_REWARD_RATIO: %v", err))
	} else if !cfg.TargetRewardRatio.IsPositive() {
		errs = append(errs, "TARGET_REWARD_RATIO must be positive")
	}

	cfg.PortfolioRiskCeiling, err = getEnvAsDecimal("PORTFOLIO_RISK_CEILING", "0.06")
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid PORTFOLIO_RISK_CEILING: %v", err))
	} else if !cfg.PortfolioRiskCeiling.IsPositive() || cfg.PortfolioRiskCeiling.GreaterThan(decimal.NewFromInt(1)) {
		errs = append(errs, "PORTFOLIO_RISK_CEILING must be between 0.0 (exclusive) and 1.0 (inclusive)")
	}

	// Control loop
	pollSeconds := getEnvAsInt("POLL_INTERVAL_SECONDS", 60)
	if pollSeconds <= 0 {
		errs = append(errs, "POLL_INTERVAL_SECONDS must be positive")
	}
	cfg.PollInterval = time.Duration(pollSeconds) * time.Second

	// Storage
	cfg.DBPath = getEnv("DB_PATH", "./data/volguard.db")
	if cfg.DBPath == "" {
		errs = append(errs, "DB_PATH must be set")
	}
	cfg.StateDir = getEnv("STATE_DIR", "./data/state")
	if cfg.StateDir == "" {
		errs = append(errs, "STATE_DIR must be set")
	}

	// Logging
	cfg.LogLevel = logger.ParseLevel(getEnv("LOG_LEVEL", "INFO"))
	cfg.LogFormat = strings.ToLower(getEnv("LOG_FORMAT", "std"))
	if cfg.LogFormat != "std" && cfg.LogFormat != "json" {
		errs = append(errs, "LOG_FORMAT must be 'std' or 'json'")
	}

	// Metrics
	cfg.MetricsAddr = getEnv("METRICS_ADDR", "")

	if len(errs) > 0 {
		return nil, fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}

	return cfg, nil
}

// --- Env Var Helpers ---

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsIntRequired(key string, defaultValue int) (int, error) {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue, nil
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return 0, fmt.Errorf("invalid integer value '%s' for key %s: %w", valueStr, key, err)
	}
	return value, nil
}

func getEnvAsDecimal(key, defaultValue string) (decimal.Decimal, error) {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}
	value, err := decimal.NewFromString(valueStr)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid decimal value '%s' for key %s: %w", valueStr, key, err)
	}
	return value, nil
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
