package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// ScoringWeights are the penalty/bonus weights of the match confidence formula.
type ScoringWeights struct {
	Residual        float64 // w1: residual relative to tolerance
	DateGap         float64 // w2: average date gap relative to the window
	SubsetSize      float64 // w3: subset size beyond a single invoice
	CorrectionBonus float64 // w4: per-payer bonus learned from corrections
}

// ReconConfig holds the reconciliation policy knobs. The tolerance formula and the
// lookback/settlement windows are product policy, so they live here rather than as
// constants in the engine.
type ReconConfig struct {
	ToleranceMinorUnits              int64
	TolerancePct                     float64
	DecompositionToleranceMinorUnits int64
	WindowDays                       int
	MaxSubsetSize                    int
	MaxCandidatePool                 int
	AutoApplyThreshold               float64
	ReviewThreshold                  float64
	TieMargin                        float64
	SettlementLagBusinessDays        int
	GhostLookbackDays                int
	ClaimRetryLimit                  int
	RunLockTTL                       time.Duration
	Weights                          ScoringWeights
	// CorrectionBonusPerHit accrues per past correction whose chosen subset shape
	// matches the candidate's; CorrectionBonusCap bounds the total.
	CorrectionBonusPerHit float64
	CorrectionBonusCap    float64
	// LockedPeriodEnd: matches touching invoices issued at or before this date
	// always route to review, never auto-apply. Zero means no locked period.
	LockedPeriodEnd time.Time
}

// Tolerance returns the matching tolerance for a deposit amount:
// max(fixed minor units, pct of the absolute amount).
func (c ReconConfig) Tolerance(amount int64) int64 {
	if amount < 0 {
		amount = -amount
	}
	pct := int64(c.TolerancePct * float64(amount))
	if pct > c.ToleranceMinorUnits {
		return pct
	}
	return c.ToleranceMinorUnits
}

// Config holds application configuration.
type Config struct {
	DatabaseURL   string
	Port          string
	IsProduction  bool
	EnableDBCheck bool
	JWTSecret     string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	Recon         ReconConfig
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("ENABLE_DB_CHECK", false)
	viper.SetDefault("JWT_SECRET", "a-very-secret-key-should-be-longer-and-random")
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_DB", 0)

	viper.SetDefault("MATCH_TOLERANCE_MINOR_UNITS", 5)
	viper.SetDefault("MATCH_TOLERANCE_PCT", 0.01)
	viper.SetDefault("DECOMPOSITION_TOLERANCE_MINOR_UNITS", 3)
	viper.SetDefault("MATCH_WINDOW_DAYS", 90)
	viper.SetDefault("MAX_SUBSET_SIZE", 6)
	viper.SetDefault("MAX_CANDIDATE_POOL", 32)
	viper.SetDefault("AUTO_APPLY_THRESHOLD", 0.90)
	viper.SetDefault("REVIEW_THRESHOLD", 0.60)
	viper.SetDefault("TIE_MARGIN", 0.05)
	viper.SetDefault("SETTLEMENT_LAG_BUSINESS_DAYS", 2)
	viper.SetDefault("GHOST_LOOKBACK_DAYS", 30)
	viper.SetDefault("CLAIM_RETRY_LIMIT", 3)
	viper.SetDefault("RUN_LOCK_TTL", "5m")
	viper.SetDefault("SCORE_WEIGHT_RESIDUAL", 0.35)
	viper.SetDefault("SCORE_WEIGHT_DATE_GAP", 0.25)
	viper.SetDefault("SCORE_WEIGHT_SUBSET_SIZE", 0.15)
	viper.SetDefault("SCORE_WEIGHT_CORRECTION_BONUS", 1.0)
	viper.SetDefault("CORRECTION_BONUS_PER_HIT", 0.05)
	viper.SetDefault("CORRECTION_BONUS_CAP", 0.15)
	viper.SetDefault("LOCKED_PERIOD_END", "")

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	cfg.Port = viper.GetString("PORT")
	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")
	cfg.EnableDBCheck = viper.GetBool("ENABLE_DB_CHECK")

	cfg.JWTSecret = viper.GetString("JWT_SECRET")
	if cfg.JWTSecret == "a-very-secret-key-should-be-longer-and-random" {
		log.Println("Warning: JWT_SECRET environment variable not set. Using default insecure key.")
	}

	cfg.RedisAddr = viper.GetString("REDIS_ADDR")
	cfg.RedisPassword = viper.GetString("REDIS_PASSWORD")
	cfg.RedisDB = viper.GetInt("REDIS_DB")

	lockTTL, err := time.ParseDuration(viper.GetString("RUN_LOCK_TTL"))
	if err != nil {
		log.Printf("Warning: Invalid value for RUN_LOCK_TTL ('%s'). Defaulting to 5m.\n", viper.GetString("RUN_LOCK_TTL"))
		lockTTL = 5 * time.Minute
	}

	var lockedPeriodEnd time.Time
	if s := viper.GetString("LOCKED_PERIOD_END"); s != "" {
		lockedPeriodEnd, err = time.Parse("2006-01-02", s)
		if err != nil {
			log.Printf("Warning: Invalid value for LOCKED_PERIOD_END ('%s'). Ignoring.\n", s)
			lockedPeriodEnd = time.Time{}
		}
	}

	cfg.Recon = ReconConfig{
		ToleranceMinorUnits:              viper.GetInt64("MATCH_TOLERANCE_MINOR_UNITS"),
		TolerancePct:                     viper.GetFloat64("MATCH_TOLERANCE_PCT"),
		DecompositionToleranceMinorUnits: viper.GetInt64("DECOMPOSITION_TOLERANCE_MINOR_UNITS"),
		WindowDays:                       viper.GetInt("MATCH_WINDOW_DAYS"),
		MaxSubsetSize:                    viper.GetInt("MAX_SUBSET_SIZE"),
		MaxCandidatePool:                 viper.GetInt("MAX_CANDIDATE_POOL"),
		AutoApplyThreshold:               viper.GetFloat64("AUTO_APPLY_THRESHOLD"),
		ReviewThreshold:                  viper.GetFloat64("REVIEW_THRESHOLD"),
		TieMargin:                        viper.GetFloat64("TIE_MARGIN"),
		SettlementLagBusinessDays:        viper.GetInt("SETTLEMENT_LAG_BUSINESS_DAYS"),
		GhostLookbackDays:                viper.GetInt("GHOST_LOOKBACK_DAYS"),
		ClaimRetryLimit:                  viper.GetInt("CLAIM_RETRY_LIMIT"),
		RunLockTTL:                       lockTTL,
		Weights: ScoringWeights{
			Residual:        viper.GetFloat64("SCORE_WEIGHT_RESIDUAL"),
			DateGap:         viper.GetFloat64("SCORE_WEIGHT_DATE_GAP"),
			SubsetSize:      viper.GetFloat64("SCORE_WEIGHT_SUBSET_SIZE"),
			CorrectionBonus: viper.GetFloat64("SCORE_WEIGHT_CORRECTION_BONUS"),
		},
		CorrectionBonusPerHit: viper.GetFloat64("CORRECTION_BONUS_PER_HIT"),
		CorrectionBonusCap:    viper.GetFloat64("CORRECTION_BONUS_CAP"),
		LockedPeriodEnd:       lockedPeriodEnd,
	}

	return cfg, nil
}

// DefaultReconConfig returns the policy defaults without touching the environment.
// Used by tests and as a fallback when no overrides are supplied.
func DefaultReconConfig() ReconConfig {
	return ReconConfig{
		ToleranceMinorUnits:              5,
		TolerancePct:                     0.01,
		DecompositionToleranceMinorUnits: 3,
		WindowDays:                       90,
		MaxSubsetSize:                    6,
		MaxCandidatePool:                 32,
		AutoApplyThreshold:               0.90,
		ReviewThreshold:                  0.60,
		TieMargin:                        0.05,
		SettlementLagBusinessDays:        2,
		GhostLookbackDays:                30,
		ClaimRetryLimit:                  3,
		RunLockTTL:                       5 * time.Minute,
		Weights: ScoringWeights{
			Residual:        0.35,
			DateGap:         0.25,
			SubsetSize:      0.15,
			CorrectionBonus: 1.0,
		},
		CorrectionBonusPerHit: 0.05,
		CorrectionBonusCap:    0.15,
	}
}
