package config

// BudgetConfig sets the monthly token quota guarding provider calls.
type BudgetConfig struct {
	// MonthlyTokenLimit is the hard monthly cap.
	MonthlyTokenLimit int

	// WarnThreshold is the fraction of the limit at which turns start
	// carrying an "approaching limit" notice.
	WarnThreshold float64
}

func loadBudgetConfig() BudgetConfig {
	return BudgetConfig{
		MonthlyTokenLimit: getEnvInt("BUDGET_MONTHLY_TOKEN_LIMIT", 500000),
		WarnThreshold:     getEnvFloat("BUDGET_WARN_THRESHOLD", 0.9),
	}
}
