package model

import "time"

// Snapshot is the compact per-payload record kept in history and sent with
// daemon events.
type Snapshot struct {
	ID                string    `json:"id"`
	FilePath          string    `json:"file_path,omitempty"`
	StatementID       string    `json:"statement_id"`
	AnalyzedAt        time.Time `json:"analyzed_at"`
	Categories        int       `json:"categories"`
	Subcategories     int       `json:"subcategories"`
	TotalAmount       float64   `json:"total_amount"`
	Allotted          float64   `json:"allotted"`
	Actual            float64   `json:"actual"`
	AfterActual       float64   `json:"after_actual"`
	ReductionPct      float64   `json:"reduction_pct"`
	Compliant         bool      `json:"compliant"`
	OffsetKg          float64   `json:"offset_kg"`
	CreditCostUSD     float64   `json:"credit_cost_usd"`
	Trees             int       `json:"trees"`
	OverBudget        int       `json:"over_budget"`
	TransactionsCount int       `json:"transactions_count"`
}
