package storage

import "time"

// CatalogEntry is a persisted appliance option.
type CatalogEntry struct {
	ID           uint      `json:"-" gorm:"primaryKey;column:id"`
	Category     string    `json:"category" gorm:"column:category;uniqueIndex:idx_catalog_option"`
	CategoryName string    `json:"category_name,omitempty" gorm:"column:category_name"`
	Option       string    `json:"option" gorm:"column:option_label;uniqueIndex:idx_catalog_option"`
	Watts        int       `json:"watts" gorm:"column:watts"`
	UpdatedAt    time.Time `json:"updated_at" gorm:"column:updated_at"`
}

// QuoteSnapshot stores a previously computed quote payload for an input hash.
type QuoteSnapshot struct {
	ID        string    `json:"id" gorm:"primaryKey;column:id"`
	Hash      string    `json:"hash" gorm:"column:hash;index"`
	Payload   []byte    `json:"payload" gorm:"column:payload"`
	CreatedAt time.Time `json:"created_at" gorm:"column:created_at;index"`
}

// Lead is a customer who asked for a quote with contact details.
type Lead struct {
	ID              string    `json:"id" gorm:"primaryKey;column:id"`
	Name            string    `json:"name" gorm:"column:name"`
	Email           string    `json:"email" gorm:"column:email"`
	Phone           string    `json:"phone" gorm:"column:phone"`
	Address         string    `json:"address" gorm:"column:address"`
	City            string    `json:"city" gorm:"column:city"`
	QuoteID         string    `json:"quote_id" gorm:"column:quote_id"`
	SystemSizeKW    float64   `json:"system_size_kw" gorm:"column:system_size_kw"`
	PanelQuantity   int       `json:"panel_quantity" gorm:"column:panel_quantity"`
	TotalInvestment float64   `json:"total_investment" gorm:"column:total_investment"`
	MonthlySavings  float64   `json:"monthly_savings" gorm:"column:monthly_savings"`
	CreatedAt       time.Time `json:"created_at" gorm:"column:created_at;index"`
}

// Setting is a key/value runtime setting (e.g. the janitor schedule).
type Setting struct {
	Key       string    `gorm:"primaryKey;column:key"`
	Value     string    `gorm:"column:value"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

// ScheduledJob records the last run of a background job.
type ScheduledJob struct {
	Name           string    `gorm:"primaryKey;column:name"`
	LastRunAt      time.Time `gorm:"column:last_run_at"`
	LastDurationMs int64     `gorm:"column:last_duration_ms"`
	LastSuccess    int       `gorm:"column:last_success"`
	LastError      string    `gorm:"column:last_error"`
}
