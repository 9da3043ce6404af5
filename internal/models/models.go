package models

import "time"

// TimestampLayout is the wall-clock format written to the ledger
const TimestampLayout = "2006-01-02 15:04:05"

// PalletSession represents one capture-detect-confirm interaction
type PalletSession struct {
	ID             string    `json:"id"`
	Reference      string    `json:"reference"`
	Photo          []byte    `json:"-"`
	PhotoWidth     int       `json:"photo_width"`
	PhotoHeight    int       `json:"photo_height"`
	SuggestedCount int       `json:"suggested_count"`
	DetectionError string    `json:"detection_error,omitempty"`
	OCRWarning     string    `json:"ocr_warning,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// LogRow is one appended ledger record
type LogRow struct {
	Timestamp string `json:"timestamp" parquet:"timestamp"`
	Reference string `json:"reference" parquet:"reference"`
	Count     int64  `json:"count" parquet:"count"`
	FileURL   string `json:"file_url" parquet:"file_url"`
}

// Values returns the row in column order
func (r LogRow) Values() []interface{} {
	return []interface{}{r.Timestamp, r.Reference, r.Count, r.FileURL}
}
