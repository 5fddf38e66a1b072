package types

import (
	"encoding/json"
	"time"
)

// QueryType identifies what kind of identifier a report is generated from.
type QueryType string

const (
	QueryGRZ  QueryType = "GRZ"  // registration plate
	QueryVIN  QueryType = "VIN"  // vehicle identification number
	QueryBody QueryType = "BODY" // body number
)

// Token is the result of auth.login.
type Token struct {
	Token string `json:"token"`
}

// ReportID is the result of report.create: the identifier used to fetch
// the generated report later.
type ReportID struct {
	UUID string `json:"uuid"`
}

// Report is a generated vehicle-history report.
//
// Content is left as raw JSON: its layout depends on the report type and
// is outside the session layer's concern.
type Report struct {
	UUID      string          `json:"uuid"`
	Query     string          `json:"query"`
	QueryType QueryType       `json:"query_type"`
	Progress  ReportProgress  `json:"progress"`
	Content   json.RawMessage `json:"content,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// ReportProgress tracks how many data sources have answered.
type ReportProgress struct {
	Total   int `json:"total"`
	Ready   int `json:"ready"`
	Errored int `json:"errored"`
}

// Ready reports whether all sources have answered and the report content
// is final.
func (r *Report) Ready() bool {
	return r.Progress.Total > 0 && r.Progress.Ready+r.Progress.Errored >= r.Progress.Total
}
