package methods

import (
	"github.com/avtocod/avtocod-go/types"
)

// ReportCreate asks for a report to be generated for the given query.
type ReportCreate struct {
	Query     string
	QueryType types.QueryType
}

func (m ReportCreate) BuildRequest() Request {
	return NewRequest("report.create", map[string]any{
		"query":      m.Query,
		"query_type": string(m.QueryType),
	})
}

// ReportGet fetches a previously created report by its uuid.
type ReportGet struct {
	UUID string
}

func (m ReportGet) BuildRequest() Request {
	return NewRequest("report.get", map[string]any{
		"uuid": m.UUID,
	})
}

// ReportsList pages through the account's reports. Limit and Offset are
// optional: leave them nil (or set types.Unset) to omit them from the
// request entirely.
type ReportsList struct {
	Limit  any
	Offset any
}

func (m ReportsList) BuildRequest() Request {
	return NewRequest("reports.list", map[string]any{
		"limit":  m.Limit,
		"offset": m.Offset,
	})
}
