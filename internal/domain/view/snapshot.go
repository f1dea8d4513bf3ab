package view

// Snapshot carries the per-status/category counts the server reports for one
// (entity, year). It drives the default-category rule and tab badges.
type Snapshot struct {
	Year int `json:"year"`

	DraftsImported int64 `json:"drafts_imported"`
	DraftsStocks   int64 `json:"drafts_stocks"`

	InPending int64 `json:"in_pending"`
	InToFix   int64 `json:"in_tofix"`
	InTotal   int64 `json:"in_total"`

	StocksPending int64 `json:"stocks_pending"`
	StocksTotal   int64 `json:"stocks_total"`

	OutPending int64 `json:"out_pending"`
	OutToFix   int64 `json:"out_tofix"`
	OutTotal   int64 `json:"out_total"`
}

// Total returns the total count shown on a status tab badge
func (s *Snapshot) Total(status Status) int64 {
	switch status {
	case StatusDrafts:
		return s.DraftsImported + s.DraftsStocks
	case StatusIn:
		return s.InTotal
	case StatusStocks:
		return s.StocksTotal
	default:
		return s.OutTotal
	}
}

// Pending returns the pending count for a status tab
func (s *Snapshot) Pending(status Status) int64 {
	switch status {
	case StatusDrafts:
		return 0
	case StatusIn:
		return s.InPending
	case StatusStocks:
		return s.StocksPending
	default:
		return s.OutPending
	}
}
