package view

// Status is the top-level navigational tab: which side of the custody flow a
// listing query targets for the active entity.
type Status string

const (
	StatusDrafts Status = "drafts" // lots created by the entity, not yet sent
	StatusIn     Status = "in"     // lots received from a supplier
	StatusStocks Status = "stocks" // custody positions held by the entity
	StatusOut    Status = "out"    // lots sent to a client
)

// IsValid checks if the status is a member of the closed set
func (s Status) IsValid() bool {
	switch s {
	case StatusDrafts, StatusIn, StatusStocks, StatusOut:
		return true
	}
	return false
}

// String returns the string representation of the status
func (s Status) String() string {
	return string(s)
}

// Category is the second navigation level below a status tab
type Category string

const (
	CategoryPending    Category = "pending"
	CategoryCorrection Category = "correction"
	CategoryHistory    Category = "history"
	CategoryImported   Category = "imported"
	CategoryStocks     Category = "stocks"
)

// IsValid checks if the category is a member of the closed set
func (c Category) IsValid() bool {
	switch c {
	case CategoryPending, CategoryCorrection, CategoryHistory, CategoryImported, CategoryStocks:
		return true
	}
	return false
}

// String returns the string representation of the category
func (c Category) String() string {
	return string(c)
}

// ValidCategories returns the categories reachable under a status tab
func ValidCategories(status Status) []Category {
	switch status {
	case StatusDrafts:
		return []Category{CategoryImported, CategoryStocks}
	case StatusStocks:
		return []Category{CategoryPending, CategoryHistory}
	default:
		return []Category{CategoryPending, CategoryCorrection, CategoryHistory}
	}
}

// IsValidCategoryFor checks category membership for a status tab
func IsValidCategoryFor(status Status, category Category) bool {
	for _, c := range ValidCategories(status) {
		if c == category {
			return true
		}
	}
	return false
}

// DefaultCategory resolves the category to land on when a status tab is opened.
// It is a pure function of the status and the last-seen snapshot counts:
// prefer whatever needs the user's attention (pending work, then pending
// corrections), fall back to history. Drafts prefer the imported list unless
// it is empty while drafts carved out of stocks exist. Without a snapshot the
// rule cannot see any counts and lands on the first category of the tab.
func DefaultCategory(status Status, snapshot *Snapshot) Category {
	if snapshot == nil {
		if status == StatusDrafts {
			return CategoryImported
		}
		return CategoryPending
	}

	switch status {
	case StatusDrafts:
		if snapshot.DraftsImported == 0 && snapshot.DraftsStocks > 0 {
			return CategoryStocks
		}
		return CategoryImported
	case StatusStocks:
		if snapshot.StocksPending > 0 {
			return CategoryPending
		}
		return CategoryHistory
	case StatusIn:
		if snapshot.InPending > 0 {
			return CategoryPending
		}
		if snapshot.InToFix > 0 {
			return CategoryCorrection
		}
		return CategoryHistory
	default: // StatusOut
		if snapshot.OutPending > 0 {
			return CategoryPending
		}
		if snapshot.OutToFix > 0 {
			return CategoryCorrection
		}
		return CategoryHistory
	}
}
