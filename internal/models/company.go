package models

// Company is a portfolio ticker with its resolved display name
type Company struct {
	Ticker string `json:"ticker"`
	Name   string `json:"name"`
}

// WatchlistItem is one read-only watch-list entry. Name is an optional static display name.
type WatchlistItem struct {
	Ticker string `json:"ticker" toml:"ticker"`
	Name   string `json:"name,omitempty" toml:"name"`
}

// CompanyMetadata holds the name fields returned by a metadata provider
type CompanyMetadata struct {
	Ticker    string `json:"ticker"`
	ShortName string `json:"short_name,omitempty"`
	LongName  string `json:"long_name,omitempty"`
}

// BestName prefers the long name and falls back to the short name
func (m *CompanyMetadata) BestName() string {
	if m == nil {
		return ""
	}
	if m.LongName != "" {
		return m.LongName
	}
	return m.ShortName
}
