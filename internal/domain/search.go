package domain

// SearchIdentity is what makes two searches the same: sku, title and image.
type SearchIdentity struct {
	SKU   string `json:"sku"`
	Title string `json:"title,omitempty"`
	Image string `json:"image,omitempty"`
}

// PersistedStore is the recent-search blob kept per retailer.
// Recent is most-recent-first and unique; every digest in it resolves in Searches.
type PersistedStore struct {
	Recent   []string                  `json:"recent"`
	Searches map[string]SearchIdentity `json:"searches"`
}

// NewPersistedStore returns an empty store
func NewPersistedStore() *PersistedStore {
	return &PersistedStore{
		Recent:   []string{},
		Searches: make(map[string]SearchIdentity),
	}
}

// Clone returns a deep copy of the store
func (s *PersistedStore) Clone() *PersistedStore {
	out := &PersistedStore{
		Recent:   make([]string, len(s.Recent)),
		Searches: make(map[string]SearchIdentity, len(s.Searches)),
	}
	copy(out.Recent, s.Recent)
	for k, v := range s.Searches {
		out.Searches[k] = v
	}
	return out
}

// RecentSearch is one entry of the recent-search feed
type RecentSearch struct {
	SearchIdentity
	Digest     string `json:"digest"`
	LookupPath string `json:"lookupPath"`
}

// LookupRequest represents a stock lookup for a SKU near a zipcode
type LookupRequest struct {
	Retailer  Retailer `json:"retailer"`
	SKU       string   `json:"sku"`
	Title     string   `json:"title,omitempty"`
	Image     string   `json:"image,omitempty"`
	Zipcode   string   `json:"zipcode,omitempty"`
	SessionID string   `json:"-"`
}

// Identity returns the search identity of the request
func (r *LookupRequest) Identity() SearchIdentity {
	return SearchIdentity{SKU: r.SKU, Title: r.Title, Image: r.Image}
}

// LookupResult is the outcome of a stock lookup
type LookupResult struct {
	Retailer   Retailer                `json:"retailer"`
	SKU        string                  `json:"sku"`
	Zipcode    string                  `json:"zipcode"`
	ProductURL string                  `json:"productUrl"`
	Source     string                  `json:"source"` // "StockAPI" or "Cache"
	Results    *SearchResults          `json:"results"`
	Rows       []DisplayRow            `json:"rows"`
	NoResults  bool                    `json:"noResults"`
	Warnings   []ReconciliationWarning `json:"warnings,omitempty"`
}
