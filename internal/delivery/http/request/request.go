package request

// ScrapeRequest is the optional body of POST /products/scrape.
type ScrapeRequest struct {
	URL    string `json:"url"`
	Source string `json:"source"` // "demo" or "live"; inferred from URL when empty
}
