package model

// Anchor is a single <a> element extracted from a fetched page.
type Anchor struct {
	Href string `json:"href"`
	Text string `json:"text"`
}

// Page is a fetched and parsed web page: visible text plus the anchor list.
// This is the only shape the contact resolver consumes; how the page was
// obtained (local HTTP, reader API) is the fetch layer's concern.
type Page struct {
	URL        string   `json:"url"`
	Title      string   `json:"title"`
	Text       string   `json:"text"`
	Anchors    []Anchor `json:"anchors,omitempty"`
	StatusCode int      `json:"status_code"`
}
