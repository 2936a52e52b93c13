package domain

// Source is a document the upstream answer was grounded on.
type Source struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}

// Usage is normalized token usage.
type Usage struct {
	Input  int `json:"input"`
	Output int `json:"output"`
}

// ExtractedAnswer is what the relay takes from an upstream payload.
// Sources and Usage are nil when the payload does not carry them.
type ExtractedAnswer struct {
	Text    string
	Sources []Source
	Usage   *Usage
}
