package model

// Article is a single blog post record. The ID is assigned by the upstream
// articles API on creation and is unique within the collection.
type Article struct {
	ID          int      `json:"id"`
	Title       string   `json:"title"`
	Content     string   `json:"content"`
	Author      string   `json:"author"`
	PublishDate string   `json:"publishDate"` // ISO date, YYYY-MM-DD
	Category    string   `json:"category"`
	Tags        []string `json:"tags"`
	Image       string   `json:"image"`
}

// Draft is an article without an id, as sent to the upstream API on
// create and update.
type Draft struct {
	Title       string   `json:"title"`
	Content     string   `json:"content"`
	Author      string   `json:"author"`
	PublishDate string   `json:"publishDate"`
	Category    string   `json:"category"`
	Tags        []string `json:"tags"`
	Image       string   `json:"image"`
}

// SearchFilter is the advanced search form. Empty fields impose no
// constraint; non-empty fields combine conjunctively.
type SearchFilter struct {
	Query    string   `json:"query"`
	Category string   `json:"category"`
	Author   string   `json:"author"`
	DateFrom string   `json:"dateFrom"`
	DateTo   string   `json:"dateTo"`
	Tags     []string `json:"tags"`
}
