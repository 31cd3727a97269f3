package model

// Research is the aggregated bag of per-lead signals. Each of the three
// sources is independently optional: a nil field means the input was missing
// or the provider failed within its timeout.
type Research struct {
	LinkedIn *LinkedInSignal `json:"linkedin,omitempty"`
	Website  *WebsiteSignal  `json:"website,omitempty"`
	News     *NewsSignal     `json:"news,omitempty"`
}

// Present reports whether any signal was gathered.
func (r *Research) Present() bool {
	return r != nil && (r.LinkedIn != nil || r.Website != nil || r.News != nil)
}

// LinkedInSignal holds the professional-profile summary and recent posts.
type LinkedInSignal struct {
	Headline       string `json:"headline,omitempty"`
	Summary        string `json:"summary,omitempty"`
	CurrentRole    string `json:"current_role,omitempty"`
	CurrentCompany string `json:"current_company,omitempty"`
	Location       string `json:"location,omitempty"`
	Posts          []Post `json:"posts,omitempty"` // at most 3
}

// Post is a single recent profile post.
type Post struct {
	Text string `json:"text"`
	Date string `json:"date,omitempty"`
}

// WebsiteSignal holds extracted company-website text.
type WebsiteSignal struct {
	Content string `json:"content"`
	Source  string `json:"source"` // which scraper produced it
}

// NewsSignal holds recent company news snippets.
type NewsSignal struct {
	Articles []Article `json:"articles"`
	Source   string    `json:"source"`
}

// Article is a single news search result.
type Article struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	URL         string `json:"url,omitempty"`
	Date        string `json:"date,omitempty"`
}
