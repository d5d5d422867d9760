package entity

import "time"

// ForumPost is a scraped discussion-forum post as stored by the ingestion side.
type ForumPost struct {
	PostID          string    `json:"post_id"`
	TopicID         string    `json:"topic_id"`
	Title           string    `json:"title"`
	Content         string    `json:"content"`
	MarkdownContent string    `json:"markdown_content"`
	Author          string    `json:"author"`
	CreatedAt       time.Time `json:"created_at"`
	URL             string    `json:"url"`
	Category        string    `json:"category"`
	Tags            []string  `json:"tags"`
	ReplyCount      int       `json:"reply_count"`
	PostNumber      int       `json:"post_number"`
}

// Body returns the best available text for indexing.
func (p *ForumPost) Body() string {
	if p.MarkdownContent != "" {
		return p.MarkdownContent
	}
	return p.Content
}

// CoursePage is a course-site page already converted to markdown.
type CoursePage struct {
	Name     string
	Title    string
	URL      string
	Markdown string
}

// SourceDocument is any text source the indexer turns into chunks.
type SourceDocument struct {
	Title string
	URL   string
	Text  string
}
