package types

import "fmt"

// IdeaKind distinguishes freshly brainstormed ideas from ones derived from a
// real news story.
type IdeaKind int

const (
	Editorial IdeaKind = iota
	Parody
)

// Idea is the short structured brief that seeds one article. Parody ideas
// additionally carry the source story URL and are pinned to ParodyCategory.
type Idea struct {
	Kind        IdeaKind `json:"-"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	SourceURL   string   `json:"src_url,omitempty"`
}

// NewParodyIdea builds a parody-kind idea from an outline and its source URL.
func NewParodyIdea(description, sourceURL string) Idea {
	return Idea{
		Kind:        Parody,
		Description: description,
		Category:    ParodyCategory,
		SourceURL:   sourceURL,
	}
}

// Prompt renders the idea as the text handed to outline and body generation.
func (i Idea) Prompt() string {
	return fmt.Sprintf("Title: %s\nDescription: %s", i.Title, i.Description)
}
