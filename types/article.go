package types

import "time"

// TimestampFormat is the fixed creation-time format stored on every record.
const TimestampFormat = "2006-01-02 15:04:05"

// ParodyCategory marks articles derived from real news. They sort first in
// every listing and carry a higher minimum comment floor.
const ParodyCategory = "Featured"

// Comment is a synthetic reader comment. The generator is free to choose its
// own field names, so the shape is kept open and round-tripped as-is.
type Comment map[string]any

// Article is the persisted record produced by the synthesis pipeline: one
// JSON object per file in the article store. Once written it is immutable;
// the site builder only backfills derived fields in memory at load time.
type Article struct {
	ID           string    `json:"article_id"`
	Title        string    `json:"title"`
	Overview     string    `json:"overview"`
	Body         string    `json:"body"`
	Outline      string    `json:"outline"`
	Category     string    `json:"category"`
	ImagePath    string    `json:"img_path"`
	ImageURL     string    `json:"url,omitempty"`
	Generator    string    `json:"generator"`
	ParodySource string    `json:"parody_src,omitempty"`
	Comments     []Comment `json:"comments"`
	ReadingTime  float64   `json:"reading_time_minutes,omitempty"`
	Timestamp    string    `json:"timestamp"`
}

// Time parses the record's creation timestamp.
func (a *Article) Time() (time.Time, error) {
	return time.Parse(TimestampFormat, a.Timestamp)
}

// Featured reports whether the article belongs to the distinguished
// featured/parody category.
func (a *Article) Featured() bool {
	return a.Category == ParodyCategory
}
