package gen

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"parodypress/media"
	"parodypress/textproc"
	"parodypress/types"
)

// ProcessArticle localizes a freshly synthesized record before persisting:
// the remote image is downloaded and compressed next to the record, the
// original URL is kept for provenance, and reading time is backfilled.
// A failed image download leaves the local path empty rather than failing.
func ProcessArticle(article *types.Article, articleDir string) {
	if article.ImagePath != "" {
		local := article.ID + ".webp"
		err := media.DownloadAndCompressImage(article.ImagePath, filepath.Join(articleDir, local), media.DefaultQuality)
		if err != nil {
			log.Printf("gen: image download failed for %s: %v", article.ID, err)
		} else {
			article.ImageURL = article.ImagePath
			article.ImagePath = local
		}
	}

	if article.ReadingTime == 0 {
		if rt, err := textproc.EstimateReadingTime(article.Body, textproc.WordsPerMinute); err == nil {
			article.ReadingTime = rt
		}
	}
}

// SaveArticle writes the record as one JSON file in the store.
func SaveArticle(article *types.Article, articleDir string) error {
	if err := os.MkdirAll(articleDir, 0o755); err != nil {
		return err
	}
	raw, err := json.Marshal(article)
	if err != nil {
		return fmt.Errorf("marshal article %s: %w", article.ID, err)
	}
	path := filepath.Join(articleDir, article.ID+".json")
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("save article: %w", err)
	}
	log.Printf("gen: article saved to %s", path)
	return nil
}
