// Package media downloads remote images and re-encodes them for the site.
package media

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// DefaultQuality is the webp encoding quality used for article images.
const DefaultQuality = 85

// DownloadAndCompressImage fetches a remote image and re-encodes it to webp
// at the given quality.
func DownloadAndCompressImage(url, webpPath string, quality int) error {
	tmp, err := os.CreateTemp("", "parodypress-img-*")
	if err != nil {
		return fmt.Errorf("temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if err := downloadFile(url, tmp); err != nil {
		tmp.Close()
		return fmt.Errorf("download image: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(webpPath), 0o755); err != nil {
		return err
	}
	err = ffmpeg.Input(tmpPath).
		Output(webpPath, ffmpeg.KwArgs{
			"c:v":      "libwebp",
			"quality":  quality,
			"frames:v": 1,
		}).
		OverWriteOutput().
		Run()
	if err != nil {
		return fmt.Errorf("webp encode: %w", err)
	}
	return nil
}

func downloadFile(url string, dst io.Writer) error {
	resp, err := http.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	_, err = io.Copy(dst, resp.Body)
	return err
}
