// package formatter provides functions to export feed slides and reaction lists to various formats (CSV, Markdown, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/desertthunder/spotibuds/internal/models"
	"github.com/desertthunder/spotibuds/internal/shared"
)

// SlidesToCSV converts a slide list to CSV with columns: Fingerprint, Kind, Author, Title
func SlidesToCSV(slides []models.Slide) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Fingerprint", "Kind", "Author", "Title"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, slide := range slides {
		record := []string{
			slide.Fingerprint(),
			string(slide.Kind),
			slide.AuthorName,
			slide.Title(),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// SlidesToMarkdown converts a slide list to a Markdown document.
func SlidesToMarkdown(slides []models.Slide, heading string) ([]byte, error) {
	var buf bytes.Buffer

	if heading == "" {
		heading = "Feed"
	}
	buf.WriteString(fmt.Sprintf("# %s\n\n", heading))
	buf.WriteString(fmt.Sprintf("**Slides**: %d\n\n", len(slides)))

	for i, slide := range slides {
		buf.WriteString(fmt.Sprintf("%d. %s\n", i+1, slide.Title()))
		switch {
		case len(slide.Songs) > 0:
			for _, song := range slide.Songs {
				buf.WriteString(fmt.Sprintf("   - %s - %s\n", song.Artist, song.Title))
			}
		case len(slide.Artists) > 0:
			buf.WriteString(fmt.Sprintf("   - %s\n", strings.Join(slide.Artists, ", ")))
		}
	}

	return buf.Bytes(), nil
}

// SlidesToText converts a slide list to plain text, one title per line.
func SlidesToText(slides []models.Slide) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Slides: %d\n\n", len(slides)))
	for i, slide := range slides {
		buf.WriteString(fmt.Sprintf("%d. %s\n", i+1, slide.Title()))
	}

	return buf.Bytes(), nil
}

// ReactionsToCSV converts a reaction list to CSV with columns: Emoji, From, To, Context, CreatedAt
func ReactionsToCSV(reactions []models.Reaction) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Emoji", "From", "To", "Context", "CreatedAt"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, r := range reactions {
		record := []string{
			r.Emoji,
			reactorLabel(r),
			r.ToUserID,
			r.ContextType,
			formatMillis(r.CreatedAt),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ReactionsToMarkdown converts a slide's reaction list to Markdown.
func ReactionsToMarkdown(slide models.Slide, reactions []models.Reaction) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("# %s\n\n", slide.Title()))
	buf.WriteString(fmt.Sprintf("**Reactions**: %d\n\n", len(reactions)))

	for _, r := range reactions {
		buf.WriteString(fmt.Sprintf("- %s %s (%s)\n", r.Emoji, reactorLabel(r), formatMillis(r.CreatedAt)))
	}

	return buf.Bytes(), nil
}

// ReactionsToText converts a slide's reaction list to plain text.
func ReactionsToText(slide models.Slide, reactions []models.Reaction) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Slide: %s\n", slide.Title()))
	buf.WriteString(fmt.Sprintf("Reactions: %d\n\n", len(reactions)))

	for i, r := range reactions {
		buf.WriteString(fmt.Sprintf("%d. %s %s\n", i+1, r.Emoji, reactorLabel(r)))
	}

	return buf.Bytes(), nil
}

func reactorLabel(r models.Reaction) string {
	if r.FromUserName != "" {
		return r.FromUserName
	}
	return r.FromUserID
}

func formatMillis(millis int64) string {
	if millis == 0 {
		return ""
	}
	return time.UnixMilli(millis).UTC().Format(time.RFC3339)
}

// FileKey derives a filesystem-safe base name from a slide fingerprint.
func FileKey(slide models.Slide) string {
	key := slide.Fingerprint()
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, key)
}

// WriteSlidesExport writes a slide list to path in the requested format.
// Unknown formats fall back to indented JSON.
func WriteSlidesExport(slides []models.Slide, format, path string) (string, error) {
	var data []byte
	var err error

	switch format {
	case "csv":
		data, err = SlidesToCSV(slides)
	case "markdown":
		data, err = SlidesToMarkdown(slides, "Feed")
	case "txt":
		data, err = SlidesToText(slides)
	default:
		data, err = shared.MarshalJSON(slides, true)
	}
	if err != nil {
		return "", fmt.Errorf("failed to generate %s export: %w", format, err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write export file: %w", err)
	}
	return path, nil
}

// reactionsDocument is the JSON export shape pairing a slide with its reactions.
type reactionsDocument struct {
	Slide     models.Slide      `json:"slide"`
	Reactions []models.Reaction `json:"reactions"`
}

// WriteReactionsExport writes one slide's reaction list into dir in the
// requested format and returns the created file paths. Unknown formats
// fall back to indented JSON.
func WriteReactionsExport(slide models.Slide, reactions []models.Reaction, format, dir string) ([]string, error) {
	key := FileKey(slide)

	var path string
	var data []byte
	var err error

	switch format {
	case "csv":
		path = filepath.Join(dir, key+"_reactions.csv")
		data, err = ReactionsToCSV(reactions)
	case "markdown":
		path = filepath.Join(dir, key+".md")
		data, err = ReactionsToMarkdown(slide, reactions)
	case "txt":
		path = filepath.Join(dir, key+"_reactions.txt")
		data, err = ReactionsToText(slide, reactions)
	default:
		path = filepath.Join(dir, key+".json")
		data, err = shared.MarshalJSON(reactionsDocument{Slide: slide, Reactions: reactions}, true)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to generate %s export: %w", format, err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return nil, fmt.Errorf("failed to write export file: %w", err)
	}
	return []string{path}, nil
}

// WriteExportManifest writes the export summary as indented JSON.
func WriteExportManifest(result any, path string) error {
	data, err := shared.MarshalJSON(result, true)
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	return nil
}
