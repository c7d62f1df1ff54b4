// package formatter renders snapshots to various formats (JSON, CSV, Markdown, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"github.com/desertthunder/soundwrap/internal/models"
	"github.com/desertthunder/soundwrap/internal/shared"
)

// Supported output formats.
const (
	FormatJSON     = "json"
	FormatCSV      = "csv"
	FormatMarkdown = "markdown"
	FormatText     = "text"
)

// Formats lists the supported format names for flag usage strings.
func Formats() []string {
	return []string{FormatJSON, FormatCSV, FormatMarkdown, FormatText}
}

// Render dispatches to the exporter for the named format.
func Render(snap *models.Snapshot, format string) ([]byte, error) {
	switch format {
	case FormatJSON:
		return ExportToJSON(snap)
	case FormatCSV:
		return ExportToCSV(snap)
	case FormatMarkdown:
		return ExportToMarkdown(snap)
	case FormatText, "":
		return ExportToText(snap)
	default:
		return nil, fmt.Errorf("%w: unknown format %q (expected one of %s)",
			shared.ErrInvalidFlag, format, strings.Join(Formats(), ", "))
	}
}

// ExportToJSON renders the full snapshot as indented JSON.
func ExportToJSON(snap *models.Snapshot) ([]byte, error) {
	return shared.MarshalJSON(snap, true)
}

// ExportToCSV renders the snapshot as CSV with columns: Category, Rank, Name, Detail
func ExportToCSV(snap *models.Snapshot) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Category", "Rank", "Name", "Detail"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, row := range snapshotRows(snap) {
		if err := writer.Write(row); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// snapshotRows flattens the four lists into (category, rank, name, detail) rows.
func snapshotRows(snap *models.Snapshot) [][]string {
	var rows [][]string

	for i, artist := range snap.Artists {
		rows = append(rows, []string{
			string(models.CategoryArtists),
			fmt.Sprintf("%d", i+1),
			artist.Name,
			strings.Join(artist.Genres, "; "),
		})
	}
	for i, track := range snap.Tracks {
		rows = append(rows, []string{
			string(models.CategoryTracks),
			fmt.Sprintf("%d", i+1),
			track.Name,
			fmt.Sprintf("%s [%s]", track.ArtistNames(), shared.FormatDuration(track.DurationMS)),
		})
	}
	for i, album := range snap.Albums {
		rows = append(rows, []string{
			string(models.CategoryAlbums),
			fmt.Sprintf("%d", i+1),
			album.Name,
			album.ReleaseDate,
		})
	}
	for i, genre := range snap.Genres {
		rows = append(rows, []string{
			string(models.CategoryGenres),
			fmt.Sprintf("%d", i+1),
			genre.Name,
			genre.Label,
		})
	}

	return rows
}

// ExportToMarkdown renders the snapshot as a Markdown document with one
// section per category.
func ExportToMarkdown(snap *models.Snapshot) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("# Your Top Music (%s)\n\n", rangeTitle(snap.TimeRange)))
	buf.WriteString(fmt.Sprintf("**Fetched**: %s\n\n", snap.FetchedAt.Format("2006-01-02 15:04")))

	buf.WriteString("## Artists\n\n")
	for i, artist := range snap.Artists {
		genrePart := ""
		if len(artist.Genres) > 0 {
			genrePart = fmt.Sprintf(" (%s)", strings.Join(artist.Genres, ", "))
		}
		buf.WriteString(fmt.Sprintf("%d. %s%s\n", i+1, artist.Name, genrePart))
	}

	buf.WriteString("\n## Tracks\n\n")
	for i, track := range snap.Tracks {
		buf.WriteString(fmt.Sprintf("%d. %s - %s [%s]\n",
			i+1, track.ArtistNames(), track.Name, shared.FormatDuration(track.DurationMS)))
	}

	buf.WriteString("\n## Albums\n\n")
	for i, album := range snap.Albums {
		datePart := ""
		if album.ReleaseDate != "" {
			datePart = fmt.Sprintf(" (%s)", album.ReleaseDate)
		}
		buf.WriteString(fmt.Sprintf("%d. %s%s\n", i+1, album.Name, datePart))
	}

	buf.WriteString("\n## Genres\n\n")
	for i, genre := range snap.Genres {
		buf.WriteString(fmt.Sprintf("%d. %s - %s\n", i+1, genre.Name, genre.Label))
	}

	return buf.Bytes(), nil
}

// ExportToText renders the snapshot as plain text.
func ExportToText(snap *models.Snapshot) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Your Top Music (%s)\n\n", rangeTitle(snap.TimeRange)))

	buf.WriteString("Artists:\n")
	for i, artist := range snap.Artists {
		buf.WriteString(fmt.Sprintf("  %d. %s\n", i+1, artist.Name))
	}

	buf.WriteString("\nTracks:\n")
	for i, track := range snap.Tracks {
		buf.WriteString(fmt.Sprintf("  %d. %s - %s\n", i+1, track.ArtistNames(), track.Name))
	}

	buf.WriteString("\nAlbums:\n")
	for i, album := range snap.Albums {
		buf.WriteString(fmt.Sprintf("  %d. %s\n", i+1, album.Name))
	}

	buf.WriteString("\nGenres:\n")
	for i, genre := range snap.Genres {
		buf.WriteString(fmt.Sprintf("  %d. %s (%s)\n", i+1, genre.Name, genre.Label))
	}

	return buf.Bytes(), nil
}

// rangeTitle maps a time range to its display wording.
func rangeTitle(tr models.TimeRange) string {
	switch tr {
	case models.ShortTerm:
		return "last 4 weeks"
	case models.MediumTerm:
		return "last 6 months"
	case models.LongTerm:
		return "all time"
	default:
		return string(tr)
	}
}

// extensions maps formats to file extensions for WriteSnapshotExport.
var extensions = map[string]string{
	FormatJSON:     "json",
	FormatCSV:      "csv",
	FormatMarkdown: "md",
	FormatText:     "txt",
}

// WriteSnapshotExport renders the snapshot and writes it to path.
//
// An empty path defaults to soundwrap_{time_range}.{ext}.
func WriteSnapshotExport(snap *models.Snapshot, format, path string) (string, error) {
	data, err := Render(snap, format)
	if err != nil {
		return "", err
	}

	if path == "" {
		ext, ok := extensions[format]
		if !ok {
			ext = "txt"
		}
		path = fmt.Sprintf("soundwrap_%s.%s", snap.TimeRange, ext)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write export file: %w", err)
	}

	return path, nil
}
