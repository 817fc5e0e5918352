package harvest

import (
	"encoding/json"
	"fmt"
	"strings"

	harvestSvc "github.com/Taichi-iskw/yt-harvest/internal/service/harvest"
)

// Formatter defines interface for output formatting
type Formatter interface {
	Format(result *harvestSvc.Result) (string, error)
}

// Summary is the printable outline of a harvest result
type Summary struct {
	Alias        string  `json:"alias"`
	ChannelID    string  `json:"channel_id"`
	ChannelTitle string  `json:"channel_title"`
	References   int     `json:"references"`
	Fetched      int     `json:"fetched"`
	Cached       int     `json:"cached"`
	Invalid      int     `json:"invalid"`
	Rows         int     `json:"rows"`
	Dropped      int     `json:"dropped"`
	Dataset      string  `json:"dataset"`
	ElapsedSec   float64 `json:"elapsed_sec"`
}

// NewSummary condenses result for display
func NewSummary(result *harvestSvc.Result) *Summary {
	summary := &Summary{
		References: result.References,
		ElapsedSec: result.Elapsed.Seconds(),
	}
	if result.Channel != nil {
		summary.Alias = result.Channel.Alias
		summary.ChannelID = result.Channel.ID
		summary.ChannelTitle = result.Channel.Title
	}
	if result.Fetch != nil {
		summary.Fetched = result.Fetch.Fetched
		summary.Cached = result.Fetch.Skipped
		summary.Invalid = result.Fetch.Invalid
	}
	if result.Export != nil {
		summary.Rows = len(result.Export.Rows)
		summary.Dropped = result.Export.Dropped
		summary.Dataset = result.Export.Path
	}
	return summary
}

// TextFormatter formats output as plain text
type TextFormatter struct{}

// Format formats result as plain text
func (f *TextFormatter) Format(result *harvestSvc.Result) (string, error) {
	s := NewSummary(result)

	var output strings.Builder
	output.WriteString(fmt.Sprintf("Channel: %s (%s) as %s\n", s.ChannelTitle, s.ChannelID, s.Alias))
	output.WriteString(fmt.Sprintf("Uploads: %d\n", s.References))
	output.WriteString(fmt.Sprintf("Videos:  %d fetched, %d cached", s.Fetched, s.Cached))
	if s.Invalid > 0 {
		output.WriteString(fmt.Sprintf(", %d invalid", s.Invalid))
	}
	output.WriteString("\n")
	output.WriteString(fmt.Sprintf("Dataset: %s (%d rows, %d dropped)\n", s.Dataset, s.Rows, s.Dropped))
	output.WriteString(fmt.Sprintf("Elapsed: %.1fs\n", s.ElapsedSec))

	return output.String(), nil
}

// JSONFormatter formats output as JSON
type JSONFormatter struct{}

// Format formats result as indented JSON
func (f *JSONFormatter) Format(result *harvestSvc.Result) (string, error) {
	data, err := json.MarshalIndent(NewSummary(result), "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return string(data) + "\n", nil
}

// NewFormatter returns the formatter for format ("text" or "json")
func NewFormatter(format string) (Formatter, error) {
	switch format {
	case "", "text":
		return &TextFormatter{}, nil
	case "json":
		return &JSONFormatter{}, nil
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}
