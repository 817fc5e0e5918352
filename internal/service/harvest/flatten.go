package harvest

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/sosodev/duration"

	"github.com/Taichi-iskw/yt-harvest/internal/model"
)

const (
	// NoTags fills video_tags when the video carries no tags
	NoTags = "no tags"
	// NoData fills video_default_language when it is not reported
	NoData = "no data"

	watchURLPrefix = "https://www.youtube.com/watch?v="
)

// ErrIncompleteRecord marks a cached record that cannot produce an export row
var ErrIncompleteRecord = errors.New("incomplete video record")

var sanitizer = strings.NewReplacer(
	"\t", " ",
	"\r", " ",
	"\n", " ",
	`"`, "'",
)

// Sanitize makes s safe for a single spreadsheet cell: whitespace control
// characters become spaces and double quotes become single quotes.
func Sanitize(s string) string {
	return sanitizer.Replace(s)
}

// FlattenRecord projects a cached video document onto an export row.
// Records missing the video details, snippet, publish timestamp or duration
// return an error wrapping ErrIncompleteRecord and are left out of the table.
func FlattenRecord(document []byte) (*model.ExportRow, error) {
	var record model.VideoRecord
	if err := json.Unmarshal(document, &record); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIncompleteRecord, err)
	}

	videoID := record.VideoID()
	if videoID == "" {
		return nil, fmt.Errorf("%w: missing video ID", ErrIncompleteRecord)
	}

	publishedAt, err := parsePublishedAt(record.Basic.ContentDetails.VideoPublishedAt)
	if err != nil {
		return nil, err
	}

	if record.Info == nil || len(record.Info.Items) == 0 || record.Info.Items[0] == nil {
		return nil, fmt.Errorf("%w: no video details for %s", ErrIncompleteRecord, videoID)
	}
	item := record.Info.Items[0]
	if item.Snippet == nil {
		return nil, fmt.Errorf("%w: missing snippet for %s", ErrIncompleteRecord, videoID)
	}
	if item.ContentDetails == nil {
		return nil, fmt.Errorf("%w: missing duration for %s", ErrIncompleteRecord, videoID)
	}
	seconds, err := DurationSeconds(item.ContentDetails.Duration)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrIncompleteRecord, videoID, err)
	}

	snippet := item.Snippet
	row := &model.ExportRow{
		VideoID:              videoID,
		VideoLink:            watchURLPrefix + videoID,
		PublishedAt:          publishedAt,
		ChannelID:            snippet.ChannelId,
		ChannelTitle:         snippet.ChannelTitle,
		Title:                snippet.Title,
		Description:          snippet.Description,
		DurationSeconds:      seconds,
		CategoryID:           snippet.CategoryId,
		Tags:                 NoTags,
		DefaultAudioLanguage: NoData,
	}
	if len(snippet.Tags) > 0 {
		row.Tags = strings.Join(snippet.Tags, ", ")
	}
	if snippet.DefaultAudioLanguage != "" {
		row.DefaultAudioLanguage = snippet.DefaultAudioLanguage
	}
	// Counts hidden by the uploader are absent and export as 0
	if stats := item.Statistics; stats != nil {
		row.Likes = stats.LikeCount
		row.Views = stats.ViewCount
		row.Comments = stats.CommentCount
	}

	sanitizeRow(row)
	return row, nil
}

// DurationSeconds converts an ISO-8601 duration such as PT1H2M3S to whole seconds
func DurationSeconds(iso string) (int64, error) {
	if iso == "" {
		return 0, errors.New("empty duration")
	}
	d, err := duration.Parse(iso)
	if err != nil {
		return 0, fmt.Errorf("parse duration %q: %w", iso, err)
	}
	return int64(math.Round(d.ToTimeDuration().Seconds())), nil
}

func parsePublishedAt(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, fmt.Errorf("%w: missing publish timestamp", ErrIncompleteRecord)
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: invalid publish timestamp %q", ErrIncompleteRecord, value)
	}
	return t.UTC(), nil
}

func sanitizeRow(row *model.ExportRow) {
	for _, field := range []*string{
		&row.VideoID,
		&row.VideoLink,
		&row.ChannelID,
		&row.ChannelTitle,
		&row.Title,
		&row.Description,
		&row.CategoryID,
		&row.Tags,
		&row.DefaultAudioLanguage,
	} {
		*field = Sanitize(*field)
	}
}
