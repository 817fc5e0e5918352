package model

import (
	"time"

	"google.golang.org/api/youtube/v3"
)

// Channel represents a resolved YouTube channel
type Channel struct {
	ID                string `json:"id"`
	Alias             string `json:"alias"`
	Title             string `json:"title"`
	UploadsPlaylistID string `json:"uploads_playlist_id"`
}

// VideoRecord is the cached document for one video: the upload reference it was
// discovered through plus the raw videos.list response for its ID
type VideoRecord struct {
	Basic *youtube.PlaylistItem      `json:"VIDEO_BASIC_DATA"`
	Info  *youtube.VideoListResponse `json:"VIDEO_INFO"`
}

// VideoID returns the ID of the referenced video, or "" when the reference is incomplete
func (r *VideoRecord) VideoID() string {
	return ReferenceVideoID(r.Basic)
}

// ReferenceVideoID extracts the video ID from an uploads playlist item
func ReferenceVideoID(item *youtube.PlaylistItem) string {
	if item == nil || item.ContentDetails == nil {
		return ""
	}
	return item.ContentDetails.VideoId
}

// ExportRow is a flattened, sanitized projection of a VideoRecord
type ExportRow struct {
	VideoID              string    `json:"video_id"`
	VideoLink            string    `json:"video_link"`
	PublishedAt          time.Time `json:"video_published_at"`
	ChannelID            string    `json:"channel_id"`
	ChannelTitle         string    `json:"channel_title"`
	Title                string    `json:"video_title"`
	Description          string    `json:"video_description"`
	DurationSeconds      int64     `json:"video_duration_sec"`
	Likes                uint64    `json:"video_likes"`
	Views                uint64    `json:"video_views"`
	Comments             uint64    `json:"video_comments"`
	CategoryID           string    `json:"video_category_id"`
	Tags                 string    `json:"video_tags"`
	DefaultAudioLanguage string    `json:"video_default_language"`
}

// ExportColumns is the fixed column order of the exported table
var ExportColumns = []string{
	"video_id",
	"video_link",
	"video_published_at",
	"channel_id",
	"channel_title",
	"video_title",
	"video_description",
	"video_duration_sec",
	"video_likes",
	"video_views",
	"video_comments",
	"video_category_id",
	"video_tags",
	"video_default_language",
}

// Values returns the row's cells in ExportColumns order
func (r *ExportRow) Values() []any {
	return []any{
		r.VideoID,
		r.VideoLink,
		r.PublishedAt,
		r.ChannelID,
		r.ChannelTitle,
		r.Title,
		r.Description,
		r.DurationSeconds,
		r.Likes,
		r.Views,
		r.Comments,
		r.CategoryID,
		r.Tags,
		r.DefaultAudioLanguage,
	}
}
