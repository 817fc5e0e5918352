package storage

import "path/filepath"

// VideoDirName is the per-alias directory holding one JSON file per video
const VideoDirName = "individual_video_data"

// Layout resolves where each stage reads and writes its files:
//
//	<root>/<alias>/<alias>-info.json
//	<root>/<alias>/<alias>-playlistItems.json
//	<root>/<alias>/individual_video_data/<video_id>.json
//	<root>/<alias>/<alias>-dataset.xlsx
type Layout struct {
	Root string
}

// AliasDir is the directory holding every output of alias
func (l Layout) AliasDir(alias string) string {
	return filepath.Join(l.Root, alias)
}

// ChannelInfoPath is the raw channel document written by the resolver
func (l Layout) ChannelInfoPath(alias string) string {
	return filepath.Join(l.AliasDir(alias), alias+"-info.json")
}

// UploadsPath is the reference array written by the upload lister
func (l Layout) UploadsPath(alias string) string {
	return filepath.Join(l.AliasDir(alias), alias+"-playlistItems.json")
}

// VideoDir is the file-backend cache directory
func (l Layout) VideoDir(alias string) string {
	return filepath.Join(l.AliasDir(alias), VideoDirName)
}

// DatasetPath is the final spreadsheet
func (l Layout) DatasetPath(alias string) string {
	return filepath.Join(l.AliasDir(alias), alias+"-dataset.xlsx")
}
