package harvest

import (
	"context"
	"errors"
	"slices"
	"strconv"

	"github.com/xuri/excelize/v2"

	apperrors "github.com/Taichi-iskw/yt-harvest/internal/errors"
	"github.com/Taichi-iskw/yt-harvest/internal/model"
	"github.com/Taichi-iskw/yt-harvest/internal/storage"
)

const (
	datasetSheet = "Sheet1"
	// publishedAtFormat keeps seconds and the full year visible
	publishedAtFormat = "YYYY-MM-DD hh:mm:ss"
)

// Export flattens every cached record of alias and writes <alias>-dataset.xlsx.
// Rows are ordered by video ID; incomplete records are counted and dropped.
func (s *harvestService) Export(ctx context.Context, alias string) (*ExportResult, error) {
	records := s.backend.Records(alias)
	ids, err := records.List(ctx)
	if err != nil {
		return nil, err
	}

	result := &ExportResult{
		Path: s.layout.DatasetPath(alias),
		Rows: make([]*model.ExportRow, 0, len(ids)),
	}
	for _, id := range ids {
		document, err := records.Get(ctx, id)
		if err != nil {
			return nil, err
		}

		row, err := FlattenRecord(document)
		if err != nil {
			if !errors.Is(err, ErrIncompleteRecord) {
				return nil, apperrors.Wrap(err, apperrors.CodeInternal, "failed to flatten video "+id)
			}
			s.logger.Debug().Err(err).Str("video_id", id).Msg("dropping incomplete record")
			result.Dropped++
			continue
		}
		result.Rows = append(result.Rows, row)
	}

	if err := WriteDataset(result.Path, result.Rows); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("alias", alias).
		Str("path", result.Path).
		Int("rows", len(result.Rows)).
		Int("dropped", result.Dropped).
		Msg("dataset exported")

	return result, nil
}

// WriteDataset writes rows to a single-sheet workbook at path, header first.
// The workbook replaces any previous file atomically.
func WriteDataset(path string, rows []*model.ExportRow) error {
	f := excelize.NewFile()
	defer f.Close()

	header := make([]any, len(model.ExportColumns))
	for i, column := range model.ExportColumns {
		header[i] = column
	}
	if err := f.SetSheetRow(datasetSheet, "A1", &header); err != nil {
		return apperrors.Wrap(err, apperrors.CodeInternal, "failed to write dataset header")
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return apperrors.Wrap(err, apperrors.CodeInternal, "failed to address dataset row")
		}
		values := row.Values()
		if err := f.SetSheetRow(datasetSheet, cell, &values); err != nil {
			return apperrors.Wrap(err, apperrors.CodeInternal, "failed to write dataset row "+row.VideoID)
		}
	}

	if len(rows) > 0 {
		if err := stylePublishedAt(f, len(rows)); err != nil {
			return apperrors.Wrap(err, apperrors.CodeInternal, "failed to format dataset dates")
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return apperrors.Wrap(err, apperrors.CodeInternal, "failed to encode dataset")
	}
	if err := storage.WriteFileAtomic(path, buf.Bytes()); err != nil {
		return apperrors.Wrap(err, apperrors.CodeInternal, "failed to save dataset")
	}
	return nil
}

// stylePublishedAt applies publishedAtFormat to the video_published_at cells of rows 2..count+1
func stylePublishedAt(f *excelize.File, count int) error {
	column, err := excelize.ColumnNumberToName(slices.Index(model.ExportColumns, "video_published_at") + 1)
	if err != nil {
		return err
	}

	format := publishedAtFormat
	style, err := f.NewStyle(&excelize.Style{CustomNumFmt: &format})
	if err != nil {
		return err
	}

	return f.SetCellStyle(datasetSheet, column+"2", column+strconv.Itoa(count+1), style)
}
