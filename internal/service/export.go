package service

import (
	"context"

	"github.com/kjannette/fng-correlation-backend/internal/export"
)

// ExportRows returns the spreadsheet rows (header first) for the aligned
// series of coinID.
func (s *ChartService) ExportRows(ctx context.Context, coinID string, from, to int64) ([][]string, error) {
	records, err := s.Aligned(ctx, coinID, from, to)
	if err != nil {
		return nil, err
	}
	return export.Rows(records, s.loc), nil
}

// ExportFile writes the export of coinID to a fresh file under dir. The
// caller owns the returned file and must Remove it.
func (s *ChartService) ExportFile(ctx context.Context, dir, coinID string, from, to int64) (*export.TempFile, error) {
	rows, err := s.ExportRows(ctx, coinID, from, to)
	if err != nil {
		return nil, err
	}
	return export.WriteTempFile(dir, rows)
}
