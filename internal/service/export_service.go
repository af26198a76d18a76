package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/spot-review-api/internal/dto"
	"github.com/noah-isme/spot-review-api/internal/models"
	appErrors "github.com/noah-isme/spot-review-api/pkg/errors"
	"github.com/noah-isme/spot-review-api/pkg/export"
)

const (
	ExportFormatCSV = "csv"
	ExportFormatPDF = "pdf"

	exportPageSize = 200
	exportMaxRows  = 10000
)

type locationPager interface {
	List(ctx context.Context, query dto.SubmissionQuery) ([]models.Location, *models.Pagination, error)
}

type profilePager interface {
	List(ctx context.Context, query dto.SubmissionQuery) ([]models.Profile, *models.Pagination, error)
}

type tableWriter interface {
	Write(w io.Writer, table export.Table) error
	ContentType() string
	Extension() string
}

// ExportFile is a rendered export ready to be served as an attachment.
type ExportFile struct {
	Filename    string
	ContentType string
	Data        []byte
	Rows        int
}

// ExportService renders submission listings as downloadable tables.
type ExportService struct {
	locations locationPager
	profiles  profilePager
	writers   map[string]tableWriter
	logger    *zap.Logger
	now       func() time.Time
}

// NewExportService constructs an ExportService with CSV and PDF writers.
func NewExportService(locations locationPager, profiles profilePager, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		locations: locations,
		profiles:  profiles,
		writers: map[string]tableWriter{
			ExportFormatCSV: export.NewCSVExporter(),
			ExportFormatPDF: export.NewPDFExporter(),
		},
		logger: logger,
		now:    time.Now,
	}
}

// ExportLocations renders every location matching the status filter.
func (s *ExportService) ExportLocations(ctx context.Context, query dto.ExportQuery) (*ExportFile, error) {
	writer, err := s.writerFor(query)
	if err != nil {
		return nil, err
	}
	table := export.Table{
		Title:   exportTitle("Locations", query.Status),
		Columns: []string{"id", "name", "link", "status", "submitted_at", "processed_at", "processed_by", "rejection_reason"},
	}
	err = paginate(func(offset int) (int, int, error) {
		items, page, err := s.locations.List(ctx, dto.SubmissionQuery{Status: query.Status, Offset: offset, Limit: exportPageSize})
		if err != nil {
			return 0, 0, err
		}
		for _, item := range items {
			table.Rows = append(table.Rows, []string{
				item.ID, item.Name, item.Link, string(item.Status),
				formatExportTime(&item.SubmittedAt), formatExportTime(item.ProcessedAt),
				deref(item.ProcessedBy), deref(item.RejectionReason),
			})
		}
		return len(items), page.Total, nil
	})
	if err != nil {
		return nil, err
	}
	return s.render(writer, "locations", table)
}

// ExportProfiles renders every profile matching the status filter.
func (s *ExportService) ExportProfiles(ctx context.Context, query dto.ExportQuery) (*ExportFile, error) {
	writer, err := s.writerFor(query)
	if err != nil {
		return nil, err
	}
	table := export.Table{
		Title:   exportTitle("Profiles", query.Status),
		Columns: []string{"id", "full_name", "age", "email", "phone", "status", "submitted_at", "processed_at", "processed_by", "rejection_reason"},
	}
	err = paginate(func(offset int) (int, int, error) {
		items, page, err := s.profiles.List(ctx, dto.SubmissionQuery{Status: query.Status, Offset: offset, Limit: exportPageSize})
		if err != nil {
			return 0, 0, err
		}
		for _, item := range items {
			table.Rows = append(table.Rows, []string{
				item.ID, item.FullName, strconv.Itoa(item.Age), item.Email, item.Phone, string(item.Status),
				formatExportTime(&item.SubmittedAt), formatExportTime(item.ProcessedAt),
				deref(item.ProcessedBy), deref(item.RejectionReason),
			})
		}
		return len(items), page.Total, nil
	})
	if err != nil {
		return nil, err
	}
	return s.render(writer, "profiles", table)
}

func (s *ExportService) writerFor(query dto.ExportQuery) (tableWriter, error) {
	format := strings.ToLower(strings.TrimSpace(query.Format))
	if format == "" {
		format = ExportFormatCSV
	}
	writer, ok := s.writers[format]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", query.Format))
	}
	if query.Status != "" && !query.Status.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("invalid status filter %q", query.Status))
	}
	return writer, nil
}

func (s *ExportService) render(writer tableWriter, name string, table export.Table) (*ExportFile, error) {
	var buf bytes.Buffer
	if err := writer.Write(&buf, table); err != nil {
		s.logger.Error("render export failed", zap.String("export", name), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}
	filename := fmt.Sprintf("%s-%s%s", name, s.now().UTC().Format("20060102-150405"), writer.Extension())
	return &ExportFile{Filename: filename, ContentType: writer.ContentType(), Data: buf.Bytes(), Rows: len(table.Rows)}, nil
}

// paginate calls fetch with increasing offsets until the reported total or
// the export row cap is reached.
func paginate(fetch func(offset int) (got int, total int, err error)) error {
	offset := 0
	for offset < exportMaxRows {
		got, total, err := fetch(offset)
		if err != nil {
			return err
		}
		offset += got
		if got == 0 || offset >= total {
			return nil
		}
	}
	return nil
}

func exportTitle(kind string, status models.SubmissionStatus) string {
	if status == "" {
		return kind
	}
	return fmt.Sprintf("%s (%s)", kind, status)
}

func deref(ptr *string) string {
	if ptr == nil {
		return ""
	}
	return *ptr
}

func formatExportTime(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
