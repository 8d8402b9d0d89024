package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/leadforge/leadforge/pkg/models"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

const (
	FormatCSV   = "csv"
	FormatExcel = "excel"

	defaultMaxLeads = 1000
	hardMaxLeads    = 10000
)

// Filter narrows which leads an export includes.
type Filter struct {
	Status   string `query:"status"`
	MinScore int    `query:"min_score"`
	MaxLeads int    `query:"max_leads"`
}

// Service generates lead exports. Files are streamed to the caller rather
// than stored; exports here are small enough that async processing and
// expiry bookkeeping would be overhead.
type Service struct {
	db *gorm.DB
}

// NewService creates a new export service.
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// Export writes the filtered leads to w in the requested format and
// returns the number of exported rows.
func (s *Service) Export(ctx context.Context, format string, filter Filter, w io.Writer) (int, error) {
	if format != FormatCSV && format != FormatExcel {
		return 0, fmt.Errorf("invalid format: must be csv or excel")
	}

	leads, err := s.fetchLeads(ctx, filter)
	if err != nil {
		return 0, err
	}

	if format == FormatCSV {
		err = generateCSV(w, leads)
	} else {
		err = generateExcel(w, leads)
	}
	if err != nil {
		return 0, err
	}

	return len(leads), nil
}

// Filename suggests a download name for an export generated now.
func Filename(format string) string {
	ext := "csv"
	if format == FormatExcel {
		ext = "xlsx"
	}
	return fmt.Sprintf("leads-%s.%s", time.Now().Format("20060102-150405"), ext)
}

func (s *Service) fetchLeads(ctx context.Context, filter Filter) ([]models.Lead, error) {
	limit := filter.MaxLeads
	if limit <= 0 {
		limit = defaultMaxLeads
	}
	if limit > hardMaxLeads {
		limit = hardMaxLeads
	}

	query := s.db.WithContext(ctx).Model(&models.Lead{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.MinScore > 0 {
		query = query.Where("lead_score >= ?", filter.MinScore)
	}

	var leads []models.Lead
	if err := query.Order("lead_score DESC").Limit(limit).Find(&leads).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch leads for export: %w", err)
	}
	return leads, nil
}

var exportHeaders = []string{
	"ID", "Name", "Industry", "Location", "Website", "Email", "Phone",
	"Rating", "Review Count", "Status", "Lead Score", "Follow-ups",
	"Services", "Pain Points", "Created At",
}

func leadRow(lead *models.Lead) []string {
	return []string{
		strconv.FormatUint(uint64(lead.ID), 10),
		lead.Name,
		lead.Industry,
		lead.Location,
		lead.Website,
		lead.EmailAddress(),
		lead.PhoneNumber(),
		fmt.Sprintf("%.1f", lead.Rating),
		strconv.Itoa(lead.ReviewCount),
		string(lead.Status),
		strconv.Itoa(lead.LeadScore),
		strconv.Itoa(lead.FollowUpCount),
		strings.Join(lead.Facts.Services, "; "),
		strings.Join(lead.Facts.PainPoints, "; "),
		lead.CreatedAt.Format(time.RFC3339),
	}
}

func generateCSV(w io.Writer, leads []models.Lead) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write(exportHeaders); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i := range leads {
		if err := writer.Write(leadRow(&leads[i])); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

func generateExcel(w io.Writer, leads []models.Lead) error {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Leads"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("failed to create style: %w", err)
	}

	for i, header := range exportHeaders {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return fmt.Errorf("failed to map header cell: %w", err)
		}
		f.SetCellValue(sheetName, cell, header)
		f.SetCellStyle(sheetName, cell, cell, headerStyle)
	}

	for rowIdx := range leads {
		for colIdx, value := range leadRow(&leads[rowIdx]) {
			cell, err := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			if err != nil {
				return fmt.Errorf("failed to map cell: %w", err)
			}
			f.SetCellValue(sheetName, cell, value)
		}
	}

	for i := range exportHeaders {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return fmt.Errorf("failed to map column: %w", err)
		}
		f.SetColWidth(sheetName, col, col, 18)
	}

	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}
