package handlers

import (
	"bytes"
	"fmt"
	"net/http"

	"rya_attendance_backend/models"
	"rya_attendance_backend/store"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

const (
	ExportSheetName   = "Attendance"
	xlsxContentType   = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	exportFileName    = "attendance.xlsx"
	exportSummaryName = "Boarded"
)

type ExportHandler struct {
	logger *zap.Logger
}

func NewExportHandler(logger *zap.Logger) *ExportHandler {
	return &ExportHandler{logger: logger}
}

// ExportAttendance downloads the session's roster as a spreadsheet.
func (h *ExportHandler) ExportAttendance(c *gin.Context) {
	var data []byte
	err := currentSession(c).Do(func(st *store.Store) error {
		var err error
		data, err = GenerateAttendanceExport(st.Days(), st.Roster())
		return err
	})
	if err != nil {
		h.logger.Error("error generating attendance export", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate export"})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", exportFileName))
	c.Data(http.StatusOK, xlsxContentType, data)
}

// GenerateAttendanceExport renders one row per attendee, one column per trip
// day, and a final "Boarded" row with the present count of each day.
func GenerateAttendanceExport(days []string, roster *models.Roster) ([]byte, error) {
	f := excelize.NewFile()
	// WriteTo needs the file open, so Close is called explicitly below.

	index, err := f.NewSheet(ExportSheetName)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6F3FF"},
			Pattern: 1,
		},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	headers := append([]string{models.NameColumn}, days...)
	for col, header := range headers {
		if err := setCellValue(f, col+1, 1, header); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to set header cell: %w", err)
		}
	}
	last, err := excelize.CoordinatesToCellName(len(headers), 1)
	if err != nil {
		f.Close()
		return nil, err
	}
	if err := f.SetCellStyle(ExportSheetName, "A1", last, headerStyle); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to set header style: %w", err)
	}
	if err := f.SetColWidth(ExportSheetName, "A", "A", 28); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to set column width: %w", err)
	}

	var attendees []*models.Attendee
	if roster != nil {
		attendees = roster.Attendees
	}
	present := make([]int, len(days))
	for i, a := range attendees {
		row := i + 2
		if err := setCellValue(f, 1, row, a.Name); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to set name at row %d: %w", row, err)
		}
		for j, day := range days {
			status := models.ParseStatus(string(a.Status[day]))
			if status == models.StatusPresent {
				present[j]++
			}
			if err := setCellValue(f, j+2, row, string(status)); err != nil {
				f.Close()
				return nil, fmt.Errorf("failed to set status at row %d: %w", row, err)
			}
		}
	}

	summaryRow := len(attendees) + 2
	if err := setCellValue(f, 1, summaryRow, exportSummaryName); err != nil {
		f.Close()
		return nil, err
	}
	for j := range days {
		value := fmt.Sprintf("%d / %d", present[j], len(attendees))
		if err := setCellValue(f, j+2, summaryRow, value); err != nil {
			f.Close()
			return nil, err
		}
	}

	if err := f.SetPanes(ExportSheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to freeze panes: %w", err)
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to write to buffer: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("failed to close file: %w", err)
	}
	return buf.Bytes(), nil
}

func setCellValue(f *excelize.File, col, row int, value interface{}) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	return f.SetCellValue(ExportSheetName, cell, value)
}
