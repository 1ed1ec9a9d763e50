// Package export renders submission lists as CSV or XLSX files.
package export

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/thenextevent/eventdesk/internal/models"
)

// Header is the column row shared by both formats.
var Header = []string{
	"ID", "نوع النموذج", "اسم المرسل", "البريد الإلكتروني", "رقم الهاتف",
	"الرسالة", "الحالة", "الأولوية", "تاريخ الإرسال",
}

const (
	// ClientPrefix names files composed from an already loaded list.
	ClientPrefix = "form_data"
	// ServerPrefix names files rendered by the API.
	ServerPrefix = "submissions"
)

const (
	ContentTypeCSV  = "text/csv; charset=utf-8"
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

func FileName(prefix string, format models.ExportFormat, t time.Time) string {
	ext := "csv"
	if format == models.ExportExcel {
		ext = "xlsx"
	}
	return fmt.Sprintf("%s_%s.%s", prefix, t.UTC().Format(time.DateOnly), ext)
}

func ContentType(format models.ExportFormat) string {
	if format == models.ExportExcel {
		return ContentTypeXLSX
	}
	return ContentTypeCSV
}

func row(s models.Submission) []string {
	return []string{
		strconv.FormatInt(s.ID, 10),
		string(s.FormType),
		s.SubmitterName,
		s.SubmitterEmail,
		s.SubmitterPhone,
		s.Message,
		string(s.Status),
		string(s.Priority),
		s.SubmittedAt.UTC().Format(time.RFC3339),
	}
}

func quote(v string) string {
	return `"` + strings.ReplaceAll(v, `"`, `""`) + `"`
}

// WriteCSV writes the header and one line per submission. The ID column is
// bare; every other value is quoted so embedded commas and newlines survive.
func WriteCSV(w io.Writer, subs []models.Submission) error {
	bw := bufio.NewWriter(w)
	bw.WriteString(strings.Join(Header, ","))
	for _, s := range subs {
		cells := row(s)
		bw.WriteByte('\n')
		bw.WriteString(cells[0])
		for _, c := range cells[1:] {
			bw.WriteByte(',')
			bw.WriteString(quote(c))
		}
	}
	bw.WriteByte('\n')
	return bw.Flush()
}

const sheetName = "Submissions"

// WriteXLSX writes a single right-to-left worksheet.
func WriteXLSX(w io.Writer, subs []models.Submission) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return err
	}
	rtl := true
	if err := f.SetSheetView(sheetName, 0, &excelize.ViewOptions{RightToLeft: &rtl}); err != nil {
		return err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheetName, "A1", &Header); err != nil {
		return err
	}
	if err := f.SetRowStyle(sheetName, 1, 1, bold); err != nil {
		return err
	}
	for i, s := range subs {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := row(s)
		cells := make([]any, len(values))
		cells[0] = s.ID
		for j, v := range values[1:] {
			cells[j+1] = v
		}
		if err := f.SetSheetRow(sheetName, cell, &cells); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}
	if err := f.SetColWidth(sheetName, "A", "I", 22); err != nil {
		return err
	}
	return f.Write(w)
}

// Write renders subs in the requested format.
func Write(w io.Writer, format models.ExportFormat, subs []models.Submission) error {
	switch format {
	case models.ExportCSV:
		return WriteCSV(w, subs)
	case models.ExportExcel:
		return WriteXLSX(w, subs)
	}
	return fmt.Errorf("unsupported export format %q", format)
}
