package export

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

// MarksheetSubject is one subject row on a marksheet.
type MarksheetSubject struct {
	Subject string
	Marks   int64
}

// Marksheet holds everything printed on a student result PDF.
type Marksheet struct {
	RollNumber  int64
	StudentName string
	ClassName   string
	Subjects    []MarksheetSubject
	TotalMarks  int64
	Percentage  int64
}

// MarksheetExporter renders student results into printable PDF marksheets.
type MarksheetExporter struct {
	schoolName string
}

// NewMarksheetExporter constructs a marksheet exporter.
func NewMarksheetExporter(schoolName string) *MarksheetExporter {
	if schoolName == "" {
		schoolName = "School Result"
	}
	return &MarksheetExporter{schoolName: schoolName}
}

// Render creates the marksheet PDF for a single student result.
func (e *MarksheetExporter) Render(sheet Marksheet) ([]byte, error) {
	if len(sheet.Subjects) == 0 {
		return nil, fmt.Errorf("marksheet requires at least one subject")
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 20, 15)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 10, e.schoolName, "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 11)
	pdf.CellFormat(0, 8, "Statement of Marks", "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(60, 7, fmt.Sprintf("Roll Number: %d", sheet.RollNumber), "", 0, "", false, 0, "")
	pdf.CellFormat(0, 7, fmt.Sprintf("Class: %s", sheet.ClassName), "", 1, "", false, 0, "")
	pdf.CellFormat(0, 7, fmt.Sprintf("Student Name: %s", sheet.StudentName), "", 1, "", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(120, 8, "Subject", "1", 0, "C", false, 0, "")
	pdf.CellFormat(60, 8, "Marks", "1", 1, "C", false, 0, "")

	pdf.SetFont("Arial", "", 10)
	for _, sub := range sheet.Subjects {
		pdf.CellFormat(120, 7, sub.Subject, "1", 0, "", false, 0, "")
		pdf.CellFormat(60, 7, fmt.Sprintf("%d", sub.Marks), "1", 1, "R", false, 0, "")
	}

	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(120, 8, "Total", "1", 0, "", false, 0, "")
	pdf.CellFormat(60, 8, fmt.Sprintf("%d", sheet.TotalMarks), "1", 1, "R", false, 0, "")
	pdf.CellFormat(120, 8, "Percentage", "1", 0, "", false, 0, "")
	pdf.CellFormat(60, 8, fmt.Sprintf("%d%%", sheet.Percentage), "1", 1, "R", false, 0, "")

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render marksheet pdf: %w", err)
	}
	return buf.Bytes(), nil
}
