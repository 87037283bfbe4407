package export

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarksheetRender(t *testing.T) {
	exporter := NewMarksheetExporter("BSS Inter College")

	pdf, err := exporter.Render(Marksheet{
		RollNumber:  101,
		StudentName: "Aman Kumar",
		ClassName:   "Class 10",
		Subjects: []MarksheetSubject{
			{Subject: "Mathematics", Marks: 92},
			{Subject: "Science", Marks: 85},
		},
		TotalMarks: 177,
		Percentage: 88,
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(pdf), "%PDF"))
}

func TestMarksheetRenderNoSubjects(t *testing.T) {
	exporter := NewMarksheetExporter("BSS Inter College")
	_, err := exporter.Render(Marksheet{RollNumber: 101, StudentName: "Aman Kumar"})
	assert.Error(t, err)
}

func TestCSVRender(t *testing.T) {
	exporter := NewCSVExporter()

	out, err := exporter.Render(Dataset{
		Headers: []string{"id", "student_name"},
		Rows: []map[string]string{
			{"id": "a1", "student_name": "Aman Kumar"},
			{"id": "a2", "student_name": "Priya Singh"},
		},
	})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "id,student_name", lines[0])
	assert.Contains(t, lines[1], "Aman Kumar")
}

func TestCSVRenderNoHeaders(t *testing.T) {
	exporter := NewCSVExporter()
	_, err := exporter.Render(Dataset{})
	assert.Error(t, err)
}
