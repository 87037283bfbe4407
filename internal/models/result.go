package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// SubjectMark is a single subject score within a student result.
type SubjectMark struct {
	Subject string `json:"subject"`
	Marks   int64  `json:"marks"`
}

// SubjectMarks is the JSONB-backed list of subject scores.
type SubjectMarks []SubjectMark

// Value implements driver.Valuer for JSONB storage.
func (m SubjectMarks) Value() (driver.Value, error) {
	return json.Marshal(m)
}

// Scan implements sql.Scanner for JSONB retrieval.
func (m *SubjectMarks) Scan(src interface{}) error {
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, m)
	case string:
		return json.Unmarshal([]byte(v), m)
	case nil:
		*m = nil
		return nil
	default:
		return fmt.Errorf("unsupported subject marks source type %T", src)
	}
}

// StudentResult is a published exam result keyed by roll number.
// TotalMarks and Percentage are derived from Subjects at upload time
// and never accepted from a client.
type StudentResult struct {
	RollNumber  int64        `db:"roll_number" json:"roll_number"`
	StudentName string       `db:"student_name" json:"student_name"`
	ClassName   string       `db:"class_name" json:"class_name"`
	Subjects    SubjectMarks `db:"subjects" json:"subjects"`
	TotalMarks  int64        `db:"total_marks" json:"total_marks"`
	Percentage  int64        `db:"percentage" json:"percentage"`
	CreatedAt   time.Time    `db:"created_at" json:"created_at"`
}

// ResultSort names the supported list orderings.
const (
	ResultSortTimestamp  = "timestamp"
	ResultSortPercentage = "percentage"
)

// ResultFilter captures filtering criteria for listing results.
type ResultFilter struct {
	ClassName string
	Subject   string
	Sort      string
}
