package models

import (
	"time"

	"github.com/lib/pq"
)

// ApplicationStatus is the three-state lifecycle of an admission application.
type ApplicationStatus string

const (
	StatusPending  ApplicationStatus = "pending"
	StatusApproved ApplicationStatus = "approved"
	StatusRejected ApplicationStatus = "rejected"
)

// Valid reports whether the status is one of the known lifecycle values.
func (s ApplicationStatus) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// ClassNames is the fixed set of classes open for admission.
var ClassNames = []string{
	"Class 6",
	"Class 7",
	"Class 8",
	"Class 9",
	"Class 10",
	"Class 11",
	"Class 12",
}

// ValidClassName reports whether name is one of the admission classes.
func ValidClassName(name string) bool {
	for _, c := range ClassNames {
		if c == name {
			return true
		}
	}
	return false
}

// AdmissionApplication is a submitted admission application.
type AdmissionApplication struct {
	ID             string            `db:"id" json:"id"`
	StudentName    string            `db:"student_name" json:"student_name"`
	FatherName     string            `db:"father_name" json:"father_name"`
	MotherName     string            `db:"mother_name" json:"mother_name"`
	DateOfBirth    string            `db:"date_of_birth" json:"date_of_birth"`
	Mobile         string            `db:"mobile" json:"mobile"`
	Address        string            `db:"address" json:"address"`
	Email          string            `db:"email" json:"email"`
	PreviousSchool string            `db:"previous_school" json:"previous_school"`
	ClassName      string            `db:"class_name" json:"class_name"`
	DocumentURLs   pq.StringArray    `db:"document_urls" json:"document_urls"`
	Status         ApplicationStatus `db:"status" json:"status"`
	CreatedAt      time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time         `db:"updated_at" json:"updated_at"`
}

// ApplicationFilter captures filtering criteria for listing applications.
type ApplicationFilter struct {
	Status *ApplicationStatus
	Search string
}
