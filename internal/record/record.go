package record

import (
	"errors"
	"fmt"
	"time"
)

// Status is the lifecycle state of a Record. A record is created checked-in
// and can only ever transition to checked-out, which is terminal.
type Status string

const (
	StatusCheckedIn  Status = "checked-in"
	StatusCheckedOut Status = "checked-out"
)

// Photo kinds understood by the storage collaborator.
const (
	PhotoKindStudent = "student"
	PhotoKindDevice  = "device"
)

// Record is one student's check-in/check-out session together with the
// device description and captured photos. Field names follow the public API.
type Record struct {
	RecordID          string     `json:"recordId"`
	StudentID         string     `json:"studentId"`
	StudentName       string     `json:"studentName"`
	ClassName         string     `json:"className"`
	StudentPhoto      string     `json:"studentPhoto"`
	DevicePhotos      []string   `json:"devicePhotos"`
	DeviceDescription string     `json:"deviceDescription"`
	CheckInTime       time.Time  `json:"checkInTime"`
	CheckOutTime      *time.Time `json:"checkOutTime,omitempty"`
	Status            Status     `json:"status"`
}

// Sentinel errors for the expected business conditions.
var (
	ErrInvalidIdentifier  = errors.New("invalid student identifier")
	ErrDuplicateStudentID = errors.New("student already checked in")
	ErrDuplicateRecordID  = errors.New("record id already exists")
	ErrNotFound           = errors.New("record not found")
	ErrAlreadyCheckedOut  = errors.New("record already checked out")
)

// ValidationError reports a missing or malformed check-in field.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("missing required field: %s", e.Field)
}
