package grade

import (
	"time"

	"github.com/NikosMpantekas/Gradebook-dev-sub005/core"
)

// dateLayout is the day-precision format grades are keyed on: at most one
// grade may exist per (student, subject, day, school).
const dateLayout = "2006-01-02"

type Grade struct {
	ID          string    `json:"id"`
	StudentID   string    `json:"student_id"`
	SubjectID   string    `json:"subject_id"`
	TeacherID   string    `json:"teacher_id"`
	Value       int       `json:"value"`
	Description string    `json:"description,omitempty"`
	Date        string    `json:"date"` // YYYY-MM-DD
	SchoolID    string    `json:"school_id"`
	CreatedAt   time.Time `json:"created_at"` // UTC
	UpdatedAt   time.Time `json:"updated_at"` // UTC
}

type NewGrade struct {
	StudentID   string `json:"student" validate:"required"`
	SubjectID   string `json:"subject" validate:"required"`
	Value       int    `json:"value" validate:"min=0,max=100"`
	Description string `json:"description"`
	Date        string `json:"date" validate:"required"`
}

func (ng *NewGrade) Validate() error {
	ng.Date = core.CleanString(ng.Date)
	if err := core.Validate.Struct(ng); err != nil {
		return err
	}
	day, err := time.Parse(dateLayout, firstDatePart(ng.Date))
	if err != nil {
		return core.NewValidationError(nil, core.FieldError{Field: "date", Error: "must be a YYYY-MM-DD date"})
	}
	ng.Date = day.Format(dateLayout)
	return nil
}

type UpdateGrade struct {
	Value       *int    `json:"value" validate:"omitempty,min=0,max=100"`
	Description *string `json:"description"`
}

func (ug *UpdateGrade) Validate() error {
	return core.Validate.Struct(ug)
}

// firstDatePart tolerates RFC3339 input by keeping the calendar day only.
func firstDatePart(s string) string {
	if len(s) > len(dateLayout) && (s[len(dateLayout)] == 'T' || s[len(dateLayout)] == ' ') {
		return s[:len(dateLayout)]
	}
	return s
}

type QueryFilter struct {
	StudentID string `query:"student"`
	SubjectID string `query:"subject"`
	TeacherID string `query:"teacher"`
	DateFrom  string `query:"date_from"`
	DateTo    string `query:"date_to"`
	SchoolID  string `query:"-"` // always set from the request tenant context
}

// SubjectStats aggregates a student's grades per subject.
type SubjectStats struct {
	SubjectID string  `json:"subject_id"`
	Count     int     `json:"count"`
	Average   float64 `json:"average"`
	Min       int     `json:"min"`
	Max       int     `json:"max"`
}
