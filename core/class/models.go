package class

import (
	"encoding/json"
	"time"

	"github.com/NikosMpantekas/Gradebook-dev-sub005/core"
)

type Class struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	SubjectID    string    `json:"subject_id"`
	Direction    string    `json:"direction"`
	SchoolBranch string    `json:"school_branch"`
	SchoolID     string    `json:"school_id"`
	TeacherIDs   []string  `json:"teacher_ids"`
	StudentIDs   []string  `json:"student_ids"`
	Schedule     []Slot    `json:"schedule"`
	CreatedAt    time.Time `json:"created_at"` // UTC
	UpdatedAt    time.Time `json:"updated_at"` // UTC
}

// Slot is one weekly schedule entry.
type Slot struct {
	Day       string `json:"day" validate:"required,oneof=monday tuesday wednesday thursday friday saturday sunday"`
	StartTime string `json:"start_time" validate:"required,timeslot"`
	EndTime   string `json:"end_time" validate:"required,timeslot"`
}

// IDList accepts both plain ID arrays and arrays of embedded objects
// (`["id"]` or `[{"_id":"id"}]` / `[{"id":"id"}]`) and normalizes them to
// plain IDs at the API boundary.
type IDList []string

func (l *IDList) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	ids := make([]string, 0, len(raw))
	for _, r := range raw {
		var s string
		if err := json.Unmarshal(r, &s); err == nil {
			ids = append(ids, s)
			continue
		}
		var obj struct {
			MongoID string `json:"_id"`
			ID      string `json:"id"`
		}
		if err := json.Unmarshal(r, &obj); err != nil {
			return err
		}
		if obj.MongoID != "" {
			ids = append(ids, obj.MongoID)
		} else {
			ids = append(ids, obj.ID)
		}
	}
	*l = ids
	return nil
}

type NewClass struct {
	Name         string `json:"name" validate:"required"`
	SubjectID    string `json:"subject_id" validate:"required"`
	Direction    string `json:"direction"`
	SchoolBranch string `json:"school_branch"`
	TeacherIDs   IDList `json:"teachers"`
	StudentIDs   IDList `json:"students"`
	Schedule     []Slot `json:"schedule" validate:"omitempty,dive"`
}

func (nc *NewClass) Validate(svc *Service, schoolID string) error {
	nc.Name = core.CleanString(nc.Name)
	nc.SubjectID = core.CleanString(nc.SubjectID)

	if err := core.Validate.Struct(nc); err != nil {
		return err
	}
	return svc.checkNameUniqueness(nc.Name, schoolID)
}

type UpdateClass struct {
	Name         string  `json:"name"`
	SubjectID    string  `json:"subject_id"`
	Direction    *string `json:"direction"`
	SchoolBranch *string `json:"school_branch"`
	TeacherIDs   IDList  `json:"teachers"`
	StudentIDs   IDList  `json:"students"`
	Schedule     []Slot  `json:"schedule" validate:"omitempty,dive"`
}

func (uc *UpdateClass) Validate(orig Class, svc *Service) error {
	if name := core.CleanString(uc.Name); name != "" {
		uc.Name = name
	} else {
		uc.Name = orig.Name
	}
	if subj := core.CleanString(uc.SubjectID); subj != "" {
		uc.SubjectID = subj
	} else {
		uc.SubjectID = orig.SubjectID
	}

	if err := core.Validate.Struct(uc); err != nil {
		return err
	}
	if uc.Name != orig.Name {
		return svc.checkNameUniqueness(uc.Name, orig.SchoolID)
	}
	return nil
}

type QueryFilter struct {
	Search    string `query:"search"`
	SubjectID string `query:"subject"`
	TeacherID string `query:"teacher"`
	StudentID string `query:"student"`
	SchoolID  string `query:"-"` // always set from the request tenant context
}
