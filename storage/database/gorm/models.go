package gormdb

import (
	"time"

	"github.com/NikosMpantekas/Gradebook-dev-sub005/core/class"
	"github.com/NikosMpantekas/Gradebook-dev-sub005/core/contact"
	"github.com/NikosMpantekas/Gradebook-dev-sub005/core/event"
	"github.com/NikosMpantekas/Gradebook-dev-sub005/core/grade"
	"github.com/NikosMpantekas/Gradebook-dev-sub005/core/maintenance"
	"github.com/NikosMpantekas/Gradebook-dev-sub005/core/push"
	"github.com/NikosMpantekas/Gradebook-dev-sub005/core/school"
	"github.com/NikosMpantekas/Gradebook-dev-sub005/core/subject"
	"github.com/NikosMpantekas/Gradebook-dev-sub005/core/theme"
	"github.com/NikosMpantekas/Gradebook-dev-sub005/core/user"
)

// Row types mirror the core models; slice/struct fields are stored as JSONB
// via the gorm JSON serializer.

type userRow struct {
	ID           string `gorm:"primaryKey"`
	Name         string
	Email        string `gorm:"uniqueIndex:idx_users_email_school;not null"`
	PasswordHash []byte
	Role         string `gorm:"index"`
	SchoolID     string `gorm:"uniqueIndex:idx_users_email_school;index"`
	IsActive     bool

	SecretaryPermissions    user.SecretaryPermissions `gorm:"serializer:json"`
	CanSendNotifications    bool
	CanAddGradeDescriptions bool

	FirstLogin            bool
	RequirePasswordChange bool

	StudentIDs []string `gorm:"serializer:json"`
	ParentIDs  []string `gorm:"serializer:json"`

	CreatedAt time.Time
	UpdatedAt time.Time
	LastLogin time.Time
}

func (userRow) TableName() string { return "users" }

func (r userRow) domain() user.User {
	return user.User(r)
}

func newUserRow(u user.User) userRow {
	return userRow(u)
}

type schoolRow struct {
	ID          string `gorm:"primaryKey"`
	Name        string
	EmailDomain string `gorm:"uniqueIndex;not null"`
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (schoolRow) TableName() string { return "schools" }

func (r schoolRow) domain() school.School { return school.School(r) }

type classRow struct {
	ID           string `gorm:"primaryKey"`
	Name         string `gorm:"uniqueIndex:idx_classes_name_school;not null"`
	SubjectID    string `gorm:"index"`
	Direction    string
	SchoolBranch string
	SchoolID     string       `gorm:"uniqueIndex:idx_classes_name_school;index"`
	TeacherIDs   []string     `gorm:"serializer:json"`
	StudentIDs   []string     `gorm:"serializer:json"`
	Schedule     []class.Slot `gorm:"serializer:json"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (classRow) TableName() string { return "classes" }

func (r classRow) domain() class.Class { return class.Class(r) }

type subjectRow struct {
	ID         string   `gorm:"primaryKey"`
	Name       string   `gorm:"uniqueIndex:idx_subjects_name_school;not null"`
	SchoolID   string   `gorm:"uniqueIndex:idx_subjects_name_school;index"`
	TeacherIDs []string `gorm:"serializer:json"`
	Directions []string `gorm:"serializer:json"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (subjectRow) TableName() string { return "subjects" }

func (r subjectRow) domain() subject.Subject { return subject.Subject(r) }

type gradeRow struct {
	ID          string `gorm:"primaryKey"`
	StudentID   string `gorm:"uniqueIndex:idx_grades_tuple;index"`
	SubjectID   string `gorm:"uniqueIndex:idx_grades_tuple"`
	TeacherID   string `gorm:"index"`
	Value       int
	Description string
	Date        string `gorm:"uniqueIndex:idx_grades_tuple"`
	SchoolID    string `gorm:"uniqueIndex:idx_grades_tuple;index"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (gradeRow) TableName() string { return "grades" }

func (r gradeRow) domain() grade.Grade { return grade.Grade(r) }

type eventRow struct {
	ID          string `gorm:"primaryKey"`
	Title       string
	Description string
	StartsAt    time.Time
	EndsAt      time.Time
	Audience    event.Audience `gorm:"serializer:json"`
	CreatorID   string         `gorm:"index"`
	SchoolID    string         `gorm:"index"`
	IsActive    bool           `gorm:"index"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (eventRow) TableName() string { return "events" }

func (r eventRow) domain() event.Event { return event.Event(r) }

type contactRow struct {
	ID          string `gorm:"primaryKey"`
	SenderID    string
	SenderName  string
	SenderEmail string
	Subject     string
	Message     string
	Status      string `gorm:"index"`
	ReplyText   string
	RepliedAt   time.Time
	SchoolID    string `gorm:"index"`
	IsPublic    bool
	ClientIP    string
	UserAgent   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (contactRow) TableName() string { return "contacts" }

func (r contactRow) domain() contact.Contact { return contact.Contact(r) }

type themeRow struct {
	ID        string            `gorm:"primaryKey"`
	Name      string
	Colors    map[string]string `gorm:"serializer:json"`
	SchoolID  string            `gorm:"index"`
	IsDefault bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (themeRow) TableName() string { return "themes" }

func (r themeRow) domain() theme.Theme { return theme.Theme(r) }

type subscriptionRow struct {
	ID        string    `gorm:"primaryKey"`
	UserID    string    `gorm:"index"`
	Endpoint  string    `gorm:"uniqueIndex;not null"`
	Keys      push.Keys `gorm:"serializer:json"`
	CreatedAt time.Time
}

func (subscriptionRow) TableName() string { return "push_subscriptions" }

func (r subscriptionRow) domain() push.Subscription { return push.Subscription(r) }

type maintenanceRow struct {
	ID           int                  `gorm:"primaryKey"` // always 1: singleton
	Enabled      bool
	Message      string
	AllowedRoles []string             `gorm:"serializer:json"`
	History      []maintenance.Change `gorm:"serializer:json"`
	UpdatedAt    time.Time
}

func (maintenanceRow) TableName() string { return "system_maintenance" }
