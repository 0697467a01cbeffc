package contact

import (
	"time"

	"github.com/NikosMpantekas/Gradebook-dev-sub005/core"
)

// Status lifecycle: new -> read -> replied -> closed. Never backwards.
const (
	StatusNew     = "new"
	StatusRead    = "read"
	StatusReplied = "replied"
	StatusClosed  = "closed"
)

var statusOrder = map[string]int{
	StatusNew:     0,
	StatusRead:    1,
	StatusReplied: 2,
	StatusClosed:  3,
}

// CanTransition reports whether a message may move from one status to another.
func CanTransition(from, to string) bool {
	f, ok1 := statusOrder[from]
	t, ok2 := statusOrder[to]
	return ok1 && ok2 && t > f
}

type Contact struct {
	ID          string    `json:"id"`
	SenderID    string    `json:"sender_id,omitempty"` // empty on public submissions
	SenderName  string    `json:"sender_name"`
	SenderEmail string    `json:"sender_email"`
	Subject     string    `json:"subject"`
	Message     string    `json:"message"`
	Status      string    `json:"status"`
	ReplyText   string    `json:"reply_text,omitempty"`
	RepliedAt   time.Time `json:"replied_at,omitempty"`
	SchoolID    string    `json:"school_id,omitempty"`
	IsPublic    bool      `json:"is_public"`

	// abuse mitigation context on public submissions
	ClientIP  string `json:"-"`
	UserAgent string `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type NewContact struct {
	Subject string `json:"subject" validate:"required"`
	Message string `json:"message" validate:"required"`
}

func (nc *NewContact) Validate() error {
	nc.Subject = core.CleanString(nc.Subject)
	nc.Message = core.CleanString(nc.Message)
	return core.Validate.Struct(nc)
}

type NewPublicContact struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
	Subject string `json:"subject" validate:"required"`
	Message string `json:"message" validate:"required"`
}

func (nc *NewPublicContact) Validate() error {
	nc.Name = core.CleanString(nc.Name)
	nc.Email = core.CleanString(nc.Email, true /* lower */)
	nc.Subject = core.CleanString(nc.Subject)
	nc.Message = core.CleanString(nc.Message)
	return core.Validate.Struct(nc)
}

type Reply struct {
	Text string `json:"text" validate:"required"`
}

func (r *Reply) Validate() error {
	r.Text = core.CleanString(r.Text)
	return core.Validate.Struct(r)
}
