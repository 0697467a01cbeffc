package contact

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to string
		want     bool
	}{
		{StatusNew, StatusRead, true},
		{StatusNew, StatusReplied, true},
		{StatusNew, StatusClosed, true},
		{StatusRead, StatusReplied, true},
		{StatusReplied, StatusClosed, true},

		// never backwards, never in place
		{StatusRead, StatusNew, false},
		{StatusReplied, StatusRead, false},
		{StatusClosed, StatusReplied, false},
		{StatusClosed, StatusNew, false},
		{StatusNew, StatusNew, false},

		// unknown statuses
		{"archived", StatusClosed, false},
		{StatusNew, "archived", false},
	}
	for _, tt := range tests {
		t.Run(tt.from+"->"+tt.to, func(t *testing.T) {
			assert.Equal(t, tt.want, CanTransition(tt.from, tt.to))
		})
	}
}

func TestNewPublicContact_Validate(t *testing.T) {
	t.Run("normalizes input", func(t *testing.T) {
		nc := NewPublicContact{
			Name:    "  Jo Doe ",
			Email:   " Jo.Doe@Example.COM ",
			Subject: " Enrollment  ",
			Message: " Hello ",
		}
		require.NoError(t, nc.Validate())
		assert.Equal(t, "Jo Doe", nc.Name)
		assert.Equal(t, "jo.doe@example.com", nc.Email)
		assert.Equal(t, "Enrollment", nc.Subject)
		assert.Equal(t, "Hello", nc.Message)
	})

	t.Run("bad email", func(t *testing.T) {
		nc := NewPublicContact{Name: "Jo", Email: "not-an-email", Subject: "s", Message: "m"}
		assert.Error(t, nc.Validate())
	})

	t.Run("whitespace only is empty", func(t *testing.T) {
		nc := NewPublicContact{Name: "   ", Email: "jo@example.com", Subject: "s", Message: "m"}
		assert.Error(t, nc.Validate())
	})
}
