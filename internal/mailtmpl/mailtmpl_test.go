package mailtmpl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookline-dev/bookline/internal/models"
)

func TestContactNotification(t *testing.T) {
	contact := models.Contact{
		Submission: models.NewSubmission(),
		Name:       "Dana Fields",
		Email:      "dana@example.com",
		Phone:      "+15550001111",
		Service:    "Deep clean",
		Message:    "Looking for a quote on weekly service.",
	}

	html, err := ContactNotification(contact)

	require.NoError(t, err)
	assert.Contains(t, html, "Dana Fields")
	assert.Contains(t, html, "dana@example.com")
	assert.Contains(t, html, "Deep clean")
	assert.Contains(t, html, contact.ID)
}

func TestContactNotificationEscapesHTML(t *testing.T) {
	contact := models.Contact{
		Submission: models.NewSubmission(),
		Name:       "<script>alert(1)</script>",
		Email:      "x@example.com",
		Message:    "hello there, this is long enough",
	}

	html, err := ContactNotification(contact)

	require.NoError(t, err)
	assert.NotContains(t, html, "<script>alert(1)</script>")
	assert.Contains(t, html, "&lt;script&gt;")
}

func TestContactAutoReplyOmitsEmptyService(t *testing.T) {
	contact := models.Contact{
		Submission: models.NewSubmission(),
		Name:       "Dana",
		Email:      "dana@example.com",
		Message:    "hello there, this is long enough",
	}

	html, err := ContactAutoReply(contact)

	require.NoError(t, err)
	assert.Contains(t, html, "Thanks for reaching out, Dana!")
	assert.NotContains(t, html, "You asked about")
}

func TestBookingConfirmation(t *testing.T) {
	html, err := BookingConfirmation(BookingDetails{
		FirstName:   "Dana",
		ServiceName: "Deep clean",
		When:        "Tuesday, 10:00",
		Duration:    "2h",
	})

	require.NoError(t, err)
	assert.Contains(t, html, "Deep clean")
	assert.Contains(t, html, "Tuesday, 10:00")
}
