// Package mailtmpl renders the transactional HTML emails the client hands
// to the API's mail endpoint: the business-facing contact notification, the
// customer auto-reply, and the booking confirmation.
package mailtmpl

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/bookline-dev/bookline/internal/models"
)

const contactNotificationTemplate = `<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #2b2b2b;">
  <h2>New contact request</h2>
  <table cellpadding="6">
    <tr><td><strong>Name</strong></td><td>{{.Name}}</td></tr>
    <tr><td><strong>Email</strong></td><td>{{.Email}}</td></tr>
    {{if .Phone}}<tr><td><strong>Phone</strong></td><td>{{.Phone}}</td></tr>{{end}}
    {{if .Service}}<tr><td><strong>Service</strong></td><td>{{.Service}}</td></tr>{{end}}
  </table>
  <h3>Message</h3>
  <p>{{.Message}}</p>
  <p style="color: #888; font-size: 12px;">Reference {{.ID}}</p>
</body>
</html>`

const contactAutoReplyTemplate = `<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #2b2b2b;">
  <h2>Thanks for reaching out, {{.Name}}!</h2>
  <p>We received your message and will get back to you within one business day.</p>
  {{if .Service}}<p>You asked about: <strong>{{.Service}}</strong></p>{{end}}
  <p>— The Bookline team</p>
</body>
</html>`

const bookingConfirmationTemplate = `<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #2b2b2b;">
  <h2>Your booking is confirmed</h2>
  <p>Hi {{.FirstName}},</p>
  <p>Your booking for <strong>{{.ServiceName}}</strong> is confirmed.</p>
  <table cellpadding="6">
    <tr><td><strong>When</strong></td><td>{{.When}}</td></tr>
    <tr><td><strong>Duration</strong></td><td>{{.Duration}}</td></tr>
  </table>
  <p>Need to make changes? Just reply to this email.</p>
</body>
</html>`

var (
	contactNotification = template.Must(template.New("contact_notification").Parse(contactNotificationTemplate))
	contactAutoReply    = template.Must(template.New("contact_autoreply").Parse(contactAutoReplyTemplate))
	bookingConfirmation = template.Must(template.New("booking_confirmation").Parse(bookingConfirmationTemplate))
)

// BookingDetails feeds the booking confirmation template.
type BookingDetails struct {
	FirstName   string
	ServiceName string
	When        string
	Duration    string
}

func render(tmpl *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render %s: %w", tmpl.Name(), err)
	}
	return buf.String(), nil
}

// ContactNotification renders the business-facing email for a contact-form
// submission.
func ContactNotification(contact models.Contact) (string, error) {
	return render(contactNotification, contact)
}

// ContactAutoReply renders the customer-facing acknowledgement email.
func ContactAutoReply(contact models.Contact) (string, error) {
	return render(contactAutoReply, contact)
}

// BookingConfirmation renders the booking confirmation email.
func BookingConfirmation(details BookingDetails) (string, error) {
	return render(bookingConfirmation, details)
}
