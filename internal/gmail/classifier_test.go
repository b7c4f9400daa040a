package gmail

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	gmailapi "google.golang.org/api/gmail/v1"

	"jobtracker_backend/internal/models"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name    string
		subject string
		snippet string
		want    models.JobStatus
		ok      bool
	}{
		{"confirmation", "Thank you for applying to Acme", "", models.StatusApplied, true},
		{"interview invite", "Interview for Backend Engineer", "Please share your availability", models.StatusFirstInterview, true},
		{"phone screen", "Next steps", "We'd like to set up a phone screen", models.StatusPhoneScreen, true},
		{"assessment", "Your HackerRank challenge", "", models.StatusTechnicalTest, true},
		{"rejection mentioning interview", "Your interview at Acme", "Unfortunately we will not move on", models.StatusRejected, true},
		{"offer", "Your offer letter", "", models.StatusOfferExtended, true},
		{"newsletter", "Weekly digest", "Top stories this week", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, ok := Classify(Message{ID: "m1", Subject: tt.subject, Snippet: tt.snippet, From: "Acme Careers <jobs@acme.com>"})
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, c.Status)
			if ok {
				assert.Equal(t, "m1", c.MessageID)
				assert.Equal(t, "Acme", c.Company)
			}
		})
	}
}

func TestCompanyFromSender(t *testing.T) {
	assert.Equal(t, "Acme", CompanyFromSender("Acme Careers <jobs@acme.com>"))
	assert.Equal(t, "Globex", CompanyFromSender("<noreply@mail.globex.co.uk>"))
	assert.Equal(t, "Initech", CompanyFromSender("Initech Recruiting <no-reply@greenhouse.io>"))
	assert.Equal(t, "Hooli", CompanyFromSender("Hooli via LinkedIn <jobs-noreply@linkedin.com>"))
	assert.Equal(t, "Unknown", CompanyFromSender("not an address"))
}

func TestJobTitleFromSubject(t *testing.T) {
	assert.Equal(t, "Senior Go Developer", JobTitleFromSubject("Your application for Senior Go Developer at Acme"))
	assert.Equal(t, "Data Engineer", JobTitleFromSubject("Interview for the Data Engineer position"))
	assert.Equal(t, "Platform Engineer", JobTitleFromSubject("Platform Engineer role - next steps"))
	assert.Equal(t, "Imported application", JobTitleFromSubject(""))
}

func TestToMessage(t *testing.T) {
	m := toMessage(&gmailapi.Message{
		Id:           "abc",
		Snippet:      "hello",
		InternalDate: 1700000000000,
		Payload: &gmailapi.MessagePart{Headers: []*gmailapi.MessagePartHeader{
			{Name: "From", Value: "x@y.com"},
			{Name: "Subject", Value: "Hi"},
		}},
	})
	assert.Equal(t, "x@y.com", m.From)
	assert.Equal(t, "Hi", m.Subject)
	assert.Equal(t, time.UnixMilli(1700000000000).UTC(), m.Date)
}
