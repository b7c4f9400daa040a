package gmail

import (
	"net/mail"
	"regexp"
	"strings"
	"time"
	"unicode"

	"jobtracker_backend/internal/models"
)

// Message is the metadata of one inbox message.
type Message struct {
	ID       string
	ThreadID string
	From     string
	Subject  string
	Snippet  string
	Date     time.Time
}

// Candidate is a message recognized as part of a job application.
type Candidate struct {
	MessageID string
	Status    models.JobStatus
	Company   string
	JobTitle  string
	Date      time.Time
	Subject   string
	From      string
}

type rule struct {
	status   models.JobStatus
	keywords []string
}

// Rules are checked in order; terminal outcomes first so a rejection that
// mentions "interview" is not read as an invitation.
var rules = []rule{
	{models.StatusOfferExtended, []string{"offer letter", "pleased to offer", "job offer", "offer of employment", "extend an offer"}},
	{models.StatusRejected, []string{
		"unfortunately", "not moving forward", "regret to inform", "other candidates",
		"not been selected", "will not be proceeding", "decided not to proceed", "position has been filled",
	}},
	{models.StatusTechnicalTest, []string{"coding challenge", "technical assessment", "take-home", "online assessment", "hackerrank", "codility"}},
	{models.StatusPhoneScreen, []string{"phone screen", "screening call", "intro call", "recruiter call"}},
	{models.StatusFirstInterview, []string{"interview", "schedule a call", "availability for a call"}},
	{models.StatusUnderReview, []string{"under review", "reviewing your application", "in review"}},
	{models.StatusApplied, []string{
		"application received", "thank you for applying", "thanks for applying", "application has been submitted",
		"received your application", "application was sent", "your application to", "application for",
	}},
}

// Classify maps a message to an application status by keyword. It reports
// false when the message does not look job related.
func Classify(msg Message) (Candidate, bool) {
	text := strings.ToLower(msg.Subject + " " + msg.Snippet)

	var status models.JobStatus
	for _, r := range rules {
		if containsAny(text, r.keywords) {
			status = r.status
			break
		}
	}
	if status == "" {
		return Candidate{}, false
	}

	return Candidate{
		MessageID: msg.ID,
		Status:    status,
		Company:   CompanyFromSender(msg.From),
		JobTitle:  JobTitleFromSubject(msg.Subject),
		Date:      msg.Date,
		Subject:   msg.Subject,
		From:      msg.From,
	}, true
}

// Senders that relay for many employers; their domain says nothing about the company.
var relayDomains = []string{
	"greenhouse.io", "lever.co", "myworkday.com", "myworkdayjobs.com", "workday.com", "smartrecruiters.com",
	"linkedin.com", "indeed.com", "naukri.com", "ashbyhq.com", "icims.com", "jobvite.com", "gmail.com",
	"outlook.com", "yahoo.com",
}

var senderNoise = regexp.MustCompile(`(?i)\b(careers?|recruiting|recruitment|talent( acquisition)?|jobs?|hr|team|hiring|people|no-?reply|notifications?)\b`)

// CompanyFromSender guesses the employer from a From header.
func CompanyFromSender(from string) string {
	addr, err := mail.ParseAddress(from)
	if err != nil {
		return "Unknown"
	}

	name := addr.Name
	if i := strings.Index(strings.ToLower(name), " via "); i >= 0 {
		name = name[:i]
	}
	name = strings.Join(strings.Fields(senderNoise.ReplaceAllString(name, " ")), " ")
	name = strings.Trim(name, " -|@")

	domain := ""
	if at := strings.LastIndexByte(addr.Address, '@'); at >= 0 {
		domain = strings.ToLower(addr.Address[at+1:])
	}
	if !isRelay(domain) {
		if company := companyFromDomain(domain); company != "" {
			return company
		}
	}
	if name != "" {
		return name
	}
	return "Unknown"
}

func isRelay(domain string) bool {
	for _, d := range relayDomains {
		if domain == d || strings.HasSuffix(domain, "."+d) {
			return true
		}
	}
	return false
}

// companyFromDomain takes the registrable label: mail.jobs.acme.co.uk -> Acme.
func companyFromDomain(domain string) string {
	labels := strings.Split(domain, ".")
	if len(labels) < 2 {
		return ""
	}
	i := len(labels) - 2
	if i > 0 && len(labels[i]) <= 3 && len(labels[len(labels)-1]) == 2 {
		i--
	}
	label := labels[i]
	if label == "" {
		return ""
	}
	r := []rune(label)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

var titlePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:application for|applying for|applied for|interview for|application to)\s+(?:the\s+)?(.+?)(?:\s+(?:at|with)\s+.*|\s+position.*|\s+role.*|\s*[-|:].*)?$`),
	regexp.MustCompile(`(?i)^(.+?)\s+(?:position|role)\b`),
}

// JobTitleFromSubject extracts the position from common subject lines.
func JobTitleFromSubject(subject string) string {
	subject = strings.TrimSpace(subject)
	for _, re := range titlePatterns {
		if m := re.FindStringSubmatch(subject); len(m) > 1 {
			if title := strings.Trim(strings.TrimSpace(m[1]), `"'.!`); title != "" {
				return truncate(title, 200)
			}
		}
	}
	if subject == "" {
		return "Imported application"
	}
	return truncate(subject, 200)
}

func containsAny(text string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(text, k) {
			return true
		}
	}
	return false
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
