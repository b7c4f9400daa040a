package validator

import (
	"log"
	"unicode"

	"github.com/go-playground/validator/v10"

	"jobtracker_backend/internal/models"
)

// vocabularyRule validates a string field against one closed vocabulary.
type vocabularyRule struct {
	valid  func(string) bool
	values func() []string
}

func vocabulary[T ~string](set []T) vocabularyRule {
	return vocabularyRule{
		valid: func(s string) bool {
			for _, v := range set {
				if string(v) == s {
					return true
				}
			}
			return false
		},
		values: func() []string {
			out := make([]string, len(set))
			for i, v := range set {
				out[i] = string(v)
			}
			return out
		},
	}
}

var vocabularyRules = map[string]vocabularyRule{
	"is-job-status":         vocabulary(models.JobStatuses),
	"is-job-type":           vocabulary(models.JobTypes),
	"is-experience-level":   vocabulary(models.ExperienceLevels),
	"is-job-priority":       vocabulary(models.JobPriorities),
	"is-remote-type":        vocabulary(models.RemoteTypes),
	"is-currency":           vocabulary(models.Currencies),
	"is-salary-period":      vocabulary(models.SalaryPeriods),
	"is-source-platform":    vocabulary(models.SourcePlatforms),
	"is-contact-role":       vocabulary(models.ContactRoles),
	"is-interview-type":     vocabulary(models.InterviewTypes),
	"is-interview-status":   vocabulary(models.InterviewStatuses),
	"is-resume-type":        vocabulary(models.ResumeTypes),
	"is-resume-status":      vocabulary(models.ResumeStatuses),
	"is-reminder-type":      vocabulary(models.ReminderTypes),
	"is-reminder-priority":  vocabulary(models.ReminderPriorities),
	"is-reminder-status":    vocabulary(models.ReminderStatuses),
	"is-recurrence-type":    vocabulary(models.RecurrenceTypes),
	"is-reminder-frequency": vocabulary(models.ReminderFrequencies),
	"is-skill-level":        vocabulary(models.SkillLevels),
}

func registerCustomRules(v *validator.Validate) {
	mustRegister := func(tag string, fn validator.Func) {
		if err := v.RegisterValidation(tag, fn); err != nil {
			log.Fatalf("failed to register custom validation tag '%s': %v", tag, err)
		}
	}

	for tag, rule := range vocabularyRules {
		rule := rule
		mustRegister(tag, func(fl validator.FieldLevel) bool {
			value := fl.Field().String()
			if value == "" {
				return true // emptiness is checked by 'required'
			}
			return rule.valid(value)
		})
	}

	mustRegister("is-strong-password", validateStrongPassword)
}

// validateStrongPassword requires upper, lower and digit; length is left to min/max.
func validateStrongPassword(fl validator.FieldLevel) bool {
	var upper, lower, digit bool
	for _, r := range fl.Field().String() {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	return upper && lower && digit
}
