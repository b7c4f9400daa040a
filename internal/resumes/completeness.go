package resumes

import (
	"sort"

	"jobtracker_backend/internal/models"
)

type completenessCheck struct {
	field  string
	points int
	ok     func(models.Resume) bool
}

var completenessChecks = []completenessCheck{
	{"personalInfo.fullName/email", 10, func(r models.Resume) bool {
		return r.PersonalInfo.FullName != "" && r.PersonalInfo.Email != ""
	}},
	{"personalInfo.phone", 5, func(r models.Resume) bool { return r.PersonalInfo.Phone != "" }},
	{"personalInfo.address.city", 5, func(r models.Resume) bool { return r.PersonalInfo.Address.City != "" }},
	{"summary", 10, func(r models.Resume) bool { return len(r.Summary) > 50 }},
	{"experience", 15, func(r models.Resume) bool { return len(r.Experience) > 0 }},
	{"experience.achievements", 15, func(r models.Resume) bool {
		for _, e := range r.Experience {
			if len(e.Achievements) > 0 {
				return true
			}
		}
		return false
	}},
	{"education", 15, func(r models.Resume) bool { return len(r.Education) > 0 }},
	{"skills", 15, func(r models.Resume) bool { return SkillCount(r.Skills.Data()) >= 5 }},
	{"projects/certifications/awards", 10, func(r models.Resume) bool {
		extras := 0
		for _, n := range []int{len(r.Projects), len(r.Certifications), len(r.Awards)} {
			if n > 0 {
				extras++
			}
		}
		return extras >= 2
	}},
}

// CompletenessScore grades how filled-in a resume is, 0 to 100.
func CompletenessScore(r models.Resume) int {
	score, _ := Completeness(r)
	return score
}

// Completeness returns the score and the sections still missing points.
func Completeness(r models.Resume) (int, []string) {
	score := 0
	missing := []string{}
	for _, c := range completenessChecks {
		if c.ok(r) {
			score += c.points
		} else {
			missing = append(missing, c.field)
		}
	}
	return score, missing
}

// SkillCount counts every technical item, soft skill and language.
func SkillCount(s models.SkillSet) int {
	n := len(s.Soft) + len(s.Languages)
	for _, c := range s.Technical {
		n += len(c.Items)
	}
	return n
}

// SortSections orders every list section by displayOrder, highest first.
// The input is left untouched.
func SortSections(r models.Resume) (models.Resume, error) {
	out := r
	if err := deepCopy(&out.Experience, r.Experience); err != nil {
		return r, err
	}
	if err := deepCopy(&out.Education, r.Education); err != nil {
		return r, err
	}
	if err := deepCopy(&out.Projects, r.Projects); err != nil {
		return r, err
	}
	if err := deepCopy(&out.Certifications, r.Certifications); err != nil {
		return r, err
	}
	if err := deepCopy(&out.Awards, r.Awards); err != nil {
		return r, err
	}
	if err := deepCopy(&out.Publications, r.Publications); err != nil {
		return r, err
	}
	if err := deepCopy(&out.VolunteerExperience, r.VolunteerExperience); err != nil {
		return r, err
	}
	if err := deepCopy(&out.AdditionalSections, r.AdditionalSections); err != nil {
		return r, err
	}

	byOrder(out.Experience, func(e models.ResumeExperience) int { return e.DisplayOrder })
	byOrder(out.Education, func(e models.ResumeEducation) int { return e.DisplayOrder })
	byOrder(out.Projects, func(e models.Project) int { return e.DisplayOrder })
	byOrder(out.Certifications, func(e models.Certification) int { return e.DisplayOrder })
	byOrder(out.Awards, func(e models.Award) int { return e.DisplayOrder })
	byOrder(out.Publications, func(e models.Publication) int { return e.DisplayOrder })
	byOrder(out.VolunteerExperience, func(e models.Volunteering) int { return e.DisplayOrder })
	byOrder(out.AdditionalSections, func(e models.CustomSection) int { return e.DisplayOrder })
	return out, nil
}

func byOrder[T any](items []T, order func(T) int) {
	sort.SliceStable(items, func(i, j int) bool {
		return order(items[i]) > order(items[j])
	})
}
