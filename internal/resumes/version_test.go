package resumes

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"jobtracker_backend/internal/models"
)

var now = time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

func sampleResume() models.Resume {
	created := now.Add(-48 * time.Hour)
	token := "abc"
	return models.Resume{
		BaseModel: models.BaseModel{ID: "parent", CreatedAt: created, UpdatedAt: created},
		UserID:    "user-1",
		Title:     "Backend CV",
		Version:   "1.0",
		Type:      models.ResumeMaster,
		PersonalInfo: models.PersonalInfo{
			FullName: "Ada Lovelace",
			Email:    "ada@example.com",
			Phone:    "+44 000",
			Address:  models.ResumeAddress{City: "London"},
		},
		Summary: "Engineer with a long track record of building reliable distributed systems.",
		Experience: datatypes.JSONSlice[models.ResumeExperience]{
			{Title: "Engineer", Company: "Analytical Engines", Achievements: []string{"Wrote the first program"}, DisplayOrder: 1},
			{Title: "Lead", Company: "Babbage Ltd", DisplayOrder: 2},
		},
		Education: datatypes.JSONSlice[models.ResumeEducation]{{Degree: "BSc", Institution: "UCL"}},
		Skills: datatypes.NewJSONType(models.SkillSet{
			Technical: []models.SkillCategory{{Category: "Languages", Items: []models.SkillEntry{{Name: "Go"}, {Name: "SQL"}, {Name: "Rust"}}}},
			Soft:      []models.Skill{{Name: "Writing"}},
			Languages: []models.Language{{Name: "English"}},
		}),
		Projects:       datatypes.JSONSlice[models.Project]{{Name: "Difference engine"}},
		Certifications: datatypes.JSONSlice[models.Certification]{{Name: "CKA"}},
		Files: datatypes.NewJSONType(models.ResumeFiles{
			PDF: &models.GeneratedFile{Filename: "cv.pdf", Path: "resumes/cv.pdf", Size: 1024},
		}),
		Analytics:  models.ResumeAnalytics{ViewCount: 12, DownloadCount: 4, ShareCount: 2},
		Status:     models.ResumeActive,
		IsPublic:   true,
		ShareToken: &token,
		Tags:       []string{"go"},
	}
}

func TestNextVersion(t *testing.T) {
	cases := map[string]string{
		"1.0":  "1.1",
		"2.9":  "2.10",
		"3.14": "3.15",
		"":     "1.1",
		"v2":   "1.1",
		"1.a":  "1.1",
	}
	for in, want := range cases {
		assert.Equal(t, want, NextVersion(in), "input %q", in)
	}
}

func TestCreateVersion_ParentUntouched(t *testing.T) {
	parent := sampleResume()
	snapshot := sampleResume()

	child, err := CreateVersion(parent, "", "child", now)
	require.NoError(t, err)

	// mutate the child deeply; the parent must not observe it
	child.Experience[0].Achievements[0] = "changed"
	child.Skills.Data().Technical[0].Items[0].Name = "changed"
	child.Tags[0] = "changed"

	assert.Equal(t, snapshot, parent)
	assert.Equal(t, "Wrote the first program", parent.Experience[0].Achievements[0])
	assert.Equal(t, "Go", parent.Skills.Data().Technical[0].Items[0].Name)
}

func TestCreateVersion_ChildFields(t *testing.T) {
	parent := sampleResume()

	child, err := CreateVersion(parent, "", "child", now)
	require.NoError(t, err)

	assert.Equal(t, "child", child.ID)
	assert.NotEqual(t, parent.ID, child.ID)
	require.NotNil(t, child.ParentResumeID)
	assert.Equal(t, parent.ID, *child.ParentResumeID)
	assert.Equal(t, "1.1", child.Version)
	assert.Equal(t, "Backend CV (v1.1)", child.Title)
	assert.Equal(t, now, child.CreatedAt)
	assert.Equal(t, models.ResumeDraft, child.Status)

	assert.False(t, child.IsPublic)
	assert.Nil(t, child.ShareToken)
	assert.Nil(t, child.Files.Data().PDF)
	assert.Equal(t, models.ResumeAnalytics{}, child.Analytics)

	assert.Equal(t, parent.Experience, child.Experience)
	assert.Equal(t, parent.PersonalInfo, child.PersonalInfo)
	assert.Equal(t, parent.UserID, child.UserID)
}

func TestCreateVersion_CustomTitle(t *testing.T) {
	child, err := CreateVersion(sampleResume(), "Tailored for Acme", "child", now)
	require.NoError(t, err)
	assert.Equal(t, "Tailored for Acme", child.Title)
}

func TestSetVisibility(t *testing.T) {
	r := models.Resume{}

	require.NoError(t, SetVisibility(&r, true))
	require.NotNil(t, r.ShareToken)
	assert.True(t, r.IsPublic)
	assert.Len(t, *r.ShareToken, 64)

	first := *r.ShareToken
	require.NoError(t, SetVisibility(&r, true))
	assert.Equal(t, first, *r.ShareToken)

	require.NoError(t, SetVisibility(&r, false))
	assert.False(t, r.IsPublic)
	assert.Nil(t, r.ShareToken)
}

func TestCompletenessScore(t *testing.T) {
	assert.Equal(t, 0, CompletenessScore(models.Resume{}))
	// 10+5+5 personal, 10 summary, 30 experience, 15 education, 15 skills, 10 extras
	assert.Equal(t, 100, CompletenessScore(sampleResume()))
}

func TestCompleteness_MissingFields(t *testing.T) {
	r := sampleResume()
	r.Summary = ""
	r.PersonalInfo.Phone = ""

	score, missing := Completeness(r)
	assert.Equal(t, 85, score)
	assert.ElementsMatch(t, []string{"summary", "personalInfo.phone"}, missing)
}

func TestSortSections(t *testing.T) {
	r := sampleResume()

	sorted, err := SortSections(r)
	require.NoError(t, err)

	assert.Equal(t, "Lead", sorted.Experience[0].Title)
	assert.Equal(t, "Engineer", r.Experience[0].Title)
}
