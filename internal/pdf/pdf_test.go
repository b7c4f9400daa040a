package pdf

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"jobtracker_backend/internal/models"
)

func sampleResume() *models.Resume {
	start := time.Date(2021, 3, 1, 0, 0, 0, 0, time.UTC)
	return &models.Resume{
		Title:   "Backend",
		Summary: "Go engineer <b>building</b> APIs",
		PersonalInfo: models.PersonalInfo{
			FullName: "Ann Lee",
			Email:    "ann@example.com",
		},
		Experience: datatypes.JSONSlice[models.ResumeExperience]{
			{Title: "Later", Company: "B", StartDate: &start, Current: true, DisplayOrder: 2},
			{Title: "Earlier", Company: "A", StartDate: &start, DisplayOrder: 1},
		},
		Settings: datatypes.NewJSONType(models.ResumeSettings{
			Theme:        "classic",
			SectionOrder: []string{"experience", "summary", "bogus"},
		}),
	}
}

func TestRenderHTML(t *testing.T) {
	out, err := RenderHTML(sampleResume(), Options{})
	require.NoError(t, err)
	html := string(out)

	assert.Contains(t, html, "Ann Lee")
	assert.Contains(t, html, "Georgia")
	assert.Contains(t, html, "&lt;b&gt;building&lt;/b&gt;")
	assert.Contains(t, html, "Mar 2021 - Present")
	assert.Less(t, strings.Index(html, "Experience</h2>"), strings.Index(html, "Summary</h2>"))
	assert.Less(t, strings.Index(html, "Later"), strings.Index(html, "Earlier"))
}

func TestRenderHTML_ThemeOverride(t *testing.T) {
	out, err := RenderHTML(sampleResume(), Options{Theme: "modern"})
	require.NoError(t, err)
	assert.Contains(t, string(out), "#2563eb")
}

func TestSectionOrder(t *testing.T) {
	got := sectionOrder([]string{"skills", "skills", "unknown", "summary"})
	assert.Equal(t, []string{"skills", "summary", "experience", "education", "projects", "certifications"}, got)
}

func TestDateRange(t *testing.T) {
	start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2022, 6, 1, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, "Jan 2020 - Jun 2022", dateRange(&start, &end, false))
	assert.Equal(t, "Jan 2020", dateRange(&start, nil, false))
	assert.Equal(t, "", dateRange(nil, nil, true))
}
