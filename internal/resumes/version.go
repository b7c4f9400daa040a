// Package resumes holds pure resume operations: versioning, completeness
// scoring, section ordering and share tokens.
package resumes

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"gorm.io/datatypes"

	"jobtracker_backend/internal/models"
)

const InitialVersion = "1.0"

// NextVersion increments the minor component: "1.0" -> "1.1", "2.9" -> "2.10".
// Malformed input is treated as InitialVersion.
func NextVersion(v string) string {
	major, minor, ok := parseVersion(v)
	if !ok {
		major, minor, _ = parseVersion(InitialVersion)
	}
	return fmt.Sprintf("%d.%d", major, minor+1)
}

func parseVersion(v string) (int, int, bool) {
	parts := strings.Split(strings.TrimSpace(v), ".")
	if len(parts) != 2 {
		return 0, 0, false
	}
	major, err := strconv.Atoi(parts[0])
	if err != nil || major < 0 {
		return 0, 0, false
	}
	minor, err := strconv.Atoi(parts[1])
	if err != nil || minor < 0 {
		return 0, 0, false
	}
	return major, minor, true
}

// CreateVersion returns a child of src with the given identity. Content sections
// are deep-copied; files, sharing and analytics start empty. src is not modified.
func CreateVersion(src models.Resume, newTitle, newID string, now time.Time) (models.Resume, error) {
	version := NextVersion(src.Version)
	if strings.TrimSpace(newTitle) == "" {
		newTitle = fmt.Sprintf("%s (v%s)", src.Title, version)
	}

	child := models.Resume{
		BaseModel:    models.BaseModel{ID: newID, CreatedAt: now, UpdatedAt: now},
		UserID:       src.UserID,
		Title:        newTitle,
		Version:      version,
		Description:  src.Description,
		Type:         src.Type,
		TemplateID:   src.TemplateID,
		PersonalInfo: src.PersonalInfo,
		Summary:      src.Summary,
		Status:       models.ResumeDraft,
		IsPublic:     false,
		Files:        datatypes.NewJSONType(models.ResumeFiles{}),
	}

	parentID := src.ID
	child.ParentResumeID = &parentID

	var err error
	copyInto := func(dst, from any) {
		if err != nil {
			return
		}
		err = deepCopy(dst, from)
	}
	copyInto(&child.Experience, src.Experience)
	copyInto(&child.Education, src.Education)
	copyInto(&child.Skills, src.Skills)
	copyInto(&child.Projects, src.Projects)
	copyInto(&child.Certifications, src.Certifications)
	copyInto(&child.Awards, src.Awards)
	copyInto(&child.Publications, src.Publications)
	copyInto(&child.VolunteerExperience, src.VolunteerExperience)
	copyInto(&child.AdditionalSections, src.AdditionalSections)
	copyInto(&child.Settings, src.Settings)
	copyInto(&child.AIGeneration, src.AIGeneration)
	copyInto(&child.Tags, src.Tags)
	if err != nil {
		return models.Resume{}, fmt.Errorf("copy resume sections: %w", err)
	}
	return child, nil
}

func deepCopy(dst, src any) error {
	raw, err := json.Marshal(src)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, dst)
}

// NewShareToken returns 32 random bytes, hex encoded.
func NewShareToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// SetVisibility enforces the token-iff-public rule. A token already present is kept
// when the resume stays public.
func SetVisibility(r *models.Resume, public bool) error {
	if !public {
		r.IsPublic = false
		r.ShareToken = nil
		return nil
	}
	if r.ShareToken == nil || *r.ShareToken == "" {
		token, err := NewShareToken()
		if err != nil {
			return err
		}
		r.ShareToken = &token
	}
	r.IsPublic = true
	return nil
}
