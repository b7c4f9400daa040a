package ai

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/schema"

	"jobtracker_backend/internal/models"
	"jobtracker_backend/pkg/apperrors"
)

type fakeModel struct {
	content  string
	err      error
	messages []llms.MessageContent
}

func (m *fakeModel) GenerateContent(_ context.Context, messages []llms.MessageContent, _ ...llms.CallOption) (*llms.ContentResponse, error) {
	m.messages = messages
	if m.err != nil {
		return nil, m.err
	}
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: m.content}}}, nil
}

func (m *fakeModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, m, prompt, options...)
}

func TestGenerate_SendsSystemRole(t *testing.T) {
	model := &fakeModel{content: "  Dear team  "}
	g := NewModelGenerator(model, "test", time.Second)

	out, err := g.Generate(context.Background(), "write", RoleCoverLetter)
	require.NoError(t, err)

	assert.Equal(t, "Dear team", out)
	require.Len(t, model.messages, 2)
	assert.Equal(t, schema.ChatMessageTypeSystem, model.messages[0].Role)
	assert.Equal(t, schema.ChatMessageTypeHuman, model.messages[1].Role)
}

func TestGenerate_ErrorIsExternalService(t *testing.T) {
	g := NewModelGenerator(&fakeModel{err: errors.New("quota exceeded")}, "test", time.Second)

	_, err := g.Generate(context.Background(), "write", "")

	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ServiceAI, appErr.Domain)
}

func TestDisabledGenerator(t *testing.T) {
	_, err := disabledGenerator{}.Generate(context.Background(), "x", "")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestParseJobFit(t *testing.T) {
	raw := "```json\n{\"matchScore\": 140, \"missingSkills\": [\"Kubernetes\"], \"summary\": \"good\"}\n```"

	insights, err := ParseJobFit(raw)
	require.NoError(t, err)

	assert.Equal(t, 100, insights.MatchScore)
	assert.Equal(t, []string{"Kubernetes"}, insights.MissingSkills)
	assert.Equal(t, "good", insights.Summary)
}

func TestParseKeywords_Dedupes(t *testing.T) {
	kw, err := ParseKeywords(`["Go", "go", " PostgreSQL ", ""]`)
	require.NoError(t, err)
	assert.Equal(t, []string{"Go", "PostgreSQL"}, kw)

	_, err = ParseKeywords("not json")
	assert.Error(t, err)
}

func TestJobFitPrompt_IncludesJob(t *testing.T) {
	job := &models.JobApplication{
		JobTitle:       "Backend Engineer",
		Company:        "Acme",
		SkillsRequired: pq.StringArray{"Go", "SQL"},
		JobDescription: "Build APIs",
	}
	prompt := JobFitPrompt(Candidate{Name: "Ann", Skills: []string{"Go"}}, job)

	assert.Contains(t, prompt, "Backend Engineer at Acme")
	assert.Contains(t, prompt, "Required skills: Go, SQL")
	assert.Contains(t, prompt, "Skills: Go")
	assert.Contains(t, prompt, "matchScore")
}
