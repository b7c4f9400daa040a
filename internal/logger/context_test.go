package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContextValues(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-1")
	ctx = WithUserID(ctx, "user-1")

	assert.Equal(t, "req-1", GetRequestID(ctx))
	assert.Equal(t, "user-1", GetUserID(ctx))
	assert.Empty(t, GetRequestID(context.Background()))
	assert.NotNil(t, FromContext(ctx))
}

func TestFromContextCarriesJobAndReminder(t *testing.T) {
	var buf bytes.Buffer
	prev := log
	log = slog.New(slog.NewJSONHandler(&buf, nil))
	t.Cleanup(func() { log = prev })

	ctx := WithUserID(context.Background(), "user-1")
	ctx = WithReminderID(WithJobID(ctx, "job-1"), "reminder-1")
	assert.Equal(t, "job-1", GetJobID(ctx))
	assert.Equal(t, "reminder-1", GetReminderID(ctx))
	assert.Empty(t, GetJobID(context.Background()))

	CtxWarn(ctx, "reminder email abandoned", "attempts", 5)

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "user-1", line["user_id"])
	assert.Equal(t, "job-1", line["job_id"])
	assert.Equal(t, "reminder-1", line["reminder_id"])
	assert.EqualValues(t, 5, line["attempts"])

	buf.Reset()
	CtxInfo(context.Background(), "no ids")
	var bare map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &bare))
	_, tagged := bare["job_id"]
	assert.False(t, tagged)
}

func TestGormLoggerLogMode(t *testing.T) {
	l := NewGormLogger("production")
	quiet := l.LogMode(1)

	assert.NotSame(t, l, quiet)
	assert.NotPanics(t, func() {
		quiet.Info(context.Background(), "ignored %d", 1)
	})
}
