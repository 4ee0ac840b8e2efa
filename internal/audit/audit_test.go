package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogRecorderWritesEvent(t *testing.T) {
	var buf bytes.Buffer
	rec := NewLogRecorder(zerolog.New(&buf))

	actor := uuid.New()
	ctx := WithRequestInfo(context.Background(), RequestInfo{IPAddress: "10.0.0.1", RequestID: "req-1"})
	event := &Event{Type: EventLoginFailure, Status: StatusFailure, Subject: "alice", ActorID: &actor}

	require.NoError(t, rec.Record(ctx, event))
	assert.NotEqual(t, uuid.Nil, event.ID)
	assert.False(t, event.CreatedAt.IsZero())

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "warn", line["level"])
	assert.Equal(t, "login_failure", line["event_type"])
	assert.Equal(t, "alice", line["subject"])
	assert.Equal(t, "10.0.0.1", line["ip"])
	assert.Equal(t, "req-1", line["request_id"])
	assert.Equal(t, actor.String(), line["actor_id"])
}

func TestRequestInfoFromEcho(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("User-Agent", "test-agent")
	req.Header.Set(echo.HeaderXRealIP, "192.0.2.7")
	rec := httptest.NewRecorder()
	rec.Header().Set(echo.HeaderXRequestID, "abc")
	c := e.NewContext(req, rec)

	info := RequestInfoFromEcho(c)
	assert.Equal(t, "192.0.2.7", info.IPAddress)
	assert.Equal(t, "test-agent", info.UserAgent)
	assert.Equal(t, "abc", info.RequestID)
}

type failingRecorder struct{ calls int }

func (f *failingRecorder) Record(context.Context, *Event) error {
	f.calls++
	return errors.New("boom")
}

func TestMultiRecordsToAll(t *testing.T) {
	first := &failingRecorder{}
	second := &failingRecorder{}

	err := Multi{first, Nop{}, second}.Record(context.Background(), &Event{Type: EventRegister})
	assert.EqualError(t, err, "boom")
	assert.Equal(t, 1, first.calls)
	assert.Equal(t, 1, second.calls)
}

func TestPrepareBoundsFieldsToColumnWidths(t *testing.T) {
	long := strings.Repeat("x", 300)
	ctx := WithRequestInfo(context.Background(), RequestInfo{
		IPAddress: strings.Repeat("1.2.3.4, ", 20),
		UserAgent: strings.Repeat("agent ", 200),
		RequestID: strings.Repeat("r", 100),
	})
	event := &Event{Type: EventLoginFailure, Status: StatusFailure, Subject: long}

	prepare(ctx, event)

	assert.Len(t, event.Subject, MaxSubjectLength)
	assert.Len(t, event.IPAddress, MaxIPAddressLength)
	assert.Len(t, event.RequestID, MaxRequestIDLength)
	assert.Len(t, event.UserAgent, MaxUserAgentLength)
}

func TestPrepareKeepsRunesWhole(t *testing.T) {
	event := &Event{Subject: strings.Repeat("é", MaxSubjectLength+10)}

	prepare(context.Background(), event)

	assert.Equal(t, MaxSubjectLength, utf8.RuneCountInString(event.Subject))
	assert.True(t, utf8.ValidString(event.Subject))
}
