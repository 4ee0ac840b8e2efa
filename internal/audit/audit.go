package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// EventType names what happened
type EventType string

const (
	EventLoginSuccess   EventType = "login_success"
	EventLoginFailure   EventType = "login_failure"
	EventLoginThrottled EventType = "login_throttled"
	EventRegister       EventType = "register"
	EventPasswordChange EventType = "password_change"
	EventBannedRequest  EventType = "banned_request"
	EventUserBanned     EventType = "user_banned"
	EventUserUnbanned   EventType = "user_unbanned"
	EventRoleChanged    EventType = "role_changed"
	EventUserDeleted    EventType = "user_deleted"
)

// Status represents the outcome of an action
type Status string

const (
	StatusSuccess Status = "success"
	StatusFailure Status = "failure"
	StatusDenied  Status = "denied"
)

// Event represents an audit event
type Event struct {
	ID        uuid.UUID
	Type      EventType
	ActorID   *uuid.UUID
	Subject   string
	Status    Status
	IPAddress string
	UserAgent string
	RequestID string
	Metadata  map[string]any
	CreatedAt time.Time
}

// Recorder persists audit events. Callers log and drop Record errors.
type Recorder interface {
	Record(ctx context.Context, event *Event) error
}

// RequestInfo is the transport metadata attached to every event recorded for a request.
type RequestInfo struct {
	IPAddress string
	UserAgent string
	RequestID string
}

type requestInfoKey struct{}

func WithRequestInfo(ctx context.Context, info RequestInfo) context.Context {
	return context.WithValue(ctx, requestInfoKey{}, info)
}

func RequestInfoFromContext(ctx context.Context) (RequestInfo, bool) {
	info, ok := ctx.Value(requestInfoKey{}).(RequestInfo)
	return info, ok
}

// RequestInfoFromEcho extracts client address, user agent and request id.
func RequestInfoFromEcho(c echo.Context) RequestInfo {
	requestID := c.Response().Header().Get(echo.HeaderXRequestID)
	if requestID == "" {
		requestID = c.Request().Header.Get(echo.HeaderXRequestID)
	}
	return RequestInfo{
		IPAddress: c.RealIP(),
		UserAgent: c.Request().UserAgent(),
		RequestID: requestID,
	}
}

// Column widths of auth_events; prepare truncates to them.
const (
	MaxSubjectLength   = 255
	MaxIPAddressLength = 64
	MaxRequestIDLength = 64
	MaxUserAgentLength = 512
)

// prepare fills the ID, timestamp and request metadata of an event and
// bounds every free-text field to its column width.
func prepare(ctx context.Context, event *Event) {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}
	if info, ok := RequestInfoFromContext(ctx); ok {
		if event.IPAddress == "" {
			event.IPAddress = info.IPAddress
		}
		if event.UserAgent == "" {
			event.UserAgent = info.UserAgent
		}
		if event.RequestID == "" {
			event.RequestID = info.RequestID
		}
	}

	event.Subject = truncate(event.Subject, MaxSubjectLength)
	event.IPAddress = truncate(event.IPAddress, MaxIPAddressLength)
	event.RequestID = truncate(event.RequestID, MaxRequestIDLength)
	event.UserAgent = truncate(event.UserAgent, MaxUserAgentLength)
}

// truncate cuts s to at most n characters without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}

// Nop discards every event.
type Nop struct{}

func (Nop) Record(context.Context, *Event) error { return nil }

// Multi fans an event out to several recorders and returns the first error.
type Multi []Recorder

func (m Multi) Record(ctx context.Context, event *Event) error {
	var first error
	for _, r := range m {
		if err := r.Record(ctx, event); err != nil && first == nil {
			first = err
		}
	}
	return first
}
