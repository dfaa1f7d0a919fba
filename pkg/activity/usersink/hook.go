// Package usersink forwards option activity to a go-users ActivitySink.
package usersink

import (
	"context"
	"maps"
	"strings"

	"github.com/goliatone/go-optproxy/pkg/activity"
	usertypes "github.com/goliatone/go-users/pkg/types"
	"github.com/google/uuid"
)

// Hook adapts activity events to a go-users ActivitySink.
type Hook struct {
	Sink usertypes.ActivitySink
}

// Notify maps the event into an ActivityRecord and forwards it to the sink.
// Identifiers that are not UUIDs are kept in the record data under
// actor_ref, user_ref and tenant_ref.
func (h Hook) Notify(ctx context.Context, event activity.Event) error {
	if h.Sink == nil {
		return nil
	}

	normalized := activity.NormalizeEvent(event)
	if normalized.Verb == "" || normalized.ObjectType == "" || normalized.ObjectID == "" {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}

	data := maps.Clone(normalized.Metadata)
	ref := func(key, raw string) uuid.UUID {
		id, ok := parseUUID(raw)
		if !ok && raw != "" {
			if data == nil {
				data = map[string]any{}
			}
			data[key] = raw
		}
		return id
	}

	record := usertypes.ActivityRecord{
		ActorID:    ref("actor_ref", normalized.ActorID),
		UserID:     ref("user_ref", normalized.UserID),
		TenantID:   ref("tenant_ref", normalized.TenantID),
		Verb:       normalized.Verb,
		ObjectType: normalized.ObjectType,
		ObjectID:   normalized.ObjectID,
		Channel:    normalized.Channel,
		OccurredAt: normalized.OccurredAt,
	}
	record.Data = data

	return h.Sink.Log(ctx, record)
}

func parseUUID(input string) (uuid.UUID, bool) {
	id, err := uuid.Parse(strings.TrimSpace(input))
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}
