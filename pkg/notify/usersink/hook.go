package usersink

import (
	"context"
	"time"

	"github.com/goliatone/go-settings/pkg/notify"
	usertypes "github.com/goliatone/go-users/pkg/types"
	"github.com/google/uuid"
)

// Hook adapts settings change events to a go-users ActivitySink. ActorID is
// attached to every record so audit trails can attribute mutations to the
// process or operator that owns the store.
type Hook struct {
	Sink    usertypes.ActivitySink
	ActorID uuid.UUID
}

// Notify maps the event into an ActivityRecord and forwards it to the sink.
func (h Hook) Notify(ctx context.Context, event notify.Event) error {
	if h.Sink == nil {
		return nil
	}

	normalized := notify.NormalizeEvent(event)
	if normalized.Key == "" || normalized.Action == "" {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}

	record := usertypes.ActivityRecord{
		ActorID:    h.ActorID,
		Verb:       string(normalized.Action),
		ObjectType: "setting",
		ObjectID:   normalized.Key,
		Channel:    normalized.Channel,
		Data:       cloneMap(normalized.Metadata),
		OccurredAt: normalized.OccurredAt,
	}
	if record.OccurredAt.IsZero() {
		record.OccurredAt = time.Now()
	}
	if normalized.ID != "" {
		if record.Data == nil {
			record.Data = map[string]any{}
		}
		record.Data["event_id"] = normalized.ID
	}

	return h.Sink.Log(ctx, record)
}

func cloneMap(src map[string]any) map[string]any {
	if len(src) == 0 {
		return nil
	}
	dst := make(map[string]any, len(src))
	for key, value := range src {
		dst[key] = value
	}
	return dst
}
