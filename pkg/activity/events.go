package activity

import (
	"strings"
	"time"
)

const (
	VerbOptionDefaulted = "options.option.defaulted"
	VerbEntryDropped    = "options.entry.dropped"
	VerbOptionDuplicate = "options.option.duplicate"
	VerbSnapshotSaved   = "options.snapshot.saved"
	VerbLayerApplied    = "options.layer.applied"

	ObjectOption   = "options.option"
	ObjectEntry    = "options.entry"
	ObjectSnapshot = "options.snapshot"
	ObjectLayer    = "options.layer"
)

// ScopeContext captures the layer a snapshot belongs to.
type ScopeContext struct {
	Name       string
	Label      string
	Priority   int
	SnapshotID string
}

// EventInput describes the common fields for option lifecycle events.
type EventInput struct {
	ActorID  string
	UserID   string
	TenantID string
	Channel  string
	// HostID identifies the host the option was declared on.
	HostID string
	Path   string
	Group  string
	Option string
	// Key is the dropped entry key or list index.
	Key        string
	Reason     string
	Err        error
	Metadata   map[string]any
	Scope      ScopeContext
	OccurredAt time.Time
}

// BuildOptionDefaultedEvent reports an option that fell back to its default.
func BuildOptionDefaultedEvent(input EventInput) Event {
	return buildEvent(VerbOptionDefaulted, ObjectOption, input.Path, input)
}

// BuildEntryDroppedEvent reports an enum, wrapper or list entry that failed
// conversion. The object id is path[key].
func BuildEntryDroppedEvent(input EventInput) Event {
	id := input.Path
	if input.Key != "" {
		id = input.Path + "[" + input.Key + "]"
	}
	return buildEvent(VerbEntryDropped, ObjectEntry, id, input)
}

// BuildOptionDuplicateEvent reports a name declared twice in one group.
func BuildOptionDuplicateEvent(input EventInput) Event {
	return buildEvent(VerbOptionDuplicate, ObjectOption, input.Path, input)
}

// BuildSnapshotSavedEvent reports a serialized host persisted to a store.
func BuildSnapshotSavedEvent(input EventInput) Event {
	return buildEvent(VerbSnapshotSaved, ObjectSnapshot, input.Scope.SnapshotID, input)
}

// BuildLayerAppliedEvent reports a scope layer merged into a resolved provider.
func BuildLayerAppliedEvent(input EventInput) Event {
	return buildEvent(VerbLayerApplied, ObjectLayer, input.Scope.Name, input)
}

func buildEvent(verb, objectType, objectID string, input EventInput) Event {
	metadata := cloneMap(input.Metadata)
	set := func(key string, value any) {
		if metadata == nil {
			metadata = map[string]any{}
		}
		metadata[key] = value
	}
	if input.HostID != "" {
		set("host_id", input.HostID)
	}
	if input.Path != "" {
		set("path", input.Path)
	}
	if input.Group != "" {
		set("group", input.Group)
	}
	if input.Option != "" {
		set("option", input.Option)
	}
	if input.Key != "" {
		set("key", input.Key)
	}
	if input.Reason != "" {
		set("reason", input.Reason)
	}
	if input.Err != nil {
		set("error", input.Err.Error())
	}
	if input.Scope.Name != "" {
		set("scope_name", input.Scope.Name)
		set("scope_priority", input.Scope.Priority)
		if input.Scope.Label != "" {
			set("scope_label", input.Scope.Label)
		}
	}
	if input.Scope.SnapshotID != "" {
		set("snapshot_id", input.Scope.SnapshotID)
	}

	objectID = strings.TrimSpace(objectID)
	if objectID == "" {
		objectID = objectType
	}

	return Event{
		Verb:       verb,
		ActorID:    strings.TrimSpace(input.ActorID),
		UserID:     strings.TrimSpace(input.UserID),
		TenantID:   strings.TrimSpace(input.TenantID),
		ObjectType: objectType,
		ObjectID:   objectID,
		Channel:    strings.TrimSpace(input.Channel),
		Metadata:   metadata,
		OccurredAt: input.OccurredAt,
	}
}
