package counter

import (
	"fmt"

	"github.com/statecraft/mvu/mvutest"
)

// Bindings adapts the counter app to the scenario runner: seed decoding,
// event decoding and props snapshots.
func Bindings() mvutest.Bindings[Event, Model, Props] {
	return mvutest.Bindings[Event, Model, Props]{
		Logic:         Logic{},
		SeedModel:     SeedModel,
		DecodeEvent:   DecodeEvent,
		SnapshotProps: SnapshotProps,
	}
}

// SeedModel builds the initial model from a scenario seed mapping.
// Only the "count" key is recognized.
func SeedModel(seed map[string]any) (Model, error) {
	model := Model{}
	for key, value := range seed {
		switch key {
		case "count":
			n, ok := asInt(value)
			if !ok {
				return Model{}, fmt.Errorf("seed count: expected integer, got %T", value)
			}
			model.Count = n
		default:
			return Model{}, fmt.Errorf("seed: unknown key %q", key)
		}
	}
	return model, nil
}

// DecodeEvent maps a scenario step name and arguments onto an Event.
func DecodeEvent(name string, args map[string]any) (Event, error) {
	switch Kind(name) {
	case KindIncrement, KindDecrement:
		if len(args) != 0 {
			return Event{}, fmt.Errorf("event %q takes no arguments", name)
		}
		return Event{Kind: Kind(name)}, nil

	case KindAddLater, KindAdded:
		amount, ok := asInt(args["amount"])
		if !ok {
			return Event{}, fmt.Errorf("event %q: missing integer argument \"amount\"", name)
		}
		if len(args) != 1 {
			return Event{}, fmt.Errorf("event %q: unexpected extra arguments", name)
		}
		return Event{Kind: Kind(name), Amount: amount}, nil

	default:
		return Event{}, fmt.Errorf("unknown event %q", name)
	}
}

// EncodeEvent is the journaling counterpart of DecodeEvent: it names
// an event and extracts its arguments. Round-tripping through
// DecodeEvent yields the original event.
func EncodeEvent(event Event) (string, map[string]any, error) {
	switch event.Kind {
	case KindIncrement, KindDecrement:
		return string(event.Kind), nil, nil
	case KindAddLater, KindAdded:
		return string(event.Kind), map[string]any{"amount": event.Amount}, nil
	default:
		return "", nil, fmt.Errorf("unknown event kind %q", event.Kind)
	}
}

// SnapshotProps projects Props into the plain mapping recorded in
// scenario traces. Callbacks are omitted.
func SnapshotProps(props Props) map[string]any {
	return map[string]any{"count": props.Count}
}

func asInt(value any) (int, bool) {
	switch n := value.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	default:
		return 0, false
	}
}
