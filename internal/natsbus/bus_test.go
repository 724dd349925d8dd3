package natsbus

import (
	"encoding/json"
	"testing"
	"time"
)

// TestNewBusWithoutServer verifies NewBus returns an error instead of
// blocking indefinitely when no NATS server is reachable.
func TestNewBusWithoutServer(t *testing.T) {
	cfg := Config{URL: "nats://127.0.0.1:1", ReconnectWait: time.Millisecond, MaxReconnects: 0}
	_, err := NewBus(cfg, nil, nil)
	if err == nil {
		t.Fatal("expected an error connecting to a NATS server on port 1")
	}
}

func TestGoalMessageRoundTrip(t *testing.T) {
	ref := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	gm := GoalMessage{
		Kind: "track",
		Target: &TargetMessage{
			Name:        "polaris",
			RARad:       0.66,
			DecRad:      1.55,
			ReferenceAt: ref,
		},
	}

	data, err := json.Marshal(gm)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var got GoalMessage
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Kind != gm.Kind {
		t.Fatalf("kind = %q, want %q", got.Kind, gm.Kind)
	}
	if got.Target == nil {
		t.Fatal("target round-tripped as nil")
	}
	if got.Target.Name != gm.Target.Name || got.Target.RARad != gm.Target.RARad || got.Target.DecRad != gm.Target.DecRad {
		t.Fatalf("target = %+v, want %+v", got.Target, gm.Target)
	}
	if !got.Target.ReferenceAt.Equal(ref) {
		t.Fatalf("reference_at = %v, want %v", got.Target.ReferenceAt, ref)
	}
}

func TestIdleAndStopGoalMessagesHaveNoTarget(t *testing.T) {
	for _, kind := range []string{"idle", "stop"} {
		gm := GoalMessage{Kind: kind}
		data, err := json.Marshal(gm)
		if err != nil {
			t.Fatalf("marshal %s: %v", kind, err)
		}
		var got GoalMessage
		if err := json.Unmarshal(data, &got); err != nil {
			t.Fatalf("unmarshal %s: %v", kind, err)
		}
		if got.Target != nil {
			t.Fatalf("%s goal message round-tripped a non-nil target", kind)
		}
	}
}
