package eventlog

import "testing"

// TestOpenWithoutServer verifies Open returns an error rather than
// panicking when no Postgres instance is reachable; it does not require a
// live database.
func TestOpenWithoutServer(t *testing.T) {
	db, err := Open("host=127.0.0.1 port=1 user=nobody password=nobody dbname=nope sslmode=disable connect_timeout=1")
	if err == nil {
		db.Close()
		t.Skip("unexpectedly reached a live postgres instance on port 1")
	}
}

func TestEventKindsAreDistinct(t *testing.T) {
	kinds := []Kind{KindGoalReceived, KindInterceptComputed, KindGroupCompleted, KindGroupAborted, KindCalibrated, KindFatal}
	seen := make(map[Kind]bool)
	for _, k := range kinds {
		if seen[k] {
			t.Fatalf("duplicate event kind %q", k)
		}
		seen[k] = true
	}
}
