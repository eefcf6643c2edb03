package events

import "testing"

func TestFilterTypes_Nil(t *testing.T) {
	if FilterTypes(nil) != nil {
		t.Error("FilterTypes(nil) should return nil")
	}
	if FilterTypes([]string{}) != nil {
		t.Error("FilterTypes([]) should return nil")
	}
}

func TestFilterTypes_Match(t *testing.T) {
	f := FilterTypes([]string{TypeTrackChange})
	if f == nil {
		t.Fatal("expected non-nil filter")
	}
	if !f(Event{Type: TypeTrackChange}) {
		t.Errorf("filter should pass %s", TypeTrackChange)
	}
	if f(Event{Type: TypeVolumeChange}) {
		t.Errorf("filter should block %s", TypeVolumeChange)
	}
}

func TestWants(t *testing.T) {
	if !Wants(nil, TypeVolumeChange) {
		t.Error("empty list should want everything")
	}
	types := []string{TypeTrackChange}
	if !Wants(types, TypeTrackChange) {
		t.Error("should want listed type")
	}
	if Wants(types, TypeVolumeChange) {
		t.Error("should not want unlisted type")
	}
}

func TestSubscription_UnsubscribeIdempotent(t *testing.T) {
	calls := 0
	sub := NewSubscription(func() { calls++ })

	sub.Unsubscribe()
	sub.Unsubscribe()

	if calls != 1 {
		t.Errorf("cancel called %d times, want 1", calls)
	}
}

func TestSubscription_NilSafe(t *testing.T) {
	var sub *Subscription
	// Should not panic
	sub.Unsubscribe()

	NewSubscription(nil).Unsubscribe()
}
