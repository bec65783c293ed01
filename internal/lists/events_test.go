package lists

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"
)

type fakeInvalidator struct {
	calls int
	err   error
}

func (f *fakeInvalidator) Invalidate(ctx context.Context) error {
	f.calls++
	return f.err
}

func changePayload(t *testing.T, change ChangeType) []byte {
	t.Helper()
	data, err := json.Marshal(ChangeEvent{
		Type:      change,
		ListID:    "l1",
		UserID:    "u1",
		Timestamp: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("marshaling event: %v", err)
	}
	return data
}

func TestHandleChangeEventInvalidatesCache(t *testing.T) {
	inv := &fakeInvalidator{}
	handle := HandleChangeEvent(inv, nil)
	ctx := context.Background()

	changes := []ChangeType{
		ChangeCreated, ChangeUpdated, ChangeDeleted,
		ChangeReordered, ChangeEndorsed, ChangeUnendorsed,
	}
	for _, change := range changes {
		if err := handle(ctx, nil, changePayload(t, change)); err != nil {
			t.Fatalf("change %s: %v", change, err)
		}
	}
	if inv.calls != len(changes) {
		t.Errorf("invalidations = %d, want %d", inv.calls, len(changes))
	}
}

func TestHandleChangeEventSkipsMalformed(t *testing.T) {
	inv := &fakeInvalidator{}
	handle := HandleChangeEvent(inv, nil)

	if err := handle(context.Background(), nil, []byte("not json")); err != nil {
		t.Fatalf("err = %v, want nil so the message is not redelivered", err)
	}
	if inv.calls != 0 {
		t.Errorf("invalidations = %d, want 0 for malformed event", inv.calls)
	}
}

func TestHandleChangeEventReturnsInvalidationError(t *testing.T) {
	invErr := errors.New("redis unreachable")
	inv := &fakeInvalidator{err: invErr}
	handle := HandleChangeEvent(inv, nil)

	err := handle(context.Background(), nil, changePayload(t, ChangeUpdated))
	if !errors.Is(err, invErr) {
		t.Fatalf("err = %v, want the invalidation error for redelivery", err)
	}
}
