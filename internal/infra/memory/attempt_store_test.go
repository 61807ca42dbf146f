package memory

import (
	"context"
	"testing"

	"quiz-attempt-service/internal/app"
)

func TestAttemptStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	store := NewAttemptStore()

	session := app.NewAttemptSession("attempt-1", sampleQuiz(), "u1", 1)
	if err := store.Put(ctx, session); err != nil {
		t.Fatalf("put: %v", err)
	}

	if _, ok := store.Get(ctx, "attempt-1"); !ok {
		t.Fatalf("expected attempt present")
	}
	if active := store.Active(ctx); len(active) != 1 {
		t.Fatalf("expected one active attempt, got %d", len(active))
	}

	store.Delete(ctx, "attempt-1")
	if _, ok := store.Get(ctx, "attempt-1"); ok {
		t.Fatalf("expected attempt removed")
	}
}
