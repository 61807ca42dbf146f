package memory

import (
	"context"
	"testing"

	"quiz-attempt-service/internal/domain"
)

func TestSubmissionStoreWriteOnce(t *testing.T) {
	ctx := context.Background()
	store := NewSubmissionStore()

	first := domain.Submission{ID: "s1", QuizID: "quiz-1", UserID: "u1", TotalMarksObtained: 3}
	if err := store.Save(ctx, first); err != nil {
		t.Fatalf("save: %v", err)
	}

	overwrite := first
	overwrite.TotalMarksObtained = 99
	if err := store.Save(ctx, overwrite); err != nil {
		t.Fatalf("second save: %v", err)
	}

	records := store.All()
	if len(records) != 1 {
		t.Fatalf("expected one record, got %d", len(records))
	}
	if records[0].TotalMarksObtained != 3 {
		t.Fatalf("record must not be overwritten, got %v", records[0].TotalMarksObtained)
	}
}

func TestSubmissionStoreCountForUser(t *testing.T) {
	ctx := context.Background()
	store := NewSubmissionStore()

	_ = store.Save(ctx, domain.Submission{ID: "s1", QuizID: "quiz-1", UserID: "u1"})
	_ = store.Save(ctx, domain.Submission{ID: "s2", QuizID: "quiz-1", UserID: "u1"})
	_ = store.Save(ctx, domain.Submission{ID: "s3", QuizID: "quiz-1", UserID: "u2"})
	_ = store.Save(ctx, domain.Submission{ID: "s4", QuizID: "quiz-2", UserID: "u1"})

	count, err := store.CountForUser(ctx, "quiz-1", "u1")
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2, got %d", count)
	}
}
