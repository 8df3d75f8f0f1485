package notify

import (
	"testing"

	"go.uber.org/zap"
)

func TestFeed_DrainEmptiesPending(t *testing.T) {
	feed := NewFeed(10, zap.NewNop())

	feed.Success("saved")
	feed.Error("failed")

	notices := feed.Drain()
	if len(notices) != 2 {
		t.Fatalf("expected 2 notices, got %d", len(notices))
	}
	if notices[0].Level != LevelSuccess || notices[0].Message != "saved" {
		t.Fatalf("unexpected first notice: %+v", notices[0])
	}
	if notices[1].Level != LevelError || notices[1].Message != "failed" {
		t.Fatalf("unexpected second notice: %+v", notices[1])
	}
	if notices[0].ID == "" || notices[0].ID == notices[1].ID {
		t.Fatalf("expected distinct notice ids")
	}

	if rest := feed.Drain(); len(rest) != 0 {
		t.Fatalf("expected feed emptied, got %d", len(rest))
	}
}

func TestFeed_DropsOldestBeyondCapacity(t *testing.T) {
	feed := NewFeed(2, zap.NewNop())

	feed.Success("one")
	feed.Success("two")
	feed.Success("three")

	notices := feed.Drain()
	if len(notices) != 2 {
		t.Fatalf("expected capped feed, got %d", len(notices))
	}
	if notices[0].Message != "two" || notices[1].Message != "three" {
		t.Fatalf("expected oldest dropped, got %+v", notices)
	}
}
