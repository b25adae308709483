package core

import (
	"testing"
)

func TestIDFromContent(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name:    "same content produces same ID",
			content: "goal setting with the GROW model",
		},
		{
			name:    "empty string",
			content: "",
		},
		{
			name:    "long content",
			content: "This is a much longer piece of content that should still hash consistently",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id1 := IDFromContent(tt.content)
			id2 := IDFromContent(tt.content)

			if id1 != id2 {
				t.Errorf("IDFromContent() produced different IDs for same content: %d vs %d", id1, id2)
			}
		})
	}
}

func TestIDFromContent_Different(t *testing.T) {
	id1 := IDFromContent("content1")
	id2 := IDFromContent("content2")

	if id1 == id2 {
		t.Errorf("IDFromContent() produced same ID for different content")
	}
}

func TestContentHash_MatchesID(t *testing.T) {
	text := "mindfulness practice for stress"
	if ContentHash(text) != uint64(IDFromContent(text)) {
		t.Errorf("ContentHash() diverged from IDFromContent()")
	}
}

func TestContentHash_DetectsChange(t *testing.T) {
	before := ContentHash("original chunk content")
	after := ContentHash("original chunk content, revised")

	if before == after {
		t.Errorf("ContentHash() did not change for modified content")
	}
}
