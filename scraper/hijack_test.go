package scraper

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/go-rod/rod/lib/proto"
	"github.com/use-agent/harvest/models"
)

func TestBlockedSet(t *testing.T) {
	tests := []struct {
		name  string
		in    []string
		want  []proto.NetworkResourceType
		empty bool
	}{
		{name: "nil", in: nil, empty: true},
		{name: "unknown only", in: []string{"Video", "image"}, empty: true},
		{
			name: "known",
			in:   []string{"Image", "Font", "Bogus"},
			want: []proto.NetworkResourceType{proto.NetworkResourceTypeImage, proto.NetworkResourceTypeFont},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := blockedSet(tt.in)
			if tt.empty {
				if len(got) != 0 {
					t.Fatalf("blockedSet(%v) = %v, want empty", tt.in, got)
				}
				return
			}
			if len(got) != len(tt.want) {
				t.Fatalf("blockedSet(%v) has %d entries, want %d", tt.in, len(got), len(tt.want))
			}
			for _, rt := range tt.want {
				if _, ok := got[rt]; !ok {
					t.Errorf("missing %s", rt)
				}
			}
		})
	}
}

func TestCategorizeError(t *testing.T) {
	tests := []struct {
		err  error
		code string
	}{
		{context.DeadlineExceeded, models.ErrCodeTimeout},
		{fmt.Errorf("wrapped: %w", context.Canceled), models.ErrCodeTimeout},
		{errors.New("net::ERR_NAME_NOT_RESOLVED"), models.ErrCodeNavigation},
	}
	for _, tt := range tests {
		got := categorizeError(tt.err, "msg")
		if got.Code != tt.code {
			t.Errorf("categorizeError(%v).Code = %s, want %s", tt.err, got.Code, tt.code)
		}
		if !errors.Is(got, tt.err) {
			t.Errorf("categorizeError(%v) does not wrap the cause", tt.err)
		}
	}
}
