package page

import (
	"context"
	"fmt"
	"testing"
)

func TestLocatorSelector(t *testing.T) {
	tests := []struct {
		loc    Locator
		want   string
		wantOK bool
	}{
		{CSS("span.price"), "span.price", true},
		{Tag("ml-card-product"), "ml-card-product", true},
		{ID("popupbasic-close"), "#popupbasic-close", true},
		{XPath("//button"), "", false},
	}
	for _, tt := range tests {
		got, ok := tt.loc.Selector()
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("%s: got (%q, %v), want (%q, %v)", tt.loc, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestIsTimeout(t *testing.T) {
	if !IsTimeout(fmt.Errorf("wait body: %w", ErrTimeout)) {
		t.Error("wrapped ErrTimeout should be a timeout")
	}
	if !IsTimeout(context.DeadlineExceeded) {
		t.Error("DeadlineExceeded should be a timeout")
	}
	if IsTimeout(ErrNotFound) {
		t.Error("ErrNotFound is not a timeout")
	}
}
