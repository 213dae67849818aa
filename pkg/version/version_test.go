package version

import (
	"strings"
	"testing"
)

func TestString(t *testing.T) {
	got := String()
	if !strings.HasPrefix(got, Name+" "+Version) {
		t.Errorf("String() = %q, want prefix %q", got, Name+" "+Version)
	}
}
