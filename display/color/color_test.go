package color

import (
	"os"
	"path/filepath"
	"testing"
)

func TestShouldDisableColor_NOCOLORSet(t *testing.T) {
	// Per https://no-color.org/ any value, even empty, disables color.
	for _, val := range []string{"", "1", "true", "anything"} {
		t.Setenv("NO_COLOR", val)
		if !ShouldDisableColor(os.Stdout) {
			t.Errorf("ShouldDisableColor() = false with NO_COLOR=%q, want true", val)
		}
	}
}

func TestShouldDisableColor_RegularFile(t *testing.T) {
	t.Setenv("NO_COLOR", "")
	os.Unsetenv("NO_COLOR")

	f, err := os.Create(filepath.Join(t.TempDir(), "out.txt"))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	if !ShouldDisableColor(f) {
		t.Error("ShouldDisableColor(regular file) = false, want true")
	}
	if !ShouldDisableColor(nil) {
		t.Error("ShouldDisableColor(nil) = false, want true")
	}
}

func TestApply_NOCOLORSet(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	if Apply(os.Stdout) {
		t.Error("Apply() should return false when NO_COLOR is set")
	}
}

func TestStylesPlainWhenDisabled(t *testing.T) {
	ForceDisable()

	tests := []struct {
		name string
		fn   func(string) string
	}{
		{"success", Success},
		{"warn", Warn},
		{"hint", Hint},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := "Profile written to /tmp/default.json"
			if got := tt.fn(msg); got != msg {
				t.Errorf("%s(%q) = %q, want plain text", tt.name, msg, got)
			}
		})
	}
}
