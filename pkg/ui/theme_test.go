package ui

import (
	"testing"

	"github.com/charmbracelet/colorprofile"
	"github.com/charmbracelet/lipgloss"
)

func TestDefaultTheme(t *testing.T) {
	renderer := lipgloss.NewRenderer(nil)
	theme := DefaultTheme(renderer)

	if theme.Renderer != renderer {
		t.Error("DefaultTheme renderer mismatch")
	}
	for name, c := range map[string]lipgloss.AdaptiveColor{
		"Primary": theme.Primary,
		"Border":  theme.Border,
		"Danger":  theme.Danger,
	} {
		if c.Light == "" || c.Dark == "" {
			t.Errorf("DefaultTheme %s color is empty", name)
		}
	}
}

func TestThemeFgBg_FollowProfile(t *testing.T) {
	saved := TermProfile
	defer func() { TermProfile = saved }()

	TermProfile = colorprofile.ANSI
	if _, ok := ThemeBg("#123456").(lipgloss.NoColor); !ok {
		t.Error("expected NoColor background below TrueColor")
	}
	if c, ok := ThemeFg("#123456").(lipgloss.ANSIColor); !ok || c != 7 {
		t.Error("expected ANSI white foreground on 16-color terminals")
	}

	TermProfile = colorprofile.TrueColor
	if c, ok := ThemeBg("#123456").(lipgloss.Color); !ok || string(c) != "#123456" {
		t.Errorf("expected hex background on TrueColor, got %v", ThemeBg("#123456"))
	}
	if c, ok := ThemeFg("#123456").(lipgloss.Color); !ok || string(c) != "#123456" {
		t.Errorf("expected hex foreground on TrueColor, got %v", ThemeFg("#123456"))
	}
}
