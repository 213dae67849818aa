package config

import (
	"errors"
	"testing"

	"github.com/vanderheijden86/toolbar/pkg/model"
	"github.com/vanderheijden86/toolbar/pkg/toolbar"
)

func TestItemAnswers_Descriptor(t *testing.T) {
	d, err := ItemAnswers{
		Type:     "",
		ID:       " bold ",
		Text:     "Bold",
		IconSrc:  "bold.png",
		Selected: true,
		Toggle:   true,
	}.Descriptor()
	if err != nil {
		t.Fatalf("Descriptor: %v", err)
	}
	if d.Type != model.KindButton || d.ID != "bold" {
		t.Errorf("unexpected descriptor %+v", d)
	}
	if d.Properties.Icon.Src != "bold.png" || d.Properties.Text != "Bold" {
		t.Errorf("unexpected properties %+v", d.Properties)
	}
	if !d.Selected || !d.Toggleable {
		t.Error("expected selected toggle button")
	}
}

func TestItemAnswers_Separator(t *testing.T) {
	d, err := ItemAnswers{Type: "separator", Text: "ignored", Selected: true}.Descriptor()
	if err != nil {
		t.Fatal(err)
	}
	if d.Properties.Text != "" || d.Selected {
		t.Errorf("expected bare separator, got %+v", d)
	}
}

func TestItemAnswers_ExpanderNeedsGroup(t *testing.T) {
	if _, err := (ItemAnswers{Type: "expander-button"}).Descriptor(); err == nil {
		t.Error("expected error without a group")
	}
	d, err := ItemAnswers{Type: "expander-proxy", Group: "shapes", Selected: true}.Descriptor()
	if err != nil {
		t.Fatal(err)
	}
	if d.Selected {
		t.Error("proxies are never selected from config")
	}
}

func TestItemAnswers_UnknownType(t *testing.T) {
	_, err := ItemAnswers{Type: "dropdown"}.Descriptor()
	if !errors.Is(err, toolbar.ErrUnknownItemType) {
		t.Errorf("expected ErrUnknownItemType, got %v", err)
	}
}
