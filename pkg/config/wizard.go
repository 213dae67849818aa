package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"

	"github.com/vanderheijden86/toolbar/pkg/model"
	"github.com/vanderheijden86/toolbar/pkg/toolbar"
)

// ItemAnswers holds what the add-item wizard collects.
type ItemAnswers struct {
	Type     string
	ID       string
	Group    string
	Text     string
	IconSrc  string
	IconAlt  string
	Tooltip  string
	Selected bool
	Toggle   bool
}

// Descriptor converts the answers into an item descriptor.
func (a ItemAnswers) Descriptor() (model.Descriptor, error) {
	kind := model.Kind(strings.TrimSpace(a.Type))
	if kind == "" {
		kind = model.KindButton
	}
	if !kind.IsValid() {
		return model.Descriptor{}, fmt.Errorf("%w: %q", toolbar.ErrUnknownItemType, a.Type)
	}

	d := model.Descriptor{
		Type:  kind,
		ID:    strings.TrimSpace(a.ID),
		Group: strings.TrimSpace(a.Group),
	}
	if kind == model.KindSeparator {
		return d, nil
	}
	if (kind == model.KindExpanderProxy || kind == model.KindExpanderButton) && d.Group == "" {
		return model.Descriptor{}, fmt.Errorf("%s items need a group", kind)
	}

	d.Properties = model.ItemProps{
		Icon:    model.Icon{Src: strings.TrimSpace(a.IconSrc), Alt: strings.TrimSpace(a.IconAlt)},
		Text:    strings.TrimSpace(a.Text),
		Tooltip: strings.TrimSpace(a.Tooltip),
	}
	if kind != model.KindExpanderProxy {
		d.Selected = a.Selected
		d.Toggleable = a.Toggle
	}
	return d, nil
}

// isTerminal checks if stdin is connected to a terminal
func isTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// newForm creates a form with appropriate settings based on TTY detection
func newForm(groups ...*huh.Group) *huh.Form {
	form := huh.NewForm(groups...).WithTheme(huh.ThemeDracula())
	if !isTerminal() {
		form = form.WithAccessible(true)
	}
	return form
}

// RunAddItemWizard asks for a new item and appends it to c.
func (c *ToolbarConfig) RunAddItemWizard() (model.Descriptor, error) {
	taken := make(map[string]bool, len(c.Items))
	for _, d := range c.Items {
		if d.ID != "" {
			taken[d.ID] = true
		}
	}

	a := ItemAnswers{Type: string(model.KindButton)}
	typeForm := newForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Item type").
				Options(
					huh.NewOption("Button", string(model.KindButton)),
					huh.NewOption("Separator", string(model.KindSeparator)),
					huh.NewOption("Expander proxy (opens a group)", string(model.KindExpanderProxy)),
					huh.NewOption("Expander button (inside a group)", string(model.KindExpanderButton)),
				).
				Value(&a.Type),
			huh.NewInput().
				Title("Id").
				Description("Leave empty to generate one").
				Value(&a.ID).
				Validate(func(s string) error {
					if taken[strings.TrimSpace(s)] {
						return fmt.Errorf("id %q is already used", s)
					}
					return nil
				}),
		),
	)
	if err := typeForm.Run(); err != nil {
		return model.Descriptor{}, err
	}

	if a.Type != string(model.KindSeparator) {
		groupHint := "Buttons in a group are exclusive"
		if groups := c.Groups(); len(groups) > 0 {
			groupHint += "; existing: " + strings.Join(groups, ", ")
		}
		detailForm := newForm(
			huh.NewGroup(
				huh.NewInput().Title("Group").Description(groupHint).Value(&a.Group),
				huh.NewInput().Title("Label").Value(&a.Text),
				huh.NewInput().Title("Icon source").Placeholder("icons/bold.png").Value(&a.IconSrc),
				huh.NewInput().Title("Icon alt text").Value(&a.IconAlt),
				huh.NewInput().Title("Tooltip").Value(&a.Tooltip),
			),
			huh.NewGroup(
				huh.NewConfirm().Title("Selected initially?").Value(&a.Selected),
				huh.NewConfirm().Title("Toggle on click?").Description("Ungrouped toggles flip on and off").Value(&a.Toggle),
			).WithHideFunc(func() bool { return a.Type == string(model.KindExpanderProxy) }),
		)
		if err := detailForm.Run(); err != nil {
			return model.Descriptor{}, err
		}
	}

	d, err := a.Descriptor()
	if err != nil {
		return model.Descriptor{}, err
	}
	if err := c.AddItem(d); err != nil {
		return model.Descriptor{}, err
	}
	return d, nil
}
