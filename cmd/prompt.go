package cmd

import (
	"github.com/charmbracelet/huh"
)

// SelectOption is one choice in a select prompt.
type SelectOption[T any] struct {
	Label string
	Value T
}

func runField(field huh.Field) error {
	return huh.NewForm(huh.NewGroup(field)).WithShowHelp(true).Run()
}

// promptString asks for a line of text. An empty answer returns defaultVal,
// which is shown as the placeholder. validate may be nil.
func promptString(title, description, defaultVal string, validate func(string) error) (string, error) {
	var value string
	inp := huh.NewInput().Title(title).Value(&value)
	if description != "" {
		inp = inp.Description(description)
	}
	if defaultVal != "" {
		inp = inp.Placeholder(defaultVal)
	}
	if validate != nil {
		inp = inp.Validate(func(s string) error {
			if s == "" {
				s = defaultVal
			}
			return validate(s)
		})
	}

	if err := runField(inp); err != nil {
		return "", err
	}
	if value == "" {
		return defaultVal, nil
	}
	return value, nil
}

// promptSecret asks for a hidden value. An empty answer keeps current.
func promptSecret(title, current string) (string, error) {
	var value string
	inp := huh.NewInput().
		Title(title).
		EchoMode(huh.EchoModePassword).
		Value(&value)
	if current != "" {
		inp = inp.Description("Leave empty to keep the current value (" + maskSecret(current) + ")")
	}

	if err := runField(inp); err != nil {
		return "", err
	}
	if value == "" {
		return current, nil
	}
	return value, nil
}

func promptSelect[T comparable](title string, options []SelectOption[T], current T) (T, error) {
	value := current
	opts := make([]huh.Option[T], len(options))
	for i, opt := range options {
		opts[i] = huh.NewOption(opt.Label, opt.Value)
	}

	sel := huh.NewSelect[T]().Title(title).Options(opts...).Value(&value)
	if err := runField(sel); err != nil {
		var zero T
		return zero, err
	}
	return value, nil
}

func promptMultiSelect[T comparable](title, description string, options []SelectOption[T], preselected []T) ([]T, error) {
	pre := make(map[T]bool, len(preselected))
	for _, v := range preselected {
		pre[v] = true
	}
	opts := make([]huh.Option[T], len(options))
	for i, opt := range options {
		opts[i] = huh.NewOption(opt.Label, opt.Value).Selected(pre[opt.Value])
	}

	var values []T
	ms := huh.NewMultiSelect[T]().Title(title).Options(opts...).Value(&values)
	if description != "" {
		ms = ms.Description(description)
	}
	if err := runField(ms); err != nil {
		return nil, err
	}
	return values, nil
}

func promptConfirm(title string, defaultYes bool) (bool, error) {
	value := defaultYes
	c := huh.NewConfirm().
		Title(title).
		Affirmative("Yes").
		Negative("No").
		Value(&value)
	if err := runField(c); err != nil {
		return false, err
	}
	return value, nil
}
