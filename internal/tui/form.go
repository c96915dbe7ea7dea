package tui

import (
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/pyropark/storefront/internal/validate"
)

// field is one labelled text input. key matches the validate.Errors key.
type field struct {
	key   string
	label string
	input textinput.Model
}

func newField(key, label, placeholder string) field {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.Prompt = "❯ "
	ti.PromptStyle = InputPromptStyle
	ti.CharLimit = 200
	ti.Width = 40
	return field{key: key, label: label, input: ti}
}

func newSecretField(key, label string) field {
	f := newField(key, label, "")
	f.input.EchoMode = textinput.EchoPassword
	f.input.EchoCharacter = '•'
	return f
}

// form is a vertical list of fields with one focused at a time
type form struct {
	fields []field
	focus  int
	errors validate.Errors
}

func newForm(fields ...field) form {
	f := form{fields: fields}
	if len(f.fields) > 0 {
		f.fields[0].input.Focus()
	}
	return f
}

// Update moves focus on tab/shift+tab/up/down and feeds other input to the
// focused field
func (f *form) Update(msg tea.Msg) tea.Cmd {
	if len(f.fields) == 0 {
		return nil
	}
	if km, ok := msg.(tea.KeyMsg); ok {
		switch km.String() {
		case "tab", "down":
			return f.move(1)
		case "shift+tab", "up":
			return f.move(-1)
		}
	}
	var cmd tea.Cmd
	f.fields[f.focus].input, cmd = f.fields[f.focus].input.Update(msg)
	return cmd
}

func (f *form) move(delta int) tea.Cmd {
	f.fields[f.focus].input.Blur()
	f.focus = (f.focus + delta + len(f.fields)) % len(f.fields)
	return f.fields[f.focus].input.Focus()
}

// OnLast reports whether the last field has focus
func (f form) OnLast() bool {
	return f.focus == len(f.fields)-1
}

func (f form) index(key string) int {
	for i := range f.fields {
		if f.fields[i].key == key {
			return i
		}
	}
	return -1
}

// Value returns the raw text of the named field
func (f form) Value(key string) string {
	if i := f.index(key); i >= 0 {
		return f.fields[i].input.Value()
	}
	return ""
}

// SetValue replaces the text of the named field
func (f *form) SetValue(key, value string) {
	if i := f.index(key); i >= 0 {
		f.fields[i].input.SetValue(value)
	}
}

// SetErrors shows err next to its fields. Errors that are not
// validate.Errors clear the field messages.
func (f *form) SetErrors(err error) {
	var errs validate.Errors
	if errors.As(err, &errs) {
		f.errors = errs
		return
	}
	f.errors = nil
}

// View renders labels, inputs and field errors
func (f form) View() string {
	var b strings.Builder
	for i, fl := range f.fields {
		label := LabelStyle.Render(fl.label)
		if i == f.focus {
			label = TitleStyle.Render(fl.label)
		}
		b.WriteString(label + "\n")
		b.WriteString(fl.input.View() + "\n")
		if msg := f.errors.Field(fl.key); msg != "" {
			b.WriteString(FieldErrorStyle.Render(msg) + "\n")
		}
	}
	return b.String()
}
