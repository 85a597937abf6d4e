package component

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rovshanmuradov/clanker-launchpad/internal/ui/style"
)

// FieldType represents the type of form field
type FieldType int

const (
	FieldTypeText FieldType = iota
	FieldTypeNumber
	FieldTypeSelect
	FieldTypeCheckbox
)

// FormField represents a single form field
type FormField struct {
	Name        string
	Label       string
	Type        FieldType
	Value       string
	Options     []string // For select fields
	Placeholder string
	Required    bool
	Validation  func(string) error
	Error       string

	textInput   textinput.Model
	selectedIdx int
}

func (f *FormField) editable() bool {
	return f.Type == FieldTypeText || f.Type == FieldTypeNumber
}

// Form represents a form component with multiple fields
type Form struct {
	title      string
	fields     []FormField
	focusIndex int
	width      int

	labelStyle    lipgloss.Style
	inputStyle    lipgloss.Style
	focusedStyle  lipgloss.Style
	errorStyle    lipgloss.Style
	checkboxStyle lipgloss.Style
}

// NewForm creates a new form component
func NewForm() *Form {
	palette := style.DefaultPalette()

	return &Form{
		fields: make([]FormField, 0),

		labelStyle: lipgloss.NewStyle().
			Foreground(palette.Text).
			Bold(true),

		inputStyle: lipgloss.NewStyle().
			Foreground(palette.Text).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(palette.TextMuted),

		focusedStyle: lipgloss.NewStyle().
			Foreground(palette.Text).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(palette.Primary),

		errorStyle: lipgloss.NewStyle().
			Foreground(palette.Error),

		checkboxStyle: lipgloss.NewStyle().
			Foreground(palette.Primary),
	}
}

// SetTitle sets the heading rendered above the fields
func (f *Form) SetTitle(title string) *Form {
	f.title = title
	return f
}

// AddField adds a field to the form
func (f *Form) AddField(name string, fieldType FieldType, label string, required bool, placeholder string) *Form {
	ti := textinput.New()
	ti.Width = 40
	ti.Placeholder = placeholder
	ti.Prompt = ""

	field := FormField{
		Name:        name,
		Label:       label,
		Type:        fieldType,
		Placeholder: placeholder,
		Required:    required,
		textInput:   ti,
	}
	if fieldType == FieldTypeCheckbox {
		field.Value = "false"
	}

	f.fields = append(f.fields, field)

	if len(f.fields) == 1 && f.fields[0].editable() {
		f.fields[0].textInput.Focus()
	}

	return f
}

func (f *Form) field(name string) *FormField {
	for i := range f.fields {
		if f.fields[i].Name == name {
			return &f.fields[i]
		}
	}
	return nil
}

// SetFieldValue sets the value of a field. For select fields the value must
// be one of the options.
func (f *Form) SetFieldValue(name, value string) *Form {
	field := f.field(name)
	if field == nil {
		return f
	}
	switch field.Type {
	case FieldTypeSelect:
		for i, opt := range field.Options {
			if opt == value {
				field.selectedIdx = i
				field.Value = value
			}
		}
	default:
		field.Value = value
		field.textInput.SetValue(value)
	}
	return f
}

// SetSelectOptions sets options for select fields and selects the first one
func (f *Form) SetSelectOptions(name string, options []string) *Form {
	field := f.field(name)
	if field == nil || field.Type != FieldTypeSelect {
		return f
	}
	field.Options = options
	field.selectedIdx = 0
	if len(options) > 0 {
		field.Value = options[0]
	}
	return f
}

// SetFieldValidation sets a validation function for a field
func (f *Form) SetFieldValidation(name string, validation func(string) error) *Form {
	if field := f.field(name); field != nil {
		field.Validation = validation
	}
	return f
}

// SetFieldError attaches an error to a field, typically from a later
// validation stage.
func (f *Form) SetFieldError(name, message string) bool {
	field := f.field(name)
	if field == nil {
		return false
	}
	field.Error = message
	return true
}

// SetWidth sets the form width
func (f *Form) SetWidth(width int) *Form {
	f.width = width
	inputWidth := width - 4 // padding and borders
	if inputWidth > 10 {
		for i := range f.fields {
			f.fields[i].textInput.Width = inputWidth
		}
	}
	return f
}

// Init initializes the form
func (f *Form) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles form input and updates
func (f *Form) Update(msg tea.Msg) (*Form, tea.Cmd) {
	if len(f.fields) == 0 {
		return f, nil
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "tab":
			f.moveFocus(1)
			return f, nil
		case "shift+tab":
			f.moveFocus(-1)
			return f, nil
		case "up":
			f.cycleOption(-1)
			return f, nil
		case "down":
			f.cycleOption(1)
			return f, nil
		case " ":
			if f.fields[f.focusIndex].Type == FieldTypeCheckbox {
				f.toggleCheckbox()
				return f, nil
			}
		}
	}

	field := &f.fields[f.focusIndex]
	if !field.editable() {
		return f, nil
	}

	var cmd tea.Cmd
	field.textInput, cmd = field.textInput.Update(msg)
	if v := field.textInput.Value(); v != field.Value {
		field.Value = v
		field.Error = ""
	}
	return f, cmd
}

// View renders the form
func (f *Form) View() string {
	if len(f.fields) == 0 {
		return "No fields defined"
	}

	var content strings.Builder
	if f.title != "" {
		content.WriteString(style.SubHeaderStyle.Render(f.title))
		content.WriteString("\n")
	}

	for i, field := range f.fields {
		focused := i == f.focusIndex
		fieldStyle := f.inputStyle
		if focused {
			fieldStyle = f.focusedStyle
		}

		if field.Type != FieldTypeCheckbox {
			label := field.Label
			if field.Required {
				label += " *"
			}
			content.WriteString(f.labelStyle.Render(label))
			content.WriteString("\n")
		}

		switch field.Type {
		case FieldTypeText, FieldTypeNumber:
			content.WriteString(fieldStyle.Render(field.textInput.View()))

		case FieldTypeSelect:
			text := "‹ " + field.Value + " ›"
			content.WriteString(fieldStyle.Render(text))

		case FieldTypeCheckbox:
			box := "[ ]"
			if field.Value == "true" {
				box = "[x]"
			}
			text := box + " " + field.Label
			if focused {
				content.WriteString(f.focusedStyle.Render(text))
			} else {
				content.WriteString(f.checkboxStyle.Render(text))
			}
		}
		content.WriteString("\n")

		if field.Error != "" {
			content.WriteString(f.errorStyle.Render("! " + field.Error))
			content.WriteString("\n")
		}
	}

	return content.String()
}

func (f *Form) moveFocus(delta int) {
	f.fields[f.focusIndex].textInput.Blur()

	n := len(f.fields)
	f.focusIndex = ((f.focusIndex+delta)%n + n) % n

	if f.fields[f.focusIndex].editable() {
		f.fields[f.focusIndex].textInput.Focus()
	}
}

func (f *Form) cycleOption(delta int) {
	field := &f.fields[f.focusIndex]
	if field.Type != FieldTypeSelect || len(field.Options) == 0 {
		return
	}
	n := len(field.Options)
	field.selectedIdx = ((field.selectedIdx+delta)%n + n) % n
	field.Value = field.Options[field.selectedIdx]
}

func (f *Form) toggleCheckbox() {
	field := &f.fields[f.focusIndex]
	if field.Value == "true" {
		field.Value = "false"
	} else {
		field.Value = "true"
	}
}

// Validate validates all form fields. Number fields must parse as float.
func (f *Form) Validate() bool {
	valid := true

	for i := range f.fields {
		field := &f.fields[i]
		field.Error = ""
		value := strings.TrimSpace(field.Value)

		if field.Required && value == "" {
			field.Error = "This field is required"
			valid = false
			continue
		}

		if field.Type == FieldTypeNumber && value != "" {
			if _, err := strconv.ParseFloat(value, 64); err != nil {
				field.Error = "Must be a number"
				valid = false
				continue
			}
		}

		if field.Validation != nil {
			if err := field.Validation(value); err != nil {
				field.Error = err.Error()
				valid = false
			}
		}
	}

	return valid
}

// GetValue returns the trimmed value of a specific field
func (f *Form) GetValue(name string) string {
	if field := f.field(name); field != nil {
		return strings.TrimSpace(field.Value)
	}
	return ""
}

// GetFloat parses a number field. Empty fields read as zero.
func (f *Form) GetFloat(name string) (float64, error) {
	raw := f.GetValue(name)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	return v, nil
}

// Checked reports whether a checkbox field is ticked
func (f *Form) Checked(name string) bool {
	return f.GetValue(name) == "true"
}

// Focused returns the name of the focused field
func (f *Form) Focused() string {
	if len(f.fields) == 0 {
		return ""
	}
	return f.fields[f.focusIndex].Name
}
