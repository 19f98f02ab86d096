package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func TestNewInputField(t *testing.T) {
	field := NewInputField()

	if field == nil {
		t.Fatal("NewInputField returned nil")
	}
	if field.width != 80 {
		t.Errorf("Default width = %d, want 80", field.width)
	}
}

func TestInputField_SetWidth(t *testing.T) {
	field := NewInputField()

	field.SetWidth(120)

	if field.width != 120 {
		t.Errorf("Width after SetWidth(120) = %d, want 120", field.width)
	}
	// Input width should be width - 4 for prompt and padding
	expectedInputWidth := 116
	if field.input.Width != expectedInputWidth {
		t.Errorf("Input width = %d, want %d", field.input.Width, expectedInputWidth)
	}
}

func TestInputField_Update_Enter_EmptyInput(t *testing.T) {
	field := NewInputField()

	// Simulate pressing enter with empty input
	msg := tea.KeyMsg{Type: tea.KeyEnter}
	updatedField, cmd := field.Update(msg)

	if cmd != nil {
		result := cmd()
		if _, ok := result.(BeverageSubmittedMsg); ok {
			t.Error("Should not submit a beverage for empty input")
		}
	}

	if updatedField == nil {
		t.Error("Update returned nil field")
	}
}

func TestInputField_Update_Enter_WithInput(t *testing.T) {
	field := NewInputField()

	field.SetValue("  Cabernet Sauvignon  ")

	msg := tea.KeyMsg{Type: tea.KeyEnter}
	_, cmd := field.Update(msg)

	if cmd == nil {
		t.Fatal("Expected command from enter with text")
	}

	result := cmd()
	submitted, ok := result.(BeverageSubmittedMsg)
	if !ok {
		t.Fatalf("Expected BeverageSubmittedMsg, got %T", result)
	}

	if submitted.Name != "Cabernet Sauvignon" {
		t.Errorf("Name = %q, want trimmed beverage name", submitted.Name)
	}
	if field.Value() != "" {
		t.Errorf("input should be cleared after enter, got %q", field.Value())
	}
}

func TestInputField_Update_OtherKeys(t *testing.T) {
	field := NewInputField()

	// Type some characters
	for _, char := range "merlot" {
		msg := tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{char}}
		field, _ = field.Update(msg)
	}

	if field.Value() != "merlot" {
		t.Errorf("Input value = %q, want %q", field.Value(), "merlot")
	}
}

func TestInputField_Focus(t *testing.T) {
	field := NewInputField()

	cmd := field.Focus()

	if cmd == nil {
		t.Error("Focus should return a command")
	}
}

func TestInputField_View(t *testing.T) {
	field := NewInputField()
	field.SetWidth(80)

	view := field.View()

	if view == "" {
		t.Error("View should not be empty")
	}
	if len(view) < 10 {
		t.Error("View seems too short")
	}
}

func TestInputField_Placeholder(t *testing.T) {
	field := NewInputField()

	if field.input.Placeholder == "" {
		t.Error("Placeholder should be set")
	}
}
