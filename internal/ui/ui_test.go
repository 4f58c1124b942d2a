package ui

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestSelectModelNavigation(t *testing.T) {
	var m tea.Model = newSelectModel("Pick", []string{"a", "b", "c"})

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m, _ = m.Update(runes("j"))
	m, _ = m.Update(runes("j")) // already at the bottom
	if got := m.(selectModel).cursor; got != 2 {
		t.Fatalf("cursor = %d, want 2", got)
	}

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyUp})
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if got := m.(selectModel).chosen; got != 1 {
		t.Errorf("chosen = %d, want 1", got)
	}
	if cmd == nil {
		t.Error("enter should quit the program")
	}
}

func TestSelectModelDigitJump(t *testing.T) {
	var m tea.Model = newSelectModel("Pick", []string{"a", "b", "c"})

	m, _ = m.Update(runes("3"))
	if got := m.(selectModel).cursor; got != 2 {
		t.Errorf("cursor after '3' = %d, want 2", got)
	}
	m, _ = m.Update(runes("9"))
	if got := m.(selectModel).cursor; got != 2 {
		t.Errorf("out of range digit moved cursor to %d", got)
	}
}

func TestSelectModelCancel(t *testing.T) {
	var m tea.Model = newSelectModel("Pick", []string{"a"})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if !m.(selectModel).cancelled {
		t.Error("esc should cancel")
	}
	if m.View() != "" {
		t.Error("view should be empty after cancelling")
	}
}

func TestConfirmModel(t *testing.T) {
	tests := []struct {
		name      string
		def       bool
		key       tea.KeyMsg
		answer    bool
		cancelled bool
	}{
		{"yes", false, runes("y"), true, false},
		{"upper yes", false, runes("Y"), true, false},
		{"no", true, runes("n"), false, false},
		{"enter uses default", true, tea.KeyMsg{Type: tea.KeyEnter}, true, false},
		{"enter default no", false, tea.KeyMsg{Type: tea.KeyEnter}, false, false},
		{"ctrl+c", false, tea.KeyMsg{Type: tea.KeyCtrlC}, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, _ := confirmModel{prompt: "ok?", def: tt.def}.Update(tt.key)
			got := m.(confirmModel)
			if got.answer != tt.answer || got.cancelled != tt.cancelled {
				t.Errorf("answer=%v cancelled=%v, want %v/%v", got.answer, got.cancelled, tt.answer, tt.cancelled)
			}
		})
	}
}

func TestInputModel(t *testing.T) {
	var m tea.Model = newInputModel("URL", false)
	for _, r := range " https://youtu.be/x " {
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	got := m.(inputModel)
	if !got.done {
		t.Fatal("enter should finish input")
	}
	if got.Value() != "https://youtu.be/x" {
		t.Errorf("Value() = %q", got.Value())
	}
}

func TestLineFallback(t *testing.T) {
	ctx := context.Background()
	var out bytes.Buffer
	p := NewWithIO(strings.NewReader("2\ny\nhello world\n\n"), &out, false)

	idx, err := p.Select(ctx, "Quality", []string{"best", "audio", "720p"})
	if err != nil || idx != 1 {
		t.Fatalf("Select() = %d, %v", idx, err)
	}
	if !strings.Contains(out.String(), "3. 720p") {
		t.Errorf("menu not printed: %q", out.String())
	}

	ok, err := p.Confirm(ctx, "Continue?")
	if err != nil || !ok {
		t.Fatalf("Confirm() = %v, %v", ok, err)
	}

	s, err := p.Input(ctx, "Query")
	if err != nil || s != "hello world" {
		t.Fatalf("Input() = %q, %v", s, err)
	}

	if _, err := p.Input(ctx, "Empty"); err == nil {
		t.Error("empty input should fail")
	}

	if _, err := p.Input(ctx, "EOF"); !errors.Is(err, ErrCancelled) {
		t.Errorf("input at EOF error = %v, want ErrCancelled", err)
	}
}

func TestLineFallbackInvalidSelection(t *testing.T) {
	p := NewWithIO(strings.NewReader("7\n"), &bytes.Buffer{}, false)
	if _, err := p.Select(context.Background(), "Pick", []string{"a", "b"}); err == nil {
		t.Error("out of range selection should fail")
	}
}

func TestParseYes(t *testing.T) {
	for _, s := range []string{"y", "Y", "yes", " YES ", "是"} {
		if !parseYes(s) {
			t.Errorf("parseYes(%q) = false", s)
		}
	}
	for _, s := range []string{"", "n", "no", "maybe"} {
		if parseYes(s) {
			t.Errorf("parseYes(%q) = true", s)
		}
	}
}
