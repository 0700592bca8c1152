package tui

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studymate/internal/domain"
)

type fakeSession struct {
	loaded string
	asked  []string
}

func (f *fakeSession) Load(path string) (*domain.Document, error) {
	f.loaded = path
	return &domain.Document{FileName: "notes.txt", ChunkCount: 2}, nil
}

func (f *fakeSession) Chat(_ context.Context, message string) (string, error) {
	f.asked = append(f.asked, message)
	return "answer to " + message, nil
}

func (f *fakeSession) Summarize(context.Context) (string, error) { return "", domain.ErrNoDocument }

func (f *fakeSession) Review(context.Context) (string, error) { return "", domain.ErrNothingToReview }

func (f *fakeSession) Progress() (domain.ProgressReport, error) {
	return domain.ProgressReport{FileName: "notes.txt", TotalChunks: 2, ReadChunks: 1, ProgressPercentage: 50}, nil
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	out, ok := next.(Model)
	require.True(t, ok)
	return out, cmd
}

func typeText(m Model, s string) Model {
	m.input.SetValue(s)
	return m
}

func TestEnter_StartsChatAndRecordsReply(t *testing.T) {
	fs := &fakeSession{}
	m, _ := update(t, New(fs), tea.WindowSizeMsg{Width: 80, Height: 30})

	m, cmd := update(t, typeText(m, "what is a goroutine"), tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.True(t, m.busy)
	assert.Equal(t, "", m.input.Value())
	require.Len(t, m.entries, 1)
	assert.Equal(t, entryUser, m.entries[0].kind)

	// a second submit while busy is refused
	m, cmd = update(t, typeText(m, "again"), tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
	assert.Len(t, m.entries, 1)

	msg := chatCmd(fs, "what is a goroutine")()
	m, _ = update(t, m, msg)
	assert.False(t, m.busy)
	require.Len(t, m.entries, 2)
	assert.Equal(t, entryAssistant, m.entries[1].kind)
	assert.Equal(t, "answer to what is a goroutine", m.entries[1].text)
	assert.Contains(t, m.View(), "Tutor")
}

func TestLoadCommand(t *testing.T) {
	fs := &fakeSession{}
	m := New(fs)

	m, cmd := update(t, typeText(m, "/load ./notes.txt"), tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.Empty(t, m.entries)

	m, _ = update(t, m, loadCmd(fs, "./notes.txt")())
	assert.Equal(t, "./notes.txt", fs.loaded)
	assert.Equal(t, "notes.txt", m.docName)
	require.Len(t, m.entries, 1)
	assert.Equal(t, entrySystem, m.entries[0].kind)
}

func TestErrorsAreDescribed(t *testing.T) {
	fs := &fakeSession{}
	m := New(fs)

	m, _ = update(t, m, summarizeCmd(fs)())
	m, _ = update(t, m, reviewCmd(fs)())
	require.Len(t, m.entries, 2)
	assert.Equal(t, entryError, m.entries[0].kind)
	assert.Contains(t, m.entries[0].text, "/load")
	assert.Contains(t, m.entries[1].text, "Nothing has been read")
}

func TestProgressMessage(t *testing.T) {
	fs := &fakeSession{}
	m, _ := update(t, New(fs), progressCmd(fs)())
	require.Len(t, m.entries, 1)
	assert.Contains(t, m.entries[0].text, "1/2 chunks read (50.00%)")
}

func TestStartWith_LoadsOnInit(t *testing.T) {
	fs := &fakeSession{}
	m := New(fs).StartWith("book.pdf")
	assert.True(t, m.busy)
	require.NotNil(t, m.Init())

	m, _ = update(t, m, loadCmd(fs, m.initPath)())
	assert.False(t, m.busy)
	assert.Equal(t, "book.pdf", fs.loaded)
}
