package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"studymate/internal/domain"
)

func loadCmd(s SessionPort, path string) tea.Cmd {
	return func() tea.Msg {
		doc, err := s.Load(path)
		return loadedMsg{doc: doc, err: err}
	}
}

func chatCmd(s SessionPort, message string) tea.Cmd {
	return func() tea.Msg {
		text, err := s.Chat(context.Background(), message)
		return replyMsg{kind: domain.KindChat, text: text, err: err}
	}
}

func summarizeCmd(s SessionPort) tea.Cmd {
	return func() tea.Msg {
		text, err := s.Summarize(context.Background())
		return replyMsg{kind: domain.KindSummarize, text: text, err: err}
	}
}

func reviewCmd(s SessionPort) tea.Cmd {
	return func() tea.Msg {
		text, err := s.Review(context.Background())
		return replyMsg{kind: domain.KindReview, text: text, err: err}
	}
}

func progressCmd(s SessionPort) tea.Cmd {
	return func() tea.Msg {
		p, err := s.Progress()
		return progressMsg{report: p, err: err}
	}
}
