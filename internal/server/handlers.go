package server

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

type chatRequest struct {
	Message string `json:"message"`
}

func (s *Server) chat(c *fiber.Ctx) error {
	var req chatRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if strings.TrimSpace(req.Message) == "" {
		return fiber.NewError(fiber.StatusBadRequest, "message is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	reply, err := s.learner.Chat(c.UserContext(), req.Message)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"response": reply})
}

func (s *Server) summary(c *fiber.Ctx) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	out, err := s.learner.Summarize(c.UserContext())
	if err != nil {
		return err
	}
	html, err := renderMarkdown(out)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"summary": out, "summary_html": html})
}

func (s *Server) review(c *fiber.Ctx) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	out, err := s.learner.Review(c.UserContext())
	if err != nil {
		return err
	}
	html, err := renderMarkdown(out)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"review": out, "review_html": html})
}

func (s *Server) progress(c *fiber.Ctx) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, err := s.learner.Progress()
	if err != nil {
		return err
	}
	return c.JSON(p)
}
