package api

import (
	"encoding/json"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/aretw0/notebench/pkg/core"
	"github.com/aretw0/notebench/pkg/workload"
)

// Defaults applied when a path parameter is not an integer.
const (
	DefaultCPUN        = 30
	DefaultConcurrentN = 100
)

func (s *Server) createNote(c *fiber.Ctx) error {
	var in core.NoteInput
	if body := c.Body(); len(body) > 0 {
		if err := json.Unmarshal(body, &in); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "Invalid request payload"})
		}
	}

	note, err := s.backend.CreateNote(c.UserContext(), in)
	if err != nil {
		return writeError(c, err, "Failed to create note")
	}
	return c.Status(fiber.StatusCreated).JSON(note)
}

func (s *Server) listNotes(c *fiber.Ctx) error {
	notes, err := s.backend.ListNotes(c.UserContext())
	if err != nil {
		return writeError(c, err, "Failed to retrieve notes")
	}
	return c.JSON(notes)
}

func (s *Server) getNote(c *fiber.Ctx) error {
	note, err := s.backend.GetNote(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err, "Failed to retrieve note")
	}
	return c.JSON(note)
}

func (s *Server) ping(c *fiber.Ctx) error {
	reply, err := s.backend.Ping(c.UserContext())
	if err != nil {
		return writeError(c, err, "Ping failed")
	}
	return c.JSON(reply)
}

func (s *Server) cpu(c *fiber.Ctx) error {
	reply, err := s.backend.CPU(c.UserContext(), paramInt(c, "n", DefaultCPUN))
	if err != nil {
		return writeError(c, err, "CPU test failed")
	}
	return c.JSON(reply)
}

func (s *Server) concurrent(c *fiber.Ctx) error {
	reply, err := s.backend.Concurrent(c.UserContext(), paramInt(c, "n", DefaultConcurrentN))
	if err != nil {
		return writeError(c, err, "Concurrent test failed")
	}
	return c.JSON(reply)
}

func (s *Server) processJSON(c *fiber.Ctx) error {
	items, err := workload.DecodeItems(c.Body())
	if err != nil {
		return writeError(c, err, "JSON test failed")
	}
	reply, err := s.backend.ProcessJSON(c.UserContext(), items)
	if err != nil {
		return writeError(c, err, "JSON test failed")
	}
	return c.JSON(reply)
}

// state returns the introspection snapshot of the backend and its store.
func (s *Server) state(c *fiber.Ctx) error {
	return c.JSON(s.snapshot())
}

func paramInt(c *fiber.Ctx, key string, fallback int) int {
	n, err := strconv.Atoi(c.Params(key))
	if err != nil {
		return fallback
	}
	return n
}
