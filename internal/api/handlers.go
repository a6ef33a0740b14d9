package api

import (
	"crypto/subtle"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/keyauth"

	"github.com/nissyi-gh/remind/internal/query"
	"github.com/nissyi-gh/remind/internal/store"
)

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

type addTaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Deadline    string `json:"deadline"`
	Owner       string `json:"owner"`
}

type addTaskResponse struct {
	Success bool   `json:"success"`
	TaskID  string `json:"task_id"`
}

type tasksResponse struct {
	Success bool             `json:"success"`
	Tasks   []query.TaskView `json:"tasks"`
}

type taskResponse struct {
	Success bool           `json:"success"`
	Task    query.TaskView `json:"task"`
}

type statsResponse struct {
	Success bool        `json:"success"`
	Stats   query.Stats `json:"stats"`
}

type sendResponse struct {
	Success bool `json:"success"`
	Sent    bool `json:"sent"`
	Count   int  `json:"count"`
}

type okResponse struct {
	Success bool `json:"success"`
}

func (s *Server) health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "healthy"})
}

// listTasks handles GET /api/tasks.
func (s *Server) listTasks(c *fiber.Ctx) error {
	tasks, err := s.query.TasksWithCountdown(c.UserContext(), c.Query("owner"))
	if err != nil {
		return err
	}
	return c.JSON(tasksResponse{Success: true, Tasks: tasks})
}

// addTask handles POST /api/tasks.
func (s *Server) addTask(c *fiber.Ctx) error {
	var req addTaskRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	id, err := s.tasks.Add(c.UserContext(), req.Title, req.Description, req.Deadline, req.Owner)
	if err != nil {
		return err
	}
	s.logger.Info("task added", "id", id)
	return c.Status(fiber.StatusCreated).JSON(addTaskResponse{Success: true, TaskID: id})
}

// getTask handles GET /api/tasks/:id.
func (s *Server) getTask(c *fiber.Ctx) error {
	task, err := s.query.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(taskResponse{Success: true, Task: task})
}

// deleteTask handles DELETE /api/tasks/:id.
func (s *Server) deleteTask(c *fiber.Ctx) error {
	id := c.Params("id")
	ok, err := s.tasks.Delete(c.UserContext(), id)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("delete task %s: %w", id, store.ErrNotFound)
	}
	s.logger.Info("task deleted", "id", id)
	return c.JSON(okResponse{Success: true})
}

// toggleTask handles POST /api/tasks/:id/toggle.
func (s *Server) toggleTask(c *fiber.Ctx) error {
	id := c.Params("id")
	ok, err := s.tasks.Toggle(c.UserContext(), id)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("toggle task %s: %w", id, store.ErrNotFound)
	}
	return c.JSON(okResponse{Success: true})
}

// stats handles GET /api/stats.
func (s *Server) stats(c *fiber.Ctx) error {
	st, err := s.query.Stats(c.UserContext(), c.Query("owner"))
	if err != nil {
		return err
	}
	return c.JSON(statsResponse{Success: true, Stats: st})
}

// requireAPIKey guards an endpoint with the shared X-API-Key secret. With no
// key configured every request is rejected.
func (s *Server) requireAPIKey() fiber.Handler {
	return keyauth.New(keyauth.Config{
		KeyLookup: "header:X-API-Key",
		Validator: func(_ *fiber.Ctx, key string) (bool, error) {
			if s.apiKey == "" || subtle.ConstantTimeCompare([]byte(key), []byte(s.apiKey)) != 1 {
				return false, keyauth.ErrMissingOrMalformedAPIKey
			}
			return true, nil
		},
		ErrorHandler: func(c *fiber.Ctx, _ error) error {
			return c.Status(fiber.StatusUnauthorized).JSON(errorResponse{Success: false, Error: "unauthorized"})
		},
	})
}

// sendEmail handles POST /api/send-email.
func (s *Server) sendEmail(c *fiber.Ctx) error {
	res, err := s.reminder.Run(c.UserContext())
	if err != nil {
		return fmt.Errorf("send reminder: %w", err)
	}
	return c.JSON(sendResponse{Success: true, Sent: res.Sent, Count: res.Count})
}
