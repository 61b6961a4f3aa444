package server

import (
	"github.com/gofiber/fiber/v2"
)

// GetNotifications handles GET /api/notifications
func (s *Server) GetNotifications(c *fiber.Ctx) error {
	p := parsePagination(c, 20)
	ns, err := s.notifRepo.ListByUser(c.Context(), currentUserID(c), p.Limit, p.Offset)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(ns)
}

// GetUnreadCount handles GET /api/notifications/unread-count
func (s *Server) GetUnreadCount(c *fiber.Ctx) error {
	count, err := s.notifRepo.CountUnread(c.Context(), currentUserID(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"unread": count})
}

// MarkNotificationRead handles POST /api/notifications/:id/read
func (s *Server) MarkNotificationRead(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.notifRepo.MarkRead(c.Context(), currentUserID(c), id); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"read": true})
}

// MarkAllNotificationsRead handles POST /api/notifications/read-all
func (s *Server) MarkAllNotificationsRead(c *fiber.Ctx) error {
	if err := s.notifRepo.MarkAllRead(c.Context(), currentUserID(c)); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"read": true})
}
