package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/complaint-service/internal/api/dto"
	"github.com/spec-kit/complaint-service/internal/service"
	"github.com/spec-kit/complaint-service/internal/validation"
)

// ComplaintsHandler serves /complaints.
type ComplaintsHandler struct {
	complaints *service.ComplaintService
}

// NewComplaintsHandler constructs handler.
func NewComplaintsHandler(complaints *service.ComplaintService) *ComplaintsHandler {
	return &ComplaintsHandler{complaints: complaints}
}

// List handles GET /complaints.
func (h *ComplaintsHandler) List(c *fiber.Ctx) error {
	who, err := identity(c)
	if err != nil {
		return err
	}
	page, err := h.complaints.List(c.UserContext(), who, validation.ListParams{
		Page:     c.Query("page"),
		Limit:    c.Query("limit"),
		Status:   c.Query("status"),
		Priority: c.Query("priority"),
		Category: c.Query("category"),
		Search:   c.Query("search"),
	})
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "Complaints fetched successfully", dto.NewComplaintListResponse(page, who.Role))
}

// Create handles POST /complaints.
func (h *ComplaintsHandler) Create(c *fiber.Ctx) error {
	who, err := identity(c)
	if err != nil {
		return err
	}
	var req dto.CreateComplaintRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	complaint, err := h.complaints.Create(c.UserContext(), who, service.ComplaintRequest{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Priority:    req.Priority,
	})
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusCreated, "Complaint submitted successfully", dto.NewComplaintResponse(complaint, who.Role))
}

// Stats handles GET /complaints/stats.
func (h *ComplaintsHandler) Stats(c *fiber.Ctx) error {
	who, err := identity(c)
	if err != nil {
		return err
	}
	stats, err := h.complaints.Stats(c.UserContext(), who)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "Complaint stats fetched successfully", dto.NewStatsResponse(stats))
}

// Get handles GET /complaints/:id.
func (h *ComplaintsHandler) Get(c *fiber.Ctx) error {
	who, err := identity(c)
	if err != nil {
		return err
	}
	complaint, err := h.complaints.Get(c.UserContext(), who, c.Params("id"))
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "Complaint fetched successfully", dto.NewComplaintResponse(complaint, who.Role))
}

// UpdateStatus handles PUT /complaints/:id.
func (h *ComplaintsHandler) UpdateStatus(c *fiber.Ctx) error {
	who, err := identity(c)
	if err != nil {
		return err
	}
	var req dto.UpdateStatusRequest
	// A malformed body reads as empty input; authorization still runs first.
	_ = c.BodyParser(&req)
	complaint, err := h.complaints.UpdateStatus(c.UserContext(), who, c.Params("id"), req.Status)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "Complaint status updated successfully", dto.NewComplaintResponse(complaint, who.Role))
}

// UpdateNotes handles PATCH /complaints/:id.
func (h *ComplaintsHandler) UpdateNotes(c *fiber.Ctx) error {
	who, err := identity(c)
	if err != nil {
		return err
	}
	var req dto.UpdateNotesRequest
	// A malformed body reads as empty input; authorization still runs first.
	_ = c.BodyParser(&req)
	complaint, err := h.complaints.UpdateNotes(c.UserContext(), who, c.Params("id"), req.AdminNotes)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "Admin notes added successfully", dto.NewComplaintResponse(complaint, who.Role))
}

// Delete handles DELETE /complaints/:id.
func (h *ComplaintsHandler) Delete(c *fiber.Ctx) error {
	who, err := identity(c)
	if err != nil {
		return err
	}
	if err := h.complaints.Delete(c.UserContext(), who, c.Params("id")); err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "Complaint deleted successfully", nil)
}

// History handles GET /complaints/:id/history.
func (h *ComplaintsHandler) History(c *fiber.Ctx) error {
	who, err := identity(c)
	if err != nil {
		return err
	}
	entries, err := h.complaints.History(c.UserContext(), who, c.Params("id"))
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "Complaint history fetched successfully", dto.NewHistoryResponse(entries))
}
