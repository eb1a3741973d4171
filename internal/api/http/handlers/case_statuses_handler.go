package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/securohelp/case-service/internal/api/dto"
	"github.com/securohelp/case-service/internal/domain"
	"github.com/securohelp/case-service/internal/service"
)

// CaseStatusesHandler serves the status catalog.
type CaseStatusesHandler struct {
	service *service.StatusService
}

// NewCaseStatusesHandler constructs handler.
func NewCaseStatusesHandler(statusService *service.StatusService) *CaseStatusesHandler {
	return &CaseStatusesHandler{service: statusService}
}

// ListStatuses GET /case-statuses.
func (h *CaseStatusesHandler) ListStatuses(c *fiber.Ctx) error {
	statuses, err := h.service.ListActive(c.Context())
	if err != nil {
		return err
	}
	rows := make([]dto.CaseStatusResponse, 0, len(statuses))
	for _, status := range statuses {
		rows = append(rows, statusResponse(status))
	}
	return c.JSON(fiber.Map{"data": rows})
}

// GetStatus GET /case-statuses/:code.
func (h *CaseStatusesHandler) GetStatus(c *fiber.Ctx) error {
	code := domain.StatusCode(strings.ToUpper(c.Params("code")))
	status, err := h.service.GetByCode(c.Context(), code)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": statusResponse(*status)})
}

func statusResponse(status domain.CaseStatus) dto.CaseStatusResponse {
	return dto.CaseStatusResponse{
		ID:        status.ID,
		Code:      string(status.Code),
		Name:      status.Name,
		Color:     status.Color,
		SortOrder: status.SortOrder,
		IsFinal:   status.IsFinal,
	}
}
