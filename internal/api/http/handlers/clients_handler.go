package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/securohelp/case-service/internal/api/dto"
	"github.com/securohelp/case-service/internal/auth"
	"github.com/securohelp/case-service/internal/domain"
	"github.com/securohelp/case-service/internal/service"
	apperrors "github.com/securohelp/case-service/pkg/util/errorutil"
)

// ClientsHandler manages client register endpoints.
type ClientsHandler struct {
	service *service.ClientService
}

// NewClientsHandler constructs handler.
func NewClientsHandler(clientService *service.ClientService) *ClientsHandler {
	return &ClientsHandler{service: clientService}
}

// CreateClient POST /clients.
func (h *ClientsHandler) CreateClient(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.CreateClientRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	client, err := h.service.CreateClient(c.Context(), principal.Account.ID, service.ClientCreateInput{
		FirstName:        req.FirstName,
		LastName:         req.LastName,
		Email:            req.Email,
		Phone:            req.Phone,
		Pesel:            req.Pesel,
		IDNumber:         req.IDNumber,
		Street:           req.Street,
		HouseNumber:      req.HouseNumber,
		ApartmentNumber:  req.ApartmentNumber,
		PostalCode:       req.PostalCode,
		City:             req.City,
		Notes:            req.Notes,
		GDPRConsent:      req.GDPRConsent,
		MarketingConsent: req.MarketingConsent,
		AssignedAgentID:  req.AssignedAgentID,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": clientResponse(client)})
}

// ListClients GET /clients.
func (h *ClientsHandler) ListClients(c *fiber.Ctx) error {
	page := parseInt(c.Query("page"), 1)
	limit := parseInt(c.Query("limit"), 20)
	var search *string
	if s := c.Query("search"); s != "" {
		search = &s
	}
	clients, total, err := h.service.ListClients(c.Context(), search, page, limit)
	if err != nil {
		return err
	}
	rows := make([]dto.ClientResponse, 0, len(clients))
	for i := range clients {
		rows = append(rows, clientResponse(&clients[i]))
	}
	return c.JSON(fiber.Map{
		"data":       rows,
		"pagination": dto.NewPagination(page, limit, total),
	})
}

// GetClient GET /clients/:id.
func (h *ClientsHandler) GetClient(c *fiber.Ctx) error {
	client, err := h.service.GetClient(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": clientResponse(client)})
}

// UpdateClient PUT /clients/:id.
func (h *ClientsHandler) UpdateClient(c *fiber.Ctx) error {
	var req dto.UpdateClientRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	client, err := h.service.UpdateClient(c.Context(), c.Params("id"), service.ClientUpdateInput{
		FirstName:        req.FirstName,
		LastName:         req.LastName,
		Email:            req.Email,
		Phone:            req.Phone,
		Street:           req.Street,
		HouseNumber:      req.HouseNumber,
		ApartmentNumber:  req.ApartmentNumber,
		PostalCode:       req.PostalCode,
		City:             req.City,
		Notes:            req.Notes,
		MarketingConsent: req.MarketingConsent,
		AssignedAgentID:  req.AssignedAgentID,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": clientResponse(client)})
}

// DeleteClient DELETE /clients/:id.
func (h *ClientsHandler) DeleteClient(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	if err := h.service.SoftDeleteClient(c.Context(), principal.Account.ID, c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"deleted": true}})
}

func clientResponse(client *domain.Client) dto.ClientResponse {
	return dto.ClientResponse{
		ID:               client.ID,
		FirstName:        client.FirstName,
		LastName:         client.LastName,
		Email:            client.Email,
		Phone:            client.Phone,
		Pesel:            client.Pesel,
		IDNumber:         client.IDNumber,
		Street:           client.Street,
		HouseNumber:      client.HouseNumber,
		ApartmentNumber:  client.ApartmentNumber,
		PostalCode:       client.PostalCode,
		City:             client.City,
		Notes:            client.Notes,
		GDPRConsent:      client.GDPRConsent,
		MarketingConsent: client.MarketingConsent,
		AssignedAgentID:  client.AssignedAgentID,
		CreatedAt:        client.CreatedAt,
		UpdatedAt:        client.UpdatedAt,
	}
}
