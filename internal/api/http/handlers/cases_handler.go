package handlers

import (
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/securohelp/case-service/internal/api/dto"
	"github.com/securohelp/case-service/internal/auth"
	"github.com/securohelp/case-service/internal/domain"
	"github.com/securohelp/case-service/internal/service"
	apperrors "github.com/securohelp/case-service/pkg/util/errorutil"
)

// CasesHandler manages case endpoints.
type CasesHandler struct {
	service   *service.CaseService
	dashboard *service.DashboardService
}

// NewCasesHandler constructs handler. dashboard may be nil.
func NewCasesHandler(caseService *service.CaseService, dashboard *service.DashboardService) *CasesHandler {
	return &CasesHandler{service: caseService, dashboard: dashboard}
}

// CreateCase POST /cases.
func (h *CasesHandler) CreateCase(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.CreateCaseRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	input := service.CaseCreateInput{
		ClientID:            req.ClientID,
		IncidentDate:        req.IncidentDate,
		AssignedAgentID:     req.AssignedAgentID,
		IncidentDescription: req.IncidentDescription,
		IncidentLocation:    req.IncidentLocation,
		PolicyNumber:        req.PolicyNumber,
		ClaimNumber:         req.ClaimNumber,
		ClaimValue:          req.ClaimValue,
		VehicleBrand:        req.VehicleBrand,
		VehicleModel:        req.VehicleModel,
		VehicleRegistration: req.VehicleRegistration,
		VehicleYear:         req.VehicleYear,
		InternalNotes:       req.InternalNotes,
	}
	if req.StatusID != nil {
		id := req.StatusID.Int()
		input.StatusID = &id
	}
	if req.InsuranceCompanyID != nil {
		id := req.InsuranceCompanyID.Int()
		input.InsuranceCompanyID = &id
	}

	created, err := h.service.CreateCase(c.Context(), principal.Account.ID, input)
	if err != nil {
		return err
	}
	h.invalidateDashboard(c)

	detail, err := h.service.GetCase(c.Context(), created.ID)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": caseDetailResponse(detail)})
}

// ListCases GET /cases.
func (h *CasesHandler) ListCases(c *fiber.Ctx) error {
	filter := parseCaseQuery(c)
	items, total, err := h.service.ListCases(c.Context(), filter)
	if err != nil {
		return err
	}
	rows := make([]dto.CaseSummary, 0, len(items))
	for i := range items {
		rows = append(rows, caseSummary(&items[i]))
	}
	return c.JSON(fiber.Map{
		"data":       rows,
		"pagination": dto.NewPagination(filter.Page, filter.Limit, total),
	})
}

// GetCase GET /cases/:id.
func (h *CasesHandler) GetCase(c *fiber.Ctx) error {
	detail, err := h.service.GetCase(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": caseDetailResponse(detail)})
}

// UpdateCase PUT /cases/:id. A statusId in the body that differs from the
// stored status runs the transition workflow inside the same transaction.
func (h *CasesHandler) UpdateCase(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.UpdateCaseRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	input := service.CaseUpdateInput{
		StatusComment:        req.StatusComment,
		AssignedAgentID:      req.AssignedAgentID,
		IncidentDescription:  req.IncidentDescription,
		IncidentLocation:     req.IncidentLocation,
		PolicyNumber:         req.PolicyNumber,
		ClaimNumber:          req.ClaimNumber,
		ClaimValue:           req.ClaimValue,
		CompensationReceived: req.CompensationReceived,
		VehicleBrand:         req.VehicleBrand,
		VehicleModel:         req.VehicleModel,
		VehicleRegistration:  req.VehicleRegistration,
		VehicleYear:          req.VehicleYear,
		InternalNotes:        req.InternalNotes,
	}
	if req.StatusID != nil {
		id := req.StatusID.Int()
		input.StatusID = &id
	}
	if req.InsuranceCompanyID != nil {
		id := req.InsuranceCompanyID.Int()
		input.InsuranceCompanyID = &id
	}

	detail, err := h.service.UpdateCase(c.Context(), principal.Account.ID, c.Params("id"), input)
	if err != nil {
		return err
	}
	h.invalidateDashboard(c)
	return c.JSON(fiber.Map{"data": caseDetailResponse(detail)})
}

// DeleteCase DELETE /cases/:id.
func (h *CasesHandler) DeleteCase(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	if err := h.service.SoftDeleteCase(c.Context(), principal.Account.ID, c.Params("id")); err != nil {
		return err
	}
	h.invalidateDashboard(c)
	return c.JSON(fiber.Map{"data": fiber.Map{"deleted": true}})
}

// ListHistory GET /cases/:id/history.
func (h *CasesHandler) ListHistory(c *fiber.Ctx) error {
	ascending := c.Query("order") == "asc"
	entries, err := h.service.ListHistory(c.Context(), c.Params("id"), ascending)
	if err != nil {
		return err
	}
	rows := make([]dto.CaseHistoryResponse, 0, len(entries))
	for _, entry := range entries {
		rows = append(rows, dto.CaseHistoryResponse{
			ID:           entry.ID,
			FromStatusID: entry.FromStatusID,
			ToStatusID:   entry.ToStatusID,
			Comment:      entry.Comment,
			ChangedByID:  entry.ChangedByUserID,
			ChangedAt:    entry.ChangedAt,
		})
	}
	return c.JSON(fiber.Map{"data": rows})
}

func (h *CasesHandler) invalidateDashboard(c *fiber.Ctx) {
	if h.dashboard != nil {
		h.dashboard.Invalidate(c.Context())
	}
}

func parseCaseQuery(c *fiber.Ctx) service.CaseListFilter {
	filter := service.CaseListFilter{
		Page:  parseInt(c.Query("page"), 1),
		Limit: parseInt(c.Query("limit"), 20),
	}
	if search := c.Query("search"); search != "" {
		filter.SearchTerm = &search
	}
	if statusCode := c.Query("status"); statusCode != "" {
		code := domain.StatusCode(statusCode)
		filter.StatusCode = &code
	}
	if clientID := c.Query("clientId"); clientID != "" {
		filter.ClientID = &clientID
	}
	if agentID := c.Query("assignedAgentId"); agentID != "" {
		filter.AssignedAgentID = &agentID
	}
	return filter
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}

func caseSummary(item *service.CaseListItem) dto.CaseSummary {
	return dto.CaseSummary{
		ID:           item.Case.ID,
		CaseNumber:   item.Case.CaseNumber,
		ClientID:     item.Case.ClientID,
		ClientName:   item.ClientName,
		StatusID:     item.Case.StatusID,
		StatusCode:   string(item.StatusCode),
		StatusName:   item.StatusName,
		StatusColor:  item.StatusColor,
		IncidentDate: item.Case.IncidentDate,
		ClaimNumber:  item.Case.ClaimNumber,
		ClaimValue:   item.Case.ClaimValue,
		CreatedAt:    item.Case.CreatedAt,
		UpdatedAt:    item.Case.UpdatedAt,
	}
}

func caseDetailResponse(detail *service.CaseDetail) dto.CaseDetailResponse {
	c := detail.Case
	resp := dto.CaseDetailResponse{
		ID:                   c.ID,
		CaseNumber:           c.CaseNumber,
		IncidentDate:         c.IncidentDate,
		IncidentDescription:  c.IncidentDescription,
		IncidentLocation:     c.IncidentLocation,
		PolicyNumber:         c.PolicyNumber,
		ClaimNumber:          c.ClaimNumber,
		ClaimValue:           c.ClaimValue,
		CompensationReceived: c.CompensationReceived,
		VehicleBrand:         c.VehicleBrand,
		VehicleModel:         c.VehicleModel,
		VehicleRegistration:  c.VehicleRegistration,
		VehicleYear:          c.VehicleYear,
		InternalNotes:        c.InternalNotes,
		DocumentsSentDate:    c.DocumentsSentDate,
		DecisionDate:         c.DecisionDate,
		AppealDate:           c.AppealDate,
		LawsuitDate:          c.LawsuitDate,
		ClosedDate:           c.ClosedDate,
		CreatedAt:            c.CreatedAt,
		UpdatedAt:            c.UpdatedAt,
	}
	if detail.Client != nil {
		client := clientResponse(detail.Client)
		resp.Client = &client
	}
	if detail.Status != nil {
		resp.Status = &dto.CaseStatusResponse{
			ID:        detail.Status.ID,
			Code:      string(detail.Status.Code),
			Name:      detail.Status.Name,
			Color:     detail.Status.Color,
			SortOrder: detail.Status.SortOrder,
			IsFinal:   detail.Status.IsFinal,
		}
	}
	if detail.InsuranceCompany != nil {
		company := insuranceCompanyResponse(detail.InsuranceCompany)
		resp.InsuranceCompany = &company
	}
	if detail.AssignedAgent != nil {
		resp.AssignedAgent = &dto.UserResponse{
			ID:        detail.AssignedAgent.ID,
			Email:     detail.AssignedAgent.Email,
			FirstName: detail.AssignedAgent.FirstName,
			LastName:  detail.AssignedAgent.LastName,
			Role:      string(detail.AssignedAgent.Role),
		}
	}
	resp.StatusHistory = make([]dto.CaseHistoryResponse, 0, len(detail.History))
	for _, entry := range detail.History {
		resp.StatusHistory = append(resp.StatusHistory, dto.CaseHistoryResponse{
			ID:              entry.ID,
			FromStatusID:    entry.FromStatusID,
			FromStatusName:  entry.FromStatusName,
			FromStatusColor: entry.FromStatusColor,
			ToStatusID:      entry.ToStatusID,
			ToStatusName:    entry.ToStatusName,
			ToStatusColor:   entry.ToStatusColor,
			Comment:         entry.Comment,
			ChangedByID:     entry.ChangedByUserID,
			ChangedByName:   entry.ChangedByName,
			ChangedAt:       entry.ChangedAt,
		})
	}
	return resp
}
