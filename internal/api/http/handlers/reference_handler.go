package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/securohelp/case-service/internal/api/dto"
	"github.com/securohelp/case-service/internal/domain"
	"github.com/securohelp/case-service/internal/service"
	apperrors "github.com/securohelp/case-service/pkg/util/errorutil"
)

// ReferenceHandler serves agent and insurer listings for case forms.
type ReferenceHandler struct {
	service *service.ReferenceService
}

// NewReferenceHandler constructs handler.
func NewReferenceHandler(referenceService *service.ReferenceService) *ReferenceHandler {
	return &ReferenceHandler{service: referenceService}
}

// ListUsers GET /users.
func (h *ReferenceHandler) ListUsers(c *fiber.Ctx) error {
	users, err := h.service.ListActiveUsers(c.Context())
	if err != nil {
		return err
	}
	rows := make([]dto.UserResponse, 0, len(users))
	for _, user := range users {
		rows = append(rows, dto.UserResponse{
			ID:        user.ID,
			Email:     user.Email,
			FirstName: user.FirstName,
			LastName:  user.LastName,
			Role:      string(user.Role),
		})
	}
	return c.JSON(fiber.Map{"data": rows})
}

// ListInsuranceCompanies GET /insurance-companies.
func (h *ReferenceHandler) ListInsuranceCompanies(c *fiber.Ctx) error {
	companies, err := h.service.ListInsuranceCompanies(c.Context())
	if err != nil {
		return err
	}
	rows := make([]dto.InsuranceCompanyResponse, 0, len(companies))
	for i := range companies {
		rows = append(rows, insuranceCompanyResponse(&companies[i]))
	}
	return c.JSON(fiber.Map{"data": rows})
}

// CreateInsuranceCompany POST /insurance-companies.
func (h *ReferenceHandler) CreateInsuranceCompany(c *fiber.Ctx) error {
	var req dto.CreateInsuranceCompanyRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	company, err := h.service.CreateInsuranceCompany(c.Context(), service.InsuranceCompanyInput{
		Name:        req.Name,
		ShortName:   req.ShortName,
		Street:      req.Street,
		HouseNumber: req.HouseNumber,
		PostalCode:  req.PostalCode,
		City:        req.City,
		Email:       req.Email,
		Phone:       req.Phone,
		Notes:       req.Notes,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": insuranceCompanyResponse(company)})
}

func insuranceCompanyResponse(company *domain.InsuranceCompany) dto.InsuranceCompanyResponse {
	return dto.InsuranceCompanyResponse{
		ID:          company.ID,
		Name:        company.Name,
		ShortName:   company.ShortName,
		Street:      company.Street,
		HouseNumber: company.HouseNumber,
		PostalCode:  company.PostalCode,
		City:        company.City,
		Email:       company.Email,
		Phone:       company.Phone,
		Notes:       company.Notes,
	}
}
