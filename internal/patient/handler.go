package patient

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/oncoverse/oncoverse/internal/apperr"
	"github.com/oncoverse/oncoverse/internal/middleware"
	"github.com/oncoverse/oncoverse/internal/respond"
	"github.com/oncoverse/oncoverse/internal/validate"
)

// Handler exposes the authenticated profile endpoints.
type Handler struct {
	svc *Service
}

// NewHandler constructs a patient profile HTTP handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// GetProfile returns the caller's sanitized profile.
func (h *Handler) GetProfile(c *fiber.Ctx) error {
	profile, err := h.svc.GetProfile(c.UserContext(), middleware.SubjectID(c))
	if err != nil {
		return err
	}
	return respond.Data(c, http.StatusOK, "Profile fetched successfully", fiber.Map{"profile": profile})
}

type completeProfileRequest struct {
	FullName       *string `json:"fullName" validate:"omitempty,min=2,max=100"`
	StepCount      *int    `json:"stepCount" validate:"omitempty,gte=0"`
	ProfilePicture *string `json:"profilePicture" validate:"omitempty,url"`
	DateOfBirth    *string `json:"dateOfBirth" validate:"omitempty,datetime=2006-01-02"`
	Gender         *string `json:"gender" validate:"omitempty,oneof=male female other prefer_not_to_say"`

	Height                *Measurement `json:"height"`
	Weight                *Measurement `json:"weight"`
	Country               *string      `json:"country"`
	City                  *string      `json:"city"`
	ZipCode               *string      `json:"zipCode"`
	HasPrivateInsurance   *bool        `json:"hasPrivateInsurance"`
	InsuranceProviderName *string      `json:"insuranceProviderName"`

	HasCancerDiagnosis *bool   `json:"hasCancerDiagnosis"`
	CancerType         *string `json:"cancerType"`
	CancerSubtype      *string `json:"cancerSubtype"`
	CancerStage        *string `json:"cancerStage"`

	UserRole                    *string    `json:"userRole" validate:"omitempty,oneof=patient caregiver"`
	Caregiver                   *Caregiver `json:"caregiver"`
	AllowCaregiverManageRecords *bool      `json:"allowCaregiverManageRecords"`

	OnActiveTreatment *bool   `json:"onActiveTreatment"`
	TreatingHospital  *string `json:"treatingHospital"`
	OncologistName    *string `json:"oncologistName"`

	ConsentToStoreMedicalData   *bool `json:"consentToStoreMedicalData"`
	UnderstandsRevocationRights *bool `json:"understandsRevocationRights"`
	AgreesToPrivacyPolicy       *bool `json:"agreesToPrivacyPolicy"`

	Extra map[string]any `json:"extra"`
}

// CompleteProfile upserts one questionnaire step onto the caller's profile.
func (h *Handler) CompleteProfile(c *fiber.Ctx) error {
	var req completeProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.Invalid("Invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return err
	}

	update := ProfileUpdate{
		FullName:  req.FullName,
		StepCount: req.StepCount,
		Profile: Profile{
			ProfilePicture:              req.ProfilePicture,
			DateOfBirth:                 req.DateOfBirth,
			Gender:                      req.Gender,
			Height:                      req.Height,
			Weight:                      req.Weight,
			Country:                     req.Country,
			City:                        req.City,
			ZipCode:                     req.ZipCode,
			HasPrivateInsurance:         req.HasPrivateInsurance,
			InsuranceProviderName:       req.InsuranceProviderName,
			HasCancerDiagnosis:          req.HasCancerDiagnosis,
			CancerType:                  req.CancerType,
			CancerSubtype:               req.CancerSubtype,
			CancerStage:                 req.CancerStage,
			UserRole:                    req.UserRole,
			Caregiver:                   req.Caregiver,
			AllowCaregiverManageRecords: req.AllowCaregiverManageRecords,
			OnActiveTreatment:           req.OnActiveTreatment,
			TreatingHospital:            req.TreatingHospital,
			OncologistName:              req.OncologistName,
			ConsentToStoreMedicalData:   req.ConsentToStoreMedicalData,
			UnderstandsRevocationRights: req.UnderstandsRevocationRights,
			AgreesToPrivacyPolicy:       req.AgreesToPrivacyPolicy,
			Extra:                       req.Extra,
		},
	}

	result, err := h.svc.CompleteProfile(c.UserContext(), middleware.SubjectID(c), update)
	if err != nil {
		return err
	}

	message := "Profile updated successfully"
	if result.IsProfileCompleted {
		message = "Profile completed successfully"
	}
	return respond.Data(c, http.StatusCreated, message, result)
}
