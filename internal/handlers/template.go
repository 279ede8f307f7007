package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/fieldcheck/checklist-api/internal/dto"
	apierrors "github.com/fieldcheck/checklist-api/internal/errors"
	"github.com/fieldcheck/checklist-api/internal/middleware"
	"github.com/fieldcheck/checklist-api/internal/repository"
	"github.com/fieldcheck/checklist-api/internal/schema"
	"github.com/fieldcheck/checklist-api/internal/services"
	"github.com/fieldcheck/checklist-api/internal/utils"
)

// TemplateHandler coordinates template schema HTTP handlers.
type TemplateHandler struct {
	templateService *services.TemplateService
}

// NewTemplateHandler creates a new TemplateHandler.
func NewTemplateHandler(templateService *services.TemplateService) *TemplateHandler {
	return &TemplateHandler{
		templateService: templateService,
	}
}

// FieldRequest mirrors one field of the template payload.
type FieldRequest struct {
	Type        string             `json:"type" binding:"required"`
	Label       string             `json:"label" binding:"required"`
	Placeholder string             `json:"placeholder"`
	HelpText    string             `json:"help_text"`
	Required    bool               `json:"required"`
	Order       int                `json:"order"`
	Config      schema.FieldConfig `json:"config"`
}

// SectionRequest mirrors one section of the template payload.
type SectionRequest struct {
	Title       string         `json:"title" binding:"required"`
	Description string         `json:"description"`
	Order       int            `json:"order"`
	Fields      []FieldRequest `json:"fields"`
}

// TemplateRequest mirrors a template create or full-update payload.
type TemplateRequest struct {
	Name           string           `json:"name" binding:"required"`
	Category       string           `json:"category"`
	Description    string           `json:"description"`
	Icon           string           `json:"icon"`
	IsPublic       bool             `json:"is_public"`
	OrganizationID uint64           `json:"organization_id" binding:"required"`
	Sections       []SectionRequest `json:"sections"`
}

func (r TemplateRequest) toInput() services.TemplateInput {
	sections := make([]services.SectionInput, len(r.Sections))
	for i, sec := range r.Sections {
		fields := make([]services.FieldInput, len(sec.Fields))
		for j, f := range sec.Fields {
			fields[j] = services.FieldInput{
				Type:        f.Type,
				Label:       f.Label,
				Placeholder: f.Placeholder,
				HelpText:    f.HelpText,
				Required:    f.Required,
				Order:       f.Order,
				Config:      f.Config,
			}
		}
		sections[i] = services.SectionInput{
			Title:       sec.Title,
			Description: sec.Description,
			Order:       sec.Order,
			Fields:      fields,
		}
	}

	return services.TemplateInput{
		Name:        r.Name,
		Category:    r.Category,
		Description: r.Description,
		Icon:        r.Icon,
		IsPublic:    r.IsPublic,
		Sections:    sections,
	}
}

// CreateTemplate creates a new template for an organization.
func (h *TemplateHandler) CreateTemplate(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	var req TemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	template, err := h.templateService.CreateTemplate(req.OrganizationID, userID, req.toInput())
	if err != nil {
		respondTemplateError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTemplateDTO(*template))
}

// ListTemplates lists templates visible to an organization.
func (h *TemplateHandler) ListTemplates(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	orgID, err := strconv.ParseUint(c.Query("organization_id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid organization_id")
		return
	}

	var category *string
	if v := c.Query("category"); v != "" {
		category = &v
	}

	params := utils.GetPaginationParams(c)

	templates, total, err := h.templateService.ListTemplates(orgID, userID, category, params.Page, params.Limit)
	if err != nil {
		respondTemplateError(c, err)
		return
	}

	items := make([]dto.TemplateListItemDTO, len(templates))
	for i, t := range templates {
		items[i] = dto.ToTemplateListItemDTO(t)
	}

	c.JSON(http.StatusOK, gin.H{
		"templates": items,
		"pagination": utils.PaginationResponse{
			Page:  params.Page,
			Limit: params.Limit,
			Total: total,
		},
	})
}

// GetTemplate returns one template with its full schema.
func (h *TemplateHandler) GetTemplate(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	templateID, orgID, ok := templateRequestIDs(c)
	if !ok {
		return
	}

	template, err := h.templateService.GetTemplate(templateID, orgID, userID)
	if err != nil {
		respondTemplateError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTemplateDTO(*template))
}

// UpdateTemplate replaces a template's metadata and schema tree.
func (h *TemplateHandler) UpdateTemplate(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	templateID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid template ID")
		return
	}

	var req TemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	template, err := h.templateService.UpdateTemplate(templateID, req.OrganizationID, userID, req.toInput())
	if err != nil {
		respondTemplateError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTemplateDTO(*template))
}

// DeleteTemplate removes a template and its schema.
func (h *TemplateHandler) DeleteTemplate(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	templateID, orgID, ok := templateRequestIDs(c)
	if !ok {
		return
	}

	if err := h.templateService.DeleteTemplate(templateID, orgID, userID); err != nil {
		respondTemplateError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Template deleted successfully"})
}

// SwapSections exchanges the order of two sections.
func (h *TemplateHandler) SwapSections(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	templateID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid template ID")
		return
	}

	type SwapRequest struct {
		OrganizationID uint64 `json:"organization_id" binding:"required"`
		A              uint64 `json:"a" binding:"required"`
		B              uint64 `json:"b" binding:"required"`
	}

	var req SwapRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	if err := h.templateService.SwapSections(templateID, req.OrganizationID, userID, req.A, req.B); err != nil {
		respondTemplateError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Sections reordered"})
}

// SwapFields exchanges the order of two fields.
func (h *TemplateHandler) SwapFields(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	templateID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid template ID")
		return
	}

	type SwapRequest struct {
		OrganizationID uint64 `json:"organization_id" binding:"required"`
		A              uint64 `json:"a" binding:"required"`
		B              uint64 `json:"b" binding:"required"`
	}

	var req SwapRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	if err := h.templateService.SwapFields(templateID, req.OrganizationID, userID, req.A, req.B); err != nil {
		respondTemplateError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Fields reordered"})
}

// templateRequestIDs parses the template id from the path and the
// organization scope from the query string.
func templateRequestIDs(c *gin.Context) (templateID, orgID uint64, ok bool) {
	templateID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid template ID")
		return 0, 0, false
	}

	orgID, err = strconv.ParseUint(c.Query("organization_id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid organization_id")
		return 0, 0, false
	}

	return templateID, orgID, true
}

func respondTemplateError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrTemplateNotFound),
		errors.Is(err, services.ErrNotOrganizationMember):
		apierrors.NotFound(c, "Template not found")
	case errors.Is(err, services.ErrPermissionDenied):
		apierrors.Forbidden(c, "")
	case errors.Is(err, services.ErrTemplateNotEditable):
		apierrors.Forbidden(c, "This template cannot be modified")
	case errors.Is(err, services.ErrTemplateNameRequired):
		apierrors.BadRequest(c, "Template name is required")
	case errors.Is(err, repository.ErrOrderSwapMismatch):
		apierrors.BadRequest(c, "Both entries must belong to the template")
	case errors.Is(err, schema.ErrUnknownFieldType),
		errors.Is(err, schema.ErrDropdownNeedsOptions),
		errors.Is(err, schema.ErrNumberRangeInverted),
		errors.Is(err, schema.ErrPhotoMaxFilesNegative),
		errors.Is(err, schema.ErrSignatureDimensions):
		apierrors.BadRequest(c, err.Error())
	default:
		apierrors.InternalError(c, "")
	}
}
