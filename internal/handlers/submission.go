package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/fieldcheck/checklist-api/internal/dto"
	apierrors "github.com/fieldcheck/checklist-api/internal/errors"
	"github.com/fieldcheck/checklist-api/internal/middleware"
	"github.com/fieldcheck/checklist-api/internal/models"
	"github.com/fieldcheck/checklist-api/internal/services"
	"github.com/fieldcheck/checklist-api/internal/utils"
)

// SubmissionHandler coordinates submission HTTP handlers.
type SubmissionHandler struct {
	submissionService *services.SubmissionService
}

// NewSubmissionHandler creates a new SubmissionHandler.
func NewSubmissionHandler(submissionService *services.SubmissionService) *SubmissionHandler {
	return &SubmissionHandler{
		submissionService: submissionService,
	}
}

// SubmissionRequest mirrors a submission create payload. Answers are keyed
// by field id as they arrive on the wire; string keys are parsed here.
type SubmissionRequest struct {
	ID             uint64              `json:"id"`
	TemplateID     uint64              `json:"template_id" binding:"required"`
	OrganizationID uint64              `json:"organization_id" binding:"required"`
	Status         string              `json:"status"`
	Answers        map[string]any      `json:"answers"`
	PhotoURLs      map[string][]string `json:"photo_urls"`
}

// UpdateSubmissionRequest mirrors a submission update payload.
type UpdateSubmissionRequest struct {
	Status    *string             `json:"status"`
	Answers   map[string]any      `json:"answers"`
	PhotoURLs map[string][]string `json:"photo_urls"`
}

// CreateSubmission submits a filled checklist against a template.
func (h *SubmissionHandler) CreateSubmission(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	var req SubmissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	answers, ok := parseAnswerKeys(c, req.Answers)
	if !ok {
		return
	}
	photoURLs, ok := parsePhotoKeys(c, req.PhotoURLs)
	if !ok {
		return
	}

	submission, err := h.submissionService.CreateSubmission(services.CreateSubmissionInput{
		ID:             req.ID,
		TemplateID:     req.TemplateID,
		OrganizationID: req.OrganizationID,
		ActorID:        userID,
		Status:         models.SubmissionStatus(req.Status),
		Answers:        answers,
		PhotoURLs:      photoURLs,
	})
	if err != nil {
		respondSubmissionError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToSubmissionDTO(*submission))
}

// ListSubmissions lists submissions the caller may see, newest first.
func (h *SubmissionHandler) ListSubmissions(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	input := services.ListSubmissionsInput{
		ActorID:       userID,
		SubmittedByMe: c.Query("submitted_by_me") == "true",
	}

	if v := c.Query("organization_id"); v != "" {
		orgID, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			apierrors.BadRequest(c, "Invalid organization_id")
			return
		}
		input.OrganizationID = &orgID
	}

	if v := c.Query("template_id"); v != "" {
		templateID, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			apierrors.BadRequest(c, "Invalid template_id")
			return
		}
		input.TemplateID = &templateID
	}

	if v := c.Query("status"); v != "" {
		status := models.SubmissionStatus(v)
		if !status.Valid() {
			apierrors.BadRequest(c, "Invalid status")
			return
		}
		input.Status = &status
	}

	params := utils.GetPaginationParams(c)
	input.Page = params.Page
	input.PageSize = params.Limit

	submissions, total, err := h.submissionService.ListSubmissions(input)
	if err != nil {
		respondSubmissionError(c, err)
		return
	}

	items := make([]dto.SubmissionListItemDTO, len(submissions))
	for i, s := range submissions {
		items[i] = dto.ToSubmissionListItemDTO(s)
	}

	c.JSON(http.StatusOK, gin.H{
		"submissions": items,
		"pagination": utils.PaginationResponse{
			Page:  params.Page,
			Limit: params.Limit,
			Total: total,
		},
	})
}

// GetSubmission returns one submission with its answer snapshot.
func (h *SubmissionHandler) GetSubmission(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	submissionID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid submission ID")
		return
	}

	submission, err := h.submissionService.GetSubmission(submissionID, userID)
	if err != nil {
		respondSubmissionError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToSubmissionDTO(*submission))
}

// UpdateSubmission replaces a submission's answers and optionally its status.
func (h *SubmissionHandler) UpdateSubmission(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	submissionID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid submission ID")
		return
	}

	var req UpdateSubmissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	answers, ok := parseAnswerKeys(c, req.Answers)
	if !ok {
		return
	}
	photoURLs, ok := parsePhotoKeys(c, req.PhotoURLs)
	if !ok {
		return
	}

	input := services.UpdateSubmissionInput{
		SubmissionID: submissionID,
		ActorID:      userID,
		Answers:      answers,
		PhotoURLs:    photoURLs,
	}
	if req.Status != nil {
		status := models.SubmissionStatus(*req.Status)
		input.Status = &status
	}

	submission, err := h.submissionService.UpdateSubmission(input)
	if err != nil {
		respondSubmissionError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToSubmissionDTO(*submission))
}

// DeleteSubmission removes a submission and its answers.
func (h *SubmissionHandler) DeleteSubmission(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	submissionID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid submission ID")
		return
	}

	if err := h.submissionService.DeleteSubmission(submissionID, userID); err != nil {
		respondSubmissionError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Submission deleted successfully"})
}

func parseAnswerKeys(c *gin.Context, raw map[string]any) (map[uint64]any, bool) {
	if raw == nil {
		return nil, true
	}
	answers := make(map[uint64]any, len(raw))
	for key, value := range raw {
		fieldID, err := strconv.ParseUint(key, 10, 64)
		if err != nil {
			apierrors.BadRequest(c, "Invalid field ID in answers")
			return nil, false
		}
		answers[fieldID] = value
	}
	return answers, true
}

func parsePhotoKeys(c *gin.Context, raw map[string][]string) (map[uint64][]string, bool) {
	if raw == nil {
		return nil, true
	}
	photoURLs := make(map[uint64][]string, len(raw))
	for key, urls := range raw {
		fieldID, err := strconv.ParseUint(key, 10, 64)
		if err != nil {
			apierrors.BadRequest(c, "Invalid field ID in photo_urls")
			return nil, false
		}
		photoURLs[fieldID] = urls
	}
	return photoURLs, true
}

func respondSubmissionError(c *gin.Context, err error) {
	var validationErr *services.ValidationError
	if errors.As(err, &validationErr) {
		apierrors.ValidationFailed(c, validationErr.Fields)
		return
	}

	switch {
	case errors.Is(err, services.ErrSubmissionNotFound),
		errors.Is(err, services.ErrTemplateNotFound),
		errors.Is(err, services.ErrNotOrganizationMember):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrPermissionDenied):
		apierrors.Forbidden(c, err.Error())
	case errors.Is(err, services.ErrSubmissionIDConflict):
		apierrors.Conflict(c, err.Error())
	case errors.Is(err, services.ErrTemplateNotUsable),
		errors.Is(err, services.ErrInvalidStatus):
		apierrors.BadRequest(c, err.Error())
	default:
		apierrors.InternalError(c, "Failed to process submission")
	}
}
