package v1

import (
	"net/http"

	"go-hiring-backend/internal/delivery/http/response"
	"go-hiring-backend/internal/domain"
	"go-hiring-backend/pkg/apperror"

	"github.com/gin-gonic/gin"
)

type ApplicationHandler struct {
	applicationUC domain.ApplicationUsecase
}

func NewApplicationHandler(applicationUC domain.ApplicationUsecase) *ApplicationHandler {
	return &ApplicationHandler{applicationUC: applicationUC}
}

// ApplyRequest is the request payload for applying to a job
type ApplyRequest struct {
	CoverNote string `json:"cover_note"`
}

// UpdateStatusRequest is the request payload for an employer status change
type UpdateStatusRequest struct {
	Status        string `json:"status" binding:"required"`
	EmployerNotes string `json:"employer_notes"`
}

// Apply godoc
// @Summary      Apply to a job
// @Description  Submit an application for an active job (Worker only)
// @Tags         applications
// @Accept       json
// @Produce      json
// @Param        jobId  path      int           true  "Job ID"
// @Param        body   body      ApplyRequest  false "Optional cover note"
// @Success      201    {object}  response.Response{data=domain.Application}
// @Failure      400    {object}  response.Response
// @Failure      404    {object}  response.Response
// @Failure      429    {object}  response.Response
// @Router       /workers/jobs/{jobId}/applications [post]
// @Security     BearerAuth
func (h *ApplicationHandler) Apply(c *gin.Context) {
	userID := c.GetString(string(domain.KeyUserID))

	jobID, err := pathID(c, "jobId", "job ID")
	if err != nil {
		c.Error(err)
		return
	}

	var req ApplyRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.Error(apperror.BadRequest("Invalid request body"))
			return
		}
	}

	app, err := h.applicationUC.Apply(c.Request.Context(), userID, jobID, req.CoverNote)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusCreated, "Application submitted successfully", app)
}

// ListMine godoc
// @Summary      List my applications
// @Description  Cursor-paginated applications of the current worker, newest first
// @Tags         applications
// @Produce      json
// @Param        cursor  query     string  false  "Cursor from a previous page"
// @Param        limit   query     int     false  "Page size (default 20, max 100)"
// @Success      200     {object}  response.Response{data=domain.ApplicationPage}
// @Failure      400     {object}  response.Response
// @Router       /workers/applications [get]
// @Security     BearerAuth
func (h *ApplicationHandler) ListMine(c *gin.Context) {
	userID := c.GetString(string(domain.KeyUserID))
	cursor, limit, err := pageParams(c)
	if err != nil {
		c.Error(err)
		return
	}

	page, err := h.applicationUC.ListMyApplications(c.Request.Context(), userID, cursor, limit)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Applications retrieved", page)
}

// Withdraw godoc
// @Summary      Withdraw an application
// @Description  Delete an application that is still pending or viewed (Worker only)
// @Tags         applications
// @Produce      json
// @Param        id   path      int  true  "Application ID"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /workers/applications/{id} [delete]
// @Security     BearerAuth
func (h *ApplicationHandler) Withdraw(c *gin.Context) {
	userID := c.GetString(string(domain.KeyUserID))

	id, err := pathID(c, "id", "application ID")
	if err != nil {
		c.Error(err)
		return
	}

	if err := h.applicationUC.Withdraw(c.Request.Context(), userID, id); err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Application withdrawn", nil)
}

// ListApplicants godoc
// @Summary      List applicants for a job
// @Description  Cursor-paginated applications for a job owned by the caller (Employer only)
// @Tags         applications
// @Produce      json
// @Param        jobId   path      int     true   "Job ID"
// @Param        cursor  query     string  false  "Cursor from a previous page"
// @Param        limit   query     int     false  "Page size (default 20, max 100)"
// @Success      200     {object}  response.Response{data=domain.ApplicationPage}
// @Failure      400     {object}  response.Response
// @Failure      403     {object}  response.Response
// @Failure      404     {object}  response.Response
// @Router       /employers/jobs/{jobId}/applications [get]
// @Security     BearerAuth
func (h *ApplicationHandler) ListApplicants(c *gin.Context) {
	userID := c.GetString(string(domain.KeyUserID))

	jobID, err := pathID(c, "jobId", "job ID")
	if err != nil {
		c.Error(err)
		return
	}
	cursor, limit, err := pageParams(c)
	if err != nil {
		c.Error(err)
		return
	}

	page, err := h.applicationUC.ListApplicants(c.Request.Context(), userID, jobID, cursor, limit)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Applications retrieved", page)
}

// UpdateStatus godoc
// @Summary      Update application status
// @Description  Move an application to viewed, shortlisted, rejected or hired (Employer only)
// @Tags         applications
// @Accept       json
// @Produce      json
// @Param        id    path      int                  true  "Application ID"
// @Param        body  body      UpdateStatusRequest  true  "New status and optional notes"
// @Success      200   {object}  response.Response{data=domain.Application}
// @Failure      400   {object}  response.Response
// @Failure      403   {object}  response.Response
// @Failure      404   {object}  response.Response
// @Router       /employers/applications/{id}/status [patch]
// @Security     BearerAuth
func (h *ApplicationHandler) UpdateStatus(c *gin.Context) {
	userID := c.GetString(string(domain.KeyUserID))

	id, err := pathID(c, "id", "application ID")
	if err != nil {
		c.Error(err)
		return
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest("status is required"))
		return
	}

	app, err := h.applicationUC.UpdateStatus(c.Request.Context(), userID, id, domain.ApplicationStatus(req.Status), req.EmployerNotes)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Application status updated", app)
}

// Get godoc
// @Summary      Get an application
// @Description  Visible to the applicant and to the employer who owns the job
// @Tags         applications
// @Produce      json
// @Param        id   path      int  true  "Application ID"
// @Success      200  {object}  response.Response{data=domain.Application}
// @Failure      403  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /applications/{id} [get]
// @Security     BearerAuth
func (h *ApplicationHandler) Get(c *gin.Context) {
	userID := c.GetString(string(domain.KeyUserID))

	id, err := pathID(c, "id", "application ID")
	if err != nil {
		c.Error(err)
		return
	}

	app, err := h.applicationUC.GetApplication(c.Request.Context(), userID, id)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Application retrieved", app)
}
