package v1

import (
	"net/http"
	"time"

	"go-hiring-backend/internal/delivery/http/response"
	"go-hiring-backend/internal/domain"
	"go-hiring-backend/pkg/apperror"

	"github.com/gin-gonic/gin"
)

const dateLayout = "2006-01-02"

type WorkExperienceHandler struct {
	experienceUC domain.WorkExperienceUsecase
}

func NewWorkExperienceHandler(experienceUC domain.WorkExperienceUsecase) *WorkExperienceHandler {
	return &WorkExperienceHandler{experienceUC: experienceUC}
}

// WorkExperienceRequest is the request payload for creating or updating a record.
// Dates use the YYYY-MM-DD format.
type WorkExperienceRequest struct {
	CompanyName string  `json:"company_name"`
	Role        string  `json:"role"`
	Description *string `json:"description"`
	StartDate   string  `json:"start_date"`
	EndDate     *string `json:"end_date"`
	IsCurrent   bool    `json:"is_current"`
}

func (r WorkExperienceRequest) toInput() (domain.WorkExperienceInput, error) {
	in := domain.WorkExperienceInput{
		CompanyName: r.CompanyName,
		Role:        r.Role,
		Description: r.Description,
		IsCurrent:   r.IsCurrent,
	}

	if r.StartDate != "" {
		start, err := time.Parse(dateLayout, r.StartDate)
		if err != nil {
			return in, apperror.BadRequest("start_date must be a YYYY-MM-DD date")
		}
		in.StartDate = start
	}
	if r.EndDate != nil && *r.EndDate != "" {
		end, err := time.Parse(dateLayout, *r.EndDate)
		if err != nil {
			return in, apperror.BadRequest("end_date must be a YYYY-MM-DD date")
		}
		in.EndDate = &end
	}
	return in, nil
}

func (h *WorkExperienceHandler) bindInput(c *gin.Context) (domain.WorkExperienceInput, error) {
	var req WorkExperienceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return domain.WorkExperienceInput{}, apperror.BadRequest("Invalid request body")
	}
	return req.toInput()
}

// Create godoc
// @Summary      Add a work experience
// @Description  Add a self-reported, unverified work experience (Worker only)
// @Tags         experiences
// @Accept       json
// @Produce      json
// @Param        body  body      WorkExperienceRequest  true  "Work experience"
// @Success      201   {object}  response.Response{data=domain.WorkExperience}
// @Failure      400   {object}  response.Response
// @Router       /workers/experiences [post]
// @Security     BearerAuth
func (h *WorkExperienceHandler) Create(c *gin.Context) {
	userID := c.GetString(string(domain.KeyUserID))

	in, err := h.bindInput(c)
	if err != nil {
		c.Error(err)
		return
	}

	exp, err := h.experienceUC.Create(c.Request.Context(), userID, in)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusCreated, "Work experience added", exp)
}

// Update godoc
// @Summary      Update a work experience
// @Description  Update a self-reported work experience. Verified records cannot be edited.
// @Tags         experiences
// @Accept       json
// @Produce      json
// @Param        id    path      int                    true  "Work experience ID"
// @Param        body  body      WorkExperienceRequest  true  "Work experience"
// @Success      200   {object}  response.Response{data=domain.WorkExperience}
// @Failure      400   {object}  response.Response
// @Failure      403   {object}  response.Response
// @Failure      404   {object}  response.Response
// @Router       /workers/experiences/{id} [put]
// @Security     BearerAuth
func (h *WorkExperienceHandler) Update(c *gin.Context) {
	userID := c.GetString(string(domain.KeyUserID))

	id, err := pathID(c, "id", "work experience ID")
	if err != nil {
		c.Error(err)
		return
	}

	in, err := h.bindInput(c)
	if err != nil {
		c.Error(err)
		return
	}

	exp, err := h.experienceUC.Update(c.Request.Context(), userID, id, in)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Work experience updated", exp)
}

// Delete godoc
// @Summary      Delete a work experience
// @Tags         experiences
// @Produce      json
// @Param        id   path      int  true  "Work experience ID"
// @Success      200  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /workers/experiences/{id} [delete]
// @Security     BearerAuth
func (h *WorkExperienceHandler) Delete(c *gin.Context) {
	userID := c.GetString(string(domain.KeyUserID))

	id, err := pathID(c, "id", "work experience ID")
	if err != nil {
		c.Error(err)
		return
	}

	if err := h.experienceUC.Delete(c.Request.Context(), userID, id); err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Work experience deleted", nil)
}

// ListMine godoc
// @Summary      List my work experiences
// @Tags         experiences
// @Produce      json
// @Success      200  {object}  response.Response{data=[]domain.WorkExperience}
// @Router       /workers/experiences [get]
// @Security     BearerAuth
func (h *WorkExperienceHandler) ListMine(c *gin.Context) {
	userID := c.GetString(string(domain.KeyUserID))

	exps, err := h.experienceUC.ListMine(c.Request.Context(), userID)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Work experiences retrieved", exps)
}

// ToggleVisibility godoc
// @Summary      Toggle work experience visibility
// @Description  Show or hide a record from employers. Allowed on verified records too.
// @Tags         experiences
// @Produce      json
// @Param        id   path      int  true  "Work experience ID"
// @Success      200  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /workers/experiences/{id}/visibility [patch]
// @Security     BearerAuth
func (h *WorkExperienceHandler) ToggleVisibility(c *gin.Context) {
	userID := c.GetString(string(domain.KeyUserID))

	id, err := pathID(c, "id", "work experience ID")
	if err != nil {
		c.Error(err)
		return
	}

	visible, err := h.experienceUC.ToggleVisibility(c.Request.Context(), userID, id)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Visibility updated", gin.H{"is_visible": visible})
}

// Profile godoc
// @Summary      Get my worker profile
// @Description  Work history ids and current employment flag
// @Tags         experiences
// @Produce      json
// @Success      200  {object}  response.Response{data=domain.WorkerProfile}
// @Router       /workers/profile [get]
// @Security     BearerAuth
func (h *WorkExperienceHandler) Profile(c *gin.Context) {
	userID := c.GetString(string(domain.KeyUserID))

	profile, err := h.experienceUC.GetProfile(c.Request.Context(), userID)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Profile retrieved", profile)
}

// ListForWorker godoc
// @Summary      List a worker's visible work experiences
// @Tags         experiences
// @Produce      json
// @Param        workerId  path      string  true  "Worker user ID"
// @Success      200       {object}  response.Response{data=[]domain.WorkExperience}
// @Router       /employers/workers/{workerId}/experiences [get]
// @Security     BearerAuth
func (h *WorkExperienceHandler) ListForWorker(c *gin.Context) {
	exps, err := h.experienceUC.ListVisible(c.Request.Context(), c.Param("workerId"))
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Work experiences retrieved", exps)
}

// EndEmployment godoc
// @Summary      End an employment
// @Description  Close a current record. When it came from a hire, the application moves to employment_ended.
// @Tags         experiences
// @Produce      json
// @Param        id   path      int  true  "Work experience ID"
// @Success      200  {object}  response.Response{data=domain.EmploymentEnded}
// @Failure      400  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /experiences/{id}/end [post]
// @Security     BearerAuth
func (h *WorkExperienceHandler) EndEmployment(c *gin.Context) {
	userID := c.GetString(string(domain.KeyUserID))

	id, err := pathID(c, "id", "work experience ID")
	if err != nil {
		c.Error(err)
		return
	}

	result, err := h.experienceUC.EndEmployment(c.Request.Context(), userID, id)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Employment ended", result)
}
