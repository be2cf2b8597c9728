package v1

import (
	"net/http"

	"go-hiring-backend/internal/delivery/http/response"
	"go-hiring-backend/internal/usecase"

	"github.com/gin-gonic/gin"
)

type HealthHandler struct {
	healthUC usecase.HealthUsecase
}

func NewHealthHandler(healthUC usecase.HealthUsecase) *HealthHandler {
	return &HealthHandler{healthUC: healthUC}
}

// Health godoc
// @Summary      Health check
// @Description  Pings the database and Redis
// @Tags         ops
// @Produce      json
// @Success      200  {object}  response.Response
// @Failure      503  {object}  response.Response
// @Router       /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	checks, healthy := h.healthUC.Check(c.Request.Context())
	if !healthy {
		response.Error(c, http.StatusServiceUnavailable, "System degraded", checks)
		return
	}
	response.Success(c, http.StatusOK, "System operational", checks)
}
