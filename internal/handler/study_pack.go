package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/talberry/sdsu-study-bot/internal/model"
	httputil "github.com/talberry/sdsu-study-bot/internal/pkg/http"
	"github.com/talberry/sdsu-study-bot/internal/service"
)

// StudyPackHandler study pack endpoint
type StudyPackHandler struct {
	studyPacks *service.StudyPackService
}

// NewStudyPackHandler creates the study pack handler
func NewStudyPackHandler(studyPacks *service.StudyPackService) *StudyPackHandler {
	return &StudyPackHandler{studyPacks: studyPacks}
}

// Generate builds a study guide from a course snapshot
// @Summary      Generate a course study pack
// @Description  Fetches modules, assignments, pages and quizzes concurrently and asks the model for a plain-text study guide.
// @Tags         study-pack
// @Accept       json
// @Produce      json
// @Param        Authorization  header    string                  false  "Bearer <Canvas access token>"
// @Param        request        body      model.StudyPackRequest  true   "course and token"
// @Success      200            {object}  model.StudyPackResponse
// @Failure      400            {object}  ErrorResponse  "missing courseId"
// @Failure      401            {object}  ErrorResponse  "missing or rejected token"
// @Failure      502            {object}  ErrorResponse  "Canvas or model failure"
// @Router       /api/study-pack [post]
func (h *StudyPackHandler) Generate(c *gin.Context) {
	var req model.StudyPackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, httputil.CodeInvalidBody, "Invalid request body", err.Error())
		return
	}
	if req.CourseID <= 0 {
		badRequest(c, httputil.CodeMissingParam, "Missing required fields: courseId and token", "")
		return
	}

	summary, err := h.studyPacks.Generate(c.Request.Context(), requestToken(c, req.Token), int64(req.CourseID))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, model.StudyPackResponse{
		Success: true,
		Summary: summary,
	})
}
