package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	httputil "github.com/talberry/sdsu-study-bot/internal/pkg/http"
	"github.com/talberry/sdsu-study-bot/internal/service"
)

// CanvasHandler read-only Canvas proxy endpoints
type CanvasHandler struct {
	canvas *service.CanvasService
}

// NewCanvasHandler creates the proxy handler
func NewCanvasHandler(canvas *service.CanvasService) *CanvasHandler {
	return &CanvasHandler{canvas: canvas}
}

type proxyFunc func(ctx context.Context, q *service.CanvasQuery) (*service.ProxyResult, error)

// serve parses the shared query, calls fn and writes {key: value} or {message}.
// idParam names the single-resource id parameter, if the route has one.
func (h *CanvasHandler) serve(c *gin.Context, idParam string, fn proxyFunc) {
	q := &service.CanvasQuery{
		Token:        requestToken(c, c.Query("token")),
		PageURL:      c.Query("pageUrl"),
		ModuleItemID: c.Query("moduleItemId"),
	}

	var err error
	if q.CourseID, err = queryInt64(c, "courseId"); err != nil {
		badRequest(c, httputil.CodeMissingParam, "Invalid query parameter", err.Error())
		return
	}
	if q.ModuleID, err = queryInt64(c, "moduleId"); err != nil {
		badRequest(c, httputil.CodeMissingParam, "Invalid query parameter", err.Error())
		return
	}
	if idParam != "" {
		if q.ResourceID, err = queryInt64(c, idParam); err != nil {
			badRequest(c, httputil.CodeMissingParam, "Invalid query parameter", err.Error())
			return
		}
	}

	res, err := fn(c.Request.Context(), q)
	if err != nil {
		writeError(c, err)
		return
	}
	if res.Message != "" {
		c.JSON(http.StatusOK, gin.H{"message": res.Message})
		return
	}
	c.JSON(http.StatusOK, gin.H{res.Key: res.Value})
}

// Courses proxies active courses
// @Summary      List courses or get one
// @Tags         canvas
// @Produce      json
// @Param        courseId  query     int     false  "course id"
// @Param        token     query     string  false  "Canvas access token (or Authorization: Bearer)"
// @Success      200       {object}  map[string]interface{}  "{\"course\": {...}} | {\"courses\": [...]} | {\"message\": \"...\"}"
// @Failure      401       {object}  ErrorResponse
// @Failure      404       {object}  ErrorResponse
// @Failure      502       {object}  ErrorResponse
// @Router       /api/canvas/courses [get]
func (h *CanvasHandler) Courses(c *gin.Context) {
	h.serve(c, "", h.canvas.Courses)
}

// Modules proxies course modules
// @Summary      List modules or get one
// @Tags         canvas
// @Produce      json
// @Param        courseId  query     int     true   "course id"
// @Param        moduleId  query     int     false  "module id"
// @Param        token     query     string  false  "Canvas access token (or Authorization: Bearer)"
// @Success      200       {object}  map[string]interface{}  "{\"module\": {...}} | {\"modules\": [...]} | {\"message\": \"...\"}"
// @Failure      400       {object}  ErrorResponse
// @Failure      404       {object}  ErrorResponse
// @Router       /api/canvas/modules [get]
func (h *CanvasHandler) Modules(c *gin.Context) {
	h.serve(c, "", h.canvas.Modules)
}

// Assignments proxies course assignments
// @Summary      List assignments or get one
// @Description  moduleId lists the module's Assignment items; moduleItemId annotates a single assignment.
// @Tags         canvas
// @Produce      json
// @Param        courseId      query     int     true   "course id"
// @Param        moduleId      query     int     false  "module id"
// @Param        assignmentId  query     int     false  "assignment id"
// @Param        moduleItemId  query     string  false  "module item id"
// @Param        token         query     string  false  "Canvas access token (or Authorization: Bearer)"
// @Success      200           {object}  map[string]interface{}  "{\"assignment\": {...}} | {\"assignments\": [...]} | {\"message\": \"...\"}"
// @Failure      400           {object}  ErrorResponse
// @Failure      404           {object}  ErrorResponse
// @Router       /api/canvas/assignments [get]
func (h *CanvasHandler) Assignments(c *gin.Context) {
	h.serve(c, "assignmentId", h.canvas.Assignments)
}

// Pages proxies course pages
// @Summary      List pages or get one by slug
// @Description  moduleId lists the module's Page items; moduleItemId annotates a single page.
// @Tags         canvas
// @Produce      json
// @Param        courseId      query     int     true   "course id"
// @Param        moduleId      query     int     false  "module id"
// @Param        pageUrl       query     string  false  "page url slug"
// @Param        moduleItemId  query     string  false  "module item id"
// @Param        token         query     string  false  "Canvas access token (or Authorization: Bearer)"
// @Success      200           {object}  map[string]interface{}  "{\"page\": {...}} | {\"pages\": [...]} | {\"message\": \"...\"}"
// @Failure      400           {object}  ErrorResponse
// @Failure      404           {object}  ErrorResponse
// @Router       /api/canvas/pages [get]
func (h *CanvasHandler) Pages(c *gin.Context) {
	h.serve(c, "", h.canvas.Pages)
}

// Quizzes proxies course quizzes
// @Summary      List quizzes or get one
// @Tags         canvas
// @Produce      json
// @Param        courseId      query     int     true   "course id"
// @Param        moduleId      query     int     false  "module id"
// @Param        quizId        query     int     false  "quiz id"
// @Param        moduleItemId  query     string  false  "module item id"
// @Param        token         query     string  false  "Canvas access token (or Authorization: Bearer)"
// @Success      200           {object}  map[string]interface{}  "{\"quiz\": {...}} | {\"quizzes\": [...]} | {\"message\": \"...\"}"
// @Failure      400           {object}  ErrorResponse
// @Failure      404           {object}  ErrorResponse
// @Router       /api/canvas/quizzes [get]
func (h *CanvasHandler) Quizzes(c *gin.Context) {
	h.serve(c, "quizId", h.canvas.Quizzes)
}

// Files proxies course files
// @Summary      List files or get one
// @Description  fileId fetches a single file without a course.
// @Tags         canvas
// @Produce      json
// @Param        courseId      query     int     false  "course id (required unless fileId is set)"
// @Param        moduleId      query     int     false  "module id"
// @Param        fileId        query     int     false  "file id"
// @Param        moduleItemId  query     string  false  "module item id"
// @Param        token         query     string  false  "Canvas access token (or Authorization: Bearer)"
// @Success      200           {object}  map[string]interface{}  "{\"file\": {...}} | {\"files\": [...]} | {\"message\": \"...\"}"
// @Failure      400           {object}  ErrorResponse
// @Failure      404           {object}  ErrorResponse
// @Router       /api/canvas/files [get]
func (h *CanvasHandler) Files(c *gin.Context) {
	h.serve(c, "fileId", h.canvas.Files)
}
