package handler

import (
	"net/http"

	"backend/internal/middleware"
	"backend/internal/model"
	"backend/internal/service"
	"backend/pkg/pagination"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type MessageHandler struct {
	messageService service.MessageService
	auth           *middleware.AuthMiddleware
}

func NewMessageHandler(messageService service.MessageService, auth *middleware.AuthMiddleware) *MessageHandler {
	return &MessageHandler{messageService: messageService, auth: auth}
}

func (h *MessageHandler) RegisterRoutes(router *gin.RouterGroup) {
	anyRole := h.auth.RequireRole(model.RoleCustomer, model.RoleDistributor, model.RoleStaff, model.RoleAdmin)

	messages := router.Group("/api/messages")
	messages.Use(anyRole)
	{
		messages.POST("", h.SendMessage)
		messages.GET("", h.ListMessages)
	}

	files := router.Group("/api/files")
	files.Use(anyRole)
	{
		files.POST("", h.UploadFile)
		files.GET("", h.ListFiles)
		files.DELETE("/:id", h.DeleteFile)
	}
}

// SendMessage sends a direct message to another user
// @Summary      Send message
// @Description  Stores a direct message and pushes it to the receiver's open websocket connections
// @Tags         messages
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.SendMessageRequest  true  "Message Payload"
// @Success      201      {object}  response.Response{data=service.MessageResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/messages [post]
func (h *MessageHandler) SendMessage(c *gin.Context) {
	var req service.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	message, err := h.messageService.SendMessage(c.Request.Context(), middleware.UserID(c), req)
	if err != nil {
		status := statusFromError(err)
		c.JSON(status, response.Error(status, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, message))
}

// ListMessages returns the caller's messages
// @Summary      List messages
// @Description  Retrieves the caller's messages; pass with=<user id> to narrow to one conversation
// @Tags         messages
// @Security     BearerAuth
// @Produce      json
// @Param        with   query     string  false  "Other user's ID to scope to a single conversation"
// @Param        page   query     int     false  "Page number (default 1)"
// @Param        limit  query     int     false  "Number of items per page (default 20)"
// @Success      200    {object}  response.PaginatedResponse{data=[]service.MessageResponse}
// @Failure      500    {object}  response.Response
// @Router       /api/messages [get]
func (h *MessageHandler) ListMessages(c *gin.Context) {
	params := pagination.Parse(c)

	messages, total, err := h.messageService.ListConversation(c.Request.Context(), middleware.UserID(c), c.Query("with"), params.Page, params.Limit)
	if err != nil {
		status := statusFromError(err)
		c.JSON(status, response.Error(status, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Paginated(http.StatusOK, messages, params.Page, params.Limit, total))
}

// UploadFile stores an uploaded file for later attachment to messages
// @Summary      Upload file
// @Description  Stores an uploaded file on disk and records its metadata
// @Tags         files
// @Security     BearerAuth
// @Accept       multipart/form-data
// @Produce      json
// @Param        file  formData  file  true  "File to upload"
// @Success      201   {object}  response.Response{data=service.FileResponse}
// @Failure      400   {object}  response.Response
// @Router       /api/files [post]
func (h *MessageHandler) UploadFile(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "A file is required"))
		return
	}

	file, err := h.messageService.UploadFile(c, fileHeader)
	if err != nil {
		status := statusFromError(err)
		c.JSON(status, response.Error(status, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, file))
}

// ListFiles returns all uploaded files
// @Summary      List files
// @Description  Retrieves metadata for all uploaded files
// @Tags         files
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=[]service.FileResponse}
// @Failure      500  {object}  response.Response
// @Router       /api/files [get]
func (h *MessageHandler) ListFiles(c *gin.Context) {
	files, err := h.messageService.ListFiles(c.Request.Context())
	if err != nil {
		status := statusFromError(err)
		c.JSON(status, response.Error(status, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, files))
}

// DeleteFile removes an uploaded file and its record
// @Summary      Delete file
// @Description  Deletes an uploaded file's record and removes it from disk
// @Tags         files
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "File ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/files/{id} [delete]
func (h *MessageHandler) DeleteFile(c *gin.Context) {
	if err := h.messageService.DeleteFile(c.Request.Context(), c.Param("id")); err != nil {
		status := statusFromError(err)
		c.JSON(status, response.Error(status, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "file deleted"}))
}
