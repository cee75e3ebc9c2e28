package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	contactapp "github.com/sunroad/backend/internal/application/contact"
	"github.com/sunroad/backend/internal/domain/contact"
	"github.com/sunroad/backend/internal/interfaces/http/dto"
	"github.com/sunroad/backend/internal/interfaces/http/middleware"
)

// ArtistHandler serves the authenticated artist endpoints: inbox listing and
// blocklist management. Every route requires a valid artist bearer token.
type ArtistHandler struct {
	BaseHandler
	inbox *contactapp.ArtistInboxService
	auth  gin.HandlerFunc
}

// NewArtistHandler creates a new ArtistHandler
func NewArtistHandler(inbox *contactapp.ArtistInboxService, auth gin.HandlerFunc) *ArtistHandler {
	return &ArtistHandler{
		inbox: inbox,
		auth:  auth,
	}
}

// RegisterRoutes registers the artist routes
func (h *ArtistHandler) RegisterRoutes(rg *gin.RouterGroup) {
	group := rg.Group("/artist")
	group.Use(h.auth)
	group.GET("/messages", h.ListMessages)
	group.GET("/blocklist", h.ListBlocklist)
	group.POST("/blocklist", h.Block)
	group.DELETE("/blocklist/:id", h.Unblock)
}

// MessageResponse is one received contact message. The raw sender email is
// visible here; the artist is the intended recipient.
type MessageResponse struct {
	ID        string    `json:"id"`
	FromName  string    `json:"from_name"`
	FromEmail string    `json:"from_email"`
	Subject   string    `json:"subject"`
	Body      string    `json:"body"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

func toMessageResponse(m *contact.Message) MessageResponse {
	return MessageResponse{
		ID:        m.ID.String(),
		FromName:  m.FromName,
		FromEmail: m.FromEmail,
		Subject:   m.Subject,
		Body:      m.Body,
		Status:    string(m.Status),
		CreatedAt: m.CreatedAt,
	}
}

// ListMessages handles GET /api/v1/artist/messages
func (h *ArtistHandler) ListMessages(c *gin.Context) {
	userID, ok := middleware.GetAuthUserID(c)
	if !ok {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, "Invalid pagination parameters")
		return
	}
	req.Normalize()

	messages, total, err := h.inbox.ListMessages(c.Request.Context(), userID, req.Page, req.PageSize)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	out := make([]MessageResponse, len(messages))
	for i := range messages {
		out[i] = toMessageResponse(&messages[i])
	}
	h.SuccessWithMeta(c, out, total, req.Page, req.PageSize)
}

// BlockRequest adds one identity to the artist's blocklist. The raw value is
// hashed server-side and never stored.
type BlockRequest struct {
	Kind   string `json:"kind" binding:"required"`
	Value  string `json:"value" binding:"required"`
	Reason string `json:"reason"`
}

// BlocklistEntryResponse is one blocklist entry
type BlocklistEntryResponse struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	Reason    string    `json:"reason,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func toBlocklistEntryResponse(e *contact.BlocklistEntry) BlocklistEntryResponse {
	return BlocklistEntryResponse{
		ID:        e.ID.String(),
		Kind:      string(e.Kind),
		Reason:    e.Reason,
		CreatedAt: e.CreatedAt,
	}
}

// Block handles POST /api/v1/artist/blocklist
func (h *ArtistHandler) Block(c *gin.Context) {
	userID, ok := middleware.GetAuthUserID(c)
	if !ok {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req BlockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	entry, err := h.inbox.Block(c.Request.Context(), userID, contactapp.BlockInput{
		Kind:   contact.BlocklistKind(req.Kind),
		Value:  req.Value,
		Reason: req.Reason,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, toBlocklistEntryResponse(entry))
}

// Unblock handles DELETE /api/v1/artist/blocklist/:id
func (h *ArtistHandler) Unblock(c *gin.Context) {
	userID, ok := middleware.GetAuthUserID(c)
	if !ok {
		h.Unauthorized(c, "Authentication required")
		return
	}

	entryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid blocklist entry ID")
		return
	}

	if err := h.inbox.Unblock(c.Request.Context(), userID, entryID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// ListBlocklist handles GET /api/v1/artist/blocklist
func (h *ArtistHandler) ListBlocklist(c *gin.Context) {
	userID, ok := middleware.GetAuthUserID(c)
	if !ok {
		h.Unauthorized(c, "Authentication required")
		return
	}

	entries, err := h.inbox.ListBlocklist(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	out := make([]BlocklistEntryResponse, len(entries))
	for i := range entries {
		out[i] = toBlocklistEntryResponse(&entries[i])
	}
	h.Success(c, out)
}
