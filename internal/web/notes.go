package web

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"tasktracker/internal/model"
	"tasktracker/internal/service"
)

// NoteController exposes note CRUD and reordering.
type NoteController struct {
	Notes    *service.NoteService
	Notifier service.Notifier
	Clock    service.Clock
}

type noteRequest struct {
	Title          string `json:"title" binding:"required"`
	Description    string `json:"description"`
	NotifyEnabled  bool   `json:"notify_enabled"`
	NotifyInterval int    `json:"notify_interval"`
}

func (r noteRequest) toInput() service.NoteInput {
	return service.NoteInput{
		Title:          r.Title,
		Description:    r.Description,
		NotifyEnabled:  r.NotifyEnabled,
		NotifyInterval: r.NotifyInterval,
	}
}

func (nc *NoteController) List(c *gin.Context) {
	notes, err := nc.Notes.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"notes": notes})
}

func (nc *NoteController) Create(c *gin.Context) {
	var req noteRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	note, err := nc.Notes.Create(c.Request.Context(), req.toInput(), nc.Clock.Now())
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if note.NotifyEnabled {
		notify(nc.Notifier, service.NoteAddedMessage(note))
	}
	c.JSON(http.StatusCreated, note)
}

func (nc *NoteController) Update(c *gin.Context) {
	var req noteRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	note, err := nc.Notes.Update(c.Request.Context(), model.ID(c.Param("id")), req.toInput())
	if err != nil {
		respondNoteError(c, err)
		return
	}
	c.JSON(http.StatusOK, note)
}

func (nc *NoteController) Delete(c *gin.Context) {
	if err := nc.Notes.Delete(c.Request.Context(), model.ID(c.Param("id"))); err != nil {
		respondNoteError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

type moveRequest struct {
	Direction service.MoveDirection `json:"direction" binding:"required"`
}

func (nc *NoteController) Move(c *gin.Context) {
	var req moveRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := nc.Notes.Move(c.Request.Context(), model.ID(c.Param("id")), req.Direction); err != nil {
		respondNoteError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "moved"})
}

func respondNoteError(c *gin.Context, err error) {
	if errors.Is(err, service.ErrNoteNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}
