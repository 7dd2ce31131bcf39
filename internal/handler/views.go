package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"campusride/internal/announcement"
	"campusride/internal/dashboard"
	"campusride/internal/directory"
)

// ---------- Shared ----------

func (h *Handler) Dashboard(c *gin.Context) {
	c.JSON(http.StatusOK, viewFrom(c).Summary())
}

func (h *Handler) Announcements(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"announcements": h.deps.Directory.Announcements()})
}

// RouteMap returns the ordered stop coordinates of a route. Stops missing
// from the catalog are placed on the fallback stop.
func (h *Handler) RouteMap(c *gin.Context) {
	m, err := h.deps.Directory.RouteMap(c.Param("id"))
	if errors.Is(err, directory.ErrRouteNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, m)
}

// ---------- Student ----------

func studentView(c *gin.Context) *dashboard.StudentView {
	v, _ := viewFrom(c).(*dashboard.StudentView)
	return v
}

func (h *Handler) Availability(c *gin.Context) {
	c.JSON(http.StatusOK, studentView(c).Availability.State())
}

func (h *Handler) ConfirmAvailability(c *gin.Context) {
	ctrl := studentView(c).Availability
	n := ctrl.Confirm(c.Request.Context())
	h.metrics.AvailabilityTotal.WithLabelValues("confirm").Inc()
	c.JSON(http.StatusOK, gin.H{"availability": ctrl.State(), "notification": n})
}

func (h *Handler) RequestCancel(c *gin.Context) {
	ctrl := studentView(c).Availability
	if err := ctrl.RequestCancel(); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"availability": ctrl.State()})
}

func (h *Handler) AbortCancel(c *gin.Context) {
	ctrl := studentView(c).Availability
	ctrl.AbortCancel()
	c.JSON(http.StatusOK, gin.H{"availability": ctrl.State()})
}

func (h *Handler) CancelAvailability(c *gin.Context) {
	ctrl := studentView(c).Availability
	n, err := ctrl.Cancel(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	h.metrics.AvailabilityTotal.WithLabelValues("cancel").Inc()
	c.JSON(http.StatusOK, gin.H{"availability": ctrl.State(), "notification": n})
}

// ---------- Driver ----------

func driverView(c *gin.Context) *dashboard.DriverView {
	v, _ := viewFrom(c).(*dashboard.DriverView)
	return v
}

func (h *Handler) Roster(c *gin.Context) {
	c.JSON(http.StatusOK, driverView(c).Roster.View())
}

type selectRouteRequest struct {
	RouteID string `json:"route_id" binding:"required"`
}

func (h *Handler) SelectRoute(c *gin.Context) {
	var req selectRouteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	roster, n, err := driverView(c).Roster.SelectRoute(c.Request.Context(), req.RouteID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"roster": roster, "notification": n})
}

type pickupRequest struct {
	StudentID string `json:"student_id" binding:"required"`
	PickedUp  *bool  `json:"picked_up" binding:"required"`
}

func (h *Handler) MarkPickup(c *gin.Context) {
	var req pickupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	roster := driverView(c).Roster
	n := roster.MarkPickup(c.Request.Context(), req.StudentID, *req.PickedUp)
	h.metrics.PickupsTotal.WithLabelValues(strconv.FormatBool(*req.PickedUp)).Inc()
	c.JSON(http.StatusOK, gin.H{"roster": roster.View(), "notification": n})
}

// ---------- Admin ----------

func adminView(c *gin.Context) *dashboard.AdminView {
	v, _ := viewFrom(c).(*dashboard.AdminView)
	return v
}

func (h *Handler) Analytics(c *gin.Context) {
	c.JSON(http.StatusOK, h.deps.Directory.Analytics())
}

type announcementRequest struct {
	Title   string `json:"title"`
	Message string `json:"message"`
	Type    string `json:"type"`
}

// SendAnnouncement answers 422 with the missing fields when the form is
// incomplete; the draft stays in the workspace.
func (h *Handler) SendAnnouncement(c *gin.Context) {
	var req announcementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	b := adminView(c).Broadcaster
	a, n, err := b.Send(c.Request.Context(), req.Title, req.Message, req.Type)

	var fe *announcement.FieldError
	switch {
	case errors.As(err, &fe):
		h.metrics.AnnouncementsTotal.WithLabelValues("invalid").Inc()
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":        err.Error(),
			"fields":       fe.Fields,
			"draft":        b.Draft(),
			"notification": n,
		})
		return
	case err != nil:
		h.metrics.AnnouncementsTotal.WithLabelValues("invalid").Inc()
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "draft": b.Draft()})
		return
	}
	h.metrics.AnnouncementsTotal.WithLabelValues("sent").Inc()
	c.JSON(http.StatusCreated, gin.H{"announcement": a, "notification": n})
}
