package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oceanz0604/gamecafe/internal/model"
)

type registerMemberReq struct {
	Username string `json:"username" binding:"required"`
	Tier     string `json:"tier" binding:"required"`
}

func (h *Handler) registerMember(c *gin.Context) {
	var req registerMemberReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	member, err := h.members.Register(c.Request.Context(), req.Username, model.MemberTier(req.Tier))
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, member)
}

func (h *Handler) listMembers(c *gin.Context) {
	members, err := h.members.List(c.Request.Context())
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, members)
}

func (h *Handler) getMember(c *gin.Context) {
	member, err := h.members.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, member)
}

func (h *Handler) deactivateMember(c *gin.Context) {
	member, err := h.members.Deactivate(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, member)
}

func (h *Handler) activateMember(c *gin.Context) {
	member, err := h.members.Activate(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, member)
}

type rechargeReq struct {
	Amount float64 `json:"amount" binding:"required"`
	Method string  `json:"method"`
	Note   string  `json:"note"`
}

func (h *Handler) recharge(c *gin.Context) {
	var req rechargeReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	member, txn, err := h.billing.Recharge(c.Request.Context(), c.Param("id"), req.Amount, req.Method, req.Note)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"member": member, "transaction": txn})
}

type adjustReq struct {
	Amount float64 `json:"amount" binding:"required"`
	Note   string  `json:"note"`
}

func (h *Handler) adjust(c *gin.Context) {
	var req adjustReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	member, txn, err := h.billing.Adjust(c.Request.Context(), c.Param("id"), req.Amount, req.Note)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"member": member, "transaction": txn})
}

type refundReq struct {
	Amount    float64 `json:"amount" binding:"required"`
	SessionID *string `json:"session_id"`
	Note      string  `json:"note"`
}

func (h *Handler) refund(c *gin.Context) {
	var req refundReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	member, txn, err := h.billing.Refund(c.Request.Context(), c.Param("id"), req.Amount, req.SessionID, req.Note)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"member": member, "transaction": txn})
}

func (h *Handler) listTransactions(c *gin.Context) {
	txns, err := h.billing.Transactions(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, txns)
}

func (h *Handler) reconcile(c *gin.Context) {
	report, err := h.billing.Reconcile(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

type provisionTerminalReq struct {
	Name     string `json:"name" binding:"required"`
	Category string `json:"category" binding:"required"`
}

func (h *Handler) provisionTerminal(c *gin.Context) {
	var req provisionTerminalReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	terminal, err := h.terminals.Provision(c.Request.Context(), req.Name, model.TerminalCategory(req.Category))
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, terminal)
}

func (h *Handler) listTerminals(c *gin.Context) {
	terminals, err := h.terminals.List(c.Request.Context())
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, terminals)
}

func (h *Handler) getTerminal(c *gin.Context) {
	terminal, err := h.terminals.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, terminal)
}

func (h *Handler) setMaintenance(c *gin.Context) {
	terminal, err := h.terminals.SetMaintenance(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, terminal)
}

func (h *Handler) setTerminalActive(c *gin.Context) {
	terminal, err := h.terminals.SetActive(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, terminal)
}

func (h *Handler) deactivateTerminal(c *gin.Context) {
	terminal, err := h.terminals.Deactivate(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, terminal)
}

type startSessionReq struct {
	MemberID   *string `json:"member_id"`
	GuestLabel string  `json:"guest_label"`
	TerminalID string  `json:"terminal_id" binding:"required"`
}

func (h *Handler) startSession(c *gin.Context) {
	var req startSessionReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	session, err := h.sessions.StartSession(c.Request.Context(), req.MemberID, req.GuestLabel, req.TerminalID)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, session)
}

func (h *Handler) listSessions(c *gin.Context) {
	var status *model.SessionStatus
	if raw := c.Query("status"); raw != "" {
		s := model.SessionStatus(raw)
		status = &s
	}

	sessions, err := h.sessions.List(c.Request.Context(), status)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, sessions)
}

func (h *Handler) getSession(c *gin.Context) {
	session, err := h.sessions.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

func (h *Handler) endSession(c *gin.Context) {
	session, err := h.sessions.EndSession(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

type createBookingReq struct {
	MemberID   *string   `json:"member_id"`
	GuestLabel string    `json:"guest_label"`
	TerminalID string    `json:"terminal_id" binding:"required"`
	StartTime  time.Time `json:"start_time" binding:"required"`
	EndTime    time.Time `json:"end_time" binding:"required"`
}

func (h *Handler) createBooking(c *gin.Context) {
	var req createBookingReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	booking, err := h.bookings.CreateBooking(c.Request.Context(), req.MemberID, req.GuestLabel, req.TerminalID, req.StartTime, req.EndTime)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, booking)
}

func (h *Handler) cancelBooking(c *gin.Context) {
	booking, err := h.bookings.CancelBooking(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, booking)
}

func (h *Handler) completeBooking(c *gin.Context) {
	booking, err := h.bookings.CompleteBooking(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, booking)
}

func (h *Handler) listTerminalBookings(c *gin.Context) {
	var status *model.BookingStatus
	if raw := c.Query("status"); raw != "" {
		s := model.BookingStatus(raw)
		status = &s
	}

	bookings, err := h.bookings.ListByTerminal(c.Request.Context(), c.Param("id"), status)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, bookings)
}
