package http

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/oceanz0604/gamecafe/internal/service"
)

// Handler — тонкий HTTP-слой над ядром: биндинг запросов, маппинг ошибок на
// статусы. Бизнес-логики здесь нет.
type Handler struct {
	members   *service.MemberService
	terminals *service.TerminalService
	sessions  *service.SessionService
	billing   *service.BillingService
	bookings  *service.BookingService
	logger    *zap.Logger
}

func NewHandler(
	members *service.MemberService,
	terminals *service.TerminalService,
	sessions *service.SessionService,
	billing *service.BillingService,
	bookings *service.BookingService,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		members:   members,
		terminals: terminals,
		sessions:  sessions,
		billing:   billing,
		bookings:  bookings,
		logger:    logger,
	}
}

// Router собирает gin-роутер со всеми маршрутами ядра.
func (h *Handler) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(cors.Default())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	{
		api.POST("/members", h.registerMember)
		api.GET("/members", h.listMembers)
		api.GET("/members/:id", h.getMember)
		api.POST("/members/:id/deactivate", h.deactivateMember)
		api.POST("/members/:id/activate", h.activateMember)
		api.POST("/members/:id/recharge", h.recharge)
		api.POST("/members/:id/adjust", h.adjust)
		api.POST("/members/:id/refund", h.refund)
		api.GET("/members/:id/transactions", h.listTransactions)
		api.GET("/members/:id/reconcile", h.reconcile)

		api.POST("/terminals", h.provisionTerminal)
		api.GET("/terminals", h.listTerminals)
		api.GET("/terminals/:id", h.getTerminal)
		api.POST("/terminals/:id/maintenance", h.setMaintenance)
		api.POST("/terminals/:id/activate", h.setTerminalActive)
		api.POST("/terminals/:id/deactivate", h.deactivateTerminal)
		api.GET("/terminals/:id/bookings", h.listTerminalBookings)

		api.POST("/sessions", h.startSession)
		api.GET("/sessions", h.listSessions)
		api.GET("/sessions/:id", h.getSession)
		api.POST("/sessions/:id/end", h.endSession)

		api.POST("/bookings", h.createBooking)
		api.POST("/bookings/:id/cancel", h.cancelBooking)
		api.POST("/bookings/:id/complete", h.completeBooking)
	}

	return r
}
