package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/shahmeerabdul/GIKomplain/internal/api/middleware"
	"github.com/shahmeerabdul/GIKomplain/internal/config"
	"github.com/shahmeerabdul/GIKomplain/internal/metrics"
)

// RouterOptions configures NewRouter.
type RouterOptions struct {
	Authenticator middleware.Authenticator
	AuthLimiter   *middleware.IPRateLimiter
	CORSOrigin    string
	// UploadDir is served read-only under /uploads when set.
	UploadDir string
}

// NewRouter builds the gin engine with every API route.
func NewRouter(h *Handler, opts RouterOptions) *gin.Engine {
	r := gin.New()
	r.Use(
		middleware.Recovery(h.Log),
		middleware.RequestLogger(h.Log),
		metrics.Middleware(),
		middleware.SecurityHeaders(),
		middleware.CORS(opts.CORSOrigin),
	)

	r.GET("/healthz", h.Healthz)
	r.GET("/metrics", gin.WrapH(metrics.Handler()))
	if opts.UploadDir != "" {
		r.Static(config.UploadURLPrefix, opts.UploadDir)
	}

	requireAuth := middleware.RequireAuth(opts.Authenticator, h.Log)
	api := r.Group("/api")

	authGroup := api.Group("/auth")
	public := []gin.HandlerFunc{}
	if opts.AuthLimiter != nil {
		public = append(public, opts.AuthLimiter.Middleware())
	}
	authGroup.POST("/register", append(public, h.Register)...)
	authGroup.POST("/login", append(public, h.Login)...)
	authGroup.POST("/logout", h.Logout)
	authGroup.GET("/me", requireAuth, h.Me)

	secured := api.Group("", requireAuth)
	secured.GET("/departments", h.ListDepartments)
	secured.POST("/upload", h.Upload)

	complaints := secured.Group("/complaints")
	complaints.GET("", h.ListMyComplaints)
	complaints.POST("", h.SubmitComplaint)
	complaints.GET("/department", h.ListDepartmentQueue)
	complaints.GET("/:id", h.GetComplaint)
	complaints.PATCH("/:id", h.TransitionComplaint)
	complaints.GET("/:id/audit", h.AuditTrail)
	complaints.GET("/:id/comments", h.ListComments)
	complaints.POST("/:id/comments", h.PostComment)
	complaints.GET("/:id/events", h.ComplaintEvents)

	secured.GET("/reports/summary", h.ReportSummary)

	users := secured.Group("/users")
	users.GET("", h.ListUsers)
	users.POST("", h.CreateUser)
	users.PATCH("/:id", h.UpdateUser)
	users.DELETE("/:id", h.DeleteUser)

	return r
}
