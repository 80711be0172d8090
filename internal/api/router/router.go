package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"animal-care-clinic/config"
	"animal-care-clinic/internal/api/handler"
	"animal-care-clinic/internal/api/middleware"
	"animal-care-clinic/internal/policy"
	"animal-care-clinic/pkg/jwt"
	"animal-care-clinic/pkg/metrics"
	"animal-care-clinic/pkg/redis"
)

// Setup 初始化并返回 Gin 路由引擎
// rdb 与 collector 均可为 nil：前者关闭黑名单并使用进程内限流，后者不暴露 /metrics
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, collector *metrics.Collector, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Tracing(cfg.Tracing.ServiceName))
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Metrics(collector))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(cfg.Server.BodyLimit))

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	if collector != nil && cfg.Metrics.Enabled {
		path := cfg.Metrics.Path
		if path == "" {
			path = "/metrics"
		}
		r.GET(path, gin.WrapH(collector.Handler()))
	}

	var checker middleware.TokenChecker
	if rdb != nil {
		checker = rdb
	}
	allow := middleware.Authorize

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 认证模块（无需认证）
		auth := v1.Group("/auth")
		{
			auth.POST("/login", middleware.RateLimit(rdb, cfg.RateLimit.Requests, cfg.RateLimit.Window), h.Auth.Login)
			auth.POST("/refresh", h.Auth.RefreshToken)
		}

		// 需要认证的路由
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(jwtMgr, checker))
		{
			authorized.POST("/auth/logout", h.Auth.Logout)
			authorized.GET("/auth/me", h.Auth.Me)

			// 兽医模块
			vets := authorized.Group("/veterinarians")
			{
				vets.GET("", allow(policy.VeterinarianRead), h.Veterinarian.List)
				vets.GET("/:id", allow(policy.VeterinarianRead), h.Veterinarian.Get)
				vets.POST("", allow(policy.VeterinarianWrite), h.Veterinarian.Create)
				vets.PUT("/:id", allow(policy.VeterinarianWrite), h.Veterinarian.Update)
				vets.DELETE("/:id", allow(policy.VeterinarianWrite), h.Veterinarian.Delete)
				vets.GET("/:id/calendar", allow(policy.CalendarRead), h.Calendar.Get)
				vets.GET("/:id/calendar.ics", allow(policy.CalendarRead), h.Calendar.ExportICS)
			}

			// 宠物主人模块
			owners := authorized.Group("/owners")
			{
				owners.GET("", allow(policy.OwnerRead), h.Owner.List)
				owners.GET("/:id", allow(policy.OwnerRead), h.Owner.Get)
				owners.POST("", allow(policy.OwnerWrite), h.Owner.Create)
				owners.PUT("/:id", allow(policy.OwnerWrite), h.Owner.Update)
				owners.DELETE("/:id", allow(policy.OwnerWrite), h.Owner.Delete)
			}

			// 动物模块
			animals := authorized.Group("/animals")
			{
				animals.GET("", allow(policy.AnimalRead), h.Animal.List)
				animals.GET("/:id", allow(policy.AnimalRead), h.Animal.Get)
				animals.POST("", allow(policy.AnimalWrite), h.Animal.Create)
				animals.PUT("/:id", allow(policy.AnimalWrite), h.Animal.Update)
				animals.DELETE("/:id", allow(policy.AnimalWrite), h.Animal.Delete)
			}

			// 排班时段模块
			schedules := authorized.Group("/schedules")
			{
				schedules.GET("/time-slots", allow(policy.ScheduleRead), h.Schedule.TimeSlots)
				schedules.GET("/available", allow(policy.ScheduleRead), h.Schedule.Available)
				schedules.GET("", allow(policy.ScheduleRead), h.Schedule.List)
				schedules.GET("/:id", allow(policy.ScheduleRead), h.Schedule.Get)
				schedules.POST("", allow(policy.ScheduleWrite), h.Schedule.Create)
				schedules.PUT("/:id", allow(policy.ScheduleWrite), h.Schedule.Update)
				schedules.DELETE("/:id", allow(policy.ScheduleWrite), h.Schedule.Delete)
			}

			// 预约模块
			appointments := authorized.Group("/appointments")
			{
				appointments.GET("", allow(policy.AppointmentRead), h.Appointment.List)
				appointments.GET("/:id", allow(policy.AppointmentRead), h.Appointment.Get)
				appointments.POST("", allow(policy.AppointmentWrite), h.Appointment.Book)
				appointments.PUT("/:id/reschedule", allow(policy.AppointmentWrite), h.Appointment.Reschedule)
				appointments.POST("/:id/cancel", allow(policy.AppointmentWrite), h.Appointment.Cancel)
				appointments.POST("/:id/complete", allow(policy.AppointmentWrite), h.Appointment.Complete)
				appointments.DELETE("/:id", allow(policy.AppointmentWrite), h.Appointment.Delete)
			}

			// 就诊记录模块
			visits := authorized.Group("/visit-histories")
			{
				visits.GET("", allow(policy.VisitRead), h.VisitHistory.List)
				visits.GET("/summaries", allow(policy.VisitRead), h.VisitHistory.Summaries)
				visits.GET("/:id", allow(policy.VisitRead), h.VisitHistory.Get)
				visits.POST("", allow(policy.VisitWrite), h.VisitHistory.Create)
				visits.PUT("/:id", allow(policy.VisitWrite), h.VisitHistory.Update)
				visits.DELETE("/:id", allow(policy.VisitWrite), h.VisitHistory.Delete)
			}

			// 统计报表模块（仅管理员）
			reports := authorized.Group("/reports", allow(policy.ReportRead))
			{
				reports.GET("/monthly", h.Report.Monthly)
				reports.GET("/monthly/export", h.Report.ExportMonthly)
				reports.GET("/dashboard", h.Report.Dashboard)
			}
		}
	}

	return r
}
