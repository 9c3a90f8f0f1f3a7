package api

import (
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	swaggerfiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"github.com/slices-events/slices-api/docs"
	v1 "github.com/slices-events/slices-api/internal/api/handler/v1"
	"github.com/slices-events/slices-api/internal/api/middleware"
	"github.com/slices-events/slices-api/internal/config"
	"github.com/slices-events/slices-api/internal/repository"
	"github.com/slices-events/slices-api/internal/repository/dao"
	"github.com/slices-events/slices-api/internal/service"
)

type Server struct {
	Config *config.AppConfig
	Router *gin.Engine
}

func NewServer(conf *config.AppConfig, db *gorm.DB) *Server {
	gin.SetMode(conf.Gin.Mode)
	engine := gin.New()

	s := &Server{
		Config: conf,
		Router: engine,
	}

	s.MountMiddlewares()

	entrantRepo := repository.NewEntrantRepository(dao.NewEntrantDAO(db))
	eventRepo := repository.NewEventRepository(dao.NewEventDAO(db))
	notificationRepo := repository.NewNotificationRepository(dao.NewNotificationDAO(db))

	eventSvc := service.NewEventService(eventRepo, entrantRepo, notificationRepo, nil)
	entrantSvc := service.NewEntrantService(entrantRepo)
	notificationSvc := service.NewNotificationService(notificationRepo, eventRepo)

	eventHandler := v1.NewEventHandler(eventSvc)
	entrantHandler := v1.NewEntrantHandler(entrantSvc, eventSvc, notificationSvc)
	notificationHandler := v1.NewNotificationHandler(notificationSvc)
	s.MountHandlers(eventHandler, entrantHandler, notificationHandler)

	return s
}

func (s *Server) MountMiddlewares() {
	// Logger and Recovery are needed unless we use gin.Default().
	s.Router.Use(gin.Logger())
	s.Router.Use(gin.Recovery())
	s.Router.Use(requestid.New())
	s.Router.Use(middleware.ConfigCORS(s.Config.API.AllowedCORSDomains))
}

func (s *Server) MountHandlers(eventHandler *v1.EventHandler, entrantHandler *v1.EntrantHandler, notificationHandler *v1.NotificationHandler) {
	const basePath = "/api/v1"

	entrants := s.Router.Group(basePath)
	{
		entrants.POST("/entrants", entrantHandler.HandleCreateEntrant)
		entrants.GET("/entrants/:entrantID", entrantHandler.HandleGetEntrant)
		entrants.PUT("/entrants/:entrantID", entrantHandler.HandleUpdateEntrant)
		entrants.DELETE("/entrants/:entrantID", entrantHandler.HandleDeleteEntrant)
		entrants.GET("/entrants/:entrantID/events", entrantHandler.HandleGetEntrantEvents)
		entrants.GET("/entrants/:entrantID/notifications", entrantHandler.HandleGetEntrantNotifications)
	}

	events := s.Router.Group(basePath)
	{
		events.POST("/events", eventHandler.HandleCreateEvent)
		events.GET("/events", eventHandler.HandleGetEvents)
		events.GET("/events/:eventID", eventHandler.HandleGetEvent)
		events.DELETE("/events/:eventID", eventHandler.HandleDeleteEvent)
		events.GET("/events/:eventID/entrants", eventHandler.HandleGetRoster)
		events.GET("/events/:eventID/entrants/:entrantID", eventHandler.HandleGetEntrantStatus)
		events.GET("/events/:eventID/waitlist", eventHandler.HandleGetWaitlist)
		events.POST("/events/:eventID/waitlist", eventHandler.HandleJoinWaitlist)
		events.DELETE("/events/:eventID/waitlist/:entrantID", eventHandler.HandleLeaveWaitlist)
		events.POST("/events/:eventID/lottery", eventHandler.HandleDoLottery)
		events.POST("/events/:eventID/lottery/replacement", eventHandler.HandleDoReplacementLottery)
		events.POST("/events/:eventID/cancellations", eventHandler.HandleCancelEntrants)
		events.POST("/events/:eventID/readmissions", eventHandler.HandleReAdmitEntrant)
		events.GET("/events/:eventID/notifications", notificationHandler.HandleGetEventNotifications)
	}

	notifications := s.Router.Group(basePath)
	{
		notifications.POST("/notifications", notificationHandler.HandleSendBulk)
		notifications.POST("/notifications/:notificationID/accept", notificationHandler.HandleAcceptInvitation)
		notifications.POST("/notifications/:notificationID/decline", notificationHandler.HandleDeclineInvitation)
		notifications.POST("/notifications/:notificationID/stay", notificationHandler.HandleStayNotSelected)
		notifications.POST("/notifications/:notificationID/leave", notificationHandler.HandleLeaveNotSelected)
		notifications.POST("/notifications/:notificationID/read", notificationHandler.HandleMarkRead)
	}

	s.Router.GET("/", v1.HandleHealthcheck)

	// Setup Swagger UI.
	docs.SwaggerInfo.Host = s.Config.API.BaseURL
	docs.SwaggerInfo.BasePath = basePath
	docs.SwaggerInfo.Title = "Slices Events API"
	docs.SwaggerInfo.Description = "Event registration with waitlists, lottery draws and invitations."
	docs.SwaggerInfo.Version = "1.0"
	s.Router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerfiles.Handler))
}
