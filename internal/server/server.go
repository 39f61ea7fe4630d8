package server

import (
	"context"
	"net/http"

	"buybizz/internal/client"
	"buybizz/internal/handler"
	appmw "buybizz/internal/middleware"
	"buybizz/internal/service"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// Services is everything the HTTP layer calls into.
type Services struct {
	Identity    service.IdentityService
	Product     service.ProductService
	Cart        service.CartService
	Order       service.OrderService
	Entitlement service.EntitlementService
	Vendor      service.VendorService
	Admin       service.AdminService
	Webhook     service.WebhookService
}

type Server struct {
	echo           *echo.Echo
	identityClient client.IdentityClient
	identity       service.IdentityService

	agentHandler   *handler.AgentHandler
	cartHandler    *handler.CartHandler
	orderHandler   *handler.OrderHandler
	userHandler    *handler.UserHandler
	vendorHandler  *handler.VendorHandler
	adminHandler   *handler.AdminHandler
	webhookHandler *handler.WebhookHandler
}

func NewServer(identityClient client.IdentityClient, services *Services) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = errorHandler

	e.Use(middleware.RequestID())
	e.Use(middleware.RequestLogger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	s := &Server{
		echo:           e,
		identityClient: identityClient,
		identity:       services.Identity,
		agentHandler:   handler.NewAgentHandler(services.Product),
		cartHandler:    handler.NewCartHandler(services.Cart),
		orderHandler:   handler.NewOrderHandler(services.Order),
		userHandler:    handler.NewUserHandler(services.Entitlement),
		vendorHandler:  handler.NewVendorHandler(services.Vendor),
		adminHandler:   handler.NewAdminHandler(services.Admin, services.Vendor),
		webhookHandler: handler.NewWebhookHandler(services.Webhook),
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	api := s.echo.Group("/api")

	api.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	// signed by the identity provider, no session
	api.POST("/webhooks/identity", s.webhookHandler.Identity)

	session := api.Group("", appmw.Identify(s.identityClient, s.identity))
	authed := appmw.RequireAuth()

	// -------- catalogue --------
	agents := session.Group("/agents")
	agents.GET("", s.agentHandler.List)
	agents.GET("/:id", s.agentHandler.Get)
	agents.POST("", s.agentHandler.Create, appmw.RequireVendor())
	agents.PUT("/:id", s.agentHandler.Update, appmw.RequireVendor())
	agents.DELETE("/:id", s.agentHandler.Delete, appmw.RequireVendor())

	// -------- cart / orders --------
	cart := session.Group("/cart", authed)
	cart.GET("", s.cartHandler.List)
	cart.POST("", s.cartHandler.Add)
	cart.DELETE("", s.cartHandler.Clear)
	cart.PUT("/:id", s.cartHandler.Update)
	cart.DELETE("/:id", s.cartHandler.Remove)

	orders := session.Group("/orders", authed)
	orders.POST("", s.orderHandler.Checkout)
	orders.GET("", s.orderHandler.List)
	orders.GET("/:id", s.orderHandler.Get)

	user := session.Group("/user", authed)
	user.GET("/me", s.userHandler.Me)
	user.GET("/agents", s.userHandler.OwnedAgents)

	// -------- vendor --------
	vendor := session.Group("/vendor")
	vendor.POST("/register", s.vendorHandler.Register, authed)
	vendor.POST("/apply", s.vendorHandler.Apply, authed)
	vendor.GET("/agents", s.vendorHandler.Agents, appmw.RequireVendor())
	vendor.GET("/stats", s.vendorHandler.Stats, appmw.RequireVendor())

	// -------- admin --------
	admin := session.Group("/admin", appmw.RequireAdmin())
	admin.GET("/stats", s.adminHandler.Stats)
	admin.GET("/users", s.adminHandler.Users)
	admin.PATCH("/users/:id/role", s.adminHandler.ChangeRole)
	admin.GET("/products", s.adminHandler.Agents)
	admin.GET("/orders", s.adminHandler.Orders)
	admin.GET("/vendor-applications", s.adminHandler.VendorApplications)
	admin.PATCH("/vendor-applications", s.adminHandler.ReviewVendorApplication)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.echo.ServeHTTP(w, r)
}

func (s *Server) Start(address string) error {
	return s.echo.Start(address)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
