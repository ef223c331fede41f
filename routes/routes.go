package routes

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"farmwise/config"
	"farmwise/controllers"
	"farmwise/middlewares"
	"farmwise/models"
	"farmwise/services"
)

// Deps carries everything the route table needs. Constructed in main; no
// package-level state.
type Deps struct {
	DB            *gorm.DB
	Tokens        *services.TokenService
	Hub           *services.Hub
	Chat          *services.ChatService
	Conversations *services.ConversationService
	Cfg           config.Config
}

// RegisterRoutes wires the full HTTP surface.
func RegisterRoutes(d Deps) *gin.Engine {
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{d.Cfg.CORSOrigin},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	userCtl := &controllers.UserController{DB: d.DB, Tokens: d.Tokens}
	messageCtl := &controllers.MessageController{Chat: d.Chat, UploadDir: d.Cfg.UploadDir}
	convCtl := &controllers.ConversationController{Conversations: d.Conversations}
	expertCtl := &controllers.ExpertController{DB: d.DB, UploadDir: d.Cfg.UploadDir}
	wsCtl := &controllers.WSController{DB: d.DB, Tokens: d.Tokens, Hub: d.Hub, Chat: d.Chat}

	r.GET("/ws", wsCtl.Handle)
	r.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "Service is healthy!"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.Static("/uploads", d.Cfg.UploadDir)

	api := r.Group("/api/farmwise")

	users := api.Group("/users")
	users.POST("/register", userCtl.Register)
	users.POST("/login", userCtl.Login)

	auth := middlewares.TokenAuthMiddleware(d.Tokens, d.DB)
	users.GET("/me", auth, userCtl.Me)

	messages := api.Group("/messages", auth)
	messages.POST("/send", messageCtl.SendMessage)
	messages.GET("/get", messageCtl.GetMessages)

	conversations := api.Group("/conversations", auth)
	conversations.POST("", convCtl.CreateConversation)
	conversations.GET("", convCtl.ListConversations)

	experts := api.Group("/experts")
	experts.POST("", auth, expertCtl.CreateExpert)
	experts.GET("", expertCtl.GetAllExperts)
	experts.GET("/:id", expertCtl.GetExpertByID)

	admin := experts.Group("", auth, middlewares.RequireRole(models.RoleAdmin))
	admin.PATCH("/:id/verify", expertCtl.VerifyExpert)
	admin.PATCH("/:id/reject", expertCtl.RejectExpert)

	return r
}
