package router

import (
	"context"

	chatapp "github.com/mizerolucky/Follow-Up/internal/chat/app"
	memberapp "github.com/mizerolucky/Follow-Up/internal/member/app"
	"github.com/mizerolucky/Follow-Up/pkg/middlewares"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// RegisterRoutes 注册用户相关的路由
func RegisterRoutes(r *fiber.App, memberHandler *memberapp.MemberHandler, chatWebsocket *chatapp.ChatWebsocketHandler) {
	// 不用登入的入口
	member := r.Group("/member")
	member.Post("/register", memberHandler.Register)
	member.Post("/login", memberHandler.Login)

	// 以下都要帶 token
	r.Use(middlewares.JWTMiddleware())

	member.Post("/logout", memberHandler.Logout)
	member.Get("/me", memberHandler.Me)
	member.Post("/avatar", memberHandler.UploadAvatar)

	r.Get("/ws", websocket.New(func(c *websocket.Conn) {
		chatWebsocket.HandleConnection(context.Background(), c)
	}))
}
