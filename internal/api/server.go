package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/betcleverde/betclever-landing-hub/internal/auth"
)

type Deps struct {
	JWT          *auth.JWTManager
	Auth         *AuthHandlers
	AuthSvc      *auth.Service
	Applications *ApplicationHandlers
	Support      *SupportHandlers
	Uploads      *UploadHandlers
	WS           *WSHandlers
}

func NewServer(d Deps) *fiber.App {
	app := fiber.New()
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New())

	v1 := app.Group("/v1")

	a := v1.Group("/auth")
	a.Post("/signup", d.Auth.SignUp)
	a.Post("/signin", d.Auth.SignIn)
	a.Post("/refresh", d.Auth.Refresh)
	a.Post("/signout", RequireAuth(d.JWT), d.Auth.SignOut)
	a.Get("/me", RequireAuth(d.JWT), d.Auth.Me)

	user := v1.Group("", RequireAuth(d.JWT))
	user.Get("/application", d.Applications.GetOwn)
	user.Post("/application", d.Applications.Submit)
	user.Post("/uploads/:slot", d.Uploads.Upload)
	user.Get("/support/messages", d.Support.GetOwnMessages)
	user.Post("/support/messages", d.Support.Send)
	user.Post("/support/panel", d.Support.Panel)

	admin := v1.Group("/admin", RequireAuth(d.JWT), RequireAdmin(d.AuthSvc))
	admin.Get("/users", d.Applications.ListUsers)
	admin.Get("/applications", d.Applications.List)
	admin.Post("/applications/:id/approve", d.Applications.Approve)
	admin.Post("/applications/:id/request-changes", d.Applications.RequestChanges)
	admin.Delete("/applications/:id", d.Applications.Delete)
	admin.Get("/support/conversations", d.Support.ListConversations)
	admin.Post("/support/select", d.Support.Select)
	admin.Post("/support/reply", d.Support.Reply)
	admin.Delete("/support/conversations/:user_id", d.Support.DeleteConversation)

	app.Get("/ws", d.WS.Upgrade, d.WS.Serve())

	return app
}
