package router

import (
	"github.com/shopfox/shopfox/app/controllers"
	"github.com/shopfox/shopfox/internal/pkg/constants"
	"github.com/shopfox/shopfox/internal/pkg/session"

	"github.com/gofiber/fiber/v2"
)

type HttpRouter struct {
}

func (h HttpRouter) InstallRouter(app *fiber.App) {
	// init session
	session.NewSessionStore()

	// Initialize checkout controller with repositories
	controllers.InitializeCheckoutController()

	h.registerPublicRoutes(app)
}

func (h HttpRouter) registerPublicRoutes(app *fiber.App) {
	app.Get(constants.PublicRoute, controllers.HandleIndex)

	// Checkout
	app.Get(constants.CheckoutRoute, controllers.HandleCheckout)
	app.Post(constants.PayRoute, controllers.HandlePay)

	// Lifepay gateway callbacks. Notify is server-to-server, return and
	// cancel are user-browser redirects.
	app.Post(constants.LifepayNotifyRoute, controllers.HandleLifepayNotify)
	app.Get(constants.LifepayReturnRoute, controllers.HandleLifepayReturn)
	app.Get(constants.LifepayCancelRoute, controllers.HandleLifepayCancel)
}

func NewHttpRouter() *HttpRouter {
	return &HttpRouter{}
}
