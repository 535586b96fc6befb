package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/nexpay/payhook/app/controllers"
	"github.com/nexpay/payhook/internal/pkg/constants"
	"github.com/nexpay/payhook/internal/pkg/middleware"
)

type ApiRouter struct {
}

func (h ApiRouter) InstallRouter(app *fiber.App) {
	store := app.Group("/store", limiter.New())
	store.Get(constants.StoreItemsRoute, controllers.HandleStoreItems)
	store.Get(constants.StoreOrdersRoute, controllers.HandleUserOrders)

	creditor := app.Group("/creditor", middleware.InternalAPIKeyMiddleware())
	creditor.Post(constants.CreditorRoute, controllers.HandleCreditorTransaction)
	// Legacy alias kept for callers that still post to the old path.
	creditor.Post(constants.CreditorLegacyRoute, controllers.HandleCreditorTransaction)
}

func NewApiRouter() *ApiRouter {
	return &ApiRouter{}
}
