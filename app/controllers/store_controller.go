package controllers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/nexpay/payhook/internal/pkg/database"
	"github.com/nexpay/payhook/internal/pkg/payment"
)

// HandleStoreItems lists the purchasable catalog grouped by purchase type.
func HandleStoreItems(c *fiber.Ctx) error {
	store := payment.NewStore(database.GetDB())

	oneTime, err := store.GetAllItems(payment.ItemTypeOneTime)
	if err != nil {
		log.Errorf("loading one-time items failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "catalog unavailable"})
	}
	subscriptions, err := store.GetAllItems(payment.ItemTypeSubscription)
	if err != nil {
		log.Errorf("loading subscriptions failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "catalog unavailable"})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"one_time_payment": oneTime,
		"subscription":     subscriptions,
	})
}

// HandleUserOrders lists the purchase orders recorded for one user, newest
// first.
func HandleUserOrders(c *fiber.Ctx) error {
	userID := strings.TrimSpace(c.Params("user_id"))
	if userID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": "user_id is required"})
	}

	store := payment.NewStore(database.GetDB())
	orders, err := store.GetOrdersByUser(userID)
	if err != nil {
		log.Errorf("loading orders for user %s failed: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "orders unavailable"})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"orders": orders})
}
