package controllers

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/sujit-baniya/flash"

	"github.com/shopfox/shopfox/app/models"
	"github.com/shopfox/shopfox/internal/pkg/constants"
	"github.com/shopfox/shopfox/internal/pkg/database"
	"github.com/shopfox/shopfox/internal/pkg/lifepay"
)

// lifepayService builds a reconciler for the current request: configuration
// snapshot, gorm-backed collaborators and the absolute notification URL the
// canonical signature is computed over. Declared as a variable so tests can
// substitute a service wired to fakes.
var lifepayService = func(c *fiber.Ctx) (*lifepay.Service, error) {
	cfgRow, err := checkoutRepos.PaymentConfig.GetByMethodID(models.PaymentMethodLifepay)
	if err != nil {
		return nil, err
	}

	store := lifepay.NewStore(database.GetDB())
	notifyURL := c.BaseURL() + constants.LifepayNotifyRoute
	return lifepay.NewService(lifepay.ConfigFromModel(cfgRow), store, store, store, notifyURL), nil
}

// HandleLifepayNotify is the server-to-server IPN endpoint. The gateway
// retries delivery until it reads the literal body "success".
func HandleLifepayNotify(c *fiber.Ctx) error {
	svc, err := lifepayService(c)
	if err != nil {
		return c.SendStatus(fiber.StatusInternalServerError)
	}

	result, err := svc.HandleNotification(parseNotification(c), GetClientIP(c))
	if err != nil {
		log.Printf("lifepay notification failed: %v", err)
		return c.SendStatus(fiber.StatusInternalServerError)
	}

	switch result.Outcome {
	case lifepay.OutcomeAccepted, lifepay.OutcomeConfirmed:
		return c.SendString("success")
	case lifepay.OutcomeUnreadable:
		return flash.WithError(c, fiber.Map{
			"type":    "error",
			"message": "Site can not get info from your transaction. Please return to store and perform the order",
		}).Redirect(constants.PublicRoute)
	default:
		return c.Redirect(constants.CheckoutRoute, fiber.StatusFound)
	}
}

// HandleLifepayReturn handles the user's browser coming back from the
// gateway after a successful payment.
func HandleLifepayReturn(c *fiber.Ctx) error {
	svc, err := lifepayService(c)
	if err != nil {
		return c.SendStatus(fiber.StatusInternalServerError)
	}

	result, err := svc.HandleReturn(parseNotification(c))
	if err != nil {
		log.Printf("lifepay return failed: %v", err)
		return c.SendStatus(fiber.StatusInternalServerError)
	}
	if result.Outcome == lifepay.OutcomeUnreadable {
		return flash.WithError(c, fiber.Map{
			"type":    "error",
			"message": "Site can not get info from your transaction. Please return to store and perform the order",
		}).Redirect(constants.PublicRoute)
	}

	return flash.WithSuccess(c, fiber.Map{
		"type":    "success",
		"message": "Order complete! Thank you for payment",
	}).Redirect(constants.PublicRoute)
}

// HandleLifepayCancel handles the user's browser coming back after an
// aborted or declined payment. The order keeps its status so checkout can
// be resumed.
func HandleLifepayCancel(c *fiber.Ctx) error {
	svc, err := lifepayService(c)
	if err != nil {
		return c.SendStatus(fiber.StatusInternalServerError)
	}

	if _, err := svc.HandleCancel(parseNotification(c)); err != nil {
		log.Printf("lifepay cancel failed: %v", err)
		return c.SendStatus(fiber.StatusInternalServerError)
	}

	return flash.WithError(c, fiber.Map{
		"type":    "error",
		"message": "You have canceled checkout at Lifepay but may resume the checkout process here when you are ready.",
	}).Redirect(constants.CheckoutRoute)
}
