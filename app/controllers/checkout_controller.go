package controllers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/sujit-baniya/flash"
	"gorm.io/gorm"

	"github.com/shopfox/shopfox/app/models"
	"github.com/shopfox/shopfox/app/repository"
	"github.com/shopfox/shopfox/internal/pkg/constants"
	"github.com/shopfox/shopfox/internal/pkg/database"
	"github.com/shopfox/shopfox/internal/pkg/lifepay"
	"github.com/shopfox/shopfox/internal/pkg/session"
)

var checkoutRepos *repository.Repositories

// InitializeCheckoutController wires the checkout controller repositories
func InitializeCheckoutController() {
	checkoutRepos = repository.NewFactory(database.GetDB()).GetRepositories()
}

// HandleCheckout renders the checkout page for the order referenced by the
// query parameter or, on a resumed checkout, by the session.
func HandleCheckout(c *fiber.Ctx) error {
	number := strings.TrimSpace(c.Query("order"))
	if number == "" {
		number = session.GetSessionValue(c, "order_number")
	}
	if number == "" {
		return flash.WithError(c, fiber.Map{"type": "error", "message": "No order to check out"}).
			Redirect(constants.PublicRoute)
	}

	order, err := checkoutRepos.Order.GetByNumber(number)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return flash.WithError(c, fiber.Map{"type": "error", "message": "Order not found"}).
				Redirect(constants.PublicRoute)
		}
		return err
	}

	payments, err := checkoutRepos.Payment.ListByOrderID(order.ID)
	if err != nil {
		return err
	}
	comments, err := checkoutRepos.Comment.ListByOrderID(order.ID)
	if err != nil {
		return err
	}

	return c.Render("checkout", fiber.Map{
		"Order":    order,
		"Total":    lifepay.FormatAmount(order.Total),
		"Paid":     len(payments) > 0,
		"Payments": payments,
		"Comments": comments,
		"Flash":    flash.Get(c),
	})
}

// HandlePay builds the gateway redirect payload for the order and renders
// the auto-submitting payment form.
func HandlePay(c *fiber.Ctx) error {
	number := strings.TrimSpace(c.FormValue("order"))
	if number == "" {
		return flash.WithError(c, fiber.Map{"type": "error", "message": "No order to pay"}).
			Redirect(constants.CheckoutRoute)
	}

	order, err := checkoutRepos.Order.GetByNumber(number)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return flash.WithError(c, fiber.Map{"type": "error", "message": "Order not found"}).
				Redirect(constants.CheckoutRoute)
		}
		return err
	}

	cfgRow, err := checkoutRepos.PaymentConfig.GetByMethodID(models.PaymentMethodLifepay)
	if err != nil {
		return flash.WithError(c, fiber.Map{"type": "error", "message": "Payment method is not configured"}).
			Redirect(constants.CheckoutRoute)
	}

	builder := lifepay.NewBuilder(lifepay.ConfigFromModel(cfgRow), nil)
	req, err := builder.Build(order, c.BaseURL()+constants.LifepayNotifyRoute)
	if err != nil {
		return flash.WithError(c, fiber.Map{"type": "error", "message": "Order cannot be submitted for payment"}).
			Redirect(constants.CheckoutRoute)
	}

	// Remember the order so the checkout is resumable after a cancel.
	_ = session.SetSessionValue(c, "order_number", order.Number)

	return c.Render("payment_form", fiber.Map{
		"ActionURL": req.URL,
		"Fields":    req.Fields,
	})
}
