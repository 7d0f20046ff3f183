package constants

// Static route constants
const (
	PublicRoute   = "/"
	CheckoutRoute = "/cart/checkout/"
	PayRoute      = "/cart/checkout/pay"

	// Gateway callback endpoints
	LifepayNotifyRoute = "/payment/lifepay/notify"
	LifepayReturnRoute = "/payment/lifepay/return"
	LifepayCancelRoute = "/payment/lifepay/cancel"
)
