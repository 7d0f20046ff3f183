package lifepay

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopfox/shopfox/app/models"
)

// ErrOrderNotFound is returned by OrderStore implementations when the
// notification references an order that does not exist.
var ErrOrderNotFound = errors.New("lifepay: order not found")

// Outcome is the reconciler's decision for one inbound notification. The
// HTTP layer maps it onto the acknowledgment the gateway (or the user's
// browser) expects.
type Outcome int

const (
	// OutcomeUnreadable means the order reference could not be resolved.
	// No state was touched; the user gets a generic message.
	OutcomeUnreadable Outcome = iota
	// OutcomeAccepted means the notification validated and the order
	// transitioned to the configured post-payment status.
	OutcomeAccepted
	// OutcomeConfirmed means the order was already in the post-payment
	// status; the delivery is acknowledged again without side effects.
	OutcomeConfirmed
	// OutcomeDeclined means validation failed; the order is untouched and
	// the caller redirects back to checkout.
	OutcomeDeclined
)

// Result carries the reconciler decision plus the order it resolved, when
// one was resolved.
type Result struct {
	Outcome Outcome
	Order   *OrderRef
}

// OrderRef identifies the reconciled order for callers without handing out
// the mutable record.
type OrderRef struct {
	ID     uint
	Number string
	Status string
}

// Service validates inbound gateway notifications and reconciles order
// state exactly once per payment. All inputs (payload, configuration
// snapshot, client IP) are passed explicitly.
type Service struct {
	cfg      Config
	orders   OrderStore
	ledger   Ledger
	comments CommentLog

	// notifyURL is the absolute URL of the notification endpoint, the URL
	// the canonical-request signature is computed over.
	notifyURL string
}

// NewService wires the reconciler to its collaborators.
func NewService(cfg Config, orders OrderStore, ledger Ledger, comments CommentLog, notifyURL string) *Service {
	return &Service{
		cfg:       cfg,
		orders:    orders,
		ledger:    ledger,
		comments:  comments,
		notifyURL: notifyURL,
	}
}

// HandleNotification runs the transition guard for one gateway callback.
//
// Side effect order is fixed: the audit comment is written before any
// mutation, and the ledger entry before the status transition, so history
// reconstructed from the ledger never shows a paid status without a
// matching entry.
func (s *Service) HandleNotification(n Notification, clientIP string) (Result, error) {
	number := n.OrderNumber()
	if number == "" {
		return Result{Outcome: OutcomeUnreadable}, nil
	}

	order, err := s.orders.LoadOrder(number)
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			return Result{Outcome: OutcomeUnreadable}, nil
		}
		return Result{}, err
	}
	ref := &OrderRef{ID: order.ID, Number: order.Number, Status: order.Status}

	// Re-delivery for an already paid order is acknowledged as-is. The
	// signature is intentionally not re-verified here, matching the
	// gateway contract for repeated deliveries.
	if order.Status == s.cfg.StatusAfterPay {
		return Result{Outcome: OutcomeConfirmed, Order: ref}, nil
	}

	if !s.notificationValid(n, clientIP) {
		comment := fmt.Sprintf(
			"Order did not pass Lifepay validation, callback declined. Callback data: %s",
			n.Dump(),
		)
		if err := s.comments.AppendOrderComment(order.ID, models.SystemAuthorID, comment); err != nil {
			return Result{}, err
		}
		return Result{Outcome: OutcomeDeclined, Order: ref}, nil
	}

	comment := fmt.Sprintf(
		"Paid by Lifepay, payment type %q, order #%s, transaction %s. Callback data: %s",
		n["service_id"], order.Number, n.TransactionID(), n.Dump(),
	)
	if err := s.comments.AppendOrderComment(order.ID, models.SystemAuthorID, comment); err != nil {
		return Result{}, err
	}
	if err := s.ledger.RecordPayment(order.ID, models.PaymentMethodLifepay, order.Total, order.UserID, comment); err != nil {
		return Result{}, err
	}
	if err := s.orders.SetOrderStatus(order, s.cfg.StatusAfterPay); err != nil {
		return Result{}, err
	}

	ref.Status = order.Status
	return Result{Outcome: OutcomeAccepted, Order: ref}, nil
}

// HandleCancel records the declined callback on the order without touching
// its status, so the checkout remains resumable.
func (s *Service) HandleCancel(n Notification) (Result, error) {
	number := n.OrderNumber()
	if number == "" {
		return Result{Outcome: OutcomeUnreadable}, nil
	}

	order, err := s.orders.LoadOrder(number)
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			return Result{Outcome: OutcomeUnreadable}, nil
		}
		return Result{}, err
	}

	comment := fmt.Sprintf(
		"Order have not passed, Lifepay declined. Lifepay made callback with data: %s",
		n.Dump(),
	)
	if err := s.comments.AppendOrderComment(order.ID, models.SystemAuthorID, comment); err != nil {
		return Result{}, err
	}

	return Result{
		Outcome: OutcomeDeclined,
		Order:   &OrderRef{ID: order.ID, Number: order.Number, Status: order.Status},
	}, nil
}

// HandleReturn resolves the order for the user-browser return redirect.
func (s *Service) HandleReturn(n Notification) (Result, error) {
	number := n.OrderNumber()
	if number == "" {
		return Result{Outcome: OutcomeUnreadable}, nil
	}

	order, err := s.orders.LoadOrder(number)
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			return Result{Outcome: OutcomeUnreadable}, nil
		}
		return Result{}, err
	}

	return Result{
		Outcome: OutcomeConfirmed,
		Order:   &OrderRef{ID: order.ID, Number: order.Number, Status: order.Status},
	}, nil
}

// notificationValid runs the scheme-specific validation gates. The IP
// allow-list, when enabled, is an additional gate for every scheme.
func (s *Service) notificationValid(n Notification, clientIP string) bool {
	if s.cfg.UseServerList && !s.cfg.IPAllowed(clientIP) {
		return false
	}

	switch s.cfg.Scheme {
	case SchemeOffsite:
		computed := OffsiteHash(s.cfg.Secret, s.cfg.MerchantLogin, n["x_trans_id"], n["x_amount"])
		// relay hashes arrive upper-cased
		return VerifySignature(strings.ToLower(n["x_MD5_Hash"]), computed)
	case SchemeIPNv1:
		return VerifySignature(n.Check(), SignLegacy(n.WithoutCheck(), s.cfg.APIKey))
	case SchemeIPNv2:
		computed, err := SignCanonical("POST", s.notifyURL, n.WithoutCheck(), s.cfg.APIKey)
		if err != nil {
			return false
		}
		return VerifySignature(n.Check(), computed)
	default:
		return false
	}
}
