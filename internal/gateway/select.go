package gateway

import (
	"fmt"

	"github.com/vasanthanrk/careerboost/internal/config"
)

// FromConfig builds the single gateway the process runs with. Provider
// selection is a startup decision, never a per-request one.
func FromConfig(cfg *config.Config) (Gateway, error) {
	switch cfg.PaymentGateway {
	case config.GatewayRazorpay:
		return NewRazorpay(cfg.RazorpayKeyID, cfg.RazorpayKeySecret, cfg.RazorpayWebhookSecret), nil
	case config.GatewayStripe:
		return NewStripe(cfg.StripeSecretKey, cfg.StripeWebhookSecret, cfg.StripeSuccessURL, cfg.StripeCancelURL), nil
	default:
		return nil, fmt.Errorf("unsupported payment gateway %q", cfg.PaymentGateway)
	}
}
