// Package intent classifies inbound messages into a handling route.
package intent

import (
	"regexp"
	"strings"

	"github.com/ashford-hq/hr-assistant/internal/domain"
)

// Route is the category of handling a message receives.
type Route string

const (
	// RoutePolicy sends the message to the policy-answer service.
	RoutePolicy Route = "policyRag"
	// RouteUpdateAddress enters or continues the address update workflow.
	RouteUpdateAddress Route = "updateAddress"
	// RoutePromotion runs the promotion eligibility check.
	RoutePromotion Route = "promotion"
)

// Result is an immutable classification outcome.
type Result struct {
	Route      Route
	Confidence float64
}

// Rule router for Phase 1; can be replaced by a learned classifier later
// without changing the orchestrator's contract. Rules overlap, so order
// matters: first match wins.
var (
	promotionRe     = regexp.MustCompile(`\b(promotion|promote|eligible)\b`)
	updateAddressRe = regexp.MustCompile(`\b(update|change)\b.*\b(address|home address|adress)\b`)
	myAddressRe     = regexp.MustCompile(`\bmy address\b`)
	fieldTokenRe    = regexp.MustCompile(`\b(address_line1|address_line2|postal_code|country|city|state)\b`)
)

// Classify routes a message. Pure and deterministic; the user context is
// accepted for forward compatibility but unused by the lexical rules.
func Classify(text string, _ domain.UserContext) Result {
	t := strings.ToLower(strings.TrimSpace(text))

	if promotionRe.MatchString(t) {
		return Result{Route: RoutePromotion, Confidence: 0.9}
	}

	if updateAddressRe.MatchString(t) || myAddressRe.MatchString(t) {
		return Result{Route: RouteUpdateAddress, Confidence: 0.9}
	}

	if fieldTokenRe.MatchString(t) {
		return Result{Route: RouteUpdateAddress, Confidence: 0.9}
	}

	return Result{Route: RoutePolicy, Confidence: 0.6}
}
