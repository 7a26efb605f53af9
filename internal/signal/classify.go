// Package signal classifies inbound buying signals into action tiers and
// routes call dispositions to sequence actions.
package signal

// Tier is the urgency class assigned to a signal type.
type Tier int

const (
	// TierHot signals demand immediate action and go straight onto the
	// punch list.
	TierHot Tier = 1
	// TierWarm signals are enriched before a routing decision.
	TierWarm Tier = 2
	// TierAmbient signals are parked for batch review.
	TierAmbient Tier = 3
)

// TierInfo carries the display metadata for one tier.
type TierInfo struct {
	Label       string `json:"label"`
	Action      string `json:"action"`
	Description string `json:"description"`
	Color       string `json:"color"`
}

var tierInfo = map[Tier]TierInfo{
	TierHot: {
		Label:       "HOT",
		Action:      "queued_hot",
		Description: "Immediate action, added to punch list",
		Color:       "#FF4500",
	},
	TierWarm: {
		Label:       "WARM",
		Action:      "enriching",
		Description: "Enriching contact before routing",
		Color:       "#FFD700",
	},
	TierAmbient: {
		Label:       "AMBIENT",
		Action:      "parked",
		Description: "Parked for batch review",
		Color:       "#4682B4",
	},
}

var signalTiers = map[string]Tier{
	"demo_request":      TierHot,
	"pricing_page":      TierHot,
	"contact_sales":     TierHot,
	"free_trial_signup": TierHot,
	"hand_raise":        TierHot,
	"inbound_call":      TierHot,
	"reply_positive":    TierHot,
	"meeting_booked":    TierHot,

	"paywall_hit":           TierWarm,
	"feature_exploration":   TierWarm,
	"return_visit":          TierWarm,
	"content_download":      TierWarm,
	"webinar_attended":      TierWarm,
	"email_opened_multiple": TierWarm,
	"competitor_comparison": TierWarm,

	"product_usage":     TierAmbient,
	"blog_visit":        TierAmbient,
	"social_engagement": TierAmbient,
	"newsletter_open":   TierAmbient,
	"generic_pageview":  TierAmbient,
}

// Classify maps a raw signal type to its tier and metadata. Unknown
// signal types return ok = false and are left to the caller to reject.
func Classify(signalType string) (Tier, TierInfo, bool) {
	tier, ok := signalTiers[signalType]
	if !ok {
		return 0, TierInfo{}, false
	}
	return tier, tierInfo[tier], true
}
