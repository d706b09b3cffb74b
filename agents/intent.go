package agents

import (
	"strings"

	"github.com/krishidhan/sahayak/components"
	"github.com/krishidhan/sahayak/tools"
)

// Intent categories a turn is classified into. The intent feeds the
// session topic and reply metadata; tool selection runs on the tools'
// own relevance predicates, not on the intent.
const (
	IntentSchemeSearch       = "scheme_search"
	IntentSchemeApplication  = "scheme_application"
	IntentSchemeEligibility  = "scheme_eligibility"
	IntentSchemeBenefits     = "scheme_benefits"
	IntentPriceQuery         = "price_query"
	IntentPriceTrend         = "price_trend"
	IntentWeatherQuery       = "weather_query"
	IntentFarmingAdvice      = "farming_advice"
	IntentInformationRequest = "information_request"
	IntentFollowup           = "followup"
	IntentGeneral            = "general"
)

var (
	schemeTerms      = []string{"scheme", "yojana", "subsidy", "subsidies", "insurance", "benefit", "assistance", "pm-kisan", "pm kisan", "pmfby", "fasal bima"}
	applicationTerms = []string{"apply", "application", "how to", "process", "register", "enrol"}
	eligibilityTerms = []string{"eligib", "qualify", "criteria", "who can"}
	benefitTerms     = []string{"benefit", "amount", "money", "financial", "how much", "premium"}
	priceTerms       = []string{"price", "cost", "market", "selling", "mandi"}
	priceWords       = []string{"rate", "rates"}
	trendTerms       = []string{"trend", "forecast", "prediction", "future"}
	weatherTerms     = []string{"weather", "temperature", "climate", "forecast", "humidity", "monsoon", "rainfall"}
	weatherWords     = []string{"rain", "rains", "rainy"}
	farmingTerms     = []string{"crop", "farming", "cultivat", "fertil", "pesticide", "irrig", "sow", "harvest", "seed", "soil", "pest"}
	questionWords    = []string{"what", "how", "when", "where", "why", "which", "who"}

	// Continuation markers. Detail words like "eligibility" stay out so a
	// follow-up naming a concrete aspect classifies into the scheme family
	// instead.
	followupPhrases = []string{
		"tell me more", "more details", "more information", "elaborate",
		"what about", "how about", "and what", "also tell",
		"the first one", "the second one", "that scheme", "this scheme",
	}
	followupPronouns = []string{"it", "that", "this", "those", "these", "them", "they"}
)

// Agriculture topic stems. Substring matching on purpose: "fertil"
// covers fertilizer and fertilization. Short words with common
// super-strings ("rain" in "train") live in agriWords instead.
var (
	agriStems = []string{
		"agri", "crop", "farm", "fertil", "irrig", "soil", "seed", "pest",
		"harvest", "sow", "tractor", "kvk", "krishi", "kisan", "fpo",
		"mandi", "scheme", "yojana", "subsid", "weather", "monsoon",
		"rainfall", "dairy", "livestock", "cattle", "poultry", "fodder",
		"horticult",
	}
	agriWords = []string{"rain", "rains", "rainy"}
)

// ClassifyIntent buckets a query into one of the intent categories using
// keyword rules. Follow-up detection runs first and only when the
// session already has turns to follow up on.
func ClassifyIntent(query string, snap components.SessionSnapshot) string {
	lower := strings.ToLower(strings.TrimSpace(query))
	if lower == "" {
		return IntentGeneral
	}

	if len(snap.Turns) > 0 && isFollowup(lower) {
		return IntentFollowup
	}

	if tools.ContainsAny(lower, schemeTerms) || tools.ContainsWord(lower, "kcc") {
		switch {
		case tools.ContainsAny(lower, applicationTerms):
			return IntentSchemeApplication
		case tools.ContainsAny(lower, eligibilityTerms):
			return IntentSchemeEligibility
		case tools.ContainsAny(lower, benefitTerms):
			return IntentSchemeBenefits
		default:
			return IntentSchemeSearch
		}
	}

	if tools.ContainsAny(lower, priceTerms) || containsAnyWord(lower, priceWords) {
		if tools.ContainsAny(lower, trendTerms) {
			return IntentPriceTrend
		}
		return IntentPriceQuery
	}

	if tools.ContainsAny(lower, weatherTerms) || containsAnyWord(lower, weatherWords) {
		return IntentWeatherQuery
	}

	if tools.ContainsAny(lower, farmingTerms) {
		return IntentFarmingAdvice
	}

	if containsAnyWord(lower, questionWords) {
		return IntentInformationRequest
	}

	return IntentGeneral
}

// IsAgricultural is the coarse topic guard. It errs on the permissive
// side: a query that passes here but matches no tool still ends in the
// insufficient-data reply, which is the safer failure.
func IsAgricultural(query string) bool {
	lower := strings.ToLower(query)
	return tools.ContainsAny(lower, agriStems) || containsAnyWord(lower, agriWords)
}

// isFollowup spots continuation phrasing, or a short query leaning on a
// pronoun whose referent must live in the previous turns.
func isFollowup(lower string) bool {
	if tools.ContainsAny(lower, followupPhrases) {
		return true
	}
	if len(strings.Fields(lower)) > 8 {
		return false
	}
	return containsAnyWord(lower, followupPronouns)
}

func containsAnyWord(text string, words []string) bool {
	for _, w := range words {
		if tools.ContainsWord(text, w) {
			return true
		}
	}
	return false
}
