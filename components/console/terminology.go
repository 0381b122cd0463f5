package console

import (
	"context"
	"maps"
	"strings"
)

// Terminology profiles.
const (
	TerminologyStandard = "standard"
	TerminologyCommerce = "commerce"
	TerminologyEnglish  = "en"
)

var terminologyProfiles = map[string]map[string]string{
	TerminologyStandard: {
		"nav.dashboard":          "Dashboard",
		"nav.orders":             "Commandes",
		"nav.products":           "Produits",
		"nav.customers":          "Clients",
		"nav.users":              "Utilisateurs",
		"nav.settings":           "Paramètres",
		"actions.create_product": "Créer un produit",
		"actions.new_order":      "Nouvelle commande",
	},
	TerminologyCommerce: {
		"nav.dashboard":          "Dashboard",
		"nav.orders":             "Ventes",
		"nav.products":           "Articles",
		"nav.customers":          "Acheteurs",
		"nav.users":              "Équipe",
		"nav.settings":           "Réglages",
		"actions.create_product": "Ajouter un article",
		"actions.new_order":      "Nouvelle vente",
	},
	TerminologyEnglish: {
		"nav.dashboard":          "Dashboard",
		"nav.orders":             "Orders",
		"nav.products":           "Products",
		"nav.customers":          "Customers",
		"nav.users":              "Users",
		"nav.settings":           "Settings",
		"actions.create_product": "Create product",
		"actions.new_order":      "New order",
	},
}

// TerminologyModes lists the built-in profiles.
func TerminologyModes() []string {
	return []string{TerminologyStandard, TerminologyCommerce, TerminologyEnglish}
}

// Dictionary returns the labels for mode. Unknown modes fall back to standard.
// The returned map is a copy.
func Dictionary(mode string) map[string]string {
	dict, ok := terminologyProfiles[normalizeMode(mode)]
	if !ok {
		dict = terminologyProfiles[TerminologyStandard]
	}
	return maps.Clone(dict)
}

func normalizeMode(mode string) string {
	return strings.TrimSpace(strings.ToLower(mode))
}

// TranslationService lets hosts supply their own catalog. Keys are the
// dictionary keys (nav.orders, ...) and the locale is the terminology mode.
type TranslationService interface {
	Translate(ctx context.Context, key, locale string, args map[string]any) (string, error)
}

// Labels is the outcome of applying a terminology mode.
type Labels struct {
	// Mode is the requested mode, used to sync selector controls.
	Mode string `json:"mode"`
	// Profile is the dictionary actually used after fallback.
	Profile string            `json:"profile"`
	Values  map[string]string `json:"values"`
	Title   string            `json:"title"`
}

// Terminology resolves labels with an optional host translation layer.
type Terminology struct {
	translator TranslationService
}

// NewTerminology builds a translator. svc may be nil.
func NewTerminology(svc TranslationService) *Terminology {
	return &Terminology{translator: svc}
}

// Label resolves one key for mode.
func (t *Terminology) Label(ctx context.Context, mode, key string) string {
	fallback := Dictionary(mode)[key]
	var svc TranslationService
	if t != nil {
		svc = t.translator
	}
	return translateOrFallback(ctx, svc, key, mode, fallback, nil)
}

// Apply resolves every key for mode.
func (t *Terminology) Apply(ctx context.Context, mode string) Labels {
	profile := normalizeMode(mode)
	if _, ok := terminologyProfiles[profile]; !ok {
		profile = TerminologyStandard
	}
	dict := Dictionary(mode)
	values := make(map[string]string, len(dict))
	for key := range dict {
		values[key] = t.Label(ctx, mode, key)
	}
	return Labels{Mode: mode, Profile: profile, Values: values}
}

func translateOrFallback(ctx context.Context, svc TranslationService, key, locale, fallback string, params map[string]any) string {
	if svc != nil {
		if translated, err := svc.Translate(ctx, key, locale, params); err == nil && translated != "" {
			return translated
		}
	}
	if fallback != "" {
		return fallback
	}
	return key
}
