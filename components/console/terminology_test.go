package console

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type stubTranslator map[string]string

func (s stubTranslator) Translate(_ context.Context, key, locale string, _ map[string]any) (string, error) {
	if value, ok := s[locale+":"+key]; ok {
		return value, nil
	}
	return "", errors.New("missing")
}

func TestDictionaryProfiles(t *testing.T) {
	assert.Equal(t, "Commandes", Dictionary("standard")["nav.orders"])
	assert.Equal(t, "Ventes", Dictionary("Commerce")["nav.orders"])
	assert.Equal(t, "Orders", Dictionary("en")["nav.orders"])
	assert.Equal(t, Dictionary("standard"), Dictionary("unknown"))

	dict := Dictionary("en")
	dict["nav.orders"] = "changed"
	assert.Equal(t, "Orders", Dictionary("en")["nav.orders"])
}

func TestTerminologyApply(t *testing.T) {
	labels := NewTerminology(nil).Apply(context.Background(), "commerce")
	assert.Equal(t, "commerce", labels.Mode)
	assert.Equal(t, TerminologyCommerce, labels.Profile)
	assert.Equal(t, "Nouvelle vente", labels.Values["actions.new_order"])
	assert.Len(t, labels.Values, 8)
}

func TestTerminologyUsesTranslator(t *testing.T) {
	term := NewTerminology(stubTranslator{"en:nav.orders": "Purchases"})
	assert.Equal(t, "Purchases", term.Label(context.Background(), "en", "nav.orders"))
	assert.Equal(t, "Products", term.Label(context.Background(), "en", "nav.products"))
	assert.Equal(t, "nav.unknown", term.Label(context.Background(), "en", "nav.unknown"))

	var nilTerm *Terminology
	assert.Equal(t, "Clients", nilTerm.Label(context.Background(), "standard", "nav.customers"))
}
