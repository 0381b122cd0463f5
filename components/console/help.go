package console

import (
	"bytes"
	"html/template"
	"maps"
	"sync"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	goldmarkhtml "github.com/yuin/goldmark/renderer/html"
)

var defaultHelpTopics = map[string]string{
	"dashboard": "## Tableau de bord\n\n" +
		"Les indicateurs du haut résument le **chiffre d’affaires**, les commandes et le panier moyen.\n\n" +
		"- Réorganisez les graphiques depuis *Personnaliser*.\n" +
		"- Choisissez la période (7, 30 ou 90 jours) par graphique.\n",
	"orders": "## Commandes\n\n" +
		"Filtrez par statut, période ou texte libre puis paginez les résultats.\n\n" +
		"| Statut | Signification |\n|---|---|\n" +
		"| En attente | paiement non confirmé |\n| Expédiée | colis remis au transporteur |\n",
	"products":  "## Produits\n\nLe nom est obligatoire. *Enregistrer et continuer* garde le formulaire ouvert.\n",
	"customers": "## Clients\n\nUn client est un utilisateur sans accès staff. L’identifiant doit être unique.\n",
	"users":     "## Utilisateurs\n\nListe des comptes, staff compris.\n",
	"settings":  "## Paramètres\n\nThème, couleur principale et terminologie sont enregistrés pour votre compte.\n",
}

// HelpPanel renders Markdown help per view into sanitized HTML.
type HelpPanel struct {
	topics   map[string]string
	markdown goldmark.Markdown
	policy   *bluemonday.Policy

	mu       sync.Mutex
	rendered map[string]template.HTML
}

// NewHelpPanel builds a panel. topics overrides the stock topics per view.
func NewHelpPanel(topics map[string]string) *HelpPanel {
	merged := maps.Clone(defaultHelpTopics)
	maps.Copy(merged, topics)
	return &HelpPanel{
		topics: merged,
		markdown: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(goldmarkhtml.WithHardWraps()),
		),
		policy:   bluemonday.UGCPolicy(),
		rendered: make(map[string]template.HTML),
	}
}

// Render returns the help HTML for view, falling back to the dashboard topic.
func (h *HelpPanel) Render(view string) (template.HTML, error) {
	if _, ok := h.topics[view]; !ok {
		view = DefaultView
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if out, ok := h.rendered[view]; ok {
		return out, nil
	}
	var buf bytes.Buffer
	if err := h.markdown.Convert([]byte(h.topics[view]), &buf); err != nil {
		return "", err
	}
	out := template.HTML(h.policy.SanitizeBytes(buf.Bytes()))
	h.rendered[view] = out
	return out, nil
}
