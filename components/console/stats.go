package console

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

var statAliases = map[string][]string{
	"revenue":    {"revenue", "total_revenue", "ca"},
	"orders":     {"orders", "order_count", "total_orders"},
	"aov":        {"aov", "average_order_value", "panier_moyen"},
	"error_rate": {"error_rate", "errors", "taux_erreur"},
}

// Stats are the dashboard KPI values.
type Stats struct {
	Revenue   float64 `json:"revenue"`
	Orders    float64 `json:"orders"`
	AOV       float64 `json:"aov"`
	ErrorRate float64 `json:"error_rate"`
	// Degraded is set when the backend could not be read and the values are zero.
	Degraded bool `json:"degraded"`
}

// KPI is one formatted dashboard card.
type KPI struct {
	Key     string  `json:"key"`
	Label   string  `json:"label"`
	Value   float64 `json:"value"`
	Display string  `json:"display"`
}

// StatsClient is the backend call LoadStats depends on.
type StatsClient interface {
	Stats(ctx context.Context) (map[string]any, error)
}

// ParseStats reads KPI values from a stats payload, accepting the alias names
// used by the different backend versions.
func ParseStats(payload map[string]any) Stats {
	return Stats{
		Revenue:   statValue(payload, "revenue"),
		Orders:    statValue(payload, "orders"),
		AOV:       statValue(payload, "aov"),
		ErrorRate: statValue(payload, "error_rate"),
	}
}

// LoadStats fetches and parses stats. Failures yield zero values.
func LoadStats(ctx context.Context, client StatsClient, logger Logger) Stats {
	if client == nil {
		return Stats{Degraded: true}
	}
	payload, err := client.Stats(ctx)
	if err != nil {
		normalizeLogger(logger).Warn("stats unavailable", "error", newFetchError("stats", err))
		return Stats{Degraded: true}
	}
	return ParseStats(payload)
}

// KPIs formats the stats as dashboard cards.
func (s Stats) KPIs() []KPI {
	return []KPI{
		{Key: "revenue", Label: "Chiffre d’affaires", Value: s.Revenue, Display: FormatAmount(s.Revenue) + " €"},
		{Key: "orders", Label: "Commandes", Value: s.Orders, Display: FormatAmount(s.Orders)},
		{Key: "aov", Label: "Panier moyen", Value: s.AOV, Display: FormatAmount(s.AOV) + " €"},
		{Key: "error_rate", Label: "Taux d’erreur", Value: s.ErrorRate, Display: strconv.FormatFloat(s.ErrorRate, 'f', 1, 64) + " %"},
	}
}

func statValue(payload map[string]any, key string) float64 {
	for _, alias := range statAliases[key] {
		raw, ok := payload[alias]
		if !ok || raw == nil {
			continue
		}
		switch v := raw.(type) {
		case float64:
			return v
		case int:
			return float64(v)
		case string:
			if f, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(v), ",", "."), 64); err == nil {
				return f
			}
		}
	}
	return 0
}

// FormatAmount renders a number with French grouping: 12 345 or 12 345,50.
func FormatAmount(v float64) string {
	negative := v < 0
	if negative {
		v = -v
	}
	whole := int64(v)
	cents := int64((v-float64(whole))*100 + 0.5)
	if cents == 100 {
		whole++
		cents = 0
	}
	digits := strconv.FormatInt(whole, 10)
	var b strings.Builder
	if negative {
		b.WriteByte('-')
	}
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	if cents > 0 {
		fmt.Fprintf(&b, ",%02d", cents)
	}
	return b.String()
}
