package console

import (
	"math/rand/v2"
	"slices"
	"strings"
)

// Interface variants of the admin.
const (
	InterfaceModern  = "modern"
	InterfaceClassic = "classic"
)

// InterfacePaths maps each interface variant to its entry path.
var InterfacePaths = map[string]string{
	InterfaceClassic: "/admin/",
	InterfaceModern:  "/admin/modern/",
}

// ThemeSets lists the named themes per interface. The first entry is the default.
var ThemeSets = map[string][]string{
	InterfaceModern:  {"bleu-moderne", "emeraude", "coucher-soleil", "sombre"},
	InterfaceClassic: {"default", "nostalgie", "ocean", "sunset", "forest", "dark", "liquid-glass"},
}

// Palette is the pool random-color picks from.
var Palette = []string{
	"#4f46e5", "#2563eb", "#0ea5e9", "#14b8a6", "#16a34a",
	"#f59e0b", "#f97316", "#ef4444", "#db2777", "#9333ea",
}

// RandomColor picks a palette color.
func RandomColor() string {
	return Palette[rand.IntN(len(Palette))]
}

// ResolveThemeName returns name when it belongs to the interface's set, else the
// set default.
func ResolveThemeName(iface, name string) string {
	set, ok := ThemeSets[iface]
	if !ok {
		set = ThemeSets[InterfaceModern]
	}
	name = strings.TrimSpace(strings.ToLower(name))
	if slices.Contains(set, name) {
		return name
	}
	return set[0]
}

// ThemeSelection is the resolved look of the console for one viewer.
type ThemeSelection struct {
	Interface string            `json:"interface"`
	Name      string            `json:"name"`
	Mode      Theme             `json:"mode"`
	Primary   string            `json:"primary"`
	Tokens    map[string]string `json:"tokens"`
}

// SelectTheme derives the selection from a preference.
func SelectTheme(iface, name string, pref Preference) ThemeSelection {
	if _, ok := InterfacePaths[iface]; !ok {
		iface = InterfaceModern
	}
	style := StyleFor(pref.Theme, pref.PrimaryColor)
	return ThemeSelection{
		Interface: iface,
		Name:      ResolveThemeName(iface, name),
		Mode:      pref.Theme,
		Primary:   style.Border,
		Tokens: map[string]string{
			"primary":      style.Border,
			"primary_soft": style.Fill,
			"grid":         style.Grid,
			"text_muted":   style.Text,
		},
	}
}

// CSSVariables normalizes token keys into CSS variable names.
func (t ThemeSelection) CSSVariables() map[string]string {
	vars := make(map[string]string, len(t.Tokens))
	for key, value := range t.Tokens {
		if name := normalizeCSSVariable(key); name != "" && value != "" {
			vars[name] = value
		}
	}
	return vars
}

// CSSVariablesInline renders the variables as a style attribute value, sorted
// by name.
func (t ThemeSelection) CSSVariablesInline() string {
	vars := t.CSSVariables()
	names := make([]string, 0, len(vars))
	for name := range vars {
		names = append(names, name)
	}
	slices.Sort(names)
	var b strings.Builder
	for _, name := range names {
		b.WriteString(name)
		b.WriteString(": ")
		b.WriteString(vars[name])
		b.WriteString("; ")
	}
	return strings.TrimSpace(b.String())
}

// BodyClass returns the classes applied to the page body.
func (t ThemeSelection) BodyClass(sidebarCollapsed bool) string {
	classes := []string{"theme-" + t.Name}
	if t.Mode == ThemeDark {
		classes = append(classes, "dark")
	}
	if sidebarCollapsed {
		classes = append(classes, "sidebar-collapsed")
	}
	return strings.Join(classes, " ")
}

func normalizeCSSVariable(key string) string {
	key = strings.TrimSpace(key)
	if key == "" {
		return ""
	}
	if strings.HasPrefix(key, "--") {
		return key
	}
	key = strings.ReplaceAll(key, "_", "-")
	key = strings.ReplaceAll(key, ".", "-")
	return "--" + strings.ToLower(key)
}
