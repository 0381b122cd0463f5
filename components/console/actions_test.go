package console

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseActionKnowsEveryListedName(t *testing.T) {
	attrs := map[string]string{"view": "orders", "chart": "sales", "id": "12"}
	for _, name := range ActionNames {
		action := ParseAction(Element{Action: name, Attrs: attrs})
		require.NotNil(t, action, name)
		assert.NotEqual(t, "acknowledge", action.Name(), name)
	}
}

func TestParseActionMappings(t *testing.T) {
	cases := []struct {
		el   Element
		want Action
	}{
		{Element{Attrs: map[string]string{"view": "users"}}, Navigate{View: "users"}},
		{Element{Action: "go-to-orders"}, Navigate{View: "orders"}},
		{Element{Action: "theme-mode", Checked: true}, SetThemeMode{Theme: ThemeDark, Announce: true}},
		{Element{Action: "theme-mode"}, SetThemeMode{Theme: ThemeLight, Announce: true}},
		{Element{Action: "primary-color", Value: "#ff0000", Attrs: map[string]string{"phase": "input"}}, SetColor{Color: "#ff0000", Preview: true}},
		{Element{Action: "chart-up", Attrs: map[string]string{"chart": "funnel"}}, MoveChart{Chart: "funnel", Delta: -1}},
		{Element{Action: "chart-period", Value: "abc", Attrs: map[string]string{"chart": "sales"}}, SetChartPeriod{Chart: "sales", Period: DefaultPeriod}},
		{Element{Action: "create-order"}, ShowForm{Section: "order"}},
		{Element{Action: "switch-interface"}, SwitchInterface{Target: InterfaceClassic}},
		{Element{Action: "export-data"}, Notify{Topic: "export-data"}},
		{Element{Action: "mystery", Label: " Archiver "}, Acknowledge{Label: "Archiver"}},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ParseAction(tc.el), tc.el.Action)
	}
}

func TestParseActionIgnoresUnlabeledUnknowns(t *testing.T) {
	assert.Nil(t, ParseAction(Element{Action: "mystery"}))
	assert.Nil(t, ParseAction(Element{}))
	assert.Nil(t, ParseAction(Element{Action: "navigate"}))
}
