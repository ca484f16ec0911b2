package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/litescript/ls-saucer/internal/astro"
	"github.com/litescript/ls-saucer/internal/body"
	"github.com/litescript/ls-saucer/internal/craft"
	"github.com/litescript/ls-saucer/internal/state"
)

func runeKey(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

// testSnapshot places the craft at the origin facing -Z with a procedural
// rock ahead and a two-body group off to the side.
func testSnapshot() state.Snapshot {
	c := craft.New(42)
	c.Position = astro.Vec3{}
	return state.Snapshot{
		Craft: state.CraftView{
			Position: c.Position,
			Forward:  c.Forward(),
			Camera:   c.Camera(),
			State:    craft.Flying,
		},
		Message: craft.HelpMessage,
		Nebula:  body.Color{R: 0.05, G: 0.02, B: 0.1},
		Active: []state.BodyView{
			{ID: "rock", Name: "Rock", Kind: body.KindProcedural, Position: astro.Vec3{Z: -300}, Radius: 80, Color: body.Color{R: 0.5, G: 0.4, B: 0.3}},
		},
		Groups: []state.GroupView{{
			Name:   "Helios",
			Anchor: astro.Vec3{X: 900, Z: 900},
			Sun:    "Helios",
			Bodies: []state.BodyView{
				{ID: "sun", Name: "Helios", Kind: body.KindSun, Group: "Helios", Position: astro.Vec3{X: 900, Z: 900}, Radius: 100, Color: body.Color{R: 1, G: 0.9, B: 0.3}},
				{ID: "far", Name: "Far", Kind: body.KindPlanet, Group: "Helios", Position: astro.Vec3{X: 1300, Z: 900}, Radius: 40, Color: body.Color{R: 0.2, G: 0.5, B: 1},
					Rings: &body.Rings{OuterFactor: 1.8, InnerColor: body.Color{R: 1, G: 1, B: 1}, OuterColor: body.Color{R: 0.5, G: 0.5, B: 0.5}}},
			},
		}},
	}
}

func containsRune(s string, r rune) bool {
	for _, c := range s {
		if c == r {
			return true
		}
	}
	return false
}
