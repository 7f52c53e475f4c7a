// Package ui provides the HUD and control panel drawn over the simulation.
package ui

import rl "github.com/gen2brain/raylib-go/raylib"

// Theme holds UI styling constants.
type Theme struct {
	PanelBg        rl.Color
	PanelBorder    rl.Color
	SectionHeader  rl.Color
	LabelColor     rl.Color
	ValueColor     rl.Color
	TextColor      rl.Color
	StatusColor    rl.Color
	LegendColor    rl.Color
	HealthBg       rl.Color
	HealthFill     rl.Color
	Padding        int32
	LineHeight     int32
	ButtonHeight   int32
	FontSize       int32
	HeaderFontSize int32
	HUDFontSize    int32
}

// DefaultTheme returns the default UI theme.
func DefaultTheme() Theme {
	return Theme{
		PanelBg:        rl.Color{R: 20, G: 25, B: 30, A: 220},
		PanelBorder:    rl.Color{R: 60, G: 70, B: 80, A: 255},
		SectionHeader:  rl.Yellow,
		LabelColor:     rl.LightGray,
		ValueColor:     rl.White,
		TextColor:      rl.White,
		StatusColor:    rl.Yellow,
		LegendColor:    rl.Color{R: 220, G: 220, B: 220, A: 200},
		HealthBg:       rl.Color{R: 255, G: 0, B: 0, A: 255},
		HealthFill:     rl.Color{R: 0, G: 255, B: 0, A: 255},
		Padding:        10,
		LineHeight:     16,
		ButtonHeight:   24,
		FontSize:       12,
		HeaderFontSize: 14,
		HUDFontSize:    20,
	}
}
