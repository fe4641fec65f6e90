package widgets

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"piano-leds/color"
	"piano-leds/theme"
)

// RenderLed renders a single LED. Black LEDs are drawn as the off symbol.
func RenderLed(th *theme.Theme, c color.Color) string {
	if c.IsBlack() {
		return lipgloss.NewStyle().Foreground(th.Muted()).Render(string(th.Symbols.LedOff))
	}
	return lipgloss.NewStyle().Foreground(theme.LED(c)).Render(string(th.Symbols.LedLit))
}

// RenderSegment renders one segment as rows of at most width LEDs, each
// row prefixed with label on the first line and padding after.
func RenderSegment(th *theme.Theme, label string, leds []color.Color, width int) string {
	if width <= 0 {
		width = len(leds)
	}
	pad := strings.Repeat(" ", lipgloss.Width(label))
	var lines []string
	for start := 0; start < len(leds) || start == 0; start += width {
		end := min(start+width, len(leds))
		var line strings.Builder
		if start == 0 {
			line.WriteString(label)
		} else {
			line.WriteString(pad)
		}
		for _, c := range leds[start:end] {
			line.WriteString(RenderLed(th, c))
		}
		lines = append(lines, line.String())
		if end == len(leds) {
			break
		}
	}
	return strings.Join(lines, "\n")
}

// RenderLegendItem renders a single legend item: "■ Name - description"
func RenderLegendItem(th *theme.Theme, c color.Color, name, desc string) string {
	swatch := lipgloss.NewStyle().Foreground(theme.LED(c)).Render(string(th.Symbols.Swatch))
	return fmt.Sprintf("  %s %s - %s", swatch, name, desc)
}

// RenderGradient renders colors as a continuous bar of swatches
func RenderGradient(th *theme.Theme, colors []color.Color) string {
	var out strings.Builder
	for _, c := range colors {
		out.WriteString(lipgloss.NewStyle().Foreground(theme.LED(c)).Render(string(th.Symbols.Swatch)))
	}
	return out.String()
}
