package theme

import "github.com/charmbracelet/lipgloss"

type Palette struct {
	Primary      lipgloss.Color
	PrimaryLight lipgloss.Color
	PrimaryDark  lipgloss.Color

	Background lipgloss.Color
	Card       lipgloss.Color
	Header     lipgloss.Color

	Text          lipgloss.Color
	TextSecondary lipgloss.Color
	TextMuted     lipgloss.Color

	Border  lipgloss.Color
	Divider lipgloss.Color

	Success lipgloss.Color
	Warning lipgloss.Color
	Error   lipgloss.Color
	Info    lipgloss.Color

	InputBackground lipgloss.Color

	Spacing Spacing
	Radius  Radius
}

// Spacing and Radius are in the original pixel units; the terminal views
// divide by Spacing.Unit to get cells.
type Spacing struct {
	XS, SM, MD, LG, XL int
}

// Unit is how many spacing points make one terminal cell.
func (Spacing) Unit() int { return 8 }

// Cells converts a spacing value to terminal cells.
func (sp Spacing) Cells(v int) int {
	return v / sp.Unit()
}

type Radius struct {
	SM, MD, LG, XL int
}

var commonSpacing = Spacing{XS: 4, SM: 8, MD: 16, LG: 24, XL: 32}

var commonRadius = Radius{SM: 8, MD: 12, LG: 16, XL: 24}

var LightPalette = Palette{
	Primary:      "#407BFF",
	PrimaryLight: "#6B9AFF",
	PrimaryDark:  "#2D5FCC",

	Background: "#F5F7FB",
	Card:       "#FFFFFF",
	Header:     "#FFFFFF",

	Text:          "#1F2937",
	TextSecondary: "#374151",
	TextMuted:     "#6B7280",

	Border:  "#E5E7EB",
	Divider: "#F3F4F6",

	Success: "#2ECC71",
	Warning: "#FF9F43",
	Error:   "#FF6B6B",
	Info:    "#8B5CF6",

	InputBackground: "#F9FAFB",

	Spacing: commonSpacing,
	Radius:  commonRadius,
}

var DarkPalette = Palette{
	Primary:      "#407BFF",
	PrimaryLight: "#6B9AFF",
	PrimaryDark:  "#2D5FCC",

	Background: "#0F172A",
	Card:       "#1E293B",
	Header:     "#1E293B",

	Text:          "#F1F5F9",
	TextSecondary: "#CBD5E1",
	TextMuted:     "#94A3B8",

	Border:  "#334155",
	Divider: "#1E293B",

	Success: "#2ECC71",
	Warning: "#FF9F43",
	Error:   "#FF6B6B",
	Info:    "#8B5CF6",

	InputBackground: "#334155",

	Spacing: commonSpacing,
	Radius:  commonRadius,
}
