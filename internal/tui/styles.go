package tui

import "github.com/charmbracelet/lipgloss"

// One Dark Pro color palette
var (
	// Background colors
	ColorBgPrimary   = lipgloss.Color("#282C34")
	ColorBgHighlight = lipgloss.Color("#2C313C")

	// Foreground colors
	ColorFgPrimary   = lipgloss.Color("#ABB2BF")
	ColorFgSecondary = lipgloss.Color("#828997")
	ColorFgMuted     = lipgloss.Color("#636B78")
	ColorFgComment   = lipgloss.Color("#5C6370")

	// Syntax colors
	ColorRed     = lipgloss.Color("#E06C75")
	ColorGreen   = lipgloss.Color("#98C379")
	ColorYellow  = lipgloss.Color("#E5C07B")
	ColorBlue    = lipgloss.Color("#61AFEF")
	ColorMagenta = lipgloss.Color("#C678DD")
	ColorCyan    = lipgloss.Color("#56B6C2")
	ColorOrange  = lipgloss.Color("#D19A66")

	// UI colors
	ColorBorder = lipgloss.Color("#3F4451")
)

// Component styles
var (
	// Header style
	HeaderStyle = lipgloss.NewStyle().
			Foreground(ColorRed).
			Bold(true)

	// Screen body
	BodyStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Padding(0, 1)

	TitleStyle = lipgloss.NewStyle().
			Foreground(ColorMagenta).
			Bold(true)

	// List rows
	SelectedStyle = lipgloss.NewStyle().
			Foreground(ColorFgPrimary).
			Background(ColorBgHighlight).
			Bold(true)

	RowStyle = lipgloss.NewStyle().
			Foreground(ColorFgSecondary)

	PriceStyle = lipgloss.NewStyle().
			Foreground(ColorYellow)

	StrikeStyle = lipgloss.NewStyle().
			Foreground(ColorFgComment).
			Strikethrough(true)

	DiscountStyle = lipgloss.NewStyle().
			Foreground(ColorGreen).
			Bold(true)

	// Cart badge
	BadgeStyle = lipgloss.NewStyle().
			Foreground(ColorBgPrimary).
			Background(ColorOrange).
			Bold(true).
			Padding(0, 1)

	// Spinner overlay
	SpinnerStyle = lipgloss.NewStyle().
			Foreground(ColorCyan).
			Bold(true)

	// Toast line
	ToastSuccessStyle = lipgloss.NewStyle().
				Foreground(ColorGreen).
				Bold(true).
				PaddingLeft(1)

	ToastWarningStyle = lipgloss.NewStyle().
				Foreground(ColorYellow).
				Bold(true).
				PaddingLeft(1)

	ToastErrorStyle = lipgloss.NewStyle().
			Foreground(ColorRed).
			Bold(true).
			PaddingLeft(1)

	// Form styles
	LabelStyle = lipgloss.NewStyle().
			Foreground(ColorBlue)

	InputPromptStyle = lipgloss.NewStyle().
				Foreground(ColorGreen)

	FieldErrorStyle = lipgloss.NewStyle().
			Foreground(ColorRed).
			PaddingLeft(2)

	// Status bar styles
	StatusBarStyle = lipgloss.NewStyle().
			Foreground(ColorFgMuted).
			PaddingLeft(1).
			PaddingRight(1)

	StatusSignedInStyle = lipgloss.NewStyle().
				Foreground(ColorGreen).
				Bold(true)

	StatusGuestStyle = lipgloss.NewStyle().
				Foreground(ColorFgMuted)

	// Help overlay styles
	HelpStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Padding(1, 2)

	HelpTitleStyle = lipgloss.NewStyle().
			Foreground(ColorBlue).
			Bold(true)

	HelpKeyStyle = lipgloss.NewStyle().
			Foreground(ColorYellow)

	HelpDescStyle = lipgloss.NewStyle().
			Foreground(ColorFgPrimary)

	// Error styles
	ErrorStyle = lipgloss.NewStyle().
			Foreground(ColorRed)

	// Success styles
	SuccessStyle = lipgloss.NewStyle().
			Foreground(ColorGreen)

	// Warning styles
	WarningStyle = lipgloss.NewStyle().
			Foreground(ColorYellow)

	// Dimmed/info style for less important messages
	DimStyle = lipgloss.NewStyle().
			Foreground(ColorFgComment)
)
