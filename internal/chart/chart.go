// Package chart renders billing dashboards for the terminal.
package chart

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/yanqian/billing-dashboard/internal/domain/billing"
)

// Flexoki dark palette.
var (
	colorText    = lipgloss.Color("#FFFCF0")
	colorTextDim = lipgloss.Color("#575653")
	colorAccent  = lipgloss.Color("#3AA99F")
	colorRed     = lipgloss.Color("#D14D41")
	colorOrange  = lipgloss.Color("#DA702C")
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(colorText)
	axisStyle  = lipgloss.NewStyle().Foreground(colorTextDim)
	barStyle   = lipgloss.NewStyle().Foreground(colorAccent)
	hikeStyle  = lipgloss.NewStyle().Foreground(colorRed)
	boxStyle   = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorOrange).
			Padding(0, 1)
)

const minWidth = 30

// Render draws the monthly bar chart followed by the advisory box when the
// dashboard carries a hike and an explanation for it.
func Render(dash billing.Dashboard, width int) string {
	if width < minWidth {
		width = minWidth
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Monthly Billing"))
	b.WriteString("\n\n")

	if len(dash.Records) == 0 {
		b.WriteString(axisStyle.Render("No billing data."))
		b.WriteString("\n")
		return b.String()
	}

	b.WriteString(Bars(dash.Records, dash.Hike != nil, width))

	if dash.Hike != nil && strings.TrimSpace(dash.Advisory) != "" {
		b.WriteString("\n")
		b.WriteString(Advisory(*dash.Hike, dash.Advisory, width))
		b.WriteString("\n")
	}
	return b.String()
}

// Bars renders one horizontal bar per record. When highlightLast is set the
// latest bar uses the hike color.
func Bars(records []billing.Record, highlightLast bool, width int) string {
	if len(records) == 0 {
		return ""
	}

	labelW := 0
	valueW := 0
	peak := 0.0
	for _, r := range records {
		labelW = max(labelW, len(r.Month))
		valueW = max(valueW, len(FormatAmount(r.TotalAmount)))
		peak = math.Max(peak, r.TotalAmount)
	}
	if peak == 0 {
		peak = 1
	}

	barW := width - labelW - valueW - 3
	if barW < 5 {
		barW = 5
	}

	var b strings.Builder
	for i, r := range records {
		n := barLength(r.TotalAmount, peak, barW)
		style := barStyle
		if highlightLast && i == len(records)-1 {
			style = hikeStyle
		}
		b.WriteString(axisStyle.Render(fmt.Sprintf("%-*s", labelW, r.Month)))
		b.WriteString(axisStyle.Render("│"))
		b.WriteString(style.Render(strings.Repeat("█", n)))
		b.WriteString(strings.Repeat(" ", barW-n+1))
		b.WriteString(fmt.Sprintf("%*s", valueW, FormatAmount(r.TotalAmount)))
		b.WriteString("\n")
	}
	return b.String()
}

// Advisory renders the hike summary and explanation in a bordered box.
func Advisory(hike billing.Hike, advisory string, width int) string {
	text := strings.TrimSpace(advisory)
	body := fmt.Sprintf("%s\n%s is %s against a %s average.\n\n%s",
		hikeStyle.Bold(true).Render("Hike Detected"),
		hike.CurrentMonth,
		FormatAmount(hike.Current),
		FormatAmount(hike.Average),
		text,
	)
	return boxStyle.Width(width - 2).Render(body)
}

// FormatAmount prints a currency amount with two decimals.
func FormatAmount(v float64) string {
	return fmt.Sprintf("$%.2f", v)
}

func barLength(v, peak float64, barW int) int {
	if v <= 0 {
		return 0
	}
	n := int(math.Round(v / peak * float64(barW)))
	if n < 1 {
		n = 1
	}
	if n > barW {
		n = barW
	}
	return n
}
