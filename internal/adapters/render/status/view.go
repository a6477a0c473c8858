package status

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/bankingrestapi/bank/internal/application"
	"github.com/bankingrestapi/bank/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

const balanceBarWidth = 24

type RenderOptions struct {
	Now time.Time
	// DormantAfter flags accounts not updated for this long. Zero disables it.
	DormantAfter time.Duration
}

func renderView(summary application.Summary, opts RenderOptions, s styles) string {
	lines := []string{
		s.title.Render("Bank Accounts"),
		s.header.Render(fmt.Sprintf("accounts: %d  total balance: %s", summary.Count(), formatAmount(summary.TotalBalance))),
	}

	if summary.Count() == 0 {
		lines = append(lines, s.empty.Render("No accounts yet."))
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	for _, account := range summary.Accounts {
		lines = append(lines, s.section.Render(renderAccount(account, summary, opts, s)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func renderAccount(account domain.Account, summary application.Summary, opts RenderOptions, s styles) string {
	return lipgloss.JoinVertical(lipgloss.Left,
		s.account.Render(accountTitle(account)),
		balanceLine(account, summary, s),
		activityLine(account, opts, s),
	)
}

func balanceLine(account domain.Account, summary application.Summary, s styles) string {
	share := sharePercent(account.Balance, summary.TotalBalance)
	shareStyle := lipgloss.NewStyle().Foreground(interpolateColor(share, 0, 100))

	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		s.balanceKey.Render("balance:"),
		" ",
		renderBalanceBar(account.Balance, summary.LargestBalance, balanceBarWidth, s),
		" ",
		s.amount.Render(formatAmount(account.Balance)),
		" ",
		shareStyle.Render(fmt.Sprintf("(%2.0f%% of total)", share)),
	)
}

func activityLine(account domain.Account, opts RenderOptions, s styles) string {
	line := s.detail.Render(fmt.Sprintf("updated %s", formatRelative(account.UpdatedAt, opts.Now)))
	if isDormant(account, opts) {
		line += " " + s.warning.Render("[dormant]")
	}
	return line
}

func isDormant(account domain.Account, opts RenderOptions) bool {
	if opts.Now.IsZero() || opts.DormantAfter <= 0 || account.UpdatedAt.IsZero() {
		return false
	}
	return opts.Now.Sub(account.UpdatedAt) > opts.DormantAfter
}

func accountTitle(account domain.Account) string {
	return fmt.Sprintf("%s (#%s)", strings.TrimSpace(account.AccountHolderName), account.ID)
}

// renderBalanceBar fills the bar relative to the largest balance shown.
func renderBalanceBar(balance, largest float64, width int, s styles) string {
	if width <= 0 {
		return ""
	}

	fraction := 0.0
	if largest > 0 {
		fraction = balance / largest
	}
	filled := int(math.Round(float64(width) * fraction))
	if filled < 0 {
		filled = 0
	}
	if filled > width {
		filled = width
	}

	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		s.barBracket.Render("["),
		s.barFill.Render(strings.Repeat("=", filled)),
		s.barEmpty.Render(strings.Repeat("-", width-filled)),
		s.barBracket.Render("]"),
	)
}

func sharePercent(balance, total float64) float64 {
	if total <= 0 {
		return 0
	}
	return clampPercent(balance / total * 100)
}

func clampPercent(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// formatAmount renders a balance with two decimals and thousands separators.
func formatAmount(v float64) string {
	raw := fmt.Sprintf("%.2f", math.Abs(v))
	whole, frac, _ := strings.Cut(raw, ".")

	var b strings.Builder
	if v < 0 {
		b.WriteByte('-')
	}
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	b.WriteByte('.')
	b.WriteString(frac)
	return b.String()
}

func formatRelative(at, now time.Time) string {
	if at.IsZero() {
		return "never"
	}
	if now.IsZero() {
		return at.Format(time.RFC3339)
	}

	elapsed := now.Sub(at)
	if elapsed < time.Minute {
		return "just now"
	}
	if elapsed < time.Hour {
		return plural(int(elapsed.Minutes()), "minute") + " ago"
	}
	if elapsed < 24*time.Hour {
		return plural(int(elapsed.Hours()), "hour") + " ago"
	}

	return fmt.Sprintf("%s ago (%s)", plural(int(elapsed.Hours()/24), "day"), at.Format("02 Jan 2006"))
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}

func interpolateColor(value, min, max float64) lipgloss.Color {
	if max == min {
		return lipgloss.Color("255")
	}

	normalized := (value - min) / (max - min)
	if normalized < 0 {
		normalized = 0
	}
	if normalized > 1 {
		normalized = 1
	}

	// ANSI 256 greyscale ramp from 240 (faded) to 255 (bright)
	baseColor := 240.0
	targetColor := 255.0
	colorCode := int(baseColor + (targetColor-baseColor)*normalized)

	return lipgloss.Color(fmt.Sprintf("%d", colorCode))
}
