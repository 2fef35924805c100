package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// View renders the TUI
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	var sections []string

	// Title bar
	sections = append(sections, m.renderTitleBar())

	// Error display
	if m.err != nil {
		sections = append(sections, errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
	}

	// Main content
	if m.status != nil {
		sections = append(sections, m.renderBucket())
		sections = append(sections, m.renderPower())
	}

	// Recent receipts
	if len(m.receipts) > 0 {
		sections = append(sections, m.renderReceipts())
	}

	// Footer
	sections = append(sections, m.renderFooter())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderTitleBar() string {
	title := titleStyle.Render("JOULEFLUX DASHBOARD")

	refreshInfo := fmt.Sprintf("↻ %s", m.config.RefreshInterval)
	if m.loading {
		refreshInfo = "↻ loading..."
	}

	help := helpStyle.Render("q:quit r:refresh ↑↓:scroll")

	// Calculate spacing
	rightPart := fmt.Sprintf("%s | %s", refreshInfo, help)
	spacing := m.width - lipgloss.Width(title) - lipgloss.Width(rightPart) - 2
	if spacing < 1 {
		spacing = 1
	}

	return fmt.Sprintf("%s%s%s", title, strings.Repeat(" ", spacing), helpStyle.Render(rightPart))
}

func (m Model) renderBucket() string {
	pct := m.status.BucketJoules / m.config.BucketScale * 100
	bar := m.renderBar("Budget", pct, 30, getGaugeColor(pct))
	info := fmt.Sprintf("%.1f J", m.status.BucketJoules)

	return fmt.Sprintf("  %s %s", bar, valueStyle.Render(info))
}

func (m Model) renderPower() string {
	var lines []string
	lines = append(lines, sectionHeaderStyle.Render("  Power Draw"))

	// Scale bars so that twice the idle baseline fills half the bar. A rail
	// draw far above its baseline pins the bar and goes red.
	cpuScale := scaleFor(m.status.IdleCPUWatts)
	gpuScale := scaleFor(m.status.IdleGPUWatts)

	cpuPct := m.status.CPUWatts / cpuScale * 100
	gpuPct := m.status.GPUWatts / gpuScale * 100

	cpuBar := m.renderBar("CPU", cpuPct, 16, getPowerColor(cpuPct))
	gpuBar := m.renderBar("GPU", gpuPct, 16, getPowerColor(gpuPct))

	cpuInfo := fmt.Sprintf("%5.1f W (idle %.1f W)", m.status.CPUWatts, m.status.IdleCPUWatts)
	gpuInfo := fmt.Sprintf("%5.1f W (idle %.1f W)", m.status.GPUWatts, m.status.IdleGPUWatts)

	lines = append(lines, fmt.Sprintf("  %s %s", cpuBar, valueStyle.Render(cpuInfo)))
	lines = append(lines, fmt.Sprintf("  %s %s", gpuBar, valueStyle.Render(gpuInfo)))
	lines = append(lines, fmt.Sprintf("  %s %s",
		labelStyle.Render("Net"),
		valueStyle.Render(fmt.Sprintf("%5.1f W above baseline", m.status.NetWatts))))

	return strings.Join(lines, "\n")
}

func scaleFor(idleWatts float64) float64 {
	scale := idleWatts * 4
	if scale < 40 {
		scale = 40
	}
	return scale
}

func (m Model) renderBar(label string, percent float64, width int, color lipgloss.Color) string {
	filled := int(percent / 100 * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}

	filledBar := lipgloss.NewStyle().Foreground(color).Render(strings.Repeat("█", filled))
	emptyBar := progressBarEmptyStyle.Render(strings.Repeat("░", width-filled))

	return fmt.Sprintf("%-6s [%s%s]", labelStyle.Render(label), filledBar, emptyBar)
}

func (m Model) renderReceipts() string {
	var lines []string
	lines = append(lines, sectionHeaderStyle.Render("  Recent Receipts"))

	header := fmt.Sprintf("  %-5s │ %-8s │ %-14s │ %7s │ %6s │ %8s",
		"ID", "Time", "Task", "Joules", "Sec", "Delta")
	lines = append(lines, tableHeaderStyle.Render(header))

	// Calculate visible rows based on table offset
	maxVisible := 8
	start := m.tableOffset
	end := start + maxVisible
	if end > len(m.receipts) {
		end = len(m.receipts)
	}
	if start >= len(m.receipts) {
		start = 0
		end = maxVisible
		if end > len(m.receipts) {
			end = len(m.receipts)
		}
	}

	for _, r := range m.receipts[start:end] {
		taskName := r.Task
		if len(taskName) > 14 {
			taskName = taskName[:11] + "..."
		}

		ts := time.Unix(int64(r.Timestamp), 0).Format("15:04:05")

		row := fmt.Sprintf("  %-5d │ %-8s │ %-14s │ %7.1f │ %6.2f │ %8s",
			r.ID, ts, taskName, r.JoulesCharged, r.DurationSec, formatDelta(r.Delta))
		lines = append(lines, tableCellStyle.Render(row))
	}

	if len(m.receipts) > maxVisible {
		scrollInfo := fmt.Sprintf("  [%d-%d of %d receipts]", start+1, end, len(m.receipts))
		lines = append(lines, helpStyle.Render(scrollInfo))
	}

	return strings.Join(lines, "\n")
}

func formatDelta(delta float64) string {
	if delta == 0 {
		return zeroDeltaStyle.Render("-")
	}
	return positiveDeltaStyle.Render(fmt.Sprintf("+%.4f", delta))
}

func (m Model) renderFooter() string {
	if m.status == nil {
		return ""
	}

	uptime := time.Duration(m.status.UptimeSec * float64(time.Second)).Round(time.Second)
	updated := m.lastUpdated.Format("15:04:05")

	return helpStyle.Render(fmt.Sprintf(
		"  Receipts: %d │ Agent up: %s │ Updated: %s",
		m.status.Receipts,
		uptime,
		updated,
	))
}
