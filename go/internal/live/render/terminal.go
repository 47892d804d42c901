package render

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mcdev12/liveworkshop/go/internal/models"
)

// Terminal draws v for a terminal of the given width.
func Terminal(v View, width int) string {
	s := newStyles()

	var body string
	switch v.Mode {
	case models.DisplayModeFocus:
		body = focusView(v, s)
	case models.DisplayModePause:
		body = pauseView(v, s)
	default:
		body = standardView(v, width, s)
	}

	if width > 0 {
		return lipgloss.PlaceHorizontal(width, lipgloss.Center, body)
	}
	return body
}

func standardView(v View, width int, s styles) string {
	lines := []string{slideLine(v, s)}
	lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top,
		s.phase.Render(v.PhaseLabel),
		"  ",
		s.clock.Render(v.Clock),
	))

	if v.Total > 0 {
		barWidth := width - 2
		if barWidth <= 0 || barWidth > 40 {
			barWidth = 40
		}
		lines = append(lines, progressBar(v.Progress, barWidth, s))
	}

	if line := alarmLine(v, s); line != "" {
		lines = append(lines, line)
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func focusView(v View, s styles) string {
	lines := []string{
		s.focusClock.Render(v.Clock),
		s.phase.Render(v.PhaseLabel),
	}
	if line := alarmLine(v, s); line != "" {
		lines = append(lines, line)
	}
	return lipgloss.JoinVertical(lipgloss.Center, lines...)
}

func pauseView(v View, s styles) string {
	lines := []string{s.pause.Render("Break")}
	if v.Slide != nil {
		lines = append(lines, s.slideMeta.Render("Up next: "+v.Slide.Title))
	}
	return lipgloss.JoinVertical(lipgloss.Center, lines...)
}

func slideLine(v View, s styles) string {
	if v.Slide == nil {
		return s.slideMeta.Render("No slide")
	}
	return lipgloss.JoinHorizontal(lipgloss.Top,
		s.slide.Render(v.Slide.Title),
		s.slideMeta.Render(fmt.Sprintf("  (%d/%d)", v.Slide.Index+1, v.SlideCount)),
	)
}

func alarmLine(v View, s styles) string {
	switch {
	case v.AlarmAudible:
		return s.alarm.Render("ALARM")
	case v.AlarmActive:
		return s.muted.Render("alarm silenced")
	}
	return ""
}

func progressBar(progress float64, width int, s styles) string {
	filled := int(math.Round(float64(width) * clamp(progress, 0, 1)))
	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		s.barBracket.Render("["),
		s.barFill.Render(strings.Repeat("=", filled)),
		s.barEmpty.Render(strings.Repeat("-", width-filled)),
		s.barBracket.Render("]"),
	)
}
