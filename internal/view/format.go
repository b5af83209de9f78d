// Package view maps backend JSON projections to HTML fragments. Every
// function here is pure: no fetching, no DOM, just data in and markup out,
// so the whole layer is unit-testable without a browser.
package view

import (
	"fmt"
	"html/template"
	"time"
)

// Italian calendar names; the backend and the user-facing text share the
// same locale. time.Weekday starts on Sunday.
var (
	weekdayNames = [...]string{"domenica", "lunedì", "martedì", "mercoledì", "giovedì", "venerdì", "sabato"}
	monthNames   = [...]string{"gennaio", "febbraio", "marzo", "aprile", "maggio", "giugno",
		"luglio", "agosto", "settembre", "ottobre", "novembre", "dicembre"}
)

// FormatDate renders an ISO date in the long Italian form, e.g.
// "martedì 1 settembre 2026". Unparseable input is returned as-is.
func FormatDate(iso string) string {
	t, err := time.Parse("2006-01-02", iso)
	if err != nil {
		return iso
	}
	return fmt.Sprintf("%s %d %s %d", weekdayNames[t.Weekday()], t.Day(), monthNames[t.Month()-1], t.Year())
}

// FormatShortDate renders an ISO date or timestamp as DD/MM/YYYY.
func FormatShortDate(iso string) string {
	if len(iso) > 10 {
		iso = iso[:10]
	}
	t, err := time.Parse("2006-01-02", iso)
	if err != nil {
		return iso
	}
	return t.Format("02/01/2006")
}

// FormatTime trims a HH:MM:SS wire time to HH:MM.
func FormatTime(s string) string {
	if len(s) >= 5 {
		return s[:5]
	}
	return s
}

// StatusBadge renders the categorical badge for an appointment status.
// Unknown statuses render as escaped plain text.
func StatusBadge(stato string) template.HTML {
	switch stato {
	case "programmato":
		return `<span class="badge badge-info">Programmato</span>`
	case "completato":
		return `<span class="badge badge-success">Completato</span>`
	case "cancellato":
		return `<span class="badge badge-danger">Cancellato</span>`
	case "in_attesa":
		return `<span class="badge badge-warning">In Attesa</span>`
	default:
		return template.HTML(template.HTMLEscapeString(stato))
	}
}

// PriorityBadge renders the categorical badge for a waiting-list priority.
func PriorityBadge(priorita string) template.HTML {
	switch priorita {
	case "urgente":
		return `<span class="badge badge-danger">Urgente</span>`
	case "alta":
		return `<span class="badge badge-warning">Alta</span>`
	case "media":
		return `<span class="badge badge-info">Media</span>`
	case "bassa":
		return `<span class="badge badge-muted">Bassa</span>`
	default:
		return template.HTML(template.HTMLEscapeString(priorita))
	}
}

// orDash renders an optional wire field, "-" when absent.
func orDash(s *string) string {
	if s == nil || *s == "" {
		return "-"
	}
	return *s
}

// orFallback renders an optional wire field with a caller-chosen fallback.
func orFallback(s *string, fallback string) string {
	if s == nil || *s == "" {
		return fallback
	}
	return *s
}

func orDashInt(n *int) string {
	if n == nil {
		return "-"
	}
	return fmt.Sprintf("%d", *n)
}
