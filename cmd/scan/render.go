package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/bryanwahyu/tenant-scan/internal/domain/clinics"
	"github.com/bryanwahyu/tenant-scan/internal/domain/report"
)

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// renderAnalysis prints the report sections that carry content.
func renderAnalysis(w io.Writer, a report.Analysis) error {
	r := a.Report
	var b strings.Builder

	section(&b, "Summary", firstNonEmpty(r.Summary, a.Summary))
	section(&b, "Your rights", r.RightsSummary)
	list(&b, "Applicable laws", r.ApplicableLaws)
	list(&b, "What to do", r.Actions)
	section(&b, "Message to your landlord", r.LandlordMessage)
	section(&b, "Documentation", r.Documentation)
	list(&b, "Evidence checklist", r.EvidenceChecklist)

	if len(r.ClinicLinks) > 0 {
		b.WriteString("Legal help\n")
		for _, l := range r.ClinicLinks {
			switch {
			case l.Name != "" && l.Link != "":
				fmt.Fprintf(&b, "  - %s <%s>\n", l.Name, l.Link)
			case l.Link != "":
				fmt.Fprintf(&b, "  - %s\n", l.Link)
			default:
				fmt.Fprintf(&b, "  - %s\n", l.Name)
			}
		}
		b.WriteString("\n")
	}

	_, err := io.WriteString(w, strings.TrimRight(b.String(), "\n")+"\n")
	return err
}

func renderClinics(w io.Writer, list []clinics.Clinic) error {
	if len(list) == 0 {
		_, err := io.WriteString(w, "No clinics found nearby.\n")
		return err
	}
	var b strings.Builder
	for i, c := range list {
		fmt.Fprintf(&b, "%d. %s", i+1, firstNonEmpty(c.DisplayName, "(unnamed)"))
		if c.Rating != nil {
			fmt.Fprintf(&b, " (%.1f)", *c.Rating)
		}
		b.WriteString("\n")
		if c.FormattedAddress != "" {
			fmt.Fprintf(&b, "   %s\n", c.FormattedAddress)
		}
		fmt.Fprintf(&b, "   %.6f, %.6f\n", c.Location.Latitude, c.Location.Longitude)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func section(b *strings.Builder, title, body string) {
	if strings.TrimSpace(body) == "" {
		return
	}
	fmt.Fprintf(b, "%s\n%s\n\n", title, indent(body))
}

func list(b *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	b.WriteString(title + "\n")
	for _, it := range items {
		fmt.Fprintf(b, "  - %s\n", it)
	}
	b.WriteString("\n")
}

func indent(s string) string {
	return "  " + strings.ReplaceAll(strings.TrimSpace(s), "\n", "\n  ")
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
