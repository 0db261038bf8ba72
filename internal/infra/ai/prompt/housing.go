package prompt

import (
	"fmt"
	"strings"
)

const (
	NoLocation = "No location given."
	NoDetails  = "No additional details provided."
)

// housingRubric tells the model the one JSON object we expect. Field names
// here must stay in sync with report.fieldTable.
const housingRubric = `You are a housing safety and tenant-rights expert. Review the images and respond with one minified JSON object only. No prose, no markdown, no code fences.
Required JSON shape:
{
  "summary": "200-250 word plain-language explanation of what the image likely shows, possible hazards, health concerns and urgency. If unclear, list possible interpretations.",
  "rights_summary": "Key tenant rights in the user's city/state: habitability rules, repair timelines, anti-retaliation protections, emergency repair options and landlord entry rules. Keep it simple and clear.",
  "applicable_laws": [
    "Main statutes or codes that commonly apply to this issue in the user's location, each with a short note on why it matters."
  ],
  "actions": [
    "5-8 practical steps for the tenant: what to do now, how to request repairs, when to escalate, how to stay protected from retaliation."
  ],
  "landlord_message": "Short, polite message describing the issue, referencing the housing standard and requesting a repair timeline.",
  "documentation": "What to record: photos (angles and close-ups), timestamps, notes about when the issue started or worsened, communication logs, receipts, health symptoms if relevant.",
  "evidence_checklist": [
    "Wide and close-up photos",
    "Location/context shot",
    "Video if the issue is active (dripping, sparking, pests)",
    "Measurements (size, spread)",
    "Timeline notes"
  ],
  "clinic_links": [
    {"name": "Nearest legal aid or tenant clinic", "link": "https://www.google.com/maps/search/legal+aid+clinic+<city_or_zip>"}
  ]
}`

// Build renders the analysis prompt. location and details are interpolated
// verbatim; blank values get a placeholder.
func Build(location, details string) string {
	if strings.TrimSpace(location) == "" {
		location = NoLocation
	}
	if strings.TrimSpace(details) == "" {
		details = NoDetails
	}

	var b strings.Builder
	b.WriteString(housingRubric)
	fmt.Fprintf(&b, "\n\nLocation context: %s\n", location)
	fmt.Fprintf(&b, "Tenant notes: %s\n", details)
	b.WriteString("If you are unsure of exact laws, provide the best general housing safety laws for the given location. Keep lists concise.")
	return b.String()
}
