package report

// DefaultMIMEType is assumed for images submitted without a MIME type.
const DefaultMIMEType = "image/jpeg"

// Image is one submitted photo: base64 payload plus MIME type.
type Image struct {
	Data     string `json:"data"`
	MimeType string `json:"mimeType"`
}

// Submission is the tenant-provided bundle sent for analysis.
type Submission struct {
	Images   []Image `json:"images"`
	Details  string  `json:"details"`
	Location string  `json:"location"`
}

// ClinicLink is a legal-aid pointer suggested by the model.
type ClinicLink struct {
	Name string `json:"name"`
	Link string `json:"link"`
}

// Report is the canonical normalized analysis. Every field is always
// populated with a type-correct value; slices are never nil.
type Report struct {
	Summary           string       `json:"summary"`
	RightsSummary     string       `json:"rightsSummary"`
	ApplicableLaws    []string     `json:"applicableLaws"`
	Actions           []string     `json:"actions"`
	LandlordMessage   string       `json:"landlordMessage"`
	Documentation     string       `json:"documentation"`
	EvidenceChecklist []string     `json:"evidenceChecklist"`
	ClinicLinks       []ClinicLink `json:"clinicLinks"`
	Raw               string       `json:"raw"`
}

// Empty returns a report with every field defaulted.
func Empty() Report {
	return Report{
		ApplicableLaws:    []string{},
		Actions:           []string{},
		EvidenceChecklist: []string{},
		ClinicLinks:       []ClinicLink{},
	}
}

// Analysis is the response envelope of POST /api/analyze.
type Analysis struct {
	Summary string `json:"summary"`
	Report  Report `json:"report"`
}
