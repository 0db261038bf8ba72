package report

import (
	"encoding/json"
	"errors"
	"net/url"
	"sort"
	"strconv"
	"strings"
)

var errNotObject = errors.New("model output is not a JSON object")

// fieldRule resolves one canonical Report field from the model output.
// Keys are tried in order and the first one that yields a non-empty value wins.
type fieldRule struct {
	Field string
	Keys  []string
	apply func(r *Report, v any) bool
}

var fieldTable = []fieldRule{
	{Field: "summary", Keys: []string{"summary"}, apply: func(r *Report, v any) bool {
		r.Summary = asText(v)
		return r.Summary != ""
	}},
	{Field: "rightsSummary", Keys: []string{"rights_summary", "rightsSummary"}, apply: func(r *Report, v any) bool {
		r.RightsSummary = asText(v)
		return r.RightsSummary != ""
	}},
	{Field: "applicableLaws", Keys: []string{"applicable_laws", "applicableLaws", "laws"}, apply: func(r *Report, v any) bool {
		r.ApplicableLaws = asList(v)
		return len(r.ApplicableLaws) > 0
	}},
	{Field: "actions", Keys: []string{"actions", "steps"}, apply: func(r *Report, v any) bool {
		r.Actions = asList(v)
		return len(r.Actions) > 0
	}},
	{Field: "landlordMessage", Keys: []string{"landlord_message", "landlordMessage"}, apply: func(r *Report, v any) bool {
		r.LandlordMessage = asText(v)
		return r.LandlordMessage != ""
	}},
	{Field: "documentation", Keys: []string{"documentation"}, apply: func(r *Report, v any) bool {
		r.Documentation = asText(v)
		return r.Documentation != ""
	}},
	{Field: "evidenceChecklist", Keys: []string{"evidence_checklist", "evidenceChecklist", "checklist"}, apply: func(r *Report, v any) bool {
		r.EvidenceChecklist = asList(v)
		return len(r.EvidenceChecklist) > 0
	}},
	{Field: "clinicLinks", Keys: []string{"clinic_links", "clinicLinks", "clinics"}, apply: func(r *Report, v any) bool {
		r.ClinicLinks = asLinks(v)
		return len(r.ClinicLinks) > 0
	}},
}

var (
	labelKeys  = []string{"law", "name", "title", "statute", "code", "citation"}
	detailKeys = []string{"description", "why", "reason", "details", "summary", "relevance"}
	nameKeys   = []string{"name", "title", "displayName"}
	linkKeys   = []string{"link", "url", "href", "website", "uri"}
)

// Normalize turns raw model output into a fully populated Report.
// A parse error is returned for logging only; the report is usable either way,
// with the summary falling back to the raw text.
func Normalize(raw string) (Report, error) {
	r := Empty()
	r.Raw = raw

	obj, err := ParseObject(raw)
	if err == nil {
		for _, rule := range fieldTable {
			for _, key := range rule.Keys {
				v, ok := obj[key]
				if !ok || v == nil {
					continue
				}
				if rule.apply(&r, v) {
					break
				}
			}
		}
		FillDefaults(&r)
	}

	if r.Summary == "" {
		r.Summary = strings.TrimSpace(raw)
	}
	return r, err
}

// ParseObject decodes model output into a generic object. Code fences are
// stripped and a top-level array holding one object is unwrapped.
func ParseObject(raw string) (map[string]any, error) {
	text := StripCodeFences(raw)
	if text == "" {
		return nil, errors.New("model output is empty")
	}

	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if rest := strings.TrimSpace(text[dec.InputOffset():]); rest != "" {
		return nil, errors.New("model output has trailing data after the JSON value")
	}

	switch t := v.(type) {
	case map[string]any:
		return t, nil
	case []any:
		if len(t) > 0 {
			if m, ok := t[0].(map[string]any); ok {
				return m, nil
			}
		}
	}
	return nil, errNotObject
}

// StripCodeFences removes a surrounding markdown fence the model may add
// despite being told not to.
func StripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```JSON")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// FillDefaults replaces nil slices with empty ones so the report never
// serialises a null.
func FillDefaults(r *Report) {
	if r.ApplicableLaws == nil {
		r.ApplicableLaws = []string{}
	}
	if r.Actions == nil {
		r.Actions = []string{}
	}
	if r.EvidenceChecklist == nil {
		r.EvidenceChecklist = []string{}
	}
	if r.ClinicLinks == nil {
		r.ClinicLinks = []ClinicLink{}
	}
}

func asText(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	case []any:
		return strings.Join(asList(t), "\n")
	case map[string]any:
		return entryText(t, "\n")
	}
	return ""
}

func asList(v any) []string {
	items, ok := v.([]any)
	if !ok {
		items = []any{v}
	}
	out := make([]string, 0, len(items))
	for _, it := range items {
		var s string
		if m, ok := it.(map[string]any); ok {
			s = entryText(m, "; ")
		} else {
			s = asText(it)
		}
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

func asLinks(v any) []ClinicLink {
	items, ok := v.([]any)
	if !ok {
		items = []any{v}
	}
	out := make([]ClinicLink, 0, len(items))
	for _, it := range items {
		if l, ok := linkFrom(it); ok {
			out = append(out, l)
		}
	}
	return out
}

func linkFrom(v any) (ClinicLink, bool) {
	var l ClinicLink
	switch t := v.(type) {
	case map[string]any:
		l.Name = firstText(t, nameKeys)
		if link := firstText(t, linkKeys); isWebURL(link) {
			l.Link = link
		} else if l.Name == "" {
			l.Name = link
		}
	case string:
		s := strings.TrimSpace(t)
		if isWebURL(s) {
			l.Link = s
		} else {
			l.Name = s
		}
	}
	return l, l.Name != "" || l.Link != ""
}

// entryText renders an object entry as "label: detail" when the usual keys
// are present, otherwise as its sorted key/value pairs.
func entryText(m map[string]any, sep string) string {
	label := firstText(m, labelKeys)
	detail := firstText(m, detailKeys)
	switch {
	case label != "" && detail != "":
		return label + ": " + detail
	case label != "":
		return label
	case detail != "":
		return detail
	}

	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		if s := asText(m[k]); s != "" {
			parts = append(parts, k+": "+s)
		}
	}
	return strings.Join(parts, sep)
}

func firstText(m map[string]any, keys []string) string {
	for _, k := range keys {
		if v, ok := m[k]; ok {
			if s := asText(v); s != "" {
				return s
			}
		}
	}
	return ""
}

// isWebURL accepts absolute http and https URLs only.
func isWebURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil || u.Host == "" {
		return false
	}
	scheme := strings.ToLower(u.Scheme)
	return scheme == "http" || scheme == "https"
}
