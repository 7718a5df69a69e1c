package model

import (
	"bytes"
	"encoding/json"
)

// Findings is the findings_json payload: either *SuccessFindings or
// *FailureFindings.
type Findings interface {
	isFindings()
}

// SuccessFindings is the payload of a completed analysis.
type SuccessFindings struct {
	OverallScore  int       `json:"overall_score"`
	Sections      []Section `json:"sections"`
	InterviewPack []string  `json:"interview_pack,omitempty"`
}

// FailureFindings is the payload of a failed analysis.
type FailureFindings struct {
	Error string `json:"error"`
}

func (*SuccessFindings) isFindings() {}
func (*FailureFindings) isFindings() {}

// DecodeFindings classifies a raw findings_json payload by shape rather
// than trusting the report status. A "sections" JSON array marks success;
// an "error" JSON string marks failure. Anything else, including null and
// payloads whose fields have the wrong types, yields nil.
func DecodeFindings(raw json.RawMessage) Findings {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '{' {
		return nil
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil
	}

	if sections, ok := fields["sections"]; ok && isJSONArray(sections) {
		var s SuccessFindings
		if err := json.Unmarshal(raw, &s); err == nil {
			if s.Sections == nil {
				s.Sections = []Section{}
			}
			return &s
		}
		// Sections present but elements malformed: salvage what decodes.
		return decodeSuccessLenient(fields)
	}

	if msg, ok := fields["error"]; ok {
		var text string
		if err := json.Unmarshal(msg, &text); err == nil {
			return &FailureFindings{Error: text}
		}
	}
	return nil
}

func isJSONArray(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && raw[0] == '['
}

// decodeSuccessLenient keeps every section and check that decodes on its
// own and drops the rest.
func decodeSuccessLenient(fields map[string]json.RawMessage) Findings {
	s := &SuccessFindings{Sections: []Section{}}
	_ = json.Unmarshal(fields["overall_score"], &s.OverallScore)
	_ = json.Unmarshal(fields["interview_pack"], &s.InterviewPack)

	var rawSections []json.RawMessage
	if err := json.Unmarshal(fields["sections"], &rawSections); err != nil {
		return s
	}
	for _, rs := range rawSections {
		var sec struct {
			Name   string            `json:"name"`
			Score  int               `json:"score"`
			Checks []json.RawMessage `json:"checks"`
		}
		if err := json.Unmarshal(rs, &sec); err != nil {
			continue
		}
		out := Section{Name: sec.Name, Score: sec.Score, Checks: []Check{}}
		for _, rc := range sec.Checks {
			var c Check
			if err := json.Unmarshal(rc, &c); err == nil {
				out.Checks = append(out.Checks, c)
			}
		}
		s.Sections = append(s.Sections, out)
	}
	return s
}
