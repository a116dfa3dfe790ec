package course

import "encoding/json"

// legacyRequiredSession is the nested form older optimizer builds used for
// tutorials and labs.
type legacyRequiredSession struct {
	CRN         string            `json:"crn"`
	CourseCode  string            `json:"courseCode"`
	Title       string            `json:"title"`
	Section     string            `json:"section"`
	Instructor  string            `json:"instructor"`
	SectionType string            `json:"sectionType"`
	Times       []SessionInterval `json:"times"`
	Location    string            `json:"location"`
	IsRequired  bool              `json:"isRequired"`
}

type legacyCourse struct {
	ScheduledCourse
	RequiredSessions []legacyRequiredSession `json:"requiredSessions"`
}

// DecodeSchedule decodes a schedule payload, flattening nested
// requiredSessions into standalone required-session courses appended after
// the lectures.
func DecodeSchedule(data json.RawMessage) ([]ScheduledCourse, error) {
	if len(data) == 0 || string(data) == "null" {
		return nil, nil
	}
	var raw []legacyCourse
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	return flatten(raw), nil
}

// DecodeAlternatives decodes a list of schedules.
func DecodeAlternatives(data json.RawMessage) ([][]ScheduledCourse, error) {
	if len(data) == 0 || string(data) == "null" {
		return nil, nil
	}
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	out := make([][]ScheduledCourse, 0, len(raw))
	for _, r := range raw {
		s, err := DecodeSchedule(r)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// flatten converts the nested legacy layout.
func flatten(raw []legacyCourse) []ScheduledCourse {
	out := make([]ScheduledCourse, 0, len(raw))
	seen := map[string]bool{}
	for _, lc := range raw {
		out = append(out, lc.ScheduledCourse)
		seen[lc.CourseCode] = true
	}
	for _, lc := range raw {
		for _, rs := range lc.RequiredSessions {
			if rs.CourseCode == "" || seen[rs.CourseCode] {
				continue
			}
			seen[rs.CourseCode] = true
			out = append(out, ScheduledCourse{
				CourseCode:        rs.CourseCode,
				Title:             rs.Title,
				Instructor:        rs.Instructor,
				SectionType:       rs.SectionType,
				Times:             rs.Times,
				IsRequiredSession: true,
				RequiredFor:       lc.CourseCode,
			})
		}
	}
	return out
}
