package model

// Category is the coarse topic label of a timeline item.
type Category string

const CategoryGeneral Category = "general"

// TimelineItem is one aggregated event of a timeline.
type TimelineItem struct {
	ID          string   `json:"id"`
	DateText    string   `json:"date_text"`
	DateISO     *string  `json:"date_iso,omitempty"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	People      []string `json:"people"`
	Locations   []string `json:"locations"`
	Category    Category `json:"category"`
	Importance  float64  `json:"importance"`
	Confidence  float64  `json:"confidence"`
}

// HasDate reports whether the item carries a resolved ISO date.
func (t *TimelineItem) HasDate() bool {
	return t.DateISO != nil && *t.DateISO != ""
}

// Text returns the title followed by the description, the text relation markers are searched in.
func (t *TimelineItem) Text() string {
	if t.Description == "" {
		return t.Title
	}
	return t.Title + "\n" + t.Description
}
