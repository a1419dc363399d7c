package curriculum

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownTopic is returned by Lookup when no topic matches.
var ErrUnknownTopic = errors.New("unknown topic")

// Topic is a practice area a student can pick. The first four are SEA
// content strands; Mixed and Full Test draw from all of them.
type Topic struct {
	ID          string
	Name        string
	Icon        string
	Description string
	Keywords    []string

	// Composite topics span every strand rather than one.
	Composite bool
}

// topics is the catalogue in display order, checked by init.
var topics = []Topic{
	{
		ID:          "number",
		Name:        "Number",
		Icon:        "🔢",
		Description: "Whole numbers, fractions, decimals, percent and number patterns",
		Keywords:    []string{"fraction", "decimal", "percent", "place value", "lcm", "hcf"},
	},
	{
		ID:          "measurement",
		Name:        "Measurement",
		Icon:        "📏",
		Description: "Length, mass, capacity, time, money, perimeter, area and volume",
		Keywords:    []string{"perimeter", "area", "volume", "time", "money"},
	},
	{
		ID:          "geometry",
		Name:        "Geometry",
		Icon:        "📐",
		Description: "Plane shapes, solids, angles, symmetry and nets",
		Keywords:    []string{"angle", "symmetry", "net", "triangle", "solid"},
	},
	{
		ID:          "statistics",
		Name:        "Statistics",
		Icon:        "📊",
		Description: "Reading and drawing graphs, mean, mode and chance",
		Keywords:    []string{"graph", "mean", "mode", "pictograph", "bar chart"},
	},
	{
		ID:          "mixed",
		Name:        "Mixed",
		Icon:        "🎲",
		Description: "Questions drawn from every strand",
		Composite:   true,
	},
	{
		ID:          "full-test",
		Name:        "Full Test",
		Icon:        "📝",
		Description: "SEA-style paper in exam order",
		Composite:   true,
	},
}

// DefaultIcon is shown for topics outside the catalogue.
const DefaultIcon = "📚"

func init() {
	if err := validateTopics(topics); err != nil {
		panic(fmt.Sprintf("curriculum: invalid topic catalogue: %v", err))
	}
}

// AllTopics returns every topic in display order.
func AllTopics() []Topic {
	out := make([]Topic, len(topics))
	copy(out, topics)
	return out
}

// Strands returns the single-strand topics.
func Strands() []Topic {
	var out []Topic
	for _, t := range topics {
		if !t.Composite {
			out = append(out, t)
		}
	}
	return out
}

// Lookup finds a topic by ID or display name, ignoring case and
// surrounding space.
func Lookup(key string) (Topic, error) {
	key = strings.TrimSpace(key)
	for _, t := range topics {
		if strings.EqualFold(t.ID, key) || strings.EqualFold(t.Name, key) {
			return t, nil
		}
	}
	return Topic{}, fmt.Errorf("%w: %q", ErrUnknownTopic, key)
}

// IconFor returns the icon for a topic name, or DefaultIcon.
func IconFor(name string) string {
	if t, err := Lookup(name); err == nil {
		return t.Icon
	}
	return DefaultIcon
}
