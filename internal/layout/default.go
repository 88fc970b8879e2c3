package layout

import "github.com/seatforge/seatforge/backend-go/internal/ident"

// NewDefaultLayout builds the starting document for a fresh chart: two empty
// seating sections side by side, no seats, scale 1.
func NewDefaultLayout() Layout {
	return Layout{
		Sections: []Section{
			{
				ID:     ident.NewSectionID(),
				Name:   "Section 1",
				Color:  "#7eb3ff",
				X:      100,
				Y:      100,
				Width:  300,
				Height: 200,
				Seats:  []Seat{},
				Type:   TypeSection,
			},
			{
				ID:     ident.NewSectionID(),
				Name:   "Section 2",
				Color:  "#ffb37e",
				X:      450,
				Y:      100,
				Width:  300,
				Height: 200,
				Seats:  []Seat{},
				Type:   TypeSection,
			},
		},
		Scale: 1,
	}
}

// NewSection builds an empty seating section with default placement.
func NewSection(name string) Section {
	return Section{
		ID:     ident.NewSectionID(),
		Name:   name,
		Color:  "#7eb3ff",
		X:      100,
		Y:      100,
		Width:  300,
		Height: 200,
		Seats:  []Seat{},
		Type:   TypeSection,
	}
}

// NewLabelSection builds a text-only label section.
func NewLabelSection(name string) Section {
	return Section{
		ID:     ident.NewLabelID(),
		Name:   name,
		X:      100,
		Y:      100,
		Width:  200,
		Height: 60,
		Seats:  []Seat{},
		Type:   TypeLabel,
	}
}
