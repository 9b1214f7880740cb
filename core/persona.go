package core

// Color is a palette entry assigned to a persona. Hex is a "#rrggbb" value.
type Color struct {
	Name string `json:"name" yaml:"name"`
	Hex  string `json:"hex" yaml:"hex"`
}

// CommunicationStyle is a named preset from the style catalog controlling the
// reply length band and tone of a persona.
type CommunicationStyle struct {
	ID            string `json:"id" yaml:"id"`
	Name          string `json:"name" yaml:"name"`
	Description   string `json:"description" yaml:"description"`
	WordMin       int    `json:"wordMin" yaml:"wordMin"`
	WordMax       int    `json:"wordMax" yaml:"wordMax"`
	IntroTemplate string `json:"introTemplate" yaml:"introTemplate"`
}

// Persona is a simulated panel participant. It starts as a skeleton after the
// batched descriptor request and is filled in by enrichment; AvatarURL may
// attach later.
type Persona struct {
	ID                  string `json:"id"`
	FirstName           string `json:"firstName"`
	ShortDescription    string `json:"shortDescription"`
	FullPersonality     string `json:"fullPersonality"`
	PhysicalDescription string `json:"physicalDescription"`
	CommunicationStyle  string `json:"communicationStyle"`
	IntroMessage        string `json:"introMessage"`
	AvatarURL           string `json:"avatarUrl,omitempty"`
	Color               Color  `json:"color"`
}

// FindPersona returns the persona with the given id.
func FindPersona(personas []Persona, id string) (Persona, bool) {
	for _, p := range personas {
		if p.ID == id {
			return p, true
		}
	}
	return Persona{}, false
}
