package schema

// NovelFoundation is the structured foundation the model produces before
// any optimization runs: the world, the cast, and the linear plot.
type NovelFoundation struct {
	World      World       `json:"world" jsonschema_description:"The setting of the story"`
	Characters []Character `json:"characters" jsonschema_description:"The three principal characters, protagonist included"`
	BasicPlot  []PlotEvent `json:"basic_plot" jsonschema_description:"The twelve events forming the backbone of the story, in chronological order"`
}

type World struct {
	Name            string   `json:"name" jsonschema_description:"Name of the world or empire the story takes place in"`
	MagicSystem     string   `json:"magic_system" jsonschema_description:"The unique magic system at the heart of the story"`
	PrimaryRaces    []string `json:"primary_races" jsonschema_description:"The three principal races of the setting"`
	CentralConflict string   `json:"central_conflict" jsonschema_description:"The central conflict driving the story"`
}

type Character struct {
	Name         string   `json:"name" jsonschema_description:"Canonical character name"`
	Role         string   `json:"role" jsonschema:"enum=protagonist,enum=mentor,enum=antagonist,enum=supporter" jsonschema_description:"The character's role in the story"`
	Arc          string   `json:"arc" jsonschema_description:"The change or growth this character goes through"`
	Powers       []string `json:"powers" jsonschema_description:"Abilities and talents the character commands"`
	FatalFlaw    string   `json:"fatal_flaw,omitempty" jsonschema_description:"The character's fatal weakness, if any"`
	HiddenAgenda string   `json:"hidden_agenda,omitempty" jsonschema_description:"A concealed goal or motive, if any"`
}

type PlotEvent struct {
	Description     string  `json:"description" jsonschema_description:"A short description of what happens in this event"`
	Type            string  `json:"type" jsonschema_description:"Kind of event (e.g. setup, inciting_incident, betrayal, revelation, climax, resolution)"`
	EmotionalImpact float64 `json:"emotional_impact" jsonschema_description:"Estimated emotional valence of this event for the reader, from -1.0 to 1.0"`
}
