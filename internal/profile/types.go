package profile

type BigFiveTrait struct {
	Score       int    `json:"score" yaml:"score"`
	Explanation string `json:"explanation" yaml:"explanation"`
}

type BigFive struct {
	Openness          BigFiveTrait `json:"openness" yaml:"openness"`
	Conscientiousness BigFiveTrait `json:"conscientiousness" yaml:"conscientiousness"`
	Extraversion      BigFiveTrait `json:"extraversion" yaml:"extraversion"`
	Agreeableness     BigFiveTrait `json:"agreeableness" yaml:"agreeableness"`
	Neuroticism       BigFiveTrait `json:"neuroticism" yaml:"neuroticism"`
}

type CommunicationStyle struct {
	Tone       string `json:"tone" yaml:"tone"`
	Speed      string `json:"speed" yaml:"speed"`
	Complexity string `json:"complexity" yaml:"complexity"`
	Vocabulary string `json:"vocabulary" yaml:"vocabulary"`
}

// EmotionalProfile scores are 0-100.
type EmotionalProfile struct {
	Positivity int `json:"positivity" yaml:"positivity"`
	Toxicity   int `json:"toxicity" yaml:"toxicity"`
	Empathy    int `json:"empathy" yaml:"empathy"`
}

// ToxicForm is one kind of hostility with a quote from the log.
type ToxicForm struct {
	Form    string `json:"form" yaml:"form"`
	Example string `json:"example" yaml:"example"`
}

type ToxicityReport struct {
	Score         int         `json:"score" yaml:"score"`
	Level         string      `json:"level" yaml:"level"`
	Traits        []string    `json:"traits" yaml:"traits"`
	Explanation   string      `json:"explanation" yaml:"explanation"`
	SpecificForms []ToxicForm `json:"specificForms" yaml:"specific_forms"`
}

// Profile is the personality portrait of one author. It is only as good as
// the model that wrote it.
type Profile struct {
	Archetype            string             `json:"archetype" yaml:"archetype"`
	ArchetypeDescription string             `json:"archetypeDescription" yaml:"archetype_description"`
	PersonalityTraits    []string           `json:"personalityTraits" yaml:"personality_traits"`
	MBTI                 string             `json:"mbti" yaml:"mbti"`
	BigFive              BigFive            `json:"bigFive" yaml:"big_five"`
	CommunicationStyle   CommunicationStyle `json:"communicationStyle" yaml:"communication_style"`
	EmotionalProfile     EmotionalProfile   `json:"emotionalProfile" yaml:"emotional_profile"`
	Toxicity             ToxicityReport     `json:"toxicityAnalysis" yaml:"toxicity_analysis"`
	HiddenDrives         []string           `json:"hiddenDrives" yaml:"hidden_drives"`
	Summary              string             `json:"summary" yaml:"summary"`
	SystemInstruction    string             `json:"systemInstruction" yaml:"system_instruction"`
}

type Compatibility struct {
	Score              int      `json:"score" yaml:"score"`
	RelationshipHeader string   `json:"relationshipHeader" yaml:"relationship_header"`
	Synergy            []string `json:"synergy" yaml:"synergy"`
	Conflicts          []string `json:"conflicts" yaml:"conflicts"`
	Summary            string   `json:"summary" yaml:"summary"`
}
