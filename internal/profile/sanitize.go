package profile

import (
	"math"
	"strconv"
	"strings"
)

// neutralScore stands in for a score the model did not give as a number.
const neutralScore = 50

// normalizeScore maps a model-supplied score onto 0-100. Models sometimes
// answer on a 0-1 scale, so values in (0, 1] are scaled up.
func normalizeScore(v any) int {
	var f float64
	switch x := v.(type) {
	case float64:
		f = x
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return neutralScore
		}
		f = parsed
	default:
		return neutralScore
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return neutralScore
	}
	if f > 0 && f <= 1 {
		return int(math.Round(f * 100))
	}
	return int(math.Round(f))
}

type object map[string]any

func (o object) obj(key string) object {
	if o == nil {
		return nil
	}
	m, _ := o[key].(map[string]any)
	return m
}

func (o object) str(key, def string) string {
	if o == nil {
		return def
	}
	if s, ok := o[key].(string); ok && strings.TrimSpace(s) != "" {
		return s
	}
	return def
}

func (o object) strs(key string) []string {
	arr, _ := o.get(key).([]any)
	out := make([]string, 0, len(arr))
	for _, v := range arr {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func (o object) get(key string) any {
	if o == nil {
		return nil
	}
	return o[key]
}

// trait accepts either {"score": n, "explanation": "..."} or a bare score.
func (o object) trait(key, def string) BigFiveTrait {
	raw := o.get(key)
	if m, ok := raw.(map[string]any); ok {
		t := object(m)
		if _, has := t["score"]; has {
			raw = t["score"]
		}
		return BigFiveTrait{Score: normalizeScore(raw), Explanation: t.str("explanation", def)}
	}
	return BigFiveTrait{Score: normalizeScore(raw), Explanation: def}
}

// sanitizeProfile fills every field the model left out so callers never
// see a half-populated profile.
func sanitizeProfile(data object) Profile {
	big := data.obj("bigFive")
	style := data.obj("communicationStyle")
	emo := data.obj("emotionalProfile")
	tox := data.obj("toxicityAnalysis")

	toxScore := tox.get("score")
	if isZeroish(toxScore) {
		toxScore = emo.get("toxicity")
	}

	var forms []ToxicForm
	if arr, ok := tox.get("specificForms").([]any); ok {
		for _, v := range arr {
			m, ok := v.(map[string]any)
			if !ok {
				continue
			}
			f := object(m)
			forms = append(forms, ToxicForm{Form: f.str("form", ""), Example: f.str("example", "")})
		}
	}
	if forms == nil {
		forms = []ToxicForm{}
	}

	return Profile{
		Archetype:            data.str("archetype", "Anonymous"),
		ArchetypeDescription: data.str("archetypeDescription", "Could not be determined."),
		PersonalityTraits:    data.strs("personalityTraits"),
		MBTI:                 data.str("mbti", "Unknown"),
		BigFive: BigFive{
			Openness:          big.trait("openness", "Openness to experience."),
			Conscientiousness: big.trait("conscientiousness", "Level of organization."),
			Extraversion:      big.trait("extraversion", "Level of sociability."),
			Agreeableness:     big.trait("agreeableness", "Level of friendliness."),
			Neuroticism:       big.trait("neuroticism", "Emotional stability."),
		},
		CommunicationStyle: CommunicationStyle{
			Tone:       style.str("tone", "Neutral"),
			Speed:      style.str("speed", "Moderate"),
			Complexity: style.str("complexity", "Average"),
			Vocabulary: style.str("vocabulary", "Standard"),
		},
		EmotionalProfile: EmotionalProfile{
			Positivity: normalizeScore(emo.get("positivity")),
			Toxicity:   normalizeScore(emo.get("toxicity")),
			Empathy:    normalizeScore(emo.get("empathy")),
		},
		Toxicity: ToxicityReport{
			Score:         normalizeScore(toxScore),
			Level:         tox.str("level", "Undetermined"),
			Traits:        tox.strs("traits"),
			Explanation:   tox.str("explanation", "No analysis provided."),
			SpecificForms: forms,
		},
		HiddenDrives:      data.strs("hiddenDrives"),
		Summary:           data.str("summary", "Analysis incomplete."),
		SystemInstruction: data.str("systemInstruction", "You are a generic assistant."),
	}
}

func isZeroish(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case float64:
		return x == 0
	case string:
		return x == ""
	case bool:
		return !x
	}
	return false
}

func sanitizeCompatibility(data object) Compatibility {
	return Compatibility{
		Score:              normalizeScore(data.get("score")),
		RelationshipHeader: data.str("relationshipHeader", ""),
		Synergy:            data.strs("synergy"),
		Conflicts:          data.strs("conflicts"),
		Summary:            data.str("summary", ""),
	}
}
