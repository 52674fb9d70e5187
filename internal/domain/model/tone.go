package model

// DefaultTone is used whenever a request names a tone the catalog does not know.
const DefaultTone = "friendly"

type toneEntry struct {
	description string
	fallback    []string
}

var toneCatalog = map[string]toneEntry{
	"friendly": {
		description: "Warm, approachable, uses casual language and emojis if appropriate",
		fallback: []string{
			"Hey! Thanks for reaching out! 😊",
			"Absolutely! I'd love to help with that!",
			"Sure thing! Let's make this happen! 🎉",
		},
	},
	"professional": {
		description: "Formal, business-appropriate, clear and concise",
		fallback: []string{
			"Thank you for your message. I'll get back to you shortly.",
			"Understood. I'll look into this and follow up accordingly.",
			"Noted. Let me review and respond with more details.",
		},
	},
	"assertive": {
		description: "Confident, direct, takes a strong stance",
		fallback: []string{
			"Let's make this happen.",
			"I'm confident we can do this.",
			"This is the right move.",
		},
	},
	"apologetic": {
		description: "Sorry, regretful, takes responsibility",
		fallback: []string{
			"I'm sorry for the confusion. Let me clarify.",
			"My apologies. I'll make this right.",
			"I understand your concern. Let me help.",
		},
	},
	"casual": {
		description: "Relaxed, informal, uses slang and abbreviations",
		fallback: []string{
			"Yeah, sounds good!",
			"Cool, let's go with that.",
			"Alright, I'm down!",
		},
	},
}

var toneOrder = []string{"friendly", "professional", "assertive", "apologetic", "casual"}

// Tones lists the known tone identifiers in display order.
func Tones() []string {
	out := make([]string, len(toneOrder))
	copy(out, toneOrder)
	return out
}

// IsKnownTone reports whether tone has its own catalog entry.
func IsKnownTone(tone string) bool {
	_, ok := toneCatalog[tone]
	return ok
}

// DescribeTone returns the steering text for tone. Unknown tones get the
// friendly description and known=false.
func DescribeTone(tone string) (description string, known bool) {
	if e, ok := toneCatalog[tone]; ok {
		return e.description, true
	}
	return toneCatalog[DefaultTone].description, false
}

// FallbackSuggestions returns the canned replies served in degraded mode.
// The slice is a copy; callers may modify it.
func FallbackSuggestions(tone string) []string {
	e, ok := toneCatalog[tone]
	if !ok {
		e = toneCatalog[DefaultTone]
	}
	out := make([]string, len(e.fallback))
	copy(out, e.fallback)
	return out
}
