package soundalert

import "sort"

// defaultLabels are the sounds reported to the reader.
var defaultLabels = []string{
	// Critical alerts
	"Siren", "Civil defense siren", "Police car (siren)", "Emergency vehicle",
	"Alarm", "Alarm clock", "Fire alarm", "Smoke detector, smoke alarm",
	"Car horn", "Vehicle horn, honking",
	"Screaming", "Shout", "Yell",

	// General awareness
	"Dog", "Bark",
	"Knock", "Doorbell",
	"Speech", "Conversation",
	"Water", "Stream", "Waterfall", "Gurgling",
	"Typing",
	"Vehicle", "Motor vehicle (road)", "Car",
}

// Vocabulary is the set of class names that raise an alert. Matching is
// exact and case-sensitive.
type Vocabulary map[string]struct{}

// NewVocabulary builds a vocabulary from labels.
func NewVocabulary(labels ...string) Vocabulary {
	v := make(Vocabulary, len(labels))
	for _, l := range labels {
		v[l] = struct{}{}
	}
	return v
}

// DefaultVocabulary returns the built-in alert list.
func DefaultVocabulary() Vocabulary {
	return NewVocabulary(defaultLabels...)
}

// Contains reports whether label raises an alert.
func (v Vocabulary) Contains(label string) bool {
	_, ok := v[label]
	return ok
}

// Labels returns the vocabulary sorted.
func (v Vocabulary) Labels() []string {
	out := make([]string, 0, len(v))
	for l := range v {
		out = append(out, l)
	}
	sort.Strings(out)
	return out
}
