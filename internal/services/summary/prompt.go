package summary

import (
	"fmt"
	"strings"

	"github.com/bobmcallan/newsdesk/internal/services/dedupe"
)

// Mode selects how an article is prompted
type Mode int

const (
	// ModeSynopsis summarizes a substantive description
	ModeSynopsis Mode = iota
	// ModeContextInference infers context from the headline alone
	ModeContextInference
)

func (m Mode) String() string {
	if m == ModeContextInference {
		return "context"
	}
	return "synopsis"
}

// minDescriptionWords is the shortest description worth summarizing
const minDescriptionWords = 5

// SelectMode picks context inference when the description adds nothing beyond the headline
func SelectMode(title, description string) Mode {
	desc := dedupe.Normalize(description)
	if desc == "" {
		return ModeContextInference
	}
	if strings.Contains(dedupe.Normalize(title), desc) {
		return ModeContextInference
	}
	if len(strings.Fields(description)) < minDescriptionWords {
		return ModeContextInference
	}
	return ModeSynopsis
}

// BuildPrompt renders the generation prompt for an article
func BuildPrompt(mode Mode, title, description string) string {
	if mode == ModeContextInference {
		return fmt.Sprintf(`You are a financial journalist. Given only a headline, infer the most plausible financial or economic context in one full sentence. Do not repeat the title.

Headline: %s`, title)
	}

	return fmt.Sprintf(`You are a financial analyst summarizing market and company news. Write one or two complete sentences summarizing the key insight, such as an earnings beat or miss, or the parties and rationale of a deal. Do not repeat the title verbatim.

Title: %s

Content: %s`, title, description)
}
