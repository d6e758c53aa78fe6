package ai

import (
	"strings"

	"github.com/xxxsen/textlens/internal/model"
)

// NormalizeTone maps whatever the model answered to one of the three known tones. French
// answers are common enough that their stems are matched too.
func NormalizeTone(raw string) model.Tone {
	v := strings.ToLower(strings.TrimSpace(raw))
	v = strings.Trim(v, `"'.!`)
	for _, t := range model.Tones {
		if v == string(t) {
			return t
		}
	}
	switch {
	case strings.Contains(v, "posit"):
		return model.TonePositive
	case strings.Contains(v, "negat"), strings.Contains(v, "négat"):
		return model.ToneNegative
	}
	return model.ToneNeutral
}
