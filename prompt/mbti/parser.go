package mbti

import (
	"encoding/json"
	"fmt"
	"strings"
)

// parseTier attempts to recover an Assessment from raw model output,
// returning nil to signal "try the next tier".
type parseTier func(raw string) *Assessment

var parseTiers = []parseTier{parseStrictJSON, parseLooseTypeLine}

// ParseAssessment runs the tolerant parser chain over the model's analysis
// output. It returns nil when every tier fails; the caller substitutes the
// default result in that case.
//
// The chain is deliberately lenient: a decoded object is accepted without
// cross-checking mbtiType against the dimension poles, and type letters
// recovered by the loose tiers are not validated against the eight pole
// characters. Unknown types degrade to the default profile template.
func ParseAssessment(raw string) *Assessment {
	for _, tier := range parseTiers {
		if res := tier(raw); res != nil {
			return res
		}
	}
	return nil
}

// parseStrictJSON locates the first balanced brace-delimited object in the
// text and decodes it. Accepted only when mbtiType, dimensions and
// description are all present.
func parseStrictJSON(raw string) *Assessment {
	obj := extractJSONObject(raw)
	if obj == "" {
		return nil
	}
	var res Assessment
	if err := json.Unmarshal([]byte(obj), &res); err != nil {
		return nil
	}
	if res.MBTIType == "" || len(res.Dimensions) == 0 || res.Description == "" {
		return nil
	}
	for axis, dim := range res.Dimensions {
		dim.Axis = axis
		res.Dimensions[axis] = dim
	}
	return &res
}

// parseLooseTypeLine scans for a line that mentions the type key and pulls
// the first run of exactly four uppercase letters out of it, then
// synthesizes a full result from the profile table.
func parseLooseTypeLine(raw string) *Assessment {
	for _, line := range strings.Split(raw, "\n") {
		lower := strings.ToLower(line)
		if !strings.Contains(lower, "type") && !strings.Contains(line, "类型") {
			continue
		}
		if code := firstFourLetterRun(line); code != "" {
			return Synthesize(code)
		}
	}
	return nil
}

// extractJSONObject returns the first brace-balanced object substring,
// skipping braces inside string literals. Empty when none is found.
func extractJSONObject(raw string) string {
	start := strings.IndexByte(raw, '{')
	if start < 0 {
		return ""
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(raw); i++ {
		c := raw[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return raw[start : i+1]
			}
		}
	}
	return ""
}

// firstFourLetterRun returns the first maximal run of uppercase ASCII
// letters in s whose length is exactly four.
func firstFourLetterRun(s string) string {
	runStart := -1
	for i := 0; i <= len(s); i++ {
		if i < len(s) && s[i] >= 'A' && s[i] <= 'Z' {
			if runStart < 0 {
				runStart = i
			}
			continue
		}
		if runStart >= 0 {
			if i-runStart == 4 {
				return s[runStart:i]
			}
			runStart = -1
		}
	}
	return ""
}

// Synthesize builds a full Assessment for a recovered four-letter type from
// the embedded profile table. Types without a profile entry use the default
// template.
func Synthesize(mbtiType string) *Assessment {
	return synthesize(mbtiType, 0.75, "对话中表现出较明显的 %s 倾向")
}

// DefaultAssessment is the outermost fallback: returned when the analysis
// call or the entire parser chain fails, so the user still receives a
// result.
func DefaultAssessment() *Assessment {
	return synthesize("ENFP", 0.6, "可用信息有限，%s 倾向是基于整体印象的初步判断")
}

func synthesize(mbtiType string, confidence float64, reasonFormat string) *Assessment {
	p, ok := profiles[mbtiType]
	if !ok {
		p = profiles["default"]
	}

	letters := []rune(mbtiType)
	dims := make(map[Axis]DimensionResult, len(AxisOrder))
	for i, axis := range AxisOrder {
		pole := ""
		if i < len(letters) {
			pole = string(letters[i])
		}
		dims[axis] = DimensionResult{
			Axis:       axis,
			Pole:       pole,
			Confidence: confidence,
			Reason:     fmt.Sprintf(reasonFormat, pole),
		}
	}

	return &Assessment{
		MBTIType:          mbtiType,
		Confidence:        confidence,
		Dimensions:        dims,
		Description:       p.Description,
		Strengths:         p.Strengths,
		DevelopmentAreas:  p.DevelopmentAreas,
		CareerSuggestions: p.CareerSuggestions,
	}
}
