package mbti

import "encoding/json"

// Axis is one of the four MBTI dimensions.
type Axis string

const (
	AxisEI Axis = "EI"
	AxisSN Axis = "SN"
	AxisTF Axis = "TF"
	AxisJP Axis = "JP"
)

// AxisOrder is the fixed order in which poles compose a type code.
var AxisOrder = [4]Axis{AxisEI, AxisSN, AxisTF, AxisJP}

// DimensionResult is the judgment for a single axis.
type DimensionResult struct {
	Axis       Axis    `json:"axis,omitempty"`
	Pole       string  `json:"pole"`
	Confidence float64 `json:"confidence"`
	Reason     string  `json:"reason"`
}

// Assessment is the structured result of a completed session. Created once,
// never mutated afterwards.
type Assessment struct {
	MBTIType          string                   `json:"mbtiType"`
	Confidence        float64                  `json:"confidence"`
	Dimensions        map[Axis]DimensionResult `json:"dimensions"`
	Description       string                   `json:"description"`
	Strengths         []string                 `json:"strengths"`
	DevelopmentAreas  []string                 `json:"developmentAreas"`
	CareerSuggestions []string                 `json:"careerSuggestions"`
}

type profile struct {
	Description       string   `json:"description"`
	Strengths         []string `json:"strengths"`
	DevelopmentAreas  []string `json:"developmentAreas"`
	CareerSuggestions []string `json:"careerSuggestions"`
}

var profiles map[string]profile

func init() {
	if err := json.Unmarshal([]byte(MBTIProfilesJSON), &profiles); err != nil {
		panic("mbti: invalid embedded profile table: " + err.Error())
	}
	if _, ok := profiles["default"]; !ok {
		panic("mbti: embedded profile table misses the default entry")
	}
}
