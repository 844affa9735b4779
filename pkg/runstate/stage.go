package runstate

import (
	"fmt"

	"github.com/goccy/go-json"

	"github.com/paulschiretz/pgl-shipper/pkg/util"
)

// Stage is one phase of a backup run.
type Stage int

const (
	StageSource Stage = iota
	StageCheck
	StageCrypt
	StageSync
	StageCleanup
)

// Stages lists all stages in execution order.
var Stages = []Stage{StageSource, StageCheck, StageCrypt, StageSync, StageCleanup}

var stageToString = map[Stage]string{
	StageSource:  "source",
	StageCheck:   "check",
	StageCrypt:   "crypt",
	StageSync:    "sync",
	StageCleanup: "cleanup",
}

var stringToStage map[string]Stage

// Outcome is the result of a single stage execution.
type Outcome int

const (
	Executed Outcome = iota
	Skipped
	Failed
)

var outcomeToString = map[Outcome]string{
	Executed: "executed",
	Skipped:  "skipped",
	Failed:   "failed",
}

func init() {
	// Inverting the map at runtime ensures stageToString is fully loaded
	stringToStage = util.InvertMap(stageToString)
}

func (s Stage) String() string {
	if str, ok := stageToString[s]; ok {
		return str
	}
	return fmt.Sprintf("unknown_stage(%d)", int(s))
}

// ParseStage parses a stage name.
func ParseStage(s string) (Stage, error) {
	if st, ok := stringToStage[s]; ok {
		return st, nil
	}
	return 0, fmt.Errorf("invalid stage: %q", s)
}

// MarshalJSON implements the json.Marshaler interface for Stage.
func (s Stage) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (o Outcome) String() string {
	if str, ok := outcomeToString[o]; ok {
		return str
	}
	return fmt.Sprintf("unknown_outcome(%d)", int(o))
}

// MarshalJSON implements the json.Marshaler interface for Outcome.
func (o Outcome) MarshalJSON() ([]byte, error) {
	return json.Marshal(o.String())
}
