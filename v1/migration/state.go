package migration

import "fmt"

// Stage is a state of the migration run. A run moves through the stages in
// declaration order; any failure moves it to StageAborted.
type Stage int

const (
	StageInit Stage = iota
	StageCleaned
	StageRestored
	StageExported
	StageSchemaCreated
	StageDataCopied
	StagePromoted
	StageDone
	StageAborted
)

var stageNames = [...]string{
	StageInit:          "Init",
	StageCleaned:       "Cleaned",
	StageRestored:      "Restored",
	StageExported:      "Exported",
	StageSchemaCreated: "SchemaCreated",
	StageDataCopied:    "DataCopied",
	StagePromoted:      "Promoted",
	StageDone:          "Done",
	StageAborted:       "Aborted",
}

func (s Stage) String() string {
	if s < 0 || int(s) >= len(stageNames) {
		return fmt.Sprintf("Stage(%d)", int(s))
	}
	return stageNames[s]
}

// Terminal reports whether no further transition is possible.
func (s Stage) Terminal() bool {
	return s == StageDone || s == StageAborted
}

// CanAdvanceTo reports whether next is a legal successor of s.
func (s Stage) CanAdvanceTo(next Stage) bool {
	if s.Terminal() || s < StageInit || s > StageAborted {
		return false
	}
	if next == StageAborted {
		return true
	}
	return next == s+1
}

func (s Stage) MarshalText() ([]byte, error) {
	if s < 0 || int(s) >= len(stageNames) {
		return nil, fmt.Errorf("unknown stage %d", int(s))
	}
	return []byte(stageNames[s]), nil
}

func (s *Stage) UnmarshalText(text []byte) error {
	for i, name := range stageNames {
		if name == string(text) {
			*s = Stage(i)
			return nil
		}
	}
	return fmt.Errorf("unknown stage %q", string(text))
}

// PromotionStep tracks progress inside the promotion stage, which is the
// only stage that destroys data.
type PromotionStep int

const (
	PromoteNotStarted PromotionStep = iota
	PromoteDescriptorFetched
	PromoteOldDeleted
	PromoteTempDeleted
	PromoteCreated
)
