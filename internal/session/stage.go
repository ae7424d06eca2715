package session

// Stage is the dialogue phase that decides which reply pool is eligible.
type Stage string

const (
	StageHook     Stage = "HOOK"
	StageFriction Stage = "FRICTION"
	StageExtract  Stage = "EXTRACT"
	StageVerify   Stage = "VERIFY"
	StageExit     Stage = "EXIT"
)

// Stages lists every stage in progression order.
var Stages = []Stage{StageHook, StageFriction, StageExtract, StageVerify, StageExit}

// Valid reports whether s is one of the known stages.
func (s Stage) Valid() bool {
	switch s {
	case StageHook, StageFriction, StageExtract, StageVerify, StageExit:
		return true
	default:
		return false
	}
}

func (s Stage) String() string { return string(s) }
