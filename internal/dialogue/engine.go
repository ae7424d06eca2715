package dialogue

import (
	"strings"

	"github.com/MikeSquared-Agency/lure/internal/intel"
	"github.com/MikeSquared-Agency/lure/internal/session"
)

// Reply categories. A repeated category pushes the rotation forward.
const (
	IntentHold            = "HOLD"
	IntentExit            = "EXIT"
	IntentAskBeneficiary  = "ASK_BENEF_REAL"
	IntentLinkFriction    = "LINK_FRICTION"
	IntentAskHandle       = "ASK_UPI_DETAILS"
	IntentAskAccount      = "ASK_BANK_IFSC"
	IntentAskPhone        = "ASK_PHONE_CONFIRM"
	IntentHookToFriction  = "HOOK_TO_FRICTION"
	IntentFrictionExtract = "FRICTION_TO_EXTRACT"
	IntentExtractVerify   = "EXTRACT_TO_VERIFY"
	IntentVerifyProbe     = "VERIFY_PROBE"
	IntentFallback        = "FALLBACK"
)

// Reply is the line chosen for one turn.
type Reply struct {
	Text   string        `json:"reply"`
	Stage  session.Stage `json:"stage"`
	Intent string        `json:"intent"`
}

// Options tunes selection.
type Options struct {
	// AvoidRepeats prefers a line the session has not been shown yet before
	// falling back to plain rotation.
	AvoidRepeats bool
}

// DefaultOptions enables the stronger anti-repetition mode.
func DefaultOptions() Options {
	return Options{AvoidRepeats: true}
}

// Engine decides stage transitions and picks reply lines. It is stateless;
// everything it remembers lives on the session record.
type Engine struct {
	opts Options
}

func New(opts Options) *Engine {
	return &Engine{opts: opts}
}

// Next advances the dialogue for one inbound message. fresh holds only the
// intelligence this message added to the session. Next updates the stage
// and the anti-repetition fields of rec; it never touches the turn counter
// or the report state.
func (e *Engine) Next(rec *session.Record, fresh intel.Intel) Reply {
	// Terminal: reported, abandoned, or pinned to EXIT while a report is pending.
	if rec.Completed() || rec.Stage == session.StageExit {
		return e.say(rec, session.StageExit, IntentHold, holdLines)
	}
	if rec.ShouldComplete() {
		return e.say(rec, session.StageExit, IntentExit, exitLines)
	}

	// React to what this message just offered.
	if n := len(fresh.BeneficiaryNames); n > 0 && looksPlaceholder(fresh.BeneficiaryNames[n-1]) {
		return e.say(rec, session.StageVerify, IntentAskBeneficiary, placeholderBeneficiaryTactics)
	}
	switch {
	case len(fresh.PhishingLinks) > 0:
		return e.say(rec, session.StageFriction, IntentLinkFriction, linkTactics)
	case len(fresh.PaymentHandles) > 0:
		return e.say(rec, session.StageVerify, IntentAskHandle, handleTactics)
	case len(fresh.BankAccounts) > 0:
		return e.say(rec, session.StageVerify, IntentAskAccount, accountTactics)
	case len(fresh.PhoneNumbers) > 0:
		return e.say(rec, session.StageVerify, IntentAskPhone, phoneTactics)
	}

	switch rec.Stage {
	case session.StageHook:
		return e.say(rec, session.StageFriction, IntentHookToFriction, hookLines)
	case session.StageFriction:
		return e.say(rec, session.StageExtract, IntentFrictionExtract, e.frictionPool(rec))
	case session.StageExtract:
		return e.say(rec, session.StageVerify, IntentExtractVerify, extractLines)
	case session.StageVerify:
		return e.say(rec, session.StageVerify, IntentVerifyProbe, verifyProbes(rec.Intel))
	case session.StageExit:
		return e.say(rec, session.StageExit, IntentHold, holdLines)
	default:
		return e.say(rec, session.StageVerify, IntentFallback, []string{fallbackLine})
	}
}

func (e *Engine) say(rec *session.Record, stage session.Stage, intent string, pool []string) Reply {
	rec.Stage = stage
	setIntent(rec, intent)
	line := e.pick(rec, pool)
	rec.MarkLineUsed(line)
	return Reply{Text: line, Stage: stage, Intent: intent}
}

// pick rotates through pool by session seed, turn and repeat count. With
// AvoidRepeats it walks forward from that index to the first unseen line.
func (e *Engine) pick(rec *session.Record, pool []string) string {
	if len(pool) == 0 {
		return ""
	}
	idx := Index(rec.PersonaSeed, rec.TurnCount, rec.RepeatIntentCount, len(pool))
	if e.opts.AvoidRepeats {
		for i := 0; i < len(pool); i++ {
			if line := pool[(idx+i)%len(pool)]; !rec.LineUsed(line) {
				return line
			}
		}
	}
	return pool[idx]
}

// Index is the rotation position for a pool of size n.
func Index(seed, turn, repeat, n int) int {
	if n <= 0 {
		return 0
	}
	idx := (seed + turn + repeat) % n
	if idx < 0 {
		idx += n
	}
	return idx
}

func setIntent(rec *session.Record, intent string) {
	if rec.LastIntent == intent {
		rec.RepeatIntentCount++
		return
	}
	rec.LastIntent = intent
	rec.RepeatIntentCount = 0
}

// frictionPool prefixes the lead line with the first excuse not yet used.
func (e *Engine) frictionPool(rec *session.Record) []string {
	pool := append([]string(nil), frictionLines...)
	for _, ex := range excuses {
		if rec.LineUsed(ex) {
			continue
		}
		rec.MarkLineUsed(ex)
		pool[0] = ex + " " + frictionLead
		break
	}
	return pool
}

func verifyProbes(have intel.Intel) []string {
	var probes []string
	if len(have.PhishingLinks) == 0 {
		probes = append(probes, missingLinkProbes...)
	}
	if len(have.PhoneNumbers) == 0 {
		probes = append(probes, missingPhoneProbes...)
	}
	if len(have.BeneficiaryNames) == 0 {
		probes = append(probes, missingBeneficiaryProbes...)
	}
	if len(have.RoutingCodes) == 0 {
		probes = append(probes, missingRoutingProbes...)
	}
	if len(probes) == 0 {
		return fillerProbes
	}
	return probes
}

var placeholderNames = []string{"john doe", "jane doe", "test", "demo", "sample", "fake", "beneficiary"}

func looksPlaceholder(name string) bool {
	n := strings.ToLower(strings.TrimSpace(name))
	if len(n) < 4 {
		return true
	}
	for _, bad := range placeholderNames {
		if strings.Contains(n, bad) {
			return true
		}
	}
	return false
}
