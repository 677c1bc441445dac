package middleware

import (
	"github.com/askora/askora/config"
)

// Action tags checked against the permission gate.
const (
	ActionQuestionCreate = "question.create"
	ActionQuestionUpdate = "question.update"
	ActionQuestionDelete = "question.delete"
	ActionAnswerCreate   = "answer.create"
	ActionAnswerUpdate   = "answer.update"
	ActionAnswerDelete   = "answer.delete"
	ActionCommentCreate  = "comment.create"
	ActionCommentDelete  = "comment.delete"
	ActionVote           = "vote"
	ActionFavorite       = "favorite"
)

// Gate decides whether a viewer may perform an action. It is injected once at
// startup so handlers never branch on whether permission enforcement is on.
type Gate interface {
	Can(viewerID uint, action string) bool
}

// NewGate selects the gate implementation from configuration: a trivial
// always-allow gate when nothing needs enforcing, a rule-based one otherwise.
// The anonymous-posting restriction applies even with enforcement disabled.
func NewGate(cfg config.AppConfig) Gate {
	if !cfg.PermissionsEnabled && (cfg.AnonViewerID == 0 || cfg.AnonCanPost) {
		return allowAll{}
	}
	restricted := map[string]bool{}
	if cfg.PermissionsEnabled {
		for _, a := range cfg.RestrictedActions {
			restricted[a] = true
		}
	}
	return &ruleGate{
		anonViewerID: cfg.AnonViewerID,
		anonCanPost:  cfg.AnonCanPost,
		restricted:   restricted,
	}
}

type allowAll struct{}

func (allowAll) Can(uint, string) bool { return true }

// ruleGate denies globally restricted actions and, unless configured
// otherwise, any mutation by the anonymous viewer.
type ruleGate struct {
	anonViewerID uint
	anonCanPost  bool
	restricted   map[string]bool
}

func (g *ruleGate) Can(viewerID uint, action string) bool {
	if g.restricted[action] {
		return false
	}
	if g.anonViewerID != 0 && viewerID == g.anonViewerID && !g.anonCanPost {
		return false
	}
	return true
}
