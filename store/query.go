package store

import "fmt"

// Sort keys accepted by QueryDescriptor.OrderBy.
const (
	OrderByViews        = "views"
	OrderByScore        = "score"
	OrderByAnswersCount = "answersCount"
	OrderByCreated      = "created"
	OrderByUpdated      = "updated"
	OrderByTrend        = "trend"
)

// QueryDescriptor is the canonical, fully resolved form of a listing
// request. Field validation happens at the transport boundary; the store may
// assume well-formed values.
type QueryDescriptor struct {
	Limit  int // 0 means store default
	Offset int

	Tags        []string // ANY-match over question tags
	Entity      uint64   // referenced-entity match, 0 disables
	Author      uint     // author filter, 0 disables
	SearchQuery string

	OrderBy string // one of the OrderBy* constants, empty means created
	Order   string // asc|desc, default desc

	NoCorrectAnswer bool
	NoAnswers       bool
	NoVotes         bool
	Favorite        bool // restrict to the requesting viewer's favorites

	// RandomOrder returns one arbitrarily selected match instead of a page.
	RandomOrder bool

	// Hydration toggles; payload-size contract, not filters.
	IncludeAnswers  bool
	IncludeVotes    bool
	IncludeEntities bool
	IncludeTrend    bool
	IncludeComments bool
}

// viewOverride is the partial filter record a named view merges over the
// caller's raw filters. Overrides win over conflicting raw values.
type viewOverride struct {
	randomOrder     bool
	noAnswers       bool
	noCorrectAnswer bool
	includeTrend    bool
	orderBy         string
}

var namedViews = map[string]viewOverride{
	"unanswered": {randomOrder: true, noAnswers: true},
	"incorrect":  {randomOrder: true, noCorrectAnswer: true},
	"hot":        {includeTrend: true, orderBy: OrderByTrend},
}

// TranslateView merges the named view's overrides into the raw descriptor.
// An empty name passes the descriptor through unchanged; an unknown name is
// rejected.
func TranslateView(view string, q QueryDescriptor) (QueryDescriptor, error) {
	if view == "" {
		return q, nil
	}
	ov, ok := namedViews[view]
	if !ok {
		return q, fmt.Errorf("unknown view %q", view)
	}
	if ov.randomOrder {
		q.RandomOrder = true
	}
	if ov.noAnswers {
		q.NoAnswers = true
	}
	if ov.noCorrectAnswer {
		q.NoCorrectAnswer = true
	}
	if ov.includeTrend {
		q.IncludeTrend = true
	}
	if ov.orderBy != "" {
		q.OrderBy = ov.orderBy
	}
	return q, nil
}
