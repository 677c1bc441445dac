package store

import (
	"context"
	"errors"

	"github.com/askora/askora/models"
)

// ErrNotFound signals that the addressed entity does not exist (or is no
// longer retrievable). Callers translate it to a 404, never a 500.
var ErrNotFound = errors.New("record not found")

// ErrDuplicate signals a uniqueness violation, e.g. a taken username.
var ErrDuplicate = errors.New("duplicate record")

// Ref addresses a votable or commentable entity. AnswerID is zero when the
// target is the question itself.
type Ref struct {
	QuestionID uint
	AnswerID   uint
}

// ContentStore executes canonical query descriptors and point mutations
// against the persistent content. Implementations must guarantee atomicity
// for the vote upsert, the correct-answer transition, and the favorite
// toggle; a read following a write in the same call sequence observes that
// write.
type ContentStore interface {
	// SearchQuestions runs a canonical listing query. Returned questions
	// carry aggregate fields only; no viewer projection. The total count
	// ignores pagination. viewerID scopes the favorite filter.
	SearchQuestions(ctx context.Context, viewerID uint, q QueryDescriptor) ([]models.Question, int64, error)

	// QuestionByID returns a fully hydrated question (answers, comments,
	// votes).
	QuestionByID(ctx context.Context, id uint) (*models.Question, error)
	// RecordView bumps the question's view counter. Called on detail
	// reads only, not on post-mutation re-fetches.
	RecordView(ctx context.Context, id uint) error
	CreateQuestion(ctx context.Context, q *models.Question) error
	UpdateQuestion(ctx context.Context, q *models.Question) error
	// DeleteQuestion removes the question and cascades to its answers,
	// comments, votes, and favorites.
	DeleteQuestion(ctx context.Context, id uint) error

	// AnswerByID returns a hydrated answer, checking it belongs to the
	// given question.
	AnswerByID(ctx context.Context, questionID, answerID uint) (*models.Answer, error)
	CreateAnswer(ctx context.Context, a *models.Answer) error
	UpdateAnswer(ctx context.Context, a *models.Answer) error
	DeleteAnswer(ctx context.Context, questionID, answerID uint) error

	CreateComment(ctx context.Context, c *models.Comment) error
	// DeleteComment removes a comment after validating it belongs to the
	// referenced parent.
	DeleteComment(ctx context.Context, ref Ref, commentID uint) error

	// CastVote inserts or replaces the voter's vote on the target. At most
	// one vote row per (voter, target) pair exists afterwards.
	CastVote(ctx context.Context, voterID uint, ref Ref, value int) error

	// SetFavorite toggles set membership. changed reports whether state
	// actually moved; an already-satisfied toggle is not an error.
	SetFavorite(ctx context.Context, viewerID, questionID uint, favored bool) (changed bool, err error)

	// SetCorrect flips the correctness flag on an answer. Marking an answer
	// correct atomically clears any previously correct answer of the same
	// question.
	SetCorrect(ctx context.Context, questionID, answerID uint, correct bool) error

	ListTags(ctx context.Context) ([]string, error)
}

// Store is the full persistence surface the HTTP layer wires against.
type Store interface {
	ContentStore
	UserStore
}

// UserStore manages registered viewer accounts. Both ContentStore
// implementations also satisfy this.
type UserStore interface {
	// CreateUser inserts a new account. Returns ErrDuplicate when the
	// username is taken.
	CreateUser(ctx context.Context, u *models.User) error
	UserByName(ctx context.Context, username string) (*models.User, error)
	UserByID(ctx context.Context, id uint) (*models.User, error)
}
