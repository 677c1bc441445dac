package store

import (
	"context"
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/askora/askora/models"
)

type voteKey struct {
	voter    uint
	question uint
	answer   uint
}

type favKey struct {
	viewer   uint
	question uint
}

// Memory is a mutex-guarded ContentStore used by tests and the "memory"
// database driver. It honors the same atomicity contract as the SQL store;
// all methods return deep copies so callers can decorate results freely.
type Memory struct {
	mu        sync.Mutex
	questions map[uint]*models.Question
	answers   map[uint]*models.Answer
	comments  map[uint]*models.Comment
	votes     map[voteKey]*models.Vote
	favorites map[favKey]time.Time
	users     map[uint]*models.User
	nextID    uint
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		questions: map[uint]*models.Question{},
		answers:   map[uint]*models.Answer{},
		comments:  map[uint]*models.Comment{},
		votes:     map[voteKey]*models.Vote{},
		favorites: map[favKey]time.Time{},
		users:     map[uint]*models.User{},
	}
}

func (m *Memory) id() uint {
	m.nextID++
	return m.nextID
}

func (m *Memory) SearchQuestions(ctx context.Context, viewerID uint, d QueryDescriptor) ([]models.Question, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var matched []*models.Question
	for _, q := range m.questions {
		if m.matches(viewerID, q, d) {
			matched = append(matched, q)
		}
	}

	if d.RandomOrder {
		if len(matched) == 0 {
			return []models.Question{}, 0, nil
		}
		pick := matched[rand.Intn(len(matched))]
		return []models.Question{*m.snapshotListing(pick, d)}, 1, nil
	}

	m.sortQuestions(matched, d)
	total := int64(len(matched))

	limit, offset := pageBounds(d)
	if offset >= len(matched) {
		return []models.Question{}, total, nil
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}

	out := make([]models.Question, 0, end-offset)
	for _, q := range matched[offset:end] {
		out = append(out, *m.snapshotListing(q, d))
	}
	return out, total, nil
}

func (m *Memory) matches(viewerID uint, q *models.Question, d QueryDescriptor) bool {
	if d.Author != 0 && q.UserID != d.Author {
		return false
	}
	if d.SearchQuery != "" {
		needle := strings.ToLower(d.SearchQuery)
		if !strings.Contains(strings.ToLower(q.Title), needle) &&
			!strings.Contains(strings.ToLower(q.Content), needle) {
			return false
		}
	}
	if len(d.Tags) > 0 && !anyTag(q.Tags, d.Tags) {
		return false
	}
	if d.Entity != 0 && !containsEntity(q.Entities, d.Entity) {
		return false
	}
	if d.NoAnswers && m.answerCount(q.ID) > 0 {
		return false
	}
	if d.NoCorrectAnswer && m.hasCorrectAnswer(q.ID) {
		return false
	}
	if d.NoVotes && len(m.questionVotes(q.ID)) > 0 {
		return false
	}
	if d.Favorite {
		if _, ok := m.favorites[favKey{viewer: viewerID, question: q.ID}]; !ok {
			return false
		}
	}
	return true
}

func (m *Memory) sortQuestions(qs []*models.Question, d QueryDescriptor) {
	desc := d.Order != "asc"
	key := func(q *models.Question) int64 {
		switch d.OrderBy {
		case OrderByViews:
			return int64(q.Views)
		case OrderByScore:
			return int64(sumVotes(m.questionVotes(q.ID)))
		case OrderByAnswersCount:
			return int64(m.answerCount(q.ID))
		case OrderByUpdated:
			return q.UpdatedAt.UnixNano()
		case OrderByTrend:
			return int64(m.trend(q.ID))
		default:
			return q.CreatedAt.UnixNano()
		}
	}
	sort.SliceStable(qs, func(i, j int) bool {
		a, b := key(qs[i]), key(qs[j])
		if a == b {
			// Stable secondary key keeps pagination deterministic.
			if desc {
				return qs[i].ID > qs[j].ID
			}
			return qs[i].ID < qs[j].ID
		}
		if desc {
			return a > b
		}
		return a < b
	})
}

func (m *Memory) trend(questionID uint) int {
	cutoff := time.Now().Add(-trendWindow)
	n := 0
	for _, v := range m.questionVotes(questionID) {
		if v.CreatedAt.After(cutoff) {
			n++
		}
	}
	return n
}

// snapshotListing copies a question with aggregate fields per the include
// toggles; never any viewer projection.
func (m *Memory) snapshotListing(q *models.Question, d QueryDescriptor) *models.Question {
	out := *q
	out.Tags = append([]string{}, q.Tags...)
	out.Entities = nil
	out.AnswersCount = m.answerCount(q.ID)
	if d.IncludeVotes {
		out.Score = sumVotes(m.questionVotes(q.ID))
	}
	if d.IncludeTrend {
		out.Trend = m.trend(q.ID)
	}
	if d.IncludeEntities {
		out.Entities = append([]uint64{}, q.Entities...)
	}
	if d.IncludeComments {
		out.Comments = m.questionComments(q.ID)
	}
	if d.IncludeAnswers {
		for _, a := range m.questionAnswers(q.ID) {
			out.Answers = append(out.Answers, *a)
		}
	}
	return &out
}

func (m *Memory) QuestionByID(ctx context.Context, id uint) (*models.Question, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	q, ok := m.questions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return m.snapshotDetail(q), nil
}

func (m *Memory) RecordView(ctx context.Context, id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	q, ok := m.questions[id]
	if !ok {
		return ErrNotFound
	}
	q.Views++
	return nil
}

func (m *Memory) snapshotDetail(q *models.Question) *models.Question {
	out := *q
	out.Tags = append([]string{}, q.Tags...)
	out.Entities = append([]uint64{}, q.Entities...)
	out.Votes = m.questionVotes(q.ID)
	out.Score = sumVotes(out.Votes)
	out.Comments = m.questionComments(q.ID)
	for _, a := range m.questionAnswers(q.ID) {
		out.Answers = append(out.Answers, *m.snapshotAnswer(a))
	}
	out.AnswersCount = len(out.Answers)
	return &out
}

func (m *Memory) snapshotAnswer(a *models.Answer) *models.Answer {
	out := *a
	out.Votes = m.answerVotes(a.ID)
	out.Score = sumVotes(out.Votes)
	for _, c := range m.sortedComments() {
		if c.AnswerID != nil && *c.AnswerID == a.ID {
			out.Comments = append(out.Comments, *c)
		}
	}
	return &out
}

func (m *Memory) CreateQuestion(ctx context.Context, q *models.Question) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	q.ID = m.id()
	now := time.Now()
	q.CreatedAt = now
	q.UpdatedAt = now
	stored := *q
	stored.Tags = append([]string{}, q.Tags...)
	stored.Entities = append([]uint64{}, q.Entities...)
	m.questions[q.ID] = &stored
	return nil
}

func (m *Memory) UpdateQuestion(ctx context.Context, q *models.Question) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.questions[q.ID]
	if !ok {
		return ErrNotFound
	}
	stored.Title = q.Title
	stored.Content = q.Content
	stored.Tags = append([]string{}, q.Tags...)
	stored.Entities = append([]uint64{}, q.Entities...)
	stored.UpdatedAt = time.Now()
	return nil
}

func (m *Memory) DeleteQuestion(ctx context.Context, id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.questions[id]; !ok {
		return ErrNotFound
	}
	delete(m.questions, id)
	for aid, a := range m.answers {
		if a.QuestionID == id {
			delete(m.answers, aid)
		}
	}
	for cid, c := range m.comments {
		if c.QuestionID != nil && *c.QuestionID == id {
			delete(m.comments, cid)
		}
	}
	for k := range m.votes {
		if k.question == id {
			delete(m.votes, k)
		}
	}
	for k := range m.favorites {
		if k.question == id {
			delete(m.favorites, k)
		}
	}
	return nil
}

func (m *Memory) AnswerByID(ctx context.Context, questionID, answerID uint) (*models.Answer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.answers[answerID]
	if !ok || a.QuestionID != questionID {
		return nil, ErrNotFound
	}
	return m.snapshotAnswer(a), nil
}

func (m *Memory) CreateAnswer(ctx context.Context, a *models.Answer) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.questions[a.QuestionID]; !ok {
		return ErrNotFound
	}
	a.ID = m.id()
	now := time.Now()
	a.CreatedAt = now
	a.UpdatedAt = now
	stored := *a
	m.answers[a.ID] = &stored
	return nil
}

func (m *Memory) UpdateAnswer(ctx context.Context, a *models.Answer) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.answers[a.ID]
	if !ok || stored.QuestionID != a.QuestionID {
		return ErrNotFound
	}
	stored.Content = a.Content
	stored.UpdatedAt = time.Now()
	return nil
}

func (m *Memory) DeleteAnswer(ctx context.Context, questionID, answerID uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.answers[answerID]
	if !ok || a.QuestionID != questionID {
		return ErrNotFound
	}
	delete(m.answers, answerID)
	for cid, c := range m.comments {
		if c.AnswerID != nil && *c.AnswerID == answerID {
			delete(m.comments, cid)
		}
	}
	for k := range m.votes {
		if k.answer == answerID {
			delete(m.votes, k)
		}
	}
	return nil
}

func (m *Memory) CreateComment(ctx context.Context, c *models.Comment) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if c.AnswerID != nil {
		a, ok := m.answers[*c.AnswerID]
		if !ok || (c.QuestionID != nil && a.QuestionID != *c.QuestionID) {
			return ErrNotFound
		}
	} else {
		if c.QuestionID == nil {
			return ErrNotFound
		}
		if _, ok := m.questions[*c.QuestionID]; !ok {
			return ErrNotFound
		}
	}
	c.ID = m.id()
	c.CreatedAt = time.Now()
	stored := *c
	m.comments[c.ID] = &stored
	return nil
}

func (m *Memory) DeleteComment(ctx context.Context, ref Ref, commentID uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.comments[commentID]
	if !ok {
		return ErrNotFound
	}
	if ref.AnswerID != 0 {
		if c.AnswerID == nil || *c.AnswerID != ref.AnswerID {
			return ErrNotFound
		}
	} else {
		if c.AnswerID != nil || c.QuestionID == nil || *c.QuestionID != ref.QuestionID {
			return ErrNotFound
		}
	}
	delete(m.comments, commentID)
	return nil
}

func (m *Memory) CastVote(ctx context.Context, voterID uint, ref Ref, value int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if ref.AnswerID != 0 {
		a, ok := m.answers[ref.AnswerID]
		if !ok || a.QuestionID != ref.QuestionID {
			return ErrNotFound
		}
	} else if _, ok := m.questions[ref.QuestionID]; !ok {
		return ErrNotFound
	}

	key := voteKey{voter: voterID, question: ref.QuestionID, answer: ref.AnswerID}
	if v, ok := m.votes[key]; ok {
		v.Value = value
		return nil
	}
	m.votes[key] = &models.Vote{
		ID:         m.id(),
		UserID:     voterID,
		QuestionID: ref.QuestionID,
		AnswerID:   ref.AnswerID,
		Value:      value,
		CreatedAt:  time.Now(),
	}
	return nil
}

func (m *Memory) SetFavorite(ctx context.Context, viewerID, questionID uint, favored bool) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.questions[questionID]; !ok {
		return false, ErrNotFound
	}
	key := favKey{viewer: viewerID, question: questionID}
	_, present := m.favorites[key]
	if favored == present {
		return false, nil
	}
	if favored {
		m.favorites[key] = time.Now()
	} else {
		delete(m.favorites, key)
	}
	return true, nil
}

func (m *Memory) SetCorrect(ctx context.Context, questionID, answerID uint, correct bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.answers[answerID]
	if !ok || a.QuestionID != questionID {
		return ErrNotFound
	}
	if correct {
		for _, other := range m.answers {
			if other.QuestionID == questionID {
				other.Correct = false
			}
		}
	}
	a.Correct = correct
	return nil
}

func (m *Memory) ListTags(ctx context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	seen := map[string]bool{}
	tags := []string{}
	for _, q := range m.questions {
		for _, t := range q.Tags {
			if !seen[t] {
				seen[t] = true
				tags = append(tags, t)
			}
		}
	}
	sort.Strings(tags)
	return tags, nil
}

func (m *Memory) questionVotes(id uint) []models.Vote {
	var out []models.Vote
	for _, v := range m.votes {
		if v.QuestionID == id && v.AnswerID == 0 {
			out = append(out, *v)
		}
	}
	return out
}

func (m *Memory) answerVotes(id uint) []models.Vote {
	var out []models.Vote
	for _, v := range m.votes {
		if v.AnswerID == id {
			out = append(out, *v)
		}
	}
	return out
}

func (m *Memory) questionComments(id uint) []models.Comment {
	var out []models.Comment
	for _, c := range m.sortedComments() {
		if c.QuestionID != nil && *c.QuestionID == id && c.AnswerID == nil {
			out = append(out, *c)
		}
	}
	return out
}

func (m *Memory) questionAnswers(id uint) []*models.Answer {
	var out []*models.Answer
	for _, a := range m.answers {
		if a.QuestionID == id {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (m *Memory) sortedComments() []*models.Comment {
	out := make([]*models.Comment, 0, len(m.comments))
	for _, c := range m.comments {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (m *Memory) answerCount(questionID uint) int {
	n := 0
	for _, a := range m.answers {
		if a.QuestionID == questionID {
			n++
		}
	}
	return n
}

// anyTag reports whether any of the wanted tags is present; tag filters are
// ANY-match, not ALL-match.
func anyTag(have, want []string) bool {
	for _, w := range want {
		for _, h := range have {
			if h == w {
				return true
			}
		}
	}
	return false
}

func containsEntity(have []uint64, want uint64) bool {
	for _, e := range have {
		if e == want {
			return true
		}
	}
	return false
}

func (m *Memory) hasCorrectAnswer(questionID uint) bool {
	for _, a := range m.answers {
		if a.QuestionID == questionID && a.Correct {
			return true
		}
	}
	return false
}

func (m *Memory) CreateUser(ctx context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.users {
		if existing.Username == u.Username {
			return ErrDuplicate
		}
	}
	u.ID = m.id()
	now := time.Now()
	u.CreatedAt = now
	u.UpdatedAt = now
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

func (m *Memory) UserByName(ctx context.Context, username string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *Memory) UserByID(ctx context.Context, id uint) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *u
	return &cp, nil
}
