package store

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/askora/askora/models"
)

const (
	defaultLimit = 20
	maxLimit     = 100

	// trendWindow bounds the vote-recency window backing the trend sort key.
	trendWindow = 7 * 24 * time.Hour
)

// Gorm is the MySQL-backed ContentStore.
type Gorm struct {
	db *gorm.DB
}

// NewGorm wraps an initialized gorm connection.
func NewGorm(db *gorm.DB) *Gorm {
	return &Gorm{db: db}
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

func pageBounds(d QueryDescriptor) (limit, offset int) {
	limit = d.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	offset = d.Offset
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

func (g *Gorm) SearchQuestions(ctx context.Context, viewerID uint, d QueryDescriptor) ([]models.Question, int64, error) {
	q := g.db.WithContext(ctx).Model(&models.Question{})

	if d.Author != 0 {
		q = q.Where("user_id = ?", d.Author)
	}
	if d.SearchQuery != "" {
		like := "%" + d.SearchQuery + "%"
		q = q.Where("title LIKE ? OR content LIKE ?", like, like)
	}
	if len(d.Tags) > 0 {
		q = q.Where("id IN (SELECT question_id FROM question_tags WHERE tag IN ?)", d.Tags)
	}
	if d.Entity != 0 {
		q = q.Where("id IN (SELECT question_id FROM question_entities WHERE entity_ref = ?)", d.Entity)
	}
	if d.NoAnswers {
		q = q.Where("NOT EXISTS (SELECT 1 FROM answers WHERE answers.question_id = questions.id)")
	}
	if d.NoCorrectAnswer {
		q = q.Where("NOT EXISTS (SELECT 1 FROM answers WHERE answers.question_id = questions.id AND answers.correct)")
	}
	if d.NoVotes {
		q = q.Where("NOT EXISTS (SELECT 1 FROM votes WHERE votes.question_id = questions.id AND votes.answer_id = 0)")
	}
	if d.Favorite {
		q = q.Where("id IN (SELECT question_id FROM favorites WHERE user_id = ?)", viewerID)
	}

	var out []models.Question
	var total int64

	if d.RandomOrder {
		if err := q.Order("RAND()").Limit(1).Find(&out).Error; err != nil {
			return nil, 0, err
		}
		total = int64(len(out))
	} else {
		if err := q.Count(&total).Error; err != nil {
			return nil, 0, err
		}
		limit, offset := pageBounds(d)
		if err := q.Order(orderClause(d)).Offset(offset).Limit(limit).Find(&out).Error; err != nil {
			return nil, 0, err
		}
	}

	if err := g.hydrateListing(ctx, out, d); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func orderClause(d QueryDescriptor) string {
	dir := "DESC"
	if d.Order == "asc" {
		dir = "ASC"
	}
	switch d.OrderBy {
	case OrderByViews:
		return "views " + dir
	case OrderByScore:
		return "(SELECT COALESCE(SUM(value), 0) FROM votes WHERE votes.question_id = questions.id AND votes.answer_id = 0) " + dir
	case OrderByAnswersCount:
		return "(SELECT COUNT(*) FROM answers WHERE answers.question_id = questions.id) " + dir
	case OrderByUpdated:
		return "updated_at " + dir
	case OrderByTrend:
		cutoff := time.Now().Add(-trendWindow).Format("2006-01-02 15:04:05")
		return "(SELECT COUNT(*) FROM votes WHERE votes.question_id = questions.id AND votes.answer_id = 0 AND votes.created_at > '" + cutoff + "') " + dir
	default:
		return "created_at " + dir
	}
}

// hydrateListing fills nested collections and aggregates for a page of
// questions. Listing items never carry viewer projections.
func (g *Gorm) hydrateListing(ctx context.Context, qs []models.Question, d QueryDescriptor) error {
	if len(qs) == 0 {
		return nil
	}
	ids := make([]uint, len(qs))
	byID := make(map[uint]*models.Question, len(qs))
	for i := range qs {
		qs[i].Tags = []string{}
		ids[i] = qs[i].ID
		byID[qs[i].ID] = &qs[i]
	}

	var tags []models.QuestionTag
	if err := g.db.WithContext(ctx).Where("question_id IN ?", ids).Find(&tags).Error; err != nil {
		return err
	}
	for _, t := range tags {
		q := byID[t.QuestionID]
		q.Tags = append(q.Tags, t.Tag)
	}

	type agg struct {
		QuestionID uint
		N          int
	}

	var counts []agg
	if err := g.db.WithContext(ctx).Model(&models.Answer{}).
		Select("question_id, COUNT(*) AS n").Where("question_id IN ?", ids).
		Group("question_id").Scan(&counts).Error; err != nil {
		return err
	}
	for _, c := range counts {
		byID[c.QuestionID].AnswersCount = c.N
	}

	if d.IncludeVotes {
		var scores []agg
		if err := g.db.WithContext(ctx).Model(&models.Vote{}).
			Select("question_id, COALESCE(SUM(value), 0) AS n").
			Where("question_id IN ? AND answer_id = 0", ids).Group("question_id").Scan(&scores).Error; err != nil {
			return err
		}
		for _, s := range scores {
			byID[s.QuestionID].Score = s.N
		}
	}

	if d.IncludeTrend {
		cutoff := time.Now().Add(-trendWindow)
		var trends []agg
		if err := g.db.WithContext(ctx).Model(&models.Vote{}).
			Select("question_id, COUNT(*) AS n").
			Where("question_id IN ? AND answer_id = 0 AND created_at > ?", ids, cutoff).
			Group("question_id").Scan(&trends).Error; err != nil {
			return err
		}
		for _, tr := range trends {
			byID[tr.QuestionID].Trend = tr.N
		}
	}

	if d.IncludeEntities {
		var ents []models.QuestionEntity
		if err := g.db.WithContext(ctx).Where("question_id IN ?", ids).Find(&ents).Error; err != nil {
			return err
		}
		for _, e := range ents {
			q := byID[e.QuestionID]
			q.Entities = append(q.Entities, e.EntityRef)
		}
	}

	if d.IncludeComments {
		var comments []models.Comment
		if err := g.db.WithContext(ctx).
			Where("question_id IN ? AND answer_id IS NULL", ids).
			Order("created_at").Find(&comments).Error; err != nil {
			return err
		}
		for _, c := range comments {
			q := byID[*c.QuestionID]
			q.Comments = append(q.Comments, c)
		}
	}

	if d.IncludeAnswers {
		var answers []models.Answer
		if err := g.db.WithContext(ctx).Where("question_id IN ?", ids).
			Order("created_at").Find(&answers).Error; err != nil {
			return err
		}
		for _, a := range answers {
			q := byID[a.QuestionID]
			q.Answers = append(q.Answers, a)
		}
	}

	return nil
}

func (g *Gorm) QuestionByID(ctx context.Context, id uint) (*models.Question, error) {
	var q models.Question
	if err := g.db.WithContext(ctx).First(&q, id).Error; err != nil {
		return nil, notFound(err)
	}

	if err := g.hydrateQuestion(ctx, &q); err != nil {
		return nil, err
	}
	return &q, nil
}

func (g *Gorm) RecordView(ctx context.Context, id uint) error {
	res := g.db.WithContext(ctx).Model(&models.Question{}).Where("id = ?", id).
		UpdateColumn("views", gorm.Expr("views + 1"))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// hydrateQuestion loads the full aggregate: tags, entities, vote rows,
// question comments, and every answer with its own votes and comments.
func (g *Gorm) hydrateQuestion(ctx context.Context, q *models.Question) error {
	db := g.db.WithContext(ctx)

	q.Tags = []string{}
	var tags []models.QuestionTag
	if err := db.Where("question_id = ?", q.ID).Find(&tags).Error; err != nil {
		return err
	}
	for _, t := range tags {
		q.Tags = append(q.Tags, t.Tag)
	}

	var ents []models.QuestionEntity
	if err := db.Where("question_id = ?", q.ID).Find(&ents).Error; err != nil {
		return err
	}
	for _, e := range ents {
		q.Entities = append(q.Entities, e.EntityRef)
	}

	if err := db.Where("question_id = ? AND answer_id = 0", q.ID).
		Order("created_at").Find(&q.Votes).Error; err != nil {
		return err
	}
	q.Score = sumVotes(q.Votes)

	if err := db.Where("question_id = ? AND answer_id IS NULL", q.ID).
		Order("created_at").Find(&q.Comments).Error; err != nil {
		return err
	}

	if err := db.Where("question_id = ?", q.ID).Order("created_at").Find(&q.Answers).Error; err != nil {
		return err
	}
	q.AnswersCount = len(q.Answers)
	for i := range q.Answers {
		if err := g.hydrateAnswer(ctx, &q.Answers[i]); err != nil {
			return err
		}
	}
	return nil
}

func (g *Gorm) hydrateAnswer(ctx context.Context, a *models.Answer) error {
	db := g.db.WithContext(ctx)
	if err := db.Where("answer_id = ?", a.ID).Order("created_at").Find(&a.Votes).Error; err != nil {
		return err
	}
	a.Score = sumVotes(a.Votes)
	return db.Where("answer_id = ?", a.ID).Order("created_at").Find(&a.Comments).Error
}

func sumVotes(votes []models.Vote) int {
	s := 0
	for i := range votes {
		s += votes[i].Value
	}
	return s
}

func (g *Gorm) CreateQuestion(ctx context.Context, q *models.Question) error {
	return g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(q).Error; err != nil {
			return err
		}
		return replaceQuestionChildren(tx, q)
	})
}

func (g *Gorm) UpdateQuestion(ctx context.Context, q *models.Question) error {
	return g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Question{}).Where("id = ?", q.ID).Updates(map[string]interface{}{
			"title":   q.Title,
			"content": q.Content,
		})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		if err := tx.Where("question_id = ?", q.ID).Delete(&models.QuestionTag{}).Error; err != nil {
			return err
		}
		if err := tx.Where("question_id = ?", q.ID).Delete(&models.QuestionEntity{}).Error; err != nil {
			return err
		}
		return replaceQuestionChildren(tx, q)
	})
}

func replaceQuestionChildren(tx *gorm.DB, q *models.Question) error {
	for _, t := range q.Tags {
		if err := tx.Create(&models.QuestionTag{QuestionID: q.ID, Tag: t}).Error; err != nil {
			return err
		}
	}
	for _, e := range q.Entities {
		if err := tx.Create(&models.QuestionEntity{QuestionID: q.ID, EntityRef: e}).Error; err != nil {
			return err
		}
	}
	return nil
}

func (g *Gorm) DeleteQuestion(ctx context.Context, id uint) error {
	return g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&models.Question{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		// Hard cascade: nothing under the question stays retrievable.
		if err := tx.Where("question_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("question_id = ?", id).Delete(&models.Vote{}).Error; err != nil {
			return err
		}
		if err := tx.Where("answer_id IN (SELECT id FROM answers WHERE question_id = ?)", id).
			Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("answer_id IN (SELECT id FROM answers WHERE question_id = ?)", id).
			Delete(&models.Vote{}).Error; err != nil {
			return err
		}
		if err := tx.Where("question_id = ?", id).Delete(&models.Answer{}).Error; err != nil {
			return err
		}
		if err := tx.Where("question_id = ?", id).Delete(&models.Favorite{}).Error; err != nil {
			return err
		}
		if err := tx.Where("question_id = ?", id).Delete(&models.QuestionTag{}).Error; err != nil {
			return err
		}
		return tx.Where("question_id = ?", id).Delete(&models.QuestionEntity{}).Error
	})
}

func (g *Gorm) AnswerByID(ctx context.Context, questionID, answerID uint) (*models.Answer, error) {
	var a models.Answer
	err := g.db.WithContext(ctx).
		Where("id = ? AND question_id = ?", answerID, questionID).First(&a).Error
	if err != nil {
		return nil, notFound(err)
	}
	if err := g.hydrateAnswer(ctx, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

func (g *Gorm) CreateAnswer(ctx context.Context, a *models.Answer) error {
	var n int64
	if err := g.db.WithContext(ctx).Model(&models.Question{}).
		Where("id = ?", a.QuestionID).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return g.db.WithContext(ctx).Create(a).Error
}

func (g *Gorm) UpdateAnswer(ctx context.Context, a *models.Answer) error {
	res := g.db.WithContext(ctx).Model(&models.Answer{}).
		Where("id = ? AND question_id = ?", a.ID, a.QuestionID).
		Update("content", a.Content)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (g *Gorm) DeleteAnswer(ctx context.Context, questionID, answerID uint) error {
	return g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ? AND question_id = ?", answerID, questionID).Delete(&models.Answer{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		if err := tx.Where("answer_id = ?", answerID).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		return tx.Where("answer_id = ?", answerID).Delete(&models.Vote{}).Error
	})
}

func (g *Gorm) CreateComment(ctx context.Context, c *models.Comment) error {
	db := g.db.WithContext(ctx)
	if c.AnswerID != nil {
		var n int64
		if err := db.Model(&models.Answer{}).
			Where("id = ? AND question_id = ?", *c.AnswerID, deref(c.QuestionID)).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return ErrNotFound
		}
	} else {
		var n int64
		if err := db.Model(&models.Question{}).Where("id = ?", deref(c.QuestionID)).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return ErrNotFound
		}
	}
	return db.Create(c).Error
}

func (g *Gorm) DeleteComment(ctx context.Context, ref Ref, commentID uint) error {
	db := g.db.WithContext(ctx).Where("id = ?", commentID)
	// Parent check guards against cross-entity comment-id confusion.
	if ref.AnswerID != 0 {
		db = db.Where("answer_id = ?", ref.AnswerID)
	} else {
		db = db.Where("question_id = ? AND answer_id IS NULL", ref.QuestionID)
	}
	res := db.Delete(&models.Comment{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (g *Gorm) CastVote(ctx context.Context, voterID uint, ref Ref, value int) error {
	db := g.db.WithContext(ctx)

	var n int64
	if ref.AnswerID != 0 {
		if err := db.Model(&models.Answer{}).
			Where("id = ? AND question_id = ?", ref.AnswerID, ref.QuestionID).Count(&n).Error; err != nil {
			return err
		}
	} else {
		if err := db.Model(&models.Question{}).Where("id = ?", ref.QuestionID).Count(&n).Error; err != nil {
			return err
		}
	}
	if n == 0 {
		return ErrNotFound
	}

	// Single-statement upsert (ON DUPLICATE KEY UPDATE) against the
	// (voter, target) unique index; concurrent first votes collapse to one
	// row without any explicit locking.
	v := models.Vote{UserID: voterID, QuestionID: ref.QuestionID, AnswerID: ref.AnswerID, Value: value}
	return db.Clauses(clause.OnConflict{
		DoUpdates: clause.Assignments(map[string]interface{}{"value": value}),
	}).Create(&v).Error
}

func (g *Gorm) SetFavorite(ctx context.Context, viewerID, questionID uint, favored bool) (bool, error) {
	db := g.db.WithContext(ctx)
	var n int64
	if err := db.Model(&models.Question{}).Where("id = ?", questionID).Count(&n).Error; err != nil {
		return false, err
	}
	if n == 0 {
		return false, ErrNotFound
	}

	if favored {
		var existing models.Favorite
		err := db.Where("user_id = ? AND question_id = ?", viewerID, questionID).First(&existing).Error
		if err == nil {
			return false, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return false, err
		}
		fav := models.Favorite{UserID: viewerID, QuestionID: questionID}
		return true, db.Create(&fav).Error
	}

	res := db.Where("user_id = ? AND question_id = ?", viewerID, questionID).Delete(&models.Favorite{})
	return res.RowsAffected > 0, res.Error
}

func (g *Gorm) SetCorrect(ctx context.Context, questionID, answerID uint, correct bool) error {
	return g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&models.Answer{}).
			Where("id = ? AND question_id = ?", answerID, questionID).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return ErrNotFound
		}
		if correct {
			// Supersede any previously correct answer in the same transaction.
			if err := tx.Model(&models.Answer{}).
				Where("question_id = ? AND correct", questionID).
				Update("correct", false).Error; err != nil {
				return err
			}
			return tx.Model(&models.Answer{}).Where("id = ?", answerID).
				Update("correct", true).Error
		}
		return tx.Model(&models.Answer{}).Where("id = ?", answerID).
			Update("correct", false).Error
	})
}

func (g *Gorm) ListTags(ctx context.Context) ([]string, error) {
	tags := []string{}
	err := g.db.WithContext(ctx).Model(&models.QuestionTag{}).
		Distinct("tag").Order("tag").Pluck("tag", &tags).Error
	return tags, err
}

func deref(p *uint) uint {
	if p == nil {
		return 0
	}
	return *p
}

func (g *Gorm) CreateUser(ctx context.Context, u *models.User) error {
	return g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.User{}).
			Where("username = ?", u.Username).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrDuplicate
		}
		return tx.Create(u).Error
	})
}

func (g *Gorm) UserByName(ctx context.Context, username string) (*models.User, error) {
	var u models.User
	if err := g.db.WithContext(ctx).Where("username = ?", username).First(&u).Error; err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

func (g *Gorm) UserByID(ctx context.Context, id uint) (*models.User, error) {
	var u models.User
	if err := g.db.WithContext(ctx).First(&u, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}
