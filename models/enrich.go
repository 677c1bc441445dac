package models

// ApplyViewer attaches the viewer-relative projection to a question and,
// recursively, to every hydrated answer and comment. It mutates the entity in
// place and returns it; a nil question is a no-op.
//
// The projection is computed fresh from the canonical vote and author records
// on every call and must never be persisted.
func (q *Question) ApplyViewer(viewerID uint) *Question {
	if q == nil {
		return nil
	}
	q.Own = q.UserID == viewerID
	q.OwnVote = ownVote(viewerID, q.Votes)
	for i := range q.Comments {
		q.Comments[i].Own = q.Comments[i].UserID == viewerID
	}
	for i := range q.Answers {
		q.Answers[i].ApplyViewer(viewerID)
	}
	return q
}

// ApplyViewer attaches the viewer-relative projection to an answer. Answers
// carry their own author and vote context, independent of the parent question.
func (a *Answer) ApplyViewer(viewerID uint) *Answer {
	if a == nil {
		return nil
	}
	a.Own = a.UserID == viewerID
	a.OwnVote = ownVote(viewerID, a.Votes)
	for i := range a.Comments {
		a.Comments[i].Own = a.Comments[i].UserID == viewerID
	}
	return a
}

func ownVote(viewerID uint, votes []Vote) *int {
	for i := range votes {
		if votes[i].UserID == viewerID {
			v := votes[i].Value
			return &v
		}
	}
	return nil
}
