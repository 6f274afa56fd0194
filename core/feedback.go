package core

import "context"

// Feedback is a user's swipe history: the ids marked liked and disliked,
// each sorted. A city may appear in both when swipes are merge-only.
type Feedback struct {
	Liked    []string `json:"liked"`
	Disliked []string `json:"disliked"`
}

// Seen returns every id present in either namespace.
func (f *Feedback) Seen() []string {
	if f == nil {
		return nil
	}
	out := make([]string, 0, len(f.Liked)+len(f.Disliked))
	out = append(out, f.Liked...)
	return append(out, f.Disliked...)
}

// FeedbackReader reads a user's feedback. A user with no history gets an
// empty Feedback, not an error.
type FeedbackReader interface {
	Get(ctx context.Context, userID string) (*Feedback, error)
}
