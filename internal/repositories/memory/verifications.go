package memory

import (
	"context"

	"autodocs/internal/models"
	"autodocs/internal/repositories"
)

type verificationStore struct {
	*Store
}

func (s *verificationStore) Create(_ context.Context, ch *models.VerificationChallenge) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch.ID = int64(s.next("challenge"))
	cp := *ch
	s.challenges = append(s.challenges, &cp)
	return nil
}

func (s *verificationStore) ConsumeLatest(
	_ context.Context,
	method models.VerificationMethod,
	email, token string,
	activate func(ch *models.VerificationChallenge) bool,
) (*models.VerificationChallenge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var latest *models.VerificationChallenge
	for _, c := range s.challenges {
		if c.Consumed || c.Method != method || c.Email != email || c.Token != token {
			continue
		}
		if latest == nil || !c.CreatedAt.Before(latest.CreatedAt) {
			latest = c
		}
	}
	if latest == nil {
		return nil, repositories.ErrNotFound
	}
	latest.Consumed = true
	out := *latest

	if activate != nil && activate(&out) {
		for _, u := range s.users {
			if u.Email == out.Email {
				u.IsActive = true
				u.UpdatedAt = s.now()
			}
		}
	}
	return &out, nil
}
