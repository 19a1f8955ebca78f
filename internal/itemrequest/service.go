package itemrequest

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// Users confirms that a user exists.
type Users interface {
	Exists(ctx context.Context, id int64) (bool, error)
}

// Answers reads and unlinks the items listed in response to requests.
type Answers interface {
	ListByRequests(ctx context.Context, requestIDs []int64) ([]Answer, error)
	DetachRequest(ctx context.Context, requestID int64) error
}

type Service interface {
	Create(ctx context.Context, requesterID int64, description string) (*Request, error)
	Get(ctx context.Context, id, callerID int64) (*View, error)
	// ListMine returns the caller's requests, newest first, each with its answers.
	ListMine(ctx context.Context, callerID int64) ([]*View, error)
	// ListOthers pages through requests made by other users, newest first.
	ListOthers(ctx context.Context, callerID int64, from, size int) ([]*View, int, error)
	Exists(ctx context.Context, id int64) (bool, error)
	// Delete removes the caller's own request. Items answering it stay listed but are unlinked.
	Delete(ctx context.Context, id, callerID int64) error
}

type service struct {
	repo    Repository
	users   Users
	answers Answers
	logger  *zap.Logger
}

func NewService(repo Repository, users Users, answers Answers, logger *zap.Logger) Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &service{
		repo:    repo,
		users:   users,
		answers: answers,
		logger:  logger,
	}
}

func (s *service) requireUser(ctx context.Context, id int64) error {
	ok, err := s.users.Exists(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to resolve user %d: %w", id, err)
	}
	if !ok {
		return ErrUserNotFound
	}
	return nil
}

func (s *service) Create(ctx context.Context, requesterID int64, description string) (*Request, error) {
	if err := s.requireUser(ctx, requesterID); err != nil {
		return nil, err
	}
	description = strings.TrimSpace(description)
	if description == "" {
		return nil, ErrDescriptionRequired
	}

	req := &Request{RequesterID: requesterID, Description: description}
	if err := s.repo.Create(ctx, req); err != nil {
		return nil, err
	}

	s.logger.Info("item request created", zap.Int64("request_id", req.ID), zap.Int64("requester_id", requesterID))
	return req, nil
}

func (s *service) Get(ctx context.Context, id, callerID int64) (*View, error) {
	if err := s.requireUser(ctx, callerID); err != nil {
		return nil, err
	}
	req, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	views, err := s.withAnswers(ctx, []*Request{req})
	if err != nil {
		return nil, err
	}
	return views[0], nil
}

func (s *service) ListMine(ctx context.Context, callerID int64) ([]*View, error) {
	if err := s.requireUser(ctx, callerID); err != nil {
		return nil, err
	}
	reqs, err := s.repo.ListByRequester(ctx, callerID)
	if err != nil {
		return nil, err
	}
	return s.withAnswers(ctx, reqs)
}

func (s *service) ListOthers(ctx context.Context, callerID int64, from, size int) ([]*View, int, error) {
	if err := s.requireUser(ctx, callerID); err != nil {
		return nil, 0, err
	}
	reqs, total, err := s.repo.ListExcept(ctx, callerID, from, size)
	if err != nil {
		return nil, 0, err
	}
	views, err := s.withAnswers(ctx, reqs)
	if err != nil {
		return nil, 0, err
	}
	return views, total, nil
}

func (s *service) Exists(ctx context.Context, id int64) (bool, error) {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (s *service) Delete(ctx context.Context, id, callerID int64) error {
	if err := s.requireUser(ctx, callerID); err != nil {
		return err
	}
	req, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if req.RequesterID != callerID {
		return ErrPermissionDenied
	}

	if err := s.answers.DetachRequest(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("item request deleted", zap.Int64("request_id", id))
	return nil
}

// withAnswers attaches answering items with a single lookup.
func (s *service) withAnswers(ctx context.Context, reqs []*Request) ([]*View, error) {
	views := make([]*View, len(reqs))
	if len(reqs) == 0 {
		return views, nil
	}

	ids := make([]int64, len(reqs))
	for i, r := range reqs {
		ids[i] = r.ID
	}
	answers, err := s.answers.ListByRequests(ctx, ids)
	if err != nil {
		return nil, err
	}

	byRequest := make(map[int64][]Answer, len(reqs))
	for _, a := range answers {
		byRequest[a.RequestID] = append(byRequest[a.RequestID], a)
	}
	for i, r := range reqs {
		list := byRequest[r.ID]
		if list == nil {
			list = []Answer{}
		}
		views[i] = &View{Request: r, Answers: list}
	}
	return views, nil
}
