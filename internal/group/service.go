package group

import (
	"context"
	"errors"
)

// Common errors
var (
	ErrGroupNotFound       = errors.New("group not found")
	ErrMemberAlreadyExists = errors.New("user is already a member of this group")
	ErrNotMember           = errors.New("user is not a member of this group")
)

// Service handles group business logic.
type Service struct {
	repo *Repository
}

// NewService creates a new group service.
func NewService(repo *Repository) *Service {
	return &Service{repo: repo}
}

// Create creates a new group with the creator as admin.
func (s *Service) Create(ctx context.Context, creatorID int64, req *CreateGroupRequest) (*Group, error) {
	return s.repo.CreateWithAdmin(ctx, creatorID, req)
}

// GetByIDWithMembers retrieves a group with all its members.
func (s *Service) GetByIDWithMembers(ctx context.Context, id int64) (*Group, []*GroupMember, error) {
	g, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if g == nil {
		return nil, nil, ErrGroupNotFound
	}

	members, err := s.repo.GetMembers(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	return g, members, nil
}

// AddMember adds a user to a group. The caller must already be a member.
func (s *Service) AddMember(ctx context.Context, groupID, callerID, userID int64) (*GroupMember, error) {
	g, err := s.repo.GetByID(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if g == nil {
		return nil, ErrGroupNotFound
	}

	callerIsMember, err := s.repo.IsMember(ctx, groupID, callerID)
	if err != nil {
		return nil, err
	}
	if !callerIsMember {
		return nil, ErrNotMember
	}

	alreadyMember, err := s.repo.IsMember(ctx, groupID, userID)
	if err != nil {
		return nil, err
	}
	if alreadyMember {
		return nil, ErrMemberAlreadyExists
	}

	return s.repo.AddMember(ctx, groupID, userID)
}

// ListByUserID retrieves a page of the groups a user belongs to.
func (s *Service) ListByUserID(ctx context.Context, userID int64, page, perPage int) ([]*Group, int, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	offset := (page - 1) * perPage
	return s.repo.ListByUserID(ctx, userID, perPage, offset)
}
