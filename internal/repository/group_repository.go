package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/course-hub-api/internal/models"
)

// GroupRepository reads final-project groups and their membership.
type GroupRepository struct {
	db *sqlx.DB
}

// NewGroupRepository creates a new group repository.
func NewGroupRepository(db *sqlx.DB) *GroupRepository {
	return &GroupRepository{db: db}
}

// GetByID returns a group.
func (r *GroupRepository) GetByID(ctx context.Context, id string) (*models.Group, error) {
	const query = `SELECT id, name, repo_url, created_at, updated_at FROM groups WHERE id = $1`
	var group models.Group
	if err := r.db.GetContext(ctx, &group, query, id); err != nil {
		return nil, fmt.Errorf("get group: %w", err)
	}
	return &group, nil
}

// IsMember reports whether the user belongs to the group.
func (r *GroupRepository) IsMember(ctx context.Context, groupID, userID string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM group_members WHERE group_id = $1 AND user_id = $2)`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, groupID, userID); err != nil {
		return false, fmt.Errorf("check membership: %w", err)
	}
	return exists, nil
}

// ListMembers returns all members of a group ordered by join time.
func (r *GroupRepository) ListMembers(ctx context.Context, groupID string) ([]models.GroupMember, error) {
	const query = `SELECT id, group_id, user_id, joined_at FROM group_members
        WHERE group_id = $1 ORDER BY joined_at`
	var members []models.GroupMember
	if err := r.db.SelectContext(ctx, &members, query, groupID); err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	return members, nil
}

// CountGroups returns the number of groups.
func (r *GroupRepository) CountGroups(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM groups`); err != nil {
		return 0, fmt.Errorf("count groups: %w", err)
	}
	return count, nil
}

// CountMemberships returns the total number of group membership rows.
// A student in two groups counts twice.
func (r *GroupRepository) CountMemberships(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM group_members`); err != nil {
		return 0, fmt.Errorf("count memberships: %w", err)
	}
	return count, nil
}
