// Package servicetest provides stateful in-memory repositories for service
// tests. The shared Store keeps a deterministic clock: each write takes the
// current time and advances it by Step, so Step=0 yields equal timestamps
// for tie-break tests while the insertion counter still increases.
package servicetest

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/forvaidya/icomment/internal/domain"
	"github.com/forvaidya/icomment/internal/repository"
)

var ErrDown = errors.New("backing store unreachable")

type Store struct {
	Now  time.Time
	Step time.Duration
	seq  int64

	Users       map[uuid.UUID]*domain.User
	Discussions map[uuid.UUID]*domain.Discussion
	Comments    map[uuid.UUID]*domain.Comment
	Attachments map[uuid.UUID]*domain.Attachment
	Logs        []*domain.ModerationLog

	// FailAll makes every repository call fail, simulating an unreachable
	// backing store.
	FailAll bool
}

func NewStore() *Store {
	return &Store{
		Now:         time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
		Step:        time.Second,
		Users:       make(map[uuid.UUID]*domain.User),
		Discussions: make(map[uuid.UUID]*domain.Discussion),
		Comments:    make(map[uuid.UUID]*domain.Comment),
		Attachments: make(map[uuid.UUID]*domain.Attachment),
	}
}

func (s *Store) tick() time.Time {
	t := s.Now
	s.Now = s.Now.Add(s.Step)
	return t
}

// AddUser seeds a user directly.
func (s *Store) AddUser(username string, admin bool) *domain.User {
	now := s.tick()
	u := &domain.User{
		ID:        uuid.New(),
		Username:  username,
		Kind:      domain.UserKindLocal,
		IsAdmin:   admin,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.Users[u.ID] = u
	return u
}

func (s *Store) UserRepo() repository.UserRepository             { return &userRepo{s} }
func (s *Store) DiscussionRepo() repository.DiscussionRepository { return &discussionRepo{s} }
func (s *Store) CommentRepo() repository.CommentRepository       { return &commentRepo{s} }
func (s *Store) AttachmentRepo() repository.AttachmentRepository { return &attachmentRepo{s} }
func (s *Store) ModerationLogRepo() repository.ModerationLogRepository {
	return &moderationLogRepo{s}
}

type userRepo struct{ s *Store }

func (r *userRepo) Create(_ context.Context, user *domain.User) error {
	if r.s.FailAll {
		return ErrDown
	}
	for _, existing := range r.s.Users {
		if existing.Username == user.Username {
			return errors.New("unique violation: username")
		}
	}
	now := r.s.tick()
	user.CreatedAt = now
	user.UpdatedAt = now
	stored := *user
	r.s.Users[user.ID] = &stored
	return nil
}

func (r *userRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	if r.s.FailAll {
		return nil, ErrDown
	}
	u, ok := r.s.Users[id]
	if !ok {
		return nil, nil
	}
	copied := *u
	return &copied, nil
}

func (r *userRepo) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	if r.s.FailAll {
		return nil, ErrDown
	}
	for _, u := range r.s.Users {
		if u.Username == username {
			copied := *u
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *userRepo) GetBySubject(_ context.Context, subject string) (*domain.User, error) {
	if r.s.FailAll {
		return nil, ErrDown
	}
	for _, u := range r.s.Users {
		if u.Subject != nil && *u.Subject == subject {
			copied := *u
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *userRepo) SetAdmin(_ context.Context, id uuid.UUID, isAdmin bool) error {
	if r.s.FailAll {
		return ErrDown
	}
	if u, ok := r.s.Users[id]; ok {
		u.IsAdmin = isAdmin
		u.UpdatedAt = r.s.tick()
	}
	return nil
}

func (r *userRepo) CountAuthored(_ context.Context, id uuid.UUID) (int64, error) {
	if r.s.FailAll {
		return 0, ErrDown
	}
	var count int64
	for _, d := range r.s.Discussions {
		if d.CreatedBy == id {
			count++
		}
	}
	for _, c := range r.s.Comments {
		if c.AuthorID == id {
			count++
		}
	}
	return count, nil
}

func (r *userRepo) Delete(_ context.Context, id uuid.UUID) error {
	if r.s.FailAll {
		return ErrDown
	}
	delete(r.s.Users, id)
	return nil
}

type discussionRepo struct{ s *Store }

func (r *discussionRepo) Create(_ context.Context, discussion *domain.Discussion) error {
	if r.s.FailAll {
		return ErrDown
	}
	now := r.s.tick()
	discussion.CreatedAt = now
	discussion.UpdatedAt = now
	stored := *discussion
	r.s.Discussions[discussion.ID] = &stored
	return nil
}

func (r *discussionRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Discussion, error) {
	if r.s.FailAll {
		return nil, ErrDown
	}
	d, ok := r.s.Discussions[id]
	if !ok || d.DeletedAt != nil {
		return nil, nil
	}
	copied := *d
	return &copied, nil
}

func (r *discussionRepo) List(_ context.Context, params domain.PaginationParams) ([]domain.Discussion, int64, error) {
	if r.s.FailAll {
		return nil, 0, ErrDown
	}
	var live []domain.Discussion
	for _, d := range r.s.Discussions {
		if d.DeletedAt == nil {
			live = append(live, *d)
		}
	}
	sort.Slice(live, func(i, j int) bool {
		return live[i].CreatedAt.After(live[j].CreatedAt)
	})
	total := int64(len(live))
	start := params.Offset()
	if start > len(live) {
		start = len(live)
	}
	end := start + params.PageSize
	if end > len(live) {
		end = len(live)
	}
	return live[start:end], total, nil
}

func (r *discussionRepo) SetArchived(_ context.Context, id uuid.UUID, archived bool) error {
	if r.s.FailAll {
		return ErrDown
	}
	if d, ok := r.s.Discussions[id]; ok && d.DeletedAt == nil {
		d.IsArchived = archived
		d.UpdatedAt = r.s.tick()
	}
	return nil
}

func (r *discussionRepo) SoftDelete(_ context.Context, id uuid.UUID) error {
	if r.s.FailAll {
		return ErrDown
	}
	if d, ok := r.s.Discussions[id]; ok && d.DeletedAt == nil {
		at := r.s.tick()
		d.DeletedAt = &at
	}
	return nil
}

type commentRepo struct{ s *Store }

func (r *commentRepo) Create(_ context.Context, comment *domain.Comment) error {
	if r.s.FailAll {
		return ErrDown
	}
	r.s.seq++
	comment.Seq = r.s.seq
	now := r.s.tick()
	comment.CreatedAt = now
	comment.UpdatedAt = now
	stored := *comment
	r.s.Comments[comment.ID] = &stored
	return nil
}

func (r *commentRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Comment, error) {
	if r.s.FailAll {
		return nil, ErrDown
	}
	c, ok := r.s.Comments[id]
	if !ok || c.DeletedAt != nil {
		return nil, nil
	}
	copied := *c
	return &copied, nil
}

func (r *commentRepo) GetIncludingDeleted(_ context.Context, id uuid.UUID) (*domain.Comment, error) {
	if r.s.FailAll {
		return nil, ErrDown
	}
	c, ok := r.s.Comments[id]
	if !ok {
		return nil, nil
	}
	copied := *c
	return &copied, nil
}

func (r *commentRepo) UpdateContent(_ context.Context, comment *domain.Comment) error {
	if r.s.FailAll {
		return ErrDown
	}
	c, ok := r.s.Comments[comment.ID]
	if !ok || c.DeletedAt != nil {
		return sql.ErrNoRows
	}
	c.Content = comment.Content
	c.UpdatedAt = r.s.tick()
	comment.UpdatedAt = c.UpdatedAt
	return nil
}

func (r *commentRepo) SoftDelete(_ context.Context, id uuid.UUID) error {
	if r.s.FailAll {
		return ErrDown
	}
	if c, ok := r.s.Comments[id]; ok && c.DeletedAt == nil {
		at := r.s.tick()
		c.DeletedAt = &at
	}
	return nil
}

func (r *commentRepo) Restore(_ context.Context, id uuid.UUID) error {
	if r.s.FailAll {
		return ErrDown
	}
	if c, ok := r.s.Comments[id]; ok {
		c.DeletedAt = nil
	}
	return nil
}

func (r *commentRepo) ListByDiscussion(_ context.Context, discussionID uuid.UUID) ([]domain.Comment, error) {
	if r.s.FailAll {
		return nil, ErrDown
	}
	var rows []domain.Comment
	for _, c := range r.s.Comments {
		if c.DiscussionID == discussionID {
			rows = append(rows, *c)
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].CreatedAt.Equal(rows[j].CreatedAt) {
			return rows[i].Seq < rows[j].Seq
		}
		return rows[i].CreatedAt.Before(rows[j].CreatedAt)
	})
	return rows, nil
}

type attachmentRepo struct{ s *Store }

func (r *attachmentRepo) Create(_ context.Context, attachment *domain.Attachment) error {
	if r.s.FailAll {
		return ErrDown
	}
	attachment.CreatedAt = r.s.tick()
	stored := *attachment
	r.s.Attachments[attachment.ID] = &stored
	return nil
}

func (r *attachmentRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Attachment, error) {
	if r.s.FailAll {
		return nil, ErrDown
	}
	a, ok := r.s.Attachments[id]
	if !ok {
		return nil, nil
	}
	copied := *a
	return &copied, nil
}

func (r *attachmentRepo) ListByComment(_ context.Context, commentID uuid.UUID) ([]domain.Attachment, error) {
	if r.s.FailAll {
		return nil, ErrDown
	}
	var rows []domain.Attachment
	for _, a := range r.s.Attachments {
		if a.CommentID == commentID {
			rows = append(rows, *a)
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].CreatedAt.Before(rows[j].CreatedAt) })
	return rows, nil
}

func (r *attachmentRepo) Delete(_ context.Context, id uuid.UUID) error {
	if r.s.FailAll {
		return ErrDown
	}
	delete(r.s.Attachments, id)
	return nil
}

func (r *attachmentRepo) DeleteByComment(_ context.Context, commentID uuid.UUID) ([]string, error) {
	if r.s.FailAll {
		return nil, ErrDown
	}
	var keys []string
	for id, a := range r.s.Attachments {
		if a.CommentID == commentID {
			keys = append(keys, a.ObjectKey)
			delete(r.s.Attachments, id)
		}
	}
	return keys, nil
}

type moderationLogRepo struct{ s *Store }

func (r *moderationLogRepo) Create(_ context.Context, entry *domain.ModerationLog) error {
	if r.s.FailAll {
		return ErrDown
	}
	entry.CreatedAt = r.s.tick()
	stored := *entry
	r.s.Logs = append(r.s.Logs, &stored)
	return nil
}

func (r *moderationLogRepo) ListRecent(_ context.Context, params domain.PaginationParams) ([]domain.ModerationLog, int64, error) {
	if r.s.FailAll {
		return nil, 0, ErrDown
	}
	entries := make([]domain.ModerationLog, 0, len(r.s.Logs))
	for i := len(r.s.Logs) - 1; i >= 0; i-- {
		entries = append(entries, *r.s.Logs[i])
	}
	total := int64(len(entries))
	start := params.Offset()
	if start > len(entries) {
		start = len(entries)
	}
	end := start + params.PageSize
	if end > len(entries) {
		end = len(entries)
	}
	return entries[start:end], total, nil
}
