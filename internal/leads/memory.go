package leads

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// memoryRepo backs local development when DATABASE_URL is unset, and the
// tests. Same contract as the Postgres repo.
type memoryRepo struct {
	mu       sync.RWMutex
	leads    map[int64]Lead
	messages []Message
	nextLead int64
	nextMsg  int64
}

func NewMemoryRepo() Repo {
	return &memoryRepo{
		leads:    make(map[int64]Lead),
		nextLead: 1,
		nextMsg:  1,
	}
}

func (r *memoryRepo) CreateLead(ctx context.Context, l *Lead) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, ex := range r.leads {
		if ex.Email == l.Email {
			return fmt.Errorf("lead with email %s: %w", l.Email, ErrConflict)
		}
	}

	l.ID = r.nextLead
	r.nextLead++
	if l.CreatedAt.IsZero() {
		l.CreatedAt = time.Now().UTC()
	}
	r.leads[l.ID] = *l
	return nil
}

func (r *memoryRepo) GetLead(ctx context.Context, id int64) (*Lead, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	l, ok := r.leads[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := l
	return &cp, nil
}

func (r *memoryRepo) findLead(match func(Lead) bool) (*Lead, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, l := range r.leads {
		if match(l) {
			cp := l
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (r *memoryRepo) GetLeadByEmail(ctx context.Context, email string) (*Lead, error) {
	return r.findLead(func(l Lead) bool { return l.Email == email })
}

func (r *memoryRepo) GetLeadByPhone(ctx context.Context, phone string) (*Lead, error) {
	return r.findLead(func(l Lead) bool { return l.Phone == phone })
}

func (r *memoryRepo) ListLeads(ctx context.Context) ([]Lead, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Lead, 0, len(r.leads))
	for _, l := range r.leads {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r *memoryRepo) SaveMessage(ctx context.Context, m *Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.leads[m.LeadID]; !ok {
		return fmt.Errorf("lead %d: %w", m.LeadID, ErrNotFound)
	}

	m.ID = r.nextMsg
	r.nextMsg++
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	r.messages = append(r.messages, *m)
	return nil
}

func (r *memoryRepo) Thread(ctx context.Context, leadID int64) ([]Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []Message
	for _, m := range r.messages {
		if m.LeadID == leadID {
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r *memoryRepo) RecentMessages(ctx context.Context, leadID int64, limit int) ([]Message, error) {
	all, err := r.Thread(ctx, leadID)
	if err != nil {
		return nil, err
	}
	// newest first
	for i, j := 0, len(all)-1; i < j; i, j = i+1, j-1 {
		all[i], all[j] = all[j], all[i]
	}
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}
