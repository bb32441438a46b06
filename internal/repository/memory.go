package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/astrochat/astrochat-backend/internal/domain"
)

// Compile-time interface assertions.
var (
	_ UserStore      = (*MemoryUserStore)(nil)
	_ ChallengeStore = (*MemoryChallengeStore)(nil)
	_ ChatStore      = (*MemoryChatStore)(nil)
)

// MemoryUserStore keeps identities in process memory. Used for local
// development and tests; interchangeable with the Postgres store.
type MemoryUserStore struct {
	mu       sync.RWMutex
	users    map[uuid.UUID]domain.User
	byEmail  map[string]uuid.UUID
	byPhone  map[string]uuid.UUID
	byGoogle map[string]uuid.UUID
}

func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{
		users:    make(map[uuid.UUID]domain.User),
		byEmail:  make(map[string]uuid.UUID),
		byPhone:  make(map[string]uuid.UUID),
		byGoogle: make(map[string]uuid.UUID),
	}
}

func (s *MemoryUserStore) FindByEmail(ctx context.Context, email string) (domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byEmail[email]
	if !ok {
		return domain.User{}, domain.ErrNotFound
	}
	return s.users[id], nil
}

func (s *MemoryUserStore) FindByPhone(ctx context.Context, phone string) (domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byPhone[phone]
	if !ok {
		return domain.User{}, domain.ErrNotFound
	}
	return s.users[id], nil
}

func (s *MemoryUserStore) FindByGoogleSubject(ctx context.Context, subject string) (domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byGoogle[subject]
	if !ok {
		return domain.User{}, domain.ErrNotFound
	}
	return s.users[id], nil
}

func (s *MemoryUserStore) Create(ctx context.Context, user domain.User) (domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if user.Email != "" {
		if _, exists := s.byEmail[user.Email]; exists {
			return domain.User{}, domain.ErrConflict
		}
	}
	if user.Phone != "" {
		if _, exists := s.byPhone[user.Phone]; exists {
			return domain.User{}, domain.ErrConflict
		}
	}
	if user.GoogleSubject != "" {
		if _, exists := s.byGoogle[user.GoogleSubject]; exists {
			return domain.User{}, domain.ErrConflict
		}
	}

	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	now := time.Now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	s.users[user.ID] = user
	if user.Email != "" {
		s.byEmail[user.Email] = user.ID
	}
	if user.Phone != "" {
		s.byPhone[user.Phone] = user.ID
	}
	if user.GoogleSubject != "" {
		s.byGoogle[user.GoogleSubject] = user.ID
	}
	return user, nil
}

func (s *MemoryUserStore) MarkVerified(ctx context.Context, userID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[userID]
	if !ok {
		return domain.ErrNotFound
	}
	user.Verified = true
	user.UpdatedAt = time.Now().UTC()
	s.users[userID] = user
	return nil
}

func (s *MemoryUserStore) UpdateProfile(ctx context.Context, userID uuid.UUID, profile domain.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[userID]
	if !ok {
		return domain.ErrNotFound
	}
	mergeProfile(&user.Profile, profile)
	user.UpdatedAt = time.Now().UTC()
	s.users[userID] = user
	return nil
}

// mergeProfile overwrites only the supplied fields; last write wins.
func mergeProfile(dst *domain.Profile, src domain.Profile) {
	if src.Name != "" {
		dst.Name = src.Name
	}
	if src.BirthDate != "" {
		dst.BirthDate = src.BirthDate
	}
	if src.BirthTime != "" {
		dst.BirthTime = src.BirthTime
	}
	if src.BirthPlace != "" {
		dst.BirthPlace = src.BirthPlace
	}
}

// MemoryChallengeStore keeps pending verification challenges in memory.
type MemoryChallengeStore struct {
	mu         sync.Mutex
	challenges map[string]domain.Challenge
}

func NewMemoryChallengeStore() *MemoryChallengeStore {
	return &MemoryChallengeStore{challenges: make(map[string]domain.Challenge)}
}

func challengeKey(kind domain.IdentifierKind, identifier string) string {
	return string(kind) + ":" + identifier
}

func (s *MemoryChallengeStore) Save(ctx context.Context, challenge domain.Challenge) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.challenges[challengeKey(challenge.Kind, challenge.Identifier)] = challenge
	return nil
}

func (s *MemoryChallengeStore) Get(ctx context.Context, kind domain.IdentifierKind, identifier string) (domain.Challenge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	challenge, ok := s.challenges[challengeKey(kind, identifier)]
	if !ok {
		return domain.Challenge{}, domain.ErrNotFound
	}
	return challenge, nil
}

func (s *MemoryChallengeStore) Delete(ctx context.Context, kind domain.IdentifierKind, identifier string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.challenges, challengeKey(kind, identifier))
	return nil
}

// MemoryChatStore is an in-memory append-only chat log.
type MemoryChatStore struct {
	mu      sync.RWMutex
	entries map[uuid.UUID][]domain.ChatEntry
}

func NewMemoryChatStore() *MemoryChatStore {
	return &MemoryChatStore{entries: make(map[uuid.UUID][]domain.ChatEntry)}
}

func (s *MemoryChatStore) Append(ctx context.Context, entry domain.ChatEntry) (domain.ChatEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	s.entries[entry.UserID] = append(s.entries[entry.UserID], entry)
	return entry, nil
}

func (s *MemoryChatStore) ListFor(ctx context.Context, userID uuid.UUID) ([]domain.ChatEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stored := s.entries[userID]
	out := make([]domain.ChatEntry, len(stored))
	copy(out, stored)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}
