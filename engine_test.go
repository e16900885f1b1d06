package authsmith

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/authsmith/authsmith/password"
	"github.com/authsmith/authsmith/token"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run failed: %v", err)
	}

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return mr, client
}

func newTestHasher(t *testing.T) *password.Hasher {
	t.Helper()

	h, err := password.NewHasher(password.Config{
		Memory:      8 * 1024,
		Time:        1,
		Parallelism: 1,
		SaltLength:  16,
		KeyLength:   32,
	})
	if err != nil {
		t.Fatalf("NewHasher failed: %v", err)
	}
	return h
}

func newTestTokenManager(t *testing.T) *token.Manager {
	t.Helper()

	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("ed25519.GenerateKey failed: %v", err)
	}

	m, err := token.NewManager(token.Config{
		AccessTTL:     time.Hour,
		SigningMethod: token.MethodEd25519,
		PrivateKey:    priv,
		PublicKey:     pub,
	})
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}
	return m
}

func mustHash(t *testing.T, h *password.Hasher, plain string) string {
	t.Helper()

	hash, err := h.Hash(plain)
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}
	return hash
}

func testConfig() Config {
	cfg := defaultConfig()
	cfg.Password = PasswordConfig{
		Memory:      8 * 1024,
		Time:        1,
		Parallelism: 1,
		SaltLength:  16,
		KeyLength:   32,
	}
	cfg.Audit.Enabled = false
	return cfg
}

func newTestEngine(t *testing.T, rdb *redis.Client, store AccountStore, notifier NotificationSender) *Engine {
	t.Helper()

	cfg := testConfig()

	return &Engine{
		config:       cfg,
		accounts:     store,
		notifier:     notifier,
		challenges:   newChallengeStore(rdb, "avc"),
		passwordHash: newTestHasher(t),
		tokens:       newTestTokenManager(t),
		metrics:      newMetrics(cfg.Metrics),
	}
}

// mockAccountStore is an in-memory AccountStore with injectable failures.
type mockAccountStore struct {
	mu        sync.Mutex
	byID      map[string]Account
	byEmail   map[string]string
	bySubject map[string]string

	createErr error
	markErr   error
}

func newMockAccountStore() *mockAccountStore {
	return &mockAccountStore{
		byID:      make(map[string]Account),
		byEmail:   make(map[string]string),
		bySubject: make(map[string]string),
	}
}

func (s *mockAccountStore) put(account Account) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.byID[account.AccountID] = account
	s.byEmail[account.Email] = account.AccountID
	if account.SubjectID != "" {
		s.bySubject[account.SubjectID] = account.AccountID
	}
}

func (s *mockAccountStore) FindByEmail(_ context.Context, email string) (Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.byEmail[email]
	if !ok {
		return Account{}, ErrAccountNotFound
	}
	return s.byID[id], nil
}

func (s *mockAccountStore) FindBySubject(_ context.Context, subjectID string) (Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.bySubject[subjectID]
	if !ok {
		return Account{}, ErrAccountNotFound
	}
	return s.byID[id], nil
}

func (s *mockAccountStore) FindByID(_ context.Context, accountID string) (Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	account, ok := s.byID[accountID]
	if !ok {
		return Account{}, ErrAccountNotFound
	}
	return account, nil
}

func (s *mockAccountStore) Create(_ context.Context, input CreateAccountInput) (Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.createErr != nil {
		return Account{}, s.createErr
	}
	if _, exists := s.byEmail[input.Email]; exists {
		return Account{}, ErrStoreDuplicateEmail
	}
	if input.SubjectID != "" {
		if _, exists := s.bySubject[input.SubjectID]; exists {
			return Account{}, ErrStoreDuplicateSubject
		}
	}

	account := Account{
		AccountID:     input.AccountID,
		Email:         input.Email,
		Name:          input.Name,
		PasswordHash:  input.PasswordHash,
		SubjectID:     input.SubjectID,
		EmailVerified: input.EmailVerified,
	}
	s.byID[account.AccountID] = account
	s.byEmail[account.Email] = account.AccountID
	if account.SubjectID != "" {
		s.bySubject[account.SubjectID] = account.AccountID
	}

	return account, nil
}

func (s *mockAccountStore) MarkEmailVerified(_ context.Context, accountID string) (Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.markErr != nil {
		return Account{}, s.markErr
	}
	account, ok := s.byID[accountID]
	if !ok {
		return Account{}, ErrAccountNotFound
	}
	account.EmailVerified = true
	s.byID[accountID] = account

	return account, nil
}

type sentCode struct {
	email string
	code  string
}

// mockNotifier records delivered codes and optionally fails every send.
type mockNotifier struct {
	mu      sync.Mutex
	sent    []sentCode
	sendErr error
}

func (n *mockNotifier) SendVerificationCode(_ context.Context, email, code string, _ time.Duration) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.sendErr != nil {
		return n.sendErr
	}
	n.sent = append(n.sent, sentCode{email: email, code: code})
	return nil
}

func (n *mockNotifier) lastCode(t *testing.T) sentCode {
	t.Helper()

	n.mu.Lock()
	defer n.mu.Unlock()

	if len(n.sent) == 0 {
		t.Fatal("expected at least one dispatched verification code")
	}
	return n.sent[len(n.sent)-1]
}

func (n *mockNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.sent)
}
