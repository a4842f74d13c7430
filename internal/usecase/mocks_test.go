//go:build !integration

package usecase_test

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/AlexJaimeH/narra-sub000/internal/domain"
	"github.com/AlexJaimeH/narra-sub000/internal/domain/model"
)

func newTestLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

// ---------------- identity provider ----------------

type MockIdentityProvider struct {
	mu        sync.Mutex
	byEmail   map[string]*model.Identity
	createErr error
	linkErr   error
	created   int
}

func NewMockIdentityProvider() *MockIdentityProvider {
	return &MockIdentityProvider{byEmail: make(map[string]*model.Identity)}
}

func (m *MockIdentityProvider) FindUserByEmail(ctx context.Context, email string) (*model.Identity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if id, ok := m.byEmail[email]; ok {
		cp := *id
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (m *MockIdentityProvider) CreateUser(ctx context.Context, email, password string, emailConfirm bool) (*model.Identity, error) {
	if m.createErr != nil {
		return nil, m.createErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	id := &model.Identity{ID: uuid.NewString(), Email: email}
	m.byEmail[email] = id
	m.created++
	cp := *id
	return &cp, nil
}

func (m *MockIdentityProvider) GenerateMagicLink(ctx context.Context, email string) (string, error) {
	if m.linkErr != nil {
		return "", m.linkErr
	}
	return fmt.Sprintf("https://id.test/verify?token=magic-%s&redirect_to=https://app.test", email), nil
}

// seed registers an identity without counting as a saga-created one.
func (m *MockIdentityProvider) seed(email string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byEmail[email] = &model.Identity{ID: uuid.NewString(), Email: email}
}

// ---------------- repositories ----------------

type MockGiftRepo struct {
	mu        sync.Mutex
	bySession map[string]*model.GiftRecord
	insertErr error
	inserts   int
}

func NewMockGiftRepo() *MockGiftRepo {
	return &MockGiftRepo{bySession: make(map[string]*model.GiftRecord)}
}

func (m *MockGiftRepo) FindBySessionID(ctx context.Context, sessionID string) (*model.GiftRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if rec, ok := m.bySession[sessionID]; ok {
		cp := *rec
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (m *MockGiftRepo) Insert(ctx context.Context, rec *model.GiftRecord) error {
	if m.insertErr != nil {
		return m.insertErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *rec
	m.bySession[rec.StripeSessionID] = &cp
	m.inserts++
	return nil
}

type MockDeferredGiftRepo struct {
	mu      sync.Mutex
	byToken map[string]*model.DeferredGiftRequest
	markErr error
}

func NewMockDeferredGiftRepo() *MockDeferredGiftRepo {
	return &MockDeferredGiftRepo{byToken: make(map[string]*model.DeferredGiftRequest)}
}

func (m *MockDeferredGiftRepo) FindByToken(ctx context.Context, token string) (*model.DeferredGiftRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if req, ok := m.byToken[token]; ok {
		cp := *req
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (m *MockDeferredGiftRepo) Insert(ctx context.Context, req *model.DeferredGiftRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *req
	m.byToken[req.ActivationToken] = &cp
	return nil
}

func (m *MockDeferredGiftRepo) MarkUsed(ctx context.Context, id, accountID string) error {
	if m.markErr != nil {
		return m.markErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, req := range m.byToken {
		if req.ID == id {
			now := time.Now()
			req.Status = model.DeferredGiftUsed
			req.AccountID = &accountID
			req.UsedAt = &now
			return nil
		}
	}
	return domain.ErrNotFound
}

// first returns the single stored request; test helper.
func (m *MockDeferredGiftRepo) first() *model.DeferredGiftRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, req := range m.byToken {
		cp := *req
		return &cp
	}
	return nil
}

type MockProfileRepo struct {
	mu          sync.Mutex
	profiles    map[string]*model.Profile
	settings    map[string]*model.ProfileSettings
	settingsErr error
}

func NewMockProfileRepo() *MockProfileRepo {
	return &MockProfileRepo{
		profiles: make(map[string]*model.Profile),
		settings: make(map[string]*model.ProfileSettings),
	}
}

func (m *MockProfileRepo) Insert(ctx context.Context, p *model.Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *p
	m.profiles[p.ID] = &cp
	return nil
}

func (m *MockProfileRepo) InsertSettings(ctx context.Context, s *model.ProfileSettings) error {
	if m.settingsErr != nil {
		return m.settingsErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *s
	m.settings[s.ProfileID] = &cp
	return nil
}

type MockManagementTokenRepo struct {
	mu     sync.Mutex
	tokens []*model.ManagementToken
}

func NewMockManagementTokenRepo() *MockManagementTokenRepo {
	return &MockManagementTokenRepo{}
}

func (m *MockManagementTokenRepo) Insert(ctx context.Context, t *model.ManagementToken) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *t
	m.tokens = append(m.tokens, &cp)
	return nil
}

func (m *MockManagementTokenRepo) FindByToken(ctx context.Context, token string) (*model.ManagementToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.tokens {
		if t.Token == token {
			cp := *t
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

type MockSubscriberRepo struct {
	mu    sync.Mutex
	store map[string]*model.Subscriber // key: authorID + "/" + subscriberID
}

func NewMockSubscriberRepo() *MockSubscriberRepo {
	return &MockSubscriberRepo{store: make(map[string]*model.Subscriber)}
}

func (m *MockSubscriberRepo) Save(sub *model.Subscriber) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *sub
	m.store[sub.AuthorID+"/"+sub.ID] = &cp
}

func (m *MockSubscriberRepo) FindByAuthorAndID(ctx context.Context, authorID, subscriberID string) (*model.Subscriber, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if sub, ok := m.store[authorID+"/"+subscriberID]; ok {
		cp := *sub
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (m *MockSubscriberRepo) UpdateAccess(ctx context.Context, subscriberID string, status model.SubscriberStatus, at time.Time, storyID *string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, sub := range m.store {
		if sub.ID == subscriberID {
			if status != "" {
				sub.Status = status
			}
			t := at
			sub.LastAccessAt = &t
			if storyID != nil {
				sub.LastStoryID = storyID
			}
			return nil
		}
	}
	return domain.ErrNotFound
}

func (m *MockSubscriberRepo) get(authorID, subscriberID string) *model.Subscriber {
	m.mu.Lock()
	defer m.mu.Unlock()
	if sub, ok := m.store[authorID+"/"+subscriberID]; ok {
		cp := *sub
		return &cp
	}
	return nil
}

type MockAccessEventRepo struct {
	mu        sync.Mutex
	events    []*model.AccessEvent
	appendErr error
}

func NewMockAccessEventRepo() *MockAccessEventRepo {
	return &MockAccessEventRepo{}
}

func (m *MockAccessEventRepo) Append(ctx context.Context, ev *model.AccessEvent) error {
	if m.appendErr != nil {
		return m.appendErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *ev
	m.events = append(m.events, &cp)
	return nil
}

func (m *MockAccessEventRepo) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.events)
}

// ---------------- notifier ----------------

type sentMail struct {
	Kind string
	To   string
	Link string
}

type MockNotifier struct {
	mu      sync.Mutex
	sent    []sentMail
	sendErr error
}

func NewMockNotifier() *MockNotifier { return &MockNotifier{} }

func (m *MockNotifier) record(kind, to, link string) error {
	if m.sendErr != nil {
		return m.sendErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentMail{Kind: kind, To: to, Link: link})
	return nil
}

func (m *MockNotifier) SendWelcome(ctx context.Context, to, name, magicLink string) error {
	return m.record("welcome", to, magicLink)
}

func (m *MockNotifier) SendGiftRecipient(ctx context.Context, to, name, buyerName, giftMessage, magicLink string) error {
	return m.record("gift_recipient", to, magicLink)
}

func (m *MockNotifier) SendGiftReceipt(ctx context.Context, to, buyerName, recipientEmail, manageURL string) error {
	return m.record("gift_buyer", to, manageURL)
}

func (m *MockNotifier) SendActivationInvite(ctx context.Context, to, activationURL string) error {
	return m.record("activation", to, activationURL)
}

func (m *MockNotifier) sentTo(to string) []sentMail {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []sentMail
	for _, s := range m.sent {
		if s.To == to {
			out = append(out, s)
		}
	}
	return out
}

func (m *MockNotifier) total() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

// ---------------- checkout provider ----------------

type MockCheckoutProvider struct {
	mu       sync.Mutex
	sessions map[string]*model.CheckoutSession
	err      error
}

func NewMockCheckoutProvider() *MockCheckoutProvider {
	return &MockCheckoutProvider{sessions: make(map[string]*model.CheckoutSession)}
}

func (m *MockCheckoutProvider) Name() string { return "mock" }

func (m *MockCheckoutProvider) RetrieveSession(ctx context.Context, sessionID string) (*model.CheckoutSession, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[sessionID]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, fmt.Errorf("no such session: %s", sessionID)
}

func (m *MockCheckoutProvider) put(s *model.CheckoutSession) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = s
}

// ---------------- locker ----------------

type MockLocker struct {
	mu   sync.Mutex
	held map[string]string
}

func NewMockLocker() *MockLocker { return &MockLocker{held: make(map[string]string)} }

func (m *MockLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.held[key]; ok {
		return "", domain.ErrLocked
	}
	token := uuid.NewString()
	m.held[key] = token
	return token, nil
}

func (m *MockLocker) Unlock(ctx context.Context, key, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.held[key] == token {
		delete(m.held, key)
	}
	return nil
}

func (m *MockLocker) hold(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.held[key] = "held-elsewhere"
}
