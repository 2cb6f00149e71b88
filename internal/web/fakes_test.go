// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 BabyMiam Contributors

package web

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/require"

	"github.com/PourroyJean/babymiam-sub000/internal/auth"
	"github.com/PourroyJean/babymiam-sub000/internal/mail"
	"github.com/PourroyJean/babymiam-sub000/internal/tracking"
)

// memAccountRepo is an in-memory auth.AccountRepository for handler tests.
type memAccountRepo struct {
	mu       sync.Mutex
	accounts map[ulid.ULID]*auth.Account
}

func newMemAccountRepo() *memAccountRepo {
	return &memAccountRepo{accounts: make(map[ulid.ULID]*auth.Account)}
}

func (m *memAccountRepo) Create(_ context.Context, account *auth.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.accounts {
		if existing.Email == account.Email {
			return auth.ErrEmailTaken
		}
	}
	clone := *account
	m.accounts[account.ID] = &clone
	return nil
}

func (m *memAccountRepo) GetByID(_ context.Context, id ulid.ULID) (*auth.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	account, ok := m.accounts[id]
	if !ok {
		return nil, auth.ErrNotFound
	}
	clone := *account
	return &clone, nil
}

func (m *memAccountRepo) GetByEmail(_ context.Context, email string) (*auth.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, account := range m.accounts {
		if account.Email == email {
			clone := *account
			return &clone, nil
		}
	}
	return nil, auth.ErrNotFound
}

func (m *memAccountRepo) GetByShareID(_ context.Context, shareID string) (*auth.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, account := range m.accounts {
		if account.ShareID != nil && *account.ShareID == shareID {
			clone := *account
			return &clone, nil
		}
	}
	return nil, auth.ErrNotFound
}

func (m *memAccountRepo) UpdatePassword(_ context.Context, id ulid.ULID, passwordHash string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	account, ok := m.accounts[id]
	if !ok {
		return 0, auth.ErrNotFound
	}
	account.PasswordHash = passwordHash
	account.SessionVersion++
	return account.SessionVersion, nil
}

func (m *memAccountRepo) BumpSessionVersion(_ context.Context, id ulid.ULID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	account, ok := m.accounts[id]
	if !ok {
		return auth.ErrNotFound
	}
	account.SessionVersion++
	return nil
}

func (m *memAccountRepo) MarkEmailVerified(_ context.Context, id ulid.ULID, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	account, ok := m.accounts[id]
	if !ok {
		return auth.ErrNotFound
	}
	if account.EmailVerifiedAt == nil {
		account.EmailVerifiedAt = &at
	}
	return nil
}

func (m *memAccountRepo) SetShareID(_ context.Context, id ulid.ULID, shareID *string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	account, ok := m.accounts[id]
	if !ok {
		return auth.ErrNotFound
	}
	account.ShareID = shareID
	return nil
}

// memTokenRepo is an in-memory auth.OneTimeTokenRepository. Setting
// consumeErr makes Consume fail like an unreachable database.
type memTokenRepo struct {
	mu         sync.Mutex
	tokens     map[string]*auth.OneTimeToken
	consumeErr error
}

func newMemTokenRepo() *memTokenRepo {
	return &memTokenRepo{tokens: make(map[string]*auth.OneTimeToken)}
}

func (m *memTokenRepo) Create(_ context.Context, token *auth.OneTimeToken) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	clone := *token
	m.tokens[token.TokenHash] = &clone
	return nil
}

func (m *memTokenRepo) Consume(_ context.Context, tokenHash string, purpose auth.TokenPurpose, at time.Time) (ulid.ULID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.consumeErr != nil {
		return ulid.ULID{}, m.consumeErr
	}
	token, ok := m.tokens[tokenHash]
	if !ok || token.Purpose != purpose || token.ConsumedAt != nil || !token.ExpiresAt.After(at) {
		return ulid.ULID{}, auth.ErrNotFound
	}
	token.ConsumedAt = &at
	return token.AccountID, nil
}

func (m *memTokenRepo) DeleteByAccountPurpose(_ context.Context, accountID ulid.ULID, purpose auth.TokenPurpose) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for hash, token := range m.tokens {
		if token.AccountID == accountID && token.Purpose == purpose {
			delete(m.tokens, hash)
		}
	}
	return nil
}

func (m *memTokenRepo) DeleteExpired(_ context.Context) (int64, error) {
	return 0, nil
}

func (m *memTokenRepo) failConsume(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.consumeErr = err
}

// memExposureRepo is an in-memory tracking.ExposureRepository.
type memExposureRepo struct {
	mu        sync.Mutex
	exposures map[ulid.ULID]*tracking.Exposure
}

func newMemExposureRepo() *memExposureRepo {
	return &memExposureRepo{exposures: make(map[ulid.ULID]*tracking.Exposure)}
}

func (m *memExposureRepo) Create(_ context.Context, exposure *tracking.Exposure) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	clone := *exposure
	m.exposures[exposure.ID] = &clone
	return nil
}

func (m *memExposureRepo) GetByID(_ context.Context, id ulid.ULID) (*tracking.Exposure, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	exposure, ok := m.exposures[id]
	if !ok {
		return nil, tracking.ErrNotFound
	}
	clone := *exposure
	return &clone, nil
}

func (m *memExposureRepo) ListByAccount(_ context.Context, accountID ulid.ULID) ([]*tracking.Exposure, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*tracking.Exposure
	for _, exposure := range m.exposures {
		if exposure.AccountID == accountID {
			clone := *exposure
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (m *memExposureRepo) Update(_ context.Context, exposure *tracking.Exposure) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.exposures[exposure.ID]; !ok {
		return tracking.ErrNotFound
	}
	clone := *exposure
	m.exposures[exposure.ID] = &clone
	return nil
}

func (m *memExposureRepo) Delete(_ context.Context, id ulid.ULID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.exposures[id]; !ok {
		return tracking.ErrNotFound
	}
	delete(m.exposures, id)
	return nil
}

// memLedger is an in-memory auth.AttemptLedger.
type memLedger struct {
	mu       sync.Mutex
	attempts []auth.Attempt
}

func (m *memLedger) Record(_ context.Context, attempt auth.Attempt) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.attempts = append(m.attempts, attempt)
	return nil
}

func (m *memLedger) CountSince(_ context.Context, identity, clientIP string, since time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, a := range m.attempts {
		if (a.Identity == identity || a.ClientIP == clientIP) && a.CreatedAt.After(since) {
			count++
		}
	}
	return count, nil
}

// sentMail is one captured notification.
type sentMail struct {
	Kind string
	To   string
	URL  string
}

// captureMailer records deliveries instead of sending them.
type captureMailer struct {
	mu   sync.Mutex
	sent []sentMail
}

func (m *captureMailer) SendPasswordReset(to, resetURL string) *mail.NotificationError {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentMail{Kind: "password_reset", To: to, URL: resetURL})
	return nil
}

func (m *captureMailer) SendEmailVerification(to, verifyURL string) *mail.NotificationError {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentMail{Kind: "email_verification", To: to, URL: verifyURL})
	return nil
}

func (m *captureMailer) last() (sentMail, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sent) == 0 {
		return sentMail{}, false
	}
	return m.sent[len(m.sent)-1], true
}

func (m *captureMailer) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

// fixture bundles the handlers with their in-memory collaborators.
type fixture struct {
	handlers  *Handlers
	router    http.Handler
	accounts  *memAccountRepo
	tokens    *memTokenRepo
	exposures *memExposureRepo
	ledger    *memLedger
	mailer    *captureMailer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	accounts := newMemAccountRepo()
	tokens := newMemTokenRepo()
	exposures := newMemExposureRepo()
	ledger := &memLedger{}
	mailer := &captureMailer{}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	hasher := auth.NewArgon2idHasher()
	codec, err := auth.NewSessionCodec("test-secret")
	require.NoError(t, err)

	accountSvc, err := auth.NewAccountService(accounts, hasher, codec)
	require.NoError(t, err)
	resetSvc, err := auth.NewPasswordResetService(accounts, tokens, hasher)
	require.NoError(t, err)
	verifySvc, err := auth.NewEmailVerificationService(accounts, tokens)
	require.NoError(t, err)
	limiter, err := auth.NewLimiter(ledger, 15*time.Minute, 5, logger)
	require.NoError(t, err)

	handlers, err := NewHandlers(HandlersConfig{
		Accounts:    accountSvc,
		Resets:      resetSvc,
		Verifier:    verifySvc,
		Limiter:     limiter,
		AccountRepo: accounts,
		Exposures:   exposures,
		Mailer:      mailer,
		Logger:      logger,
		BaseURL:     "http://localhost:8080",
		SessionTTL:  time.Hour,
	})
	require.NoError(t, err)

	return &fixture{
		handlers:  handlers,
		router:    handlers.Router(),
		accounts:  accounts,
		tokens:    tokens,
		exposures: exposures,
		ledger:    ledger,
		mailer:    mailer,
	}
}

// do runs one request through the router.
func (f *fixture) do(method, target string, form url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req := httptest.NewRequest(method, target, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

// signup creates an account through the handler and returns the session
// cookie issued with it.
func (f *fixture) signup(t *testing.T, email, password string) *http.Cookie {
	t.Helper()
	rec := f.do(http.MethodPost, "/signup", url.Values{
		"email":    {email},
		"password": {password},
	})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	return sessionCookie(t, rec)
}

func mustParseULID(t *testing.T, s string) ulid.ULID {
	t.Helper()
	id, err := ulid.Parse(s)
	require.NoError(t, err)
	return id
}

// sessionCookie extracts the bb_session cookie from a response.
func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == SessionCookieName {
			return c
		}
	}
	t.Fatal("no session cookie in response")
	return nil
}
