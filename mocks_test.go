package identity_test

import (
	"context"

	identity "github.com/krwicher/wil-fasting-group"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type MockIdentityStore struct {
	mock.Mock
}

func (m *MockIdentityStore) ListAccounts(ctx context.Context) ([]*identity.Account, error) {
	args := m.Called(ctx)
	if accounts, ok := args.Get(0).([]*identity.Account); ok {
		return accounts, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockIdentityStore) GetAccount(ctx context.Context, id uuid.UUID) (*identity.Account, error) {
	args := m.Called(ctx, id)
	if account, ok := args.Get(0).(*identity.Account); ok {
		return account, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockIdentityStore) FindAccountByEmail(ctx context.Context, email string) (*identity.Account, error) {
	args := m.Called(ctx, email)
	if account, ok := args.Get(0).(*identity.Account); ok {
		return account, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockIdentityStore) UpdateAccountRole(ctx context.Context, id uuid.UUID, role identity.Role) (*identity.Account, error) {
	args := m.Called(ctx, id, role)
	if account, ok := args.Get(0).(*identity.Account); ok {
		return account, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockIdentityStore) DeleteAccount(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockProfileStore struct {
	mock.Mock
}

func (m *MockProfileStore) QueryProfiles(ctx context.Context, filter identity.ProfileFilter) ([]*identity.Profile, error) {
	args := m.Called(ctx, filter)
	if profiles, ok := args.Get(0).([]*identity.Profile); ok {
		return profiles, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockProfileStore) GetProfile(ctx context.Context, id uuid.UUID) (*identity.Profile, error) {
	args := m.Called(ctx, id)
	if profile, ok := args.Get(0).(*identity.Profile); ok {
		return profile, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockProfileStore) GetOrCreateProfile(ctx context.Context, id uuid.UUID) (*identity.Profile, error) {
	args := m.Called(ctx, id)
	if profile, ok := args.Get(0).(*identity.Profile); ok {
		return profile, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockProfileStore) UpdateProfile(ctx context.Context, id uuid.UUID, update identity.ProfileUpdate) (*identity.Profile, error) {
	args := m.Called(ctx, id, update)
	if profile, ok := args.Get(0).(*identity.Profile); ok {
		return profile, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockProfileStore) UpdateApprovalStatus(ctx context.Context, id uuid.UUID, status identity.ApprovalStatus) (*identity.Profile, error) {
	args := m.Called(ctx, id, status)
	if profile, ok := args.Get(0).(*identity.Profile); ok {
		return profile, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockProfileStore) CountProfiles(ctx context.Context, filter identity.ProfileFilter) (int, error) {
	args := m.Called(ctx, filter)
	return args.Int(0), args.Error(1)
}

type MockCommunityCounts struct {
	mock.Mock
}

func (m *MockCommunityCounts) CountFasts(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockCommunityCounts) CountActiveFasts(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockCommunityCounts) CountParticipants(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

type capturingSink struct {
	events []identity.ActivityEvent
}

func (c *capturingSink) Record(ctx context.Context, evt identity.ActivityEvent) error {
	c.events = append(c.events, evt)
	return nil
}

type testConfig struct {
	signingKey  string
	jwkSetURL   string
	contextKey  string
	tokenLookup string
	authScheme  string
	issuer      string
	audience    []string
}

func newTestConfig() *testConfig {
	return &testConfig{
		signingKey:  "test-signing-key-of-sufficient-length",
		contextKey:  "user",
		tokenLookup: "header:Authorization",
		authScheme:  "Bearer",
	}
}

func (c *testConfig) GetSigningKey() string  { return c.signingKey }
func (c *testConfig) GetJWKSetURL() string   { return c.jwkSetURL }
func (c *testConfig) GetContextKey() string  { return c.contextKey }
func (c *testConfig) GetTokenLookup() string { return c.tokenLookup }
func (c *testConfig) GetAuthScheme() string  { return c.authScheme }
func (c *testConfig) GetIssuer() string      { return c.issuer }
func (c *testConfig) GetAudience() []string  { return c.audience }
