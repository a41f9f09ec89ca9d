package identity

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var _ Session = &SessionObject{}

// SessionObject is the request-scoped view of an authenticated caller.
type SessionObject struct {
	AccountID      string         `json:"account_id,omitempty"`
	Audience       []string       `json:"audience,omitempty"`
	Issuer         string         `json:"issuer,omitempty"`
	IssuedAt       *time.Time     `json:"issued_at,omitempty"`
	ExpirationDate *time.Time     `json:"expiration_date,omitempty"`
	Data           map[string]any `json:"data,omitempty"`
}

func (s *SessionObject) GetAccountID() string {
	return s.AccountID
}

func (s *SessionObject) GetAccountUUID() (uuid.UUID, error) {
	return uuid.Parse(s.AccountID)
}

func (s *SessionObject) GetAudience() []string {
	return s.Audience
}

func (s *SessionObject) GetIssuer() string {
	return s.Issuer
}

func (s *SessionObject) GetIssuedAt() *time.Time {
	return s.IssuedAt
}

func (s *SessionObject) GetData() map[string]any {
	return s.Data
}

// Role retrieves the session role with fallback to pending
func (s *SessionObject) Role() Role {
	if s.Data != nil {
		if raw, ok := s.Data["role"].(string); ok {
			return NormalizeRole(raw)
		}
	}
	return RolePending
}

// HasRole checks if the session carries a specific role
func (s *SessionObject) HasRole(role Role) bool {
	return s.Role() == role
}

// IsAtLeast checks if the session's role is at least the minimum required role
func (s *SessionObject) IsAtLeast(min Role) bool {
	return s.Role().AtLeast(min)
}

// Actor resolves the acting caller for context propagation.
func (s *SessionObject) Actor() (Actor, error) {
	id, err := s.GetAccountUUID()
	if err != nil {
		return Actor{}, ErrUnauthenticated.WithMetadata(map[string]any{
			"reason": "session subject is not a valid account id",
		})
	}
	return Actor{ID: id, Role: s.Role()}, nil
}

func (s SessionObject) String() string {
	issuedAt := "<nil>"
	if s.IssuedAt != nil {
		issuedAt = s.IssuedAt.Format(time.RFC1123)
	}
	return fmt.Sprintf(
		"account=%s aud=%v iss=%s iat=%s data=%v",
		s.AccountID,
		s.Audience,
		s.Issuer,
		issuedAt,
		s.Data,
	)
}

// SessionFromClaims creates a SessionObject from validated AuthClaims.
func SessionFromClaims(claims AuthClaims) (*SessionObject, error) {
	if claims == nil {
		return nil, ErrUnauthenticated
	}

	data := map[string]any{
		"role": string(claims.Role()),
	}
	if name := claims.DisplayName(); name != "" {
		data["display_name"] = name
	}

	var audience []string
	issuer := ""
	if jwtClaims, ok := claims.(*JWTClaims); ok {
		audience = append(audience, jwtClaims.RegisteredClaims.Audience...)
		issuer = jwtClaims.RegisteredClaims.Issuer
	}
	if issuer == "" {
		issuer = claims.Subject()
	}

	issuedAt := claims.IssuedAt()
	expiresAt := claims.Expires()

	return &SessionObject{
		AccountID:      claims.AccountID(),
		Audience:       audience,
		Issuer:         issuer,
		Data:           data,
		IssuedAt:       &issuedAt,
		ExpirationDate: &expiresAt,
	}, nil
}

// SessionFromToken builds a session from an already parsed token, e.g. one
// stashed in request locals by upstream JWT middleware.
func SessionFromToken(token *jwt.Token) (*SessionObject, error) {
	if token == nil {
		return nil, ErrUnableToMapClaims
	}

	switch claims := token.Claims.(type) {
	case AuthClaims:
		return SessionFromClaims(claims)
	case jwt.MapClaims:
		return sessionFromMapClaims(claims)
	case *jwt.MapClaims:
		if claims == nil {
			return nil, ErrUnableToMapClaims
		}
		return sessionFromMapClaims(*claims)
	}

	return nil, ErrUnableToMapClaims
}

// sessionFromMapClaims builds a session from raw JWT map claims, e.g. when a
// token was parsed by upstream middleware rather than our validator.
func sessionFromMapClaims(claims jwt.MapClaims) (*SessionObject, error) {
	session := &SessionObject{Data: map[string]any{}}

	if sub, err := claims.GetSubject(); err == nil {
		session.AccountID = sub
	}
	if iss, err := claims.GetIssuer(); err == nil {
		session.Issuer = iss
	}
	if aud, err := claims.GetAudience(); err == nil {
		session.Audience = append(session.Audience, aud...)
	}
	if iat, err := claims.GetIssuedAt(); err == nil && iat != nil {
		session.IssuedAt = &iat.Time
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		session.ExpirationDate = &exp.Time
	}

	if role, ok := claims["role"].(string); ok {
		session.Data["role"] = role
	}
	if meta, ok := claims["user_metadata"].(map[string]any); ok {
		if role, ok := meta["role"].(string); ok {
			session.Data["role"] = role
		}
		if name, ok := meta["display_name"].(string); ok {
			session.Data["display_name"] = name
		}
	}

	if session.AccountID == "" {
		return nil, ErrUnableToMapClaims
	}

	return session, nil
}
