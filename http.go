package identity

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-router"
	"github.com/google/uuid"
)

// tokenExtractor pulls a raw session token out of a request.
type tokenExtractor func(c router.Context) (string, error)

// HTTPAuthenticator resolves the acting caller for every request: it
// extracts the session token, validates it, and threads the resulting Actor
// through the request context for the boundary to find.
type HTTPAuthenticator struct {
	validator TokenValidator
	cfg       Config
	tracker   AccountTracker
	Logger    Logger
}

// AccountTracker records sign-in activity on successfully authenticated
// requests. Accounts implements it.
type AccountTracker interface {
	TouchAuthenticated(ctx context.Context, id uuid.UUID) error
}

// HTTPAuthenticatorOption configures an HTTPAuthenticator.
type HTTPAuthenticatorOption func(*HTTPAuthenticator)

// WithAccountTracker stamps last seen on each authenticated request. The
// write is best effort and never fails the request.
func WithAccountTracker(tracker AccountTracker) HTTPAuthenticatorOption {
	return func(a *HTTPAuthenticator) {
		a.tracker = tracker
	}
}

// WithHTTPLogger sets the middleware logger.
func WithHTTPLogger(logger Logger) HTTPAuthenticatorOption {
	return func(a *HTTPAuthenticator) {
		if logger != nil {
			a.Logger = logger
		}
	}
}

// NewHTTPAuthenticator creates the request authenticator.
func NewHTTPAuthenticator(validator TokenValidator, cfg Config, opts ...HTTPAuthenticatorOption) *HTTPAuthenticator {
	a := &HTTPAuthenticator{
		validator: validator,
		cfg:       cfg,
		Logger:    defLogger{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(a)
		}
	}
	return a
}

// Middleware authenticates the request. When optional is true a missing or
// invalid token passes through unauthenticated instead of short-circuiting
// with 401, so public pages can still render identity-aware chrome.
func (a *HTTPAuthenticator) Middleware(optional bool) router.MiddlewareFunc {
	extractors := getExtractors(a.cfg.GetTokenLookup(), a.cfg.GetAuthScheme())

	return func(next router.HandlerFunc) router.HandlerFunc {
		return func(ctx router.Context) error {
			token := ""
			for _, extract := range extractors {
				if t, err := extract(ctx); err == nil && t != "" {
					token = t
					break
				}
			}

			if token == "" {
				if optional {
					return next(ctx)
				}
				return respondError(ctx, ErrUnauthenticated)
			}

			claims, err := a.validator.Validate(token)
			if err != nil {
				if optional {
					a.Logger.Info("optional auth failed, proceeding: %s", err)
					return next(ctx)
				}
				return respondError(ctx, err)
			}

			actor, err := ActorFromClaims(claims)
			if err != nil {
				if optional {
					return next(ctx)
				}
				return respondError(ctx, err)
			}

			ctx.SetContext(WithClaimsContext(WithActor(ctx.Context(), actor), claims))
			ctx.Locals(a.cfg.GetContextKey(), claims)

			if a.tracker != nil {
				if err := a.tracker.TouchAuthenticated(ctx.Context(), actor.ID); err != nil {
					a.Logger.Warn("failed to track authenticated request: %s", err)
				}
			}

			return next(ctx)
		}
	}
}

// GetSession resolves the authenticated session from the request locals
// under the given key. It accepts the claims our middleware stores as well
// as a raw token left behind by upstream JWT middleware.
func GetSession(ctx router.Context, key string) (Session, error) {
	value := ctx.Locals(key)
	if value == nil {
		return nil, ErrUnauthenticated
	}

	switch v := value.(type) {
	case AuthClaims:
		return SessionFromClaims(v)
	case *jwt.Token:
		return SessionFromToken(v)
	}

	return nil, ErrUnableToMapClaims
}

// RequireMinimumRole rejects callers below the given role. It expects the
// authentication middleware to have run first.
func RequireMinimumRole(min Role) router.MiddlewareFunc {
	return func(next router.HandlerFunc) router.HandlerFunc {
		return func(ctx router.Context) error {
			actor, ok := ActorFromContext(ctx.Context())
			if !ok {
				return respondError(ctx, ErrUnauthenticated)
			}

			if !actor.Role.AtLeast(min) {
				return respondError(ctx, ErrForbidden.WithMetadata(map[string]any{
					"required_role": string(min),
				}))
			}

			return next(ctx)
		}
	}
}

// respondError maps a rich error onto a JSON response, using the error's
// own HTTP code when it carries one.
func respondError(ctx router.Context, err error) error {
	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) {
		richErr = goerrors.Wrap(err, goerrors.CategoryInternal, "An unexpected server error occurred").
			WithCode(goerrors.CodeInternal)
	}

	code := richErr.Code
	if code == 0 {
		code = http.StatusInternalServerError
	}

	return ctx.JSON(code, map[string]any{
		"error": map[string]any{
			"message":   richErr.Message,
			"text_code": richErr.TextCode,
		},
	})
}

func debugError(logger Logger, err error) {
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) && len(richErr.Metadata) > 0 {
		logger.Debug("error detail: %s", print.MaybePrettyJSON(richErr.Metadata))
	}
}

// getExtractors parses a lookup expression in the form
// "header:Authorization,cookie:session,query:auth_token" into extractors
// tried in order.
func getExtractors(tokenLookup, authScheme string) []tokenExtractor {
	if authScheme == "" {
		authScheme = "Bearer"
	}
	if tokenLookup == "" {
		tokenLookup = "header:Authorization"
	}

	extractors := make([]tokenExtractor, 0)
	for _, rootPart := range strings.Split(tokenLookup, ",") {
		parts := strings.Split(strings.TrimSpace(rootPart), ":")
		if len(parts) != 2 {
			continue
		}
		source := strings.TrimSpace(parts[0])
		name := strings.TrimSpace(parts[1])

		switch source {
		case "header":
			extractors = append(extractors, tokenFromHeader(name, authScheme))
		case "cookie":
			extractors = append(extractors, tokenFromCookie(name))
		case "query":
			extractors = append(extractors, tokenFromQuery(name))
		case "param":
			extractors = append(extractors, tokenFromParam(name))
		}
	}

	return extractors
}

func tokenFromHeader(header, authScheme string) tokenExtractor {
	return func(c router.Context) (string, error) {
		raw := c.Header(header)
		scheme := strings.TrimSpace(authScheme)
		l := len(scheme)
		if len(raw) > l+1 && strings.EqualFold(raw[:l], scheme) {
			return strings.TrimSpace(raw[l:]), nil
		}
		return "", ErrTokenMalformed
	}
}

func tokenFromCookie(name string) tokenExtractor {
	return func(c router.Context) (string, error) {
		token := c.Cookies(name)
		if token == "" {
			return "", ErrTokenMalformed
		}
		return token, nil
	}
}

func tokenFromQuery(name string) tokenExtractor {
	return func(c router.Context) (string, error) {
		token := c.Query(name, "")
		if token == "" {
			return "", ErrTokenMalformed
		}
		return token, nil
	}
}

func tokenFromParam(name string) tokenExtractor {
	return func(c router.Context) (string, error) {
		token := c.Param(name, "")
		if token == "" {
			return "", ErrTokenMalformed
		}
		return token, nil
	}
}
