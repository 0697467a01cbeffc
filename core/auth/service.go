package auth

import (
	"context"
	"errors"
	"time"

	pkgerrors "github.com/pkg/errors"

	"github.com/NikosMpantekas/Gradebook-dev-sub005/core"
	"github.com/NikosMpantekas/Gradebook-dev-sub005/core/school"
	"github.com/NikosMpantekas/Gradebook-dev-sub005/core/user"
)

var (
	// errors
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrAccountDisabled     = errors.New("account deactivated")
	ErrInvalidToken        = errors.New("invalid token")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")

	NowFunc = time.Now // mockable
)

type (
	// RevocationStore remembers refresh tokens that must no longer be
	// accepted (rotation replay prevention, logout).
	RevocationStore interface {
		Revoke(ctx context.Context, token string, ttl time.Duration) error
		IsRevoked(ctx context.Context, token string) (bool, error)
	}

	Options struct {
		Issuer     string
		Secret     []byte
		AccessTTL  time.Duration
		RefreshTTL time.Duration
	}

	Service struct {
		users    *user.Service
		schools  *school.Service
		attempts AttemptStore
		revoked  RevocationStore

		issuer     string
		secret     []byte
		accessTTL  time.Duration
		refreshTTL time.Duration
		nowFunc    func() time.Time
	}
)

func NewService(users *user.Service, schools *school.Service, attempts AttemptStore, revoked RevocationStore, opts ...Options) *Service {
	opt := Options{
		Issuer:     core.Conf.AppName,
		Secret:     core.Conf.SecretKey,
		AccessTTL:  core.Conf.AccessTokenTTL,
		RefreshTTL: core.Conf.RefreshTokenTTL,
	}
	if len(opts) > 0 {
		if opts[0].Issuer != "" {
			opt.Issuer = opts[0].Issuer
		}
		if opts[0].Secret != nil {
			opt.Secret = opts[0].Secret
		}
		if opts[0].AccessTTL != 0 {
			opt.AccessTTL = opts[0].AccessTTL
		}
		if opts[0].RefreshTTL != 0 {
			opt.RefreshTTL = opts[0].RefreshTTL
		}
	}
	return &Service{
		users:      users,
		schools:    schools,
		attempts:   attempts,
		revoked:    revoked,
		issuer:     opt.Issuer,
		secret:     opt.Secret,
		accessTTL:  opt.AccessTTL,
		refreshTTL: opt.RefreshTTL,
		nowFunc:    func() time.Time { return NowFunc() },
	}
}

// Login authenticates a user by email and password. Superadmin accounts are
// looked up tenant-less; everyone else within the school derived from the
// email's domain. Failed attempts feed the per-IP lockout.
func (svc *Service) Login(ctx context.Context, email, password, clientIP string) (user.User, TokenPair, error) {
	if remaining, err := svc.attempts.LockedFor(ctx, clientIP); err != nil {
		return user.User{}, TokenPair{}, pkgerrors.Wrap(err, "checking lockout")
	} else if remaining > 0 {
		return user.User{}, TokenPair{}, &TooManyAttemptsError{RetryAfter: remaining}
	}

	email = core.CleanString(email, true /* lower */)

	usr, err := svc.findAccount(ctx, email)
	if err != nil {
		if err == user.ErrNotFound || err == school.ErrNotFound {
			return user.User{}, TokenPair{}, svc.fail(ctx, clientIP)
		}
		return user.User{}, TokenPair{}, err
	}
	if err = usr.CheckPassword(password); err != nil {
		return user.User{}, TokenPair{}, svc.fail(ctx, clientIP)
	}
	if !usr.IsActive {
		return user.User{}, TokenPair{}, ErrAccountDisabled
	}

	if err = svc.attempts.RegisterSuccess(ctx, clientIP); err != nil {
		return user.User{}, TokenPair{}, pkgerrors.Wrap(err, "resetting attempts")
	}
	if usr, err = svc.users.SetLastLogin(ctx, usr); err != nil {
		return user.User{}, TokenPair{}, pkgerrors.Wrap(err, "setting lastLogin")
	}

	pair, err := svc.issuePair(usr)
	if err != nil {
		return user.User{}, TokenPair{}, err
	}
	return usr, pair, nil
}

func (svc *Service) findAccount(ctx context.Context, email string) (user.User, error) {
	// superadmin first: no tenant attached
	if usr, err := svc.users.GetByEmail(ctx, email, ""); err == nil {
		return usr, nil
	} else if err != user.ErrNotFound {
		return user.User{}, err
	}

	sch, err := svc.schools.GetByEmailDomain(ctx, core.EmailDomain(email))
	if err != nil {
		return user.User{}, err
	}
	return svc.users.GetByEmail(ctx, email, sch.ID)
}

func (svc *Service) fail(ctx context.Context, clientIP string) error {
	if err := svc.attempts.RegisterFailure(ctx, clientIP); err != nil {
		return pkgerrors.Wrap(err, "registering failed attempt")
	}
	return ErrInvalidCredentials
}

// Refresh validates a refresh token, revokes it and issues a fresh pair.
// A previously rotated token is rejected (replay detection).
func (svc *Service) Refresh(ctx context.Context, refreshToken string) (TokenPair, error) {
	claims, err := svc.parse(refreshToken)
	if err != nil || !claims.IsRefresh() {
		return TokenPair{}, ErrInvalidRefreshToken
	}
	if revoked, err := svc.revoked.IsRevoked(ctx, refreshToken); err != nil {
		return TokenPair{}, pkgerrors.Wrap(err, "checking revocation")
	} else if revoked {
		return TokenPair{}, ErrInvalidRefreshToken
	}

	usr, err := svc.users.GetByID(ctx, claims.Subject)
	if err != nil {
		if err == user.ErrNotFound {
			return TokenPair{}, ErrInvalidRefreshToken
		}
		return TokenPair{}, err
	}
	if !usr.IsActive {
		return TokenPair{}, ErrAccountDisabled
	}

	// rotate: the presented token must never be accepted again
	if err = svc.revoked.Revoke(ctx, refreshToken, svc.remainingTTL(claims)); err != nil {
		return TokenPair{}, pkgerrors.Wrap(err, "revoking rotated token")
	}
	return svc.issuePair(usr)
}

// Logout revokes the presented refresh token. It is idempotent and never
// fails on garbage input.
func (svc *Service) Logout(ctx context.Context, refreshToken string) error {
	claims, err := svc.parse(refreshToken)
	if err != nil || !claims.IsRefresh() {
		return nil
	}
	return pkgerrors.Wrap(svc.revoked.Revoke(ctx, refreshToken, svc.remainingTTL(claims)), "revoking token")
}

// VerifyAccess parses and verifies an access token for request middleware.
func (svc *Service) VerifyAccess(tokenString string) (Claims, error) {
	claims, err := svc.parse(tokenString)
	if err != nil {
		return Claims{}, err
	}
	if claims.IsRefresh() { // a refresh token cannot authenticate requests
		return Claims{}, ErrInvalidToken
	}
	return claims, nil
}

func (svc *Service) remainingTTL(claims Claims) time.Duration {
	if claims.ExpiresAt == nil {
		return svc.refreshTTL
	}
	if d := time.Until(claims.ExpiresAt.Time); d > 0 {
		return d
	}
	return time.Minute // already expired; keep a short guard entry
}
