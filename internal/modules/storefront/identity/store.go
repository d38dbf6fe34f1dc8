package identity

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/gaborage/go-bricks-storefront/internal/modules/storefront/domain"
	"github.com/gaborage/go-bricks-storefront/internal/modules/storefront/fingerprint"
	"github.com/gaborage/go-bricks-storefront/internal/modules/storefront/session"
	"github.com/gaborage/go-bricks/logger"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrIdentityConflict is returned when a session tries to move between guest and
	// authenticated identities.
	ErrIdentityConflict = errors.New("session identity cannot change between guest and authenticated")
)

const (
	merchantIDBase     = 2000
	merchantIDSpan     = 999
	maxMintAttempts    = 16
	defaultMerchantPfx = "DUKE-USR-"
	defaultGuestPfx    = "DUKE-GUEST-"
)

// Credentials is the sign-in form.
type Credentials struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Profile is the registration form.
type Profile struct {
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required"`
	Phone     string `json:"phone"`
}

// StitchEmitter publishes the identity-stitch event after a successful login.
type StitchEmitter interface {
	EmitIdentityStitch(sess *session.Session, user domain.AuthenticatedUser, method domain.LoginMethod)
}

// Options configure the identifiers minted by a Store.
type Options struct {
	MerchantIDPrefix string
	GuestIDPrefix    string
}

// Store is the only component that changes a session's identity.
type Store struct {
	directory        Directory
	fingerprinter    fingerprint.Fingerprinter
	stitch           StitchEmitter
	validate         *validator.Validate
	logger           logger.Logger
	merchantIDPrefix string
	guestIDPrefix    string
	randN            func(n int) int
}

func NewStore(directory Directory, fp fingerprint.Fingerprinter, stitch StitchEmitter, opts Options, log logger.Logger) *Store {
	if opts.MerchantIDPrefix == "" {
		opts.MerchantIDPrefix = defaultMerchantPfx
	}
	if opts.GuestIDPrefix == "" {
		opts.GuestIDPrefix = defaultGuestPfx
	}
	return &Store{
		directory:        directory,
		fingerprinter:    fp,
		stitch:           stitch,
		validate:         newValidator(),
		logger:           log,
		merchantIDPrefix: opts.MerchantIDPrefix,
		guestIDPrefix:    opts.GuestIDPrefix,
		randN:            rand.IntN,
	}
}

// ValidateCredentials reports missing sign-in fields without touching the directory.
func (s *Store) ValidateCredentials(creds Credentials) error {
	creds.Email = strings.TrimSpace(creds.Email)
	return validateForm(s.validate, creds)
}

// SignIn authenticates the session against the directory and emits the identity stitch.
// On any failure the session identity is unchanged and nothing is emitted.
func (s *Store) SignIn(ctx context.Context, sess *session.Session, creds Credentials) (domain.Identity, error) {
	creds.Email = strings.TrimSpace(creds.Email)
	if err := validateForm(s.validate, creds); err != nil {
		return sess.Identity(), err
	}
	if sess.Identity().IsGuest() {
		return sess.Identity(), ErrIdentityConflict
	}

	found, err := s.directory.FindByCredentials(ctx, creds.Email, creds.Password)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return sess.Identity(), ErrInvalidCredentials
		}
		return sess.Identity(), fmt.Errorf("failed to look up user: %w", err)
	}

	user := s.authenticated(found.MerchantUserID, found.Email, found.Phone, found.FirstName, found.LastName, found.LoyaltyTier)
	identity, err := s.authenticate(sess, user)
	if err != nil {
		return identity, err
	}

	s.stitch.EmitIdentityStitch(sess, user, domain.LoginMethodSignIn)

	s.logger.Info().
		Str("sessionId", sess.ID()).
		Str("merchantUserId", user.MerchantUserID).
		Str("loyaltyTier", user.LoyaltyTier).
		Msg("Shopper signed in")

	return identity, nil
}

// Register creates a new lowest-tier member and emits the identity stitch. Email uniqueness
// is not checked. announce, when set, runs after the identity changes and before the stitch.
func (s *Store) Register(ctx context.Context, sess *session.Session, profile Profile, announce func(domain.AuthenticatedUser)) (domain.Identity, error) {
	profile.FirstName = strings.TrimSpace(profile.FirstName)
	profile.LastName = strings.TrimSpace(profile.LastName)
	profile.Email = strings.TrimSpace(profile.Email)
	profile.Phone = strings.TrimSpace(profile.Phone)
	if err := validateForm(s.validate, profile); err != nil {
		return sess.Identity(), err
	}
	if sess.Identity().IsGuest() {
		return sess.Identity(), ErrIdentityConflict
	}

	merchantID, err := s.mintMerchantID(ctx)
	if err != nil {
		return sess.Identity(), err
	}

	user := s.authenticated(merchantID, profile.Email, profile.Phone, profile.FirstName, profile.LastName, domain.LowestTier)
	identity, err := s.authenticate(sess, user)
	if err != nil {
		return identity, err
	}

	if announce != nil {
		announce(user)
	}
	s.stitch.EmitIdentityStitch(sess, user, domain.LoginMethodRegister)

	s.logger.Info().
		Str("sessionId", sess.ID()).
		Str("merchantUserId", user.MerchantUserID).
		Msg("Shopper registered")

	return identity, nil
}

// ContinueAsGuest flags the session as a guest with a fresh transient identifier.
// A session that is already a guest keeps its identifier. Guests are never stitched.
func (s *Store) ContinueAsGuest(_ context.Context, sess *session.Session) (domain.Identity, error) {
	identity, err := sess.Transition(func(current domain.Identity) (domain.Identity, error) {
		switch {
		case current.IsAuthenticated():
			return current, ErrIdentityConflict
		case current.IsGuest():
			return current, nil
		default:
			return domain.NewGuestIdentity(s.guestIDPrefix + uuid.NewString()), nil
		}
	})
	if err != nil {
		return identity, err
	}

	s.logger.Debug().
		Str("sessionId", sess.ID()).
		Str("guestId", identity.Guest.TransientID).
		Msg("Shopper continued as guest")

	return identity, nil
}

func (s *Store) authenticate(sess *session.Session, user domain.AuthenticatedUser) (domain.Identity, error) {
	return sess.Transition(func(current domain.Identity) (domain.Identity, error) {
		if current.IsGuest() {
			return current, ErrIdentityConflict
		}
		return domain.NewAuthenticatedIdentity(user), nil
	})
}

func (s *Store) authenticated(merchantUserID, email, phone, firstName, lastName, tier string) domain.AuthenticatedUser {
	user := domain.AuthenticatedUser{
		MerchantUserID: merchantUserID,
		LoyaltyTier:    tier,
		FirstName:      firstName,
		LastName:       lastName,
	}
	if email != "" {
		user.EmailHash = s.fingerprinter.Fingerprint(email)
	}
	if phone != "" {
		user.PhoneHash = s.fingerprinter.Fingerprint(phone)
	}
	return user
}

// mintMerchantID picks an unused numeric ID in [2000, 2999), falling back to a UUID suffix.
func (s *Store) mintMerchantID(ctx context.Context) (string, error) {
	for attempt := 0; attempt < maxMintAttempts; attempt++ {
		id := s.merchantIDPrefix + strconv.Itoa(merchantIDBase+s.randN(merchantIDSpan))
		exists, err := s.directory.Exists(ctx, id)
		if err != nil {
			return "", fmt.Errorf("failed to check merchant id: %w", err)
		}
		if !exists {
			return id, nil
		}
	}
	return s.merchantIDPrefix + uuid.NewString(), nil
}
