package domain

// IdentityKind discriminates the Identity variants.
type IdentityKind string

const (
	IdentityAnonymous     IdentityKind = "anonymous"
	IdentityAuthenticated IdentityKind = "authenticated"
	IdentityGuest         IdentityKind = "guest"
)

// Loyalty tiers ordered from lowest to highest.
const (
	TierBronze   = "Bronze"
	TierSilver   = "Silver"
	TierGold     = "Gold"
	TierPlatinum = "Platinum"
)

// LowestTier is assigned to newly registered members.
const LowestTier = TierBronze

// LoginMethod records how an authenticated identity was obtained.
type LoginMethod string

const (
	LoginMethodSignIn   LoginMethod = "signin"
	LoginMethodRegister LoginMethod = "register"
)

// AuthenticatedUser is the known-customer side of an Identity. PII is only carried as fingerprints.
type AuthenticatedUser struct {
	MerchantUserID string `json:"merchantUserID"`
	EmailHash      string `json:"emailHash,omitempty"`
	PhoneHash      string `json:"phoneHash,omitempty"`
	LoyaltyTier    string `json:"loyaltyTier"`
	FirstName      string `json:"firstName"`
	LastName       string `json:"lastName"`
}

// GuestUser is an explicitly flagged guest. It is never stitched to the CRM.
type GuestUser struct {
	TransientID string `json:"transientID"`
}

// Identity is the current session's identity. Exactly one of Authenticated or Guest
// is set, matching Kind; both are nil for anonymous sessions.
type Identity struct {
	Kind          IdentityKind       `json:"kind"`
	Authenticated *AuthenticatedUser `json:"authenticated,omitempty"`
	Guest         *GuestUser         `json:"guest,omitempty"`
}

// AnonymousIdentity returns the identity every session starts with.
func AnonymousIdentity() Identity {
	return Identity{Kind: IdentityAnonymous}
}

// NewAuthenticatedIdentity wraps user in an authenticated Identity.
func NewAuthenticatedIdentity(user AuthenticatedUser) Identity {
	return Identity{Kind: IdentityAuthenticated, Authenticated: &user}
}

// NewGuestIdentity wraps a transient identifier in a guest Identity.
func NewGuestIdentity(transientID string) Identity {
	return Identity{Kind: IdentityGuest, Guest: &GuestUser{TransientID: transientID}}
}

func (i Identity) IsAnonymous() bool     { return i.Kind == IdentityAnonymous || i.Kind == "" }
func (i Identity) IsAuthenticated() bool { return i.Kind == IdentityAuthenticated }
func (i Identity) IsGuest() bool         { return i.Kind == IdentityGuest }

// DirectoryUser is a record of the user directory (the CRM export).
type DirectoryUser struct {
	MerchantUserID string `json:"merchantUserID" db:"merchant_user_id"`
	Email          string `json:"email" db:"email"`
	Phone          string `json:"phone" db:"phone"`
	FirstName      string `json:"firstName" db:"first_name"`
	LastName       string `json:"lastName" db:"last_name"`
	LoyaltyTier    string `json:"loyaltyTier" db:"loyalty_tier"`
	Password       string `json:"-" db:"password"`
}
