package domain

// Identity namespaces used in the identity map.
const (
	NamespaceECID     = "ECID"
	NamespaceMerchant = "DUKEID"
	NamespaceEmail    = "Email"
	NamespacePhone    = "Phone"
)

// AuthStateAuthenticated is the only authenticated state emitted by this module.
const AuthStateAuthenticated = "authenticated"

// IdentityEntry is a single identifier inside a namespace.
type IdentityEntry struct {
	ID                 string `json:"id"`
	Primary            bool   `json:"primary"`
	AuthenticatedState string `json:"authenticatedState"`
}

// IdentityLink maps namespace to identifiers. It lets the downstream identity graph
// link the anonymous session to the known profile.
type IdentityLink map[string][]IdentityEntry

// NewIdentityLink builds the link for a successful sign-in or registration:
// the session identifier is primary, the merchant user ID and the PII
// fingerprints (when present) are secondary.
func NewIdentityLink(sessionID string, user AuthenticatedUser) IdentityLink {
	link := IdentityLink{
		NamespaceECID:     {{ID: sessionID, Primary: true, AuthenticatedState: AuthStateAuthenticated}},
		NamespaceMerchant: {{ID: user.MerchantUserID, AuthenticatedState: AuthStateAuthenticated}},
	}
	if user.EmailHash != "" {
		link[NamespaceEmail] = []IdentityEntry{{ID: user.EmailHash, AuthenticatedState: AuthStateAuthenticated}}
	}
	if user.PhoneHash != "" {
		link[NamespacePhone] = []IdentityEntry{{ID: user.PhoneHash, AuthenticatedState: AuthStateAuthenticated}}
	}
	return link
}

// Primary returns the primary entry of the link, if any.
func (l IdentityLink) Primary() (IdentityEntry, bool) {
	for _, entries := range l {
		for _, e := range entries {
			if e.Primary {
				return e, true
			}
		}
	}
	return IdentityEntry{}, false
}
