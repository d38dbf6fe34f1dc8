package domain

import "testing"

func TestNewIdentityLink(t *testing.T) {
	tests := []struct {
		name           string
		user           AuthenticatedUser
		wantNamespaces []string
	}{
		{
			name:           "full profile",
			user:           AuthenticatedUser{MerchantUserID: "DUKE-USR-1001", EmailHash: "e", PhoneHash: "p"},
			wantNamespaces: []string{NamespaceECID, NamespaceMerchant, NamespaceEmail, NamespacePhone},
		},
		{
			name:           "no phone",
			user:           AuthenticatedUser{MerchantUserID: "DUKE-USR-2001", EmailHash: "e"},
			wantNamespaces: []string{NamespaceECID, NamespaceMerchant, NamespaceEmail},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			link := NewIdentityLink("session-1", tt.user)

			if len(link) != len(tt.wantNamespaces) {
				t.Fatalf("NewIdentityLink() namespaces = %d, want %d", len(link), len(tt.wantNamespaces))
			}
			for _, ns := range tt.wantNamespaces {
				entries, ok := link[ns]
				if !ok || len(entries) != 1 {
					t.Errorf("NewIdentityLink() missing namespace %s", ns)
					continue
				}
				if entries[0].AuthenticatedState != AuthStateAuthenticated {
					t.Errorf("NewIdentityLink() %s state = %s", ns, entries[0].AuthenticatedState)
				}
				if entries[0].Primary != (ns == NamespaceECID) {
					t.Errorf("NewIdentityLink() %s primary = %v", ns, entries[0].Primary)
				}
			}

			primary, ok := link.Primary()
			if !ok || primary.ID != "session-1" {
				t.Errorf("Primary() = %v, %v, want session-1", primary, ok)
			}
		})
	}
}

func TestOverridesApply(t *testing.T) {
	newBase := func() XDM {
		return XDM{
			EventType: EventTypePageView,
			Web: &Web{
				WebPageDetails: &WebPageDetails{Name: "base", URL: "http://x"},
				WebReferrer:    &WebReferrer{URL: "http://ref"},
			},
			Device: &Device{Type: DeviceDesktop},
		}
	}

	base := newBase()
	interaction := &WebInteraction{Name: "login:attempt", Type: InteractionClick, LinkClicks: Measure{Value: 1}}
	o := &Overrides{
		Web:      &Web{WebInteraction: interaction},
		Commerce: &Commerce{Order: &Order{CurrencyCode: "INR"}},
	}
	o.Apply(&base)

	if base.Web.WebPageDetails != nil || base.Web.WebReferrer != nil {
		t.Errorf("Apply() kept base web members under an override web section: %+v", base.Web)
	}
	if base.Web.WebInteraction != interaction {
		t.Errorf("Apply() web interaction = %v", base.Web.WebInteraction)
	}
	if base.Commerce == nil || base.Commerce.Order.CurrencyCode != "INR" {
		t.Errorf("Apply() commerce = %v", base.Commerce)
	}
	if base.Device == nil || base.EventType != EventTypePageView {
		t.Errorf("Apply() touched sections the override does not set")
	}

	commerceOnly := newBase()
	(&Overrides{Commerce: &Commerce{Purchases: One()}}).Apply(&commerceOnly)
	if commerceOnly.Web.WebPageDetails == nil || commerceOnly.Web.WebPageDetails.Name != "base" {
		t.Errorf("Apply() without a web override must keep the base web section")
	}

	var none *Overrides
	untouched := newBase()
	none.Apply(&untouched)
	if untouched.Web.WebReferrer == nil {
		t.Errorf("nil Overrides changed the document")
	}
}

func TestTax(t *testing.T) {
	tests := []struct {
		subtotal int64
		want     int64
	}{
		{2000, 360},
		{0, 0},
		{599, 108},
		{1250, 225},
	}
	for _, tt := range tests {
		if got := Tax(tt.subtotal); got != tt.want {
			t.Errorf("Tax(%d) = %d, want %d", tt.subtotal, got, tt.want)
		}
	}
}
