// Package dispatch fans every storefront event out to the observable data layer
// (channel 1) and the remote telemetry sink (channel 2).
package dispatch

import (
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/gaborage/go-bricks-storefront/internal/modules/storefront/builders"
	"github.com/gaborage/go-bricks-storefront/internal/modules/storefront/datalayer"
	"github.com/gaborage/go-bricks-storefront/internal/modules/storefront/domain"
	"github.com/gaborage/go-bricks-storefront/internal/modules/storefront/session"
	"github.com/gaborage/go-bricks/logger"
)

// timestampLayout matches the millisecond UTC timestamps expected by the collector.
const timestampLayout = "2006-01-02T15:04:05.000Z07:00"

var mobileUA = regexp.MustCompile(`(?i)mobi|android`)

var errMissingPage = errors.New("event body carries no page context")

// Offerer accepts submissions without blocking. *Queue implements it.
type Offerer interface {
	Offer(sub domain.Submission) error
}

// Dispatcher never returns errors or panics to its callers: every failure is logged
// as an EmissionError and the emission is abandoned.
type Dispatcher struct {
	log       *datalayer.Log
	outbound  Offerer
	site      domain.Site
	namespace string
	logger    logger.Logger
	now       func() time.Time
}

func NewDispatcher(log *datalayer.Log, outbound Offerer, site domain.Site, namespace string, lg logger.Logger) *Dispatcher {
	return &Dispatcher{
		log:       log,
		outbound:  outbound,
		site:      site,
		namespace: namespace,
		logger:    lg,
		now:       time.Now,
	}
}

// Emit appends one entry to the data layer, then offers the telemetry submission to the
// outbound queue. The data-layer append completes before Emit returns.
func (d *Dispatcher) Emit(sess *session.Session, name string, eventType domain.EventType, body domain.Body, overrides *domain.Overrides) {
	defer d.contain(name)

	if body == nil {
		body = domain.Body{}
	}
	now := d.now().UTC()

	page, ok := body.Page()
	if !ok {
		d.report(&EmissionError{Event: name, Stage: StagePage, Err: errMissingPage})
	}

	d.log.Push(domain.DataLayerEntry{
		ID:          ulid.Make().String(),
		Event:       name,
		EventInfo:   body,
		PageContext: domain.PageSummary{PageName: page.PageName, PageType: page.PageType},
		SessionID:   sess.ID(),
		PushedAt:    now,
	})

	env := sess.Environment()
	pageViews := 0
	if eventType == domain.EventTypePageView {
		pageViews = 1
	}

	xdm := domain.XDM{
		EventType: eventType,
		Timestamp: now.Format(timestampLayout),
		Web: &domain.Web{
			WebPageDetails: &domain.WebPageDetails{
				Name:      page.PageName,
				URL:       env.URL,
				PageViews: domain.Measure{Value: pageViews},
			},
			WebReferrer: &domain.WebReferrer{URL: env.Referrer},
		},
		Device: device(env),
	}
	overrides.Apply(&xdm)

	d.offer(name, domain.Submission{
		XDM:  xdm,
		Data: map[string]any{d.namespace: body},
	})
}

// EmitIdentityStitch records a successful sign-in or registration. It links the session
// identifier to the merchant user ID and the PII fingerprints.
func (d *Dispatcher) EmitIdentityStitch(sess *session.Session, user domain.AuthenticatedUser, method domain.LoginMethod) {
	defer d.contain(domain.EventUserLogin)

	now := d.now().UTC()
	page := builders.Page(d.site, sess.Environment(), builders.PageName(d.site, "login"), domain.PageTypeLogin, "")

	d.log.Push(domain.DataLayerEntry{
		ID:    ulid.Make().String(),
		Event: domain.EventUserLogin,
		EventInfo: domain.Body{
			"method":             string(method),
			"merchantUserID":     user.MerchantUserID,
			"emailHash":          optional(user.EmailHash),
			"phoneHash":          optional(user.PhoneHash),
			"loyaltyTier":        user.LoyaltyTier,
			"firstName":          user.FirstName,
			"isGuest":            false,
			"authenticatedState": domain.AuthStateAuthenticated,
		},
		PageContext: domain.PageSummary{PageName: page.PageName, PageType: page.PageType},
		User: &domain.UserSnapshot{
			MerchantUserID:  user.MerchantUserID,
			EmailHash:       user.EmailHash,
			PhoneHash:       user.PhoneHash,
			FirstName:       user.FirstName,
			LastName:        user.LastName,
			LoyaltyTier:     user.LoyaltyTier,
			IsAuthenticated: true,
		},
		Page:      &page,
		SessionID: sess.ID(),
		PushedAt:  now,
	})

	d.offer(domain.EventUserLogin, domain.Submission{
		XDM: domain.XDM{
			EventType:   domain.EventTypeLogin,
			Timestamp:   now.Format(timestampLayout),
			IdentityMap: domain.NewIdentityLink(sess.ID(), user),
			Storefront: &domain.StorefrontSection{
				User: &domain.StorefrontUser{
					MerchantUserID: user.MerchantUserID,
					LoyaltyTier:    user.LoyaltyTier,
				},
			},
		},
		Data: map[string]any{
			d.namespace: map[string]any{
				"merchantUserID": user.MerchantUserID,
				"emailHash":      optional(user.EmailHash),
				"loginMethod":    string(method),
			},
		},
	})
}

func (d *Dispatcher) offer(name string, sub domain.Submission) {
	if err := d.outbound.Offer(sub); err != nil {
		d.report(&EmissionError{Event: name, Stage: StageOffer, Err: err})
	}
}

func (d *Dispatcher) contain(name string) {
	if r := recover(); r != nil {
		d.report(&EmissionError{Event: name, Stage: StageDispatch, Err: fmt.Errorf("panic: %v", r)})
	}
}

func (d *Dispatcher) report(err *EmissionError) {
	d.logger.Warn().
		Err(err).
		Str("event", err.Event).
		Str("stage", err.Stage).
		Msg("Telemetry emission error")
}

func device(env domain.Environment) *domain.Device {
	kind := domain.DeviceDesktop
	if mobileUA.MatchString(env.UserAgent) {
		kind = domain.DeviceMobile
	}
	return &domain.Device{
		ScreenWidth:  env.ScreenWidth,
		ScreenHeight: env.ScreenHeight,
		Type:         kind,
	}
}

// optional maps an empty fingerprint to an explicit null.
func optional(v string) any {
	if v == "" {
		return nil
	}
	return v
}
