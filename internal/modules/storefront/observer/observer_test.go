package observer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gaborage/go-bricks-storefront/internal/modules/storefront/datalayer"
	"github.com/gaborage/go-bricks-storefront/internal/modules/storefront/domain"
)

func TestGroup(t *testing.T) {
	tests := map[string]string{
		domain.EventOrderPlaced:      GroupOrder,
		domain.EventCartAdd:          GroupCart,
		domain.EventCartRemove:       GroupCart,
		domain.EventProductView:      GroupProduct,
		domain.EventPageView:         GroupPage,
		domain.EventUserLogin:        GroupIdentity,
		domain.EventLoginFailed:      GroupIdentity,
		domain.EventAccountCreated:   GroupIdentity,
		domain.EventCategoryTabClick: GroupOther,
		domain.EventCheckoutStep:     GroupOther,
	}
	for event, want := range tests {
		assert.Equal(t, want, Group(event), event)
	}
}

func TestObserverRecordsAndRenders(t *testing.T) {
	log := datalayer.New()
	o := New(log, "en-IN")
	defer o.Close()

	pushed := time.Date(2025, 1, 1, 9, 15, 30, 0, time.Local)
	log.Push(domain.DataLayerEntry{ID: "1", Event: domain.EventPageView, PushedAt: pushed})
	log.Push(domain.DataLayerEntry{
		ID:        "2",
		Event:     domain.EventCartAdd,
		EventInfo: domain.Body{"cart": domain.CartSnapshot{Currency: "INR", Total: 2360}},
		PushedAt:  pushed,
	})

	assert.Equal(t, 2, o.Count())
	o.Flush()

	lines := o.Lines()
	require.Len(t, lines, 2)
	assert.Equal(t, "2", lines[0].EntryID, "newest first")
	assert.Equal(t, GroupCart, lines[0].Group)
	assert.Contains(t, lines[0].Text, "09:15:30 cart:add [cart]")
	assert.Contains(t, lines[0].Text, "2,360")
	assert.Equal(t, "09:15:30 page:view [page]", lines[1].Text)
}

func TestObserverClear(t *testing.T) {
	log := datalayer.New()
	o := New(log, "en-IN")
	defer o.Close()

	log.Push(domain.DataLayerEntry{Event: "a"})
	log.Push(domain.DataLayerEntry{Event: "b"})
	o.Clear()

	assert.Equal(t, 0, o.Count())
	assert.Empty(t, o.Entries())
	assert.Equal(t, 2, log.Len(), "clearing the observer leaves the data layer intact")

	log.Push(domain.DataLayerEntry{Event: "c"})
	o.Flush()
	require.Len(t, o.Entries(), 1)
	require.Len(t, o.Lines(), 1)
	assert.Contains(t, o.Lines()[0].Text, " c [other]")
}

func TestObserverCloseStopsRecording(t *testing.T) {
	log := datalayer.New()
	o := New(log, "not a tag!")

	log.Push(domain.DataLayerEntry{Event: "a"})
	o.Close()
	o.Close()
	log.Push(domain.DataLayerEntry{Event: "b"})

	assert.Equal(t, 1, o.Count())
	assert.Len(t, o.Lines(), 1, "close renders pending entries")
}

func TestObserverRetention(t *testing.T) {
	log := datalayer.New()
	o := New(log, "en-IN", WithRetention(2))
	defer o.Close()

	log.Push(domain.DataLayerEntry{ID: "1", Event: "a"})
	o.Flush()
	log.Push(domain.DataLayerEntry{ID: "2", Event: "b"})
	log.Push(domain.DataLayerEntry{ID: "3", Event: "c"})
	o.Flush()

	entries := o.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "2", entries[0].ID)

	lines := o.Lines()
	require.Len(t, lines, 2)
	assert.Equal(t, "3", lines[0].EntryID)
	assert.Equal(t, "2", lines[1].EntryID)
}
