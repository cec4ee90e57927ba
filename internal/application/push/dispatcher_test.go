package push

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRefresher struct {
	refreshed      int
	recordRefreshes []string
}

func (f *fakeRefresher) Refresh(ctx context.Context) error {
	f.refreshed++
	return nil
}

func (f *fakeRefresher) RefreshRecord(ctx context.Context, id string) error {
	f.recordRefreshes = append(f.recordRefreshes, id)
	return nil
}

func TestDispatch_CreatedTriggersListRefresh(t *testing.T) {
	d := NewDispatcher()
	r := &fakeRefresher{}
	d.Register("deals", r)

	err := d.Dispatch(context.Background(), Notification{
		ResourceType: "deals", RecordID: "d1", ChangeKind: ChangeCreated,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, r.refreshed)
	assert.Empty(t, r.recordRefreshes)
}

func TestDispatch_UpdatedAndDeletedRefetchRecord(t *testing.T) {
	d := NewDispatcher()
	r := &fakeRefresher{}
	d.Register("contacts", r)

	require.NoError(t, d.Dispatch(context.Background(), Notification{
		ResourceType: "contacts", RecordID: "c1", ChangeKind: ChangeUpdated,
	}))
	require.NoError(t, d.Dispatch(context.Background(), Notification{
		ResourceType: "contacts", RecordID: "c2", ChangeKind: ChangeDeleted,
	}))

	assert.Equal(t, 0, r.refreshed)
	assert.Equal(t, []string{"c1", "c2"}, r.recordRefreshes)
}

func TestDispatch_UnknownResource(t *testing.T) {
	d := NewDispatcher()
	err := d.Dispatch(context.Background(), Notification{
		ResourceType: "invoices", RecordID: "i1", ChangeKind: ChangeUpdated,
	})
	assert.Error(t, err)
}

func TestDispatch_InvalidKind(t *testing.T) {
	d := NewDispatcher()
	d.Register("deals", &fakeRefresher{})
	err := d.Dispatch(context.Background(), Notification{
		ResourceType: "deals", RecordID: "d1", ChangeKind: "renamed",
	})
	assert.Error(t, err)
}

func TestInvalidationHub(t *testing.T) {
	h := NewInvalidationHub()

	var calls []string
	h.Subscribe("deals", func() { calls = append(calls, "dashboard") })
	h.Subscribe("deals", func() { calls = append(calls, "forecast") })
	h.Subscribe("contacts", func() { calls = append(calls, "crm") })

	h.Invalidate("deals")
	assert.Equal(t, []string{"dashboard", "forecast"}, calls)

	h.Invalidate("unsubscribed")
	assert.Len(t, calls, 2)
}
