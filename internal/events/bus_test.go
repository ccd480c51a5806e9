package events

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/xiaoliunewbig/fantasydb/pkg/types"
)

func TestPublishInRegistrationOrder(t *testing.T) {
	b := NewBus()
	var order []string
	b.Subscribe(func(types.ChangeEvent) { order = append(order, "first") })
	b.Subscribe(func(types.ChangeEvent) { order = append(order, "second") })
	b.Subscribe(func(types.ChangeEvent) { order = append(order, "third") })

	b.Publish(types.NewChangeEvent(types.ChangeUpdated, types.EntityCharacter, "hero"))

	assert.Equal(t, []string{"first", "second", "third"}, order)
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	b := NewBus()
	var got int
	sub := b.Subscribe(func(types.ChangeEvent) { got++ })

	b.Publish(types.NewChangeEvent(types.ChangeCreated, types.EntityItem, "sword"))
	b.Unsubscribe(sub)
	b.Publish(types.NewChangeEvent(types.ChangeDeleted, types.EntityItem, "sword"))

	assert.Equal(t, 1, got)
	assert.Equal(t, 0, b.Len())
}

func TestPanickingListenerDoesNotBlockOthers(t *testing.T) {
	b := NewBus()
	var delivered []string
	b.Subscribe(func(types.ChangeEvent) { panic("listener bug") })
	b.Subscribe(func(e types.ChangeEvent) { delivered = append(delivered, e.EntityID) })

	b.Publish(types.NewChangeEvent(types.ChangeUpdated, types.EntityQuest, "q1"))

	assert.Equal(t, []string{"q1"}, delivered)
}

func TestPerEntityOrderFollowsPublishOrder(t *testing.T) {
	b := NewBus()
	var kinds []types.ChangeKind
	b.Subscribe(func(e types.ChangeEvent) {
		if e.EntityID == "hero" {
			kinds = append(kinds, e.Kind)
		}
	})

	b.Publish(types.NewChangeEvent(types.ChangeCreated, types.EntityCharacter, "hero"))
	b.Publish(types.NewChangeEvent(types.ChangeUpdated, types.EntityCharacter, "hero"))
	b.Publish(types.NewChangeEvent(types.ChangeDeleted, types.EntityCharacter, "hero"))

	assert.Equal(t, []types.ChangeKind{types.ChangeCreated, types.ChangeUpdated, types.ChangeDeleted}, kinds)
}
