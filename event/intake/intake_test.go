package intake

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matteriben/hedera-services/event"
	"github.com/matteriben/hedera-services/platform/status"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// signedEvent builds a hashed, signed event the validators accept.
func signedEvent(creator, generation int64) *event.Event {
	e := event.NewEvent(creator, generation, 1)
	e.Hash = e.ComputeHash()
	e.Signature = event.SignBytes(e.Hash, creator)
	return e
}

func TestEventHasherComputesHash(t *testing.T) {
	h := NewEventHasher(testLogger())
	e := event.NewEvent(0, 1, 1)
	require.True(t, e.Hash.IsZero())

	h.HashEvent(e)
	assert.False(t, e.Hash.IsZero())
	assert.Equal(t, e.ComputeHash(), e.Hash)
}

func TestInternalValidatorAcceptsWellFormedEvent(t *testing.T) {
	v := NewInternalEventValidator(testLogger())

	e := signedEvent(1, 5)
	out, ok := v.ValidateEvent(e)
	require.True(t, ok)
	assert.Same(t, e, out)
}

func TestInternalValidatorDropsMalformedEvents(t *testing.T) {
	v := NewInternalEventValidator(testLogger())

	missingHash := event.NewEvent(1, 5, 1)
	missingHash.Signature = []byte("sig")
	_, ok := v.ValidateEvent(missingHash)
	assert.False(t, ok)

	badParent := signedEvent(1, 5)
	badParent.SelfParent = &event.Descriptor{CreatorID: 1, Generation: 9}
	_, ok = v.ValidateEvent(badParent)
	assert.False(t, ok)

	wrongParentCreator := signedEvent(1, 5)
	wrongParentCreator.SelfParent = &event.Descriptor{CreatorID: 2, Generation: 1}
	_, ok = v.ValidateEvent(wrongParentCreator)
	assert.False(t, ok)

	assert.Equal(t, int64(3), v.DroppedCount())
}

func TestDeduplicatorDropsDuplicates(t *testing.T) {
	d := NewEventDeduplicator(testLogger())

	e := signedEvent(1, 5)
	_, ok := d.HandleEvent(e)
	require.True(t, ok)

	_, ok = d.HandleEvent(e)
	assert.False(t, ok, "second sighting must be dropped")
	assert.Equal(t, int64(1), d.DuplicateCount())

	// Same descriptor, different signature: a distinct sighting.
	variant := signedEvent(1, 5)
	variant.Hash = e.Hash
	variant.Generation = e.Generation
	variant.Signature = []byte("different")
	_, ok = d.HandleEvent(variant)
	assert.True(t, ok)
}

func TestDeduplicatorPurgesOnWindowShift(t *testing.T) {
	d := NewEventDeduplicator(testLogger())

	old := signedEvent(1, 2)
	fresh := signedEvent(1, 50)
	d.HandleEvent(old)
	d.HandleEvent(fresh)
	require.Equal(t, 2, d.TrackedEvents())

	d.SetEventWindow(event.Window{AncientThreshold: 10, Mode: event.GenerationThreshold})
	assert.Equal(t, 1, d.TrackedEvents(), "ancient keys must be purged")

	// The old event is now ancient and dropped outright.
	_, ok := d.HandleEvent(old)
	assert.False(t, ok)
}

func TestDeduplicatorClear(t *testing.T) {
	d := NewEventDeduplicator(testLogger())
	d.HandleEvent(signedEvent(1, 5))
	d.Clear()
	assert.Equal(t, 0, d.TrackedEvents())
}

func TestSignatureValidatorVerifiesReferenceScheme(t *testing.T) {
	book := &AddressBook{Weights: map[int64]int64{1: 10}}
	v := NewEventSignatureValidator(testLogger(), book, false)

	good := signedEvent(1, 5)
	_, ok := v.ValidateSignature(good)
	assert.True(t, ok)

	forged := signedEvent(1, 6)
	forged.Signature = []byte("forged")
	_, ok = v.ValidateSignature(forged)
	assert.False(t, ok)

	unknownCreator := signedEvent(9, 5)
	_, ok = v.ValidateSignature(unknownCreator)
	assert.False(t, ok, "unknown creators must be dropped")
}

func TestSignatureValidatorIgnoreMode(t *testing.T) {
	book := &AddressBook{Weights: map[int64]int64{1: 10}}
	v := NewEventSignatureValidator(testLogger(), book, true)

	forged := signedEvent(1, 6)
	forged.Signature = []byte("forged")
	_, ok := v.ValidateSignature(forged)
	assert.True(t, ok, "testing escape hatch skips verification")
}

func TestSignatureValidatorAddressBookUpdate(t *testing.T) {
	v := NewEventSignatureValidator(testLogger(), &AddressBook{}, false)

	e := signedEvent(3, 5)
	_, ok := v.ValidateSignature(e)
	require.False(t, ok)

	v.UpdateAddressBooks(AddressBookUpdate{
		Current: &AddressBook{Weights: map[int64]int64{3: 1}},
	})
	_, ok = v.ValidateSignature(e)
	assert.True(t, ok)
}

func TestOrphanBufferReleasesInTopologicalOrder(t *testing.T) {
	b := NewOrphanBuffer(testLogger())

	parent := signedEvent(1, 1)
	child := signedEvent(1, 2)
	pd := parent.Descriptor()
	child.SelfParent = &pd
	grandchild := signedEvent(1, 3)
	cd := child.Descriptor()
	grandchild.SelfParent = &cd

	// Children arrive before the parent.
	assert.Empty(t, b.HandleEvent(grandchild))
	assert.Empty(t, b.HandleEvent(child))
	assert.Equal(t, 2, b.HeldCount())

	released := b.HandleEvent(parent)
	require.Len(t, released, 3)
	assert.Same(t, parent, released[0])
	assert.Same(t, child, released[1])
	assert.Same(t, grandchild, released[2])
	assert.Equal(t, 0, b.HeldCount())
}

func TestOrphanBufferWindowShiftReleasesOrphans(t *testing.T) {
	b := NewOrphanBuffer(testLogger())

	child := signedEvent(1, 20)
	child.SelfParent = &event.Descriptor{CreatorID: 1, Generation: 2}
	assert.Empty(t, b.HandleEvent(child))
	require.Equal(t, 1, b.HeldCount())

	// The missing parent becomes ancient; the child is released.
	released := b.SetEventWindow(event.Window{AncientThreshold: 10, Mode: event.GenerationThreshold})
	require.Len(t, released, 1)
	assert.Same(t, child, released[0])
}

func TestOrphanBufferDropsAncientEvents(t *testing.T) {
	b := NewOrphanBuffer(testLogger())
	b.SetEventWindow(event.Window{AncientThreshold: 10, Mode: event.GenerationThreshold})

	assert.Empty(t, b.HandleEvent(signedEvent(1, 5)))
	assert.Equal(t, 0, b.HeldCount())
}

func TestOrphanBufferClear(t *testing.T) {
	b := NewOrphanBuffer(testLogger())

	child := signedEvent(1, 2)
	child.SelfParent = &event.Descriptor{CreatorID: 1, Generation: 1}
	b.HandleEvent(child)
	require.Equal(t, 1, b.HeldCount())

	b.Clear()
	assert.Equal(t, 0, b.HeldCount())
}

func TestEventCreationManagerLifecycle(t *testing.T) {
	// A rate high enough that back-to-back attempts are never throttled.
	m := NewEventCreationManager(testLogger(), 7, 1e9)

	// Not active yet: no creation.
	_, ok := m.MaybeCreateEvent(time.Now())
	assert.False(t, ok)

	m.UpdatePlatformStatus(status.Active)

	// Active but no parents known: still nothing to build on.
	_, ok = m.MaybeCreateEvent(time.Now())
	assert.False(t, ok)

	other := signedEvent(1, 5)
	m.RegisterEvent(other)

	created, ok := m.MaybeCreateEvent(time.Now())
	require.True(t, ok)
	assert.Equal(t, int64(7), created.CreatorID)
	assert.Equal(t, int64(6), created.Generation, "generation must exceed the other parent")
	require.NotNil(t, created.OtherParent)
	assert.Equal(t, other.Hash, created.OtherParent.Hash)

	// Register our own event; the next creation chains on it.
	created.Hash = created.ComputeHash()
	m.RegisterEvent(created)
	next, ok := m.MaybeCreateEvent(time.Now())
	require.True(t, ok)
	require.NotNil(t, next.SelfParent)
	assert.Equal(t, created.Hash, next.SelfParent.Hash)
	assert.Greater(t, next.Generation, created.Generation)
}

func TestEventCreationManagerRateLimit(t *testing.T) {
	m := NewEventCreationManager(testLogger(), 7, 1)
	m.UpdatePlatformStatus(status.Active)
	m.RegisterEvent(signedEvent(1, 5))

	created := 0
	for i := 0; i < 100; i++ {
		if _, ok := m.MaybeCreateEvent(time.Now()); ok {
			created++
		}
	}
	assert.LessOrEqual(t, created, 2, "creation attempts must be rate limited")
}

func TestEventCreationManagerClear(t *testing.T) {
	m := NewEventCreationManager(testLogger(), 7, 1000)
	m.UpdatePlatformStatus(status.Active)
	m.RegisterEvent(signedEvent(1, 5))

	m.Clear()
	_, ok := m.MaybeCreateEvent(time.Now())
	assert.False(t, ok, "cleared manager has no parents to build on")
}

func TestSelfEventSignerProducesValidEvent(t *testing.T) {
	signer := NewSelfEventSigner(testLogger())
	book := &AddressBook{Weights: map[int64]int64{7: 1}}
	validator := NewEventSignatureValidator(testLogger(), book, false)

	e := event.NewEvent(7, 3, 1)
	signer.SignEvent(e)

	_, ok := validator.ValidateSignature(e)
	assert.True(t, ok, "self-signed events must pass signature validation")
}
