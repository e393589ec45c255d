package valentine

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingStore struct {
	*MemoryStore
	createErr error
}

func (f *failingStore) CreatePage(ctx context.Context, p *Page) error {
	if f.createErr != nil {
		return f.createErr
	}
	return f.MemoryStore.CreatePage(ctx, p)
}

func sequentialIDs(ids ...string) func() (string, error) {
	i := 0
	return func() (string, error) {
		if i >= len(ids) {
			return "", errors.New("out of ids")
		}
		id := ids[i]
		i++
		return id, nil
	}
}

func TestCreatePage_AppliesDefaults(t *testing.T) {
	svc := &Service{Store: NewMemoryStore(), NewID: sequentialIDs("abc123")}

	p, err := svc.CreatePage(context.Background(), CreatePageInput{SenderName: "  Sam  "})
	require.NoError(t, err)

	assert.Equal(t, "abc123", p.ID)
	assert.Equal(t, DefaultQuestion, p.Question)
	assert.Equal(t, DefaultFinalMessage, p.FinalMessage)
	assert.Equal(t, DefaultBeggingMessages, []string(p.BeggingMessages))
	assert.Equal(t, "pink", p.Theme)
	require.NotNil(t, p.SenderName)
	assert.Equal(t, "Sam", *p.SenderName)
	assert.Nil(t, p.SocialLabel)
	assert.Nil(t, p.SocialLink)
	assert.Nil(t, p.CreatorEmail)
}

func TestCreatePage_FiltersBlankMessagesKeepingOrder(t *testing.T) {
	svc := &Service{Store: NewMemoryStore(), NewID: sequentialIDs("p1")}

	p, err := svc.CreatePage(context.Background(), CreatePageInput{
		SenderName:      "Sam",
		BeggingMessages: []string{"first", "  ", "", "second", "third"},
		Theme:           "gold",
		CreatorEmail:    "sam@example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second", "third"}, []string(p.BeggingMessages))
	assert.Equal(t, "gold", p.Theme)
	require.NotNil(t, p.CreatorEmail)
	assert.Equal(t, "sam@example.com", *p.CreatorEmail)
}

func TestCreatePage_RequiresSender(t *testing.T) {
	svc := &Service{Store: NewMemoryStore()}

	_, err := svc.CreatePage(context.Background(), CreatePageInput{SenderName: "   "})
	assert.ErrorIs(t, err, ErrInvalidPage)
}

func TestCreatePage_RetriesOnIDCollision(t *testing.T) {
	store := NewMemoryStore()
	require.NoError(t, store.CreatePage(context.Background(), &Page{ID: "taken"}))

	svc := &Service{Store: store, NewID: sequentialIDs("taken", "fresh")}
	p, err := svc.CreatePage(context.Background(), CreatePageInput{SenderName: "Sam"})
	require.NoError(t, err)
	assert.Equal(t, "fresh", p.ID)
}

func TestCreatePage_GivesUpAfterRepeatedCollisions(t *testing.T) {
	store := &failingStore{MemoryStore: NewMemoryStore(), createErr: ErrDuplicateID}
	svc := &Service{Store: store, NewID: sequentialIDs("a", "b", "c")}

	_, err := svc.CreatePage(context.Background(), CreatePageInput{SenderName: "Sam"})
	assert.ErrorIs(t, err, ErrDuplicateID)
}

func TestCreatePage_PropagatesStoreErrors(t *testing.T) {
	boom := fmt.Errorf("db down")
	store := &failingStore{MemoryStore: NewMemoryStore(), createErr: boom}
	svc := &Service{Store: store, NewID: sequentialIDs("a")}

	_, err := svc.CreatePage(context.Background(), CreatePageInput{SenderName: "Sam"})
	assert.ErrorIs(t, err, boom)
}

func TestCreatePage_DefaultIDIsNanoid(t *testing.T) {
	svc := &Service{Store: NewMemoryStore()}

	p, err := svc.CreatePage(context.Background(), CreatePageInput{SenderName: "Sam"})
	require.NoError(t, err)
	assert.Len(t, p.ID, 10)
}

func TestGetPage(t *testing.T) {
	svc := &Service{Store: NewMemoryStore(), NewID: sequentialIDs("abc123")}
	_, err := svc.CreatePage(context.Background(), CreatePageInput{SenderName: "Sam"})
	require.NoError(t, err)

	p, err := svc.GetPage(context.Background(), "abc123")
	require.NoError(t, err)
	assert.Equal(t, "abc123", p.ID)

	_, err = svc.GetPage(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.GetPage(context.Background(), "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetAcceptance_NilWhenNone(t *testing.T) {
	store := NewMemoryStore()
	svc := &Service{Store: store, NewID: sequentialIDs("abc123")}
	_, err := svc.CreatePage(context.Background(), CreatePageInput{SenderName: "Sam"})
	require.NoError(t, err)

	ev, err := svc.GetAcceptance(context.Background(), "abc123")
	require.NoError(t, err)
	assert.Nil(t, ev)

	url := "https://cdn.example/abc123.png"
	require.NoError(t, store.RecordAcceptance(context.Background(), "abc123", &url))

	ev, err = svc.GetAcceptance(context.Background(), "abc123")
	require.NoError(t, err)
	require.NotNil(t, ev)
	assert.Equal(t, url, *ev.ScreenshotURL)
}
