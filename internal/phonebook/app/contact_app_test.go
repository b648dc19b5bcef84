package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/aradsms/phonebook_web/internal/phonebook/domain"
	"github.com/aradsms/phonebook_web/internal/phonebook/favorites"
)

// --- Mocks ---

// MockContactRepository records the order of repository calls on top of the
// usual expectation checking, so ordering between the phone reconciliation
// batch and the name update can be asserted.
type MockContactRepository struct {
	mock.Mock

	mu      sync.Mutex
	callLog []string
}

func (m *MockContactRepository) logCall(entry string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callLog = append(m.callLog, entry)
}

func (m *MockContactRepository) calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.callLog...)
}

func (m *MockContactRepository) ListContacts(ctx context.Context, filter string, offset, limit int) ([]*domain.Contact, error) {
	m.logCall("ListContacts")
	args := m.Called(ctx, filter, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Contact), args.Error(1)
}

func (m *MockContactRepository) CountContacts(ctx context.Context, filter string) (int64, error) {
	m.logCall("CountContacts")
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockContactRepository) GetContact(ctx context.Context, id int64) (*domain.Contact, error) {
	m.logCall("GetContact")
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Contact), args.Error(1)
}

func (m *MockContactRepository) FindByName(ctx context.Context, firstName, lastName string, excludeID int64) (bool, error) {
	m.logCall("FindByName")
	args := m.Called(ctx, firstName, lastName, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockContactRepository) AddContact(ctx context.Context, firstName, lastName string, phones []domain.PhoneNumber) (int64, error) {
	m.logCall("AddContact")
	args := m.Called(ctx, firstName, lastName, phones)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockContactRepository) EditContact(ctx context.Context, id int64, firstName, lastName string) error {
	m.logCall("EditContact")
	args := m.Called(ctx, id, firstName, lastName)
	return args.Error(0)
}

func (m *MockContactRepository) AddPhone(ctx context.Context, contactID int64, number string) error {
	m.logCall("AddPhone:" + number)
	args := m.Called(ctx, contactID, number)
	return args.Error(0)
}

func (m *MockContactRepository) DeletePhone(ctx context.Context, contactID int64, number string) error {
	m.logCall("DeletePhone:" + number)
	args := m.Called(ctx, contactID, number)
	return args.Error(0)
}

func (m *MockContactRepository) DeleteContact(ctx context.Context, id int64) error {
	m.logCall("DeleteContact")
	args := m.Called(ctx, id)
	return args.Error(0)
}

// --- Test Setup ---

type contactAppTestComponents struct {
	app       *Application
	mockRepo  *MockContactRepository
	favorites *favorites.Store
}

func setupContactAppTest(t *testing.T) contactAppTestComponents {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	mockRepo := new(MockContactRepository)

	favs, err := favorites.NewStore(filepath.Join(t.TempDir(), "favorites.json"), logger)
	require.NoError(t, err)

	return contactAppTestComponents{
		app:       NewApplication(mockRepo, favs, logger, 10),
		mockRepo:  mockRepo,
		favorites: favs,
	}
}

// --- Create ---

func TestApplication_CreateContact(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		comps := setupContactAppTest(t)
		comps.mockRepo.On("FindByName", ctx, "Jane", "Doe", int64(0)).Return(false, nil).Once()
		comps.mockRepo.On("AddContact", ctx, "Jane", "Doe",
			[]domain.PhoneNumber{{Number: "555-1111"}}).Return(int64(42), nil).Once()

		id, err := comps.app.CreateContact(ctx, FormDraft{
			FirstName: "Jane",
			LastName:  "Doe",
			Phones:    []string{"555-1111"},
		})

		require.NoError(t, err)
		assert.Equal(t, int64(42), id)
		comps.mockRepo.AssertExpectations(t)
	})

	t.Run("DuplicateBlocksCreate", func(t *testing.T) {
		comps := setupContactAppTest(t)
		comps.mockRepo.On("FindByName", ctx, "Jane", "Doe", int64(0)).Return(true, nil).Once()

		_, err := comps.app.CreateContact(ctx, FormDraft{
			FirstName: "Jane",
			LastName:  "Doe",
			Phones:    []string{"555-1111"},
		})

		require.ErrorIs(t, err, domain.ErrDuplicateName)
		comps.mockRepo.AssertNotCalled(t, "AddContact", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("InconclusiveDuplicateCheckBlocksCreate", func(t *testing.T) {
		comps := setupContactAppTest(t)
		lookupErr := errors.New("graphql: connection refused")
		comps.mockRepo.On("FindByName", ctx, "Jane", "Doe", int64(0)).Return(false, lookupErr).Once()

		_, err := comps.app.CreateContact(ctx, FormDraft{
			FirstName: "Jane",
			LastName:  "Doe",
			Phones:    []string{"555-1111"},
		})

		// A failed lookup must never pass as "no duplicate".
		require.ErrorIs(t, err, lookupErr)
		comps.mockRepo.AssertNotCalled(t, "AddContact", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("ValidationFailureSkipsRepository", func(t *testing.T) {
		comps := setupContactAppTest(t)

		_, err := comps.app.CreateContact(ctx, FormDraft{
			FirstName: "Jo#n",
			LastName:  "Doe",
			Phones:    []string{"555-1111"},
		})

		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, MsgNameSpecialChars, verr.FirstNameError)
		assert.Empty(t, comps.mockRepo.Calls)
	})

	t.Run("MissingPhoneSkipsRepository", func(t *testing.T) {
		comps := setupContactAppTest(t)

		_, err := comps.app.CreateContact(ctx, FormDraft{
			FirstName: "Jane",
			LastName:  "Doe",
			Phones:    []string{""},
		})

		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, MsgRequiredFields, verr.Message)
		assert.Empty(t, comps.mockRepo.Calls)
	})
}

// --- Update / reconciliation ---

func TestApplication_UpdateContact(t *testing.T) {
	ctx := context.Background()

	before := func() *domain.Contact {
		return &domain.Contact{
			ID:        7,
			FirstName: "Jane",
			LastName:  "Doe",
			Phones:    []domain.PhoneNumber{{Number: "111"}, {Number: "222"}},
		}
	}

	t.Run("ReplacesAllPhonesThenUpdatesName", func(t *testing.T) {
		comps := setupContactAppTest(t)
		comps.mockRepo.On("FindByName", ctx, "Janet", "Doe", int64(7)).Return(false, nil).Once()
		comps.mockRepo.On("GetContact", ctx, int64(7)).Return(before(), nil).Once()
		comps.mockRepo.On("DeletePhone", mock.Anything, int64(7), "111").Return(nil).Once()
		comps.mockRepo.On("DeletePhone", mock.Anything, int64(7), "222").Return(nil).Once()
		comps.mockRepo.On("AddPhone", mock.Anything, int64(7), "222").Return(nil).Once()
		comps.mockRepo.On("AddPhone", mock.Anything, int64(7), "333").Return(nil).Once()
		comps.mockRepo.On("EditContact", ctx, int64(7), "Janet", "Doe").Return(nil).Once()

		err := comps.app.UpdateContact(ctx, 7, FormDraft{
			FirstName: "Janet",
			LastName:  "Doe",
			Phones:    []string{"222", "333"},
		})

		require.NoError(t, err)
		comps.mockRepo.AssertExpectations(t)

		// Every before-number deleted, every after-number added, and the
		// name update strictly after the whole phone batch.
		log := comps.mockRepo.calls()
		var deletes, adds int
		editIndex := -1
		lastPhoneOp := -1
		for i, entry := range log {
			switch {
			case strings.HasPrefix(entry, "DeletePhone:"):
				deletes++
				lastPhoneOp = i
			case strings.HasPrefix(entry, "AddPhone:"):
				adds++
				lastPhoneOp = i
			case entry == "EditContact":
				editIndex = i
			}
		}
		assert.Equal(t, 2, deletes)
		assert.Equal(t, 2, adds)
		require.GreaterOrEqual(t, editIndex, 0)
		assert.Greater(t, editIndex, lastPhoneOp)
	})

	t.Run("ReconciliationFailureStopsNameUpdate", func(t *testing.T) {
		comps := setupContactAppTest(t)
		phoneErr := errors.New("insert_phone failed")
		comps.mockRepo.On("FindByName", ctx, "Janet", "Doe", int64(7)).Return(false, nil).Once()
		comps.mockRepo.On("GetContact", ctx, int64(7)).Return(before(), nil).Once()
		comps.mockRepo.On("DeletePhone", mock.Anything, int64(7), mock.Anything).Return(nil)
		comps.mockRepo.On("AddPhone", mock.Anything, int64(7), "222").Return(nil).Maybe()
		comps.mockRepo.On("AddPhone", mock.Anything, int64(7), "333").Return(phoneErr).Once()

		err := comps.app.UpdateContact(ctx, 7, FormDraft{
			FirstName: "Janet",
			LastName:  "Doe",
			Phones:    []string{"222", "333"},
		})

		require.ErrorIs(t, err, phoneErr)
		comps.mockRepo.AssertNotCalled(t, "EditContact", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("DuplicateBlocksUpdate", func(t *testing.T) {
		comps := setupContactAppTest(t)
		comps.mockRepo.On("FindByName", ctx, "Janet", "Doe", int64(7)).Return(true, nil).Once()

		err := comps.app.UpdateContact(ctx, 7, FormDraft{
			FirstName: "Janet",
			LastName:  "Doe",
			Phones:    []string{"222"},
		})

		require.ErrorIs(t, err, domain.ErrDuplicateName)
		comps.mockRepo.AssertNotCalled(t, "DeletePhone", mock.Anything, mock.Anything, mock.Anything)
		comps.mockRepo.AssertNotCalled(t, "AddPhone", mock.Anything, mock.Anything, mock.Anything)
		comps.mockRepo.AssertNotCalled(t, "EditContact", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("RefreshesFavoriteSnapshot", func(t *testing.T) {
		comps := setupContactAppTest(t)
		_, err := comps.favorites.Toggle(before())
		require.NoError(t, err)

		comps.mockRepo.On("FindByName", ctx, "Janet", "Doe", int64(7)).Return(false, nil).Once()
		comps.mockRepo.On("GetContact", ctx, int64(7)).Return(before(), nil).Once()
		comps.mockRepo.On("DeletePhone", mock.Anything, int64(7), mock.Anything).Return(nil)
		comps.mockRepo.On("AddPhone", mock.Anything, int64(7), mock.Anything).Return(nil)
		comps.mockRepo.On("EditContact", ctx, int64(7), "Janet", "Doe").Return(nil).Once()

		require.NoError(t, comps.app.UpdateContact(ctx, 7, FormDraft{
			FirstName: "Janet",
			LastName:  "Doe",
			Phones:    []string{"999"},
		}))

		favs := comps.favorites.List()
		require.Len(t, favs, 1)
		assert.Equal(t, "Janet", favs[0].FirstName)
		assert.Equal(t, []domain.PhoneNumber{{Number: "999"}}, favs[0].Phones)
	})
}

// --- Delete ---

func TestApplication_DeleteContact(t *testing.T) {
	ctx := context.Background()

	t.Run("RemovesFromFavorites", func(t *testing.T) {
		comps := setupContactAppTest(t)
		ct := &domain.Contact{ID: 3, FirstName: "Ann", LastName: "Lee"}
		_, err := comps.favorites.Toggle(ct)
		require.NoError(t, err)

		comps.mockRepo.On("DeleteContact", ctx, int64(3)).Return(nil).Once()

		require.NoError(t, comps.app.DeleteContact(ctx, 3))
		assert.False(t, comps.favorites.Contains(3))
	})

	t.Run("RepoErrorKeepsFavorite", func(t *testing.T) {
		comps := setupContactAppTest(t)
		ct := &domain.Contact{ID: 3, FirstName: "Ann", LastName: "Lee"}
		_, err := comps.favorites.Toggle(ct)
		require.NoError(t, err)

		deleteErr := errors.New("delete failed")
		comps.mockRepo.On("DeleteContact", ctx, int64(3)).Return(deleteErr).Once()

		require.ErrorIs(t, comps.app.DeleteContact(ctx, 3), deleteErr)
		assert.True(t, comps.favorites.Contains(3))
	})
}

// --- Favorites / list ---

func TestApplication_ToggleFavorite(t *testing.T) {
	ctx := context.Background()

	t.Run("OnThenOff", func(t *testing.T) {
		comps := setupContactAppTest(t)
		ct := &domain.Contact{ID: 5, FirstName: "Bob", LastName: "Ray"}
		comps.mockRepo.On("GetContact", ctx, int64(5)).Return(ct, nil).Once()

		on, err := comps.app.ToggleFavorite(ctx, 5)
		require.NoError(t, err)
		assert.True(t, on)

		// Removing needs no repository read.
		off, err := comps.app.ToggleFavorite(ctx, 5)
		require.NoError(t, err)
		assert.False(t, off)
		comps.mockRepo.AssertNumberOfCalls(t, "GetContact", 1)
	})
}

func TestApplication_ListContacts(t *testing.T) {
	ctx := context.Background()

	t.Run("MergesFavoritesFirst", func(t *testing.T) {
		comps := setupContactAppTest(t)
		fav := &domain.Contact{ID: 9, FirstName: "Zoe", LastName: "Fay"}
		_, err := comps.favorites.Toggle(fav)
		require.NoError(t, err)

		serverContacts := []*domain.Contact{
			{ID: 1, FirstName: "Al", LastName: "Ba"},
			{ID: 9, FirstName: "Zoe", LastName: "Fay"}, // already favorited
		}
		comps.mockRepo.On("CountContacts", ctx, "").Return(int64(25), nil).Once()
		comps.mockRepo.On("ListContacts", ctx, "", 0, 10).Return(serverContacts, nil).Once()

		page, err := comps.app.ListContacts(ctx, "", 0)
		require.NoError(t, err)

		require.Len(t, page.Contacts, 2)
		assert.Equal(t, int64(9), page.Contacts[0].ID)
		assert.True(t, page.Contacts[0].IsFavorite)
		assert.Equal(t, int64(1), page.Contacts[1].ID)
		assert.False(t, page.Contacts[1].IsFavorite)
		assert.Equal(t, int64(25), page.TotalCount)
		assert.Equal(t, 3, page.PageCount)
	})

	t.Run("EmptyFavoritesLeavesServerOrder", func(t *testing.T) {
		comps := setupContactAppTest(t)
		serverContacts := []*domain.Contact{
			{ID: 2, FirstName: "Bea", LastName: "Cox"},
			{ID: 1, FirstName: "Al", LastName: "Ba"},
		}
		comps.mockRepo.On("CountContacts", ctx, "al").Return(int64(2), nil).Once()
		comps.mockRepo.On("ListContacts", ctx, "al", 0, 10).Return(serverContacts, nil).Once()

		page, err := comps.app.ListContacts(ctx, "al", 0)
		require.NoError(t, err)

		require.Len(t, page.Contacts, 2)
		assert.Equal(t, int64(2), page.Contacts[0].ID)
		assert.Equal(t, int64(1), page.Contacts[1].ID)
		assert.Equal(t, 1, page.PageCount)
	})

	t.Run("CountFailurePropagates", func(t *testing.T) {
		comps := setupContactAppTest(t)
		countErr := errors.New("count failed")
		comps.mockRepo.On("CountContacts", ctx, "").Return(int64(0), countErr).Once()

		_, err := comps.app.ListContacts(ctx, "", 0)
		require.ErrorIs(t, err, countErr)
	})
}
