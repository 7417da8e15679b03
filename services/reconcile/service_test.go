package reconcile

import (
	"context"
	"errors"
	"testing"
	"time"

	outboxRepo "bikeserve/database/repository/outbox"
	"bikeserve/models"
	"bikeserve/services/api/apitest"
	"bikeserve/services/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fixture struct {
	outbox   *outboxRepo.MemoryOutboxRepo
	market   *apitest.MockMarketplace
	sessions *session.Service
	sess     *models.Session
	r        *Reconciler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	sessions := session.NewService(session.NewMemoryStore(), time.Hour, zap.NewNop())
	sess, _, err := sessions.Create(ctx)
	require.NoError(t, err)
	sess.AuthToken = "tok"
	sess.SubscriberID = "42"
	require.NoError(t, sessions.Save(ctx, sess))

	f := &fixture{
		outbox:   outboxRepo.NewMemoryOutboxRepo(),
		market:   new(apitest.MockMarketplace),
		sessions: sessions,
		sess:     sess,
	}
	f.r = NewReconciler(f.outbox, f.market, sessions, zap.NewNop())
	return f
}

func (f *fixture) add(t *testing.T, rec models.PendingSync) {
	t.Helper()
	rec.Status = models.SyncStatusPending
	if rec.SessionID == "" {
		rec.SessionID = f.sess.ID
	}
	require.NoError(t, f.outbox.Insert(context.Background(), &rec))
}

func TestRun_SyncsVehiclesAndAddresses(t *testing.T) {
	f := newFixture(t)
	vehicle := models.Vehicle{ID: "local-v", Brand: "Honda", Local: true}
	address := models.Address{ID: "local-a", City: "Pune", Local: true}
	f.add(t, models.PendingSync{ID: "1", Kind: models.SyncKindVehicle, LocalID: "local-v", Vehicle: &vehicle, CreatedAt: time.Unix(1, 0)})
	f.add(t, models.PendingSync{ID: "2", Kind: models.SyncKindAddress, LocalID: "local-a", Address: &address, CreatedAt: time.Unix(2, 0)})

	f.market.On("CreateVehicle", mock.Anything, mock.Anything, vehicle).Return(models.Vehicle{ID: "900"}, nil).Once()
	f.market.On("CreateAddress", mock.Anything, mock.Anything, address).Return(models.Address{ID: "901"}, nil).Once()

	sum, err := f.r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Summary{Synced: 2}, sum)

	remote, err := f.outbox.RemoteID(context.Background(), "local-a")
	require.NoError(t, err)
	assert.Equal(t, "901", remote)
	f.market.AssertExpectations(t)
}

func TestRun_RetriesThenGivesUp(t *testing.T) {
	f := newFixture(t)
	vehicle := models.Vehicle{ID: "local-v", Brand: "Honda"}
	f.add(t, models.PendingSync{ID: "1", Kind: models.SyncKindVehicle, LocalID: "local-v", Vehicle: &vehicle, Attempts: maxAttempts - 2})
	f.market.On("CreateVehicle", mock.Anything, mock.Anything, vehicle).Return(models.Vehicle{}, errors.New("503"))

	sum, err := f.r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Summary{Retrying: 1}, sum)

	sum, err = f.r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Summary{Failed: 1}, sum)

	rec, ok := f.outbox.Get("1")
	require.True(t, ok)
	assert.Equal(t, models.SyncStatusFailed, rec.Status)
	assert.Equal(t, "503", rec.LastError)
}

func TestRun_LoggedOutSessionIsUnrecoverable(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.sessions.Logout(context.Background(), f.sess))
	address := models.Address{City: "Pune"}
	f.add(t, models.PendingSync{ID: "1", Kind: models.SyncKindAddress, LocalID: "local-a", Address: &address})
	f.add(t, models.PendingSync{ID: "2", Kind: models.SyncKindAddress, LocalID: "local-b", Address: &address, SessionID: "gone"})

	sum, err := f.r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Summary{Failed: 2}, sum)
	f.market.AssertNotCalled(t, "CreateAddress", mock.Anything, mock.Anything, mock.Anything)
}

type flakySessions struct {
	err error
}

func (f flakySessions) Load(context.Context, string) (*models.Session, error) {
	return nil, f.err
}

func TestRun_SessionStoreErrorIsRetried(t *testing.T) {
	f := newFixture(t)
	f.r.Sessions = flakySessions{err: errors.New("redis: i/o timeout")}
	address := models.Address{City: "Pune"}
	f.add(t, models.PendingSync{ID: "1", Kind: models.SyncKindAddress, LocalID: "local-a", Address: &address})

	sum, err := f.r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Summary{Retrying: 1}, sum)

	rec, ok := f.outbox.Get("1")
	require.True(t, ok)
	assert.Equal(t, models.SyncStatusPending, rec.Status)
	assert.Equal(t, 1, rec.Attempts)
	assert.Contains(t, rec.LastError, "i/o timeout")
	f.market.AssertNotCalled(t, "CreateAddress", mock.Anything, mock.Anything, mock.Anything)
}
