package store

import (
	"context"
	"testing"
	"time"

	e "github.com/gartstein/commtrack/internal/crm/errors"
	"github.com/gartstein/commtrack/internal/crm/idgen"
	"github.com/gartstein/commtrack/internal/crm/models"
	"github.com/gartstein/commtrack/internal/crm/snapshot"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func setup(t *testing.T) (*Store, *snapshot.Memory) {
	repo := snapshot.NewMemory()
	s := New(repo, &idgen.Sequential{}, zaptest.NewLogger(t))
	require.NoError(t, s.Load(context.Background()))
	return s, repo
}

func TestAddCompanyAssignsIDAndDefaults(t *testing.T) {
	s, _ := setup(t)
	ctx := context.Background()

	created, err := s.AddCompany(ctx, models.Company{Name: "Acme"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), created.ID)
	assert.Equal(t, models.DefaultPeriodicity, created.CommunicationPeriodicity)

	second, err := s.AddCompany(ctx, models.Company{Name: "Globex", CommunicationPeriodicity: 7})
	require.NoError(t, err)
	assert.Equal(t, int64(2), second.ID)
	assert.Equal(t, 7, second.CommunicationPeriodicity)

	assert.Len(t, s.Companies(), 2)
}

func TestUpdateCompanyPartial(t *testing.T) {
	s, _ := setup(t)
	ctx := context.Background()

	created, err := s.AddCompany(ctx, models.Company{Name: "Acme", Location: "Berlin"})
	require.NoError(t, err)

	name := "Acme GmbH"
	updated, ok, err := s.UpdateCompany(ctx, created.ID, &models.CompanyUpdate{Name: &name})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Acme GmbH", updated.Name)
	assert.Equal(t, "Berlin", updated.Location, "untouched fields survive")
	assert.Equal(t, created.ID, updated.ID, "id is immutable")
}

func TestUpdateCompanyUnknownIDIsNoOp(t *testing.T) {
	s, _ := setup(t)
	ctx := context.Background()

	rev := s.Revision()
	name := "Ghost"
	_, ok, err := s.UpdateCompany(ctx, 42, &models.CompanyUpdate{Name: &name})
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, rev, s.Revision(), "no-op must not bump the revision")
}

func TestDeleteCompanyCascades(t *testing.T) {
	s, _ := setup(t)
	ctx := context.Background()

	acme, err := s.AddCompany(ctx, models.Company{Name: "Acme"})
	require.NoError(t, err)
	globex, err := s.AddCompany(ctx, models.Company{Name: "Globex"})
	require.NoError(t, err)

	date := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	_, err = s.AddCommunication(ctx, models.Communication{CompanyID: acme.ID, Type: "Email", Date: date})
	require.NoError(t, err)
	_, err = s.AddCommunication(ctx, models.Communication{CompanyID: globex.ID, Type: "Email", Date: date})
	require.NoError(t, err)

	require.NoError(t, s.DeleteCompany(ctx, acme.ID))

	assert.Empty(t, s.CommunicationsFor(acme.ID))
	assert.Len(t, s.CommunicationsFor(globex.ID), 1, "other companies keep their history")
	_, found := s.CompanyByID(acme.ID)
	assert.False(t, found)
}

func TestAddCommunicationUnknownCompany(t *testing.T) {
	s, _ := setup(t)

	_, err := s.AddCommunication(context.Background(), models.Communication{CompanyID: 42, Type: "Email", Date: time.Now()})
	assert.ErrorIs(t, err, e.ErrNotFound)
}

func TestAddCommunicationsAllOrNothing(t *testing.T) {
	s, _ := setup(t)
	ctx := context.Background()

	acme, err := s.AddCompany(ctx, models.Company{Name: "Acme"})
	require.NoError(t, err)

	batch := []models.Communication{
		{CompanyID: acme.ID, Type: "Email", Date: time.Now()},
		{CompanyID: 999, Type: "Email", Date: time.Now()},
	}
	_, err = s.AddCommunications(ctx, batch)
	assert.ErrorIs(t, err, e.ErrNotFound)
	assert.Empty(t, s.Communications(), "a failing batch writes nothing")
}

func TestAddCommunicationsDistinctIDs(t *testing.T) {
	s, _ := setup(t)
	ctx := context.Background()

	acme, err := s.AddCompany(ctx, models.Company{Name: "Acme"})
	require.NoError(t, err)
	globex, err := s.AddCompany(ctx, models.Company{Name: "Globex"})
	require.NoError(t, err)

	created, err := s.AddCommunications(ctx, []models.Communication{
		{CompanyID: acme.ID, Type: "Email", Date: time.Now()},
		{CompanyID: globex.ID, Type: "Email", Date: time.Now()},
	})
	require.NoError(t, err)
	require.Len(t, created, 2)
	assert.NotEqual(t, created[0].ID, created[1].ID)
}

func TestMethodCRUD(t *testing.T) {
	s, _ := setup(t)
	ctx := context.Background()

	m, err := s.AddMethod(ctx, models.CommunicationMethod{Name: "Email", Sequence: 3, Mandatory: true})
	require.NoError(t, err)

	seq := 1
	mandatory := false
	updated, ok, err := s.UpdateMethod(ctx, m.ID, &models.MethodUpdate{Sequence: &seq, Mandatory: &mandatory})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 1, updated.Sequence)
	assert.False(t, updated.Mandatory)
	assert.Equal(t, "Email", updated.Name)

	require.NoError(t, s.DeleteMethod(ctx, m.ID))
	assert.Empty(t, s.Methods())
}

func TestDeleteMethodKeepsHistory(t *testing.T) {
	s, _ := setup(t)
	ctx := context.Background()

	acme, err := s.AddCompany(ctx, models.Company{Name: "Acme"})
	require.NoError(t, err)
	m, err := s.AddMethod(ctx, models.CommunicationMethod{Name: "Email", Sequence: 1})
	require.NoError(t, err)
	_, err = s.AddCommunication(ctx, models.Communication{CompanyID: acme.ID, Type: "Email", Date: time.Now()})
	require.NoError(t, err)

	require.NoError(t, s.DeleteMethod(ctx, m.ID))

	comms := s.CommunicationsFor(acme.ID)
	require.Len(t, comms, 1)
	assert.Equal(t, "Email", comms[0].Type, "historical records keep their type text")
}

func TestPersistenceRoundTrip(t *testing.T) {
	s, repo := setup(t)
	ctx := context.Background()

	acme, err := s.AddCompany(ctx, models.Company{Name: "Acme", Emails: []string{"a@acme.test"}})
	require.NoError(t, err)
	_, err = s.AddMethod(ctx, models.CommunicationMethod{Name: "Email", Sequence: 1, Mandatory: true})
	require.NoError(t, err)
	date := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	_, err = s.AddCommunication(ctx, models.Communication{CompanyID: acme.ID, Type: "Email", Date: date, Notes: "intro"})
	require.NoError(t, err)

	// A fresh store over the same repository sees the same data.
	reloaded := New(repo, &idgen.Sequential{}, zaptest.NewLogger(t))
	require.NoError(t, reloaded.Load(ctx))

	companies := reloaded.Companies()
	require.Len(t, companies, 1)
	assert.Equal(t, acme, companies[0])

	methods := reloaded.Methods()
	require.Len(t, methods, 1)
	assert.True(t, methods[0].Mandatory)

	comms := reloaded.CommunicationsFor(acme.ID)
	require.Len(t, comms, 1)
	assert.Equal(t, "intro", comms[0].Notes)
	assert.True(t, comms[0].Date.Equal(date))
}

func TestRevisionBumpsOnMutation(t *testing.T) {
	s, _ := setup(t)
	ctx := context.Background()

	rev := s.Revision()
	_, err := s.AddCompany(ctx, models.Company{Name: "Acme"})
	require.NoError(t, err)
	assert.Greater(t, s.Revision(), rev)
}
