// Package controller implements the core business logic (service layer):
// it orchestrates the domain store, the sequence validator and the
// scheduling engine, and emits change events for the presentation layer.
package controller

import (
	"context"
	"fmt"
	"time"

	e "github.com/gartstein/commtrack/internal/crm/errors"
	"github.com/gartstein/commtrack/internal/crm/events"
	"github.com/gartstein/commtrack/internal/crm/models"
	"github.com/gartstein/commtrack/internal/crm/report"
	"github.com/gartstein/commtrack/internal/crm/schedule"
	"github.com/gartstein/commtrack/internal/crm/sequence"
	"go.uber.org/zap"
)

// EventProducer publishes change events to in-process subscribers.
type EventProducer interface {
	Produce(events.Event)
}

// Store defines the domain store surface the service depends on.
type Store interface {
	Revision() uint64
	Companies() []models.Company
	Methods() []models.CommunicationMethod
	Communications() []models.Communication
	CommunicationsFor(companyID int64) []models.Communication
	CompanyByID(id int64) (models.Company, bool)
	AddCompany(ctx context.Context, company models.Company) (models.Company, error)
	UpdateCompany(ctx context.Context, id int64, update *models.CompanyUpdate) (models.Company, bool, error)
	DeleteCompany(ctx context.Context, id int64) error
	AddMethod(ctx context.Context, method models.CommunicationMethod) (models.CommunicationMethod, error)
	UpdateMethod(ctx context.Context, id int64, update *models.MethodUpdate) (models.CommunicationMethod, bool, error)
	DeleteMethod(ctx context.Context, id int64) error
	AddCommunications(ctx context.Context, batch []models.Communication) ([]models.Communication, error)
}

// Service provides the operations the UI calls: roster and method CRUD,
// validated communication logging, due-state queries and reports.
type Service struct {
	store      Store
	producer   EventProducer
	logger     *zap.Logger
	summarizer schedule.Summarizer
}

// NewService constructs a Service over a store, an event producer and a
// logger.
func NewService(store Store, producer EventProducer, logger *zap.Logger) *Service {
	return &Service{
		store:    store,
		producer: producer,
		logger:   logger.Named("crm_service"),
	}
}

// CreateCompany adds a company after validating required fields and fires
// a creation event.
func (s *Service) CreateCompany(ctx context.Context, company models.Company) (models.Company, error) {
	if company.Name == "" {
		return models.Company{}, fmt.Errorf("%w: company name is required", e.ErrInvalidInput)
	}
	created, err := s.store.AddCompany(ctx, company)
	if err != nil {
		return models.Company{}, fmt.Errorf("failed to create company: %w", err)
	}
	s.producer.Produce(events.Event{Type: events.CompanyCreated, Company: &created})
	return created, nil
}

// UpdateCompany applies a partial update. The store treats an unknown id
// as a no-op; the service reports it as ErrNotFound so callers can tell
// nothing changed.
func (s *Service) UpdateCompany(ctx context.Context, id int64, update *models.CompanyUpdate) (models.Company, error) {
	if update.Name != nil && *update.Name == "" {
		return models.Company{}, fmt.Errorf("%w: company name is required", e.ErrInvalidInput)
	}
	updated, ok, err := s.store.UpdateCompany(ctx, id, update)
	if err != nil {
		return models.Company{}, fmt.Errorf("failed to update company: %w", err)
	}
	if !ok {
		return models.Company{}, e.ErrNotFound
	}
	s.producer.Produce(events.Event{Type: events.CompanyUpdated, Company: &updated})
	return updated, nil
}

// DeleteCompany removes a company and, by cascade in the store, all of its
// communications. Deleting an unknown id is a no-op.
func (s *Service) DeleteCompany(ctx context.Context, id int64) error {
	company, ok := s.store.CompanyByID(id)
	if !ok {
		return nil
	}
	if err := s.store.DeleteCompany(ctx, id); err != nil {
		return fmt.Errorf("failed to delete company: %w", err)
	}
	s.producer.Produce(events.Event{Type: events.CompanyDeleted, Company: &company})
	return nil
}

// CreateMethod adds a communication method.
func (s *Service) CreateMethod(ctx context.Context, method models.CommunicationMethod) (models.CommunicationMethod, error) {
	if method.Name == "" {
		return models.CommunicationMethod{}, fmt.Errorf("%w: method name is required", e.ErrInvalidInput)
	}
	created, err := s.store.AddMethod(ctx, method)
	if err != nil {
		return models.CommunicationMethod{}, fmt.Errorf("failed to create method: %w", err)
	}
	s.producer.Produce(events.Event{Type: events.MethodCreated, Method: &created})
	return created, nil
}

// UpdateMethod applies a partial update to a method. Unknown ids surface
// as ErrNotFound, same as UpdateCompany.
func (s *Service) UpdateMethod(ctx context.Context, id int64, update *models.MethodUpdate) (models.CommunicationMethod, error) {
	if update.Name != nil && *update.Name == "" {
		return models.CommunicationMethod{}, fmt.Errorf("%w: method name is required", e.ErrInvalidInput)
	}
	updated, ok, err := s.store.UpdateMethod(ctx, id, update)
	if err != nil {
		return models.CommunicationMethod{}, fmt.Errorf("failed to update method: %w", err)
	}
	if !ok {
		return models.CommunicationMethod{}, e.ErrNotFound
	}
	s.producer.Produce(events.Event{Type: events.MethodUpdated, Method: &updated})
	return updated, nil
}

// DeleteMethod removes a method. Logged communications keep their type
// text; history is never rewritten.
func (s *Service) DeleteMethod(ctx context.Context, id int64) error {
	var deleted *models.CommunicationMethod
	for _, m := range s.store.Methods() {
		if m.ID == id {
			m := m
			deleted = &m
			break
		}
	}
	if deleted == nil {
		return nil
	}
	if err := s.store.DeleteMethod(ctx, id); err != nil {
		return fmt.Errorf("failed to delete method: %w", err)
	}
	s.producer.Produce(events.Event{Type: events.MethodDeleted, Method: deleted})
	return nil
}

// ValidateCommunication is the interactive check run on every candidate
// type change in the UI. It applies the sequence rules against the
// company's own history.
func (s *Service) ValidateCommunication(companyID int64, candidateType string) error {
	if _, ok := s.store.CompanyByID(companyID); !ok {
		return fmt.Errorf("%w: company %d", e.ErrNotFound, companyID)
	}
	ordered := sequence.Ordered(s.store.Methods())
	return sequence.ValidateNext(candidateType, ordered, s.store.CommunicationsFor(companyID))
}

// LogCommunication validates and records a single communication.
func (s *Service) LogCommunication(ctx context.Context, companyID int64, commType string, date time.Time, notes string) (models.Communication, error) {
	created, err := s.LogBulk(ctx, []int64{companyID}, commType, date, notes)
	if err != nil {
		return models.Communication{}, err
	}
	return created[0], nil
}

// LogBulk records the same communication against every listed company.
// Validation runs per company against that company's own history before
// anything is written; the first failure aborts the whole batch, so
// histories are never partially advanced.
func (s *Service) LogBulk(ctx context.Context, companyIDs []int64, commType string, date time.Time, notes string) ([]models.Communication, error) {
	if commType == "" || date.IsZero() {
		return nil, fmt.Errorf("%w: communication type and date are required", e.ErrInvalidInput)
	}
	if len(companyIDs) == 0 {
		return nil, fmt.Errorf("%w: no companies selected", e.ErrInvalidInput)
	}

	ordered := sequence.Ordered(s.store.Methods())
	batch := make([]models.Communication, 0, len(companyIDs))
	for _, id := range companyIDs {
		company, ok := s.store.CompanyByID(id)
		if !ok {
			return nil, fmt.Errorf("%w: company %d", e.ErrNotFound, id)
		}
		if err := sequence.ValidateNext(commType, ordered, s.store.CommunicationsFor(id)); err != nil {
			return nil, fmt.Errorf("%s: %w", company.Name, err)
		}
		batch = append(batch, models.Communication{
			CompanyID: id,
			Type:      commType,
			Date:      date,
			Notes:     notes,
		})
	}

	created, err := s.store.AddCommunications(ctx, batch)
	if err != nil {
		return nil, fmt.Errorf("failed to log communications: %w", err)
	}
	s.logger.Info("communications logged",
		zap.String("type", commType),
		zap.Int("companies", len(created)),
	)
	s.producer.Produce(events.Event{Type: events.CommunicationsLogged, Communications: created})
	return created, nil
}

// NextContactDate reports when the company is next due for contact.
// Unknown ids yield no date.
func (s *Service) NextContactDate(companyID int64, now time.Time) (time.Time, bool) {
	company, ok := s.store.CompanyByID(companyID)
	if !ok {
		return time.Time{}, false
	}
	return schedule.NextContactDate(company, s.store.CommunicationsFor(companyID), now), true
}

// DueState classifies one company; unknown ids report StateUnknown.
func (s *Service) DueState(companyID int64, today time.Time) schedule.State {
	return schedule.StateFor(s.store.Companies(), s.store.Communications(), companyID, today)
}

// DueSummary returns the overdue / due-today partition driving the
// notification badge. Memoized on the store revision and the day.
func (s *Service) DueSummary(today time.Time) schedule.Summary {
	return s.summarizer.Summary(s.store, today)
}

// Report recomputes the aggregate views over the current collections.
func (s *Service) Report(topN int) report.Stats {
	return report.Build(s.store.Companies(), s.store.Communications(), topN)
}
