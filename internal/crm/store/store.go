// Package store holds the three domain collections in memory and writes a
// full snapshot of each collection to the persistence collaborator after
// every mutation.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	e "github.com/gartstein/commtrack/internal/crm/errors"
	"github.com/gartstein/commtrack/internal/crm/idgen"
	"github.com/gartstein/commtrack/internal/crm/models"
	"github.com/gartstein/commtrack/internal/crm/snapshot"
	"go.uber.org/zap"
)

// Store is the single writer for companies, communication methods and
// communications. All reads return copies; callers never observe internal
// slices.
type Store struct {
	mu       sync.Mutex
	repo     snapshot.Repository
	ids      idgen.Supplier
	logger   *zap.Logger
	revision uint64

	companies      []models.Company
	methods        []models.CommunicationMethod
	communications []models.Communication
}

// New constructs an empty Store. Call Load to hydrate it from the
// snapshot repository.
func New(repo snapshot.Repository, ids idgen.Supplier, logger *zap.Logger) *Store {
	return &Store{
		repo:   repo,
		ids:    ids,
		logger: logger.Named("store"),
	}
}

// Load replaces the in-memory collections with the persisted snapshots.
// A missing record hydrates as an empty collection.
func (s *Store) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := load(ctx, s.repo, snapshot.Companies, &s.companies); err != nil {
		return err
	}
	if err := load(ctx, s.repo, snapshot.Methods, &s.methods); err != nil {
		return err
	}
	if err := load(ctx, s.repo, snapshot.Communications, &s.communications); err != nil {
		return err
	}
	s.revision++
	s.logger.Info("store loaded",
		zap.Int("companies", len(s.companies)),
		zap.Int("methods", len(s.methods)),
		zap.Int("communications", len(s.communications)),
	)
	return nil
}

func load[T any](ctx context.Context, repo snapshot.Repository, name string, dst *[]T) error {
	data, err := repo.Load(ctx, name)
	if err != nil {
		return fmt.Errorf("failed to load %s snapshot: %w", name, err)
	}
	if data == nil {
		*dst = nil
		return nil
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("failed to decode %s snapshot: %w", name, err)
	}
	return nil
}

func (s *Store) persist(ctx context.Context, name string, collection any) error {
	data, err := json.Marshal(collection)
	if err != nil {
		return fmt.Errorf("failed to encode %s snapshot: %w", name, err)
	}
	if err := s.repo.Replace(ctx, name, data); err != nil {
		return fmt.Errorf("failed to persist %s snapshot: %w", name, err)
	}
	return nil
}

// Revision increments on every successful mutation and on Load. Derived
// views use it as a cheap change key.
func (s *Store) Revision() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.revision
}

// Companies returns a copy of the company list in insertion order.
func (s *Store) Companies() []models.Company {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Company(nil), s.companies...)
}

// Methods returns a copy of the communication method list in insertion
// order.
func (s *Store) Methods() []models.CommunicationMethod {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.CommunicationMethod(nil), s.methods...)
}

// Communications returns a copy of every logged communication.
func (s *Store) Communications() []models.Communication {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Communication(nil), s.communications...)
}

// CommunicationsFor returns the communications logged against one company.
func (s *Store) CommunicationsFor(companyID int64) []models.Communication {
	s.mu.Lock()
	defer s.mu.Unlock()
	return communicationsFor(s.communications, companyID)
}

func communicationsFor(all []models.Communication, companyID int64) []models.Communication {
	var out []models.Communication
	for _, c := range all {
		if c.CompanyID == companyID {
			out = append(out, c)
		}
	}
	return out
}

// CompanyByID looks up a company by id.
func (s *Store) CompanyByID(id int64) (models.Company, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.companies {
		if c.ID == id {
			return c, true
		}
	}
	return models.Company{}, false
}

// AddCompany assigns an id, applies the default periodicity when the given
// one is not positive, appends the company and persists.
func (s *Store) AddCompany(ctx context.Context, company models.Company) (models.Company, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	company.ID = s.ids.Next()
	if company.CommunicationPeriodicity < 1 {
		company.CommunicationPeriodicity = models.DefaultPeriodicity
	}
	s.companies = append(s.companies, company)
	if err := s.persist(ctx, snapshot.Companies, s.companies); err != nil {
		s.companies = s.companies[:len(s.companies)-1]
		return models.Company{}, err
	}
	s.revision++
	return company, nil
}

// UpdateCompany applies the non-nil fields of update in place, preserving
// the id. An unknown id is intentionally a no-op rather than an error; the
// second return value reports whether anything was updated.
func (s *Store) UpdateCompany(ctx context.Context, id int64, update *models.CompanyUpdate) (models.Company, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.companies {
		if s.companies[i].ID != id {
			continue
		}
		prev := s.companies[i]
		applyCompanyUpdate(&s.companies[i], update)
		if err := s.persist(ctx, snapshot.Companies, s.companies); err != nil {
			s.companies[i] = prev
			return models.Company{}, false, err
		}
		s.revision++
		return s.companies[i], true, nil
	}
	return models.Company{}, false, nil
}

func applyCompanyUpdate(c *models.Company, u *models.CompanyUpdate) {
	if u.Name != nil {
		c.Name = *u.Name
	}
	if u.Location != nil {
		c.Location = *u.Location
	}
	if u.LinkedInProfile != nil {
		c.LinkedInProfile = *u.LinkedInProfile
	}
	if u.Emails != nil {
		c.Emails = append([]string(nil), (*u.Emails)...)
	}
	if u.Phone != nil {
		c.Phone = *u.Phone
	}
	if u.Comments != nil {
		c.Comments = *u.Comments
	}
	if u.CommunicationPeriodicity != nil && *u.CommunicationPeriodicity >= 1 {
		c.CommunicationPeriodicity = *u.CommunicationPeriodicity
	}
}

// DeleteCompany removes the company and every communication that references
// it, then persists both collections. Deleting an unknown id is a no-op.
func (s *Store) DeleteCompany(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.companies[:0:0]
	for _, c := range s.companies {
		if c.ID != id {
			kept = append(kept, c)
		}
	}
	if len(kept) == len(s.companies) {
		return nil
	}

	prevCompanies, prevComms := s.companies, s.communications
	s.companies = kept

	remaining := s.communications[:0:0]
	for _, c := range s.communications {
		if c.CompanyID != id {
			remaining = append(remaining, c)
		}
	}
	s.communications = remaining

	if err := s.persist(ctx, snapshot.Companies, s.companies); err != nil {
		s.companies, s.communications = prevCompanies, prevComms
		return err
	}
	if err := s.persist(ctx, snapshot.Communications, s.communications); err != nil {
		s.companies, s.communications = prevCompanies, prevComms
		return err
	}
	s.revision++
	s.logger.Info("company deleted",
		zap.Int64("company_id", id),
		zap.Int("communications_removed", len(prevComms)-len(remaining)),
	)
	return nil
}

// AddMethod assigns an id, appends the method and persists.
func (s *Store) AddMethod(ctx context.Context, method models.CommunicationMethod) (models.CommunicationMethod, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	method.ID = s.ids.Next()
	s.methods = append(s.methods, method)
	if err := s.persist(ctx, snapshot.Methods, s.methods); err != nil {
		s.methods = s.methods[:len(s.methods)-1]
		return models.CommunicationMethod{}, err
	}
	s.revision++
	return method, nil
}

// UpdateMethod applies the non-nil fields of update in place. Unknown ids
// are a no-op, same as UpdateCompany.
func (s *Store) UpdateMethod(ctx context.Context, id int64, update *models.MethodUpdate) (models.CommunicationMethod, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.methods {
		if s.methods[i].ID != id {
			continue
		}
		prev := s.methods[i]
		m := &s.methods[i]
		if update.Name != nil {
			m.Name = *update.Name
		}
		if update.Description != nil {
			m.Description = *update.Description
		}
		if update.Sequence != nil {
			m.Sequence = *update.Sequence
		}
		if update.Mandatory != nil {
			m.Mandatory = *update.Mandatory
		}
		if err := s.persist(ctx, snapshot.Methods, s.methods); err != nil {
			s.methods[i] = prev
			return models.CommunicationMethod{}, false, err
		}
		s.revision++
		return s.methods[i], true, nil
	}
	return models.CommunicationMethod{}, false, nil
}

// DeleteMethod removes a method. Logged communications keep their type text
// unchanged; there is no cascade.
func (s *Store) DeleteMethod(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.methods[:0:0]
	for _, m := range s.methods {
		if m.ID != id {
			kept = append(kept, m)
		}
	}
	if len(kept) == len(s.methods) {
		return nil
	}
	prev := s.methods
	s.methods = kept
	if err := s.persist(ctx, snapshot.Methods, s.methods); err != nil {
		s.methods = prev
		return err
	}
	s.revision++
	return nil
}

// AddCommunications appends the batch atomically: every record must
// reference an existing company, ids are assigned per record, and a single
// snapshot write covers the whole batch. On any error nothing is kept.
func (s *Store) AddCommunications(ctx context.Context, batch []models.Communication) ([]models.Communication, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	exists := make(map[int64]bool, len(s.companies))
	for _, c := range s.companies {
		exists[c.ID] = true
	}

	created := make([]models.Communication, 0, len(batch))
	for _, comm := range batch {
		if !exists[comm.CompanyID] {
			return nil, fmt.Errorf("%w: company %d", e.ErrNotFound, comm.CompanyID)
		}
		comm.ID = s.ids.Next()
		created = append(created, comm)
	}

	prev := s.communications
	s.communications = append(s.communications, created...)
	if err := s.persist(ctx, snapshot.Communications, s.communications); err != nil {
		s.communications = prev
		return nil, err
	}
	s.revision++
	return created, nil
}

// AddCommunication logs a single communication.
func (s *Store) AddCommunication(ctx context.Context, comm models.Communication) (models.Communication, error) {
	created, err := s.AddCommunications(ctx, []models.Communication{comm})
	if err != nil {
		return models.Communication{}, err
	}
	return created[0], nil
}
