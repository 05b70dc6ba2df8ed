package application

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/sirupsen/logrus"

	"github.com/coachbar/catalog-api/internal/domain/entity"
	"github.com/coachbar/catalog-api/internal/domain/repository"
	"github.com/coachbar/catalog-api/internal/infrastructure/postgres"
	"github.com/coachbar/catalog-api/pkg/events"
	"github.com/coachbar/catalog-api/pkg/imagestore"
)

// ReadScope controls whether non-admins may fetch products by id that are
// not assigned to them. Listing is always ownership-filtered; read-by-id is
// an explicit policy because direct product links are a supported flow.
type ReadScope string

const (
	ReadScopeAny      ReadScope = "any"
	ReadScopeAssigned ReadScope = "assigned"
)

func ParseReadScope(s string) ReadScope {
	if ReadScope(s) == ReadScopeAssigned {
		return ReadScopeAssigned
	}
	return ReadScopeAny
}

// ProductService implements the product directory. Elasticsearch indexing
// and event publishing are best effort and never fail an operation.
type ProductService struct {
	Repo      repository.ProductRepository
	Users     repository.UserRepository
	Images    *imagestore.Manager
	Logger    *logrus.Logger
	ES        *elasticsearch.Client
	ESIndex   string
	Events    *events.Publisher
	ReadScope ReadScope
}

func NewProductService(repo repository.ProductRepository, users repository.UserRepository, images *imagestore.Manager, logger *logrus.Logger, es *elasticsearch.Client, esIndex string, pub *events.Publisher, scope ReadScope) *ProductService {
	return &ProductService{
		Repo:      repo,
		Users:     users,
		Images:    images,
		Logger:    logger,
		ES:        es,
		ESIndex:   esIndex,
		Events:    pub,
		ReadScope: scope,
	}
}

type CreateProductInput struct {
	Name        string
	SKU         string
	Description string
	Category    string
	AssignedTo  []string
}

// Create stores the logo first, then inserts the record. Any insert failure
// deletes the just-stored file: an upload must never outlive a rejected
// create.
func (s *ProductService) Create(ctx context.Context, in CreateProductInput, creatorID string, creatorRole entity.Role, logo io.Reader) (*entity.Product, error) {
	name, err := s.Images.Store(ctx, logo)
	if err != nil {
		return nil, err
	}

	assigned := in.AssignedTo
	if len(assigned) == 0 {
		assigned = []string{creatorID}
	}
	p := &entity.Product{
		Name:        in.Name,
		SKU:         in.SKU,
		Description: in.Description,
		Category:    in.Category,
		Logo:        name,
		Source:      entity.SourceForRole(creatorRole),
		AssignedTo:  assigned,
	}
	if err := s.Repo.Create(ctx, p); err != nil {
		s.cleanupUpload(ctx, name)
		if errors.Is(err, postgres.ErrConflict) {
			return nil, ErrSKUTaken
		}
		return nil, err
	}

	s.indexProduct(ctx, p)
	s.publish(ctx, events.ProductCreated, p.ID, creatorID)
	return p, nil
}

// List applies the caller's visibility: non-admins only ever see products
// assigned to them, whatever filters they send.
func (s *ProductService) List(ctx context.Context, q repository.ProductQuery, callerID string, callerRole entity.Role) ([]*entity.Product, int64, error) {
	if callerRole == entity.RoleAdmin {
		q.AssignedTo = ""
	} else {
		q.AssignedTo = callerID
	}
	return s.Repo.List(ctx, q)
}

func (s *ProductService) GetByID(ctx context.Context, id, callerID string, callerRole entity.Role) (*entity.Product, error) {
	p, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, postgres.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	if s.ReadScope == ReadScopeAssigned && callerRole != entity.RoleAdmin && !slices.Contains(p.AssignedTo, callerID) {
		// Hidden records look absent, they are not reported as forbidden.
		return nil, ErrProductNotFound
	}
	return p, nil
}

type UpdateProductInput struct {
	Name        string
	SKU         string
	Description string
	Category    string
	AssignedTo  []string
}

// Update is partial: only supplied fields overwrite existing values. A new
// logo supersedes the stored file; if the record write then fails, the new
// file is removed.
func (s *ProductService) Update(ctx context.Context, id string, in UpdateProductInput, actorID string, logo io.Reader) (*entity.Product, error) {
	p, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, postgres.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	var newLogo string
	if logo != nil {
		newLogo, err = s.Images.Replace(ctx, p.Logo, logo)
		if err != nil {
			return nil, err
		}
		p.Logo = newLogo
	}
	if in.Name != "" {
		p.Name = in.Name
	}
	if in.SKU != "" {
		p.SKU = in.SKU
	}
	if in.Description != "" {
		p.Description = in.Description
	}
	if in.Category != "" {
		p.Category = in.Category
	}
	if in.AssignedTo != nil {
		p.AssignedTo = in.AssignedTo
	}

	if err := s.Repo.Update(ctx, p); err != nil {
		s.cleanupUpload(ctx, newLogo)
		switch {
		case errors.Is(err, postgres.ErrConflict):
			return nil, ErrSKUTaken
		case errors.Is(err, postgres.ErrNotFound):
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	s.indexProduct(ctx, p)
	s.publish(ctx, events.ProductUpdated, p.ID, actorID)
	return p, nil
}

// Delete removes the logo file and then the record. A missing file never
// blocks record deletion.
func (s *ProductService) Delete(ctx context.Context, id, actorID string) error {
	p, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, postgres.ErrNotFound) {
			return ErrProductNotFound
		}
		return err
	}
	if err := s.Images.Delete(ctx, p.Logo); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("file", p.Logo).Warn("delete product logo failed")
	}
	if err := s.Repo.Delete(ctx, id); err != nil {
		if errors.Is(err, postgres.ErrNotFound) {
			return ErrProductNotFound
		}
		return err
	}

	s.removeFromIndex(ctx, id)
	s.publish(ctx, events.ProductDeleted, id, actorID)
	return nil
}

// Assign overwrites the assignment set. Replace semantics, never a union.
func (s *ProductService) Assign(ctx context.Context, productID, userID string, assignedTo []string, actorID string) (*entity.Product, error) {
	p, err := s.Repo.GetByID(ctx, productID)
	if err != nil {
		if errors.Is(err, postgres.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	if _, err := s.Users.GetByID(ctx, userID); err != nil {
		if errors.Is(err, postgres.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	p.AssignedTo = assignedTo
	if err := s.Repo.Update(ctx, p); err != nil {
		return nil, err
	}

	s.indexProduct(ctx, p)
	s.publish(ctx, events.ProductAssigned, p.ID, actorID)
	return p, nil
}

func (s *ProductService) Categories(ctx context.Context) ([]string, error) {
	return s.Repo.Categories(ctx)
}

func (s *ProductService) cleanupUpload(ctx context.Context, name string) {
	if name == "" {
		return
	}
	if err := s.Images.Delete(ctx, name); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("file", name).Warn("cleanup of uploaded image failed")
	}
}

func (s *ProductService) publish(ctx context.Context, eventType, productID, actorID string) {
	if s.Events == nil {
		return
	}
	if err := s.Events.Publish(ctx, events.Event{Type: eventType, ProductID: productID, Actor: actorID}); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("event", eventType).Warn("publish catalog event failed")
	}
}

func (s *ProductService) indexProduct(ctx context.Context, p *entity.Product) {
	if s.ES == nil || s.ESIndex == "" {
		return
	}
	doc := map[string]any{
		"id":          p.ID,
		"name":        p.Name,
		"sku":         p.SKU,
		"description": p.Description,
		"category":    p.Category,
		"source":      p.Source,
		"assigned_to": p.AssignedTo,
		"updated_at":  p.UpdatedAt.Format(time.RFC3339Nano),
	}
	b, _ := json.Marshal(doc)
	req := esapi.IndexRequest{Index: s.ESIndex, DocumentID: p.ID, Body: strings.NewReader(string(b)), Refresh: "false"}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, s.ES)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("product_id", p.ID).Warn("es index failed")
		}
		return
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && s.Logger != nil {
		s.Logger.WithField("status", res.Status()).WithField("product_id", p.ID).Warn("es index response error")
	}
}

func (s *ProductService) removeFromIndex(ctx context.Context, id string) {
	if s.ES == nil || s.ESIndex == "" {
		return
	}
	req := esapi.DeleteRequest{Index: s.ESIndex, DocumentID: id}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, s.ES)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("product_id", id).Warn("es delete failed")
		}
		return
	}
	_ = res.Body.Close()
}

// Search runs a fuzzy multi_match over the product index. Non-admin callers
// are constrained to their assigned products with a terms filter.
func (s *ProductService) Search(ctx context.Context, q string, size int, callerID string, callerRole entity.Role) ([]map[string]any, error) {
	if s.ES == nil || s.ESIndex == "" {
		return []map[string]any{}, nil
	}
	if size <= 0 || size > 50 {
		size = 10
	}
	match := map[string]any{
		"multi_match": map[string]any{
			"query":  q,
			"fields": []string{"name^2", "sku^2", "description"},
		},
	}
	var query map[string]any
	if callerRole == entity.RoleAdmin {
		query = map[string]any{"query": match, "size": size}
	} else {
		query = map[string]any{
			"query": map[string]any{
				"bool": map[string]any{
					"must":   match,
					"filter": map[string]any{"terms": map[string]any{"assigned_to": []string{callerID}}},
				},
			},
			"size": size,
		}
	}
	b, _ := json.Marshal(query)

	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := s.ES.Search(s.ES.Search.WithContext(c), s.ES.Search.WithIndex(s.ESIndex), s.ES.Search.WithBody(strings.NewReader(string(b))))
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID     string         `json:"_id"`
				Source map[string]any `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}

	out := make([]map[string]any, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		out = append(out, h.Source)
	}
	return out, nil
}
