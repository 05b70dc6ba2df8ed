package application

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/coachbar/catalog-api/internal/domain/entity"
	"github.com/coachbar/catalog-api/internal/domain/repository"
	"github.com/coachbar/catalog-api/internal/infrastructure/postgres"
)

type fakeUserRepo struct {
	seq   int
	users map[string]*entity.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]*entity.User{}}
}

func (r *fakeUserRepo) Create(_ context.Context, u *entity.User) error {
	for _, existing := range r.users {
		if existing.Email == u.Email {
			return postgres.ErrConflict
		}
	}
	r.seq++
	u.ID = fmt.Sprintf("user-%d", r.seq)
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, postgres.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, postgres.ErrNotFound
}

func (r *fakeUserRepo) List(_ context.Context, q repository.UserQuery) ([]*entity.User, int64, error) {
	var out []*entity.User
	for _, u := range r.users {
		cp := *u
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	total := int64(len(out))
	if q.Limit > 0 {
		page := q.Page
		if page < 1 {
			page = 1
		}
		start := (page - 1) * q.Limit
		if start > len(out) {
			start = len(out)
		}
		end := start + q.Limit
		if end > len(out) {
			end = len(out)
		}
		out = out[start:end]
	}
	return out, total, nil
}

func (r *fakeUserRepo) Update(_ context.Context, u *entity.User) error {
	if _, ok := r.users[u.ID]; !ok {
		return postgres.ErrNotFound
	}
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

type fakeProductRepo struct {
	seq      int
	products map[string]*entity.Product
	// lastQuery records what List was asked for, so tests can assert the
	// ownership scope the service injected.
	lastQuery repository.ProductQuery
}

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{products: map[string]*entity.Product{}}
}

func (r *fakeProductRepo) Create(_ context.Context, p *entity.Product) error {
	for _, existing := range r.products {
		if existing.SKU == p.SKU {
			return postgres.ErrConflict
		}
	}
	r.seq++
	p.ID = fmt.Sprintf("product-%d", r.seq)
	cp := *p
	r.products[p.ID] = &cp
	return nil
}

func (r *fakeProductRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, postgres.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func matches(p *entity.Product, q repository.ProductQuery) bool {
	if q.Search != "" {
		s := strings.ToLower(q.Search)
		if !strings.Contains(strings.ToLower(p.Name), s) && !strings.Contains(strings.ToLower(p.SKU), s) {
			return false
		}
	}
	if q.Category != "" && p.Category != q.Category {
		return false
	}
	if q.Source != "" && string(p.Source) != q.Source {
		return false
	}
	if q.AssignedTo != "" {
		found := false
		for _, id := range p.AssignedTo {
			if id == q.AssignedTo {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func (r *fakeProductRepo) List(_ context.Context, q repository.ProductQuery) ([]*entity.Product, int64, error) {
	r.lastQuery = q

	var out []*entity.Product
	for _, p := range r.products {
		if matches(p, q) {
			cp := *p
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if q.Order == "desc" {
			return out[i].Name > out[j].Name
		}
		return out[i].Name < out[j].Name
	})
	total := int64(len(out))
	if q.Limit > 0 {
		page := q.Page
		if page < 1 {
			page = 1
		}
		start := (page - 1) * q.Limit
		if start > len(out) {
			start = len(out)
		}
		end := start + q.Limit
		if end > len(out) {
			end = len(out)
		}
		out = out[start:end]
	}
	return out, total, nil
}

func (r *fakeProductRepo) Update(_ context.Context, p *entity.Product) error {
	if _, ok := r.products[p.ID]; !ok {
		return postgres.ErrNotFound
	}
	for id, existing := range r.products {
		if id != p.ID && existing.SKU == p.SKU {
			return postgres.ErrConflict
		}
	}
	cp := *p
	r.products[p.ID] = &cp
	return nil
}

func (r *fakeProductRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.products[id]; !ok {
		return postgres.ErrNotFound
	}
	delete(r.products, id)
	return nil
}

func (r *fakeProductRepo) Categories(_ context.Context) ([]string, error) {
	seen := map[string]bool{}
	var out []string
	for _, p := range r.products {
		if p.Category != "" && !seen[p.Category] {
			seen[p.Category] = true
			out = append(out, p.Category)
		}
	}
	sort.Strings(out)
	return out, nil
}

var (
	_ repository.UserRepository    = (*fakeUserRepo)(nil)
	_ repository.ProductRepository = (*fakeProductRepo)(nil)
)
