package repos

import (
	"context"

	"github.com/gosimple/slug"
	"github.com/jmoiron/sqlx"

	"storefront/internal/domain"
)

type CategoryRepo struct{ db sqlx.ExtContext }

func NewCategoryRepo(db *sqlx.DB) *CategoryRepo { return &CategoryRepo{db: db} }

func (r *CategoryRepo) Tx(tx *sqlx.Tx) *CategoryRepo { return &CategoryRepo{db: tx} }

func (r *CategoryRepo) List(ctx context.Context) ([]domain.Category, error) {
	out := []domain.Category{}
	err := sqlx.SelectContext(ctx, r.db, &out, `
	  SELECT id, name, slug
	  FROM categories
	  ORDER BY name
	`)
	return out, err
}

func (r *CategoryRepo) Create(ctx context.Context, name string) (domain.Category, error) {
	c := domain.Category{Name: name, Slug: slug.Make(name)}
	res, err := r.db.ExecContext(ctx, `INSERT INTO categories(name, slug) VALUES(?,?)`, c.Name, c.Slug)
	if err != nil {
		return c, err
	}
	c.ID, err = res.LastInsertId()
	return c, err
}
