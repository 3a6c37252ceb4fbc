package repos

import (
	"context"

	"github.com/gosimple/slug"
	"github.com/jmoiron/sqlx"

	"storefront/internal/domain"
)

type BrandRepo struct{ db sqlx.ExtContext }

func NewBrandRepo(db *sqlx.DB) *BrandRepo { return &BrandRepo{db: db} }

func (r *BrandRepo) Tx(tx *sqlx.Tx) *BrandRepo { return &BrandRepo{db: tx} }

func (r *BrandRepo) List(ctx context.Context) ([]domain.Brand, error) {
	out := []domain.Brand{}
	err := sqlx.SelectContext(ctx, r.db, &out, `SELECT id, name, slug FROM brands ORDER BY name`)
	return out, err
}

func (r *BrandRepo) Create(ctx context.Context, name string) (domain.Brand, error) {
	b := domain.Brand{Name: name, Slug: slug.Make(name)}
	res, err := r.db.ExecContext(ctx, `INSERT INTO brands(name, slug) VALUES(?,?)`, b.Name, b.Slug)
	if err != nil {
		return b, err
	}
	b.ID, err = res.LastInsertId()
	return b, err
}
