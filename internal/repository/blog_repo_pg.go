package repository

import (
	"context"
	"fmt"

	"github.com/AR-Car-Rentals-Dev/ARCarRentals-sub001/internal/domain"
	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
)

type BlogRepository interface {
	List(ctx context.Context, publishedOnly bool) ([]domain.Blog, error)
	GetByID(ctx context.Context, id int64) (*domain.Blog, error)
	GetBySlug(ctx context.Context, slug string, publishedOnly bool) (*domain.Blog, error)
	SlugTaken(ctx context.Context, slug string, exceptID int64) (bool, error)
	Create(ctx context.Context, blog *domain.Blog) error
	Update(ctx context.Context, blog *domain.Blog) error
	Delete(ctx context.Context, id int64) error
}

type PGBlogRepository struct {
	db DB
}

func NewBlogRepository(db DB) BlogRepository {
	return &PGBlogRepository{db: db}
}

var blogColumns = []string{
	"id", "slug", "title", "excerpt", "content", "cover_image_url",
	"published", "published_at", "created_at", "updated_at",
}

func selectBlogs(publishedOnly bool) sq.SelectBuilder {
	q := psql.Select(blogColumns...).From("blogs")
	if publishedOnly {
		q = q.Where(sq.Eq{"published": true})
	}
	return q
}

func scanBlog(row pgx.Row) (domain.Blog, error) {
	var b domain.Blog
	var excerpt, cover *string
	err := row.Scan(&b.ID, &b.Slug, &b.Title, &excerpt, &b.Content, &cover,
		&b.Published, &b.PublishedAt, &b.CreatedAt, &b.UpdatedAt)
	b.Excerpt = deref(excerpt)
	b.CoverImageURL = deref(cover)
	return b, err
}

func (r *PGBlogRepository) List(ctx context.Context, publishedOnly bool) ([]domain.Blog, error) {
	query, args, err := selectBlogs(publishedOnly).OrderBy("COALESCE(published_at, created_at) DESC", "id DESC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list query: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	blogs := make([]domain.Blog, 0)
	for rows.Next() {
		b, err := scanBlog(rows)
		if err != nil {
			return nil, err
		}
		blogs = append(blogs, b)
	}
	return blogs, rows.Err()
}

func (r *PGBlogRepository) GetByID(ctx context.Context, id int64) (*domain.Blog, error) {
	query, args, err := selectBlogs(false).Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select query: %w", err)
	}
	b, err := scanBlog(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, notFound(err)
	}
	return &b, nil
}

func (r *PGBlogRepository) GetBySlug(ctx context.Context, slug string, publishedOnly bool) (*domain.Blog, error) {
	query, args, err := selectBlogs(publishedOnly).Where(sq.Eq{"slug": slug}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select query: %w", err)
	}
	b, err := scanBlog(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, notFound(err)
	}
	return &b, nil
}

func (r *PGBlogRepository) SlugTaken(ctx context.Context, slug string, exceptID int64) (bool, error) {
	query, args, err := psql.Select("1").
		Prefix("SELECT EXISTS (").
		From("blogs").
		Where(sq.Eq{"slug": slug}).
		Where(sq.NotEq{"id": exceptID}).
		Suffix(")").
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build exists query: %w", err)
	}
	var taken bool
	err = r.db.QueryRow(ctx, query, args...).Scan(&taken)
	return taken, err
}

func (r *PGBlogRepository) Create(ctx context.Context, blog *domain.Blog) error {
	query, args, err := psql.Insert("blogs").
		Columns("slug", "title", "excerpt", "content", "cover_image_url", "published", "published_at").
		Values(blog.Slug, blog.Title, blog.Excerpt, blog.Content, blog.CoverImageURL, blog.Published, blog.PublishedAt).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert query: %w", err)
	}
	return r.db.QueryRow(ctx, query, args...).Scan(&blog.ID, &blog.CreatedAt, &blog.UpdatedAt)
}

func (r *PGBlogRepository) Update(ctx context.Context, blog *domain.Blog) error {
	query, args, err := psql.Update("blogs").
		SetMap(map[string]any{
			"slug":            blog.Slug,
			"title":           blog.Title,
			"excerpt":         blog.Excerpt,
			"content":         blog.Content,
			"cover_image_url": blog.CoverImageURL,
			"published":       blog.Published,
			"published_at":    blog.PublishedAt,
			"updated_at":      sq.Expr("now()"),
		}).
		Where(sq.Eq{"id": blog.ID}).
		Suffix("RETURNING updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build update query: %w", err)
	}
	if err := r.db.QueryRow(ctx, query, args...).Scan(&blog.UpdatedAt); err != nil {
		return notFound(err)
	}
	return nil
}

func (r *PGBlogRepository) Delete(ctx context.Context, id int64) error {
	query, args, err := psql.Delete("blogs").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("build delete query: %w", err)
	}
	return execAffecting(ctx, r.db, query, args...)
}

var _ BlogRepository = (*PGBlogRepository)(nil)
