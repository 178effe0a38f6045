package blog

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/AR-Car-Rentals-Dev/ARCarRentals-sub001/internal/domain"
	"github.com/AR-Car-Rentals-Dev/ARCarRentals-sub001/internal/logger"
	"github.com/AR-Car-Rentals-Dev/ARCarRentals-sub001/internal/repository"
	"github.com/AR-Car-Rentals-Dev/ARCarRentals-sub001/internal/storage"
	"github.com/AR-Car-Rentals-Dev/ARCarRentals-sub001/internal/validation"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"
)

// maxSlugAttempts bounds the -2, -3, ... suffix search for a free slug.
const maxSlugAttempts = 50

type BlogUseCase interface {
	ListPublished(ctx context.Context) ([]domain.Blog, error)
	GetBySlug(ctx context.Context, slug string) (*Post, error)
	List(ctx context.Context) ([]domain.Blog, error)
	Create(ctx context.Context, input BlogInput) (*domain.Blog, error)
	Update(ctx context.Context, id int64, input BlogInput) (*domain.Blog, error)
	Delete(ctx context.Context, id int64) error
	UploadCover(ctx context.Context, id int64, file storage.File) (*domain.Blog, error)
}

type BlogInput struct {
	Title     string `json:"title" validate:"required,max=200"`
	Slug      string `json:"slug" validate:"max=200"`
	Excerpt   string `json:"excerpt" validate:"max=500"`
	Content   string `json:"content" validate:"required"`
	Published bool   `json:"published"`
}

// Post is a published blog with its markdown body rendered.
type Post struct {
	domain.Blog
	HTML string `json:"html"`
}

// Raw HTML in markdown is omitted from output (WithUnsafe is not set).
var mdRenderer = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

type BlogService struct {
	repo      repository.BlogRepository
	uploader  storage.Uploader
	bucket    string
	validator *validation.Validator
	now       func() time.Time
	log       *logger.Logger
}

type Option func(*BlogService)

func WithClock(now func() time.Time) Option {
	return func(s *BlogService) { s.now = now }
}

func WithLogger(log *logger.Logger) Option {
	return func(s *BlogService) { s.log = log }
}

func NewBlogService(repo repository.BlogRepository, uploader storage.Uploader, bucket string, opts ...Option) *BlogService {
	s := &BlogService{
		repo:      repo,
		uploader:  uploader,
		bucket:    bucket,
		validator: validation.New(),
		now:       time.Now,
		log:       logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *BlogService) ListPublished(ctx context.Context) ([]domain.Blog, error) {
	return s.list(ctx, true)
}

func (s *BlogService) List(ctx context.Context) ([]domain.Blog, error) {
	return s.list(ctx, false)
}

func (s *BlogService) list(ctx context.Context, publishedOnly bool) ([]domain.Blog, error) {
	blogs, err := s.repo.List(ctx, publishedOnly)
	if err != nil {
		return nil, fmt.Errorf("%w: ListBlogs - %v", domain.ErrFetch, err)
	}
	if blogs == nil {
		blogs = []domain.Blog{}
	}
	return blogs, nil
}

func (s *BlogService) GetBySlug(ctx context.Context, slug string) (*Post, error) {
	b, err := s.repo.GetBySlug(ctx, strings.ToLower(strings.TrimSpace(slug)), true)
	if err != nil {
		return nil, wrapFetch("GetBySlug", err)
	}
	html, err := RenderMarkdown(b.Content)
	if err != nil {
		return nil, fmt.Errorf("%w: GetBySlug - render %q: %v", domain.ErrFetch, b.Slug, err)
	}
	return &Post{Blog: *b, HTML: html}, nil
}

func RenderMarkdown(md string) (string, error) {
	var buf bytes.Buffer
	if err := mdRenderer.Convert([]byte(md), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (s *BlogService) Create(ctx context.Context, input BlogInput) (*domain.Blog, error) {
	input = normalize(input)
	if err := s.validator.Struct(input); err != nil {
		return nil, err
	}

	base := input.Slug
	if base == "" {
		base = Slugify(input.Title)
	}
	slug, err := s.uniqueSlug(ctx, base, 0)
	if err != nil {
		return nil, err
	}

	b := &domain.Blog{
		Slug:      slug,
		Title:     input.Title,
		Excerpt:   input.Excerpt,
		Content:   input.Content,
		Published: input.Published,
	}
	s.stampPublished(b, false)

	if err := s.repo.Create(ctx, b); err != nil {
		return nil, fmt.Errorf("%w: CreateBlog - %v", domain.ErrWrite, err)
	}
	return b, nil
}

func (s *BlogService) Update(ctx context.Context, id int64, input BlogInput) (*domain.Blog, error) {
	input = normalize(input)
	if err := s.validator.Struct(input); err != nil {
		return nil, err
	}

	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, wrapFetch("UpdateBlog", err)
	}

	if input.Slug != "" && input.Slug != b.Slug {
		slug, err := s.uniqueSlug(ctx, input.Slug, id)
		if err != nil {
			return nil, err
		}
		b.Slug = slug
	}
	wasPublished := b.Published
	b.Title = input.Title
	b.Excerpt = input.Excerpt
	b.Content = input.Content
	b.Published = input.Published
	s.stampPublished(b, wasPublished)

	if err := s.repo.Update(ctx, b); err != nil {
		return nil, wrapWrite("UpdateBlog", err)
	}
	return b, nil
}

func (s *BlogService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return wrapWrite("DeleteBlog", err)
	}
	return nil
}

func (s *BlogService) UploadCover(ctx context.Context, id int64, file storage.File) (*domain.Blog, error) {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, wrapFetch("UploadCover", err)
	}

	url, err := storage.Put(ctx, s.uploader, s.bucket, "blogs/"+strconv.FormatInt(id, 10), file)
	if err != nil {
		s.log.Warn("blog cover upload failed", "blog_id", id, "file", file.Name, "error", err)
		return nil, fmt.Errorf("%w: UploadCover - %v", domain.ErrUpload, err)
	}
	b.CoverImageURL = url

	if err := s.repo.Update(ctx, b); err != nil {
		return nil, wrapWrite("UploadCover", err)
	}
	return b, nil
}

// stampPublished sets PublishedAt on the first transition to published and
// clears it when a post is unpublished.
func (s *BlogService) stampPublished(b *domain.Blog, wasPublished bool) {
	switch {
	case !b.Published:
		b.PublishedAt = nil
	case !wasPublished || b.PublishedAt == nil:
		now := s.now().UTC()
		b.PublishedAt = &now
	}
}

func (s *BlogService) uniqueSlug(ctx context.Context, base string, exceptID int64) (string, error) {
	base = Slugify(base)
	if base == "" {
		return "", validation.Fail("slug", "must contain letters or digits")
	}
	candidate := base
	for i := 2; i <= maxSlugAttempts+1; i++ {
		taken, err := s.repo.SlugTaken(ctx, candidate, exceptID)
		if err != nil {
			return "", fmt.Errorf("%w: uniqueSlug - %v", domain.ErrFetch, err)
		}
		if !taken {
			return candidate, nil
		}
		candidate = base + "-" + strconv.Itoa(i)
	}
	return "", validation.Fail("slug", "is already in use")
}

// Slugify lowercases s and joins its letter and digit runs with single dashes.
func Slugify(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			if dash && b.Len() > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(r)
			dash = false
			continue
		}
		dash = true
	}
	return b.String()
}

func normalize(in BlogInput) BlogInput {
	in.Title = strings.TrimSpace(in.Title)
	in.Slug = strings.ToLower(strings.TrimSpace(in.Slug))
	in.Excerpt = strings.TrimSpace(in.Excerpt)
	return in
}

func wrapFetch(op string, err error) error {
	if errors.Is(err, domain.ErrNotFound) {
		return err
	}
	return fmt.Errorf("%w: %s - %v", domain.ErrFetch, op, err)
}

func wrapWrite(op string, err error) error {
	if errors.Is(err, domain.ErrNotFound) {
		return err
	}
	return fmt.Errorf("%w: %s - %v", domain.ErrWrite, op, err)
}

var _ BlogUseCase = (*BlogService)(nil)
