package repository

import (
	"context"
	"errors"
	"fmt"

	"bookquote-backend/internal/domains/catalog/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
)

// bookPostgresRepository implements BookRepository on pgxpool.
type bookPostgresRepository struct {
	pool *pgxpool.Pool
}

func NewBookRepository(pool *pgxpool.Pool) BookRepository {
	return &bookPostgresRepository{pool: pool}
}

const bookColumns = `
    id, tenant_id, title,
    COALESCE(author, '')         AS author,
    COALESCE(edition, '')        AS edition,
    year, isbn, other_code, publisher_id,
    COALESCE(classification, '') AS classification,
    COALESCE(remarks, '')        AS remarks,
    tags, created_at, updated_at
`

func scanBook(row pgx.Row) (*model.Book, error) {
	var b model.Book
	err := row.Scan(
		&b.ID,
		&b.TenantID,
		&b.Title,
		&b.Author,
		&b.Edition,
		&b.Year,
		&b.ISBN,
		&b.OtherCode,
		&b.PublisherID,
		&b.Classification,
		&b.Remarks,
		pq.Array(&b.Tags),
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &b, nil
}

func (r *bookPostgresRepository) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*model.Book, error) {
	query := `SELECT ` + bookColumns + ` FROM books WHERE tenant_id = $1 AND id = $2`

	book, err := scanBook(r.pool.QueryRow(ctx, query, tenantID, id))
	if err != nil {
		return nil, fmt.Errorf("failed to get book by id: %w", err)
	}
	return book, nil
}

func (r *bookPostgresRepository) GetByISBN(ctx context.Context, tenantID uuid.UUID, isbn string) (*model.Book, error) {
	query := `SELECT ` + bookColumns + ` FROM books WHERE tenant_id = $1 AND isbn = $2`

	book, err := scanBook(r.pool.QueryRow(ctx, query, tenantID, isbn))
	if err != nil {
		return nil, fmt.Errorf("failed to get book by isbn: %w", err)
	}
	return book, nil
}

func (r *bookPostgresRepository) GetByOtherCode(ctx context.Context, tenantID uuid.UUID, code string) (*model.Book, error) {
	query := `SELECT ` + bookColumns + ` FROM books WHERE tenant_id = $1 AND other_code = $2`

	book, err := scanBook(r.pool.QueryRow(ctx, query, tenantID, code))
	if err != nil {
		return nil, fmt.Errorf("failed to get book by other_code: %w", err)
	}
	return book, nil
}

func (r *bookPostgresRepository) GetByTitleAndPublisher(ctx context.Context, tenantID uuid.UUID, title string, publisherID uuid.UUID) (*model.Book, error) {
	query := `SELECT ` + bookColumns + `
    FROM books
    WHERE tenant_id = $1 AND publisher_id = $2 AND LOWER(title) = LOWER($3)`

	book, err := scanBook(r.pool.QueryRow(ctx, query, tenantID, publisherID, title))
	if err != nil {
		return nil, fmt.Errorf("failed to get book by title and publisher: %w", err)
	}
	return book, nil
}

func (r *bookPostgresRepository) Create(ctx context.Context, book *model.Book) (*model.Book, error) {
	query := `
    INSERT INTO books (
      id, tenant_id, title, author, edition, year, isbn, other_code,
      publisher_id, classification, remarks, tags
    )
    VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
    RETURNING created_at, updated_at
  `

	if book.ID == uuid.Nil {
		book.ID = uuid.New()
	}

	err := r.pool.QueryRow(ctx, query,
		book.ID,
		book.TenantID,
		book.Title,
		book.Author,
		book.Edition,
		book.Year,
		book.ISBN,
		book.OtherCode,
		book.PublisherID,
		book.Classification,
		book.Remarks,
		pq.Array(book.Tags),
	).Scan(&book.CreatedAt, &book.UpdatedAt)
	if err != nil {
		return nil, model.NewCreateBookError(err)
	}

	return book, nil
}

func (r *bookPostgresRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM books WHERE tenant_id = $1 AND id = $2`, tenantID, id)
	if err != nil {
		return fmt.Errorf("failed to delete book: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrBookNotFound
	}
	return nil
}
