package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"ocorrencias-ponto/backend/config"
	"ocorrencias-ponto/backend/internal/model"
	"ocorrencias-ponto/backend/pkg/supabase"
)

// Row is one loosely typed row as returned by the backing store
type Row = map[string]any

// OrderBy is one column of a composite order
type OrderBy struct {
	Column    string
	Ascending bool
}

// PageQuery selects rows From..To (inclusive, 0-based) of a table
type PageQuery struct {
	Table   string
	Columns []string
	Order   []OrderBy
	From    int
	To      int
}

// RowStore is the paginated read interface of the backing store.
// Errors are returned wrapped and never retried.
type RowStore interface {
	Select(ctx context.Context, q PageQuery) ([]Row, error)
}

// PageReader reads one table page by page in a fixed order
type PageReader interface {
	// ReadPage returns rows [from, from+size)
	ReadPage(ctx context.Context, from, size int) ([]Row, error)
	// Table names the table for logs and errors
	Table() string
}

// tableReader binds a RowStore to one table, column list and order
type tableReader struct {
	store   RowStore
	table   string
	columns []string
	order   []OrderBy
}

// NewTableReader creates a PageReader over table
func NewTableReader(store RowStore, table string, columns []string, order ...OrderBy) PageReader {
	return &tableReader{store: store, table: table, columns: columns, order: order}
}

func (r *tableReader) ReadPage(ctx context.Context, from, size int) ([]Row, error) {
	return r.store.Select(ctx, PageQuery{
		Table:   r.table,
		Columns: r.columns,
		Order:   r.order,
		From:    from,
		To:      from + size - 1,
	})
}

func (r *tableReader) Table() string { return r.table }

// OccurrenceOrder gives pages a stable total order: newest date first, then highest id
var OccurrenceOrder = []OrderBy{
	{Column: model.ColDate, Ascending: false},
	{Column: model.ColRecordID, Ascending: false},
}

// Repository groups the readers the record store loads from
type Repository struct {
	Occurrence PageReader
	Ativo      PageReader
}

// NewRepository wires the occurrence and reference tables onto a row store
func NewRepository(store RowStore, cfg *config.BackendConfig) *Repository {
	return &Repository{
		Occurrence: NewTableReader(store, cfg.Table, model.SourceColumns, OccurrenceOrder...),
		Ativo:      NewTableReader(store, cfg.ReferenceTable, []string{"id", "base"}, OrderBy{Column: "id", Ascending: true}),
	}
}

// ── PostgREST ──

type postgrestStore struct {
	client *supabase.Client
}

// NewPostgRESTStore reads rows through a Supabase PostgREST endpoint
func NewPostgRESTStore(client *supabase.Client) RowStore {
	return &postgrestStore{client: client}
}

func (s *postgrestStore) Select(ctx context.Context, q PageQuery) ([]Row, error) {
	query := s.client.From(q.Table).Select(q.Columns...).Range(q.From, q.To)
	for _, o := range q.Order {
		query = query.Order(o.Column, o.Ascending)
	}
	return query.Execute(ctx)
}

// ── GORM ──

type gormStore struct {
	db *gorm.DB
}

// NewGormStore reads rows directly from PostgreSQL
func NewGormStore(db *gorm.DB) RowStore {
	return &gormStore{db: db}
}

func (s *gormStore) Select(ctx context.Context, q PageQuery) ([]Row, error) {
	tx := s.db.WithContext(ctx).Table(q.Table)
	if len(q.Columns) > 0 {
		tx = tx.Select(q.Columns)
	}
	for _, o := range q.Order {
		tx = tx.Order(clause.OrderByColumn{Column: clause.Column{Name: o.Column}, Desc: !o.Ascending})
	}

	var rows []map[string]any
	err := tx.Offset(q.From).Limit(q.To - q.From + 1).Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
