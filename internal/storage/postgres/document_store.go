package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/vladislavdragonenkov/kitchen-oms/internal/storage/docstore"
)

const opTimeout = 5 * time.Second

// DocumentStore реализует docstore.Store поверх таблицы documents (JSONB).
// Вторичные индексы: выражения над body, обход: keyset по (sort key, pk).
type DocumentStore struct {
	db      *sql.DB
	schemas map[string]docstore.TableSchema
}

// NewDocumentStore создаёт хранилище для перечисленных коллекций.
func NewDocumentStore(store *Store, schemas ...docstore.TableSchema) *DocumentStore {
	s := &DocumentStore{
		db:      store.DB(),
		schemas: make(map[string]docstore.TableSchema, len(schemas)),
	}
	for _, schema := range schemas {
		s.schemas[schema.Name] = schema
	}
	return s
}

// PutItem вставляет или перезаписывает документ. С IfNotExists конфликт ключа
// превращается в ErrConditionFailed.
func (s *DocumentStore) PutItem(ctx context.Context, table string, doc docstore.Document, opts docstore.PutOptions) error {
	schema, err := s.schema(table)
	if err != nil {
		return err
	}
	key, err := docstore.KeyOf(schema, doc)
	if err != nil {
		return err
	}
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode document %s/%s: %w", table, key, err)
	}

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	query := `
		INSERT INTO documents (collection, pk, body)
		VALUES ($1, $2, $3::jsonb)
		ON CONFLICT (collection, pk) DO UPDATE
		SET body = EXCLUDED.body, updated_at = NOW()`
	if opts.IfNotExists {
		query = `INSERT INTO documents (collection, pk, body) VALUES ($1, $2, $3::jsonb)`
	}

	if _, err := s.db.ExecContext(ctx, query, table, key, string(body)); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %s/%s", docstore.ErrConditionFailed, table, key)
		}
		return fmt.Errorf("put document %s/%s: %w", table, key, err)
	}
	return nil
}

// GetItem читает документ по первичному ключу.
func (s *DocumentStore) GetItem(ctx context.Context, table, key string) (docstore.Document, error) {
	if _, err := s.schema(table); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var body []byte
	err := s.db.QueryRowContext(ctx, `SELECT body FROM documents WHERE collection = $1 AND pk = $2`, table, key).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s/%s", docstore.ErrItemNotFound, table, key)
	}
	if err != nil {
		return nil, fmt.Errorf("get document %s/%s: %w", table, key, err)
	}
	return decodeDocument(body)
}

// Scan обходит коллекцию в порядке первичного ключа.
func (s *DocumentStore) Scan(ctx context.Context, table string, input docstore.ScanInput) (docstore.Page, error) {
	if _, err := s.schema(table); err != nil {
		return docstore.Page{}, err
	}
	cursor, hasCursor, err := docstore.DecodeCursor(input.StartToken, "")
	if err != nil {
		return docstore.Page{}, err
	}

	var sb strings.Builder
	args := []any{table}
	sb.WriteString(`SELECT pk, '' AS sk, body FROM documents WHERE collection = $1`)
	if hasCursor {
		args = append(args, cursor.Key)
		fmt.Fprintf(&sb, ` AND pk > $%d`, len(args))
	}
	sb.WriteString(` ORDER BY pk`)
	args = appendLimit(&sb, args, input.Limit)

	return s.readPage(ctx, sb.String(), args, input.Limit, "")
}

// Query выбирает документы индекса с равенством по ключу раздела.
// Документы без атрибута раздела в выборку не попадают: ->> возвращает NULL.
func (s *DocumentStore) Query(ctx context.Context, table string, input docstore.QueryInput) (docstore.Page, error) {
	schema, err := s.schema(table)
	if err != nil {
		return docstore.Page{}, err
	}
	index, ok := schema.Index(input.Index)
	if !ok {
		return docstore.Page{}, fmt.Errorf("%w: %s.%s", docstore.ErrUnknownIndex, table, input.Index)
	}
	cursor, hasCursor, err := docstore.DecodeCursor(input.StartToken, input.Index)
	if err != nil {
		return docstore.Page{}, err
	}
	query, args, err := buildIndexQuery(table, index, input, cursor, hasCursor)
	if err != nil {
		return docstore.Page{}, err
	}
	return s.readPage(ctx, query, args, input.Limit, input.Index)
}

// Ping проверяет доступность базы.
func (s *DocumentStore) Ping(ctx context.Context) error {
	if s == nil || s.db == nil {
		return errStoreNotInitialized
	}
	ctx, cancel := context.WithTimeout(ctx, defaultConnTimeout)
	defer cancel()
	return s.db.PingContext(ctx)
}

func (s *DocumentStore) schema(table string) (docstore.TableSchema, error) {
	schema, ok := s.schemas[table]
	if !ok {
		return docstore.TableSchema{}, fmt.Errorf("%w: %s", docstore.ErrUnknownTable, table)
	}
	return schema, nil
}

// readPage читает limit+1 строк: лишняя строка означает, что обход не закончен.
func (s *DocumentStore) readPage(ctx context.Context, query string, args []any, limit int, index string) (docstore.Page, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return docstore.Page{}, fmt.Errorf("query documents: %w", err)
	}
	defer rows.Close()

	page := docstore.Page{Items: make([]docstore.Document, 0)}
	var last docstore.Cursor
	for rows.Next() {
		var (
			key, sortKey string
			body         []byte
		)
		if err := rows.Scan(&key, &sortKey, &body); err != nil {
			return docstore.Page{}, fmt.Errorf("scan document row: %w", err)
		}
		if limit > 0 && len(page.Items) == limit {
			page.NextToken = docstore.EncodeCursor(last)
			break
		}
		doc, err := decodeDocument(body)
		if err != nil {
			return docstore.Page{}, err
		}
		page.Items = append(page.Items, doc)
		last = docstore.Cursor{Index: index, SortKey: sortKey, Key: key}
	}
	if err := rows.Err(); err != nil {
		return docstore.Page{}, fmt.Errorf("iterate documents: %w", err)
	}
	return page, nil
}

// buildIndexQuery собирает запрос по индексу. Имена коллекции и атрибутов берутся
// из схемы и подставляются литералами, чтобы планировщик сопоставил выражения
// с индексами из миграции 0002.
func buildIndexQuery(table string, index docstore.IndexDefinition, input docstore.QueryInput, cursor docstore.Cursor, hasCursor bool) (string, []any, error) {
	kindKey, err := kindKey(input.KeyValue)
	if err != nil {
		return "", nil, err
	}
	value, _ := input.KeyValue.Scalar()

	sortExpr := sortKeyExpr(index.SortKey)
	partitionExpr := fmt.Sprintf(`(body->%s->>%s)`, quoteLiteral(index.PartitionKey), quoteLiteral(kindKey))

	var sb strings.Builder
	args := []any{value}
	fmt.Fprintf(&sb, `SELECT pk, %s AS sk, body FROM documents WHERE collection = %s AND %s = $1`,
		sortExpr, quoteLiteral(table), partitionExpr)

	op, dir := ">", "ASC"
	if input.Descending {
		op, dir = "<", "DESC"
	}
	if hasCursor {
		args = append(args, cursor.SortKey, cursor.Key)
		fmt.Fprintf(&sb, ` AND (%s, pk) %s ($%d, $%d)`, sortExpr, op, len(args)-1, len(args))
	}
	fmt.Fprintf(&sb, ` ORDER BY %s %s, pk %s`, sortExpr, dir, dir)
	args = appendLimit(&sb, args, input.Limit)

	return sb.String(), args, nil
}

func appendLimit(sb *strings.Builder, args []any, limit int) []any {
	if limit <= 0 {
		return args
	}
	args = append(args, limit+1)
	fmt.Fprintf(sb, ` LIMIT $%d`, len(args))
	return args
}

func sortKeyExpr(attr string) string {
	lit := quoteLiteral(attr)
	return fmt.Sprintf(`(COALESCE(body->%s->>'S', body->%s->>'N', '') COLLATE "C")`, lit, lit)
}

func kindKey(value docstore.AttributeValue) (string, error) {
	switch value.Kind {
	case docstore.KindString:
		return "S", nil
	case docstore.KindNumber:
		return "N", nil
	case docstore.KindBool:
		return "BOOL", nil
	default:
		return "", fmt.Errorf("index key must be scalar, got kind %d", value.Kind)
	}
}

func quoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func decodeDocument(body []byte) (docstore.Document, error) {
	var doc docstore.Document
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	return doc, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

var _ docstore.Store = (*DocumentStore)(nil)
