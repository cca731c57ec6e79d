package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/vladislavdragonenkov/kitchen-oms/internal/storage/docstore"
)

// DocumentStore: in-memory реализация docstore.Store для локальной разработки и тестов.
// Как и настоящее хранилище, умеет только прямой обход с токеном продолжения.
type DocumentStore struct {
	mu      sync.RWMutex
	schemas map[string]docstore.TableSchema
	tables  map[string]map[string]docstore.Document
}

// NewDocumentStore создаёт пустое хранилище с заданными коллекциями.
func NewDocumentStore(schemas ...docstore.TableSchema) *DocumentStore {
	s := &DocumentStore{
		schemas: make(map[string]docstore.TableSchema, len(schemas)),
		tables:  make(map[string]map[string]docstore.Document, len(schemas)),
	}
	for _, schema := range schemas {
		s.schemas[schema.Name] = schema
		s.tables[schema.Name] = make(map[string]docstore.Document)
	}
	return s
}

// PutItem сохраняет копию документа.
func (s *DocumentStore) PutItem(_ context.Context, table string, doc docstore.Document, opts docstore.PutOptions) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	schema, items, err := s.table(table)
	if err != nil {
		return err
	}
	key, err := docstore.KeyOf(schema, doc)
	if err != nil {
		return err
	}
	if _, exists := items[key]; exists && opts.IfNotExists {
		return fmt.Errorf("%w: %s/%s", docstore.ErrConditionFailed, table, key)
	}
	items[key] = doc.Clone()
	return nil
}

// GetItem возвращает копию документа или ErrItemNotFound.
func (s *DocumentStore) GetItem(_ context.Context, table, key string) (docstore.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, items, err := s.table(table)
	if err != nil {
		return nil, err
	}
	doc, ok := items[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s/%s", docstore.ErrItemNotFound, table, key)
	}
	return doc.Clone(), nil
}

// Scan обходит таблицу в порядке первичного ключа.
func (s *DocumentStore) Scan(_ context.Context, table string, input docstore.ScanInput) (docstore.Page, error) {
	cursor, hasCursor, err := docstore.DecodeCursor(input.StartToken, "")
	if err != nil {
		return docstore.Page{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	_, items, err := s.table(table)
	if err != nil {
		return docstore.Page{}, err
	}

	entries := make([]entry, 0, len(items))
	for key, doc := range items {
		if hasCursor && key <= cursor.Key {
			continue
		}
		entries = append(entries, entry{key: key, doc: doc})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].key < entries[j].key })

	return page(entries, input.Limit, ""), nil
}

// Query выбирает документы индекса с заданным значением ключа раздела.
// Документы без атрибута раздела в индекс не входят.
func (s *DocumentStore) Query(_ context.Context, table string, input docstore.QueryInput) (docstore.Page, error) {
	cursor, hasCursor, err := docstore.DecodeCursor(input.StartToken, input.Index)
	if err != nil {
		return docstore.Page{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	schema, items, err := s.table(table)
	if err != nil {
		return docstore.Page{}, err
	}
	index, ok := schema.Index(input.Index)
	if !ok {
		return docstore.Page{}, fmt.Errorf("%w: %s.%s", docstore.ErrUnknownIndex, table, input.Index)
	}

	entries := make([]entry, 0)
	for key, doc := range items {
		partition, ok := doc[index.PartitionKey]
		if !ok || !partition.Equal(input.KeyValue) {
			continue
		}
		sortKey, _ := doc[index.SortKey].Scalar()
		e := entry{key: key, sortKey: sortKey, doc: doc}
		if hasCursor && !e.after(cursor, input.Descending) {
			continue
		}
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool {
		if input.Descending {
			return entries[j].less(entries[i])
		}
		return entries[i].less(entries[j])
	})

	return page(entries, input.Limit, input.Index), nil
}

// Ping всегда успешен.
func (s *DocumentStore) Ping(context.Context) error {
	return nil
}

func (s *DocumentStore) table(name string) (docstore.TableSchema, map[string]docstore.Document, error) {
	schema, ok := s.schemas[name]
	if !ok {
		return docstore.TableSchema{}, nil, fmt.Errorf("%w: %s", docstore.ErrUnknownTable, name)
	}
	return schema, s.tables[name], nil
}

type entry struct {
	key     string
	sortKey string
	doc     docstore.Document
}

func (e entry) less(other entry) bool {
	if e.sortKey != other.sortKey {
		return e.sortKey < other.sortKey
	}
	return e.key < other.key
}

// after сообщает, лежит ли запись за позицией курсора в направлении обхода.
func (e entry) after(c docstore.Cursor, descending bool) bool {
	pos := entry{key: c.Key, sortKey: c.SortKey}
	if descending {
		return e.less(pos)
	}
	return pos.less(e)
}

// page отрезает limit записей; токен выдаётся, только если за ними что-то осталось.
func page(entries []entry, limit int, index string) docstore.Page {
	if limit <= 0 || limit > len(entries) {
		limit = len(entries)
	}
	result := docstore.Page{Items: make([]docstore.Document, 0, limit)}
	for _, e := range entries[:limit] {
		result.Items = append(result.Items, e.doc.Clone())
	}
	if limit < len(entries) {
		last := entries[limit-1]
		result.NextToken = docstore.EncodeCursor(docstore.Cursor{Index: index, SortKey: last.sortKey, Key: last.key})
	}
	return result
}

var _ docstore.Store = (*DocumentStore)(nil)
