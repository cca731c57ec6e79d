package docstore

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrItemNotFound: документа с таким ключом нет.
	ErrItemNotFound = errors.New("document not found")
	// ErrConditionFailed: условие записи (IfNotExists) не выполнено.
	ErrConditionFailed = errors.New("conditional write failed")
	// ErrUnknownTable: таблица не описана в схеме хранилища.
	ErrUnknownTable = errors.New("unknown table")
	// ErrUnknownIndex: вторичный индекс не описан в схеме таблицы.
	ErrUnknownIndex = errors.New("unknown index")
	// ErrInvalidToken: токен продолжения повреждён или относится к другому запросу.
	ErrInvalidToken = errors.New("invalid continuation token")
	// ErrMissingKey: в документе нет атрибута первичного ключа.
	ErrMissingKey = errors.New("document has no primary key attribute")
)

// IndexDefinition описывает вторичный индекс: равенство по PartitionKey, сортировка по SortKey.
// Индекс разреженный: документы без атрибута PartitionKey в него не попадают.
type IndexDefinition struct {
	Name         string
	PartitionKey string
	SortKey      string
}

// TableSchema описывает коллекцию документов.
type TableSchema struct {
	Name       string
	PrimaryKey string
	Indexes    []IndexDefinition
}

// Index возвращает описание индекса по имени.
func (s TableSchema) Index(name string) (IndexDefinition, bool) {
	for _, idx := range s.Indexes {
		if idx.Name == name {
			return idx, true
		}
	}
	return IndexDefinition{}, false
}

// PutOptions задаёт условия записи.
type PutOptions struct {
	IfNotExists bool
}

// ScanInput: параметры полного обхода таблицы.
type ScanInput struct {
	Limit      int
	StartToken string
}

// QueryInput: параметры запроса по вторичному индексу с условием равенства.
type QueryInput struct {
	Index      string
	KeyValue   AttributeValue
	Limit      int
	StartToken string
	Descending bool
}

// Page: результат одного ограниченного чтения. NextToken пуст, когда обход завершён.
type Page struct {
	Items     []Document
	NextToken string
}

// Store: документное хранилище без offset/skip: только прямой обход с токеном продолжения.
type Store interface {
	PutItem(ctx context.Context, table string, doc Document, opts PutOptions) error
	GetItem(ctx context.Context, table, key string) (Document, error)
	Scan(ctx context.Context, table string, input ScanInput) (Page, error)
	Query(ctx context.Context, table string, input QueryInput) (Page, error)
	Ping(ctx context.Context) error
}

// Cursor: позиция обхода. Сериализуется в непрозрачный токен.
type Cursor struct {
	Index   string `json:"i,omitempty"`
	SortKey string `json:"s,omitempty"`
	Key     string `json:"k"`
}

// EncodeCursor превращает позицию в токен продолжения.
func EncodeCursor(c Cursor) string {
	data, _ := json.Marshal(c)
	return base64.RawURLEncoding.EncodeToString(data)
}

// DecodeCursor разбирает токен. Пустой токен означает начало обхода.
func DecodeCursor(token, index string) (Cursor, bool, error) {
	if token == "" {
		return Cursor{}, false, nil
	}
	data, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return Cursor{}, false, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	var c Cursor
	if err := json.Unmarshal(data, &c); err != nil {
		return Cursor{}, false, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if c.Index != index {
		return Cursor{}, false, fmt.Errorf("%w: token belongs to index %q", ErrInvalidToken, c.Index)
	}
	return c, true, nil
}

// KeyOf возвращает значение первичного ключа документа.
func KeyOf(schema TableSchema, doc Document) (string, error) {
	value, ok := doc[schema.PrimaryKey]
	if !ok || value.Kind != KindString || value.S == "" {
		return "", fmt.Errorf("%w: %s.%s", ErrMissingKey, schema.Name, schema.PrimaryKey)
	}
	return value.S, nil
}
