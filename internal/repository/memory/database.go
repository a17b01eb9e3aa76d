// Package memory реализует репозитории поверх базы в памяти (go-memdb).
// Используется для локального запуска и в тестах.
package memory

import (
	"fmt"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"github.com/hashicorp/go-memdb"

	"dochub/internal/domain"
)

// DB - база в памяти, общая для всех репозиториев драйвера
type DB struct {
	db           *memdb.MemDB
	defaultLimit int64

	userSeq    atomic.Int64
	docSeq     atomic.Int64
	versionSeq atomic.Int64
	commentSeq atomic.Int64
	shareSeq   atomic.Int64
	quotaSeq   atomic.Int64
}

type starRecord struct {
	UserID     int64
	DocumentID int64
	CreatedAt  time.Time
}

// New создает пустую базу. defaultLimit - лимит квоты для новых пользователей.
func New(defaultLimit int64) (*DB, error) {
	memDB, err := memdb.NewMemDB(schema)
	if err != nil {
		return nil, fmt.Errorf("new memdb: %w", err)
	}

	return &DB{
		db:           memDB,
		defaultLimit: defaultLimit,
	}, nil
}

func now() time.Time {
	return time.Now().UTC()
}

func (d *DB) userSummary(txn *memdb.Txn, userID int64) domain.UserSummary {
	raw, err := txn.First(tblUsers, "id", userID)
	if err != nil || raw == nil {
		return domain.UserSummary{ID: userID}
	}
	return raw.(*domain.User).Summary()
}

func count(txn *memdb.Txn, table, index string, args ...interface{}) int {
	it, err := txn.Get(table, index, args...)
	if err != nil {
		return 0
	}

	n := 0
	for raw := it.Next(); raw != nil; raw = it.Next() {
		n++
	}
	return n
}

// decorate дополняет документ владельцем и счетчиками
func (d *DB) decorate(txn *memdb.Txn, stored *domain.Document) domain.Document {
	doc := *stored
	doc.Tags = append([]string{}, stored.Tags...)
	doc.Owner = d.userSummary(txn, doc.OwnerID)
	doc.VersionCount = count(txn, tblVersions, "document_id", doc.ID)
	doc.ShareCount = count(txn, tblShares, "document_id", doc.ID)
	return doc
}

func canView(txn *memdb.Txn, doc *domain.Document, userID int64) bool {
	if doc.OwnerID == userID || doc.IsPublic {
		return true
	}
	raw, err := txn.First(tblShares, "document_id_shared_with", doc.ID, userID)
	return err == nil && raw != nil
}

func matches(doc *domain.Document, search string) bool {
	if search == "" {
		return true
	}

	search = strings.ToLower(search)
	if strings.Contains(strings.ToLower(doc.Title), search) ||
		strings.Contains(strings.ToLower(doc.Description), search) {
		return true
	}
	for _, tag := range doc.Tags {
		if strings.Contains(strings.ToLower(tag), search) {
			return true
		}
	}
	return false
}

func sortDocuments(docs []domain.Document, ordering string) {
	field, desc := domain.ParseOrdering(ordering)

	less := func(a, b domain.Document) int {
		switch field {
		case "title":
			return strings.Compare(a.Title, b.Title)
		case "created_at":
			return a.CreatedAt.Compare(b.CreatedAt)
		case "file_size":
			switch {
			case a.FileSize < b.FileSize:
				return -1
			case a.FileSize > b.FileSize:
				return 1
			}
			return 0
		default:
			return a.UpdatedAt.Compare(b.UpdatedAt)
		}
	}

	sort.SliceStable(docs, func(i, j int) bool {
		c := less(docs[i], docs[j])
		if c == 0 {
			c = int(docs[i].ID - docs[j].ID)
		}
		if desc {
			return c > 0
		}
		return c < 0
	})
}
