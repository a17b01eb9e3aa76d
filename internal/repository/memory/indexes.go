package memory

import "github.com/hashicorp/go-memdb"

var (
	tblUsers     = "users"
	tblDocuments = "documents"
	tblVersions  = "versions"
	tblComments  = "comments"
	tblShares    = "shares"
	tblStars     = "stars"
	tblQuotas    = "quotas"
)

var schema = &memdb.DBSchema{
	Tables: map[string]*memdb.TableSchema{
		tblUsers: {
			Name: tblUsers,
			Indexes: map[string]*memdb.IndexSchema{
				"id": {
					Name:    "id",
					Unique:  true,
					Indexer: &memdb.IntFieldIndex{Field: "ID"},
				},
				"email": {
					Name:    "email",
					Unique:  true,
					Indexer: &memdb.StringFieldIndex{Field: "Email", Lowercase: true},
				},
			},
		},
		tblDocuments: {
			Name: tblDocuments,
			Indexes: map[string]*memdb.IndexSchema{
				"id": {
					Name:    "id",
					Unique:  true,
					Indexer: &memdb.IntFieldIndex{Field: "ID"},
				},
				"slug": {
					Name:    "slug",
					Unique:  true,
					Indexer: &memdb.StringFieldIndex{Field: "Slug"},
				},
				"owner_id": {
					Name:    "owner_id",
					Indexer: &memdb.IntFieldIndex{Field: "OwnerID"},
				},
			},
		},
		tblVersions: {
			Name: tblVersions,
			Indexes: map[string]*memdb.IndexSchema{
				"id": {
					Name:    "id",
					Unique:  true,
					Indexer: &memdb.IntFieldIndex{Field: "ID"},
				},
				"document_id": {
					Name:    "document_id",
					Indexer: &memdb.IntFieldIndex{Field: "DocumentID"},
				},
			},
		},
		tblComments: {
			Name: tblComments,
			Indexes: map[string]*memdb.IndexSchema{
				"id": {
					Name:    "id",
					Unique:  true,
					Indexer: &memdb.IntFieldIndex{Field: "ID"},
				},
				"document_id": {
					Name:    "document_id",
					Indexer: &memdb.IntFieldIndex{Field: "DocumentID"},
				},
			},
		},
		tblShares: {
			Name: tblShares,
			Indexes: map[string]*memdb.IndexSchema{
				"id": {
					Name:    "id",
					Unique:  true,
					Indexer: &memdb.IntFieldIndex{Field: "ID"},
				},
				"document_id": {
					Name:    "document_id",
					Indexer: &memdb.IntFieldIndex{Field: "DocumentID"},
				},
				"shared_with": {
					Name:    "shared_with",
					Indexer: &memdb.IntFieldIndex{Field: "SharedWithID"},
				},
				"document_id_shared_with": {
					Name:   "document_id_shared_with",
					Unique: true,
					Indexer: &memdb.CompoundIndex{
						Indexes: []memdb.Indexer{
							&memdb.IntFieldIndex{Field: "DocumentID"},
							&memdb.IntFieldIndex{Field: "SharedWithID"},
						},
					},
				},
			},
		},
		tblStars: {
			Name: tblStars,
			Indexes: map[string]*memdb.IndexSchema{
				"id": {
					Name:   "id",
					Unique: true,
					Indexer: &memdb.CompoundIndex{
						Indexes: []memdb.Indexer{
							&memdb.IntFieldIndex{Field: "UserID"},
							&memdb.IntFieldIndex{Field: "DocumentID"},
						},
					},
				},
				"user_id": {
					Name:    "user_id",
					Indexer: &memdb.IntFieldIndex{Field: "UserID"},
				},
				"document_id": {
					Name:    "document_id",
					Indexer: &memdb.IntFieldIndex{Field: "DocumentID"},
				},
			},
		},
		tblQuotas: {
			Name: tblQuotas,
			Indexes: map[string]*memdb.IndexSchema{
				"id": {
					Name:    "id",
					Unique:  true,
					Indexer: &memdb.IntFieldIndex{Field: "OwnerID"},
				},
			},
		},
	},
}
