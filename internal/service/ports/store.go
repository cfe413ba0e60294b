package ports

import "bizflow/apps/orchestrator/internal/docstore"

// DocumentStore is the persistence collaborator. Implemented by
// docstore.Store; workflow services never see the backing file.
type DocumentStore interface {
	Get(collection, id string) (map[string]interface{}, bool)
	Create(collection string, doc map[string]interface{}, id string) (map[string]interface{}, error)
	Update(collection, id string, partial map[string]interface{}) error
	Query(collection string, q docstore.Query) []map[string]interface{}
}
