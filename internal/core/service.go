package core

// Service provides the boundary operations the HTTP layer consumes:
// ingestion, search, entity mutations and archive management. It owns no
// global state; every collaborator is passed in explicitly.
type Service struct {
	db      Store
	loader  Loader
	archive Archiver
}

// NewService wires the service over its three collaborators.
func NewService(db Store, loader Loader, archive Archiver) *Service {
	return &Service{
		db:      db,
		loader:  loader,
		archive: archive,
	}
}
