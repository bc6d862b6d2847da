package core

import "context"

// ListArchive returns the names of all archived uploads, from a fresh listing.
func (s *Service) ListArchive(ctx context.Context) ([]string, error) {
	return s.archive.List(ctx)
}

// DeleteArchived removes one archived upload by name. Relational state is
// unaffected; the archive and the snapshot are independently durable.
func (s *Service) DeleteArchived(ctx context.Context, name string) error {
	return s.archive.Delete(ctx, name)
}
