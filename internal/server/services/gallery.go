package services

import (
	"context"

	"github.com/dmitrijs2005/artvault/internal/server/identity"
	"github.com/dmitrijs2005/artvault/internal/server/models"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// ApprovedArtwork is a gallery entry: an approved submission and a
// time-limited download URL of its asset.
type ApprovedArtwork struct {
	Submission *models.Submission
	URL        string
}

// ListApprovedArtwork pages through verified and rewarded submissions and
// returns the total count alongside the page.
func (s *SubmissionService) ListApprovedArtwork(ctx context.Context, limit, offset int) (page []ApprovedArtwork, total int64, err error) {
	ctx, span := s.start(ctx, "ListApprovedArtwork", 0)
	defer func() { s.end(ctx, span, "ListApprovedArtwork", 0, err) }()

	if _, err := identity.MustCaller(ctx); err != nil {
		return nil, 0, err
	}

	if limit <= 0 {
		limit = defaultPageSize
	}
	limit = min(limit, maxPageSize)
	offset = max(offset, 0)

	subs, err := s.registry.ListApproved(ctx, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	total, err = s.registry.CountApproved(ctx)
	if err != nil {
		return nil, 0, err
	}

	page = make([]ApprovedArtwork, 0, len(subs))
	for _, sub := range subs {
		entry := ApprovedArtwork{Submission: sub}
		if sub.Asset != nil {
			done := s.collaborator("store")
			entry.URL, err = s.store.PresignGet(ctx, sub.Asset.StorageKey, s.presignTTL)
			done()
			if err != nil {
				return nil, 0, err
			}
		}
		page = append(page, entry)
	}
	return page, total, nil
}
