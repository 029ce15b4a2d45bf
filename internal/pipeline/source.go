package pipeline

import (
	"context"

	"github.com/NYU-MSDSE-SWG/dark-web/internal/domain"
	"github.com/NYU-MSDSE-SWG/dark-web/internal/records"
	spg "github.com/NYU-MSDSE-SWG/dark-web/internal/storage/postgres"
)

// Source yields the flat records and their post projection.
type Source interface {
	Load(ctx context.Context) ([]records.Record, []domain.Post, error)
}

// FileSource reads a crawl dump from disk.
type FileSource struct {
	Path string
}

func (s FileSource) Load(ctx context.Context) ([]records.Record, []domain.Post, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	return records.ReadPosts(s.Path)
}

// PostReader is the part of the post store a StoreSource needs.
type PostReader interface {
	Posts(ctx context.Context, f spg.Filter) ([]domain.Post, error)
}

// StoreSource reads previously imported posts back from Postgres.
type StoreSource struct {
	Store  PostReader
	Filter spg.Filter
}

func (s StoreSource) Load(ctx context.Context) ([]records.Record, []domain.Post, error) {
	posts, err := s.Store.Posts(ctx, s.Filter)
	if err != nil {
		return nil, nil, err
	}
	recs := make([]records.Record, len(posts))
	for i, p := range posts {
		recs[i] = records.FromPost(p)
	}
	return recs, posts, nil
}
