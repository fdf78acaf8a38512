package navigo

import (
	"context"

	"github.com/hupe1980/navigo/blobstore"
	"github.com/hupe1980/navigo/graph"
)

// Source tells Open where the graph comes from.
type Source struct {
	name string
	load func(ctx context.Context, opts []graph.Option) (*graph.Store, error)
}

// String returns a description of the source for logs.
func (s Source) String() string { return s.name }

// Local loads the graph file at path.
func Local(path string) Source {
	return Source{
		name: path,
		load: func(ctx context.Context, opts []graph.Option) (*graph.Store, error) {
			return graph.Load(ctx, path, opts...)
		},
	}
}

// Remote loads the graph stored under name in a blob store (S3, MinIO, ...).
func Remote(store blobstore.BlobStore, name string) Source {
	return Source{
		name: "blob:" + name,
		load: func(ctx context.Context, opts []graph.Option) (*graph.Store, error) {
			return graph.LoadBlob(ctx, store, name, opts...)
		},
	}
}

// FromStore uses an already built graph.
func FromStore(g *graph.Store) Source {
	return Source{
		name: "memory",
		load: func(context.Context, []graph.Option) (*graph.Store, error) {
			return g, nil
		},
	}
}
