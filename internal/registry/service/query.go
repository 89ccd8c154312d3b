package service

import (
	"context"
	"iter"

	"github.com/aussiebroadwan/registry/internal/registry/domain"
	"github.com/aussiebroadwan/registry/internal/registry/store"
)

// DefaultPageSize is the listing page size of the web UI and the API.
const DefaultPageSize = 10

// MaxPageSize bounds caller supplied page sizes.
const MaxPageSize = 100

// allBatch is how many rows All fetches per round trip.
const allBatch = 200

// ClientQuery is a filtered view of the client book. Nothing is read until
// one of its methods is called, and each call reads afresh, so a query can be
// iterated or paged any number of times.
type ClientQuery struct {
	clients store.Clients
	filter  domain.ClientFilter
}

// ClientPage is one page of a query.
type ClientPage struct {
	Items    []domain.Client
	Total    int
	Page     int // 1-based
	PageSize int
	Pages    int
}

func (p ClientPage) HasPrevious() bool { return p.Page > 1 }
func (p ClientPage) HasNext() bool     { return p.Page < p.Pages }

// Query returns the clients matching f ordered by name.
func (s *ClientService) Query(f domain.ClientFilter) *ClientQuery {
	return &ClientQuery{clients: s.Store.Clients(), filter: f}
}

func (q *ClientQuery) Filter() domain.ClientFilter { return q.filter }

// Count returns the number of matching clients.
func (q *ClientQuery) Count(ctx context.Context) (int, error) {
	return q.clients.CountClients(ctx, q.filter)
}

// Page returns up to size clients starting at the 1-based page number.
func (q *ClientQuery) Page(ctx context.Context, page, size int) ([]domain.Client, error) {
	page, size = max(page, 1), clampSize(size)
	return q.clients.SearchClients(ctx, q.filter, store.Page{Limit: size, Offset: (page - 1) * size})
}

// Paginate returns a page with its totals. Out of range page numbers fall
// back to the nearest valid page.
func (q *ClientQuery) Paginate(ctx context.Context, page, size int) (ClientPage, error) {
	size = clampSize(size)
	total, err := q.Count(ctx)
	if err != nil {
		return ClientPage{}, err
	}

	pages := max((total+size-1)/size, 1)
	page = min(max(page, 1), pages)

	items, err := q.Page(ctx, page, size)
	if err != nil {
		return ClientPage{}, err
	}
	return ClientPage{Items: items, Total: total, Page: page, PageSize: size, Pages: pages}, nil
}

// All yields every matching client. Rows are fetched in batches so no
// connection is held while the caller works on a yielded client.
func (q *ClientQuery) All(ctx context.Context) iter.Seq2[domain.Client, error] {
	return func(yield func(domain.Client, error) bool) {
		for offset := 0; ; offset += allBatch {
			batch, err := q.clients.SearchClients(ctx, q.filter, store.Page{Limit: allBatch, Offset: offset})
			if err != nil {
				yield(domain.Client{}, err)
				return
			}
			for _, c := range batch {
				if !yield(c, nil) {
					return
				}
			}
			if len(batch) < allBatch {
				return
			}
		}
	}
}

func clampSize(size int) int {
	if size <= 0 {
		return DefaultPageSize
	}
	return min(size, MaxPageSize)
}
