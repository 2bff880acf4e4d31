package extend

import (
	"context"
	"iter"
)

// defaultPageSize is the page size used by the list iterators.
const defaultPageSize = 100

// paginatorFunc fetches a single page of items T.
type paginatorFunc[T any] func(context.Context, PageParams) ([]T, Pagination, error)

// iterate returns an iterator that walks through all pages using the provided fetcher.
func iterate[T any](ctx context.Context, fetch paginatorFunc[T]) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		params := PageParams{Page: 0, Count: defaultPageSize}

		for {
			items, meta, err := fetch(ctx, params)
			if err != nil {
				yield(*new(T), err)
				return
			}

			for _, item := range items {
				if !yield(item, nil) {
					return
				}
			}

			if meta.NumberOfPages > 0 && params.Page+1 >= meta.NumberOfPages {
				return
			}
			if len(items) == 0 {
				return
			}
			params.Page++
		}
	}
}
