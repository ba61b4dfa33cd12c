package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

const DefaultPerPage int = 40

type PageSrc struct {
	Page  int
	First int
	Last  int
}

// TotalPages is ceil(total/perPage).
func TotalPages(total int, perPage int) int {
	if perPage <= 0 || total <= 0 {
		return 0
	}
	return (total + perPage - 1) / perPage
}

// GetResPages lists the upstream pages (of resPageSize) and the slice of each
// that make up page srcPage of size srcPageSize.
func GetResPages(srcPage int, srcPageSize int, resPageSize int) []PageSrc {
	var startOffset = (srcPage - 1) * srcPageSize
	var endOffset = startOffset + srcPageSize
	var firstPage = 1 + (startOffset / resPageSize)
	var first = (firstPage - 1) * resPageSize
	var last = first + resPageSize
	pages := []PageSrc{{
		Page:  firstPage,
		First: startOffset - first,
		Last:  min(resPageSize, endOffset-first),
	}}
	for last < endOffset {
		remain := endOffset - (last / resPageSize * resPageSize)
		last += resPageSize
		lastPage := last / resPageSize
		pages = append(pages, PageSrc{
			Page:  lastPage,
			First: 0,
			Last:  min(resPageSize, remain),
		})
	}
	return pages
}

func (p *PageSrc) String() string {
	return fmt.Sprintf("#%d [%d:%d]", p.Page, p.First, p.Last)
}

// PagedFetcher serves session pages of any size from a provider with a fixed
// upstream page size.
type PagedFetcher struct {
	api ImageSearcher
	log zerolog.Logger
}

func NewPagedFetcher(api ImageSearcher) *PagedFetcher {
	return &PagedFetcher{
		api: api,
		log: NewLogger("fetch").With().Str("provider", api.Type()).Logger(),
	}
}

func (f *PagedFetcher) Fetch(ctx context.Context, query string, page int, perPage int) (ResultPage, error) {
	if page < 1 || perPage < 1 {
		return ResultPage{}, &FetchError{Message: fmt.Sprintf("invalid page window %d/%d", page, perPage)}
	}
	srcs := GetResPages(page, perPage, f.api.PageSize())
	results := make([]ResultPage, len(srcs))

	g, gctx := errgroup.WithContext(ctx)
	for i, src := range srcs {
		f.log.Debug().Str("query", query).Stringer("src", &src).Msg("upstream request")
		g.Go(func() error {
			res, err := f.api.Search(gctx, src.Page, query)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return ResultPage{}, err
	}

	output := ResultPage{Total: results[0].Total}
	for i, src := range srcs {
		items := results[i].Items
		first := min(len(items), src.First)
		last := min(len(items), src.Last)
		output.Items = append(output.Items, items[first:last]...)
	}
	return output, nil
}
