package render

import "context"

type Renderer interface {
	RenderArticle(ctx context.Context, page ArticlePage) ([]byte, error)
	RenderListing(ctx context.Context, page ListingPage) ([]byte, error)
}
