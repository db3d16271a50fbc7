// Package render bridges generated copy and parameters into renderer-specific
// inputs, invokes the matching backend per ad type, and assembles the final
// creative bundle.
package render

import "context"

// Family identifies a rendering backend family.
type Family string

const (
	FamilyHTML   Family = "html"
	FamilyRaster Family = "raster"
	FamilyVideo  Family = "video"
)

// Result is the raw output of one render call.
type Result struct {
	Bytes       []byte
	ContentType string
}

// HTMLBackend composes an image from an HTML/CSS template service.
type HTMLBackend interface {
	RenderHTML(ctx context.Context, in HTMLInput) (Result, error)
}

// RasterBackend composes layered raster images. RenderFallback is the cheaper
// simplified path the dispatcher tries when the rich path fails.
type RasterBackend interface {
	RenderRaster(ctx context.Context, in RasterInput) (Result, error)
	RenderFallback(ctx context.Context, in RasterInput) (Result, error)
}

// VideoBackend generates short video clips via an external service.
type VideoBackend interface {
	RenderVideo(ctx context.Context, in VideoInput) (Result, error)
}

// AssetStore turns rendered bytes into a durable URL. Implemented by
// pkg/storage; a store failure never aborts a creative.
type AssetStore interface {
	Upload(ctx context.Context, key, contentType string, body []byte) (string, error)
}
