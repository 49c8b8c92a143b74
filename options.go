package imdevice

import (
	"log/slog"

	"github.com/gogpu/gputypes"
)

// Option configures a Device during creation.
//
// Example:
//
//	dev, err := imdevice.New(halDevice, halQueue, target,
//	    imdevice.WithLabel("editor"),
//	    imdevice.WithPipelineCache(true))
type Option func(*options)

// options holds optional configuration for Device creation.
type options struct {
	logger             *slog.Logger
	label              string
	pipelineCache      bool
	stagingAlignment   uint32
	depthStencilFormat gputypes.TextureFormat
}

// defaultOptions returns the default device options.
func defaultOptions() options {
	return options{
		label:              "imdevice",
		stagingAlignment:   copyBytesPerRowAlignment,
		depthStencilFormat: gputypes.TextureFormatDepth24PlusStencil8,
	}
}

// WithLogger sets the logger for one device. Without it the device logs
// through the package logger set by SetLogger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithLabel sets the prefix for debug labels of every GPU object the device
// creates.
func WithLabel(label string) Option {
	return func(o *options) {
		if label != "" {
			o.label = label
		}
	}
}

// WithPipelineCache enables the content-addressed pipeline cache. With the
// cache, draws whose synthesized pipeline description matches an earlier
// draw reuse that pipeline instead of building a new one.
func WithPipelineCache(enabled bool) Option {
	return func(o *options) {
		o.pipelineCache = enabled
	}
}

// WithStagingAlignment sets the row pitch alignment of texture uploads.
// It must be a power of two no smaller than 4; other values are ignored.
func WithStagingAlignment(n uint32) Option {
	return func(o *options) {
		if n >= 4 && n&(n-1) == 0 {
			o.stagingAlignment = n
		}
	}
}

// WithDepthStencilFormat sets the format of the default target's
// depth/stencil attachment.
func WithDepthStencilFormat(f gputypes.TextureFormat) Option {
	return func(o *options) {
		if f != gputypes.TextureFormatUndefined {
			o.depthStencilFormat = f
		}
	}
}
