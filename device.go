package imdevice

import (
	"fmt"
	"image"
	"log/slog"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/imdevice/internal/format"
	"github.com/gogpu/imdevice/internal/pipecache"
	"github.com/gogpu/imdevice/internal/stream"
)

// Device is an immediate-mode rendering device over a HAL device and queue.
//
// A Device is owned by one goroutine. It does not own the HAL device, the
// queue or the swap target and does not destroy them.
type Device struct {
	device hal.Device
	queue  hal.Queue
	target SwapTarget
	opts   options
	log    *slog.Logger

	stream   *stream.Manager
	samplers *samplerTable
	depth    depthStencilTarget
	cache    *pipecache.Cache
	retired  []retiredResource

	nextProgramID uint64
	frame         uint64
	stats         Stats
	destroyed     bool
}

// depthStencilTarget is the single depth/stencil attachment used by draws
// to the default target.
type depthStencilTarget struct {
	tex  hal.Texture
	view hal.TextureView
	size image.Point
}

// New creates a device drawing to target by default.
//
// Construction opens the first command recording, builds the sampler table
// and allocates the depth/stencil attachment at the target size.
func New(device hal.Device, queue hal.Queue, target SwapTarget, opts ...Option) (*Device, error) {
	if device == nil || queue == nil {
		return nil, fmt.Errorf("%w: nil HAL device or queue", ErrUsage)
	}
	if target == nil {
		return nil, fmt.Errorf("%w: nil swap target", ErrUsage)
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	log := o.logger
	if log == nil {
		log = Logger()
	}

	s, err := stream.New(device, queue, stream.Config{Label: o.label + "_commands", Logger: log})
	if err != nil {
		return nil, nativeErr("open command stream", err)
	}
	d := &Device{
		device: device,
		queue:  queue,
		target: target,
		opts:   o,
		log:    log,
		stream: s,
	}
	if o.pipelineCache {
		d.cache = pipecache.New()
	}

	d.samplers, err = newSamplerTable(device)
	if err != nil {
		s.Destroy()
		return nil, err
	}
	if err := d.ensureDepthStencil(target.Size()); err != nil {
		d.samplers.destroy(device)
		s.Destroy()
		return nil, err
	}
	log.Info("imdevice: device created",
		"label", o.label,
		"size", target.Size().String(),
		"pipeline_cache", o.pipelineCache)
	return d, nil
}

// NewFromProvider creates a device on the HAL device and queue of a shared
// provider. The provider must also implement HalDevice() any and
// HalQueue() any returning hal.Device and hal.Queue.
func NewFromProvider(provider gpucontext.DeviceProvider, target SwapTarget, opts ...Option) (*Device, error) {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return nil, fmt.Errorf("%w: provider does not expose HAL types", ErrUsage)
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, fmt.Errorf("%w: provider HalDevice is not hal.Device", ErrUsage)
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, fmt.Errorf("%w: provider HalQueue is not hal.Queue", ErrUsage)
	}
	return New(device, queue, target, opts...)
}

func (d *Device) label(name string) string {
	return d.opts.label + "_" + name
}

func (d *Device) nativeTextureFormat(f TextureFormat) gputypes.TextureFormat {
	return format.TextureFormat(f)
}

// ensureDepthStencil (re)creates the depth/stencil attachment when the
// default target size changes.
func (d *Device) ensureDepthStencil(size image.Point) error {
	if d.depth.tex != nil && d.depth.size == size {
		return nil
	}
	if size.X <= 0 || size.Y <= 0 {
		return fmt.Errorf("%w: default target has empty size %v", ErrUsage, size)
	}
	tex, err := d.device.CreateTexture(&hal.TextureDescriptor{
		Label: d.label("depth_stencil"),
		Size: hal.Extent3D{
			Width:              uint32(size.X), //nolint:gosec // checked positive
			Height:             uint32(size.Y), //nolint:gosec // checked positive
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        d.opts.depthStencilFormat,
		Usage:         gputypes.TextureUsageRenderAttachment,
	})
	if err != nil {
		return nativeErr("create depth/stencil texture", err)
	}
	view, err := d.device.CreateTextureView(tex, &hal.TextureViewDescriptor{Label: d.label("depth_stencil_view")})
	if err != nil {
		d.device.DestroyTexture(tex)
		return nativeErr("create depth/stencil view", err)
	}
	if d.depth.tex != nil {
		d.retire(retiredResource{texture: d.depth.tex, view: d.depth.view})
	}
	d.depth = depthStencilTarget{tex: tex, view: view, size: size}
	return nil
}

// BeginFrame starts a frame boundary in the command stream. Work recorded
// before it is kept in a separate recording that is submitted ahead of the
// frame's own work.
func (d *Device) BeginFrame() error {
	if d.destroyed {
		return ErrDestroyed
	}
	if err := d.stream.Rotate(); err != nil {
		return nativeErr("begin frame", err)
	}
	return nil
}

// EndFrame submits every recording made since the previous EndFrame in the
// order they were opened, presents the swap target and moves it to its next
// view. Retired resources whose submissions the queue reports complete are
// destroyed.
func (d *Device) EndFrame() error {
	if d.destroyed {
		return ErrDestroyed
	}
	n, err := d.stream.SubmitAndClear()
	if err != nil {
		return nativeErr("end frame", err)
	}
	d.stampRetired(d.stream.Serial())
	d.stats.Submissions++
	d.stats.RecordingsSubmitted += n
	d.frame++

	if err := d.target.Present(); err != nil {
		return nativeErr("present", err)
	}
	if err := d.target.Next(); err != nil {
		return nativeErr("acquire next view", err)
	}

	freed := d.reclaim(d.stream.Poll())
	d.log.Debug("imdevice: end frame",
		"frame", d.frame,
		"recordings", n,
		"reclaimed", freed,
		"retired", len(d.retired))
	return nil
}

// BeginCommands marks the start of a batch of draws. Like BeginFrame it
// only forces a recording boundary.
func (d *Device) BeginCommands() error {
	return d.BeginFrame()
}

// EndCommands marks the end of a batch of draws. Recording continues in
// the open recording.
func (d *Device) EndCommands() {}

// FeatureLevel reports the capability tier of the device.
func (d *Device) FeatureLevel() FeatureLevel { return FeatureLevelD3D11 }

// DeviceName returns a human-readable name of the device.
func (d *Device) DeviceName() string { return "imdevice " + d.opts.label }

// Stats returns the counters accumulated since the device was created.
func (d *Device) Stats() Stats { return d.stats }

// Destroy waits for the GPU to go idle and releases every object the device
// created. It is safe to call more than once.
func (d *Device) Destroy() {
	if d.destroyed {
		return
	}
	// Flush recorded work so resources it references can be released.
	if _, err := d.stream.SubmitAndClear(); err != nil {
		d.log.Warn("imdevice: final submit failed", "err", err)
	}
	if err := d.stream.WaitIdle(); err != nil {
		d.log.Warn("imdevice: wait idle failed", "err", err)
	}
	d.destroyed = true

	for _, r := range d.retired {
		d.destroyRetired(r)
	}
	d.retired = nil
	if d.cache != nil {
		d.cache.DestroyAll(d.device)
	}
	if d.depth.view != nil {
		d.device.DestroyTextureView(d.depth.view)
	}
	if d.depth.tex != nil {
		d.device.DestroyTexture(d.depth.tex)
	}
	d.depth = depthStencilTarget{}
	d.samplers.destroy(d.device)
	d.stream.Destroy()
	d.log.Info("imdevice: device destroyed", "frames", d.frame)
}
