package imdevice

import "github.com/gogpu/wgpu/hal"

// retiredResource is a GPU object that may still be referenced by recorded
// or in-flight work. A texture is retired together with its view.
type retiredResource struct {
	buffer   hal.Buffer
	texture  hal.Texture
	view     hal.TextureView
	pipeline hal.RenderPipeline
	layout   hal.PipelineLayout

	// serial is the submission index of the last submission that may
	// reference the resource. Zero means the submission has not happened yet.
	serial uint64
}

// retire queues r for destruction after the next submission, which carries
// the currently open recording, has finished.
func (d *Device) retire(r retiredResource) {
	r.serial = 0
	d.retired = append(d.retired, r)
}

// stampRetired assigns serial to every resource retired since the previous
// submission.
func (d *Device) stampRetired(serial uint64) {
	for i := range d.retired {
		if d.retired[i].serial == 0 {
			d.retired[i].serial = serial
		}
	}
}

// reclaim destroys every retired resource whose submission has completed.
func (d *Device) reclaim(completed uint64) int {
	n, freed := 0, 0
	for _, r := range d.retired {
		if r.serial == 0 || r.serial > completed {
			d.retired[n] = r
			n++
			continue
		}
		d.destroyRetired(r)
		freed++
	}
	clear(d.retired[n:])
	d.retired = d.retired[:n]
	d.stats.Reclaimed += freed
	return freed
}

func (d *Device) destroyRetired(r retiredResource) {
	if r.pipeline != nil {
		d.device.DestroyRenderPipeline(r.pipeline)
	}
	if r.layout != nil {
		d.device.DestroyPipelineLayout(r.layout)
	}
	if r.view != nil {
		d.device.DestroyTextureView(r.view)
	}
	if r.texture != nil {
		d.device.DestroyTexture(r.texture)
	}
	if r.buffer != nil {
		d.device.DestroyBuffer(r.buffer)
	}
}
