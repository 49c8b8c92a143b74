package imdevice

// Framebuffer is a render target backed by a texture.
type Framebuffer struct {
	texture *Texture
}

// CreateFramebuffer makes tex drawable.
func (d *Device) CreateFramebuffer(tex *Texture) *Framebuffer {
	return &Framebuffer{texture: tex}
}

// FramebufferTexture returns the texture fb draws into.
func (d *Device) FramebufferTexture(fb *Framebuffer) *Texture {
	return fb.texture
}

// DestroyFramebuffer detaches fb and hands back its texture.
func (d *Device) DestroyFramebuffer(fb *Framebuffer) *Texture {
	t := fb.texture
	fb.texture = nil
	return t
}
