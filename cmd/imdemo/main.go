// Command imdemo draws a cleared quad for a number of frames through an
// imdevice Device on an offscreen target.
package main

import (
	"flag"
	"fmt"
	"image"
	"log"
	"log/slog"
	"os"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/naga"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"
	_ "github.com/gogpu/wgpu/hal/vulkan"

	"github.com/gogpu/imdevice"
)

const quadShaderWGSL = `
@vertex
fn vs_main(@location(0) aPosition: vec2<f32>) -> @builtin(position) vec4<f32> {
    return vec4<f32>(aPosition * 2.0 - 1.0, 0.0, 1.0);
}

@fragment
fn fs_main() -> @location(0) vec4<f32> {
    return vec4<f32>(0.9, 0.4, 0.1, 1.0);
}
`

func main() {
	var (
		backend = flag.String("backend", "noop", "HAL backend: noop or vulkan")
		frames  = flag.Int("frames", 3, "number of frames to draw")
		width   = flag.Int("width", 256, "target width")
		height  = flag.Int("height", 256, "target height")
		config  = flag.String("config", "", "TOML device configuration")
		verbose = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	imdevice.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	var opts []imdevice.Option
	if *config != "" {
		c, err := imdevice.LoadConfig(*config)
		if err != nil {
			log.Fatal(err)
		}
		opts = c.Options()
	}

	device, queue, cleanup, err := openDevice(*backend)
	if err != nil {
		log.Fatalf("open %s device: %v", *backend, err)
	}
	defer cleanup()

	if err := run(device, queue, image.Pt(*width, *height), *frames, opts); err != nil {
		log.Fatal(err)
	}
}

func openDevice(name string) (hal.Device, hal.Queue, func(), error) {
	var api hal.Backend
	switch name {
	case "noop":
		api = noop.API{}
	case "vulkan":
		b, ok := hal.GetBackend(gputypes.BackendVulkan)
		if !ok {
			return nil, nil, nil, fmt.Errorf("vulkan backend not available")
		}
		api = b
	default:
		return nil, nil, nil, fmt.Errorf("unknown backend %q", name)
	}

	instance, err := api.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return nil, nil, nil, fmt.Errorf("create instance: %w", err)
	}
	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return nil, nil, nil, fmt.Errorf("no GPU adapters found")
	}
	selected := &adapters[0]
	for i := range adapters {
		if adapters[i].Info.DeviceType == gputypes.DeviceTypeDiscreteGPU {
			selected = &adapters[i]
			break
		}
	}
	openDev, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return nil, nil, nil, fmt.Errorf("open device: %w", err)
	}
	log.Printf("imdemo: using %s (%s)", selected.Info.Name, name)
	return openDev.Device, openDev.Queue, func() {
		openDev.Device.Destroy()
		instance.Destroy()
	}, nil
}

func run(device hal.Device, queue hal.Queue, size image.Point, frames int, opts []imdevice.Option) error {
	target, err := imdevice.NewOffscreenTarget(device, size, gputypes.TextureFormatRGBA8Unorm)
	if err != nil {
		return err
	}
	defer target.Destroy()

	dev, err := imdevice.New(device, queue, target, opts...)
	if err != nil {
		return err
	}
	defer dev.Destroy()

	spirvBytes, err := naga.Compile(quadShaderWGSL)
	if err != nil {
		return fmt.Errorf("compile quad shader: %w", err)
	}
	vs, err := dev.CreateShaderFromBinary("quad", spirvBytes, imdevice.ShaderKindVertex)
	if err != nil {
		return err
	}
	fs, err := dev.CreateShaderFromBinary("quad", spirvBytes, imdevice.ShaderKindFragment)
	if err != nil {
		return err
	}
	program, err := dev.CreateProgram("quad", vs, fs)
	if err != nil {
		return err
	}

	vertices := dev.CreateBuffer(imdevice.BufferUploadModeStatic)
	if err := dev.AllocateBuffer(vertices, imdevice.BufferMemory([]float32{0, 0, 1, 0, 1, 1, 0, 1}), imdevice.BufferTargetVertex); err != nil {
		return err
	}
	indices := dev.CreateBuffer(imdevice.BufferUploadModeStatic)
	if err := dev.AllocateBuffer(indices, imdevice.BufferMemory([]uint32{0, 1, 2, 0, 2, 3}), imdevice.BufferTargetIndex); err != nil {
		return err
	}

	va := dev.CreateVertexArray()
	if err := dev.BindBuffer(va, vertices, imdevice.BufferTargetVertex); err != nil {
		return err
	}
	if err := dev.BindBuffer(va, indices, imdevice.BufferTargetIndex); err != nil {
		return err
	}
	// The compiler may drop input names; the quad position is location 0.
	position, ok := dev.GetVertexAttribute(program, "Position")
	if !ok {
		position = imdevice.VertexAttr{Location: 0}
	}
	if err := dev.ConfigureVertexAttribute(va, position, imdevice.VertexAttrDescriptor{
		Size:   2,
		Class:  imdevice.VertexAttrClassFloat,
		Type:   imdevice.VertexAttrTypeF32,
		Stride: 8,
	}); err != nil {
		return err
	}

	state := &imdevice.RenderState{
		Program:     program,
		VertexArray: va,
		Options: imdevice.RenderOptions{
			ClearOps: imdevice.ClearOps{Color: &gputypes.Color{R: 0.1, G: 0.1, B: 0.1, A: 1}},
		},
	}
	for range frames {
		if err := dev.BeginFrame(); err != nil {
			return err
		}
		if err := dev.DrawElements(6, state); err != nil {
			return err
		}
		if err := dev.EndFrame(); err != nil {
			return err
		}
	}

	st := dev.Stats()
	log.Printf("imdemo: %d frames, %d draws, %d pipelines built, %d cache hits, %d resources reclaimed",
		frames, st.Draws, st.PipelinesBuilt, st.PipelineCacheHits, st.Reclaimed)
	return nil
}
