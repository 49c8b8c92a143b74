// Package imdevice is an immediate-mode graphics device on top of the
// explicit gogpu/wgpu HAL.
//
// Callers create buffers, bind them to vertex arrays, configure attributes
// and issue draws without ever describing a pipeline. On every draw the
// device synthesizes the pipeline layout, vertex layout, blend, depth and
// stencil state from the RenderState it is given, opens a render pass and
// records the draw into the frame's open command recording.
//
// # Frames
//
// A command recording is always open. Texture uploads and other device work
// issued outside of a frame land in it. BeginFrame closes the current
// recording and opens a new one; EndFrame closes the current recording,
// submits every closed recording in the order they were opened, presents
// the swap target and fetches its next view.
//
// # Pipelines
//
// By default no pipeline is cached: identical draws rebuild identical
// pipelines, and Stats().PipelinesBuilt counts one per draw. The
// WithPipelineCache option enables a content-addressed cache instead.
//
// # Resource lifetime
//
// Buffers are allocated lazily by AllocateBuffer. Allocating an already
// allocated buffer replaces its storage. The old storage, staging buffers
// and per-draw pipelines are not destroyed immediately: they are retired
// with the index of the submission that carries them and destroyed once the
// queue reports that submission complete, which a later EndFrame observes.
//
// # Errors
//
// Every error wraps one of ErrUsage, ErrUnsupported, ErrNative or
// ErrUnimplemented. Uniform, texture and storage binding, compute, fences,
// timer queries and readback report ErrUnimplemented.
//
// A Device is not safe for concurrent use.
package imdevice
