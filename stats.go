package imdevice

// Stats counts device work.
type Stats struct {
	// PipelinesBuilt counts render pipelines created. Without the pipeline
	// cache it equals Draws.
	PipelinesBuilt    int
	PipelineCacheHits int

	RenderPasses       int
	ClearedColorPasses int
	Draws              int

	TexturesCreated int
	TextureUploads  int
	BufferUploads   int

	// Submissions counts EndFrame submissions; RecordingsSubmitted counts
	// the recordings they carried.
	Submissions         int
	RecordingsSubmitted int

	// Reclaimed counts retired GPU objects destroyed after their
	// submissions completed.
	Reclaimed int
}
