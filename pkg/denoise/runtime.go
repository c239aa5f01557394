package denoise

// ModelRuntime scores a batch of per-event feature vectors, one row per
// event, returning one raw score per row. MultiLayerPerceptronFilter
// compares each score against its own floatThreshold; the runtime never
// sees the threshold.
//
// Implementations are swappable: LoadModelRuntime resolves to a real
// TFLite-backed runtime when this module is built with -tags=tflite, and
// to a stub that always errors otherwise, so the rest of the package
// compiles and tests without a native TFLite dependency present.
type ModelRuntime interface {
	Classify(features [][]float32) ([]float64, error)
}

// cpuFallbackDevice is substituted for the requested device on a single
// retry when the initial load fails, mirroring the reference
// implementation's one-shot fallback to CPU.
const cpuFallbackDevice = "cpu"
