//go:build !tflite

package denoise

import "fmt"

// LoadModelRuntime is unavailable without a native TFLite interpreter.
// Build with -tags=tflite to link the real backend in runtime_tflite.go.
// Callers that pass a nil runtime to NewMultiLayerPerceptronFilter need
// not call this function, and MLPF then runs in transparent pass-through.
func LoadModelRuntime(modelPath, device string) (ModelRuntime, error) {
	return nil, &ModelLoadError{Device: device, Err: fmt.Errorf("tflite support not compiled in (build with -tags=tflite)")}
}
