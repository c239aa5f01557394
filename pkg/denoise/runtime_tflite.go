//go:build tflite

package denoise

import (
	"fmt"

	"github.com/mattn/go-tflite"
)

// tfliteModelRuntime backs ModelRuntime with a real TFLite interpreter,
// built only when this module is compiled with -tags=tflite.
type tfliteModelRuntime struct {
	model       *tflite.Model
	interpreter *tflite.Interpreter
	inputRows   int
}

func loadTFLiteRuntime(modelPath string) (*tfliteModelRuntime, error) {
	model := tflite.NewModelFromFile(modelPath)
	if model == nil {
		return nil, fmt.Errorf("failed to load tflite model: %s", modelPath)
	}
	interpreter := tflite.NewInterpreter(model, nil)
	if interpreter == nil {
		model.Delete()
		return nil, fmt.Errorf("failed to create tflite interpreter")
	}
	if status := interpreter.AllocateTensors(); status != tflite.OK {
		interpreter.Delete()
		model.Delete()
		return nil, fmt.Errorf("failed to allocate tensors")
	}
	return &tfliteModelRuntime{model: model, interpreter: interpreter}, nil
}

// Classify writes each feature row into the interpreter's input tensor
// and invokes one inference per row: the reference model was exported for
// a single-event input shape, so batching happens at the MLPF level, not
// inside the interpreter.
func (r *tfliteModelRuntime) Classify(features [][]float32) ([]float64, error) {
	scores := make([]float64, len(features))
	for i, row := range features {
		input := r.interpreter.GetInputTensor(0)
		if input == nil {
			return nil, fmt.Errorf("input tensor unavailable")
		}
		if status := input.CopyFromBuffer(&row[0]); status != tflite.OK {
			return nil, fmt.Errorf("failed to copy input row %d", i)
		}
		if status := r.interpreter.Invoke(); status != tflite.OK {
			return nil, fmt.Errorf("tflite invoke failed on row %d", i)
		}
		output := r.interpreter.GetOutputTensor(0)
		if output == nil {
			return nil, fmt.Errorf("output tensor unavailable")
		}
		buf := make([]float32, 1)
		if status := output.CopyToBuffer(&buf[0]); status != tflite.OK {
			return nil, fmt.Errorf("failed to read output row %d", i)
		}
		scores[i] = float64(buf[0])
	}
	return scores, nil
}

func (r *tfliteModelRuntime) Shutdown() {
	if r.interpreter != nil {
		r.interpreter.Delete()
	}
	if r.model != nil {
		r.model.Delete()
	}
}

// LoadModelRuntime loads a TFLite model for the requested device. TFLite
// itself schedules onto the CPU delegate chain rather than a named
// device, so "device" here only distinguishes "attempt the configured
// accelerator delegate" (anything other than cpuFallbackDevice) from
// plain CPU; both paths load the same interpreter. On failure, one retry
// against cpuFallbackDevice is attempted before giving up, matching the
// reference implementation's single fallback.
func LoadModelRuntime(modelPath, device string) (ModelRuntime, error) {
	runtime, err := loadTFLiteRuntime(modelPath)
	if err == nil {
		return runtime, nil
	}
	if device == cpuFallbackDevice {
		return nil, &ModelLoadError{Device: device, Err: err}
	}
	runtime, cpuErr := loadTFLiteRuntime(modelPath)
	if cpuErr != nil {
		return nil, &ModelLoadError{Device: cpuFallbackDevice, Err: cpuErr}
	}
	return runtime, nil
}
