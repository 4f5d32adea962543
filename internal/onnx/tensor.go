// Package onnx holds the ONNX Runtime plumbing shared by inference
// backends: input tensor assembly, shared library discovery and
// optional CUDA session configuration.
package onnx

import (
	"errors"
	"fmt"
)

// Tensor is a float32 input prepared for ONNX Runtime, NCHW for images.
type Tensor struct {
	Data  []float32
	Shape []int64
}

// NewImageTensor wraps one image plane set as a [1, C, H, W] tensor.
// data must hold C*H*W values in NCHW order.
func NewImageTensor(data []float32, c, h, w int) (Tensor, error) {
	if data == nil {
		return Tensor{}, errors.New("nil tensor data")
	}
	if expected := c * h * w; len(data) != expected {
		return Tensor{}, fmt.Errorf("tensor data length %d, want %d for %dx%dx%d", len(data), expected, c, h, w)
	}
	return Tensor{
		Data:  data,
		Shape: []int64{1, int64(c), int64(h), int64(w)},
	}, nil
}

// Validate checks the shape is a positive NCHW quad matching the data.
func (t Tensor) Validate() error {
	if len(t.Shape) != 4 {
		return fmt.Errorf("tensor rank %d, want 4", len(t.Shape))
	}
	expected := int64(1)
	for i, d := range t.Shape {
		if d <= 0 {
			return fmt.Errorf("tensor dimension %d is %d, want positive", i, d)
		}
		expected *= d
	}
	if int64(len(t.Data)) != expected {
		return fmt.Errorf("tensor data length %d does not match shape %v", len(t.Data), t.Shape)
	}
	return nil
}
