package onnx

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewImageTensor(t *testing.T) {
	data := make([]float32, 3*4*5)
	tensor, err := NewImageTensor(data, 3, 4, 5)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 3, 4, 5}, tensor.Shape)
	assert.Len(t, tensor.Data, 60)
}

func TestNewImageTensorNilData(t *testing.T) {
	_, err := NewImageTensor(nil, 3, 4, 5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nil tensor data")
}

func TestNewImageTensorWrongLength(t *testing.T) {
	_, err := NewImageTensor(make([]float32, 10), 3, 4, 5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tensor data length")
}

func TestTensorValidate(t *testing.T) {
	tensor, err := NewImageTensor(make([]float32, 3*2*2), 3, 2, 2)
	require.NoError(t, err)
	require.NoError(t, tensor.Validate())
}

func TestTensorValidateBadRank(t *testing.T) {
	tensor := Tensor{Data: make([]float32, 4), Shape: []int64{2, 2}}
	require.Error(t, tensor.Validate())
}

func TestTensorValidateNonPositiveDimension(t *testing.T) {
	tensor := Tensor{Data: nil, Shape: []int64{1, 0, 2, 2}}
	require.Error(t, tensor.Validate())
}

func TestTensorValidateLengthMismatch(t *testing.T) {
	tensor := Tensor{Data: make([]float32, 5), Shape: []int64{1, 1, 2, 2}}
	err := tensor.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not match shape")
}
