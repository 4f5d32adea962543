package textrec

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/disintegration/imaging"
	onnxrt "github.com/yalue/onnxruntime_go"

	"github.com/tablesight/tablesight/internal/mempool"
	"github.com/tablesight/tablesight/internal/onnx"
	"github.com/tablesight/tablesight/internal/utils"
)

const lineWidthMultiple = 8

// ONNXEngine recognizes a preprocessed crop as one text line with a CTC
// recognition model through ONNX Runtime. Each call yields at most one
// detection carrying the whole line.
type ONNXEngine struct {
	mu         sync.Mutex
	session    *onnxrt.DynamicAdvancedSession
	inputInfo  onnxrt.InputOutputInfo
	outputInfo onnxrt.InputOutputInfo
	charset    *Charset
	height     int
}

// NewONNXEngine loads the recognition model and its dictionary and
// prepares an inference session.
func NewONNXEngine(config EngineConfig) (*ONNXEngine, error) {
	if config.ModelPath == "" {
		return nil, errors.New("model path cannot be empty")
	}
	if config.DictPath == "" {
		return nil, errors.New("dictionary path cannot be empty")
	}
	if _, err := os.Stat(config.ModelPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("model file not found: %s", config.ModelPath)
	}
	if _, err := os.Stat(config.DictPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("dictionary file not found: %s", config.DictPath)
	}

	charset, err := LoadCharset(config.DictPath)
	if err != nil {
		return nil, err
	}

	if err := onnx.SetONNXLibraryPath(config.UseGPU); err != nil {
		return nil, fmt.Errorf("failed to set ONNX Runtime library path: %w", err)
	}
	if !onnxrt.IsInitialized() {
		if err := onnxrt.InitializeEnvironment(); err != nil {
			return nil, fmt.Errorf("failed to initialize ONNX Runtime: %w", err)
		}
	}

	inputs, outputs, err := onnxrt.GetInputOutputInfo(config.ModelPath)
	if err != nil {
		return nil, fmt.Errorf("failed to get model input/output info: %w", err)
	}
	if len(inputs) != 1 || len(outputs) != 1 {
		return nil, fmt.Errorf("expected 1 input and 1 output, got %d/%d", len(inputs), len(outputs))
	}
	inputInfo := inputs[0]
	outputInfo := outputs[0]
	if len(inputInfo.Dimensions) != 4 {
		return nil, fmt.Errorf("expected 4D input tensor, got %dD", len(inputInfo.Dimensions))
	}

	// Input is [N, C, H, W]; adopt the model's fixed height unless the
	// configuration pins one.
	height := config.ImageHeight
	if height <= 0 {
		if h := inputInfo.Dimensions[2]; h > 0 {
			height = int(h)
		} else {
			height = 48
		}
	}

	sessionOptions, err := onnxrt.NewSessionOptions()
	if err != nil {
		return nil, fmt.Errorf("failed to create session options: %w", err)
	}
	defer func() { _ = sessionOptions.Destroy() }()

	gpu := onnx.DefaultGPUConfig()
	gpu.UseGPU = config.UseGPU
	if err := onnx.ConfigureSessionForGPU(sessionOptions, gpu); err != nil {
		return nil, fmt.Errorf("failed to configure GPU: %w", err)
	}
	if config.NumThreads > 0 {
		if err := sessionOptions.SetIntraOpNumThreads(config.NumThreads); err != nil {
			return nil, fmt.Errorf("failed to set thread count: %w", err)
		}
	}

	session, err := onnxrt.NewDynamicAdvancedSession(
		config.ModelPath,
		[]string{inputInfo.Name},
		[]string{outputInfo.Name},
		sessionOptions,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create ONNX session: %w", err)
	}

	slog.Debug("ONNX OCR engine initialized",
		"model", config.ModelPath,
		"charset_size", charset.Size(),
		"height", height)
	return &ONNXEngine{
		session:    session,
		inputInfo:  inputInfo,
		outputInfo: outputInfo,
		charset:    charset,
		height:     height,
	}, nil
}

// Recognize runs the model over the crop. The model decodes a fixed
// charset, so the whitelist applies after decoding; excluded runes turn
// into spaces to keep token boundaries intact.
func (e *ONNXEngine) Recognize(img image.Image, whitelist string) ([]Detection, error) {
	if img == nil {
		return nil, errors.New("input image is nil")
	}

	line := resizeLine(img, e.height, lineWidthMultiple)
	data, w, h := lineTensor(line)
	defer mempool.PutFloat32(data)

	tensor, err := onnx.NewImageTensor(data, 3, h, w)
	if err != nil {
		return nil, fmt.Errorf("build input tensor: %w", err)
	}

	outData, outShape, err := e.run(tensor)
	if err != nil {
		return nil, err
	}

	// Blank is class 0 by CTC convention; token indices shift by one.
	classes := e.charset.Size() + 1
	seq := decodeCTCGreedy(outData, outShape, 0, classesFirstLayout(outShape, classes))
	var b strings.Builder
	for _, idx := range seq.collapsed {
		b.WriteString(e.charset.Token(idx - 1))
	}

	text := applyWhitelist(b.String(), whitelist)
	if text == "" {
		return nil, nil
	}
	return []Detection{{Text: text, Confidence: meanConfidence(seq.probs)}}, nil
}

func (e *ONNXEngine) run(tensor onnx.Tensor) ([]float32, []int64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.session == nil {
		return nil, nil, errors.New("onnx session is closed")
	}

	inputTensor, err := onnxrt.NewTensor(onnxrt.NewShape(tensor.Shape...), tensor.Data)
	if err != nil {
		return nil, nil, fmt.Errorf("create input tensor: %w", err)
	}
	defer func() { _ = inputTensor.Destroy() }()

	outputs := []onnxrt.Value{nil}
	if err := e.session.Run([]onnxrt.Value{inputTensor}, outputs); err != nil {
		return nil, nil, fmt.Errorf("inference failed: %w", err)
	}
	defer func() {
		for _, o := range outputs {
			if o != nil {
				_ = o.Destroy()
			}
		}
	}()

	floatTensor, ok := outputs[0].(*onnxrt.Tensor[float32])
	if !ok {
		return nil, nil, fmt.Errorf("expected float32 tensor, got %T", outputs[0])
	}
	data := append([]float32(nil), floatTensor.GetData()...)
	shape := append([]int64(nil), outputs[0].GetShape()...)
	return data, shape, nil
}

// Close releases the inference session. Safe to call more than once.
func (e *ONNXEngine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.session == nil {
		return nil
	}
	err := e.session.Destroy()
	e.session = nil
	return err
}

// resizeLine scales a crop to the model height preserving aspect ratio
// and right-pads the width with black to the next multiple.
func resizeLine(img image.Image, targetH, padMultiple int) image.Image {
	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return imaging.New(padMultiple, targetH, color.Black)
	}

	scale := float64(targetH) / float64(b.Dy())
	newW := int(float64(b.Dx()) * scale)
	if newW < 1 {
		newW = 1
	}
	resized := imaging.Resize(img, newW, targetH, imaging.Lanczos)

	outW := newW
	if padMultiple > 0 {
		if rem := newW % padMultiple; rem != 0 {
			outW = newW + (padMultiple - rem)
		}
	}
	if outW == newW {
		return resized
	}
	canvas := imaging.New(outW, targetH, color.Black)
	return imaging.Paste(canvas, resized, image.Pt(0, 0))
}

// lineTensor converts an image to NCHW float32 planes in [0,1], drawing
// the buffer from the pool. The caller returns it via mempool.
func lineTensor(img image.Image) ([]float32, int, int) {
	rgba := utils.ToRGBA(img)
	b := rgba.Bounds()
	w, h := b.Dx(), b.Dy()
	data := mempool.GetFloat32(3 * w * h)
	plane := w * h
	for y := range h {
		row := rgba.Pix[y*rgba.Stride : y*rgba.Stride+4*w]
		for x := range w {
			data[y*w+x] = float32(row[4*x]) / 255
			data[plane+y*w+x] = float32(row[4*x+1]) / 255
			data[2*plane+y*w+x] = float32(row[4*x+2]) / 255
		}
	}
	return data, w, h
}

// applyWhitelist blanks runes the zone's whitelist excludes and
// collapses the leftover spacing.
func applyWhitelist(text, whitelist string) string {
	if whitelist == "" {
		return strings.TrimSpace(text)
	}
	out := []rune(text)
	for i, r := range out {
		if !strings.ContainsRune(whitelist, r) {
			out[i] = ' '
		}
	}
	return strings.Join(strings.Fields(string(out)), " ")
}
