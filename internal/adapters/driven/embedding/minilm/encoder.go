package minilm

import (
	"fmt"
	"slices"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
)

// Batch is a block of tokenized rows in row-major order.
type Batch struct {
	Rows          int
	SeqLen        int
	IDs           []int64
	AttentionMask []int64
	TypeIDs       []int64
}

// Encoder runs the transformer and returns its last hidden states,
// row-major with shape [Rows, SeqLen, Hidden].
type Encoder interface {
	Encode(batch Batch) ([]float32, error)
	Hidden() int
	Close() error
}

// envOnce guards the process-wide ONNX Runtime environment.
var envOnce struct {
	sync.Mutex
	done bool
}

func initEnvironment(libPath string) error {
	envOnce.Lock()
	defer envOnce.Unlock()
	if envOnce.done || ort.IsInitialized() {
		envOnce.done = true
		return nil
	}
	if libPath != "" {
		ort.SetSharedLibraryPath(libPath)
	}
	if err := ort.InitializeEnvironment(); err != nil {
		return fmt.Errorf("onnx init environment: %w", err)
	}
	envOnce.done = true
	return nil
}

// ONNXEncoder runs a sentence transformer exported to ONNX. Tensors have
// a fixed [batchSize, seqLen] shape; shorter batches are padded with
// empty rows whose outputs are discarded.
type ONNXEncoder struct {
	mu sync.Mutex

	batchSize int
	seqLen    int
	hidden    int

	session *ort.AdvancedSession
	ids     *ort.Tensor[int64]
	mask    *ort.Tensor[int64]
	typeIDs *ort.Tensor[int64]
	output  *ort.Tensor[float32]
	padRow  Encoding
}

// NewONNXEncoder loads the model at modelPath. padRow is the encoding
// used to fill unused batch rows.
func NewONNXEncoder(modelPath, libPath string, batchSize, seqLen, hidden int, padRow Encoding) (*ONNXEncoder, error) {
	if err := initEnvironment(libPath); err != nil {
		return nil, err
	}

	inputs, outputs, err := ort.GetInputOutputInfo(modelPath)
	if err != nil {
		return nil, fmt.Errorf("onnx get input/output info: %w", err)
	}
	if len(inputs) == 0 || len(outputs) == 0 {
		return nil, fmt.Errorf("onnx model has no inputs or outputs")
	}

	e := &ONNXEncoder{
		batchSize: batchSize,
		seqLen:    seqLen,
		hidden:    hidden,
		padRow:    padRow,
	}

	shape := ort.NewShape(int64(batchSize), int64(seqLen))
	var inputNames []string
	var inputValues []ort.Value
	for _, in := range inputs {
		t, err := ort.NewEmptyTensor[int64](shape)
		if err != nil {
			e.Close()
			return nil, fmt.Errorf("onnx new input tensor %s: %w", in.Name, err)
		}
		switch in.Name {
		case "input_ids":
			e.ids = t
		case "attention_mask":
			e.mask = t
		case "token_type_ids":
			e.typeIDs = t
		default:
			t.Destroy()
			e.Close()
			return nil, fmt.Errorf("onnx model has unexpected input %q", in.Name)
		}
		inputNames = append(inputNames, in.Name)
		inputValues = append(inputValues, t)
	}
	if e.ids == nil || e.mask == nil {
		e.Close()
		return nil, fmt.Errorf("onnx model needs input_ids and attention_mask inputs")
	}

	output, err := ort.NewEmptyTensor[float32](ort.NewShape(int64(batchSize), int64(seqLen), int64(hidden)))
	if err != nil {
		e.Close()
		return nil, fmt.Errorf("onnx new output tensor: %w", err)
	}
	e.output = output

	session, err := ort.NewAdvancedSession(modelPath, inputNames, []string{outputs[0].Name},
		inputValues, []ort.Value{output}, nil)
	if err != nil {
		e.Close()
		return nil, fmt.Errorf("onnx new session: %w", err)
	}
	e.session = session
	return e, nil
}

// Hidden returns the size of each token state.
func (e *ONNXEncoder) Hidden() int {
	return e.hidden
}

// Encode implements Encoder.
func (e *ONNXEncoder) Encode(b Batch) ([]float32, error) {
	if b.Rows > e.batchSize || b.SeqLen != e.seqLen {
		return nil, fmt.Errorf("batch %dx%d does not fit tensors %dx%d", b.Rows, b.SeqLen, e.batchSize, e.seqLen)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	n := b.Rows * b.SeqLen
	ids := e.ids.GetData()
	copy(ids, b.IDs[:n])
	mask := e.mask.GetData()
	copy(mask, b.AttentionMask[:n])
	for r := b.Rows; r < e.batchSize; r++ {
		copy(ids[r*e.seqLen:(r+1)*e.seqLen], e.padRow.IDs)
		copy(mask[r*e.seqLen:(r+1)*e.seqLen], e.padRow.AttentionMask)
	}
	if e.typeIDs != nil {
		clear(e.typeIDs.GetData())
	}

	if err := e.session.Run(); err != nil {
		return nil, fmt.Errorf("onnx run: %w", err)
	}
	return slices.Clone(e.output.GetData()[:n*e.hidden]), nil
}

// Close destroys the session and tensors.
func (e *ONNXEncoder) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.session != nil {
		e.session.Destroy()
		e.session = nil
	}
	for _, t := range []*ort.Tensor[int64]{e.ids, e.mask, e.typeIDs} {
		if t != nil {
			t.Destroy()
		}
	}
	e.ids, e.mask, e.typeIDs = nil, nil, nil
	if e.output != nil {
		e.output.Destroy()
		e.output = nil
	}
	return nil
}
