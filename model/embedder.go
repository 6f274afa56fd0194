package model

import (
	"context"
	"fmt"
	"math"
	"sync"

	"github.com/rushteam/citykit/core"
	"github.com/rushteam/citykit/feature"
)

// Embedder turns encoded user features into a user embedding.
//
// The routing from encoder segments to artifact input slots is established
// once, in NewEmbedder, and validated against the artifact's declared shapes.
// Calls into the artifact are serialized, so one Embedder may be shared by
// all request goroutines.
type Embedder struct {
	mu       sync.Mutex
	artifact Artifact
	routes   []route // one per artifact input, in signature order
	inputLen int
	outDim   int
}

type route struct {
	segment string
	offset  int
	len     int
}

// NewEmbedder binds segments to the artifact inputs. slots maps segment name
// to artifact input name; a segment absent from slots feeds the input of the
// same name. Every segment must feed exactly one input, every input must be
// fed, and dimensions must match, otherwise a SHAPE_MISMATCH error is returned.
func NewEmbedder(artifact Artifact, segments []feature.Segment, slots map[string]string) (*Embedder, error) {
	sig := artifact.Signature()
	if sig.OutputDim <= 0 {
		return nil, core.NewShapeMismatchError(core.ModuleModel, "output dim", 1, sig.OutputDim)
	}

	routes := make([]route, len(sig.Inputs))
	fed := make([]bool, len(sig.Inputs))
	inputLen := 0
	for _, seg := range segments {
		inputName := seg.Name
		if mapped, ok := slots[seg.Name]; ok && mapped != "" {
			inputName = mapped
		}
		idx, ok := sig.InputIndex(inputName)
		if !ok {
			return nil, core.NewDomainError(core.ModuleModel, core.ErrorCodeShapeMismatch,
				fmt.Sprintf("model: segment %q routed to unknown artifact input %q", seg.Name, inputName))
		}
		if fed[idx] {
			return nil, core.NewDomainError(core.ModuleModel, core.ErrorCodeShapeMismatch,
				fmt.Sprintf("model: artifact input %q fed by more than one segment", inputName))
		}
		if sig.Inputs[idx].Dim != seg.Len {
			return nil, core.NewShapeMismatchError(core.ModuleModel, "input "+inputName, sig.Inputs[idx].Dim, seg.Len)
		}
		fed[idx] = true
		routes[idx] = route{segment: seg.Name, offset: seg.Offset, len: seg.Len}
		inputLen += seg.Len
	}
	for i, ok := range fed {
		if !ok {
			return nil, core.NewDomainError(core.ModuleModel, core.ErrorCodeShapeMismatch,
				fmt.Sprintf("model: artifact input %q is not fed by any segment", sig.Inputs[i].Name))
		}
	}

	return &Embedder{
		artifact: artifact,
		routes:   routes,
		inputLen: inputLen,
		outDim:   sig.OutputDim,
	}, nil
}

// Dim is the embedding dimensionality.
func (e *Embedder) Dim() int { return e.outDim }

// Artifact returns the wrapped artifact.
func (e *Embedder) Artifact() Artifact { return e.artifact }

// Routes describes the segment to input binding, for startup logs.
func (e *Embedder) Routes() map[string]string {
	sig := e.artifact.Signature()
	out := make(map[string]string, len(e.routes))
	for i, r := range e.routes {
		out[r.segment] = sig.Inputs[i].Name
	}
	return out
}

// Embed runs one inference for f.
func (e *Embedder) Embed(ctx context.Context, f *feature.EncodedFeatures) ([]float64, error) {
	if f == nil || len(f.Vector) != e.inputLen {
		got := 0
		if f != nil {
			got = len(f.Vector)
		}
		return nil, core.NewShapeMismatchError(core.ModuleModel, "encoded features", e.inputLen, got)
	}

	inputs := make([][]float64, len(e.routes))
	for i, r := range e.routes {
		inputs[i] = f.Vector[r.offset : r.offset+r.len]
	}

	e.mu.Lock()
	out, err := e.artifact.Infer(ctx, inputs)
	e.mu.Unlock()
	if err != nil {
		return nil, err
	}
	if len(out) != e.outDim {
		return nil, core.NewShapeMismatchError(core.ModuleModel, "embedding", e.outDim, len(out))
	}
	for i, v := range out {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, core.NewDomainError(core.ModuleModel, core.ErrorCodeInternalError,
				fmt.Sprintf("model: embedding[%d] is not finite: %v", i, v))
		}
	}
	return out, nil
}
