package validate

import (
	"context"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scir/internal/ir"
)

func TestConcurrentMatchesSequential(t *testing.T) {
	mb := ir.NewModuleBuilder("Mixed")
	mb.DeclareSlot(0, "count", ir.Integer(256))

	// A clean function.
	fb := mb.NewFunction("get", nil, []ir.Type{ir.Integer(256)}, ir.VisPublic, ir.MutView)
	v, err := fb.Append(0, ir.Instruction{Op: ir.OpStorageLoad, Slot: 0, Type: ir.Integer(256)})
	require.NoError(t, err)
	require.NoError(t, fb.Return(0, v))

	// A function with a type error.
	fb = mb.NewFunction("bad", []ir.Param{{Name: "a", Type: ir.Integer(64)}}, []ir.Type{ir.Integer(64)}, ir.VisInternal, ir.MutPure)
	wide, err := fb.Append(0, ir.Instruction{Op: ir.OpIConst, Const: big.NewInt(3), Type: ir.Integer(256)})
	require.NoError(t, err)
	sum, err := fb.Append(0, ir.Instruction{
		Op: ir.OpIAdd, Overflow: ir.OverflowWrap,
		Args: []ir.Value{fb.Param(0), wide}, Type: ir.Integer(64),
	})
	require.NoError(t, err)
	require.NoError(t, fb.Return(0, sum))

	// A function with an effect violation and a dead block.
	fb = mb.NewFunction("worse", nil, nil, ir.VisPublic, ir.MutView)
	dead, _ := fb.AppendBlock()
	one, err := fb.Append(0, ir.Instruction{Op: ir.OpIConst, Const: big.NewInt(1), Type: ir.Integer(256)})
	require.NoError(t, err)
	_, err = fb.Append(0, ir.Instruction{Op: ir.OpStorageStore, Slot: 0, Args: []ir.Value{one}})
	require.NoError(t, err)
	require.NoError(t, fb.Return(0))
	require.NoError(t, fb.Return(dead))

	m := mb.Module()

	sequential := Validate(m)
	require.NotEmpty(t, sequential)

	for i := 0; i < 10; i++ {
		concurrent, err := ValidateConcurrent(context.Background(), m)
		require.NoError(t, err)
		assert.Equal(t, sequential, concurrent)
	}
}

func TestConcurrentHonorsCancellation(t *testing.T) {
	mb := ir.NewModuleBuilder("T")
	fb := mb.NewFunction("f", nil, nil, ir.VisInternal, ir.MutPure)
	require.NoError(t, fb.Return(0))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ValidateConcurrent(ctx, mb.Module())
	assert.ErrorIs(t, err, context.Canceled)
}
