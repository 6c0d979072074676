package verbscript_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cwbudde/verbscript/pkg/verbscript"
)

func TestEvalArithmetic(t *testing.T) {
	engine := verbscript.New(verbscript.EngineOptions{})

	result, err := engine.Eval("1 + 2 * 3;")
	require.NoError(t, err)
	assert.Equal(t, float64(7), result.Value.Number())
}

func TestEvalFunctionAndClosure(t *testing.T) {
	engine := verbscript.New(verbscript.EngineOptions{})

	result, err := engine.Eval(`
		let n = 0;
		const inc = () => { n = n + 1; return n; };
		inc();
		inc();
		inc();
	`)
	require.NoError(t, err)
	assert.Equal(t, float64(3), result.Value.Number())
}

func TestEvalWarnings(t *testing.T) {
	engine := verbscript.New(verbscript.EngineOptions{})

	result, err := engine.Eval(`std.warn("careful"); 1;`)
	require.NoError(t, err)
	assert.Equal(t, []string{"careful"}, result.Warnings)
}

func TestEvalTranspileErrorSurfaces(t *testing.T) {
	engine := verbscript.New(verbscript.EngineOptions{})

	_, err := engine.Eval("let = ;")
	assert.Error(t, err)
}

func TestGasExhaustion(t *testing.T) {
	engine := verbscript.New(verbscript.EngineOptions{Gas: 10})

	_, err := engine.Eval(`
		let i = 0;
		while (i < 1000000) {
			i = i + 1;
		}
		i;
	`)
	assert.Error(t, err)
}

func TestTranspileDecompileRoundTripsThroughEngine(t *testing.T) {
	engine := verbscript.New(verbscript.EngineOptions{})

	node, err := engine.Transpile("1 + 2;")
	require.NoError(t, err)

	source, err := engine.Decompile(node)
	require.NoError(t, err)
	assert.Equal(t, "(1 + 2);\n", source)
}

func TestEvalUndefinedMemberAccessFails(t *testing.T) {
	engine := verbscript.New(verbscript.EngineOptions{})

	result, err := engine.Eval("host.greet();")
	assert.Error(t, err)
	assert.Nil(t, result.Value)
}
