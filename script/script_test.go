package script

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magpierre/datatable-engine/datatable"
)

func TestCompileAndEval(t *testing.T) {
	tests := []struct {
		name string
		expr string
		row  map[string]interface{}
		want interface{}
	}{
		{"arithmetic", `row["age"].(int64) * 2`, map[string]interface{}{"age": int64(21)}, int64(42)},
		{"strings", `strings.ToUpper(row["name"].(string))`, map[string]interface{}{"name": "alice"}, "ALICE"},
		{"fmt", `fmt.Sprintf("%v/%v", row["a"], row["b"])`, map[string]interface{}{"a": 1, "b": "x"}, "1/x"},
		{"constant", `"fixed"`, nil, "fixed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prog, err := Compile(tt.expr)
			require.NoError(t, err)
			assert.Equal(t, tt.expr, prog.String())

			got, err := prog.Eval(tt.row)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCompileErrors(t *testing.T) {
	_, err := Compile("   ")
	assert.ErrorIs(t, err, ErrEmptyExpression)

	_, err = Compile(`row[`)
	assert.ErrorIs(t, err, ErrCompile)

	_, err = Compile(`undefinedThing + 1`)
	assert.ErrorIs(t, err, ErrCompile)
}

func TestEvalRecoversPanics(t *testing.T) {
	prog, err := Compile(`row["missing"].(string)`)
	require.NoError(t, err)

	v, err := prog.Eval(map[string]interface{}{})
	assert.ErrorIs(t, err, ErrEval)
	assert.Nil(t, v)
}

func TestComputedColumn(t *testing.T) {
	names := []string{"name", "age"}
	col, err := Column("label", "Label", `fmt.Sprintf("%s (%d)", row["name"], row["age"])`, names, nil)
	require.NoError(t, err)
	assert.Equal(t, "Label", col.Title)

	row := datatable.Row{Index: 0, Values: []datatable.Value{
		datatable.NewValue("Alice", datatable.TypeString),
		datatable.NewValue(int64(30), datatable.TypeInt),
	}}
	assert.Equal(t, "Alice (30)", col.Text(row))

	broken, err := Column("n", "", `row["age"].(string)`, names, nil)
	require.NoError(t, err)
	assert.Equal(t, "n", broken.Title)
	assert.Nil(t, broken.Extract(row), "failing rows yield nil")
}

func TestRowMap(t *testing.T) {
	row := datatable.Row{Values: []datatable.Value{
		datatable.NewValue("x", datatable.TypeString),
		datatable.NewNullValue(datatable.TypeInt),
	}}
	m := RowMap(row, []string{"a", "b", "c"})
	assert.Equal(t, map[string]interface{}{"a": "x", "b": nil, "c": nil}, m)
}
